package castlet

// TokenType identifies the lexical category of a token.
type TokenType string

const (
	tokenIllegal TokenType = "ILLEGAL"
	tokenEOF     TokenType = "EOF"
	tokenNewline TokenType = "NEWLINE"

	tokenIdent TokenType = "IDENT"
	tokenInt   TokenType = "INT"

	tokenAssign   TokenType = "="
	tokenLT       TokenType = "<"
	tokenGT       TokenType = ">"
	tokenComma    TokenType = ","
	tokenDot      TokenType = "."
	tokenArrow    TokenType = "->"
	tokenLParen   TokenType = "("
	tokenRParen   TokenType = ")"
	tokenLBrace   TokenType = "{"
	tokenRBrace   TokenType = "}"
	tokenLBracket TokenType = "["
	tokenRBracket TokenType = "]"

	tokenClass TokenType = "CLASS"
	tokenLet   TokenType = "LET"
	tokenNew   TokenType = "NEW"
	tokenCall  TokenType = "CALL"
	tokenCast  TokenType = "CAST"
	tokenClone TokenType = "CLONE"
	tokenIs    TokenType = "IS"
	tokenNone  TokenType = "NONE"
)

// Token captures lexical information for the parser.
type Token struct {
	Type    TokenType
	Literal string
	Pos     Position
}

// Position identifies a line and column in the source file.
type Position struct {
	Line   int
	Column int
}

var keywords = map[string]TokenType{
	"CLASS": tokenClass,
	"let":   tokenLet,
	"new":   tokenNew,
	"call":  tokenCall,
	"cast":  tokenCast,
	"clone": tokenClone,
	"is":    tokenIs,
	"None":  tokenNone,
}

func lookupIdent(literal string) TokenType {
	if tok, ok := keywords[literal]; ok {
		return tok
	}
	return tokenIdent
}
