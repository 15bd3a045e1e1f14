package castlet

import (
	"unicode"
	"unicode/utf8"
)

// The grammar is line-oriented, so unlike most lexers this one emits
// newline tokens and leaves statement separation to the parser.
type lexer struct {
	input string

	offset int
	width  int

	line   int
	column int

	ch rune
}

func newLexer(input string) *lexer {
	l := &lexer{input: input, line: 1, column: 0}
	l.readRune()
	return l
}

func (l *lexer) readRune() {
	if l.offset >= len(l.input) {
		l.width = 0
		l.ch = 0
		return
	}

	r, w := utf8.DecodeRuneInString(l.input[l.offset:])
	l.width = w
	l.offset += w

	if r == '\n' {
		l.line++
		l.column = 0
	} else {
		l.column++
	}

	l.ch = r
}

func (l *lexer) peekRune() rune {
	if l.offset >= len(l.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.input[l.offset:])
	return r
}

func (l *lexer) NextToken() Token {
	l.skipSpacesAndComments()

	tok := Token{Pos: Position{Line: l.line, Column: l.column}}

	switch l.ch {
	case 0:
		tok.Type = tokenEOF
		tok.Literal = ""
	case '\n':
		// A newline token carries the line it terminates.
		tok = Token{Type: tokenNewline, Literal: "\n", Pos: Position{Line: l.line - 1, Column: l.column + 1}}
		l.readRune()
	case '=':
		tok = l.makeToken(tokenAssign, "=")
		l.readRune()
	case '<':
		tok = l.makeToken(tokenLT, "<")
		l.readRune()
	case '>':
		tok = l.makeToken(tokenGT, ">")
		l.readRune()
	case ',':
		tok = l.makeToken(tokenComma, ",")
		l.readRune()
	case '.':
		tok = l.makeToken(tokenDot, ".")
		l.readRune()
	case '(':
		tok = l.makeToken(tokenLParen, "(")
		l.readRune()
	case ')':
		tok = l.makeToken(tokenRParen, ")")
		l.readRune()
	case '{':
		tok = l.makeToken(tokenLBrace, "{")
		l.readRune()
	case '}':
		tok = l.makeToken(tokenRBrace, "}")
		l.readRune()
	case '[':
		tok = l.makeToken(tokenLBracket, "[")
		l.readRune()
	case ']':
		tok = l.makeToken(tokenRBracket, "]")
		l.readRune()
	case '-':
		if l.peekRune() == '>' {
			l.readRune()
			tok = l.makeToken(tokenArrow, "->")
			l.readRune()
		} else if isDigit(l.peekRune()) {
			tok.Type = tokenInt
			tok.Literal = l.readNumber()
		} else {
			tok = l.makeToken(tokenIllegal, string(l.ch))
			l.readRune()
		}
	default:
		switch {
		case isIdentStart(l.ch):
			tok.Literal = l.readIdentifier()
			tok.Type = lookupIdent(tok.Literal)
		case isDigit(l.ch):
			tok.Type = tokenInt
			tok.Literal = l.readNumber()
		default:
			tok = l.makeToken(tokenIllegal, string(l.ch))
			l.readRune()
		}
	}

	return tok
}

func (l *lexer) makeToken(t TokenType, literal string) Token {
	start := l.column - (len([]rune(literal)) - 1)
	if start < 1 {
		start = l.column
	}
	return Token{Type: t, Literal: literal, Pos: Position{Line: l.line, Column: start}}
}

// skipSpacesAndComments consumes horizontal whitespace and `;` / `//`
// comments. Newlines are significant and are left for NextToken.
func (l *lexer) skipSpacesAndComments() {
	for {
		switch {
		case l.ch == ' ' || l.ch == '\t' || l.ch == '\r':
			l.readRune()
		case l.ch == ';':
			l.skipToLineEnd()
		case l.ch == '/' && l.peekRune() == '/':
			l.skipToLineEnd()
		default:
			return
		}
	}
}

func (l *lexer) skipToLineEnd() {
	for l.ch != '\n' && l.ch != 0 {
		l.readRune()
	}
}

func (l *lexer) readIdentifier() string {
	start := l.offset - l.width
	for isIdentPart(l.ch) {
		l.readRune()
	}
	return l.input[start : l.offset-l.width]
}

func (l *lexer) readNumber() string {
	start := l.offset - l.width
	if l.ch == '-' {
		l.readRune()
	}
	for isDigit(l.ch) {
		l.readRune()
	}
	return l.input[start : l.offset-l.width]
}

func isIdentStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func isIdentPart(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}
