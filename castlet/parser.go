package castlet

import (
	"fmt"
	"strconv"
)

type parseError struct {
	pos Position
	msg string
}

func (e *parseError) Error() string {
	return fmt.Sprintf("parse error at %d:%d: %s", e.pos.Line, e.pos.Column, e.msg)
}

type parser struct {
	l *lexer

	curToken  Token
	peekToken Token

	errors []error
}

func newParser(input string) *parser {
	p := &parser{l: newLexer(input)}
	p.nextToken()
	p.nextToken()
	return p
}

func (p *parser) nextToken() {
	p.curToken = p.peekToken
	p.peekToken = p.l.NextToken()
}

func (p *parser) errorf(pos Position, format string, args ...any) {
	p.errors = append(p.errors, &parseError{pos: pos, msg: fmt.Sprintf(format, args...)})
}

func (p *parser) expectPeek(t TokenType) bool {
	if p.peekToken.Type == t {
		p.nextToken()
		return true
	}
	p.errorf(p.peekToken.Pos, "expected %s, got %q", t, p.peekToken.Literal)
	return false
}

func (p *parser) skipNewlines() {
	for p.curToken.Type == tokenNewline {
		p.nextToken()
	}
}

// endStatement consumes the newline (or EOF) terminating the current line.
// On a stray token it records an error and resynchronizes at the next line.
func (p *parser) endStatement() {
	if p.curToken.Type == tokenNewline || p.curToken.Type == tokenEOF {
		return
	}
	p.errorf(p.curToken.Pos, "unexpected %q at end of statement", p.curToken.Literal)
	p.syncToLineEnd()
}

func (p *parser) syncToLineEnd() {
	for p.curToken.Type != tokenNewline && p.curToken.Type != tokenEOF {
		p.nextToken()
	}
}

// ParseProgram parses class declarations followed by statements. All CLASS
// blocks must precede the first statement, matching the source layout the
// language teaches with.
func (p *parser) ParseProgram() (*Program, []error) {
	program := &Program{}

	p.skipNewlines()
	for p.curToken.Type == tokenClass {
		decl := p.parseClassDecl()
		if decl != nil {
			program.Classes = append(program.Classes, decl)
		} else {
			p.syncToLineEnd()
		}
		p.skipNewlines()
	}

	for p.curToken.Type != tokenEOF {
		stmt := p.parseStatement()
		if stmt != nil {
			program.Statements = append(program.Statements, stmt)
			p.endStatement()
		} else {
			p.syncToLineEnd()
		}
		p.nextToken()
		p.skipNewlines()
	}

	return program, p.errors
}

// parseClassDecl parses one CLASS block:
//
//	CLASS A
//	base    = B
//	fields  = [x, y]
//	methods = {
//	  show -> [x, y]
//	}
func (p *parser) parseClassDecl() *ClassDecl {
	pos := p.curToken.Pos
	if !p.expectPeek(tokenIdent) {
		return nil
	}
	decl := &ClassDecl{Name: p.curToken.Literal, position: pos}
	p.nextToken()
	if p.curToken.Type != tokenNewline && p.curToken.Type != tokenEOF {
		p.errorf(p.curToken.Pos, "unexpected %q after class name", p.curToken.Literal)
		return nil
	}
	p.skipNewlines()

props:
	for p.curToken.Type == tokenIdent {
		switch p.curToken.Literal {
		case "base":
			if !p.expectPeek(tokenAssign) {
				return nil
			}
			p.nextToken()
			switch p.curToken.Type {
			case tokenNone:
				decl.Base = ""
			case tokenIdent:
				decl.Base = p.curToken.Literal
			default:
				p.errorf(p.curToken.Pos, "expected base class name or None, got %q", p.curToken.Literal)
				return nil
			}
			p.nextToken()
		case "fields":
			if !p.expectPeek(tokenAssign) {
				return nil
			}
			if !p.expectPeek(tokenLBracket) {
				return nil
			}
			fields, ok := p.parseNameList()
			if !ok {
				return nil
			}
			decl.Fields = fields
		case "methods":
			if !p.expectPeek(tokenAssign) {
				return nil
			}
			if !p.expectPeek(tokenLBrace) {
				return nil
			}
			if !p.parseMethodBlock(decl) {
				return nil
			}
		default:
			// Any other identifier starts the first statement; the class
			// body is complete.
			break props
		}
		p.skipNewlines()
	}

	return decl
}

// parseNameList consumes `name, name, ...]` with curToken on the opening
// bracket, leaving curToken past the closing bracket.
func (p *parser) parseNameList() ([]string, bool) {
	var names []string
	if p.peekToken.Type == tokenRBracket {
		p.nextToken()
		p.nextToken()
		return names, true
	}
	for {
		if !p.expectPeek(tokenIdent) {
			return nil, false
		}
		names = append(names, p.curToken.Literal)
		if p.peekToken.Type == tokenComma {
			p.nextToken()
			continue
		}
		break
	}
	if !p.expectPeek(tokenRBracket) {
		return nil, false
	}
	p.nextToken()
	return names, true
}

// parseMethodBlock consumes `show -> [a, x]` lines until the closing brace,
// with curToken on the opening brace.
func (p *parser) parseMethodBlock(decl *ClassDecl) bool {
	p.nextToken()
	p.skipNewlines()
	for p.curToken.Type != tokenRBrace {
		if p.curToken.Type == tokenEOF {
			p.errorf(p.curToken.Pos, "unterminated methods block in class %s", decl.Name)
			return false
		}
		if p.curToken.Type != tokenIdent {
			p.errorf(p.curToken.Pos, "expected method name, got %q", p.curToken.Literal)
			return false
		}
		method := &MethodDecl{Name: p.curToken.Literal, position: p.curToken.Pos}
		if !p.expectPeek(tokenArrow) {
			return false
		}
		if !p.expectPeek(tokenLBracket) {
			return false
		}
		items, ok := p.parseMethodItems()
		if !ok {
			return false
		}
		method.Items = items
		decl.Methods = append(decl.Methods, method)
		p.skipNewlines()
	}
	p.nextToken()
	return true
}

// parseMethodItems consumes `a, x, 5]` items with curToken on the opening
// bracket, leaving curToken past the closing bracket.
func (p *parser) parseMethodItems() ([]MethodItem, bool) {
	var items []MethodItem
	if p.peekToken.Type == tokenRBracket {
		p.nextToken()
		p.nextToken()
		return items, true
	}
	for {
		p.nextToken()
		switch p.curToken.Type {
		case tokenIdent:
			items = append(items, MethodItem{Field: p.curToken.Literal})
		case tokenInt:
			value, ok := p.parseIntLiteral()
			if !ok {
				return nil, false
			}
			items = append(items, MethodItem{Literal: value, IsLiteral: true})
		default:
			p.errorf(p.curToken.Pos, "expected field name or integer, got %q", p.curToken.Literal)
			return nil, false
		}
		if p.peekToken.Type == tokenComma {
			p.nextToken()
			continue
		}
		break
	}
	if !p.expectPeek(tokenRBracket) {
		return nil, false
	}
	p.nextToken()
	return items, true
}

func (p *parser) parseStatement() Statement {
	switch p.curToken.Type {
	case tokenLet:
		return p.parseLetStatement()
	case tokenCall:
		return p.parseCallStatement()
	case tokenClass:
		p.errorf(p.curToken.Pos, "class declarations must precede statements")
		return nil
	case tokenIdent:
		if p.peekToken.Type == tokenDot {
			return p.parseFieldAssignStatement()
		}
		if p.peekToken.Type == tokenIs {
			return p.parseIsStatement()
		}
		p.errorf(p.curToken.Pos, "unexpected identifier %q", p.curToken.Literal)
		return nil
	default:
		p.errorf(p.curToken.Pos, "unexpected %q", p.curToken.Literal)
		return nil
	}
}

func (p *parser) parseLetStatement() Statement {
	pos := p.curToken.Pos
	if !p.expectPeek(tokenIdent) {
		return nil
	}
	name := p.curToken.Literal
	if !p.expectPeek(tokenAssign) {
		return nil
	}
	p.nextToken()
	value := p.parseBindingExpression()
	if value == nil {
		return nil
	}
	return &LetStmt{Name: name, Value: value, position: pos}
}

// parseBindingExpression parses the right-hand side of a let: new, cast,
// clone, or a plain variable alias. Leaves curToken on the expression's last
// token's successor.
func (p *parser) parseBindingExpression() Expression {
	switch p.curToken.Type {
	case tokenNew:
		return p.parseNewExpression()
	case tokenCast:
		return p.parseCastExpression()
	case tokenClone:
		pos := p.curToken.Pos
		if !p.expectPeek(tokenIdent) {
			return nil
		}
		expr := &CloneExpr{Variable: p.curToken.Literal, position: pos}
		p.nextToken()
		return expr
	case tokenIdent:
		expr := &VarExpr{Name: p.curToken.Literal, position: p.curToken.Pos}
		p.nextToken()
		return expr
	default:
		p.errorf(p.curToken.Pos, "expected new, cast, clone, or a variable, got %q", p.curToken.Literal)
		return nil
	}
}

func (p *parser) parseNewExpression() Expression {
	pos := p.curToken.Pos
	if !p.expectPeek(tokenIdent) {
		return nil
	}
	expr := &NewExpr{Class: p.curToken.Literal, position: pos}
	if !p.expectPeek(tokenLParen) {
		return nil
	}
	if p.peekToken.Type == tokenRParen {
		p.nextToken()
		p.nextToken()
		return expr
	}
	for {
		if !p.expectPeek(tokenInt) {
			return nil
		}
		value, ok := p.parseIntLiteral()
		if !ok {
			return nil
		}
		expr.Args = append(expr.Args, value)
		if p.peekToken.Type == tokenComma {
			p.nextToken()
			continue
		}
		break
	}
	if !p.expectPeek(tokenRParen) {
		return nil
	}
	p.nextToken()
	return expr
}

func (p *parser) parseCastExpression() Expression {
	pos := p.curToken.Pos
	if !p.expectPeek(tokenLT) {
		return nil
	}
	if !p.expectPeek(tokenIdent) {
		return nil
	}
	expr := &CastExpr{Target: p.curToken.Literal, position: pos}
	if !p.expectPeek(tokenGT) {
		return nil
	}
	if !p.expectPeek(tokenIdent) {
		return nil
	}
	expr.Variable = p.curToken.Literal
	p.nextToken()
	return expr
}

func (p *parser) parseCallStatement() Statement {
	pos := p.curToken.Pos
	if !p.expectPeek(tokenIdent) {
		return nil
	}
	variable := p.curToken.Literal
	if !p.expectPeek(tokenDot) {
		return nil
	}
	if !p.expectPeek(tokenIdent) {
		return nil
	}
	method := p.curToken.Literal
	p.nextToken()
	return &CallStmt{Variable: variable, Method: method, position: pos}
}

func (p *parser) parseFieldAssignStatement() Statement {
	pos := p.curToken.Pos
	variable := p.curToken.Literal
	p.nextToken() // onto '.'
	if !p.expectPeek(tokenIdent) {
		return nil
	}
	field := p.curToken.Literal
	if !p.expectPeek(tokenAssign) {
		return nil
	}
	if !p.expectPeek(tokenInt) {
		return nil
	}
	value, ok := p.parseIntLiteral()
	if !ok {
		return nil
	}
	p.nextToken()
	return &FieldAssignStmt{Variable: variable, Field: field, Value: value, position: pos}
}

func (p *parser) parseIsStatement() Statement {
	pos := p.curToken.Pos
	variable := p.curToken.Literal
	p.nextToken() // onto 'is'
	if !p.expectPeek(tokenIdent) {
		return nil
	}
	class := p.curToken.Literal
	p.nextToken()
	return &IsStmt{Variable: variable, Class: class, position: pos}
}

func (p *parser) parseIntLiteral() (int64, bool) {
	value, err := strconv.ParseInt(p.curToken.Literal, 10, 64)
	if err != nil {
		p.errorf(p.curToken.Pos, "invalid integer %q", p.curToken.Literal)
		return 0, false
	}
	return value, true
}
