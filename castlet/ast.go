package castlet

type Node interface {
	Pos() Position
}

type Statement interface {
	Node
	stmtNode()
}

type Expression interface {
	Node
	exprNode()
}

// Program is a list of class declarations followed by a flat sequence of
// top-level statements.
type Program struct {
	Classes    []*ClassDecl
	Statements []Statement
}

func (p *Program) Pos() Position {
	if len(p.Classes) > 0 {
		return p.Classes[0].Pos()
	}
	if len(p.Statements) > 0 {
		return p.Statements[0].Pos()
	}
	return Position{}
}

// ClassDecl is one CLASS block. Base is empty for a root class. Fields
// lists only the fields this class introduces, not inherited ones.
type ClassDecl struct {
	Name     string
	Base     string
	Fields   []string
	Methods  []*MethodDecl
	position Position
}

func (d *ClassDecl) Pos() Position { return d.position }

// MethodDecl maps a method name to the ordered items its body prints.
type MethodDecl struct {
	Name     string
	Items    []MethodItem
	position Position
}

func (d *MethodDecl) Pos() Position { return d.position }

// MethodItem is one entry in a method body: a field name, or an integer
// literal emitted as-is.
type MethodItem struct {
	Field     string
	Literal   int64
	IsLiteral bool
}

type LetStmt struct {
	Name     string
	Value    Expression
	position Position
}

func (s *LetStmt) stmtNode()     {}
func (s *LetStmt) Pos() Position { return s.position }

type CallStmt struct {
	Variable string
	Method   string
	position Position
}

func (s *CallStmt) stmtNode()     {}
func (s *CallStmt) Pos() Position { return s.position }

type FieldAssignStmt struct {
	Variable string
	Field    string
	Value    int64
	position Position
}

func (s *FieldAssignStmt) stmtNode()     {}
func (s *FieldAssignStmt) Pos() Position { return s.position }

// IsStmt reports whether a variable's instance was constructed as the named
// class or one of its subclasses. Unknown names yield a negative verdict
// rather than an error.
type IsStmt struct {
	Variable string
	Class    string
	position Position
}

func (s *IsStmt) stmtNode()     {}
func (s *IsStmt) Pos() Position { return s.position }

type NewExpr struct {
	Class    string
	Args     []int64
	class    *ClassDef
	position Position
}

func (e *NewExpr) exprNode()     {}
func (e *NewExpr) Pos() Position { return e.position }

type CastExpr struct {
	Target   string
	Variable string
	target   *ClassDef
	position Position
}

func (e *CastExpr) exprNode()     {}
func (e *CastExpr) Pos() Position { return e.position }

type CloneExpr struct {
	Variable string
	position Position
}

func (e *CloneExpr) exprNode()     {}
func (e *CloneExpr) Pos() Position { return e.position }

// VarExpr aliases an existing binding: same object identity, same static
// type.
type VarExpr struct {
	Name     string
	position Position
}

func (e *VarExpr) exprNode()     {}
func (e *VarExpr) Pos() Position { return e.position }
