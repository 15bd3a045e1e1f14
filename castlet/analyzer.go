package castlet

import "fmt"

// analyzer performs the single whole-program semantic pass. It builds and
// validates the class table, then walks every statement with a static-type
// environment, annotating each typed AST node with its resolved class. The
// evaluator trusts those annotations and performs no type checks of its own.
type analyzer struct {
	source  string
	table   *ClassTable
	statics map[string]*ClassDef
}

func analyze(source string, program *Program) (*ClassTable, error) {
	a := &analyzer{
		source:  source,
		table:   NewClassTable(),
		statics: make(map[string]*ClassDef),
	}

	for _, decl := range program.Classes {
		def := &ClassDef{
			Name:     decl.Name,
			BaseName: decl.Base,
			Fields:   decl.Fields,
			Methods:  make(map[string][]MethodItem, len(decl.Methods)),
		}
		for _, method := range decl.Methods {
			def.Methods[method.Name] = method.Items
		}
		if err := a.table.Register(def); err != nil {
			return nil, a.located(err, decl.Pos())
		}
	}
	if err := a.table.Resolve(); err != nil {
		return nil, a.located(err, declPos(program, err))
	}

	if err := a.checkMethodBodies(program); err != nil {
		return nil, err
	}

	for _, stmt := range program.Statements {
		if err := a.checkStatement(stmt); err != nil {
			return nil, err
		}
	}
	return a.table, nil
}

// checkMethodBodies validates every method body against the effective
// fields of its declaring class, so dispatch never has to re-check.
func (a *analyzer) checkMethodBodies(program *Program) error {
	for _, decl := range program.Classes {
		def, _ := a.table.Lookup(decl.Name)
		visible := make(map[string]struct{}, len(def.effectiveFields))
		for _, field := range def.effectiveFields {
			visible[field] = struct{}{}
		}
		for _, method := range decl.Methods {
			for _, item := range method.Items {
				if item.IsLiteral {
					continue
				}
				if _, ok := visible[item.Field]; !ok {
					return a.errorAt(UnknownField, method.Pos(),
						"unknown field %s in method %s of class %s", item.Field, method.Name, decl.Name)
				}
			}
		}
	}
	return nil
}

func (a *analyzer) checkStatement(stmt Statement) error {
	switch s := stmt.(type) {
	case *LetStmt:
		static, err := a.checkExpression(s.Value)
		if err != nil {
			return err
		}
		a.statics[s.Name] = static
		return nil
	case *CallStmt:
		static, err := a.staticOf(s.Variable, s.Pos())
		if err != nil {
			return err
		}
		if _, ok := static.lookupMethod(s.Method); !ok {
			return a.errorAt(UnknownMethod, s.Pos(),
				"method %s not found in type %s or its bases", s.Method, static.Name)
		}
		return nil
	case *FieldAssignStmt:
		static, err := a.staticOf(s.Variable, s.Pos())
		if err != nil {
			return err
		}
		if !fieldVisible(static, s.Field) {
			return a.errorAt(UnknownField, s.Pos(),
				"unknown field %s for reference of type %s", s.Field, static.Name)
		}
		return nil
	case *IsStmt:
		// `is` is deliberately forgiving: unknown variables and classes
		// yield a negative verdict at run time instead of a diagnostic.
		return nil
	default:
		return a.errorAt(UnknownClass, stmt.Pos(), "unsupported statement %T", stmt)
	}
}

// checkExpression validates a let right-hand side and returns the static
// type the new binding will carry.
func (a *analyzer) checkExpression(expr Expression) (*ClassDef, error) {
	switch e := expr.(type) {
	case *NewExpr:
		class, ok := a.table.Lookup(e.Class)
		if !ok {
			return nil, a.errorAt(UnknownClass, e.Pos(), "unknown class %s", e.Class)
		}
		if len(e.Args) != len(class.effectiveFields) {
			return nil, a.errorAt(ArityMismatch, e.Pos(),
				"class %s expects %d args, got %d", e.Class, len(class.effectiveFields), len(e.Args))
		}
		e.class = class
		return class, nil
	case *CastExpr:
		static, err := a.staticOf(e.Variable, e.Pos())
		if err != nil {
			return nil, err
		}
		target, ok := a.table.Lookup(e.Target)
		if !ok {
			return nil, a.errorAt(UnknownClass, e.Pos(), "unknown class %s", e.Target)
		}
		// Upward or identity casts only: the target must be an ancestor of
		// (or equal to) the reference's static type. Downcasts are rejected
		// even when the dynamic type would admit them.
		if !static.IsSubclassOf(target) {
			return nil, a.errorAt(InvalidCast, e.Pos(), "cannot cast %s to %s", static.Name, target.Name)
		}
		e.target = target
		return target, nil
	case *CloneExpr:
		// Cloning is legal on any well-typed reference; the clone keeps the
		// source's static type.
		return a.staticOf(e.Variable, e.Pos())
	case *VarExpr:
		return a.staticOf(e.Name, e.Pos())
	default:
		return nil, a.errorAt(UnknownClass, expr.Pos(), "unsupported expression %T", expr)
	}
}

func (a *analyzer) staticOf(variable string, pos Position) (*ClassDef, error) {
	static, ok := a.statics[variable]
	if !ok {
		return nil, a.errorAt(UnknownVariable, pos, "unknown variable %s", variable)
	}
	return static, nil
}

func fieldVisible(class *ClassDef, field string) bool {
	for _, name := range class.effectiveFields {
		if name == field {
			return true
		}
	}
	return false
}

func (a *analyzer) errorAt(kind string, pos Position, format string, args ...any) error {
	return &Diagnostic{
		Kind:      kind,
		Message:   fmt.Sprintf(format, args...),
		Pos:       pos,
		CodeFrame: formatCodeFrame(a.source, pos),
	}
}

// declPos finds the declaration of the class a table diagnostic names, so
// the code frame points at the offending class rather than the program
// start.
func declPos(program *Program, err error) Position {
	if d, ok := err.(*Diagnostic); ok && d.Class != "" {
		for _, decl := range program.Classes {
			if decl.Name == d.Class {
				return decl.Pos()
			}
		}
	}
	return program.Pos()
}

// located attaches a position and code frame to a diagnostic produced by
// the class table, which has no view of the source text.
func (a *analyzer) located(err error, pos Position) error {
	if d, ok := err.(*Diagnostic); ok && d.CodeFrame == "" {
		d.Pos = pos
		d.CodeFrame = formatCodeFrame(a.source, pos)
	}
	return err
}
