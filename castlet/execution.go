package castlet

import (
	"context"
	"fmt"
)

// Script is a parsed and validated program, ready to run any number of
// times. Each run gets a fresh environment and instance store.
type Script struct {
	engine  *Engine
	table   *ClassTable
	program *Program
	source  string
}

// Classes exposes the validated class table, mainly for introspection.
func (s *Script) Classes() *ClassTable { return s.table }

// RunOptions configures one execution of a script.
type RunOptions struct {
	// Reporter, when set, receives each output row and type-check verdict
	// in program order as it is produced. The same data is also collected
	// on the Result.
	Reporter Reporter
}

// Reporter receives evaluation output as a run produces it. Printing or
// formatting is entirely the host's concern; the engine only hands over
// values.
type Reporter interface {
	MethodCalled(variable, method string, values []int64)
	TypeChecked(variable, class string, is bool)
}

// CallOutput is the ordered value sequence one `call` statement produced.
type CallOutput struct {
	Variable string
	Method   string
	Values   []int64
}

// TypeCheck is the verdict of one `is` statement.
type TypeCheck struct {
	Variable string
	Class    string
	Is       bool
}

// Result collects everything a run produced, plus the final variable
// bindings for introspection.
type Result struct {
	Outputs []CallOutput
	Checks  []TypeCheck

	env *Env
}

// Execution is the transient state of one run: the flat variable
// environment, the instance store, and the step budget.
type Execution struct {
	engine   *Engine
	script   *Script
	ctx      context.Context
	quota    int
	steps    int
	env      *Env
	store    *Store
	reporter Reporter
}

// Run executes the script's statements in order. The semantic pass has
// already accepted the program, so any type-shaped failure at this stage is
// an internal invariant violation, not a user condition.
func (s *Script) Run(ctx context.Context, opts RunOptions) (*Result, error) {
	exec := &Execution{
		engine:   s.engine,
		script:   s,
		ctx:      ctx,
		quota:    s.engine.config.StepQuota,
		env:      newEnv(),
		store:    newStore(s.engine.config.MaxInstances),
		reporter: opts.Reporter,
	}
	result := &Result{env: exec.env}

	for _, stmt := range s.program.Statements {
		if err := exec.step(); err != nil {
			return nil, exec.wrapError(err, stmt.Pos())
		}
		if err := exec.execStatement(stmt, result); err != nil {
			return nil, exec.wrapError(err, stmt.Pos())
		}
	}
	return result, nil
}

func (exec *Execution) execStatement(stmt Statement, result *Result) error {
	switch s := stmt.(type) {
	case *LetStmt:
		ref, err := exec.evalExpression(s.Value)
		if err != nil {
			return err
		}
		exec.env.Define(s.Name, ref)
		return nil
	case *CallStmt:
		ref, err := exec.binding(s.Variable, s.Pos())
		if err != nil {
			return err
		}
		values, err := exec.dispatch(ref, s.Method, s.Pos())
		if err != nil {
			return err
		}
		result.Outputs = append(result.Outputs, CallOutput{Variable: s.Variable, Method: s.Method, Values: values})
		if exec.reporter != nil {
			exec.reporter.MethodCalled(s.Variable, s.Method, values)
		}
		return nil
	case *FieldAssignStmt:
		ref, err := exec.binding(s.Variable, s.Pos())
		if err != nil {
			return err
		}
		exec.store.WriteField(ref.Target, s.Field, s.Value)
		return nil
	case *IsStmt:
		verdict := false
		if ref, bound := exec.env.Get(s.Variable); bound {
			if class, known := exec.script.table.Lookup(s.Class); known {
				// `is` consults the runtime class, not the static view.
				verdict = ref.Target.Class.IsSubclassOf(class)
			}
		}
		result.Checks = append(result.Checks, TypeCheck{Variable: s.Variable, Class: s.Class, Is: verdict})
		if exec.reporter != nil {
			exec.reporter.TypeChecked(s.Variable, s.Class, verdict)
		}
		return nil
	default:
		return exec.errorAt(stmt.Pos(), "internal error: unsupported statement %T", stmt)
	}
}

// evalExpression produces the Reference a let statement binds.
func (exec *Execution) evalExpression(expr Expression) (Reference, error) {
	if err := exec.step(); err != nil {
		return Reference{}, err
	}
	switch e := expr.(type) {
	case *NewExpr:
		inst, err := exec.store.Allocate(e.class, e.Args)
		if err != nil {
			return Reference{}, err
		}
		return Reference{Static: e.class, Target: inst}, nil
	case *CastExpr:
		src, err := exec.binding(e.Variable, e.Pos())
		if err != nil {
			return Reference{}, err
		}
		return src.Retyped(e.target), nil
	case *CloneExpr:
		src, err := exec.binding(e.Variable, e.Pos())
		if err != nil {
			return Reference{}, err
		}
		dup, err := exec.store.Copy(src.Target)
		if err != nil {
			return Reference{}, err
		}
		// The clone keeps the source's static view, not the dynamic type.
		return Reference{Static: src.Static, Target: dup}, nil
	case *VarExpr:
		return exec.binding(e.Name, e.Pos())
	default:
		return Reference{}, exec.errorAt(expr.Pos(), "internal error: unsupported expression %T", expr)
	}
}

func (exec *Execution) binding(name string, pos Position) (Reference, error) {
	ref, ok := exec.env.Get(name)
	if !ok {
		return Reference{}, exec.errorAt(pos, "internal error: unbound variable %s", name)
	}
	return ref, nil
}

func (exec *Execution) step() error {
	exec.steps++
	if exec.quota > 0 && exec.steps > exec.quota {
		return &RuntimeError{Message: fmt.Sprintf("step quota exceeded (%d)", exec.quota)}
	}
	if exec.ctx != nil {
		select {
		case <-exec.ctx.Done():
			return exec.ctx.Err()
		default:
		}
	}
	return nil
}

func (exec *Execution) errorAt(pos Position, format string, args ...any) error {
	return &RuntimeError{
		Message:   fmt.Sprintf(format, args...),
		CodeFrame: formatCodeFrame(exec.script.source, pos),
	}
}

func (exec *Execution) wrapError(err error, pos Position) error {
	if err == nil {
		return nil
	}
	switch err.(type) {
	case *RuntimeError, *Diagnostic:
		return err
	}
	if exec.ctx != nil && exec.ctx.Err() == err {
		return err
	}
	return &RuntimeError{Message: err.Error(), CodeFrame: formatCodeFrame(exec.script.source, pos)}
}
