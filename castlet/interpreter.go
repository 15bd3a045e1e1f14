package castlet

import "fmt"

// Config controls evaluator execution bounds.
type Config struct {
	// StepQuota caps the number of statements and expressions evaluated in
	// one run.
	StepQuota int
	// MaxInstances caps how many objects a run may allocate, counting both
	// new and clone.
	MaxInstances int
}

// Engine compiles and executes Castlet programs with deterministic limits.
type Engine struct {
	config Config
}

// NewEngine constructs an Engine, applying defaults for unset limits.
func NewEngine(cfg Config) *Engine {
	if cfg.StepQuota <= 0 {
		cfg.StepQuota = 50000
	}
	if cfg.MaxInstances <= 0 {
		cfg.MaxInstances = 4096
	}
	return &Engine{config: cfg}
}

// Compile parses and semantically validates source. Every diagnostic the
// language defines is raised here; a compiled Script runs to completion
// unless it exhausts a quota or its context.
func (e *Engine) Compile(source string) (*Script, error) {
	p := newParser(source)
	program, parseErrors := p.ParseProgram()
	if len(parseErrors) > 0 {
		return nil, combineErrors(parseErrors)
	}
	table, err := analyze(source, program)
	if err != nil {
		return nil, err
	}
	return &Script{engine: e, table: table, program: program, source: source}, nil
}

// ConfigSummary provides a human-readable description of the engine limits.
func (e *Engine) ConfigSummary() string {
	return fmt.Sprintf("steps=%d instances=%d", e.config.StepQuota, e.config.MaxInstances)
}
