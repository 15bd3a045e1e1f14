package castlet

import "sort"

// Env is the single flat variable namespace of a program run. Rebinding a
// name installs a fresh Reference; it never mutates the old one.
type Env struct {
	values map[string]Reference
}

func newEnv() *Env {
	return &Env{values: make(map[string]Reference)}
}

func (e *Env) Get(name string) (Reference, bool) {
	ref, ok := e.values[name]
	return ref, ok
}

func (e *Env) Define(name string, ref Reference) {
	e.values[name] = ref
}

func (e *Env) Len() int {
	return len(e.values)
}

// Names returns all bound variable names in sorted order.
func (e *Env) Names() []string {
	names := make([]string, 0, len(e.values))
	for name := range e.values {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
