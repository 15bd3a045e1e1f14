package castlet

import "fmt"

// Store owns every instance allocated during one run. Instances live until
// the run ends; there is no reclamation. The cap bounds how many objects a
// program may allocate, the one resource Castlet programs can grow.
type Store struct {
	instances []*Instance
	max       int
}

func newStore(max int) *Store {
	return &Store{max: max}
}

// Allocate builds a new instance of class, binding args positionally along
// the class's effective field list. The arity was already validated before
// execution; a mismatch here is an internal defect, not a user condition.
func (s *Store) Allocate(class *ClassDef, args []int64) (*Instance, error) {
	fields := class.effectiveFields
	if len(args) != len(fields) {
		return nil, &Diagnostic{
			Kind:    ArityMismatch,
			Message: fmt.Sprintf("class %s expects %d args, got %d", class.Name, len(fields), len(args)),
		}
	}
	if err := s.checkQuota(); err != nil {
		return nil, err
	}

	values := make(map[string]int64, len(fields))
	for i, name := range fields {
		values[name] = args[i]
	}
	inst := &Instance{Class: class, Fields: values}
	s.instances = append(s.instances, inst)
	return inst, nil
}

// Copy allocates a new instance with the same dynamic type and a
// value-for-value copy of every field. Field values are plain integers, so
// the copy is fully independent.
func (s *Store) Copy(inst *Instance) (*Instance, error) {
	if err := s.checkQuota(); err != nil {
		return nil, err
	}

	values := make(map[string]int64, len(inst.Fields))
	for name, value := range inst.Fields {
		values[name] = value
	}
	dup := &Instance{Class: inst.Class, Fields: values}
	s.instances = append(s.instances, dup)
	return dup, nil
}

// ReadField returns the value of a field the semantic pass has already
// proven present.
func (s *Store) ReadField(inst *Instance, name string) int64 {
	return inst.Fields[name]
}

// WriteField overwrites a field in place. The change is visible through
// every reference sharing this instance's identity.
func (s *Store) WriteField(inst *Instance, name string, value int64) {
	inst.Fields[name] = value
}

// Len reports how many instances have been allocated so far.
func (s *Store) Len() int {
	return len(s.instances)
}

func (s *Store) checkQuota() error {
	if s.max > 0 && len(s.instances) >= s.max {
		return &RuntimeError{Message: fmt.Sprintf("instance quota exceeded (%d)", s.max)}
	}
	return nil
}
