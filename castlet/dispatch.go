package castlet

// dispatch resolves a method through the reference's static type and reads
// the body's fields from the underlying instance. Two references sharing an
// instance but carrying different static types invoke different method
// bodies; that asymmetry is the point of the language.
func (exec *Execution) dispatch(ref Reference, method string, pos Position) ([]int64, error) {
	items, ok := ref.Static.lookupMethod(method)
	if !ok {
		return nil, exec.errorAt(pos, "internal error: method %s missing on %s", method, ref.Static.Name)
	}

	values := make([]int64, 0, len(items))
	for _, item := range items {
		if err := exec.step(); err != nil {
			return nil, err
		}
		if item.IsLiteral {
			values = append(values, item.Literal)
			continue
		}
		values = append(values, exec.store.ReadField(ref.Target, item.Field))
	}
	return values, nil
}
