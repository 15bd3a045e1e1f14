package castlet

// Reference is a typed handle to an instance. Static is the class the
// reference is currently viewed through and drives every method and field
// resolution; Target is the object identity. The two are deliberately
// separate fields: casting produces a Reference with a different Static and
// the same Target, which is the entire observable behavior of cast.
type Reference struct {
	Static *ClassDef
	Target *Instance
}

// Retyped returns a reference to the same instance viewed through target.
// No allocation takes place; mutations through either reference remain
// visible through the other.
func (r Reference) Retyped(target *ClassDef) Reference {
	return Reference{Static: target, Target: r.Target}
}
