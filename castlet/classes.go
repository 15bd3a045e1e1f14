package castlet

import "sort"

// ClassDef describes one class. Fields lists only the fields this class
// introduces; the linearized view including inherited fields is computed
// when the table resolves base links.
type ClassDef struct {
	Name     string
	BaseName string // empty for a root class
	Fields   []string
	Methods  map[string][]MethodItem

	base             *ClassDef
	effectiveFields  []string
	effectiveMethods map[string][]MethodItem
}

// Base returns the resolved base class, or nil for a root class.
func (c *ClassDef) Base() *ClassDef { return c.base }

// IsSubclassOf reports whether c is other or derives from it.
func (c *ClassDef) IsSubclassOf(other *ClassDef) bool {
	for cur := c; cur != nil; cur = cur.base {
		if cur == other {
			return true
		}
	}
	return false
}

// Instance is a runtime object: the class it was constructed as (its
// dynamic type) and its field values. Which methods and fields a program
// can reach on it is decided by the Reference viewing it, never by Class.
type Instance struct {
	Class  *ClassDef
	Fields map[string]int64
}

// ClassTable holds registered class definitions and their resolved
// inheritance chains.
type ClassTable struct {
	classes  map[string]*ClassDef
	resolved bool
}

func NewClassTable() *ClassTable {
	return &ClassTable{classes: make(map[string]*ClassDef)}
}

// Register adds a definition. The table must not already hold a class of
// the same name.
func (t *ClassTable) Register(def *ClassDef) error {
	if _, exists := t.classes[def.Name]; exists {
		return &Diagnostic{Kind: DuplicateClass, Class: def.Name, Message: "class " + def.Name + " defined multiple times"}
	}
	t.classes[def.Name] = def
	t.resolved = false
	return nil
}

// Lookup returns the definition registered under name.
func (t *ClassTable) Lookup(name string) (*ClassDef, bool) {
	def, ok := t.classes[name]
	return def, ok
}

// Names returns all registered class names in sorted order.
func (t *ClassTable) Names() []string {
	names := make([]string, 0, len(t.classes))
	for name := range t.classes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Resolve links every class to its base and precomputes the linearized
// field list and flattened method table per class. Derived methods replace
// base methods of the same name; a derived class may not redeclare a base
// field.
func (t *ClassTable) Resolve() error {
	for _, def := range t.classes {
		if def.BaseName == "" {
			def.base = nil
			continue
		}
		base, ok := t.classes[def.BaseName]
		if !ok {
			return &Diagnostic{Kind: UnknownBase, Class: def.Name, Message: "unknown base class " + def.BaseName + " for " + def.Name}
		}
		def.base = base
	}

	for _, def := range t.classes {
		if err := t.checkAcyclic(def); err != nil {
			return err
		}
	}

	for _, def := range t.classes {
		if err := t.linearize(def); err != nil {
			return err
		}
	}

	t.resolved = true
	return nil
}

func (t *ClassTable) checkAcyclic(def *ClassDef) error {
	seen := make(map[*ClassDef]struct{})
	for cur := def; cur != nil; cur = cur.base {
		if _, revisited := seen[cur]; revisited {
			return &Diagnostic{Kind: InheritanceCycle, Class: cur.Name, Message: "inheritance cycle through class " + cur.Name}
		}
		seen[cur] = struct{}{}
	}
	return nil
}

// linearize walks base-to-derived, so base fields precede own fields and
// derived method entries overwrite base entries.
func (t *ClassTable) linearize(def *ClassDef) error {
	var chain []*ClassDef
	for cur := def; cur != nil; cur = cur.base {
		chain = append(chain, cur)
	}

	fields := make([]string, 0, len(def.Fields))
	declared := make(map[string]string) // field -> declaring class
	methods := make(map[string][]MethodItem)
	for i := len(chain) - 1; i >= 0; i-- {
		cls := chain[i]
		for _, field := range cls.Fields {
			if owner, dup := declared[field]; dup {
				return &Diagnostic{
					Kind:    DuplicateField,
					Class:   cls.Name,
					Message: "field " + field + " in class " + cls.Name + " already defined in " + owner,
				}
			}
			declared[field] = cls.Name
			fields = append(fields, field)
		}
		for name, items := range cls.Methods {
			methods[name] = items
		}
	}

	def.effectiveFields = fields
	def.effectiveMethods = methods
	return nil
}

// EffectiveFields returns the linearized field list of a class: base fields
// in base-to-derived order, then the class's own fields.
func (t *ClassTable) EffectiveFields(name string) ([]string, bool) {
	def, ok := t.classes[name]
	if !ok || !t.resolved {
		return nil, false
	}
	return def.effectiveFields, true
}

// EffectiveMethods returns the flattened method table of a class, with
// derived methods replacing base methods of the same name.
func (t *ClassTable) EffectiveMethods(name string) (map[string][]MethodItem, bool) {
	def, ok := t.classes[name]
	if !ok || !t.resolved {
		return nil, false
	}
	return def.effectiveMethods, true
}

func (c *ClassDef) lookupMethod(name string) ([]MethodItem, bool) {
	items, ok := c.effectiveMethods[name]
	return items, ok
}
