package castlet

import (
	"fmt"
	"sort"
	"strings"
)

// DescribeClasses renders the validated class table: base, own fields, and
// methods per class, sorted by name.
func (s *Script) DescribeClasses() string {
	var b strings.Builder
	b.WriteString("=== Class Structure ===\n")
	for _, name := range s.table.Names() {
		def, _ := s.table.Lookup(name)
		base := "None"
		if def.Base() != nil {
			base = def.Base().Name
		}
		fmt.Fprintf(&b, "Class %s:\n", def.Name)
		fmt.Fprintf(&b, "  base   : %s\n", base)
		if len(def.Fields) > 0 {
			fmt.Fprintf(&b, "  fields : %s\n", strings.Join(def.Fields, ", "))
		} else {
			b.WriteString("  fields : (none)\n")
		}
		if len(def.Methods) == 0 {
			b.WriteString("  methods: (none)\n")
		} else {
			b.WriteString("  methods:\n")
			methodNames := make([]string, 0, len(def.Methods))
			for mname := range def.Methods {
				methodNames = append(methodNames, mname)
			}
			sort.Strings(methodNames)
			for _, mname := range methodNames {
				fmt.Fprintf(&b, "    %s -> [%s]\n", mname, formatItems(def.Methods[mname]))
			}
		}
		b.WriteString("\n")
	}
	return b.String()
}

// DescribeInstances renders every binding left in the environment after a
// run: its view type, runtime type, field values, and the methods visible
// through the view.
func (r *Result) DescribeInstances() string {
	var b strings.Builder
	b.WriteString("=== Instances ===\n")
	if r.env.Len() == 0 {
		b.WriteString("(no instances)\n")
		return b.String()
	}

	for _, name := range r.env.Names() {
		ref, _ := r.env.Get(name)
		runtime := ref.Target.Class
		runtimeBase := "None"
		if runtime.Base() != nil {
			runtimeBase = runtime.Base().Name
		}

		fmt.Fprintf(&b, "Instance %s:\n", name)
		fmt.Fprintf(&b, "  view type    : %s\n", ref.Static.Name)
		fmt.Fprintf(&b, "  runtime type : %s\n", runtime.Name)
		fmt.Fprintf(&b, "  runtime base : %s\n", runtimeBase)
		fmt.Fprintf(&b, "  fields       : %s\n", formatFields(ref.Target))
		visible := make([]string, 0, len(ref.Static.effectiveMethods))
		for mname := range ref.Static.effectiveMethods {
			visible = append(visible, mname)
		}
		sort.Strings(visible)
		if len(visible) > 0 {
			fmt.Fprintf(&b, "  methods (from view type): %s\n", strings.Join(visible, ", "))
		} else {
			b.WriteString("  methods (from view type): (none)\n")
		}
		b.WriteString("\n")
	}
	return b.String()
}

// Bindings returns the variable names bound at the end of the run, sorted.
func (r *Result) Bindings() []string {
	return r.env.Names()
}

// FormatBinding renders one binding as `view=B runtime=A {a=50, x=2}`, for
// hosts that echo state line by line.
func (r *Result) FormatBinding(name string) (string, bool) {
	ref, ok := r.env.Get(name)
	if !ok {
		return "", false
	}
	return fmt.Sprintf("view=%s runtime=%s {%s}", ref.Static.Name, ref.Target.Class.Name, formatFields(ref.Target)), true
}

// formatFields lists an instance's fields in effective (base-first) order.
func formatFields(inst *Instance) string {
	parts := make([]string, 0, len(inst.Fields))
	for _, field := range inst.Class.effectiveFields {
		parts = append(parts, fmt.Sprintf("%s=%d", field, inst.Fields[field]))
	}
	if len(parts) == 0 {
		return "(none)"
	}
	return strings.Join(parts, ", ")
}

func formatItems(items []MethodItem) string {
	parts := make([]string, len(items))
	for i, item := range items {
		if item.IsLiteral {
			parts[i] = fmt.Sprintf("%d", item.Literal)
		} else {
			parts[i] = item.Field
		}
	}
	return strings.Join(parts, ", ")
}
