// Package castlet implements the Castlet execution engine. Castlet is a
// minimal class-based language for teaching inheritance, static typing of
// references, casting, and object cloning. A program declares classes:
//   - `CLASS A` blocks with `base = B` (or `None`), `fields = [x, y]`, and
//     `methods = { show -> [x, y] }` where a method body is the ordered list
//     of fields (or integer literals) it prints.
//
// followed by a flat sequence of statements:
//   - `let a = new A(1, 2)` constructs an instance, binding arguments
//     positionally along the inherited-then-own field list.
//   - `call a.show` resolves the method through the reference's static type
//     and emits the field values.
//   - `a.x = 5` assigns an integer field in place.
//   - `let b = cast<B> a` retypes the reference without copying the object.
//   - `let c = clone a` copies the object, keeping the reference's type.
//   - `a is B` reports whether the instance's runtime class is B or derives
//     from it.
//
// Comments beginning with `;` or `//` are ignored. Programs are validated in
// a single semantic pass before any statement executes; the evaluator
// enforces a simple step quota and an instance cap, rejecting programs that
// exceed configured limits.
package castlet
