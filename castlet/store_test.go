package castlet

import "testing"

func storeTestClass(t *testing.T) *ClassDef {
	t.Helper()
	table := resolveTestTable(t,
		&ClassDef{Name: "Base", Fields: []string{"a"}},
		&ClassDef{Name: "Point", BaseName: "Base", Fields: []string{"x", "y"}},
	)
	def, _ := table.Lookup("Point")
	return def
}

func TestStoreAllocatePositionalBinding(t *testing.T) {
	class := storeTestClass(t)
	store := newStore(0)

	inst, err := store.Allocate(class, []int64{1, 2, 3})
	if err != nil {
		t.Fatalf("allocate: %v", err)
	}
	if inst.Class != class {
		t.Fatalf("instance carries wrong dynamic type: %s", inst.Class.Name)
	}
	if inst.Fields["a"] != 1 || inst.Fields["x"] != 2 || inst.Fields["y"] != 3 {
		t.Fatalf("unexpected field binding: %v", inst.Fields)
	}
	if store.Len() != 1 {
		t.Fatalf("expected 1 instance, got %d", store.Len())
	}
}

func TestStoreAllocateArityMismatch(t *testing.T) {
	class := storeTestClass(t)
	store := newStore(0)

	_, err := store.Allocate(class, []int64{1})
	if d, ok := err.(*Diagnostic); !ok || d.Kind != ArityMismatch {
		t.Fatalf("expected %s, got %v", ArityMismatch, err)
	}
}

func TestStoreCopyIsIndependent(t *testing.T) {
	class := storeTestClass(t)
	store := newStore(0)

	inst, err := store.Allocate(class, []int64{1, 2, 3})
	if err != nil {
		t.Fatalf("allocate: %v", err)
	}
	dup, err := store.Copy(inst)
	if err != nil {
		t.Fatalf("copy: %v", err)
	}
	if dup == inst {
		t.Fatalf("copy must allocate a new instance")
	}
	if dup.Class != inst.Class {
		t.Fatalf("copy must keep the dynamic type")
	}

	store.WriteField(dup, "x", 99)
	if store.ReadField(inst, "x") != 2 {
		t.Fatalf("mutating the copy leaked into the original")
	}
	store.WriteField(inst, "a", 7)
	if store.ReadField(dup, "a") != 1 {
		t.Fatalf("mutating the original leaked into the copy")
	}
}

func TestStoreQuota(t *testing.T) {
	class := storeTestClass(t)
	store := newStore(2)

	first, err := store.Allocate(class, []int64{1, 2, 3})
	if err != nil {
		t.Fatalf("first allocate: %v", err)
	}
	if _, err := store.Copy(first); err != nil {
		t.Fatalf("second allocate: %v", err)
	}
	if _, err := store.Allocate(class, []int64{4, 5, 6}); err == nil {
		t.Fatalf("expected instance quota error")
	}
}
