package scope

import (
	"testing"

	"github.com/dr8co/zinc/types"
)

// TestBuiltinIDs pins the fixed numeric identities downstream
// consumers depend on.
func TestBuiltinIDs(t *testing.T) {
	if BuiltinPointID != 0 || BuiltinSignatureID != 1 || BuiltinTokenID != 2 {
		t.Fatalf("built-in ids moved: Point=%d Signature=%d Token=%d",
			BuiltinPointID, BuiltinSignatureID, BuiltinTokenID)
	}
	root := NewRoot()
	for id, name := range BuiltinNames {
		item, ok := root.Lookup(name)
		if !ok {
			t.Fatalf("built-in %q missing from the root scope", name)
		}
		if item.ID != id {
			t.Errorf("%q has id %d, want %d", name, item.ID, id)
		}
	}
}

// TestNextIDContiguous checks the id index hands out a contiguous
// range starting at the built-in count, and that ResetIndex restores
// the baseline.
func TestNextIDContiguous(t *testing.T) {
	ResetIndex()
	for want := builtinCount; want < builtinCount+5; want++ {
		if got := NextID(); got != want {
			t.Fatalf("NextID() = %d, want %d", got, want)
		}
	}
	ResetIndex()
	if got := NextID(); got != builtinCount {
		t.Fatalf("after ResetIndex, NextID() = %d, want %d", got, builtinCount)
	}
}

func TestDuplicateDefineRejected(t *testing.T) {
	s := New(nil)
	if err := s.Define(&Item{Kind: Variable, Name: "x"}); err != nil {
		t.Fatalf("first Define: %v", err)
	}
	if err := s.Define(&Item{Kind: Variable, Name: "x"}); err == nil {
		t.Fatal("expected a duplicate-declaration error")
	}
}

func TestShadowingFromInnerScope(t *testing.T) {
	outer := New(nil)
	_ = outer.Define(&Item{Kind: Variable, Name: "x", Type: types.UintType(8)})

	inner := New(outer)
	if err := inner.Define(&Item{Kind: Variable, Name: "x", Type: types.UintType(16)}); err != nil {
		t.Fatalf("shadowing from an inner scope should be permitted: %v", err)
	}

	item, ok := inner.Lookup("x")
	if !ok || item.Type.Width != 16 {
		t.Fatalf("inner lookup should find the shadowing binding, got %+v", item)
	}
	item, ok = outer.Lookup("x")
	if !ok || item.Type.Width != 8 {
		t.Fatalf("outer lookup should still find the original, got %+v", item)
	}
}

func TestLookupWalksParentChain(t *testing.T) {
	root := New(nil)
	_ = root.Define(&Item{Kind: Constant, Name: "LIMIT"})
	leaf := New(New(New(root)))
	if _, ok := leaf.Lookup("LIMIT"); !ok {
		t.Fatal("lookup should walk up to the root scope")
	}
	if _, ok := leaf.LookupLocal("LIMIT"); ok {
		t.Fatal("LookupLocal must not consult parents")
	}
}

func TestLookupPath(t *testing.T) {
	root := New(nil)
	mathInner := New(root)
	_ = mathInner.Define(&Item{Kind: Constant, Name: "PI_APPROX"})
	_ = root.Define(&Item{Kind: Module, Name: "math", Inner: mathInner})

	item, err := root.LookupPath([]string{"math", "PI_APPROX"})
	if err != nil {
		t.Fatalf("LookupPath: %v", err)
	}
	if item.Name != "PI_APPROX" {
		t.Errorf("resolved %q, want PI_APPROX", item.Name)
	}

	if _, err := root.LookupPath([]string{"math", "TAU"}); err == nil {
		t.Error("expected an error for a missing member")
	}
	if _, err := root.LookupPath([]string{"nowhere", "x"}); err == nil {
		t.Error("expected an error for an undeclared root segment")
	}
}
