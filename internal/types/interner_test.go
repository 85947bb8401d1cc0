package types

import (
	"testing"

	"surgelint/internal/source"
)

func TestInternerBuiltins(t *testing.T) {
	in := NewInterner(nil)
	b := in.Builtins()
	if b.Unit == NoTypeID || b.Bool == NoTypeID {
		t.Fatalf("builtins not initialized")
	}
	unit, _ := in.Lookup(b.Unit)
	if unit.Kind != KindUnit {
		t.Fatalf("expected unit kind, got %v", unit.Kind)
	}
}

func TestInternerDeduplicatesDescriptors(t *testing.T) {
	in := NewInterner(nil)
	elem := in.Intern(Type{Kind: KindString})
	arr1 := in.Intern(MakeArray(elem, ArrayDynamicLength))
	arr2 := in.Intern(MakeArray(elem, ArrayDynamicLength))
	if arr1 != arr2 {
		t.Fatalf("array types should be deduplicated")
	}
}

func TestReferenceMutabilityAffectsIdentity(t *testing.T) {
	in := NewInterner(nil)
	elem := in.Builtins().Int
	mut := in.Intern(MakeReference(elem, true))
	imm := in.Intern(MakeReference(elem, false))
	if mut == imm {
		t.Fatalf("mutable and immutable references must differ")
	}
}

func TestNominalSlotsStayDistinct(t *testing.T) {
	in := NewInterner(nil)
	name := in.Strings.Intern("Pair")
	a := in.RegisterStruct(name, emptySpan())
	b := in.RegisterStruct(name, emptySpan())
	if a == b {
		t.Fatalf("two registered structs must not share a TypeID")
	}
}

func TestPeelRefs(t *testing.T) {
	in := NewInterner(nil)
	intID := in.Builtins().Int
	one := in.Intern(MakeReference(intID, false))
	two := in.Intern(MakeReference(one, false))
	three := in.Intern(MakeReference(two, true))

	base, depth := in.PeelRefs(three)
	if base != intID {
		t.Errorf("expected referent %d, got %d", intID, base)
	}
	if depth != 3 {
		t.Errorf("expected depth 3, got %d", depth)
	}

	if got := in.RefDepth(intID); got != 0 {
		t.Errorf("expected depth 0 for int, got %d", got)
	}
}

func TestSamePointee(t *testing.T) {
	in := NewInterner(nil)
	intID := in.Builtins().Int
	boolID := in.Builtins().Bool

	refInt := in.Intern(MakeReference(intID, false))
	refMutInt := in.Intern(MakeReference(intID, true))
	refBool := in.Intern(MakeReference(boolID, false))

	if !in.SamePointee(refInt, refMutInt) {
		t.Error("mutability must not affect pointee identity")
	}
	if in.SamePointee(refInt, refBool) {
		t.Error("different pointees must not compare equal")
	}
	if in.SamePointee(intID, refInt) {
		t.Error("non-reference input must report false")
	}
}

func TestContainsInfer(t *testing.T) {
	in := NewInterner(nil)
	b := in.Builtins()

	if in.ContainsInfer(b.Int) {
		t.Error("int must not contain a hole")
	}
	if !in.ContainsInfer(b.Infer) {
		t.Error("infer must contain a hole")
	}
	if !in.ContainsInfer(b.Opaque) {
		t.Error("opaque counts as a hole")
	}

	// Box<_> style: nominal with an inferred argument.
	name := in.Strings.Intern("Box")
	boxed := in.RegisterStruct(name, emptySpan())
	in.SetNominalArgs(boxed, []TypeID{b.Infer}, nil)
	if !in.ContainsInfer(boxed) {
		t.Error("nominal with an inferred argument must contain a hole")
	}

	concrete := in.RegisterStruct(name, emptySpan())
	in.SetNominalArgs(concrete, []TypeID{b.Int}, nil)
	if in.ContainsInfer(concrete) {
		t.Error("nominal with concrete arguments must not contain a hole")
	}

	refToHole := in.Intern(MakeReference(b.Infer, false))
	if !in.ContainsInfer(refToHole) {
		t.Error("hole behind a reference must be found")
	}
}

func TestContainsParams(t *testing.T) {
	in := NewInterner(nil)
	b := in.Builtins()
	tParam := in.RegisterTypeParam(in.Strings.Intern("T"), 0)

	if in.ContainsParams(b.Int) {
		t.Error("int must not contain params")
	}
	if !in.ContainsParams(tParam) {
		t.Error("param type must contain params")
	}

	name := in.Strings.Intern("Vec")
	generic := in.RegisterStruct(name, emptySpan())
	in.SetNominalArgs(generic, []TypeID{tParam}, nil)
	if !in.ContainsParams(generic) {
		t.Error("nominal instantiated with a param must contain params")
	}

	arr := in.Intern(MakeArray(tParam, ArrayDynamicLength))
	if !in.ContainsParams(arr) {
		t.Error("param behind an array must be found")
	}
}

func TestLabel(t *testing.T) {
	in := NewInterner(nil)
	b := in.Builtins()

	cases := []struct {
		id   TypeID
		want string
	}{
		{b.Int, "int"},
		{b.String, "string"},
		{in.Intern(MakeReference(b.String, true)), "&mut string"},
		{in.Intern(MakeOwn(b.Int)), "own int"},
		{in.Intern(MakeArray(b.Bool, ArrayDynamicLength)), "[bool]"},
		{in.Intern(MakeArray(b.Bool, 4)), "[bool; 4]"},
		{in.Intern(MakePointer(b.Int)), "*int"},
	}
	for _, tc := range cases {
		if got := Label(in, tc.id); got != tc.want {
			t.Errorf("Label(%d) = %q, want %q", tc.id, got, tc.want)
		}
	}

	name := in.Strings.Intern("Wrapper")
	wrapper := in.RegisterStruct(name, emptySpan())
	in.SetNominalArgs(wrapper, []TypeID{b.Int}, nil)
	if got := Label(in, wrapper); got != "Wrapper<int>" {
		t.Errorf("expected Wrapper<int>, got %q", got)
	}
}

func emptySpan() source.Span { return source.Span{} }
