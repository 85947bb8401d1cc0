package types

import (
	"testing"

	"surgelint/internal/source"
)

func TestWrittenPeelRefs(t *testing.T) {
	in := NewInterner(source.NewInterner())
	str := in.AddWritten(Written{Kind: WrittenNamed, Name: in.Strings.Intern("string")})
	one := in.AddWritten(Written{Kind: WrittenRef, Elem: str})
	two := in.AddWritten(Written{Kind: WrittenRef, Elem: one, Mutable: true})

	if id, count := in.WrittenPeelRefs(two); id != str || count != 2 {
		t.Fatalf("WrittenPeelRefs(&&string) = (%d, %d), want (%d, 2)", id, count, str)
	}
	if id, count := in.WrittenPeelRefs(str); id != str || count != 0 {
		t.Fatalf("WrittenPeelRefs(string) = (%d, %d), want (%d, 0)", id, count, str)
	}
}

func TestWrittenStable(t *testing.T) {
	in := NewInterner(source.NewInterner())
	intName := in.Strings.Intern("int")
	wrapper := in.Strings.Intern("Wrapper")

	intW := in.AddWritten(Written{Kind: WrittenNamed, Name: intName})
	strW := in.AddWritten(Written{Kind: WrittenNamed, Name: in.Strings.Intern("string")})
	inferW := in.AddWritten(Written{Kind: WrittenInfer})

	ref := func(elem WrittenID) WrittenID {
		return in.AddWritten(Written{Kind: WrittenRef, Elem: elem})
	}

	cases := []struct {
		name string
		id   WrittenID
		want bool
	}{
		{"ref to bare name", ref(strW), true},
		{"ref to pinned args", ref(in.AddWritten(Written{Kind: WrittenNamed, Name: wrapper, Args: []WrittenID{intW}})), true},
		{"ref to open args", ref(in.AddWritten(Written{Kind: WrittenNamed, Name: wrapper, Args: []WrittenID{inferW}})), false},
		{"double ref", ref(ref(strW)), false},
		{"no ref at all", strW, false},
		{"ref to hole", ref(inferW), false},
		{"ref to tuple", ref(in.AddWritten(Written{Kind: WrittenTuple, Args: []WrittenID{intW, strW}})), true},
		{"ref to fn", ref(in.AddWritten(Written{Kind: WrittenFn, Params: []WrittenID{intW}, Result: strW})), true},
		// array shapes delimit the target themselves, elements may stay open
		{"ref to open array", ref(in.AddWritten(Written{Kind: WrittenArray, Elem: inferW, Count: 3})), true},
	}
	for _, tc := range cases {
		if got := in.WrittenStable(tc.id); got != tc.want {
			t.Errorf("%s: WrittenStable = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestWrittenContainsInfer(t *testing.T) {
	in := NewInterner(source.NewInterner())
	wrapper := in.Strings.Intern("Wrapper")

	intW := in.AddWritten(Written{Kind: WrittenNamed, Name: in.Strings.Intern("int")})
	inferW := in.AddWritten(Written{Kind: WrittenInfer})

	cases := []struct {
		name string
		id   WrittenID
		want bool
	}{
		{"bare name", intW, false},
		{"hole", inferW, true},
		{"pinned args", in.AddWritten(Written{Kind: WrittenNamed, Name: wrapper, Args: []WrittenID{intW}}), false},
		{"open args", in.AddWritten(Written{Kind: WrittenNamed, Name: wrapper, Args: []WrittenID{inferW}}), true},
		{"open slice", in.AddWritten(Written{Kind: WrittenArray, Elem: inferW, Count: ArrayDynamicLength}), true},
		{"tuple with hole", in.AddWritten(Written{Kind: WrittenTuple, Args: []WrittenID{intW, inferW}}), true},
		{"fn implied result", in.AddWritten(Written{Kind: WrittenFn, Params: []WrittenID{intW}}), false},
		{"fn hole result", in.AddWritten(Written{Kind: WrittenFn, Params: []WrittenID{intW}, Result: inferW}), true},
		{"ref to hole", in.AddWritten(Written{Kind: WrittenRef, Elem: inferW}), true},
	}
	for _, tc := range cases {
		if got := in.WrittenContainsInfer(tc.id); got != tc.want {
			t.Errorf("%s: WrittenContainsInfer = %v, want %v", tc.name, got, tc.want)
		}
	}
}
