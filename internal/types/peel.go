package types

// maxTypeDepth bounds recursive walks over type terms. Interned IDs cannot
// form cycles through Elem/args, but a corrupt bundle could.
const maxTypeDepth = 64

// PeelRefs removes every leading reference layer and returns the referent
// together with the number of layers removed.
func (in *Interner) PeelRefs(id TypeID) (TypeID, uint32) {
	var depth uint32
	for depth < maxTypeDepth {
		tt, ok := in.Lookup(id)
		if !ok || tt.Kind != KindReference {
			return id, depth
		}
		id = tt.Elem
		depth++
	}
	return id, depth
}

// RefDepth returns how many reference layers wrap the type.
func (in *Interner) RefDepth(id TypeID) uint32 {
	_, depth := in.PeelRefs(id)
	return depth
}

// IsRef reports whether the type is a reference; mutable tells which flavor.
func (in *Interner) IsRef(id TypeID) (isRef, mutable bool) {
	tt, ok := in.Lookup(id)
	if !ok || tt.Kind != KindReference {
		return false, false
	}
	return true, tt.Mutable
}

// Pointee returns the target of a reference, raw pointer or own type.
func (in *Interner) Pointee(id TypeID) (TypeID, bool) {
	tt, ok := in.Lookup(id)
	if !ok {
		return NoTypeID, false
	}
	switch tt.Kind {
	case KindReference, KindPointer, KindOwn:
		return tt.Elem, true
	default:
		return NoTypeID, false
	}
}

// SamePointee reports whether two reference types share the same referent,
// ignoring reference mutability. Non-reference inputs report false.
func (in *Interner) SamePointee(a, b TypeID) bool {
	ta, okA := in.Lookup(a)
	tb, okB := in.Lookup(b)
	if !okA || !okB || ta.Kind != KindReference || tb.Kind != KindReference {
		return false
	}
	return ta.Elem == tb.Elem
}

// ContainsInfer reports whether the type term contains an inference hole,
// an opaque type or the invalid type anywhere inside. Fields of nominal
// types do not participate; instantiated generic arguments do.
func (in *Interner) ContainsInfer(id TypeID) bool {
	return in.walkContains(id, 0, func(tt Type) bool {
		switch tt.Kind {
		case KindInfer, KindOpaque, KindInvalid:
			return true
		}
		return false
	})
}

// ContainsParams reports whether the type term mentions a generic type
// parameter anywhere inside.
func (in *Interner) ContainsParams(id TypeID) bool {
	return in.walkContains(id, 0, func(tt Type) bool {
		return tt.Kind == KindParam
	})
}

func (in *Interner) walkContains(id TypeID, depth int, hit func(Type) bool) bool {
	if depth > maxTypeDepth {
		return false
	}
	if id == NoTypeID {
		// отсутствующий тип считаем дырой: по нему ничего нельзя гарантировать
		return true
	}
	tt, ok := in.Lookup(id)
	if !ok {
		return true
	}
	if hit(tt) {
		return true
	}
	switch tt.Kind {
	case KindArray, KindPointer, KindReference, KindOwn:
		return in.walkContains(tt.Elem, depth+1, hit)
	case KindTuple:
		info, ok := in.TupleInfo(id)
		if !ok {
			return true
		}
		for _, elem := range info.Elems {
			if in.walkContains(elem, depth+1, hit) {
				return true
			}
		}
	case KindFn, KindClosure:
		info, ok := in.FnInfo(id)
		if !ok {
			return true
		}
		for _, p := range info.Params {
			if in.walkContains(p, depth+1, hit) {
				return true
			}
		}
		if info.Result != NoTypeID && in.walkContains(info.Result, depth+1, hit) {
			return true
		}
	case KindStruct, KindUnion, KindEnum:
		for _, arg := range in.NominalArgs(id) {
			if in.walkContains(arg, depth+1, hit) {
				return true
			}
		}
	}
	return false
}
