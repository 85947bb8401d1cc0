package types

import (
	"fmt"

	"fortio.org/safecast"

	"surgelint/internal/source"
)

// Builtins stores TypeIDs for common primitive types.
type Builtins struct {
	Invalid TypeID
	Unit    TypeID
	Nothing TypeID
	Bool    TypeID
	String  TypeID
	Int     TypeID
	Uint    TypeID
	Float   TypeID
	Infer   TypeID
	Opaque  TypeID
	Dynamic TypeID
}

// Interner provides stable TypeIDs by hashing structural descriptors.
// Nominal and structured kinds get unique slots in side tables; the bundle
// loader reconstructs the tables in slot order so IDs stay dense.
type Interner struct {
	Strings *source.Interner

	types       []Type
	index       map[typeKey]TypeID
	builtins    Builtins
	nominals    []NominalInfo
	fns         []FnInfo
	tuples      []TupleInfo
	params      []TypeParamInfo
	projections []ProjectionInfo
	written     []Written
}

// NewInterner constructs an interner seeded with built-in primitives.
func NewInterner(strings *source.Interner) *Interner {
	if strings == nil {
		strings = source.NewInterner()
	}
	in := &Interner{
		Strings: strings,
		index:   make(map[typeKey]TypeID, 64),
	}
	// reserve slot 0 of each side table as an invalid sentinel
	in.nominals = append(in.nominals, NominalInfo{})
	in.fns = append(in.fns, FnInfo{})
	in.tuples = append(in.tuples, TupleInfo{})
	in.params = append(in.params, TypeParamInfo{})
	in.projections = append(in.projections, ProjectionInfo{})
	in.written = append(in.written, Written{})

	in.builtins.Invalid = in.internRaw(Type{Kind: KindInvalid})
	in.builtins.Unit = in.Intern(Type{Kind: KindUnit})
	in.builtins.Nothing = in.Intern(Type{Kind: KindNothing})
	in.builtins.Bool = in.Intern(Type{Kind: KindBool})
	in.builtins.String = in.Intern(Type{Kind: KindString})
	in.builtins.Int = in.Intern(MakeInt(WidthAny))
	in.builtins.Uint = in.Intern(MakeUint(WidthAny))
	in.builtins.Float = in.Intern(MakeFloat(WidthAny))
	in.builtins.Infer = in.Intern(Type{Kind: KindInfer})
	in.builtins.Opaque = in.Intern(Type{Kind: KindOpaque})
	in.builtins.Dynamic = in.Intern(Type{Kind: KindDynamic})
	return in
}

// Builtins returns TypeIDs for primitive types.
func (in *Interner) Builtins() Builtins {
	return in.builtins
}

// Intern ensures the provided descriptor has a stable TypeID.
func (in *Interner) Intern(t Type) TypeID {
	if t.Kind == KindInvalid {
		return NoTypeID
	}
	key := typeKey(t)
	if id, ok := in.index[key]; ok {
		return id
	}
	return in.internRaw(t)
}

// internRaw adds the descriptor to the storage without consulting the map.
func (in *Interner) internRaw(t Type) TypeID {
	lenTypes, err := safecast.Conv[uint32](len(in.types))
	if err != nil {
		panic(fmt.Errorf("len(types) overflow: %w", err))
	}
	id := TypeID(lenTypes)
	in.types = append(in.types, t)
	in.index[typeKey(t)] = id
	return id
}

// Lookup returns the descriptor for a TypeID.
func (in *Interner) Lookup(id TypeID) (Type, bool) {
	if id == NoTypeID || int(id) >= len(in.types) {
		return Type{}, false
	}
	return in.types[id], true
}

// MustLookup panics when id is invalid.
func (in *Interner) MustLookup(id TypeID) Type {
	tt, ok := in.Lookup(id)
	if !ok {
		panic("types: invalid TypeID")
	}
	return tt
}

// Len returns the number of interned types including the invalid sentinel.
func (in *Interner) Len() int {
	return len(in.types)
}

// typeKey is the hash identity of a descriptor. Payload participates so each
// registered nominal/fn/tuple slot keeps its own TypeID.
type typeKey struct {
	Kind    Kind
	Elem    TypeID
	Count   uint32
	Width   Width
	Mutable bool
	Payload uint32
}
