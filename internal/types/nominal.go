package types

import (
	"fmt"
	"slices"

	"fortio.org/safecast"

	"surgelint/internal/source"
)

// StructField describes a single field inside a nominal type.
type StructField struct {
	Name source.StringID
	Type TypeID
}

// NominalInfo stores metadata shared by struct, union and enum types.
// TypeArgs hold instantiated generic arguments; ValueArgs hold const generic
// values already evaluated by the compiler.
type NominalInfo struct {
	Name      source.StringID
	Decl      source.Span
	Fields    []StructField
	TypeArgs  []TypeID
	ValueArgs []uint64
}

// RegisterNominal allocates a nominal type slot of the given kind
// (KindStruct, KindUnion or KindEnum) and returns its TypeID.
func (in *Interner) RegisterNominal(kind Kind, name source.StringID, decl source.Span) TypeID {
	switch kind {
	case KindStruct, KindUnion, KindEnum:
	default:
		return NoTypeID
	}
	slot := in.appendNominalInfo(NominalInfo{Name: name, Decl: decl})
	return in.internRaw(Type{Kind: kind, Payload: slot})
}

// RegisterStruct allocates a nominal struct type slot and returns its TypeID.
func (in *Interner) RegisterStruct(name source.StringID, decl source.Span) TypeID {
	return in.RegisterNominal(KindStruct, name, decl)
}

// SetNominalFields stores the resolved field descriptors for the nominal type.
func (in *Interner) SetNominalFields(typeID TypeID, fields []StructField) {
	info := in.nominalInfo(typeID)
	if info == nil {
		return
	}
	info.Fields = cloneStructFields(fields)
}

// SetNominalArgs stores instantiated generic arguments for the nominal type.
func (in *Interner) SetNominalArgs(typeID TypeID, typeArgs []TypeID, valueArgs []uint64) {
	info := in.nominalInfo(typeID)
	if info == nil {
		return
	}
	info.TypeArgs = cloneTypeArgs(typeArgs)
	info.ValueArgs = slices.Clone(valueArgs)
}

// NominalInfo returns metadata for the provided nominal TypeID.
func (in *Interner) NominalInfo(typeID TypeID) (*NominalInfo, bool) {
	info := in.nominalInfo(typeID)
	if info == nil {
		return nil, false
	}
	return info, true
}

// NominalField returns the declared type of the named field, if any.
func (in *Interner) NominalField(typeID TypeID, name source.StringID) (TypeID, bool) {
	info := in.nominalInfo(typeID)
	if info == nil {
		return NoTypeID, false
	}
	for _, f := range info.Fields {
		if f.Name == name {
			return f.Type, true
		}
	}
	return NoTypeID, false
}

// NominalArgs returns the instantiated generic type arguments.
func (in *Interner) NominalArgs(typeID TypeID) []TypeID {
	info := in.nominalInfo(typeID)
	if info == nil {
		return nil
	}
	return info.TypeArgs
}

func (in *Interner) nominalInfo(typeID TypeID) *NominalInfo {
	if typeID == NoTypeID {
		return nil
	}
	tt, ok := in.Lookup(typeID)
	if !ok {
		return nil
	}
	switch tt.Kind {
	case KindStruct, KindUnion, KindEnum:
	default:
		return nil
	}
	if tt.Payload == 0 || int(tt.Payload) >= len(in.nominals) {
		return nil
	}
	return &in.nominals[tt.Payload]
}

func (in *Interner) appendNominalInfo(info NominalInfo) uint32 {
	in.nominals = append(in.nominals, NominalInfo{
		Name:      info.Name,
		Decl:      info.Decl,
		Fields:    cloneStructFields(info.Fields),
		TypeArgs:  cloneTypeArgs(info.TypeArgs),
		ValueArgs: slices.Clone(info.ValueArgs),
	})
	slot, err := safecast.Conv[uint32](len(in.nominals) - 1)
	if err != nil {
		panic(fmt.Errorf("nominal info overflow: %w", err))
	}
	return slot
}

func cloneStructFields(fields []StructField) []StructField {
	if len(fields) == 0 {
		return nil
	}
	return slices.Clone(fields)
}

func cloneTypeArgs(args []TypeID) []TypeID {
	if len(args) == 0 {
		return nil
	}
	return slices.Clone(args)
}
