package types

import (
	"fmt"
	"slices"

	"fortio.org/safecast"
)

// TupleInfo stores element types for tuple types.
type TupleInfo struct {
	Elems []TypeID
}

// RegisterTuple creates or finds a tuple type with the given elements.
func (in *Interner) RegisterTuple(elems []TypeID) TypeID {
	for id := TypeID(1); int(id) < len(in.types); id++ {
		tt := in.types[id]
		if tt.Kind != KindTuple {
			continue
		}
		if int(tt.Payload) >= len(in.tuples) {
			continue
		}
		if slices.Equal(in.tuples[tt.Payload].Elems, elems) {
			return id
		}
	}
	slot := in.appendTupleInfo(TupleInfo{Elems: cloneTypeArgs(elems)})
	return in.internRaw(Type{Kind: KindTuple, Payload: slot})
}

// TupleInfo retrieves tuple metadata by TypeID.
func (in *Interner) TupleInfo(id TypeID) (*TupleInfo, bool) {
	tt, ok := in.Lookup(id)
	if !ok || tt.Kind != KindTuple {
		return nil, false
	}
	if tt.Payload == 0 || int(tt.Payload) >= len(in.tuples) {
		return nil, false
	}
	return &in.tuples[tt.Payload], true
}

func (in *Interner) appendTupleInfo(info TupleInfo) uint32 {
	in.tuples = append(in.tuples, TupleInfo{Elems: cloneTypeArgs(info.Elems)})
	slot, err := safecast.Conv[uint32](len(in.tuples) - 1)
	if err != nil {
		panic(fmt.Errorf("tuple info overflow: %w", err))
	}
	return slot
}
