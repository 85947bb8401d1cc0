package types

import (
	"fmt"
	"slices"

	"fortio.org/safecast"
)

// FnInfo stores metadata for function and closure types.
type FnInfo struct {
	Params []TypeID // parameter types, in order
	Result TypeID   // return type
}

// RegisterFn creates or finds a function type with the given signature.
func (in *Interner) RegisterFn(params []TypeID, result TypeID) TypeID {
	return in.registerCallable(KindFn, params, result)
}

// RegisterClosure creates a closure type. Closures are never deduplicated:
// two closures with the same signature are still distinct types.
func (in *Interner) RegisterClosure(params []TypeID, result TypeID) TypeID {
	slot := in.appendFnInfo(FnInfo{Params: cloneTypeArgs(params), Result: result})
	return in.internRaw(Type{Kind: KindClosure, Payload: slot})
}

func (in *Interner) registerCallable(kind Kind, params []TypeID, result TypeID) TypeID {
	for id := TypeID(1); int(id) < len(in.types); id++ {
		tt := in.types[id]
		if tt.Kind != kind {
			continue
		}
		if int(tt.Payload) >= len(in.fns) {
			continue
		}
		info := in.fns[tt.Payload]
		if info.Result == result && slices.Equal(info.Params, params) {
			return id
		}
	}
	slot := in.appendFnInfo(FnInfo{
		Params: cloneTypeArgs(params),
		Result: result,
	})
	return in.internRaw(Type{Kind: kind, Payload: slot})
}

// FnInfo retrieves function or closure type metadata by TypeID.
func (in *Interner) FnInfo(id TypeID) (*FnInfo, bool) {
	tt, ok := in.Lookup(id)
	if !ok || (tt.Kind != KindFn && tt.Kind != KindClosure) {
		return nil, false
	}
	if tt.Payload == 0 || int(tt.Payload) >= len(in.fns) {
		return nil, false
	}
	return &in.fns[tt.Payload], true
}

func (in *Interner) appendFnInfo(info FnInfo) uint32 {
	in.fns = append(in.fns, FnInfo{
		Params: cloneTypeArgs(info.Params),
		Result: info.Result,
	})
	slot, err := safecast.Conv[uint32](len(in.fns) - 1)
	if err != nil {
		panic(fmt.Errorf("fn info overflow: %w", err))
	}
	return slot
}
