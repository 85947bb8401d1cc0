package types

import (
	"fmt"

	"fortio.org/safecast"

	"surgelint/internal/source"
)

// TypeParamInfo stores metadata for a generic type parameter.
type TypeParamInfo struct {
	Name  source.StringID
	Index uint32 // position in the declaring item's generic list
}

// ProjectionInfo stores metadata for an associated type projection, e.g. the
// item type selected through a generic bound.
type ProjectionInfo struct {
	Name source.StringID // associated item name
	Base TypeID          // the type the projection is taken from
}

// RegisterTypeParam allocates a generic parameter type and returns its TypeID.
// Parameters with the same name in different items must be registered
// separately; the interner never merges them.
func (in *Interner) RegisterTypeParam(name source.StringID, index uint32) TypeID {
	slot := in.appendParamInfo(TypeParamInfo{Name: name, Index: index})
	return in.internRaw(Type{Kind: KindParam, Payload: slot})
}

// TypeParamInfo retrieves generic parameter metadata by TypeID.
func (in *Interner) TypeParamInfo(id TypeID) (*TypeParamInfo, bool) {
	tt, ok := in.Lookup(id)
	if !ok || tt.Kind != KindParam {
		return nil, false
	}
	if tt.Payload == 0 || int(tt.Payload) >= len(in.params) {
		return nil, false
	}
	return &in.params[tt.Payload], true
}

// RegisterProjection allocates an associated type projection.
func (in *Interner) RegisterProjection(name source.StringID, base TypeID) TypeID {
	slot := in.appendProjectionInfo(ProjectionInfo{Name: name, Base: base})
	return in.internRaw(Type{Kind: KindProjection, Payload: slot})
}

// ProjectionInfo retrieves projection metadata by TypeID.
func (in *Interner) ProjectionInfo(id TypeID) (*ProjectionInfo, bool) {
	tt, ok := in.Lookup(id)
	if !ok || tt.Kind != KindProjection {
		return nil, false
	}
	if tt.Payload == 0 || int(tt.Payload) >= len(in.projections) {
		return nil, false
	}
	return &in.projections[tt.Payload], true
}

func (in *Interner) appendParamInfo(info TypeParamInfo) uint32 {
	in.params = append(in.params, info)
	slot, err := safecast.Conv[uint32](len(in.params) - 1)
	if err != nil {
		panic(fmt.Errorf("type param info overflow: %w", err))
	}
	return slot
}

func (in *Interner) appendProjectionInfo(info ProjectionInfo) uint32 {
	in.projections = append(in.projections, info)
	slot, err := safecast.Conv[uint32](len(in.projections) - 1)
	if err != nil {
		panic(fmt.Errorf("projection info overflow: %w", err))
	}
	return slot
}
