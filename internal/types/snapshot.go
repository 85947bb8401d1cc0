package types

import (
	"fmt"
	"slices"
)

// Snapshot is the full content of an interner in slot order: the type table
// plus every side table, sentinels included. The bundle codec serializes it
// as-is and replays it on load so TypeIDs stay identical across the wire.
type Snapshot struct {
	Types       []Type
	Nominals    []NominalInfo
	Fns         []FnInfo
	Tuples      []TupleInfo
	Params      []TypeParamInfo
	Projections []ProjectionInfo
	Written     []Written
}

// Snapshot copies the descriptor tables.
func (in *Interner) Snapshot() Snapshot {
	return Snapshot{
		Types:       slices.Clone(in.types),
		Nominals:    slices.Clone(in.nominals),
		Fns:         slices.Clone(in.fns),
		Tuples:      slices.Clone(in.tuples),
		Params:      slices.Clone(in.params),
		Projections: slices.Clone(in.projections),
		Written:     slices.Clone(in.written),
	}
}

// Restore appends everything a snapshot holds beyond the seeded builtins and
// sentinel slots. The receiver must come fresh from NewInterner; the builtin
// prefix of the snapshot must match what NewInterner produced, otherwise the
// snapshot was written under an incompatible seeding and is rejected.
func (in *Interner) Restore(snap Snapshot) error {
	if len(snap.Types) < len(in.types) {
		return fmt.Errorf("type table shorter than the builtin prefix (%d < %d)", len(snap.Types), len(in.types))
	}
	for i := range in.types {
		if snap.Types[i] != in.types[i] {
			return fmt.Errorf("builtin type slot %d does not match this seeding", i)
		}
	}
	if len(snap.Nominals) == 0 || len(snap.Fns) == 0 || len(snap.Tuples) == 0 ||
		len(snap.Params) == 0 || len(snap.Projections) == 0 || len(snap.Written) == 0 {
		return fmt.Errorf("side table missing its sentinel slot")
	}

	// side tables first so payload checks on the types can see them
	for _, info := range snap.Nominals[1:] {
		in.appendNominalInfo(info)
	}
	for _, info := range snap.Fns[1:] {
		in.appendFnInfo(info)
	}
	for _, info := range snap.Tuples[1:] {
		in.appendTupleInfo(info)
	}
	for _, info := range snap.Params[1:] {
		in.appendParamInfo(info)
	}
	for _, info := range snap.Projections[1:] {
		in.appendProjectionInfo(info)
	}
	in.written = append(in.written, snap.Written[1:]...)

	total := len(snap.Types)
	for i := len(in.types); i < total; i++ {
		t := snap.Types[i]
		if t.Kind == KindInvalid {
			return fmt.Errorf("type slot %d is invalid", i)
		}
		if int(t.Elem) >= total {
			return fmt.Errorf("type slot %d: element %d out of range", i, t.Elem)
		}
		if err := in.checkPayload(i, t); err != nil {
			return err
		}
		in.internRaw(t)
	}
	return nil
}

func (in *Interner) checkPayload(slot int, t Type) error {
	var limit int
	switch t.Kind {
	case KindStruct, KindUnion, KindEnum:
		limit = len(in.nominals)
	case KindFn, KindClosure:
		limit = len(in.fns)
	case KindTuple:
		limit = len(in.tuples)
	case KindParam:
		limit = len(in.params)
	case KindProjection:
		limit = len(in.projections)
	default:
		if t.Payload != 0 {
			return fmt.Errorf("type slot %d: unexpected payload on kind %s", slot, t.Kind)
		}
		return nil
	}
	if t.Payload == 0 || int(t.Payload) >= limit {
		return fmt.Errorf("type slot %d: payload %d out of range for kind %s", slot, t.Payload, t.Kind)
	}
	return nil
}
