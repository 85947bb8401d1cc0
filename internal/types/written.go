package types

import (
	"fmt"

	"fortio.org/safecast"

	"surgelint/internal/source"
)

// WrittenID references a node in the written-type arena. The zero ID means
// the source carried no annotation at that position.
type WrittenID uint32

// NoWrittenID marks the absence of an annotation.
const NoWrittenID WrittenID = 0

// IsValid reports whether the ID refers to an allocated node.
func (id WrittenID) IsValid() bool { return id != NoWrittenID }

// WrittenKind tags one node of a written (source-level) type.
type WrittenKind uint8

const (
	WrittenInvalid WrittenKind = iota
	WrittenNamed                // `string`, `Wrapper<int>`, a type parameter by name
	WrittenRef                  // `&T`, `&mut T`
	WrittenPtr                  // `*T`
	WrittenOwn                  // `own T`
	WrittenArray                // `[T; n]`, `[T]`
	WrittenTuple                // `(A, B)`
	WrittenFn                   // `fn(A, B) -> R`
	WrittenInfer                // `_`
)

func (k WrittenKind) String() string {
	switch k {
	case WrittenInvalid:
		return "invalid"
	case WrittenNamed:
		return "named"
	case WrittenRef:
		return "ref"
	case WrittenPtr:
		return "ptr"
	case WrittenOwn:
		return "own"
	case WrittenArray:
		return "array"
	case WrittenTuple:
		return "tuple"
	case WrittenFn:
		return "fn"
	case WrittenInfer:
		return "infer"
	default:
		return "unknown"
	}
}

// Written is one node of an annotation as the user wrote it. The compiler
// exports these alongside resolved types because coercion stability depends
// on what the source spells out, not on what inference filled in: `&Wrapper<_>`
// and `&Wrapper<int>` resolve to the same TypeID but only the second pins the
// target of an auto-deref chain.
type Written struct {
	Kind    WrittenKind
	Name    source.StringID // Named: final path segment
	Args    []WrittenID     // Named: explicit type arguments; Tuple: elements
	Elem    WrittenID       // Ref/Ptr/Own/Array: element
	Params  []WrittenID     // Fn: parameters
	Result  WrittenID       // Fn: result, NoWrittenID for an implied unit
	Mutable bool            // Ref: `&mut`
	Count   uint32          // Array: length, ArrayDynamicLength for `[T]`
}

// AddWritten appends a node to the written-type arena. Unlike Intern there is
// no deduplication: every annotation keeps its own tree so spans and IDs map
// one-to-one with the source.
func (in *Interner) AddWritten(w Written) WrittenID {
	lenWritten, err := safecast.Conv[uint32](len(in.written))
	if err != nil {
		panic(fmt.Errorf("len(written) overflow: %w", err))
	}
	id := WrittenID(lenWritten)
	in.written = append(in.written, w)
	return id
}

// Written returns the node for the given ID.
func (in *Interner) Written(id WrittenID) (Written, bool) {
	if id == NoWrittenID || int(id) >= len(in.written) {
		return Written{}, false
	}
	return in.written[id], true
}

// WrittenLen returns the arena size including the invalid sentinel.
func (in *Interner) WrittenLen() int {
	return len(in.written)
}

// WrittenPeelRefs strips reference nodes off a written type and returns the
// first non-reference node together with the number of nodes removed.
func (in *Interner) WrittenPeelRefs(id WrittenID) (WrittenID, uint32) {
	var count uint32
	for count < maxTypeDepth {
		w, ok := in.Written(id)
		if !ok || w.Kind != WrittenRef {
			break
		}
		id = w.Elem
		count++
	}
	return id, count
}

// WrittenStable reports whether binding any value to an annotation of this
// shape resolves auto-deref the same way an explicit deref chain would. The
// annotation must be a reference to exactly one level, and the pointee must
// not leave room for inference: `&Wrapper<int>` is stable, `&Wrapper<_>` and
// `&&string` are not.
func (in *Interner) WrittenStable(id WrittenID) bool {
	id, count := in.WrittenPeelRefs(id)
	if count != 1 {
		return false
	}
	w, ok := in.Written(id)
	if !ok {
		return false
	}
	switch w.Kind {
	case WrittenNamed:
		for _, arg := range w.Args {
			if in.WrittenContainsInfer(arg) {
				return false
			}
		}
		return true
	case WrittenPtr, WrittenOwn, WrittenArray, WrittenTuple, WrittenFn:
		return true
	default:
		// WrittenInfer, WrittenInvalid; WrittenRef is unreachable after the peel.
		return false
	}
}

// WrittenContainsInfer reports whether any node of the annotation is an
// inference hole: `_`, `Wrapper<_>`, `[_]`.
func (in *Interner) WrittenContainsInfer(id WrittenID) bool {
	w, ok := in.Written(id)
	if !ok {
		return true
	}
	switch w.Kind {
	case WrittenRef, WrittenPtr, WrittenOwn, WrittenArray:
		return in.WrittenContainsInfer(w.Elem)
	case WrittenTuple:
		for _, elem := range w.Args {
			if in.WrittenContainsInfer(elem) {
				return true
			}
		}
		return false
	case WrittenFn:
		for _, param := range w.Params {
			if in.WrittenContainsInfer(param) {
				return true
			}
		}
		return w.Result != NoWrittenID && in.WrittenContainsInfer(w.Result)
	case WrittenNamed:
		for _, arg := range w.Args {
			if in.WrittenContainsInfer(arg) {
				return true
			}
		}
		return false
	case WrittenInfer:
		return true
	default:
		return true
	}
}
