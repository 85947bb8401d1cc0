package hir

import "surgelint/internal/types"

// AdjustKind tags one coercion step inference applied to an expression.
type AdjustKind uint8

const (
	// AdjustDeref peels one level: a reference, an `own`, or a `__deref` call.
	AdjustDeref AdjustKind = iota + 1
	// AdjustBorrow takes a reference to the value in place.
	AdjustBorrow
	// AdjustOther covers remaining coercions the linter does not reason about.
	AdjustOther
)

func (k AdjustKind) String() string {
	switch k {
	case AdjustDeref:
		return "deref"
	case AdjustBorrow:
		return "borrow"
	case AdjustOther:
		return "other"
	default:
		return "invalid"
	}
}

// Adjust is one step of an expression's coercion list, applied in order.
// Target is the type after this step.
type Adjust struct {
	Kind    AdjustKind
	Target  types.TypeID
	Mutable bool // AdjustBorrow: `&mut` was inserted
}
