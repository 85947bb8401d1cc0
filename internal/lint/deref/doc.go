// Package deref finds reference operations the compiler would perform by
// itself: explicit `__deref`/`__deref_mut` calls in positions where the
// operator form works, borrows that auto-deref immediately unwinds, manual
// dereferences already implied by auto-deref, and `ref` bindings that create
// a reference to a reference.
//
// The pass walks each body once, outer expressions before operands. A chain
// of reference operations is recognized top-down by a small state machine:
// the outermost operation opens a state, each inner operation either extends
// or breaks it, and the first non-reference operand finalizes the state into
// a finding anchored at the outermost node. `ref` bindings are tracked
// separately per binding across the whole body and flushed when the body's
// walk completes.
//
// Findings carry rewrites built from source snippets. A snippet that cannot
// be sliced exactly (directive-generated code) downgrades the suggestion or
// drops it; a missed finding is acceptable, a wrong rewrite is not.
package deref
