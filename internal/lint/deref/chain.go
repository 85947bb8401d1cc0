package deref

import (
	"surgelint/internal/hir"
	"surgelint/internal/source"
	"surgelint/internal/types"
)

const (
	derefMsg  = "this expression creates a reference which is immediately dereferenced by the compiler"
	borrowMsg = "this expression borrows a value which is immediately dereferenced by the compiler"
)

// chainState is the open state of one reference-operation chain. A chain is
// discovered top-down: the walk meets the outermost operation first and every
// transition descends one operand deeper.
type chainState interface {
	chainState()
}

// stateDerefMethod tracks a run of explicit `__deref`/`__deref_mut` calls.
type stateDerefMethod struct {
	tyChangedCount  int
	isFinalCallForm bool // innermost call seen so far was the `__deref(x)` form
	targetMut       bool
}

// stateDerefedBorrow tracks borrows the compiler strips again right away.
// count is how many more `&` the chain may still absorb; msg was fixed when
// the chain opened, from the shape of the position.
type stateDerefedBorrow struct {
	count        int
	requiredPrec int8
	msg          string
}

// stateBorrow is a provisional `&` in a stable position, waiting for derefs.
type stateBorrow struct{}

// stateReborrow is `&*x` with x itself a reference: a plain reborrow, silent
// unless further derefs follow.
type stateReborrow struct {
	derefSpan source.Span
}

// stateExplicitDeref is a borrow-deref pair auto-deref would have performed.
type stateExplicitDeref struct {
	derefSpan source.Span
}

func (*stateDerefMethod) chainState()   {}
func (*stateDerefedBorrow) chainState() {}
func (*stateBorrow) chainState()        {}
func (*stateReborrow) chainState()      {}
func (*stateExplicitDeref) chainState() {}

// transition advances the chain machine with the next classified node. A
// combination outside the table finalizes the open state against the current
// node and reprocesses that node as a fresh chain start, so back-to-back
// chains do not mask each other.
func (w *walker) transition(c *hir.Cursor, e *hir.Expr, op refOpInfo) {
	switch st := w.state.(type) {
	case nil:
		w.openChain(c, e, op)
	case *stateDerefMethod:
		if op.op == refOpMethod {
			if !derefMethodSameType(w.ctx.Module.Types, e.Type, w.adjustedType(op.operand)) {
				st.tyChangedCount++
			}
			st.isFinalCallForm = e.Kind == hir.ExprCall
			w.skip = op.skip
			return
		}
		w.flushAt(e)
		w.openChain(c, e, op)
	case *stateDerefedBorrow:
		if op.op == refOpAddrOf && st.count != 0 {
			st.count--
			return
		}
		w.flushAt(e)
		w.openChain(c, e, op)
	case *stateBorrow:
		if op.op == refOpDeref {
			if isRef, _ := w.ctx.Module.Types.IsRef(op.operand.Type); isRef {
				w.state = &stateReborrow{derefSpan: e.Span}
			} else {
				w.state = &stateExplicitDeref{derefSpan: e.Span}
			}
			return
		}
		w.flushAt(e)
		w.openChain(c, e, op)
	case *stateReborrow:
		if op.op == refOpDeref {
			w.state = &stateExplicitDeref{derefSpan: st.derefSpan}
			return
		}
		w.flushAt(e)
		w.openChain(c, e, op)
	case *stateExplicitDeref:
		if op.op == refOpDeref {
			return
		}
		w.flushAt(e)
		w.openChain(c, e, op)
	}
}

// openChain starts a fresh chain at e. A dereference alone opens nothing:
// only runs rooted at a borrow or a dunder call can be redundant.
func (w *walker) openChain(c *hir.Cursor, e *hir.Expr, op refOpInfo) {
	switch op.op {
	case refOpMethod:
		w.openDerefMethod(c, e, op)
	case refOpAddrOf:
		w.openAddrOf(c, e)
	}
}

func (w *walker) openDerefMethod(c *hir.Cursor, e *hir.Expr, op refOpInfo) {
	name := lintExplicitDerefMethods.Name
	if !w.ctx.Enabled(name) || w.ctx.Suppressed(name, e.Span) {
		return
	}
	p, hasParent := c.Parent()
	if !lintedExplicitDerefPosition(p, hasParent, e) {
		return
	}
	count := 1
	if derefMethodSameType(w.ctx.Module.Types, e.Type, w.adjustedType(op.operand)) {
		count = 0
	}
	w.state = &stateDerefMethod{
		tyChangedCount:  count,
		isFinalCallForm: e.Kind == hir.ExprCall,
		targetMut:       op.mutable,
	}
	w.anchor = e.Span
	w.skip = op.skip
}

// openAddrOf counts how many of the compiler's own dereference steps the
// borrow at e feeds. The run stops at the first non-deref coercion or at a
// deref landing on a non-reference; the coercion after the run tells whether
// a mutable re-borrow follows.
func (w *walker) openAddrOf(c *hir.Cursor, e *hir.Expr) {
	in := w.ctx.Module.Types
	adjusts := findAdjustments(c, e)
	derefCount := 0
	var next *hir.Adjust
	for i := range adjusts {
		a := &adjusts[i]
		if a.Kind != hir.AdjustDeref {
			next = a
			break
		}
		derefCount++
		if isRef, _ := in.IsRef(a.Target); !isRef {
			if i+1 < len(adjusts) {
				next = &adjusts[i+1]
			}
			break
		}
	}

	p, hasParent := c.Parent()
	requiredRefs := 2
	requiredPrec := hir.PrecLowest
	msg := derefMsg
	switch {
	case autoBorrowPosition(p, hasParent):
		// the position borrows by itself, one written `&` is enough
		requiredRefs = 1
		requiredPrec = hir.PrecPostfix
		if derefCount == 1 {
			msg = borrowMsg
		}
	case next != nil && next.Kind == hir.AdjustBorrow && next.Mutable &&
		!autoReborrowPosition(p, hasParent):
		// a mutable re-borrow the compiler will not insert on its own
		requiredRefs = 3
	}

	switch {
	case derefCount >= requiredRefs:
		w.state = &stateDerefedBorrow{
			count:        derefCount - requiredRefs,
			requiredPrec: requiredPrec,
			msg:          msg,
		}
		w.anchor = e.Span
	case w.stableAutoDerefPosition(c):
		w.state = &stateBorrow{}
		w.anchor = e.Span
	}
}

// adjustedType is the type of e after its coercion list is applied.
func (w *walker) adjustedType(e *hir.Expr) types.TypeID {
	if a := w.body.AdjustsFor(e.ID); len(a) != 0 {
		return a[len(a)-1].Target
	}
	return e.Type
}
