package deref

import (
	"surgelint/internal/hir"
)

// lintedExplicitDerefPosition reports whether a `__deref` call at the child
// position can be rewritten to operator form without changing how the parent
// parses. The excluded positions either re-borrow the receiver themselves
// (method receiver, field and index bases, callee) or already contain a
// dereference. A parent in a different expansion context never blocks.
func lintedExplicitDerefPosition(p hir.Parent, ok bool, child *hir.Expr) bool {
	if !ok || p.Expr == nil {
		return true
	}
	if !p.Expr.Span.SameContext(child.Span) {
		return true
	}
	switch p.Rel {
	case hir.RelMethodRecv, hir.RelCallCallee, hir.RelFieldObject,
		hir.RelIndexObject, hir.RelIndexIndex,
		hir.RelAwaitValue, hir.RelPropagateValue:
		return false
	case hir.RelUnaryOperand:
		return !isDerefExpr(p.Expr)
	default:
		return true
	}
}

// autoBorrowPosition reports whether the compiler inserts a borrow at the
// child position by itself: field-access bases and callees.
func autoBorrowPosition(p hir.Parent, ok bool) bool {
	if !ok || p.Expr == nil {
		return false
	}
	switch p.Rel {
	case hir.RelFieldObject, hir.RelCallCallee:
		return true
	default:
		return false
	}
}

// autoReborrowPosition reports whether the compiler re-borrows `&mut`
// values passed through the child position: call and method-call children
// and `let` initializers.
func autoReborrowPosition(p hir.Parent, ok bool) bool {
	if !ok {
		return false
	}
	if p.Expr != nil {
		return p.Expr.Kind == hir.ExprCall || p.Expr.Kind == hir.ExprMethodCall
	}
	return p.Stmt != nil && p.Stmt.Kind == hir.StmtLet
}

// findAdjustments returns the coercion list for e, looking outward when the
// node itself has none: a block tail inherits the coercions of the wrapping
// expression, a `break` value those of the loop it targets. Positions with
// no wrapping expression have no coercions to find.
func findAdjustments(c *hir.Cursor, e *hir.Expr) []hir.Adjust {
	body := c.Body()
	cur := e
	i := 0
	for step := 0; step < maxPositionWalk; step++ {
		if a := body.AdjustsFor(cur.ID); len(a) != 0 {
			return a
		}
		p, ok := c.ParentAt(i)
		if !ok {
			return nil
		}
		switch {
		case p.Rel == hir.RelBlockTail && p.Expr != nil:
			cur = p.Expr
			i++
		case p.Rel == hir.RelBreakValue && p.Stmt != nil:
			brk, isBreak := p.Stmt.Data.(hir.BreakData)
			if !isBreak {
				return nil
			}
			dist, found := c.AncestorByID(brk.Target)
			if !found {
				return nil
			}
			target, _ := c.ParentAt(dist)
			cur = target.Expr
			i = dist + 1
		default:
			return nil
		}
	}
	return nil
}

// maxPositionWalk bounds the outward walks. Deeper nesting than this means a
// corrupt bundle; give up rather than loop.
const maxPositionWalk = 256
