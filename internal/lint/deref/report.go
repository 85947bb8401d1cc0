package deref

import (
	"strings"

	"surgelint/internal/diag"
	"surgelint/internal/fix"
	"surgelint/internal/hir"
	"surgelint/internal/source"
)

// flushAt finalizes the open chain against its last operand e and clears the
// machine for the next chain. Borrow and Reborrow flush silently: a plain
// reborrow is real work, not redundancy.
func (w *walker) flushAt(e *hir.Expr) {
	st := w.state
	if st == nil {
		return
	}
	w.state = nil
	anchor := w.anchor
	w.anchor = source.Span{}
	switch s := st.(type) {
	case *stateDerefMethod:
		w.reportDerefMethod(s, anchor, e)
	case *stateDerefedBorrow:
		w.reportDerefedBorrow(s, anchor, e)
	case *stateExplicitDeref:
		w.reportExplicitDeref(s, anchor, e)
	}
}

// reportDerefMethod rewrites a dunder-call chain to operator form. The
// rewrite keeps the operand snippet and prefixes the stars and reference
// operators the chain's net effect requires.
func (w *walker) reportDerefMethod(st *stateDerefMethod, anchor source.Span, e *hir.Expr) {
	in := w.ctx.Module.Types
	msg := "explicit `__deref` method call"
	if st.targetMut {
		msg = "explicit `__deref_mut` method call"
	}
	rb := w.ctx.Report(lintExplicitDerefMethods, anchor, msg)
	if rb == nil {
		return
	}
	snip, ok := w.ctx.SnippetWithContext(e.Span, anchor.Expansion)
	if !ok {
		rb.Emit()
		return
	}
	sameCtx := e.Span.Expansion == anchor.Expansion

	refCount := int(in.RefDepth(e.Type))
	stars := st.tyChangedCount
	if st.tyChangedCount >= refCount && refCount != 0 {
		// первый меняющий тип вызов стоит двух звёзд: снять ссылку и
		// вызвать сам __deref
		stars = st.tyChangedCount + 1
	}
	addrOf := ""
	if st.tyChangedCount < refCount {
		if isRef, mutable := in.IsRef(e.Type); isRef && mutable && !st.targetMut {
			// immutable result out of a mutable reference, force a reborrow
			addrOf = "&*"
		}
	} else if st.targetMut {
		addrOf = "&mut "
	} else {
		addrOf = "&"
	}
	if sameCtx && st.isFinalCallForm && hir.Precedence(e) < hir.PrecPrefix {
		snip = "(" + snip + ")"
	}
	w.emitReplace(rb, "try this", anchor, addrOf+strings.Repeat("*", stars)+snip, sameCtx)
}

// reportDerefedBorrow suggests dropping the borrows auto-deref undoes.
func (w *walker) reportDerefedBorrow(st *stateDerefedBorrow, anchor source.Span, e *hir.Expr) {
	rb := w.ctx.Report(lintNeedlessBorrow, anchor, st.msg)
	if rb == nil {
		return
	}
	snip, ok := w.ctx.SnippetWithContext(e.Span, anchor.Expansion)
	if !ok {
		rb.Emit()
		return
	}
	if st.requiredPrec > hir.Precedence(e) && !hasEnclosingParen(snip) {
		snip = "(" + snip + ")"
	}
	w.emitReplace(rb, "change this to", anchor, snip, e.Span.Expansion == anchor.Expansion)
}

// reportExplicitDeref suggests removing a borrow-deref pair. When the final
// operand is still a reference the whole chain goes; otherwise only the
// recorded deref does and the written borrow stays.
func (w *walker) reportExplicitDeref(st *stateExplicitDeref, anchor source.Span, e *hir.Expr) {
	target := st.derefSpan
	if isRef, _ := w.ctx.Module.Types.IsRef(e.Type); isRef {
		target = anchor
	}
	rb := w.ctx.Report(lintExplicitAutoDeref, target, "deref which would be done by auto-deref")
	if rb == nil {
		return
	}
	snip, ok := w.ctx.SnippetWithContext(e.Span, target.Expansion)
	if !ok {
		rb.Emit()
		return
	}
	w.emitReplace(rb, "try this", target, snip, e.Span.Expansion == target.Expansion)
}

// emitReplace attaches a single-span replacement and emits. Replacements
// whose text was sliced from an expansion call site keep working in the
// common case but are not proven, so they drop to heuristic applicability.
func (w *walker) emitReplace(rb *diag.ReportBuilder, title string, span source.Span, text string, exactCtx bool) {
	app := diag.FixApplicabilityAlwaysSafe
	if !exactCtx {
		app = diag.FixApplicabilitySafeWithHeuristics
	}
	rb.WithFixSuggestion(fix.ReplaceSpan(title, span, text, w.exactText(span), fix.WithApplicability(app))).Emit()
}

// hasEnclosingParen reports whether the snippet is wrapped in one pair of
// parentheses, the opening one matching the closing one.
func hasEnclosingParen(s string) bool {
	if len(s) < 2 || s[0] != '(' {
		return false
	}
	depth := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return i == len(s)-1
			}
		}
	}
	return false
}
