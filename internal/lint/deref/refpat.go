package deref

import (
	"slices"

	"surgelint/internal/diag"
	"surgelint/internal/hir"
	"surgelint/internal/source"
	"surgelint/internal/symbols"
	"surgelint/internal/types"
)

// refPat accumulates everything needed to rewrite one `ref` binding: every
// pattern site (or-pattern arms share the binding) plus one edit per site and
// per usage. A nil table entry is a tombstone: the binding was seen but
// cannot be rewritten safely, and stays disqualified for the rest of the
// body.
type refPat struct {
	// alwaysDeref stays true while every recorded usage dereferences the
	// binding anyway; the finding then counts as a needless borrow rather
	// than a binding-style issue.
	alwaysDeref bool
	approx      bool // some edit text was sliced from an expansion call site
	spans       []source.Span
	edits       []diag.TextEdit
}

// checkPat tracks `ref` bindings whose type is a reference to an immutable
// reference. Mutable inner references are excluded: dropping `ref` would
// move the value out of a mutable borrow.
func (w *walker) checkPat(p *hir.Pat) {
	d, isBind := p.Data.(hir.BindingPatData)
	if !isBind || d.Mode != symbols.BindByRef || d.Mutable {
		return
	}
	if rp, seen := w.refPats[d.Binding]; seen {
		if rp == nil {
			return
		}
		if p.Span.FromExpansion() {
			// ещё одна арма в сгенерированном коде: правка была бы частичной
			w.refPats[d.Binding] = nil
			return
		}
		if !w.appendPatEdit(rp, p, d) {
			w.refPats[d.Binding] = nil
		}
		return
	}
	if p.Span.FromExpansion() {
		w.refPats[d.Binding] = nil
		return
	}
	b := w.ctx.Module.Bindings.Get(d.Binding)
	if b == nil || !refToImmutableRef(w.ctx.Module.Types, b.Type) {
		return
	}
	rp := &refPat{alwaysDeref: true}
	if !w.appendPatEdit(rp, p, d) {
		w.refPats[d.Binding] = nil
		return
	}
	w.refPats[d.Binding] = rp
}

// appendPatEdit records the pattern site and the edit replacing the whole
// `ref x` pattern with the bare name.
func (w *walker) appendPatEdit(rp *refPat, p *hir.Pat, d hir.BindingPatData) bool {
	snip, ok := w.ctx.SnippetWithContext(d.NameSpan, p.Span.Expansion)
	if !ok {
		return false
	}
	if d.NameSpan.Expansion != p.Span.Expansion {
		rp.approx = true
	}
	rp.spans = append(rp.spans, p.Span)
	rp.edits = append(rp.edits, diag.TextEdit{
		Span:    p.Span,
		NewText: snip,
		OldText: w.exactText(p.Span),
	})
	return true
}

// checkLocalUsage classifies one read of a tracked `ref` binding and records
// the matching rewrite. Usages the compiler already double-derefs need none;
// any usage that cannot be rewritten cleanly disqualifies the binding.
func (w *walker) checkLocalUsage(c *hir.Cursor, e *hir.Expr, id symbols.BindingID) {
	rp, seen := w.refPats[id]
	if !seen || rp == nil {
		return
	}
	adj := w.body.AdjustsFor(e.ID)
	if len(adj) >= 2 && adj[0].Kind == hir.AdjustDeref && adj[1].Kind == hir.AdjustDeref {
		return
	}
	p, hasParent := c.Parent()
	var parent *hir.Expr
	if hasParent {
		parent = p.Expr
	}
	switch {
	case parent != nil && p.Rel == hir.RelFieldObject:
		// поле достаётся одинаково при любой глубине ссылок
	case parent != nil && isDerefExpr(parent) && !parent.Span.FromExpansion():
		snip, ok := w.ctx.SnippetWithContext(e.Span, parent.Span.Expansion)
		if !ok {
			w.refPats[id] = nil
			return
		}
		if e.Span.Expansion != parent.Span.Expansion {
			rp.approx = true
		}
		rp.edits = append(rp.edits, diag.TextEdit{
			Span:    parent.Span,
			NewText: snip,
			OldText: w.exactText(parent.Span),
		})
	case parent != nil && !parent.Span.FromExpansion():
		if hir.Precedence(parent) == hir.PrecPostfix {
			// здесь &x пришлось бы брать в скобки, не переписываем
			w.refPats[id] = nil
			return
		}
		snip, ok := w.ctx.SnippetWithContext(e.Span, parent.Span.Expansion)
		if !ok {
			w.refPats[id] = nil
			return
		}
		editSpan, ok := w.ctx.Files.WalkToContext(e.Span, parent.Span.Expansion)
		if !ok {
			w.refPats[id] = nil
			return
		}
		if e.Span.Expansion != parent.Span.Expansion {
			rp.approx = true
		}
		rp.alwaysDeref = false
		rp.edits = append(rp.edits, diag.TextEdit{
			Span:    editSpan,
			NewText: "&" + snip,
			OldText: w.exactText(editSpan),
		})
	case !e.Span.FromExpansion():
		snip, ok := w.ctx.Snippet(e.Span)
		if !ok {
			w.refPats[id] = nil
			return
		}
		rp.alwaysDeref = false
		rp.edits = append(rp.edits, diag.TextEdit{
			Span:    e.Span,
			NewText: "&" + snip,
			OldText: snip,
		})
	default:
		w.refPats[id] = nil
	}
}

// flushRefPats reports every surviving tracked binding once the body walk is
// done. Iteration is in binding order so output stays deterministic.
func (w *walker) flushRefPats() {
	if len(w.refPats) == 0 {
		return
	}
	ids := make([]symbols.BindingID, 0, len(w.refPats))
	for id, rp := range w.refPats {
		if rp != nil && len(rp.spans) != 0 {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)
	for _, id := range ids {
		rp := w.refPats[id]
		l := lintRefBindingToRef
		if rp.alwaysDeref {
			l = lintNeedlessBorrow
		}
		rb := w.ctx.Report(l, rp.spans[0], "this pattern creates a reference to a reference")
		for _, sp := range rp.spans[1:] {
			rb = rb.WithNote(sp, "the binding repeats here")
		}
		app := diag.FixApplicabilityAlwaysSafe
		if rp.approx {
			app = diag.FixApplicabilitySafeWithHeuristics
		}
		rb.WithFixSuggestion(diag.Fix{
			Title:         "try this",
			Applicability: app,
			Edits:         rp.edits,
		}).Emit()
	}
}

// exactText returns the current text of a span for use as an edit guard,
// empty when the span cannot be sliced exactly.
func (w *walker) exactText(sp source.Span) string {
	text, ok := w.ctx.Snippet(sp)
	if !ok {
		return ""
	}
	return text
}

// refToImmutableRef reports whether ty is a reference whose pointee is an
// immutable reference.
func refToImmutableRef(in *types.Interner, ty types.TypeID) bool {
	tt, ok := in.Lookup(ty)
	if !ok || tt.Kind != types.KindReference {
		return false
	}
	inner, ok := in.Lookup(tt.Elem)
	return ok && inner.Kind == types.KindReference && !inner.Mutable
}
