package deref

import (
	"surgelint/internal/diag"
	"surgelint/internal/hir"
	"surgelint/internal/lint"
	"surgelint/internal/source"
	"surgelint/internal/symbols"
)

var (
	lintExplicitDerefMethods = lint.Lint{
		Name:    "explicit_deref_methods",
		Code:    diag.LintExplicitDerefCall,
		Default: diag.SevWarning,
		Doc:     "explicit `__deref`/`__deref_mut` calls where the operator form works",
	}
	lintNeedlessBorrow = lint.Lint{
		Name:    "needless_borrow",
		Code:    diag.LintNeedlessBorrow,
		Default: diag.SevWarning,
		Doc:     "borrows the compiler dereferences again immediately",
	}
	lintRefBindingToRef = lint.Lint{
		Name:    "ref_binding_to_reference",
		Code:    diag.LintRefBindingToRef,
		Default: diag.SevWarning,
		Doc:     "`ref` bindings that take a reference to a reference",
	}
	lintExplicitAutoDeref = lint.Lint{
		Name:    "explicit_auto_deref",
		Code:    diag.LintExplicitAutoDeref,
		Default: diag.SevWarning,
		Doc:     "dereferences auto-deref already performs",
	}
)

// Pass finds reference operations the compiler performs by itself: explicit
// dunder calls, borrows that are stripped again immediately, borrow-deref
// pairs auto-deref would collapse, and `ref` bindings to references.
type Pass struct{}

func New() *Pass { return &Pass{} }

func (*Pass) Info() lint.Info {
	return lint.Info{
		Name: "deref",
		Doc:  "redundant reference and dereference operations",
		Lints: []lint.Lint{
			lintExplicitDerefMethods,
			lintNeedlessBorrow,
			lintRefBindingToRef,
			lintExplicitAutoDeref,
		},
	}
}

// Run walks every body of the module. Bodies are independent: chain state
// and the ref-binding table never cross a body boundary, and closures are
// walked inline with the body that owns them.
func (*Pass) Run(ctx *lint.Context) error {
	if ctx == nil || ctx.Module == nil || ctx.Module.Types == nil {
		return nil
	}
	names := internDunders(ctx.Module.Types.Strings)
	for _, body := range ctx.Module.Bodies {
		if body == nil || body.Block == nil {
			continue
		}
		w := &walker{
			ctx:     ctx,
			body:    body,
			names:   names,
			refPats: make(map[symbols.BindingID]*refPat),
		}
		hir.Walk(body, w)
		w.flushRefPats()
	}
	return nil
}

// walker drives the chain machine and the ref-binding tracker over one body.
type walker struct {
	ctx   *lint.Context
	body  *hir.Body
	names dunderNames

	state  chainState
	anchor source.Span
	// skip names the callee node of a call-form dunder the machine already
	// consumed; visiting it must not break the open chain.
	skip hir.NodeID

	refPats map[symbols.BindingID]*refPat
}

// VisitExpr feeds one node to the machine. Expansion boundaries and nodes
// that are no reference operation finalize whatever chain is open, with the
// current node as the chain's final operand.
func (w *walker) VisitExpr(c *hir.Cursor, e *hir.Expr) {
	if w.skip.IsValid() && e.ID == w.skip {
		w.skip = hir.NoNodeID
		return
	}
	if d, isVar := e.Data.(hir.VarRefData); isVar {
		w.checkLocalUsage(c, e, d.Binding)
	}
	if e.Span.FromExpansion() {
		w.flushAt(e)
		return
	}
	op, ok := classify(w.ctx.Module.Types, w.names, e)
	if !ok {
		w.flushAt(e)
		return
	}
	w.transition(c, e, op)
}

func (w *walker) VisitPat(_ *hir.Cursor, p *hir.Pat) {
	w.checkPat(p)
}
