package deref

import (
	"testing"

	"surgelint/internal/diag"
	"surgelint/internal/hir"
	"surgelint/internal/source"
	"surgelint/internal/symbols"
	"surgelint/internal/types"
)

// refEnv wires a compare expression with one arm so pattern and usages are
// walked inside the same body.
func (env *testenv) compareBody(pat *hir.Pat, uses ...*hir.Expr) {
	bt := env.in.Builtins()
	armBody := uses[len(uses)-1]
	scrut := env.build.NewExpr(hir.ExprLiteral, bt.Int, source.Span{File: env.file}, hir.LiteralData{})
	var stmts []hir.Stmt
	for _, use := range uses[:len(uses)-1] {
		stmts = append(stmts, hir.Stmt{Kind: hir.StmtExpr, Data: hir.ExprStmtData{Value: use}})
	}
	block := env.build.NewExpr(hir.ExprBlock, armBody.Type, armBody.Span, hir.BlockData{
		Block: &hir.Block{Stmts: stmts, Tail: armBody},
	})
	cmp := env.build.NewExpr(hir.ExprCompare, armBody.Type, source.Span{File: env.file, End: uint32(len(env.src))}, hir.CompareData{
		Value: scrut,
		Arms:  []hir.CompareArm{{Pattern: pat, Body: block}},
	})
	env.body(&hir.Block{Stmts: []hir.Stmt{
		{Kind: hir.StmtExpr, Data: hir.ExprStmtData{Value: cmp}},
	}})
}

func (env *testenv) refBinding(name string, bound types.TypeID) symbols.BindingID {
	return env.bindings.New(&symbols.Binding{
		Name: env.in.Strings.Intern(name),
		Type: bound,
		Mode: symbols.BindByRef,
	})
}

func (env *testenv) refPatNode(b symbols.BindingID, patSpan, nameSpan source.Span, bound types.TypeID) *hir.Pat {
	return env.build.NewPat(hir.PatBinding, bound, patSpan, hir.BindingPatData{
		Name:     env.in.Strings.Intern("x"),
		NameSpan: nameSpan,
		Binding:  b,
		Mode:     symbols.BindByRef,
	})
}

func TestRefBindingAlwaysDereferenced(t *testing.T) {
	// Every use of x is *x: the binding behaves like a plain value, so the
	// pattern is a needless borrow. The rewrite drops `ref` and each `*`.
	env := newEnv(t, "ref x => *x")
	bt := env.in.Builtins()
	refStr := env.in.Intern(types.MakeReference(bt.String, false))
	refRefStr := env.in.Intern(types.MakeReference(refStr, false))

	x := env.refBinding("x", refRefStr)
	pat := env.refPatNode(x, env.at("ref x", 0), env.at("x", 0), refRefStr)
	use := env.varRef("x", x, refRefStr, env.at("x", 1))
	star := env.deref(use, refStr, env.at("*x", 0))
	env.compareBody(pat, star)

	items := env.run()
	if len(items) != 1 {
		t.Fatalf("findings = %+v, want 1", items)
	}
	d := items[0]
	if d.Code != diag.LintNeedlessBorrow {
		t.Fatalf("code = %s, want needless borrow", d.Code.ID())
	}
	if d.Message != "this pattern creates a reference to a reference" {
		t.Fatalf("message = %q", d.Message)
	}
	if len(d.Fixes) != 1 || len(d.Fixes[0].Edits) != 2 {
		t.Fatalf("fix = %+v, want pattern edit plus usage edit", d.Fixes)
	}
	patEdit, useEdit := d.Fixes[0].Edits[0], d.Fixes[0].Edits[1]
	if patEdit.OldText != "ref x" || patEdit.NewText != "x" {
		t.Fatalf("pattern edit = %q -> %q", patEdit.OldText, patEdit.NewText)
	}
	if useEdit.OldText != "*x" || useEdit.NewText != "x" {
		t.Fatalf("usage edit = %q -> %q", useEdit.OldText, useEdit.NewText)
	}
}

func TestRefBindingDoubleDerefAdjustmentNeedsNoEdit(t *testing.T) {
	// The compiler already strips both layers at the usage; only the
	// pattern itself needs rewriting.
	env := newEnv(t, "ref x => x.len")
	bt := env.in.Builtins()
	refStr := env.in.Intern(types.MakeReference(bt.String, false))
	refRefStr := env.in.Intern(types.MakeReference(refStr, false))

	x := env.refBinding("x", refRefStr)
	pat := env.refPatNode(x, env.at("ref x", 0), env.at("x", 0), refRefStr)
	use := env.varRef("x", x, refRefStr, env.at("x", 1))
	env.build.SetAdjusts(use.ID, []hir.Adjust{
		{Kind: hir.AdjustDeref, Target: refStr},
		{Kind: hir.AdjustDeref, Target: bt.String},
	})
	env.compareBody(pat, use)

	items := env.run()
	if len(items) != 1 {
		t.Fatalf("findings = %+v, want 1", items)
	}
	d := items[0]
	if d.Code != diag.LintNeedlessBorrow {
		t.Fatalf("code = %s", d.Code.ID())
	}
	if len(d.Fixes[0].Edits) != 1 {
		t.Fatalf("edits = %+v, want pattern edit only", d.Fixes[0].Edits)
	}
}

func TestRefBindingPlainUsageGetsBorrowPrefix(t *testing.T) {
	// x flows somewhere as a value: keeping behaviour needs `&x` there,
	// and the finding downgrades to the binding-style category.
	env := newEnv(t, "ref x => x == q")
	bt := env.in.Builtins()
	refStr := env.in.Intern(types.MakeReference(bt.String, false))
	refRefStr := env.in.Intern(types.MakeReference(refStr, false))

	x := env.refBinding("x", refRefStr)
	q := env.binding("q", refRefStr)
	pat := env.refPatNode(x, env.at("ref x", 0), env.at("x", 0), refRefStr)
	use := env.varRef("x", x, refRefStr, env.at("x", 1))
	cmpExpr := env.build.NewExpr(hir.ExprBinary, bt.Bool, env.at("x == q", 0), hir.BinaryData{
		Op:    hir.BinaryEq,
		Left:  use,
		Right: env.varRef("q", q, refRefStr, env.at("q", 0)),
	})
	env.compareBody(pat, cmpExpr)

	items := env.run()
	if len(items) != 1 {
		t.Fatalf("findings = %+v, want 1", items)
	}
	d := items[0]
	if d.Code != diag.LintRefBindingToRef {
		t.Fatalf("code = %s, want ref binding category", d.Code.ID())
	}
	useEdit := d.Fixes[0].Edits[1]
	if useEdit.OldText != "x" || useEdit.NewText != "&x" {
		t.Fatalf("usage edit = %q -> %q", useEdit.OldText, useEdit.NewText)
	}
}

func TestRefBindingPostfixUsageDisqualifies(t *testing.T) {
	// `&x` under a postfix parent would need parentheses; the binding is
	// dropped instead of risking a wrong rewrite.
	env := newEnv(t, "ref x => x.len()")
	bt := env.in.Builtins()
	refStr := env.in.Intern(types.MakeReference(bt.String, false))
	refRefStr := env.in.Intern(types.MakeReference(refStr, false))

	x := env.refBinding("x", refRefStr)
	pat := env.refPatNode(x, env.at("ref x", 0), env.at("x", 0), refRefStr)
	use := env.varRef("x", x, refRefStr, env.at("x", 1))
	lenCall := env.build.NewExpr(hir.ExprMethodCall, bt.Uint, env.at("x.len()", 0), hir.MethodCallData{
		Receiver: use,
		Method:   env.in.Strings.Intern("len"),
	})
	env.compareBody(pat, lenCall)

	if items := env.run(); len(items) != 0 {
		t.Fatalf("findings = %+v, want none", items)
	}
}

func TestRefBindingFieldAccessNeedsNoEdit(t *testing.T) {
	env := newEnv(t, "ref x => x.len")
	bt := env.in.Builtins()
	refStr := env.in.Intern(types.MakeReference(bt.String, false))
	refRefStr := env.in.Intern(types.MakeReference(refStr, false))

	x := env.refBinding("x", refRefStr)
	pat := env.refPatNode(x, env.at("ref x", 0), env.at("x", 0), refRefStr)
	use := env.varRef("x", x, refRefStr, env.at("x", 1))
	field := env.build.NewExpr(hir.ExprField, bt.Uint, env.at("x.len", 0), hir.FieldData{
		Object: use,
		Name:   env.in.Strings.Intern("len"),
	})
	env.compareBody(pat, field)

	items := env.run()
	if len(items) != 1 || items[0].Code != diag.LintNeedlessBorrow {
		t.Fatalf("findings = %+v, want one needless borrow", items)
	}
	if len(items[0].Fixes[0].Edits) != 1 {
		t.Fatalf("edits = %+v, want pattern edit only", items[0].Fixes[0].Edits)
	}
}

func TestRefBindingExpansionArmDisqualifiesWholeBinding(t *testing.T) {
	// Or-pattern with one generated arm: a partial rewrite would leave the
	// binding half-renamed, so the whole binding is dropped.
	env := newEnv(t, "ref x | ref x => *x")
	bt := env.in.Builtins()
	refStr := env.in.Intern(types.MakeReference(bt.String, false))
	refRefStr := env.in.Intern(types.MakeReference(refStr, false))
	exp := env.fs.AddExpansion("derive", env.at("ref x", 1))

	x := env.refBinding("x", refRefStr)
	arm1 := env.refPatNode(x, env.at("ref x", 0), env.at("x", 0), refRefStr)
	genSpan := env.at("ref x", 1)
	genSpan.Expansion = exp
	genName := env.at("x", 1)
	genName.Expansion = exp
	arm2 := env.refPatNode(x, genSpan, genName, refRefStr)
	orPat := env.build.NewPat(hir.PatOr, refRefStr, env.at("ref x | ref x", 0), hir.OrPatData{
		Alts: []*hir.Pat{arm1, arm2},
	})
	use := env.varRef("x", x, refRefStr, env.at("x", 2))
	star := env.deref(use, refStr, env.at("*x", 0))
	env.compareBody(orPat, star)

	if items := env.run(); len(items) != 0 {
		t.Fatalf("findings = %+v, want none", items)
	}
}

func TestRefBindingMutableInnerReferenceExcluded(t *testing.T) {
	// Rewriting would move out of a mutable borrow; the binding is never
	// tracked.
	env := newEnv(t, "ref x => *x")
	bt := env.in.Builtins()
	refMutStr := env.in.Intern(types.MakeReference(bt.String, true))
	refRefMut := env.in.Intern(types.MakeReference(refMutStr, false))

	x := env.refBinding("x", refRefMut)
	pat := env.refPatNode(x, env.at("ref x", 0), env.at("x", 0), refRefMut)
	use := env.varRef("x", x, refRefMut, env.at("x", 1))
	star := env.deref(use, refMutStr, env.at("*x", 0))
	env.compareBody(pat, star)

	if items := env.run(); len(items) != 0 {
		t.Fatalf("findings = %+v, want none", items)
	}
}
