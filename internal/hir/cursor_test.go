package hir

import (
	"fmt"
	"strings"
	"testing"

	"surgelint/internal/source"
	"surgelint/internal/symbols"
	"surgelint/internal/types"
)

// testEnv bundles the tables one body needs.
type testEnv struct {
	types    *types.Interner
	bindings *symbols.Bindings
	funcs    *symbols.Funcs
	build    *Builder
}

func newTestEnv() *testEnv {
	return &testEnv{
		types:    types.NewInterner(source.NewInterner()),
		bindings: symbols.NewBindings(0),
		funcs:    symbols.NewFuncs(0),
		build:    NewBuilder(),
	}
}

func (env *testEnv) span(start, end uint32) source.Span {
	return source.Span{File: 1, Start: start, End: end}
}

func (env *testEnv) binding(name string, ty types.TypeID) symbols.BindingID {
	return env.bindings.New(&symbols.Binding{
		Name: env.types.Strings.Intern(name),
		Type: ty,
	})
}

func (env *testEnv) varRef(name string, b symbols.BindingID, ty types.TypeID) *Expr {
	return env.build.NewExpr(ExprVarRef, ty, env.span(0, 0), VarRefData{
		Name:    env.types.Strings.Intern(name),
		Binding: b,
	})
}

type visitRecorder struct {
	visits []string
}

func (r *visitRecorder) VisitExpr(c *Cursor, e *Expr) {
	rel := "root"
	if p, ok := c.Parent(); ok {
		rel = p.Rel.String()
		if p.Rel == RelCallArg || p.Rel == RelMethodArg {
			rel = fmt.Sprintf("%s[%d]", rel, p.Index)
		}
	}
	r.visits = append(r.visits, fmt.Sprintf("%s@%s", e.Kind, rel))
}

func (r *visitRecorder) VisitPat(c *Cursor, p *Pat) {
	r.visits = append(r.visits, "pat:"+p.Kind.String())
}

func TestWalkPreorder(t *testing.T) {
	env := newTestEnv()
	bt := env.types.Builtins()
	str := bt.String
	ref := env.types.Intern(types.MakeReference(str, false))

	a := env.binding("a", ref)
	b := env.binding("b", str)
	x := env.binding("x", ref)

	// let x = g(a, &b)
	// return *x
	callee := env.build.NewExpr(ExprFuncRef, bt.Unit, env.span(4, 5), FuncRefData{
		Name: env.types.Strings.Intern("g"),
		Func: env.funcs.New(&symbols.Func{Name: env.types.Strings.Intern("g")}),
	})
	argA := env.varRef("a", a, ref)
	argB := env.build.NewExpr(ExprUnary, ref, env.span(9, 11), UnaryData{
		Op:      UnaryRef,
		Operand: env.varRef("b", b, str),
	})
	call := env.build.NewExpr(ExprCall, ref, env.span(4, 12), CallData{
		Callee: callee,
		Args:   []*Expr{argA, argB},
	})
	letPat := env.build.NewPat(PatBinding, ref, env.span(0, 1), BindingPatData{
		Name:    env.types.Strings.Intern("x"),
		Binding: x,
	})
	deref := env.build.NewExpr(ExprUnary, str, env.span(20, 22), UnaryData{
		Op:      UnaryDeref,
		Operand: env.varRef("x", x, ref),
	})
	body := env.build.Finish(symbols.NoFuncID, nil, &Block{
		Stmts: []Stmt{
			{Kind: StmtLet, Data: LetData{Pat: letPat, Value: call}},
			{Kind: StmtReturn, Data: ReturnData{Value: deref}},
		},
	})

	rec := &visitRecorder{}
	Walk(body, rec)

	want := []string{
		"pat:binding",
		"call@let-init",
		"funcref@call-callee",
		"varref@call-arg[0]",
		"unary@call-arg[1]",
		"varref@unary-operand",
		"unary@return-value",
		"varref@unary-operand",
	}
	if got := strings.Join(rec.visits, "\n"); got != strings.Join(want, "\n") {
		t.Errorf("walk order mismatch:\ngot:\n%s\nwant:\n%s", got, strings.Join(want, "\n"))
	}
}

func TestWalkBlockTail(t *testing.T) {
	env := newTestEnv()
	bt := env.types.Builtins()

	inner := env.build.NewExpr(ExprLiteral, bt.Int, env.span(10, 12), LiteralData{Lit: LitInt, Text: env.types.Strings.Intern("42")})
	blockExpr := env.build.NewExpr(ExprBlock, bt.Int, env.span(8, 14), BlockData{
		Block: &Block{Tail: inner},
	})
	outerTail := env.build.NewExpr(ExprBlock, bt.Int, env.span(8, 14), BlockData{
		Block: &Block{Tail: env.build.NewExpr(ExprLiteral, bt.Int, env.span(1, 2), LiteralData{Lit: LitInt, Text: env.types.Strings.Intern("7")})},
	})

	var tailParents []string
	probe := &funcVisitor{expr: func(c *Cursor, e *Expr) {
		if e == inner {
			p, ok := c.Parent()
			if !ok {
				t.Fatal("inner tail has no parent")
			}
			tailParents = append(tailParents, p.Rel.String())
			if p.Expr != blockExpr {
				t.Errorf("tail parent expr = %v, want the owning block expr", p.Expr)
			}
		}
	}}

	body := env.build.Finish(symbols.NoFuncID, nil, &Block{
		Stmts: []Stmt{{Kind: StmtExpr, Data: ExprStmtData{Value: blockExpr}}},
		Tail:  outerTail,
	})
	Walk(body, probe)

	if len(tailParents) != 1 || tailParents[0] != "block-tail" {
		t.Errorf("tail parent rels = %v, want [block-tail]", tailParents)
	}
}

func TestWalkBodyTailMarker(t *testing.T) {
	env := newTestEnv()
	bt := env.types.Builtins()

	tail := env.build.NewExpr(ExprLiteral, bt.Int, env.span(0, 2), LiteralData{Lit: LitInt, Text: env.types.Strings.Intern("1")})
	body := env.build.Finish(symbols.NoFuncID, nil, &Block{Tail: tail})

	seen := false
	Walk(body, &funcVisitor{expr: func(c *Cursor, e *Expr) {
		if e != tail {
			return
		}
		seen = true
		p, ok := c.Parent()
		if !ok || p.Rel != RelBodyTail {
			t.Errorf("body tail parent = (%v, %v), want RelBodyTail", p.Rel, ok)
		}
		if p.Expr != nil || p.Stmt != nil {
			t.Error("body tail marker should not reference a node")
		}
	}})
	if !seen {
		t.Fatal("tail expression was not visited")
	}
}

func TestAncestorByID(t *testing.T) {
	env := newTestEnv()
	bt := env.types.Builtins()

	brk := env.build.NewExpr(ExprLiteral, bt.Int, env.span(10, 11), LiteralData{Lit: LitInt, Text: env.types.Strings.Intern("1")})
	loop := env.build.NewExpr(ExprLoop, bt.Int, env.span(0, 20), LoopData{})
	loop.Data = LoopData{Body: &Block{
		Stmts: []Stmt{{Kind: StmtBreak, Data: BreakData{Value: brk, Target: loop.ID}}},
	}}

	body := env.build.Finish(symbols.NoFuncID, nil, &Block{
		Stmts: []Stmt{{Kind: StmtExpr, Data: ExprStmtData{Value: loop}}},
	})

	Walk(body, &funcVisitor{expr: func(c *Cursor, e *Expr) {
		if e != brk {
			return
		}
		dist, ok := c.AncestorByID(loop.ID)
		if !ok {
			t.Fatal("break target not found on the stack")
		}
		p, ok := c.ParentAt(dist)
		if !ok || p.Expr != loop {
			t.Errorf("ParentAt(%d) = %+v, want the loop expr", dist, p)
		}
		if _, ok := c.AncestorByID(9999); ok {
			t.Error("AncestorByID(9999) matched something")
		}
	}})
}

// funcVisitor adapts plain functions to the Visitor interface.
type funcVisitor struct {
	expr func(*Cursor, *Expr)
	pat  func(*Cursor, *Pat)
}

func (v *funcVisitor) VisitExpr(c *Cursor, e *Expr) {
	if v.expr != nil {
		v.expr(c, e)
	}
}

func (v *funcVisitor) VisitPat(c *Cursor, p *Pat) {
	if v.pat != nil {
		v.pat(c, p)
	}
}

func TestWalkComparePatterns(t *testing.T) {
	env := newTestEnv()
	bt := env.types.Builtins()

	scrut := env.build.NewExpr(ExprLiteral, bt.Int, env.span(8, 9), LiteralData{Lit: LitInt, Text: env.types.Strings.Intern("0")})
	alt1 := env.build.NewPat(PatLiteral, bt.Int, env.span(12, 13), LiteralPatData{Lit: LitInt, Text: env.types.Strings.Intern("1")})
	alt2 := env.build.NewPat(PatBinding, bt.Int, env.span(16, 17), BindingPatData{
		Name:    env.types.Strings.Intern("n"),
		Binding: env.binding("n", bt.Int),
		Mode:    symbols.BindByRef,
	})
	orPat := env.build.NewPat(PatOr, bt.Int, env.span(12, 17), OrPatData{Alts: []*Pat{alt1, alt2}})
	armBody := env.build.NewExpr(ExprLiteral, bt.Unit, env.span(21, 23), LiteralData{Lit: LitUnit, Text: source.NoStringID})
	cmp := env.build.NewExpr(ExprCompare, bt.Unit, env.span(0, 25), CompareData{
		Value: scrut,
		Arms:  []CompareArm{{Pattern: orPat, Body: armBody}},
	})

	body := env.build.Finish(symbols.NoFuncID, nil, &Block{
		Stmts: []Stmt{{Kind: StmtExpr, Data: ExprStmtData{Value: cmp}}},
	})

	rec := &visitRecorder{}
	Walk(body, rec)

	want := []string{
		"compare@stmt-expr",
		"literal@compare-value",
		"pat:or",
		"pat:literal",
		"pat:binding",
		"literal@compare-body",
	}
	if got := strings.Join(rec.visits, "\n"); got != strings.Join(want, "\n") {
		t.Errorf("walk order mismatch:\ngot:\n%s\nwant:\n%s", got, strings.Join(want, "\n"))
	}
}
