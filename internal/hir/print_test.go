package hir

import (
	"strings"
	"testing"

	"surgelint/internal/symbols"
	"surgelint/internal/types"
)

func TestDumpBody(t *testing.T) {
	env := newTestEnv()
	bt := env.types.Builtins()
	str := bt.String
	refStr := env.types.Intern(types.MakeReference(str, false))

	sID := env.binding("s", refStr)
	fnID := env.funcs.New(&symbols.Func{
		Name:   env.types.Strings.Intern("peek"),
		Params: []types.TypeID{refStr},
		Result: bt.Unit,
	})

	// fn peek(s: &string) -> unit {
	//     len(*s)
	// }
	deref := env.build.NewExpr(ExprUnary, str, env.span(5, 7), UnaryData{
		Op:      UnaryDeref,
		Operand: env.varRef("s", sID, refStr),
	})
	call := env.build.NewExpr(ExprCall, bt.Unit, env.span(0, 8), CallData{
		Callee: env.build.NewExpr(ExprFuncRef, bt.Unit, env.span(0, 3), FuncRefData{Name: env.types.Strings.Intern("len")}),
		Args:   []*Expr{deref},
	})
	env.build.SetAdjusts(deref.ID, []Adjust{{Kind: AdjustBorrow, Target: refStr}})

	body := env.build.Finish(fnID, []Param{{Binding: sID}}, &Block{
		Stmts: []Stmt{{Kind: StmtExpr, Data: ExprStmtData{Value: call}}},
	})

	mod := &Module{
		Name:     "demo",
		Types:    env.types,
		Bindings: env.bindings,
		Funcs:    env.funcs,
		Bodies:   []*Body{nil, body},
	}

	var sb strings.Builder
	if err := Dump(&sb, mod); err != nil {
		t.Fatalf("Dump: %v", err)
	}
	want := strings.Join([]string{
		"module demo",
		"",
		"fn peek(s: &string) -> unit {",
		"  len(*s)",
		"}",
		"",
	}, "\n")
	if sb.String() != want {
		t.Errorf("dump mismatch:\ngot:\n%s\nwant:\n%s", sb.String(), want)
	}

	sb.Reset()
	if err := DumpWithOptions(&sb, mod, DumpOptions{EmitAdjusts: true}); err != nil {
		t.Fatalf("DumpWithOptions: %v", err)
	}
	if !strings.Contains(sb.String(), "*s@{borrow}") {
		t.Errorf("adjusted dump missing marker:\n%s", sb.String())
	}
}

func TestDumpPrecedenceParens(t *testing.T) {
	env := newTestEnv()
	bt := env.types.Builtins()

	lit := func(text string) *Expr {
		return env.build.NewExpr(ExprLiteral, bt.Int, env.span(0, 0), LiteralData{Lit: LitInt, Text: env.types.Strings.Intern(text)})
	}
	sum := env.build.NewExpr(ExprBinary, bt.Int, env.span(0, 5), BinaryData{Op: BinaryAdd, Left: lit("1"), Right: lit("2")})
	deref := env.build.NewExpr(ExprUnary, bt.Int, env.span(0, 6), UnaryData{Op: UnaryDeref, Operand: sum})

	body := env.build.Finish(symbols.NoFuncID, nil, &Block{
		Stmts: []Stmt{{Kind: StmtExpr, Data: ExprStmtData{Value: deref}}},
	})
	mod := &Module{
		Name:     "demo",
		Types:    env.types,
		Bindings: env.bindings,
		Funcs:    env.funcs,
		Bodies:   []*Body{nil, body},
	}

	var sb strings.Builder
	if err := Dump(&sb, mod); err != nil {
		t.Fatalf("Dump: %v", err)
	}
	if !strings.Contains(sb.String(), "*(1 + 2)") {
		t.Errorf("expected parenthesized operand, got:\n%s", sb.String())
	}
}
