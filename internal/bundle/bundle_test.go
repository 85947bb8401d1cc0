package bundle

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/vmihailenco/msgpack/v5"

	"surgelint/internal/diag"
	"surgelint/internal/hir"
	"surgelint/internal/lint"
	"surgelint/internal/lint/deref"
	"surgelint/internal/source"
	"surgelint/internal/symbols"
	"surgelint/internal/types"
)

// buildModule assembles a module around a real source file on disk: a call
// `fun(&y)` whose borrow the compiler strips with two derefs and re-borrows,
// so the deref pass finds exactly one needless borrow after a roundtrip.
func buildModule(t *testing.T, dir string) (*hir.Module, *source.FileSet, string) {
	t.Helper()
	src := "fn demo() { fun(&y); }\n"
	srcPath := filepath.Join(dir, "demo.sg")
	if err := os.WriteFile(srcPath, []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}

	fset := source.NewFileSet()
	fileID, err := fset.Load(srcPath)
	if err != nil {
		t.Fatal(err)
	}
	at := func(substr string) source.Span {
		i := strings.Index(src, substr)
		if i < 0 {
			t.Fatalf("source has no %q", substr)
		}
		return source.Span{File: fileID, Start: uint32(i), End: uint32(i + len(substr))}
	}

	in := types.NewInterner(source.NewInterner())
	bt := in.Builtins()
	refInt := in.Intern(types.MakeReference(bt.Int, false))
	refRefInt := in.Intern(types.MakeReference(refInt, false))

	bindings := symbols.NewBindings(0)
	funcs := symbols.NewFuncs(0)
	fun := funcs.New(&symbols.Func{
		Name:   in.Strings.Intern("fun"),
		Params: []types.TypeID{refInt},
	})
	y := bindings.New(&symbols.Binding{
		Name: in.Strings.Intern("y"),
		Type: refInt,
		Def:  at("y"),
	})

	build := hir.NewBuilder()
	yRef := build.NewExpr(hir.ExprVarRef, refInt, at("y"), hir.VarRefData{
		Name:    in.Strings.Intern("y"),
		Binding: y,
	})
	arg := build.NewExpr(hir.ExprUnary, refRefInt, at("&y"), hir.UnaryData{
		Op:      hir.UnaryRef,
		Operand: yRef,
	})
	build.SetAdjusts(arg.ID, []hir.Adjust{
		{Kind: hir.AdjustDeref, Target: refInt},
		{Kind: hir.AdjustDeref, Target: bt.Int},
		{Kind: hir.AdjustBorrow, Target: refInt},
	})
	callee := build.NewExpr(hir.ExprFuncRef, bt.Unit, at("fun"), hir.FuncRefData{
		Name: in.Strings.Intern("fun"),
		Func: fun,
	})
	call := build.NewExpr(hir.ExprCall, bt.Unit, at("fun(&y)"), hir.CallData{
		Callee: callee,
		Args:   []*hir.Expr{arg},
		Func:   fun,
	})
	body := build.Finish(fun, nil, &hir.Block{
		Stmts: []hir.Stmt{{Kind: hir.StmtExpr, Span: at("fun(&y);"), Data: hir.ExprStmtData{Value: call}}},
		Span:  at("{ fun(&y); }"),
	})

	mod := &hir.Module{
		Name:     "demo",
		Path:     "app/demo",
		Files:    []source.FileID{fileID},
		Types:    in,
		Bindings: bindings,
		Funcs:    funcs,
		Bodies:   []*hir.Body{nil, body},
		Suppressions: []hir.Suppression{{
			Lint: "explicit_auto_deref",
			Span: at("fn demo"),
		}},
	}
	return mod, fset, srcPath
}

func TestRoundTripKeepsFindings(t *testing.T) {
	dir := t.TempDir()
	mod, fset, _ := buildModule(t, dir)
	path := filepath.Join(dir, "demo"+Ext)

	if err := Write(path, mod, fset, "surge 0.4.1"); err != nil {
		t.Fatalf("Write: %v", err)
	}
	b, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if b.Tool != "surge 0.4.1" {
		t.Errorf("tool = %q", b.Tool)
	}
	if b.Module.Name != "demo" || b.Module.Path != "app/demo" {
		t.Errorf("module identity = %q %q", b.Module.Name, b.Module.Path)
	}
	if b.Module.BodyCount() != 1 {
		t.Fatalf("bodies = %d, want 1", b.Module.BodyCount())
	}
	if len(b.Module.Suppressions) != 1 || b.Module.Suppressions[0].Lint != "explicit_auto_deref" {
		t.Errorf("suppressions = %+v", b.Module.Suppressions)
	}
	if b.Digest == ([32]byte{}) {
		t.Error("digest is zero")
	}

	bag := diag.NewBag(8)
	ctx := lint.NewContext(b.Module, b.Files, diag.BagReporter{Bag: bag})
	if err := deref.New().Run(ctx); err != nil {
		t.Fatalf("deref pass on loaded module: %v", err)
	}
	items := bag.Items()
	if len(items) != 1 {
		t.Fatalf("findings = %+v, want 1", items)
	}
	d := items[0]
	if d.Code != diag.LintNeedlessBorrow {
		t.Fatalf("code = %s", d.Code.ID())
	}
	if len(d.Fixes) != 1 || len(d.Fixes[0].Edits) != 1 {
		t.Fatalf("fix = %+v", d.Fixes)
	}
	edit := d.Fixes[0].Edits[0]
	if edit.OldText != "&y" || edit.NewText != "y" {
		t.Fatalf("edit = %q -> %q, want &y -> y", edit.OldText, edit.NewText)
	}
}

func TestLoadReportsStaleSource(t *testing.T) {
	dir := t.TempDir()
	mod, fset, srcPath := buildModule(t, dir)
	path := filepath.Join(dir, "demo"+Ext)
	if err := Write(path, mod, fset, "surge 0.4.1"); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := os.WriteFile(srcPath, []byte("fn demo() { }\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := Load(path)
	if !errors.Is(err, ErrStale) {
		t.Fatalf("err = %v, want ErrStale", err)
	}
	var be *Error
	if !errors.As(err, &be) || be.Code != diag.BundleStale {
		t.Fatalf("err = %v, want coded BundleStale", err)
	}
	if !strings.Contains(be.Err.Error(), "demo.sg") {
		t.Errorf("stale error does not name the file: %v", be.Err)
	}
}

func TestLoadReportsMissingSource(t *testing.T) {
	dir := t.TempDir()
	mod, fset, srcPath := buildModule(t, dir)
	path := filepath.Join(dir, "demo"+Ext)
	if err := Write(path, mod, fset, "surge 0.4.1"); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := os.Remove(srcPath); err != nil {
		t.Fatal(err)
	}

	_, err := Load(path)
	var be *Error
	if !errors.As(err, &be) || be.Code != diag.BundleSourceGone {
		t.Fatalf("err = %v, want coded BundleSourceGone", err)
	}
}

func TestDecodeRejectsWrongSchema(t *testing.T) {
	dir := t.TempDir()
	mod, fset, _ := buildModule(t, dir)
	p, err := flatten(mod, fset, "surge 0.4.1")
	if err != nil {
		t.Fatal(err)
	}
	p.Schema = SchemaVersion + 1

	raw, err := msgpack.Marshal(p)
	if err != nil {
		t.Fatal(err)
	}
	_, err = decode(raw, dir, "demo"+Ext)
	if !errors.Is(err, ErrSchema) {
		t.Fatalf("err = %v, want ErrSchema", err)
	}
}

func TestDecodeRejectsDanglingBinding(t *testing.T) {
	dir := t.TempDir()
	mod, fset, _ := buildModule(t, dir)
	p, err := flatten(mod, fset, "surge 0.4.1")
	if err != nil {
		t.Fatal(err)
	}
	// statement -> call -> borrow -> variable read
	varRef := p.Bodies[0].Block.Stmts[0].X.List[0].X
	varRef.Sym = 99

	raw, err := msgpack.Marshal(p)
	if err != nil {
		t.Fatal(err)
	}
	_, err = decode(raw, dir, "demo"+Ext)
	var be *Error
	if !errors.As(err, &be) || be.Code != diag.BundleBadReference {
		t.Fatalf("err = %v, want coded BundleBadReference", err)
	}
}

func TestDecodeRejectsSpanPastEOF(t *testing.T) {
	dir := t.TempDir()
	mod, fset, _ := buildModule(t, dir)
	p, err := flatten(mod, fset, "surge 0.4.1")
	if err != nil {
		t.Fatal(err)
	}
	p.Bodies[0].Block.Stmts[0].X.Span.End = 10000

	raw, err := msgpack.Marshal(p)
	if err != nil {
		t.Fatal(err)
	}
	_, err = decode(raw, dir, "demo"+Ext)
	var be *Error
	if !errors.As(err, &be) || be.Code != diag.BundleSpanRange {
		t.Fatalf("err = %v, want coded BundleSpanRange", err)
	}
}

func TestDecodeRejectsDuplicateNodeIDs(t *testing.T) {
	dir := t.TempDir()
	mod, fset, _ := buildModule(t, dir)
	p, err := flatten(mod, fset, "surge 0.4.1")
	if err != nil {
		t.Fatal(err)
	}
	call := p.Bodies[0].Block.Stmts[0].X
	call.ID = call.List[0].ID

	raw, err := msgpack.Marshal(p)
	if err != nil {
		t.Fatal(err)
	}
	_, err = decode(raw, dir, "demo"+Ext)
	var be *Error
	if !errors.As(err, &be) || be.Code != diag.BundleCorrupt {
		t.Fatalf("err = %v, want coded BundleCorrupt", err)
	}
}
