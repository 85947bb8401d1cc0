package bundle

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"

	"fortio.org/safecast"
	"github.com/vmihailenco/msgpack/v5"

	"surgelint/internal/hir"
	"surgelint/internal/source"
)

// Write encodes a module into a bundle file, replacing any previous one
// atomically. The compiler side and tests share this path; the linter itself
// only loads.
func Write(path string, mod *hir.Module, fset *source.FileSet, tool string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(path), "tmp-*")
	if err != nil {
		return err
	}
	defer func() {
		_ = os.Remove(f.Name())
	}()
	if err := Encode(f, mod, fset, tool); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(f.Name(), path)
}

// Encode writes the msgpack payload for one module to w.
func Encode(w io.Writer, mod *hir.Module, fset *source.FileSet, tool string) error {
	p, err := flatten(mod, fset, tool)
	if err != nil {
		return err
	}
	return msgpack.NewEncoder(w).Encode(p)
}

func flatten(mod *hir.Module, fset *source.FileSet, tool string) (*payload, error) {
	p := &payload{
		Schema: SchemaVersion,
		Tool:   tool,
		Name:   mod.Name,
		Path:   mod.Path,
	}

	for i := 0; i < fset.Len(); i++ {
		f := fset.Get(source.FileID(i))
		size, err := safecast.Conv[uint32](len(f.Content))
		if err != nil {
			return nil, fmt.Errorf("file %s too large: %w", f.Path, err)
		}
		p.Files = append(p.Files, fileRec{Path: f.Path, Hash: f.Hash, Size: size})
	}

	p.Strings = mod.Types.Strings.Snapshot()
	p.Types = mod.Types.Snapshot()
	p.Bindings = mod.Bindings.Data()
	p.Funcs = mod.Funcs.Data()

	for _, exp := range fset.Expansions() {
		p.Expansions = append(p.Expansions, expansionRec{
			Directive: exp.Directive,
			CallSite:  exp.CallSite,
		})
	}
	p.Suppressions = slices.Clone(mod.Suppressions)

	for id := 1; id < len(mod.Bodies); id++ {
		body := mod.Bodies[id]
		if body == nil {
			return nil, fmt.Errorf("body %d is nil", id)
		}
		p.Bodies = append(p.Bodies, encodeBody(body))
	}
	return p, nil
}

func encodeBody(body *hir.Body) bodyRec {
	rec := bodyRec{Func: uint32(body.Func)}
	for _, param := range body.Params {
		rec.Params = append(rec.Params, paramRec{Binding: uint32(param.Binding), Span: param.Span})
	}
	rec.Block = encodeBlock(body.Block)
	adjustIDs := make([]hir.NodeID, 0, len(body.Adjusts))
	for id := range body.Adjusts {
		adjustIDs = append(adjustIDs, id)
	}
	slices.Sort(adjustIDs)
	for _, id := range adjustIDs {
		rec.Adjusts = append(rec.Adjusts, adjustRec{
			Node:  uint32(id),
			Steps: body.Adjusts[id],
		})
	}
	return rec
}

func encodeBlock(block *hir.Block) blockRec {
	rec := blockRec{Span: block.Span, Tail: encodeExpr(block.Tail)}
	for i := range block.Stmts {
		rec.Stmts = append(rec.Stmts, encodeStmt(&block.Stmts[i]))
	}
	return rec
}

func encodeBlockPtr(block *hir.Block) *blockRec {
	if block == nil {
		return nil
	}
	rec := encodeBlock(block)
	return &rec
}

func encodeStmt(s *hir.Stmt) stmtRec {
	rec := stmtRec{Kind: uint8(s.Kind), Span: s.Span}
	switch d := s.Data.(type) {
	case hir.LetData:
		rec.Pat = encodePat(d.Pat)
		rec.Annot = uint32(d.Annot)
		rec.X = encodeExpr(d.Value)
	case hir.ExprStmtData:
		rec.X = encodeExpr(d.Value)
	case hir.AssignData:
		rec.X = encodeExpr(d.Target)
		rec.Y = encodeExpr(d.Value)
		rec.Op = uint8(d.Op)
	case hir.ReturnData:
		rec.X = encodeExpr(d.Value)
	case hir.BreakData:
		rec.X = encodeExpr(d.Value)
		rec.Target = uint32(d.Target)
	case hir.WhileData:
		rec.X = encodeExpr(d.Cond)
		rec.Block = encodeBlockPtr(d.Body)
	case hir.ForData:
		rec.Pat = encodePat(d.Pat)
		rec.X = encodeExpr(d.Iter)
		rec.Block = encodeBlockPtr(d.Body)
	}
	return rec
}

func encodeExpr(e *hir.Expr) *exprRec {
	if e == nil {
		return nil
	}
	rec := &exprRec{
		ID:   uint32(e.ID),
		Kind: uint8(e.Kind),
		Type: uint32(e.Type),
		Span: e.Span,
	}
	switch d := e.Data.(type) {
	case hir.LiteralData:
		rec.Op = uint8(d.Lit)
		rec.Str = uint32(d.Text)
	case hir.VarRefData:
		rec.Str = uint32(d.Name)
		rec.Sym = uint32(d.Binding)
	case hir.FuncRefData:
		rec.Str = uint32(d.Name)
		rec.Sym = uint32(d.Func)
	case hir.UnaryData:
		rec.Op = uint8(d.Op)
		rec.X = encodeExpr(d.Operand)
	case hir.BinaryData:
		rec.Op = uint8(d.Op)
		rec.X = encodeExpr(d.Left)
		rec.Y = encodeExpr(d.Right)
	case hir.CallData:
		rec.X = encodeExpr(d.Callee)
		rec.Sym = uint32(d.Func)
		for _, arg := range d.Args {
			rec.List = append(rec.List, encodeExpr(arg))
		}
	case hir.MethodCallData:
		rec.X = encodeExpr(d.Receiver)
		rec.Str = uint32(d.Method)
		rec.Sym = uint32(d.Func)
		for _, arg := range d.Args {
			rec.List = append(rec.List, encodeExpr(arg))
		}
	case hir.FieldData:
		rec.X = encodeExpr(d.Object)
		rec.Str = uint32(d.Name)
		rec.Index = d.Index
	case hir.IndexData:
		rec.X = encodeExpr(d.Object)
		rec.Y = encodeExpr(d.Index)
	case hir.StructLitData:
		rec.TypeRef = uint32(d.Type)
		for _, field := range d.Fields {
			rec.Fields = append(rec.Fields, fieldInitRec{
				Name:  uint32(field.Name),
				Value: encodeExpr(field.Value),
				Span:  field.Span,
			})
		}
	case hir.ArrayLitData:
		for _, elem := range d.Elems {
			rec.List = append(rec.List, encodeExpr(elem))
		}
	case hir.TupleLitData:
		for _, elem := range d.Elems {
			rec.List = append(rec.List, encodeExpr(elem))
		}
	case hir.RangeData:
		rec.X = encodeExpr(d.Start)
		rec.Y = encodeExpr(d.End)
		rec.Flag = d.Inclusive
	case hir.CastData:
		rec.X = encodeExpr(d.Value)
		rec.TypeRef = uint32(d.Target)
	case hir.AwaitData:
		rec.X = encodeExpr(d.Value)
	case hir.PropagateData:
		rec.X = encodeExpr(d.Value)
	case hir.IfData:
		rec.X = encodeExpr(d.Cond)
		rec.Y = encodeExpr(d.Then)
		rec.Z = encodeExpr(d.Else)
	case hir.CompareData:
		rec.X = encodeExpr(d.Value)
		for _, arm := range d.Arms {
			rec.Arms = append(rec.Arms, armRec{
				Pattern: encodePat(arm.Pattern),
				Guard:   encodeExpr(arm.Guard),
				Body:    encodeExpr(arm.Body),
				Span:    arm.Span,
			})
		}
	case hir.BlockData:
		rec.Block = encodeBlockPtr(d.Block)
	case hir.LoopData:
		rec.Block = encodeBlockPtr(d.Body)
	case hir.ClosureData:
		for _, param := range d.Params {
			rec.Params = append(rec.Params, paramRec{Binding: uint32(param.Binding), Span: param.Span})
		}
		rec.X = encodeExpr(d.Body)
	}
	return rec
}

func encodePat(p *hir.Pat) *patRec {
	if p == nil {
		return nil
	}
	rec := &patRec{
		ID:   uint32(p.ID),
		Kind: uint8(p.Kind),
		Type: uint32(p.Type),
		Span: p.Span,
	}
	switch d := p.Data.(type) {
	case hir.BindingPatData:
		rec.Str = uint32(d.Name)
		rec.NameSpan = d.NameSpan
		rec.Sym = uint32(d.Binding)
		rec.Mode = uint8(d.Mode)
		rec.Flag = d.Mutable
		rec.Sub = encodePat(d.Sub)
	case hir.LiteralPatData:
		rec.Lit = uint8(d.Lit)
		rec.Str = uint32(d.Text)
	case hir.TuplePatData:
		for _, elem := range d.Elems {
			rec.List = append(rec.List, encodePat(elem))
		}
	case hir.StructPatData:
		rec.TypeRef = uint32(d.Type)
		rec.Flag = d.Rest
		for _, field := range d.Fields {
			rec.Fields = append(rec.Fields, patFieldRec{
				Name: uint32(field.Name),
				Pat:  encodePat(field.Pat),
				Span: field.Span,
			})
		}
	case hir.VariantPatData:
		rec.TypeRef = uint32(d.Type)
		rec.Str = uint32(d.Case)
		for _, elem := range d.Elems {
			rec.List = append(rec.List, encodePat(elem))
		}
	case hir.OrPatData:
		for _, alt := range d.Alts {
			rec.List = append(rec.List, encodePat(alt))
		}
	}
	return rec
}
