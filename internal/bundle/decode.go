package bundle

import (
	"fmt"

	"surgelint/internal/diag"
	"surgelint/internal/hir"
	"surgelint/internal/source"
	"surgelint/internal/symbols"
	"surgelint/internal/types"
)

// decoder rebuilds bodies from their records and validates every reference
// while doing so: spans must lie inside their files, type and symbol IDs must
// resolve, node IDs must be unique. A violation fails the load with a coded
// error, never a panic.
type decoder struct {
	path  string
	files *source.FileSet
	types *types.Interner
	nstr  int
	nbind int
	nfunc int

	// per-body state
	seen   map[hir.NodeID]struct{}
	max    hir.NodeID
	breaks []hir.NodeID
}

func (d *decoder) span(sp source.Span) error {
	if int(sp.File) >= d.files.Len() {
		return loadErr(diag.BundleSpanRange, d.path, "span %s: file out of range", sp)
	}
	f := d.files.Get(sp.File)
	if sp.Start > sp.End || int(sp.End) > len(f.Content) {
		return loadErr(diag.BundleSpanRange, d.path, "span %s: outside %s", sp, f.Path)
	}
	if sp.Expansion != source.NoExpansion {
		if _, ok := d.files.Expansion(sp.Expansion); !ok {
			return loadErr(diag.BundleSpanRange, d.path, "span %s: unknown expansion", sp)
		}
	}
	return nil
}

func (d *decoder) typeID(raw uint32) (types.TypeID, error) {
	id := types.TypeID(raw)
	if _, ok := d.types.Lookup(id); !ok {
		return types.NoTypeID, loadErr(diag.BundleBadReference, d.path, "type %d out of range", raw)
	}
	return id, nil
}

func (d *decoder) writtenID(raw uint32) (types.WrittenID, error) {
	id := types.WrittenID(raw)
	if id != types.NoWrittenID && int(id) >= d.types.WrittenLen() {
		return types.NoWrittenID, loadErr(diag.BundleBadReference, d.path, "written type %d out of range", raw)
	}
	return id, nil
}

func (d *decoder) strID(raw uint32) (source.StringID, error) {
	if int(raw) >= d.nstr {
		return source.NoStringID, loadErr(diag.BundleBadReference, d.path, "string %d out of range", raw)
	}
	return source.StringID(raw), nil
}

func (d *decoder) bindingID(raw uint32) (symbols.BindingID, error) {
	if raw == 0 || int(raw) > d.nbind {
		return symbols.NoBindingID, loadErr(diag.BundleBadReference, d.path, "binding %d out of range", raw)
	}
	return symbols.BindingID(raw), nil
}

// funcID tolerates zero: calls through closures and function values carry no
// resolved function.
func (d *decoder) funcID(raw uint32) (symbols.FuncID, error) {
	if int(raw) > d.nfunc {
		return symbols.NoFuncID, loadErr(diag.BundleBadReference, d.path, "func %d out of range", raw)
	}
	return symbols.FuncID(raw), nil
}

// bindingTypes validates the table references inside one binding record.
func (d *decoder) bindingTypes(i int, b *symbols.Binding) error {
	if int(b.Name) >= d.nstr {
		return loadErr(diag.BundleBadReference, d.path, "binding %d: name out of range", i+1)
	}
	if _, ok := d.types.Lookup(b.Type); !ok {
		return loadErr(diag.BundleBadReference, d.path, "binding %d: type out of range", i+1)
	}
	if b.Annot != types.NoWrittenID && int(b.Annot) >= d.types.WrittenLen() {
		return loadErr(diag.BundleBadReference, d.path, "binding %d: annotation out of range", i+1)
	}
	return d.span(b.Def)
}

// funcTypes validates the table references inside one function record.
func (d *decoder) funcTypes(i int, fn *symbols.Func) error {
	if int(fn.Name) >= d.nstr {
		return loadErr(diag.BundleBadReference, d.path, "func %d: name out of range", i+1)
	}
	for _, param := range fn.Params {
		if _, ok := d.types.Lookup(param); !ok {
			return loadErr(diag.BundleBadReference, d.path, "func %d: param type out of range", i+1)
		}
	}
	for _, annot := range fn.ParamAnnots {
		if annot != types.NoWrittenID && int(annot) >= d.types.WrittenLen() {
			return loadErr(diag.BundleBadReference, d.path, "func %d: param annotation out of range", i+1)
		}
	}
	if fn.Result != types.NoTypeID {
		if _, ok := d.types.Lookup(fn.Result); !ok {
			return loadErr(diag.BundleBadReference, d.path, "func %d: result type out of range", i+1)
		}
	}
	return d.span(fn.Decl)
}

func (d *decoder) nodeID(raw uint32) (hir.NodeID, error) {
	id := hir.NodeID(raw)
	if id == hir.NoNodeID {
		return hir.NoNodeID, loadErr(diag.BundleCorrupt, d.path, "node without id")
	}
	if _, dup := d.seen[id]; dup {
		return hir.NoNodeID, loadErr(diag.BundleCorrupt, d.path, "duplicate node id %d", id)
	}
	d.seen[id] = struct{}{}
	if id > d.max {
		d.max = id
	}
	return id, nil
}

func (d *decoder) body(rec *bodyRec) (*hir.Body, error) {
	d.seen = make(map[hir.NodeID]struct{})
	d.max = 0
	d.breaks = d.breaks[:0]

	fn, err := d.funcID(rec.Func)
	if err != nil {
		return nil, err
	}
	params, err := d.params(rec.Params)
	if err != nil {
		return nil, err
	}
	block, err := d.block(&rec.Block)
	if err != nil {
		return nil, err
	}

	// break targets may sit above their loop in allocation order, so they are
	// checked only once the whole tree is known
	for _, target := range d.breaks {
		if _, ok := d.seen[target]; !ok {
			return nil, loadErr(diag.BundleBadReference, d.path, "break targets unknown node %d", target)
		}
	}

	adjusts := make(map[hir.NodeID][]hir.Adjust, len(rec.Adjusts))
	for _, a := range rec.Adjusts {
		id := hir.NodeID(a.Node)
		if _, ok := d.seen[id]; !ok {
			return nil, loadErr(diag.BundleBadReference, d.path, "adjustment on unknown node %d", a.Node)
		}
		for _, step := range a.Steps {
			switch step.Kind {
			case hir.AdjustDeref, hir.AdjustBorrow, hir.AdjustOther:
			default:
				return nil, loadErr(diag.BundleCorrupt, d.path, "node %d: unknown adjust kind %d", a.Node, step.Kind)
			}
			if _, err := d.typeID(uint32(step.Target)); err != nil {
				return nil, fmt.Errorf("node %d adjustment: %w", a.Node, err)
			}
		}
		adjusts[id] = a.Steps
	}

	return &hir.Body{
		Func:      fn,
		Params:    params,
		Block:     block,
		Adjusts:   adjusts,
		NodeCount: uint32(d.max) + 1,
	}, nil
}

func (d *decoder) params(recs []paramRec) ([]hir.Param, error) {
	var params []hir.Param
	for _, rec := range recs {
		b, err := d.bindingID(rec.Binding)
		if err != nil {
			return nil, err
		}
		if err := d.span(rec.Span); err != nil {
			return nil, err
		}
		params = append(params, hir.Param{Binding: b, Span: rec.Span})
	}
	return params, nil
}

func (d *decoder) block(rec *blockRec) (*hir.Block, error) {
	if err := d.span(rec.Span); err != nil {
		return nil, err
	}
	block := &hir.Block{Span: rec.Span}
	for i := range rec.Stmts {
		s, err := d.stmt(&rec.Stmts[i])
		if err != nil {
			return nil, err
		}
		block.Stmts = append(block.Stmts, s)
	}
	tail, err := d.expr(rec.Tail)
	if err != nil {
		return nil, err
	}
	block.Tail = tail
	return block, nil
}

func (d *decoder) blockPtr(rec *blockRec) (*hir.Block, error) {
	if rec == nil {
		return nil, nil
	}
	return d.block(rec)
}

func (d *decoder) stmt(rec *stmtRec) (hir.Stmt, error) {
	s := hir.Stmt{Kind: hir.StmtKind(rec.Kind), Span: rec.Span}
	if err := d.span(rec.Span); err != nil {
		return s, err
	}

	x, err := d.expr(rec.X)
	if err != nil {
		return s, err
	}

	switch s.Kind {
	case hir.StmtLet:
		pat, err := d.pat(rec.Pat)
		if err != nil {
			return s, err
		}
		if pat == nil {
			return s, loadErr(diag.BundleCorrupt, d.path, "let without pattern")
		}
		annot, err := d.writtenID(rec.Annot)
		if err != nil {
			return s, err
		}
		s.Data = hir.LetData{Pat: pat, Annot: annot, Value: x}
	case hir.StmtExpr:
		if x == nil {
			return s, loadErr(diag.BundleCorrupt, d.path, "expression statement without value")
		}
		s.Data = hir.ExprStmtData{Value: x}
	case hir.StmtAssign:
		y, err := d.expr(rec.Y)
		if err != nil {
			return s, err
		}
		if x == nil || y == nil {
			return s, loadErr(diag.BundleCorrupt, d.path, "assignment missing a side")
		}
		s.Data = hir.AssignData{Target: x, Value: y, Op: hir.BinaryOp(rec.Op)}
	case hir.StmtReturn:
		s.Data = hir.ReturnData{Value: x}
	case hir.StmtBreak:
		target := hir.NodeID(rec.Target)
		if target != hir.NoNodeID {
			d.breaks = append(d.breaks, target)
		}
		s.Data = hir.BreakData{Value: x, Target: target}
	case hir.StmtContinue:
		// no payload
	case hir.StmtWhile:
		body, err := d.blockPtr(rec.Block)
		if err != nil {
			return s, err
		}
		if x == nil || body == nil {
			return s, loadErr(diag.BundleCorrupt, d.path, "while missing condition or body")
		}
		s.Data = hir.WhileData{Cond: x, Body: body}
	case hir.StmtFor:
		pat, err := d.pat(rec.Pat)
		if err != nil {
			return s, err
		}
		body, err := d.blockPtr(rec.Block)
		if err != nil {
			return s, err
		}
		if pat == nil || x == nil || body == nil {
			return s, loadErr(diag.BundleCorrupt, d.path, "for missing pattern, sequence or body")
		}
		s.Data = hir.ForData{Pat: pat, Iter: x, Body: body}
	default:
		return s, loadErr(diag.BundleCorrupt, d.path, "unknown statement kind %d", rec.Kind)
	}
	return s, nil
}

func (d *decoder) exprList(recs []*exprRec) ([]*hir.Expr, error) {
	var out []*hir.Expr
	for _, rec := range recs {
		e, err := d.expr(rec)
		if err != nil {
			return nil, err
		}
		if e == nil {
			return nil, loadErr(diag.BundleCorrupt, d.path, "nil entry in expression list")
		}
		out = append(out, e)
	}
	return out, nil
}

func (d *decoder) expr(rec *exprRec) (*hir.Expr, error) {
	if rec == nil {
		return nil, nil
	}
	id, err := d.nodeID(rec.ID)
	if err != nil {
		return nil, err
	}
	ty, err := d.typeID(rec.Type)
	if err != nil {
		return nil, fmt.Errorf("node %d: %w", id, err)
	}
	if err := d.span(rec.Span); err != nil {
		return nil, fmt.Errorf("node %d: %w", id, err)
	}
	e := &hir.Expr{ID: id, Kind: hir.ExprKind(rec.Kind), Type: ty, Span: rec.Span}

	x, err := d.expr(rec.X)
	if err != nil {
		return nil, err
	}
	y, err := d.expr(rec.Y)
	if err != nil {
		return nil, err
	}

	switch e.Kind {
	case hir.ExprLiteral:
		text, err := d.strID(rec.Str)
		if err != nil {
			return nil, err
		}
		e.Data = hir.LiteralData{Lit: hir.LitKind(rec.Op), Text: text}
	case hir.ExprVarRef:
		name, err := d.strID(rec.Str)
		if err != nil {
			return nil, err
		}
		b, err := d.bindingID(rec.Sym)
		if err != nil {
			return nil, fmt.Errorf("node %d: %w", id, err)
		}
		e.Data = hir.VarRefData{Name: name, Binding: b}
	case hir.ExprFuncRef:
		name, err := d.strID(rec.Str)
		if err != nil {
			return nil, err
		}
		fn, err := d.funcID(rec.Sym)
		if err != nil {
			return nil, fmt.Errorf("node %d: %w", id, err)
		}
		e.Data = hir.FuncRefData{Name: name, Func: fn}
	case hir.ExprUnary:
		if x == nil {
			return nil, loadErr(diag.BundleCorrupt, d.path, "unary node %d without operand", id)
		}
		e.Data = hir.UnaryData{Op: hir.UnaryOp(rec.Op), Operand: x}
	case hir.ExprBinary:
		if x == nil || y == nil {
			return nil, loadErr(diag.BundleCorrupt, d.path, "binary node %d missing a side", id)
		}
		e.Data = hir.BinaryData{Op: hir.BinaryOp(rec.Op), Left: x, Right: y}
	case hir.ExprCall:
		if x == nil {
			return nil, loadErr(diag.BundleCorrupt, d.path, "call node %d without callee", id)
		}
		args, err := d.exprList(rec.List)
		if err != nil {
			return nil, err
		}
		fn, err := d.funcID(rec.Sym)
		if err != nil {
			return nil, fmt.Errorf("node %d: %w", id, err)
		}
		e.Data = hir.CallData{Callee: x, Args: args, Func: fn}
	case hir.ExprMethodCall:
		if x == nil {
			return nil, loadErr(diag.BundleCorrupt, d.path, "method call node %d without receiver", id)
		}
		method, err := d.strID(rec.Str)
		if err != nil {
			return nil, err
		}
		args, err := d.exprList(rec.List)
		if err != nil {
			return nil, err
		}
		fn, err := d.funcID(rec.Sym)
		if err != nil {
			return nil, fmt.Errorf("node %d: %w", id, err)
		}
		e.Data = hir.MethodCallData{Receiver: x, Method: method, Args: args, Func: fn}
	case hir.ExprField:
		if x == nil {
			return nil, loadErr(diag.BundleCorrupt, d.path, "field node %d without object", id)
		}
		name, err := d.strID(rec.Str)
		if err != nil {
			return nil, err
		}
		e.Data = hir.FieldData{Object: x, Name: name, Index: rec.Index}
	case hir.ExprIndex:
		if x == nil || y == nil {
			return nil, loadErr(diag.BundleCorrupt, d.path, "index node %d missing an operand", id)
		}
		e.Data = hir.IndexData{Object: x, Index: y}
	case hir.ExprStructLit:
		litType, err := d.typeID(rec.TypeRef)
		if err != nil {
			return nil, fmt.Errorf("node %d: %w", id, err)
		}
		var fields []hir.FieldInit
		for _, field := range rec.Fields {
			name, err := d.strID(field.Name)
			if err != nil {
				return nil, err
			}
			value, err := d.expr(field.Value)
			if err != nil {
				return nil, err
			}
			if value == nil {
				return nil, loadErr(diag.BundleCorrupt, d.path, "struct literal node %d: field without value", id)
			}
			if err := d.span(field.Span); err != nil {
				return nil, err
			}
			fields = append(fields, hir.FieldInit{Name: name, Value: value, Span: field.Span})
		}
		e.Data = hir.StructLitData{Type: litType, Fields: fields}
	case hir.ExprArrayLit:
		elems, err := d.exprList(rec.List)
		if err != nil {
			return nil, err
		}
		e.Data = hir.ArrayLitData{Elems: elems}
	case hir.ExprTupleLit:
		elems, err := d.exprList(rec.List)
		if err != nil {
			return nil, err
		}
		e.Data = hir.TupleLitData{Elems: elems}
	case hir.ExprRange:
		e.Data = hir.RangeData{Start: x, End: y, Inclusive: rec.Flag}
	case hir.ExprCast:
		if x == nil {
			return nil, loadErr(diag.BundleCorrupt, d.path, "cast node %d without value", id)
		}
		target, err := d.typeID(rec.TypeRef)
		if err != nil {
			return nil, fmt.Errorf("node %d: %w", id, err)
		}
		e.Data = hir.CastData{Value: x, Target: target}
	case hir.ExprAwait:
		if x == nil {
			return nil, loadErr(diag.BundleCorrupt, d.path, "await node %d without value", id)
		}
		e.Data = hir.AwaitData{Value: x}
	case hir.ExprPropagate:
		if x == nil {
			return nil, loadErr(diag.BundleCorrupt, d.path, "propagate node %d without value", id)
		}
		e.Data = hir.PropagateData{Value: x}
	case hir.ExprIf:
		z, err := d.expr(rec.Z)
		if err != nil {
			return nil, err
		}
		if x == nil || y == nil {
			return nil, loadErr(diag.BundleCorrupt, d.path, "if node %d missing condition or branch", id)
		}
		e.Data = hir.IfData{Cond: x, Then: y, Else: z}
	case hir.ExprCompare:
		if x == nil {
			return nil, loadErr(diag.BundleCorrupt, d.path, "compare node %d without scrutinee", id)
		}
		var arms []hir.CompareArm
		for _, arm := range rec.Arms {
			pat, err := d.pat(arm.Pattern)
			if err != nil {
				return nil, err
			}
			guard, err := d.expr(arm.Guard)
			if err != nil {
				return nil, err
			}
			body, err := d.expr(arm.Body)
			if err != nil {
				return nil, err
			}
			if pat == nil || body == nil {
				return nil, loadErr(diag.BundleCorrupt, d.path, "compare node %d: arm missing pattern or body", id)
			}
			if err := d.span(arm.Span); err != nil {
				return nil, err
			}
			arms = append(arms, hir.CompareArm{Pattern: pat, Guard: guard, Body: body, Span: arm.Span})
		}
		e.Data = hir.CompareData{Value: x, Arms: arms}
	case hir.ExprBlock:
		block, err := d.blockPtr(rec.Block)
		if err != nil {
			return nil, err
		}
		if block == nil {
			return nil, loadErr(diag.BundleCorrupt, d.path, "block node %d without block", id)
		}
		e.Data = hir.BlockData{Block: block}
	case hir.ExprLoop:
		body, err := d.blockPtr(rec.Block)
		if err != nil {
			return nil, err
		}
		if body == nil {
			return nil, loadErr(diag.BundleCorrupt, d.path, "loop node %d without body", id)
		}
		e.Data = hir.LoopData{Body: body}
	case hir.ExprClosure:
		params, err := d.params(rec.Params)
		if err != nil {
			return nil, err
		}
		if x == nil {
			return nil, loadErr(diag.BundleCorrupt, d.path, "closure node %d without body", id)
		}
		e.Data = hir.ClosureData{Params: params, Body: x}
	default:
		return nil, loadErr(diag.BundleCorrupt, d.path, "unknown expression kind %d", rec.Kind)
	}
	return e, nil
}

func (d *decoder) patList(recs []*patRec) ([]*hir.Pat, error) {
	var out []*hir.Pat
	for _, rec := range recs {
		p, err := d.pat(rec)
		if err != nil {
			return nil, err
		}
		if p == nil {
			return nil, loadErr(diag.BundleCorrupt, d.path, "nil entry in pattern list")
		}
		out = append(out, p)
	}
	return out, nil
}

func (d *decoder) pat(rec *patRec) (*hir.Pat, error) {
	if rec == nil {
		return nil, nil
	}
	id, err := d.nodeID(rec.ID)
	if err != nil {
		return nil, err
	}
	ty, err := d.typeID(rec.Type)
	if err != nil {
		return nil, fmt.Errorf("pattern %d: %w", id, err)
	}
	if err := d.span(rec.Span); err != nil {
		return nil, fmt.Errorf("pattern %d: %w", id, err)
	}
	p := &hir.Pat{ID: id, Kind: hir.PatKind(rec.Kind), Type: ty, Span: rec.Span}

	switch p.Kind {
	case hir.PatWildcard:
		// no payload
	case hir.PatBinding:
		name, err := d.strID(rec.Str)
		if err != nil {
			return nil, err
		}
		b, err := d.bindingID(rec.Sym)
		if err != nil {
			return nil, fmt.Errorf("pattern %d: %w", id, err)
		}
		if err := d.span(rec.NameSpan); err != nil {
			return nil, fmt.Errorf("pattern %d: %w", id, err)
		}
		sub, err := d.pat(rec.Sub)
		if err != nil {
			return nil, err
		}
		mode := symbols.BindingMode(rec.Mode)
		if mode != symbols.BindByValue && mode != symbols.BindByRef {
			return nil, loadErr(diag.BundleCorrupt, d.path, "pattern %d: unknown binding mode %d", id, rec.Mode)
		}
		p.Data = hir.BindingPatData{
			Name:     name,
			NameSpan: rec.NameSpan,
			Binding:  b,
			Mode:     mode,
			Mutable:  rec.Flag,
			Sub:      sub,
		}
	case hir.PatLiteral:
		text, err := d.strID(rec.Str)
		if err != nil {
			return nil, err
		}
		p.Data = hir.LiteralPatData{Lit: hir.LitKind(rec.Lit), Text: text}
	case hir.PatTuple:
		elems, err := d.patList(rec.List)
		if err != nil {
			return nil, err
		}
		p.Data = hir.TuplePatData{Elems: elems}
	case hir.PatStruct:
		structType, err := d.typeID(rec.TypeRef)
		if err != nil {
			return nil, fmt.Errorf("pattern %d: %w", id, err)
		}
		var fields []hir.PatField
		for _, field := range rec.Fields {
			name, err := d.strID(field.Name)
			if err != nil {
				return nil, err
			}
			sub, err := d.pat(field.Pat)
			if err != nil {
				return nil, err
			}
			if sub == nil {
				return nil, loadErr(diag.BundleCorrupt, d.path, "pattern %d: field without sub-pattern", id)
			}
			if err := d.span(field.Span); err != nil {
				return nil, err
			}
			fields = append(fields, hir.PatField{Name: name, Pat: sub, Span: field.Span})
		}
		p.Data = hir.StructPatData{Type: structType, Fields: fields, Rest: rec.Flag}
	case hir.PatVariant:
		variantType, err := d.typeID(rec.TypeRef)
		if err != nil {
			return nil, fmt.Errorf("pattern %d: %w", id, err)
		}
		caseName, err := d.strID(rec.Str)
		if err != nil {
			return nil, err
		}
		elems, err := d.patList(rec.List)
		if err != nil {
			return nil, err
		}
		p.Data = hir.VariantPatData{Type: variantType, Case: caseName, Elems: elems}
	case hir.PatOr:
		alts, err := d.patList(rec.List)
		if err != nil {
			return nil, err
		}
		if len(alts) < 2 {
			return nil, loadErr(diag.BundleCorrupt, d.path, "pattern %d: or-pattern with %d alternatives", id, len(alts))
		}
		p.Data = hir.OrPatData{Alts: alts}
	default:
		return nil, loadErr(diag.BundleCorrupt, d.path, "unknown pattern kind %d", rec.Kind)
	}
	return p, nil
}
