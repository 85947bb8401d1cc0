package hir

import (
	"surgelint/internal/source"
	"surgelint/internal/symbols"
	"surgelint/internal/types"
)

// Builder allocates the nodes of one body and hands out dense IDs starting at
// 1. The bundle loader materializes bodies through it; package tests assemble
// bodies by hand the same way.
type Builder struct {
	next    NodeID
	adjusts map[NodeID][]Adjust
}

// NewBuilder returns an empty builder.
func NewBuilder() *Builder {
	return &Builder{next: 1, adjusts: make(map[NodeID][]Adjust)}
}

// NewExpr allocates an expression node.
func (b *Builder) NewExpr(kind ExprKind, ty types.TypeID, sp source.Span, data ExprData) *Expr {
	e := &Expr{ID: b.next, Kind: kind, Type: ty, Span: sp, Data: data}
	b.next++
	return e
}

// NewPat allocates a pattern node.
func (b *Builder) NewPat(kind PatKind, ty types.TypeID, sp source.Span, data PatData) *Pat {
	p := &Pat{ID: b.next, Kind: kind, Type: ty, Span: sp, Data: data}
	b.next++
	return p
}

// SetAdjusts records the coercion list for a node, replacing any previous one.
func (b *Builder) SetAdjusts(id NodeID, steps []Adjust) {
	if len(steps) == 0 {
		delete(b.adjusts, id)
		return
	}
	b.adjusts[id] = steps
}

// Finish assembles the body. The builder can be reused afterwards only via
// NewBuilder.
func (b *Builder) Finish(fn symbols.FuncID, params []Param, block *Block) *Body {
	return &Body{
		Func:      fn,
		Params:    params,
		Block:     block,
		Adjusts:   b.adjusts,
		NodeCount: uint32(b.next),
	}
}
