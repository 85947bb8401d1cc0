package hir

import (
	"surgelint/internal/source"
	"surgelint/internal/symbols"
)

// Param is one function or closure parameter.
type Param struct {
	Binding symbols.BindingID
	Span    source.Span
}

// Body is one function body: the parameter bindings, the statement tree and
// the adjustment table keyed by node ID. Closures nest inside their enclosing
// body and share its node ID space.
type Body struct {
	Func    symbols.FuncID
	Params  []Param
	Block   *Block
	Adjusts map[NodeID][]Adjust

	// NodeCount is the number of allocated node IDs, bounds included. Used by
	// validation and by passes sizing per-node maps.
	NodeCount uint32
}

// AdjustsFor returns the coercion list recorded for a node, nil when none.
func (b *Body) AdjustsFor(id NodeID) []Adjust {
	if b.Adjusts == nil {
		return nil
	}
	return b.Adjusts[id]
}
