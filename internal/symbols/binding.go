package symbols

import (
	"surgelint/internal/source"
	"surgelint/internal/types"
)

// BindingMode records how a pattern introduced its binding.
type BindingMode uint8

const (
	// BindByValue is the default binding mode: the name owns the matched value.
	BindByValue BindingMode = iota
	// BindByRef marks `ref x` patterns: the name borrows the matched place.
	BindByRef
)

func (m BindingMode) String() string {
	switch m {
	case BindByValue:
		return "value"
	case BindByRef:
		return "ref"
	default:
		return "unknown"
	}
}

// Binding is one value binding: a function parameter, a `let` name or a
// pattern binding inside a compare arm.
type Binding struct {
	Name    source.StringID
	Type    types.TypeID    // resolved type of the bound name
	Annot   types.WrittenID // the annotation as written, NoWrittenID when inferred
	Mode    BindingMode
	Mutable bool        // `let mut` / `mut` parameter
	Def     source.Span // the identifier inside the defining pattern
}

// Func describes one function known to the module: its declared signature as
// written, used when argument positions need declared (not call-site) types.
type Func struct {
	Name        source.StringID
	Decl        source.Span
	Params      []types.TypeID    // declared parameter types, receiver first for methods
	ParamAnnots []types.WrittenID // written forms of Params, aligned by index
	Result      types.TypeID      // declared result type
}
