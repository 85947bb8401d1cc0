package hir

import (
	"surgelint/internal/source"
	"surgelint/internal/symbols"
	"surgelint/internal/types"
)

// PatKind discriminates pattern nodes.
type PatKind uint8

const (
	PatInvalid  PatKind = iota
	PatWildcard         // _
	PatBinding          // x, mut x, ref x, x @ sub
	PatLiteral          // 42, "s"
	PatTuple            // (a, b)
	PatStruct           // Point{x, y}
	PatVariant          // Shape::Circle(r)
	PatOr               // a | b
)

func (k PatKind) String() string {
	switch k {
	case PatWildcard:
		return "wildcard"
	case PatBinding:
		return "binding"
	case PatLiteral:
		return "literal"
	case PatTuple:
		return "tuple"
	case PatStruct:
		return "struct"
	case PatVariant:
		return "variant"
	case PatOr:
		return "or"
	default:
		return "invalid"
	}
}

// Pat is one pattern node. Type is the type the pattern matches against.
type Pat struct {
	ID   NodeID
	Kind PatKind
	Type types.TypeID
	Span source.Span
	Data PatData
}

// PatData is the kind-specific payload of a pattern node.
type PatData interface {
	patData()
}

// BindingPatData introduces a binding. NameSpan covers just the identifier,
// without the `ref`/`mut` keywords, so rewrites can splice the bare name.
type BindingPatData struct {
	Name     source.StringID
	NameSpan source.Span
	Binding  symbols.BindingID
	Mode     symbols.BindingMode
	Mutable  bool
	Sub      *Pat // `x @ sub`, nil otherwise
}

// LiteralPatData matches a literal value.
type LiteralPatData struct {
	Lit  LitKind
	Text source.StringID
}

// TuplePatData destructures a tuple.
type TuplePatData struct {
	Elems []*Pat
}

// PatField is one `name: pat` entry of a struct pattern.
type PatField struct {
	Name source.StringID
	Pat  *Pat
	Span source.Span
}

// StructPatData destructures a nominal by field name.
type StructPatData struct {
	Type   types.TypeID
	Fields []PatField
	Rest   bool // trailing `..`
}

// VariantPatData matches one case of a union or enum.
type VariantPatData struct {
	Type  types.TypeID
	Case  source.StringID
	Elems []*Pat
}

// OrPatData matches any of its alternatives. A name bound in one alternative
// is bound in all of them, with the same BindingID.
type OrPatData struct {
	Alts []*Pat
}

func (BindingPatData) patData() {}
func (LiteralPatData) patData() {}
func (TuplePatData) patData()   {}
func (StructPatData) patData()  {}
func (VariantPatData) patData() {}
func (OrPatData) patData()      {}
