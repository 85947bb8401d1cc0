package bundle

import (
	"surgelint/internal/hir"
	"surgelint/internal/source"
	"surgelint/internal/symbols"
	"surgelint/internal/types"
)

// payload is the top-level msgpack document of one .sgir file. Tables whose
// in-memory form is already flat (types, bindings, funcs, suppressions) go
// over the wire as-is; bodies are flattened into records because their node
// payloads are interfaces.
type payload struct {
	Schema uint16
	Tool   string

	Name string
	Path string

	Files        []fileRec
	Strings      []string
	Types        types.Snapshot
	Bindings     []symbols.Binding
	Funcs        []symbols.Func
	Bodies       []bodyRec
	Expansions   []expansionRec
	Suppressions []hir.Suppression
}

// fileRec identifies one source file without embedding its content.
type fileRec struct {
	Path string
	Hash [32]byte
	Size uint32
}

type expansionRec struct {
	Directive string
	CallSite  source.Span
}

type bodyRec struct {
	Func    uint32
	Params  []paramRec
	Block   blockRec
	Adjusts []adjustRec
}

type paramRec struct {
	Binding uint32
	Span    source.Span
}

// adjustRec carries the coercion list of one node, sorted by node ID on
// write so encoding is deterministic.
type adjustRec struct {
	Node  uint32
	Steps []hir.Adjust
}

type blockRec struct {
	Stmts []stmtRec
	Tail  *exprRec
	Span  source.Span
}

type stmtRec struct {
	Kind uint8
	Span source.Span

	Pat    *patRec
	Annot  uint32 // let: written-type id
	X      *exprRec
	Y      *exprRec
	Op     uint8  // assign: compound operator
	Target uint32 // break: loop node id
	Block  *blockRec
}

// exprRec flattens one expression node. The generic child slots X/Y/Z carry
// kind-dependent operands; encodeExpr and the decoder agree on the mapping.
type exprRec struct {
	ID   uint32
	Kind uint8
	Type uint32
	Span source.Span

	Op      uint8  // unary/binary operator, literal kind
	Str     uint32 // name or literal text
	Sym     uint32 // binding or func id
	TypeRef uint32 // struct-lit type, cast target
	Index   uint32 // field position
	Flag    bool   // range: inclusive

	X *exprRec
	Y *exprRec
	Z *exprRec

	List   []*exprRec
	Fields []fieldInitRec
	Arms   []armRec
	Block  *blockRec
	Params []paramRec
}

type fieldInitRec struct {
	Name  uint32
	Value *exprRec
	Span  source.Span
}

type armRec struct {
	Pattern *patRec
	Guard   *exprRec
	Body    *exprRec
	Span    source.Span
}

type patRec struct {
	ID   uint32
	Kind uint8
	Type uint32
	Span source.Span

	Str      uint32 // binding name, variant case, literal text
	Lit      uint8
	Sym      uint32 // binding id
	Mode     uint8
	Flag     bool // binding: mutable; struct: trailing `..`
	NameSpan source.Span
	TypeRef  uint32

	Sub    *patRec
	List   []*patRec
	Fields []patFieldRec
}

type patFieldRec struct {
	Name uint32
	Pat  *patRec
	Span source.Span
}
