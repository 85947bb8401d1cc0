package hir

import (
	"surgelint/internal/source"
	"surgelint/internal/symbols"
	"surgelint/internal/types"
)

// ExprKind discriminates expression nodes.
type ExprKind uint8

const (
	ExprInvalid    ExprKind = iota
	ExprLiteral             // 42, "s", true, ()
	ExprVarRef              // a binding read
	ExprFuncRef             // a function referenced as a value or callee
	ExprUnary               // -x, !x, *x, &x, &mut x
	ExprBinary              // a + b
	ExprCall                // f(a, b)
	ExprMethodCall          // x.f(a, b)
	ExprField               // x.field
	ExprIndex               // x[i]
	ExprStructLit           // Point{x: 1, y: 2}
	ExprArrayLit            // [1, 2, 3]
	ExprTupleLit            // (a, b)
	ExprRange               // a..b, a..=b
	ExprCast                // x to T
	ExprAwait               // x.await
	ExprPropagate           // x!
	ExprIf                  // if c { .. } else { .. }
	ExprCompare             // compare v { arm => .. }
	ExprBlock               // { stmts; tail }
	ExprLoop                // loop { .. }, value supplied by break
	ExprClosure             // fn(a) => expr
)

func (k ExprKind) String() string {
	switch k {
	case ExprLiteral:
		return "literal"
	case ExprVarRef:
		return "varref"
	case ExprFuncRef:
		return "funcref"
	case ExprUnary:
		return "unary"
	case ExprBinary:
		return "binary"
	case ExprCall:
		return "call"
	case ExprMethodCall:
		return "methodcall"
	case ExprField:
		return "field"
	case ExprIndex:
		return "index"
	case ExprStructLit:
		return "structlit"
	case ExprArrayLit:
		return "arraylit"
	case ExprTupleLit:
		return "tuplelit"
	case ExprRange:
		return "range"
	case ExprCast:
		return "cast"
	case ExprAwait:
		return "await"
	case ExprPropagate:
		return "propagate"
	case ExprIf:
		return "if"
	case ExprCompare:
		return "compare"
	case ExprBlock:
		return "block"
	case ExprLoop:
		return "loop"
	case ExprClosure:
		return "closure"
	default:
		return "invalid"
	}
}

// Expr is one expression node. Type is the resolved type of the expression
// itself, before coercions; the steps inference appended afterwards live in
// Body.Adjusts under the node's ID.
type Expr struct {
	ID   NodeID
	Kind ExprKind
	Type types.TypeID
	Span source.Span
	Data ExprData
}

// ExprData is the kind-specific payload of an expression node.
type ExprData interface {
	exprData()
}

// LiteralData carries a literal with its source text.
type LiteralData struct {
	Lit  LitKind
	Text source.StringID
}

// VarRefData is a read of a value binding.
type VarRefData struct {
	Name    source.StringID
	Binding symbols.BindingID
}

// FuncRefData names a declared function used as a callee or value.
type FuncRefData struct {
	Name source.StringID
	Func symbols.FuncID
}

// UnaryData applies a unary operator to one operand.
type UnaryData struct {
	Op      UnaryOp
	Operand *Expr
}

// BinaryData applies a binary operator.
type BinaryData struct {
	Op    BinaryOp
	Left  *Expr
	Right *Expr
}

// CallData is a call in function form. Func is resolved when the callee is a
// FuncRef; calls through closures and function values leave it NoFuncID.
type CallData struct {
	Callee *Expr
	Args   []*Expr
	Func   symbols.FuncID
}

// MethodCallData is a call in method form: the receiver is written before the
// dot and is not part of Args. Func always resolves to the declared method.
type MethodCallData struct {
	Receiver *Expr
	Method   source.StringID
	Args     []*Expr
	Func     symbols.FuncID
}

// FieldData reads a named field.
type FieldData struct {
	Object *Expr
	Name   source.StringID
	Index  uint32 // field position inside the nominal's field list
}

// IndexData is a subscript.
type IndexData struct {
	Object *Expr
	Index  *Expr
}

// FieldInit is one `name: value` entry of a struct literal.
type FieldInit struct {
	Name  source.StringID
	Value *Expr
	Span  source.Span
}

// StructLitData constructs a nominal value.
type StructLitData struct {
	Type   types.TypeID
	Fields []FieldInit
}

// ArrayLitData lists array elements.
type ArrayLitData struct {
	Elems []*Expr
}

// TupleLitData lists tuple elements.
type TupleLitData struct {
	Elems []*Expr
}

// RangeData is a range literal. Either bound may be nil.
type RangeData struct {
	Start     *Expr
	End       *Expr
	Inclusive bool
}

// CastData converts a value with `to`.
type CastData struct {
	Value  *Expr
	Target types.TypeID
}

// AwaitData suspends on a task value.
type AwaitData struct {
	Value *Expr
}

// PropagateData unwraps an error union, returning the error upward on failure.
type PropagateData struct {
	Value *Expr
}

// IfData is an if expression. Else may be nil when the value is unit; Else is
// either a block or another if expression.
type IfData struct {
	Cond *Expr
	Then *Expr
	Else *Expr
}

// CompareArm is one arm of a compare expression.
type CompareArm struct {
	Pattern *Pat
	Guard   *Expr // nil when absent
	Body    *Expr
	Span    source.Span
}

// CompareData matches a scrutinee against arms.
type CompareData struct {
	Value *Expr
	Arms  []CompareArm
}

// BlockData wraps a block used in expression position.
type BlockData struct {
	Block *Block
}

// LoopData is an infinite loop expression; `break v` supplies its value.
type LoopData struct {
	Body *Block
}

// ClosureData is an anonymous function inlined in its enclosing body. The
// closure's nodes share the enclosing body's ID space and adjustment table.
type ClosureData struct {
	Params []Param
	Body   *Expr
}

func (LiteralData) exprData()    {}
func (VarRefData) exprData()     {}
func (FuncRefData) exprData()    {}
func (UnaryData) exprData()      {}
func (BinaryData) exprData()     {}
func (CallData) exprData()       {}
func (MethodCallData) exprData() {}
func (FieldData) exprData()      {}
func (IndexData) exprData()      {}
func (StructLitData) exprData()  {}
func (ArrayLitData) exprData()   {}
func (TupleLitData) exprData()   {}
func (RangeData) exprData()      {}
func (CastData) exprData()       {}
func (AwaitData) exprData()      {}
func (PropagateData) exprData()  {}
func (IfData) exprData()         {}
func (CompareData) exprData()    {}
func (BlockData) exprData()      {}
func (LoopData) exprData()       {}
func (ClosureData) exprData()    {}
