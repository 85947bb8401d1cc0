package hir

// Expression precedence levels, highest binds tightest. Only the order
// matters: rewrites compare levels to decide whether a substituted snippet
// needs parentheses in its new position.
const (
	PrecLowest  int8 = 0
	PrecClosure int8 = 1
	PrecRange   int8 = 2
	PrecOr      int8 = 3
	PrecAnd     int8 = 4
	PrecCompare int8 = 5
	PrecBitOr   int8 = 6
	PrecBitXor  int8 = 7
	PrecBitAnd  int8 = 8
	PrecShift   int8 = 9
	PrecAdd     int8 = 10
	PrecMul     int8 = 11
	PrecCast    int8 = 12
	PrecPrefix  int8 = 13
	PrecPostfix int8 = 14
	PrecAtom    int8 = 15
)

// Precedence returns the binding strength of an expression as written.
// Block-like forms count as atoms: they delimit themselves.
func Precedence(e *Expr) int8 {
	switch e.Kind {
	case ExprLiteral, ExprVarRef, ExprFuncRef, ExprStructLit, ExprArrayLit,
		ExprTupleLit, ExprIf, ExprCompare, ExprBlock, ExprLoop:
		return PrecAtom
	case ExprCall, ExprMethodCall, ExprField, ExprIndex, ExprAwait, ExprPropagate:
		return PrecPostfix
	case ExprUnary:
		return PrecPrefix
	case ExprCast:
		return PrecCast
	case ExprBinary:
		if d, ok := e.Data.(BinaryData); ok {
			return BinaryPrec(d.Op)
		}
		return PrecLowest
	case ExprRange:
		return PrecRange
	case ExprClosure:
		return PrecClosure
	default:
		return PrecLowest
	}
}

// BinaryPrec returns the precedence tier of a binary operator.
func BinaryPrec(op BinaryOp) int8 {
	switch op {
	case BinaryMul, BinaryDiv, BinaryMod:
		return PrecMul
	case BinaryAdd, BinarySub:
		return PrecAdd
	case BinaryShl, BinaryShr:
		return PrecShift
	case BinaryBitAnd:
		return PrecBitAnd
	case BinaryBitXor:
		return PrecBitXor
	case BinaryBitOr:
		return PrecBitOr
	case BinaryEq, BinaryNe, BinaryLt, BinaryLe, BinaryGt, BinaryGe:
		return PrecCompare
	case BinaryAnd:
		return PrecAnd
	case BinaryOr:
		return PrecOr
	default:
		return PrecLowest
	}
}
