package hir

// UnaryOp enumerates unary operators on expressions.
type UnaryOp uint8

const (
	UnaryInvalid UnaryOp = iota
	UnaryNeg             // -x
	UnaryNot             // !x
	UnaryBitNot          // ~x
	UnaryDeref           // *x
	UnaryRef             // &x
	UnaryRefMut          // &mut x
)

func (op UnaryOp) String() string {
	switch op {
	case UnaryNeg:
		return "-"
	case UnaryNot:
		return "!"
	case UnaryBitNot:
		return "~"
	case UnaryDeref:
		return "*"
	case UnaryRef:
		return "&"
	case UnaryRefMut:
		return "&mut "
	default:
		return "?"
	}
}

// BinaryOp enumerates binary operators. Compound assignment reuses these on
// the assign statement.
type BinaryOp uint8

const (
	BinaryInvalid BinaryOp = iota
	BinaryAdd
	BinarySub
	BinaryMul
	BinaryDiv
	BinaryMod
	BinaryShl
	BinaryShr
	BinaryBitAnd
	BinaryBitXor
	BinaryBitOr
	BinaryEq
	BinaryNe
	BinaryLt
	BinaryLe
	BinaryGt
	BinaryGe
	BinaryAnd
	BinaryOr
)

func (op BinaryOp) String() string {
	switch op {
	case BinaryAdd:
		return "+"
	case BinarySub:
		return "-"
	case BinaryMul:
		return "*"
	case BinaryDiv:
		return "/"
	case BinaryMod:
		return "%"
	case BinaryShl:
		return "<<"
	case BinaryShr:
		return ">>"
	case BinaryBitAnd:
		return "&"
	case BinaryBitXor:
		return "^"
	case BinaryBitOr:
		return "|"
	case BinaryEq:
		return "=="
	case BinaryNe:
		return "!="
	case BinaryLt:
		return "<"
	case BinaryLe:
		return "<="
	case BinaryGt:
		return ">"
	case BinaryGe:
		return ">="
	case BinaryAnd:
		return "&&"
	case BinaryOr:
		return "||"
	default:
		return "?"
	}
}

// LitKind tags literal payloads.
type LitKind uint8

const (
	LitInvalid LitKind = iota
	LitInt
	LitFloat
	LitString
	LitBool
	LitUnit
)

func (k LitKind) String() string {
	switch k {
	case LitInt:
		return "int"
	case LitFloat:
		return "float"
	case LitString:
		return "string"
	case LitBool:
		return "bool"
	case LitUnit:
		return "unit"
	default:
		return "invalid"
	}
}
