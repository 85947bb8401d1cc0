package hir

import (
	"surgelint/internal/source"
	"surgelint/internal/types"
)

// StmtKind discriminates statement nodes. Block-like constructs in statement
// position are exported as StmtExpr wrapping the expression form; only
// constructs with no value form keep dedicated kinds.
type StmtKind uint8

const (
	StmtInvalid StmtKind = iota
	StmtLet
	StmtExpr
	StmtAssign
	StmtReturn
	StmtBreak
	StmtContinue
	StmtWhile
	StmtFor
)

func (k StmtKind) String() string {
	switch k {
	case StmtLet:
		return "let"
	case StmtExpr:
		return "expr"
	case StmtAssign:
		return "assign"
	case StmtReturn:
		return "return"
	case StmtBreak:
		return "break"
	case StmtContinue:
		return "continue"
	case StmtWhile:
		return "while"
	case StmtFor:
		return "for"
	default:
		return "invalid"
	}
}

// Stmt is one statement node.
type Stmt struct {
	Kind StmtKind
	Span source.Span
	Data StmtData
}

// StmtData is the kind-specific payload of a statement.
type StmtData interface {
	stmtData()
}

// LetData declares bindings from an initializer. Annot is the written type
// annotation covering the whole pattern, NoWrittenID when inferred.
type LetData struct {
	Pat   *Pat
	Annot types.WrittenID
	Value *Expr // nil for a declaration without initializer
}

// ExprStmtData evaluates an expression for effect.
type ExprStmtData struct {
	Value *Expr
}

// AssignData stores into a place. Op is BinaryInvalid for plain `=` and the
// operator for compound forms like `+=`.
type AssignData struct {
	Target *Expr
	Value  *Expr
	Op     BinaryOp
}

// ReturnData returns from the enclosing function. Value is nil for a bare
// return.
type ReturnData struct {
	Value *Expr
}

// BreakData exits the loop expression identified by Target. Value is nil
// unless the target is a loop expression expecting one.
type BreakData struct {
	Value  *Expr
	Target NodeID
}

// WhileData loops while the condition holds. While has no value form, so it
// stays a statement.
type WhileData struct {
	Cond *Expr
	Body *Block
}

// ForData iterates a sequence, binding each element through the pattern.
type ForData struct {
	Pat  *Pat
	Iter *Expr
	Body *Block
}

func (LetData) stmtData()      {}
func (ExprStmtData) stmtData() {}
func (AssignData) stmtData()   {}
func (ReturnData) stmtData()   {}
func (BreakData) stmtData()    {}
func (WhileData) stmtData()    {}
func (ForData) stmtData()      {}
