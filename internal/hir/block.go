package hir

import "surgelint/internal/source"

// Block is a brace-delimited statement list. Tail, when present, is the
// expression whose value the block yields; coercions on a tail value may be
// recorded against the enclosing block expression rather than the tail itself.
type Block struct {
	Stmts []Stmt
	Tail  *Expr
	Span  source.Span
}
