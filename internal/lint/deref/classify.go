package deref

import (
	"surgelint/internal/hir"
	"surgelint/internal/source"
	"surgelint/internal/types"
)

// refOp tags one explicit reference operation.
type refOp uint8

const (
	refOpMethod refOp = iota + 1 // __deref()/__deref_mut(), method or call form
	refOpDeref                   // unary *
	refOpAddrOf                  // unary & or &mut
)

// refOpInfo is the result of classifying one expression.
type refOpInfo struct {
	op      refOp
	operand *hir.Expr
	// mutable is set for __deref_mut.
	mutable bool
	// callForm marks the call spelling `__deref(x)`; skip then names the
	// callee node the walker must step over.
	callForm bool
	skip     hir.NodeID
}

// dunderNames holds the interned names classification compares against.
// Bundle identifiers arrive NFC-normalized, so ID equality is name equality.
type dunderNames struct {
	deref    source.StringID
	derefMut source.StringID
}

func internDunders(strings *source.Interner) dunderNames {
	return dunderNames{
		deref:    strings.Intern("__deref"),
		derefMut: strings.Intern("__deref_mut"),
	}
}

// classify decides whether e is a reference operation and returns its
// operand. Pure function of the node and the type tables.
func classify(in *types.Interner, names dunderNames, e *hir.Expr) (refOpInfo, bool) {
	switch d := e.Data.(type) {
	case hir.MethodCallData:
		if len(d.Args) != 0 {
			return refOpInfo{}, false
		}
		switch d.Method {
		case names.deref:
			return refOpInfo{op: refOpMethod, operand: d.Receiver}, true
		case names.derefMut:
			return refOpInfo{op: refOpMethod, operand: d.Receiver, mutable: true}, true
		}
	case hir.CallData:
		callee, ok := d.Callee.Data.(hir.FuncRefData)
		if !ok || len(d.Args) != 1 {
			return refOpInfo{}, false
		}
		switch callee.Name {
		case names.deref:
			return refOpInfo{op: refOpMethod, operand: d.Args[0], callForm: true, skip: d.Callee.ID}, true
		case names.derefMut:
			return refOpInfo{op: refOpMethod, operand: d.Args[0], mutable: true, callForm: true, skip: d.Callee.ID}, true
		}
	case hir.UnaryData:
		switch d.Op {
		case hir.UnaryDeref:
			if tt, ok := in.Lookup(d.Operand.Type); ok && tt.Kind == types.KindPointer {
				// derefs of raw pointers are never implicit
				return refOpInfo{}, false
			}
			return refOpInfo{op: refOpDeref, operand: d.Operand}, true
		case hir.UnaryRef, hir.UnaryRefMut:
			return refOpInfo{op: refOpAddrOf, operand: d.Operand}, true
		}
	}
	return refOpInfo{}, false
}

// derefMethodSameType reports whether a deref call left the pointee type
// unchanged: both sides references to the same referent. Anything else
// counts as a type change.
func derefMethodSameType(in *types.Interner, result, operand types.TypeID) bool {
	return in.SamePointee(result, operand)
}

// isDerefExpr reports whether e is a unary `*x`.
func isDerefExpr(e *hir.Expr) bool {
	d, ok := e.Data.(hir.UnaryData)
	return ok && d.Op == hir.UnaryDeref
}
