package deref

import (
	"surgelint/internal/hir"
	"surgelint/internal/symbols"
	"surgelint/internal/types"
)

// stableAutoDerefPosition reports whether the compiler is guaranteed to settle
// on the same concrete type at the consuming position no matter how many
// manual references are peeled off. Only then may a borrow-then-deref pair be
// handed over to auto-deref. The walk ascends from the visited node through
// value-transparent parents until it reaches the position that actually
// consumes the value.
func (w *walker) stableAutoDerefPosition(c *hir.Cursor) bool {
	in := w.ctx.Module.Types
	i := 0
	for step := 0; step < maxPositionWalk; step++ {
		p, ok := c.ParentAt(i)
		if !ok {
			return false
		}
		if p.Expr == nil && p.Stmt == nil {
			// тело функции: значение уходит в её результат
			return w.funcResultStable(w.body.Func)
		}
		if p.Stmt != nil {
			switch p.Rel {
			case hir.RelLetInit:
				d, isLet := p.Stmt.Data.(hir.LetData)
				if !isLet || !d.Annot.IsValid() {
					return false
				}
				return in.WrittenStable(d.Annot)
			case hir.RelReturnValue:
				return w.funcResultStable(w.body.Func)
			case hir.RelBreakValue:
				d, isBreak := p.Stmt.Data.(hir.BreakData)
				if !isBreak {
					return false
				}
				dist, found := c.AncestorByID(d.Target)
				if !found {
					return false
				}
				i = dist + 1
				continue
			default:
				// statement positions discard or retype the value
				return false
			}
		}
		switch p.Rel {
		case hir.RelCallArg:
			return w.callArgStable(p)
		case hir.RelMethodArg:
			return w.methodArgStable(p)
		case hir.RelCallCallee, hir.RelMethodRecv:
			return false
		case hir.RelClosureBody:
			info, found := in.FnInfo(p.Expr.Type)
			if !found {
				return false
			}
			return resultStable(in, info.Result)
		case hir.RelStructField:
			return w.structFieldStable(p)
		default:
			// остальные родители прозрачны: значение течёт дальше наверх
			i++
		}
	}
	return false
}

// callArgStable checks the declared parameter type at a call-argument slot.
// The written annotation wins when the callee is a known function; calls
// through closures and function values fall back to the semantic type.
func (w *walker) callArgStable(p hir.Parent) bool {
	in := w.ctx.Module.Types
	d, isCall := p.Expr.Data.(hir.CallData)
	if !isCall {
		return false
	}
	if d.Func.IsValid() {
		fn := w.ctx.Module.Funcs.Get(d.Func)
		if fn == nil || p.Index >= len(fn.Params) {
			return false
		}
		if p.Index < len(fn.ParamAnnots) && fn.ParamAnnots[p.Index].IsValid() {
			return in.WrittenStable(fn.ParamAnnots[p.Index])
		}
		return paramAutoDerefStable(in, fn.Params[p.Index])
	}
	if d.Callee == nil {
		return false
	}
	info, found := in.FnInfo(d.Callee.Type)
	if !found || p.Index >= len(info.Params) {
		return false
	}
	return paramAutoDerefStable(in, info.Params[p.Index])
}

// methodArgStable checks the declared parameter behind a method argument.
// Declared params are receiver-first, so argument i maps to Params[i+1].
// Method dispatch already adjusted the receiver, which can re-instantiate
// the written signature; only the semantic type is trustworthy here.
func (w *walker) methodArgStable(p hir.Parent) bool {
	d, isMethod := p.Expr.Data.(hir.MethodCallData)
	if !isMethod || !d.Func.IsValid() {
		return false
	}
	fn := w.ctx.Module.Funcs.Get(d.Func)
	idx := p.Index + 1
	if fn == nil || idx >= len(fn.Params) {
		return false
	}
	return paramAutoDerefStable(w.ctx.Module.Types, fn.Params[idx])
}

func (w *walker) structFieldStable(p hir.Parent) bool {
	in := w.ctx.Module.Types
	d, isLit := p.Expr.Data.(hir.StructLitData)
	if !isLit || p.Index >= len(d.Fields) {
		return false
	}
	fieldTy, found := in.NominalField(d.Type, d.Fields[p.Index].Name)
	if !found {
		return false
	}
	return paramAutoDerefStable(in, fieldTy)
}

func (w *walker) funcResultStable(id symbols.FuncID) bool {
	fn := w.ctx.Module.Funcs.Get(id)
	if fn == nil {
		return false
	}
	return resultStable(w.ctx.Module.Types, fn.Result)
}

// resultStable: a declared result type pins auto-deref unless it mentions
// generic parameters or inference holes.
func resultStable(in *types.Interner, result types.TypeID) bool {
	return !in.ContainsParams(result) && !in.ContainsInfer(result)
}

// paramAutoDerefStable judges a declared parameter or field type when no
// written annotation survives. The type must be a reference exactly one
// level deep; the pointee kind then decides. Anything inference can still
// bend (params, holes, opaque and dynamic types) is unstable, and nominals
// are stable only when fully instantiated.
func paramAutoDerefStable(in *types.Interner, id types.TypeID) bool {
	pointee, depth := in.PeelRefs(id)
	if depth != 1 {
		return false
	}
	tt, ok := in.Lookup(pointee)
	if !ok {
		return false
	}
	switch tt.Kind {
	case types.KindUnit, types.KindNothing, types.KindBool, types.KindString,
		types.KindInt, types.KindUint, types.KindFloat,
		types.KindArray, types.KindTuple, types.KindPointer,
		types.KindFn, types.KindClosure, types.KindReference, types.KindProjection:
		return true
	case types.KindStruct, types.KindUnion, types.KindEnum, types.KindOwn:
		return !in.ContainsParams(pointee)
	default:
		return false
	}
}
