package hir

// Rel identifies the slot a node occupies inside its parent.
type Rel uint8

const (
	RelRoot Rel = iota
	RelUnaryOperand
	RelBinaryLeft
	RelBinaryRight
	RelCallCallee
	RelCallArg
	RelMethodRecv
	RelMethodArg
	RelFieldObject
	RelIndexObject
	RelIndexIndex
	RelStructField
	RelArrayElem
	RelTupleElem
	RelRangeStart
	RelRangeEnd
	RelCastValue
	RelAwaitValue
	RelPropagateValue
	RelIfCond
	RelIfThen
	RelIfElse
	RelCompareValue
	RelCompareGuard
	RelCompareBody
	RelBlockTail
	RelBodyTail
	RelClosureBody
	RelLetInit
	RelStmtExpr
	RelAssignTarget
	RelAssignValue
	RelReturnValue
	RelBreakValue
	RelWhileCond
	RelForIter
)

//nolint:gocyclo // plain name table
func (r Rel) String() string {
	switch r {
	case RelUnaryOperand:
		return "unary-operand"
	case RelBinaryLeft:
		return "binary-left"
	case RelBinaryRight:
		return "binary-right"
	case RelCallCallee:
		return "call-callee"
	case RelCallArg:
		return "call-arg"
	case RelMethodRecv:
		return "method-recv"
	case RelMethodArg:
		return "method-arg"
	case RelFieldObject:
		return "field-object"
	case RelIndexObject:
		return "index-object"
	case RelIndexIndex:
		return "index-index"
	case RelStructField:
		return "struct-field"
	case RelArrayElem:
		return "array-elem"
	case RelTupleElem:
		return "tuple-elem"
	case RelRangeStart:
		return "range-start"
	case RelRangeEnd:
		return "range-end"
	case RelCastValue:
		return "cast-value"
	case RelAwaitValue:
		return "await-value"
	case RelPropagateValue:
		return "propagate-value"
	case RelIfCond:
		return "if-cond"
	case RelIfThen:
		return "if-then"
	case RelIfElse:
		return "if-else"
	case RelCompareValue:
		return "compare-value"
	case RelCompareGuard:
		return "compare-guard"
	case RelCompareBody:
		return "compare-body"
	case RelBlockTail:
		return "block-tail"
	case RelBodyTail:
		return "body-tail"
	case RelClosureBody:
		return "closure-body"
	case RelLetInit:
		return "let-init"
	case RelStmtExpr:
		return "stmt-expr"
	case RelAssignTarget:
		return "assign-target"
	case RelAssignValue:
		return "assign-value"
	case RelReturnValue:
		return "return-value"
	case RelBreakValue:
		return "break-value"
	case RelWhileCond:
		return "while-cond"
	case RelForIter:
		return "for-iter"
	default:
		return "root"
	}
}

// Parent links a visited node to the slot holding it. Exactly one of Expr and
// Stmt is set; both are nil for RelBodyTail, which marks the value position of
// the body itself.
type Parent struct {
	Expr  *Expr
	Stmt  *Stmt
	Rel   Rel
	Index int // element position for RelCallArg, RelMethodArg, RelStructField and list slots
}

// Visitor receives every expression and pattern of a body in preorder: a node
// is visited before its children, children in source order. The cursor passed
// in is only valid for the duration of the call.
type Visitor interface {
	VisitExpr(c *Cursor, e *Expr)
	VisitPat(c *Cursor, p *Pat)
}

// Cursor tracks the path from the body root to the node currently visited.
// Nodes do not store parent pointers; everything a pass learns about context
// comes from this stack.
type Cursor struct {
	body  *Body
	stack []Parent
}

// Body returns the body being walked.
func (c *Cursor) Body() *Body { return c.body }

// Depth returns the number of enclosing slots above the current node.
func (c *Cursor) Depth() int { return len(c.stack) }

// Parent returns the innermost enclosing slot. ok is false at the root.
func (c *Cursor) Parent() (Parent, bool) {
	return c.ParentAt(0)
}

// ParentAt returns the slot i levels out from the current node; ParentAt(0)
// is the immediate parent.
func (c *Cursor) ParentAt(i int) (Parent, bool) {
	if i < 0 || i >= len(c.stack) {
		return Parent{}, false
	}
	return c.stack[len(c.stack)-1-i], true
}

// AncestorByID finds the enclosing expression carrying the given node ID and
// returns its ParentAt distance. Used to resolve break targets.
func (c *Cursor) AncestorByID(id NodeID) (int, bool) {
	for i := len(c.stack) - 1; i >= 0; i-- {
		if e := c.stack[i].Expr; e != nil && e.ID == id {
			return len(c.stack) - 1 - i, true
		}
	}
	return 0, false
}

// Walk visits every node of the body in preorder. Closure bodies are walked
// inline as part of the enclosing body.
func Walk(body *Body, v Visitor) {
	c := &Cursor{body: body}
	c.walkBlock(body.Block, nil, v)
}

func (c *Cursor) push(p Parent) { c.stack = append(c.stack, p) }
func (c *Cursor) pop()          { c.stack = c.stack[:len(c.stack)-1] }

//nolint:gocyclo // one case per payload kind, splitting would obscure the shape
func (c *Cursor) walkExpr(e *Expr, v Visitor) {
	if e == nil {
		return
	}
	v.VisitExpr(c, e)
	switch d := e.Data.(type) {
	case UnaryData:
		c.push(Parent{Expr: e, Rel: RelUnaryOperand})
		c.walkExpr(d.Operand, v)
		c.pop()
	case BinaryData:
		c.push(Parent{Expr: e, Rel: RelBinaryLeft})
		c.walkExpr(d.Left, v)
		c.pop()
		c.push(Parent{Expr: e, Rel: RelBinaryRight})
		c.walkExpr(d.Right, v)
		c.pop()
	case CallData:
		c.push(Parent{Expr: e, Rel: RelCallCallee})
		c.walkExpr(d.Callee, v)
		c.pop()
		for i, arg := range d.Args {
			c.push(Parent{Expr: e, Rel: RelCallArg, Index: i})
			c.walkExpr(arg, v)
			c.pop()
		}
	case MethodCallData:
		c.push(Parent{Expr: e, Rel: RelMethodRecv})
		c.walkExpr(d.Receiver, v)
		c.pop()
		for i, arg := range d.Args {
			c.push(Parent{Expr: e, Rel: RelMethodArg, Index: i})
			c.walkExpr(arg, v)
			c.pop()
		}
	case FieldData:
		c.push(Parent{Expr: e, Rel: RelFieldObject})
		c.walkExpr(d.Object, v)
		c.pop()
	case IndexData:
		c.push(Parent{Expr: e, Rel: RelIndexObject})
		c.walkExpr(d.Object, v)
		c.pop()
		c.push(Parent{Expr: e, Rel: RelIndexIndex})
		c.walkExpr(d.Index, v)
		c.pop()
	case StructLitData:
		for i := range d.Fields {
			c.push(Parent{Expr: e, Rel: RelStructField, Index: i})
			c.walkExpr(d.Fields[i].Value, v)
			c.pop()
		}
	case ArrayLitData:
		for i, elem := range d.Elems {
			c.push(Parent{Expr: e, Rel: RelArrayElem, Index: i})
			c.walkExpr(elem, v)
			c.pop()
		}
	case TupleLitData:
		for i, elem := range d.Elems {
			c.push(Parent{Expr: e, Rel: RelTupleElem, Index: i})
			c.walkExpr(elem, v)
			c.pop()
		}
	case RangeData:
		if d.Start != nil {
			c.push(Parent{Expr: e, Rel: RelRangeStart})
			c.walkExpr(d.Start, v)
			c.pop()
		}
		if d.End != nil {
			c.push(Parent{Expr: e, Rel: RelRangeEnd})
			c.walkExpr(d.End, v)
			c.pop()
		}
	case CastData:
		c.push(Parent{Expr: e, Rel: RelCastValue})
		c.walkExpr(d.Value, v)
		c.pop()
	case AwaitData:
		c.push(Parent{Expr: e, Rel: RelAwaitValue})
		c.walkExpr(d.Value, v)
		c.pop()
	case PropagateData:
		c.push(Parent{Expr: e, Rel: RelPropagateValue})
		c.walkExpr(d.Value, v)
		c.pop()
	case IfData:
		c.push(Parent{Expr: e, Rel: RelIfCond})
		c.walkExpr(d.Cond, v)
		c.pop()
		c.push(Parent{Expr: e, Rel: RelIfThen})
		c.walkExpr(d.Then, v)
		c.pop()
		if d.Else != nil {
			c.push(Parent{Expr: e, Rel: RelIfElse})
			c.walkExpr(d.Else, v)
			c.pop()
		}
	case CompareData:
		c.push(Parent{Expr: e, Rel: RelCompareValue})
		c.walkExpr(d.Value, v)
		c.pop()
		for i := range d.Arms {
			arm := &d.Arms[i]
			c.walkPat(arm.Pattern, v)
			if arm.Guard != nil {
				c.push(Parent{Expr: e, Rel: RelCompareGuard, Index: i})
				c.walkExpr(arm.Guard, v)
				c.pop()
			}
			c.push(Parent{Expr: e, Rel: RelCompareBody, Index: i})
			c.walkExpr(arm.Body, v)
			c.pop()
		}
	case BlockData:
		c.walkBlock(d.Block, e, v)
	case LoopData:
		c.walkBlock(d.Body, e, v)
	case ClosureData:
		c.push(Parent{Expr: e, Rel: RelClosureBody})
		c.walkExpr(d.Body, v)
		c.pop()
	}
}

func (c *Cursor) walkPat(p *Pat, v Visitor) {
	if p == nil {
		return
	}
	v.VisitPat(c, p)
	switch d := p.Data.(type) {
	case BindingPatData:
		c.walkPat(d.Sub, v)
	case TuplePatData:
		for _, elem := range d.Elems {
			c.walkPat(elem, v)
		}
	case StructPatData:
		for i := range d.Fields {
			c.walkPat(d.Fields[i].Pat, v)
		}
	case VariantPatData:
		for _, elem := range d.Elems {
			c.walkPat(elem, v)
		}
	case OrPatData:
		for _, alt := range d.Alts {
			c.walkPat(alt, v)
		}
	}
}

// walkBlock walks statements then the tail value. owner is the expression the
// block belongs to, nil for statement-owned blocks; the tail is linked to the
// owner so passes see where the block's value flows.
func (c *Cursor) walkBlock(b *Block, owner *Expr, v Visitor) {
	if b == nil {
		return
	}
	for i := range b.Stmts {
		c.walkStmt(&b.Stmts[i], v)
	}
	if b.Tail != nil {
		if owner != nil {
			c.push(Parent{Expr: owner, Rel: RelBlockTail})
		} else {
			c.push(Parent{Rel: RelBodyTail})
		}
		c.walkExpr(b.Tail, v)
		c.pop()
	}
}

func (c *Cursor) walkStmt(s *Stmt, v Visitor) {
	switch d := s.Data.(type) {
	case LetData:
		c.walkPat(d.Pat, v)
		if d.Value != nil {
			c.push(Parent{Stmt: s, Rel: RelLetInit})
			c.walkExpr(d.Value, v)
			c.pop()
		}
	case ExprStmtData:
		c.push(Parent{Stmt: s, Rel: RelStmtExpr})
		c.walkExpr(d.Value, v)
		c.pop()
	case AssignData:
		c.push(Parent{Stmt: s, Rel: RelAssignTarget})
		c.walkExpr(d.Target, v)
		c.pop()
		c.push(Parent{Stmt: s, Rel: RelAssignValue})
		c.walkExpr(d.Value, v)
		c.pop()
	case ReturnData:
		if d.Value != nil {
			c.push(Parent{Stmt: s, Rel: RelReturnValue})
			c.walkExpr(d.Value, v)
			c.pop()
		}
	case BreakData:
		if d.Value != nil {
			c.push(Parent{Stmt: s, Rel: RelBreakValue})
			c.walkExpr(d.Value, v)
			c.pop()
		}
	case WhileData:
		c.push(Parent{Stmt: s, Rel: RelWhileCond})
		c.walkExpr(d.Cond, v)
		c.pop()
		c.walkBlock(d.Body, nil, v)
	case ForData:
		c.walkPat(d.Pat, v)
		c.push(Parent{Stmt: s, Rel: RelForIter})
		c.walkExpr(d.Iter, v)
		c.pop()
		c.walkBlock(d.Body, nil, v)
	}
}
