//nolint:errcheck // output funnels through printf; the first error is kept and returned once
package hir

import (
	"fmt"
	"io"
	"strings"

	"surgelint/internal/source"
	"surgelint/internal/symbols"
	"surgelint/internal/types"
)

// DumpOptions configures body dumping.
type DumpOptions struct {
	// EmitAdjusts appends `@{...}` after nodes carrying coercion steps.
	EmitAdjusts bool
}

// Printer dumps bodies to a stable text form. Bundle goldens compare against
// this output, so changes here invalidate recorded fixtures.
type Printer struct {
	w      io.Writer
	mod    *Module
	body   *Body
	indent int
	opts   DumpOptions
	err    error
}

// NewPrinter creates a printer for one module.
func NewPrinter(w io.Writer, mod *Module) *Printer {
	return NewPrinterWithOptions(w, mod, DumpOptions{})
}

// NewPrinterWithOptions creates a printer with the given options.
func NewPrinterWithOptions(w io.Writer, mod *Module, opts DumpOptions) *Printer {
	return &Printer{w: w, mod: mod, opts: opts}
}

// Dump writes every body of the module to the writer.
func Dump(w io.Writer, mod *Module) error {
	return DumpWithOptions(w, mod, DumpOptions{})
}

// DumpWithOptions writes every body with the given options.
func DumpWithOptions(w io.Writer, mod *Module, opts DumpOptions) error {
	p := NewPrinterWithOptions(w, mod, opts)
	p.printf("module %s\n", mod.Name)
	if mod.Path != "" {
		p.printf("  path: %s\n", mod.Path)
	}
	for id := 1; id < len(mod.Bodies); id++ {
		p.printf("\n")
		p.PrintBody(BodyID(id))
	}
	return p.err
}

// PrintBody prints one body as a function header plus its block.
func (p *Printer) PrintBody(id BodyID) {
	body := p.mod.Body(id)
	if body == nil {
		p.printf("body %d: <nil>\n", id)
		return
	}
	p.body = body
	defer func() { p.body = nil }()

	fn := p.mod.Funcs.Get(body.Func)
	p.printf("fn %s(", p.name(fn.Name))
	for i, param := range body.Params {
		if i > 0 {
			p.printf(", ")
		}
		b := p.mod.Bindings.Get(param.Binding)
		p.printf("%s: %s", p.name(b.Name), p.typeStr(b.Type))
	}
	p.printf(") -> %s ", p.typeStr(fn.Result))
	p.printBlock(body.Block)
	p.printf("\n")
}

func (p *Printer) printBlock(b *Block) {
	if b == nil {
		p.printf("{}")
		return
	}
	p.printf("{\n")
	p.indent++
	for i := range b.Stmts {
		p.printIndent()
		p.printStmt(&b.Stmts[i])
		p.printf("\n")
	}
	if b.Tail != nil {
		p.printIndent()
		p.printf("tail ")
		p.printExpr(b.Tail)
		p.printf("\n")
	}
	p.indent--
	p.printIndent()
	p.printf("}")
}

//nolint:gocyclo // one case per statement kind
func (p *Printer) printStmt(s *Stmt) {
	switch d := s.Data.(type) {
	case LetData:
		p.printf("let ")
		p.printPat(d.Pat)
		if d.Annot.IsValid() {
			p.printf(": %s", p.writtenStr(d.Annot))
		}
		if d.Value != nil {
			p.printf(" = ")
			p.printExpr(d.Value)
		}
	case ExprStmtData:
		p.printExpr(d.Value)
	case AssignData:
		p.printExpr(d.Target)
		if d.Op != BinaryInvalid {
			p.printf(" %s= ", d.Op)
		} else {
			p.printf(" = ")
		}
		p.printExpr(d.Value)
	case ReturnData:
		p.printf("return")
		if d.Value != nil {
			p.printf(" ")
			p.printExpr(d.Value)
		}
	case BreakData:
		p.printf("break")
		if d.Value != nil {
			p.printf(" ")
			p.printExpr(d.Value)
		}
		if d.Target.IsValid() {
			p.printf(" -> n%d", d.Target)
		}
	case WhileData:
		p.printf("while ")
		p.printExpr(d.Cond)
		p.printf(" ")
		p.printBlock(d.Body)
	case ForData:
		p.printf("for ")
		p.printPat(d.Pat)
		p.printf(" in ")
		p.printExpr(d.Iter)
		p.printf(" ")
		p.printBlock(d.Body)
	default:
		switch s.Kind {
		case StmtContinue:
			p.printf("continue")
		default:
			p.printf("<stmt %s>", s.Kind)
		}
	}
}

//nolint:gocyclo // one case per expression kind
func (p *Printer) printExpr(e *Expr) {
	if e == nil {
		p.printf("<nil>")
		return
	}
	switch d := e.Data.(type) {
	case LiteralData:
		if d.Lit == LitString {
			p.printf("%q", p.name(d.Text))
		} else {
			p.printf("%s", p.name(d.Text))
		}
	case VarRefData:
		p.printf("%s", p.name(d.Name))
	case FuncRefData:
		p.printf("%s", p.name(d.Name))
	case UnaryData:
		p.printf("%s", d.Op)
		p.printOperand(d.Operand, PrecPrefix)
	case BinaryData:
		p.printOperand(d.Left, BinaryPrec(d.Op))
		p.printf(" %s ", d.Op)
		p.printOperand(d.Right, BinaryPrec(d.Op)+1)
	case CallData:
		p.printOperand(d.Callee, PrecPostfix)
		p.printf("(")
		p.printExprList(d.Args)
		p.printf(")")
	case MethodCallData:
		p.printOperand(d.Receiver, PrecPostfix)
		p.printf(".%s(", p.name(d.Method))
		p.printExprList(d.Args)
		p.printf(")")
	case FieldData:
		p.printOperand(d.Object, PrecPostfix)
		p.printf(".%s", p.name(d.Name))
	case IndexData:
		p.printOperand(d.Object, PrecPostfix)
		p.printf("[")
		p.printExpr(d.Index)
		p.printf("]")
	case StructLitData:
		p.printf("%s{", p.typeStr(d.Type))
		for i := range d.Fields {
			if i > 0 {
				p.printf(", ")
			}
			p.printf("%s: ", p.name(d.Fields[i].Name))
			p.printExpr(d.Fields[i].Value)
		}
		p.printf("}")
	case ArrayLitData:
		p.printf("[")
		p.printExprList(d.Elems)
		p.printf("]")
	case TupleLitData:
		p.printf("(")
		p.printExprList(d.Elems)
		p.printf(")")
	case RangeData:
		if d.Start != nil {
			p.printOperand(d.Start, PrecRange+1)
		}
		if d.Inclusive {
			p.printf("..=")
		} else {
			p.printf("..")
		}
		if d.End != nil {
			p.printOperand(d.End, PrecRange+1)
		}
	case CastData:
		p.printOperand(d.Value, PrecCast)
		p.printf(" to %s", p.typeStr(d.Target))
	case AwaitData:
		p.printOperand(d.Value, PrecPostfix)
		p.printf(".await")
	case PropagateData:
		p.printOperand(d.Value, PrecPostfix)
		p.printf("!")
	case IfData:
		p.printf("if ")
		p.printExpr(d.Cond)
		p.printf(" ")
		p.printExpr(d.Then)
		if d.Else != nil {
			p.printf(" else ")
			p.printExpr(d.Else)
		}
	case CompareData:
		p.printf("compare ")
		p.printExpr(d.Value)
		p.printf(" {\n")
		p.indent++
		for i := range d.Arms {
			p.printIndent()
			p.printPat(d.Arms[i].Pattern)
			if d.Arms[i].Guard != nil {
				p.printf(" if ")
				p.printExpr(d.Arms[i].Guard)
			}
			p.printf(" => ")
			p.printExpr(d.Arms[i].Body)
			p.printf("\n")
		}
		p.indent--
		p.printIndent()
		p.printf("}")
	case BlockData:
		p.printBlock(d.Block)
	case LoopData:
		p.printf("loop ")
		p.printBlock(d.Body)
	case ClosureData:
		p.printf("fn(")
		for i, param := range d.Params {
			if i > 0 {
				p.printf(", ")
			}
			b := p.mod.Bindings.Get(param.Binding)
			p.printf("%s", p.name(b.Name))
		}
		p.printf(") => ")
		p.printExpr(d.Body)
	default:
		p.printf("<expr %s>", e.Kind)
	}
	if p.opts.EmitAdjusts && p.body != nil {
		if steps := p.body.AdjustsFor(e.ID); len(steps) > 0 {
			parts := make([]string, len(steps))
			for i, a := range steps {
				if a.Kind == AdjustBorrow && a.Mutable {
					parts[i] = "borrow mut"
				} else {
					parts[i] = a.Kind.String()
				}
			}
			p.printf("@{%s}", strings.Join(parts, ","))
		}
	}
}

// printOperand parenthesizes the child when it binds looser than the position
// requires.
func (p *Printer) printOperand(e *Expr, minPrec int8) {
	if e != nil && Precedence(e) < minPrec {
		p.printf("(")
		p.printExpr(e)
		p.printf(")")
		return
	}
	p.printExpr(e)
}

func (p *Printer) printExprList(list []*Expr) {
	for i, e := range list {
		if i > 0 {
			p.printf(", ")
		}
		p.printExpr(e)
	}
}

//nolint:gocyclo // one case per pattern kind
func (p *Printer) printPat(pat *Pat) {
	if pat == nil {
		p.printf("<nil>")
		return
	}
	switch d := pat.Data.(type) {
	case BindingPatData:
		if d.Mode == symbols.BindByRef {
			p.printf("ref ")
		}
		if d.Mutable {
			p.printf("mut ")
		}
		p.printf("%s", p.name(d.Name))
		if d.Sub != nil {
			p.printf(" @ ")
			p.printPat(d.Sub)
		}
	case LiteralPatData:
		if d.Lit == LitString {
			p.printf("%q", p.name(d.Text))
		} else {
			p.printf("%s", p.name(d.Text))
		}
	case TuplePatData:
		p.printf("(")
		for i, elem := range d.Elems {
			if i > 0 {
				p.printf(", ")
			}
			p.printPat(elem)
		}
		p.printf(")")
	case StructPatData:
		p.printf("%s{", p.typeStr(d.Type))
		for i := range d.Fields {
			if i > 0 {
				p.printf(", ")
			}
			p.printf("%s: ", p.name(d.Fields[i].Name))
			p.printPat(d.Fields[i].Pat)
		}
		if d.Rest {
			if len(d.Fields) > 0 {
				p.printf(", ")
			}
			p.printf("..")
		}
		p.printf("}")
	case VariantPatData:
		p.printf("%s::%s", p.typeStr(d.Type), p.name(d.Case))
		if len(d.Elems) > 0 {
			p.printf("(")
			for i, elem := range d.Elems {
				if i > 0 {
					p.printf(", ")
				}
				p.printPat(elem)
			}
			p.printf(")")
		}
	case OrPatData:
		for i, alt := range d.Alts {
			if i > 0 {
				p.printf(" | ")
			}
			p.printPat(alt)
		}
	default:
		switch pat.Kind {
		case PatWildcard:
			p.printf("_")
		default:
			p.printf("<pat %s>", pat.Kind)
		}
	}
}

func (p *Printer) writtenStr(id types.WrittenID) string {
	w, ok := p.mod.Types.Written(id)
	if !ok {
		return "<?>"
	}
	switch w.Kind {
	case types.WrittenNamed:
		name := p.name(w.Name)
		if len(w.Args) == 0 {
			return name
		}
		args := make([]string, len(w.Args))
		for i, arg := range w.Args {
			args[i] = p.writtenStr(arg)
		}
		return name + "<" + strings.Join(args, ", ") + ">"
	case types.WrittenRef:
		if w.Mutable {
			return "&mut " + p.writtenStr(w.Elem)
		}
		return "&" + p.writtenStr(w.Elem)
	case types.WrittenPtr:
		return "*" + p.writtenStr(w.Elem)
	case types.WrittenOwn:
		return "own " + p.writtenStr(w.Elem)
	case types.WrittenArray:
		if w.Count == types.ArrayDynamicLength {
			return "[" + p.writtenStr(w.Elem) + "]"
		}
		return fmt.Sprintf("[%s; %d]", p.writtenStr(w.Elem), w.Count)
	case types.WrittenTuple:
		elems := make([]string, len(w.Args))
		for i, elem := range w.Args {
			elems[i] = p.writtenStr(elem)
		}
		return "(" + strings.Join(elems, ", ") + ")"
	case types.WrittenFn:
		params := make([]string, len(w.Params))
		for i, param := range w.Params {
			params[i] = p.writtenStr(param)
		}
		s := "fn(" + strings.Join(params, ", ") + ")"
		if w.Result.IsValid() {
			s += " -> " + p.writtenStr(w.Result)
		}
		return s
	case types.WrittenInfer:
		return "_"
	default:
		return "<?>"
	}
}

func (p *Printer) typeStr(id types.TypeID) string {
	return types.Label(p.mod.Types, id)
}

func (p *Printer) name(id source.StringID) string {
	s, ok := p.mod.Types.Strings.Lookup(id)
	if !ok {
		return fmt.Sprintf("<str %d>", id)
	}
	return s
}

func (p *Printer) printIndent() {
	p.printf("%s", strings.Repeat("  ", p.indent))
}

func (p *Printer) printf(format string, args ...any) {
	if p.err != nil {
		return
	}
	if _, err := fmt.Fprintf(p.w, format, args...); err != nil {
		p.err = err
	}
}
