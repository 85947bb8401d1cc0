package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"surgelint/internal/diag"
	"surgelint/internal/source"
)

var (
	prettyErrorColor   = color.New(color.FgRed, color.Bold)
	prettyWarningColor = color.New(color.FgYellow, color.Bold)
	prettyInfoColor    = color.New(color.FgCyan, color.Bold)
	prettyCodeColor    = color.New(color.FgWhite, color.Bold)
	prettyGutterColor  = color.New(color.FgHiBlack)
	prettyCaretColor   = color.New(color.FgGreen, color.Bold)
	prettyNoteColor    = color.New(color.FgCyan)
)

// Pretty форматирует диагностики в человекочитаемый вид.
// Идёт по bag.Items() (ожидается bag.Sort() заранее).
// Для каждого diag печатает:
// <path>:<line>:<col>: <SEV> <CODE>: <Message>
// затем контекст строки с подчёркиванием ^~~~ по Span, затем Notes с аналогичным форматом.
// Цвет включается опцией.
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) {
	p := prettyPrinter{w: w, fs: fs, opts: opts}
	items := bag.Items()
	for i := range items {
		if i > 0 {
			p.line("")
		}
		p.diagnostic(&items[i])
	}
	if n := bag.Dropped(); n > 0 {
		p.line(fmt.Sprintf("... and %d more diagnostics not shown", n))
	}
}

type prettyPrinter struct {
	w    io.Writer
	fs   *source.FileSet
	opts PrettyOpts
}

func (p *prettyPrinter) paint(c *color.Color, s string) string {
	if !p.opts.Color {
		return s
	}
	return c.Sprint(s)
}

// line writes one output line, truncated to the configured width.
func (p *prettyPrinter) line(s string) {
	if p.opts.Width > 0 && runewidth.StringWidth(s) > int(p.opts.Width) {
		s = runewidth.Truncate(s, int(p.opts.Width), "…")
	}
	fmt.Fprintln(p.w, s)
}

func (p *prettyPrinter) location(span source.Span) string {
	f := p.fs.Get(span.File)
	if f == nil {
		return fmt.Sprintf("<file %d>", span.File)
	}
	start, _ := p.fs.Resolve(span)
	return fmt.Sprintf("%s:%d:%d", p.opts.PathMode.render(f, p.fs), start.Line, start.Col)
}

func (p *prettyPrinter) severity(sev diag.Severity) string {
	switch sev {
	case diag.SevError:
		return p.paint(prettyErrorColor, sev.String())
	case diag.SevWarning:
		return p.paint(prettyWarningColor, sev.String())
	default:
		return p.paint(prettyInfoColor, sev.String())
	}
}

func (p *prettyPrinter) diagnostic(d *diag.Diagnostic) {
	p.line(fmt.Sprintf("%s: %s %s: %s",
		p.location(d.Primary),
		p.severity(d.Severity),
		p.paint(prettyCodeColor, d.Code.ID()),
		d.Message,
	))
	p.snippet(d.Primary)

	if p.opts.ShowNotes {
		for _, note := range d.Notes {
			p.line(fmt.Sprintf("  %s %s: %s", p.paint(prettyNoteColor, "note:"), p.location(note.Span), note.Msg))
			p.snippet(note.Span)
		}
	}

	if p.opts.ShowFixes && len(d.Fixes) > 0 {
		p.fixes(d.Fixes)
	}
}

// snippet prints the span's first line with a caret underline, plus
// opts.Context lines of surrounding code.
func (p *prettyPrinter) snippet(span source.Span) {
	f := p.fs.Get(span.File)
	if f == nil || len(f.Content) == 0 {
		return
	}
	start, _ := p.fs.Resolve(span)
	ctx := uint32(0)
	if p.opts.Context > 0 {
		ctx = uint32(p.opts.Context)
	}

	first := uint32(1)
	if start.Line > ctx {
		first = start.Line - ctx
	}
	last := start.Line + ctx
	lastLine := uint32(len(f.LineIdx)) + 1
	if last > lastLine {
		last = lastLine
	}

	for ln := first; ln <= last; ln++ {
		text := strings.TrimRight(f.GetLine(ln), "\n")
		p.line(fmt.Sprintf("  %s %s",
			p.paint(prettyGutterColor, fmt.Sprintf("%4d |", ln)),
			text,
		))
		if ln != start.Line {
			continue
		}
		p.line(fmt.Sprintf("  %s %s%s",
			p.paint(prettyGutterColor, "     |"),
			strings.Repeat(" ", caretIndent(text, start.Col)),
			p.paint(prettyCaretColor, caretUnderline(text, span, start.Col)),
		))
	}
}

// caretIndent is the display width of the line text before the span, so the
// caret lands under the right column even with wide runes.
func caretIndent(lineText string, col uint32) int {
	if col <= 1 {
		return 0
	}
	prefix := lineText
	if int(col-1) <= len(lineText) {
		prefix = lineText[:col-1]
	}
	return runewidth.StringWidth(prefix)
}

// caretUnderline covers the span on its first line: "^" then "~" for the rest.
func caretUnderline(lineText string, span source.Span, col uint32) string {
	n := int(span.Len())
	if n < 1 {
		n = 1
	}
	// clamp to the visible rest of the line
	if rest := len(lineText) - int(col-1); rest > 0 && n > rest {
		n = rest
	}
	if n <= 1 {
		return "^"
	}
	return "^" + strings.Repeat("~", n-1)
}

func (p *prettyPrinter) fixes(fixes []diag.Fix) {
	ctx := diag.FixBuildContext{FileSet: p.fs}
	for i, fix := range sortedFixes(fixes) {
		resolved, err := fix.Resolve(ctx)
		if err != nil {
			p.line(fmt.Sprintf("  fix #%d: %s (unavailable: %v)", i+1, fix.Title, err))
			continue
		}

		head := fmt.Sprintf("  fix #%d: %s [%s, %s]", i+1, resolved.Title, resolved.Kind, resolved.Applicability)
		if resolved.IsPreferred {
			head += " (preferred)"
		}
		if resolved.ID != "" {
			head += " id=" + resolved.ID
		}
		p.line(head)

		for _, edit := range resolved.Edits {
			detail := fmt.Sprintf("    %s apply=%q", p.location(edit.Span), edit.NewText)
			if edit.OldText != "" {
				detail = fmt.Sprintf("    %s replace=%q apply=%q", p.location(edit.Span), edit.OldText, edit.NewText)
			}
			p.line(detail)
			if p.opts.ShowPreview {
				p.editPreview(edit)
			}
		}
	}
}

func (p *prettyPrinter) editPreview(edit diag.TextEdit) {
	preview, err := buildFixEditPreview(p.fs, edit)
	if err != nil {
		return
	}
	p.line("    preview:")
	for _, l := range preview.before {
		p.line("      " + p.paint(prettyErrorColor, "- "+l))
	}
	for _, l := range preview.after {
		p.line("      " + p.paint(prettyCaretColor, "+ "+l))
	}
}
