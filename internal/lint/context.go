package lint

import (
	"surgelint/internal/diag"
	"surgelint/internal/hir"
	"surgelint/internal/source"
)

// Context carries everything a pass may consult while linting one module.
// It is not safe for concurrent use; the driver builds one per module.
type Context struct {
	Module   *hir.Module
	Files    *source.FileSet
	Reporter diag.Reporter

	severity   map[string]diag.Severity
	disabled   map[string]bool
	suppressed int
}

func NewContext(mod *hir.Module, files *source.FileSet, reporter diag.Reporter) *Context {
	return &Context{
		Module:   mod,
		Files:    files,
		Reporter: reporter,
	}
}

// SetSeverity overrides the severity a lint reports at.
func (c *Context) SetSeverity(lint string, sev diag.Severity) {
	if c.severity == nil {
		c.severity = make(map[string]diag.Severity)
	}
	c.severity[lint] = sev
}

// Disable turns a lint off for this run.
func (c *Context) Disable(lint string) {
	if c.disabled == nil {
		c.disabled = make(map[string]bool)
	}
	c.disabled[lint] = true
}

// Enabled reports whether a lint participates in this run.
func (c *Context) Enabled(lint string) bool {
	return !c.disabled[lint]
}

// SeverityFor resolves the effective severity of a lint.
func (c *Context) SeverityFor(l Lint) diag.Severity {
	if sev, ok := c.severity[l.Name]; ok {
		return sev
	}
	return l.Default
}

// Suppressed reports whether an `@allow` attribute covers the span.
func (c *Context) Suppressed(lint string, sp source.Span) bool {
	return c.Module != nil && c.Module.Allowed(lint, sp)
}

// SuppressedCount returns how many findings @allow attributes swallowed.
func (c *Context) SuppressedCount() int {
	return c.suppressed
}

// Report starts a diagnostic for a lint at a span. It returns nil when the
// lint is disabled or suppressed there; the builder methods tolerate nil, so
// callers chain unconditionally and only suppressed emission is lost.
func (c *Context) Report(l Lint, sp source.Span, msg string) *diag.ReportBuilder {
	if !c.Enabled(l.Name) {
		return nil
	}
	if c.Suppressed(l.Name, sp) {
		c.suppressed++
		return nil
	}
	return diag.NewReportBuilder(c.Reporter, c.SeverityFor(l), l.Code, sp, msg)
}

// Snippet returns the exact source text of a span.
func (c *Context) Snippet(sp source.Span) (string, bool) {
	if c.Files == nil {
		return "", false
	}
	return c.Files.Snippet(sp)
}

// SnippetWithContext returns source text for a span as seen from the given
// expansion context, walking expansion call sites when the span comes from
// generated code. exact is false when the text is an approximation.
func (c *Context) SnippetWithContext(sp source.Span, target source.ExpansionID) (string, bool) {
	if c.Files == nil {
		return "", false
	}
	return c.Files.SnippetWithContext(sp, target)
}
