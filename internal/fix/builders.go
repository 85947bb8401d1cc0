package fix

import (
	"surgelint/internal/diag"
	"surgelint/internal/source"
)

// Option mutates fix during construction.
type Option func(*diag.Fix)

// WithApplicability overrides applicability metadata.
func WithApplicability(app diag.FixApplicability) Option {
	return func(f *diag.Fix) {
		f.Applicability = app
	}
}

// WithKind overrides fix classification.
func WithKind(kind diag.FixKind) Option {
	return func(f *diag.Fix) {
		f.Kind = kind
	}
}

// Preferred marks fix as preferred suggestion.
func Preferred() Option {
	return func(f *diag.Fix) {
		f.IsPreferred = true
	}
}

// WithID sets stable identifier for fix.
func WithID(id string) Option {
	return func(f *diag.Fix) {
		f.ID = id
	}
}

// WithThunk attaches lazy builder to fix.
func WithThunk(thunk diag.FixThunk) Option {
	return func(f *diag.Fix) {
		f.Thunk = thunk
	}
}

// WithRequiresAll marks a fix whose edits only make sense when every sibling
// fix of the run is applied too, e.g. a binding rewrite spread over its uses.
func WithRequiresAll() Option {
	return func(f *diag.Fix) {
		f.RequiresAll = true
	}
}

func applyOptions(f diag.Fix, opts []Option) diag.Fix {
	for _, opt := range opts {
		if opt != nil {
			opt(&f)
		}
	}
	return f
}

// InsertText creates fix that inserts text at span (Span.Start == Span.End).
func InsertText(title string, at source.Span, text string, guard string, opts ...Option) diag.Fix {
	edit := diag.TextEdit{
		Span:    at,
		NewText: text,
		OldText: guard,
	}
	fix := diag.Fix{
		Title:         title,
		Kind:          diag.FixKindQuickFix,
		Applicability: diag.FixApplicabilityAlwaysSafe,
		Edits:         []diag.TextEdit{edit},
	}
	return applyOptions(fix, opts)
}

// DeleteSpan removes text covered by span.
func DeleteSpan(title string, span source.Span, expect string, opts ...Option) diag.Fix {
	edit := diag.TextEdit{
		Span:    span,
		NewText: "",
		OldText: expect,
	}
	fix := diag.Fix{
		Title:         title,
		Kind:          diag.FixKindQuickFix,
		Applicability: diag.FixApplicabilityAlwaysSafe,
		Edits:         []diag.TextEdit{edit},
	}
	return applyOptions(fix, opts)
}

// ReplaceSpan replaces text covered by span with newText.
func ReplaceSpan(title string, span source.Span, newText, expect string, opts ...Option) diag.Fix {
	edit := diag.TextEdit{
		Span:    span,
		NewText: newText,
		OldText: expect,
	}
	fix := diag.Fix{
		Title:         title,
		Kind:          diag.FixKindQuickFix,
		Applicability: diag.FixApplicabilityAlwaysSafe,
		Edits:         []diag.TextEdit{edit},
	}
	return applyOptions(fix, opts)
}

// ReplaceSpans builds one multi-site fix: every span is rewritten or the fix
// does not apply at all. newTexts and expects run parallel to spans; a short
// or nil expects slice leaves the remaining edits unguarded.
func ReplaceSpans(title string, spans []source.Span, newTexts, expects []string, opts ...Option) diag.Fix {
	edits := make([]diag.TextEdit, 0, len(spans))
	for i, sp := range spans {
		edit := diag.TextEdit{Span: sp}
		if i < len(newTexts) {
			edit.NewText = newTexts[i]
		}
		if i < len(expects) {
			edit.OldText = expects[i]
		}
		edits = append(edits, edit)
	}
	fix := diag.Fix{
		Title:         title,
		Kind:          diag.FixKindQuickFix,
		Applicability: diag.FixApplicabilityAlwaysSafe,
		Edits:         edits,
	}
	return applyOptions(fix, opts)
}

// DeleteSpans removes every listed span as a single fix.
func DeleteSpans(title string, spans []source.Span, opts ...Option) diag.Fix {
	edits := make([]diag.TextEdit, 0, len(spans))
	for _, sp := range spans {
		edits = append(edits, diag.TextEdit{Span: sp})
	}
	fix := diag.Fix{
		Title:         title,
		Kind:          diag.FixKindQuickFix,
		Applicability: diag.FixApplicabilityAlwaysSafe,
		Edits:         edits,
	}
	return applyOptions(fix, opts)
}

// WrapWith surrounds span with prefix and suffix insertions.
func WrapWith(title string, span source.Span, prefix, suffix string, opts ...Option) diag.Fix {
	edits := []diag.TextEdit{
		{
			Span:    source.Span{File: span.File, Start: span.Start, End: span.Start},
			NewText: prefix,
		},
		{
			Span:    source.Span{File: span.File, Start: span.End, End: span.End},
			NewText: suffix,
		},
	}
	fix := diag.Fix{
		Title:         title,
		Kind:          diag.FixKindRefactorRewrite,
		Applicability: diag.FixApplicabilitySafeWithHeuristics,
		Edits:         edits,
	}
	return applyOptions(fix, opts)
}
