package diag

import (
	"surgelint/internal/source"
)

// Note is a secondary location attached to a diagnostic.
type Note struct {
	Span source.Span
	Msg  string
}

// Diagnostic is one finding with its location, context and suggested fixes.
type Diagnostic struct {
	Severity Severity
	Code     Code
	Message  string
	Primary  source.Span
	Notes    []Note
	Fixes    []Fix
}
