package diag

import (
	"fmt"

	"surgelint/internal/source"
)

// TextEdit replaces the text covered by Span with NewText. A zero-length span
// inserts. OldText, when non-empty, is a guard: the engine refuses the edit if
// the file no longer contains exactly that text at the span.
type TextEdit struct {
	Span    source.Span
	NewText string
	OldText string
}

// FixKind coarsely classifies a fix for UI grouping.
type FixKind uint8

const (
	FixKindQuickFix FixKind = iota
	FixKindRefactorRewrite
	FixKindSourceAction
)

func (k FixKind) String() string {
	switch k {
	case FixKindQuickFix:
		return "quickfix"
	case FixKindRefactorRewrite:
		return "rewrite"
	case FixKindSourceAction:
		return "source"
	}
	return "unknown"
}

// FixApplicability states how much trust a fix deserves.
type FixApplicability uint8

const (
	// FixApplicabilityAlwaysSafe edits preserve behaviour unconditionally.
	FixApplicabilityAlwaysSafe FixApplicability = iota
	// FixApplicabilitySafeWithHeuristics edits rely on assumptions that hold
	// for idiomatic code but are not proven.
	FixApplicabilitySafeWithHeuristics
	// FixApplicabilityManualReview edits change semantics or formatting in
	// ways a human should confirm.
	FixApplicabilityManualReview
)

func (a FixApplicability) String() string {
	switch a {
	case FixApplicabilityAlwaysSafe:
		return "always-safe"
	case FixApplicabilitySafeWithHeuristics:
		return "safe-with-heuristics"
	case FixApplicabilityManualReview:
		return "manual-review"
	}
	return "unknown"
}

// FixBuildContext carries what a thunk may consult while building edits.
type FixBuildContext struct {
	FileSet *source.FileSet
}

// FixThunk lazily builds the edits of a fix.
type FixThunk func(FixBuildContext) ([]TextEdit, error)

// Fix is one suggested correction. Either Edits is populated directly or
// Thunk builds them on demand; Resolve handles both uniformly.
type Fix struct {
	ID            string
	Title         string
	Kind          FixKind
	Applicability FixApplicability
	IsPreferred   bool
	// RequiresAll marks fixes that only make sense together with every other
	// fix of the same run, e.g. renames spread over several sites.
	RequiresAll bool
	Edits       []TextEdit
	Thunk       FixThunk `json:"-" msgpack:"-"`
}

// Resolve returns the fix with Edits materialised. A fix with neither edits
// nor thunk resolves to itself.
func (f Fix) Resolve(ctx FixBuildContext) (Fix, error) {
	if len(f.Edits) > 0 || f.Thunk == nil {
		f.Thunk = nil
		return f, nil
	}
	edits, err := f.Thunk(ctx)
	if err != nil {
		return Fix{}, fmt.Errorf("build edits for %q: %w", f.Title, err)
	}
	f.Edits = edits
	f.Thunk = nil
	return f, nil
}

// MaterializeFixes resolves every fix in order. The first failing thunk aborts
// the batch.
func MaterializeFixes(ctx FixBuildContext, fixes []Fix) ([]Fix, error) {
	if len(fixes) == 0 {
		return nil, nil
	}
	out := make([]Fix, 0, len(fixes))
	for _, f := range fixes {
		resolved, err := f.Resolve(ctx)
		if err != nil {
			return nil, err
		}
		out = append(out, resolved)
	}
	return out, nil
}
