package hir

import (
	"surgelint/internal/source"
	"surgelint/internal/symbols"
	"surgelint/internal/types"
)

// Suppression is one `@allow(lint_name)` attribute: findings of that lint
// whose primary span lies inside Span are dropped.
type Suppression struct {
	Lint string
	Span source.Span
}

// Module is one compiled surge module as exported by the compiler. The
// interner and tables are shared by every body.
type Module struct {
	Name string
	Path string

	Files []source.FileID

	Types    *types.Interner
	Bindings *symbols.Bindings
	Funcs    *symbols.Funcs

	// Bodies is 1-based like the arena tables: slot 0 is nil.
	Bodies []*Body

	Suppressions []Suppression
}

// Body returns the body for an ID, nil when out of range.
func (m *Module) Body(id BodyID) *Body {
	if id == NoBodyID || int(id) >= len(m.Bodies) {
		return nil
	}
	return m.Bodies[id]
}

// BodyCount returns the number of real bodies, the sentinel excluded.
func (m *Module) BodyCount() int {
	if len(m.Bodies) == 0 {
		return 0
	}
	return len(m.Bodies) - 1
}

// Allowed reports whether a lint is suppressed at the given span.
func (m *Module) Allowed(lint string, sp source.Span) bool {
	for i := range m.Suppressions {
		s := &m.Suppressions[i]
		if s.Lint != lint {
			continue
		}
		if s.Span.File == sp.File && s.Span.Start <= sp.Start && sp.End <= s.Span.End {
			return true
		}
	}
	return false
}
