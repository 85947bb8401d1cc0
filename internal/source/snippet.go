package source

// Snippet returns the exact source text covered by the span.
// Returns false if the span is out of bounds for its file.
func (fileSet *FileSet) Snippet(sp Span) (string, bool) {
	if int(sp.File) >= len(fileSet.files) {
		return "", false
	}
	f := &fileSet.files[sp.File]
	if sp.Start > sp.End || int(sp.End) > len(f.Content) {
		return "", false
	}
	return string(f.Content[sp.Start:sp.End]), true
}

// SnippetWithContext returns source text for the span as seen from the target
// expansion context. When the span already belongs to the target context the
// slice is exact. When it belongs to a nested expansion, the walk follows call
// sites outward until it reaches the target context and slices the call site
// instead. Returns exact=false when no such context can be reached; the caller
// is expected to substitute a placeholder and downgrade applicability.
func (fileSet *FileSet) SnippetWithContext(sp Span, target ExpansionID) (text string, exact bool) {
	walked, ok := fileSet.WalkToContext(sp, target)
	if !ok {
		return "", false
	}
	return fileSet.Snippet(walked)
}

// WalkToContext follows expansion call sites outward until the span lands in
// the target context. Bounded by the expansion table depth so a malformed
// table cannot loop.
func (fileSet *FileSet) WalkToContext(sp Span, target ExpansionID) (Span, bool) {
	for step := 0; step < len(fileSet.expansions)+1; step++ {
		if sp.Expansion == target {
			return sp, true
		}
		exp, ok := fileSet.Expansion(sp.Expansion)
		if !ok {
			return Span{}, false
		}
		sp = exp.CallSite
	}
	return Span{}, false
}
