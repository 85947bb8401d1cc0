package fix

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"surgelint/internal/diag"
	"surgelint/internal/source"
)

func TestGatherCandidatesSkipsDuplicateFixIDs(t *testing.T) {
	fs := source.NewFileSet()
	fileID := fs.AddVirtual("test.sg", []byte(""))
	span := source.Span{File: fileID, Start: 0, End: 0}

	diagnostics := []diag.Diagnostic{{
		Code:    diag.LintNeedlessBorrow,
		Message: "this expression creates a reference which is immediately dereferenced",
		Primary: span,
		Fixes: []diag.Fix{
			{
				ID:    "fix-duplicate",
				Title: "change this to",
				Edits: []diag.TextEdit{{Span: span, NewText: "x"}},
			},
			{
				ID:    "fix-duplicate",
				Title: "change this to (again)",
				Edits: []diag.TextEdit{{Span: span, NewText: "x"}},
			},
		},
	}}

	ctx := diag.FixBuildContext{FileSet: fs}
	candidates, skips := gatherCandidates(ctx, diagnostics)

	if len(candidates) != 1 {
		t.Fatalf("expected 1 candidate, got %d", len(candidates))
	}
	if len(skips) != 1 {
		t.Fatalf("expected 1 skipped fix, got %d", len(skips))
	}

	skip := skips[0]
	if skip.ID != "fix-duplicate" {
		t.Fatalf("expected skipped fix id 'fix-duplicate', got %q", skip.ID)
	}
	if skip.Reason != "duplicate fix id" {
		t.Fatalf("expected duplicate fix reason, got %q", skip.Reason)
	}
}

func writeSource(t *testing.T, fs *source.FileSet, name, content string) (source.FileID, string) {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	fs.SetBaseDir(dir)
	return fs.Add(path, []byte(content), 0), path
}

func TestApplyRewritesFile(t *testing.T) {
	fs := source.NewFileSet()
	fileID, path := writeSource(t, fs, "main.sg", "len(&s)")

	borrow := source.Span{File: fileID, Start: 4, End: 5}
	diagnostics := []diag.Diagnostic{
		diag.New(diag.SevWarning, diag.LintNeedlessBorrow, borrow, "this expression borrows a value which is immediately dereferenced").
			WithFixSuggestion(DeleteSpan("change this to", borrow, "&")),
	}

	result, err := Apply(fs, diagnostics, ApplyOptions{Mode: ApplyModeOnce})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if len(result.Applied) != 1 {
		t.Fatalf("applied = %d, want 1", len(result.Applied))
	}
	if result.Applied[0].EditCount != 1 {
		t.Fatalf("EditCount = %d, want 1", result.Applied[0].EditCount)
	}
	if len(result.FileChanges) != 1 || result.FileChanges[0].EditCount != 1 {
		t.Fatalf("file changes = %+v", result.FileChanges)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(got) != "len(s)" {
		t.Fatalf("file = %q, want %q", got, "len(s)")
	}
}

func TestApplyGuardMismatch(t *testing.T) {
	fs := source.NewFileSet()
	fileID, path := writeSource(t, fs, "main.sg", "len(*s)")

	span := source.Span{File: fileID, Start: 4, End: 5}
	diagnostics := []diag.Diagnostic{
		diag.New(diag.SevWarning, diag.LintNeedlessBorrow, span, "stale diagnostic").
			WithFixSuggestion(DeleteSpan("change this to", span, "&")),
	}

	result, err := Apply(fs, diagnostics, ApplyOptions{Mode: ApplyModeOnce})
	if !errors.Is(err, ErrNoFixes) {
		t.Fatalf("err = %v, want ErrNoFixes", err)
	}
	if len(result.Skipped) != 1 || result.Skipped[0].Reason != "existing text does not match expected content" {
		t.Fatalf("skipped = %+v", result.Skipped)
	}

	got, _ := os.ReadFile(path)
	if string(got) != "len(*s)" {
		t.Fatalf("guarded file was modified: %q", got)
	}
}

func TestApplyModeAllApplicability(t *testing.T) {
	build := func(fs *source.FileSet, fileID source.FileID) []diag.Diagnostic {
		safe := source.Span{File: fileID, Start: 2, End: 3}
		heuristic := source.Span{File: fileID, Start: 6, End: 7}
		return []diag.Diagnostic{
			diag.New(diag.SevWarning, diag.LintNeedlessBorrow, safe, "safe site").
				WithFixSuggestion(DeleteSpan("change this to", safe, "&")),
			diag.New(diag.SevWarning, diag.LintNeedlessBorrow, heuristic, "heuristic site").
				WithFixSuggestion(DeleteSpan("change this to", heuristic, "&",
					WithApplicability(diag.FixApplicabilitySafeWithHeuristics))),
		}
	}

	t.Run("default skips heuristics", func(t *testing.T) {
		fs := source.NewFileSet()
		fileID, path := writeSource(t, fs, "main.sg", "f(&a, &b)")
		result, err := Apply(fs, build(fs, fileID), ApplyOptions{Mode: ApplyModeAll})
		if err != nil {
			t.Fatalf("Apply: %v", err)
		}
		if len(result.Applied) != 1 || len(result.Skipped) != 1 {
			t.Fatalf("applied/skipped = %d/%d, want 1/1", len(result.Applied), len(result.Skipped))
		}
		got, _ := os.ReadFile(path)
		if string(got) != "f(a, &b)" {
			t.Fatalf("file = %q", got)
		}
	})

	t.Run("allow heuristics applies both", func(t *testing.T) {
		fs := source.NewFileSet()
		fileID, path := writeSource(t, fs, "main.sg", "f(&a, &b)")
		result, err := Apply(fs, build(fs, fileID), ApplyOptions{Mode: ApplyModeAll, AllowHeuristics: true})
		if err != nil {
			t.Fatalf("Apply: %v", err)
		}
		if len(result.Applied) != 2 {
			t.Fatalf("applied = %d, want 2", len(result.Applied))
		}
		got, _ := os.ReadFile(path)
		if string(got) != "f(a, b)" {
			t.Fatalf("file = %q", got)
		}
	})
}

func TestApplyConflictingFixes(t *testing.T) {
	fs := source.NewFileSet()
	fileID, _ := writeSource(t, fs, "main.sg", "abcdef")

	first := source.Span{File: fileID, Start: 0, End: 3}
	second := source.Span{File: fileID, Start: 2, End: 5}
	diagnostics := []diag.Diagnostic{
		diag.New(diag.SevWarning, diag.LintNeedlessBorrow, first, "first").
			WithFixSuggestion(ReplaceSpan("try this", first, "X", "abc")),
		diag.New(diag.SevWarning, diag.LintNeedlessBorrow, second, "second").
			WithFixSuggestion(ReplaceSpan("try this", second, "Y", "cde")),
	}

	result, err := Apply(fs, diagnostics, ApplyOptions{Mode: ApplyModeAll})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if len(result.Applied) != 1 {
		t.Fatalf("applied = %d, want 1", len(result.Applied))
	}
	if len(result.Skipped) != 1 {
		t.Fatalf("skipped = %d, want 1", len(result.Skipped))
	}
}

func TestApplySkipsVirtualFiles(t *testing.T) {
	fs := source.NewFileSet()
	fileID := fs.AddVirtual("virtual.sg", []byte("len(&s)"))
	span := source.Span{File: fileID, Start: 4, End: 5}

	diagnostics := []diag.Diagnostic{
		diag.New(diag.SevWarning, diag.LintNeedlessBorrow, span, "virtual target").
			WithFixSuggestion(DeleteSpan("change this to", span, "&")),
	}

	result, err := Apply(fs, diagnostics, ApplyOptions{Mode: ApplyModeOnce})
	if !errors.Is(err, ErrNoFixes) {
		t.Fatalf("err = %v, want ErrNoFixes", err)
	}
	if len(result.Skipped) != 1 || result.Skipped[0].Reason != "target file is virtual" {
		t.Fatalf("skipped = %+v", result.Skipped)
	}
}

func TestSpansConflict(t *testing.T) {
	edit := func(start, end uint32) diag.TextEdit {
		return diag.TextEdit{Span: source.Span{Start: start, End: end}}
	}
	cases := []struct {
		name string
		a, b diag.TextEdit
		want bool
	}{
		{"disjoint", edit(0, 2), edit(3, 5), false},
		{"touching ends", edit(0, 2), edit(2, 4), false},
		{"overlap", edit(0, 3), edit(2, 5), true},
		{"nested", edit(0, 10), edit(3, 5), true},
		{"two insertions same point", edit(2, 2), edit(2, 2), false},
		{"insertion inside span", edit(2, 2), edit(0, 5), true},
		{"insertion at span start", edit(0, 0), edit(0, 5), true},
		{"insertion at span end", edit(5, 5), edit(0, 5), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := spansConflict(tc.a, tc.b); got != tc.want {
				t.Fatalf("spansConflict = %v, want %v", got, tc.want)
			}
			if got := spansConflict(tc.b, tc.a); got != tc.want {
				t.Fatalf("spansConflict reversed = %v, want %v", got, tc.want)
			}
		})
	}
}
