package fix

import (
	"testing"

	"surgelint/internal/diag"
	"surgelint/internal/source"
)

// TestWithRequiresAll проверяет, что опция WithRequiresAll устанавливает флаг
func TestWithRequiresAll(t *testing.T) {
	fs := source.NewFileSet()
	fileID := fs.AddVirtual("test.sg", []byte("let x = 1"))

	span := source.Span{File: fileID, Start: 0, End: 0}
	fix := InsertText("add borrow", span, "&", "", WithRequiresAll())

	if !fix.RequiresAll {
		t.Error("expected RequiresAll to be true")
	}
}

// TestDeleteSpan проверяет guard-текст при удалении
func TestDeleteSpan(t *testing.T) {
	fs := source.NewFileSet()
	fileID := fs.AddVirtual("test.sg", []byte("len(&s)"))

	span := source.Span{File: fileID, Start: 4, End: 5}
	fix := DeleteSpan("change this to", span, "&")

	if len(fix.Edits) != 1 {
		t.Fatalf("expected 1 edit, got %d", len(fix.Edits))
	}
	edit := fix.Edits[0]
	if edit.NewText != "" {
		t.Errorf("expected empty NewText for deletion, got %q", edit.NewText)
	}
	if edit.OldText != "&" {
		t.Errorf("expected OldText '&', got %q", edit.OldText)
	}
}

// TestMultipleOptions проверяет комбинацию нескольких опций
func TestMultipleOptions(t *testing.T) {
	fs := source.NewFileSet()
	fileID := fs.AddVirtual("test.sg", []byte("let x = 1"))

	span := source.Span{File: fileID, Start: 0, End: 0}
	fix := InsertText(
		"try this",
		span,
		"*",
		"",
		WithRequiresAll(),
		Preferred(),
		WithID("custom-id"),
		WithKind(diag.FixKindRefactorRewrite),
		WithApplicability(diag.FixApplicabilitySafeWithHeuristics),
	)

	if !fix.RequiresAll {
		t.Error("expected RequiresAll to be true")
	}
	if !fix.IsPreferred {
		t.Error("expected IsPreferred to be true")
	}
	if fix.ID != "custom-id" {
		t.Errorf("expected ID 'custom-id', got %q", fix.ID)
	}
	if fix.Kind != diag.FixKindRefactorRewrite {
		t.Errorf("expected Kind FixKindRefactorRewrite, got %v", fix.Kind)
	}
	if fix.Applicability != diag.FixApplicabilitySafeWithHeuristics {
		t.Errorf("expected Applicability SafeWithHeuristics, got %v", fix.Applicability)
	}
}

// TestWrapWith проверяет вставки префикса и суффикса
func TestWrapWith(t *testing.T) {
	fs := source.NewFileSet()
	fileID := fs.AddVirtual("test.sg", []byte("x + y"))

	span := source.Span{File: fileID, Start: 0, End: 5}
	fix := WrapWith("wrap in parentheses", span, "(", ")")

	if len(fix.Edits) != 2 {
		t.Fatalf("expected 2 edits (prefix and suffix), got %d", len(fix.Edits))
	}
	if fix.Edits[0].NewText != "(" {
		t.Errorf("expected prefix '(', got %q", fix.Edits[0].NewText)
	}
	if fix.Edits[1].NewText != ")" {
		t.Errorf("expected suffix ')', got %q", fix.Edits[1].NewText)
	}
	if fix.Edits[0].Span.Len() != 0 || fix.Edits[1].Span.Len() != 0 {
		t.Error("wrap edits must be insertions")
	}
	if fix.Applicability != diag.FixApplicabilitySafeWithHeuristics {
		t.Errorf("expected heuristic applicability, got %v", fix.Applicability)
	}
}

// TestReplaceSpans проверяет multi-site fix с guard-текстами
func TestReplaceSpans(t *testing.T) {
	fs := source.NewFileSet()
	fileID := fs.AddVirtual("test.sg", []byte("f(ref x); g(ref x)"))

	spans := []source.Span{
		{File: fileID, Start: 2, End: 7},
		{File: fileID, Start: 12, End: 17},
	}
	newTexts := []string{"x", "x"}
	expects := []string{"ref x", "ref x"}

	fix := ReplaceSpans("try this", spans, newTexts, expects, WithRequiresAll())

	if !fix.RequiresAll {
		t.Error("expected RequiresAll to be true")
	}
	if len(fix.Edits) != 2 {
		t.Fatalf("expected 2 edits, got %d", len(fix.Edits))
	}
	for i, edit := range fix.Edits {
		if edit.NewText != "x" {
			t.Errorf("edit %d: expected NewText 'x', got %q", i, edit.NewText)
		}
		if edit.OldText != "ref x" {
			t.Errorf("edit %d: expected OldText 'ref x', got %q", i, edit.OldText)
		}
	}
}

// TestDeleteSpans проверяет удаление нескольких span одним fix
func TestDeleteSpans(t *testing.T) {
	fs := source.NewFileSet()
	fileID := fs.AddVirtual("test.sg", []byte("a, b, c"))

	spans := []source.Span{
		{File: fileID, Start: 1, End: 3},
		{File: fileID, Start: 4, End: 6},
	}
	fix := DeleteSpans("remove separators", spans)

	if len(fix.Edits) != 2 {
		t.Fatalf("expected 2 edits, got %d", len(fix.Edits))
	}
	for i, edit := range fix.Edits {
		if edit.NewText != "" {
			t.Errorf("edit %d: expected empty NewText, got %q", i, edit.NewText)
		}
	}
}

// TestWithThunk проверяет опцию WithThunk
func TestWithThunk(t *testing.T) {
	fs := source.NewFileSet()
	fileID := fs.AddVirtual("test.sg", []byte("let x = 1"))

	span := source.Span{File: fileID, Start: 0, End: 0}
	fix := InsertText("lazy fix", span, "&", "", WithThunk(func(diag.FixBuildContext) ([]diag.TextEdit, error) {
		return nil, nil
	}))

	if fix.Thunk == nil {
		t.Error("expected Thunk to be set")
	}
}

// TestNilOption проверяет, что nil опции игнорируются
func TestNilOption(t *testing.T) {
	fs := source.NewFileSet()
	fileID := fs.AddVirtual("test.sg", []byte("let x = 1"))

	span := source.Span{File: fileID, Start: 0, End: 0}

	var nilOpt Option
	fix := InsertText("try this", span, "&", "", nilOpt, WithRequiresAll())

	if !fix.RequiresAll {
		t.Error("expected RequiresAll to be true")
	}
	if len(fix.Edits) != 1 {
		t.Fatalf("expected 1 edit, got %d", len(fix.Edits))
	}
}

// TestDefaults проверяет значения по умолчанию
func TestDefaults(t *testing.T) {
	fs := source.NewFileSet()
	fileID := fs.AddVirtual("test.sg", []byte("let x = 1"))

	span := source.Span{File: fileID, Start: 0, End: 0}
	fix := InsertText("try this", span, "&", "")

	if fix.Applicability != diag.FixApplicabilityAlwaysSafe {
		t.Errorf("expected default Applicability AlwaysSafe, got %v", fix.Applicability)
	}
	if fix.Kind != diag.FixKindQuickFix {
		t.Errorf("expected default Kind QuickFix, got %v", fix.Kind)
	}
}
