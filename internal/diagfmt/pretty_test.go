package diagfmt

import (
	"bytes"
	"strings"
	"testing"

	"surgelint/internal/diag"
	"surgelint/internal/fix"
	"surgelint/internal/source"
)

// TestPathModes проверяет различные режимы форматирования путей
func TestPathModes(t *testing.T) {
	// Создаём FileSet
	fs := source.NewFileSet()

	// Добавляем тестовый файл
	content := []byte("let total = &*owner.count\n")
	fileID := fs.AddVirtual("/home/user/project/src/test.sg", content)

	// Устанавливаем базовую директорию для relative paths
	fs.SetBaseDir("/home/user/project")

	// Создаём диагностику
	bag := diag.NewBag(10)
	d := diag.New(
		diag.SevError,
		diag.LintNeedlessBorrow,
		source.Span{File: fileID, Start: 12, End: 25},
		"this expression borrows a value that is then immediately dereferenced",
	)
	bag.Add(d)

	tests := []struct {
		name     string
		mode     PathMode
		contains string
	}{
		{
			name:     "Absolute path",
			mode:     PathModeAbsolute,
			contains: "/home/user/project/src/test.sg",
		},
		{
			name:     "Relative path",
			mode:     PathModeRelative,
			contains: "src/test.sg",
		},
		{
			name:     "Basename only",
			mode:     PathModeBasename,
			contains: "test.sg",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			opts := PrettyOpts{
				Color:    false,
				Context:  1,
				PathMode: tt.mode,
			}

			Pretty(&buf, bag, fs, opts)
			output := buf.String()

			if !strings.Contains(output, tt.contains) {
				t.Errorf("Expected output to contain %q, got:\n%s", tt.contains, output)
			}

			// Проверяем что есть основные элементы
			if !strings.Contains(output, "ERROR") {
				t.Error("Expected ERROR in output")
			}
			if !strings.Contains(output, "LINT0302") {
				t.Error("Expected LINT0302 code in output")
			}
			if !strings.Contains(output, "immediately dereferenced") {
				t.Error("Expected error message in output")
			}
		})
	}
}

// TestPathModeAuto проверяет авто-режим выбора пути
func TestPathModeAuto(t *testing.T) {
	fs := source.NewFileSet()

	tests := []struct {
		name     string
		path     string
		expected string // что должно быть в выводе
	}{
		{
			name:     "Short path - as is",
			path:     "test.sg",
			expected: "test.sg",
		},
		{
			name:     "Long absolute path - basename",
			path:     "/very/long/absolute/path/to/some/nested/directory/file.sg",
			expected: "file.sg",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			content := []byte("let x = &*y\n")
			fileID := fs.AddVirtual(tt.path, content)

			bag := diag.NewBag(10)
			d := diag.New(
				diag.SevWarning,
				diag.LintExplicitAutoDeref,
				source.Span{File: fileID, Start: 8, End: 11},
				"deref which would be done by auto-deref",
			)
			bag.Add(d)

			var buf bytes.Buffer
			opts := PrettyOpts{
				Color:    false,
				Context:  0,
				PathMode: PathModeAuto,
			}

			Pretty(&buf, bag, fs, opts)
			output := buf.String()

			if !strings.Contains(output, tt.expected) {
				t.Errorf("Expected output to contain %q, got:\n%s", tt.expected, output)
			}
		})
	}
}

func TestPrettyUnderlinesSpan(t *testing.T) {
	fs := source.NewFileSet()
	content := []byte("fn use(v: &int) {\n    consume(&*v);\n}\n")
	fileID := fs.AddVirtual("test.sg", content)
	start := uint32(strings.Index(string(content), "&*v"))

	bag := diag.NewBag(2)
	bag.Add(diag.New(
		diag.SevWarning,
		diag.LintExplicitAutoDeref,
		source.Span{File: fileID, Start: start, End: start + 3},
		"deref which would be done by auto-deref",
	))

	var buf bytes.Buffer
	Pretty(&buf, bag, fs, PrettyOpts{Color: false, Context: 0, PathMode: PathModeBasename})
	output := buf.String()

	if !strings.Contains(output, "2 |     consume(&*v);") {
		t.Fatalf("expected the offending line with gutter, got:\n%s", output)
	}
	caretLine := ""
	for _, line := range strings.Split(output, "\n") {
		if strings.Contains(line, "^~~") {
			caretLine = line
		}
	}
	if caretLine == "" {
		t.Fatalf("expected a three-column underline, got:\n%s", output)
	}
	if !strings.Contains(caretLine, strings.Repeat(" ", 12)+"^~~") {
		t.Errorf("caret is not aligned under the borrow, got %q", caretLine)
	}
}

func TestPrettyNotesAndFixes(t *testing.T) {
	fs := source.NewFileSet()
	content := []byte("take(&owner)\n")
	fileID := fs.AddVirtual("test.sg", content)

	bag := diag.NewBag(4)
	primary := source.Span{File: fileID, Start: 5, End: 11}
	d := diag.New(diag.SevWarning, diag.LintNeedlessBorrow, primary, "needless borrow")

	noteSpan := source.Span{File: fileID, Start: 11, End: 12}
	d = d.WithNote(noteSpan, "the call takes its argument by value")

	d = d.WithFix("remove the borrow", diag.TextEdit{
		Span:    primary,
		NewText: "owner",
		OldText: "&owner",
	})

	wrap := fix.WrapWith(
		"wrap the argument",
		source.Span{File: fileID, Start: 5, End: 11},
		"(",
		")",
		fix.WithID("wrap-arg-001"),
	)
	lazy := diag.Fix{
		ID:            wrap.ID,
		Title:         wrap.Title,
		Kind:          wrap.Kind,
		Applicability: wrap.Applicability,
		Thunk: func(diag.FixBuildContext) ([]diag.TextEdit, error) {
			return wrap.Edits, nil
		},
	}
	d = d.WithFixSuggestion(lazy)

	bag.Add(d)

	var buf bytes.Buffer
	opts := PrettyOpts{
		Color:     false,
		Context:   0,
		PathMode:  PathModeBasename,
		ShowNotes: true,
		ShowFixes: true,
	}
	Pretty(&buf, bag, fs, opts)

	output := buf.String()

	if !strings.Contains(output, "note: test.sg:1:12") {
		t.Fatalf("expected note with location, got:\n%s", output)
	}

	if !strings.Contains(output, "fix #1: remove the borrow") {
		t.Fatalf("expected first fix entry, got:\n%s", output)
	}

	if !strings.Contains(output, "apply=\"owner\"") {
		t.Fatalf("expected fix edit apply preview, got:\n%s", output)
	}

	if !strings.Contains(output, "id=wrap-arg-001") {
		t.Fatalf("expected lazy fix id in output, got:\n%s", output)
	}
}

func TestPrettyFixPreview(t *testing.T) {
	fs := source.NewFileSet()
	content := []byte("let count = &*shared.count")
	fileID := fs.AddVirtual("example.sg", content)

	bag := diag.NewBag(2)
	span := source.Span{File: fileID, Start: 12, End: 14}
	d := diag.New(diag.SevWarning, diag.LintExplicitAutoDeref, span, "deref which would be done by auto-deref")
	d = d.WithFix("remove the deref", diag.TextEdit{
		Span:    span,
		NewText: "",
		OldText: "&*",
	})

	bag.Add(d)

	var buf bytes.Buffer
	opts := PrettyOpts{
		Color:       false,
		Context:     0,
		PathMode:    PathModeBasename,
		ShowFixes:   true,
		ShowPreview: true,
	}
	Pretty(&buf, bag, fs, opts)

	output := buf.String()
	if !strings.Contains(output, "preview:") {
		t.Fatalf("expected preview header in output, got:\n%s", output)
	}
	if !strings.Contains(output, "- let count = &*shared.count") {
		t.Fatalf("expected before line in preview, got:\n%s", output)
	}
	if !strings.Contains(output, "+ let count = shared.count") {
		t.Fatalf("expected after line in preview, got:\n%s", output)
	}
}
