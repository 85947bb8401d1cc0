package diag

import (
	"testing"

	"surgelint/internal/source"
)

func span(file source.FileID, start, end uint32) source.Span {
	return source.Span{File: file, Start: start, End: end}
}

func TestBagLimitAndDropped(t *testing.T) {
	bag := NewBag(2)
	for i := uint32(0); i < 3; i++ {
		ok := bag.Add(Diagnostic{
			Severity: SevWarning,
			Code:     LintNeedlessBorrow,
			Message:  "borrow",
			Primary:  span(1, i, i+1),
		})
		if want := i < 2; ok != want {
			t.Fatalf("Add #%d = %v, want %v", i, ok, want)
		}
	}
	if bag.Len() != 2 {
		t.Fatalf("Len = %d, want 2", bag.Len())
	}
	if bag.Dropped() != 1 {
		t.Fatalf("Dropped = %d, want 1", bag.Dropped())
	}
}

func TestBagSort(t *testing.T) {
	bag := NewBag(8)
	bag.Add(New(SevWarning, LintExplicitAutoDeref, span(2, 0, 1), "later file"))
	bag.Add(New(SevWarning, LintNeedlessBorrow, span(1, 5, 6), "later offset"))
	bag.Add(New(SevError, BundleSpanRange, span(1, 0, 1), "error first"))
	bag.Add(New(SevWarning, LintNeedlessBorrow, span(1, 0, 1), "warning after error"))
	bag.Sort()

	got := make([]string, 0, bag.Len())
	for _, d := range bag.Items() {
		got = append(got, d.Message)
	}
	want := []string{"error first", "warning after error", "later offset", "later file"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("sorted[%d] = %q, want %q (all: %v)", i, got[i], want[i], got)
		}
	}
}

func TestBagMergeGrowsCap(t *testing.T) {
	left := NewBag(1)
	left.Add(New(SevWarning, LintNeedlessBorrow, span(1, 0, 1), "a"))
	right := NewBag(2)
	right.Add(New(SevWarning, LintNeedlessBorrow, span(1, 1, 2), "b"))
	right.Add(New(SevWarning, LintNeedlessBorrow, span(1, 2, 3), "c"))

	left.Merge(right)
	if left.Len() != 3 {
		t.Fatalf("Len = %d, want 3", left.Len())
	}
	if left.Cap() < 3 {
		t.Fatalf("Cap = %d, want >= 3", left.Cap())
	}
}

func TestBagDedup(t *testing.T) {
	bag := NewBag(4)
	d := New(SevWarning, LintNeedlessBorrow, span(1, 0, 1), "dup")
	bag.Add(d)
	bag.Add(d)
	bag.Add(New(SevWarning, LintNeedlessBorrow, span(1, 2, 3), "other"))
	bag.Dedup()
	if bag.Len() != 2 {
		t.Fatalf("Len after Dedup = %d, want 2", bag.Len())
	}
}

func TestReportBuilderEmitOnce(t *testing.T) {
	bag := NewBag(4)
	b := ReportWarning(BagReporter{Bag: bag}, LintExplicitDerefCall, span(1, 0, 4), "explicit `__deref` call").
		WithNote(span(1, 4, 5), "receiver is auto-dereferenced here").
		WithFix("try this", TextEdit{Span: span(1, 0, 4), NewText: "value"})
	b.Emit()
	b.Emit()

	if bag.Len() != 1 {
		t.Fatalf("Len = %d, want 1", bag.Len())
	}
	d := bag.Items()[0]
	if len(d.Notes) != 1 || len(d.Fixes) != 1 {
		t.Fatalf("notes/fixes = %d/%d, want 1/1", len(d.Notes), len(d.Fixes))
	}
	if d.Fixes[0].Title != "try this" {
		t.Fatalf("fix title = %q", d.Fixes[0].Title)
	}
}

func TestReportBuilderNilSafe(t *testing.T) {
	var b *ReportBuilder
	b.WithNote(span(1, 0, 1), "ignored").WithFixSuggestion(Fix{Title: "x"}).Emit()
	if got := b.Diagnostic(); got.Code != UnknownCode {
		t.Fatalf("nil builder Diagnostic = %+v", got)
	}
}

func TestDedupReporter(t *testing.T) {
	bag := NewBag(8)
	r := NewDedupReporter(BagReporter{Bag: bag})

	ref := span(1, 0, 3)
	r.Report(LintNeedlessBorrow, SevWarning, ref, "this expression creates a reference which is immediately dereferenced", nil, nil)
	r.Report(LintNeedlessBorrow, SevWarning, ref, "this expression creates a reference which is immediately dereferenced", nil, nil)
	r.Report(LintNeedlessBorrow, SevWarning, ref, "this expression borrows a value which is immediately dereferenced", nil, nil)

	if bag.Len() != 2 {
		t.Fatalf("Len = %d, want 2", bag.Len())
	}
}

func TestMultiReporter(t *testing.T) {
	first := NewBag(4)
	second := NewBag(4)
	m := MultiReporter{BagReporter{Bag: first}, nil, BagReporter{Bag: second}}
	m.Report(LintRefBindingToRef, SevWarning, span(1, 0, 5), "this pattern creates a reference to a reference", nil, nil)

	if first.Len() != 1 || second.Len() != 1 {
		t.Fatalf("fan-out lens = %d/%d, want 1/1", first.Len(), second.Len())
	}
}
