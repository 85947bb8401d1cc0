// Package baseline records a set of fingerprinted findings to ignore, so a
// tree with legacy debt can adopt the linter without drowning in it. A
// fingerprint survives edits elsewhere in the file: it is the lint code, the
// file path, the line the finding starts on and a hash of the message, not a
// byte offset.
package baseline

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"surgelint/internal/diag"
	"surgelint/internal/source"
)

// formatVersion is bumped when the file layout changes.
const formatVersion = 1

type file struct {
	Version  int     `yaml:"version"`
	Findings []Entry `yaml:"findings"`
}

// Entry is one recorded finding.
type Entry struct {
	Code string `yaml:"code"`
	File string `yaml:"file"`
	Line uint32 `yaml:"line"`
	Hash string `yaml:"hash"`
}

// Baseline is a loaded set of entries. Matching consumes entries, so two
// identical findings pass the filter only if the baseline recorded both.
type Baseline struct {
	counts map[Entry]int
}

// Fingerprint derives the entry a diagnostic would match.
func Fingerprint(d *diag.Diagnostic, files *source.FileSet) Entry {
	start, _ := files.Resolve(d.Primary)
	sum := sha256.Sum256([]byte(d.Message))
	return Entry{
		Code: d.Code.ID(),
		File: files.Get(d.Primary.File).Path,
		Line: start.Line,
		Hash: hex.EncodeToString(sum[:8]),
	}
}

// Collect fingerprints a finding set in order.
func Collect(items []diag.Diagnostic, files *source.FileSet) []Entry {
	var entries []Entry
	for i := range items {
		entries = append(entries, Fingerprint(&items[i], files))
	}
	return entries
}

// Write stores the entries, replacing the previous baseline atomically.
func Write(path string, entries []Entry) error {
	raw, err := yaml.Marshal(file{Version: formatVersion, Findings: entries})
	if err != nil {
		return fmt.Errorf("encode baseline: %w", err)
	}
	f, err := os.CreateTemp(filepath.Dir(path), "tmp-*")
	if err != nil {
		return err
	}
	defer func() {
		_ = os.Remove(f.Name())
	}()
	if _, err := f.Write(raw); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(f.Name(), path)
}

// Load reads a baseline file.
func Load(path string) (*Baseline, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read baseline: %w", err)
	}
	var f file
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("%s: %s: %w", diag.BaselineCorrupt.ID(), path, err)
	}
	if f.Version != formatVersion {
		return nil, fmt.Errorf("%s: %s: version %d, this build reads %d", diag.BaselineCorrupt.ID(), path, f.Version, formatVersion)
	}
	b := &Baseline{counts: make(map[Entry]int, len(f.Findings))}
	for _, e := range f.Findings {
		b.counts[e]++
	}
	return b, nil
}

// Len reports how many entries remain unmatched.
func (b *Baseline) Len() int {
	n := 0
	for _, c := range b.counts {
		n += c
	}
	return n
}

// Match consumes one entry if the diagnostic is recorded.
func (b *Baseline) Match(d *diag.Diagnostic, files *source.FileSet) bool {
	if b == nil {
		return false
	}
	e := Fingerprint(d, files)
	if b.counts[e] == 0 {
		return false
	}
	b.counts[e]--
	return true
}

// Filter drops recorded findings and returns the remainder together with the
// number filtered out.
func (b *Baseline) Filter(items []diag.Diagnostic, files *source.FileSet) (kept []diag.Diagnostic, dropped int) {
	if b == nil {
		return items, 0
	}
	kept = items[:0:0]
	for i := range items {
		if b.Match(&items[i], files) {
			dropped++
			continue
		}
		kept = append(kept, items[i])
	}
	return kept, dropped
}
