package bundle

import (
	"crypto/sha256"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/vmihailenco/msgpack/v5"
	"golang.org/x/text/unicode/norm"

	"surgelint/internal/diag"
	"surgelint/internal/hir"
	"surgelint/internal/source"
	"surgelint/internal/symbols"
	"surgelint/internal/types"
)

// Load reads a bundle file, re-reads its source files from disk and verifies
// their hashes, and rebuilds the module. Relative source paths resolve
// against the bundle's directory. All failures come back as *Error; staleness
// additionally matches ErrStale so the driver can branch on it.
func Load(path string) (*Bundle, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, &Error{Code: diag.BundleUnreadable, Path: path, Err: err}
	}
	return decode(raw, filepath.Dir(path), path)
}

// Decode reads one bundle payload from r, resolving relative source paths
// against baseDir.
func Decode(r io.Reader, baseDir string) (*Bundle, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, &Error{Code: diag.BundleUnreadable, Path: "<stream>", Err: err}
	}
	return decode(raw, baseDir, "<stream>")
}

func decode(raw []byte, baseDir, path string) (*Bundle, error) {
	var p payload
	if err := msgpack.Unmarshal(raw, &p); err != nil {
		return nil, loadErr(diag.BundleCorrupt, path, "decode: %w", err)
	}
	if p.Schema != SchemaVersion {
		return nil, loadErr(diag.BundleSchema, path, "%w: schema %d, this build reads %d", ErrSchema, p.Schema, SchemaVersion)
	}

	fset := source.NewFileSetWithBase(baseDir)
	var stale []string
	for _, fr := range p.Files {
		fp := fr.Path
		if !filepath.IsAbs(fp) {
			fp = filepath.Join(baseDir, fp)
		}
		id, err := fset.Load(fp)
		if err != nil {
			return nil, loadErr(diag.BundleSourceGone, path, "source %s: %w", fr.Path, err)
		}
		f := fset.Get(id)
		if f.Hash != fr.Hash || len(f.Content) != int(fr.Size) {
			stale = append(stale, fr.Path)
		}
	}
	if len(stale) > 0 {
		return nil, loadErr(diag.BundleStale, path, "%w: %s changed since the bundle was written", ErrStale, strings.Join(stale, ", "))
	}
	for i, exp := range p.Expansions {
		id := fset.AddExpansion(exp.Directive, exp.CallSite)
		if int(id) != i+1 {
			return nil, loadErr(diag.BundleCorrupt, path, "expansion table not dense at %d", i)
		}
	}

	// The compiler interns NFC-normalized text; normalizing again is a no-op
	// for well-formed bundles and collapses duplicates (breaking density) for
	// tampered ones.
	strs := source.NewInterner()
	if len(p.Strings) == 0 || p.Strings[0] != "" {
		return nil, loadErr(diag.BundleCorrupt, path, "string table missing the empty sentinel")
	}
	for i := 1; i < len(p.Strings); i++ {
		s := norm.NFC.String(p.Strings[i])
		if id := strs.Intern(s); int(id) != i {
			return nil, loadErr(diag.BundleCorrupt, path, "string table not dense at %d (%q)", i, s)
		}
	}

	in := types.NewInterner(strs)
	if err := in.Restore(p.Types); err != nil {
		return nil, loadErr(diag.BundleCorrupt, path, "type table: %w", err)
	}

	d := &decoder{
		path:  path,
		files: fset,
		types: in,
		nstr:  len(p.Strings),
		nbind: len(p.Bindings),
		nfunc: len(p.Funcs),
	}

	for i, exp := range p.Expansions {
		if err := d.span(exp.CallSite); err != nil {
			return nil, fmt.Errorf("expansion %d: %w", i+1, err)
		}
	}

	bindings := symbols.NewBindings(uint32(len(p.Bindings)))
	for i := range p.Bindings {
		b := &p.Bindings[i]
		if err := d.bindingTypes(i, b); err != nil {
			return nil, err
		}
		bindings.New(b)
	}
	funcs := symbols.NewFuncs(uint32(len(p.Funcs)))
	for i := range p.Funcs {
		fn := &p.Funcs[i]
		if err := d.funcTypes(i, fn); err != nil {
			return nil, err
		}
		funcs.New(fn)
	}

	bodies := make([]*hir.Body, 1, len(p.Bodies)+1)
	for i := range p.Bodies {
		body, err := d.body(&p.Bodies[i])
		if err != nil {
			return nil, fmt.Errorf("body %d: %w", i+1, err)
		}
		bodies = append(bodies, body)
	}

	for i := range p.Suppressions {
		if err := d.span(p.Suppressions[i].Span); err != nil {
			return nil, fmt.Errorf("suppression %d: %w", i, err)
		}
	}

	files := make([]source.FileID, fset.Len())
	for i := range files {
		files[i] = source.FileID(i)
	}

	mod := &hir.Module{
		Name:         p.Name,
		Path:         p.Path,
		Files:        files,
		Types:        in,
		Bindings:     bindings,
		Funcs:        funcs,
		Bodies:       bodies,
		Suppressions: p.Suppressions,
	}
	return &Bundle{
		Path:   path,
		Tool:   p.Tool,
		Module: mod,
		Files:  fset,
		Digest: sha256.Sum256(raw),
	}, nil
}
