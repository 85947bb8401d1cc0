// Package bundle reads and writes .sgir files: one self-contained msgpack
// payload per module, carrying the typed IR the compiler exports after type
// checking together with every table it references. Source text is not
// embedded; the loader re-reads the files from disk and verifies their sha256
// hashes, so a bundle that no longer matches the tree is reported stale
// instead of being analyzed against the wrong text.
package bundle

import (
	"errors"
	"fmt"

	"surgelint/internal/diag"
	"surgelint/internal/hir"
	"surgelint/internal/source"
)

// SchemaVersion is bumped whenever the payload layout changes shape.
const SchemaVersion uint16 = 1

// Ext is the extension of bundles produced by `surge build --emit-ir`.
const Ext = ".sgir"

var (
	// ErrStale marks a bundle whose recorded source hashes no longer match
	// the files on disk.
	ErrStale = errors.New("bundle is stale")
	// ErrSchema marks a bundle written under a different schema version.
	ErrSchema = errors.New("unsupported bundle schema")
)

// Bundle is one decoded .sgir file, ready for analysis.
type Bundle struct {
	Path   string
	Tool   string // version of the compiler that wrote the bundle
	Module *hir.Module
	Files  *source.FileSet

	// Digest is the sha256 of the raw bundle bytes; the driver keys its
	// findings cache on it.
	Digest [32]byte
}

// Error ties a load failure to a diagnostic code and the bundle path.
type Error struct {
	Code diag.Code
	Path string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Code.ID(), e.Path, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func loadErr(code diag.Code, path, format string, args ...any) *Error {
	return &Error{Code: code, Path: path, Err: fmt.Errorf(format, args...)}
}
