package source

import (
	"path/filepath"
	"strings"
)

// AbsolutePath resolves path to an absolute, slash-normalized form.
func AbsolutePath(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	return normalizePath(abs), nil
}

// RelativePath rewrites path relative to baseDir. Paths that escape the base
// directory fall back to the absolute form so diffs never show ".." chains.
func RelativePath(path, baseDir string) (string, error) {
	absTarget, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	absBase, err := filepath.Abs(baseDir)
	if err != nil {
		return "", err
	}
	rel, err := filepath.Rel(absBase, absTarget)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return normalizePath(absTarget), nil
	}
	return normalizePath(rel), nil
}

// BaseName returns the final path element.
func BaseName(path string) string {
	return filepath.Base(path)
}
