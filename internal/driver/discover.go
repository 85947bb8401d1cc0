package driver

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"surgelint/internal/bundle"
)

// Discover resolves the input paths to a sorted list of bundle files. A path
// naming a .sgir file is taken as is; a directory is walked recursively.
// Hidden directories are skipped.
func Discover(paths []string) ([]string, error) {
	if len(paths) == 0 {
		paths = []string{"."}
	}

	seen := make(map[string]bool)
	var found []string
	add := func(p string) {
		p = filepath.Clean(p)
		if !seen[p] {
			seen[p] = true
			found = append(found, p)
		}
	}

	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("discover %q: %w", p, err)
		}
		if !info.IsDir() {
			if !strings.HasSuffix(p, bundle.Ext) {
				return nil, fmt.Errorf("discover %q: not a %s bundle", p, bundle.Ext)
			}
			add(p)
			continue
		}
		err = filepath.WalkDir(p, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				// the walk root itself may be hidden, only children are skipped
				if path != p && strings.HasPrefix(d.Name(), ".") {
					return filepath.SkipDir
				}
				return nil
			}
			if strings.HasSuffix(path, bundle.Ext) {
				add(path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("discover %q: %w", p, err)
		}
	}

	// Сортируем для детерминированного порядка
	sort.Strings(found)
	return found, nil
}
