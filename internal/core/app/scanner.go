// # internal/core/app/scanner.go
package app

import (
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"docxref/internal/core/errors"
	"docxref/internal/shared/util"
)

// ScanDirectories walks the input roots and returns the sorted documentation
// files selected by the matcher. A root may also name a single file, which is
// returned as long as the matcher accepts its base name.
func ScanDirectories(roots []string, matcher *util.Matcher) ([]string, error) {
	seen := make(map[string]bool)
	var files []string
	add := func(path string) {
		if !seen[path] {
			seen[path] = true
			files = append(files, path)
		}
	}

	for _, root := range UniqueScanRoots(roots) {
		info, err := os.Stat(root)
		if err != nil {
			return nil, errors.AddContext(errors.Wrap(err, errors.CodeNotFound, "input path"), errors.CtxPath, root)
		}
		if !info.IsDir() {
			if matcher.Match(filepath.Base(root)) {
				add(root)
			}
			continue
		}

		err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if path != root && strings.HasPrefix(d.Name(), ".") {
					return filepath.SkipDir
				}
				return nil
			}
			rel, err := filepath.Rel(root, path)
			if err != nil {
				return err
			}
			if matcher.Match(filepath.ToSlash(rel)) {
				add(path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	sort.Strings(files)
	slog.Debug("scanned input", "roots", len(roots), "files", len(files))
	return files, nil
}

func UniqueScanRoots(paths []string) []string {
	seen := make(map[string]bool, len(paths))
	roots := make([]string, 0, len(paths))
	for _, p := range paths {
		normalized := filepath.Clean(p)
		if abs, err := filepath.Abs(normalized); err == nil {
			normalized = filepath.Clean(abs)
		}
		if seen[normalized] {
			continue
		}
		seen[normalized] = true
		roots = append(roots, normalized)
	}
	sort.Strings(roots)
	return roots
}
