package util

import (
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
)

// SlashPath cleans p into the forward-slash, dot-free form patterns and
// relative paths are compared in. The current directory becomes "".
func SlashPath(p string) string {
	p = path.Clean(strings.TrimSpace(strings.ReplaceAll(p, `\`, "/")))
	if p == "." {
		return ""
	}
	return strings.TrimPrefix(p, "./")
}

// IsPathPattern reports whether a glob names a path rather than a base name.
func IsPathPattern(p string) bool {
	return strings.ContainsAny(p, `/\`)
}

// WithinDir reports whether p is dir itself or lies below it.
func WithinDir(p, dir string) bool {
	p, dir = SlashPath(p), SlashPath(dir)
	if p == "" || dir == "" {
		return p == dir
	}
	return p == dir || strings.HasPrefix(p, dir+"/")
}

func SortedKeys[T any](m map[string]T) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// WriteFileAtomic writes content next to path and renames it into place, so a
// reader polling the file in watch mode never sees a partial report.
func WriteFileAtomic(path, content string, perm fs.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.WriteString(content); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Chmod(perm); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// HeapAllocMB is logged after each run.
func HeapAllocMB() uint64 {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return m.Alloc >> 20
}
