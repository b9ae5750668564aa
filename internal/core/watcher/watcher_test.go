package watcher

import (
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docxref/internal/shared/util"
)

func xmlMatcher(t *testing.T) *util.Matcher {
	t.Helper()
	m, err := util.NewMatcher([]string{"*.xml"}, []string{"index.xml"})
	require.NoError(t, err)
	return m
}

func tempDir(t *testing.T) string {
	t.Helper()
	dir, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)
	return dir
}

// waitFor drains batches until one contains path.
func waitFor(t *testing.T, changes <-chan []string, path string) {
	t.Helper()
	timeout := time.After(3 * time.Second)
	for {
		select {
		case paths := <-changes:
			if slices.Contains(paths, path) {
				return
			}
		case <-timeout:
			t.Fatalf("timed out waiting for change to %s", path)
		}
	}
}

func TestNewWatcher_RejectsNilCallback(t *testing.T) {
	w, err := NewWatcher(100*time.Millisecond, xmlMatcher(t), nil, nil)
	require.ErrorIs(t, err, os.ErrInvalid)
	assert.Nil(t, w)
}

func TestWatcher(t *testing.T) {
	dir := tempDir(t)

	changes := make(chan []string, 8)
	w, err := NewWatcher(50*time.Millisecond, xmlMatcher(t), nil, func(paths []string) {
		changes <- paths
	})
	require.NoError(t, err)
	defer w.Close()
	require.NoError(t, w.Watch([]string{dir}))

	compound := filepath.Join(dir, "classgeo_1_1Map.xml")
	require.NoError(t, os.WriteFile(compound, []byte("<doxygen/>"), 0o644))
	waitFor(t, changes, compound)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.xml"), []byte("<doxygenindex/>"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))
	select {
	case paths := <-changes:
		t.Fatalf("excluded files triggered a change: %v", paths)
	case <-time.After(300 * time.Millisecond):
	}

	// New directories are watched once created.
	subdir := filepath.Join(dir, "java")
	require.NoError(t, os.MkdirAll(subdir, 0o755))
	nested := filepath.Join(subdir, "classcom_1_1Store.xml")
	require.NoError(t, os.WriteFile(nested, []byte("<doxygen/>"), 0o644))
	waitFor(t, changes, nested)
}

func TestWatcher_RateLimitHoldsBatches(t *testing.T) {
	dir := tempDir(t)

	changes := make(chan []string, 8)
	w, err := NewWatcher(20*time.Millisecond, xmlMatcher(t), util.PerMinute(1, 1), func(paths []string) {
		changes <- paths
	})
	require.NoError(t, err)
	defer w.Close()
	require.NoError(t, w.Watch([]string{dir}))

	first := filepath.Join(dir, "a.xml")
	require.NoError(t, os.WriteFile(first, []byte("<doxygen/>"), 0o644))
	waitFor(t, changes, first)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.xml"), []byte("<doxygen/>"), 0o644))
	select {
	case paths := <-changes:
		t.Fatalf("rate limited batch was delivered: %v", paths)
	case <-time.After(300 * time.Millisecond):
	}

	w.pendingMu.Lock()
	assert.Contains(t, w.pending, filepath.Join(dir, "b.xml"))
	w.pendingMu.Unlock()
}

func TestWatcher_IgnoredAndHiddenPaths(t *testing.T) {
	dir := tempDir(t)
	w, err := NewWatcher(time.Millisecond, xmlMatcher(t), nil, func([]string) {})
	require.NoError(t, err)
	defer w.Close()

	w.roots = []string{dir}
	w.Ignore(filepath.Join(dir, "data"))

	assert.True(t, w.shouldExcludeFile(filepath.Join(dir, "data", "dump.xml")))
	assert.False(t, w.shouldExcludeFile(filepath.Join(dir, "xml", "dump.xml")))
	assert.True(t, w.shouldExcludeFile(filepath.Join(dir, "xml", "index.xml")))
	assert.True(t, w.shouldExcludeDir(filepath.Join(dir, ".git")))
	assert.False(t, w.shouldExcludeDir(filepath.Join(dir, "xml")))
}

func TestWatcher_Relative(t *testing.T) {
	w := &Watcher{roots: []string{"/docs", "/docs/xml"}}
	assert.Equal(t, "cpp/a.xml", w.relative("/docs/xml/cpp/a.xml"))
	assert.Equal(t, "top.xml", w.relative("/docs/top.xml"))
	assert.Equal(t, "x.xml", w.relative("/elsewhere/x.xml"))
}
