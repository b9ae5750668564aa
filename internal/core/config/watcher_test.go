package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestWatcher_ReloadsValidChanges(t *testing.T) {
	path := filepath.Join(t.TempDir(), "docxref.toml")
	require.NoError(t, os.WriteFile(path, []byte("[parse]\nworkers = 1\n"), 0o644))

	got := make(chan *Config, 4)
	w := NewWatcher(path, func(c *Config) { got <- c })
	require.NoError(t, w.Start(context.Background()))
	defer w.Stop()

	// Invalid configs never reach the callback.
	require.NoError(t, os.WriteFile(path, []byte("[parse]\nworkers = -2\n"), 0o644))
	select {
	case c := <-got:
		t.Fatalf("unexpected reload with %d workers", c.Parse.Workers)
	case <-time.After(400 * time.Millisecond):
	}

	require.NoError(t, os.WriteFile(path, []byte("[parse]\nworkers = 3\n"), 0o644))
	select {
	case c := <-got:
		require.Equal(t, 3, c.Parse.Workers)
	case <-time.After(3 * time.Second):
		t.Fatal("config change was not reloaded")
	}
}

func TestWatcher_StopIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "docxref.toml")
	require.NoError(t, os.WriteFile(path, []byte(""), 0o644))

	w := NewWatcher(path, nil)
	require.NoError(t, w.Start(context.Background()))
	w.Stop()
	w.Stop()
}
