package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Run("no paths", func(t *testing.T) {
		_, err := New(nil, 0, nil)
		assert.Error(t, err)
	})

	t.Run("missing directory", func(t *testing.T) {
		_, err := New([]string{filepath.Join(t.TempDir(), "nope", "plan.vine")}, 0, nil)
		assert.ErrorContains(t, err, "watch")
	})

	t.Run("default debounce", func(t *testing.T) {
		w, err := New([]string{filepath.Join(t.TempDir(), "plan.vine")}, 0, nil)
		require.NoError(t, err)
		defer w.fsw.Close()
		assert.Equal(t, DefaultDebounce, w.debounce)
	})
}

func TestSettled(t *testing.T) {
	w := &Watcher{debounce: time.Second, pending: map[string]time.Time{}}
	now := time.Now()
	w.pending["/b.vine"] = now.Add(-2 * time.Second)
	w.pending["/a.vine"] = now.Add(-time.Second)
	w.pending["/c.vine"] = now.Add(-100 * time.Millisecond)

	assert.Equal(t, []string{"/a.vine", "/b.vine"}, w.settled(now))
	assert.Len(t, w.pending, 1)
	assert.Contains(t, w.pending, "/c.vine")
	assert.Empty(t, w.settled(now))
}

func TestRun(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "plan.vine")
	require.NoError(t, os.WriteFile(target, []byte("vine 1.0.0\n---\n"), 0o644))

	w, err := New([]string{target}, 20*time.Millisecond, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	changed := make(chan string, 4)
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx, func(path string) { changed <- path }) }()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(target, []byte("vine 1.0.0\n---\n[a] A (complete)\n"), 0o644))

	select {
	case path := <-changed:
		abs, err := filepath.Abs(target)
		require.NoError(t, err)
		assert.Equal(t, abs, path)
	case <-time.After(5 * time.Second):
		t.Fatal("no change reported")
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestRunTinyDebounce(t *testing.T) {
	w, err := New([]string{filepath.Join(t.TempDir(), "plan.vine")}, time.Nanosecond, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	assert.NotPanics(t, func() {
		assert.NoError(t, w.Run(ctx, func(string) {}))
	})
}
