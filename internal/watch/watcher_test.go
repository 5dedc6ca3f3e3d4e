package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/webupdate/internal/inject"
)

const plainHTML = "<html><head></head><body></body></html>"

func injectFile(path string) error {
	out, err := inject.Inject(plainHTML, "1", inject.Options{Mode: inject.ModeLinked, Base: "/"},
		inject.Assets{StyleHash: "aa", ScriptHash: "bb"})
	if err != nil {
		return err
	}
	return os.WriteFile(path, []byte(out), 0o600)
}

func TestWatcher_RerunsOnRewrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "index.html")
	require.NoError(t, injectFile(path))

	var runs atomic.Int32
	w, err := New(path, func(context.Context) error {
		runs.Add(1)
		return injectFile(path)
	}, 20*time.Millisecond)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	// Already injected on start: no run.
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, int32(0), runs.Load())

	require.NoError(t, os.WriteFile(path, []byte(plainHTML), 0o600))
	require.Eventually(t, func() bool { return runs.Load() == 1 }, 5*time.Second, 10*time.Millisecond)

	// The trigger's own rewrite must not cause another run.
	time.Sleep(200 * time.Millisecond)
	assert.Equal(t, int32(1), runs.Load())

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not stop")
	}
}

func TestWatcher_RunsOnStartWhenNotInjected(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "index.html")
	require.NoError(t, os.WriteFile(path, []byte(plainHTML), 0o600))

	var runs atomic.Int32
	w, err := New(path, func(context.Context) error {
		runs.Add(1)
		return injectFile(path)
	}, 20*time.Millisecond)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = w.Run(ctx) }()

	require.Eventually(t, func() bool { return runs.Load() == 1 }, 5*time.Second, 10*time.Millisecond)
}

func TestWatcher_MissingDirectory(t *testing.T) {
	w, err := New(filepath.Join(t.TempDir(), "missing", "index.html"), func(context.Context) error { return nil }, 0)
	require.NoError(t, err)
	assert.Error(t, w.Run(context.Background()))
}
