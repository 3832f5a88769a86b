package ingest

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func waitForPath(t *testing.T, ch <-chan string, want string) {
	t.Helper()
	deadline := time.After(5 * time.Second)
	for {
		select {
		case got, ok := <-ch:
			require.True(t, ok, "event channel closed before %s arrived", want)
			if got == want {
				return
			}
		case <-deadline:
			t.Fatalf("timed out waiting for %s", want)
		}
	}
}

func TestStartWatcher(t *testing.T) {
	t.Run("Should emit newly created images", func(t *testing.T) {
		root := t.TempDir()
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		evCh, _, err := StartWatcher(ctx, WatchConfig{Roots: []string{root}, Debounce: 10 * time.Millisecond})
		require.NoError(t, err)

		path := filepath.Join(root, "new.png")
		require.NoError(t, os.WriteFile(path, []byte("img"), 0o644))

		waitForPath(t, evCh, path)
	})

	t.Run("Should ignore files with other extensions", func(t *testing.T) {
		root := t.TempDir()
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		evCh, _, err := StartWatcher(ctx, WatchConfig{Roots: []string{root}})
		require.NoError(t, err)

		require.NoError(t, os.WriteFile(filepath.Join(root, "skip.txt"), []byte("x"), 0o644))
		wanted := filepath.Join(root, "keep.jpg")
		require.NoError(t, os.WriteFile(wanted, []byte("x"), 0o644))

		waitForPath(t, evCh, wanted)
	})

	t.Run("Should emit existing files on initial scan", func(t *testing.T) {
		root := t.TempDir()
		existing := filepath.Join(root, "already.png")
		require.NoError(t, os.WriteFile(existing, []byte("x"), 0o644))

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		evCh, _, err := StartWatcher(ctx, WatchConfig{Roots: []string{root}, InitialScan: true})
		require.NoError(t, err)
		waitForPath(t, evCh, existing)
	})

	t.Run("Should refuse to start without roots", func(t *testing.T) {
		_, _, err := StartWatcher(context.Background(), WatchConfig{})
		assert.Error(t, err)
	})

	t.Run("Should close channels on cancellation", func(t *testing.T) {
		root := t.TempDir()
		ctx, cancel := context.WithCancel(context.Background())

		evCh, _, err := StartWatcher(ctx, WatchConfig{Roots: []string{root}})
		require.NoError(t, err)
		cancel()

		deadline := time.After(5 * time.Second)
		for {
			select {
			case _, ok := <-evCh:
				if !ok {
					return
				}
			case <-deadline:
				t.Fatal("event channel never closed")
			}
		}
	})
}
