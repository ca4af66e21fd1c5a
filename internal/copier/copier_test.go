package copier

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cocoload/internal/testutils"
)

func buildTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
}

func TestCopyTree(t *testing.T) {
	for _, workers := range []int{1, 4, 48} {
		t.Run(map[int]string{1: "one_worker", 4: "four_workers", 48: "default_pool"}[workers], func(t *testing.T) {
			src := t.TempDir()
			dst := t.TempDir()

			files := map[string]string{
				"a.txt":             "alpha",
				"sub/b.txt":         "bravo",
				"sub/deeper/c.txt":  "charlie",
				"sub/deeper/d.json": `{"k": 1}`,
			}
			buildTree(t, src, files)
			require.NoError(t, os.MkdirAll(filepath.Join(src, "emptydir"), 0o755))

			require.NoError(t, Copy(context.Background(), src, dst, Options{Workers: workers}))

			testutils.CompareTrees(t, src, dst)

			info, err := os.Stat(filepath.Join(dst, "emptydir"))
			require.NoError(t, err)
			assert.True(t, info.IsDir())
		})
	}
}

func TestCopyPreservesModTime(t *testing.T) {
	src := t.TempDir()
	dst := t.TempDir()

	path := filepath.Join(src, "old.txt")
	require.NoError(t, os.WriteFile(path, []byte("data"), 0o644))
	mtime := time.Date(2017, 9, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, os.Chtimes(path, mtime, mtime))

	require.NoError(t, Copy(context.Background(), src, dst, Options{}))

	info, err := os.Stat(filepath.Join(dst, "old.txt"))
	require.NoError(t, err)
	assert.True(t, info.ModTime().Equal(mtime), "mtime = %v, want %v", info.ModTime(), mtime)
}

func TestCopyIntoExistingDestination(t *testing.T) {
	src := t.TempDir()
	dst := t.TempDir()

	buildTree(t, src, map[string]string{"sub/file.txt": "fresh"})

	// Destination already has the same subdirectory and a stale file.
	require.NoError(t, os.MkdirAll(filepath.Join(dst, "sub"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dst, "sub", "file.txt"), []byte("stale"), 0o644))

	require.NoError(t, Copy(context.Background(), src, dst, Options{}))

	data, err := os.ReadFile(filepath.Join(dst, "sub", "file.txt"))
	require.NoError(t, err)
	assert.Equal(t, "fresh", string(data), "existing file should be overwritten")
}

func TestCopyRerunIsIdempotent(t *testing.T) {
	src := t.TempDir()
	dst := t.TempDir()

	buildTree(t, src, map[string]string{"a.txt": "one", "sub/b.txt": "two"})

	require.NoError(t, Copy(context.Background(), src, dst, Options{}))
	require.NoError(t, Copy(context.Background(), src, dst, Options{}))

	testutils.CompareTrees(t, src, dst)
}

func TestCopyAggregatesFailures(t *testing.T) {
	src := t.TempDir()
	dst := t.TempDir()

	buildTree(t, src, map[string]string{"good.txt": "fine"})
	// A dangling symlink fails to open but must not stop the rest.
	require.NoError(t, os.Symlink(filepath.Join(src, "nonexistent"), filepath.Join(src, "broken")))

	err := Copy(context.Background(), src, dst, Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken")

	data, readErr := os.ReadFile(filepath.Join(dst, "good.txt"))
	require.NoError(t, readErr, "unaffected file should still be copied")
	assert.Equal(t, "fine", string(data))
}

func TestCopyCancelled(t *testing.T) {
	src := t.TempDir()
	buildTree(t, src, map[string]string{"a.txt": "data"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Copy(ctx, src, t.TempDir(), Options{})
	assert.ErrorIs(t, err, context.Canceled)
}
