package copier

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestVerifyValidTree(t *testing.T) {
	src := t.TempDir()
	dst := t.TempDir()

	writeTree(t, src, map[string]string{
		"a.txt":       "alpha",
		"sub/b.txt":   "bravo",
		"sub/c/d.txt": "delta",
	})

	err := Copy(context.Background(), src, dst, Options{Workers: 2})
	require.NoError(t, err)

	result, err := Verify(context.Background(), src, dst)
	require.NoError(t, err)
	require.True(t, result.Valid)
	require.Equal(t, 3, result.Files)
	require.Empty(t, result.Errors)
}

func TestVerifyMissingFile(t *testing.T) {
	src := t.TempDir()
	dst := t.TempDir()

	writeTree(t, src, map[string]string{
		"a.txt": "alpha",
		"b.txt": "bravo",
	})
	writeTree(t, dst, map[string]string{
		"a.txt": "alpha",
	})

	result, err := Verify(context.Background(), src, dst)
	require.NoError(t, err)
	require.False(t, result.Valid)
	require.Equal(t, 1, result.Missing)
	require.Contains(t, result.Errors[0], "b.txt")
}

func TestVerifySizeMismatch(t *testing.T) {
	src := t.TempDir()
	dst := t.TempDir()

	writeTree(t, src, map[string]string{"a.txt": "alpha"})
	writeTree(t, dst, map[string]string{"a.txt": "truncat"})

	result, err := Verify(context.Background(), src, dst)
	require.NoError(t, err)
	require.False(t, result.Valid)
	require.Equal(t, 1, result.SizeMismatches)
}

func TestVerifyContinuesAfterMismatch(t *testing.T) {
	src := t.TempDir()
	dst := t.TempDir()

	writeTree(t, src, map[string]string{
		"a.txt": "alpha",
		"b.txt": "bravo",
		"c.txt": "charlie",
	})
	writeTree(t, dst, map[string]string{
		"b.txt": "bravo",
	})

	result, err := Verify(context.Background(), src, dst)
	require.NoError(t, err)
	require.Equal(t, 3, result.Files)
	require.Equal(t, 2, result.Missing)
	require.Len(t, result.Errors, 2)
}

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		path := filepath.Join(root, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
}
