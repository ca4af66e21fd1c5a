package uploader

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocloud.dev/blob"
	_ "gocloud.dev/blob/memblob"
)

func openMemBucket(t *testing.T) *blob.Bucket {
	t.Helper()
	bucket, err := blob.OpenBucket(context.Background(), "mem://")
	require.NoError(t, err)
	t.Cleanup(func() { bucket.Close() })
	return bucket
}

func TestUploadTree(t *testing.T) {
	src := t.TempDir()
	files := map[string]string{
		"a.txt":            "alpha",
		"sub/b.txt":        "bravo",
		"sub/deeper/c.txt": "charlie",
	}
	for name, content := range files {
		path := filepath.Join(src, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}

	ctx := context.Background()
	bucket := openMemBucket(t)

	require.NoError(t, UploadTree(ctx, bucket, src, "coco/train2017", Options{Workers: 4}))

	for name, content := range files {
		r, err := bucket.NewReader(ctx, "coco/train2017/"+name, nil)
		require.NoError(t, err, "object %s", name)
		data, err := io.ReadAll(r)
		require.NoError(t, r.Close())
		require.NoError(t, err)
		assert.Equal(t, content, string(data))
	}
}

func TestUploadTreeOverwrites(t *testing.T) {
	src := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(src, "x.txt"), []byte("new"), 0o644))

	ctx := context.Background()
	bucket := openMemBucket(t)
	require.NoError(t, bucket.WriteAll(ctx, "pfx/x.txt", []byte("old"), nil))

	require.NoError(t, UploadTree(ctx, bucket, src, "pfx", Options{}))

	data, err := bucket.ReadAll(ctx, "pfx/x.txt")
	require.NoError(t, err)
	assert.Equal(t, "new", string(data))
}

func TestUploadTreeAggregatesFailures(t *testing.T) {
	src := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(src, "good.txt"), []byte("fine"), 0o644))
	require.NoError(t, os.Symlink(filepath.Join(src, "nope"), filepath.Join(src, "broken")))

	ctx := context.Background()
	bucket := openMemBucket(t)

	err := UploadTree(ctx, bucket, src, "pfx", Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken")

	data, readErr := bucket.ReadAll(ctx, "pfx/good.txt")
	require.NoError(t, readErr)
	assert.Equal(t, "fine", string(data))
}

func TestIsBucketURL(t *testing.T) {
	tests := []struct {
		input    string
		expected bool
	}{
		{"s3://bucket/prefix", true},
		{"gs://bucket", true},
		{"file:///vol/coco", true},
		{"mem://", true},
		{"/vol/coco", false},
		{"relative/path", false},
		{"C:/windows/style", false},
		{"", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, IsBucketURL(tt.input), "IsBucketURL(%q)", tt.input)
	}
}
