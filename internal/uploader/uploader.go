package uploader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sync"

	"gocloud.dev/blob"

	"cocoload/internal/progress"
)

// Options configures a tree upload.
type Options struct {
	// Workers is the size of the worker pool.
	// Default: 48 (same pool size as the local copier)
	Workers int

	// BufferSize bounds the copy buffer per worker.
	// Default: 1 MiB
	BufferSize int

	// Progress is an optional progress reporter.
	Progress *progress.Reporter
}

// UploadTree writes every regular file under src to the bucket under
// prefix, mirroring the tree structure in object key paths. Uploads are
// dispatched to a bounded worker pool which is fully drained before
// UploadTree returns; per-file failures are aggregated into the returned
// error. Existing objects with the same keys are overwritten.
//
// Empty directories have no object-store representation and are skipped;
// the tree structure is carried entirely by key names.
func UploadTree(ctx context.Context, bucket *blob.Bucket, src, prefix string, opts Options) error {
	if opts.Workers <= 0 {
		opts.Workers = 48
	}
	if opts.BufferSize <= 0 {
		opts.BufferSize = 1 << 20
	}

	type task struct {
		src string
		key string
	}

	var (
		mu       sync.Mutex
		failures []error
	)

	tasks := make(chan task)
	var wg sync.WaitGroup

	for i := 0; i < opts.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			buf := make([]byte, opts.BufferSize)
			for tk := range tasks {
				if err := uploadFile(ctx, bucket, tk.src, tk.key, buf, opts.Progress); err != nil {
					mu.Lock()
					failures = append(failures, err)
					mu.Unlock()
					opts.Progress.ItemFailed()
					continue
				}
				opts.Progress.ItemDone()
			}
		}()
	}

	walkErr := filepath.WalkDir(src, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if d.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(src, p)
		if err != nil {
			return err
		}

		select {
		case tasks <- task{src: p, key: path.Join(prefix, filepath.ToSlash(rel))}:
		case <-ctx.Done():
			return ctx.Err()
		}
		return nil
	})

	close(tasks)
	wg.Wait()

	if walkErr != nil {
		failures = append([]error{walkErr}, failures...)
	}
	return errors.Join(failures...)
}

// uploadFile streams one local file to a bucket object.
func uploadFile(ctx context.Context, bucket *blob.Bucket, src, key string, buf []byte, reporter *progress.Reporter) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open %s: %w", src, err)
	}
	defer in.Close()

	w, err := bucket.NewWriter(ctx, key, nil)
	if err != nil {
		return fmt.Errorf("create object %s: %w", key, err)
	}

	_, err = io.CopyBuffer(w, &progress.Reader{R: in, Reporter: reporter}, buf)
	if closeErr := w.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return fmt.Errorf("upload %s: %w", key, err)
	}

	return nil
}

// IsBucketURL reports whether dest looks like a bucket URL rather than a
// local filesystem path (scheme://...).
func IsBucketURL(dest string) bool {
	for i := 0; i < len(dest); i++ {
		c := dest[i]
		if c == ':' {
			return i > 0 && len(dest) > i+2 && dest[i+1] == '/' && dest[i+2] == '/'
		}
		if !(c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '+' || c == '-' || c == '.') {
			return false
		}
	}
	return false
}
