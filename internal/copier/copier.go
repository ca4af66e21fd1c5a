package copier

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"cocoload/internal/progress"
)

// DefaultWorkers is the size of the copy worker pool.
const DefaultWorkers = 48

// Options configures a tree copy.
type Options struct {
	// Workers is the size of the worker pool.
	// Default: DefaultWorkers
	Workers int

	// BufferSize bounds the copy buffer per worker.
	// Default: 1 MiB
	BufferSize int

	// Progress is an optional progress reporter.
	Progress *progress.Reporter
}

// Copy recursively copies the tree rooted at src into dst. Directories
// are created inline during traversal; file copies are dispatched to a
// bounded worker pool. Copy does not return until every dispatched copy
// has completed. Pre-existing destination directories are accepted and
// destination files are overwritten. Per-file failures are collected and
// returned as one aggregated error after the pool drains.
func Copy(ctx context.Context, src, dst string, opts Options) error {
	if opts.Workers <= 0 {
		opts.Workers = DefaultWorkers
	}
	if opts.BufferSize <= 0 {
		opts.BufferSize = 1 << 20
	}

	type task struct {
		src  string
		dst  string
		info fs.FileInfo
	}

	var (
		mu       sync.Mutex
		failures []error
	)
	record := func(err error) {
		mu.Lock()
		failures = append(failures, err)
		mu.Unlock()
		opts.Progress.ItemFailed()
	}

	tasks := make(chan task)
	var wg sync.WaitGroup

	for i := 0; i < opts.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			buf := make([]byte, opts.BufferSize)
			for tk := range tasks {
				if err := copyFile(tk.src, tk.dst, tk.info, buf, opts.Progress); err != nil {
					record(err)
					continue
				}
				opts.Progress.ItemDone()
			}
		}()
	}

	walkErr := filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)

		if d.IsDir() {
			// MkdirAll tolerates directories that already exist.
			if err := os.MkdirAll(target, 0o755); err != nil {
				return fmt.Errorf("create directory %s: %w", target, err)
			}
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return fmt.Errorf("stat %s: %w", path, err)
		}

		select {
		case tasks <- task{src: path, dst: target, info: info}:
		case <-ctx.Done():
			return ctx.Err()
		}
		return nil
	})

	// Drain the pool before reporting anything. Dispatched copies always
	// run to completion, even when traversal failed midway.
	close(tasks)
	wg.Wait()

	if walkErr != nil {
		failures = append([]error{walkErr}, failures...)
	}
	return errors.Join(failures...)
}

// copyFile copies one file, preserving mode and modification time.
func copyFile(src, dst string, info fs.FileInfo, buf []byte, reporter *progress.Reporter) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open %s: %w", src, err)
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return fmt.Errorf("create %s: %w", dst, err)
	}

	_, err = io.CopyBuffer(out, &progress.Reader{R: in, Reporter: reporter}, buf)
	if closeErr := out.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return fmt.Errorf("copy %s: %w", dst, err)
	}

	// The destination may predate this copy with a different mode.
	if err := os.Chmod(dst, info.Mode().Perm()); err != nil {
		return fmt.Errorf("chmod %s: %w", dst, err)
	}
	if err := os.Chtimes(dst, info.ModTime(), info.ModTime()); err != nil {
		return fmt.Errorf("preserve mtime of %s: %w", dst, err)
	}

	return nil
}
