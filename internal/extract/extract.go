package extract

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/flate"

	"cocoload/internal/progress"
)

// Options configures extraction.
type Options struct {
	// Progress is an optional progress reporter fed the running byte
	// total across all entries.
	Progress *progress.Reporter

	// BufferSize bounds the copy buffer per entry.
	// Default: 1 MiB
	BufferSize int
}

// TotalSize returns the sum of the declared uncompressed sizes of all
// entries in the archive. Useful as the progress total before extracting.
func TotalSize(archive string) (int64, error) {
	zr, err := zip.OpenReader(archive)
	if err != nil {
		return 0, fmt.Errorf("open archive: %w", err)
	}
	defer zr.Close()

	var total int64
	for _, f := range zr.File {
		total += int64(f.UncompressedSize64)
	}
	return total, nil
}

// Extract reproduces every entry of the zip archive under dest, creating
// parent directories as needed. File entries are streamed through a
// bounded buffer, so archives larger than memory are fine. Any read or
// write error aborts extraction; there are no partial-success semantics.
// The source archive is never modified.
func Extract(ctx context.Context, archive, dest string, opts Options) error {
	if opts.BufferSize <= 0 {
		opts.BufferSize = 1 << 20
	}

	zr, err := zip.OpenReader(archive)
	if err != nil {
		return fmt.Errorf("open archive %s: %w", archive, err)
	}
	defer zr.Close()

	zr.RegisterDecompressor(zip.Deflate, func(r io.Reader) io.ReadCloser {
		return flate.NewReader(r)
	})

	buf := make([]byte, opts.BufferSize)
	for _, f := range zr.File {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := extractEntry(f, dest, buf, opts.Progress); err != nil {
			return err
		}
	}

	return nil
}

// extractEntry writes a single archive entry under dest.
func extractEntry(f *zip.File, dest string, buf []byte, reporter *progress.Reporter) error {
	target, err := securePath(dest, f.Name)
	if err != nil {
		return err
	}

	if f.FileInfo().IsDir() {
		if err := os.MkdirAll(target, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", f.Name, err)
		}
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("create parent of %s: %w", f.Name, err)
	}

	rc, err := f.Open()
	if err != nil {
		return fmt.Errorf("open entry %s: %w", f.Name, err)
	}
	defer rc.Close()

	mode := f.Mode().Perm()
	if mode == 0 {
		mode = 0o644
	}
	out, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode)
	if err != nil {
		return fmt.Errorf("create %s: %w", f.Name, err)
	}

	_, err = io.CopyBuffer(out, &progress.Reader{R: rc, Reporter: reporter}, buf)
	if closeErr := out.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return fmt.Errorf("extract %s: %w", f.Name, err)
	}

	if !f.Modified.IsZero() {
		// Best effort; a filesystem that rejects the timestamp is not fatal.
		os.Chtimes(target, f.Modified, f.Modified)
	}

	reporter.ItemDone()
	return nil
}

// securePath resolves an entry name under dest and rejects entries that
// would escape it (zip-slip).
func securePath(dest, name string) (string, error) {
	target := filepath.Join(dest, filepath.FromSlash(name))
	if target != filepath.Clean(dest) && !strings.HasPrefix(target, filepath.Clean(dest)+string(os.PathSeparator)) {
		return "", fmt.Errorf("illegal entry path %q", name)
	}
	return target, nil
}
