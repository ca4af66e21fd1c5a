package copier

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// VerifyResult summarizes a destination tree check.
type VerifyResult struct {
	// Valid is true when every source file exists at the destination
	// with the same size.
	Valid bool

	// Files is the number of source files checked.
	Files int

	// Missing is the number of source files absent at the destination.
	Missing int

	// SizeMismatches is the number of files present with a different size.
	SizeMismatches int

	// Errors holds one message per missing or mismatched file.
	Errors []string
}

// Verify walks the tree rooted at src and checks that every file exists
// under dst with the same size. No file contents are read. Verify keeps
// going after a mismatch so the result covers the whole tree.
func Verify(ctx context.Context, src, dst string) (*VerifyResult, error) {
	result := &VerifyResult{Valid: true}

	err := filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if d.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		result.Files++

		info, err := d.Info()
		if err != nil {
			return fmt.Errorf("stat %s: %w", path, err)
		}

		target := filepath.Join(dst, rel)
		targetInfo, err := os.Stat(target)
		if os.IsNotExist(err) {
			result.Valid = false
			result.Missing++
			result.Errors = append(result.Errors, fmt.Sprintf("missing: %s", rel))
			return nil
		}
		if err != nil {
			return fmt.Errorf("stat %s: %w", target, err)
		}

		if targetInfo.Size() != info.Size() {
			result.Valid = false
			result.SizeMismatches++
			result.Errors = append(result.Errors,
				fmt.Sprintf("size mismatch: %s (%d != %d)", rel, targetInfo.Size(), info.Size()))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}
