package extract

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"cocoload/internal/progress"
	"cocoload/internal/testutils"
)

func TestExtractReproducesEntries(t *testing.T) {
	dir := t.TempDir()
	archive := filepath.Join(dir, "fixture.zip")

	entries := []testutils.ZipEntry{
		{Name: "images/one.jpg", Data: testutils.GenerateTestData(t, 4096)},
		{Name: "images/two.jpg", Data: testutils.GenerateTestData(t, 1234)},
		{Name: "annotations/info.json", Data: []byte(`{"year": 2017}`)},
	}
	testutils.BuildZip(t, archive, entries)

	dest := filepath.Join(dir, "out")
	if err := Extract(context.Background(), archive, dest, Options{}); err != nil {
		t.Fatalf("Extract: %v", err)
	}

	for _, e := range entries {
		data, err := os.ReadFile(filepath.Join(dest, filepath.FromSlash(e.Name)))
		if err != nil {
			t.Fatalf("read %s: %v", e.Name, err)
		}
		if !bytes.Equal(data, e.Data) {
			t.Errorf("content mismatch for %s", e.Name)
		}
	}

	// The source archive survives extraction untouched.
	if _, err := os.Stat(archive); err != nil {
		t.Errorf("source archive missing after extraction: %v", err)
	}
}

func TestExtractByteTotalMatchesDeclaredSizes(t *testing.T) {
	dir := t.TempDir()
	archive := filepath.Join(dir, "fixture.zip")

	entries := []testutils.ZipEntry{
		{Name: "a.bin", Data: testutils.GenerateTestData(t, 10000)},
		{Name: "sub/b.bin", Data: testutils.GenerateTestData(t, 20000)},
		{Name: "empty", Dir: true},
	}
	testutils.BuildZip(t, archive, entries)

	total, err := TotalSize(archive)
	if err != nil {
		t.Fatalf("TotalSize: %v", err)
	}
	if total != 30000 {
		t.Fatalf("TotalSize = %d, want 30000 (directories contribute nothing)", total)
	}

	reporter := progress.NewReporter(progress.Options{
		Label:      "fixture.zip",
		TotalBytes: total,
		Output:     io.Discard,
	})

	dest := filepath.Join(dir, "out")
	if err := Extract(context.Background(), archive, dest, Options{Progress: reporter}); err != nil {
		t.Fatalf("Extract: %v", err)
	}

	if reporter.Bytes() != total {
		t.Errorf("progress counted %d bytes, want %d", reporter.Bytes(), total)
	}

	// Sum of written file sizes equals the declared total.
	var written int64
	filepath.WalkDir(dest, func(path string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		written += info.Size()
		return nil
	})
	if written != total {
		t.Errorf("wrote %d bytes, want %d", written, total)
	}
}

func TestExtractEmptyDirectoryEntry(t *testing.T) {
	dir := t.TempDir()
	archive := filepath.Join(dir, "dirs.zip")

	testutils.BuildZip(t, archive, []testutils.ZipEntry{
		{Name: "unlabeled2017", Dir: true},
	})

	dest := filepath.Join(dir, "out")
	if err := Extract(context.Background(), archive, dest, Options{}); err != nil {
		t.Fatalf("Extract: %v", err)
	}

	target := filepath.Join(dest, "unlabeled2017")
	info, err := os.Stat(target)
	if err != nil {
		t.Fatalf("stat %s: %v", target, err)
	}
	if !info.IsDir() {
		t.Fatalf("%s is not a directory", target)
	}

	children, err := os.ReadDir(target)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(children) != 0 {
		t.Errorf("directory should be empty, has %d entries", len(children))
	}
}

func TestExtractMalformedArchive(t *testing.T) {
	dir := t.TempDir()
	archive := filepath.Join(dir, "broken.zip")
	if err := os.WriteFile(archive, []byte("this is not a zip"), 0o644); err != nil {
		t.Fatal(err)
	}

	err := Extract(context.Background(), archive, filepath.Join(dir, "out"), Options{})
	if err == nil {
		t.Fatal("expected error for malformed archive")
	}
}

func TestExtractCancelled(t *testing.T) {
	dir := t.TempDir()
	archive := filepath.Join(dir, "fixture.zip")
	testutils.BuildZip(t, archive, []testutils.ZipEntry{
		{Name: "a.bin", Data: testutils.GenerateTestData(t, 100)},
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := Extract(ctx, archive, filepath.Join(dir, "out"), Options{}); err == nil {
		t.Fatal("expected error with cancelled context")
	}
}

func TestSecurePathRejectsTraversal(t *testing.T) {
	if _, err := securePath("/tmp/dest", "../../etc/passwd"); err == nil {
		t.Error("expected traversal entry to be rejected")
	}
	if _, err := securePath("/tmp/dest", "ok/file.txt"); err != nil {
		t.Errorf("legitimate entry rejected: %v", err)
	}
}
