// Package testutils provides shared test fixtures: zip archive builders,
// an HTTP archive server, and tree comparison helpers.
package testutils

import (
	"archive/zip"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

// ZipEntry describes one entry of a fixture archive.
type ZipEntry struct {
	Name string
	Data []byte
	Dir  bool
}

// BuildZip writes a zip archive containing the given entries to path.
func BuildZip(t *testing.T, path string, entries []ZipEntry) {
	t.Helper()

	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create archive: %v", err)
	}
	defer f.Close()

	zw := zip.NewWriter(f)
	for _, e := range entries {
		name := e.Name
		if e.Dir {
			if name[len(name)-1] != '/' {
				name += "/"
			}
			if _, err := zw.Create(name); err != nil {
				t.Fatalf("create dir entry %s: %v", name, err)
			}
			continue
		}
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("create entry %s: %v", name, err)
		}
		if _, err := w.Write(e.Data); err != nil {
			t.Fatalf("write entry %s: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close archive: %v", err)
	}
}

// GenerateTestData generates deterministic test data of the given size.
func GenerateTestData(t *testing.T, size int) []byte {
	t.Helper()
	data := make([]byte, size)
	for i := range data {
		data[i] = byte(i % 256)
	}
	return data
}

// ServeFiles starts an HTTP server serving the given path -> content map.
func ServeFiles(t *testing.T, files map[string][]byte) *httptest.Server {
	t.Helper()

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, ok := files[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Write(data)
	}))
}

// ReadTree returns a map of relative file path -> content for every
// regular file under root.
func ReadTree(t *testing.T, root string) map[string][]byte {
	t.Helper()

	tree := make(map[string][]byte)
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		tree[filepath.ToSlash(rel)] = data
		return nil
	})
	if err != nil {
		t.Fatalf("walk %s: %v", root, err)
	}
	return tree
}

// CompareTrees fails the test unless dst contains exactly the same
// regular files as src, with identical content.
func CompareTrees(t *testing.T, src, dst string) {
	t.Helper()

	want := ReadTree(t, src)
	got := ReadTree(t, dst)

	if len(got) != len(want) {
		t.Errorf("destination has %d files, want %d", len(got), len(want))
	}
	for name, data := range want {
		gotData, ok := got[name]
		if !ok {
			t.Errorf("missing file %s", name)
			continue
		}
		if string(gotData) != string(data) {
			t.Errorf("content mismatch for %s", name)
		}
	}
	for name := range got {
		if _, ok := want[name]; !ok {
			t.Errorf("unexpected file %s", name)
		}
	}
}
