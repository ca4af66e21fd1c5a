// Package copier copies directory trees with a bounded worker pool.
//
// Traversal creates directories inline and hands file copies to a pool of
// workers (48 by default). The pool is scoped to a single Copy call and is
// fully drained before Copy returns. Individual copy failures do not stop
// the rest of the tree; they are aggregated into the returned error, the
// same shape the fetch phase uses for download failures.
//
// Copies preserve file mode and modification time. Re-copying over an
// existing destination is fine: directories are reused, files overwritten.
package copier
