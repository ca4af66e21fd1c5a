// Package pipeline sequences the dataset import.
//
// The phases run in a fixed order: all archives download in parallel
// first, then each archive is extracted into scratch space, its zip is
// deleted to reclaim disk, and the extracted tree is copied into the
// destination. The destination is either a mounted directory (local
// copier) or a bucket URL (gocloud uploader); both drain their worker
// pools before the next archive starts.
//
// There is no cross-phase locking: correctness relies on this sequencing,
// and a crash mid-run leaves scratch and destination partially written.
package pipeline
