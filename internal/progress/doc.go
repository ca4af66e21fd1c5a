// Package progress provides human-readable byte progress reporting.
//
// A Reporter tracks a running byte total for one operation (a download,
// an extraction, a tree copy) and periodically prints percent, speed and
// ETA to its output. Reporting is strictly observational: a nil *Reporter
// is valid everywhere one is accepted, and all methods on it are no-ops,
// so callers never branch on whether progress is enabled.
//
// The Reader wrapper counts bytes flowing through an io.Reader:
//
//	r := &progress.Reader{R: entry, Reporter: reporter}
//	io.Copy(dst, r)
//
// FormatBytes, ParseBytes and FormatDuration are shared display helpers.
package progress
