// Package extract streams zip archives to a destination directory.
//
// Extraction walks the archive index in order, creating directory entries
// as directories and streaming file entries through a bounded buffer, so
// memory use is independent of archive size. A running byte total is fed
// to an optional progress.Reporter and can be compared against TotalSize.
//
// Entry paths are validated against the destination to prevent zip-slip.
package extract
