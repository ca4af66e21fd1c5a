// Package ui renders pipeline progress as console trackers.
//
// It wraps go-pretty's progress writer: one tracker per pipeline phase,
// fed by polling a byte counter. The plain line-oriented output in
// internal/progress remains the fallback for non-interactive runs.
package ui
