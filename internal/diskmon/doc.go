// Package diskmon samples and logs free disk space on an interval.
//
// The monitor is a background diagnostic tied to the caller's context:
// cancelling the context stops the loop, so nothing leaks in embedded or
// test use. Output is one line per sample, prefixed with the task ID.
package diskmon
