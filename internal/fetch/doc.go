// Package fetch downloads a batch of archives in parallel.
//
// All jobs in a batch start immediately with no throttling, one download
// per archive. The batch is then waited on in submission order, and
// failures are collected rather than short-circuiting: every job runs to
// completion before Run returns the aggregated error.
//
// Two modes are supported:
//
//   - External process mode: each job runs a configured command (wget by
//     default) with {url}/{dest} placeholders expanded. A non-zero exit
//     status is recorded as a failure naming the command line and status.
//   - Built-in HTTP mode: each job streams the URL to its destination
//     with the retrying client from internal/http.
//
// Partial output from failed downloads is intentionally left on disk.
package fetch
