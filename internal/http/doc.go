// Package http provides an HTTP client for large archive downloads.
//
// This package handles:
//   - Connection pooling for parallel downloads
//   - HEAD requests to get archive metadata (size, ETag)
//   - Streaming GET requests with no response timeout
//   - Retry with exponential backoff and jitter
//
// # Usage
//
//	client := http.NewClient(http.DefaultOptions())
//
//	info, err := client.Head(ctx, url)
//	// info.Size, info.ETag
//
//	body, err := client.Get(ctx, url)
//	defer body.Close()
package http
