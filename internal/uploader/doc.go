// Package uploader copies directory trees into object storage.
//
// It is the bucket-destination counterpart of the copier package: the same
// bounded worker pool and failure aggregation, writing through
// gocloud.dev/blob instead of the local filesystem. Any storage backend
// gocloud supports works (s3://, gs://, file://, mem://); drivers are
// registered by the importing command.
package uploader
