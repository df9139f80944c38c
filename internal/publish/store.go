// Package publish uploads generated font artifacts to S3-compatible
// object storage with content-addressed keys, an idempotency probe, and
// bounded retry.
package publish

import "context"

// ObjectInfo describes an object already present in the remote store.
type ObjectInfo struct {
	Key  string
	Size int64
}

// PutOptions carries the request headers applied to an upload.
type PutOptions struct {
	ContentType  string
	CacheControl string
	PublicRead   bool
}

// ObjectStore is the remote storage surface the pipeline needs. StatObject
// returns a NOT_FOUND coded error when the key is absent; transport
// failures from either call are TRANSIENT_TRANSPORT coded.
type ObjectStore interface {
	StatObject(ctx context.Context, bucket, key string) (ObjectInfo, error)
	PutObject(ctx context.Context, bucket, key, filePath string, opts PutOptions) error
}
