// Package storage is the content store gateway: tenant-scoped reads and
// writes of content documents and asset listings over a key-addressed
// object store.
//
// Two object-store backends exist.  S3Store speaks to S3 or any
// S3-compatible endpoint; FileStore keeps objects on local disk for
// development and tests.  The Gateway sits above either one and is the only
// boundary where raw storage errors are seen; callers get typed results.
package storage

import (
	"context"
	"errors"
	"time"
)

// Object-store level sentinels.  Backends wrap their native errors in these.
var (
	ErrNotExist           = errors.New("object does not exist")
	ErrPreconditionFailed = errors.New("object precondition failed")
)

// Object is one stored blob plus its entity tag.
type Object struct {
	Body []byte
	ETag string
}

// PutOptions tune a single write.  IfMatch, when set, makes the write
// conditional on the current ETag.
type PutOptions struct {
	ContentType string
	IfMatch     string
}

// ObjectStore is the port the Gateway needs from a backend.
type ObjectStore interface {
	Get(ctx context.Context, key string) (Object, error)
	Put(ctx context.Context, key string, body []byte, opts PutOptions) (etag string, err error)
	List(ctx context.Context, prefix string) ([]string, error)
}

// Presigner issues short-lived GET URLs for private objects.
type Presigner interface {
	PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error)
}
