// Package storage wraps object-storage access behind a small Store
// interface so the application logic never touches the SDK directly.
package storage

import (
	"context"
	"errors"
	"fmt"
)

// ErrNotFound is returned when the addressed object does not exist.
var ErrNotFound = errors.New("object not found")

// Address identifies a stored blob by bucket and key.
type Address struct {
	Bucket string `json:"bucket"`
	Key    string `json:"key"`
}

// String renders the address in s3://bucket/key form.
func (a Address) String() string {
	return fmt.Sprintf("s3://%s/%s", a.Bucket, a.Key)
}

// Store is the capability surface consumed by the editor: read, write and
// server-side copy of opaque blobs. Implementations must be safe for
// concurrent use.
type Store interface {
	Read(ctx context.Context, bucket, key string) ([]byte, error)
	Write(ctx context.Context, bucket, key string, data []byte) error
	Copy(ctx context.Context, bucket, srcKey, dstKey string) error
}
