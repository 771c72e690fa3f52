// Package storage abstracts the blob store holding uploaded file content.
// The access-control core only ever references blobs by key; which backend
// holds the bytes is a config decision.
package storage

import (
	"context"
	"io"

	"github.com/spf13/viper"
)

type Store interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	// Exists reports whether the blob is still present. The share cleanup
	// sweep uses this to find links pointing at removed content.
	Exists(ctx context.Context, key string) (bool, error)
	Delete(ctx context.Context, key string) error
}

// New picks the backend named by storage.type.
func New() (Store, error) {
	if viper.GetString("storage.type") == "s3" {
		return NewS3()
	}
	return NewLocal(viper.GetString("storage.local_dir"))
}
