// Package blob stores uploaded hotel images and hands back a stable
// reference path. The rest of the system only ever records the returned
// reference; the storage mechanism behind it is interchangeable. Two
// drivers exist: local filesystem (default, dev) and S3/MinIO.
package blob

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// Driver identifies a concrete storage backend.
type Driver string

const (
	DriverFilesystem Driver = "fs"
	DriverS3         Driver = "s3"
)

// ErrNotFound is returned by Remove when no blob exists at the ref.
var ErrNotFound = errors.New("blob not found")

// Store is the minimal surface the registration plan needs: persist a
// stream under a key and reclaim it later. Put returns the stable
// reference that gets recorded in hotel_images.url.
type Store interface {
	Put(ctx context.Context, key string, r io.Reader, contentType string) (string, error)
	Remove(ctx context.Context, ref string) error
	Driver() Driver
}

// OpenFromEnv selects and constructs a store from the environment:
//
//	BLOB_DRIVER=fs (default) | s3
//	BLOB_FS_ROOT, BLOB_FS_BASE_URL      – filesystem driver
//	BLOB_S3_BUCKET, BLOB_S3_REGION,
//	BLOB_S3_ENDPOINT, BLOB_S3_PATH_STYLE – s3 driver
func OpenFromEnv(ctx context.Context) (Store, error) {
	driver := Driver(strings.ToLower(os.Getenv("BLOB_DRIVER")))
	switch driver {
	case "", DriverFilesystem:
		root := os.Getenv("BLOB_FS_ROOT")
		if root == "" {
			root = "uploads"
		}
		base := os.Getenv("BLOB_FS_BASE_URL")
		if base == "" {
			base = "/uploads"
		}
		return NewFS(root, base)
	case DriverS3:
		return OpenS3FromEnv(ctx)
	}
	return nil, fmt.Errorf("unknown blob driver %q", driver)
}
