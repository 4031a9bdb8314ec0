package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"path/filepath"
	"strings"
	"time"
)

// Package storage contains the blob store used for uploaded files.
// Blobs are addressed by a flat key; the key becomes the last segment of the public locator.

// PutObjectOptions define optional parameters for uploading objects.
// Size should be the exact number of bytes if known; if unknown, set to -1 and the implementation
// will buffer/chunk as supported by the backend.
type PutObjectOptions struct {
	Size        int64
	ContentType string
	Metadata    map[string]string
}

// ObjectInfo contains basic information about a stored blob.
type ObjectInfo struct {
	Key          string
	Size         int64
	ETag         string
	ContentType  string
	LastModified time.Time
}

// Storage is the blob store contract shared by the disk, MinIO and Azure backends.
type Storage interface {
	// Put writes the blob under key. Failures are reported as *BlobWriteError.
	Put(ctx context.Context, key string, r io.Reader, opt PutObjectOptions) (ObjectInfo, error)
	// Get opens the blob stored under key. Returns ErrNotFound if it does not exist.
	// The caller must close the reader.
	Get(ctx context.Context, key string) (io.ReadCloser, ObjectInfo, error)
}

// LocalRoot is implemented by backends whose blobs are plain files under a directory,
// letting the HTTP layer serve them with a static file server.
type LocalRoot interface {
	Root() string
}

// UniqueName derives the storage key for an uploaded file: the upload time in
// unix milliseconds, a dash, then the base name of the client's filename.
// Directory components are dropped.
func UniqueName(ts time.Time, original string) string {
	base := filepath.Base(strings.ReplaceAll(original, `\`, "/"))
	switch base {
	case "", ".", "..", "/":
		base = "file"
	}
	return fmt.Sprintf("%d-%s", ts.UnixMilli(), base)
}

// Locator returns the public URL path of key under prefix.
func Locator(prefix, key string) string {
	return strings.TrimSuffix(prefix, "/") + "/" + url.PathEscape(key)
}

func validateKey(key string) error {
	if key == "" {
		return ErrEmptyKey
	}
	if key == "." || key == ".." || strings.ContainsAny(key, `/\`) {
		return ErrInvalidKey
	}
	return nil
}
