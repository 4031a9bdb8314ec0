package storage

import "errors"

var (
	// ErrNotFound indicates the requested blob does not exist.
	ErrNotFound = errors.New("blob not found")
	// ErrEmptyKey indicates an empty storage key was provided.
	ErrEmptyKey = errors.New("storage key must not be empty")
	// ErrInvalidKey indicates the storage key is not a single path segment.
	ErrInvalidKey = errors.New("storage key contains invalid path segment")
)

// BlobWriteError reports a failed blob write. The message is the backend's, unchanged.
type BlobWriteError struct {
	Key string
	Err error
}

func (e *BlobWriteError) Error() string { return e.Err.Error() }

func (e *BlobWriteError) Unwrap() error { return e.Err }

func writeError(key string, err error) error {
	return &BlobWriteError{Key: key, Err: err}
}
