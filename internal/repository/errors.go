package repository

import "errors"

var (
	// ErrNotFound indicates no document has the requested id.
	ErrNotFound = errors.New("document not found")
	// ErrInvalidID indicates the id is not in the format the backend expects.
	ErrInvalidID = errors.New("invalid document id")
)

// PersistenceError reports that the backing store was unreachable or rejected an operation.
// Its message is the backend's message unchanged.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string { return e.Err.Error() }

func (e *PersistenceError) Unwrap() error { return e.Err }

// Persistence wraps err as a *PersistenceError for op; nil stays nil.
func Persistence(op string, err error) error {
	if err == nil {
		return nil
	}
	return &PersistenceError{Op: op, Err: err}
}
