package repository

import (
	"context"

	"ocrdocs/internal/model"
)

// DocumentRepository defines data access for documents.
// No business logic here, strictly persistence operations.
type DocumentRepository interface {
	// Create inserts a new document record. The ID is always assigned by the backend;
	// a zero UploadedAt is defaulted to the insertion time.
	// Returns the stored document including the assigned fields.
	Create(ctx context.Context, doc *model.Document) (*model.Document, error)

	// FindByID returns a document by its ID.
	// ErrInvalidID is returned when id is not in the backend's identifier format,
	// ErrNotFound when no record has that id.
	FindByID(ctx context.Context, id string) (*model.Document, error)

	// ListRecent returns every document, newest UploadedAt first.
	ListRecent(ctx context.Context) ([]model.Document, error)

	// Ping checks that the backend is reachable.
	Ping(ctx context.Context) error
}
