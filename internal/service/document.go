package service

import (
	"context"
	"errors"
	"io"
	"time"

	"ocrdocs/internal/model"
	"ocrdocs/internal/repository"
	"ocrdocs/internal/storage"
)

var ErrReaderNil = errors.New("reader is nil")

// FileInput is an uploaded file part.
type FileInput struct {
	Name        string
	ContentType string
	Size        int64
	Reader      io.Reader
}

// UploadInput carries the form fields of an upload. A nil field was absent from the form.
type UploadInput struct {
	Title   *string
	OCRText *string
	File    *FileInput
}

// DocumentService defines the use cases for handling documents.
type DocumentService interface {
	// Upload stores the optional file in the blob store, then inserts the document record.
	// The blob is not removed if the insert fails.
	Upload(ctx context.Context, in UploadInput) (*model.Document, error)

	// List returns every document, newest first.
	List(ctx context.Context) ([]model.Document, error)

	// Get returns a single document by its ID.
	Get(ctx context.Context, id string) (*model.Document, error)
}

// documentService is a concrete implementation of DocumentService.
type documentService struct {
	store     storage.Storage
	repo      repository.DocumentRepository
	urlPrefix string
	now       func() time.Time
}

// NewDocumentService constructs a new DocumentService. urlPrefix is the public path
// under which stored blobs are served.
func NewDocumentService(store storage.Storage, repo repository.DocumentRepository, urlPrefix string) DocumentService {
	return &documentService{store: store, repo: repo, urlPrefix: urlPrefix, now: time.Now}
}

func (s *documentService) Upload(ctx context.Context, in UploadInput) (*model.Document, error) {
	doc := &model.Document{
		Title:   in.Title,
		OCRText: in.OCRText,
	}

	if in.File != nil {
		if in.File.Reader == nil {
			return nil, ErrReaderNil
		}
		key := storage.UniqueName(s.now(), in.File.Name)
		info, err := s.store.Put(ctx, key, in.File.Reader, storage.PutObjectOptions{
			Size:        in.File.Size,
			ContentType: in.File.ContentType,
			Metadata: map[string]string{
				"original-filename": in.File.Name,
			},
		})
		if err != nil {
			return nil, err
		}
		loc := storage.Locator(s.urlPrefix, info.Key)
		doc.FileURL = &loc
	}

	return s.repo.Create(ctx, doc)
}

func (s *documentService) List(ctx context.Context) ([]model.Document, error) {
	return s.repo.ListRecent(ctx)
}

func (s *documentService) Get(ctx context.Context, id string) (*model.Document, error) {
	return s.repo.FindByID(ctx, id)
}
