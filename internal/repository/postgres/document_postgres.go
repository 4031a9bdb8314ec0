package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"ocrdocs/internal/model"
	"ocrdocs/internal/repository"
)

// DocumentPostgres is a PostgreSQL implementation of repository.DocumentRepository.
// It uses database/sql with parameterized queries and contains no business logic.
type DocumentPostgres struct {
	db *sql.DB
}

// NewDocumentPostgres creates a new DocumentPostgres repository.
func NewDocumentPostgres(db *sql.DB) *DocumentPostgres {
	return &DocumentPostgres{db: db}
}

var _ repository.DocumentRepository = (*DocumentPostgres)(nil)

const documentColumns = `id, title, ocr_text, file_url, uploaded_at`

// Create inserts a new document row and returns the stored record.
// id comes from the column default; uploaded_at falls back to now() when unset.
func (r *DocumentPostgres) Create(ctx context.Context, doc *model.Document) (*model.Document, error) {
	const q = `
		INSERT INTO documents (title, ocr_text, file_url, uploaded_at)
		VALUES ($1, $2, $3, COALESCE($4, now()))
		RETURNING ` + documentColumns

	var uploadedAt any
	if !doc.UploadedAt.IsZero() {
		uploadedAt = doc.UploadedAt
	}

	row := r.db.QueryRowContext(ctx, q,
		doc.Title,
		doc.OCRText,
		doc.FileURL,
		uploadedAt,
	)
	out, err := scanDocument(row)
	if err != nil {
		return nil, repository.Persistence("insert document", err)
	}
	return out, nil
}

// FindByID fetches a single document by its ID.
func (r *DocumentPostgres) FindByID(ctx context.Context, id string) (*model.Document, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("%w: %q", repository.ErrInvalidID, id)
	}

	const q = `
		SELECT ` + documentColumns + `
		FROM documents
		WHERE id = $1
	`
	d, err := scanDocument(r.db.QueryRowContext(ctx, q, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, repository.Persistence("find document", err)
	}
	return d, nil
}

// ListRecent returns all documents, newest first. Ties on uploaded_at are broken by id
// so repeated reads return the same order.
func (r *DocumentPostgres) ListRecent(ctx context.Context) ([]model.Document, error) {
	const q = `
		SELECT ` + documentColumns + `
		FROM documents
		ORDER BY uploaded_at DESC, id DESC
	`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, repository.Persistence("list documents", err)
	}
	defer rows.Close()

	items := make([]model.Document, 0)
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, repository.Persistence("list documents", err)
		}
		items = append(items, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, repository.Persistence("list documents", err)
	}
	return items, nil
}

// Ping verifies the database connection.
func (r *DocumentPostgres) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanDocument(s scanner) (*model.Document, error) {
	var (
		d                       model.Document
		title, ocrText, fileURL sql.NullString
	)
	if err := s.Scan(&d.ID, &title, &ocrText, &fileURL, &d.UploadedAt); err != nil {
		return nil, err
	}
	d.Title = nullable(title)
	d.OCRText = nullable(ocrText)
	d.FileURL = nullable(fileURL)
	return &d, nil
}

func nullable(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}
