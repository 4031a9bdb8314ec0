package model

import "time"

// Document is the metadata record of an uploaded document.
// It carries no persistence tags; repositories map it to their own row/bson types.
// JSON names match what existing clients of the service already read.
type Document struct {
	ID         string    `json:"_id"`
	Title      *string   `json:"title,omitempty"`
	UploadedAt time.Time `json:"date"`
	OCRText    *string   `json:"ocrText,omitempty"`
	FileURL    *string   `json:"fileUrl"`
}
