package models

import "time"

// Document is an opaque binary stored in a remote bucket.
type Document struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	MimeType     string    `json:"mimeType"`
	SizeBytes    int64     `json:"sizeBytes"`
	BucketID     string    `json:"bucketId"`
	RetrievalURL string    `json:"url"`
	CreatedAt    time.Time `json:"createdAt"`
}

// ExtractionStatus is the outcome of extracting text from one document
type ExtractionStatus string

const (
	ExtractionSucceeded ExtractionStatus = "succeeded"
	ExtractionFailed    ExtractionStatus = "failed"
	ExtractionSkipped   ExtractionStatus = "skipped"
)

// ExtractionResult is derived per run from a Document and never persisted.
type ExtractionResult struct {
	DocumentID string           `json:"documentId" yaml:"documentId"`
	Text       string           `json:"-" yaml:"-"`
	Status     ExtractionStatus `json:"status" yaml:"status"`
	Error      string           `json:"error,omitempty" yaml:"error,omitempty"`
}
