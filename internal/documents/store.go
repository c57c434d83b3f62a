// Package documents lists, uploads and deletes files in one Appwrite bucket.
package documents

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/imcalledaditi/MomCare-AI-Assistant/internal/appwrite"
	"github.com/imcalledaditi/MomCare-AI-Assistant/internal/models"
)

// Whitelists for the two document classes.
var (
	MedicalDocumentTypes = []string{"image/png", "image/jpeg", "application/pdf"}
	ProfileImageTypes    = []string{"image/png", "image/jpeg", "image/jpg", "image/webp"}
)

var (
	// ErrDisallowedFormat is wrapped by RejectedError.
	ErrDisallowedFormat = errors.New("disallowed format")
	// ErrNoSession is returned when a call has no user session. The store never
	// falls back to the API key, which would bypass per-file permissions.
	ErrNoSession = errors.New("no user session")
)

// RejectedError is returned by Upload when a file is refused before any network call.
type RejectedError struct {
	MimeType string
	Allowed  []string
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("%v: %q is not one of %s", ErrDisallowedFormat, e.MimeType, strings.Join(e.Allowed, ", "))
}

func (e *RejectedError) Unwrap() error {
	return ErrDisallowedFormat
}

// Backend is the subset of the Appwrite client the store needs.
type Backend interface {
	ListFiles(ctx context.Context, session, bucketID string) (*appwrite.FileList, error)
	CreateFile(ctx context.Context, session, bucketID, fileID, name, mimeType string, data io.Reader) (*appwrite.File, error)
	DeleteFile(ctx context.Context, session, bucketID, fileID string) error
	FileViewURL(bucketID, fileID string) string
	Download(ctx context.Context, session, rawURL string) ([]byte, error)
}

// File is an upload candidate.
type File struct {
	Name     string
	MimeType string
	Content  io.Reader
}

// Store is the adapter for one bucket. Every call acts as the user owning
// session, so Appwrite only exposes that user's files.
type Store struct {
	backend  Backend
	bucketID string
}

// NewStore creates a store bound to bucketID.
func NewStore(backend Backend, bucketID string) *Store {
	return &Store{backend: backend, bucketID: bucketID}
}

// BucketID returns the bucket this store manages.
func (s *Store) BucketID() string {
	return s.bucketID
}

// List returns the documents in the bucket visible to session. Remote errors
// are logged and yield an empty list so callers can render an empty state.
func (s *Store) List(ctx context.Context, session string) []models.Document {
	if session == "" {
		log.Printf("⚠️  Refusing to list bucket %s without a user session", s.bucketID)
		return []models.Document{}
	}
	list, err := s.backend.ListFiles(ctx, session, s.bucketID)
	if err != nil {
		log.Printf("❌ Error listing files in bucket %s: %v", s.bucketID, err)
		return []models.Document{}
	}

	docs := make([]models.Document, 0, len(list.Files))
	for _, f := range list.Files {
		docs = append(docs, s.toDocument(f))
	}
	return docs
}

// Upload stores file if its mime type is in allowed.
func (s *Store) Upload(ctx context.Context, session string, file File, allowed []string) (models.Document, error) {
	if !IsAllowed(file.MimeType, allowed) {
		return models.Document{}, &RejectedError{MimeType: file.MimeType, Allowed: allowed}
	}
	if session == "" {
		return models.Document{}, ErrNoSession
	}

	created, err := s.backend.CreateFile(ctx, session, s.bucketID, uuid.NewString(), file.Name, file.MimeType, file.Content)
	if err != nil {
		log.Printf("❌ Error uploading %s to bucket %s: %v", file.Name, s.bucketID, err)
		return models.Document{}, fmt.Errorf("uploading document: %w", err)
	}
	return s.toDocument(*created), nil
}

// Delete removes a document. Callers should re-list afterwards.
func (s *Store) Delete(ctx context.Context, session, documentID string) error {
	if session == "" {
		return ErrNoSession
	}
	if err := s.backend.DeleteFile(ctx, session, s.bucketID, documentID); err != nil {
		log.Printf("❌ Error deleting document %s: %v", documentID, err)
		return fmt.Errorf("deleting document %s: %w", documentID, err)
	}
	return nil
}

// RetrievalURL derives the stable view URL from the id and configuration.
func (s *Store) RetrievalURL(documentID string) string {
	return s.backend.FileViewURL(s.bucketID, documentID)
}

// Fetch downloads a document's bytes from its retrieval URL.
func (s *Store) Fetch(ctx context.Context, session string, doc models.Document) ([]byte, error) {
	if session == "" {
		return nil, ErrNoSession
	}
	url := doc.RetrievalURL
	if url == "" {
		url = s.RetrievalURL(doc.ID)
	}
	return s.backend.Download(ctx, session, url)
}

func (s *Store) toDocument(f appwrite.File) models.Document {
	created, _ := time.Parse(time.RFC3339Nano, f.CreatedAt)
	return models.Document{
		ID:           f.ID,
		Name:         f.Name,
		MimeType:     f.MimeType,
		SizeBytes:    f.SizeOriginal,
		BucketID:     s.bucketID,
		RetrievalURL: s.RetrievalURL(f.ID),
		CreatedAt:    created,
	}
}

// IsAllowed reports whether mimeType is in the whitelist.
func IsAllowed(mimeType string, allowed []string) bool {
	mimeType = strings.ToLower(strings.TrimSpace(mimeType))
	for _, a := range allowed {
		if mimeType == a {
			return true
		}
	}
	return false
}
