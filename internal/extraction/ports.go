// Package extraction turns a set of stored documents into one plain-text corpus.
package extraction

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/imcalledaditi/MomCare-AI-Assistant/internal/models"
)

// Fetcher downloads the raw bytes of a document as the user owning session.
type Fetcher interface {
	Fetch(ctx context.Context, session string, doc models.Document) ([]byte, error)
}

// Recognizer runs optical character recognition on image bytes.
type Recognizer interface {
	Recognize(ctx context.Context, image []byte, filename, lang string) (string, error)
}

// TextExtractor pulls plain text out of a PDF.
type TextExtractor interface {
	ExtractText(ctx context.Context, r io.ReaderAt, size int64) (string, error)
}

// ErrEmptyText marks a PDF that parsed without error but produced no text.
var ErrEmptyText = errors.New("no text extracted")

// Error records why one document could not contribute text.
type Error struct {
	DocumentID string
	Op         string // "fetch", "ocr", "pdf"
	Err        error
}

func (e *Error) Error() string {
	return fmt.Sprintf("extraction error [%s] %s: %v", e.DocumentID, e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}
