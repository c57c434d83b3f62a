package extraction

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/ledongthuc/pdf"
)

// PDFExtractor implements TextExtractor with a pure Go PDF reader.
type PDFExtractor struct{}

// NewPDFExtractor creates a PDF text extractor.
func NewPDFExtractor() *PDFExtractor {
	return &PDFExtractor{}
}

// ExtractText reads every page of the PDF behind r and returns its plain text.
// The reader panics on some malformed files; that is reported as an error.
func (e *PDFExtractor) ExtractText(ctx context.Context, r io.ReaderAt, size int64) (text string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("corrupt pdf: %v", rec)
		}
	}()

	if err := ctx.Err(); err != nil {
		return "", err
	}

	reader, err := pdf.NewReader(r, size)
	if err != nil {
		return "", fmt.Errorf("opening pdf: %w", err)
	}

	plain, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("reading pdf text: %w", err)
	}

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(plain); err != nil {
		return "", fmt.Errorf("reading pdf text: %w", err)
	}
	return buf.String(), nil
}
