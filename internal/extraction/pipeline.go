package extraction

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/imcalledaditi/MomCare-AI-Assistant/internal/models"
)

// OCRLanguage is the tesseract language used for every image.
const OCRLanguage = "eng"

// NoticeLevel grades the single aggregate notification shown after a run
type NoticeLevel string

const (
	NoticeInfo    NoticeLevel = "info"
	NoticeSuccess NoticeLevel = "success"
	NoticePartial NoticeLevel = "partial"
	NoticeFailure NoticeLevel = "failure"
)

// Notice is the one user-facing summary of a run.
type Notice struct {
	Level NoticeLevel `json:"level" yaml:"level"`
	Text  string      `json:"text" yaml:"text"`
}

// Report is the outcome of one pipeline run.
type Report struct {
	Corpus    string                    `json:"corpus" yaml:"corpus"`
	Succeeded int                       `json:"succeeded" yaml:"succeeded"`
	Failed    int                       `json:"failed" yaml:"failed"`
	Skipped   int                       `json:"skipped" yaml:"skipped"`
	Results   []models.ExtractionResult `json:"results" yaml:"results"`
	Notice    Notice                    `json:"notice" yaml:"notice"`
}

// Pipeline extracts text from images (OCR) and PDFs concurrently.
type Pipeline struct {
	fetcher     Fetcher
	ocr         Recognizer
	pdf         TextExtractor
	concurrency int
}

// NewPipeline wires the pipeline. concurrency <= 0 runs every document at once.
func NewPipeline(fetcher Fetcher, ocr Recognizer, pdf TextExtractor, concurrency int) *Pipeline {
	return &Pipeline{
		fetcher:     fetcher,
		ocr:         ocr,
		pdf:         pdf,
		concurrency: concurrency,
	}
}

type docClass int

const (
	classOther docClass = iota
	classImage
	classPDF
)

func classify(mimeType string) docClass {
	mimeType = strings.ToLower(mimeType)
	switch {
	case strings.HasPrefix(mimeType, "image/"):
		return classImage
	case mimeType == "application/pdf":
		return classPDF
	default:
		return classOther
	}
}

// Run extracts every document, fetched as session, and waits for all of them
// to settle. A failing document only loses its own contribution.
func (p *Pipeline) Run(ctx context.Context, session string, docs []models.Document) Report {
	results := make([]models.ExtractionResult, len(docs))

	var g errgroup.Group
	if p.concurrency > 0 {
		g.SetLimit(p.concurrency)
	}

	for i, doc := range docs {
		i, doc := i, doc
		g.Go(func() error {
			results[i] = p.extract(ctx, session, doc)
			return nil
		})
	}
	_ = g.Wait()

	report := Report{Results: results}
	var texts []string
	for _, r := range results {
		switch r.Status {
		case models.ExtractionSucceeded:
			report.Succeeded++
		case models.ExtractionFailed:
			report.Failed++
		case models.ExtractionSkipped:
			report.Skipped++
		}
		if strings.TrimSpace(r.Text) != "" {
			texts = append(texts, r.Text)
		}
	}
	report.Corpus = strings.Join(texts, "\n\n")
	report.Notice = summarize(len(docs), report)

	log.Printf("✅ Extracted %d document(s): %d succeeded, %d failed, %d skipped",
		len(docs), report.Succeeded, report.Failed, report.Skipped)
	return report
}

func (p *Pipeline) extract(ctx context.Context, session string, doc models.Document) models.ExtractionResult {
	result := models.ExtractionResult{DocumentID: doc.ID}

	var (
		text string
		err  error
	)
	switch classify(doc.MimeType) {
	case classImage:
		text, err = p.extractImage(ctx, session, doc)
	case classPDF:
		text, err = p.extractPDF(ctx, session, doc)
	default:
		result.Status = models.ExtractionSkipped
		return result
	}

	if err != nil {
		log.Printf("⚠️  Error extracting text from %s: %v", doc.ID, err)
		result.Status = models.ExtractionFailed
		result.Error = err.Error()
		return result
	}

	result.Status = models.ExtractionSucceeded
	result.Text = text
	return result
}

func (p *Pipeline) extractImage(ctx context.Context, session string, doc models.Document) (string, error) {
	data, err := p.fetcher.Fetch(ctx, session, doc)
	if err != nil {
		return "", &Error{DocumentID: doc.ID, Op: "fetch", Err: err}
	}
	text, err := p.ocr.Recognize(ctx, data, doc.Name, OCRLanguage)
	if err != nil {
		return "", &Error{DocumentID: doc.ID, Op: "ocr", Err: err}
	}
	return text, nil
}

// extractPDF counts a blank result as a failure, unlike images.
func (p *Pipeline) extractPDF(ctx context.Context, session string, doc models.Document) (string, error) {
	data, err := p.fetcher.Fetch(ctx, session, doc)
	if err != nil {
		return "", &Error{DocumentID: doc.ID, Op: "fetch", Err: err}
	}
	text, err := p.pdf.ExtractText(ctx, bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", &Error{DocumentID: doc.ID, Op: "pdf", Err: err}
	}
	if strings.TrimSpace(text) == "" {
		return "", &Error{DocumentID: doc.ID, Op: "pdf", Err: ErrEmptyText}
	}
	return text, nil
}

func summarize(total int, r Report) Notice {
	switch {
	case total == 0:
		return Notice{Level: NoticeInfo, Text: "No medical documents found. You can still chat without them."}
	case r.Corpus == "" && r.Failed > 0:
		return Notice{Level: NoticeFailure, Text: fmt.Sprintf("No text could be extracted from your documents. %d document(s) could not be processed.", r.Failed)}
	case r.Corpus == "":
		return Notice{Level: NoticeInfo, Text: "No text could be extracted from your documents."}
	case r.Failed > 0:
		return Notice{Level: NoticePartial, Text: fmt.Sprintf("%d medical document(s) processed successfully! %d document(s) could not be processed.", r.Succeeded, r.Failed)}
	default:
		return Notice{Level: NoticeSuccess, Text: fmt.Sprintf("%d medical document(s) processed successfully!", r.Succeeded)}
	}
}
