package extraction

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// OCRClient implements Recognizer by posting images to a tesseract HTTP service.
type OCRClient struct {
	serviceURL string
	client     *http.Client
}

// NewOCRClient creates a client for the OCR service at serviceURL.
func NewOCRClient(serviceURL string, timeout time.Duration) *OCRClient {
	if serviceURL == "" {
		serviceURL = "http://localhost:8884"
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &OCRClient{
		serviceURL: serviceURL,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// ocrResponse is the OCR service response format.
type ocrResponse struct {
	Text  string `json:"text"`
	Error string `json:"error,omitempty"`
}

// Recognize sends image bytes for recognition in the given language.
func (c *OCRClient) Recognize(ctx context.Context, image []byte, filename, lang string) (string, error) {
	query := url.Values{}
	query.Set("lang", lang)
	if filename != "" {
		query.Set("filename", filename)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.serviceURL+"/ocr?"+query.Encode(), bytes.NewReader(image))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/octet-stream")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("calling OCR service: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("OCR service returned status %d: %s", resp.StatusCode, bytes.TrimSpace(body))
	}

	var result ocrResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("decoding response: %w", err)
	}

	if result.Error != "" {
		return "", fmt.Errorf("OCR error: %s", result.Error)
	}

	return result.Text, nil
}
