// Package llm calls the generative-language generateContent endpoint.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// GeminiClient sends single-turn prompts to a Gemini model.
type GeminiClient struct {
	baseURL    string
	model      string
	apiKey     string
	httpClient *http.Client
}

// NewGeminiClient creates a new client. baseURL is the API root, e.g.
// https://generativelanguage.googleapis.com/v1beta.
func NewGeminiClient(baseURL, model, apiKey string, timeout time.Duration) *GeminiClient {
	if baseURL == "" {
		baseURL = "https://generativelanguage.googleapis.com/v1beta"
	}
	if model == "" {
		model = "gemini-2.0-flash"
	}
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &GeminiClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Part is one text fragment of a content entry.
type Part struct {
	Text string `json:"text"`
}

// Content groups parts of one turn.
type Content struct {
	Role  string `json:"role,omitempty"`
	Parts []Part `json:"parts"`
}

// GenerateRequest is the generateContent request body.
type GenerateRequest struct {
	Contents []Content `json:"contents"`
}

// Candidate is one alternative completion.
type Candidate struct {
	Content      Content `json:"content"`
	FinishReason string  `json:"finishReason,omitempty"`
}

// GenerateResponse is the generateContent response body.
type GenerateResponse struct {
	Candidates []Candidate `json:"candidates"`
}

// FirstText returns the text of the first part of the first candidate, or ""
// when there is none.
func (r *GenerateResponse) FirstText() string {
	if len(r.Candidates) == 0 || len(r.Candidates[0].Content.Parts) == 0 {
		return ""
	}
	return r.Candidates[0].Content.Parts[0].Text
}

// APIError is returned for non-2xx responses.
type APIError struct {
	StatusCode int
	Status     string
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("API request failed: %s: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("API request failed: %s", e.Status)
}

func (c *GeminiClient) endpoint() string {
	u := fmt.Sprintf("%s/models/%s:generateContent", c.baseURL, url.PathEscape(c.model))
	if c.apiKey != "" {
		u += "?key=" + url.QueryEscape(c.apiKey)
	}
	return u
}

// Generate sends prompt as a single user turn and returns the first candidate's
// text. An empty candidate list yields "" without error.
func (c *GeminiClient) Generate(ctx context.Context, prompt string) (string, error) {
	payload := GenerateRequest{
		Contents: []Content{{Parts: []Part{{Text: prompt}}}},
	}

	reqBody, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(), bytes.NewReader(reqBody))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	log.Printf("🌐 Sending prompt to %s (%d bytes)", c.model, len(reqBody))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Printf("❌ Error connecting to Gemini: %v", err)
		return "", fmt.Errorf("failed to connect to Gemini: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", decodeAPIError(resp)
	}

	var genResp GenerateResponse
	if err := json.NewDecoder(resp.Body).Decode(&genResp); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	log.Printf("✅ Gemini replied with %d candidate(s)", len(genResp.Candidates))
	return genResp.FirstText(), nil
}

func decodeAPIError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode, Status: resp.Status}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	var wrapped struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if json.Unmarshal(body, &wrapped) == nil {
		apiErr.Message = wrapped.Error.Message
	}
	return apiErr
}
