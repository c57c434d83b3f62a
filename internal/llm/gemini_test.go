package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestGemini_Generate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/models/gemini-test:generateContent" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.URL.Query().Get("key") != "k" {
			t.Errorf("missing api key")
		}
		var req GenerateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if len(req.Contents) != 1 || req.Contents[0].Parts[0].Text != "Hi" {
			t.Errorf("unexpected body: %+v", req)
		}
		w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"Hello there!"}]}},{"content":{"parts":[{"text":"ignored"}]}}]}`))
	}))
	defer server.Close()

	client := NewGeminiClient(server.URL, "gemini-test", "k", time.Second)
	resp, err := client.Generate(context.Background(), "Hi")
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if resp != "Hello there!" {
		t.Errorf("unexpected response: %s", resp)
	}
}

func TestGemini_EmptyCandidates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"candidates":[]}`))
	}))
	defer server.Close()

	resp, err := NewGeminiClient(server.URL, "m", "", time.Second).Generate(context.Background(), "x")
	if err != nil {
		t.Fatalf("empty candidates should not error: %v", err)
	}
	if resp != "" {
		t.Errorf("expected empty text, got %q", resp)
	}
}

func TestGemini_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":{"code":429,"message":"quota exceeded"}}`))
	}))
	defer server.Close()

	_, err := NewGeminiClient(server.URL, "m", "", time.Second).Generate(context.Background(), "x")
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.StatusCode != http.StatusTooManyRequests || !strings.Contains(err.Error(), "quota exceeded") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestGemini_DefaultValues(t *testing.T) {
	client := NewGeminiClient("", "", "", 0)
	if client.baseURL != "https://generativelanguage.googleapis.com/v1beta" {
		t.Error("should default to the public endpoint")
	}
	if client.model != "gemini-2.0-flash" {
		t.Error("should default to gemini-2.0-flash")
	}
}
