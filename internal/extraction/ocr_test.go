package extraction

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestOCRClient_Recognize(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/ocr" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if got := r.URL.Query().Get("lang"); got != OCRLanguage {
			t.Errorf("lang = %q, want %q", got, OCRLanguage)
		}
		if got := r.URL.Query().Get("filename"); got != "scan.png" {
			t.Errorf("filename = %q", got)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/octet-stream" {
			t.Errorf("Content-Type = %q", ct)
		}
		body, _ := io.ReadAll(r.Body)
		if string(body) != "\x89PNG" {
			t.Errorf("body = %q", body)
		}
		w.Write([]byte(`{"text":"Blood pressure normal"}`))
	}))
	defer server.Close()

	text, err := NewOCRClient(server.URL, time.Second).Recognize(context.Background(), []byte("\x89PNG"), "scan.png", OCRLanguage)
	if err != nil {
		t.Fatalf("Recognize failed: %v", err)
	}
	if text != "Blood pressure normal" {
		t.Errorf("text = %q", text)
	}
}

func TestOCRClient_Errors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr string
	}{
		{"service error field", http.StatusOK, `{"error":"unsupported image"}`, "OCR error: unsupported image"},
		{"non-200 status", http.StatusInternalServerError, "tesseract crashed", "status 500: tesseract crashed"},
		{"invalid json", http.StatusOK, "not json", "decoding response"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			_, err := NewOCRClient(server.URL, time.Second).Recognize(context.Background(), []byte("img"), "", OCRLanguage)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("err = %v, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}
