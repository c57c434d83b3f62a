package blog

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/imcalledaditi/MomCare-AI-Assistant/internal/appwrite"
	"github.com/imcalledaditi/MomCare-AI-Assistant/internal/models"
)

type mockBackend struct {
	ListDocumentsFunc  func(ctx context.Context, session, databaseID, collectionID string, queries ...string) (*appwrite.DocumentList, error)
	CreateDocumentFunc func(ctx context.Context, session, databaseID, collectionID, documentID string, data interface{}) (json.RawMessage, error)
}

func (m *mockBackend) ListDocuments(ctx context.Context, session, databaseID, collectionID string, queries ...string) (*appwrite.DocumentList, error) {
	return m.ListDocumentsFunc(ctx, session, databaseID, collectionID, queries...)
}

func (m *mockBackend) CreateDocument(ctx context.Context, session, databaseID, collectionID, documentID string, data interface{}) (json.RawMessage, error) {
	return m.CreateDocumentFunc(ctx, session, databaseID, collectionID, documentID, data)
}

var author = models.CurrentUser{ID: "u1", Email: "Editor@Example.com"}

func TestGet_BySlug(t *testing.T) {
	backend := &mockBackend{ListDocumentsFunc: func(ctx context.Context, session, databaseID, collectionID string, queries ...string) (*appwrite.DocumentList, error) {
		if session != "sess" || databaseID != "db" || collectionID != "posts" {
			t.Errorf("unexpected call: %s %s %s", session, databaseID, collectionID)
		}
		if len(queries) != 1 || queries[0] != appwrite.QueryEqual("slug", "iron-rich-foods") {
			t.Errorf("unexpected queries: %v", queries)
		}
		return &appwrite.DocumentList{Total: 1, Documents: []json.RawMessage{
			json.RawMessage(`{"$id":"d1","title":"Iron-rich foods","slug":"iron-rich-foods","content":"Spinach","author":"editor@example.com","createdAt":"2024-01-01T00:00:00Z"}`),
		}}, nil
	}}

	post, err := NewService(backend, nil, "db", "posts", nil).Get(context.Background(), "sess", "iron-rich-foods")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if post.ID != "d1" || post.Title != "Iron-rich foods" || post.Content != "Spinach" {
		t.Errorf("unexpected post: %+v", post)
	}
}

func TestGet_NotFound(t *testing.T) {
	backend := &mockBackend{ListDocumentsFunc: func(ctx context.Context, session, databaseID, collectionID string, queries ...string) (*appwrite.DocumentList, error) {
		return &appwrite.DocumentList{}, nil
	}}

	_, err := NewService(backend, nil, "db", "posts", nil).Get(context.Background(), "sess", "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestGet_Disabled(t *testing.T) {
	_, err := NewService(&mockBackend{}, nil, "", "", nil).Get(context.Background(), "sess", "x")
	if !errors.Is(err, ErrDisabled) {
		t.Errorf("expected ErrDisabled, got %v", err)
	}
}

func TestCreate_OnlyAuthors(t *testing.T) {
	var saved map[string]string
	backend := &mockBackend{CreateDocumentFunc: func(ctx context.Context, session, databaseID, collectionID, documentID string, data interface{}) (json.RawMessage, error) {
		if documentID == "" {
			t.Error("expected a generated document id")
		}
		saved = data.(map[string]string)
		return json.RawMessage(`{"$id":"new-id"}`), nil
	}}
	svc := NewService(backend, nil, "db", "posts", []string{"editor@example.com"})
	svc.now = func() time.Time { return time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC) }

	if _, err := svc.Create(context.Background(), "sess", models.CurrentUser{Email: "someone@example.com"}, Draft{Title: "t", Slug: "s", Content: "c"}); !errors.Is(err, ErrNotAuthor) {
		t.Errorf("expected ErrNotAuthor, got %v", err)
	}
	if saved != nil {
		t.Fatal("non-authors must not reach the backend")
	}

	post, err := svc.Create(context.Background(), "sess", author, Draft{Title: " Hydration ", Slug: "hydration", Content: "Drink water"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if post.ID != "new-id" || post.Author != "Editor@Example.com" || post.CreatedAt != "2024-03-01T10:00:00Z" {
		t.Errorf("unexpected post: %+v", post)
	}
	if saved["title"] != "Hydration" || saved["slug"] != "hydration" {
		t.Errorf("unexpected saved data: %v", saved)
	}
}

func TestCreate_MissingFields(t *testing.T) {
	svc := NewService(&mockBackend{}, nil, "db", "posts", []string{"editor@example.com"})
	if _, err := svc.Create(context.Background(), "sess", author, Draft{Title: "t", Slug: " "}); !errors.Is(err, ErrMissingField) {
		t.Errorf("expected ErrMissingField, got %v", err)
	}
}
