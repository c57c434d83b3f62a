// Package blog reads and publishes resource articles stored in an Appwrite
// collection.
package blog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"

	"github.com/imcalledaditi/MomCare-AI-Assistant/internal/appwrite"
	"github.com/imcalledaditi/MomCare-AI-Assistant/internal/models"
)

const cacheTTL = 24 * time.Hour

var (
	ErrNotFound     = errors.New("blog post not found")
	ErrNotAuthor    = errors.New("you are not authorized to post blogs")
	ErrDisabled     = errors.New("blog is not configured")
	ErrMissingField = errors.New("title, slug and content are required")
)

// Backend is the part of the Appwrite databases API the blog needs.
type Backend interface {
	ListDocuments(ctx context.Context, session, databaseID, collectionID string, queries ...string) (*appwrite.DocumentList, error)
	CreateDocument(ctx context.Context, session, databaseID, collectionID, documentID string, data interface{}) (json.RawMessage, error)
}

// Draft is a post about to be published.
type Draft struct {
	Title   string `json:"title" binding:"required"`
	Slug    string `json:"slug" binding:"required"`
	Content string `json:"content" binding:"required"`
}

// Service reads posts by slug and publishes new ones.
type Service struct {
	backend      Backend
	redisClient  *redis.Client
	databaseID   string
	collectionID string
	authors      map[string]bool
	now          func() time.Time
}

// NewService creates the blog service. authors are the emails allowed to
// publish; a nil redisClient disables caching.
func NewService(backend Backend, redisClient *redis.Client, databaseID, collectionID string, authors []string) *Service {
	allowed := make(map[string]bool, len(authors))
	for _, a := range authors {
		allowed[strings.ToLower(strings.TrimSpace(a))] = true
	}
	return &Service{
		backend:      backend,
		redisClient:  redisClient,
		databaseID:   databaseID,
		collectionID: collectionID,
		authors:      allowed,
		now:          time.Now,
	}
}

func (s *Service) enabled() bool {
	return s.databaseID != "" && s.collectionID != ""
}

// CanPublish reports whether user may create posts.
func (s *Service) CanPublish(user models.CurrentUser) bool {
	return s.authors[strings.ToLower(user.Email)]
}

type postDocument struct {
	ID        string `json:"$id"`
	Title     string `json:"title"`
	Slug      string `json:"slug"`
	Content   string `json:"content"`
	Author    string `json:"author"`
	CreatedAt string `json:"createdAt"`
}

func (d postDocument) toPost() models.BlogPost {
	return models.BlogPost{
		ID:        d.ID,
		Title:     d.Title,
		Slug:      d.Slug,
		Content:   d.Content,
		Author:    d.Author,
		CreatedAt: d.CreatedAt,
	}
}

func cacheKey(slug string) string {
	return fmt.Sprintf("blog:%s", slug)
}

// Get returns the first post whose slug equals slug.
func (s *Service) Get(ctx context.Context, session, slug string) (models.BlogPost, error) {
	if !s.enabled() {
		return models.BlogPost{}, ErrDisabled
	}

	if s.redisClient != nil {
		if data, err := s.redisClient.Get(ctx, cacheKey(slug)).Bytes(); err == nil {
			var post models.BlogPost
			if err := json.Unmarshal(data, &post); err == nil {
				return post, nil
			}
		}
	}

	list, err := s.backend.ListDocuments(ctx, session, s.databaseID, s.collectionID, appwrite.QueryEqual("slug", slug))
	if err != nil {
		log.Printf("❌ Error fetching blog post %q: %v", slug, err)
		return models.BlogPost{}, fmt.Errorf("fetching blog post: %w", err)
	}
	if len(list.Documents) == 0 {
		return models.BlogPost{}, ErrNotFound
	}

	var doc postDocument
	if err := json.Unmarshal(list.Documents[0], &doc); err != nil {
		return models.BlogPost{}, fmt.Errorf("decoding blog post: %w", err)
	}
	post := doc.toPost()
	s.cache(ctx, post)
	return post, nil
}

// Create publishes a draft authored by user.
func (s *Service) Create(ctx context.Context, session string, user models.CurrentUser, draft Draft) (models.BlogPost, error) {
	if !s.enabled() {
		return models.BlogPost{}, ErrDisabled
	}
	if !s.CanPublish(user) {
		return models.BlogPost{}, ErrNotAuthor
	}
	draft.Title = strings.TrimSpace(draft.Title)
	draft.Slug = strings.TrimSpace(draft.Slug)
	if draft.Title == "" || draft.Slug == "" || strings.TrimSpace(draft.Content) == "" {
		return models.BlogPost{}, ErrMissingField
	}

	doc := postDocument{
		Title:     draft.Title,
		Slug:      draft.Slug,
		Content:   draft.Content,
		Author:    user.Email,
		CreatedAt: s.now().UTC().Format(time.RFC3339),
	}
	data := map[string]string{
		"title":     doc.Title,
		"slug":      doc.Slug,
		"content":   doc.Content,
		"author":    doc.Author,
		"createdAt": doc.CreatedAt,
	}

	raw, err := s.backend.CreateDocument(ctx, session, s.databaseID, s.collectionID, uuid.NewString(), data)
	if err != nil {
		log.Printf("❌ Error creating blog post: %v", err)
		return models.BlogPost{}, fmt.Errorf("creating blog post: %w", err)
	}

	var created postDocument
	if err := json.Unmarshal(raw, &created); err == nil && created.ID != "" {
		doc.ID = created.ID
	}
	post := doc.toPost()

	if s.redisClient != nil {
		if err := s.redisClient.Del(ctx, cacheKey(post.Slug)).Err(); err != nil {
			log.Printf("Failed to invalidate blog cache: %v", err)
		}
	}
	return post, nil
}

func (s *Service) cache(ctx context.Context, post models.BlogPost) {
	if s.redisClient == nil {
		return
	}
	data, _ := json.Marshal(post)
	if err := s.redisClient.Set(ctx, cacheKey(post.Slug), data, cacheTTL).Err(); err != nil {
		log.Printf("Failed to cache blog post: %v", err)
	}
}
