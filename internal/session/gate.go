// Package session decides whether a delegated Appwrite session is valid and
// resolves the user behind it.
package session

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/imcalledaditi/MomCare-AI-Assistant/internal/appwrite"
	"github.com/imcalledaditi/MomCare-AI-Assistant/internal/models"
)

// AccountService is the part of the Appwrite client the gate needs.
type AccountService interface {
	GetAccount(ctx context.Context, session string) (*appwrite.Account, error)
}

// Status is the outcome of a check.
type Status struct {
	Authenticated bool
	User          models.CurrentUser
}

// Gate checks sessions against Appwrite, with an optional Redis cache.
type Gate struct {
	accounts    AccountService
	redisClient *redis.Client
	ttl         time.Duration
}

// NewGate creates a gate. A nil redisClient disables caching.
func NewGate(accounts AccountService, redisClient *redis.Client, ttl time.Duration) *Gate {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Gate{accounts: accounts, redisClient: redisClient, ttl: ttl}
}

func cacheKey(secret string) string {
	sum := sha256.Sum256([]byte(secret))
	return fmt.Sprintf("session:%s", hex.EncodeToString(sum[:]))
}

// Check resolves the session secret to a user. Any failure is Unauthenticated.
func (g *Gate) Check(ctx context.Context, secret string) Status {
	if secret == "" {
		return Status{}
	}

	if user, ok := g.cached(ctx, secret); ok {
		return Status{Authenticated: true, User: user}
	}

	acc, err := g.accounts.GetAccount(ctx, secret)
	if err != nil {
		log.Printf("⚠️  Session check failed: %v", err)
		return Status{}
	}

	user := models.CurrentUser{
		ID:    acc.ID,
		Name:  acc.Name,
		Email: acc.Email,
		Phone: acc.Phone,
		Prefs: acc.StringPrefs(),
	}
	g.store(ctx, secret, user)
	return Status{Authenticated: true, User: user}
}

// Forget drops the cached result for secret.
func (g *Gate) Forget(ctx context.Context, secret string) {
	if g.redisClient == nil || secret == "" {
		return
	}
	if err := g.redisClient.Del(ctx, cacheKey(secret)).Err(); err != nil {
		log.Printf("Failed to clear cached session: %v", err)
	}
}

func (g *Gate) cached(ctx context.Context, secret string) (models.CurrentUser, bool) {
	if g.redisClient == nil {
		return models.CurrentUser{}, false
	}

	data, err := g.redisClient.Get(ctx, cacheKey(secret)).Bytes()
	if err != nil {
		if err != redis.Nil {
			log.Printf("Failed to read cached session: %v", err)
		}
		return models.CurrentUser{}, false
	}

	var user models.CurrentUser
	if err := json.Unmarshal(data, &user); err != nil {
		return models.CurrentUser{}, false
	}
	return user, true
}

func (g *Gate) store(ctx context.Context, secret string, user models.CurrentUser) {
	if g.redisClient == nil {
		return
	}
	data, _ := json.Marshal(user)
	if err := g.redisClient.Set(ctx, cacheKey(secret), data, g.ttl).Err(); err != nil {
		log.Printf("Failed to cache session: %v", err)
	}
}
