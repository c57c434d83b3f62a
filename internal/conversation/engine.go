package conversation

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/imcalledaditi/MomCare-AI-Assistant/internal/extraction"
	"github.com/imcalledaditi/MomCare-AI-Assistant/internal/geo"
	"github.com/imcalledaditi/MomCare-AI-Assistant/internal/models"
)

// Model generates one reply for a full prompt.
type Model interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Locator resolves coordinates to an address. ok is false when unavailable.
type Locator interface {
	Resolve(ctx context.Context, coords *geo.Coordinates) (string, bool)
}

// DocumentLister lists the medical documents visible to a user session.
type DocumentLister interface {
	List(ctx context.Context, session string) []models.Document
}

// Extractor turns documents into a corpus and report, fetching them as session.
type Extractor interface {
	Run(ctx context.Context, session string, docs []models.Document) extraction.Report
}

// Settings are the engine-wide knobs, all taken from configuration.
type Settings struct {
	// Country is the country advice is customised for.
	Country string
	// IdleTimeout forgets sessions unused for this long. Zero keeps them
	// until Drop.
	IdleTimeout time.Duration
}

// Engine holds the collaborators shared by every session and tracks one
// session per user.
type Engine struct {
	model     Model
	locator   Locator
	docs      DocumentLister
	extractor Extractor
	settings  Settings
	now       func() time.Time

	mu        sync.Mutex
	sessions  map[string]*Session
	lastUsed  map[string]time.Time
	lastSweep time.Time
}

// NewEngine creates an engine. locator may be nil to disable location lookup.
func NewEngine(model Model, locator Locator, docs DocumentLister, extractor Extractor, settings Settings) *Engine {
	return &Engine{
		model:     model,
		locator:   locator,
		docs:      docs,
		extractor: extractor,
		settings:  settings,
		now:       time.Now,
		sessions:  make(map[string]*Session),
		lastUsed:  make(map[string]time.Time),
	}
}

// Session returns the user's session, creating it in Setup on first use.
// Every call counts as activity and may expire other idle sessions.
func (e *Engine) Session(user models.CurrentUser) *Session {
	e.mu.Lock()
	now := e.now()
	expired := e.sweepLocked(now)

	s, ok := e.sessions[user.ID]
	if !ok {
		s = newSession(e, user)
		e.sessions[user.ID] = s
	}
	e.lastUsed[user.ID] = now
	e.mu.Unlock()

	for _, old := range expired {
		old.End()
	}
	return s
}

// sweepLocked removes sessions idle for longer than the timeout, at most
// once per half timeout. It must be called with mu held; the caller ends the
// returned sessions after unlocking.
func (e *Engine) sweepLocked(now time.Time) []*Session {
	idle := e.settings.IdleTimeout
	if idle <= 0 || now.Sub(e.lastSweep) < idle/2 {
		return nil
	}
	e.lastSweep = now

	var expired []*Session
	for id, used := range e.lastUsed {
		if now.Sub(used) > idle {
			expired = append(expired, e.sessions[id])
			delete(e.sessions, id)
			delete(e.lastUsed, id)
		}
	}
	if len(expired) > 0 {
		log.Printf("⚠️  Expired %d idle chat session(s)", len(expired))
	}
	return expired
}

// Lookup returns an existing session without creating one.
func (e *Engine) Lookup(userID string) (*Session, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	s, ok := e.sessions[userID]
	return s, ok
}

// Drop ends and forgets the user's session.
func (e *Engine) Drop(userID string) {
	e.mu.Lock()
	s, ok := e.sessions[userID]
	delete(e.sessions, userID)
	delete(e.lastUsed, userID)
	e.mu.Unlock()

	if ok {
		s.End()
	}
}
