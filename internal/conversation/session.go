// Package conversation runs the chat state machine: profile setup, an active
// exchange with the language model, and reset on end.
package conversation

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/imcalledaditi/MomCare-AI-Assistant/internal/extraction"
	"github.com/imcalledaditi/MomCare-AI-Assistant/internal/geo"
	"github.com/imcalledaditi/MomCare-AI-Assistant/internal/models"
)

const (
	// Greeting is the only message of a fresh transcript.
	Greeting = "Hello! I'm your AI pregnancy care assistant. How can I help you today?"
	// FallbackReply is used when the model returns no candidate text.
	FallbackReply = "I'm sorry, I couldn't generate a response."
)

// State of a chat session
type State string

const (
	StateSetup  State = "setup"
	StateActive State = "active"
)

var (
	ErrEmptyMessage  = errors.New("message is empty")
	ErrNotActive     = errors.New("chat has not been started")
	ErrAlreadyActive = errors.New("chat is already active")
	ErrSessionEnded  = errors.New("chat ended before the reply arrived")
)

// ValidationError lists required profile fields that were blank.
type ValidationError struct {
	Missing []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("please fill in all required fields: %s", strings.Join(e.Missing, ", "))
}

// Profile is what the user enters before chatting.
type Profile struct {
	Feeling               string `json:"feeling"`
	Age                   string `json:"age"`
	WeeksPregnant         string `json:"weeksPregnant"`
	PreExistingConditions string `json:"preExistingConditions"`
	SpecificConcerns      string `json:"specificConcerns"`
}

// Validate checks the three required fields after trimming.
func (p Profile) Validate() error {
	var missing []string
	if strings.TrimSpace(p.Feeling) == "" {
		missing = append(missing, "feeling")
	}
	if strings.TrimSpace(p.Age) == "" {
		missing = append(missing, "age")
	}
	if strings.TrimSpace(p.WeeksPregnant) == "" {
		missing = append(missing, "weeksPregnant")
	}
	if len(missing) > 0 {
		return &ValidationError{Missing: missing}
	}
	return nil
}

// Exchange is the pair of messages produced by one Send.
type Exchange struct {
	User      models.Message `json:"user"`
	Assistant models.Message `json:"assistant"`
}

// Session is one user's chat. All transcript mutation happens here.
type Session struct {
	engine *Engine
	user   models.CurrentUser

	// sendMu serializes Send so every user message is directly followed by its reply.
	sendMu sync.Mutex

	mu         sync.Mutex
	state      State
	chat       *Context
	location   string
	report     *extraction.Report
	transcript []models.Message
	generation uint64
	enrichWG   sync.WaitGroup

	nextID atomic.Int64
}

func newSession(engine *Engine, user models.CurrentUser) *Session {
	s := &Session{engine: engine, user: user, state: StateSetup}
	s.resetTranscript()
	return s
}

// resetTranscript must be called with mu held (or before the session is shared).
func (s *Session) resetTranscript() {
	s.nextID.Store(0)
	s.transcript = []models.Message{s.newMessage(Greeting, models.SenderAssistant, false)}
}

func (s *Session) newMessage(text string, sender models.Sender, isError bool) models.Message {
	return models.Message{
		ID:        s.nextID.Add(1),
		Text:      text,
		Sender:    sender,
		IsError:   isError,
		Timestamp: s.engine.now(),
	}
}

// User returns the identity the session belongs to.
func (s *Session) User() models.CurrentUser {
	return s.user
}

// LoadDocuments lists the medical documents visible to secret, the user's
// Appwrite session, and extracts their text. The corpus feeds the next Start.
func (s *Session) LoadDocuments(ctx context.Context, secret string) extraction.Report {
	docs := s.engine.docs.List(ctx, secret)
	report := s.engine.extractor.Run(ctx, secret, docs)

	s.mu.Lock()
	s.report = &report
	s.mu.Unlock()
	return report
}

// Report returns the extraction report waiting for Start, if any.
func (s *Session) Report() (extraction.Report, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.report == nil {
		return extraction.Report{}, false
	}
	return *s.report, true
}

// Start validates the profile, freezes the chat context (taking over the
// loaded corpus) and, when coordinates are given, resolves the address in the
// background.
func (s *Session) Start(ctx context.Context, profile Profile, coords *geo.Coordinates) error {
	if err := profile.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	if s.state == StateActive {
		s.mu.Unlock()
		return ErrAlreadyActive
	}
	corpus := ""
	if s.report != nil {
		corpus = s.report.Corpus
	}
	s.chat = &Context{
		UserName:              s.user.Name,
		Feeling:               strings.TrimSpace(profile.Feeling),
		Age:                   strings.TrimSpace(profile.Age),
		WeeksPregnant:         strings.TrimSpace(profile.WeeksPregnant),
		PreExistingConditions: strings.TrimSpace(profile.PreExistingConditions),
		SpecificConcerns:      strings.TrimSpace(profile.SpecificConcerns),
		CombinedExtractedText: corpus,
	}
	s.state = StateActive
	s.report = nil
	gen := s.generation
	s.mu.Unlock()

	if coords != nil && s.engine.locator != nil {
		s.enrichWG.Add(1)
		go s.enrich(context.WithoutCancel(ctx), gen, coords)
	}
	return nil
}

func (s *Session) enrich(ctx context.Context, gen uint64, coords *geo.Coordinates) {
	defer s.enrichWG.Done()

	address, ok := s.engine.locator.Resolve(ctx, coords)
	if !ok {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generation != gen {
		return
	}
	s.location = address
	log.Printf("✅ Location detected for user %s", s.user.ID)
}

// Send appends the user's message, asks the model once and appends its reply.
// Model failures become a visible error reply, not an error return.
func (s *Session) Send(ctx context.Context, text string) (Exchange, error) {
	if strings.TrimSpace(text) == "" {
		return Exchange{}, ErrEmptyMessage
	}

	s.sendMu.Lock()
	defer s.sendMu.Unlock()

	s.mu.Lock()
	if s.state != StateActive || s.chat == nil {
		s.mu.Unlock()
		return Exchange{}, ErrNotActive
	}
	userMsg := s.newMessage(text, models.SenderUser, false)
	s.transcript = append(s.transcript, userMsg)
	prompt := BuildPrompt(*s.chat, s.location, s.engine.settings.Country, text)
	gen := s.generation
	s.mu.Unlock()

	reply, err := s.engine.model.Generate(ctx, prompt)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generation != gen {
		log.Printf("⚠️  Discarding reply for user %s: chat ended while waiting", s.user.ID)
		return Exchange{User: userMsg}, ErrSessionEnded
	}

	var botMsg models.Message
	if err != nil {
		log.Printf("❌ Error calling language model: %v", err)
		botMsg = s.newMessage("Error: "+err.Error(), models.SenderAssistant, true)
	} else {
		reply = strings.TrimSpace(reply)
		if reply == "" {
			reply = FallbackReply
		}
		botMsg = s.newMessage(reply, models.SenderAssistant, false)
	}
	s.transcript = append(s.transcript, botMsg)
	return Exchange{User: userMsg, Assistant: botMsg}, nil
}

// End clears the chat context, location and loaded corpus, and resets the
// transcript to the greeting. Replies still in flight are dropped.
func (s *Session) End() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generation++
	s.state = StateSetup
	s.chat = nil
	s.location = ""
	s.report = nil
	s.resetTranscript()
}

// Transcript returns a copy of the messages in order.
func (s *Session) Transcript() []models.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Message, len(s.transcript))
	copy(out, s.transcript)
	return out
}

// State returns the current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Context returns the frozen chat context while active.
func (s *Session) Context() (Context, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.chat == nil {
		return Context{}, false
	}
	return *s.chat, true
}

// Location returns the resolved address, or "" if none.
func (s *Session) Location() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.location
}

// Snapshot is the serializable view of a session.
type Snapshot struct {
	State      State            `json:"state"`
	Context    *Context         `json:"context,omitempty"`
	Location   string           `json:"location,omitempty"`
	Transcript []models.Message `json:"transcript"`
	UpdatedAt  time.Time        `json:"updatedAt"`
}

// Snapshot captures state, context and transcript together.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := Snapshot{
		State:      s.state,
		Location:   s.location,
		Transcript: append([]models.Message(nil), s.transcript...),
		UpdatedAt:  s.engine.now(),
	}
	if s.chat != nil {
		c := *s.chat
		snap.Context = &c
	}
	return snap
}
