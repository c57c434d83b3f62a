package conversation

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/imcalledaditi/MomCare-AI-Assistant/internal/extraction"
	"github.com/imcalledaditi/MomCare-AI-Assistant/internal/geo"
	"github.com/imcalledaditi/MomCare-AI-Assistant/internal/models"
)

type mockModel struct {
	mu           sync.Mutex
	prompts      []string
	GenerateFunc func(ctx context.Context, prompt string) (string, error)
}

func (m *mockModel) Generate(ctx context.Context, prompt string) (string, error) {
	m.mu.Lock()
	m.prompts = append(m.prompts, prompt)
	m.mu.Unlock()
	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, prompt)
	}
	return "reply", nil
}

func (m *mockModel) lastPrompt() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.prompts) == 0 {
		return ""
	}
	return m.prompts[len(m.prompts)-1]
}

type mockLocator struct {
	ResolveFunc func(ctx context.Context, coords *geo.Coordinates) (string, bool)
}

func (m *mockLocator) Resolve(ctx context.Context, coords *geo.Coordinates) (string, bool) {
	return m.ResolveFunc(ctx, coords)
}

type mockDocs struct {
	docs     []models.Document
	sessions []string
}

func (m *mockDocs) List(ctx context.Context, session string) []models.Document {
	m.sessions = append(m.sessions, session)
	return m.docs
}

type mockExtractor struct {
	report   extraction.Report
	calls    int
	sessions []string
}

func (m *mockExtractor) Run(ctx context.Context, session string, docs []models.Document) extraction.Report {
	m.calls++
	m.sessions = append(m.sessions, session)
	return m.report
}

var testUser = models.CurrentUser{ID: "user-1", Name: "Asha", Email: "asha@example.com"}

var validProfile = Profile{
	Feeling:       "Tired",
	Age:           "29",
	WeeksPregnant: "20",
}

func newTestEngine(model Model, locator Locator) (*Engine, *mockExtractor) {
	extractor := &mockExtractor{report: extraction.Report{Corpus: "Hemoglobin 10.2"}}
	return NewEngine(model, locator, &mockDocs{}, extractor, Settings{Country: "India"}), extractor
}

func TestNewSession_Greeting(t *testing.T) {
	engine, _ := newTestEngine(&mockModel{}, nil)
	s := engine.Session(testUser)

	if s.State() != StateSetup {
		t.Errorf("expected setup state, got %s", s.State())
	}
	transcript := s.Transcript()
	if len(transcript) != 1 {
		t.Fatalf("expected only the greeting, got %d messages", len(transcript))
	}
	if transcript[0].Text != Greeting || transcript[0].Sender != models.SenderAssistant {
		t.Errorf("unexpected greeting: %+v", transcript[0])
	}
}

func TestStart_RequiresFields(t *testing.T) {
	engine, _ := newTestEngine(&mockModel{}, nil)
	s := engine.Session(testUser)

	err := s.Start(context.Background(), Profile{Feeling: "  ", Age: "29"}, nil)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if len(verr.Missing) != 2 || verr.Missing[0] != "feeling" || verr.Missing[1] != "weeksPregnant" {
		t.Errorf("Missing = %v", verr.Missing)
	}
	if s.State() != StateSetup {
		t.Error("failed validation must stay in setup")
	}
}

func TestStart_FreezesContext(t *testing.T) {
	engine, _ := newTestEngine(&mockModel{}, nil)
	s := engine.Session(testUser)
	s.LoadDocuments(context.Background(), "secret-1")

	if err := s.Start(context.Background(), validProfile, nil); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	c, ok := s.Context()
	if !ok {
		t.Fatal("expected context while active")
	}
	if c.UserName != "Asha" || c.CombinedExtractedText != "Hemoglobin 10.2" {
		t.Errorf("unexpected context: %+v", c)
	}
	if _, ok := s.Report(); ok {
		t.Error("Start should take over the loaded report")
	}
	if err := s.Start(context.Background(), validProfile, nil); !errors.Is(err, ErrAlreadyActive) {
		t.Errorf("second Start = %v", err)
	}
}

func TestSend_AppendsPair(t *testing.T) {
	model := &mockModel{GenerateFunc: func(ctx context.Context, prompt string) (string, error) {
		return "  Drink water.  ", nil
	}}
	engine, _ := newTestEngine(model, nil)
	s := engine.Session(testUser)
	s.LoadDocuments(context.Background(), "secret-1")
	s.Start(context.Background(), validProfile, nil)

	ex, err := s.Send(context.Background(), "I have a headache")
	if err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	if ex.User.Text != "I have a headache" || ex.Assistant.Text != "Drink water." {
		t.Errorf("unexpected exchange: %+v", ex)
	}

	transcript := s.Transcript()
	if len(transcript) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(transcript))
	}
	for i := 1; i < len(transcript); i++ {
		if transcript[i].ID <= transcript[i-1].ID {
			t.Errorf("ids not increasing: %d then %d", transcript[i-1].ID, transcript[i].ID)
		}
	}

	prompt := model.lastPrompt()
	for _, want := range []string{
		"User Name: Asha.",
		"Weeks Pregnant: 20.",
		"Medical Document Text: Hemoglobin 10.2.",
		"User Location: Unknown.",
		"customise your responses for India",
		"User Location: Unknown.\n\nYou are a pregnancy care assistant.",
		"when relevant.\n\nUser says: I have a headache\n\nAI:",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestSend_Rejections(t *testing.T) {
	model := &mockModel{}
	engine, _ := newTestEngine(model, nil)
	s := engine.Session(testUser)

	if _, err := s.Send(context.Background(), "hello"); !errors.Is(err, ErrNotActive) {
		t.Errorf("Send before Start = %v", err)
	}

	s.Start(context.Background(), validProfile, nil)
	if _, err := s.Send(context.Background(), "   "); !errors.Is(err, ErrEmptyMessage) {
		t.Errorf("blank Send = %v", err)
	}
	if len(model.prompts) != 0 {
		t.Error("rejected sends must not call the model")
	}
	if len(s.Transcript()) != 1 {
		t.Error("rejected sends must not touch the transcript")
	}
}

func TestSend_ModelFailureBecomesErrorReply(t *testing.T) {
	model := &mockModel{GenerateFunc: func(ctx context.Context, prompt string) (string, error) {
		return "", errors.New("API request failed: 500 Internal Server Error")
	}}
	engine, _ := newTestEngine(model, nil)
	s := engine.Session(testUser)
	s.Start(context.Background(), validProfile, nil)

	ex, err := s.Send(context.Background(), "hi")
	if err != nil {
		t.Fatalf("model failures should not be returned: %v", err)
	}
	if !ex.Assistant.IsError || ex.Assistant.Text != "Error: API request failed: 500 Internal Server Error" {
		t.Errorf("unexpected error reply: %+v", ex.Assistant)
	}
	if s.State() != StateActive {
		t.Error("session should stay active after a model failure")
	}
}

func TestSend_EmptyReplyUsesFallback(t *testing.T) {
	model := &mockModel{GenerateFunc: func(ctx context.Context, prompt string) (string, error) {
		return "", nil
	}}
	engine, _ := newTestEngine(model, nil)
	s := engine.Session(testUser)
	s.Start(context.Background(), validProfile, nil)

	ex, _ := s.Send(context.Background(), "hi")
	if ex.Assistant.Text != FallbackReply || ex.Assistant.IsError {
		t.Errorf("unexpected fallback: %+v", ex.Assistant)
	}
}

func TestSend_ConcurrentKeepsPairsAdjacent(t *testing.T) {
	model := &mockModel{GenerateFunc: func(ctx context.Context, prompt string) (string, error) {
		time.Sleep(time.Millisecond)
		return "ok", nil
	}}
	engine, _ := newTestEngine(model, nil)
	s := engine.Session(testUser)
	s.Start(context.Background(), validProfile, nil)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Send(context.Background(), "question")
		}()
	}
	wg.Wait()

	transcript := s.Transcript()
	if len(transcript) != 21 {
		t.Fatalf("expected 21 messages, got %d", len(transcript))
	}
	for i := 1; i < len(transcript); i += 2 {
		if transcript[i].Sender != models.SenderUser || transcript[i+1].Sender != models.SenderAssistant {
			t.Fatalf("messages %d and %d are not a user/assistant pair", i, i+1)
		}
	}
}

func TestEnd_ResetsAndDropsLateReply(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	model := &mockModel{GenerateFunc: func(ctx context.Context, prompt string) (string, error) {
		close(started)
		<-release
		return "late", nil
	}}
	engine, _ := newTestEngine(model, nil)
	s := engine.Session(testUser)
	s.LoadDocuments(context.Background(), "secret-1")
	s.Start(context.Background(), validProfile, nil)

	done := make(chan error, 1)
	go func() {
		_, err := s.Send(context.Background(), "hi")
		done <- err
	}()

	<-started
	s.End()
	close(release)

	if err := <-done; !errors.Is(err, ErrSessionEnded) {
		t.Errorf("late Send = %v", err)
	}
	if s.State() != StateSetup {
		t.Error("End should return to setup")
	}
	if _, ok := s.Context(); ok {
		t.Error("End should clear the context")
	}
	if _, ok := s.Report(); ok {
		t.Error("End should clear the loaded corpus")
	}
	transcript := s.Transcript()
	if len(transcript) != 1 || transcript[0].Text != Greeting {
		t.Errorf("transcript after End = %+v", transcript)
	}
}

func TestLocation_EnrichesLaterPrompts(t *testing.T) {
	model := &mockModel{}
	locator := &mockLocator{ResolveFunc: func(ctx context.Context, coords *geo.Coordinates) (string, bool) {
		return "MG Road, Bengaluru", true
	}}
	engine, _ := newTestEngine(model, locator)
	s := engine.Session(testUser)

	s.Start(context.Background(), validProfile, &geo.Coordinates{Latitude: 12.97, Longitude: 77.59})
	s.enrichWG.Wait()

	if s.Location() != "MG Road, Bengaluru" {
		t.Errorf("Location() = %q", s.Location())
	}
	s.Send(context.Background(), "hi")
	if !strings.Contains(model.lastPrompt(), "User Location: MG Road, Bengaluru.") {
		t.Error("prompt should include the resolved location")
	}

	s.End()
	if s.Location() != "" {
		t.Error("End should clear the location")
	}
}

func TestLocation_UnavailableStaysUnknown(t *testing.T) {
	model := &mockModel{}
	locator := &mockLocator{ResolveFunc: func(ctx context.Context, coords *geo.Coordinates) (string, bool) {
		return "", false
	}}
	engine, _ := newTestEngine(model, locator)
	s := engine.Session(testUser)

	s.Start(context.Background(), validProfile, &geo.Coordinates{})
	s.enrichWG.Wait()
	s.Send(context.Background(), "hi")

	if !strings.Contains(model.lastPrompt(), "User Location: Unknown.") {
		t.Error("unavailable location should render as Unknown")
	}
}

func TestLocation_ResolvedAfterEndIsIgnored(t *testing.T) {
	release := make(chan struct{})
	locator := &mockLocator{ResolveFunc: func(ctx context.Context, coords *geo.Coordinates) (string, bool) {
		<-release
		return "Somewhere", true
	}}
	engine, _ := newTestEngine(&mockModel{}, locator)
	s := engine.Session(testUser)

	s.Start(context.Background(), validProfile, &geo.Coordinates{})
	s.End()
	close(release)
	s.enrichWG.Wait()

	if s.Location() != "" {
		t.Errorf("stale location applied: %q", s.Location())
	}
}

func TestEngine_SessionPerUser(t *testing.T) {
	engine, _ := newTestEngine(&mockModel{}, nil)

	a := engine.Session(testUser)
	if engine.Session(testUser) != a {
		t.Error("expected the same session for the same user")
	}
	b := engine.Session(models.CurrentUser{ID: "user-2"})
	if a == b {
		t.Error("users must not share sessions")
	}

	a.Start(context.Background(), validProfile, nil)
	engine.Drop(testUser.ID)
	if _, ok := engine.Lookup(testUser.ID); ok {
		t.Error("dropped session should be gone")
	}
	if a.State() != StateSetup {
		t.Error("Drop should end the session")
	}
}

func TestLoadDocuments_UsesCallerSession(t *testing.T) {
	docs := &mockDocs{}
	extractor := &mockExtractor{}
	engine := NewEngine(&mockModel{}, nil, docs, extractor, Settings{Country: "India"})

	engine.Session(testUser).LoadDocuments(context.Background(), "secret-1")

	if len(docs.sessions) != 1 || docs.sessions[0] != "secret-1" {
		t.Errorf("documents listed as %v", docs.sessions)
	}
	if len(extractor.sessions) != 1 || extractor.sessions[0] != "secret-1" {
		t.Errorf("documents extracted as %v", extractor.sessions)
	}
}

func TestEngine_ExpiresIdleSessions(t *testing.T) {
	engine := NewEngine(&mockModel{}, nil, &mockDocs{}, &mockExtractor{}, Settings{Country: "India", IdleTimeout: time.Hour})
	clock := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	engine.now = func() time.Time { return clock }

	idle := engine.Session(testUser)
	idle.Start(context.Background(), validProfile, nil)
	busy := engine.Session(models.CurrentUser{ID: "user-2"})

	clock = clock.Add(40 * time.Minute)
	engine.Session(models.CurrentUser{ID: "user-2"})

	clock = clock.Add(40 * time.Minute)
	if engine.Session(models.CurrentUser{ID: "user-2"}) != busy {
		t.Error("a session in use should survive the sweep")
	}
	if _, ok := engine.Lookup(testUser.ID); ok {
		t.Error("idle session should have been forgotten")
	}
	if idle.State() != StateSetup {
		t.Error("expired session should be ended")
	}
	if engine.Session(testUser) == idle {
		t.Error("returning user should get a fresh session")
	}
}

func TestEngine_NoIdleTimeoutKeepsSessions(t *testing.T) {
	engine, _ := newTestEngine(&mockModel{}, nil)
	clock := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	engine.now = func() time.Time { return clock }

	a := engine.Session(testUser)
	clock = clock.Add(30 * 24 * time.Hour)
	if engine.Session(testUser) != a {
		t.Error("sessions should be kept when no idle timeout is set")
	}
}
