package handlers

import (
	"context"

	"github.com/imcalledaditi/MomCare-AI-Assistant/internal/api/middleware"
	"github.com/imcalledaditi/MomCare-AI-Assistant/internal/appointments"
	"github.com/imcalledaditi/MomCare-AI-Assistant/internal/appwrite"
	"github.com/imcalledaditi/MomCare-AI-Assistant/internal/blog"
	"github.com/imcalledaditi/MomCare-AI-Assistant/internal/config"
	"github.com/imcalledaditi/MomCare-AI-Assistant/internal/conversation"
	"github.com/imcalledaditi/MomCare-AI-Assistant/internal/documents"
	"github.com/imcalledaditi/MomCare-AI-Assistant/internal/geo"
	"github.com/imcalledaditi/MomCare-AI-Assistant/internal/models"
	"github.com/imcalledaditi/MomCare-AI-Assistant/internal/session"
)

// Accounts is the Appwrite account API used by the auth and profile handlers.
type Accounts interface {
	CreateAccount(ctx context.Context, userID, email, password, name string) (*appwrite.Account, error)
	CreateEmailSession(ctx context.Context, email, password string) (*appwrite.Session, error)
	DeleteCurrentSession(ctx context.Context, session string) error
	UpdatePrefs(ctx context.Context, session string, prefs map[string]string) (*appwrite.Account, error)
	UpdatePhone(ctx context.Context, session, phone, password string) (*appwrite.Account, error)
}

// Gate checks and forgets sessions.
type Gate interface {
	Check(ctx context.Context, secret string) session.Status
	Forget(ctx context.Context, secret string)
}

// DocumentStore is one bucket of user files. session is the caller's
// Appwrite session secret; the store acts as that user.
type DocumentStore interface {
	List(ctx context.Context, session string) []models.Document
	Upload(ctx context.Context, session string, file documents.File, allowed []string) (models.Document, error)
	Delete(ctx context.Context, session, documentID string) error
}

// HospitalFinder looks up hospitals near a location.
type HospitalFinder interface {
	NearbyHospitals(ctx context.Context, coords geo.Coordinates, limit int) ([]geo.Hospital, error)
}

// Dependencies groups everything the handlers use. Profile may be nil when
// no profile bucket is configured.
type Dependencies struct {
	Accounts     Accounts
	Gate         Gate
	Cookie       *middleware.SessionCookie
	Medical      DocumentStore
	Profile      DocumentStore
	Chat         *conversation.Engine
	Blog         *blog.Service
	Appointments *appointments.Service
	Hospitals    HospitalFinder
	Config       *config.Config
}

// handler is the core struct with all dependencies
type handler struct {
	accounts     Accounts
	gate         Gate
	cookie       *middleware.SessionCookie
	medical      DocumentStore
	profile      DocumentStore
	chat         *conversation.Engine
	blog         *blog.Service
	appointments *appointments.Service
	hospitals    HospitalFinder
	config       *config.Config
}

// NewHandler creates a new handler instance
func NewHandler(deps Dependencies) *handler {
	return &handler{
		accounts:     deps.Accounts,
		gate:         deps.Gate,
		cookie:       deps.Cookie,
		medical:      deps.Medical,
		profile:      deps.Profile,
		chat:         deps.Chat,
		blog:         deps.Blog,
		appointments: deps.Appointments,
		hospitals:    deps.Hospitals,
		config:       deps.Config,
	}
}
