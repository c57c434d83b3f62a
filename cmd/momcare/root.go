package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/imcalledaditi/MomCare-AI-Assistant/internal/appwrite"
	"github.com/imcalledaditi/MomCare-AI-Assistant/internal/config"
	"github.com/imcalledaditi/MomCare-AI-Assistant/internal/conversation"
	"github.com/imcalledaditi/MomCare-AI-Assistant/internal/documents"
	"github.com/imcalledaditi/MomCare-AI-Assistant/internal/extraction"
	"github.com/imcalledaditi/MomCare-AI-Assistant/internal/geo"
	"github.com/imcalledaditi/MomCare-AI-Assistant/internal/llm"
	"github.com/imcalledaditi/MomCare-AI-Assistant/internal/models"
	"github.com/imcalledaditi/MomCare-AI-Assistant/internal/session"
)

var (
	email    string
	password string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "momcare",
	Short: "MomCare assistant from the terminal",
	Long: `Run the MomCare document extraction and pregnancy chat assistant
against your Appwrite account without the web frontend.

  momcare extract --format yaml    # Extract text from your medical documents
  momcare chat                     # Chat with the assistant`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&email, "email", os.Getenv("MOMCARE_EMAIL"), "Account email (defaults to $MOMCARE_EMAIL)")
	rootCmd.PersistentFlags().StringVar(&password, "password", os.Getenv("MOMCARE_PASSWORD"), "Account password (defaults to $MOMCARE_PASSWORD)")
}

// services is the same wiring the server uses, minus HTTP.
type services struct {
	accounts *appwrite.Client
	gate     *session.Gate
	engine   *conversation.Engine
}

func newServices(cfg *config.Config) *services {
	aw := appwrite.NewClient(cfg.AppwriteEndpoint, cfg.AppwriteProjectID, cfg.AppwriteAPIKey, cfg.HTTPTimeout)
	medical := documents.NewStore(aw, cfg.AppwriteMedicalBucketID)
	pipeline := extraction.NewPipeline(
		medical,
		extraction.NewOCRClient(cfg.OCRServiceURL, cfg.HTTPTimeout),
		extraction.NewPDFExtractor(),
		cfg.ExtractionConcurrency,
	)
	model := llm.NewGeminiClient(cfg.GeminiBaseURL, cfg.GeminiModel, cfg.GeminiAPIKey, cfg.ModelTimeout)

	var locator conversation.Locator
	if cfg.MapsAPIKey != "" {
		locator = geo.NewEnricher(cfg.GeocodeURL, cfg.MapsAPIKey, cfg.HTTPTimeout)
	}

	return &services{
		accounts: aw,
		gate:     session.NewGate(aw, nil, cfg.SessionCacheTTL),
		engine:   conversation.NewEngine(model, locator, medical, pipeline, conversation.Settings{Country: cfg.AdviceCountry}),
	}
}

// loginSession is a logged-in CLI user. Secret is the Appwrite session
// every document call acts as.
type loginSession struct {
	User   models.CurrentUser
	Secret string
}

// login creates an Appwrite session and resolves it through the gate.
// The returned func deletes the session.
func (s *services) login(ctx context.Context) (loginSession, func(), error) {
	if email == "" || password == "" {
		return loginSession{}, nil, errors.New("--email and --password are required")
	}

	sess, err := s.accounts.CreateEmailSession(ctx, email, password)
	if err != nil {
		return loginSession{}, nil, fmt.Errorf("failed to log in: %w", err)
	}

	status := s.gate.Check(ctx, sess.Secret)
	if !status.Authenticated {
		return loginSession{}, nil, errors.New("session could not be verified")
	}

	logout := func() {
		if err := s.accounts.DeleteCurrentSession(context.Background(), sess.Secret); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to delete session: %v\n", err)
		}
	}
	return loginSession{User: status.User, Secret: sess.Secret}, logout, nil
}
