package main

import (
	"log"
	"net/http"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"

	"github.com/imcalledaditi/MomCare-AI-Assistant/internal/api/handlers"
	"github.com/imcalledaditi/MomCare-AI-Assistant/internal/api/middleware"
	"github.com/imcalledaditi/MomCare-AI-Assistant/internal/appointments"
	"github.com/imcalledaditi/MomCare-AI-Assistant/internal/appwrite"
	"github.com/imcalledaditi/MomCare-AI-Assistant/internal/blog"
	"github.com/imcalledaditi/MomCare-AI-Assistant/internal/config"
	"github.com/imcalledaditi/MomCare-AI-Assistant/internal/conversation"
	"github.com/imcalledaditi/MomCare-AI-Assistant/internal/database"
	"github.com/imcalledaditi/MomCare-AI-Assistant/internal/documents"
	"github.com/imcalledaditi/MomCare-AI-Assistant/internal/extraction"
	"github.com/imcalledaditi/MomCare-AI-Assistant/internal/geo"
	"github.com/imcalledaditi/MomCare-AI-Assistant/internal/llm"
	"github.com/imcalledaditi/MomCare-AI-Assistant/internal/session"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load configuration: ", err)
	}

	// Initialize database connections; both are optional
	db := database.InitDB(cfg)
	redisClient := database.InitRedis(cfg)

	// Setup and run the server
	r := setupRouter(db, redisClient, cfg)
	port := cfg.ServerPort

	log.Printf("Server starting on port %s", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}

func newAppointmentRepository(db *gorm.DB) appointments.Repository {
	if db == nil {
		return appointments.NewMemoryRepository()
	}
	return appointments.NewGormRepository(db)
}

func setupRouter(db *gorm.DB, redisClient *redis.Client, cfg *config.Config) *gin.Engine {
	r := gin.Default()

	// Configure CORS middleware
	if cfg.FrontendURL != "" {
		headers := cors.DefaultConfig()
		headers.AllowOrigins = []string{cfg.FrontendURL}
		headers.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
		headers.AllowHeaders = []string{"Origin", "Content-Type", "Accept"}
		headers.ExposeHeaders = []string{"Content-Length"}
		headers.AllowCredentials = true
		r.Use(cors.New(headers))
	}

	// Remote services
	aw := appwrite.NewClient(cfg.AppwriteEndpoint, cfg.AppwriteProjectID, cfg.AppwriteAPIKey, cfg.HTTPTimeout)
	gate := session.NewGate(aw, redisClient, cfg.SessionCacheTTL)
	medical := documents.NewStore(aw, cfg.AppwriteMedicalBucketID)
	var profile handlers.DocumentStore
	if cfg.AppwriteProfileBucketID != "" {
		profile = documents.NewStore(aw, cfg.AppwriteProfileBucketID)
	}

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
	engine := conversation.NewEngine(model, locator, medical, pipeline, conversation.Settings{
		Country:     cfg.AdviceCountry,
		IdleTimeout: cfg.ChatIdleTimeout,
	})

	// Initialize handlers and middleware with dependencies
	cookie := middleware.NewSessionCookie(cfg.JWTSecret, strings.HasPrefix(cfg.FrontendURL, "https://"))
	handler := handlers.NewHandler(handlers.Dependencies{
		Accounts:     aw,
		Gate:         gate,
		Cookie:       cookie,
		Medical:      medical,
		Profile:      profile,
		Chat:         engine,
		Blog:         blog.NewService(aw, redisClient, cfg.AppwriteBlogDatabaseID, cfg.AppwriteBlogCollection, cfg.BlogAuthors()),
		Appointments: appointments.NewService(newAppointmentRepository(db)),
		Hospitals:    geo.NewPlaces(cfg.PlacesURL, cfg.MapsAPIKey, cfg.HTTPTimeout),
		Config:       cfg,
	})
	authMiddleware := middleware.NewAuthMiddleware(cookie, gate, cfg.LoginPath, cfg.ProtectedPathList())

	// Page requests under protected prefixes need the session cookie
	r.Use(authMiddleware.RouteGuard())

	// API routes
	api := r.Group("/api")
	{
		// Auth routes
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/signup", handler.Signup)
			authGroup.POST("/login", handler.Login)
			authGroup.POST("/logout", authMiddleware.RequireSession(), handler.Logout)
			authGroup.GET("/me", authMiddleware.RequireSession(), handler.Me)
		}

		// Emergency routes are public
		api.GET("/emergency/hospitals", handler.NearbyHospitals)

		// Everything else is protected by the session gate
		protected := api.Group("", authMiddleware.RequireSession())
		{
			protected.GET("/profile", handler.GetProfile)
			protected.POST("/profile/photo", handler.UploadProfilePhoto)

			protected.GET("/documents", handler.ListDocuments)
			protected.POST("/documents", handler.UploadDocument)
			protected.DELETE("/documents/:id", handler.DeleteDocument)

			chat := protected.Group("/chat")
			{
				chat.POST("/prepare", handler.PrepareChat)
				chat.POST("/start", handler.StartChat)
				chat.POST("/messages", handler.SendMessage)
				chat.POST("/end", handler.EndChat)
				chat.GET("/transcript", handler.GetTranscript)
			}

			protected.GET("/blog/:slug", handler.GetBlogPost)
			protected.POST("/blog", handler.CreateBlogPost)

			protected.GET("/appointments/slots", handler.ListSlots)
			protected.GET("/appointments", handler.ListAppointments)
			protected.POST("/appointments", handler.BookAppointment)
		}
	}

	// Serve the built frontend when configured
	if cfg.StaticDir != "" {
		r.NoRoute(gin.WrapH(http.FileServer(http.Dir(cfg.StaticDir))))
	}

	return r
}
