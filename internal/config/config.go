package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config stores all the configuration of the application.
// Values are loaded from environment variables with optional
// loading from a .env file via godotenv.
type Config struct {
	// Appwrite settings
	AppwriteEndpoint        string
	AppwriteProjectID       string
	AppwriteAPIKey          string
	AppwriteMedicalBucketID string
	AppwriteProfileBucketID string
	AppwriteBlogDatabaseID  string
	AppwriteBlogCollection  string

	// Database settings
	DBHost     string
	DBUser     string
	DBPassword string
	DBName     string
	DBPort     string
	DBSSLMode  string

	// Redis settings
	RedisHost       string
	RedisPort       string
	RedisUsername   string
	RedisPassword   string
	SessionCacheTTL time.Duration

	// Chat sessions idle for longer than this are forgotten; 0 keeps them
	ChatIdleTimeout time.Duration

	// Server settings
	ServerPort     string
	FrontendURL    string
	JWTSecret      string
	LoginPath      string
	ProtectedPaths string
	StaticDir      string

	// Gemini settings
	GeminiBaseURL string
	GeminiAPIKey  string
	GeminiModel   string
	AdviceCountry string

	// Google Maps settings
	MapsAPIKey     string
	GeocodeURL     string
	PlacesURL      string
	HospitalsLimit int

	// Extraction settings
	OCRServiceURL         string
	ExtractionConcurrency int
	HTTPTimeout           time.Duration
	ModelTimeout          time.Duration

	// Blog settings
	BlogAuthorEmails string
}

// LoadConfig reads configuration from environment variables and .env file.
// It returns the loaded configuration or an error if required values are missing.
func LoadConfig() (*Config, error) {
	// Try to load .env file, but proceed even if it doesn't exist
	if err := godotenv.Load(); err != nil {
		if os.IsNotExist(err) {
			log.Println("No .env file found, using environment variables only")
		} else {
			log.Printf("Warning: Error loading .env file: %v", err)
		}
	} else {
		log.Println("Environment loaded from .env file")
	}

	config := FromEnv()

	// Validate the configuration
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// FromEnv builds a Config from the current process environment without
// touching .env files or validating.
func FromEnv() *Config {
	return &Config{
		// Appwrite settings
		AppwriteEndpoint:        strings.TrimRight(getEnv("APPWRITE_ENDPOINT", ""), "/"),
		AppwriteProjectID:       getEnv("APPWRITE_PROJECT_ID", ""),
		AppwriteAPIKey:          getEnv("APPWRITE_API_KEY", ""),
		AppwriteMedicalBucketID: getEnv("APPWRITE_MEDICAL_BUCKET_ID", ""),
		AppwriteProfileBucketID: getEnv("APPWRITE_PROFILE_BUCKET_ID", ""),
		AppwriteBlogDatabaseID:  getEnv("APPWRITE_BLOG_DATABASE_ID", ""),
		AppwriteBlogCollection:  getEnv("APPWRITE_BLOG_COLLECTION_ID", ""),

		// Database settings
		DBHost:     getEnv("DB_HOST", ""),
		DBUser:     getEnv("DB_USER", ""),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", ""),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		// Redis settings
		RedisHost:       getEnv("REDIS_HOST", ""),
		RedisPort:       getEnv("REDIS_PORT", "6379"),
		RedisUsername:   getEnv("REDIS_USERNAME", ""),
		RedisPassword:   getEnv("REDIS_PASSWORD", ""),
		SessionCacheTTL: getEnvAsDuration("SESSION_CACHE_TTL", 5*time.Minute),

		ChatIdleTimeout: getEnvAsDuration("CHAT_IDLE_TIMEOUT", 2*time.Hour),

		// Server settings
		ServerPort:     getEnv("PORT", "8080"),
		FrontendURL:    getEnv("FRONTEND_URL", ""),
		JWTSecret:      getEnv("JWT_SECRET", ""),
		LoginPath:      getEnv("LOGIN_PATH", "/login"),
		ProtectedPaths: getEnv("PROTECTED_PATHS", "/dashboard,/appointments,/chat,/medicaldocuments"),
		StaticDir:      getEnv("STATIC_DIR", ""),

		// Gemini settings
		GeminiBaseURL: getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com/v1beta"),
		GeminiAPIKey:  getEnv("GEMINI_API_KEY", ""),
		GeminiModel:   getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
		AdviceCountry: getEnvNonEmpty("ADVICE_COUNTRY", "India"),

		// Google Maps settings
		MapsAPIKey:     getEnv("GOOGLE_MAPS_API_KEY", ""),
		GeocodeURL:     getEnv("GEOCODE_URL", "https://maps.googleapis.com/maps/api/geocode/json"),
		PlacesURL:      getEnv("PLACES_URL", "https://maps.googleapis.com/maps/api/place/nearbysearch/json"),
		HospitalsLimit: getEnvAsInt("HOSPITALS_LIMIT", 6),

		// Extraction settings
		OCRServiceURL:         getEnv("OCR_SERVICE_URL", "http://localhost:8884"),
		ExtractionConcurrency: getEnvAsInt("EXTRACTION_CONCURRENCY", 4),
		HTTPTimeout:           getEnvAsDuration("HTTP_TIMEOUT", 60*time.Second),
		ModelTimeout:          getEnvAsDuration("MODEL_TIMEOUT", 120*time.Second),

		// Blog settings
		BlogAuthorEmails: getEnv("BLOG_AUTHOR_EMAILS", ""),
	}
}

// Validate checks if the required configuration values are set and logs warnings
// for optional values that aren't set.
func (c *Config) Validate() error {
	var missingEnvs []string

	// Check required Appwrite configuration
	if c.AppwriteEndpoint == "" {
		missingEnvs = append(missingEnvs, "APPWRITE_ENDPOINT")
	}
	if c.AppwriteProjectID == "" {
		missingEnvs = append(missingEnvs, "APPWRITE_PROJECT_ID")
	}
	if c.AppwriteMedicalBucketID == "" {
		missingEnvs = append(missingEnvs, "APPWRITE_MEDICAL_BUCKET_ID")
	}

	// JWT secret is required
	if c.JWTSecret == "" {
		missingEnvs = append(missingEnvs, "JWT_SECRET")
	}

	// Return error if any required env vars are missing
	if len(missingEnvs) > 0 {
		return fmt.Errorf("missing required environment variables: %s", strings.Join(missingEnvs, ", "))
	}

	// Log warnings for optional configurations
	if c.RedisHost == "" || c.RedisPort == "" {
		log.Println("Warning: Redis configuration is incomplete, session and blog caching will be disabled")
	}

	if c.DBHost == "" || c.DBUser == "" || c.DBName == "" {
		log.Println("Warning: Postgres configuration is incomplete, appointments will be kept in memory")
	}

	if c.FrontendURL == "" {
		log.Println("Warning: FRONTEND_URL is not set, CORS might not be configured correctly")
	}

	if c.GeminiAPIKey == "" {
		log.Println("Warning: GEMINI_API_KEY is not set, chat replies will fail")
	}

	if c.MapsAPIKey == "" {
		log.Println("Warning: GOOGLE_MAPS_API_KEY is not set, location features will be unavailable")
	}

	if c.AppwriteProfileBucketID == "" {
		log.Println("Warning: APPWRITE_PROFILE_BUCKET_ID is not set, profile photos are disabled")
	}

	if c.AppwriteBlogDatabaseID == "" || c.AppwriteBlogCollection == "" {
		log.Println("Warning: blog database/collection ids are not set, blog features are disabled")
	}

	return nil
}

// GetDSN returns the PostgreSQL data source name (connection string)
func (c *Config) GetDSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode)
}

// GetRedisAddr returns the Redis address in the format host:port
func (c *Config) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", c.RedisHost, c.RedisPort)
}

// HasPostgres reports whether enough settings are present to open Postgres.
func (c *Config) HasPostgres() bool {
	return c.DBHost != "" && c.DBUser != "" && c.DBName != ""
}

// HasRedis reports whether Redis caching can be enabled.
func (c *Config) HasRedis() bool {
	return c.RedisHost != "" && c.RedisPort != ""
}

// ProtectedPathList returns the route prefixes guarded by the session cookie.
func (c *Config) ProtectedPathList() []string {
	return splitList(c.ProtectedPaths)
}

// BlogAuthors returns the lower-cased emails allowed to publish blog posts.
func (c *Config) BlogAuthors() []string {
	authors := splitList(c.BlogAuthorEmails)
	for i, a := range authors {
		authors[i] = strings.ToLower(a)
	}
	return authors
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// getEnv retrieves the value of the environment variable named by the key.
// If the variable is not present, the defaultValue is returned.
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvNonEmpty is getEnv, but a blank value also yields defaultValue.
func getEnvNonEmpty(key, defaultValue string) string {
	if value := strings.TrimSpace(getEnv(key, "")); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves the value of the environment variable named by the key as an int.
// If the variable is not present or cannot be converted, the defaultValue is returned.
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsDuration parses values like "90s" or "5m".
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}
