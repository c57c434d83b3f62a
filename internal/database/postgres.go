package database

import (
	"log"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/imcalledaditi/MomCare-AI-Assistant/internal/config"
	"github.com/imcalledaditi/MomCare-AI-Assistant/internal/models"
)

// InitDB opens the Postgres connection used for appointments. It returns nil
// when Postgres is not configured or unreachable; callers fall back to memory.
func InitDB(config *config.Config) *gorm.DB {
	if !config.HasPostgres() {
		log.Println("⚠️  Postgres is not configured, appointments will be kept in memory")
		return nil
	}

	db, err := gorm.Open(postgres.Open(config.GetDSN()), &gorm.Config{})
	if err != nil {
		log.Printf("⚠️  Warning: Failed to connect to database: %v", err)
		log.Println("⚠️  Appointments will be kept in memory")
		return nil
	}

	// auto migrate schema
	if err := db.AutoMigrate(&models.Appointment{}); err != nil {
		log.Printf("❌ Failed to migrate appointments table: %v", err)
		return nil
	}

	log.Println("✅ Successfully connected to Postgres")
	return db
}
