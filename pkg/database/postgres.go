package database

import (
	"log"

	"github.com/voluntra/signup-service/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func NewPostgresDB(dsn string) *gorm.DB {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
	})
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(
		&models.Event{},
		&models.TimeSlot{},
		&models.SlotCategory{},
		&models.Registration{},
		&models.Credential{},
		&models.BannedVolunteer{},
		&models.RemovedVolunteer{},
		&models.EventOrganizer{},
	); err != nil {
		log.Fatalf("failed to auto-migrate: %v", err)
	}

	// Unique index: one registration per (event, volunteer). Backstops the
	// duplicate check in the registration service under concurrent requests.
	db.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS idx_registration_pair
		ON registrations (event_id, volunteer_id)
	`)

	return db
}
