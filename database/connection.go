package database

import (
	"fmt"
	"log"
	"os"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/bluebook-nepal/bluebook-backend/internal/models"
)

var DB *gorm.DB

func Connect() {
	var err error

	// Get environment variables
	dbUser := os.Getenv("DB_USER")
	if dbUser == "" {
		dbUser = "postgres"
	}

	dbPass := os.Getenv("DB_PASS")
	dbName := os.Getenv("DB_NAME")
	if dbName == "" {
		dbName = "bluebook"
	}

	dbHost := os.Getenv("DB_HOST")
	if dbHost == "" {
		dbHost = "localhost"
	}

	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=5432 sslmode=disable",
		dbHost, dbUser, dbPass, dbName)
	log.Printf("Connecting to PostgreSQL at %s", dbHost)

	// TranslateError maps driver unique violations to gorm.ErrDuplicatedKey,
	// which the store relies on for the duplicate-intent guard.
	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		log.Printf("Failed to connect to database: %v", err)
		panic(err)
	}

	log.Println("✅ Database connected successfully!")
}

// Migrate runs schema migrations and creates the constraints the store's
// atomic operations depend on.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.Vehicle{},
		&models.TaxAssessment{},
		&models.PaymentIntent{},
	)
	if err != nil {
		return err
	}

	// At most one non-terminal intent per (user, vehicle). The partial
	// unique index closes the check-then-create race between interleaved
	// payment requests.
	return db.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS idx_payment_intents_active
		ON payment_intents (user_id, vehicle_id)
		WHERE payment_status IN ('pending', 'confirmed') AND deleted_at IS NULL`).Error
}
