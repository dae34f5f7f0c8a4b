package main

import (
	"log"
	"os"

	"support-chat-be/internal/model"
	"support-chat-be/pkg/database"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Seeds the staff directory customers open conversations against. Idempotent:
// rows are matched on email and left alone when present.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Info: No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	db, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	seedUsers(db)
	log.Println("✅ Success: Seed completed.")
}

func seedUsers(db *gorm.DB) {
	users := []model.User{
		{
			Id:       uuid.New(),
			Email:    "support@example.com",
			FullName: "Support Team",
			Role:     "staff",
			Status:   "active",
		},
		{
			Id:       uuid.New(),
			Email:    "sales@example.com",
			FullName: "Sales Team",
			Role:     "staff",
			Status:   "active",
		},
		{
			Id:       uuid.New(),
			Email:    "admin@example.com",
			FullName: "Administrator",
			Role:     "admin",
			Status:   "active",
		},
		{
			Id:       uuid.New(),
			Email:    "demo@example.com",
			FullName: "Demo Customer",
			Role:     "user",
			Status:   "active",
		},
	}

	for _, user := range users {
		err := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "email"}},
			DoNothing: true,
		}).Create(&user).Error
		if err != nil {
			log.Printf("Warn: Failed to seed user %s: %v", user.Email, err)
			continue
		}
		log.Printf("Seeded user: %s (%s)", user.Email, user.Role)
	}
}
