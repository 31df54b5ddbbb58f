package main

import (
	"context"
	"encoding/csv"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/padhai-app/padhai-backend/internal/config"
	"github.com/padhai-app/padhai-backend/internal/models"
	"github.com/padhai-app/padhai-backend/pkg/mongodb"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"
)

// Seeds a database with demo accounts, a sample test, and the content catalog
// from a CSV file:
//
//	go run ./cmd/scripts content.csv
//
// CSV columns: title,subject,class,board,chapter,topic,contentType,storagePath,isPremium
//
// SEED_CLASS, SEED_BOARD and SEED_SAMPLE_TEST control which cohort the demo
// accounts land in and whether the sample test is created.
func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using environment variables")
	}

	mongoURI := config.GetEnv("MONGODB_URI", "mongodb://localhost:27017")
	dbName := config.GetEnv("MONGODB_DATABASE", "padhai")

	client, err := mongodb.NewClient(mongoURI)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer client.Disconnect(context.Background())

	db := client.Database(dbName)

	seedClass := config.GetEnvAsInt("SEED_CLASS", 10)
	seedBoard := config.GetEnv("SEED_BOARD", models.BoardCBSE)

	if err := seedAccounts(db, seedClass, seedBoard); err != nil {
		log.Fatalf("Failed to seed accounts: %v", err)
	}
	if config.GetEnvAsBool("SEED_SAMPLE_TEST", true) {
		if err := seedSampleTest(db, seedClass, seedBoard); err != nil {
			log.Fatalf("Failed to seed sample test: %v", err)
		}
	}

	if len(os.Args) > 1 {
		if err := importContent(db, os.Args[1]); err != nil {
			log.Fatalf("Failed to import content: %v", err)
		}
	}

	log.Println("Demo data seeded successfully")
}

// seedAccounts creates one student per tier plus a teacher account, skipping
// any email that already exists.
func seedAccounts(db *mongo.Database, class int, board string) error {
	users := db.Collection("users")
	now := time.Now()

	hash, err := bcrypt.GenerateFromPassword([]byte(config.GetEnv("SEED_PASSWORD", "padhai123")), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	accounts := []models.User{
		{
			Email: "demo@padhai.app", Name: "Demo Student", Class: class, Board: board,
			Subscription: models.NewDemoSubscription(now),
			Role:         models.RoleStudent,
		},
		{
			Email: "basic@padhai.app", Name: "Basic Student", Class: class, Board: board,
			Subscription: models.Subscription{
				Type: models.TierBasic, StartDate: now, EndDate: now.AddDate(0, 1, 0), IsActive: true,
			},
			Role: models.RoleStudent,
		},
		{
			Email: "premium@padhai.app", Name: "Premium Student", Class: class, Board: board,
			Subscription: models.Subscription{
				Type: models.TierPremium, StartDate: now, EndDate: now.AddDate(1, 0, 0), IsActive: true,
			},
			Role: models.RoleStudent,
		},
		{
			Email: "teacher@padhai.app", Name: "Demo Teacher", Class: 0, Board: board,
			Role: models.RoleTeacher,
		},
	}

	for _, account := range accounts {
		count, err := users.CountDocuments(context.Background(), bson.M{"email": account.Email})
		if err != nil {
			return err
		}
		if count > 0 {
			log.Printf("Account %s already exists, skipping", account.Email)
			continue
		}

		account.Password = string(hash)
		account.Progress = models.Progress{CurrentLevel: 1}
		account.Stats = models.Stats{LastActiveDate: now}
		account.IsVerified = true
		account.CreatedAt = now
		account.UpdatedAt = now

		if _, err := users.InsertOne(context.Background(), account); err != nil {
			return err
		}
		log.Printf("Created account %s", account.Email)
	}
	return nil
}

// seedSampleTest publishes one short test so attempts work out of the box.
func seedSampleTest(db *mongo.Database, class int, board string) error {
	tests := db.Collection("tests")

	count, err := tests.CountDocuments(context.Background(), bson.M{"title": "Sample Mathematics Test"})
	if err != nil {
		return err
	}
	if count > 0 {
		log.Println("Sample test already exists, skipping")
		return nil
	}

	now := time.Now()
	test := models.Test{
		Title:   "Sample Mathematics Test",
		Subject: "Mathematics",
		Class:   class,
		Board:   board,
		Questions: []models.TestQuestion{
			{
				Question:      "What is the value of x in 2x + 6 = 10?",
				Options:       []string{"1", "2", "3", "4"},
				CorrectOption: 1,
				Marks:         2,
			},
			{
				Question:      "The sum of the angles of a triangle is:",
				Options:       []string{"90 degrees", "180 degrees", "270 degrees", "360 degrees"},
				CorrectOption: 1,
				Marks:         2,
			},
			{
				Question:      "Which of these is a prime number?",
				Options:       []string{"21", "27", "29", "33"},
				CorrectOption: 2,
				Marks:         1,
			},
		},
		Duration:    15,
		IsPublished: true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if _, err := tests.InsertOne(context.Background(), test); err != nil {
		return err
	}
	log.Println("Created sample test")
	return nil
}

// importContent loads the content catalog from a CSV file.
func importContent(db *mongo.Database, csvFilePath string) error {
	file, err := os.Open(csvFilePath)
	if err != nil {
		return fmt.Errorf("failed to open CSV file: %v", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	records, err := reader.ReadAll()
	if err != nil {
		return fmt.Errorf("failed to parse CSV file: %v", err)
	}

	if len(records) < 2 {
		return fmt.Errorf("CSV file is empty or has only header")
	}

	contents := db.Collection("contents")

	for i, record := range records {
		// Skip header
		if i == 0 {
			continue
		}

		if len(record) < 9 {
			log.Printf("Warning: Record %d has less than 9 fields, skipping", i)
			continue
		}

		class, err := strconv.Atoi(record[2])
		if err != nil || class < 1 || class > 12 {
			log.Printf("Warning: Record %d has invalid class, skipping", i)
			continue
		}
		isPremium, err := strconv.ParseBool(record[8])
		if err != nil {
			log.Printf("Warning: Record %d has invalid isPremium flag, skipping", i)
			continue
		}

		now := time.Now()
		content := models.Content{
			Title:       record[0],
			Subject:     record[1],
			Class:       class,
			Board:       record[3],
			Chapter:     record[4],
			Topic:       record[5],
			ContentType: record[6],
			StoragePath: record[7],
			IsPremium:   isPremium,
			CreatedAt:   now,
			UpdatedAt:   now,
		}

		if _, err := contents.InsertOne(context.Background(), content); err != nil {
			log.Printf("Warning: Failed to insert content for record %d: %v", i, err)
			continue
		}
	}

	return nil
}
