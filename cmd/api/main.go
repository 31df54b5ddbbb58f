package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/padhai-app/padhai-backend/api/routes"
	"github.com/padhai-app/padhai-backend/internal/config"
	"github.com/padhai-app/padhai-backend/internal/handlers"
	"github.com/padhai-app/padhai-backend/internal/models"
	"github.com/padhai-app/padhai-backend/internal/policy"
	"github.com/padhai-app/padhai-backend/internal/repositories"
	mongorepo "github.com/padhai-app/padhai-backend/internal/repositories/mongodb"
	"github.com/padhai-app/padhai-backend/internal/services"
	"github.com/padhai-app/padhai-backend/pkg/mongodb"
	"github.com/padhai-app/padhai-backend/pkg/smsgateway"
	"github.com/padhai-app/padhai-backend/pkg/ttlstore"
)

func main() {
	// Load .env file if present; real deployments set the environment directly
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Connect to MongoDB
	mongoClient, err := mongodb.NewClient(cfg.MongoDB.URI)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer func() {
		if err := mongoClient.Disconnect(context.Background()); err != nil {
			log.Printf("Error disconnecting from MongoDB: %v", err)
		}
	}()

	db := mongoClient.Database(cfg.MongoDB.Database)

	// Initialize repositories
	var userRepo repositories.UserRepository = mongorepo.NewUserRepository(db)
	var doubtRepo repositories.DoubtRepository = mongorepo.NewDoubtRepository(db)
	var contentRepo repositories.ContentRepository = mongorepo.NewContentRepository(db)
	var testRepo repositories.TestRepository = mongorepo.NewTestRepository(db)
	var xpRepo repositories.XPTransactionRepository = mongorepo.NewXPTransactionRepository(db)

	quotaRepo := mongorepo.NewDoubtQuotaRepository(db)
	{
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := quotaRepo.EnsureIndexes(ctx); err != nil {
			cancel()
			log.Fatalf("Failed to create quota indexes: %v", err)
		}
		cancel()
	}

	// The day boundary for quotas and streaks
	loc := time.Local
	if cfg.Quota.Timezone != "" && cfg.Quota.Timezone != "Local" {
		loc, err = time.LoadLocation(cfg.Quota.Timezone)
		if err != nil {
			log.Fatalf("Invalid Quota.Timezone %q: %v", cfg.Quota.Timezone, err)
		}
	}

	// Short-lived token storage for the OTP login flow
	otpStore := ttlstore.NewMemoryStore(time.Minute)
	defer otpStore.Close()

	var sms smsgateway.Gateway
	if cfg.SMS.MockSMSGateway {
		sms = smsgateway.NewMockGateway()
	} else {
		sms = smsgateway.NewHTTPGateway(cfg.SMS.BaseURL, cfg.SMS.APIKey)
	}

	// Initialize services
	progressionService := services.NewProgressionService(userRepo, xpRepo)
	authService := services.NewAuthService(userRepo, otpStore, sms, cfg)
	aiService := services.NewAIService(cfg)
	doubtService := services.NewDoubtService(doubtRepo, quotaRepo, userRepo, progressionService, aiService, loc)
	contentService := services.NewContentService(contentRepo, userRepo, progressionService, cfg.CDN.BaseURL)
	testService := services.NewTestService(testRepo, userRepo, progressionService)
	userService := services.NewUserService(userRepo, doubtRepo, testRepo)

	// The access gate runs the subscription, quota and tier checks in front
	// of every protected route
	quotas := policy.QuotaTable{
		models.TierDemo:    cfg.Quota.DemoDaily,
		models.TierBasic:   cfg.Quota.BasicDaily,
		models.TierPremium: cfg.Quota.PremiumDaily,
	}
	gate := policy.NewGate(userRepo, quotaRepo, progressionService, quotas, loc)

	// Initialize handlers
	handlerDeps := &routes.HandlerDependencies{
		AuthHandler:    handlers.NewAuthHandler(authService),
		UserHandler:    handlers.NewUserHandler(userService, progressionService),
		DoubtHandler:   handlers.NewDoubtHandler(doubtService),
		ContentHandler: handlers.NewContentHandler(contentService),
		TestHandler:    handlers.NewTestHandler(testService),
		AIHandler:      handlers.NewAIHandler(aiService, progressionService),
		Gate:           gate,
	}

	router := routes.SetupRouter(cfg, handlerDeps)

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	log.Printf("Server starting on port %s", cfg.Server.Port)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown: ", err)
	}

	log.Println("Server exiting")
}
