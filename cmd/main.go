package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/prepdeck/prepdeck-backend/internal/db"
	"github.com/prepdeck/prepdeck-backend/internal/handlers"
	"github.com/prepdeck/prepdeck-backend/internal/logger"
	"github.com/prepdeck/prepdeck-backend/internal/middleware"
	"github.com/prepdeck/prepdeck-backend/internal/observability"
	"github.com/prepdeck/prepdeck-backend/internal/repos"
	"github.com/prepdeck/prepdeck-backend/internal/seed"
	"github.com/prepdeck/prepdeck-backend/internal/server"
	"github.com/prepdeck/prepdeck-backend/internal/services"
	"github.com/prepdeck/prepdeck-backend/internal/utils"
)

func main() {
	// Logger
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Tracing
	shutdownTracing := observability.InitOTel(context.Background(), log, observability.OtelConfig{
		ServiceName: "prepdeck-backend",
		Environment: utils.GetEnv("APP_ENV", "development", log),
		Version:     utils.GetEnv("APP_VERSION", "dev", log),
	})
	if shutdownTracing != nil {
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdownTracing(ctx); err != nil {
				log.Warn("Tracing shutdown failed", "error", err)
			}
		}()
	}

	// Database
	dbService, err := db.NewDBService(log)
	if err != nil {
		log.Error("Database init failed", "error", err)
		os.Exit(1)
	}
	if err = dbService.AutoMigrateAll(); err != nil {
		log.Error("Auto migration failed", "error", err)
		os.Exit(1)
	}
	theDB := dbService.DB()

	// Repos
	log.Info("Setting up Repos from main...")
	flashcardRepo := repos.NewFlashcardRepo(theDB, log)
	reviewRepo := repos.NewFlashcardReviewRepo(theDB, log)
	questionRepo := repos.NewQuizQuestionRepo(theDB, log)
	attemptRepo := repos.NewQuizAttemptRepo(theDB, log)
	sessionRepo := repos.NewStudySessionRepo(theDB, log)
	progressRepo := repos.NewTopicProgressRepo(theDB, log)

	// Seed
	importer := seed.NewImporter(theDB, log, flashcardRepo, questionRepo)
	if err := importer.ImportFromEnv(context.Background()); err != nil {
		log.Warn("Seed import failed", "error", err)
	}

	// Services
	log.Info("Setting up Services from main...")
	masteryService := services.NewMasteryService(theDB, log, progressRepo, attemptRepo)
	flashcardService := services.NewFlashcardService(theDB, log, flashcardRepo, reviewRepo, masteryService)
	quizService := services.NewQuizService(theDB, log, questionRepo, attemptRepo, progressRepo, masteryService, nil)
	progressService := services.NewProgressService(theDB, log, sessionRepo, progressRepo, attemptRepo, masteryService)
	recommendationService := services.NewRecommendationService(theDB, log, progressRepo, flashcardRepo, questionRepo, flashcardService)

	var generationService services.GenerationService
	openaiClient, err := services.NewOpenAIClient(log)
	if err != nil {
		log.Warn("Could not init OpenAIClient, generation endpoints disabled", "error", err)
	}
	generationService = services.NewGenerationService(theDB, log, flashcardRepo, questionRepo, openaiClient)

	// Handlers
	log.Info("Setting up handlers from main...")
	flashcardHandler := handlers.NewFlashcardHandler(log, flashcardService)
	quizHandler := handlers.NewQuizHandler(log, quizService)
	progressHandler := handlers.NewProgressHandler(log, progressService)
	recommendationHandler := handlers.NewRecommendationHandler(log, recommendationService)
	generateHandler := handlers.NewGenerateHandler(log, generationService)

	// Middleware
	log.Info("Setting up middleware from main...")
	userKeyMiddleware := middleware.NewUserKeyMiddleware(log)

	// Router
	log.Info("Setting up router from main...")
	corsOrigins := strings.Split(utils.GetEnv("CORS_ORIGINS", "http://localhost:3000,http://localhost:5173", log), ",")
	for i := range corsOrigins {
		corsOrigins[i] = strings.TrimSpace(corsOrigins[i])
	}
	router := server.NewRouter(server.RouterConfig{
		ServiceName:           "prepdeck-backend",
		CORSOrigins:           corsOrigins,
		UserKeyMiddleware:     userKeyMiddleware,
		FlashcardHandler:      flashcardHandler,
		QuizHandler:           quizHandler,
		ProgressHandler:       progressHandler,
		RecommendationHandler: recommendationHandler,
		GenerateHandler:       generateHandler,
	})

	port := utils.GetEnv("PORT", "8080", log)
	fmt.Printf("Server listening on :%s\n", port)
	if err := router.Run(":" + port); err != nil {
		log.Error("Server failed", "error", err)
		os.Exit(1)
	}
}
