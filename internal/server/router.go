package server

import (
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/prepdeck/prepdeck-backend/internal/handlers"
	"github.com/prepdeck/prepdeck-backend/internal/middleware"
)

type RouterConfig struct {
	ServiceName string
	CORSOrigins []string

	UserKeyMiddleware     *middleware.UserKeyMiddleware
	FlashcardHandler      *handlers.FlashcardHandler
	QuizHandler           *handlers.QuizHandler
	ProgressHandler       *handlers.ProgressHandler
	RecommendationHandler *handlers.RecommendationHandler
	GenerateHandler       *handlers.GenerateHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()

	serviceName := strings.TrimSpace(cfg.ServiceName)
	if serviceName == "" {
		serviceName = "prepdeck"
	}
	router.Use(otelgin.Middleware(serviceName))

	origins := cfg.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000", "http://localhost:5173"}
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "X-Requested-With", "X-User-ID"},
		AllowCredentials: true,
	}))

	api := router.Group("/api")
	api.Use(cfg.UserKeyMiddleware.ResolveUser())

	api.GET("/health", handlers.HealthCheck)

	// Flashcards
	api.GET("/flashcards", cfg.FlashcardHandler.GetFlashcards)
	api.POST("/flashcards", cfg.FlashcardHandler.CreateFlashcard)
	api.GET("/flashcards/due", cfg.FlashcardHandler.GetDueFlashcards)
	api.POST("/flashcards/review", cfg.FlashcardHandler.RecordReview)
	api.GET("/flashcards/stats", cfg.FlashcardHandler.GetStats)

	// Quiz
	api.GET("/quiz/questions", cfg.QuizHandler.GetQuestions)
	api.GET("/quiz/random", cfg.QuizHandler.GetRandomQuiz)
	api.POST("/quiz/submit", cfg.QuizHandler.SubmitAnswer)
	api.GET("/quiz/stats", cfg.QuizHandler.GetStats)
	api.GET("/quiz/weak-topics", cfg.QuizHandler.GetWeakTopics)

	// Progress
	api.GET("/progress/overall", cfg.ProgressHandler.GetOverallProgress)
	api.GET("/progress/level/:level", cfg.ProgressHandler.GetProgressByLevel)
	api.GET("/progress/streak", cfg.ProgressHandler.GetStreak)
	api.GET("/progress/activity", cfg.ProgressHandler.GetRecentActivity)
	api.GET("/progress/trends", cfg.ProgressHandler.GetPerformanceTrends)
	api.GET("/progress/recommendations", cfg.RecommendationHandler.GetRecommendations)

	// Study sessions
	api.POST("/study-session/start", cfg.ProgressHandler.StartSession)
	api.POST("/study-session/end", cfg.ProgressHandler.EndSession)

	// Generation
	api.POST("/generate/flashcards", cfg.GenerateHandler.GenerateFlashcards)
	api.POST("/generate/quiz", cfg.GenerateHandler.GenerateQuiz)
	api.POST("/generate/all", cfg.GenerateHandler.GenerateStudySet)

	// Content index
	api.GET("/topics", cfg.RecommendationHandler.GetTopics)

	return router
}
