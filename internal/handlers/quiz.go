package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/prepdeck/prepdeck-backend/internal/logger"
	"github.com/prepdeck/prepdeck-backend/internal/requestdata"
	"github.com/prepdeck/prepdeck-backend/internal/services"
)

type QuizHandler struct {
	log     *logger.Logger
	quizSvc services.QuizService
}

func NewQuizHandler(log *logger.Logger, quizSvc services.QuizService) *QuizHandler {
	return &QuizHandler{
		log:     log.With("handler", "QuizHandler"),
		quizSvc: quizSvc,
	}
}

// GET /api/quiz/questions
func (h *QuizHandler) GetQuestions(c *gin.Context) {
	limit := queryInt(c, "limit", 50)
	questions, err := h.quizSvc.GetQuestions(
		c.Request.Context(),
		c.Query("level"),
		c.Query("topic"),
		c.Query("difficulty"),
		limit,
	)
	if err != nil {
		h.log.Error("GetQuestions failed", "error", err)
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"questions": questions, "count": len(questions)})
}

// GET /api/quiz/random
func (h *QuizHandler) GetRandomQuiz(c *gin.Context) {
	userID := requestdata.UserID(c.Request.Context(), "default")
	count := queryInt(c, "count", 10)
	questions, err := h.quizSvc.GetRandomQuiz(
		c.Request.Context(),
		userID,
		c.Query("level"),
		c.Query("topic"),
		count,
	)
	if err != nil {
		h.log.Error("GetRandomQuiz failed", "error", err, "user_id", userID)
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"questions": questions, "count": len(questions)})
}

// POST /api/quiz/submit
func (h *QuizHandler) SubmitAnswer(c *gin.Context) {
	var body struct {
		QuestionID string `json:"question_id"`
		UserAnswer string `json:"user_answer"`
		TimeTaken  int    `json:"time_taken"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	questionID, err := uuid.Parse(body.QuestionID)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", fmt.Errorf("question_id must be a uuid"))
		return
	}

	userID := requestdata.UserID(c.Request.Context(), "default")
	result, err := h.quizSvc.SubmitAnswer(c.Request.Context(), userID, questionID, body.UserAnswer, body.TimeTaken)
	if err != nil {
		h.log.Error("SubmitAnswer failed", "error", err, "user_id", userID, "question_id", questionID)
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, result)
}

// GET /api/quiz/stats
func (h *QuizHandler) GetStats(c *gin.Context) {
	userID := requestdata.UserID(c.Request.Context(), "default")
	stats, err := h.quizSvc.GetStats(c.Request.Context(), userID, c.Query("level"), c.Query("topic"))
	if err != nil {
		h.log.Error("GetStats failed", "error", err, "user_id", userID)
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, stats)
}

// GET /api/quiz/weak-topics
func (h *QuizHandler) GetWeakTopics(c *gin.Context) {
	userID := requestdata.UserID(c.Request.Context(), "default")
	limit := queryInt(c, "limit", 5)
	weak, err := h.quizSvc.GetWeakTopics(c.Request.Context(), userID, limit)
	if err != nil {
		h.log.Error("GetWeakTopics failed", "error", err, "user_id", userID)
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"weak_topics": weak})
}
