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

type ProgressHandler struct {
	log         *logger.Logger
	progressSvc services.ProgressService
}

func NewProgressHandler(log *logger.Logger, progressSvc services.ProgressService) *ProgressHandler {
	return &ProgressHandler{
		log:         log.With("handler", "ProgressHandler"),
		progressSvc: progressSvc,
	}
}

// GET /api/progress/overall
func (h *ProgressHandler) GetOverallProgress(c *gin.Context) {
	userID := requestdata.UserID(c.Request.Context(), "default")
	overall, err := h.progressSvc.GetOverallProgress(c.Request.Context(), userID)
	if err != nil {
		h.log.Error("GetOverallProgress failed", "error", err, "user_id", userID)
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, overall)
}

// GET /api/progress/level/:level
func (h *ProgressHandler) GetProgressByLevel(c *gin.Context) {
	userID := requestdata.UserID(c.Request.Context(), "default")
	level := c.Param("level")
	topics, err := h.progressSvc.GetProgressByLevel(c.Request.Context(), userID, level)
	if err != nil {
		h.log.Error("GetProgressByLevel failed", "error", err, "user_id", userID, "level", level)
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"level": level, "topics": topics})
}

// GET /api/progress/streak
func (h *ProgressHandler) GetStreak(c *gin.Context) {
	userID := requestdata.UserID(c.Request.Context(), "default")
	streak, err := h.progressSvc.GetStreak(c.Request.Context(), userID)
	if err != nil {
		h.log.Error("GetStreak failed", "error", err, "user_id", userID)
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, streak)
}

// GET /api/progress/activity
func (h *ProgressHandler) GetRecentActivity(c *gin.Context) {
	userID := requestdata.UserID(c.Request.Context(), "default")
	days := queryInt(c, "days", 7)
	activity, err := h.progressSvc.GetRecentActivity(c.Request.Context(), userID, days)
	if err != nil {
		h.log.Error("GetRecentActivity failed", "error", err, "user_id", userID)
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"days": days, "sessions": activity})
}

// GET /api/progress/trends
func (h *ProgressHandler) GetPerformanceTrends(c *gin.Context) {
	userID := requestdata.UserID(c.Request.Context(), "default")
	days := queryInt(c, "days", 30)
	trends, err := h.progressSvc.GetPerformanceTrends(c.Request.Context(), userID, days)
	if err != nil {
		h.log.Error("GetPerformanceTrends failed", "error", err, "user_id", userID)
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, trends)
}

// POST /api/study-session/start
func (h *ProgressHandler) StartSession(c *gin.Context) {
	var body struct {
		SessionType string `json:"session_type"`
		Level       string `json:"level"`
		Topic       string `json:"topic"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}

	userID := requestdata.UserID(c.Request.Context(), "default")
	session, err := h.progressSvc.StartSession(c.Request.Context(), userID, body.SessionType, body.Level, body.Topic)
	if err != nil {
		h.log.Error("StartSession failed", "error", err, "user_id", userID)
		RespondServiceError(c, err)
		return
	}
	RespondCreated(c, session)
}

// POST /api/study-session/end
func (h *ProgressHandler) EndSession(c *gin.Context) {
	var body struct {
		SessionID         string `json:"session_id"`
		CardsReviewed     int    `json:"cards_reviewed"`
		QuestionsAnswered int    `json:"questions_answered"`
		CorrectAnswers    int    `json:"correct_answers"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	sessionID, err := uuid.Parse(body.SessionID)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", fmt.Errorf("session_id must be a uuid"))
		return
	}

	userID := requestdata.UserID(c.Request.Context(), "default")
	session, err := h.progressSvc.EndSession(c.Request.Context(), userID, sessionID, body.CardsReviewed, body.QuestionsAnswered, body.CorrectAnswers)
	if err != nil {
		h.log.Error("EndSession failed", "error", err, "user_id", userID, "session_id", sessionID)
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, session)
}
