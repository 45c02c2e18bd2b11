package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/prepdeck/prepdeck-backend/internal/logger"
	"github.com/prepdeck/prepdeck-backend/internal/requestdata"
	"github.com/prepdeck/prepdeck-backend/internal/services"
)

type FlashcardHandler struct {
	log          *logger.Logger
	flashcardSvc services.FlashcardService
}

func NewFlashcardHandler(log *logger.Logger, flashcardSvc services.FlashcardService) *FlashcardHandler {
	return &FlashcardHandler{
		log:          log.With("handler", "FlashcardHandler"),
		flashcardSvc: flashcardSvc,
	}
}

// GET /api/flashcards
func (h *FlashcardHandler) GetFlashcards(c *gin.Context) {
	limit := queryInt(c, "limit", 50)
	cards, err := h.flashcardSvc.GetFlashcards(
		c.Request.Context(),
		c.Query("level"),
		c.Query("topic"),
		c.Query("difficulty"),
		limit,
	)
	if err != nil {
		h.log.Error("GetFlashcards failed", "error", err)
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"flashcards": cards, "count": len(cards)})
}

// POST /api/flashcards
func (h *FlashcardHandler) CreateFlashcard(c *gin.Context) {
	var input services.FlashcardCreateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	card, err := h.flashcardSvc.CreateFlashcard(c.Request.Context(), input)
	if err != nil {
		h.log.Error("CreateFlashcard failed", "error", err)
		RespondServiceError(c, err)
		return
	}
	RespondCreated(c, card)
}

// GET /api/flashcards/due
func (h *FlashcardHandler) GetDueFlashcards(c *gin.Context) {
	userID := requestdata.UserID(c.Request.Context(), "default")
	limit := queryInt(c, "limit", 20)
	cards, err := h.flashcardSvc.GetDueFlashcards(c.Request.Context(), userID, limit)
	if err != nil {
		h.log.Error("GetDueFlashcards failed", "error", err, "user_id", userID)
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"flashcards": cards, "count": len(cards)})
}

// POST /api/flashcards/review
func (h *FlashcardHandler) RecordReview(c *gin.Context) {
	var body struct {
		FlashcardID string `json:"flashcard_id"`
		Quality     int    `json:"quality"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	cardID, err := uuid.Parse(body.FlashcardID)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", fmt.Errorf("flashcard_id must be a uuid"))
		return
	}

	userID := requestdata.UserID(c.Request.Context(), "default")
	review, err := h.flashcardSvc.RecordReview(c.Request.Context(), userID, cardID, body.Quality)
	if err != nil {
		h.log.Error("RecordReview failed", "error", err, "user_id", userID, "flashcard_id", cardID)
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, review)
}

// GET /api/flashcards/stats
func (h *FlashcardHandler) GetStats(c *gin.Context) {
	userID := requestdata.UserID(c.Request.Context(), "default")
	stats, err := h.flashcardSvc.GetStats(c.Request.Context(), userID)
	if err != nil {
		h.log.Error("GetStats failed", "error", err, "user_id", userID)
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, stats)
}

func queryInt(c *gin.Context, key string, fallback int) int {
	raw := c.Query(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}
