package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/prepdeck/prepdeck-backend/internal/logger"
	"github.com/prepdeck/prepdeck-backend/internal/services"
)

type GenerateHandler struct {
	log           *logger.Logger
	generationSvc services.GenerationService
}

func NewGenerateHandler(log *logger.Logger, generationSvc services.GenerationService) *GenerateHandler {
	return &GenerateHandler{
		log:           log.With("handler", "GenerateHandler"),
		generationSvc: generationSvc,
	}
}

type generateRequest struct {
	Content string `json:"content"`
	Topic   string `json:"topic"`
	Level   string `json:"level"`
	Count   int    `json:"count"`
}

// POST /api/generate/flashcards
func (h *GenerateHandler) GenerateFlashcards(c *gin.Context) {
	var body generateRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	cards, err := h.generationSvc.GenerateFlashcards(c.Request.Context(), body.Content, body.Topic, body.Level, body.Count)
	if err != nil {
		h.log.Error("GenerateFlashcards failed", "error", err, "topic", body.Topic)
		RespondServiceError(c, err)
		return
	}
	RespondCreated(c, gin.H{"flashcards": cards, "count": len(cards)})
}

// POST /api/generate/quiz
func (h *GenerateHandler) GenerateQuiz(c *gin.Context) {
	var body generateRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	questions, err := h.generationSvc.GenerateQuiz(c.Request.Context(), body.Content, body.Topic, body.Level, body.Count)
	if err != nil {
		h.log.Error("GenerateQuiz failed", "error", err, "topic", body.Topic)
		RespondServiceError(c, err)
		return
	}
	RespondCreated(c, gin.H{"questions": questions, "count": len(questions)})
}

// POST /api/generate/all
func (h *GenerateHandler) GenerateStudySet(c *gin.Context) {
	var body struct {
		Content        string `json:"content"`
		Topic          string `json:"topic"`
		Level          string `json:"level"`
		FlashcardCount int    `json:"flashcard_count"`
		QuestionCount  int    `json:"question_count"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	set, err := h.generationSvc.GenerateStudySet(c.Request.Context(), body.Content, body.Topic, body.Level, body.FlashcardCount, body.QuestionCount)
	if err != nil {
		h.log.Error("GenerateStudySet failed", "error", err, "topic", body.Topic)
		RespondServiceError(c, err)
		return
	}
	RespondCreated(c, set)
}
