package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/prepdeck/prepdeck-backend/internal/logger"
	"github.com/prepdeck/prepdeck-backend/internal/requestdata"
	"github.com/prepdeck/prepdeck-backend/internal/services"
)

type RecommendationHandler struct {
	log               *logger.Logger
	recommendationSvc services.RecommendationService
}

func NewRecommendationHandler(log *logger.Logger, recommendationSvc services.RecommendationService) *RecommendationHandler {
	return &RecommendationHandler{
		log:               log.With("handler", "RecommendationHandler"),
		recommendationSvc: recommendationSvc,
	}
}

// GET /api/progress/recommendations
func (h *RecommendationHandler) GetRecommendations(c *gin.Context) {
	userID := requestdata.UserID(c.Request.Context(), "default")
	recs, err := h.recommendationSvc.GetRecommendations(c.Request.Context(), userID)
	if err != nil {
		h.log.Error("GetRecommendations failed", "error", err, "user_id", userID)
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, recs)
}

// GET /api/topics
func (h *RecommendationHandler) GetTopics(c *gin.Context) {
	index, err := h.recommendationSvc.GetTopicIndex(c.Request.Context())
	if err != nil {
		h.log.Error("GetTopics failed", "error", err)
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"topics": index})
}
