package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/prepdeck/prepdeck-backend/internal/apierr"
	"github.com/prepdeck/prepdeck-backend/internal/logger"
	"github.com/prepdeck/prepdeck-backend/internal/repos"
	"github.com/prepdeck/prepdeck-backend/internal/srs"
	"github.com/prepdeck/prepdeck-backend/internal/types"
)

type FlashcardCreateInput struct {
	Front      string   `json:"front"`
	Back       string   `json:"back"`
	Level      string   `json:"level"`
	Topic      string   `json:"topic"`
	Difficulty string   `json:"difficulty"`
	Tags       []string `json:"tags"`
}

type FlashcardStats struct {
	TotalCards   int64 `json:"total_cards"`
	TotalReviews int64 `json:"total_reviews"`
	DueCards     int   `json:"due_cards"`
}

type FlashcardService interface {
	CreateFlashcard(ctx context.Context, input FlashcardCreateInput) (*types.Flashcard, error)
	GetFlashcards(ctx context.Context, level, topic, difficulty string, limit int) ([]*types.Flashcard, error)
	GetDueFlashcards(ctx context.Context, userID string, limit int) ([]*types.Flashcard, error)
	RecordReview(ctx context.Context, userID string, flashcardID uuid.UUID, quality int) (*types.FlashcardReview, error)
	GetStats(ctx context.Context, userID string) (*FlashcardStats, error)
}

type flashcardService struct {
	db          *gorm.DB
	log         *logger.Logger
	cardRepo    repos.FlashcardRepo
	reviewRepo  repos.FlashcardReviewRepo
	masterySvc  MasteryService
	now         func() time.Time
}

func NewFlashcardService(db *gorm.DB, baseLog *logger.Logger, cardRepo repos.FlashcardRepo, reviewRepo repos.FlashcardReviewRepo, masterySvc MasteryService) FlashcardService {
	return &flashcardService{
		db:         db,
		log:        baseLog.With("service", "FlashcardService"),
		cardRepo:   cardRepo,
		reviewRepo: reviewRepo,
		masterySvc: masterySvc,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

func (s *flashcardService) CreateFlashcard(ctx context.Context, input FlashcardCreateInput) (*types.Flashcard, error) {
	if input.Front == "" || input.Back == "" {
		return nil, apierr.New(http.StatusBadRequest, "invalid_input", fmt.Errorf("front and back are required"))
	}
	if input.Level == "" || input.Topic == "" {
		return nil, apierr.New(http.StatusBadRequest, "invalid_input", fmt.Errorf("level and topic are required"))
	}
	if input.Difficulty == "" {
		input.Difficulty = "medium"
	}

	card := &types.Flashcard{
		Front:      input.Front,
		Back:       input.Back,
		Level:      input.Level,
		Topic:      input.Topic,
		Difficulty: input.Difficulty,
		Tags:       marshalTags(input.Tags),
	}

	created, err := s.cardRepo.Create(ctx, nil, []*types.Flashcard{card})
	if err != nil {
		return nil, fmt.Errorf("create flashcard: %w", err)
	}
	return created[0], nil
}

func (s *flashcardService) GetFlashcards(ctx context.Context, level, topic, difficulty string, limit int) ([]*types.Flashcard, error) {
	if limit <= 0 {
		limit = 50
	}
	return s.cardRepo.List(ctx, nil, level, topic, difficulty, limit)
}

// GetDueFlashcards selects cards that are new or past their next-review
// time. Dueness is recomputed from now on every call; nothing is cached.
func (s *flashcardService) GetDueFlashcards(ctx context.Context, userID string, limit int) ([]*types.Flashcard, error) {
	if limit <= 0 {
		limit = 20
	}

	cards, err := s.cardRepo.ListAll(ctx, nil)
	if err != nil {
		return nil, err
	}
	latest, err := s.reviewRepo.LatestPerCard(ctx, nil, userID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	due := make([]*types.Flashcard, 0, limit)
	for _, card := range cards {
		var nextReview time.Time
		if rev, ok := latest[card.ID]; ok {
			nextReview = rev.NextReview
		}
		if srs.Due(nextReview, now) {
			due = append(due, card)
			if len(due) == limit {
				break
			}
		}
	}
	return due, nil
}

// RecordReview grades one recall and appends the resulting scheduling state
// as a new immutable review row. The append and the mastery update commit
// in one transaction; a failed grade writes nothing.
func (s *flashcardService) RecordReview(ctx context.Context, userID string, flashcardID uuid.UUID, quality int) (*types.FlashcardReview, error) {
	if !srs.ValidQuality(quality) {
		return nil, apierr.New(http.StatusBadRequest, "invalid_input", fmt.Errorf("quality %d out of range [0,5]", quality))
	}

	var review *types.FlashcardReview
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		card, err := s.cardRepo.GetByID(ctx, tx, flashcardID)
		if err != nil {
			return err
		}
		if card == nil {
			return apierr.New(http.StatusNotFound, "not_found", fmt.Errorf("flashcard %s not found", flashcardID))
		}

		var prior *srs.State
		last, err := s.reviewRepo.Latest(ctx, tx, flashcardID, userID)
		if err != nil {
			return err
		}
		if last != nil {
			prior = &srs.State{
				EaseFactor:  last.EaseFactor,
				Interval:    last.Interval,
				Repetitions: last.Repetitions,
				NextReview:  last.NextReview,
				ReviewedAt:  last.ReviewedAt,
			}
		}

		now := s.now()
		state, err := srs.Grade(prior, quality, now)
		if err != nil {
			return apierr.New(http.StatusBadRequest, "invalid_input", err)
		}

		review = &types.FlashcardReview{
			FlashcardID: flashcardID,
			UserID:      userID,
			Quality:     quality,
			EaseFactor:  state.EaseFactor,
			Interval:    state.Interval,
			Repetitions: state.Repetitions,
			NextReview:  state.NextReview,
			ReviewedAt:  now,
		}
		if _, err := s.reviewRepo.Create(ctx, tx, review); err != nil {
			return err
		}

		return s.masterySvc.ApplyFlashcardReview(ctx, tx, userID, card.Level, card.Topic, srs.Mastered(quality), now)
	})
	if err != nil {
		return nil, err
	}
	return review, nil
}

func (s *flashcardService) GetStats(ctx context.Context, userID string) (*FlashcardStats, error) {
	totalCards, err := s.cardRepo.Count(ctx, nil)
	if err != nil {
		return nil, err
	}
	totalReviews, err := s.reviewRepo.CountByUser(ctx, nil, userID)
	if err != nil {
		return nil, err
	}
	due, err := s.GetDueFlashcards(ctx, userID, 1000)
	if err != nil {
		return nil, err
	}

	return &FlashcardStats{
		TotalCards:   totalCards,
		TotalReviews: totalReviews,
		DueCards:     len(due),
	}, nil
}

func marshalTags(tags []string) datatypes.JSON {
	if len(tags) == 0 {
		return nil
	}
	raw, err := json.Marshal(tags)
	if err != nil {
		return nil
	}
	return datatypes.JSON(raw)
}
