package services

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/prepdeck/prepdeck-backend/internal/logger"
	"github.com/prepdeck/prepdeck-backend/internal/repos"
	"github.com/prepdeck/prepdeck-backend/internal/types"
)

// WeakTopicAccuracyThreshold is the quiz accuracy below which a topic is
// considered weak for recommendations.
const WeakTopicAccuracyThreshold = 70.0

// MasteryService is the only writer of TopicProgress. Both the flashcard
// and quiz paths funnel through it so the shared record is never updated
// from two independent code paths inside one request.
type MasteryService interface {
	ApplyFlashcardReview(ctx context.Context, tx *gorm.DB, userID, level, topic string, mastered bool, now time.Time) error
	ApplyQuizAttempt(ctx context.Context, tx *gorm.DB, userID, level, topic string, now time.Time) error
	AddStudyTime(ctx context.Context, tx *gorm.DB, userID, level, topic string, minutes int, now time.Time) error
}

type masteryService struct {
	db           *gorm.DB
	log          *logger.Logger
	progressRepo repos.TopicProgressRepo
	attemptRepo  repos.QuizAttemptRepo
}

func NewMasteryService(db *gorm.DB, baseLog *logger.Logger, progressRepo repos.TopicProgressRepo, attemptRepo repos.QuizAttemptRepo) MasteryService {
	return &masteryService{
		db:           db,
		log:          baseLog.With("service", "MasteryService"),
		progressRepo: progressRepo,
		attemptRepo:  attemptRepo,
	}
}

// ApplyFlashcardReview creates the topic record on first contact
// (cards_total starts at 1) and afterwards only bumps cards_mastered on
// mastered reviews. cards_total deliberately stays at its first-seen count
// on repeat reviews; changing that would shift every mastery ratio already
// stored.
func (s *masteryService) ApplyFlashcardReview(ctx context.Context, tx *gorm.DB, userID, level, topic string, mastered bool, now time.Time) error {
	progress, err := s.progressRepo.Get(ctx, tx, userID, level, topic)
	if err != nil {
		return err
	}

	if progress == nil {
		mastered0 := 0
		if mastered {
			mastered0 = 1
		}
		progress = &types.TopicProgress{
			UserID:        userID,
			Level:         level,
			Topic:         topic,
			CardsTotal:    1,
			CardsMastered: mastered0,
			LastStudied:   &now,
		}
		_, err = s.progressRepo.Create(ctx, tx, progress)
		return err
	}

	if mastered {
		progress.CardsMastered++
	}
	progress.LastStudied = &now
	return s.progressRepo.Save(ctx, tx, progress)
}

// ApplyQuizAttempt recomputes topic accuracy from the full attempt ledger
// rather than keeping a running average, so the stored figure always
// matches a fresh recount.
func (s *masteryService) ApplyQuizAttempt(ctx context.Context, tx *gorm.DB, userID, level, topic string, now time.Time) error {
	progress, err := s.progressRepo.Get(ctx, tx, userID, level, topic)
	if err != nil {
		return err
	}

	if progress == nil {
		progress = &types.TopicProgress{
			UserID: userID,
			Level:  level,
			Topic:  topic,
		}
		if progress, err = s.progressRepo.Create(ctx, tx, progress); err != nil {
			return err
		}
	}

	total, correct, err := s.attemptRepo.CountFiltered(ctx, tx, userID, level, topic)
	if err != nil {
		return err
	}
	if total > 0 {
		progress.QuizAccuracy = float64(correct) / float64(total) * 100
	}
	progress.LastStudied = &now
	return s.progressRepo.Save(ctx, tx, progress)
}

// AddStudyTime folds a closed session's duration into the topic record.
// Time on a topic with no record yet is dropped, matching the session
// accounting the analytics views were built against.
func (s *masteryService) AddStudyTime(ctx context.Context, tx *gorm.DB, userID, level, topic string, minutes int, now time.Time) error {
	progress, err := s.progressRepo.Get(ctx, tx, userID, level, topic)
	if err != nil {
		return err
	}
	if progress == nil {
		return nil
	}

	progress.TotalTimeMins += minutes
	return s.progressRepo.Save(ctx, tx, progress)
}
