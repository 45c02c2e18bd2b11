package repos

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/prepdeck/prepdeck-backend/internal/logger"
	"github.com/prepdeck/prepdeck-backend/internal/types"
)

type FlashcardReviewRepo interface {
	Create(ctx context.Context, tx *gorm.DB, review *types.FlashcardReview) (*types.FlashcardReview, error)
	Latest(ctx context.Context, tx *gorm.DB, flashcardID uuid.UUID, userID string) (*types.FlashcardReview, error)
	LatestPerCard(ctx context.Context, tx *gorm.DB, userID string) (map[uuid.UUID]*types.FlashcardReview, error)
	CountByUser(ctx context.Context, tx *gorm.DB, userID string) (int64, error)
}

type flashcardReviewRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewFlashcardReviewRepo(db *gorm.DB, baseLog *logger.Logger) FlashcardReviewRepo {
	repoLog := baseLog.With("repo", "FlashcardReviewRepo")
	return &flashcardReviewRepo{db: db, log: repoLog}
}

func (r *flashcardReviewRepo) Create(ctx context.Context, tx *gorm.DB, review *types.FlashcardReview) (*types.FlashcardReview, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if err := transaction.WithContext(ctx).Create(review).Error; err != nil {
		return nil, err
	}
	return review, nil
}

func (r *flashcardReviewRepo) Latest(ctx context.Context, tx *gorm.DB, flashcardID uuid.UUID, userID string) (*types.FlashcardReview, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var review types.FlashcardReview
	if err := transaction.WithContext(ctx).
		Where("flashcard_id = ? AND user_id = ?", flashcardID, userID).
		Order("reviewed_at DESC").
		First(&review).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &review, nil
}

// LatestPerCard folds the full review history into the newest review per
// card. Histories are per-user and small, so the reduce happens in memory
// rather than in a correlated subquery.
func (r *flashcardReviewRepo) LatestPerCard(ctx context.Context, tx *gorm.DB, userID string) (map[uuid.UUID]*types.FlashcardReview, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var reviews []*types.FlashcardReview
	if err := transaction.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("reviewed_at ASC").
		Find(&reviews).Error; err != nil {
		return nil, err
	}

	latest := make(map[uuid.UUID]*types.FlashcardReview, len(reviews))
	for _, rev := range reviews {
		latest[rev.FlashcardID] = rev
	}
	return latest, nil
}

func (r *flashcardReviewRepo) CountByUser(ctx context.Context, tx *gorm.DB, userID string) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var n int64
	if err := transaction.WithContext(ctx).
		Model(&types.FlashcardReview{}).
		Where("user_id = ?", userID).
		Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}
