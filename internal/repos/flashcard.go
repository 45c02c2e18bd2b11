package repos

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/prepdeck/prepdeck-backend/internal/logger"
	"github.com/prepdeck/prepdeck-backend/internal/types"
)

// LevelTopic is a distinct (level, topic) pair present in stored content.
type LevelTopic struct {
	Level string
	Topic string
}

type FlashcardRepo interface {
	Create(ctx context.Context, tx *gorm.DB, cards []*types.Flashcard) ([]*types.Flashcard, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Flashcard, error)
	List(ctx context.Context, tx *gorm.DB, level, topic, difficulty string, limit int) ([]*types.Flashcard, error)
	ListAll(ctx context.Context, tx *gorm.DB) ([]*types.Flashcard, error)
	Count(ctx context.Context, tx *gorm.DB) (int64, error)
	DistinctLevelTopics(ctx context.Context, tx *gorm.DB) ([]LevelTopic, error)
}

type flashcardRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewFlashcardRepo(db *gorm.DB, baseLog *logger.Logger) FlashcardRepo {
	repoLog := baseLog.With("repo", "FlashcardRepo")
	return &flashcardRepo{db: db, log: repoLog}
}

func (r *flashcardRepo) Create(ctx context.Context, tx *gorm.DB, cards []*types.Flashcard) ([]*types.Flashcard, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(cards) == 0 {
		return []*types.Flashcard{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&cards).Error; err != nil {
		return nil, err
	}
	return cards, nil
}

func (r *flashcardRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Flashcard, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var card types.Flashcard
	if err := transaction.WithContext(ctx).
		Where("id = ?", id).
		First(&card).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &card, nil
}

func (r *flashcardRepo) List(ctx context.Context, tx *gorm.DB, level, topic, difficulty string, limit int) ([]*types.Flashcard, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	q := transaction.WithContext(ctx).Model(&types.Flashcard{})
	if level != "" {
		q = q.Where("level = ?", level)
	}
	if topic != "" {
		q = q.Where("topic = ?", topic)
	}
	if difficulty != "" {
		q = q.Where("difficulty = ?", difficulty)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}

	var results []*types.Flashcard
	if err := q.Order("created_at DESC").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *flashcardRepo) ListAll(ctx context.Context, tx *gorm.DB) ([]*types.Flashcard, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Flashcard
	if err := transaction.WithContext(ctx).
		Order("created_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *flashcardRepo) Count(ctx context.Context, tx *gorm.DB) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var n int64
	if err := transaction.WithContext(ctx).
		Model(&types.Flashcard{}).
		Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

func (r *flashcardRepo) DistinctLevelTopics(ctx context.Context, tx *gorm.DB) ([]LevelTopic, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []LevelTopic
	if err := transaction.WithContext(ctx).
		Model(&types.Flashcard{}).
		Distinct("level", "topic").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
