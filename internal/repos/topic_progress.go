package repos

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/prepdeck/prepdeck-backend/internal/logger"
	"github.com/prepdeck/prepdeck-backend/internal/types"
)

type TopicProgressRepo interface {
	Get(ctx context.Context, tx *gorm.DB, userID, level, topic string) (*types.TopicProgress, error)
	Create(ctx context.Context, tx *gorm.DB, progress *types.TopicProgress) (*types.TopicProgress, error)
	Save(ctx context.Context, tx *gorm.DB, progress *types.TopicProgress) error
	ListByUser(ctx context.Context, tx *gorm.DB, userID string) ([]*types.TopicProgress, error)
	ListByUserLevel(ctx context.Context, tx *gorm.DB, userID, level string) ([]*types.TopicProgress, error)
	ListWeak(ctx context.Context, tx *gorm.DB, userID string, accuracyBelow float64, limit int) ([]*types.TopicProgress, error)
}

type topicProgressRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTopicProgressRepo(db *gorm.DB, baseLog *logger.Logger) TopicProgressRepo {
	repoLog := baseLog.With("repo", "TopicProgressRepo")
	return &topicProgressRepo{db: db, log: repoLog}
}

func (r *topicProgressRepo) Get(ctx context.Context, tx *gorm.DB, userID, level, topic string) (*types.TopicProgress, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var progress types.TopicProgress
	if err := transaction.WithContext(ctx).
		Where("user_id = ? AND level = ? AND topic = ?", userID, level, topic).
		First(&progress).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &progress, nil
}

func (r *topicProgressRepo) Create(ctx context.Context, tx *gorm.DB, progress *types.TopicProgress) (*types.TopicProgress, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if err := transaction.WithContext(ctx).Create(progress).Error; err != nil {
		return nil, err
	}
	return progress, nil
}

func (r *topicProgressRepo) Save(ctx context.Context, tx *gorm.DB, progress *types.TopicProgress) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	return transaction.WithContext(ctx).Save(progress).Error
}

func (r *topicProgressRepo) ListByUser(ctx context.Context, tx *gorm.DB, userID string) ([]*types.TopicProgress, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.TopicProgress
	if err := transaction.WithContext(ctx).
		Where("user_id = ?", userID).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *topicProgressRepo) ListByUserLevel(ctx context.Context, tx *gorm.DB, userID, level string) ([]*types.TopicProgress, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.TopicProgress
	if err := transaction.WithContext(ctx).
		Where("user_id = ? AND level = ?", userID, level).
		Order("last_studied DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *topicProgressRepo) ListWeak(ctx context.Context, tx *gorm.DB, userID string, accuracyBelow float64, limit int) ([]*types.TopicProgress, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	q := transaction.WithContext(ctx).
		Where("user_id = ? AND quiz_accuracy < ?", userID, accuracyBelow).
		Order("quiz_accuracy ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}

	var results []*types.TopicProgress
	if err := q.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
