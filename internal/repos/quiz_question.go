package repos

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/prepdeck/prepdeck-backend/internal/logger"
	"github.com/prepdeck/prepdeck-backend/internal/types"
)

type QuizQuestionRepo interface {
	Create(ctx context.Context, tx *gorm.DB, questions []*types.QuizQuestion) ([]*types.QuizQuestion, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.QuizQuestion, error)
	List(ctx context.Context, tx *gorm.DB, level, topic, difficulty string, limit int) ([]*types.QuizQuestion, error)
	ListPool(ctx context.Context, tx *gorm.DB, level, topic string) ([]*types.QuizQuestion, error)
	DistinctLevelTopics(ctx context.Context, tx *gorm.DB) ([]LevelTopic, error)
}

type quizQuestionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewQuizQuestionRepo(db *gorm.DB, baseLog *logger.Logger) QuizQuestionRepo {
	repoLog := baseLog.With("repo", "QuizQuestionRepo")
	return &quizQuestionRepo{db: db, log: repoLog}
}

func (r *quizQuestionRepo) Create(ctx context.Context, tx *gorm.DB, questions []*types.QuizQuestion) ([]*types.QuizQuestion, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(questions) == 0 {
		return []*types.QuizQuestion{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&questions).Error; err != nil {
		return nil, err
	}
	return questions, nil
}

func (r *quizQuestionRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.QuizQuestion, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var question types.QuizQuestion
	if err := transaction.WithContext(ctx).
		Where("id = ?", id).
		First(&question).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &question, nil
}

func (r *quizQuestionRepo) List(ctx context.Context, tx *gorm.DB, level, topic, difficulty string, limit int) ([]*types.QuizQuestion, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	q := transaction.WithContext(ctx).Model(&types.QuizQuestion{})
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

	var results []*types.QuizQuestion
	if err := q.Order("created_at DESC").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// ListPool returns the full candidate pool for quiz composition, in stable
// insertion order. Sampling happens in the service, not the store.
func (r *quizQuestionRepo) ListPool(ctx context.Context, tx *gorm.DB, level, topic string) ([]*types.QuizQuestion, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	q := transaction.WithContext(ctx).Model(&types.QuizQuestion{})
	if level != "" {
		q = q.Where("level = ?", level)
	}
	if topic != "" {
		q = q.Where("topic = ?", topic)
	}

	var results []*types.QuizQuestion
	if err := q.Order("created_at ASC").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *quizQuestionRepo) DistinctLevelTopics(ctx context.Context, tx *gorm.DB) ([]LevelTopic, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []LevelTopic
	if err := transaction.WithContext(ctx).
		Model(&types.QuizQuestion{}).
		Distinct("level", "topic").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
