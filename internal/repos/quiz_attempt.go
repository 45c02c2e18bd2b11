package repos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/prepdeck/prepdeck-backend/internal/logger"
	"github.com/prepdeck/prepdeck-backend/internal/types"
)

type QuizAttemptRepo interface {
	Create(ctx context.Context, tx *gorm.DB, attempt *types.QuizAttempt) (*types.QuizAttempt, error)
	ListByUser(ctx context.Context, tx *gorm.DB, userID string) ([]*types.QuizAttempt, error)
	ListByUserSince(ctx context.Context, tx *gorm.DB, userID string, cutoff time.Time) ([]*types.QuizAttempt, error)
	CountFiltered(ctx context.Context, tx *gorm.DB, userID, level, topic string) (total int64, correct int64, err error)
	CountByUser(ctx context.Context, tx *gorm.DB, userID string) (total int64, correct int64, err error)
	AverageTimeTaken(ctx context.Context, tx *gorm.DB, userID string) (float64, error)
	AttemptedQuestionIDs(ctx context.Context, tx *gorm.DB, userID string) (map[uuid.UUID]bool, error)
	MissedQuestionIDs(ctx context.Context, tx *gorm.DB, userID string) (map[uuid.UUID]bool, error)
}

type quizAttemptRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewQuizAttemptRepo(db *gorm.DB, baseLog *logger.Logger) QuizAttemptRepo {
	repoLog := baseLog.With("repo", "QuizAttemptRepo")
	return &quizAttemptRepo{db: db, log: repoLog}
}

func (r *quizAttemptRepo) Create(ctx context.Context, tx *gorm.DB, attempt *types.QuizAttempt) (*types.QuizAttempt, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if err := transaction.WithContext(ctx).Create(attempt).Error; err != nil {
		return nil, err
	}
	return attempt, nil
}

func (r *quizAttemptRepo) ListByUser(ctx context.Context, tx *gorm.DB, userID string) ([]*types.QuizAttempt, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.QuizAttempt
	if err := transaction.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("attempted_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *quizAttemptRepo) ListByUserSince(ctx context.Context, tx *gorm.DB, userID string, cutoff time.Time) ([]*types.QuizAttempt, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.QuizAttempt
	if err := transaction.WithContext(ctx).
		Where("user_id = ? AND attempted_at >= ?", userID, cutoff).
		Order("attempted_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// CountFiltered recounts the attempt ledger, optionally scoped by the
// question's level and topic, so accuracy always matches full history.
func (r *quizAttemptRepo) CountFiltered(ctx context.Context, tx *gorm.DB, userID, level, topic string) (int64, int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	base := transaction.WithContext(ctx).
		Model(&types.QuizAttempt{}).
		Joins("JOIN quiz_question ON quiz_question.id = quiz_attempt.question_id").
		Where("quiz_attempt.user_id = ?", userID)
	if level != "" {
		base = base.Where("quiz_question.level = ?", level)
	}
	if topic != "" {
		base = base.Where("quiz_question.topic = ?", topic)
	}

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return 0, 0, err
	}

	var correct int64
	if err := base.Session(&gorm.Session{}).
		Where("quiz_attempt.is_correct = ?", true).
		Count(&correct).Error; err != nil {
		return 0, 0, err
	}
	return total, correct, nil
}

func (r *quizAttemptRepo) CountByUser(ctx context.Context, tx *gorm.DB, userID string) (int64, int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	base := transaction.WithContext(ctx).
		Model(&types.QuizAttempt{}).
		Where("user_id = ?", userID)

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return 0, 0, err
	}

	var correct int64
	if err := base.Session(&gorm.Session{}).
		Where("is_correct = ?", true).
		Count(&correct).Error; err != nil {
		return 0, 0, err
	}
	return total, correct, nil
}

func (r *quizAttemptRepo) AverageTimeTaken(ctx context.Context, tx *gorm.DB, userID string) (float64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var avg *float64
	if err := transaction.WithContext(ctx).
		Model(&types.QuizAttempt{}).
		Where("user_id = ?", userID).
		Select("AVG(time_taken_secs)").
		Scan(&avg).Error; err != nil {
		return 0, err
	}
	if avg == nil {
		return 0, nil
	}
	return *avg, nil
}

func (r *quizAttemptRepo) AttemptedQuestionIDs(ctx context.Context, tx *gorm.DB, userID string) (map[uuid.UUID]bool, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var ids []uuid.UUID
	if err := transaction.WithContext(ctx).
		Model(&types.QuizAttempt{}).
		Where("user_id = ?", userID).
		Distinct().
		Pluck("question_id", &ids).Error; err != nil {
		return nil, err
	}

	set := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set, nil
}

// MissedQuestionIDs returns questions the user has ever answered
// incorrectly. A later correct answer does not remove a question from this
// set.
func (r *quizAttemptRepo) MissedQuestionIDs(ctx context.Context, tx *gorm.DB, userID string) (map[uuid.UUID]bool, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var ids []uuid.UUID
	if err := transaction.WithContext(ctx).
		Model(&types.QuizAttempt{}).
		Where("user_id = ? AND is_correct = ?", userID, false).
		Distinct().
		Pluck("question_id", &ids).Error; err != nil {
		return nil, err
	}

	set := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set, nil
}
