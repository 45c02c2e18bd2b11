package services

import (
	"context"
	"fmt"
	"math/rand"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/prepdeck/prepdeck-backend/internal/apierr"
	"github.com/prepdeck/prepdeck-backend/internal/logger"
	"github.com/prepdeck/prepdeck-backend/internal/repos"
	"github.com/prepdeck/prepdeck-backend/internal/types"
)

type QuizAnswerResult struct {
	IsCorrect     bool   `json:"is_correct"`
	CorrectAnswer string `json:"correct_answer"`
	Explanation   string `json:"explanation"`
	UserAnswer    string `json:"user_answer"`
}

type QuizStats struct {
	TotalAttempts   int64   `json:"total_attempts"`
	CorrectAttempts int64   `json:"correct_attempts"`
	Accuracy        float64 `json:"accuracy"`
	AverageTime     float64 `json:"average_time"`
}

type QuizService interface {
	GetQuestions(ctx context.Context, level, topic, difficulty string, limit int) ([]*types.QuizQuestion, error)
	GetRandomQuiz(ctx context.Context, userID, level, topic string, count int) ([]*types.QuizQuestion, error)
	SubmitAnswer(ctx context.Context, userID string, questionID uuid.UUID, userAnswer string, timeTakenSecs int) (*QuizAnswerResult, error)
	GetStats(ctx context.Context, userID, level, topic string) (*QuizStats, error)
	GetWeakTopics(ctx context.Context, userID string, limit int) ([]*types.TopicProgress, error)
}

type quizService struct {
	db           *gorm.DB
	log          *logger.Logger
	questionRepo repos.QuizQuestionRepo
	attemptRepo  repos.QuizAttemptRepo
	progressRepo repos.TopicProgressRepo
	masterySvc   MasteryService
	newRand      func() *rand.Rand
	now          func() time.Time
}

// NewQuizService takes the random source as a factory so quiz composition
// is deterministic under test.
func NewQuizService(db *gorm.DB, baseLog *logger.Logger, questionRepo repos.QuizQuestionRepo, attemptRepo repos.QuizAttemptRepo, progressRepo repos.TopicProgressRepo, masterySvc MasteryService, newRand func() *rand.Rand) QuizService {
	if newRand == nil {
		newRand = func() *rand.Rand { return rand.New(rand.NewSource(time.Now().UnixNano())) }
	}
	return &quizService{
		db:           db,
		log:          baseLog.With("service", "QuizService"),
		questionRepo: questionRepo,
		attemptRepo:  attemptRepo,
		progressRepo: progressRepo,
		masterySvc:   masterySvc,
		newRand:      newRand,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

func (s *quizService) GetQuestions(ctx context.Context, level, topic, difficulty string, limit int) ([]*types.QuizQuestion, error) {
	if limit <= 0 {
		limit = 50
	}
	return s.questionRepo.List(ctx, nil, level, topic, difficulty, limit)
}

// GetRandomQuiz composes a batch biased toward questions the user has never
// seen, then toward ones they have missed. The split is a heuristic, not a
// guaranteed proportion: small pools simply fill from whatever is left.
func (s *quizService) GetRandomQuiz(ctx context.Context, userID, level, topic string, count int) ([]*types.QuizQuestion, error) {
	if count <= 0 {
		count = 10
	}

	pool, err := s.questionRepo.ListPool(ctx, nil, level, topic)
	if err != nil {
		return nil, err
	}
	if len(pool) == 0 {
		return []*types.QuizQuestion{}, nil
	}

	attempted, err := s.attemptRepo.AttemptedQuestionIDs(ctx, nil, userID)
	if err != nil {
		return nil, err
	}
	missed, err := s.attemptRepo.MissedQuestionIDs(ctx, nil, userID)
	if err != nil {
		return nil, err
	}

	var unattempted, previouslyMissed []*types.QuizQuestion
	for _, q := range pool {
		if !attempted[q.ID] {
			unattempted = append(unattempted, q)
		} else if missed[q.ID] {
			previouslyMissed = append(previouslyMissed, q)
		}
	}

	return composeQuiz(pool, unattempted, previouslyMissed, count, s.newRand()), nil
}

// composeQuiz fills up to half the batch from unattempted questions, half
// of the remainder from previously-missed ones, tops up from the full pool,
// then shuffles.
func composeQuiz(pool, unattempted, previouslyMissed []*types.QuizQuestion, count int, rng *rand.Rand) []*types.QuizQuestion {
	picked := make([]*types.QuizQuestion, 0, count)
	chosen := make(map[uuid.UUID]bool, count)

	take := func(from []*types.QuizQuestion, n int) {
		candidates := make([]*types.QuizQuestion, 0, len(from))
		for _, q := range from {
			if !chosen[q.ID] {
				candidates = append(candidates, q)
			}
		}
		if n > len(candidates) {
			n = len(candidates)
		}
		rng.Shuffle(len(candidates), func(i, j int) {
			candidates[i], candidates[j] = candidates[j], candidates[i]
		})
		for _, q := range candidates[:n] {
			picked = append(picked, q)
			chosen[q.ID] = true
		}
	}

	take(unattempted, count/2)
	take(previouslyMissed, (count-len(picked))/2)
	take(pool, count-len(picked))

	rng.Shuffle(len(picked), func(i, j int) {
		picked[i], picked[j] = picked[j], picked[i]
	})
	if len(picked) > count {
		picked = picked[:count]
	}
	return picked
}

// SubmitAnswer grades the submission against the stored answer
// case-insensitively, appends the attempt, and recounts topic accuracy in
// the same transaction. Unknown questions write nothing.
func (s *quizService) SubmitAnswer(ctx context.Context, userID string, questionID uuid.UUID, userAnswer string, timeTakenSecs int) (*QuizAnswerResult, error) {
	answer := strings.ToUpper(strings.TrimSpace(userAnswer))
	if answer == "" {
		return nil, apierr.New(http.StatusBadRequest, "invalid_input", fmt.Errorf("answer is required"))
	}

	var result *QuizAnswerResult
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		question, err := s.questionRepo.GetByID(ctx, tx, questionID)
		if err != nil {
			return err
		}
		if question == nil {
			return apierr.New(http.StatusNotFound, "not_found", fmt.Errorf("question %s not found", questionID))
		}

		isCorrect := strings.EqualFold(answer, question.CorrectAnswer)
		now := s.now()

		attempt := &types.QuizAttempt{
			QuestionID:  questionID,
			UserID:      userID,
			UserAnswer:  answer,
			IsCorrect:   isCorrect,
			TimeTaken:   timeTakenSecs,
			AttemptedAt: now,
		}
		if _, err := s.attemptRepo.Create(ctx, tx, attempt); err != nil {
			return err
		}

		if err := s.masterySvc.ApplyQuizAttempt(ctx, tx, userID, question.Level, question.Topic, now); err != nil {
			return err
		}

		result = &QuizAnswerResult{
			IsCorrect:     isCorrect,
			CorrectAnswer: question.CorrectAnswer,
			Explanation:   question.Explanation,
			UserAnswer:    answer,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *quizService) GetStats(ctx context.Context, userID, level, topic string) (*QuizStats, error) {
	total, correct, err := s.attemptRepo.CountFiltered(ctx, nil, userID, level, topic)
	if err != nil {
		return nil, err
	}

	accuracy := 0.0
	if total > 0 {
		accuracy = float64(correct) / float64(total) * 100
	}

	avgTime, err := s.attemptRepo.AverageTimeTaken(ctx, nil, userID)
	if err != nil {
		return nil, err
	}

	return &QuizStats{
		TotalAttempts:   total,
		CorrectAttempts: correct,
		Accuracy:        accuracy,
		AverageTime:     avgTime,
	}, nil
}

func (s *quizService) GetWeakTopics(ctx context.Context, userID string, limit int) ([]*types.TopicProgress, error) {
	if limit <= 0 {
		limit = 5
	}
	return s.progressRepo.ListWeak(ctx, nil, userID, WeakTopicAccuracyThreshold, limit)
}
