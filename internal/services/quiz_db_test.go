package services

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/prepdeck/prepdeck-backend/internal/apierr"
	"github.com/prepdeck/prepdeck-backend/internal/repos"
	"github.com/prepdeck/prepdeck-backend/internal/types"
)

func newDBQuizService(t *testing.T) (QuizService, *gorm.DB) {
	t.Helper()
	db := newTestDB(t)
	log := newTestLogger(t)
	questionRepo := repos.NewQuizQuestionRepo(db, log)
	attemptRepo := repos.NewQuizAttemptRepo(db, log)
	progressRepo := repos.NewTopicProgressRepo(db, log)
	mastery := NewMasteryService(db, log, progressRepo, attemptRepo)
	return NewQuizService(db, log, questionRepo, attemptRepo, progressRepo, mastery, nil), db
}

func seedTopicAccuracy(t *testing.T, db *gorm.DB, userID, topic string, accuracy float64) {
	t.Helper()
	record := &types.TopicProgress{
		UserID:       userID,
		Level:        "L1",
		Topic:        topic,
		QuizAccuracy: accuracy,
	}
	if err := db.Create(record).Error; err != nil {
		t.Fatalf("seed topic %s: %v", topic, err)
	}
}

func TestGetWeakTopics_FiltersSortsAndCaps(t *testing.T) {
	svc, db := newDBQuizService(t)
	ctx := context.Background()

	seedTopicAccuracy(t, db, "u1", "Ethics", 80)
	seedTopicAccuracy(t, db, "u1", "Derivatives", 40)
	seedTopicAccuracy(t, db, "u1", "Economics", 69)
	seedTopicAccuracy(t, db, "u1", "Alternative Investments", 10)
	seedTopicAccuracy(t, db, "u1", "Fixed Income", 55)
	seedTopicAccuracy(t, db, "other", "Equity", 5)

	weak, err := svc.GetWeakTopics(ctx, "u1", 3)
	if err != nil {
		t.Fatalf("GetWeakTopics: %v", err)
	}
	if len(weak) != 3 {
		t.Fatalf("expected 3 weak topics, got %d", len(weak))
	}
	for i, p := range weak {
		if p.UserID != "u1" {
			t.Errorf("weak[%d] belongs to %q", i, p.UserID)
		}
		if p.QuizAccuracy >= WeakTopicAccuracyThreshold {
			t.Errorf("weak[%d] %s accuracy %.0f is not below %.0f", i, p.Topic, p.QuizAccuracy, WeakTopicAccuracyThreshold)
		}
	}
	wantOrder := []string{"Alternative Investments", "Derivatives", "Fixed Income"}
	for i, want := range wantOrder {
		if weak[i].Topic != want {
			t.Errorf("weak[%d] = %s, want %s (ascending by accuracy)", i, weak[i].Topic, want)
		}
	}
}

func TestGetWeakTopics_NoWeakTopics(t *testing.T) {
	svc, db := newDBQuizService(t)
	seedTopicAccuracy(t, db, "u1", "Ethics", 92)

	weak, err := svc.GetWeakTopics(context.Background(), "u1", 3)
	if err != nil {
		t.Fatalf("GetWeakTopics: %v", err)
	}
	if len(weak) != 0 {
		t.Fatalf("expected no weak topics, got %d", len(weak))
	}
}

func seedQuestion(t *testing.T, db *gorm.DB, correct string) *types.QuizQuestion {
	t.Helper()
	q := &types.QuizQuestion{
		Question:      "What discount rate applies?",
		OptionA:       "Nominal rate",
		OptionB:       "Real rate",
		OptionC:       "Coupon rate",
		CorrectAnswer: correct,
		Explanation:   "The real rate strips out inflation.",
		Level:         "L1",
		Topic:         "Quantitative Methods",
		Difficulty:    "medium",
		QuestionType:  "multiple_choice",
	}
	if err := db.Create(q).Error; err != nil {
		t.Fatalf("seed question: %v", err)
	}
	return q
}

func TestSubmitAnswer_GradesCaseInsensitively(t *testing.T) {
	svc, db := newDBQuizService(t)
	ctx := context.Background()
	question := seedQuestion(t, db, "B")

	result, err := svc.SubmitAnswer(ctx, "u1", question.ID, "b", 30)
	if err != nil {
		t.Fatalf("SubmitAnswer: %v", err)
	}
	if !result.IsCorrect {
		t.Errorf("lowercase submission of the stored answer should be correct")
	}
	if result.CorrectAnswer != "B" || result.UserAnswer != "B" {
		t.Errorf("result = %q/%q, want B/B", result.CorrectAnswer, result.UserAnswer)
	}

	result, err = svc.SubmitAnswer(ctx, "u1", question.ID, "a", 30)
	if err != nil {
		t.Fatalf("SubmitAnswer: %v", err)
	}
	if result.IsCorrect {
		t.Errorf("wrong option should not grade correct")
	}

	var attempts int64
	if err := db.Model(&types.QuizAttempt{}).Where("user_id = ?", "u1").Count(&attempts).Error; err != nil {
		t.Fatalf("count attempts: %v", err)
	}
	if attempts != 2 {
		t.Errorf("expected 2 attempt rows, got %d", attempts)
	}

	var progress types.TopicProgress
	if err := db.Where("user_id = ? AND level = ? AND topic = ?", "u1", question.Level, question.Topic).First(&progress).Error; err != nil {
		t.Fatalf("load topic progress: %v", err)
	}
	if progress.QuizAccuracy != 50 {
		t.Errorf("accuracy after 1/2 correct = %.1f, want 50", progress.QuizAccuracy)
	}
}

func TestSubmitAnswer_UnknownQuestionWritesNothing(t *testing.T) {
	svc, db := newDBQuizService(t)

	_, err := svc.SubmitAnswer(context.Background(), "u1", uuid.New(), "A", 10)
	if err == nil {
		t.Fatalf("expected error for unknown question")
	}
	var ae *apierr.Error
	if !errors.As(err, &ae) || ae.Status != http.StatusNotFound {
		t.Fatalf("expected 404 api error, got %v", err)
	}

	var attempts int64
	if err := db.Model(&types.QuizAttempt{}).Count(&attempts).Error; err != nil {
		t.Fatalf("count attempts: %v", err)
	}
	if attempts != 0 {
		t.Errorf("expected no attempt rows after failed submit, got %d", attempts)
	}
}
