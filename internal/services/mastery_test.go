package services

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/prepdeck/prepdeck-backend/internal/logger"
	"github.com/prepdeck/prepdeck-backend/internal/types"
)

type fakeProgressRepo struct {
	records map[string]*types.TopicProgress
}

func newFakeProgressRepo() *fakeProgressRepo {
	return &fakeProgressRepo{records: map[string]*types.TopicProgress{}}
}

func progressKey(userID, level, topic string) string {
	return userID + "|" + level + "|" + topic
}

func (f *fakeProgressRepo) Get(ctx context.Context, tx *gorm.DB, userID, level, topic string) (*types.TopicProgress, error) {
	return f.records[progressKey(userID, level, topic)], nil
}

func (f *fakeProgressRepo) Create(ctx context.Context, tx *gorm.DB, progress *types.TopicProgress) (*types.TopicProgress, error) {
	if progress.ID == uuid.Nil {
		progress.ID = uuid.New()
	}
	f.records[progressKey(progress.UserID, progress.Level, progress.Topic)] = progress
	return progress, nil
}

func (f *fakeProgressRepo) Save(ctx context.Context, tx *gorm.DB, progress *types.TopicProgress) error {
	f.records[progressKey(progress.UserID, progress.Level, progress.Topic)] = progress
	return nil
}

func (f *fakeProgressRepo) ListByUser(ctx context.Context, tx *gorm.DB, userID string) ([]*types.TopicProgress, error) {
	var out []*types.TopicProgress
	for _, p := range f.records {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeProgressRepo) ListByUserLevel(ctx context.Context, tx *gorm.DB, userID, level string) ([]*types.TopicProgress, error) {
	var out []*types.TopicProgress
	for _, p := range f.records {
		if p.UserID == userID && p.Level == level {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeProgressRepo) ListWeak(ctx context.Context, tx *gorm.DB, userID string, accuracyBelow float64, limit int) ([]*types.TopicProgress, error) {
	var out []*types.TopicProgress
	for _, p := range f.records {
		if p.UserID == userID && p.QuizAccuracy < accuracyBelow {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].QuizAccuracy < out[j].QuizAccuracy })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type fakeAttemptRepo struct {
	total   int64
	correct int64
}

func (f *fakeAttemptRepo) Create(ctx context.Context, tx *gorm.DB, attempt *types.QuizAttempt) (*types.QuizAttempt, error) {
	return attempt, nil
}

func (f *fakeAttemptRepo) ListByUser(ctx context.Context, tx *gorm.DB, userID string) ([]*types.QuizAttempt, error) {
	return nil, nil
}

func (f *fakeAttemptRepo) ListByUserSince(ctx context.Context, tx *gorm.DB, userID string, cutoff time.Time) ([]*types.QuizAttempt, error) {
	return nil, nil
}

func (f *fakeAttemptRepo) CountFiltered(ctx context.Context, tx *gorm.DB, userID, level, topic string) (int64, int64, error) {
	return f.total, f.correct, nil
}

func (f *fakeAttemptRepo) CountByUser(ctx context.Context, tx *gorm.DB, userID string) (int64, int64, error) {
	return f.total, f.correct, nil
}

func (f *fakeAttemptRepo) AverageTimeTaken(ctx context.Context, tx *gorm.DB, userID string) (float64, error) {
	return 0, nil
}

func (f *fakeAttemptRepo) AttemptedQuestionIDs(ctx context.Context, tx *gorm.DB, userID string) (map[uuid.UUID]bool, error) {
	return map[uuid.UUID]bool{}, nil
}

func (f *fakeAttemptRepo) MissedQuestionIDs(ctx context.Context, tx *gorm.DB, userID string) (map[uuid.UUID]bool, error) {
	return map[uuid.UUID]bool{}, nil
}

func newTestMasteryService(t *testing.T, progressRepo *fakeProgressRepo, attemptRepo *fakeAttemptRepo) MasteryService {
	t.Helper()
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return NewMasteryService(nil, log, progressRepo, attemptRepo)
}

func TestApplyFlashcardReview_FirstContactCreatesRecord(t *testing.T) {
	progressRepo := newFakeProgressRepo()
	svc := newTestMasteryService(t, progressRepo, &fakeAttemptRepo{})
	now := time.Now().UTC()

	if err := svc.ApplyFlashcardReview(context.Background(), nil, "u1", "L1", "Ethics", true, now); err != nil {
		t.Fatalf("ApplyFlashcardReview: %v", err)
	}

	p := progressRepo.records[progressKey("u1", "L1", "Ethics")]
	if p == nil {
		t.Fatalf("expected progress record to be created")
	}
	if p.CardsTotal != 1 || p.CardsMastered != 1 {
		t.Fatalf("expected total=1 mastered=1, got total=%d mastered=%d", p.CardsTotal, p.CardsMastered)
	}
	if p.LastStudied == nil || !p.LastStudied.Equal(now) {
		t.Fatalf("expected last_studied=%v, got %v", now, p.LastStudied)
	}
}

func TestApplyFlashcardReview_FirstContactUnmastered(t *testing.T) {
	progressRepo := newFakeProgressRepo()
	svc := newTestMasteryService(t, progressRepo, &fakeAttemptRepo{})

	if err := svc.ApplyFlashcardReview(context.Background(), nil, "u1", "L1", "Ethics", false, time.Now()); err != nil {
		t.Fatalf("ApplyFlashcardReview: %v", err)
	}

	p := progressRepo.records[progressKey("u1", "L1", "Ethics")]
	if p.CardsTotal != 1 || p.CardsMastered != 0 {
		t.Fatalf("expected total=1 mastered=0, got total=%d mastered=%d", p.CardsTotal, p.CardsMastered)
	}
}

func TestApplyFlashcardReview_RepeatOnlyBumpsMastered(t *testing.T) {
	progressRepo := newFakeProgressRepo()
	svc := newTestMasteryService(t, progressRepo, &fakeAttemptRepo{})
	ctx := context.Background()

	if err := svc.ApplyFlashcardReview(ctx, nil, "u1", "L1", "Ethics", false, time.Now()); err != nil {
		t.Fatalf("first review: %v", err)
	}
	if err := svc.ApplyFlashcardReview(ctx, nil, "u1", "L1", "Ethics", true, time.Now()); err != nil {
		t.Fatalf("second review: %v", err)
	}
	if err := svc.ApplyFlashcardReview(ctx, nil, "u1", "L1", "Ethics", true, time.Now()); err != nil {
		t.Fatalf("third review: %v", err)
	}

	p := progressRepo.records[progressKey("u1", "L1", "Ethics")]
	if p.CardsTotal != 1 {
		t.Fatalf("cards_total must stay at first-seen count, got %d", p.CardsTotal)
	}
	if p.CardsMastered != 2 {
		t.Fatalf("expected mastered=2, got %d", p.CardsMastered)
	}
}

func TestApplyQuizAttempt_RecountsAccuracy(t *testing.T) {
	progressRepo := newFakeProgressRepo()
	attemptRepo := &fakeAttemptRepo{total: 4, correct: 3}
	svc := newTestMasteryService(t, progressRepo, attemptRepo)

	if err := svc.ApplyQuizAttempt(context.Background(), nil, "u1", "L1", "Ethics", time.Now()); err != nil {
		t.Fatalf("ApplyQuizAttempt: %v", err)
	}

	p := progressRepo.records[progressKey("u1", "L1", "Ethics")]
	if p == nil {
		t.Fatalf("expected progress record to be created")
	}
	if p.QuizAccuracy != 75 {
		t.Fatalf("expected accuracy=75, got %v", p.QuizAccuracy)
	}

	// A later recount replaces the stored figure outright.
	attemptRepo.total = 5
	attemptRepo.correct = 3
	if err := svc.ApplyQuizAttempt(context.Background(), nil, "u1", "L1", "Ethics", time.Now()); err != nil {
		t.Fatalf("second ApplyQuizAttempt: %v", err)
	}
	if got := progressRepo.records[progressKey("u1", "L1", "Ethics")].QuizAccuracy; got != 60 {
		t.Fatalf("expected accuracy=60 after recount, got %v", got)
	}
}

func TestAddStudyTime(t *testing.T) {
	progressRepo := newFakeProgressRepo()
	svc := newTestMasteryService(t, progressRepo, &fakeAttemptRepo{})
	ctx := context.Background()

	// No record yet: time is dropped, not an error.
	if err := svc.AddStudyTime(ctx, nil, "u1", "L1", "Ethics", 30, time.Now()); err != nil {
		t.Fatalf("AddStudyTime without record: %v", err)
	}
	if progressRepo.records[progressKey("u1", "L1", "Ethics")] != nil {
		t.Fatalf("AddStudyTime must not create records")
	}

	if err := svc.ApplyFlashcardReview(ctx, nil, "u1", "L1", "Ethics", false, time.Now()); err != nil {
		t.Fatalf("seed record: %v", err)
	}
	if err := svc.AddStudyTime(ctx, nil, "u1", "L1", "Ethics", 30, time.Now()); err != nil {
		t.Fatalf("AddStudyTime: %v", err)
	}
	if err := svc.AddStudyTime(ctx, nil, "u1", "L1", "Ethics", 15, time.Now()); err != nil {
		t.Fatalf("AddStudyTime: %v", err)
	}
	if got := progressRepo.records[progressKey("u1", "L1", "Ethics")].TotalTimeMins; got != 45 {
		t.Fatalf("expected total_time=45, got %d", got)
	}
}
