package services

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/prepdeck/prepdeck-backend/internal/apierr"
	"github.com/prepdeck/prepdeck-backend/internal/repos"
	"github.com/prepdeck/prepdeck-backend/internal/types"
)

func newDBProgressService(t *testing.T) (*progressService, *gorm.DB) {
	t.Helper()
	db := newTestDB(t)
	log := newTestLogger(t)
	sessionRepo := repos.NewStudySessionRepo(db, log)
	progressRepo := repos.NewTopicProgressRepo(db, log)
	attemptRepo := repos.NewQuizAttemptRepo(db, log)
	mastery := NewMasteryService(db, log, progressRepo, attemptRepo)
	svc := NewProgressService(db, log, sessionRepo, progressRepo, attemptRepo, mastery).(*progressService)
	return svc, db
}

func TestEndSession_SecondEndConflicts(t *testing.T) {
	svc, db := newDBProgressService(t)
	ctx := context.Background()

	if err := db.Create(&types.TopicProgress{UserID: "u1", Level: "L1", Topic: "Ethics"}).Error; err != nil {
		t.Fatalf("seed topic progress: %v", err)
	}

	start := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return start }
	session, err := svc.StartSession(ctx, "u1", "quiz", "L1", "Ethics")
	if err != nil {
		t.Fatalf("StartSession: %v", err)
	}

	svc.now = func() time.Time { return start.Add(30 * time.Minute) }
	ended, err := svc.EndSession(ctx, "u1", session.ID, 5, 10, 8)
	if err != nil {
		t.Fatalf("EndSession: %v", err)
	}
	if ended.EndedAt == nil || ended.DurationMins != 30 {
		t.Fatalf("ended session = %+v, want EndedAt set and 30 min duration", ended)
	}

	svc.now = func() time.Time { return start.Add(90 * time.Minute) }
	_, err = svc.EndSession(ctx, "u1", session.ID, 5, 10, 8)
	if err == nil {
		t.Fatalf("expected conflict ending an already-ended session")
	}
	var ae *apierr.Error
	if !errors.As(err, &ae) || ae.Status != http.StatusConflict {
		t.Fatalf("expected 409 api error, got %v", err)
	}

	var progress types.TopicProgress
	if err := db.Where("user_id = ? AND level = ? AND topic = ?", "u1", "L1", "Ethics").First(&progress).Error; err != nil {
		t.Fatalf("load topic progress: %v", err)
	}
	if progress.TotalTimeMins != 30 {
		t.Errorf("TotalTimeMins = %d, want 30 (study time counted once)", progress.TotalTimeMins)
	}
}

func TestEndSession_UnknownOrForeignSessionNotFound(t *testing.T) {
	svc, _ := newDBProgressService(t)
	ctx := context.Background()

	session, err := svc.StartSession(ctx, "u1", "flashcards", "L1", "Ethics")
	if err != nil {
		t.Fatalf("StartSession: %v", err)
	}

	_, err = svc.EndSession(ctx, "someone-else", session.ID, 0, 0, 0)
	var ae *apierr.Error
	if !errors.As(err, &ae) || ae.Status != http.StatusNotFound {
		t.Fatalf("expected 404 ending another user's session, got %v", err)
	}
}
