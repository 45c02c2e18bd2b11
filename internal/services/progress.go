package services

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"sort"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/prepdeck/prepdeck-backend/internal/apierr"
	"github.com/prepdeck/prepdeck-backend/internal/logger"
	"github.com/prepdeck/prepdeck-backend/internal/repos"
	"github.com/prepdeck/prepdeck-backend/internal/srs"
	"github.com/prepdeck/prepdeck-backend/internal/types"
)

type OverallProgress struct {
	TotalTopics       int     `json:"total_topics"`
	AverageMastery    float64 `json:"average_mastery"`
	TotalTimeSpent    int     `json:"total_time_spent"`
	CardsMastered     int     `json:"cards_mastered"`
	QuizAccuracy      float64 `json:"quiz_accuracy"`
	TotalQuizAttempts int64   `json:"total_quiz_attempts"`
}

type TopicProgressSummary struct {
	Topic         string     `json:"topic"`
	MasteryScore  float64    `json:"mastery_score"`
	QuizAccuracy  float64    `json:"quiz_accuracy"`
	CardsMastered int        `json:"cards_mastered"`
	CardsTotal    int        `json:"cards_total"`
	TimeSpent     int        `json:"time_spent"`
	LastStudied   *time.Time `json:"last_studied,omitempty"`
}

type StreakInfo struct {
	CurrentStreak  int `json:"current_streak"`
	LongestStreak  int `json:"longest_streak"`
	TotalStudyDays int `json:"total_study_days"`
}

type ActivityEntry struct {
	Date              time.Time `json:"date"`
	SessionType       string    `json:"session_type"`
	Level             string    `json:"level"`
	Topic             string    `json:"topic"`
	DurationMins      int       `json:"duration_mins"`
	CardsReviewed     int       `json:"cards_reviewed"`
	QuestionsAnswered int       `json:"questions_answered"`
	Accuracy          *float64  `json:"accuracy,omitempty"`
}

type DailyQuizPerformance struct {
	Date           string  `json:"date"`
	TotalQuestions int     `json:"total_questions"`
	CorrectAnswers int     `json:"correct_answers"`
	Accuracy       float64 `json:"accuracy"`
}

type DailyStudyTime struct {
	Date    string `json:"date"`
	Minutes int    `json:"minutes"`
}

type PerformanceTrends struct {
	QuizPerformance []DailyQuizPerformance `json:"quiz_performance"`
	StudyTime       []DailyStudyTime       `json:"study_time"`
}

type ProgressService interface {
	StartSession(ctx context.Context, userID, sessionType, level, topic string) (*types.StudySession, error)
	EndSession(ctx context.Context, userID string, sessionID uuid.UUID, cardsReviewed, questionsAnswered, correctAnswers int) (*types.StudySession, error)
	GetOverallProgress(ctx context.Context, userID string) (*OverallProgress, error)
	GetProgressByLevel(ctx context.Context, userID, level string) ([]TopicProgressSummary, error)
	GetStreak(ctx context.Context, userID string) (*StreakInfo, error)
	GetRecentActivity(ctx context.Context, userID string, days int) ([]ActivityEntry, error)
	GetPerformanceTrends(ctx context.Context, userID string, days int) (*PerformanceTrends, error)
}

type progressService struct {
	db           *gorm.DB
	log          *logger.Logger
	sessionRepo  repos.StudySessionRepo
	progressRepo repos.TopicProgressRepo
	attemptRepo  repos.QuizAttemptRepo
	masterySvc   MasteryService
	now          func() time.Time
}

func NewProgressService(db *gorm.DB, baseLog *logger.Logger, sessionRepo repos.StudySessionRepo, progressRepo repos.TopicProgressRepo, attemptRepo repos.QuizAttemptRepo, masterySvc MasteryService) ProgressService {
	return &progressService{
		db:           db,
		log:          baseLog.With("service", "ProgressService"),
		sessionRepo:  sessionRepo,
		progressRepo: progressRepo,
		attemptRepo:  attemptRepo,
		masterySvc:   masterySvc,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

func (s *progressService) StartSession(ctx context.Context, userID, sessionType, level, topic string) (*types.StudySession, error) {
	if sessionType == "" {
		return nil, apierr.New(http.StatusBadRequest, "invalid_input", fmt.Errorf("session_type is required"))
	}

	session := &types.StudySession{
		UserID:      userID,
		SessionType: sessionType,
		Level:       level,
		Topic:       topic,
		StartedAt:   s.now(),
	}
	return s.sessionRepo.Create(ctx, nil, session)
}

// EndSession closes the session and folds its duration into the topic
// record in the same transaction. A session can only be ended once.
func (s *progressService) EndSession(ctx context.Context, userID string, sessionID uuid.UUID, cardsReviewed, questionsAnswered, correctAnswers int) (*types.StudySession, error) {
	var session *types.StudySession
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		session, err = s.sessionRepo.GetByID(ctx, tx, sessionID)
		if err != nil {
			return err
		}
		if session == nil || session.UserID != userID {
			return apierr.New(http.StatusNotFound, "not_found", fmt.Errorf("session %s not found", sessionID))
		}
		if session.EndedAt != nil {
			return apierr.New(http.StatusConflict, "already_ended", fmt.Errorf("session %s already ended", sessionID))
		}

		now := s.now()
		session.EndedAt = &now
		session.DurationMins = int(now.Sub(session.StartedAt).Minutes())
		session.CardsReviewed = cardsReviewed
		session.QuestionsAnswered = questionsAnswered
		session.CorrectAnswers = correctAnswers
		if err := s.sessionRepo.Save(ctx, tx, session); err != nil {
			return err
		}

		return s.masterySvc.AddStudyTime(ctx, tx, userID, session.Level, session.Topic, session.DurationMins, now)
	})
	if err != nil {
		return nil, err
	}
	return session, nil
}

// GetOverallProgress averages mastery across topic records without
// weighting by card counts, and recounts quiz accuracy globally from the
// attempt ledger rather than averaging the per-topic figures.
func (s *progressService) GetOverallProgress(ctx context.Context, userID string) (*OverallProgress, error) {
	items, err := s.progressRepo.ListByUser(ctx, nil, userID)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return &OverallProgress{}, nil
	}

	var masterySum float64
	var timeSum, cardsSum int
	for _, p := range items {
		masterySum += p.MasteryScore
		timeSum += p.TotalTimeMins
		cardsSum += p.CardsMastered
	}

	total, correct, err := s.attemptRepo.CountByUser(ctx, nil, userID)
	if err != nil {
		return nil, err
	}
	accuracy := 0.0
	if total > 0 {
		accuracy = float64(correct) / float64(total) * 100
	}

	return &OverallProgress{
		TotalTopics:       len(items),
		AverageMastery:    round2(masterySum / float64(len(items))),
		TotalTimeSpent:    timeSum,
		CardsMastered:     cardsSum,
		QuizAccuracy:      round2(accuracy),
		TotalQuizAttempts: total,
	}, nil
}

func (s *progressService) GetProgressByLevel(ctx context.Context, userID, level string) ([]TopicProgressSummary, error) {
	items, err := s.progressRepo.ListByUserLevel(ctx, nil, userID, level)
	if err != nil {
		return nil, err
	}

	summaries := make([]TopicProgressSummary, 0, len(items))
	for _, p := range items {
		summaries = append(summaries, TopicProgressSummary{
			Topic:         p.Topic,
			MasteryScore:  p.MasteryScore,
			QuizAccuracy:  p.QuizAccuracy,
			CardsMastered: p.CardsMastered,
			CardsTotal:    p.CardsTotal,
			TimeSpent:     p.TotalTimeMins,
			LastStudied:   p.LastStudied,
		})
	}
	return summaries, nil
}

// GetStreak derives consecutive-study-day stats from closed sessions. A
// session contributes its start date once it has ended.
func (s *progressService) GetStreak(ctx context.Context, userID string) (*StreakInfo, error) {
	sessions, err := s.sessionRepo.ListEnded(ctx, nil, userID)
	if err != nil {
		return nil, err
	}

	studiedAt := make([]time.Time, 0, len(sessions))
	for _, sess := range sessions {
		studiedAt = append(studiedAt, sess.StartedAt)
	}

	streaks := srs.ComputeStreaks(studiedAt, s.now())
	return &StreakInfo{
		CurrentStreak:  streaks.Current,
		LongestStreak:  streaks.Longest,
		TotalStudyDays: streaks.TotalDays,
	}, nil
}

func (s *progressService) GetRecentActivity(ctx context.Context, userID string, days int) ([]ActivityEntry, error) {
	if days <= 0 {
		days = 7
	}
	cutoff := s.now().AddDate(0, 0, -days)

	sessions, err := s.sessionRepo.ListSince(ctx, nil, userID, cutoff)
	if err != nil {
		return nil, err
	}

	entries := make([]ActivityEntry, 0, len(sessions))
	for _, sess := range sessions {
		entry := ActivityEntry{
			Date:              sess.StartedAt,
			SessionType:       sess.SessionType,
			Level:             sess.Level,
			Topic:             sess.Topic,
			DurationMins:      sess.DurationMins,
			CardsReviewed:     sess.CardsReviewed,
			QuestionsAnswered: sess.QuestionsAnswered,
		}
		if sess.QuestionsAnswered > 0 {
			acc := round2(float64(sess.CorrectAnswers) / float64(sess.QuestionsAnswered) * 100)
			entry.Accuracy = &acc
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// GetPerformanceTrends groups attempts and closed sessions by UTC calendar
// date. Histories are fetched once and folded in memory.
func (s *progressService) GetPerformanceTrends(ctx context.Context, userID string, days int) (*PerformanceTrends, error) {
	if days <= 0 {
		days = 30
	}
	cutoff := s.now().AddDate(0, 0, -days)

	attempts, err := s.attemptRepo.ListByUserSince(ctx, nil, userID, cutoff)
	if err != nil {
		return nil, err
	}

	type dayPerf struct {
		total   int
		correct int
	}
	perfByDay := make(map[string]*dayPerf)
	for _, a := range attempts {
		key := srs.DateOf(a.AttemptedAt).Format("2006-01-02")
		dp := perfByDay[key]
		if dp == nil {
			dp = &dayPerf{}
			perfByDay[key] = dp
		}
		dp.total++
		if a.IsCorrect {
			dp.correct++
		}
	}

	perf := make([]DailyQuizPerformance, 0, len(perfByDay))
	for date, dp := range perfByDay {
		perf = append(perf, DailyQuizPerformance{
			Date:           date,
			TotalQuestions: dp.total,
			CorrectAnswers: dp.correct,
			Accuracy:       round2(float64(dp.correct) / float64(dp.total) * 100),
		})
	}
	sort.Slice(perf, func(i, j int) bool { return perf[i].Date < perf[j].Date })

	sessions, err := s.sessionRepo.ListSince(ctx, nil, userID, cutoff)
	if err != nil {
		return nil, err
	}

	minsByDay := make(map[string]int)
	for _, sess := range sessions {
		if sess.EndedAt == nil {
			continue
		}
		key := srs.DateOf(sess.StartedAt).Format("2006-01-02")
		minsByDay[key] += sess.DurationMins
	}

	studyTime := make([]DailyStudyTime, 0, len(minsByDay))
	for date, mins := range minsByDay {
		studyTime = append(studyTime, DailyStudyTime{Date: date, Minutes: mins})
	}
	sort.Slice(studyTime, func(i, j int) bool { return studyTime[i].Date < studyTime[j].Date })

	return &PerformanceTrends{
		QuizPerformance: perf,
		StudyTime:       studyTime,
	}, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
