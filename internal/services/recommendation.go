package services

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"gorm.io/gorm"

	"github.com/prepdeck/prepdeck-backend/internal/logger"
	"github.com/prepdeck/prepdeck-backend/internal/repos"
)

const (
	weakTopicAdvice      = "Focus on practice questions"
	unstudiedTopicAdvice = "Start with flashcards"
	encouragementAdvice  = "Great progress! Continue with your study plan"
)

type WeakTopicRecommendation struct {
	Level          string  `json:"level"`
	Topic          string  `json:"topic"`
	Accuracy       float64 `json:"accuracy"`
	Recommendation string  `json:"recommendation"`
}

type UnstudiedTopicRecommendation struct {
	Level          string `json:"level"`
	Topic          string `json:"topic"`
	Recommendation string `json:"recommendation"`
}

type Recommendations struct {
	WeakTopics      []WeakTopicRecommendation      `json:"weak_topics"`
	UnstudiedTopics []UnstudiedTopicRecommendation `json:"unstudied_topics"`
	DueFlashcards   int                            `json:"due_flashcards"`
	Summary         string                         `json:"recommendation_summary"`
}

// RecommendationService is a rule layer over aggregated mastery state; it
// owns no state of its own.
type RecommendationService interface {
	GetRecommendations(ctx context.Context, userID string) (*Recommendations, error)
	GetTopicIndex(ctx context.Context) (map[string][]string, error)
}

type recommendationService struct {
	db           *gorm.DB
	log          *logger.Logger
	progressRepo repos.TopicProgressRepo
	cardRepo     repos.FlashcardRepo
	questionRepo repos.QuizQuestionRepo
	flashcardSvc FlashcardService
}

func NewRecommendationService(db *gorm.DB, baseLog *logger.Logger, progressRepo repos.TopicProgressRepo, cardRepo repos.FlashcardRepo, questionRepo repos.QuizQuestionRepo, flashcardSvc FlashcardService) RecommendationService {
	return &recommendationService{
		db:           db,
		log:          baseLog.With("service", "RecommendationService"),
		progressRepo: progressRepo,
		cardRepo:     cardRepo,
		questionRepo: questionRepo,
		flashcardSvc: flashcardSvc,
	}
}

func (s *recommendationService) GetRecommendations(ctx context.Context, userID string) (*Recommendations, error) {
	weak, err := s.progressRepo.ListWeak(ctx, nil, userID, WeakTopicAccuracyThreshold, 3)
	if err != nil {
		return nil, err
	}

	weakRecs := make([]WeakTopicRecommendation, 0, len(weak))
	for _, p := range weak {
		weakRecs = append(weakRecs, WeakTopicRecommendation{
			Level:          p.Level,
			Topic:          p.Topic,
			Accuracy:       p.QuizAccuracy,
			Recommendation: weakTopicAdvice,
		})
	}

	unstudied, err := s.unstudiedTopics(ctx, userID, 3)
	if err != nil {
		return nil, err
	}

	due, err := s.flashcardSvc.GetDueFlashcards(ctx, userID, 1000)
	if err != nil {
		return nil, err
	}

	return &Recommendations{
		WeakTopics:      weakRecs,
		UnstudiedTopics: unstudied,
		DueFlashcards:   len(due),
		Summary:         buildSummary(weakRecs, len(due)),
	}, nil
}

// GetTopicIndex returns every level with the topics that have any stored
// content, across both flashcards and quiz questions.
func (s *recommendationService) GetTopicIndex(ctx context.Context) (map[string][]string, error) {
	cardTopics, err := s.cardRepo.DistinctLevelTopics(ctx, nil)
	if err != nil {
		return nil, err
	}
	questionTopics, err := s.questionRepo.DistinctLevelTopics(ctx, nil)
	if err != nil {
		return nil, err
	}

	seen := make(map[repos.LevelTopic]bool)
	index := make(map[string][]string)
	for _, lt := range append(cardTopics, questionTopics...) {
		if seen[lt] {
			continue
		}
		seen[lt] = true
		index[lt.Level] = append(index[lt.Level], lt.Topic)
	}
	for _, topics := range index {
		sort.Strings(topics)
	}
	return index, nil
}

// unstudiedTopics is the set difference between (level, topic) pairs with
// any stored content and pairs the user has a progress record for.
func (s *recommendationService) unstudiedTopics(ctx context.Context, userID string, limit int) ([]UnstudiedTopicRecommendation, error) {
	cardTopics, err := s.cardRepo.DistinctLevelTopics(ctx, nil)
	if err != nil {
		return nil, err
	}
	questionTopics, err := s.questionRepo.DistinctLevelTopics(ctx, nil)
	if err != nil {
		return nil, err
	}

	available := make([]repos.LevelTopic, 0, len(cardTopics)+len(questionTopics))
	seen := make(map[repos.LevelTopic]bool)
	for _, lt := range append(cardTopics, questionTopics...) {
		if !seen[lt] {
			seen[lt] = true
			available = append(available, lt)
		}
	}

	progress, err := s.progressRepo.ListByUser(ctx, nil, userID)
	if err != nil {
		return nil, err
	}
	studied := make(map[repos.LevelTopic]bool, len(progress))
	for _, p := range progress {
		studied[repos.LevelTopic{Level: p.Level, Topic: p.Topic}] = true
	}

	recs := make([]UnstudiedTopicRecommendation, 0, limit)
	for _, lt := range available {
		if studied[lt] {
			continue
		}
		recs = append(recs, UnstudiedTopicRecommendation{
			Level:          lt.Level,
			Topic:          lt.Topic,
			Recommendation: unstudiedTopicAdvice,
		})
		if len(recs) == limit {
			break
		}
	}
	return recs, nil
}

// buildSummary concatenates the actionable fragments with ". ", falling
// back to encouragement when nothing needs attention.
func buildSummary(weak []WeakTopicRecommendation, dueCount int) string {
	var fragments []string

	if dueCount > 0 {
		fragments = append(fragments, fmt.Sprintf("Review %d due flashcards", dueCount))
	}
	if len(weak) > 0 {
		names := make([]string, 0, 2)
		for _, w := range weak {
			names = append(names, w.Topic)
			if len(names) == 2 {
				break
			}
		}
		fragments = append(fragments, fmt.Sprintf("Practice more questions on: %s", strings.Join(names, ", ")))
	}
	if len(fragments) == 0 {
		fragments = append(fragments, encouragementAdvice)
	}

	return strings.Join(fragments, ". ")
}
