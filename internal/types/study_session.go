package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type StudySession struct {
	ID                uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID            string         `gorm:"column:user_id;not null;index" json:"user_id"`
	SessionType       string         `gorm:"column:session_type;not null" json:"session_type"`
	Level             string         `gorm:"column:level;not null" json:"level"`
	Topic             string         `gorm:"column:topic;not null" json:"topic"`
	DurationMins      int            `gorm:"column:duration_mins;not null;default:0" json:"duration_mins"`
	CardsReviewed     int            `gorm:"column:cards_reviewed;not null;default:0" json:"cards_reviewed"`
	QuestionsAnswered int            `gorm:"column:questions_answered;not null;default:0" json:"questions_answered"`
	CorrectAnswers    int            `gorm:"column:correct_answers;not null;default:0" json:"correct_answers"`
	StartedAt         time.Time      `gorm:"column:started_at;not null;index" json:"started_at"`
	EndedAt           *time.Time     `gorm:"column:ended_at" json:"ended_at,omitempty"`
	CreatedAt         time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt         time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt         gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (StudySession) TableName() string { return "study_session" }

func (s *StudySession) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
