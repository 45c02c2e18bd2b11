package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// QuizAttempt is one answer submission. Append-only.
type QuizAttempt struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	QuestionID  uuid.UUID      `gorm:"type:uuid;not null;index:idx_attempt_question_user" json:"question_id"`
	Question    *QuizQuestion  `gorm:"constraint:OnDelete:CASCADE;foreignKey:QuestionID;references:ID" json:"question,omitempty"`
	UserID      string         `gorm:"column:user_id;not null;index:idx_attempt_question_user;index" json:"user_id"`
	UserAnswer  string         `gorm:"column:user_answer;not null" json:"user_answer"`
	IsCorrect   bool           `gorm:"column:is_correct;not null;index" json:"is_correct"`
	TimeTaken   int            `gorm:"column:time_taken_secs;not null;default:0" json:"time_taken_secs"`
	AttemptedAt time.Time      `gorm:"column:attempted_at;not null;index" json:"attempted_at"`
	CreatedAt   time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (QuizAttempt) TableName() string { return "quiz_attempt" }

func (a *QuizAttempt) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
