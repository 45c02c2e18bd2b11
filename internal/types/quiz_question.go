package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type QuizQuestion struct {
	ID            uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Question      string         `gorm:"column:question;not null" json:"question"`
	OptionA       string         `gorm:"column:option_a;not null" json:"option_a"`
	OptionB       string         `gorm:"column:option_b;not null" json:"option_b"`
	OptionC       string         `gorm:"column:option_c;not null" json:"option_c"`
	OptionD       *string        `gorm:"column:option_d" json:"option_d,omitempty"`
	CorrectAnswer string         `gorm:"column:correct_answer;not null" json:"correct_answer"`
	Explanation   string         `gorm:"column:explanation" json:"explanation"`
	Level         string         `gorm:"column:level;not null;index" json:"level"`
	Topic         string         `gorm:"column:topic;not null;index" json:"topic"`
	Difficulty    string         `gorm:"column:difficulty;not null;default:'medium'" json:"difficulty"`
	QuestionType  string         `gorm:"column:question_type;not null;default:'multiple_choice'" json:"question_type"`
	Tags          datatypes.JSON `gorm:"column:tags" json:"tags,omitempty"`
	CreatedAt     time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt     time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (QuizQuestion) TableName() string { return "quiz_question" }

func (q *QuizQuestion) BeforeCreate(tx *gorm.DB) error {
	if q.ID == uuid.Nil {
		q.ID = uuid.New()
	}
	return nil
}
