package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TopicProgress is the per-(user, level, topic) mastery record shared by the
// flashcard and quiz paths. Created lazily on first activity, updated only
// through the mastery service, never deleted.
type TopicProgress struct {
	ID            uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID        string         `gorm:"column:user_id;not null;index:idx_user_level_topic,unique" json:"user_id"`
	Level         string         `gorm:"column:level;not null;index:idx_user_level_topic,unique" json:"level"`
	Topic         string         `gorm:"column:topic;not null;index:idx_user_level_topic,unique" json:"topic"`
	MasteryScore  float64        `gorm:"column:mastery_score;not null;default:0" json:"mastery_score"`
	CardsMastered int            `gorm:"column:cards_mastered;not null;default:0" json:"cards_mastered"`
	CardsTotal    int            `gorm:"column:cards_total;not null;default:0" json:"cards_total"`
	QuizAccuracy  float64        `gorm:"column:quiz_accuracy;not null;default:0" json:"quiz_accuracy"`
	TotalTimeMins int            `gorm:"column:total_time_mins;not null;default:0" json:"total_time_mins"`
	LastStudied   *time.Time     `gorm:"column:last_studied" json:"last_studied,omitempty"`
	CreatedAt     time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt     time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (TopicProgress) TableName() string { return "topic_progress" }

func (p *TopicProgress) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
