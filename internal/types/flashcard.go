package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Flashcard struct {
	ID         uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Front      string         `gorm:"column:front;not null" json:"front"`
	Back       string         `gorm:"column:back;not null" json:"back"`
	Level      string         `gorm:"column:level;not null;index" json:"level"`
	Topic      string         `gorm:"column:topic;not null;index" json:"topic"`
	Difficulty string         `gorm:"column:difficulty;not null;default:'medium'" json:"difficulty"`
	Tags       datatypes.JSON `gorm:"column:tags" json:"tags,omitempty"`
	CreatedAt  time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt  time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Flashcard) TableName() string { return "flashcard" }

// BeforeCreate assigns the ID in code so the same models work on SQLite,
// which has no uuid_generate_v4().
func (f *Flashcard) BeforeCreate(tx *gorm.DB) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	return nil
}
