package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// FlashcardReview is one grading event. Rows are append-only: the latest row
// per (flashcard, user) is the card's current scheduling state, there is no
// separate state table.
type FlashcardReview struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	FlashcardID uuid.UUID      `gorm:"type:uuid;not null;index:idx_review_card_user" json:"flashcard_id"`
	Flashcard   *Flashcard     `gorm:"constraint:OnDelete:CASCADE;foreignKey:FlashcardID;references:ID" json:"flashcard,omitempty"`
	UserID      string         `gorm:"column:user_id;not null;index:idx_review_card_user;index" json:"user_id"`
	Quality     int            `gorm:"column:quality;not null" json:"quality"`
	EaseFactor  float64        `gorm:"column:ease_factor;not null;default:2.5" json:"ease_factor"`
	Interval    int            `gorm:"column:interval_days;not null;default:1" json:"interval_days"`
	Repetitions int            `gorm:"column:repetitions;not null;default:0" json:"repetitions"`
	NextReview  time.Time      `gorm:"column:next_review;not null;index" json:"next_review"`
	ReviewedAt  time.Time      `gorm:"column:reviewed_at;not null;index" json:"reviewed_at"`
	CreatedAt   time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (FlashcardReview) TableName() string { return "flashcard_review" }

func (r *FlashcardReview) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
