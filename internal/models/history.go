package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// HistoryRecord is one graded submission. Rows are append-only.
type HistoryRecord struct {
	ID         string    `json:"id" gorm:"primaryKey;size:36"`
	UserID     string    `json:"user_id" gorm:"not null;size:36;index"`
	QuestionID string    `json:"question_id" gorm:"not null;size:36;index"`
	UserAnswer string    `json:"user_answer" gorm:"type:text"`
	IsCorrect  bool      `json:"is_correct"`
	CreatedAt  time.Time `json:"created_at"`
}

func (HistoryRecord) TableName() string {
	return "history"
}

func (h *HistoryRecord) BeforeCreate(tx *gorm.DB) error {
	if h.ID == "" {
		h.ID = uuid.NewString()
	}
	return nil
}
