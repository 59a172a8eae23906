package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CollectionKind names one of the two per-user question collections.
type CollectionKind string

const (
	CollectionFavorites CollectionKind = "favorites"
	CollectionWrongBook CollectionKind = "wrong_book"
)

func (k CollectionKind) Valid() bool {
	return k == CollectionFavorites || k == CollectionWrongBook
}

// WrongBookEntry marks a question the user answered incorrectly.
// At most one entry exists per (user, question); callers check before inserting.
type WrongBookEntry struct {
	ID         string    `json:"id" gorm:"primaryKey;size:36"`
	UserID     string    `json:"user_id" gorm:"not null;size:36;index:idx_wrong_book_user_question"`
	QuestionID string    `json:"question_id" gorm:"not null;size:36;index:idx_wrong_book_user_question"`
	CreatedAt  time.Time `json:"created_at"`
}

func (WrongBookEntry) TableName() string {
	return "wrong_book"
}

func (e *WrongBookEntry) BeforeCreate(tx *gorm.DB) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	return nil
}

// FavoriteEntry exists while the user has the question favorited.
type FavoriteEntry struct {
	ID         string    `json:"id" gorm:"primaryKey;size:36"`
	UserID     string    `json:"user_id" gorm:"not null;size:36;index:idx_favorites_user_question"`
	QuestionID string    `json:"question_id" gorm:"not null;size:36;index:idx_favorites_user_question"`
	CreatedAt  time.Time `json:"created_at"`
}

func (FavoriteEntry) TableName() string {
	return "favorites"
}

func (e *FavoriteEntry) BeforeCreate(tx *gorm.DB) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	return nil
}

// CollectionEntry is the kind-agnostic view of a favorites or wrong-book row.
type CollectionEntry struct {
	UserID     string    `json:"user_id"`
	QuestionID string    `json:"question_id"`
	CreatedAt  time.Time `json:"created_at"`
}
