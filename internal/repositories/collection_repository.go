package repositories

import (
	"context"

	"github.com/SAP-F-2025/ielts-trainer/internal/models"
)

// CollectionRepository stores one per-user question collection (favorites or wrong-book).
type CollectionRepository interface {
	Kind() models.CollectionKind
	Exists(ctx context.Context, userID, questionID string) (bool, error)
	Add(ctx context.Context, userID, questionID string) error
	// Remove deletes the (user, question) pair. A missing pair returns ErrNotFound.
	Remove(ctx context.Context, userID, questionID string) error
	// List returns the user's entries newest first
	List(ctx context.Context, userID string) ([]models.CollectionEntry, error)
}

// HistoryRepository appends graded submissions
type HistoryRepository interface {
	Create(ctx context.Context, record *models.HistoryRecord) error
	GetStats(ctx context.Context, userID string) (*HistoryStats, error)
}

type HistoryStats struct {
	TotalAnswers   int64   `json:"total_answers"`
	CorrectAnswers int64   `json:"correct_answers"`
	Accuracy       float64 `json:"accuracy"`
}
