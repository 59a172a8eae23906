package postgres

import (
	"context"
	"fmt"

	"github.com/SAP-F-2025/ielts-trainer/internal/models"
	"github.com/SAP-F-2025/ielts-trainer/internal/repositories"
	"gorm.io/gorm"
)

type HistoryPostgreSQL struct {
	db *gorm.DB
}

func NewHistoryPostgreSQL(db *gorm.DB) repositories.HistoryRepository {
	return &HistoryPostgreSQL{db: db}
}

func (h *HistoryPostgreSQL) Create(ctx context.Context, record *models.HistoryRecord) error {
	if err := h.db.WithContext(ctx).Create(record).Error; err != nil {
		return fmt.Errorf("failed to append history: %w", err)
	}
	return nil
}

// GetStats summarizes a user's answers
func (h *HistoryPostgreSQL) GetStats(ctx context.Context, userID string) (*repositories.HistoryStats, error) {
	var row struct {
		Total   int64
		Correct int64
	}
	err := h.db.WithContext(ctx).
		Model(&models.HistoryRecord{}).
		Select("COUNT(*) AS total, COALESCE(SUM(CASE WHEN is_correct THEN 1 ELSE 0 END), 0) AS correct").
		Where("user_id = ?", userID).
		Scan(&row).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get history stats: %w", err)
	}

	stats := &repositories.HistoryStats{
		TotalAnswers:   row.Total,
		CorrectAnswers: row.Correct,
	}
	if row.Total > 0 {
		stats.Accuracy = float64(row.Correct) / float64(row.Total) * 100
	}
	return stats, nil
}
