package postgres

import (
	"context"
	"fmt"

	"github.com/SAP-F-2025/ielts-trainer/internal/models"
	"github.com/SAP-F-2025/ielts-trainer/internal/repositories"
	"gorm.io/gorm"
)

// CollectionPostgreSQL serves both the favorites and the wrong_book tables.
// They share a shape, so only the row constructor differs.
type CollectionPostgreSQL struct {
	db     *gorm.DB
	kind   models.CollectionKind
	table  string
	newRow func(userID, questionID string) interface{}
}

func NewFavoritesPostgreSQL(db *gorm.DB) repositories.CollectionRepository {
	return &CollectionPostgreSQL{
		db:    db,
		kind:  models.CollectionFavorites,
		table: models.FavoriteEntry{}.TableName(),
		newRow: func(userID, questionID string) interface{} {
			return &models.FavoriteEntry{UserID: userID, QuestionID: questionID}
		},
	}
}

func NewWrongBookPostgreSQL(db *gorm.DB) repositories.CollectionRepository {
	return &CollectionPostgreSQL{
		db:    db,
		kind:  models.CollectionWrongBook,
		table: models.WrongBookEntry{}.TableName(),
		newRow: func(userID, questionID string) interface{} {
			return &models.WrongBookEntry{UserID: userID, QuestionID: questionID}
		},
	}
}

func (c *CollectionPostgreSQL) Kind() models.CollectionKind {
	return c.kind
}

func (c *CollectionPostgreSQL) Exists(ctx context.Context, userID, questionID string) (bool, error) {
	var count int64
	err := c.db.WithContext(ctx).
		Table(c.table).
		Where("user_id = ? AND question_id = ?", userID, questionID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check %s entry: %w", c.kind, err)
	}
	return count > 0, nil
}

func (c *CollectionPostgreSQL) Add(ctx context.Context, userID, questionID string) error {
	if err := c.db.WithContext(ctx).Create(c.newRow(userID, questionID)).Error; err != nil {
		return fmt.Errorf("failed to add %s entry: %w", c.kind, err)
	}
	return nil
}

func (c *CollectionPostgreSQL) Remove(ctx context.Context, userID, questionID string) error {
	result := c.db.WithContext(ctx).
		Where("user_id = ? AND question_id = ?", userID, questionID).
		Delete(c.newRow("", ""))
	if result.Error != nil {
		return fmt.Errorf("failed to remove %s entry: %w", c.kind, result.Error)
	}
	if result.RowsAffected == 0 {
		return repositories.ErrNotFound
	}
	return nil
}

func (c *CollectionPostgreSQL) List(ctx context.Context, userID string) ([]models.CollectionEntry, error) {
	var entries []models.CollectionEntry
	err := c.db.WithContext(ctx).
		Table(c.table).
		Select("user_id, question_id, created_at").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Scan(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list %s entries: %w", c.kind, err)
	}
	return entries, nil
}
