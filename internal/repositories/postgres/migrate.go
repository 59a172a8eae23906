package postgres

import (
	"context"
	"fmt"

	"github.com/SAP-F-2025/ielts-trainer/internal/models"
	"gorm.io/gorm"
)

// randomQuestionsFunction is the selection routine the question source calls.
// 'mixed' or a NULL category matches every category; a NULL difficulty matches every level.
const randomQuestionsFunction = `
CREATE OR REPLACE FUNCTION get_random_questions(p_category text, p_difficulty text, p_limit integer)
RETURNS SETOF ielts_questions
LANGUAGE sql
STABLE
AS $$
	SELECT *
	FROM ielts_questions
	WHERE (p_category IS NULL OR p_category = 'mixed' OR category = p_category)
	  AND (p_difficulty IS NULL OR difficulty = p_difficulty)
	ORDER BY random()
	LIMIT GREATEST(p_limit, 1);
$$;`

// Migrate creates the tables and, on Postgres, the random selection function.
func Migrate(ctx context.Context, db *gorm.DB) error {
	if err := db.WithContext(ctx).AutoMigrate(models.AllModels()...); err != nil {
		return fmt.Errorf("failed to migrate tables: %w", err)
	}

	if db.Dialector.Name() != "postgres" {
		return nil
	}
	if err := db.WithContext(ctx).Exec(randomQuestionsFunction).Error; err != nil {
		return fmt.Errorf("failed to create get_random_questions: %w", err)
	}
	return nil
}
