package postgres

import (
	"context"
	"fmt"

	"github.com/SAP-F-2025/ielts-trainer/internal/models"
	"github.com/SAP-F-2025/ielts-trainer/internal/repositories"
	"gorm.io/gorm"
)

type ProfilePostgreSQL struct {
	db *gorm.DB
}

func NewProfilePostgreSQL(db *gorm.DB) repositories.ProfileRepository {
	return &ProfilePostgreSQL{db: db}
}

func (p *ProfilePostgreSQL) GetByID(ctx context.Context, id string) (*models.Profile, error) {
	var profile models.Profile
	if err := p.db.WithContext(ctx).Where("id = ?", id).First(&profile).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

func (p *ProfilePostgreSQL) GetByEmail(ctx context.Context, email string) (*models.Profile, error) {
	var profile models.Profile
	if err := p.db.WithContext(ctx).Where("LOWER(email) = LOWER(?)", email).First(&profile).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

func (p *ProfilePostgreSQL) Create(ctx context.Context, profile *models.Profile) error {
	if err := p.db.WithContext(ctx).Create(profile).Error; err != nil {
		return fmt.Errorf("failed to create profile: %w", err)
	}
	return nil
}
