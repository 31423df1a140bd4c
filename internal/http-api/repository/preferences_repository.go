package repository

import (
	"context"
	"errors"
	"fmt"

	"bookwise/internal/http-api/models"

	"gorm.io/gorm"
)

type PreferencesRepository interface {
	// GetByUserID returns (nil, nil) when the user has no preferences row.
	GetByUserID(ctx context.Context, userID string) (*models.UserPreferences, error)
	Create(ctx context.Context, prefs *models.UserPreferences) error
	Update(ctx context.Context, prefs *models.UserPreferences) error
}

type preferencesRepository struct {
	db *gorm.DB
}

func NewPreferencesRepository(db *gorm.DB) PreferencesRepository {
	return &preferencesRepository{db: db}
}

func (r *preferencesRepository) GetByUserID(ctx context.Context, userID string) (*models.UserPreferences, error) {
	var prefs models.UserPreferences
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&prefs).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get preferences: %w", err)
	}
	return &prefs, nil
}

func (r *preferencesRepository) Create(ctx context.Context, prefs *models.UserPreferences) error {
	if err := r.db.WithContext(ctx).Create(prefs).Error; err != nil {
		return fmt.Errorf("create preferences: %w", err)
	}
	return nil
}

func (r *preferencesRepository) Update(ctx context.Context, prefs *models.UserPreferences) error {
	if err := r.db.WithContext(ctx).Save(prefs).Error; err != nil {
		return fmt.Errorf("update preferences: %w", err)
	}
	return nil
}
