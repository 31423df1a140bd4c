package repository

import (
	"context"
	"fmt"

	"bookwise/internal/http-api/models"

	"gorm.io/gorm"
)

type RecommendationRepository interface {
	Create(ctx context.Context, rec *models.Recommendation) error
	GetByID(ctx context.Context, id string) (*models.Recommendation, error)
	// GetByIDWithBook returns the recommendation joined with its book and
	// that book's authors.
	GetByIDWithBook(ctx context.Context, id string) (*models.Recommendation, error)
	HasPending(ctx context.Context, userID string) (bool, error)
	// List returns one page of a user's recommendations, newest first,
	// optionally filtered by status, plus the total row count.
	List(ctx context.Context, userID string, status *string, page, limit int) ([]models.Recommendation, int64, error)
	UpdateStatus(ctx context.Context, id, status string) error
}

type recommendationRepository struct {
	db *gorm.DB
}

func NewRecommendationRepository(db *gorm.DB) RecommendationRepository {
	return &recommendationRepository{db: db}
}

func (r *recommendationRepository) Create(ctx context.Context, rec *models.Recommendation) error {
	if err := r.db.WithContext(ctx).Create(rec).Error; err != nil {
		return fmt.Errorf("create recommendation: %w", err)
	}
	return nil
}

func (r *recommendationRepository) GetByID(ctx context.Context, id string) (*models.Recommendation, error) {
	var rec models.Recommendation
	if err := r.db.WithContext(ctx).First(&rec, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *recommendationRepository) GetByIDWithBook(ctx context.Context, id string) (*models.Recommendation, error) {
	var rec models.Recommendation
	err := r.db.WithContext(ctx).
		Preload("Book").
		Preload("Book.Authors").
		First(&rec, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *recommendationRepository) HasPending(ctx context.Context, userID string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Recommendation{}).
		Where("user_id = ? AND status = ?", userID, models.RecommendationStatusPending).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *recommendationRepository) List(ctx context.Context, userID string, status *string, page, limit int) ([]models.Recommendation, int64, error) {
	query := r.db.WithContext(ctx).
		Model(&models.Recommendation{}).
		Where("user_id = ?", userID)

	if status != nil {
		query = query.Where("status = ?", *status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count recommendations: %w", err)
	}

	var recs []models.Recommendation
	if err := query.
		Preload("Book").
		Preload("Book.Authors").
		Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&recs).Error; err != nil {
		return nil, 0, fmt.Errorf("list recommendations: %w", err)
	}

	return recs, total, nil
}

func (r *recommendationRepository) UpdateStatus(ctx context.Context, id, status string) error {
	return r.db.WithContext(ctx).
		Model(&models.Recommendation{}).
		Where("id = ?", id).
		Update("status", status).Error
}
