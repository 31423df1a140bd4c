package repository

import (
	"context"
	"fmt"

	"bookwise/internal/http-api/models"

	"gorm.io/gorm"
)

// UserBookFilter narrows user-book listings. Nil fields are ignored.
type UserBookFilter struct {
	Status        *string
	IsRecommended *bool
}

type UserBookRepository interface {
	Create(ctx context.Context, userBook *models.UserBook) error
	GetByID(ctx context.Context, id string) (*models.UserBook, error)
	Exists(ctx context.Context, userID, bookID string) (bool, error)
	// List returns one page of a user's books joined with book and author
	// data, newest first, plus the total row count for the filter.
	List(ctx context.Context, userID string, filter UserBookFilter, page, limit int) ([]models.UserBook, int64, error)
	// ListByStatus returns all of a user's books in the given status with
	// book and author data, for prompt building.
	ListByStatus(ctx context.Context, userID, status string) ([]models.UserBook, error)
	Update(ctx context.Context, userBook *models.UserBook) error
	Delete(ctx context.Context, id string) error
}

type userBookRepository struct {
	db *gorm.DB
}

func NewUserBookRepository(db *gorm.DB) UserBookRepository {
	return &userBookRepository{db: db}
}

func (r *userBookRepository) Create(ctx context.Context, userBook *models.UserBook) error {
	if err := r.db.WithContext(ctx).Create(userBook).Error; err != nil {
		return fmt.Errorf("create user book: %w", err)
	}
	return nil
}

func (r *userBookRepository) GetByID(ctx context.Context, id string) (*models.UserBook, error) {
	var userBook models.UserBook
	err := r.db.WithContext(ctx).
		Preload("Book").
		Preload("Book.Authors").
		First(&userBook, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &userBook, nil
}

func (r *userBookRepository) Exists(ctx context.Context, userID, bookID string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.UserBook{}).
		Where("user_id = ? AND book_id = ?", userID, bookID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *userBookRepository) List(ctx context.Context, userID string, filter UserBookFilter, page, limit int) ([]models.UserBook, int64, error) {
	query := r.db.WithContext(ctx).
		Model(&models.UserBook{}).
		Where("user_id = ?", userID)

	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.IsRecommended != nil {
		query = query.Where("is_recommended = ?", *filter.IsRecommended)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count user books: %w", err)
	}

	var userBooks []models.UserBook
	if err := query.
		Preload("Book").
		Preload("Book.Authors").
		Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&userBooks).Error; err != nil {
		return nil, 0, fmt.Errorf("list user books: %w", err)
	}

	return userBooks, total, nil
}

func (r *userBookRepository) ListByStatus(ctx context.Context, userID, status string) ([]models.UserBook, error) {
	var userBooks []models.UserBook
	if err := r.db.WithContext(ctx).
		Preload("Book").
		Preload("Book.Authors").
		Where("user_id = ? AND status = ?", userID, status).
		Order("created_at DESC").
		Find(&userBooks).Error; err != nil {
		return nil, fmt.Errorf("list user books by status: %w", err)
	}
	return userBooks, nil
}

func (r *userBookRepository) Update(ctx context.Context, userBook *models.UserBook) error {
	if err := r.db.WithContext(ctx).Save(userBook).Error; err != nil {
		return fmt.Errorf("update user book: %w", err)
	}
	return nil
}

func (r *userBookRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Delete(&models.UserBook{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("delete user book: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
