package repository

import (
	"context"
	"errors"
	"fmt"

	"bookwise/internal/http-api/models"

	"gorm.io/gorm"
)

type AuthorRepository interface {
	Create(ctx context.Context, author *models.Author) error
	// FindByNameFold looks up an author by name, case-insensitively.
	// Returns (nil, nil) when no author matches.
	FindByNameFold(ctx context.Context, name string) (*models.Author, error)
}

type authorRepository struct {
	db *gorm.DB
}

func NewAuthorRepository(db *gorm.DB) AuthorRepository {
	return &authorRepository{db: db}
}

func (r *authorRepository) Create(ctx context.Context, author *models.Author) error {
	if err := r.db.WithContext(ctx).Create(author).Error; err != nil {
		return fmt.Errorf("create author: %w", err)
	}
	return nil
}

func (r *authorRepository) FindByNameFold(ctx context.Context, name string) (*models.Author, error) {
	var author models.Author
	err := r.db.WithContext(ctx).
		Where("LOWER(name) = LOWER(?)", name).
		First(&author).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("find author: %w", err)
	}
	return &author, nil
}
