package repository

import (
	"context"
	"errors"
	"fmt"

	"bookwise/internal/http-api/models"

	"gorm.io/gorm"
)

type BookRepository interface {
	Create(ctx context.Context, book *models.Book) error
	// FindByTitleAndLanguage matches by exact title+language. Returns
	// (nil, nil) when no book matches.
	FindByTitleAndLanguage(ctx context.Context, title, language string) (*models.Book, error)
	GetByID(ctx context.Context, id string) (*models.Book, error)
	LinkAuthors(ctx context.Context, bookID string, authorIDs []string) error
}

type bookRepository struct {
	db *gorm.DB
}

func NewBookRepository(db *gorm.DB) BookRepository {
	return &bookRepository{db: db}
}

func (r *bookRepository) Create(ctx context.Context, book *models.Book) error {
	if err := r.db.WithContext(ctx).Create(book).Error; err != nil {
		return fmt.Errorf("create book: %w", err)
	}
	return nil
}

func (r *bookRepository) FindByTitleAndLanguage(ctx context.Context, title, language string) (*models.Book, error) {
	var book models.Book
	err := r.db.WithContext(ctx).
		Where("title = ? AND language = ?", title, language).
		First(&book).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("find book: %w", err)
	}
	return &book, nil
}

func (r *bookRepository) GetByID(ctx context.Context, id string) (*models.Book, error) {
	var book models.Book
	if err := r.db.WithContext(ctx).Preload("Authors").First(&book, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &book, nil
}

func (r *bookRepository) LinkAuthors(ctx context.Context, bookID string, authorIDs []string) error {
	if len(authorIDs) == 0 {
		return nil
	}
	relations := make([]models.BookAuthor, 0, len(authorIDs))
	for _, authorID := range authorIDs {
		relations = append(relations, models.BookAuthor{
			BookID:   bookID,
			AuthorID: authorID,
		})
	}
	if err := r.db.WithContext(ctx).Create(&relations).Error; err != nil {
		return fmt.Errorf("link authors: %w", err)
	}
	return nil
}
