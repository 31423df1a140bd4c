package service

import (
	"context"
	"errors"
	"fmt"

	"bookwise/internal/http-api/dto"
	"bookwise/internal/http-api/models"
	"bookwise/internal/http-api/repository"

	"gorm.io/gorm"
)

type UserBookService interface {
	Create(ctx context.Context, userID string, req dto.CreateUserBookRequest) (*dto.UserBookResponse, error)
	List(ctx context.Context, userID string, filter repository.UserBookFilter, page, limit int) (*dto.PaginatedUserBooksResponse, error)
	Update(ctx context.Context, id, userID string, req dto.UpdateUserBookRequest) (*dto.UserBookResponse, error)
	Delete(ctx context.Context, id, userID string) error
}

type userBookService struct {
	userBookRepo repository.UserBookRepository
	bookRepo     repository.BookRepository
	authorRepo   repository.AuthorRepository
}

func NewUserBookService(
	userBookRepo repository.UserBookRepository,
	bookRepo repository.BookRepository,
	authorRepo repository.AuthorRepository,
) UserBookService {
	return &userBookService{
		userBookRepo: userBookRepo,
		bookRepo:     bookRepo,
		authorRepo:   authorRepo,
	}
}

// Create tracks a book for the user. An existing book is reused when title
// and language match exactly; otherwise the book and any missing authors
// are created first.
func (s *userBookService) Create(ctx context.Context, userID string, req dto.CreateUserBookRequest) (*dto.UserBookResponse, error) {
	if req.Status == models.UserBookStatusRead && req.Rating == nil {
		return nil, ErrRatingRequired
	}

	book, err := s.bookRepo.FindByTitleAndLanguage(ctx, req.Book.Title, req.Book.Language)
	if err != nil {
		return nil, err
	}

	if book == nil {
		book = &models.Book{
			Title:    req.Book.Title,
			Language: req.Book.Language,
		}
		if err := s.bookRepo.Create(ctx, book); err != nil {
			return nil, err
		}

		// Sequential create-if-absent keeps author names deduplicated
		// without locking.
		authorIDs := make([]string, 0, len(req.Book.Authors))
		for _, in := range req.Book.Authors {
			author, err := s.authorRepo.FindByNameFold(ctx, in.Name)
			if err != nil {
				return nil, err
			}
			if author == nil {
				author = &models.Author{Name: in.Name}
				if err := s.authorRepo.Create(ctx, author); err != nil {
					return nil, err
				}
			}
			authorIDs = append(authorIDs, author.ID)
		}
		if err := s.bookRepo.LinkAuthors(ctx, book.ID, authorIDs); err != nil {
			return nil, err
		}
	}

	exists, err := s.userBookRepo.Exists(ctx, userID, book.ID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrAlreadyInCollection
	}

	userBook := &models.UserBook{
		UserID:           userID,
		BookID:           book.ID,
		Status:           req.Status,
		Rating:           req.Rating,
		IsRecommended:    req.RecommendationID != nil,
		RecommendationID: req.RecommendationID,
	}
	if err := s.userBookRepo.Create(ctx, userBook); err != nil {
		return nil, err
	}

	created, err := s.userBookRepo.GetByID(ctx, userBook.ID)
	if err != nil {
		return nil, fmt.Errorf("reload user book: %w", err)
	}

	resp := dto.FromUserBookModel(*created)
	return &resp, nil
}

func (s *userBookService) List(ctx context.Context, userID string, filter repository.UserBookFilter, page, limit int) (*dto.PaginatedUserBooksResponse, error) {
	userBooks, total, err := s.userBookRepo.List(ctx, userID, filter, page, limit)
	if err != nil {
		return nil, err
	}

	data := make([]dto.UserBookResponse, 0, len(userBooks))
	for _, ub := range userBooks {
		data = append(data, dto.FromUserBookModel(ub))
	}

	return &dto.PaginatedUserBooksResponse{
		Data:       data,
		Pagination: dto.NewPagination(total, page, limit),
	}, nil
}

// Update changes status and/or rating of a tracked book, e.g. moving a
// rejected book back to the to-read list or rating a finished one.
func (s *userBookService) Update(ctx context.Context, id, userID string, req dto.UpdateUserBookRequest) (*dto.UserBookResponse, error) {
	userBook, err := s.getOwned(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	if req.Status != nil {
		userBook.Status = *req.Status
	}
	if req.Rating != nil {
		userBook.Rating = req.Rating
	}

	if userBook.Status == models.UserBookStatusRead && userBook.Rating == nil {
		return nil, ErrRatingRequired
	}

	if err := s.userBookRepo.Update(ctx, userBook); err != nil {
		return nil, err
	}

	updated, err := s.userBookRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("reload user book: %w", err)
	}

	resp := dto.FromUserBookModel(*updated)
	return &resp, nil
}

func (s *userBookService) Delete(ctx context.Context, id, userID string) error {
	if _, err := s.getOwned(ctx, id, userID); err != nil {
		return err
	}
	if err := s.userBookRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserBookNotFound
		}
		return err
	}
	return nil
}

// getOwned loads a user book and hides rows owned by other users behind
// not-found, so ids cannot be probed across accounts.
func (s *userBookService) getOwned(ctx context.Context, id, userID string) (*models.UserBook, error) {
	userBook, err := s.userBookRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserBookNotFound
		}
		return nil, err
	}
	if userBook.UserID != userID {
		return nil, ErrUserBookNotFound
	}
	return userBook, nil
}
