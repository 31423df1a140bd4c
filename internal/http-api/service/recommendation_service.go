package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"bookwise/internal/ai"
	"bookwise/internal/http-api/dto"
	"bookwise/internal/http-api/models"
	"bookwise/internal/http-api/repository"

	"gorm.io/gorm"
)

// RecommendationGateway is the AI completion gateway contract consumed by
// the orchestrator. *ai.Client satisfies it.
type RecommendationGateway interface {
	Recommend(ctx context.Context, systemPrompt, userPrompt string) (*ai.Result, error)
}

// PendingCache holds each user's pending recommendation view and the
// advisory generation lock. *cache.RecommendationCache satisfies it.
type PendingCache interface {
	SetPending(ctx context.Context, userID string, payload []byte) error
	GetPending(ctx context.Context, userID string) ([]byte, error)
	DropPending(ctx context.Context, userID string) error
	AcquireGenerationLock(ctx context.Context, userID string) (bool, error)
	ReleaseGenerationLock(ctx context.Context, userID string) error
}

type RecommendationService interface {
	Generate(ctx context.Context, userID string) (*dto.RecommendationResponse, error)
	UpdateStatus(ctx context.Context, id, userID, status string) (*dto.RecommendationResponse, error)
	List(ctx context.Context, userID string, status *string, page, limit int) (*dto.PaginatedRecommendationsResponse, error)
}

type recommendationService struct {
	recRepo      repository.RecommendationRepository
	authorRepo   repository.AuthorRepository
	bookRepo     repository.BookRepository
	userBookRepo repository.UserBookRepository
	prefsRepo    repository.PreferencesRepository
	gateway      RecommendationGateway
	cache        PendingCache
	logger       *slog.Logger
	genTimeout   time.Duration
}

func NewRecommendationService(
	recRepo repository.RecommendationRepository,
	authorRepo repository.AuthorRepository,
	bookRepo repository.BookRepository,
	userBookRepo repository.UserBookRepository,
	prefsRepo repository.PreferencesRepository,
	gateway RecommendationGateway,
	cache PendingCache,
	logger *slog.Logger,
	genTimeout time.Duration,
) RecommendationService {
	return &recommendationService{
		recRepo:      recRepo,
		authorRepo:   authorRepo,
		bookRepo:     bookRepo,
		userBookRepo: userBookRepo,
		prefsRepo:    prefsRepo,
		gateway:      gateway,
		cache:        cache,
		logger:       logger,
		genTimeout:   genTimeout,
	}
}

// Generate runs the full orchestration: preconditions, user context, AI
// call, author/book resolution and the pending recommendation row. Any
// failure aborts the operation; a failed call leaves no recommendation row.
func (s *recommendationService) Generate(ctx context.Context, userID string) (*dto.RecommendationResponse, error) {
	acquired, err := s.cache.AcquireGenerationLock(ctx, userID)
	if err != nil {
		s.logger.Warn("generation lock unavailable, continuing without it", "error", err, "user_id", userID)
	} else if !acquired {
		return nil, ErrGenerationInFlight
	}
	defer func() {
		if err := s.cache.ReleaseGenerationLock(ctx, userID); err != nil {
			s.logger.Warn("failed to release generation lock", "error", err, "user_id", userID)
		}
	}()

	// Cached pending view short-circuits before touching the database.
	if payload, err := s.cache.GetPending(ctx, userID); err == nil && payload != nil {
		return nil, ErrPendingExists
	}

	// Precondition: at most one pending recommendation per user, checked
	// before the AI gateway is ever called.
	pending, err := s.recRepo.HasPending(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("check pending recommendations: %w", err)
	}
	if pending {
		return nil, ErrPendingExists
	}

	prefs, err := s.prefsRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("fetch preferences: %w", err)
	}
	if prefs == nil {
		return nil, ErrPreferencesRequired
	}

	read, err := s.bookContexts(ctx, userID, models.UserBookStatusRead)
	if err != nil {
		return nil, err
	}
	rejected, err := s.bookContexts(ctx, userID, models.UserBookStatusRejected)
	if err != nil {
		return nil, err
	}
	toRead, err := s.bookContexts(ctx, userID, models.UserBookStatusToRead)
	if err != nil {
		return nil, err
	}

	systemPrompt := ai.BuildSystemPrompt(prefs.ReadingPreferences, prefs.PreferredLanguage)
	userPrompt := ai.BuildUserPrompt(read, rejected, toRead, prefs.PreferredLanguage)

	gatewayCtx, cancel := context.WithTimeout(ctx, s.genTimeout)
	defer cancel()

	result, err := s.gateway.Recommend(gatewayCtx, systemPrompt, userPrompt)
	if err != nil {
		return nil, err
	}

	s.logger.Info("recommendation generated",
		"user_id", userID,
		"model", result.Model,
		"elapsed_seconds", result.ElapsedSeconds,
	)

	// Resolve authors sequentially so the create-if-absent check cannot
	// race against itself within a single request.
	authors := make([]models.Author, 0, len(result.Recommendation.Book.Authors))
	for _, recAuthor := range result.Recommendation.Book.Authors {
		author, err := s.resolveAuthor(ctx, recAuthor.Name)
		if err != nil {
			return nil, err
		}
		authors = append(authors, *author)
	}

	book := &models.Book{
		Title:    result.Recommendation.Book.Title,
		Language: result.Recommendation.Book.Language,
	}
	if err := s.bookRepo.Create(ctx, book); err != nil {
		return nil, err
	}

	authorIDs := make([]string, 0, len(authors))
	for _, a := range authors {
		authorIDs = append(authorIDs, a.ID)
	}
	if err := s.bookRepo.LinkAuthors(ctx, book.ID, authorIDs); err != nil {
		return nil, err
	}

	rec := &models.Recommendation{
		UserID:        userID,
		BookID:        book.ID,
		PlotSummary:   result.Recommendation.PlotSummary,
		Rationale:     result.Recommendation.Rationale,
		AIModel:       result.Model,
		ExecutionTime: result.ElapsedSeconds,
		Status:        models.RecommendationStatusPending,
	}
	if err := s.recRepo.Create(ctx, rec); err != nil {
		return nil, err
	}

	book.Authors = authors
	rec.Book = book
	resp := dto.FromRecommendationModel(*rec)

	s.cachePending(ctx, userID, resp)

	return &resp, nil
}

func (s *recommendationService) bookContexts(ctx context.Context, userID, status string) ([]ai.BookContext, error) {
	userBooks, err := s.userBookRepo.ListByStatus(ctx, userID, status)
	if err != nil {
		return nil, err
	}

	contexts := make([]ai.BookContext, 0, len(userBooks))
	for _, ub := range userBooks {
		if ub.Book == nil {
			continue
		}
		bc := ai.BookContext{
			Title:  ub.Book.Title,
			Rating: ub.Rating,
		}
		for _, a := range ub.Book.Authors {
			bc.Authors = append(bc.Authors, a.Name)
		}
		contexts = append(contexts, bc)
	}
	return contexts, nil
}

// resolveAuthor reuses an existing author matched case-insensitively by
// name, creating one only when no match exists.
func (s *recommendationService) resolveAuthor(ctx context.Context, name string) (*models.Author, error) {
	existing, err := s.authorRepo.FindByNameFold(ctx, name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	author := &models.Author{Name: name}
	if err := s.authorRepo.Create(ctx, author); err != nil {
		return nil, err
	}
	return author, nil
}

func (s *recommendationService) cachePending(ctx context.Context, userID string, resp dto.RecommendationResponse) {
	payload, err := json.Marshal(resp)
	if err != nil {
		s.logger.Warn("failed to marshal pending recommendation for cache", "error", err)
		return
	}
	if err := s.cache.SetPending(ctx, userID, payload); err != nil {
		s.logger.Warn("failed to cache pending recommendation", "error", err, "user_id", userID)
	}
}

// UpdateStatus transitions a pending recommendation to accepted or rejected.
// The transition happens at most once; re-resolving a terminal
// recommendation fails with ErrAlreadyResolved.
func (s *recommendationService) UpdateStatus(ctx context.Context, id, userID, status string) (*dto.RecommendationResponse, error) {
	rec, err := s.recRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecommendationNotFound
		}
		return nil, fmt.Errorf("find recommendation: %w", err)
	}

	// Ownership is not implicit in storage; it must be checked here.
	if rec.UserID != userID {
		return nil, ErrNotOwner
	}

	if rec.IsTerminal() {
		return nil, ErrAlreadyResolved
	}

	if err := s.recRepo.UpdateStatus(ctx, id, status); err != nil {
		return nil, fmt.Errorf("update recommendation status: %w", err)
	}

	updated, err := s.recRepo.GetByIDWithBook(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("reload recommendation: %w", err)
	}

	if err := s.cache.DropPending(ctx, userID); err != nil {
		s.logger.Warn("failed to drop pending recommendation from cache", "error", err, "user_id", userID)
	}

	// Best-effort secondary write: the status change above is the
	// authoritative outcome and is never rolled back if this fails.
	s.materializeUserBook(ctx, updated, status)

	resp := dto.FromRecommendationModel(*updated)
	return &resp, nil
}

// materializeUserBook mirrors the resolved recommendation into the user's
// collection: to_read on accept, rejected on reject. Failures are logged
// and swallowed.
func (s *recommendationService) materializeUserBook(ctx context.Context, rec *models.Recommendation, status string) {
	userBookStatus := models.UserBookStatusToRead
	if status == models.RecommendationStatusRejected {
		userBookStatus = models.UserBookStatusRejected
	}

	exists, err := s.userBookRepo.Exists(ctx, rec.UserID, rec.BookID)
	if err != nil {
		s.logger.Error("failed to check user book before materialization",
			"error", err, "recommendation_id", rec.ID, "user_id", rec.UserID)
		return
	}
	if exists {
		s.logger.Info("book already in user's collection, skipping materialization",
			"recommendation_id", rec.ID, "user_id", rec.UserID, "book_id", rec.BookID)
		return
	}

	recID := rec.ID
	userBook := &models.UserBook{
		UserID:           rec.UserID,
		BookID:           rec.BookID,
		Status:           userBookStatus,
		IsRecommended:    true,
		RecommendationID: &recID,
	}
	if err := s.userBookRepo.Create(ctx, userBook); err != nil {
		s.logger.Error("failed to create user book from recommendation",
			"error", err, "recommendation_id", rec.ID, "user_id", rec.UserID)
		return
	}

	s.logger.Info("user book materialized from recommendation",
		"recommendation_id", rec.ID, "user_id", rec.UserID, "status", userBookStatus)
}

func (s *recommendationService) List(ctx context.Context, userID string, status *string, page, limit int) (*dto.PaginatedRecommendationsResponse, error) {
	recs, total, err := s.recRepo.List(ctx, userID, status, page, limit)
	if err != nil {
		return nil, err
	}

	data := make([]dto.RecommendationResponse, 0, len(recs))
	for _, rec := range recs {
		data = append(data, dto.FromRecommendationModel(rec))
	}

	return &dto.PaginatedRecommendationsResponse{
		Data:       data,
		Pagination: dto.NewPagination(total, page, limit),
	}, nil
}
