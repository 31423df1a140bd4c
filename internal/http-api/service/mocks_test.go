package service

import (
	"context"

	"bookwise/internal/ai"
	"bookwise/internal/http-api/models"
	"bookwise/internal/http-api/repository"

	"github.com/stretchr/testify/mock"
)

// Shared testify mocks for the repository and gateway interfaces used by
// the service tests in this package.

type MockAuthorRepository struct {
	mock.Mock
}

func (m *MockAuthorRepository) Create(ctx context.Context, author *models.Author) error {
	args := m.Called(ctx, author)
	return args.Error(0)
}

func (m *MockAuthorRepository) FindByNameFold(ctx context.Context, name string) (*models.Author, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Author), args.Error(1)
}

type MockBookRepository struct {
	mock.Mock
}

func (m *MockBookRepository) Create(ctx context.Context, book *models.Book) error {
	args := m.Called(ctx, book)
	return args.Error(0)
}

func (m *MockBookRepository) FindByTitleAndLanguage(ctx context.Context, title, language string) (*models.Book, error) {
	args := m.Called(ctx, title, language)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Book), args.Error(1)
}

func (m *MockBookRepository) GetByID(ctx context.Context, id string) (*models.Book, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Book), args.Error(1)
}

func (m *MockBookRepository) LinkAuthors(ctx context.Context, bookID string, authorIDs []string) error {
	args := m.Called(ctx, bookID, authorIDs)
	return args.Error(0)
}

type MockUserBookRepository struct {
	mock.Mock
}

func (m *MockUserBookRepository) Create(ctx context.Context, userBook *models.UserBook) error {
	args := m.Called(ctx, userBook)
	return args.Error(0)
}

func (m *MockUserBookRepository) GetByID(ctx context.Context, id string) (*models.UserBook, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.UserBook), args.Error(1)
}

func (m *MockUserBookRepository) Exists(ctx context.Context, userID, bookID string) (bool, error) {
	args := m.Called(ctx, userID, bookID)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserBookRepository) List(ctx context.Context, userID string, filter repository.UserBookFilter, page, limit int) ([]models.UserBook, int64, error) {
	args := m.Called(ctx, userID, filter, page, limit)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]models.UserBook), args.Get(1).(int64), args.Error(2)
}

func (m *MockUserBookRepository) ListByStatus(ctx context.Context, userID, status string) ([]models.UserBook, error) {
	args := m.Called(ctx, userID, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.UserBook), args.Error(1)
}

func (m *MockUserBookRepository) Update(ctx context.Context, userBook *models.UserBook) error {
	args := m.Called(ctx, userBook)
	return args.Error(0)
}

func (m *MockUserBookRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockRecommendationRepository struct {
	mock.Mock
}

func (m *MockRecommendationRepository) Create(ctx context.Context, rec *models.Recommendation) error {
	args := m.Called(ctx, rec)
	return args.Error(0)
}

func (m *MockRecommendationRepository) GetByID(ctx context.Context, id string) (*models.Recommendation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Recommendation), args.Error(1)
}

func (m *MockRecommendationRepository) GetByIDWithBook(ctx context.Context, id string) (*models.Recommendation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Recommendation), args.Error(1)
}

func (m *MockRecommendationRepository) HasPending(ctx context.Context, userID string) (bool, error) {
	args := m.Called(ctx, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockRecommendationRepository) List(ctx context.Context, userID string, status *string, page, limit int) ([]models.Recommendation, int64, error) {
	args := m.Called(ctx, userID, status, page, limit)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]models.Recommendation), args.Get(1).(int64), args.Error(2)
}

func (m *MockRecommendationRepository) UpdateStatus(ctx context.Context, id, status string) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

type MockPreferencesRepository struct {
	mock.Mock
}

func (m *MockPreferencesRepository) GetByUserID(ctx context.Context, userID string) (*models.UserPreferences, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.UserPreferences), args.Error(1)
}

func (m *MockPreferencesRepository) Create(ctx context.Context, prefs *models.UserPreferences) error {
	args := m.Called(ctx, prefs)
	return args.Error(0)
}

func (m *MockPreferencesRepository) Update(ctx context.Context, prefs *models.UserPreferences) error {
	args := m.Called(ctx, prefs)
	return args.Error(0)
}

type MockRecommendationGateway struct {
	mock.Mock
}

func (m *MockRecommendationGateway) Recommend(ctx context.Context, systemPrompt, userPrompt string) (*ai.Result, error) {
	args := m.Called(ctx, systemPrompt, userPrompt)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ai.Result), args.Error(1)
}

type MockPendingCache struct {
	mock.Mock
}

func (m *MockPendingCache) SetPending(ctx context.Context, userID string, payload []byte) error {
	args := m.Called(ctx, userID, payload)
	return args.Error(0)
}

func (m *MockPendingCache) GetPending(ctx context.Context, userID string) ([]byte, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockPendingCache) DropPending(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *MockPendingCache) AcquireGenerationLock(ctx context.Context, userID string) (bool, error) {
	args := m.Called(ctx, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockPendingCache) ReleaseGenerationLock(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func boolPtr(b bool) *bool    { return &b }
func strPtr(s string) *string { return &s }
