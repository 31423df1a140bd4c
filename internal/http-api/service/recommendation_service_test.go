package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"bookwise/internal/ai"
	"bookwise/internal/http-api/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type recServiceMocks struct {
	recRepo      *MockRecommendationRepository
	authorRepo   *MockAuthorRepository
	bookRepo     *MockBookRepository
	userBookRepo *MockUserBookRepository
	prefsRepo    *MockPreferencesRepository
	gateway      *MockRecommendationGateway
	cache        *MockPendingCache
}

func newRecommendationServiceForTest() (RecommendationService, *recServiceMocks) {
	m := &recServiceMocks{
		recRepo:      new(MockRecommendationRepository),
		authorRepo:   new(MockAuthorRepository),
		bookRepo:     new(MockBookRepository),
		userBookRepo: new(MockUserBookRepository),
		prefsRepo:    new(MockPreferencesRepository),
		gateway:      new(MockRecommendationGateway),
		cache:        new(MockPendingCache),
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := NewRecommendationService(
		m.recRepo, m.authorRepo, m.bookRepo, m.userBookRepo, m.prefsRepo,
		m.gateway, m.cache, logger, 30*time.Second,
	)
	return svc, m
}

func aiResult() *ai.Result {
	return &ai.Result{
		Recommendation: ai.Recommendation{
			Book: ai.RecommendedBook{
				Title:    "La sombra del viento",
				Language: "es",
				Authors:  []ai.RecommendedAuthor{{Name: "Carlos Ruiz Zafon"}},
			},
			PlotSummary: "A boy discovers a mysterious book in post-war Barcelona.",
			Rationale:   "Matches the user's taste for literary mysteries.",
		},
		Model:          "openai/gpt-4o-2024",
		ElapsedSeconds: 2.41,
	}
}

func expectLock(m *recServiceMocks, userID string) {
	m.cache.On("AcquireGenerationLock", mock.Anything, userID).Return(true, nil)
	m.cache.On("ReleaseGenerationLock", mock.Anything, userID).Return(nil)
	m.cache.On("GetPending", mock.Anything, userID).Return(nil, nil)
}

func TestGenerate_CachedPendingShortCircuits(t *testing.T) {
	svc, m := newRecommendationServiceForTest()
	userID := "user-1"

	m.cache.On("AcquireGenerationLock", mock.Anything, userID).Return(true, nil)
	m.cache.On("ReleaseGenerationLock", mock.Anything, userID).Return(nil)
	m.cache.On("GetPending", mock.Anything, userID).Return([]byte(`{"id":"rec-1"}`), nil)

	resp, err := svc.Generate(context.Background(), userID)

	assert.Nil(t, resp)
	assert.ErrorIs(t, err, ErrPendingExists)
	m.recRepo.AssertNotCalled(t, "HasPending", mock.Anything, mock.Anything)
}

func TestGenerate_Success(t *testing.T) {
	svc, m := newRecommendationServiceForTest()
	userID := "user-1"

	expectLock(m, userID)
	m.recRepo.On("HasPending", mock.Anything, userID).Return(false, nil)
	m.prefsRepo.On("GetByUserID", mock.Anything, userID).Return(&models.UserPreferences{
		UserID:             userID,
		ReadingPreferences: "literary mysteries",
		PreferredLanguage:  "es",
	}, nil)

	readBooks := []models.UserBook{{
		UserID: userID,
		Rating: boolPtr(true),
		Book: &models.Book{
			Title:   "El nombre de la rosa",
			Authors: []models.Author{{Name: "Umberto Eco"}},
		},
	}}
	m.userBookRepo.On("ListByStatus", mock.Anything, userID, models.UserBookStatusRead).Return(readBooks, nil)
	m.userBookRepo.On("ListByStatus", mock.Anything, userID, models.UserBookStatusRejected).Return([]models.UserBook{}, nil)
	m.userBookRepo.On("ListByStatus", mock.Anything, userID, models.UserBookStatusToRead).Return([]models.UserBook{}, nil)

	m.gateway.On("Recommend", mock.Anything, mock.Anything, mock.Anything).Return(aiResult(), nil)

	m.authorRepo.On("FindByNameFold", mock.Anything, "Carlos Ruiz Zafon").Return(nil, nil)
	m.authorRepo.On("Create", mock.Anything, mock.AnythingOfType("*models.Author")).
		Run(func(args mock.Arguments) {
			args.Get(1).(*models.Author).ID = "author-1"
		}).Return(nil)

	m.bookRepo.On("Create", mock.Anything, mock.AnythingOfType("*models.Book")).
		Run(func(args mock.Arguments) {
			args.Get(1).(*models.Book).ID = "book-1"
		}).Return(nil)
	m.bookRepo.On("LinkAuthors", mock.Anything, "book-1", []string{"author-1"}).Return(nil)

	m.recRepo.On("Create", mock.Anything, mock.AnythingOfType("*models.Recommendation")).
		Run(func(args mock.Arguments) {
			args.Get(1).(*models.Recommendation).ID = "rec-1"
		}).Return(nil)

	m.cache.On("SetPending", mock.Anything, userID, mock.Anything).Return(nil)

	resp, err := svc.Generate(context.Background(), userID)

	require.NoError(t, err)
	assert.Equal(t, "rec-1", resp.ID)
	assert.Equal(t, models.RecommendationStatusPending, resp.Status)
	assert.Equal(t, "La sombra del viento", resp.Book.Title)
	assert.Equal(t, "es", resp.Book.Language)
	require.Len(t, resp.Book.Authors, 1)
	assert.Equal(t, "Carlos Ruiz Zafon", resp.Book.Authors[0].Name)
	assert.Equal(t, "openai/gpt-4o-2024", resp.AIModel)
	assert.Equal(t, 2.41, resp.ExecutionTime)

	m.recRepo.AssertExpectations(t)
	m.bookRepo.AssertExpectations(t)
	m.gateway.AssertExpectations(t)
}

func TestGenerate_PromptsCarryUserContext(t *testing.T) {
	svc, m := newRecommendationServiceForTest()
	userID := "user-1"

	expectLock(m, userID)
	m.recRepo.On("HasPending", mock.Anything, userID).Return(false, nil)
	m.prefsRepo.On("GetByUserID", mock.Anything, userID).Return(&models.UserPreferences{
		UserID:             userID,
		ReadingPreferences: "hard science fiction",
		PreferredLanguage:  "en",
	}, nil)

	m.userBookRepo.On("ListByStatus", mock.Anything, userID, models.UserBookStatusRead).Return([]models.UserBook{{
		Rating: boolPtr(false),
		Book:   &models.Book{Title: "Ringworld", Authors: []models.Author{{Name: "Larry Niven"}}},
	}}, nil)
	m.userBookRepo.On("ListByStatus", mock.Anything, userID, models.UserBookStatusRejected).Return([]models.UserBook{}, nil)
	m.userBookRepo.On("ListByStatus", mock.Anything, userID, models.UserBookStatusToRead).Return([]models.UserBook{}, nil)

	var gotSystem, gotUser string
	m.gateway.On("Recommend", mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			gotSystem = args.String(1)
			gotUser = args.String(2)
		}).Return(nil, ai.ErrUnavailable)

	_, err := svc.Generate(context.Background(), userID)
	require.Error(t, err)

	assert.Contains(t, gotSystem, "hard science fiction")
	assert.Contains(t, gotUser, `"Ringworld" by Larry Niven (disliked)`)
}

func TestGenerate_ReusesExistingAuthor(t *testing.T) {
	svc, m := newRecommendationServiceForTest()
	userID := "user-1"

	expectLock(m, userID)
	m.recRepo.On("HasPending", mock.Anything, userID).Return(false, nil)
	m.prefsRepo.On("GetByUserID", mock.Anything, userID).Return(&models.UserPreferences{
		UserID:            userID,
		PreferredLanguage: "es",
	}, nil)
	m.userBookRepo.On("ListByStatus", mock.Anything, userID, mock.Anything).Return([]models.UserBook{}, nil)
	m.gateway.On("Recommend", mock.Anything, mock.Anything, mock.Anything).Return(aiResult(), nil)

	// Matched case-insensitively against "Carlos Ruiz Zafon".
	m.authorRepo.On("FindByNameFold", mock.Anything, "Carlos Ruiz Zafon").
		Return(&models.Author{ID: "author-existing", Name: "carlos ruiz zafon"}, nil)

	m.bookRepo.On("Create", mock.Anything, mock.AnythingOfType("*models.Book")).
		Run(func(args mock.Arguments) {
			args.Get(1).(*models.Book).ID = "book-1"
		}).Return(nil)
	m.bookRepo.On("LinkAuthors", mock.Anything, "book-1", []string{"author-existing"}).Return(nil)
	m.recRepo.On("Create", mock.Anything, mock.AnythingOfType("*models.Recommendation")).Return(nil)
	m.cache.On("SetPending", mock.Anything, userID, mock.Anything).Return(nil)

	_, err := svc.Generate(context.Background(), userID)

	require.NoError(t, err)
	m.authorRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	m.bookRepo.AssertExpectations(t)
}

func TestGenerate_PendingExists(t *testing.T) {
	svc, m := newRecommendationServiceForTest()
	userID := "user-1"

	expectLock(m, userID)
	m.recRepo.On("HasPending", mock.Anything, userID).Return(true, nil)

	resp, err := svc.Generate(context.Background(), userID)

	assert.Nil(t, resp)
	assert.ErrorIs(t, err, ErrPendingExists)
	m.gateway.AssertNotCalled(t, "Recommend", mock.Anything, mock.Anything, mock.Anything)
	m.recRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestGenerate_PreferencesRequired(t *testing.T) {
	svc, m := newRecommendationServiceForTest()
	userID := "user-1"

	expectLock(m, userID)
	m.recRepo.On("HasPending", mock.Anything, userID).Return(false, nil)
	m.prefsRepo.On("GetByUserID", mock.Anything, userID).Return(nil, nil)

	resp, err := svc.Generate(context.Background(), userID)

	assert.Nil(t, resp)
	assert.ErrorIs(t, err, ErrPreferencesRequired)
	m.gateway.AssertNotCalled(t, "Recommend", mock.Anything, mock.Anything, mock.Anything)
}

func TestGenerate_LockHeld(t *testing.T) {
	svc, m := newRecommendationServiceForTest()
	userID := "user-1"

	m.cache.On("AcquireGenerationLock", mock.Anything, userID).Return(false, nil)

	resp, err := svc.Generate(context.Background(), userID)

	assert.Nil(t, resp)
	assert.ErrorIs(t, err, ErrGenerationInFlight)
	m.recRepo.AssertNotCalled(t, "HasPending", mock.Anything, mock.Anything)
}

func TestGenerate_LockErrorDoesNotBlockGeneration(t *testing.T) {
	svc, m := newRecommendationServiceForTest()
	userID := "user-1"

	m.cache.On("AcquireGenerationLock", mock.Anything, userID).Return(false, errors.New("redis down"))
	m.cache.On("ReleaseGenerationLock", mock.Anything, userID).Return(errors.New("redis down"))
	m.cache.On("GetPending", mock.Anything, userID).Return(nil, errors.New("redis down"))
	m.recRepo.On("HasPending", mock.Anything, userID).Return(true, nil)

	_, err := svc.Generate(context.Background(), userID)

	// The pending check ran, so the lock failure was tolerated.
	assert.ErrorIs(t, err, ErrPendingExists)
	m.recRepo.AssertExpectations(t)
}

func TestGenerate_GatewayFailureLeavesNoRow(t *testing.T) {
	svc, m := newRecommendationServiceForTest()
	userID := "user-1"

	expectLock(m, userID)
	m.recRepo.On("HasPending", mock.Anything, userID).Return(false, nil)
	m.prefsRepo.On("GetByUserID", mock.Anything, userID).Return(&models.UserPreferences{
		UserID:            userID,
		PreferredLanguage: "en",
	}, nil)
	m.userBookRepo.On("ListByStatus", mock.Anything, userID, mock.Anything).Return([]models.UserBook{}, nil)
	m.gateway.On("Recommend", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, ai.ErrUnavailable)

	resp, err := svc.Generate(context.Background(), userID)

	assert.Nil(t, resp)
	assert.ErrorIs(t, err, ai.ErrUnavailable)
	m.recRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	m.bookRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func pendingRecommendation(userID string) *models.Recommendation {
	return &models.Recommendation{
		ID:     "rec-1",
		UserID: userID,
		BookID: "book-1",
		Status: models.RecommendationStatusPending,
	}
}

func TestUpdateStatus_AcceptMaterializesToRead(t *testing.T) {
	svc, m := newRecommendationServiceForTest()
	userID := "user-1"

	m.recRepo.On("GetByID", mock.Anything, "rec-1").Return(pendingRecommendation(userID), nil)
	m.recRepo.On("UpdateStatus", mock.Anything, "rec-1", models.RecommendationStatusAccepted).Return(nil)

	accepted := pendingRecommendation(userID)
	accepted.Status = models.RecommendationStatusAccepted
	accepted.Book = &models.Book{ID: "book-1", Title: "La sombra del viento", Language: "es"}
	m.recRepo.On("GetByIDWithBook", mock.Anything, "rec-1").Return(accepted, nil)

	m.cache.On("DropPending", mock.Anything, userID).Return(nil)
	m.userBookRepo.On("Exists", mock.Anything, userID, "book-1").Return(false, nil)
	m.userBookRepo.On("Create", mock.Anything, mock.MatchedBy(func(ub *models.UserBook) bool {
		return ub.UserID == userID &&
			ub.BookID == "book-1" &&
			ub.Status == models.UserBookStatusToRead &&
			ub.IsRecommended &&
			ub.RecommendationID != nil && *ub.RecommendationID == "rec-1"
	})).Return(nil)

	resp, err := svc.UpdateStatus(context.Background(), "rec-1", userID, models.RecommendationStatusAccepted)

	require.NoError(t, err)
	assert.Equal(t, models.RecommendationStatusAccepted, resp.Status)
	assert.Equal(t, "La sombra del viento", resp.Book.Title)
	m.userBookRepo.AssertExpectations(t)
}

func TestUpdateStatus_RejectMaterializesRejected(t *testing.T) {
	svc, m := newRecommendationServiceForTest()
	userID := "user-1"

	m.recRepo.On("GetByID", mock.Anything, "rec-1").Return(pendingRecommendation(userID), nil)
	m.recRepo.On("UpdateStatus", mock.Anything, "rec-1", models.RecommendationStatusRejected).Return(nil)

	rejected := pendingRecommendation(userID)
	rejected.Status = models.RecommendationStatusRejected
	rejected.Book = &models.Book{ID: "book-1", Title: "La sombra del viento"}
	m.recRepo.On("GetByIDWithBook", mock.Anything, "rec-1").Return(rejected, nil)

	m.cache.On("DropPending", mock.Anything, userID).Return(nil)
	m.userBookRepo.On("Exists", mock.Anything, userID, "book-1").Return(false, nil)
	m.userBookRepo.On("Create", mock.Anything, mock.MatchedBy(func(ub *models.UserBook) bool {
		return ub.Status == models.UserBookStatusRejected && ub.IsRecommended
	})).Return(nil)

	resp, err := svc.UpdateStatus(context.Background(), "rec-1", userID, models.RecommendationStatusRejected)

	require.NoError(t, err)
	assert.Equal(t, models.RecommendationStatusRejected, resp.Status)
	m.userBookRepo.AssertExpectations(t)
}

func TestUpdateStatus_NotFound(t *testing.T) {
	svc, m := newRecommendationServiceForTest()

	m.recRepo.On("GetByID", mock.Anything, "missing").Return(nil, gorm.ErrRecordNotFound)

	resp, err := svc.UpdateStatus(context.Background(), "missing", "user-1", models.RecommendationStatusAccepted)

	assert.Nil(t, resp)
	assert.ErrorIs(t, err, ErrRecommendationNotFound)
}

func TestUpdateStatus_NotOwner(t *testing.T) {
	svc, m := newRecommendationServiceForTest()

	m.recRepo.On("GetByID", mock.Anything, "rec-1").Return(pendingRecommendation("someone-else"), nil)

	resp, err := svc.UpdateStatus(context.Background(), "rec-1", "user-1", models.RecommendationStatusAccepted)

	assert.Nil(t, resp)
	assert.ErrorIs(t, err, ErrNotOwner)
	m.recRepo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdateStatus_AlreadyResolved(t *testing.T) {
	svc, m := newRecommendationServiceForTest()
	userID := "user-1"

	resolved := pendingRecommendation(userID)
	resolved.Status = models.RecommendationStatusAccepted
	m.recRepo.On("GetByID", mock.Anything, "rec-1").Return(resolved, nil)

	resp, err := svc.UpdateStatus(context.Background(), "rec-1", userID, models.RecommendationStatusRejected)

	assert.Nil(t, resp)
	assert.ErrorIs(t, err, ErrAlreadyResolved)
	m.recRepo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdateStatus_MaterializationFailureDoesNotFailRequest(t *testing.T) {
	svc, m := newRecommendationServiceForTest()
	userID := "user-1"

	m.recRepo.On("GetByID", mock.Anything, "rec-1").Return(pendingRecommendation(userID), nil)
	m.recRepo.On("UpdateStatus", mock.Anything, "rec-1", models.RecommendationStatusAccepted).Return(nil)

	accepted := pendingRecommendation(userID)
	accepted.Status = models.RecommendationStatusAccepted
	accepted.Book = &models.Book{ID: "book-1"}
	m.recRepo.On("GetByIDWithBook", mock.Anything, "rec-1").Return(accepted, nil)

	m.cache.On("DropPending", mock.Anything, userID).Return(nil)
	m.userBookRepo.On("Exists", mock.Anything, userID, "book-1").Return(false, nil)
	m.userBookRepo.On("Create", mock.Anything, mock.Anything).Return(errors.New("insert failed"))

	resp, err := svc.UpdateStatus(context.Background(), "rec-1", userID, models.RecommendationStatusAccepted)

	require.NoError(t, err)
	assert.Equal(t, models.RecommendationStatusAccepted, resp.Status)
}

func TestUpdateStatus_SkipsMaterializationWhenAlreadyTracked(t *testing.T) {
	svc, m := newRecommendationServiceForTest()
	userID := "user-1"

	m.recRepo.On("GetByID", mock.Anything, "rec-1").Return(pendingRecommendation(userID), nil)
	m.recRepo.On("UpdateStatus", mock.Anything, "rec-1", models.RecommendationStatusAccepted).Return(nil)

	accepted := pendingRecommendation(userID)
	accepted.Status = models.RecommendationStatusAccepted
	accepted.Book = &models.Book{ID: "book-1"}
	m.recRepo.On("GetByIDWithBook", mock.Anything, "rec-1").Return(accepted, nil)

	m.cache.On("DropPending", mock.Anything, userID).Return(nil)
	m.userBookRepo.On("Exists", mock.Anything, userID, "book-1").Return(true, nil)

	_, err := svc.UpdateStatus(context.Background(), "rec-1", userID, models.RecommendationStatusAccepted)

	require.NoError(t, err)
	m.userBookRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestList_ReturnsPaginatedRecommendations(t *testing.T) {
	svc, m := newRecommendationServiceForTest()
	userID := "user-1"
	status := strPtr(models.RecommendationStatusPending)

	recs := []models.Recommendation{
		{ID: "rec-1", UserID: userID, Status: models.RecommendationStatusPending,
			Book: &models.Book{ID: "book-1", Title: "Dune"}},
	}
	m.recRepo.On("List", mock.Anything, userID, status, 2, 10).Return(recs, int64(11), nil)

	resp, err := svc.List(context.Background(), userID, status, 2, 10)

	require.NoError(t, err)
	require.Len(t, resp.Data, 1)
	assert.Equal(t, "Dune", resp.Data[0].Book.Title)
	assert.Equal(t, int64(11), resp.Pagination.Total)
	assert.Equal(t, 2, resp.Pagination.Page)
	assert.Equal(t, 2, resp.Pagination.TotalPages)
}
