package handler

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"bookwise/internal/http-api/dto"
	"bookwise/internal/http-api/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockPreferencesService mocks the PreferencesService interface
type MockPreferencesService struct {
	mock.Mock
}

func (m *MockPreferencesService) Get(ctx context.Context, userID string) (*dto.PreferencesResponse, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.PreferencesResponse), args.Error(1)
}

func (m *MockPreferencesService) Create(ctx context.Context, userID string, req dto.CreatePreferencesRequest) (*dto.PreferencesResponse, error) {
	args := m.Called(ctx, userID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.PreferencesResponse), args.Error(1)
}

func (m *MockPreferencesService) Update(ctx context.Context, userID string, req dto.UpdatePreferencesRequest) (*dto.PreferencesResponse, error) {
	args := m.Called(ctx, userID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.PreferencesResponse), args.Error(1)
}

func setupPreferencesRouter(svc service.PreferencesService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	group := r.Group("/preferences")
	group.Use(func(c *gin.Context) {
		c.Set("userID", "user-1")
		c.Next()
	})
	NewPreferencesHandler(svc).RegisterRoutes(group)
	return r
}

func TestGetPreferencesEndpoint_NotFound(t *testing.T) {
	mockSvc := new(MockPreferencesService)
	router := setupPreferencesRouter(mockSvc)

	mockSvc.On("Get", mock.Anything, "user-1").Return(nil, service.ErrPreferencesNotFound)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/preferences/", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreatePreferencesEndpoint_Success(t *testing.T) {
	mockSvc := new(MockPreferencesService)
	router := setupPreferencesRouter(mockSvc)

	mockSvc.On("Create", mock.Anything, "user-1", mock.AnythingOfType("dto.CreatePreferencesRequest")).
		Return(&dto.PreferencesResponse{ID: "prefs-1", UserID: "user-1"}, nil)

	body := `{"reading_preferences":"space opera","preferred_language":"en"}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/preferences/", bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	mockSvc.AssertExpectations(t)
}

func TestCreatePreferencesEndpoint_LanguageTooShort(t *testing.T) {
	mockSvc := new(MockPreferencesService)
	router := setupPreferencesRouter(mockSvc)

	body := `{"reading_preferences":"space opera","preferred_language":"e"}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/preferences/", bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockSvc.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdatePreferencesEndpoint_Conflict(t *testing.T) {
	mockSvc := new(MockPreferencesService)
	router := setupPreferencesRouter(mockSvc)

	mockSvc.On("Update", mock.Anything, "user-1", mock.Anything).
		Return(nil, service.ErrPreferencesNotFound)

	body := `{"reading_preferences":"cozy mysteries","preferred_language":"fr"}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/preferences/", bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
