package service

import (
	"context"

	"bookwise/internal/http-api/dto"
	"bookwise/internal/http-api/models"
	"bookwise/internal/http-api/repository"
)

type PreferencesService interface {
	Get(ctx context.Context, userID string) (*dto.PreferencesResponse, error)
	Create(ctx context.Context, userID string, req dto.CreatePreferencesRequest) (*dto.PreferencesResponse, error)
	Update(ctx context.Context, userID string, req dto.UpdatePreferencesRequest) (*dto.PreferencesResponse, error)
}

type preferencesService struct {
	repo repository.PreferencesRepository
}

func NewPreferencesService(repo repository.PreferencesRepository) PreferencesService {
	return &preferencesService{repo: repo}
}

func (s *preferencesService) Get(ctx context.Context, userID string) (*dto.PreferencesResponse, error) {
	prefs, err := s.repo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if prefs == nil {
		return nil, ErrPreferencesNotFound
	}
	resp := dto.FromPreferencesModel(*prefs)
	return &resp, nil
}

func (s *preferencesService) Create(ctx context.Context, userID string, req dto.CreatePreferencesRequest) (*dto.PreferencesResponse, error) {
	existing, err := s.repo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrPreferencesExist
	}

	prefs := &models.UserPreferences{
		UserID:             userID,
		ReadingPreferences: req.ReadingPreferences,
		PreferredLanguage:  req.PreferredLanguage,
	}
	if err := s.repo.Create(ctx, prefs); err != nil {
		return nil, err
	}

	resp := dto.FromPreferencesModel(*prefs)
	return &resp, nil
}

func (s *preferencesService) Update(ctx context.Context, userID string, req dto.UpdatePreferencesRequest) (*dto.PreferencesResponse, error) {
	prefs, err := s.repo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if prefs == nil {
		return nil, ErrPreferencesNotFound
	}

	prefs.ReadingPreferences = req.ReadingPreferences
	prefs.PreferredLanguage = req.PreferredLanguage
	if err := s.repo.Update(ctx, prefs); err != nil {
		return nil, err
	}

	resp := dto.FromPreferencesModel(*prefs)
	return &resp, nil
}
