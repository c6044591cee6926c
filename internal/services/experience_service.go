package services

import (
	"context"

	"github.com/portfoliocms/backend/internal/apperrors"
	"github.com/portfoliocms/backend/internal/models"
	"go.uber.org/zap"
)

// ExperienceRepository is the interface that wraps methods for experiences table data access
type ExperienceRepository interface {
	Create(ctx context.Context, e *models.Experience) error
	GetByID(ctx context.Context, id int) (*models.Experience, error)
	Update(ctx context.Context, e *models.Experience) error
	Delete(ctx context.Context, id int) error
	List(ctx context.Context, filter models.ExperienceFilter, params models.ListParams) ([]models.Experience, error)
	// Method Companies returns distinct company names in alphabetical order.
	Companies(ctx context.Context) ([]string, error)
}

type experienceService struct {
	repo   ExperienceRepository
	logger *zap.Logger
}

// NewExperienceService creates a new experience service
func NewExperienceService(repo ExperienceRepository, logger *zap.Logger) *experienceService {
	return &experienceService{
		repo:   repo,
		logger: logger,
	}
}

// List returns a page of experience entries
func (s *experienceService) List(ctx context.Context, filter models.ExperienceFilter, params models.ListParams) (*models.ListResult[models.Experience], error) {
	items, err := s.repo.List(ctx, filter, params)
	if err != nil {
		return nil, err
	}
	return models.NewListResult(params, items), nil
}

// GetByID returns an experience entry
func (s *experienceService) GetByID(ctx context.Context, id int) (*models.Experience, error) {
	return s.repo.GetByID(ctx, id)
}

// Create validates and stores a new entry
func (s *experienceService) Create(ctx context.Context, req *models.CreateExperienceRequest) (*models.Experience, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	e := req.ToExperience()
	if err := normalizeDates(e); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, e); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, e.ID)
}

// Update applies a partial update to an entry
func (s *experienceService) Update(ctx context.Context, id int, req *models.UpdateExperienceRequest) (*models.Experience, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	e, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	req.Apply(e)
	if err := normalizeDates(e); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, e); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}

// Delete removes an entry
func (s *experienceService) Delete(ctx context.Context, id int) error {
	return s.repo.Delete(ctx, id)
}

// Companies returns distinct company names
func (s *experienceService) Companies(ctx context.Context) ([]string, error) {
	companies, err := s.repo.Companies(ctx)
	if err != nil {
		return nil, err
	}
	if companies == nil {
		companies = []string{}
	}
	return companies, nil
}

// normalizeDates clears the end date of a current position and rejects an end before the start
func normalizeDates(e *models.Experience) error {
	if e.Current {
		e.EndDate = nil
		return nil
	}
	if e.EndDate != nil && e.EndDate.Before(e.StartDate.Time) {
		return apperrors.Validation("Validation failed",
			apperrors.FieldError{Field: "endDate", Message: "End date must be after start date"})
	}
	return nil
}
