package services

import (
	"context"
	"time"

	"github.com/portfoliocms/backend/internal/apperrors"
	"github.com/portfoliocms/backend/internal/models"
	"go.uber.org/zap"
)

// TestimonialRepository is the interface that wraps methods for testimonials table data access
type TestimonialRepository interface {
	Create(ctx context.Context, t *models.Testimonial) error
	GetByID(ctx context.Context, id int) (*models.Testimonial, error)
	Update(ctx context.Context, t *models.Testimonial) error
	Delete(ctx context.Context, id int) error
	List(ctx context.Context, filter models.TestimonialFilter, params models.ListParams) ([]models.Testimonial, error)
	// Method SetStatus changes the moderation status and stores approvedAt as given.
	SetStatus(ctx context.Context, id int, status models.TestimonialStatus, approvedAt *time.Time) error
	ToggleFeatured(ctx context.Context, id int) error
}

type testimonialService struct {
	repo   TestimonialRepository
	logger *zap.Logger
	now    func() time.Time
}

// NewTestimonialService creates a new testimonial service
func NewTestimonialService(repo TestimonialRepository, logger *zap.Logger) *testimonialService {
	return &testimonialService{
		repo:   repo,
		logger: logger,
		now:    time.Now,
	}
}

// List returns a page of testimonials. Ratings outside 1..5 are ignored.
func (s *testimonialService) List(ctx context.Context, filter models.TestimonialFilter, params models.ListParams) (*models.ListResult[models.Testimonial], error) {
	if filter.Rating < 1 || filter.Rating > 5 {
		filter.Rating = 0
	}
	items, err := s.repo.List(ctx, filter, params)
	if err != nil {
		return nil, err
	}
	return models.NewListResult(params, items), nil
}

// GetByID returns a testimonial. Anonymous callers only see approved ones.
func (s *testimonialService) GetByID(ctx context.Context, id int, approvedOnly bool) (*models.Testimonial, error) {
	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if approvedOnly && t.Status != models.TestimonialApproved {
		return nil, apperrors.NotFound("Testimonial not found")
	}
	return t, nil
}

// Create validates and stores a testimonial
func (s *testimonialService) Create(ctx context.Context, req *models.CreateTestimonialRequest) (*models.Testimonial, error) {
	req.Email = normalizeEmail(req.Email)
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	t := req.ToTestimonial()
	s.stampApproval(t, "")
	if err := s.repo.Create(ctx, t); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, t.ID)
}

// Update applies a partial update
func (s *testimonialService) Update(ctx context.Context, id int, req *models.UpdateTestimonialRequest) (*models.Testimonial, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	previous := t.Status
	req.Apply(t)
	s.stampApproval(t, previous)

	if err := s.repo.Update(ctx, t); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}

// Delete removes a testimonial
func (s *testimonialService) Delete(ctx context.Context, id int) error {
	return s.repo.Delete(ctx, id)
}

// Approve publishes a testimonial and records when it was approved
func (s *testimonialService) Approve(ctx context.Context, id int) (*models.Testimonial, error) {
	now := s.now()
	if err := s.repo.SetStatus(ctx, id, models.TestimonialApproved, &now); err != nil {
		return nil, err
	}
	s.logger.Info("testimonial approved", zap.Int("id", id))
	return s.repo.GetByID(ctx, id)
}

// Reject hides a testimonial and clears its approval time
func (s *testimonialService) Reject(ctx context.Context, id int) (*models.Testimonial, error) {
	if err := s.repo.SetStatus(ctx, id, models.TestimonialRejected, nil); err != nil {
		return nil, err
	}
	s.logger.Info("testimonial rejected", zap.Int("id", id))
	return s.repo.GetByID(ctx, id)
}

// ToggleFeatured flips the featured flag and returns the updated testimonial
func (s *testimonialService) ToggleFeatured(ctx context.Context, id int) (*models.Testimonial, error) {
	if err := s.repo.ToggleFeatured(ctx, id); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}

// stampApproval keeps approved_at consistent with a status changed through create or update
func (s *testimonialService) stampApproval(t *models.Testimonial, previous models.TestimonialStatus) {
	switch {
	case t.Status == models.TestimonialApproved && previous != models.TestimonialApproved:
		now := s.now()
		t.ApprovedAt = &now
	case t.Status != models.TestimonialApproved:
		t.ApprovedAt = nil
	}
}
