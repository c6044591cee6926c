package services

import (
	"context"
	"strings"

	"github.com/portfoliocms/backend/internal/apperrors"
	"github.com/portfoliocms/backend/internal/models"
	"github.com/portfoliocms/backend/internal/utils"
	"go.uber.org/zap"
)

// PortfolioRepository is the interface that wraps methods for portfolio_items table data access
type PortfolioRepository interface {
	// Method Create inserts a new item and sets its ID. A duplicate slug is a Conflict error.
	Create(ctx context.Context, item *models.PortfolioItem) error
	// Method GetByID retrieves an item by ID or returns a NotFound error.
	GetByID(ctx context.Context, id int) (*models.PortfolioItem, error)
	// Method GetBySlug retrieves an item by slug or returns a NotFound error.
	GetBySlug(ctx context.Context, slug string) (*models.PortfolioItem, error)
	// Method SlugExists checks if an item other than "excludeID" uses the slug.
	SlugExists(ctx context.Context, slug string, excludeID int) (bool, error)
	// Method Update overwrites every editable column of the item.
	Update(ctx context.Context, item *models.PortfolioItem) error
	// Method Delete removes the item or returns a NotFound error.
	Delete(ctx context.Context, id int) error
	// Method List retrieves one page of items matching the filter.
	List(ctx context.Context, filter models.PortfolioFilter, params models.ListParams) ([]models.PortfolioItem, error)
	// Method Categories returns distinct categories, optionally only of published items.
	Categories(ctx context.Context, publishedOnly bool) ([]string, error)
	IncrementViews(ctx context.Context, id int) error
	ToggleFeatured(ctx context.Context, id int) error
	OwnerID(ctx context.Context, id int) (*int, error)
}

const msgPortfolioSlugTaken = "A portfolio item with this slug already exists"

type portfolioService struct {
	repo   PortfolioRepository
	logger *zap.Logger
}

// NewPortfolioService creates a new portfolio service
func NewPortfolioService(repo PortfolioRepository, logger *zap.Logger) *portfolioService {
	return &portfolioService{
		repo:   repo,
		logger: logger,
	}
}

// List returns a page of portfolio items
func (s *portfolioService) List(ctx context.Context, filter models.PortfolioFilter, params models.ListParams) (*models.ListResult[models.PortfolioItem], error) {
	if filter.Status != "" && !filter.Status.Valid() {
		filter.Status = ""
	}
	items, err := s.repo.List(ctx, filter, params)
	if err != nil {
		return nil, err
	}
	return models.NewListResult(params, items), nil
}

// GetByID returns a portfolio item. Anonymous callers only see published items.
func (s *portfolioService) GetByID(ctx context.Context, id int, publishedOnly bool) (*models.PortfolioItem, error) {
	item, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if publishedOnly && item.Status != models.StatusPublished {
		return nil, apperrors.NotFound("Portfolio item not found")
	}
	return item, nil
}

// GetBySlug returns an item by slug and counts a view for public reads
func (s *portfolioService) GetBySlug(ctx context.Context, slug string, publicView bool) (*models.PortfolioItem, error) {
	item, err := s.repo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if !publicView {
		return item, nil
	}
	if item.Status != models.StatusPublished {
		return nil, apperrors.NotFound("Portfolio item not found")
	}

	if err := s.repo.IncrementViews(ctx, item.ID); err != nil {
		s.logger.Warn("failed to increment portfolio views", zap.Int("id", item.ID), zap.Error(err))
	} else {
		item.Views++
	}
	return item, nil
}

// Create validates and stores a new item. The slug is derived from the title when absent.
func (s *portfolioService) Create(ctx context.Context, req *models.CreatePortfolioRequest, authorID *int) (*models.PortfolioItem, error) {
	req.Title = strings.TrimSpace(req.Title)
	req.Slug = strings.TrimSpace(req.Slug)
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	item := req.ToItem()
	slug, err := resolveSlug(req.Slug, req.Title)
	if err != nil {
		return nil, err
	}
	item.Slug = slug
	item.AuthorID = authorID

	if err := s.ensureSlugFree(ctx, item.Slug, 0); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, item); err != nil {
		return nil, err
	}

	s.logger.Info("portfolio item created", zap.Int("id", item.ID), zap.String("slug", item.Slug))
	return s.repo.GetByID(ctx, item.ID)
}

// Update applies a partial update to an item
func (s *portfolioService) Update(ctx context.Context, id int, req *models.UpdatePortfolioRequest) (*models.PortfolioItem, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	item, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	oldSlug := item.Slug
	req.Apply(item)

	if item.Slug != oldSlug {
		if err := s.ensureSlugFree(ctx, item.Slug, id); err != nil {
			return nil, err
		}
	}
	if err := s.repo.Update(ctx, item); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}

// Delete removes an item
func (s *portfolioService) Delete(ctx context.Context, id int) error {
	return s.repo.Delete(ctx, id)
}

// Categories returns distinct categories
func (s *portfolioService) Categories(ctx context.Context, publishedOnly bool) ([]string, error) {
	categories, err := s.repo.Categories(ctx, publishedOnly)
	if err != nil {
		return nil, err
	}
	if categories == nil {
		categories = []string{}
	}
	return categories, nil
}

// ToggleFeatured flips the featured flag and returns the updated item
func (s *portfolioService) ToggleFeatured(ctx context.Context, id int) (*models.PortfolioItem, error) {
	if err := s.repo.ToggleFeatured(ctx, id); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}

// OwnerID returns the author of an item for the ownership gate
func (s *portfolioService) OwnerID(ctx context.Context, id int) (*int, error) {
	return s.repo.OwnerID(ctx, id)
}

func (s *portfolioService) ensureSlugFree(ctx context.Context, slug string, excludeID int) error {
	exists, err := s.repo.SlugExists(ctx, slug, excludeID)
	if err != nil {
		return err
	}
	if exists {
		return apperrors.Conflict(msgPortfolioSlugTaken)
	}
	return nil
}

// resolveSlug keeps an explicit slug or derives one from the title
func resolveSlug(slug, title string) (string, error) {
	if slug != "" {
		return slug, nil
	}
	slug = utils.Slugify(title)
	if slug == "" {
		return "", apperrors.Validation("Validation failed",
			apperrors.FieldError{Field: "slug", Message: "Slug could not be generated from title"})
	}
	return slug, nil
}
