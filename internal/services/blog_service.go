package services

import (
	"context"
	"strings"
	"time"

	"github.com/portfoliocms/backend/internal/apperrors"
	"github.com/portfoliocms/backend/internal/models"
	"github.com/portfoliocms/backend/internal/utils"
	"go.uber.org/zap"
)

// BlogRepository is the interface that wraps methods for blog_posts table data access
type BlogRepository interface {
	// Method Create inserts a new post and sets its ID. A duplicate slug is a Conflict error.
	Create(ctx context.Context, p *models.BlogPost) error
	GetByID(ctx context.Context, id int) (*models.BlogPost, error)
	GetBySlug(ctx context.Context, slug string) (*models.BlogPost, error)
	SlugExists(ctx context.Context, slug string, excludeID int) (bool, error)
	Update(ctx context.Context, p *models.BlogPost) error
	Delete(ctx context.Context, id int) error
	List(ctx context.Context, filter models.BlogFilter, params models.ListParams) ([]models.BlogPost, error)
	Categories(ctx context.Context, publishedOnly bool) ([]string, error)
	// Method Tags returns the distinct tags used by posts, sorted.
	Tags(ctx context.Context, publishedOnly bool) ([]string, error)
	IncrementViews(ctx context.Context, id int) error
	ToggleFeatured(ctx context.Context, id int) error
	OwnerID(ctx context.Context, id int) (*int, error)
}

const (
	msgBlogSlugTaken = "A blog post with this slug already exists"
	msgBlogNotFound  = "Blog post not found"
)

type blogService struct {
	repo   BlogRepository
	logger *zap.Logger
	now    func() time.Time
}

// NewBlogService creates a new blog service
func NewBlogService(repo BlogRepository, logger *zap.Logger) *blogService {
	return &blogService{
		repo:   repo,
		logger: logger,
		now:    time.Now,
	}
}

// List returns a page of blog posts
func (s *blogService) List(ctx context.Context, filter models.BlogFilter, params models.ListParams) (*models.ListResult[models.BlogPost], error) {
	if filter.Status != "" && !filter.Status.Valid() {
		filter.Status = ""
	}
	posts, err := s.repo.List(ctx, filter, params)
	if err != nil {
		return nil, err
	}
	return models.NewListResult(params, posts), nil
}

// GetByID returns a post. Anonymous callers only see published posts.
func (s *blogService) GetByID(ctx context.Context, id int, publishedOnly bool) (*models.BlogPost, error) {
	post, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if publishedOnly && post.Status != models.StatusPublished {
		return nil, apperrors.NotFound(msgBlogNotFound)
	}
	return post, nil
}

// GetBySlug returns a post with its rendered HTML and counts a view for public reads
func (s *blogService) GetBySlug(ctx context.Context, slug string, publicView bool) (*models.BlogPost, error) {
	post, err := s.repo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	if publicView {
		if post.Status != models.StatusPublished {
			return nil, apperrors.NotFound(msgBlogNotFound)
		}
		if err := s.repo.IncrementViews(ctx, post.ID); err != nil {
			s.logger.Warn("failed to increment blog views", zap.Int("id", post.ID), zap.Error(err))
		} else {
			post.Views++
		}
	}

	html, err := utils.RenderMarkdown(post.Content)
	if err != nil {
		// Clients fall back to the raw content
		s.logger.Warn("failed to render blog content", zap.Int("id", post.ID), zap.Error(err))
	} else {
		post.ContentHTML = html
	}
	return post, nil
}

// Create validates and stores a new post.
// The slug is derived from the title when absent and the read time is computed from the content.
func (s *blogService) Create(ctx context.Context, req *models.CreateBlogPostRequest, authorID *int) (*models.BlogPost, error) {
	req.Title = strings.TrimSpace(req.Title)
	req.Slug = strings.TrimSpace(req.Slug)
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	post := req.ToPost()
	slug, err := resolveSlug(req.Slug, req.Title)
	if err != nil {
		return nil, err
	}
	post.Slug = slug
	post.AuthorID = authorID
	s.prepare(post)

	if err := s.ensureSlugFree(ctx, post.Slug, 0); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, post); err != nil {
		return nil, err
	}

	s.logger.Info("blog post created", zap.Int("id", post.ID), zap.String("slug", post.Slug))
	return s.repo.GetByID(ctx, post.ID)
}

// Update applies a partial update to a post
func (s *blogService) Update(ctx context.Context, id int, req *models.UpdateBlogPostRequest) (*models.BlogPost, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	post, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	oldSlug := post.Slug
	req.Apply(post)
	s.prepare(post)

	if post.Slug != oldSlug {
		if err := s.ensureSlugFree(ctx, post.Slug, id); err != nil {
			return nil, err
		}
	}
	if err := s.repo.Update(ctx, post); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}

// Delete removes a post
func (s *blogService) Delete(ctx context.Context, id int) error {
	return s.repo.Delete(ctx, id)
}

// Categories returns distinct categories
func (s *blogService) Categories(ctx context.Context, publishedOnly bool) ([]string, error) {
	categories, err := s.repo.Categories(ctx, publishedOnly)
	if err != nil {
		return nil, err
	}
	if categories == nil {
		categories = []string{}
	}
	return categories, nil
}

// Tags returns distinct tags
func (s *blogService) Tags(ctx context.Context, publishedOnly bool) ([]string, error) {
	tags, err := s.repo.Tags(ctx, publishedOnly)
	if err != nil {
		return nil, err
	}
	if tags == nil {
		tags = []string{}
	}
	return tags, nil
}

// ToggleFeatured flips the featured flag and returns the updated post
func (s *blogService) ToggleFeatured(ctx context.Context, id int) (*models.BlogPost, error) {
	if err := s.repo.ToggleFeatured(ctx, id); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}

// OwnerID returns the author of a post for the ownership gate
func (s *blogService) OwnerID(ctx context.Context, id int) (*int, error) {
	return s.repo.OwnerID(ctx, id)
}

// prepare derives read time and sets the publish date when a post becomes published
func (s *blogService) prepare(post *models.BlogPost) {
	post.ReadTime = utils.ReadTime(post.Content)
	if post.Status == models.StatusPublished && post.PublishDate == nil {
		now := s.now().UTC()
		post.PublishDate = &now
	}
}

func (s *blogService) ensureSlugFree(ctx context.Context, slug string, excludeID int) error {
	exists, err := s.repo.SlugExists(ctx, slug, excludeID)
	if err != nil {
		return err
	}
	if exists {
		return apperrors.Conflict(msgBlogSlugTaken)
	}
	return nil
}
