package repositories

import (
	"context"
	"database/sql"

	"go.uber.org/zap"

	"github.com/portfoliocms/backend/internal/apperrors"
	"github.com/portfoliocms/backend/internal/models"
)

const blogColumns = `id, title, slug, excerpt, content, featured_image, category, tags, status, featured,
	publish_date, read_time, views, sort_order, author_id, created_at, updated_at`

const (
	msgBlogNotFound = "Blog post not found"
	msgBlogSlug     = "A blog post with this slug already exists"
)

var blogOrder = map[string]string{
	"title":        "title ASC",
	"views":        "views DESC",
	"publish_date": "publish_date DESC",
}

const blogDefaultOrder = "sort_order ASC, publish_date DESC"

// blogRepository implements BlogRepository
type blogRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewBlogRepository creates a new blog repository
func NewBlogRepository(db *sql.DB, logger *zap.Logger) *blogRepository {
	return &blogRepository{
		db:     db,
		logger: logger,
	}
}

func scanBlogPost(row rowScanner) (*models.BlogPost, error) {
	p := &models.BlogPost{}
	var tags stringList
	var excerpt, image, category sql.NullString
	var publishDate sql.NullTime
	var authorID sql.NullInt64
	err := row.Scan(
		&p.ID,
		&p.Title,
		&p.Slug,
		&excerpt,
		&p.Content,
		&image,
		&category,
		&tags,
		&p.Status,
		&p.Featured,
		&publishDate,
		&p.ReadTime,
		&p.Views,
		&p.SortOrder,
		&authorID,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	p.Excerpt = excerpt.String
	p.FeaturedImage = image.String
	p.Category = category.String
	p.Tags = tags
	p.PublishDate = timePtr(publishDate)
	p.AuthorID = intPtr(authorID)
	return p, nil
}

// Create inserts a new blog post
func (r *blogRepository) Create(ctx context.Context, p *models.BlogPost) error {
	query := `
		INSERT INTO blog_posts (title, slug, excerpt, content, featured_image, category, tags, status,
			featured, publish_date, read_time, sort_order, author_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		p.Title, p.Slug, nullString(p.Excerpt), p.Content, nullString(p.FeaturedImage), nullString(p.Category),
		stringList(p.Tags), p.Status, p.Featured, nullTime(p.PublishDate), p.ReadTime, p.SortOrder,
		nullInt(p.AuthorID),
	)
	if err != nil {
		r.logger.Error("failed to create blog post", zap.Error(err), zap.String("slug", p.Slug))
		return writeError(err, msgBlogSlug, "failed to create blog post")
	}

	id, err := result.LastInsertId()
	if err != nil {
		r.logger.Error("failed to get last insert id", zap.Error(err))
		return apperrors.Upstream("failed to get last insert id", err)
	}

	p.ID = int(id)
	return nil
}

// GetByID retrieves a blog post by id
func (r *blogRepository) GetByID(ctx context.Context, id int) (*models.BlogPost, error) {
	query := `SELECT ` + blogColumns + ` FROM blog_posts WHERE id = ?`
	return getOne(ctx, r.db, r.logger, "blog post", query, msgBlogNotFound, scanBlogPost, id)
}

// GetBySlug retrieves a blog post by slug
func (r *blogRepository) GetBySlug(ctx context.Context, slug string) (*models.BlogPost, error) {
	query := `SELECT ` + blogColumns + ` FROM blog_posts WHERE slug = ?`
	return getOne(ctx, r.db, r.logger, "blog post by slug", query, msgBlogNotFound, scanBlogPost, slug)
}

// SlugExists checks whether another post already uses slug
func (r *blogRepository) SlugExists(ctx context.Context, slug string, excludeID int) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM blog_posts WHERE slug = ? AND id <> ?)`

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, slug, excludeID).Scan(&exists); err != nil {
		r.logger.Error("failed to check blog slug", zap.Error(err), zap.String("slug", slug))
		return false, apperrors.Upstream("failed to check blog slug", err)
	}
	return exists, nil
}

// Update overwrites every editable column of the post
func (r *blogRepository) Update(ctx context.Context, p *models.BlogPost) error {
	query := `
		UPDATE blog_posts
		SET title = ?, slug = ?, excerpt = ?, content = ?, featured_image = ?, category = ?, tags = ?,
			status = ?, featured = ?, publish_date = ?, read_time = ?, sort_order = ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`

	result, err := r.db.ExecContext(ctx, query,
		p.Title, p.Slug, nullString(p.Excerpt), p.Content, nullString(p.FeaturedImage), nullString(p.Category),
		stringList(p.Tags), p.Status, p.Featured, nullTime(p.PublishDate), p.ReadTime, p.SortOrder, p.ID,
	)
	if err != nil {
		r.logger.Error("failed to update blog post", zap.Error(err), zap.Int("id", p.ID))
		return writeError(err, msgBlogSlug, "failed to update blog post")
	}
	return rowsAffectedOrNotFound(result, msgBlogNotFound)
}

// Delete removes a blog post
func (r *blogRepository) Delete(ctx context.Context, id int) error {
	return deleteByID(ctx, r.db, r.logger, "blog_posts", id, msgBlogNotFound)
}

// List retrieves a filtered page of blog posts
func (r *blogRepository) List(ctx context.Context, filter models.BlogFilter, params models.ListParams) ([]models.BlogPost, error) {
	query, args := newListQuery().
		Equal("status", string(filter.Status)).
		Equal("category", filter.Category).
		JSONContains("tags", filter.Tag).
		Bool("featured", filter.Featured).
		Search(filter.Search, "title", "excerpt", "content").
		OrderBy(filter.OrderBy, blogOrder, blogDefaultOrder).
		Build(`SELECT `+blogColumns+` FROM blog_posts`, params)

	return queryList(ctx, r.db, r.logger, "blog posts", query, args, scanBlogPost)
}

// Categories lists the distinct non-empty categories
func (r *blogRepository) Categories(ctx context.Context, publishedOnly bool) ([]string, error) {
	q := newListQuery().Equal("status", publishedStatusFilter(publishedOnly))
	q.conditions = append(q.conditions, "category IS NOT NULL", "category <> ''")
	where, args := q.Where()
	query := `SELECT DISTINCT category FROM blog_posts` + where + ` ORDER BY category ASC`
	return queryStrings(ctx, r.db, r.logger, "blog categories", query, args...)
}

// Tags lists the distinct tags across posts
func (r *blogRepository) Tags(ctx context.Context, publishedOnly bool) ([]string, error) {
	where, args := newListQuery().Equal("status", publishedStatusFilter(publishedOnly)).Where()
	query := `SELECT tags FROM blog_posts` + where

	lists, err := queryList(ctx, r.db, r.logger, "blog tags", query, args, func(row rowScanner) (*stringList, error) {
		var l stringList
		if err := row.Scan(&l); err != nil {
			return nil, err
		}
		return &l, nil
	})
	if err != nil {
		return nil, err
	}
	return distinctStrings(lists), nil
}

// IncrementViews adds one view to the post
func (r *blogRepository) IncrementViews(ctx context.Context, id int) error {
	return execByID(ctx, r.db, r.logger, "increment blog views",
		`UPDATE blog_posts SET views = views + 1 WHERE id = ?`, msgBlogNotFound, id)
}

// ToggleFeatured flips the featured flag
func (r *blogRepository) ToggleFeatured(ctx context.Context, id int) error {
	return execByID(ctx, r.db, r.logger, "toggle blog featured",
		`UPDATE blog_posts SET featured = NOT featured, updated_at = CURRENT_TIMESTAMP WHERE id = ?`, msgBlogNotFound, id)
}

// OwnerID returns the author of the post
func (r *blogRepository) OwnerID(ctx context.Context, id int) (*int, error) {
	return ownerID(ctx, r.db, r.logger, `SELECT author_id FROM blog_posts WHERE id = ?`, msgBlogNotFound, id)
}
