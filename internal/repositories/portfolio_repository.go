package repositories

import (
	"context"
	"database/sql"

	"go.uber.org/zap"

	"github.com/portfoliocms/backend/internal/apperrors"
	"github.com/portfoliocms/backend/internal/models"
)

const portfolioColumns = `id, title, slug, description, content, category, technologies, images, thumbnail,
	live_url, github_url, status, featured, sort_order, views, author_id, created_at, updated_at`

const (
	msgPortfolioNotFound = "Portfolio item not found"
	msgPortfolioSlug     = "A portfolio item with this slug already exists"
)

var portfolioOrder = map[string]string{
	"title":      "title ASC",
	"views":      "views DESC",
	"created_at": "created_at DESC",
}

const portfolioDefaultOrder = "sort_order ASC, created_at DESC"

// portfolioRepository implements PortfolioRepository
type portfolioRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewPortfolioRepository creates a new portfolio repository
func NewPortfolioRepository(db *sql.DB, logger *zap.Logger) *portfolioRepository {
	return &portfolioRepository{
		db:     db,
		logger: logger,
	}
}

func scanPortfolioItem(row rowScanner) (*models.PortfolioItem, error) {
	item := &models.PortfolioItem{}
	var technologies, images stringList
	var content, thumbnail, liveURL, githubURL sql.NullString
	var authorID sql.NullInt64
	err := row.Scan(
		&item.ID,
		&item.Title,
		&item.Slug,
		&item.Description,
		&content,
		&item.Category,
		&technologies,
		&images,
		&thumbnail,
		&liveURL,
		&githubURL,
		&item.Status,
		&item.Featured,
		&item.SortOrder,
		&item.Views,
		&authorID,
		&item.CreatedAt,
		&item.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	item.Content = content.String
	item.Technologies = technologies
	item.Images = images
	item.Thumbnail = thumbnail.String
	item.LiveURL = liveURL.String
	item.GithubURL = githubURL.String
	item.AuthorID = intPtr(authorID)
	return item, nil
}

// Create inserts a new portfolio item
func (r *portfolioRepository) Create(ctx context.Context, item *models.PortfolioItem) error {
	query := `
		INSERT INTO portfolio_items (title, slug, description, content, category, technologies, images,
			thumbnail, live_url, github_url, status, featured, sort_order, author_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		item.Title, item.Slug, item.Description, nullString(item.Content), item.Category,
		stringList(item.Technologies), stringList(item.Images), nullString(item.Thumbnail),
		nullString(item.LiveURL), nullString(item.GithubURL), item.Status, item.Featured,
		item.SortOrder, nullInt(item.AuthorID),
	)
	if err != nil {
		r.logger.Error("failed to create portfolio item", zap.Error(err), zap.String("slug", item.Slug))
		return writeError(err, msgPortfolioSlug, "failed to create portfolio item")
	}

	id, err := result.LastInsertId()
	if err != nil {
		r.logger.Error("failed to get last insert id", zap.Error(err))
		return apperrors.Upstream("failed to get last insert id", err)
	}

	item.ID = int(id)
	return nil
}

// GetByID retrieves a portfolio item by id
func (r *portfolioRepository) GetByID(ctx context.Context, id int) (*models.PortfolioItem, error) {
	query := `SELECT ` + portfolioColumns + ` FROM portfolio_items WHERE id = ?`
	return getOne(ctx, r.db, r.logger, "portfolio item", query, msgPortfolioNotFound, scanPortfolioItem, id)
}

// GetBySlug retrieves a portfolio item by slug
func (r *portfolioRepository) GetBySlug(ctx context.Context, slug string) (*models.PortfolioItem, error) {
	query := `SELECT ` + portfolioColumns + ` FROM portfolio_items WHERE slug = ?`
	return getOne(ctx, r.db, r.logger, "portfolio item by slug", query, msgPortfolioNotFound, scanPortfolioItem, slug)
}

// SlugExists checks whether another item already uses slug
func (r *portfolioRepository) SlugExists(ctx context.Context, slug string, excludeID int) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM portfolio_items WHERE slug = ? AND id <> ?)`

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, slug, excludeID).Scan(&exists); err != nil {
		r.logger.Error("failed to check portfolio slug", zap.Error(err), zap.String("slug", slug))
		return false, apperrors.Upstream("failed to check portfolio slug", err)
	}
	return exists, nil
}

// Update overwrites every editable column of the item
func (r *portfolioRepository) Update(ctx context.Context, item *models.PortfolioItem) error {
	query := `
		UPDATE portfolio_items
		SET title = ?, slug = ?, description = ?, content = ?, category = ?, technologies = ?, images = ?,
			thumbnail = ?, live_url = ?, github_url = ?, status = ?, featured = ?, sort_order = ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`

	result, err := r.db.ExecContext(ctx, query,
		item.Title, item.Slug, item.Description, nullString(item.Content), item.Category,
		stringList(item.Technologies), stringList(item.Images), nullString(item.Thumbnail),
		nullString(item.LiveURL), nullString(item.GithubURL), item.Status, item.Featured,
		item.SortOrder, item.ID,
	)
	if err != nil {
		r.logger.Error("failed to update portfolio item", zap.Error(err), zap.Int("id", item.ID))
		return writeError(err, msgPortfolioSlug, "failed to update portfolio item")
	}
	return rowsAffectedOrNotFound(result, msgPortfolioNotFound)
}

// Delete removes a portfolio item
func (r *portfolioRepository) Delete(ctx context.Context, id int) error {
	return deleteByID(ctx, r.db, r.logger, "portfolio_items", id, msgPortfolioNotFound)
}

// List retrieves a filtered page of portfolio items
func (r *portfolioRepository) List(ctx context.Context, filter models.PortfolioFilter, params models.ListParams) ([]models.PortfolioItem, error) {
	query, args := newListQuery().
		Equal("status", string(filter.Status)).
		Equal("category", filter.Category).
		Bool("featured", filter.Featured).
		Search(filter.Search, "title", "description", "content").
		OrderBy(filter.OrderBy, portfolioOrder, portfolioDefaultOrder).
		Build(`SELECT `+portfolioColumns+` FROM portfolio_items`, params)

	return queryList(ctx, r.db, r.logger, "portfolio items", query, args, scanPortfolioItem)
}

// Categories lists the distinct categories, optionally only of published items
func (r *portfolioRepository) Categories(ctx context.Context, publishedOnly bool) ([]string, error) {
	where, args := newListQuery().Equal("status", publishedStatusFilter(publishedOnly)).Where()
	query := `SELECT DISTINCT category FROM portfolio_items` + where + ` ORDER BY category ASC`
	return queryStrings(ctx, r.db, r.logger, "portfolio categories", query, args...)
}

// IncrementViews adds one view to the item
func (r *portfolioRepository) IncrementViews(ctx context.Context, id int) error {
	return execByID(ctx, r.db, r.logger, "increment portfolio views",
		`UPDATE portfolio_items SET views = views + 1 WHERE id = ?`, msgPortfolioNotFound, id)
}

// ToggleFeatured flips the featured flag
func (r *portfolioRepository) ToggleFeatured(ctx context.Context, id int) error {
	return execByID(ctx, r.db, r.logger, "toggle portfolio featured",
		`UPDATE portfolio_items SET featured = NOT featured, updated_at = CURRENT_TIMESTAMP WHERE id = ?`, msgPortfolioNotFound, id)
}

// OwnerID returns the author of the item
func (r *portfolioRepository) OwnerID(ctx context.Context, id int) (*int, error) {
	return ownerID(ctx, r.db, r.logger, `SELECT author_id FROM portfolio_items WHERE id = ?`, msgPortfolioNotFound, id)
}

func publishedStatusFilter(publishedOnly bool) string {
	if publishedOnly {
		return string(models.StatusPublished)
	}
	return ""
}

func ownerID(ctx context.Context, db *sql.DB, logger *zap.Logger, query, notFoundMessage string, id int) (*int, error) {
	owner, err := getOne(ctx, db, logger, "owner", query, notFoundMessage, func(row rowScanner) (*sql.NullInt64, error) {
		var n sql.NullInt64
		if err := row.Scan(&n); err != nil {
			return nil, err
		}
		return &n, nil
	}, id)
	if err != nil {
		return nil, err
	}
	return intPtr(*owner), nil
}
