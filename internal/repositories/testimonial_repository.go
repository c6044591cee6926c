package repositories

import (
	"context"
	"database/sql"
	"time"

	"go.uber.org/zap"

	"github.com/portfoliocms/backend/internal/apperrors"
	"github.com/portfoliocms/backend/internal/models"
)

const testimonialColumns = `id, name, position, company, email, content, avatar, rating, status, featured,
	sort_order, approved_at, created_at, updated_at`

const msgTestimonialNotFound = "Testimonial not found"

var testimonialOrder = map[string]string{
	"name":   "name ASC",
	"rating": "rating DESC",
}

const testimonialDefaultOrder = "sort_order ASC, created_at DESC"

// testimonialRepository implements TestimonialRepository
type testimonialRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewTestimonialRepository creates a new testimonial repository
func NewTestimonialRepository(db *sql.DB, logger *zap.Logger) *testimonialRepository {
	return &testimonialRepository{
		db:     db,
		logger: logger,
	}
}

func scanTestimonial(row rowScanner) (*models.Testimonial, error) {
	t := &models.Testimonial{}
	var position, company, email, avatar sql.NullString
	var approvedAt sql.NullTime
	err := row.Scan(
		&t.ID,
		&t.Name,
		&position,
		&company,
		&email,
		&t.Content,
		&avatar,
		&t.Rating,
		&t.Status,
		&t.Featured,
		&t.SortOrder,
		&approvedAt,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	t.Position = position.String
	t.Company = company.String
	t.Email = email.String
	t.Avatar = avatar.String
	t.ApprovedAt = timePtr(approvedAt)
	return t, nil
}

// Create inserts a new testimonial
func (r *testimonialRepository) Create(ctx context.Context, t *models.Testimonial) error {
	query := `
		INSERT INTO testimonials (name, position, company, email, content, avatar, rating, status, featured,
			sort_order, approved_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		t.Name, nullString(t.Position), nullString(t.Company), nullString(t.Email), t.Content,
		nullString(t.Avatar), t.Rating, t.Status, t.Featured, t.SortOrder, nullTime(t.ApprovedAt),
	)
	if err != nil {
		r.logger.Error("failed to create testimonial", zap.Error(err))
		return apperrors.Upstream("failed to create testimonial", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		r.logger.Error("failed to get last insert id", zap.Error(err))
		return apperrors.Upstream("failed to get last insert id", err)
	}

	t.ID = int(id)
	return nil
}

// GetByID retrieves a testimonial by id
func (r *testimonialRepository) GetByID(ctx context.Context, id int) (*models.Testimonial, error) {
	query := `SELECT ` + testimonialColumns + ` FROM testimonials WHERE id = ?`
	return getOne(ctx, r.db, r.logger, "testimonial", query, msgTestimonialNotFound, scanTestimonial, id)
}

// Update overwrites every editable column of the testimonial
func (r *testimonialRepository) Update(ctx context.Context, t *models.Testimonial) error {
	query := `
		UPDATE testimonials
		SET name = ?, position = ?, company = ?, email = ?, content = ?, avatar = ?, rating = ?, status = ?,
			featured = ?, sort_order = ?, approved_at = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`

	return execByID(ctx, r.db, r.logger, "update testimonial", query, msgTestimonialNotFound,
		t.Name, nullString(t.Position), nullString(t.Company), nullString(t.Email), t.Content,
		nullString(t.Avatar), t.Rating, t.Status, t.Featured, t.SortOrder, nullTime(t.ApprovedAt), t.ID,
	)
}

// Delete removes a testimonial
func (r *testimonialRepository) Delete(ctx context.Context, id int) error {
	return deleteByID(ctx, r.db, r.logger, "testimonials", id, msgTestimonialNotFound)
}

// List retrieves a filtered page of testimonials
func (r *testimonialRepository) List(ctx context.Context, filter models.TestimonialFilter, params models.ListParams) ([]models.Testimonial, error) {
	query, args := newListQuery().
		Equal("status", string(filter.Status)).
		Bool("featured", filter.Featured).
		EqualInt("rating", filter.Rating).
		Search(filter.Search, "name", "company", "content").
		OrderBy(filter.OrderBy, testimonialOrder, testimonialDefaultOrder).
		Build(`SELECT `+testimonialColumns+` FROM testimonials`, params)

	return queryList(ctx, r.db, r.logger, "testimonials", query, args, scanTestimonial)
}

// SetStatus changes the moderation status; approvedAt is stored as given
func (r *testimonialRepository) SetStatus(ctx context.Context, id int, status models.TestimonialStatus, approvedAt *time.Time) error {
	return execByID(ctx, r.db, r.logger, "update testimonial status",
		`UPDATE testimonials SET status = ?, approved_at = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		msgTestimonialNotFound, status, nullTime(approvedAt), id)
}

// ToggleFeatured flips the featured flag
func (r *testimonialRepository) ToggleFeatured(ctx context.Context, id int) error {
	return execByID(ctx, r.db, r.logger, "toggle testimonial featured",
		`UPDATE testimonials SET featured = NOT featured, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		msgTestimonialNotFound, id)
}
