package repositories

import (
	"context"
	"database/sql"

	"go.uber.org/zap"

	"github.com/portfoliocms/backend/internal/apperrors"
	"github.com/portfoliocms/backend/internal/models"
)

const experienceColumns = "id, company, position, location, type, start_date, end_date, `current`, description, " +
	"achievements, technologies, company_logo, company_url, sort_order, created_at, updated_at"

const msgExperienceNotFound = "Experience not found"

var experienceOrder = map[string]string{
	"company":    "company ASC",
	"start_date": "start_date DESC",
}

const experienceDefaultOrder = "sort_order ASC, start_date DESC"

// experienceRepository implements ExperienceRepository
type experienceRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewExperienceRepository creates a new experience repository
func NewExperienceRepository(db *sql.DB, logger *zap.Logger) *experienceRepository {
	return &experienceRepository{
		db:     db,
		logger: logger,
	}
}

func scanExperience(row rowScanner) (*models.Experience, error) {
	e := &models.Experience{}
	var achievements, technologies stringList
	var location, description, logo, url sql.NullString
	var endDate sql.NullTime
	err := row.Scan(
		&e.ID,
		&e.Company,
		&e.Position,
		&location,
		&e.Type,
		&e.StartDate,
		&endDate,
		&e.Current,
		&description,
		&achievements,
		&technologies,
		&logo,
		&url,
		&e.SortOrder,
		&e.CreatedAt,
		&e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	e.Location = location.String
	e.Description = description.String
	e.Achievements = achievements
	e.Technologies = technologies
	e.CompanyLogo = logo.String
	e.CompanyURL = url.String
	if endDate.Valid {
		end := models.NewDate(endDate.Time.Year(), endDate.Time.Month(), endDate.Time.Day())
		e.EndDate = &end
	}
	return e, nil
}

func endDateArg(d *models.Date) any {
	if d == nil {
		return nil
	}
	return d.String()
}

// Create inserts a new experience entry
func (r *experienceRepository) Create(ctx context.Context, e *models.Experience) error {
	query := "INSERT INTO experiences (company, position, location, type, start_date, end_date, `current`, " +
		"description, achievements, technologies, company_logo, company_url, sort_order) " +
		"VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)"

	result, err := r.db.ExecContext(ctx, query,
		e.Company, e.Position, nullString(e.Location), e.Type, e.StartDate, endDateArg(e.EndDate), e.Current,
		nullString(e.Description), stringList(e.Achievements), stringList(e.Technologies),
		nullString(e.CompanyLogo), nullString(e.CompanyURL), e.SortOrder,
	)
	if err != nil {
		r.logger.Error("failed to create experience", zap.Error(err))
		return apperrors.Upstream("failed to create experience", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		r.logger.Error("failed to get last insert id", zap.Error(err))
		return apperrors.Upstream("failed to get last insert id", err)
	}

	e.ID = int(id)
	return nil
}

// GetByID retrieves an experience entry by id
func (r *experienceRepository) GetByID(ctx context.Context, id int) (*models.Experience, error) {
	query := `SELECT ` + experienceColumns + ` FROM experiences WHERE id = ?`
	return getOne(ctx, r.db, r.logger, "experience", query, msgExperienceNotFound, scanExperience, id)
}

// Update overwrites every editable column of the entry
func (r *experienceRepository) Update(ctx context.Context, e *models.Experience) error {
	query := "UPDATE experiences SET company = ?, position = ?, location = ?, type = ?, start_date = ?, " +
		"end_date = ?, `current` = ?, description = ?, achievements = ?, technologies = ?, company_logo = ?, " +
		"company_url = ?, sort_order = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?"

	return execByID(ctx, r.db, r.logger, "update experience", query, msgExperienceNotFound,
		e.Company, e.Position, nullString(e.Location), e.Type, e.StartDate, endDateArg(e.EndDate), e.Current,
		nullString(e.Description), stringList(e.Achievements), stringList(e.Technologies),
		nullString(e.CompanyLogo), nullString(e.CompanyURL), e.SortOrder, e.ID,
	)
}

// Delete removes an experience entry
func (r *experienceRepository) Delete(ctx context.Context, id int) error {
	return deleteByID(ctx, r.db, r.logger, "experiences", id, msgExperienceNotFound)
}

// List retrieves a filtered page of experience entries
func (r *experienceRepository) List(ctx context.Context, filter models.ExperienceFilter, params models.ListParams) ([]models.Experience, error) {
	query, args := newListQuery().
		Equal("type", string(filter.Type)).
		Equal("company", filter.Company).
		Bool("`current`", filter.Current).
		Search(filter.Search, "company", "position", "description", "location").
		OrderBy(filter.OrderBy, experienceOrder, experienceDefaultOrder).
		Build(`SELECT `+experienceColumns+` FROM experiences`, params)

	return queryList(ctx, r.db, r.logger, "experiences", query, args, scanExperience)
}

// Companies lists the distinct company names
func (r *experienceRepository) Companies(ctx context.Context) ([]string, error) {
	return queryStrings(ctx, r.db, r.logger, "companies",
		`SELECT DISTINCT company FROM experiences ORDER BY company ASC`)
}
