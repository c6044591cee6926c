package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/portfoliocms/backend/internal/apperrors"
	"github.com/portfoliocms/backend/internal/models"
)

const userColumns = `id, name, email, password, role, avatar, is_active, last_login, created_at, updated_at`

const msgUserNotFound = "User not found"

// userRepository implements UserRepository
type userRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *sql.DB, logger *zap.Logger) *userRepository {
	return &userRepository{
		db:     db,
		logger: logger,
	}
}

func scanUser(row rowScanner) (*models.User, error) {
	user := &models.User{}
	var avatar sql.NullString
	var lastLogin sql.NullTime
	err := row.Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.Password,
		&user.Role,
		&avatar,
		&user.IsActive,
		&lastLogin,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	user.Avatar = avatar.String
	user.LastLogin = timePtr(lastLogin)
	return user, nil
}

// Create inserts a new user into the database
func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (name, email, password, role, avatar, is_active)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		user.Name, user.Email, user.Password, user.Role, nullString(user.Avatar), user.IsActive)
	if err != nil {
		r.logger.Error("failed to create user", zap.Error(err), zap.String("email", user.Email))
		return writeError(err, "User with this email already exists", "failed to create user")
	}

	id, err := result.LastInsertId()
	if err != nil {
		r.logger.Error("failed to get last insert id", zap.Error(err))
		return apperrors.Upstream("failed to get last insert id", err)
	}

	user.ID = int(id)
	return nil
}

// GetByID retrieves a user by id, including deactivated accounts
func (r *userRepository) GetByID(ctx context.Context, id int) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = ?`

	user, err := scanUser(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound(msgUserNotFound)
	}
	if err != nil {
		r.logger.Error("failed to get user by id", zap.Error(err), zap.Int("id", id))
		return nil, apperrors.Upstream("failed to get user by id", err)
	}

	return user, nil
}

// GetActiveByEmail retrieves an active user by email
func (r *userRepository) GetActiveByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = ? AND is_active = 1 LIMIT 1`

	user, err := scanUser(r.db.QueryRowContext(ctx, query, email))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound(msgUserNotFound)
	}
	if err != nil {
		r.logger.Error("failed to get user by email", zap.Error(err), zap.String("email", email))
		return nil, apperrors.Upstream("failed to get user by email", err)
	}

	return user, nil
}

// ExistsByEmail checks if another account already uses the email
func (r *userRepository) ExistsByEmail(ctx context.Context, email string, excludeID int) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM users WHERE email = ? AND id <> ?)`

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, email, excludeID).Scan(&exists); err != nil {
		r.logger.Error("failed to check email existence", zap.Error(err), zap.String("email", email))
		return false, apperrors.Upstream("failed to check email existence", err)
	}

	return exists, nil
}

// UpdateProfile updates the editable profile fields
func (r *userRepository) UpdateProfile(ctx context.Context, user *models.User) error {
	query := `UPDATE users SET name = ?, email = ?, avatar = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ? AND is_active = 1`

	result, err := r.db.ExecContext(ctx, query, user.Name, user.Email, nullString(user.Avatar), user.ID)
	if err != nil {
		r.logger.Error("failed to update user", zap.Error(err), zap.Int("id", user.ID))
		return writeError(err, "User with this email already exists", "failed to update user")
	}
	return rowsAffectedOrNotFound(result, msgUserNotFound)
}

// UpdatePassword stores a new password hash
func (r *userRepository) UpdatePassword(ctx context.Context, id int, hash string) error {
	query := `UPDATE users SET password = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ? AND is_active = 1`

	result, err := r.db.ExecContext(ctx, query, hash, id)
	if err != nil {
		r.logger.Error("failed to update password", zap.Error(err), zap.Int("id", id))
		return apperrors.Upstream("failed to update password", err)
	}
	return rowsAffectedOrNotFound(result, msgUserNotFound)
}

// UpdateLastLogin records a successful login
func (r *userRepository) UpdateLastLogin(ctx context.Context, id int, at time.Time) error {
	query := `UPDATE users SET last_login = ? WHERE id = ?`

	if _, err := r.db.ExecContext(ctx, query, at, id); err != nil {
		r.logger.Error("failed to update last login", zap.Error(err), zap.Int("id", id))
		return apperrors.Upstream("failed to update last login", err)
	}
	return nil
}

// Deactivate soft deletes an active user
func (r *userRepository) Deactivate(ctx context.Context, id int) error {
	query := `UPDATE users SET is_active = 0, updated_at = CURRENT_TIMESTAMP WHERE id = ? AND is_active = 1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		r.logger.Error("failed to deactivate user", zap.Error(err), zap.Int("id", id))
		return apperrors.Upstream("failed to deactivate user", err)
	}
	return rowsAffectedOrNotFound(result, msgUserNotFound)
}

// List retrieves a page of active users
func (r *userRepository) List(ctx context.Context, filter models.UserFilter, params models.ListParams) ([]models.User, error) {
	q := newListQuery()
	q.conditions = append(q.conditions, "is_active = 1")
	q.Equal("role", string(filter.Role)).
		Search(filter.Search, "name", "email").
		OrderBy("", nil, "created_at DESC")

	query, args := q.Build(`SELECT `+userColumns+` FROM users`, params)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("failed to list users", zap.Error(err))
		return nil, apperrors.Upstream("failed to list users", err)
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			r.logger.Error("failed to scan user", zap.Error(err))
			return nil, apperrors.Upstream("failed to scan user", err)
		}
		users = append(users, *user)
	}
	if err := rows.Err(); err != nil {
		r.logger.Error("error iterating users", zap.Error(err))
		return nil, apperrors.Upstream("error iterating users", err)
	}

	return users, nil
}
