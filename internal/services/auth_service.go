package services

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/portfoliocms/backend/internal/apperrors"
	"github.com/portfoliocms/backend/internal/auth"
	"github.com/portfoliocms/backend/internal/models"
	"go.uber.org/zap"
)

// UserRepository is the interface that wraps methods for users table data access
type UserRepository interface {
	// Method Create inserts a new user and sets its ID.
	//
	// A duplicate email is reported as a Conflict error.
	Create(ctx context.Context, user *models.User) error
	// Method GetByID retrieves a user by ID, including deactivated accounts.
	//
	// If user with such ID does not exist, a NotFound error is returned together with "nil" value.
	GetByID(ctx context.Context, id int) (*models.User, error)
	// Method GetActiveByEmail retrieves an active user by email.
	//
	// If no active user has this email, a NotFound error is returned together with "nil" value.
	GetActiveByEmail(ctx context.Context, email string) (*models.User, error)
	// Method ExistsByEmail checks if another user already owns the email.
	//
	// "excludeID" is skipped in the check; pass 0 to check all users.
	ExistsByEmail(ctx context.Context, email string, excludeID int) (bool, error)
	// Method UpdateProfile stores name, email and avatar of the user.
	UpdateProfile(ctx context.Context, user *models.User) error
	// Method UpdatePassword stores a new password hash.
	UpdatePassword(ctx context.Context, id int, hash string) error
	// Method UpdateLastLogin records the time of a successful login.
	UpdateLastLogin(ctx context.Context, id int, at time.Time) error
	// Method Deactivate soft deletes an active user.
	//
	// If no active user has this ID, a NotFound error is returned.
	Deactivate(ctx context.Context, id int) error
	// Method List retrieves a page of active users.
	List(ctx context.Context, filter models.UserFilter, params models.ListParams) ([]models.User, error)
}

// TokenService issues and verifies token pairs
type TokenService interface {
	IssuePair(identity models.Identity) (*auth.TokenPair, error)
	VerifyAccessToken(token string) (*auth.Claims, error)
	VerifyRefreshToken(token string) (*auth.Claims, error)
}

// PasswordService hashes and compares passwords
type PasswordService interface {
	Hash(plain string) (string, error)
	Compare(plain, hash string) bool
}

const (
	msgInvalidCredentials = "Invalid credentials"
	msgInvalidToken       = "Invalid token."
	msgInvalidRefresh     = "Invalid refresh token"
	msgAccountDeactivated = "Account is deactivated."
	msgEmailExists        = "User with this email already exists"
	msgPasswordPolicy     = "Password must be at least 8 characters long and contain at least one uppercase letter, one lowercase letter, one number, and one special character"
)

// passwordRegex validates password: at least 8 chars, uppercase, lowercase, number, special character
var passwordRegex = []*regexp.Regexp{
	regexp.MustCompile(`.{8,}`),
	regexp.MustCompile(`[a-z]`),
	regexp.MustCompile(`[A-Z]`),
	regexp.MustCompile(`[0-9]`),
	regexp.MustCompile(`[^a-zA-Z0-9\s]`),
}

type authService struct {
	userRepo UserRepository
	tokens   TokenService
	hasher   PasswordService
	logger   *zap.Logger
	now      func() time.Time
}

// NewAuthService creates a new auth service
func NewAuthService(userRepo UserRepository, tokens TokenService, hasher PasswordService, logger *zap.Logger) *authService {
	return &authService{
		userRepo: userRepo,
		tokens:   tokens,
		hasher:   hasher,
		logger:   logger,
		now:      time.Now,
	}
}

// Login authenticates an active user and issues a token pair.
//
// Unknown email, deactivated account and wrong password all fail with the same message.
func (s *authService) Login(ctx context.Context, req *models.LoginRequest) (*models.AuthResult, error) {
	req.Email = normalizeEmail(req.Email)
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetActiveByEmail(ctx, req.Email)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.Unauthenticated(msgInvalidCredentials)
		}
		return nil, err
	}

	if !s.hasher.Compare(req.Password, user.Password) {
		return nil, apperrors.Unauthenticated(msgInvalidCredentials)
	}

	now := s.now()
	if err := s.userRepo.UpdateLastLogin(ctx, user.ID, now); err != nil {
		// Login still succeeds without the timestamp
		s.logger.Warn("failed to update last login", zap.Int("userId", user.ID), zap.Error(err))
	} else {
		user.LastLogin = &now
	}

	return s.issue(user)
}

// Refresh exchanges a valid refresh token for a new pair.
// The user must still exist and be active.
func (s *authService) Refresh(ctx context.Context, refreshToken string) (*models.AuthResult, error) {
	refreshToken = strings.TrimSpace(refreshToken)
	if refreshToken == "" {
		return nil, apperrors.Unauthenticated("Refresh token required")
	}

	claims, err := s.tokens.VerifyRefreshToken(refreshToken)
	if err != nil {
		return nil, apperrors.Unauthenticated(msgInvalidRefresh)
	}

	user, err := s.activeUser(ctx, claims.ID, msgInvalidRefresh)
	if err != nil {
		return nil, err
	}

	return s.issue(user)
}

// ResolveUser verifies an access token and loads its user.
// Staleness is never cached: every call reads the user row.
func (s *authService) ResolveUser(ctx context.Context, accessToken string) (*models.User, error) {
	claims, err := s.tokens.VerifyAccessToken(accessToken)
	if err != nil {
		return nil, apperrors.Unauthenticated(msgInvalidToken)
	}
	return s.activeUser(ctx, claims.ID, msgInvalidToken)
}

// Register creates a new administrator account.
// The role defaults to admin.
func (s *authService) Register(ctx context.Context, req *models.RegisterRequest) (*models.User, error) {
	req.Email = normalizeEmail(req.Email)
	req.Name = strings.TrimSpace(req.Name)
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	if err := checkPasswordPolicy("password", req.Password); err != nil {
		return nil, err
	}

	exists, err := s.userRepo.ExistsByEmail(ctx, req.Email, 0)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperrors.Conflict(msgEmailExists)
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, apperrors.Upstream("failed to hash password", err)
	}

	role := req.Role
	if role == "" {
		role = models.RoleAdmin
	}

	user := &models.User{
		Name:     req.Name,
		Email:    req.Email,
		Password: hash,
		Role:     role,
		Avatar:   req.Avatar,
		IsActive: true,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("user registered", zap.Int("userId", user.ID), zap.String("role", string(user.Role)))
	return user, nil
}

// GetProfile returns the active user with the given id
func (s *authService) GetProfile(ctx context.Context, userID int) (*models.User, error) {
	return s.activeUser(ctx, userID, "")
}

// UpdateProfile changes name, email and avatar of the user
func (s *authService) UpdateProfile(ctx context.Context, userID int, req *models.UpdateProfileRequest) (*models.User, error) {
	if req.Email != nil {
		email := normalizeEmail(*req.Email)
		req.Email = &email
	}
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	user, err := s.activeUser(ctx, userID, "")
	if err != nil {
		return nil, err
	}

	if req.Email != nil && *req.Email != user.Email {
		exists, err := s.userRepo.ExistsByEmail(ctx, *req.Email, user.ID)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, apperrors.Conflict(msgEmailExists)
		}
		user.Email = *req.Email
	}
	if req.Name != nil {
		user.Name = strings.TrimSpace(*req.Name)
	}
	if req.Avatar != nil {
		user.Avatar = *req.Avatar
	}

	if err := s.userRepo.UpdateProfile(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// ChangePassword replaces the password after checking the current one
func (s *authService) ChangePassword(ctx context.Context, userID int, req *models.ChangePasswordRequest) error {
	if err := validateRequest(req); err != nil {
		return err
	}
	if err := checkPasswordPolicy("newPassword", req.NewPassword); err != nil {
		return err
	}

	user, err := s.activeUser(ctx, userID, "")
	if err != nil {
		return err
	}

	if !s.hasher.Compare(req.CurrentPassword, user.Password) {
		return apperrors.Validation("Current password is incorrect",
			apperrors.FieldError{Field: "currentPassword", Message: "Current password is incorrect"})
	}

	hash, err := s.hasher.Hash(req.NewPassword)
	if err != nil {
		return apperrors.Upstream("failed to hash password", err)
	}
	return s.userRepo.UpdatePassword(ctx, user.ID, hash)
}

// ListUsers returns a page of active users
func (s *authService) ListUsers(ctx context.Context, filter models.UserFilter, params models.ListParams) (*models.ListResult[models.User], error) {
	if filter.Role != "" && !filter.Role.Valid() {
		filter.Role = ""
	}
	users, err := s.userRepo.List(ctx, filter, params)
	if err != nil {
		return nil, err
	}
	return models.NewListResult(params, users), nil
}

// DeleteUser soft deletes a user. An account cannot delete itself.
func (s *authService) DeleteUser(ctx context.Context, actorID, userID int) error {
	if actorID == userID {
		return apperrors.Validation("Cannot delete your own account")
	}
	if err := s.userRepo.Deactivate(ctx, userID); err != nil {
		return err
	}
	s.logger.Info("user deactivated", zap.Int("userId", userID), zap.Int("actorId", actorID))
	return nil
}

// EnsureDefaultAdmin creates the super admin account when no user owns its email.
// It returns true when an account was created.
func (s *authService) EnsureDefaultAdmin(ctx context.Context, email, password, name string) (bool, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return false, nil
	}

	exists, err := s.userRepo.ExistsByEmail(ctx, email, 0)
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return false, apperrors.Upstream("failed to hash password", err)
	}

	user := &models.User{
		Name:     name,
		Email:    email,
		Password: hash,
		Role:     models.RoleSuperAdmin,
		IsActive: true,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		// Another instance may have seeded it concurrently
		if apperrors.KindOf(err) == apperrors.KindConflict {
			return false, nil
		}
		return false, err
	}

	s.logger.Info("default admin created", zap.String("email", email))
	return true, nil
}

// activeUser loads a user and rejects deactivated accounts.
// A non-empty notFoundMessage turns a missing user into an authentication error.
func (s *authService) activeUser(ctx context.Context, id int, notFoundMessage string) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if notFoundMessage != "" && apperrors.IsNotFound(err) {
			return nil, apperrors.Unauthenticated(notFoundMessage)
		}
		return nil, err
	}
	if !user.IsActive {
		if notFoundMessage == "" {
			return nil, apperrors.NotFound("User not found")
		}
		return nil, apperrors.Unauthenticated(msgAccountDeactivated)
	}
	return user, nil
}

func (s *authService) issue(user *models.User) (*models.AuthResult, error) {
	pair, err := s.tokens.IssuePair(user.Identity())
	if err != nil {
		return nil, apperrors.Upstream("failed to generate tokens", err)
	}
	return &models.AuthResult{
		User:         user,
		Token:        pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	}, nil
}

func checkPasswordPolicy(field, password string) error {
	for _, regex := range passwordRegex {
		if !regex.MatchString(password) {
			return apperrors.Validation("Validation failed", apperrors.FieldError{Field: field, Message: msgPasswordPolicy})
		}
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
