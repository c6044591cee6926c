// Package auth issues and verifies JWT token pairs and hashes account passwords.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/portfoliocms/backend/internal/models"
)

// ErrInvalidToken is returned for every token that fails verification,
// whatever the underlying reason (malformed, bad signature, expired, wrong secret)
var ErrInvalidToken = errors.New("invalid token")

const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
)

// Claims is the JWT payload carried by access and refresh tokens
type Claims struct {
	ID    int         `json:"id"`
	Email string      `json:"email"`
	Role  models.Role `json:"role"`
	Type  string      `json:"type"`
	jwt.RegisteredClaims
}

// Identity returns the principal encoded in the claims
func (c *Claims) Identity() models.Identity {
	return models.Identity{ID: c.ID, Email: c.Email, Role: c.Role}
}

// TokenPair is an access token with its refresh token
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// TokenIssuer signs and verifies HS256 tokens.
// Access and refresh tokens use distinct secrets and lifetimes.
type TokenIssuer struct {
	accessSecret  []byte
	refreshSecret []byte
	accessExpiry  time.Duration
	refreshExpiry time.Duration
	now           func() time.Time
}

// NewTokenIssuer creates a new token issuer
func NewTokenIssuer(accessSecret, refreshSecret string, accessExpiry, refreshExpiry time.Duration) *TokenIssuer {
	return &TokenIssuer{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessExpiry:  accessExpiry,
		refreshExpiry: refreshExpiry,
		now:           time.Now,
	}
}

// IssuePair generates both tokens for the identity
func (ti *TokenIssuer) IssuePair(identity models.Identity) (*TokenPair, error) {
	access, err := ti.IssueAccessToken(identity)
	if err != nil {
		return nil, err
	}
	refresh, err := ti.IssueRefreshToken(identity)
	if err != nil {
		return nil, err
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// IssueAccessToken signs a short-lived access token
func (ti *TokenIssuer) IssueAccessToken(identity models.Identity) (string, error) {
	token, err := ti.sign(identity, tokenTypeAccess, ti.accessSecret, ti.accessExpiry)
	if err != nil {
		return "", fmt.Errorf("failed to sign access token: %w", err)
	}
	return token, nil
}

// IssueRefreshToken signs a long-lived refresh token
func (ti *TokenIssuer) IssueRefreshToken(identity models.Identity) (string, error) {
	token, err := ti.sign(identity, tokenTypeRefresh, ti.refreshSecret, ti.refreshExpiry)
	if err != nil {
		return "", fmt.Errorf("failed to sign refresh token: %w", err)
	}
	return token, nil
}

// VerifyAccessToken validates an access token and returns its claims
func (ti *TokenIssuer) VerifyAccessToken(tokenString string) (*Claims, error) {
	return ti.verify(tokenString, tokenTypeAccess, ti.accessSecret)
}

// VerifyRefreshToken validates a refresh token and returns its claims
func (ti *TokenIssuer) VerifyRefreshToken(tokenString string) (*Claims, error) {
	return ti.verify(tokenString, tokenTypeRefresh, ti.refreshSecret)
}

func (ti *TokenIssuer) sign(identity models.Identity, tokenType string, secret []byte, expiry time.Duration) (string, error) {
	now := ti.now()
	claims := Claims{
		ID:    identity.ID,
		Email: identity.Email,
		Role:  identity.Role,
		Type:  tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

func (ti *TokenIssuer) verify(tokenString, tokenType string, secret []byte) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		// Validate the signing method
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	}, jwt.WithTimeFunc(ti.now), jwt.WithExpirationRequired())
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Type != tokenType || claims.ID <= 0 {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
