package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// JWTService issues and validates the bearer tokens that carry a session.
// Tokens are minted by the identity provider in production; GenerateToken
// exists for the CLI and for tests.
type JWTService interface {
	// GenerateToken creates a signed access token for the user. A grade of 0
	// means the session is not tied to a grade.
	GenerateToken(ctx context.Context, userID uuid.UUID, grade int) (string, error)

	// ValidateToken validates the provided access token string and extracts the claims.
	// Returns ErrExpiredToken, ErrTokenNotYetValid or ErrInvalidToken on failure.
	ValidateToken(ctx context.Context, tokenString string) (*Claims, error)
}

// Claims is the session carried by an access token.
type Claims struct {
	// UserID is the unique identifier of the user the token was issued for.
	UserID uuid.UUID `json:"uid,omitempty"`

	// Grade scopes lesson plan listings. 0 means unscoped.
	Grade int `json:"grade,omitempty"`

	// Standard registered JWT claims
	Subject   string    `json:"sub,omitempty"`
	IssuedAt  time.Time `json:"iat,omitempty"`
	ExpiresAt time.Time `json:"exp,omitempty"`
	ID        string    `json:"jti,omitempty"`
}

// GradeFilter returns the grade to filter by, or nil when the session is unscoped.
func (c *Claims) GradeFilter() *int {
	if c == nil || c.Grade == 0 {
		return nil
	}
	g := c.Grade
	return &g
}
