package service

import (
	"context"

	"mylibrary-server/internal/models"
)

// RegisterInput carries the fields of a registration request.
type RegisterInput struct {
	Username  string
	Email     string
	Password  string
	FirstName *string
	LastName  *string
}

// LoginInput carries the credentials of a login request. Either Email or
// Username identifies the account.
type LoginInput struct {
	Email    string
	Username string
	Password string
}

// AuthService defines the authentication and session logic.
type AuthService interface {
	// Register creates a new account and returns it with a fresh token.
	Register(ctx context.Context, input RegisterInput) (*models.User, string, error)

	// Login verifies credentials and returns the account with a fresh token.
	// Wrong password and unknown account are indistinguishable to the caller.
	Login(ctx context.Context, input LoginInput) (*models.User, string, error)

	// VerifyAccessToken validates a bearer token and returns its claims.
	VerifyAccessToken(ctx context.Context, tokenString string) (*models.Claims, error)

	// Logout revokes the token carried by claims for the rest of its life.
	Logout(ctx context.Context, claims *models.Claims) error
}
