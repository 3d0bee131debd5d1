// Package interfaces declares the persistence contracts the services depend
// on, so implementations can be swapped for mocks in tests.
package interfaces

import (
	"context"
	"time"

	"mylibrary-server/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX abstracts the pgx query surface so repositories accept either a pool
// or a transaction.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// UserRepository defines user persistence.
type UserRepository interface {
	// CreateUser inserts a new user. Unique-constraint violations come back
	// as models.ErrUserAlreadyExists / models.ErrEmailAlreadyExists.
	CreateUser(ctx context.Context, user *models.User) error

	// GetUserByUsername returns models.ErrUserNotFound if no row matches.
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)

	// GetUserByEmail returns models.ErrUserNotFound if no row matches.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	// GetUserByID returns models.ErrUserNotFound if no row matches.
	GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// BookRepository defines book persistence. Every operation is scoped to the
// owning user; a row under a different owner behaves as if it did not exist.
type BookRepository interface {
	Create(ctx context.Context, book *models.Book) error

	// GetByID returns models.ErrBookNotFound for absent or foreign rows.
	GetByID(ctx context.Context, id, userID uuid.UUID) (*models.Book, error)

	// Update replaces the stored row with book's fields and refreshes
	// updated_at. Returns models.ErrBookNotFound for absent or foreign rows.
	Update(ctx context.Context, book *models.Book) error

	// Delete permanently removes the row. Returns models.ErrBookNotFound for
	// absent or foreign rows.
	Delete(ctx context.Context, id, userID uuid.UUID) error

	// List returns the filtered page plus the total match count before
	// pagination, ordered by created_at DESC, id DESC.
	List(ctx context.Context, userID uuid.UUID, filter models.BookFilter) ([]models.Book, int64, error)

	// Stats aggregates the owner's library by status and genre.
	Stats(ctx context.Context, userID uuid.UUID) (*models.BookStats, error)
}

// TokenRepository is the revoked-token denylist backing logout.
type TokenRepository interface {
	// Revoke marks a token id (jti) as revoked until its natural expiry.
	Revoke(ctx context.Context, jti string, ttl time.Duration) error

	// IsRevoked reports whether the token id has been revoked.
	IsRevoked(ctx context.Context, jti string) (bool, error)
}
