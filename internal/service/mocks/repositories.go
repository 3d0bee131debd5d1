package mocks

import (
	"context"
	"time"

	"mylibrary-server/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// Mock UserRepository
type UserRepository struct {
	mock.Mock
}

func (m *UserRepository) CreateUser(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}
func (m *UserRepository) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	args := m.Called(ctx, username)
	user, _ := args.Get(0).(*models.User)
	return user, args.Error(1)
}
func (m *UserRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	user, _ := args.Get(0).(*models.User)
	return user, args.Error(1)
}
func (m *UserRepository) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, id)
	user, _ := args.Get(0).(*models.User)
	return user, args.Error(1)
}

// Mock BookRepository
type BookRepository struct {
	mock.Mock
}

func (m *BookRepository) Create(ctx context.Context, book *models.Book) error {
	args := m.Called(ctx, book)
	return args.Error(0)
}
func (m *BookRepository) GetByID(ctx context.Context, id, userID uuid.UUID) (*models.Book, error) {
	args := m.Called(ctx, id, userID)
	book, _ := args.Get(0).(*models.Book)
	return book, args.Error(1)
}
func (m *BookRepository) Update(ctx context.Context, book *models.Book) error {
	args := m.Called(ctx, book)
	return args.Error(0)
}
func (m *BookRepository) Delete(ctx context.Context, id, userID uuid.UUID) error {
	args := m.Called(ctx, id, userID)
	return args.Error(0)
}
func (m *BookRepository) List(ctx context.Context, userID uuid.UUID, filter models.BookFilter) ([]models.Book, int64, error) {
	args := m.Called(ctx, userID, filter)
	books, _ := args.Get(0).([]models.Book)
	total, _ := args.Get(1).(int64)
	return books, total, args.Error(2)
}
func (m *BookRepository) Stats(ctx context.Context, userID uuid.UUID) (*models.BookStats, error) {
	args := m.Called(ctx, userID)
	stats, _ := args.Get(0).(*models.BookStats)
	return stats, args.Error(1)
}

// Mock TokenRepository
type TokenRepository struct {
	mock.Mock
}

func (m *TokenRepository) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	args := m.Called(ctx, jti, ttl)
	return args.Error(0)
}
func (m *TokenRepository) IsRevoked(ctx context.Context, jti string) (bool, error) {
	args := m.Called(ctx, jti)
	return args.Bool(0), args.Error(1)
}
