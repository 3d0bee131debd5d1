package service

import (
	"context"

	"mylibrary-server/internal/models"

	"github.com/google/uuid"
)

// ListParams narrows and paginates a book listing. Page and Limit are the
// canonical pagination scheme: 1-based page, default limit 10, capped at 100.
type ListParams struct {
	Search string
	Status string
	Genre  string
	Page   int
	Limit  int
}

// CreateBookInput carries the fields of a creation request. Optional fields
// are pointers so "absent" and "empty" stay distinguishable.
type CreateBookInput struct {
	Title           string  `json:"title"`
	Author          string  `json:"author"`
	Genre           *string `json:"genre"`
	PublicationYear *int    `json:"publication_year"`
	ISBN            *string `json:"isbn"`
	Pages           *int    `json:"pages"`
	Status          string  `json:"status"`
	Rating          *int    `json:"rating"`
	Notes           *string `json:"notes"`
}

// UpdateBookInput carries a partial update; nil fields are left unchanged.
type UpdateBookInput struct {
	Title           *string `json:"title"`
	Author          *string `json:"author"`
	Genre           *string `json:"genre"`
	PublicationYear *int    `json:"publication_year"`
	ISBN            *string `json:"isbn"`
	Pages           *int    `json:"pages"`
	Status          *string `json:"status"`
	Rating          *int    `json:"rating"`
	Notes           *string `json:"notes"`
}

// BookService owns the business rules of the library: validation, the
// rating-gating rule, pagination, and owner scoping. Handlers only translate
// shapes; every rule lives here.
type BookService interface {
	List(ctx context.Context, userID uuid.UUID, params ListParams) (*models.BookList, error)
	Get(ctx context.Context, userID, bookID uuid.UUID) (*models.Book, error)
	Create(ctx context.Context, userID uuid.UUID, input CreateBookInput) (*models.Book, error)
	Update(ctx context.Context, userID, bookID uuid.UUID, input UpdateBookInput) (*models.Book, error)
	Delete(ctx context.Context, userID, bookID uuid.UUID) error
	Stats(ctx context.Context, userID uuid.UUID) (*models.BookStats, error)
}
