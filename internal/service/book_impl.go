package service

import (
	"context"
	"fmt"
	"time"

	"mylibrary-server/internal/interfaces"
	"mylibrary-server/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Compile-time check to ensure bookServiceImpl implements BookService
var _ BookService = (*bookServiceImpl)(nil)

const (
	defaultPageSize = 10
	maxPageSize     = 100

	maxTitleLength  = 255
	maxAuthorLength = 255
	maxGenreLength  = 100
	maxISBNLength   = 20
	minYear         = 1000
	minPages        = 1
	maxPages        = 10000
	minRating       = 1
	maxRating       = 5
)

type bookServiceImpl struct {
	bookRepo interfaces.BookRepository
	logger   *zap.Logger
}

// NewBookService creates a new instance of bookServiceImpl.
func NewBookService(bookRepo interfaces.BookRepository, logger *zap.Logger) BookService {
	return &bookServiceImpl{
		bookRepo: bookRepo,
		logger:   logger.Named("BookService"),
	}
}

// List returns the owner's filtered, paginated books.
func (s *bookServiceImpl) List(ctx context.Context, userID uuid.UUID, params ListParams) (*models.BookList, error) {
	page := params.Page
	if page < 1 {
		page = 1
	}
	limit := params.Limit
	if limit < 1 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}

	filter := models.BookFilter{
		Search: params.Search,
		Status: params.Status,
		Genre:  params.Genre,
		Limit:  limit,
		Offset: (page - 1) * limit,
	}

	books, total, err := s.bookRepo.List(ctx, userID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list books: %w", err)
	}

	totalPages := total / int64(limit)
	if total%int64(limit) != 0 {
		totalPages++
	}

	return &models.BookList{
		Books: books,
		Pagination: models.Pagination{
			Total:       total,
			TotalPages:  totalPages,
			CurrentPage: page,
			PerPage:     limit,
		},
	}, nil
}

// Get returns a single owner-scoped book.
func (s *bookServiceImpl) Get(ctx context.Context, userID, bookID uuid.UUID) (*models.Book, error) {
	return s.bookRepo.GetByID(ctx, bookID, userID)
}

// Create validates the input, applies the rating rule, and stores the book
// under the acting user.
func (s *bookServiceImpl) Create(ctx context.Context, userID uuid.UUID, input CreateBookInput) (*models.Book, error) {
	status := models.BookStatus(input.Status)
	if input.Status == "" {
		status = models.StatusToRead
	}

	book := &models.Book{
		UserID:          userID,
		Title:           input.Title,
		Author:          input.Author,
		Genre:           normalizeOptional(input.Genre),
		PublicationYear: input.PublicationYear,
		ISBN:            normalizeOptional(input.ISBN),
		Pages:           input.Pages,
		Status:          status,
		Rating:          input.Rating,
		Notes:           input.Notes,
	}

	if verr := validateBook(book); verr.HasErrors() {
		s.logger.Warn("Book failed validation on create", zap.String("userID", userID.String()), zap.Error(verr))
		return nil, verr
	}

	applyRatingRule(book)

	if err := s.bookRepo.Create(ctx, book); err != nil {
		return nil, err
	}
	s.logger.Info("Book created", zap.String("bookID", book.ID.String()), zap.String("userID", userID.String()), zap.String("status", string(book.Status)))
	return book, nil
}

// Update merges the supplied fields into the stored book, re-validates, and
// re-applies the rating rule against the status after the merge.
func (s *bookServiceImpl) Update(ctx context.Context, userID, bookID uuid.UUID, input UpdateBookInput) (*models.Book, error) {
	book, err := s.bookRepo.GetByID(ctx, bookID, userID)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		book.Title = *input.Title
	}
	if input.Author != nil {
		book.Author = *input.Author
	}
	if input.Genre != nil {
		book.Genre = normalizeOptional(input.Genre)
	}
	if input.PublicationYear != nil {
		book.PublicationYear = input.PublicationYear
	}
	if input.ISBN != nil {
		book.ISBN = normalizeOptional(input.ISBN)
	}
	if input.Pages != nil {
		book.Pages = input.Pages
	}
	if input.Status != nil {
		book.Status = models.BookStatus(*input.Status)
	}
	if input.Rating != nil {
		book.Rating = input.Rating
	}
	if input.Notes != nil {
		book.Notes = input.Notes
	}

	if verr := validateBook(book); verr.HasErrors() {
		s.logger.Warn("Book failed validation on update", zap.String("bookID", bookID.String()), zap.Error(verr))
		return nil, verr
	}

	applyRatingRule(book)

	if err := s.bookRepo.Update(ctx, book); err != nil {
		return nil, err
	}
	s.logger.Info("Book updated", zap.String("bookID", book.ID.String()), zap.String("userID", userID.String()), zap.String("status", string(book.Status)))
	return book, nil
}

// Delete permanently removes an owner-scoped book.
func (s *bookServiceImpl) Delete(ctx context.Context, userID, bookID uuid.UUID) error {
	if err := s.bookRepo.Delete(ctx, bookID, userID); err != nil {
		return err
	}
	s.logger.Info("Book deleted", zap.String("bookID", bookID.String()), zap.String("userID", userID.String()))
	return nil
}

// Stats returns the owner's aggregate counts.
func (s *bookServiceImpl) Stats(ctx context.Context, userID uuid.UUID) (*models.BookStats, error) {
	return s.bookRepo.Stats(ctx, userID)
}

// applyRatingRule forces rating to null unless the book is read. The service
// never trusts a client-side rendition of this rule.
func applyRatingRule(book *models.Book) {
	if book.Status != models.StatusRead {
		book.Rating = nil
	}
}

// normalizeOptional turns empty strings into NULL so "" and absent collapse
// to the same stored value.
func normalizeOptional(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}

// validateBook checks every bound the schema promises, collecting all
// failures so the caller sees the full list at once.
func validateBook(book *models.Book) *models.ValidationError {
	verr := &models.ValidationError{}

	if book.Title == "" {
		verr.Add("title", "title is required")
	} else if len(book.Title) > maxTitleLength {
		verr.Add("title", fmt.Sprintf("title cannot exceed %d characters", maxTitleLength))
	}

	if book.Author == "" {
		verr.Add("author", "author is required")
	} else if len(book.Author) > maxAuthorLength {
		verr.Add("author", fmt.Sprintf("author cannot exceed %d characters", maxAuthorLength))
	}

	if book.Genre != nil && len(*book.Genre) > maxGenreLength {
		verr.Add("genre", fmt.Sprintf("genre cannot exceed %d characters", maxGenreLength))
	}

	if book.ISBN != nil && len(*book.ISBN) > maxISBNLength {
		verr.Add("isbn", fmt.Sprintf("isbn cannot exceed %d characters", maxISBNLength))
	}

	if book.PublicationYear != nil {
		maxYear := time.Now().Year() + 1
		if *book.PublicationYear < minYear || *book.PublicationYear > maxYear {
			verr.Add("publication_year", fmt.Sprintf("publication year must be between %d and %d", minYear, maxYear))
		}
	}

	if book.Pages != nil && (*book.Pages < minPages || *book.Pages > maxPages) {
		verr.Add("pages", fmt.Sprintf("pages must be between %d and %d", minPages, maxPages))
	}

	if !book.Status.IsValid() {
		verr.Add("status", "status must be one of: to_read, reading, read")
	}

	if book.Rating != nil && (*book.Rating < minRating || *book.Rating > maxRating) {
		verr.Add("rating", fmt.Sprintf("rating must be between %d and %d", minRating, maxRating))
	}

	return verr
}
