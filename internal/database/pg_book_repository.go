package database

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"mylibrary-server/internal/interfaces"
	"mylibrary-server/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// Compile-time check to ensure pgBookRepository implements BookRepository
var _ interfaces.BookRepository = (*pgBookRepository)(nil)

const bookFields = `id, user_id, title, author, genre, publication_year, isbn, pages, status, rating, notes, created_at, updated_at`

type pgBookRepository struct {
	db     interfaces.DBTX
	logger *zap.Logger
}

// NewPgBookRepository creates a new PostgreSQL-backed BookRepository.
func NewPgBookRepository(db interfaces.DBTX, logger *zap.Logger) interfaces.BookRepository {
	return &pgBookRepository{
		db:     db,
		logger: logger.Named("PgBookRepo"),
	}
}

// Create inserts a new book for its owner.
func (r *pgBookRepository) Create(ctx context.Context, book *models.Book) error {
	query := `INSERT INTO books (user_id, title, author, genre, publication_year, isbn, pages, status, rating, notes)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	          RETURNING id, created_at, updated_at`
	r.logger.Debug("Executing query", zap.String("query", query), zap.String("userID", book.UserID.String()), zap.String("title", book.Title))
	err := r.db.QueryRow(ctx, query,
		book.UserID, book.Title, book.Author, book.Genre, book.PublicationYear,
		book.ISBN, book.Pages, book.Status, book.Rating, book.Notes,
	).Scan(&book.ID, &book.CreatedAt, &book.UpdatedAt)
	if err != nil {
		r.logger.Error("Failed to create book in postgres", zap.Error(err), zap.String("userID", book.UserID.String()))
		return fmt.Errorf("failed to create book in postgres: %w", err)
	}
	r.logger.Info("Book created", zap.String("bookID", book.ID.String()), zap.String("userID", book.UserID.String()))
	return nil
}

// GetByID retrieves a single book scoped to its owner. A book belonging to a
// different user is indistinguishable from a missing one.
func (r *pgBookRepository) GetByID(ctx context.Context, id, userID uuid.UUID) (*models.Book, error) {
	query := `SELECT ` + bookFields + ` FROM books WHERE id = $1 AND user_id = $2`
	r.logger.Debug("Executing query", zap.String("query", query), zap.String("bookID", id.String()), zap.String("userID", userID.String()))
	book := &models.Book{}
	err := r.db.QueryRow(ctx, query, id, userID).Scan(
		&book.ID, &book.UserID, &book.Title, &book.Author, &book.Genre,
		&book.PublicationYear, &book.ISBN, &book.Pages, &book.Status,
		&book.Rating, &book.Notes, &book.CreatedAt, &book.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrBookNotFound
		}
		r.logger.Error("Failed to get book from postgres", zap.Error(err), zap.String("bookID", id.String()))
		return nil, fmt.Errorf("failed to get book from postgres: %w", err)
	}
	return book, nil
}

// Update replaces the mutable columns of an owner's book.
func (r *pgBookRepository) Update(ctx context.Context, book *models.Book) error {
	query := `UPDATE books
	          SET title = $1, author = $2, genre = $3, publication_year = $4, isbn = $5,
	              pages = $6, status = $7, rating = $8, notes = $9, updated_at = now()
	          WHERE id = $10 AND user_id = $11
	          RETURNING updated_at`
	r.logger.Debug("Executing query", zap.String("query", query), zap.String("bookID", book.ID.String()), zap.String("userID", book.UserID.String()))
	err := r.db.QueryRow(ctx, query,
		book.Title, book.Author, book.Genre, book.PublicationYear, book.ISBN,
		book.Pages, book.Status, book.Rating, book.Notes, book.ID, book.UserID,
	).Scan(&book.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.ErrBookNotFound
		}
		r.logger.Error("Failed to update book in postgres", zap.Error(err), zap.String("bookID", book.ID.String()))
		return fmt.Errorf("failed to update book in postgres: %w", err)
	}
	r.logger.Info("Book updated", zap.String("bookID", book.ID.String()), zap.String("userID", book.UserID.String()))
	return nil
}

// Delete permanently removes an owner's book.
func (r *pgBookRepository) Delete(ctx context.Context, id, userID uuid.UUID) error {
	query := `DELETE FROM books WHERE id = $1 AND user_id = $2`
	r.logger.Debug("Executing query", zap.String("query", query), zap.String("bookID", id.String()), zap.String("userID", userID.String()))
	tag, err := r.db.Exec(ctx, query, id, userID)
	if err != nil {
		r.logger.Error("Failed to delete book from postgres", zap.Error(err), zap.String("bookID", id.String()))
		return fmt.Errorf("failed to delete book from postgres: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrBookNotFound
	}
	r.logger.Info("Book deleted", zap.String("bookID", id.String()), zap.String("userID", userID.String()))
	return nil
}

// List returns the owner's books matching the filter plus the total match
// count before pagination, newest first.
func (r *pgBookRepository) List(ctx context.Context, userID uuid.UUID, filter models.BookFilter) ([]models.Book, int64, error) {
	var whereBuilder strings.Builder
	whereBuilder.WriteString(` FROM books WHERE user_id = $1`)
	args := []interface{}{userID}

	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		whereBuilder.WriteString(fmt.Sprintf(" AND (title ILIKE $%d OR author ILIKE $%d)", len(args), len(args)))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		whereBuilder.WriteString(fmt.Sprintf(" AND status = $%d", len(args)))
	}
	if filter.Genre != "" {
		args = append(args, filter.Genre)
		whereBuilder.WriteString(fmt.Sprintf(" AND genre = $%d", len(args)))
	}
	whereClause := whereBuilder.String()

	countQuery := `SELECT COUNT(*)` + whereClause
	var total int64
	r.logger.Debug("Executing query", zap.String("query", countQuery), zap.String("userID", userID.String()))
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		r.logger.Error("Failed to count books in postgres", zap.Error(err), zap.String("userID", userID.String()))
		return nil, 0, fmt.Errorf("failed to count books: %w", err)
	}

	args = append(args, filter.Limit, filter.Offset)
	listQuery := fmt.Sprintf(`SELECT %s%s ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d`,
		bookFields, whereClause, len(args)-1, len(args))

	r.logger.Debug("Executing query", zap.String("query", listQuery), zap.String("userID", userID.String()))
	rows, err := r.db.Query(ctx, listQuery, args...)
	if err != nil {
		r.logger.Error("Failed to query books from postgres", zap.Error(err), zap.String("userID", userID.String()))
		return nil, 0, fmt.Errorf("failed to query books: %w", err)
	}
	defer rows.Close()

	books := make([]models.Book, 0)
	for rows.Next() {
		var book models.Book
		if err := rows.Scan(
			&book.ID, &book.UserID, &book.Title, &book.Author, &book.Genre,
			&book.PublicationYear, &book.ISBN, &book.Pages, &book.Status,
			&book.Rating, &book.Notes, &book.CreatedAt, &book.UpdatedAt,
		); err != nil {
			r.logger.Error("Failed to scan book row", zap.Error(err))
			return nil, 0, fmt.Errorf("failed to scan book row: %w", err)
		}
		books = append(books, book)
	}
	if err := rows.Err(); err != nil {
		r.logger.Error("Error iterating book rows", zap.Error(err))
		return nil, 0, fmt.Errorf("error iterating book rows: %w", err)
	}

	return books, total, nil
}

// Stats aggregates the owner's library by status plus the five most common
// genres (ties broken by genre name ascending, NULL genres excluded).
func (r *pgBookRepository) Stats(ctx context.Context, userID uuid.UUID) (*models.BookStats, error) {
	countsQuery := `SELECT COUNT(*),
	                       COUNT(*) FILTER (WHERE status = 'read'),
	                       COUNT(*) FILTER (WHERE status = 'reading'),
	                       COUNT(*) FILTER (WHERE status = 'to_read')
	                FROM books WHERE user_id = $1`
	stats := &models.BookStats{}
	r.logger.Debug("Executing query", zap.String("query", countsQuery), zap.String("userID", userID.String()))
	err := r.db.QueryRow(ctx, countsQuery, userID).Scan(
		&stats.TotalBooks, &stats.ReadBooks, &stats.ReadingBooks, &stats.ToReadBooks,
	)
	if err != nil {
		r.logger.Error("Failed to get book counts from postgres", zap.Error(err), zap.String("userID", userID.String()))
		return nil, fmt.Errorf("failed to get book counts: %w", err)
	}

	genresQuery := `SELECT genre, COUNT(*) AS count
	                FROM books
	                WHERE user_id = $1 AND genre IS NOT NULL
	                GROUP BY genre
	                ORDER BY count DESC, genre ASC
	                LIMIT 5`
	r.logger.Debug("Executing query", zap.String("query", genresQuery), zap.String("userID", userID.String()))
	rows, err := r.db.Query(ctx, genresQuery, userID)
	if err != nil {
		r.logger.Error("Failed to query genre stats from postgres", zap.Error(err), zap.String("userID", userID.String()))
		return nil, fmt.Errorf("failed to query genre stats: %w", err)
	}
	defer rows.Close()

	stats.TopGenres = make([]models.GenreCount, 0, 5)
	for rows.Next() {
		var gc models.GenreCount
		if err := rows.Scan(&gc.Genre, &gc.Count); err != nil {
			r.logger.Error("Failed to scan genre row", zap.Error(err))
			return nil, fmt.Errorf("failed to scan genre row: %w", err)
		}
		stats.TopGenres = append(stats.TopGenres, gc)
	}
	if err := rows.Err(); err != nil {
		r.logger.Error("Error iterating genre rows", zap.Error(err))
		return nil, fmt.Errorf("error iterating genre rows: %w", err)
	}

	return stats, nil
}
