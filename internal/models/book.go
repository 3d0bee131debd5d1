package models

import (
	"time"

	"github.com/google/uuid"
)

// BookStatus is the reading state of a book.
type BookStatus string

const (
	StatusToRead  BookStatus = "to_read"
	StatusReading BookStatus = "reading"
	StatusRead    BookStatus = "read"
)

// IsValid reports whether s is one of the known statuses.
func (s BookStatus) IsValid() bool {
	switch s {
	case StatusToRead, StatusReading, StatusRead:
		return true
	}
	return false
}

// Book represents a single entry in a user's library. Optional columns are
// pointers so NULL survives the round trip to the database.
type Book struct {
	ID              uuid.UUID  `db:"id" json:"id"`
	UserID          uuid.UUID  `db:"user_id" json:"user_id"`
	Title           string     `db:"title" json:"title"`
	Author          string     `db:"author" json:"author"`
	Genre           *string    `db:"genre" json:"genre"`
	PublicationYear *int       `db:"publication_year" json:"publication_year"`
	ISBN            *string    `db:"isbn" json:"isbn"`
	Pages           *int       `db:"pages" json:"pages"`
	Status          BookStatus `db:"status" json:"status"`
	Rating          *int       `db:"rating" json:"rating"`
	Notes           *string    `db:"notes" json:"notes"`
	CreatedAt       time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time  `db:"updated_at" json:"updated_at"`
}

// BookFilter narrows a listing. Zero values mean "no constraint".
type BookFilter struct {
	Search string // substring match on title OR author, case-insensitive
	Status string
	Genre  string
	Limit  int
	Offset int
}

// Pagination describes the slice of results returned by a listing.
type Pagination struct {
	Total       int64 `json:"total"`
	TotalPages  int64 `json:"totalPages"`
	CurrentPage int   `json:"currentPage"`
	PerPage     int   `json:"perPage"`
}

// BookList is the result of a paginated listing.
type BookList struct {
	Books      []Book     `json:"books"`
	Pagination Pagination `json:"pagination"`
}

// GenreCount is one entry of the top-genres ranking.
type GenreCount struct {
	Genre string `json:"genre"`
	Count int64  `json:"count"`
}

// BookStats aggregates a single owner's library by status and genre.
type BookStats struct {
	TotalBooks   int64        `json:"totalBooks"`
	ReadBooks    int64        `json:"readBooks"`
	ReadingBooks int64        `json:"readingBooks"`
	ToReadBooks  int64        `json:"toReadBooks"`
	TopGenres    []GenreCount `json:"topGenres"`
}
