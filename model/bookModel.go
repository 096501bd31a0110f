// model/book.go
package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type Genre string

const (
	GenreFiction        Genre = "fiction"
	GenreNonFiction     Genre = "non_fiction"
	GenreMystery        Genre = "mystery"
	GenreScienceFiction Genre = "science_fiction"
	GenreFantasy        Genre = "fantasy"
	GenreRomance        Genre = "romance"
	GenreThriller       Genre = "thriller"
	GenreBiography      Genre = "biography"
	GenreHistory        Genre = "history"
	GenreSelfHelp       Genre = "self_help"
	GenreBusiness       Genre = "business"
	GenreTechnology     Genre = "technology"
	GenreEducation      Genre = "education"
	GenreChildren       Genre = "children"
	GenreYoungAdult     Genre = "young_adult"
	GenreOther          Genre = "other"
)

var genres = map[Genre]bool{
	GenreFiction: true, GenreNonFiction: true, GenreMystery: true,
	GenreScienceFiction: true, GenreFantasy: true, GenreRomance: true,
	GenreThriller: true, GenreBiography: true, GenreHistory: true,
	GenreSelfHelp: true, GenreBusiness: true, GenreTechnology: true,
	GenreEducation: true, GenreChildren: true, GenreYoungAdult: true,
	GenreOther: true,
}

func (g Genre) Valid() bool { return genres[g] }

type Book struct {
	ID              uuid.UUID `db:"id" json:"id"`
	Title           string    `db:"title" json:"title"`
	Author          string    `db:"author" json:"author"`
	ISBN            string    `db:"isbn" json:"isbn"`
	PublicationDate time.Time `db:"publication_date" json:"publication_date"`
	Genre           Genre     `db:"genre" json:"genre"`
	Description     string    `db:"description" json:"description"`
	TotalCopies     int       `db:"total_copies" json:"total_copies"`
	AvailableCopies int       `db:"available_copies" json:"available_copies"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}

func (b Book) IsAvailable() bool { return b.AvailableCopies > 0 }

// NormalizeISBN strips hyphens and spaces. The stored ISBN is always the
// normalized form.
func NormalizeISBN(isbn string) string {
	isbn = strings.ReplaceAll(isbn, "-", "")
	return strings.ReplaceAll(isbn, " ", "")
}

// ValidISBN reports whether the normalized form is 10 or 13 characters.
func ValidISBN(isbn string) bool {
	n := len(NormalizeISBN(isbn))
	return n == 10 || n == 13
}

// Validate checks the catalog invariants. Called before every persist.
func (b Book) Validate() error {
	switch {
	case strings.TrimSpace(b.Title) == "":
		return validationErr("title is required")
	case strings.TrimSpace(b.Author) == "":
		return validationErr("author is required")
	case !ValidISBN(b.ISBN):
		return validationErr("isbn must be 10 or 13 characters long")
	case !b.Genre.Valid():
		return validationErr("unknown genre")
	case b.TotalCopies < 1:
		return validationErr("total_copies must be at least 1")
	case b.AvailableCopies < 0:
		return validationErr("available_copies cannot be negative")
	case b.AvailableCopies > b.TotalCopies:
		return validationErr("available copies cannot exceed total copies")
	}
	return nil
}

// ValidationError is returned by model validation; the request boundary
// maps it to a 400.
type ValidationError struct{ Msg string }

func (e ValidationError) Error() string        { return e.Msg }
func validationErr(msg string) ValidationError { return ValidationError{Msg: msg} }

// CreateBookReq represents the admin create payload.
// swagger:model CreateBookReq
type CreateBookReq struct {
	Title           string `json:"title" validate:"required,max=200"`
	Author          string `json:"author" validate:"required,max=200"`
	ISBN            string `json:"isbn" validate:"required"`
	PublicationDate string `json:"publication_date" validate:"required,datetime=2006-01-02"`
	Genre           string `json:"genre" validate:"required"`
	Description     string `json:"description"`
	TotalCopies     int    `json:"total_copies" validate:"required,gte=1"`
	AvailableCopies *int   `json:"available_copies" validate:"omitempty,gte=0"`
}

// UpdateBookReq is the admin partial-update payload; nil means keep.
type UpdateBookReq struct {
	Title           *string `json:"title" validate:"omitempty,max=200"`
	Author          *string `json:"author" validate:"omitempty,max=200"`
	ISBN            *string `json:"isbn"`
	PublicationDate *string `json:"publication_date" validate:"omitempty,datetime=2006-01-02"`
	Genre           *string `json:"genre"`
	Description     *string `json:"description"`
	TotalCopies     *int    `json:"total_copies" validate:"omitempty,gte=1"`
	AvailableCopies *int    `json:"available_copies" validate:"omitempty,gte=0"`
}

// BookFilter mirrors the list query parameters.
type BookFilter struct {
	Search             string
	Genre              string
	Author             string
	Title              string
	ISBN               string
	PublicationYear    int
	PublicationYearGTE int
	PublicationYearLTE int
	AvailableOnly      bool
	Ordering           string
}
