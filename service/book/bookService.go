package booksvc

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/ahmed2231web/Book-Rental-System/model"
	bookrepo "github.com/ahmed2231web/Book-Rental-System/repository/book"
)

type ErrCode string

const (
	ErrValidation ErrCode = "VALIDATION"
	ErrISBNTaken  ErrCode = "ISBN_TAKEN"
	ErrNotFound   ErrCode = "NOT_FOUND"
)

type codedError struct {
	code ErrCode
	msg  string
}

func (e codedError) Error() string { return e.msg }
func (e codedError) Code() ErrCode { return e.code }

func makeErr(c ErrCode, msg string) error { return codedError{code: c, msg: msg} }

func Code(err error) ErrCode {
	var ce interface{ Code() ErrCode }
	if errors.As(err, &ce) {
		return ce.Code()
	}
	return ""
}

type Service interface {
	Create(ctx context.Context, req model.CreateBookReq) (*model.Book, error)
	Update(ctx context.Context, id uuid.UUID, req model.UpdateBookReq) (*model.Book, error)
	// Delete removes the book and, by cascade, every rental on it.
	Delete(ctx context.Context, id uuid.UUID) error
	Get(ctx context.Context, id uuid.UUID) (*model.Book, error)
	List(ctx context.Context, f model.BookFilter) ([]model.Book, error)
}

type service struct{ r bookrepo.Repo }

func New(r bookrepo.Repo) Service { return &service{r: r} }

const dateLayout = "2006-01-02"

func (s *service) Create(ctx context.Context, req model.CreateBookReq) (*model.Book, error) {
	pub, err := time.Parse(dateLayout, req.PublicationDate)
	if err != nil {
		return nil, makeErr(ErrValidation, "publication_date must be YYYY-MM-DD")
	}

	// Copies default to fully available when the admin doesn't say
	// otherwise.
	available := req.TotalCopies
	if req.AvailableCopies != nil {
		available = *req.AvailableCopies
	}

	b := &model.Book{
		ID:              uuid.New(),
		Title:           req.Title,
		Author:          req.Author,
		ISBN:            model.NormalizeISBN(req.ISBN),
		PublicationDate: pub,
		Genre:           model.Genre(req.Genre),
		Description:     req.Description,
		TotalCopies:     req.TotalCopies,
		AvailableCopies: available,
	}
	if err := b.Validate(); err != nil {
		return nil, makeErr(ErrValidation, err.Error())
	}

	taken, err := s.r.ISBNTaken(ctx, b.ISBN, b.ID)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, makeErr(ErrISBNTaken, "book with this isbn already exists")
	}

	if err := s.r.Insert(ctx, b); err != nil {
		if isUniqueViolation(err) {
			return nil, makeErr(ErrISBNTaken, "book with this isbn already exists")
		}
		return nil, err
	}
	return b, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, req model.UpdateBookReq) (*model.Book, error) {
	b, err := s.r.ByID(ctx, id)
	if err != nil {
		if errors.Is(err, bookrepo.ErrNotFound) {
			return nil, makeErr(ErrNotFound, "book not found")
		}
		return nil, err
	}

	if req.Title != nil {
		b.Title = *req.Title
	}
	if req.Author != nil {
		b.Author = *req.Author
	}
	if req.ISBN != nil {
		b.ISBN = model.NormalizeISBN(*req.ISBN)
	}
	if req.PublicationDate != nil {
		pub, err := time.Parse(dateLayout, *req.PublicationDate)
		if err != nil {
			return nil, makeErr(ErrValidation, "publication_date must be YYYY-MM-DD")
		}
		b.PublicationDate = pub
	}
	if req.Genre != nil {
		b.Genre = model.Genre(*req.Genre)
	}
	if req.Description != nil {
		b.Description = *req.Description
	}
	if req.TotalCopies != nil {
		b.TotalCopies = *req.TotalCopies
	}
	if req.AvailableCopies != nil {
		b.AvailableCopies = *req.AvailableCopies
	}

	if err := b.Validate(); err != nil {
		return nil, makeErr(ErrValidation, err.Error())
	}

	// Uniqueness check excludes the record being updated.
	taken, err := s.r.ISBNTaken(ctx, b.ISBN, b.ID)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, makeErr(ErrISBNTaken, "book with this isbn already exists")
	}

	if err := s.r.Update(ctx, b); err != nil {
		if isUniqueViolation(err) {
			return nil, makeErr(ErrISBNTaken, "book with this isbn already exists")
		}
		return nil, err
	}
	return b, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.r.Delete(ctx, id); err != nil {
		if errors.Is(err, bookrepo.ErrNotFound) {
			return makeErr(ErrNotFound, "book not found")
		}
		return err
	}
	return nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*model.Book, error) {
	b, err := s.r.ByID(ctx, id)
	if err != nil {
		if errors.Is(err, bookrepo.ErrNotFound) {
			return nil, makeErr(ErrNotFound, "book not found")
		}
		return nil, err
	}
	return b, nil
}

func (s *service) List(ctx context.Context, f model.BookFilter) ([]model.Book, error) {
	if f.Genre != "" && !model.Genre(f.Genre).Valid() {
		return nil, makeErr(ErrValidation, "unknown genre")
	}
	books, err := s.r.List(ctx, f)
	if err != nil {
		return nil, err
	}
	return books, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}
