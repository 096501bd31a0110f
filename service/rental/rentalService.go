package rentalsvc

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ahmed2231web/Book-Rental-System/model"
	rentalrepo "github.com/ahmed2231web/Book-Rental-System/repository/rental"
	"github.com/ahmed2231web/Book-Rental-System/service/policy"
)

// errors used by controllers

type ErrCode string

const (
	ErrNotAvailable    ErrCode = "NOT_AVAILABLE"
	ErrDuplicateRental ErrCode = "DUPLICATE_ACTIVE_RENTAL"
	ErrAlreadyReturned ErrCode = "ALREADY_RETURNED"
	ErrNotFound        ErrCode = "NOT_FOUND"
	ErrBookNotFound    ErrCode = "BOOK_NOT_FOUND"
	ErrBadPeriod       ErrCode = "BAD_PERIOD"
)

type codedError struct{ code ErrCode }

func (e codedError) Error() string { return string(e.code) }
func (e codedError) Code() ErrCode { return e.code }
func makeErr(c ErrCode) error      { return codedError{code: c} }

// Code extracts the error code, empty for unexpected errors.
func Code(err error) ErrCode {
	var ce interface{ Code() ErrCode }
	if errors.As(err, &ce) {
		return ce.Code()
	}
	return ""
}

type Service interface {
	// Create rents a book: the availability check, the rental insert
	// and the copy decrement run in one transaction, serialized per
	// book row. periodDays zero means the default (14).
	Create(ctx context.Context, caller model.Caller, bookID uuid.UUID, periodDays int) (*model.Rental, error)

	// Return flips the rental to returned and frees the copy, again
	// atomically. Non-admin callers can only return their own rentals;
	// a rental they don't own reads as not found.
	Return(ctx context.Context, caller model.Caller, rentalID uuid.UUID) (*model.Rental, error)

	Get(ctx context.Context, caller model.Caller, rentalID uuid.UUID) (*model.RentalRow, error)

	// List applies the caller's scope (resolved by policy) and filters.
	// Returned rows carry the effective status, not the stored one.
	List(ctx context.Context, caller model.Caller, scopeAll bool, f model.RentalFilter) ([]model.RentalRow, error)

	// SweepOverdue rewrites stored status for lapsed active rentals so
	// the stored column catches up with reality.
	SweepOverdue(ctx context.Context, now time.Time) (int64, error)
}

type service struct {
	db *sqlx.DB
	r  rentalrepo.Repo
}

func New(db *sqlx.DB, r rentalrepo.Repo) Service {
	return &service{db: db, r: r}
}

func (s *service) Create(ctx context.Context, caller model.Caller, bookID uuid.UUID, periodDays int) (rental *model.Rental, err error) {
	if periodDays == 0 {
		periodDays = model.DefaultRentalDays
	}
	if periodDays < model.MinRentalDays || periodDays > model.MaxRentalDays {
		return nil, makeErr(ErrBadPeriod)
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	available, err := s.r.LockBook(ctx, tx, bookID)
	if err != nil {
		if errors.Is(err, rentalrepo.ErrBookNotFound) {
			return nil, makeErr(ErrBookNotFound)
		}
		return nil, err
	}
	if available <= 0 {
		return nil, makeErr(ErrNotAvailable)
	}

	open, err := s.r.HasOpenRental(ctx, tx, caller.ID, bookID)
	if err != nil {
		return nil, err
	}
	if open {
		return nil, makeErr(ErrDuplicateRental)
	}

	now := time.Now().UTC()
	rental = &model.Rental{
		ID:       uuid.New(),
		UserID:   caller.ID,
		BookID:   bookID,
		RentedAt: now,
		DueDate:  now.AddDate(0, 0, periodDays),
		Status:   model.RentalActive,
	}
	if err = s.r.Insert(ctx, tx, rental); err != nil {
		return nil, err
	}
	if err = s.r.DecrementAvailable(ctx, tx, bookID); err != nil {
		return nil, err
	}
	if err = tx.Commit(); err != nil {
		return nil, err
	}
	return rental, nil
}

func (s *service) Return(ctx context.Context, caller model.Caller, rentalID uuid.UUID) (rental *model.Rental, err error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	rental, err = s.r.GetForUpdate(ctx, tx, rentalID, policy.ReturnOwnerScope(caller))
	if err != nil {
		if errors.Is(err, rentalrepo.ErrNotFound) {
			return nil, makeErr(ErrNotFound)
		}
		return nil, err
	}
	if rental.Status == model.RentalReturned {
		return nil, makeErr(ErrAlreadyReturned)
	}

	// A lapsed rental returns the same way an on-time one does; no
	// lateness handling exists here.
	now := time.Now().UTC()
	if err = s.r.MarkReturned(ctx, tx, rentalID, now); err != nil {
		return nil, err
	}
	if err = s.r.IncrementAvailable(ctx, tx, rental.BookID); err != nil {
		return nil, err
	}
	if err = tx.Commit(); err != nil {
		return nil, err
	}

	rental.Status = model.RentalReturned
	rental.ReturnedAt = &now
	return rental, nil
}

func (s *service) Get(ctx context.Context, caller model.Caller, rentalID uuid.UUID) (*model.RentalRow, error) {
	row, err := s.r.Get(ctx, rentalID, policy.RentalOwnerScope(caller, true))
	if err != nil {
		if errors.Is(err, rentalrepo.ErrNotFound) {
			return nil, makeErr(ErrNotFound)
		}
		return nil, err
	}
	row.Status = row.EffectiveStatus(time.Now().UTC())
	return row, nil
}

func (s *service) List(ctx context.Context, caller model.Caller, scopeAll bool, f model.RentalFilter) ([]model.RentalRow, error) {
	f.OwnerID = policy.RentalOwnerScope(caller, scopeAll)
	rows, err := s.r.List(ctx, f)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	for i := range rows {
		rows[i].Status = rows[i].EffectiveStatus(now)
	}
	return rows, nil
}

func (s *service) SweepOverdue(ctx context.Context, now time.Time) (int64, error) {
	return s.r.SweepOverdue(ctx, now)
}
