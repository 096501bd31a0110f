// model/rentalModel.go
package model

import (
	"time"

	"github.com/google/uuid"
)

type RentalStatus string

const (
	RentalActive   RentalStatus = "active"
	RentalOverdue  RentalStatus = "overdue"
	RentalReturned RentalStatus = "returned"
)

const (
	MinRentalDays     = 1
	MaxRentalDays     = 30
	DefaultRentalDays = 14
)

type Rental struct {
	ID         uuid.UUID    `db:"id" json:"id"`
	UserID     int64        `db:"user_id" json:"user_id"`
	BookID     uuid.UUID    `db:"book_id" json:"book_id"`
	RentedAt   time.Time    `db:"rented_at" json:"rented_at"`
	DueDate    time.Time    `db:"due_date" json:"due_date"`
	ReturnedAt *time.Time   `db:"returned_at" json:"returned_at,omitempty"`
	Status     RentalStatus `db:"status" json:"status"`
	CreatedAt  time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time    `db:"updated_at" json:"updated_at"`
}

// EffectiveStatus is the status the rental logically has at `now`,
// regardless of the stored column. The stored value is only corrected
// opportunistically on write, so every read path goes through here.
// A rental due exactly at `now` is not overdue (strict comparison).
func (r Rental) EffectiveStatus(now time.Time) RentalStatus {
	if r.Status == RentalActive && now.After(r.DueDate) {
		return RentalOverdue
	}
	return r.Status
}

func (r Rental) IsOverdue(now time.Time) bool {
	return r.EffectiveStatus(now) == RentalOverdue
}

// DaysUntilDue returns whole days from now's date to the due date, nil
// once the rental is returned. Negative means past due.
func (r Rental) DaysUntilDue(now time.Time) *int {
	if r.Status == RentalReturned {
		return nil
	}
	d := int(truncateDay(r.DueDate).Sub(truncateDay(now)).Hours() / 24)
	return &d
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// RentalRow is the listing shape: a rental joined with the fields of its
// user and book that the API exposes.
type RentalRow struct {
	Rental
	UserEmail     string `db:"user_email" json:"user_email"`
	UserFirstName string `db:"user_first_name" json:"-"`
	UserLastName  string `db:"user_last_name" json:"-"`
	BookTitle     string `db:"book_title" json:"book_title"`
	BookAuthor    string `db:"book_author" json:"book_author"`
}

// CreateRentalReq represents the rent-a-book payload.
// swagger:model CreateRentalReq
type CreateRentalReq struct {
	BookID     string `json:"book_id" validate:"required,uuid4"`
	PeriodDays int    `json:"rental_period_days" validate:"omitempty,gte=1,lte=30"`
}

// ReturnRentalReq represents the return payload.
// swagger:model ReturnRentalReq
type ReturnRentalReq struct {
	RentalID string `json:"rental_id" validate:"required,uuid4"`
}

// RentalFilter mirrors the rental list query parameters. Scope is
// resolved by the authorization layer before the service runs: OwnerID
// is zero only when the caller may see all rentals.
type RentalFilter struct {
	OwnerID      int64
	Status       string
	OverdueOnly  bool
	UserEmail    string
	BookTitle    string
	BookAuthor   string
	RentedAfter  *time.Time
	RentedBefore *time.Time
	DueAfter     *time.Time
	DueBefore    *time.Time
	Ordering     string
}
