package statsrepo

import (
	"context"

	"github.com/jmoiron/sqlx"
)

// Dashboard is the admin stats payload. Rental counts read the stored
// status column, not the derived one; see the stats service notes.
type Dashboard struct {
	TotalBooks           int64 `db:"total_books" json:"total_books"`
	TotalUsers           int64 `db:"total_users" json:"total_users"`
	ActiveRentals        int64 `db:"active_rentals" json:"active_rentals"`
	OverdueRentals       int64 `db:"overdue_rentals" json:"overdue_rentals"`
	AvailableBooks       int64 `db:"available_books" json:"available_books"`
	TotalAvailableCopies int64 `db:"total_available_copies" json:"total_available_copies"`
}

type Repo interface {
	Dashboard(ctx context.Context) (*Dashboard, error)
}

type repo struct{ db *sqlx.DB }

func New(db *sqlx.DB) Repo { return &repo{db: db} }

func (r *repo) Dashboard(ctx context.Context) (*Dashboard, error) {
	const q = `
		SELECT
			(SELECT COUNT(*) FROM books)                                    AS total_books,
			(SELECT COUNT(*) FROM users WHERE role = 'user')                AS total_users,
			(SELECT COUNT(*) FROM rentals WHERE status = 'active')          AS active_rentals,
			(SELECT COUNT(*) FROM rentals WHERE status = 'overdue')         AS overdue_rentals,
			(SELECT COUNT(*) FROM books WHERE available_copies > 0)         AS available_books,
			(SELECT COALESCE(SUM(available_copies), 0) FROM books)          AS total_available_copies`
	var d Dashboard
	if err := r.db.GetContext(ctx, &d, q); err != nil {
		return nil, err
	}
	return &d, nil
}
