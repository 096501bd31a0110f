// repository/rental/repo.go
package rentalrepo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ahmed2231web/Book-Rental-System/model"
)

var (
	ErrNotFound     = errors.New("rental not found")
	ErrBookNotFound = errors.New("book not found")
)

// Repo is the rental persistence surface. The tx-scoped methods make up
// the atomic create/return sequences; the service owns the transaction.
type Repo interface {
	// LockBook reads available_copies under FOR UPDATE so the
	// check-and-decrement sequence is serialized per book row.
	LockBook(ctx context.Context, tx *sqlx.Tx, bookID uuid.UUID) (available int, err error)
	HasOpenRental(ctx context.Context, tx *sqlx.Tx, userID int64, bookID uuid.UUID) (bool, error)
	Insert(ctx context.Context, tx *sqlx.Tx, r *model.Rental) error
	DecrementAvailable(ctx context.Context, tx *sqlx.Tx, bookID uuid.UUID) error
	IncrementAvailable(ctx context.Context, tx *sqlx.Tx, bookID uuid.UUID) error

	// GetForUpdate locks the rental row. ownerID zero means any owner
	// (admin callers); a non-admin miss and a nonexistent id are the
	// same ErrNotFound on purpose.
	GetForUpdate(ctx context.Context, tx *sqlx.Tx, id uuid.UUID, ownerID int64) (*model.Rental, error)
	MarkReturned(ctx context.Context, tx *sqlx.Tx, id uuid.UUID, at time.Time) error

	Get(ctx context.Context, id uuid.UUID, ownerID int64) (*model.RentalRow, error)
	List(ctx context.Context, f model.RentalFilter) ([]model.RentalRow, error)

	// SweepOverdue rewrites stored status for lapsed active rentals.
	SweepOverdue(ctx context.Context, now time.Time) (int64, error)
}

type repo struct{ db *sqlx.DB }

func New(db *sqlx.DB) Repo { return &repo{db: db} }

var dialect = goqu.Dialect("postgres")

func (r *repo) LockBook(ctx context.Context, tx *sqlx.Tx, bookID uuid.UUID) (int, error) {
	const q = `
		SELECT available_copies
		FROM books
		WHERE id = $1
		FOR UPDATE`
	var available int
	err := tx.QueryRowContext(ctx, q, bookID).Scan(&available)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrBookNotFound
	}
	return available, err
}

func (r *repo) HasOpenRental(ctx context.Context, tx *sqlx.Tx, userID int64, bookID uuid.UUID) (bool, error) {
	const q = `
		SELECT EXISTS (
			SELECT 1 FROM rentals
			WHERE user_id = $1 AND book_id = $2 AND status IN ('active', 'overdue')
		)`
	var open bool
	err := tx.QueryRowContext(ctx, q, userID, bookID).Scan(&open)
	return open, err
}

func (r *repo) Insert(ctx context.Context, tx *sqlx.Tx, m *model.Rental) error {
	const q = `
		INSERT INTO rentals (id, user_id, book_id, rented_at, due_date, status)
		VALUES ($1,$2,$3,$4,$5,$6)
		RETURNING created_at, updated_at`
	return tx.QueryRowContext(ctx, q,
		m.ID, m.UserID, m.BookID, m.RentedAt, m.DueDate, m.Status,
	).Scan(&m.CreatedAt, &m.UpdatedAt)
}

func (r *repo) DecrementAvailable(ctx context.Context, tx *sqlx.Tx, bookID uuid.UUID) error {
	// Guard: never drive the count below zero.
	const q = `
		UPDATE books
		SET available_copies = available_copies - 1, updated_at = NOW()
		WHERE id = $1 AND available_copies > 0`
	res, err := tx.ExecContext(ctx, q, bookID)
	if err != nil {
		return err
	}
	if aff, _ := res.RowsAffected(); aff == 0 {
		return errors.New("no available copy to decrement")
	}
	return nil
}

func (r *repo) IncrementAvailable(ctx context.Context, tx *sqlx.Tx, bookID uuid.UUID) error {
	const q = `
		UPDATE books
		SET available_copies = available_copies + 1, updated_at = NOW()
		WHERE id = $1`
	_, err := tx.ExecContext(ctx, q, bookID)
	return err
}

func (r *repo) GetForUpdate(ctx context.Context, tx *sqlx.Tx, id uuid.UUID, ownerID int64) (*model.Rental, error) {
	q := `
		SELECT id, user_id, book_id, rented_at, due_date, returned_at,
			status, created_at, updated_at
		FROM rentals
		WHERE id = $1`
	args := []interface{}{id}
	if ownerID != 0 {
		q += ` AND user_id = $2`
		args = append(args, ownerID)
	}
	q += ` FOR UPDATE`

	var m model.Rental
	err := tx.GetContext(ctx, &m, q, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *repo) MarkReturned(ctx context.Context, tx *sqlx.Tx, id uuid.UUID, at time.Time) error {
	const q = `
		UPDATE rentals
		SET status = 'returned', returned_at = $2, updated_at = NOW()
		WHERE id = $1`
	_, err := tx.ExecContext(ctx, q, id, at)
	return err
}

const rentalRowCols = `
	r.id, r.user_id, r.book_id, r.rented_at, r.due_date, r.returned_at,
	r.status, r.created_at, r.updated_at,
	u.email AS user_email, u.first_name AS user_first_name,
	u.last_name AS user_last_name,
	b.title AS book_title, b.author AS book_author`

func (r *repo) Get(ctx context.Context, id uuid.UUID, ownerID int64) (*model.RentalRow, error) {
	q := `
		SELECT` + rentalRowCols + `
		FROM rentals r
		JOIN users u ON u.id = r.user_id
		JOIN books b ON b.id = r.book_id
		WHERE r.id = $1`
	args := []interface{}{id}
	if ownerID != 0 {
		q += ` AND r.user_id = $2`
		args = append(args, ownerID)
	}

	var row model.RentalRow
	err := r.db.GetContext(ctx, &row, q, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *repo) List(ctx context.Context, f model.RentalFilter) ([]model.RentalRow, error) {
	q, args, err := BuildListQuery(f)
	if err != nil {
		return nil, err
	}
	out := []model.RentalRow{}
	if err := r.db.SelectContext(ctx, &out, q, args...); err != nil {
		return nil, err
	}
	return out, nil
}

// BuildListQuery composes the filtered rental listing joined with user
// and book fields.
func BuildListQuery(f model.RentalFilter) (string, []interface{}, error) {
	stmt := dialect.From(goqu.T("rentals").As("r")).
		Join(goqu.T("users").As("u"), goqu.On(goqu.I("u.id").Eq(goqu.I("r.user_id")))).
		Join(goqu.T("books").As("b"), goqu.On(goqu.I("b.id").Eq(goqu.I("r.book_id")))).
		Select(
			goqu.I("r.id"), goqu.I("r.user_id"), goqu.I("r.book_id"),
			goqu.I("r.rented_at"), goqu.I("r.due_date"), goqu.I("r.returned_at"),
			goqu.I("r.status"), goqu.I("r.created_at"), goqu.I("r.updated_at"),
			goqu.I("u.email").As("user_email"),
			goqu.I("u.first_name").As("user_first_name"),
			goqu.I("u.last_name").As("user_last_name"),
			goqu.I("b.title").As("book_title"),
			goqu.I("b.author").As("book_author"),
		)

	if f.OwnerID != 0 {
		stmt = stmt.Where(goqu.I("r.user_id").Eq(f.OwnerID))
	}
	if f.Status != "" {
		stmt = stmt.Where(goqu.I("r.status").Eq(f.Status))
	}
	if f.OverdueOnly {
		stmt = stmt.Where(goqu.I("r.status").Eq(string(model.RentalOverdue)))
	}
	if f.UserEmail != "" {
		stmt = stmt.Where(goqu.I("u.email").ILike("%" + f.UserEmail + "%"))
	}
	if f.BookTitle != "" {
		stmt = stmt.Where(goqu.I("b.title").ILike("%" + f.BookTitle + "%"))
	}
	if f.BookAuthor != "" {
		stmt = stmt.Where(goqu.I("b.author").ILike("%" + f.BookAuthor + "%"))
	}
	if f.RentedAfter != nil {
		stmt = stmt.Where(goqu.I("r.rented_at").Gte(*f.RentedAfter))
	}
	if f.RentedBefore != nil {
		stmt = stmt.Where(goqu.I("r.rented_at").Lte(*f.RentedBefore))
	}
	if f.DueAfter != nil {
		stmt = stmt.Where(goqu.I("r.due_date").Gte(*f.DueAfter))
	}
	if f.DueBefore != nil {
		stmt = stmt.Where(goqu.I("r.due_date").Lte(*f.DueBefore))
	}

	ord, err := rentalOrdering(f.Ordering)
	if err != nil {
		return "", nil, err
	}
	stmt = stmt.Order(ord)

	return stmt.Prepared(true).ToSQL()
}

var rentalOrderable = map[string]bool{
	"rented_at": true, "due_date": true, "returned_at": true,
}

func rentalOrdering(ordering string) (exp.OrderedExpression, error) {
	if ordering == "" {
		ordering = "-rented_at"
	}
	col := ordering
	desc := false
	if col[0] == '-' {
		desc = true
		col = col[1:]
	}
	if !rentalOrderable[col] {
		return nil, fmt.Errorf("cannot order rentals by %q", col)
	}
	if desc {
		return goqu.I("r." + col).Desc(), nil
	}
	return goqu.I("r." + col).Asc(), nil
}

func (r *repo) SweepOverdue(ctx context.Context, now time.Time) (int64, error) {
	const q = `
		UPDATE rentals
		SET status = 'overdue', updated_at = NOW()
		WHERE status = 'active' AND due_date < $1`
	res, err := r.db.ExecContext(ctx, q, now)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
