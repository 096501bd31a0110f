package userrepo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/jmoiron/sqlx"

	"github.com/ahmed2231web/Book-Rental-System/model"
)

var ErrNotFound = errors.New("user not found")

type Repo interface {
	ByID(ctx context.Context, id int64) (*model.User, error)
	Update(ctx context.Context, u *model.User) error
	Delete(ctx context.Context, id int64) error
	// EmailTaken reports whether another user holds this email.
	EmailTaken(ctx context.Context, email string, exclude int64) (bool, error)
	List(ctx context.Context, f model.UserFilter) ([]model.User, error)
}

type repo struct{ db *sqlx.DB }

func New(db *sqlx.DB) Repo { return &repo{db: db} }

var dialect = goqu.Dialect("postgres")

const userCols = `id, email, username, first_name, last_name, role,
	is_active, password_hash, created_at, updated_at`

func (r *repo) ByID(ctx context.Context, id int64) (*model.User, error) {
	var u model.User
	err := r.db.GetContext(ctx, &u,
		`SELECT `+userCols+` FROM users WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *repo) Update(ctx context.Context, u *model.User) error {
	const q = `
		UPDATE users
		SET email = $2, first_name = $3, last_name = $4, role = $5,
			is_active = $6, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`
	err := r.db.QueryRowContext(ctx, q,
		u.ID, u.Email, u.FirstName, u.LastName, u.Role, u.IsActive,
	).Scan(&u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

// Delete removes the account; the user's rentals cascade with it.
func (r *repo) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if aff, _ := res.RowsAffected(); aff == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repo) EmailTaken(ctx context.Context, email string, exclude int64) (bool, error) {
	var taken bool
	err := r.db.GetContext(ctx, &taken,
		`SELECT EXISTS (SELECT 1 FROM users WHERE lower(email) = lower($1) AND id <> $2)`,
		email, exclude)
	return taken, err
}

func (r *repo) List(ctx context.Context, f model.UserFilter) ([]model.User, error) {
	q, args, err := BuildListQuery(f)
	if err != nil {
		return nil, err
	}
	out := []model.User{}
	if err := r.db.SelectContext(ctx, &out, q, args...); err != nil {
		return nil, err
	}
	return out, nil
}

func BuildListQuery(f model.UserFilter) (string, []interface{}, error) {
	stmt := dialect.From("users").Select(
		"id", "email", "username", "first_name", "last_name", "role",
		"is_active", "password_hash", "created_at", "updated_at",
	)

	if f.Role != "" {
		stmt = stmt.Where(goqu.C("role").Eq(f.Role))
	}
	if f.IsActive != nil {
		stmt = stmt.Where(goqu.C("is_active").Eq(*f.IsActive))
	}
	if f.Search != "" {
		pat := "%" + f.Search + "%"
		stmt = stmt.Where(goqu.Or(
			goqu.C("email").ILike(pat),
			goqu.C("first_name").ILike(pat),
			goqu.C("last_name").ILike(pat),
		))
	}

	ord, err := userOrdering(f.Ordering)
	if err != nil {
		return "", nil, err
	}
	stmt = stmt.Order(ord)

	return stmt.Prepared(true).ToSQL()
}

var userOrderable = map[string]bool{
	"created_at": true, "email": true, "last_name": true,
}

func userOrdering(ordering string) (exp.OrderedExpression, error) {
	if ordering == "" {
		ordering = "-created_at"
	}
	col := ordering
	desc := false
	if col[0] == '-' {
		desc = true
		col = col[1:]
	}
	if !userOrderable[col] {
		return nil, fmt.Errorf("cannot order users by %q", col)
	}
	if desc {
		return goqu.C(col).Desc(), nil
	}
	return goqu.C(col).Asc(), nil
}
