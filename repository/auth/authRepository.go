package authrepo

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/ahmed2231web/Book-Rental-System/model"
)

var ErrNotFound = errors.New("user not found")

type Repo interface {
	Create(ctx context.Context, u *model.User) error
	ByEmail(ctx context.Context, email string) (*model.User, error)
	ByID(ctx context.Context, id int64) (*model.User, error)

	// Refresh-token denylist, consulted on refresh and written on logout.
	DenyToken(ctx context.Context, jti string, userID int64, expiresAt time.Time) error
	IsDenied(ctx context.Context, jti string) (bool, error)
	PurgeExpiredTokens(ctx context.Context, now time.Time) (int64, error)
}

type repo struct{ db *sqlx.DB }

func New(db *sqlx.DB) Repo { return &repo{db: db} }

const userCols = `id, email, username, first_name, last_name, role,
	is_active, password_hash, created_at, updated_at`

func (r *repo) Create(ctx context.Context, u *model.User) error {
	const q = `
		INSERT INTO users (email, username, first_name, last_name, role,
			is_active, password_hash)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		RETURNING id, created_at, updated_at`
	return r.db.QueryRowContext(ctx, q,
		u.Email, u.Username, u.FirstName, u.LastName, u.Role,
		u.IsActive, u.PasswordHash,
	).Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt)
}

func (r *repo) ByEmail(ctx context.Context, email string) (*model.User, error) {
	var u model.User
	err := r.db.GetContext(ctx, &u,
		`SELECT `+userCols+` FROM users WHERE lower(email) = lower($1)`, email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

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

func (r *repo) DenyToken(ctx context.Context, jti string, userID int64, expiresAt time.Time) error {
	const q = `
		INSERT INTO token_denylist (jti, user_id, expires_at)
		VALUES ($1,$2,$3)
		ON CONFLICT (jti) DO NOTHING`
	_, err := r.db.ExecContext(ctx, q, jti, userID, expiresAt)
	return err
}

func (r *repo) IsDenied(ctx context.Context, jti string) (bool, error) {
	var denied bool
	err := r.db.GetContext(ctx, &denied,
		`SELECT EXISTS (SELECT 1 FROM token_denylist WHERE jti = $1)`, jti)
	return denied, err
}

func (r *repo) PurgeExpiredTokens(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM token_denylist WHERE expires_at < $1`, now)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
