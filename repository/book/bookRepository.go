package bookrepo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ahmed2231web/Book-Rental-System/model"
)

var ErrNotFound = errors.New("book not found")

type Repo interface {
	Insert(ctx context.Context, b *model.Book) error
	Update(ctx context.Context, b *model.Book) error
	Delete(ctx context.Context, id uuid.UUID) error
	ByID(ctx context.Context, id uuid.UUID) (*model.Book, error)
	// ISBNTaken reports whether another book already holds this
	// (normalized) ISBN. exclude skips the record being updated.
	ISBNTaken(ctx context.Context, isbn string, exclude uuid.UUID) (bool, error)
	List(ctx context.Context, f model.BookFilter) ([]model.Book, error)
}

type repo struct{ db *sqlx.DB }

func New(db *sqlx.DB) Repo { return &repo{db: db} }

var dialect = goqu.Dialect("postgres")

const bookCols = `id, title, author, isbn, publication_date, genre, description,
	total_copies, available_copies, created_at, updated_at`

func (r *repo) Insert(ctx context.Context, b *model.Book) error {
	const q = `
		INSERT INTO books (id, title, author, isbn, publication_date, genre,
			description, total_copies, available_copies)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		RETURNING created_at, updated_at`
	return r.db.QueryRowContext(ctx, q,
		b.ID, b.Title, b.Author, b.ISBN, b.PublicationDate, b.Genre,
		b.Description, b.TotalCopies, b.AvailableCopies,
	).Scan(&b.CreatedAt, &b.UpdatedAt)
}

func (r *repo) Update(ctx context.Context, b *model.Book) error {
	const q = `
		UPDATE books
		SET title = $2, author = $3, isbn = $4, publication_date = $5,
			genre = $6, description = $7, total_copies = $8,
			available_copies = $9, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`
	err := r.db.QueryRowContext(ctx, q,
		b.ID, b.Title, b.Author, b.ISBN, b.PublicationDate, b.Genre,
		b.Description, b.TotalCopies, b.AvailableCopies,
	).Scan(&b.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

// Delete removes the book; rentals referencing it go with it via the
// ON DELETE CASCADE foreign key.
func (r *repo) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM books WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if aff, _ := res.RowsAffected(); aff == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repo) ByID(ctx context.Context, id uuid.UUID) (*model.Book, error) {
	var b model.Book
	err := r.db.GetContext(ctx, &b,
		`SELECT `+bookCols+` FROM books WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *repo) ISBNTaken(ctx context.Context, isbn string, exclude uuid.UUID) (bool, error) {
	var taken bool
	err := r.db.GetContext(ctx, &taken,
		`SELECT EXISTS (SELECT 1 FROM books WHERE isbn = $1 AND id <> $2)`,
		isbn, exclude)
	return taken, err
}

func (r *repo) List(ctx context.Context, f model.BookFilter) ([]model.Book, error) {
	q, args, err := BuildListQuery(f)
	if err != nil {
		return nil, err
	}
	out := []model.Book{}
	if err := r.db.SelectContext(ctx, &out, q, args...); err != nil {
		return nil, err
	}
	return out, nil
}

// BuildListQuery composes the filtered, sorted book listing. Exported
// so the SQL shape can be asserted without a database.
func BuildListQuery(f model.BookFilter) (string, []interface{}, error) {
	stmt := dialect.From("books").Select(
		"id", "title", "author", "isbn", "publication_date", "genre",
		"description", "total_copies", "available_copies", "created_at",
		"updated_at",
	)

	if f.Search != "" {
		pat := "%" + f.Search + "%"
		stmt = stmt.Where(goqu.Or(
			goqu.C("title").ILike(pat),
			goqu.C("author").ILike(pat),
			goqu.C("description").ILike(pat),
			goqu.C("isbn").ILike(pat),
		))
	}
	if f.Genre != "" {
		stmt = stmt.Where(goqu.C("genre").Eq(f.Genre))
	}
	if f.Author != "" {
		stmt = stmt.Where(goqu.C("author").ILike("%" + f.Author + "%"))
	}
	if f.Title != "" {
		stmt = stmt.Where(goqu.C("title").ILike("%" + f.Title + "%"))
	}
	if f.ISBN != "" {
		stmt = stmt.Where(goqu.C("isbn").ILike("%" + f.ISBN + "%"))
	}
	if f.PublicationYear != 0 {
		stmt = stmt.Where(goqu.L("EXTRACT(YEAR FROM publication_date)").Eq(f.PublicationYear))
	}
	if f.PublicationYearGTE != 0 {
		stmt = stmt.Where(goqu.L("EXTRACT(YEAR FROM publication_date)").Gte(f.PublicationYearGTE))
	}
	if f.PublicationYearLTE != 0 {
		stmt = stmt.Where(goqu.L("EXTRACT(YEAR FROM publication_date)").Lte(f.PublicationYearLTE))
	}
	if f.AvailableOnly {
		stmt = stmt.Where(goqu.C("available_copies").Gt(0))
	}

	ord, err := bookOrdering(f.Ordering)
	if err != nil {
		return "", nil, err
	}
	stmt = stmt.Order(ord)

	return stmt.Prepared(true).ToSQL()
}

var bookOrderable = map[string]bool{
	"title": true, "author": true, "publication_date": true, "created_at": true,
}

func bookOrdering(ordering string) (exp.OrderedExpression, error) {
	if ordering == "" {
		ordering = "-created_at"
	}
	col := ordering
	desc := false
	if col[0] == '-' {
		desc = true
		col = col[1:]
	}
	if !bookOrderable[col] {
		return nil, fmt.Errorf("cannot order books by %q", col)
	}
	if desc {
		return goqu.C(col).Desc(), nil
	}
	return goqu.C(col).Asc(), nil
}
