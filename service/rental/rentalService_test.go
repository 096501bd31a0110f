package rentalsvc

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/ahmed2231web/Book-Rental-System/model"
	rentalrepo "github.com/ahmed2231web/Book-Rental-System/repository/rental"
)

type mockRepo struct {
	lockBookFn     func(ctx context.Context, tx *sqlx.Tx, bookID uuid.UUID) (int, error)
	hasOpenFn      func(ctx context.Context, tx *sqlx.Tx, userID int64, bookID uuid.UUID) (bool, error)
	insertFn       func(ctx context.Context, tx *sqlx.Tx, r *model.Rental) error
	decrementFn    func(ctx context.Context, tx *sqlx.Tx, bookID uuid.UUID) error
	incrementFn    func(ctx context.Context, tx *sqlx.Tx, bookID uuid.UUID) error
	getForUpdateFn func(ctx context.Context, tx *sqlx.Tx, id uuid.UUID, ownerID int64) (*model.Rental, error)
	markReturnedFn func(ctx context.Context, tx *sqlx.Tx, id uuid.UUID, at time.Time) error
	getFn          func(ctx context.Context, id uuid.UUID, ownerID int64) (*model.RentalRow, error)
	listFn         func(ctx context.Context, f model.RentalFilter) ([]model.RentalRow, error)
	sweepFn        func(ctx context.Context, now time.Time) (int64, error)
}

var _ rentalrepo.Repo = (*mockRepo)(nil)

func (m *mockRepo) LockBook(ctx context.Context, tx *sqlx.Tx, bookID uuid.UUID) (int, error) {
	return m.lockBookFn(ctx, tx, bookID)
}
func (m *mockRepo) HasOpenRental(ctx context.Context, tx *sqlx.Tx, userID int64, bookID uuid.UUID) (bool, error) {
	return m.hasOpenFn(ctx, tx, userID, bookID)
}
func (m *mockRepo) Insert(ctx context.Context, tx *sqlx.Tx, r *model.Rental) error {
	return m.insertFn(ctx, tx, r)
}
func (m *mockRepo) DecrementAvailable(ctx context.Context, tx *sqlx.Tx, bookID uuid.UUID) error {
	return m.decrementFn(ctx, tx, bookID)
}
func (m *mockRepo) IncrementAvailable(ctx context.Context, tx *sqlx.Tx, bookID uuid.UUID) error {
	return m.incrementFn(ctx, tx, bookID)
}
func (m *mockRepo) GetForUpdate(ctx context.Context, tx *sqlx.Tx, id uuid.UUID, ownerID int64) (*model.Rental, error) {
	return m.getForUpdateFn(ctx, tx, id, ownerID)
}
func (m *mockRepo) MarkReturned(ctx context.Context, tx *sqlx.Tx, id uuid.UUID, at time.Time) error {
	return m.markReturnedFn(ctx, tx, id, at)
}
func (m *mockRepo) Get(ctx context.Context, id uuid.UUID, ownerID int64) (*model.RentalRow, error) {
	return m.getFn(ctx, id, ownerID)
}
func (m *mockRepo) List(ctx context.Context, f model.RentalFilter) ([]model.RentalRow, error) {
	return m.listFn(ctx, f)
}
func (m *mockRepo) SweepOverdue(ctx context.Context, now time.Time) (int64, error) {
	return m.sweepFn(ctx, now)
}

func newTestDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return sqlx.NewDb(db, "sqlmock"), mock
}

var (
	alice = model.Caller{ID: 7, Email: "alice@example.com", Role: model.RoleUser}
	admin = model.Caller{ID: 1, Email: "admin@bookrental.com", Role: model.RoleAdmin}
)

// --- Create ---

func TestCreate_Success(t *testing.T) {
	db, mock := newTestDB(t)
	bookID := uuid.New()

	decremented := false
	m := &mockRepo{
		lockBookFn: func(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) (int, error) {
			require.Equal(t, bookID, id)
			return 1, nil
		},
		hasOpenFn: func(ctx context.Context, tx *sqlx.Tx, userID int64, id uuid.UUID) (bool, error) {
			require.Equal(t, alice.ID, userID)
			return false, nil
		},
		insertFn: func(ctx context.Context, tx *sqlx.Tx, r *model.Rental) error {
			return nil
		},
		decrementFn: func(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) error {
			decremented = true
			return nil
		},
	}

	mock.ExpectBegin()
	mock.ExpectCommit()

	svc := New(db, m)
	r, err := svc.Create(context.Background(), alice, bookID, 0)
	require.NoError(t, err)
	require.True(t, decremented)
	require.Equal(t, model.RentalActive, r.Status)
	require.Equal(t, alice.ID, r.UserID)
	require.Equal(t, bookID, r.BookID)
	require.NotEqual(t, uuid.Nil, r.ID)

	// Zero period means the default 14 days.
	require.WithinDuration(t, time.Now().UTC().AddDate(0, 0, 14), r.DueDate, 5*time.Second)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_NoCopiesAvailable(t *testing.T) {
	db, mock := newTestDB(t)

	m := &mockRepo{
		lockBookFn: func(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) (int, error) {
			return 0, nil
		},
	}

	mock.ExpectBegin()
	mock.ExpectRollback()

	svc := New(db, m)
	_, err := svc.Create(context.Background(), alice, uuid.New(), 14)
	require.Error(t, err)
	require.Equal(t, ErrNotAvailable, Code(err))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_DuplicateOpenRental(t *testing.T) {
	db, mock := newTestDB(t)

	m := &mockRepo{
		lockBookFn: func(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) (int, error) {
			return 2, nil
		},
		hasOpenFn: func(ctx context.Context, tx *sqlx.Tx, userID int64, id uuid.UUID) (bool, error) {
			return true, nil
		},
	}

	mock.ExpectBegin()
	mock.ExpectRollback()

	svc := New(db, m)
	_, err := svc.Create(context.Background(), alice, uuid.New(), 14)
	require.Error(t, err)
	require.Equal(t, ErrDuplicateRental, Code(err))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_BookNotFound(t *testing.T) {
	db, mock := newTestDB(t)

	m := &mockRepo{
		lockBookFn: func(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) (int, error) {
			return 0, rentalrepo.ErrBookNotFound
		},
	}

	mock.ExpectBegin()
	mock.ExpectRollback()

	svc := New(db, m)
	_, err := svc.Create(context.Background(), alice, uuid.New(), 14)
	require.Equal(t, ErrBookNotFound, Code(err))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_PeriodBounds(t *testing.T) {
	db, _ := newTestDB(t)
	svc := New(db, &mockRepo{})

	for _, days := range []int{-1, 31, 100} {
		_, err := svc.Create(context.Background(), alice, uuid.New(), days)
		require.Equal(t, ErrBadPeriod, Code(err), "period %d", days)
	}
}

func TestCreate_CustomPeriod(t *testing.T) {
	db, mock := newTestDB(t)

	m := &mockRepo{
		lockBookFn: func(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) (int, error) { return 1, nil },
		hasOpenFn: func(ctx context.Context, tx *sqlx.Tx, userID int64, id uuid.UUID) (bool, error) {
			return false, nil
		},
		insertFn:    func(ctx context.Context, tx *sqlx.Tx, r *model.Rental) error { return nil },
		decrementFn: func(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) error { return nil },
	}

	mock.ExpectBegin()
	mock.ExpectCommit()

	svc := New(db, m)
	r, err := svc.Create(context.Background(), alice, uuid.New(), 30)
	require.NoError(t, err)
	require.WithinDuration(t, time.Now().UTC().AddDate(0, 0, 30), r.DueDate, 5*time.Second)
}

// --- Return ---

func TestReturn_Success(t *testing.T) {
	db, mock := newTestDB(t)
	rentalID := uuid.New()
	bookID := uuid.New()

	incremented := false
	m := &mockRepo{
		getForUpdateFn: func(ctx context.Context, tx *sqlx.Tx, id uuid.UUID, ownerID int64) (*model.Rental, error) {
			// Non-admin callers are scoped to their own rentals.
			require.Equal(t, alice.ID, ownerID)
			return &model.Rental{
				ID: rentalID, UserID: alice.ID, BookID: bookID,
				Status: model.RentalActive,
			}, nil
		},
		markReturnedFn: func(ctx context.Context, tx *sqlx.Tx, id uuid.UUID, at time.Time) error {
			require.Equal(t, rentalID, id)
			return nil
		},
		incrementFn: func(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) error {
			require.Equal(t, bookID, id)
			incremented = true
			return nil
		},
	}

	mock.ExpectBegin()
	mock.ExpectCommit()

	svc := New(db, m)
	r, err := svc.Return(context.Background(), alice, rentalID)
	require.NoError(t, err)
	require.True(t, incremented)
	require.Equal(t, model.RentalReturned, r.Status)
	require.NotNil(t, r.ReturnedAt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReturn_AdminScopesToAnyOwner(t *testing.T) {
	db, mock := newTestDB(t)

	m := &mockRepo{
		getForUpdateFn: func(ctx context.Context, tx *sqlx.Tx, id uuid.UUID, ownerID int64) (*model.Rental, error) {
			require.Zero(t, ownerID)
			return &model.Rental{ID: id, UserID: alice.ID, BookID: uuid.New(), Status: model.RentalOverdue}, nil
		},
		markReturnedFn: func(ctx context.Context, tx *sqlx.Tx, id uuid.UUID, at time.Time) error { return nil },
		incrementFn:    func(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) error { return nil },
	}

	mock.ExpectBegin()
	mock.ExpectCommit()

	svc := New(db, m)
	// An overdue rental returns like any other.
	r, err := svc.Return(context.Background(), admin, uuid.New())
	require.NoError(t, err)
	require.Equal(t, model.RentalReturned, r.Status)
}

func TestReturn_AlreadyReturned(t *testing.T) {
	db, mock := newTestDB(t)

	at := time.Now().UTC().Add(-time.Hour)
	m := &mockRepo{
		getForUpdateFn: func(ctx context.Context, tx *sqlx.Tx, id uuid.UUID, ownerID int64) (*model.Rental, error) {
			return &model.Rental{ID: id, Status: model.RentalReturned, ReturnedAt: &at}, nil
		},
		incrementFn: func(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) error {
			t.Fatal("a second return must not touch available_copies")
			return nil
		},
	}

	mock.ExpectBegin()
	mock.ExpectRollback()

	svc := New(db, m)
	_, err := svc.Return(context.Background(), alice, uuid.New())
	require.Equal(t, ErrAlreadyReturned, Code(err))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReturn_NotFound(t *testing.T) {
	db, mock := newTestDB(t)

	m := &mockRepo{
		getForUpdateFn: func(ctx context.Context, tx *sqlx.Tx, id uuid.UUID, ownerID int64) (*model.Rental, error) {
			return nil, rentalrepo.ErrNotFound
		},
	}

	mock.ExpectBegin()
	mock.ExpectRollback()

	svc := New(db, m)
	_, err := svc.Return(context.Background(), alice, uuid.New())
	require.Equal(t, ErrNotFound, Code(err))
}

// --- Round trip over a stateful fake ---

func TestCreateThenReturn_RestoresAvailability(t *testing.T) {
	db, mock := newTestDB(t)
	bookID := uuid.New()

	available := 1
	var stored *model.Rental
	m := &mockRepo{
		lockBookFn: func(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) (int, error) {
			return available, nil
		},
		hasOpenFn: func(ctx context.Context, tx *sqlx.Tx, userID int64, id uuid.UUID) (bool, error) {
			return stored != nil && stored.Status != model.RentalReturned, nil
		},
		insertFn: func(ctx context.Context, tx *sqlx.Tx, r *model.Rental) error {
			cp := *r
			stored = &cp
			return nil
		},
		decrementFn: func(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) error {
			available--
			return nil
		},
		incrementFn: func(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) error {
			available++
			return nil
		},
		getForUpdateFn: func(ctx context.Context, tx *sqlx.Tx, id uuid.UUID, ownerID int64) (*model.Rental, error) {
			if stored == nil || stored.ID != id {
				return nil, rentalrepo.ErrNotFound
			}
			cp := *stored
			return &cp, nil
		},
		markReturnedFn: func(ctx context.Context, tx *sqlx.Tx, id uuid.UUID, at time.Time) error {
			stored.Status = model.RentalReturned
			stored.ReturnedAt = &at
			return nil
		},
	}

	mock.ExpectBegin()
	mock.ExpectCommit()
	mock.ExpectBegin()
	mock.ExpectRollback()
	mock.ExpectBegin()
	mock.ExpectCommit()
	mock.ExpectBegin()
	mock.ExpectRollback()

	svc := New(db, m)
	ctx := context.Background()

	r, err := svc.Create(ctx, alice, bookID, 14)
	require.NoError(t, err)
	require.Equal(t, 0, available)

	// Renting the same book again while it is out fails. With zero
	// copies left this surfaces as NOT_AVAILABLE before the duplicate
	// check even runs.
	_, err = svc.Create(ctx, alice, bookID, 14)
	require.Equal(t, ErrNotAvailable, Code(err))

	_, err = svc.Return(ctx, alice, r.ID)
	require.NoError(t, err)
	require.Equal(t, 1, available)

	// Second return fails and does not increment again.
	_, err = svc.Return(ctx, alice, r.ID)
	require.Equal(t, ErrAlreadyReturned, Code(err))
	require.Equal(t, 1, available)

	require.NoError(t, mock.ExpectationsWereMet())
}

// --- Listing ---

func TestList_AppliesEffectiveStatus(t *testing.T) {
	db, _ := newTestDB(t)

	lapsed := model.RentalRow{}
	lapsed.Status = model.RentalActive
	lapsed.DueDate = time.Now().UTC().Add(-48 * time.Hour)

	current := model.RentalRow{}
	current.Status = model.RentalActive
	current.DueDate = time.Now().UTC().Add(48 * time.Hour)

	m := &mockRepo{
		listFn: func(ctx context.Context, f model.RentalFilter) ([]model.RentalRow, error) {
			// Non-admin scope is forced to the caller.
			require.Equal(t, alice.ID, f.OwnerID)
			return []model.RentalRow{lapsed, current}, nil
		},
	}

	svc := New(db, m)
	rows, err := svc.List(context.Background(), alice, true, model.RentalFilter{})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Equal(t, model.RentalOverdue, rows[0].Status)
	require.Equal(t, model.RentalActive, rows[1].Status)
}

func TestList_AdminSeesAll(t *testing.T) {
	db, _ := newTestDB(t)

	m := &mockRepo{
		listFn: func(ctx context.Context, f model.RentalFilter) ([]model.RentalRow, error) {
			require.Zero(t, f.OwnerID)
			return nil, nil
		},
	}

	svc := New(db, m)
	_, err := svc.List(context.Background(), admin, true, model.RentalFilter{})
	require.NoError(t, err)
}

func TestSweepOverdue(t *testing.T) {
	db, _ := newTestDB(t)

	now := time.Now().UTC()
	m := &mockRepo{
		sweepFn: func(ctx context.Context, at time.Time) (int64, error) {
			require.Equal(t, now, at)
			return 3, nil
		},
	}

	svc := New(db, m)
	n, err := svc.SweepOverdue(context.Background(), now)
	require.NoError(t, err)
	require.EqualValues(t, 3, n)
}
