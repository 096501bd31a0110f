package statsrepo

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

func TestDashboard(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()
	sdb := sqlx.NewDb(db, "sqlmock")

	rows := sqlmock.NewRows([]string{
		"total_books", "total_users", "active_rentals",
		"overdue_rentals", "available_books", "total_available_copies",
	}).AddRow(20, 5, 3, 1, 18, 47)
	mock.ExpectQuery(`SELECT`).WillReturnRows(rows)

	d, err := New(sdb).Dashboard(context.Background())
	require.NoError(t, err)
	require.EqualValues(t, 20, d.TotalBooks)
	require.EqualValues(t, 5, d.TotalUsers)
	require.EqualValues(t, 3, d.ActiveRentals)
	require.EqualValues(t, 1, d.OverdueRentals)
	require.EqualValues(t, 18, d.AvailableBooks)
	require.EqualValues(t, 47, d.TotalAvailableCopies)
	require.NoError(t, mock.ExpectationsWereMet())
}
