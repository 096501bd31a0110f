package bookrepo

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ahmed2231web/Book-Rental-System/model"
)

func TestBuildListQuery_Defaults(t *testing.T) {
	q, args, err := BuildListQuery(model.BookFilter{})
	require.NoError(t, err)
	require.Empty(t, args)
	require.Contains(t, q, `FROM "books"`)
	require.Contains(t, q, `ORDER BY "created_at" DESC`)
	require.NotContains(t, q, "WHERE")
}

func TestBuildListQuery_SearchSpansFields(t *testing.T) {
	q, args, err := BuildListQuery(model.BookFilter{Search: "tolkien"})
	require.NoError(t, err)
	require.Contains(t, q, `"title" ILIKE`)
	require.Contains(t, q, `"author" ILIKE`)
	require.Contains(t, q, `"description" ILIKE`)
	require.Contains(t, q, `"isbn" ILIKE`)
	require.Contains(t, q, " OR ")
	require.Contains(t, args, "%tolkien%")
}

func TestBuildListQuery_CombinedFilters(t *testing.T) {
	q, args, err := BuildListQuery(model.BookFilter{
		Genre:           "fantasy",
		AvailableOnly:   true,
		PublicationYear: 1954,
		Ordering:        "title",
	})
	require.NoError(t, err)
	require.Contains(t, q, `"genre" =`)
	require.Contains(t, q, `"available_copies" >`)
	require.Contains(t, q, "EXTRACT(YEAR FROM publication_date)")
	require.Contains(t, q, `ORDER BY "title" ASC`)
	require.Contains(t, args, "fantasy")
}

func TestBuildListQuery_YearRange(t *testing.T) {
	q, _, err := BuildListQuery(model.BookFilter{
		PublicationYearGTE: 1990,
		PublicationYearLTE: 2000,
	})
	require.NoError(t, err)
	require.Contains(t, q, "EXTRACT(YEAR FROM publication_date) >=")
	require.Contains(t, q, "EXTRACT(YEAR FROM publication_date) <=")
}

func TestBuildListQuery_OrderingWhitelist(t *testing.T) {
	for _, ord := range []string{"isbn", "id; DROP TABLE books", "unknown"} {
		_, _, err := BuildListQuery(model.BookFilter{Ordering: ord})
		require.Error(t, err, ord)
	}

	// Every whitelisted column works in both directions.
	for _, col := range []string{"title", "author", "publication_date", "created_at"} {
		_, _, err := BuildListQuery(model.BookFilter{Ordering: col})
		require.NoError(t, err, col)
		_, _, err = BuildListQuery(model.BookFilter{Ordering: "-" + col})
		require.NoError(t, err, "-"+col)
	}
}
