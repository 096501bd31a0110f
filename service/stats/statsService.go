package statssvc

import (
	"context"

	statsrepo "github.com/ahmed2231web/Book-Rental-System/repository/stats"
)

type Service interface {
	// Dashboard aggregates over stored rental status: a lapsed rental
	// that no write has touched still counts as active here until
	// sweep-overdue (or its return) rewrites the row. Listings, by
	// contrast, always show effective status.
	Dashboard(ctx context.Context) (*statsrepo.Dashboard, error)
}

type service struct{ r statsrepo.Repo }

func New(r statsrepo.Repo) Service { return &service{r: r} }

func (s *service) Dashboard(ctx context.Context) (*statsrepo.Dashboard, error) {
	return s.r.Dashboard(ctx)
}
