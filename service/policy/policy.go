// Package policy is the single place role checks live. Controllers call
// these instead of re-deriving authorization per handler.
package policy

import "github.com/ahmed2231web/Book-Rental-System/model"

func CanManageBooks(c model.Caller) bool { return c.IsAdmin() }

func CanManageUsers(c model.Caller) bool { return c.IsAdmin() }

func CanViewDashboard(c model.Caller) bool { return c.IsAdmin() }

func CanViewAllRentals(c model.Caller) bool { return c.IsAdmin() }

// RentalOwnerScope resolves the listing scope before the rental service
// runs: zero means "all rentals", anything else restricts to that
// owner. Non-admins always get their own scope regardless of what they
// asked for.
func RentalOwnerScope(c model.Caller, wantAll bool) int64 {
	if wantAll && CanViewAllRentals(c) {
		return 0
	}
	return c.ID
}

// ReturnOwnerScope: admins may return any rental, owners only their own.
func ReturnOwnerScope(c model.Caller) int64 {
	if c.IsAdmin() {
		return 0
	}
	return c.ID
}
