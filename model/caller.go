package model

// Caller identifies the authenticated principal on a request: the
// identity layer resolves it once from token claims, everything below
// consumes it.
type Caller struct {
	ID    int64
	Email string
	Role  Role
}

func (c Caller) IsAdmin() bool { return c.Role == RoleAdmin }
