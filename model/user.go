package model

import "time"

type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

type User struct {
	ID           int64     `db:"id" json:"id"`
	Email        string    `db:"email" json:"email"`
	Username     string    `db:"username" json:"username"`
	FirstName    string    `db:"first_name" json:"first_name"`
	LastName     string    `db:"last_name" json:"last_name"`
	Role         Role      `db:"role" json:"role"`
	IsActive     bool      `db:"is_active" json:"is_active"`
	PasswordHash string    `db:"password_hash" json:"-"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

func (u User) FullName() string { return u.FirstName + " " + u.LastName }

// RegisterReq represents user registration payload
// swagger:model RegisterReq
type RegisterReq struct {
	Email           string `json:"email" validate:"required,email"`
	Username        string `json:"username" validate:"required,max=150"`
	FirstName       string `json:"first_name" validate:"required,max=30"`
	LastName        string `json:"last_name" validate:"required,max=30"`
	Password        string `json:"password" validate:"required,min=8"`
	PasswordConfirm string `json:"password_confirm" validate:"required,eqfield=Password"`
}

// LoginReq represents login payload
// swagger:model LoginReq
type LoginReq struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RefreshReq carries a refresh token (refresh and logout endpoints).
type RefreshReq struct {
	Refresh string `json:"refresh" validate:"required"`
}

// UpdateProfileReq is the profile patch payload; nil means keep.
type UpdateProfileReq struct {
	Email     *string `json:"email" validate:"omitempty,email"`
	FirstName *string `json:"first_name" validate:"omitempty,max=30"`
	LastName  *string `json:"last_name" validate:"omitempty,max=30"`
}

// UpdateUserReq is the admin user patch payload.
type UpdateUserReq struct {
	Email     *string `json:"email" validate:"omitempty,email"`
	FirstName *string `json:"first_name" validate:"omitempty,max=30"`
	LastName  *string `json:"last_name" validate:"omitempty,max=30"`
	Role      *string `json:"role" validate:"omitempty,oneof=admin user"`
	IsActive  *bool   `json:"is_active"`
}

// UserFilter mirrors the admin user list query parameters.
type UserFilter struct {
	Role     string
	IsActive *bool
	Search   string
	Ordering string
}
