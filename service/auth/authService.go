package authsvc

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/ahmed2231web/Book-Rental-System/model"
	authrepo "github.com/ahmed2231web/Book-Rental-System/repository/auth"
	"github.com/ahmed2231web/Book-Rental-System/util/hash"
	jwtutil "github.com/ahmed2231web/Book-Rental-System/util/jwt"
)

type ErrCode string

const (
	ErrEmailTaken    ErrCode = "EMAIL_TAKEN"
	ErrUsernameTaken ErrCode = "USERNAME_TAKEN"
	ErrInvalidCreds  ErrCode = "INVALID_CREDENTIALS"
	ErrInactive      ErrCode = "ACCOUNT_DISABLED"
	ErrBadToken      ErrCode = "BAD_TOKEN"
)

type codedError struct{ code ErrCode }

func (e codedError) Error() string { return string(e.code) }
func (e codedError) Code() ErrCode { return e.code }
func makeErr(c ErrCode) error      { return codedError{code: c} }

func Code(err error) ErrCode {
	var ce interface{ Code() ErrCode }
	if errors.As(err, &ce) {
		return ce.Code()
	}
	return ""
}

// TokenPair is what login hands back.
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

type Config struct {
	Secret     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

type Service interface {
	// Register creates a user account. Role always defaults to "user";
	// admins are provisioned out of band (seed command).
	Register(ctx context.Context, req model.RegisterReq) (*model.User, error)
	Login(ctx context.Context, req model.LoginReq) (*model.User, *TokenPair, error)
	// Refresh trades a live refresh token for a fresh access token.
	Refresh(ctx context.Context, refreshToken string) (string, error)
	// Logout denylists the refresh token until its natural expiry.
	Logout(ctx context.Context, refreshToken string) error
}

type service struct {
	r   authrepo.Repo
	cfg Config
}

func New(r authrepo.Repo, cfg Config) Service { return &service{r: r, cfg: cfg} }

func (s *service) Register(ctx context.Context, req model.RegisterReq) (*model.User, error) {
	hashed, err := hash.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	u := &model.User{
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		Username:     strings.TrimSpace(req.Username),
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Role:         model.RoleUser,
		IsActive:     true,
		PasswordHash: hashed,
	}

	if err := s.r.Create(ctx, u); err != nil {
		if derr := mapDuplicateErr(err); derr != nil {
			return nil, derr
		}
		return nil, err
	}
	return u, nil
}

func mapDuplicateErr(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		cn := strings.ToLower(pgErr.ConstraintName)
		msg := strings.ToLower(pgErr.Message)

		if strings.Contains(cn, "users_email") || strings.Contains(msg, "email") {
			return makeErr(ErrEmailTaken)
		}
		if strings.Contains(cn, "users_username") || strings.Contains(msg, "username") {
			return makeErr(ErrUsernameTaken)
		}
		return makeErr(ErrEmailTaken)
	}
	return nil
}

func (s *service) Login(ctx context.Context, req model.LoginReq) (*model.User, *TokenPair, error) {
	u, err := s.r.ByEmail(ctx, req.Email)
	if err != nil {
		// Missing account and bad password look the same.
		return nil, nil, makeErr(ErrInvalidCreds)
	}
	if !hash.Check(u.PasswordHash, req.Password) {
		return nil, nil, makeErr(ErrInvalidCreds)
	}
	if !u.IsActive {
		return nil, nil, makeErr(ErrInactive)
	}

	pair, err := s.issuePair(u)
	if err != nil {
		return nil, nil, err
	}
	return u, pair, nil
}

func (s *service) issuePair(u *model.User) (*TokenPair, error) {
	access, err := jwtutil.Issue(s.cfg.Secret, u.ID, u.Email, string(u.Role),
		u.FullName(), jwtutil.TypeAccess, s.cfg.AccessTTL)
	if err != nil {
		return nil, err
	}
	refresh, err := jwtutil.Issue(s.cfg.Secret, u.ID, u.Email, string(u.Role),
		u.FullName(), jwtutil.TypeRefresh, s.cfg.RefreshTTL)
	if err != nil {
		return nil, err
	}
	return &TokenPair{Access: access, Refresh: refresh}, nil
}

func (s *service) Refresh(ctx context.Context, refreshToken string) (string, error) {
	claims, err := jwtutil.ParseTyped(refreshToken, s.cfg.Secret, jwtutil.TypeRefresh)
	if err != nil {
		return "", makeErr(ErrBadToken)
	}
	denied, err := s.r.IsDenied(ctx, claims.JTI)
	if err != nil {
		return "", err
	}
	if denied {
		return "", makeErr(ErrBadToken)
	}

	u, err := s.r.ByID(ctx, claims.UserID)
	if err != nil {
		return "", makeErr(ErrBadToken)
	}
	if !u.IsActive {
		return "", makeErr(ErrInactive)
	}

	return jwtutil.Issue(s.cfg.Secret, u.ID, u.Email, string(u.Role),
		u.FullName(), jwtutil.TypeAccess, s.cfg.AccessTTL)
}

func (s *service) Logout(ctx context.Context, refreshToken string) error {
	claims, err := jwtutil.ParseTyped(refreshToken, s.cfg.Secret, jwtutil.TypeRefresh)
	if err != nil {
		return makeErr(ErrBadToken)
	}
	return s.r.DenyToken(ctx, claims.JTI, claims.UserID, claims.Expires)
}
