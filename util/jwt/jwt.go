// util/jwt/jwt.go
package jwt

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	TypeAccess  = "access"
	TypeRefresh = "refresh"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrWrongType    = errors.New("wrong token type")
)

// Claims is what both access and refresh tokens carry.
type Claims struct {
	UserID   int64
	Email    string
	Role     string
	FullName string
	Type     string
	JTI      string
	Expires  time.Time
}

// Issue signs an HS256 token for the user.
func Issue(secret string, userID int64, email, role, fullName, typ string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":       userID,
		"email":     email,
		"role":      role,
		"full_name": fullName,
		"typ":       typ,
		"jti":       uuid.NewString(),
		"iat":       now.Unix(),
		"exp":       now.Add(ttl).Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(secret))
}

// Parse verifies the signature and expiry and returns the claims.
// Accepts a raw token or an "Authorization: Bearer ..." value.
func Parse(tokenStr, secret string) (*Claims, error) {
	tokenStr = strings.TrimSpace(tokenStr)
	if strings.HasPrefix(strings.ToLower(tokenStr), "bearer ") {
		tokenStr = strings.TrimSpace(tokenStr[7:])
	}
	if tokenStr == "" {
		return nil, ErrInvalidToken
	}

	tok, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		return nil, err
	}
	if !tok.Valid {
		return nil, ErrInvalidToken
	}

	mc, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}

	c := &Claims{}
	if f, ok := mc["sub"].(float64); ok {
		c.UserID = int64(f)
	}
	c.Email, _ = mc["email"].(string)
	c.Role, _ = mc["role"].(string)
	c.FullName, _ = mc["full_name"].(string)
	c.Type, _ = mc["typ"].(string)
	c.JTI, _ = mc["jti"].(string)
	if f, ok := mc["exp"].(float64); ok {
		c.Expires = time.Unix(int64(f), 0)
	}
	if c.UserID == 0 || c.JTI == "" {
		return nil, ErrInvalidToken
	}
	return c, nil
}

// ParseTyped is Parse plus a token-type check.
func ParseTyped(tokenStr, secret, wantType string) (*Claims, error) {
	c, err := Parse(tokenStr, secret)
	if err != nil {
		return nil, err
	}
	if c.Type != wantType {
		return nil, ErrWrongType
	}
	return c, nil
}
