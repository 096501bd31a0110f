// app/echoServer/jwtx/caller.go
package jwtx

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/ahmed2231web/Book-Rental-System/model"
)

const callerKey = "caller"

// ResolveCaller turns the echo-jwt token into a model.Caller and stashes
// it on the context. Refresh tokens are rejected here: only access
// tokens open protected routes.
func ResolveCaller(c echo.Context) (model.Caller, error) {
	tok, ok := c.Get("user").(*jwt.Token)
	if !ok || tok == nil {
		return model.Caller{}, errors.New("no jwt token in context")
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return model.Caller{}, errors.New("invalid jwt claims")
	}
	if typ, _ := claims["typ"].(string); typ != "access" {
		return model.Caller{}, errors.New("not an access token")
	}

	sub, ok := claims["sub"].(float64)
	if !ok {
		return model.Caller{}, errors.New("sub missing in claims")
	}
	email, _ := claims["email"].(string)
	role, _ := claims["role"].(string)

	caller := model.Caller{ID: int64(sub), Email: email, Role: model.Role(role)}
	c.Set(callerKey, caller)
	return caller, nil
}

// Caller returns the caller stashed by ResolveCaller.
func Caller(c echo.Context) model.Caller {
	caller, _ := c.Get(callerKey).(model.Caller)
	return caller
}
