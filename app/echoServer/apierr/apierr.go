// Package apierr is the one response shape for request failures:
// {"error": {"code": ..., "message": ...}}.
package apierr

import "github.com/labstack/echo/v4"

func JSON(c echo.Context, status int, code, message string) error {
	return c.JSON(status, echo.Map{
		"error": echo.Map{"code": code, "message": message},
	})
}
