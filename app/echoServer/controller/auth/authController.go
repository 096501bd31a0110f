package auth

import (
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/ahmed2231web/Book-Rental-System/app/echoServer/apierr"
	"github.com/ahmed2231web/Book-Rental-System/model"
	authsvc "github.com/ahmed2231web/Book-Rental-System/service/auth"
)

type Controller struct {
	Svc authsvc.Service
	V   *validator.Validate
	Log *slog.Logger
}

// Register a new user
// @Summary      Register user
// @Description  Register a new user account; role always starts as "user"
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        payload  body  model.RegisterReq  true  "Register payload"
// @Success      201  {object}  map[string]any
// @Failure      400  {object}  map[string]any
// @Router       /auth/register [post]
func (ct *Controller) Register(c echo.Context) error {
	var req model.RegisterReq
	if err := c.Bind(&req); err != nil {
		return apierr.JSON(c, http.StatusBadRequest, "VALIDATION", "invalid body")
	}
	if err := ct.V.Struct(req); err != nil {
		return apierr.JSON(c, http.StatusBadRequest, "VALIDATION", err.Error())
	}

	u, err := ct.Svc.Register(c.Request().Context(), req)
	if err != nil {
		switch authsvc.Code(err) {
		case authsvc.ErrEmailTaken:
			return apierr.JSON(c, http.StatusBadRequest, "EMAIL_TAKEN", "user with this email already exists")
		case authsvc.ErrUsernameTaken:
			return apierr.JSON(c, http.StatusBadRequest, "USERNAME_TAKEN", "user with this username already exists")
		default:
			ct.Log.Error("register failed", "err", err,
				"req_id", c.Response().Header().Get(echo.HeaderXRequestID))
			return apierr.JSON(c, http.StatusInternalServerError, "INTERNAL", "register failed")
		}
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"message": "User registered successfully",
		"user":    userSummary(u),
	})
}

// Login
// @Summary      Login
// @Description  Login with email + password, returns access and refresh tokens
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        payload  body  model.LoginReq  true  "Login payload"
// @Success      200  {object}  map[string]any
// @Failure      401  {object}  map[string]any
// @Router       /auth/login [post]
func (ct *Controller) Login(c echo.Context) error {
	var req model.LoginReq
	if err := c.Bind(&req); err != nil {
		return apierr.JSON(c, http.StatusBadRequest, "VALIDATION", "invalid body")
	}
	if err := ct.V.Struct(req); err != nil {
		return apierr.JSON(c, http.StatusBadRequest, "VALIDATION", err.Error())
	}

	u, pair, err := ct.Svc.Login(c.Request().Context(), req)
	if err != nil {
		switch authsvc.Code(err) {
		case authsvc.ErrInvalidCreds:
			return apierr.JSON(c, http.StatusUnauthorized, "AUTH", "invalid email or password")
		case authsvc.ErrInactive:
			return apierr.JSON(c, http.StatusUnauthorized, "AUTH", "account is disabled")
		default:
			ct.Log.Error("login failed", "err", err,
				"req_id", c.Response().Header().Get(echo.HeaderXRequestID))
			return apierr.JSON(c, http.StatusInternalServerError, "INTERNAL", "login failed")
		}
	}

	return c.JSON(http.StatusOK, echo.Map{
		"access":  pair.Access,
		"refresh": pair.Refresh,
		"user":    userSummary(u),
	})
}

// Refresh
// @Summary      Refresh access token
// @Tags         auth
// @Param        payload  body  model.RefreshReq  true  "Refresh payload"
// @Success      200  {object}  map[string]any
// @Failure      401  {object}  map[string]any
// @Router       /auth/refresh [post]
func (ct *Controller) Refresh(c echo.Context) error {
	var req model.RefreshReq
	if err := c.Bind(&req); err != nil {
		return apierr.JSON(c, http.StatusBadRequest, "VALIDATION", "invalid body")
	}
	if err := ct.V.Struct(req); err != nil {
		return apierr.JSON(c, http.StatusBadRequest, "VALIDATION", err.Error())
	}

	access, err := ct.Svc.Refresh(c.Request().Context(), req.Refresh)
	if err != nil {
		switch authsvc.Code(err) {
		case authsvc.ErrBadToken, authsvc.ErrInactive:
			return apierr.JSON(c, http.StatusUnauthorized, "AUTH", "invalid refresh token")
		default:
			ct.Log.Error("refresh failed", "err", err)
			return apierr.JSON(c, http.StatusInternalServerError, "INTERNAL", "refresh failed")
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"access": access})
}

// Logout
// @Summary      Logout
// @Description  Denylist the presented refresh token
// @Tags         auth
// @Param        payload  body  model.RefreshReq  true  "Refresh payload"
// @Success      200  {object}  map[string]any
// @Failure      400  {object}  map[string]any
// @Router       /auth/logout [post]
func (ct *Controller) Logout(c echo.Context) error {
	var req model.RefreshReq
	if err := c.Bind(&req); err != nil {
		return apierr.JSON(c, http.StatusBadRequest, "VALIDATION", "invalid body")
	}
	if err := ct.V.Struct(req); err != nil {
		return apierr.JSON(c, http.StatusBadRequest, "VALIDATION", err.Error())
	}

	if err := ct.Svc.Logout(c.Request().Context(), req.Refresh); err != nil {
		if authsvc.Code(err) == authsvc.ErrBadToken {
			return apierr.JSON(c, http.StatusBadRequest, "BAD_TOKEN", "invalid refresh token")
		}
		ct.Log.Error("logout failed", "err", err)
		return apierr.JSON(c, http.StatusInternalServerError, "INTERNAL", "logout failed")
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Successfully logged out"})
}

func userSummary(u *model.User) echo.Map {
	return echo.Map{
		"id":         u.ID,
		"email":      u.Email,
		"username":   u.Username,
		"first_name": u.FirstName,
		"last_name":  u.LastName,
		"full_name":  u.FullName(),
		"role":       u.Role,
	}
}
