package user

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/ahmed2231web/Book-Rental-System/app/echoServer/apierr"
	"github.com/ahmed2231web/Book-Rental-System/app/echoServer/jwtx"
	"github.com/ahmed2231web/Book-Rental-System/model"
	"github.com/ahmed2231web/Book-Rental-System/service/policy"
	usersvc "github.com/ahmed2231web/Book-Rental-System/service/user"
)

type Controller struct {
	Svc usersvc.Service
	V   *validator.Validate
	Log *slog.Logger
}

type userResp struct {
	*model.User
	FullName string `json:"full_name"`
}

func resp(u *model.User) userResp { return userResp{User: u, FullName: u.FullName()} }

// GET /auth/profile
func (ct *Controller) Profile(c echo.Context) error {
	caller := jwtx.Caller(c)
	u, err := ct.Svc.Profile(c.Request().Context(), caller.ID)
	if err != nil {
		ct.Log.Error("profile", "err", err)
		return apierr.JSON(c, http.StatusInternalServerError, "INTERNAL", "internal error")
	}
	return c.JSON(http.StatusOK, resp(u))
}

// PATCH /auth/profile
func (ct *Controller) UpdateProfile(c echo.Context) error {
	var req model.UpdateProfileReq
	if err := c.Bind(&req); err != nil {
		return apierr.JSON(c, http.StatusBadRequest, "VALIDATION", "invalid body")
	}
	if err := ct.V.Struct(req); err != nil {
		return apierr.JSON(c, http.StatusBadRequest, "VALIDATION", err.Error())
	}

	caller := jwtx.Caller(c)
	u, err := ct.Svc.UpdateProfile(c.Request().Context(), caller.ID, req)
	if err != nil {
		switch usersvc.Code(err) {
		case usersvc.ErrEmailTaken:
			return apierr.JSON(c, http.StatusBadRequest, "EMAIL_TAKEN", "user with this email already exists")
		case usersvc.ErrNotFound:
			return apierr.JSON(c, http.StatusNotFound, "NOT_FOUND", "user not found")
		default:
			ct.Log.Error("profile update", "err", err)
			return apierr.JSON(c, http.StatusInternalServerError, "INTERNAL", "internal error")
		}
	}
	return c.JSON(http.StatusOK, resp(u))
}

// GET /users  (admin)
func (ct *Controller) List(c echo.Context) error {
	if !policy.CanManageUsers(jwtx.Caller(c)) {
		return apierr.JSON(c, http.StatusForbidden, "FORBIDDEN", "admin access required")
	}

	f := model.UserFilter{
		Role:     c.QueryParam("role"),
		Search:   c.QueryParam("search"),
		Ordering: c.QueryParam("ordering"),
	}
	if v := c.QueryParam("is_active"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return apierr.JSON(c, http.StatusBadRequest, "VALIDATION", "is_active must be a boolean")
		}
		f.IsActive = &b
	}

	users, err := ct.Svc.List(c.Request().Context(), f)
	if err != nil {
		ct.Log.Error("user list", "err", err)
		return apierr.JSON(c, http.StatusBadRequest, "VALIDATION", err.Error())
	}
	out := make([]userResp, len(users))
	for i := range users {
		out[i] = resp(&users[i])
	}
	return c.JSON(http.StatusOK, echo.Map{"data": out})
}

// GET /users/:id  (admin)
func (ct *Controller) Detail(c echo.Context) error {
	if !policy.CanManageUsers(jwtx.Caller(c)) {
		return apierr.JSON(c, http.StatusForbidden, "FORBIDDEN", "admin access required")
	}
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return apierr.JSON(c, http.StatusBadRequest, "VALIDATION", "invalid id")
	}

	u, err := ct.Svc.Get(c.Request().Context(), id)
	if err != nil {
		if usersvc.Code(err) == usersvc.ErrNotFound {
			return apierr.JSON(c, http.StatusNotFound, "NOT_FOUND", "user not found")
		}
		ct.Log.Error("user detail", "err", err)
		return apierr.JSON(c, http.StatusInternalServerError, "INTERNAL", "internal error")
	}
	return c.JSON(http.StatusOK, resp(u))
}

// PATCH /users/:id  (admin)
func (ct *Controller) Update(c echo.Context) error {
	if !policy.CanManageUsers(jwtx.Caller(c)) {
		return apierr.JSON(c, http.StatusForbidden, "FORBIDDEN", "admin access required")
	}
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return apierr.JSON(c, http.StatusBadRequest, "VALIDATION", "invalid id")
	}

	var req model.UpdateUserReq
	if err := c.Bind(&req); err != nil {
		return apierr.JSON(c, http.StatusBadRequest, "VALIDATION", "invalid body")
	}
	if err := ct.V.Struct(req); err != nil {
		return apierr.JSON(c, http.StatusBadRequest, "VALIDATION", err.Error())
	}

	u, err := ct.Svc.Update(c.Request().Context(), id, req)
	if err != nil {
		switch usersvc.Code(err) {
		case usersvc.ErrNotFound:
			return apierr.JSON(c, http.StatusNotFound, "NOT_FOUND", "user not found")
		case usersvc.ErrEmailTaken:
			return apierr.JSON(c, http.StatusBadRequest, "EMAIL_TAKEN", "user with this email already exists")
		default:
			ct.Log.Error("user update", "err", err)
			return apierr.JSON(c, http.StatusInternalServerError, "INTERNAL", "internal error")
		}
	}
	return c.JSON(http.StatusOK, resp(u))
}

// DELETE /users/:id  (admin) — the user's rentals cascade with the row.
func (ct *Controller) Delete(c echo.Context) error {
	if !policy.CanManageUsers(jwtx.Caller(c)) {
		return apierr.JSON(c, http.StatusForbidden, "FORBIDDEN", "admin access required")
	}
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return apierr.JSON(c, http.StatusBadRequest, "VALIDATION", "invalid id")
	}

	if err := ct.Svc.Delete(c.Request().Context(), id); err != nil {
		if usersvc.Code(err) == usersvc.ErrNotFound {
			return apierr.JSON(c, http.StatusNotFound, "NOT_FOUND", "user not found")
		}
		ct.Log.Error("user delete", "err", err)
		return apierr.JSON(c, http.StatusInternalServerError, "INTERNAL", "internal error")
	}
	return c.NoContent(http.StatusNoContent)
}
