package dashboard

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ahmed2231web/Book-Rental-System/app/echoServer/apierr"
	"github.com/ahmed2231web/Book-Rental-System/app/echoServer/jwtx"
	"github.com/ahmed2231web/Book-Rental-System/service/policy"
	statssvc "github.com/ahmed2231web/Book-Rental-System/service/stats"
)

type Controller struct {
	Svc statssvc.Service
	Log *slog.Logger
}

// GET /dashboard/stats  (admin)
// @Summary  Dashboard statistics
// @Tags     dashboard
// @Success  200  {object}  statsrepo.Dashboard
// @Failure  403  {object}  map[string]any
// @Router   /dashboard/stats [get]
func (ct *Controller) Stats(c echo.Context) error {
	if !policy.CanViewDashboard(jwtx.Caller(c)) {
		return apierr.JSON(c, http.StatusForbidden, "FORBIDDEN", "admin access required")
	}

	stats, err := ct.Svc.Dashboard(c.Request().Context())
	if err != nil {
		ct.Log.Error("dashboard stats", "err", err)
		return apierr.JSON(c, http.StatusInternalServerError, "INTERNAL", "internal error")
	}
	return c.JSON(http.StatusOK, stats)
}
