package rental

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/ahmed2231web/Book-Rental-System/app/echoServer/apierr"
	"github.com/ahmed2231web/Book-Rental-System/app/echoServer/jwtx"
	"github.com/ahmed2231web/Book-Rental-System/model"
	rs "github.com/ahmed2231web/Book-Rental-System/service/rental"
)

type Controller struct {
	Svc rs.Service
	V   *validator.Validate
	Log *slog.Logger
}

// POST /rentals/create
// @Summary  Rent a book
// @Tags     rentals
// @Param    payload  body  model.CreateRentalReq  true  "Rental payload"
// @Success  201  {object}  map[string]any
// @Failure  400  {object}  map[string]any
// @Router   /rentals/create [post]
func (ct *Controller) Create(c echo.Context) error {
	var req model.CreateRentalReq
	if err := c.Bind(&req); err != nil {
		return apierr.JSON(c, http.StatusBadRequest, "VALIDATION", "invalid body")
	}
	if err := ct.V.Struct(req); err != nil {
		return apierr.JSON(c, http.StatusBadRequest, "VALIDATION", err.Error())
	}
	bookID, err := uuid.Parse(req.BookID)
	if err != nil {
		return apierr.JSON(c, http.StatusBadRequest, "VALIDATION", "invalid book_id")
	}

	rental, err := ct.Svc.Create(c.Request().Context(), jwtx.Caller(c), bookID, req.PeriodDays)
	if err != nil {
		switch rs.Code(err) {
		case rs.ErrNotAvailable:
			return apierr.JSON(c, http.StatusBadRequest, "NOT_AVAILABLE", "this book is not available for rental")
		case rs.ErrDuplicateRental:
			return apierr.JSON(c, http.StatusBadRequest, "DUPLICATE_ACTIVE_RENTAL", "you already have an active rental for this book")
		case rs.ErrBadPeriod:
			return apierr.JSON(c, http.StatusBadRequest, "VALIDATION", "rental period must be between 1 and 30 days")
		case rs.ErrBookNotFound:
			return apierr.JSON(c, http.StatusNotFound, "NOT_FOUND", "book not found")
		default:
			ct.Log.Error("rental create", "err", err)
			return apierr.JSON(c, http.StatusInternalServerError, "INTERNAL", "internal error")
		}
	}
	return c.JSON(http.StatusCreated, rental)
}

// POST /rentals/return
// @Summary  Return a book
// @Tags     rentals
// @Param    payload  body  model.ReturnRentalReq  true  "Return payload"
// @Success  200  {object}  map[string]any
// @Failure  400  {object}  map[string]any
// @Failure  404  {object}  map[string]any
// @Router   /rentals/return [post]
func (ct *Controller) Return(c echo.Context) error {
	var req model.ReturnRentalReq
	if err := c.Bind(&req); err != nil {
		return apierr.JSON(c, http.StatusBadRequest, "VALIDATION", "invalid body")
	}
	if err := ct.V.Struct(req); err != nil {
		return apierr.JSON(c, http.StatusBadRequest, "VALIDATION", err.Error())
	}
	rentalID, err := uuid.Parse(req.RentalID)
	if err != nil {
		return apierr.JSON(c, http.StatusBadRequest, "VALIDATION", "invalid rental_id")
	}

	rental, err := ct.Svc.Return(c.Request().Context(), jwtx.Caller(c), rentalID)
	if err != nil {
		switch rs.Code(err) {
		case rs.ErrAlreadyReturned:
			return apierr.JSON(c, http.StatusBadRequest, "ALREADY_RETURNED", "this book has already been returned")
		case rs.ErrNotFound:
			return apierr.JSON(c, http.StatusNotFound, "NOT_FOUND", "rental not found")
		default:
			ct.Log.Error("rental return", "err", err)
			return apierr.JSON(c, http.StatusInternalServerError, "INTERNAL", "internal error")
		}
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message": "Book returned successfully",
		"rental":  rental,
	})
}

// GET /rentals/:id
func (ct *Controller) Detail(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apierr.JSON(c, http.StatusBadRequest, "VALIDATION", "invalid id")
	}

	row, err := ct.Svc.Get(c.Request().Context(), jwtx.Caller(c), id)
	if err != nil {
		if rs.Code(err) == rs.ErrNotFound {
			return apierr.JSON(c, http.StatusNotFound, "NOT_FOUND", "rental not found")
		}
		ct.Log.Error("rental detail", "err", err)
		return apierr.JSON(c, http.StatusInternalServerError, "INTERNAL", "internal error")
	}
	return c.JSON(http.StatusOK, rentalResp(row, time.Now().UTC()))
}

// GET /rentals — admins see all rentals, everyone else their own.
func (ct *Controller) List(c echo.Context) error {
	return ct.list(c, true)
}

// GET /rentals/my — always the caller's own rentals.
func (ct *Controller) My(c echo.Context) error {
	return ct.list(c, false)
}

func (ct *Controller) list(c echo.Context, wantAll bool) error {
	f, err := parseFilter(c)
	if err != nil {
		return apierr.JSON(c, http.StatusBadRequest, "VALIDATION", err.Error())
	}

	rows, err := ct.Svc.List(c.Request().Context(), jwtx.Caller(c), wantAll, f)
	if err != nil {
		ct.Log.Error("rental list", "err", err)
		return apierr.JSON(c, http.StatusBadRequest, "VALIDATION", err.Error())
	}

	now := time.Now().UTC()
	out := make([]echo.Map, len(rows))
	for i := range rows {
		out[i] = rentalResp(&rows[i], now)
	}
	return c.JSON(http.StatusOK, echo.Map{"data": out})
}

// rentalResp flattens a row with its derived fields. Status here is
// already the effective one; is_overdue and days_until_due are computed
// for the same instant.
func rentalResp(r *model.RentalRow, now time.Time) echo.Map {
	return echo.Map{
		"id":             r.ID,
		"user_id":        r.UserID,
		"book_id":        r.BookID,
		"rented_at":      r.RentedAt,
		"due_date":       r.DueDate,
		"returned_at":    r.ReturnedAt,
		"status":         r.Status,
		"user_email":     r.UserEmail,
		"user_name":      r.UserFirstName + " " + r.UserLastName,
		"book_title":     r.BookTitle,
		"book_author":    r.BookAuthor,
		"is_overdue":     r.IsOverdue(now),
		"days_until_due": r.DaysUntilDue(now),
	}
}

func parseFilter(c echo.Context) (model.RentalFilter, error) {
	f := model.RentalFilter{
		Status:     c.QueryParam("status"),
		UserEmail:  c.QueryParam("user_email"),
		BookTitle:  c.QueryParam("book_title"),
		BookAuthor: c.QueryParam("book_author"),
		Ordering:   c.QueryParam("ordering"),
	}
	if v := c.QueryParam("overdue_only"); v == "true" || v == "1" {
		f.OverdueOnly = true
	}

	var err error
	if f.RentedAfter, err = timeParam(c, "rented_after"); err != nil {
		return f, err
	}
	if f.RentedBefore, err = timeParam(c, "rented_before"); err != nil {
		return f, err
	}
	if f.DueAfter, err = timeParam(c, "due_after"); err != nil {
		return f, err
	}
	if f.DueBefore, err = timeParam(c, "due_before"); err != nil {
		return f, err
	}
	return f, nil
}

func timeParam(c echo.Context, name string) (*time.Time, error) {
	v := c.QueryParam(name)
	if v == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
