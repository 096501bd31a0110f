package book

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/ahmed2231web/Book-Rental-System/app/echoServer/apierr"
	"github.com/ahmed2231web/Book-Rental-System/app/echoServer/jwtx"
	"github.com/ahmed2231web/Book-Rental-System/model"
	booksvc "github.com/ahmed2231web/Book-Rental-System/service/book"
	"github.com/ahmed2231web/Book-Rental-System/service/policy"
)

type Controller struct {
	Svc booksvc.Service
	V   *validator.Validate
	Log *slog.Logger
}

type bookResp struct {
	*model.Book
	IsAvailable bool `json:"is_available"`
}

func resp(b *model.Book) bookResp { return bookResp{Book: b, IsAvailable: b.IsAvailable()} }

// POST /books  (admin)
// @Summary  Create book
// @Tags     books
// @Param    payload  body  model.CreateBookReq  true  "Book payload"
// @Success  201  {object}  map[string]any
// @Router   /books [post]
func (ct *Controller) Create(c echo.Context) error {
	if !policy.CanManageBooks(jwtx.Caller(c)) {
		return apierr.JSON(c, http.StatusForbidden, "FORBIDDEN", "admin access required")
	}

	var req model.CreateBookReq
	if err := c.Bind(&req); err != nil {
		return apierr.JSON(c, http.StatusBadRequest, "VALIDATION", "invalid body")
	}
	if err := ct.V.Struct(req); err != nil {
		return apierr.JSON(c, http.StatusBadRequest, "VALIDATION", err.Error())
	}

	b, err := ct.Svc.Create(c.Request().Context(), req)
	if err != nil {
		switch booksvc.Code(err) {
		case booksvc.ErrValidation:
			return apierr.JSON(c, http.StatusBadRequest, "VALIDATION", err.Error())
		case booksvc.ErrISBNTaken:
			return apierr.JSON(c, http.StatusBadRequest, "ISBN_TAKEN", err.Error())
		default:
			ct.Log.Error("book create", "err", err)
			return apierr.JSON(c, http.StatusInternalServerError, "INTERNAL", "internal error")
		}
	}
	return c.JSON(http.StatusCreated, resp(b))
}

// PATCH /books/:id  (admin)
func (ct *Controller) Update(c echo.Context) error {
	if !policy.CanManageBooks(jwtx.Caller(c)) {
		return apierr.JSON(c, http.StatusForbidden, "FORBIDDEN", "admin access required")
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apierr.JSON(c, http.StatusBadRequest, "VALIDATION", "invalid id")
	}

	var req model.UpdateBookReq
	if err := c.Bind(&req); err != nil {
		return apierr.JSON(c, http.StatusBadRequest, "VALIDATION", "invalid body")
	}
	if err := ct.V.Struct(req); err != nil {
		return apierr.JSON(c, http.StatusBadRequest, "VALIDATION", err.Error())
	}

	b, err := ct.Svc.Update(c.Request().Context(), id, req)
	if err != nil {
		switch booksvc.Code(err) {
		case booksvc.ErrNotFound:
			return apierr.JSON(c, http.StatusNotFound, "NOT_FOUND", "book not found")
		case booksvc.ErrValidation:
			return apierr.JSON(c, http.StatusBadRequest, "VALIDATION", err.Error())
		case booksvc.ErrISBNTaken:
			return apierr.JSON(c, http.StatusBadRequest, "ISBN_TAKEN", err.Error())
		default:
			ct.Log.Error("book update", "err", err)
			return apierr.JSON(c, http.StatusInternalServerError, "INTERNAL", "internal error")
		}
	}
	return c.JSON(http.StatusOK, resp(b))
}

// DELETE /books/:id  (admin) — rentals on the book cascade with it.
func (ct *Controller) Delete(c echo.Context) error {
	if !policy.CanManageBooks(jwtx.Caller(c)) {
		return apierr.JSON(c, http.StatusForbidden, "FORBIDDEN", "admin access required")
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apierr.JSON(c, http.StatusBadRequest, "VALIDATION", "invalid id")
	}

	if err := ct.Svc.Delete(c.Request().Context(), id); err != nil {
		if booksvc.Code(err) == booksvc.ErrNotFound {
			return apierr.JSON(c, http.StatusNotFound, "NOT_FOUND", "book not found")
		}
		ct.Log.Error("book delete", "err", err)
		return apierr.JSON(c, http.StatusInternalServerError, "INTERNAL", "internal error")
	}
	return c.NoContent(http.StatusNoContent)
}

// GET /books/:id
func (ct *Controller) Detail(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apierr.JSON(c, http.StatusBadRequest, "VALIDATION", "invalid id")
	}

	b, err := ct.Svc.Get(c.Request().Context(), id)
	if err != nil {
		if booksvc.Code(err) == booksvc.ErrNotFound {
			return apierr.JSON(c, http.StatusNotFound, "NOT_FOUND", "book not found")
		}
		ct.Log.Error("book detail", "err", err)
		return apierr.JSON(c, http.StatusInternalServerError, "INTERNAL", "internal error")
	}
	return c.JSON(http.StatusOK, resp(b))
}

// GET /books
// @Summary  List books
// @Tags     books
// @Param    search            query  string  false  "Search title/author/description/isbn"
// @Param    genre             query  string  false  "Genre"
// @Param    available_only    query  bool    false  "Only books with copies available"
// @Param    publication_year  query  int     false  "Publication year"
// @Param    ordering          query  string  false  "title|author|publication_date|created_at, - for descending"
// @Success  200  {object}  map[string]any
// @Router   /books [get]
func (ct *Controller) List(c echo.Context) error {
	f, err := parseFilter(c)
	if err != nil {
		return apierr.JSON(c, http.StatusBadRequest, "VALIDATION", err.Error())
	}

	books, err := ct.Svc.List(c.Request().Context(), f)
	if err != nil {
		if booksvc.Code(err) == booksvc.ErrValidation {
			return apierr.JSON(c, http.StatusBadRequest, "VALIDATION", err.Error())
		}
		ct.Log.Error("book list", "err", err)
		return apierr.JSON(c, http.StatusBadRequest, "VALIDATION", err.Error())
	}

	out := make([]bookResp, len(books))
	for i := range books {
		out[i] = resp(&books[i])
	}
	return c.JSON(http.StatusOK, echo.Map{"data": out})
}

func parseFilter(c echo.Context) (model.BookFilter, error) {
	f := model.BookFilter{
		Search:   c.QueryParam("search"),
		Genre:    c.QueryParam("genre"),
		Author:   c.QueryParam("author"),
		Title:    c.QueryParam("title"),
		ISBN:     c.QueryParam("isbn"),
		Ordering: c.QueryParam("ordering"),
	}

	var err error
	if f.PublicationYear, err = intParam(c, "publication_year"); err != nil {
		return f, err
	}
	if f.PublicationYearGTE, err = intParam(c, "publication_year_gte"); err != nil {
		return f, err
	}
	if f.PublicationYearLTE, err = intParam(c, "publication_year_lte"); err != nil {
		return f, err
	}
	if v := c.QueryParam("available_only"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return f, err
		}
		f.AvailableOnly = b
	}
	return f, nil
}

func intParam(c echo.Context, name string) (int, error) {
	v := c.QueryParam(name)
	if v == "" {
		return 0, nil
	}
	return strconv.Atoi(v)
}
