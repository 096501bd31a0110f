package echoServer

import (
	"net/http"

	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/ahmed2231web/Book-Rental-System/app/echoServer/controller/auth"
	"github.com/ahmed2231web/Book-Rental-System/app/echoServer/controller/book"
	"github.com/ahmed2231web/Book-Rental-System/app/echoServer/controller/dashboard"
	"github.com/ahmed2231web/Book-Rental-System/app/echoServer/controller/rental"
	"github.com/ahmed2231web/Book-Rental-System/app/echoServer/controller/user"
	"github.com/ahmed2231web/Book-Rental-System/app/echoServer/jwtx"
)

type C struct {
	Auth      *auth.Controller
	User      *user.Controller
	Book      *book.Controller
	Rental    *rental.Controller
	Dashboard *dashboard.Controller

	JWTSecret string
}

func Register(e *echo.Echo, c C) {
	// Public
	e.POST("/auth/register", c.Auth.Register)
	e.POST("/auth/login", c.Auth.Login)
	e.POST("/auth/refresh", c.Auth.Refresh)

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// Authenticated
	g := e.Group("")
	g.Use(echojwt.WithConfig(echojwt.Config{
		SigningKey:    []byte(c.JWTSecret),
		NewClaimsFunc: func(c echo.Context) jwt.Claims { return jwt.MapClaims{} },
		TokenLookup:   "header:Authorization:Bearer ",
	}))
	g.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			if _, err := jwtx.ResolveCaller(ctx); err != nil {
				return ctx.JSON(http.StatusUnauthorized, echo.Map{
					"error": echo.Map{"code": "AUTH", "message": "unauthorized"},
				})
			}
			return next(ctx)
		}
	})

	g.POST("/auth/logout", c.Auth.Logout)
	g.GET("/auth/profile", c.User.Profile)
	g.PATCH("/auth/profile", c.User.UpdateProfile)

	// Admin user management
	g.GET("/users", c.User.List)
	g.GET("/users/:id", c.User.Detail)
	g.PATCH("/users/:id", c.User.Update)
	g.DELETE("/users/:id", c.User.Delete)

	// Catalog
	g.GET("/books", c.Book.List)
	g.POST("/books", c.Book.Create)
	g.GET("/books/:id", c.Book.Detail)
	g.PATCH("/books/:id", c.Book.Update)
	g.DELETE("/books/:id", c.Book.Delete)

	// Rentals
	g.GET("/rentals", c.Rental.List)
	g.GET("/rentals/my", c.Rental.My)
	g.POST("/rentals/create", c.Rental.Create)
	g.POST("/rentals/return", c.Rental.Return)
	g.GET("/rentals/:id", c.Rental.Detail)

	// Reporting
	g.GET("/dashboard/stats", c.Dashboard.Stats)
}
