package cmd

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/spf13/cobra"

	"github.com/ahmed2231web/Book-Rental-System/app/echoServer"
	authctrl "github.com/ahmed2231web/Book-Rental-System/app/echoServer/controller/auth"
	bookctrl "github.com/ahmed2231web/Book-Rental-System/app/echoServer/controller/book"
	dashctrl "github.com/ahmed2231web/Book-Rental-System/app/echoServer/controller/dashboard"
	rentalctrl "github.com/ahmed2231web/Book-Rental-System/app/echoServer/controller/rental"
	userctrl "github.com/ahmed2231web/Book-Rental-System/app/echoServer/controller/user"
	"github.com/ahmed2231web/Book-Rental-System/app/echoServer/validation"
	"github.com/ahmed2231web/Book-Rental-System/config"
	authrepo "github.com/ahmed2231web/Book-Rental-System/repository/auth"
	bookrepo "github.com/ahmed2231web/Book-Rental-System/repository/book"
	rentalrepo "github.com/ahmed2231web/Book-Rental-System/repository/rental"
	statsrepo "github.com/ahmed2231web/Book-Rental-System/repository/stats"
	userrepo "github.com/ahmed2231web/Book-Rental-System/repository/user"
	authsvc "github.com/ahmed2231web/Book-Rental-System/service/auth"
	booksvc "github.com/ahmed2231web/Book-Rental-System/service/book"
	rentalsvc "github.com/ahmed2231web/Book-Rental-System/service/rental"
	statssvc "github.com/ahmed2231web/Book-Rental-System/service/stats"
	usersvc "github.com/ahmed2231web/Book-Rental-System/service/user"
	"github.com/ahmed2231web/Book-Rental-System/util/database"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Run: func(cmd *cobra.Command, args []string) {
		runServe()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe() {
	cfg := config.Load(cfgFile)
	ctx := context.Background()

	log := newLogger()

	db, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error("db connect failed", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	// repos
	ar := authrepo.New(db)
	ur := userrepo.New(db)
	br := bookrepo.New(db)
	rr := rentalrepo.New(db)
	sr := statsrepo.New(db)

	// services
	as := authsvc.New(ar, authsvc.Config{
		Secret:     cfg.JWTSecret,
		AccessTTL:  time.Duration(cfg.AccessTTLHours) * time.Hour,
		RefreshTTL: time.Duration(cfg.RefreshTTLHours) * time.Hour,
	})
	us := usersvc.New(ur)
	bs := booksvc.New(br)
	rs := rentalsvc.New(db, rr)
	ss := statssvc.New(sr)

	// controllers
	v := validator.New()
	authC := &authctrl.Controller{Svc: as, V: v, Log: log}
	userC := &userctrl.Controller{Svc: us, V: v, Log: log}
	bookC := &bookctrl.Controller{Svc: bs, V: v, Log: log}
	rentalC := &rentalctrl.Controller{Svc: rs, V: v, Log: log}
	dashC := &dashctrl.Controller{Svc: ss, Log: log}

	e := echo.New()
	e.HideBanner = true
	echoServer.RegisterMiddlewares(e)
	e.Validator = validation.New()

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{
			"message":   "Book Rental System API is running",
			"timestamp": time.Now().UTC(),
		})
	})

	echoServer.Register(e, echoServer.C{
		Auth:      authC,
		User:      userC,
		Book:      bookC,
		Rental:    rentalC,
		Dashboard: dashC,

		JWTSecret: cfg.JWTSecret,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.Port
	}

	log.Info("starting server", "port", port, "env", cfg.Env)
	e.Logger.Fatal(e.Start(":" + port))
}
