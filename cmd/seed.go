package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/ahmed2231web/Book-Rental-System/config"
	"github.com/ahmed2231web/Book-Rental-System/model"
	authrepo "github.com/ahmed2231web/Book-Rental-System/repository/auth"
	bookrepo "github.com/ahmed2231web/Book-Rental-System/repository/book"
	rentalrepo "github.com/ahmed2231web/Book-Rental-System/repository/rental"
	rentalsvc "github.com/ahmed2231web/Book-Rental-System/service/rental"
	"github.com/ahmed2231web/Book-Rental-System/util/database"
	"github.com/ahmed2231web/Book-Rental-System/util/hash"
)

var (
	seedUsers   int
	seedBooks   int
	seedRentals int
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Populate the database with sample data",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := config.Load(cfgFile)
		ctx := context.Background()
		log := newLogger()

		db, err := database.New(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Error("db connect failed", "err", err)
			os.Exit(1)
		}
		defer db.Close()

		ar := authrepo.New(db)
		br := bookrepo.New(db)
		rs := rentalsvc.New(db, rentalrepo.New(db))

		// Admin account, idempotent-ish: a rerun fails on the unique
		// email and moves on.
		admin := &model.User{
			Email: "admin@bookrental.com", Username: "admin",
			FirstName: "Admin", LastName: "User",
			Role: model.RoleAdmin, IsActive: true,
		}
		admin.PasswordHash, _ = hash.HashPassword("admin123")
		if err := ar.Create(ctx, admin); err != nil {
			log.Warn("admin user not created (may already exist)", "err", err)
		} else {
			log.Info("created admin user", "email", admin.Email)
		}

		var users []*model.User
		for i := 1; i <= seedUsers; i++ {
			u := &model.User{
				Email:     fmt.Sprintf("user%d@example.com", i),
				Username:  fmt.Sprintf("user%d", i),
				FirstName: "User",
				LastName:  fmt.Sprintf("Number%d", i),
				Role:      model.RoleUser,
				IsActive:  true,
			}
			u.PasswordHash, _ = hash.HashPassword("password123")
			if err := ar.Create(ctx, u); err != nil {
				log.Warn("user not created", "email", u.Email, "err", err)
				continue
			}
			users = append(users, u)
		}
		log.Info("seeded users", "count", len(users))

		genres := []model.Genre{
			model.GenreFiction, model.GenreTechnology, model.GenreHistory,
			model.GenreMystery, model.GenreScienceFiction,
		}
		var books []*model.Book
		for i := 1; i <= seedBooks; i++ {
			b := &model.Book{
				ID:              uuid.New(),
				Title:           fmt.Sprintf("Sample Book %d", i),
				Author:          fmt.Sprintf("Author %d", i),
				ISBN:            fmt.Sprintf("97800000%05d", i),
				PublicationDate: time.Date(1990+i%35, time.January, 1, 0, 0, 0, 0, time.UTC),
				Genre:           genres[i%len(genres)],
				Description:     "Seeded sample book.",
				TotalCopies:     3,
				AvailableCopies: 3,
			}
			if err := br.Insert(ctx, b); err != nil {
				log.Warn("book not created", "isbn", b.ISBN, "err", err)
				continue
			}
			books = append(books, b)
		}
		log.Info("seeded books", "count", len(books))

		created := 0
		for i := 0; i < seedRentals && len(users) > 0 && len(books) > 0; i++ {
			u := users[i%len(users)]
			b := books[i%len(books)]
			caller := model.Caller{ID: u.ID, Email: u.Email, Role: u.Role}
			if _, err := rs.Create(ctx, caller, b.ID, model.DefaultRentalDays); err != nil {
				log.Warn("rental not created", "user", u.Email, "book", b.Title,
					"code", rentalsvc.Code(err), "err", err)
				continue
			}
			created++
		}
		log.Info("seeded rentals", "count", created)
	},
}

func init() {
	seedCmd.Flags().IntVar(&seedUsers, "users", 5, "number of users to create")
	seedCmd.Flags().IntVar(&seedBooks, "books", 20, "number of books to create")
	seedCmd.Flags().IntVar(&seedRentals, "rentals", 10, "number of rentals to create")
	rootCmd.AddCommand(seedCmd)
}
