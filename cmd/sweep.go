package cmd

import (
	"context"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ahmed2231web/Book-Rental-System/config"
	rentalrepo "github.com/ahmed2231web/Book-Rental-System/repository/rental"
	rentalsvc "github.com/ahmed2231web/Book-Rental-System/service/rental"
	"github.com/ahmed2231web/Book-Rental-System/util/database"
)

// Overdue status is derived lazily on reads; this command rewrites the
// stored column for lapsed active rentals so that stored-status
// consumers (the dashboard) catch up.
var sweepCmd = &cobra.Command{
	Use:   "sweep-overdue",
	Short: "Rewrite stored status for lapsed active rentals",
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

		svc := rentalsvc.New(db, rentalrepo.New(db))
		n, err := svc.SweepOverdue(ctx, time.Now().UTC())
		if err != nil {
			log.Error("sweep failed", "err", err)
			os.Exit(1)
		}
		log.Info("sweep complete", "rentals_marked_overdue", n)
	},
}

func init() {
	rootCmd.AddCommand(sweepCmd)
}
