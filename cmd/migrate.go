package cmd

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/ahmed2231web/Book-Rental-System/config"
	"github.com/ahmed2231web/Book-Rental-System/migrations"
	"github.com/ahmed2231web/Book-Rental-System/util/database"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the database schema",
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

		if err := migrations.Apply(ctx, db); err != nil {
			log.Error("migrate failed", "err", err)
			os.Exit(1)
		}
		log.Info("schema applied")
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
