// Package migrations holds the embedded schema applied by the migrate
// command.
package migrations

import (
	"context"
	_ "embed"

	"github.com/jmoiron/sqlx"
)

//go:embed schema.sql
var schema string

// Apply runs the schema against the database. Statements are written to
// be idempotent, so re-running is safe.
func Apply(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, schema)
	return err
}
