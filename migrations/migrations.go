// Package migrations bootstraps the schema at startup. Statements are
// idempotent (CREATE ... IF NOT EXISTS), so every binary can run them.
package migrations

import (
	"context"
	_ "embed"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed schema.sql
var schema string

func Run(ctx context.Context, db *pgxpool.Pool, retries int) error {
	_, err := db.Exec(ctx, schema)
	for i := 0; err != nil && i < retries; i++ {
		time.Sleep(time.Second)
		_, err = db.Exec(ctx, schema)
	}
	return err
}
