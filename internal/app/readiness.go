package app

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// BuildReadinessChecks returns the external-dependency probes used by the
// readiness endpoint.
func BuildReadinessChecks(pool *pgxpool.Pool) func(ctx context.Context) error {
	dbCheck := func(ctx context.Context) error {
		return pool.Ping(ctx)
	}
	return dbCheck
}
