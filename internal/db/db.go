package db

import (
	"context"
	"time"

	ierr "agency-billing/internal/errors"

	"github.com/jackc/pgx/v5/pgxpool"
)

const pingTimeout = 5 * time.Second

// NewPool opens and pings a pgx connection pool for databaseURL.
func NewPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	if databaseURL == "" {
		return nil, ierr.NewError("DATABASE_URL not set").
			WithHint("Set DATABASE_URL to a PostgreSQL connection string").
			Mark(ierr.ErrConfiguration)
	}

	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, ierr.WithError(err).
			WithMessage("unable to parse DATABASE_URL").
			WithHint("DATABASE_URL is not a valid PostgreSQL connection string").
			Mark(ierr.ErrConfiguration)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, ierr.WithError(err).
			WithMessage("unable to create connection pool").
			Mark(ierr.ErrDatabase)
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, ierr.WithError(err).
			WithMessage("unable to ping database").
			WithHint("The database is unreachable").
			Mark(ierr.ErrDatabase)
	}

	return pool, nil
}
