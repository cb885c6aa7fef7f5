package db

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io/fs"
	"sort"
	"strings"

	ierr "agency-billing/internal/errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// migrationLockID is the session advisory lock held while migrating.
const migrationLockID = 7462839

// Migration is one versioned SQL file.
type Migration struct {
	Version  string
	Filename string
	Checksum string
	SQL      string
}

// Migrate applies every pending migration in fsys, in filename order. Applied
// versions are skipped when their checksum matches and rejected when it does not.
// Only one migrator may run at a time.
func Migrate(ctx context.Context, pool *pgxpool.Pool, fsys fs.FS, logger zerolog.Logger) (applied int, err error) {
	migrations, err := DiscoverMigrations(fsys)
	if err != nil {
		return 0, err
	}

	conn, err := pool.Acquire(ctx)
	if err != nil {
		return 0, dbError(err, "acquire migration connection")
	}
	defer conn.Release()

	var locked bool
	if err := conn.QueryRow(ctx, "SELECT pg_try_advisory_lock($1)", migrationLockID).Scan(&locked); err != nil {
		return 0, dbError(err, "query migration lock")
	}
	if !locked {
		return 0, ierr.NewError("another migrator is currently running").
			WithHint("Another migration is in progress, try again shortly").
			Mark(ierr.ErrConflict)
	}
	defer func() {
		_, _ = conn.Exec(context.WithoutCancel(ctx), "SELECT pg_advisory_unlock($1)", migrationLockID)
	}()

	if _, err := conn.Exec(ctx, `
CREATE TABLE IF NOT EXISTS schema_migrations (
	version TEXT PRIMARY KEY,
	filename TEXT NOT NULL,
	checksum TEXT NOT NULL,
	applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
);`); err != nil {
		return 0, dbError(err, "create schema_migrations")
	}

	for _, m := range migrations {
		ok, err := applyMigration(ctx, conn, m)
		if err != nil {
			return applied, err
		}
		if ok {
			applied++
			logger.Info().Str("migration", m.Filename).Msg("migration applied")
		} else {
			logger.Debug().Str("migration", m.Filename).Msg("migration already applied")
		}
	}
	return applied, nil
}

// DiscoverMigrations reads NNN_description.sql files from fsys, sorted by name.
func DiscoverMigrations(fsys fs.FS) ([]Migration, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, ierr.WithError(err).WithMessage("read migrations").Mark(ierr.ErrSystem)
	}

	seen := make(map[string]bool)
	var out []Migration
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}
		filename := entry.Name()
		version, _, ok := strings.Cut(filename, "_")
		if !ok || version == "" {
			return nil, ierr.NewErrorf("invalid migration filename %s, expected NNN_description.sql", filename).
				Mark(ierr.ErrConfiguration)
		}
		if seen[version] {
			return nil, ierr.NewErrorf("duplicate migration version %s", version).Mark(ierr.ErrConfiguration)
		}
		seen[version] = true

		body, err := fs.ReadFile(fsys, filename)
		if err != nil {
			return nil, ierr.WithError(err).WithMessage("read migration " + filename).Mark(ierr.ErrSystem)
		}
		sum := sha256.Sum256(body)
		out = append(out, Migration{
			Version:  version,
			Filename: filename,
			Checksum: hex.EncodeToString(sum[:]),
			SQL:      string(body),
		})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Filename < out[j].Filename })
	return out, nil
}

func applyMigration(ctx context.Context, conn *pgxpool.Conn, m Migration) (bool, error) {
	var existing string
	err := conn.QueryRow(ctx, "SELECT checksum FROM schema_migrations WHERE version = $1", m.Version).Scan(&existing)
	switch {
	case err == nil:
		if existing != m.Checksum {
			return false, ierr.NewErrorf("checksum mismatch for %s: recorded %s, file %s", m.Filename, existing, m.Checksum).
				WithHintf("Migration %s was modified after it was applied", m.Filename).
				Mark(ierr.ErrConfiguration)
		}
		return false, nil
	case !ierr.Is(err, pgx.ErrNoRows):
		return false, dbError(err, "query schema_migrations for "+m.Filename)
	}

	tx, err := conn.Begin(ctx)
	if err != nil {
		return false, dbError(err, "begin migration "+m.Filename)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, m.SQL); err != nil {
		return false, dbError(err, "execute migration "+m.Filename)
	}
	if _, err := tx.Exec(ctx,
		"INSERT INTO schema_migrations (version, filename, checksum) VALUES ($1, $2, $3)",
		m.Version, m.Filename, m.Checksum,
	); err != nil {
		return false, dbError(err, "record migration "+m.Filename)
	}
	if err := tx.Commit(ctx); err != nil {
		return false, dbError(err, "commit migration "+m.Filename)
	}
	return true, nil
}
