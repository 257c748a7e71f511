package postgres

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/stealthycoin/lynk/pkg/lockstore"
)

// mapPgError translates a pgx/pgconn error into the lockstore sentinel
// errors Technique understands, wrapping anything else for context.
func mapPgError(err error, operation, name string) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return lockstore.ErrNoSuchLock
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		// unique_violation: lost a race against a concurrent insert.
		return lockstore.ErrConditionFailed
	}

	return fmt.Errorf("lockstore/postgres: %s %q: %w", operation, name, err)
}
