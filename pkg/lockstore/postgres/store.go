// Package postgres implements lockstore.Store on top of a PostgreSQL
// table, using jackc/pgx/v5. Conditional writes are plain SQL: an
// INSERT ... ON CONFLICT DO UPDATE ... WHERE for Put (handles both the
// free-lock and steal-an-expired-lease cases in one round trip) and a
// transactional SELECT ... FOR UPDATE followed by a guarded UPDATE/DELETE
// for Update and Delete, so a missing row and a version mismatch can be
// told apart.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/stealthycoin/lynk/pkg/lockstore"
)

// Store is a PostgreSQL-backed lockstore.Store.
type Store struct {
	pool           *pgxpool.Pool
	table          string
	createTableSQL string
}

var _ lockstore.Store = (*Store)(nil)

// New opens a connection pool against cfg.DSN and creates the lock
// table (named table) if it doesn't already exist.
func New(ctx context.Context, table string, cfg Config) (*Store, error) {
	if table == "" {
		table = "locks"
	}
	cfg.ApplyDefaults()

	poolConfig, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("lockstore/postgres: parse dsn: %w", err)
	}
	poolConfig.MaxConns = cfg.MaxConns
	poolConfig.MinConns = cfg.MinConns
	poolConfig.HealthCheckPeriod = cfg.HealthCheckPeriod
	if !cfg.PrepareStatements {
		poolConfig.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeSimpleProtocol
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("lockstore/postgres: connect: %w", err)
	}

	ident := pgx.Identifier{table}.Sanitize()
	s := &Store{
		pool:           pool,
		table:          table,
		createTableSQL: fmt.Sprintf(createTableSQL, ident),
	}

	if err := s.ensureSchema(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("lockstore/postgres: ensure schema: %w", err)
	}

	return s, nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() {
	s.pool.Close()
}

func (s *Store) ident() string {
	return pgx.Identifier{s.table}.Sanitize()
}

func (s *Store) Put(ctx context.Context, rec lockstore.Record, cond *lockstore.Condition) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	leaseSeconds := int64(rec.LeaseDuration / time.Second)

	switch {
	case cond == nil:
		sql := fmt.Sprintf(`
			INSERT INTO %s (name, version_number, lease_duration_seconds, host_identifier)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (name) DO UPDATE SET
				version_number = EXCLUDED.version_number,
				lease_duration_seconds = EXCLUDED.lease_duration_seconds,
				host_identifier = EXCLUDED.host_identifier`, s.ident())
		_, err := s.pool.Exec(ctx, sql, rec.Name, rec.VersionNumber, leaseSeconds, rec.HostIdentifier)
		return mapPgError(err, "Put", rec.Name)

	case cond.IsLockFree():
		sql := fmt.Sprintf(`
			INSERT INTO %s (name, version_number, lease_duration_seconds, host_identifier)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (name) DO NOTHING`, s.ident())
		tag, err := s.pool.Exec(ctx, sql, rec.Name, rec.VersionNumber, leaseSeconds, rec.HostIdentifier)
		if err != nil {
			return mapPgError(err, "Put", rec.Name)
		}
		if tag.RowsAffected() == 0 {
			return lockstore.ErrConditionFailed
		}
		return nil

	case cond.IsLockFreeOrExpired():
		sql := fmt.Sprintf(`
			INSERT INTO %s (name, version_number, lease_duration_seconds, host_identifier)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (name) DO UPDATE SET
				version_number = EXCLUDED.version_number,
				lease_duration_seconds = EXCLUDED.lease_duration_seconds,
				host_identifier = EXCLUDED.host_identifier
			WHERE %s.version_number = $5`, s.ident(), s.ident())
		tag, err := s.pool.Exec(ctx, sql, rec.Name, rec.VersionNumber, leaseSeconds, rec.HostIdentifier, cond.PriorVersion())
		if err != nil {
			return mapPgError(err, "Put", rec.Name)
		}
		if tag.RowsAffected() == 0 {
			return lockstore.ErrConditionFailed
		}
		return nil

	default:
		return fmt.Errorf("lockstore/postgres: Put: unsupported condition")
	}
}

func (s *Store) Update(ctx context.Context, name string, versionNumber string, cond *lockstore.Condition) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return mapPgError(err, "Update", name)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var current string
	sql := fmt.Sprintf(`SELECT version_number FROM %s WHERE name = $1 FOR UPDATE`, s.ident())
	if err := tx.QueryRow(ctx, sql, name).Scan(&current); err != nil {
		return mapPgError(err, "Update", name)
	}

	if cond != nil && !conditionHolds(*cond, current) {
		return lockstore.ErrConditionFailed
	}

	updateSQL := fmt.Sprintf(`UPDATE %s SET version_number = $1 WHERE name = $2`, s.ident())
	if _, err := tx.Exec(ctx, updateSQL, versionNumber, name); err != nil {
		return mapPgError(err, "Update", name)
	}

	return tx.Commit(ctx)
}

func (s *Store) Delete(ctx context.Context, name string, cond *lockstore.Condition) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return mapPgError(err, "Delete", name)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var current string
	sql := fmt.Sprintf(`SELECT version_number FROM %s WHERE name = $1 FOR UPDATE`, s.ident())
	if err := tx.QueryRow(ctx, sql, name).Scan(&current); err != nil {
		return mapPgError(err, "Delete", name)
	}

	if cond != nil && !conditionHolds(*cond, current) {
		return lockstore.ErrConditionFailed
	}

	deleteSQL := fmt.Sprintf(`DELETE FROM %s WHERE name = $1`, s.ident())
	if _, err := tx.Exec(ctx, deleteSQL, name); err != nil {
		return mapPgError(err, "Delete", name)
	}

	return tx.Commit(ctx)
}

func (s *Store) Get(ctx context.Context, name string) (lockstore.Record, bool, error) {
	if err := ctx.Err(); err != nil {
		return lockstore.Record{}, false, err
	}

	sql := fmt.Sprintf(`SELECT name, version_number, lease_duration_seconds, host_identifier FROM %s WHERE name = $1`, s.ident())
	row := s.pool.QueryRow(ctx, sql, name)

	var rec lockstore.Record
	var leaseSeconds int64
	if err := row.Scan(&rec.Name, &rec.VersionNumber, &leaseSeconds, &rec.HostIdentifier); err != nil {
		if err == pgx.ErrNoRows {
			return lockstore.Record{}, false, nil
		}
		return lockstore.Record{}, false, mapPgError(err, "Get", name)
	}
	rec.LeaseDuration = time.Duration(leaseSeconds) * time.Second

	return rec, true, nil
}

// conditionHolds evaluates cond against an already-fetched current
// version, used once existence has been confirmed by the caller.
func conditionHolds(cond lockstore.Condition, currentVersion string) bool {
	return currentVersion == cond.PriorVersion()
}
