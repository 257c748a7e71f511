package postgres

import "context"

const createTableSQL = `
CREATE TABLE IF NOT EXISTS %s (
	name                   TEXT PRIMARY KEY,
	version_number         TEXT NOT NULL,
	lease_duration_seconds BIGINT NOT NULL,
	host_identifier        TEXT NOT NULL
)`

func (s *Store) ensureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, s.createTableSQL)
	return err
}
