package postgres

import "time"

// Config configures the connection pool backing a Store.
type Config struct {
	// DSN is the PostgreSQL connection string.
	DSN string

	// PrepareStatements enables pgx's automatic prepared statement cache.
	PrepareStatements bool

	// MaxConns bounds the pool's live connection count.
	MaxConns int32

	// MinConns is the number of connections the pool keeps warm.
	MinConns int32

	// HealthCheckPeriod is how often idle pooled connections are pinged.
	HealthCheckPeriod time.Duration
}

// ApplyDefaults fills unset fields with sane values for a small lock
// table: a handful of pooled connections is plenty, since every query is
// a single-row point lookup or conditional write.
func (c *Config) ApplyDefaults() {
	if c.MaxConns == 0 {
		c.MaxConns = 10
	}
	if c.MinConns == 0 {
		c.MinConns = 2
	}
	if c.HealthCheckPeriod == 0 {
		c.HealthCheckPeriod = time.Minute
	}
}
