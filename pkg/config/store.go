package config

import (
	"context"
	"fmt"

	"github.com/stealthycoin/lynk/pkg/lockstore"
	"github.com/stealthycoin/lynk/pkg/lockstore/badger"
	"github.com/stealthycoin/lynk/pkg/lockstore/dynamodb"
	"github.com/stealthycoin/lynk/pkg/lockstore/memory"
	"github.com/stealthycoin/lynk/pkg/lockstore/postgres"
)

// defaultTableName is used for backends that need a table/collection name
// when the configuration leaves Table empty.
const defaultTableName = "locks"

// BuildStore constructs the lockstore.Store selected by cfg.Type,
// applying the nested per-backend configuration. Callers own the
// returned store's lifecycle; backends that hold resources have Close
// methods reachable through their concrete type: badger's Close returns
// an error, postgres's Close returns nothing.
func BuildStore(ctx context.Context, cfg StoreConfig) (lockstore.Store, error) {
	table := cfg.Table
	if table == "" {
		table = defaultTableName
	}

	switch cfg.Type {
	case "memory":
		return memory.New(), nil

	case "dynamodb":
		if cfg.DynamoDB == nil {
			return nil, fmt.Errorf("config: store.dynamodb section is required when store.type is dynamodb")
		}
		return dynamodb.New(ctx, table, dynamodb.Config{
			Region:   cfg.DynamoDB.Region,
			Endpoint: cfg.DynamoDB.Endpoint,
		})

	case "postgres":
		if cfg.Postgres == nil {
			return nil, fmt.Errorf("config: store.postgres section is required when store.type is postgres")
		}
		pgCfg := postgres.Config{
			DSN:               cfg.Postgres.DSN,
			PrepareStatements: cfg.Postgres.PrepareStatements,
		}
		pgCfg.ApplyDefaults()
		return postgres.New(ctx, table, pgCfg)

	case "badger":
		if cfg.Badger == nil {
			return nil, fmt.Errorf("config: store.badger section is required when store.type is badger")
		}
		return badger.Open(cfg.Badger.Path)

	default:
		return nil, fmt.Errorf("config: unknown store type %q", cfg.Type)
	}
}
