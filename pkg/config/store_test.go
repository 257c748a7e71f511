package config_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/stealthycoin/lynk/pkg/config"
)

func TestBuildStore_Memory(t *testing.T) {
	store, err := config.BuildStore(context.Background(), config.StoreConfig{Type: "memory"})
	require.NoError(t, err)
	require.NotNil(t, store)
}

func TestBuildStore_UnknownType(t *testing.T) {
	_, err := config.BuildStore(context.Background(), config.StoreConfig{Type: "sqlite"})
	require.Error(t, err)
}

func TestBuildStore_DynamoDBRequiresSection(t *testing.T) {
	_, err := config.BuildStore(context.Background(), config.StoreConfig{Type: "dynamodb"})
	require.Error(t, err)
}

func TestBuildStore_PostgresRequiresSection(t *testing.T) {
	_, err := config.BuildStore(context.Background(), config.StoreConfig{Type: "postgres"})
	require.Error(t, err)
}

func TestBuildStore_BadgerRequiresSection(t *testing.T) {
	_, err := config.BuildStore(context.Background(), config.StoreConfig{Type: "badger"})
	require.Error(t, err)
}

func TestBuildStore_BadgerOpensAtPath(t *testing.T) {
	store, err := config.BuildStore(context.Background(), config.StoreConfig{
		Type:   "badger",
		Badger: &config.BadgerStoreConfig{Path: t.TempDir()},
	})
	require.NoError(t, err)
	require.NotNil(t, store)
}
