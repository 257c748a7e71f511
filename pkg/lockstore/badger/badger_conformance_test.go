package badger_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/stealthycoin/lynk/pkg/lockstore"
	"github.com/stealthycoin/lynk/pkg/lockstore/badger"
	"github.com/stealthycoin/lynk/pkg/lockstore/storetest"
)

func TestConformance(t *testing.T) {
	storetest.RunConformanceSuite(t, func(t *testing.T) lockstore.Store {
		dir := t.TempDir()
		store, err := badger.Open(dir)
		require.NoError(t, err)
		t.Cleanup(func() { _ = store.Close() })
		return store
	})
}
