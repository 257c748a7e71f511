package memory_test

import (
	"testing"

	"github.com/stealthycoin/lynk/pkg/lockstore"
	"github.com/stealthycoin/lynk/pkg/lockstore/memory"
	"github.com/stealthycoin/lynk/pkg/lockstore/storetest"
)

func TestConformance(t *testing.T) {
	storetest.RunConformanceSuite(t, func(t *testing.T) lockstore.Store {
		return memory.New()
	})
}
