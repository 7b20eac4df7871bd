package services_test

import (
	"testing"
	"time"

	"github.com/rxtech-lab/ido-dashboard/internal/models"
	"github.com/rxtech-lab/ido-dashboard/internal/services"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testChainID = 31337

func seedChains() []models.Chain {
	return []models.Chain{
		{
			ChainType:       models.TransactionChainTypeEthereum,
			RPC:             "http://localhost:8545",
			NetworkID:       "31337",
			Name:            "Anvil",
			IsActive:        true,
			NativeName:      "Ether",
			NativeSymbol:    "ETH",
			NativeDecimals:  18,
			PricePlatformID: "ethereum",
			NativeCoinID:    "ethereum",
		},
		{
			ChainType:      models.TransactionChainTypeEthereum,
			RPC:            "http://localhost:8546",
			NetworkID:      "11155111",
			Name:           "Sepolia",
			NativeName:     "Sepolia Ether",
			NativeSymbol:   "ETH",
			NativeDecimals: 18,
		},
	}
}

func newTestDB(t *testing.T) (*gorm.DB, services.ChainService) {
	t.Helper()
	dbService, err := services.NewSqliteDBService(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { dbService.Close() })

	chains := services.NewChainService(dbService.GetDB())
	require.NoError(t, chains.SyncChains(seedChains()))
	return dbService.GetDB(), chains
}

type fixedClock struct {
	now time.Time
}

func (c *fixedClock) Now() time.Time { return c.now }
