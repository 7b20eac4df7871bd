package services

import (
	"testing"

	"github.com/rxtech-lab/ido-dashboard/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func testChains() []models.Chain {
	return []models.Chain{
		{
			ChainType:      models.TransactionChainTypeEthereum,
			RPC:            "https://ethereum-rpc.publicnode.com",
			NetworkID:      "1",
			Name:           "Ethereum",
			NativeName:     "Ether",
			NativeSymbol:   "ETH",
			NativeDecimals: 18,
			NativeCoinID:   "ethereum",
		},
		{
			ChainType:      models.TransactionChainTypeEthereum,
			RPC:            "http://localhost:8545",
			NetworkID:      "11155111",
			Name:           "Sepolia",
			IsActive:       true,
			NativeName:     "Sepolia Ether",
			NativeSymbol:   "ETH",
			NativeDecimals: 18,
			NativeCoinID:   "ethereum",
		},
	}
}

func TestChainServiceSyncChains(t *testing.T) {
	db := setupTestDB(t)
	service := NewChainService(db)

	require.NoError(t, service.SyncChains(testChains()))

	chains, err := service.ListChains()
	require.NoError(t, err)
	require.Len(t, chains, 2)

	active, err := service.GetActiveChain()
	require.NoError(t, err)
	assert.Equal(t, "11155111", active.NetworkID)
	assert.Equal(t, "Sepolia Ether", active.NativeName)

	t.Run("resync updates existing rows", func(t *testing.T) {
		updated := testChains()
		updated[1].RPC = "http://localhost:9545"
		updated[1].IsActive = false
		updated[0].IsActive = true
		require.NoError(t, service.SyncChains(updated))

		chains, err := service.ListChains()
		require.NoError(t, err)
		require.Len(t, chains, 2)

		active, err := service.GetActiveChain()
		require.NoError(t, err)
		assert.Equal(t, "1", active.NetworkID)

		sepolia, err := service.GetChainByNetworkID("11155111")
		require.NoError(t, err)
		assert.Equal(t, "http://localhost:9545", sepolia.RPC)
		assert.False(t, sepolia.IsActive)
	})
}

func TestChainServiceSetActiveChain(t *testing.T) {
	db := setupTestDB(t)
	service := NewChainService(db)
	require.NoError(t, service.SyncChains(testChains()))

	chain, err := service.SetActiveChainByNetworkID("1")
	require.NoError(t, err)
	assert.True(t, chain.IsActive)

	active, err := service.GetActiveChain()
	require.NoError(t, err)
	assert.Equal(t, "1", active.NetworkID)

	var count int64
	require.NoError(t, db.Model(&models.Chain{}).Where("is_active = ?", true).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	t.Run("unknown network", func(t *testing.T) {
		_, err := service.SetActiveChainByNetworkID("56")
		assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	})

	t.Run("unknown id keeps the active chain", func(t *testing.T) {
		err := service.SetActiveChainByID(999)
		assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

		active, err := service.GetActiveChain()
		require.NoError(t, err)
		assert.Equal(t, "1", active.NetworkID)
	})
}
