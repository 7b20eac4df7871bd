package tools

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rxtech-lab/ido-dashboard/internal/models"
	"github.com/rxtech-lab/ido-dashboard/internal/services"
	"github.com/rxtech-lab/ido-dashboard/internal/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

const testServerPort = 9999

type fixedClock struct {
	now time.Time
}

func (c *fixedClock) Now() time.Time { return c.now }

type stubPrices struct {
	prices map[common.Address]decimal.Decimal
}

func (s *stubPrices) GetUSDPrice(ctx context.Context, token models.TokenDescriptor) *decimal.Decimal {
	price, ok := s.prices[token.Address]
	if !ok {
		return nil
	}
	return &price
}

// toolEnv runs the services against a fake chain with a sale that started an hour ago.
type toolEnv struct {
	backend *testutil.Backend
	sale    *testutil.Sale
	lpToken *testutil.Token
	clock   *fixedClock
	start   time.Time
	end     time.Time

	chains  services.ChainService
	tokens  services.TokenService
	prices  services.PriceService
	saleSvc services.SaleService
	txs     services.TransactionService
}

func newToolEnv(t *testing.T) *toolEnv {
	t.Helper()
	dbService, err := services.NewSqliteDBService(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { dbService.Close() })
	db := dbService.GetDB()

	env := &toolEnv{
		backend: testutil.NewBackend(),
		start:   time.Unix(1_700_000_000, 0),
	}
	env.end = env.start.Add(24 * time.Hour)
	env.clock = &fixedClock{now: env.start.Add(time.Hour)}
	env.sale = env.backend.DeploySale(testutil.DefaultSaleFixture(uint64(env.start.Unix()), uint64(env.end.Unix())))
	env.lpToken = env.backend.DeployERC20(testutil.LPTokenAddress, "Wrapped Ether", "WETH", 18)
	env.backend.DeployERC20(testutil.OfferingTokenAddress, "Launch", "LCH", 18)
	env.lpToken.SetBalance(testutil.UserAddress, testutil.E18(10))

	env.chains = services.NewChainService(db)
	require.NoError(t, env.chains.SyncChains([]models.Chain{
		{
			ChainType:      models.TransactionChainTypeEthereum,
			RPC:            "http://localhost:8545",
			NetworkID:      "31337",
			Name:           "Anvil",
			IsActive:       true,
			NativeName:     "Ether",
			NativeSymbol:   "ETH",
			NativeDecimals: 18,
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
	}))

	provider := services.StaticBackendProvider(env.backend)
	env.tokens = services.NewTokenService(db, env.chains, provider)
	env.prices = &stubPrices{prices: map[common.Address]decimal.Decimal{
		testutil.LPTokenAddress: decimal.NewFromInt(2000),
	}}
	env.saleSvc = services.NewSaleService(env.chains, env.tokens, env.prices, provider, services.SaleServiceConfig{
		SaleAddress: testutil.SaleAddress,
		Clock:       env.clock,
	})
	env.txs = services.NewTransactionService(db, env.chains, env.saleSvc, services.NewEvmService(), services.TransactionServiceConfig{
		Clock: env.clock,
	})
	return env
}

func callTool(t *testing.T, handler server.ToolHandlerFunc, args map[string]interface{}) *mcp.CallToolResult {
	t.Helper()
	result, err := handler(context.Background(), mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Arguments: args,
		},
	})
	require.NoError(t, err)
	require.NotNil(t, result)
	require.Len(t, result.Content, 1)
	return result
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	textContent, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok)
	return textContent.Text
}

func decodeResult(t *testing.T, result *mcp.CallToolResult) map[string]interface{} {
	t.Helper()
	require.False(t, result.IsError, resultText(t, result))
	var response map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &response))
	return response
}
