package tools

import (
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/rxtech-lab/ido-dashboard/internal/testutil"
	"github.com/stretchr/testify/assert"
)

func TestGetTokenInfoHandler(t *testing.T) {
	env := newToolEnv(t)
	tool, handler := NewGetTokenInfoTool(env.chains, env.tokens)

	assert.Equal(t, "get_token_info", tool.Name)
	assert.Contains(t, tool.InputSchema.Required, "address")

	tests := []struct {
		name        string
		address     string
		kind        string
		symbol      string
		decimals    float64
		provisional bool
	}{
		{"erc20", testutil.LPTokenAddress.Hex(), "erc20", "WETH", 18, false},
		{"native", common.Address{}.Hex(), "native", "ETH", 18, false},
		{"unreadable contract", "0x000000000000000000000000000000000000dEaD", "erc20", "-", 18, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			response := decodeResult(t, callTool(t, handler, map[string]interface{}{"address": tt.address}))
			assert.Equal(t, tt.kind, response["kind"])
			assert.Equal(t, tt.symbol, response["symbol"])
			assert.Equal(t, tt.decimals, response["decimals"])
			assert.Equal(t, tt.provisional, response["provisional"])
			assert.Equal(t, float64(31337), response["chain_id"])
		})
	}

	t.Run("invalid address", func(t *testing.T) {
		result := callTool(t, handler, map[string]interface{}{"address": "weth"})
		assert.True(t, result.IsError)
	})
}

func TestGetTokenPriceHandler(t *testing.T) {
	env := newToolEnv(t)
	tool, handler := NewGetTokenPriceTool(env.chains, env.tokens, env.prices)

	assert.Equal(t, "get_token_price", tool.Name)

	response := decodeResult(t, callTool(t, handler, map[string]interface{}{
		"address": strings.ToLower(testutil.LPTokenAddress.Hex()),
	}))
	assert.Equal(t, "2000", response["usd"])
	token := response["token"].(map[string]interface{})
	assert.Equal(t, "WETH", token["symbol"])

	response = decodeResult(t, callTool(t, handler, map[string]interface{}{
		"address": testutil.OfferingTokenAddress.Hex(),
	}))
	assert.Nil(t, response["usd"])
}
