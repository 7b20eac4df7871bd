package tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rxtech-lab/ido-dashboard/internal/services"
	"github.com/shopspring/decimal"
)

func NewGetTokenPriceTool(chainService services.ChainService, tokenService services.TokenService, priceService services.PriceService) (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("get_token_price",
		mcp.WithDescription("Get the USD price of a token on the active chain. usd is null when the price is unknown."),
		mcp.WithString("address",
			mcp.Required(),
			mcp.Description("The token contract address, or the zero address for the native currency"),
		),
	)

	handler := func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		address, err := requireAddress(request, "address")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		chainID, err := activeChainID(chainService)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		token := tokenService.Resolve(ctx, chainID, address)
		if token == nil {
			return mcp.NewToolResultError(fmt.Sprintf("Chain %d is not configured", chainID)), nil
		}

		var price *decimal.Decimal
		if !token.Provisional {
			price = priceService.GetUSDPrice(ctx, *token)
		}
		return jsonResult(map[string]interface{}{
			"token": token,
			"usd":   price,
		})
	}

	return tool, handler
}
