package tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rxtech-lab/ido-dashboard/internal/services"
)

func NewGetTokenInfoTool(chainService services.ChainService, tokenService services.TokenService) (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("get_token_info",
		mcp.WithDescription("Get the decimals, name and symbol of a token on the active chain. The zero address is the chain's native currency. A provisional result means the token contract could not be read yet."),
		mcp.WithString("address",
			mcp.Required(),
			mcp.Description("The token contract address"),
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
		return jsonResult(token)
	}

	return tool, handler
}
