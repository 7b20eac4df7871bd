package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rxtech-lab/ido-dashboard/internal/services"
	"gorm.io/gorm"
)

func NewSelectChainTool(chainService services.ChainService, saleService services.SaleService) (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("select_chain",
		mcp.WithDescription("Switch the active blockchain network. Sale and token data are read again from the selected chain."),
		mcp.WithString("chain_id",
			mcp.Required(),
			mcp.Description("The chain id of a network from list_chains (e.g. 11155111 for Sepolia)"),
		),
	)

	handler := func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		chainID, err := request.RequireString("chain_id")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		activeChain, err := chainService.SetActiveChainByNetworkID(chainID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return mcp.NewToolResultError(fmt.Sprintf("Chain %s is not in the chain registry", chainID)), nil
		}
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Error setting active chain: %v", err)), nil
		}
		saleService.Invalidate()

		result := chainSummary(*activeChain)
		result["message"] = fmt.Sprintf("Successfully selected %s (chain id %s)", activeChain.Name, activeChain.NetworkID)

		resultJSON, _ := json.Marshal(result)
		return &mcp.CallToolResult{
			Content: []mcp.Content{
				mcp.NewTextContent(string(resultJSON)),
			},
		}, nil
	}

	return tool, handler
}
