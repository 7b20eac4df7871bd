package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rxtech-lab/ido-dashboard/internal/models"
	"github.com/rxtech-lab/ido-dashboard/internal/services"
)

func chainSummary(chain models.Chain) map[string]interface{} {
	return map[string]interface{}{
		"id":            chain.ID,
		"name":          chain.Name,
		"chain_id":      chain.NetworkID,
		"rpc":           chain.RPC,
		"native_symbol": chain.NativeSymbol,
		"is_active":     chain.IsActive,
	}
}

func NewListChainsTool(chainService services.ChainService) (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("list_chains",
		mcp.WithDescription("List the blockchain networks the sale can be read from, with the active one"),
	)

	handler := func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		chains, err := chainService.ListChains()
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Error listing chains: %v", err)), nil
		}

		summaries := make([]map[string]interface{}, 0, len(chains))
		response := map[string]interface{}{
			"total": len(chains),
		}
		for _, chain := range chains {
			summaries = append(summaries, chainSummary(chain))
			if chain.IsActive {
				response["active_chain"] = chainSummary(chain)
			}
		}
		response["chains"] = summaries

		responseJSON, _ := json.MarshalIndent(response, "", "  ")
		return &mcp.CallToolResult{
			Content: []mcp.Content{
				mcp.NewTextContent(string(responseJSON)),
			},
		}, nil
	}

	return tool, handler
}
