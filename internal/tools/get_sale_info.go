package tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rxtech-lab/ido-dashboard/internal/services"
)

func NewGetSaleInfoTool(saleService services.SaleService) (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("get_sale_info",
		mcp.WithDescription("Get the current state of the IDO sale: LP and offering tokens with USD prices, start and end time, status, pool totals, oversubscription and minimum deposit. Values that could not be read are null."),
		mcp.WithBoolean("refresh",
			mcp.Description("Read the pool information from the chain again before answering. Optional."),
		),
	)

	handler := func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		if request.GetBool("refresh", false) {
			if err := saleService.RefetchPoolInfo(ctx); err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("Error refreshing pool info: %v", err)), nil
			}
		}

		info, err := saleService.Snapshot(ctx, nil)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Error reading sale: %v", err)), nil
		}

		return jsonResult(map[string]interface{}{
			"sale":    info,
			"display": services.DisplaySale(info),
		})
	}

	return tool, handler
}
