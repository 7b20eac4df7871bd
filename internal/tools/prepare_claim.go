package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rxtech-lab/ido-dashboard/internal/models"
	"github.com/rxtech-lab/ido-dashboard/internal/services"
)

func NewPrepareClaimTool(txService services.TransactionService, baseURL string, serverPort int) (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("prepare_claim",
		mcp.WithDescription("Prepare the claim of offering tokens and refund after the sale ended. Returns a session URL with the transaction for the wallet to sign."),
		mcp.WithString("address",
			mcp.Required(),
			mcp.Description("The wallet address that claims"),
		),
	)

	handler := func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		account, err := requireAddress(request, "address")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		session, err := txService.CreateActionSession(ctx, services.CreateActionSessionRequest{
			Account: account.Hex(),
			Action:  models.TransactionTypeClaim,
		})
		if err != nil {
			return sessionError(err), nil
		}
		return sessionResult(session, baseURL, serverPort, "Claim session created. Open the URL and sign the claim transaction with your wallet.")
	}

	return tool, handler
}
