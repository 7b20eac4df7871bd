package tools

import (
	"context"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rxtech-lab/ido-dashboard/internal/services"
)

func NewGetTransactionStatusTool(txService services.TransactionService) (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("get_transaction_status",
		mcp.WithDescription("Get the status of a transaction session created by prepare_deposit or prepare_claim: submitting, confirming, confirmed or failed."),
		mcp.WithString("session_id",
			mcp.Required(),
			mcp.Description("The session id"),
		),
	)

	handler := func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		sessionID, err := request.RequireString("session_id")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		session, err := txService.GetSession(sessionID)
		switch {
		case errors.Is(err, services.ErrSessionNotFound):
			return mcp.NewToolResultError(fmt.Sprintf("Session %s not found", sessionID)), nil
		case errors.Is(err, services.ErrSessionExpired):
			return mcp.NewToolResultError(fmt.Sprintf("Session %s expired before a transaction was submitted. A transaction broadcast anyway can still be reported with its hash", sessionID)), nil
		case err != nil:
			return mcp.NewToolResultError(fmt.Sprintf("Error getting session: %v", err)), nil
		}

		return jsonResult(map[string]interface{}{
			"session_id": session.ID,
			"account":    session.Account,
			"action":     session.Action,
			"status":     session.Status,
			"tx_hash":    session.TxHash,
			"error":      session.Error,
			"chain":      session.Chain.Name,
			"updated_at": session.UpdatedAt,
		})
	}

	return tool, handler
}
