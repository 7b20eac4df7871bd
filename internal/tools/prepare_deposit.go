package tools

import (
	"context"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rxtech-lab/ido-dashboard/internal/models"
	"github.com/rxtech-lab/ido-dashboard/internal/services"
	"github.com/rxtech-lab/ido-dashboard/internal/utils"
)

func NewPrepareDepositTool(saleService services.SaleService, txService services.TransactionService, baseURL string, serverPort int) (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("prepare_deposit",
		mcp.WithDescription("Prepare the next step of a deposit into the sale. When the LP token allowance does not cover the amount an approve transaction is prepared first; call this tool again once it is confirmed. Returns a session URL with the transaction for the wallet to sign."),
		mcp.WithString("address",
			mcp.Required(),
			mcp.Description("The wallet address that deposits"),
		),
		mcp.WithString("amount",
			mcp.Required(),
			mcp.Description("Deposit amount in LP token units (e.g. 1.5)"),
		),
	)

	handler := func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		account, err := requireAddress(request, "address")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		amount, err := request.RequireString("amount")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		info, err := saleService.Snapshot(ctx, &account)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Error reading sale: %v", err)), nil
		}
		states, err := txService.ActionStates(account.Hex())
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Error reading transactions: %v", err)), nil
		}

		button := services.DepositAction(services.DepositGuardInput{
			Account:       &account,
			LPToken:       info.LPToken,
			Amount:        amount,
			Balance:       info.LPTokenBalance,
			Allowance:     info.LPTokenAllowance,
			ApproveStatus: states[models.TransactionTypeApprove],
			DepositStatus: states[models.TransactionTypeDeposit],
		})
		if button.Action == "" {
			return mcp.NewToolResultError(fmt.Sprintf("Deposit is not possible right now: %s", button.Text)), nil
		}

		session, err := txService.CreateActionSession(ctx, services.CreateActionSessionRequest{
			Account: account.Hex(),
			Action:  button.Action,
			Amount:  amount,
		})
		if err != nil {
			return sessionError(err), nil
		}

		message := "Deposit session created. Open the URL and sign the deposit transaction with your wallet."
		if button.Action == models.TransactionTypeApprove {
			message = fmt.Sprintf("The sale needs an allowance for %s first. Open the URL and sign the approval, then call prepare_deposit again once it is confirmed.", info.LPToken.Symbol)
		}
		return sessionResult(session, baseURL, serverPort, message)
	}

	return tool, handler
}

func sessionError(err error) *mcp.CallToolResult {
	switch {
	case errors.Is(err, services.ErrActionInFlight):
		return mcp.NewToolResultError(fmt.Sprintf("Another transaction is still pending: %v", err))
	case errors.Is(err, services.ErrActionNotAllowed):
		return mcp.NewToolResultError(err.Error())
	}
	return mcp.NewToolResultError(fmt.Sprintf("Error creating transaction session: %v", err))
}

func sessionResult(session *models.TransactionSession, baseURL string, serverPort int, message string) (*mcp.CallToolResult, error) {
	url, err := utils.GetTransactionSessionUrl(baseURL, serverPort, session.ID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Error generating session URL: %v", err)), nil
	}

	result := map[string]interface{}{
		"session_id":   session.ID,
		"action":       session.Action,
		"status":       session.Status,
		"url":          url,
		"transactions": session.TransactionDeployments,
		"expires_at":   session.ExpiresAt,
		"message":      message,
	}
	return jsonResult(result)
}
