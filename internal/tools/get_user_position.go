package tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rxtech-lab/ido-dashboard/internal/models"
	"github.com/rxtech-lab/ido-dashboard/internal/services"
)

func NewGetUserPositionTool(saleService services.SaleService, txService services.TransactionService) (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("get_user_position",
		mcp.WithDescription("Get a wallet's position in the sale: deposited amount, claimable offering tokens, refund, tax, LP token balance and allowance, in-flight transactions and the state of the deposit and claim actions."),
		mcp.WithString("address",
			mcp.Required(),
			mcp.Description("The wallet address"),
		),
		mcp.WithString("amount",
			mcp.Description("Deposit amount in LP token units used to evaluate the deposit action. Optional."),
		),
	)

	handler := func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		account, err := requireAddress(request, "address")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		amount := request.GetString("amount", "")

		info, err := saleService.Snapshot(ctx, &account)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Error reading sale: %v", err)), nil
		}
		states, err := txService.ActionStates(account.Hex())
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Error reading transactions: %v", err)), nil
		}

		result := map[string]interface{}{
			"account":            account.Hex(),
			"status":             info.Status,
			"user_info":          info.UserInfo,
			"lp_token_balance":   info.LPTokenBalance,
			"lp_token_allowance": info.LPTokenAllowance,
			"display":            services.DisplayUser(info),
			"in_flight":          states,
			"claim_action": services.ClaimAction(services.ClaimGuardInput{
				Status:      info.Status,
				UserInfo:    info.UserInfo,
				ClaimStatus: states[models.TransactionTypeClaim],
			}),
		}
		if amount != "" {
			result["deposit_action"] = services.DepositAction(services.DepositGuardInput{
				Account:       &account,
				LPToken:       info.LPToken,
				Amount:        amount,
				Balance:       info.LPTokenBalance,
				Allowance:     info.LPTokenAllowance,
				ApproveStatus: states[models.TransactionTypeApprove],
				DepositStatus: states[models.TransactionTypeDeposit],
			})
			result["deposit_usd"] = services.DepositEstimateUSD(amount, info.LPTokenUSD)
		}

		return jsonResult(result)
	}

	return tool, handler
}
