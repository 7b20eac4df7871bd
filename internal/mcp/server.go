package mcp

import (
	"context"
	"fmt"
	"net/http"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	appserver "github.com/rxtech-lab/ido-dashboard/internal/server"
	"github.com/rxtech-lab/ido-dashboard/internal/tools"
)

type MCPServer struct {
	server   *server.MCPServer
	services *appserver.Services
}

func NewMCPServer(services *appserver.Services, serverPort int) *MCPServer {
	mcpServer := &MCPServer{
		services: services,
	}
	mcpServer.InitializeTools(services, serverPort)
	return mcpServer
}

func (s *MCPServer) InitializeTools(svc *appserver.Services, serverPort int) {
	srv := server.NewMCPServer(
		"IDO Dashboard MCP Server",
		"1.0.0",
		server.WithToolCapabilities(true),
	)

	srv.AddPrompt(mcp.NewPrompt("ido-dashboard-usage",
		mcp.WithPromptDescription("Instructions and guidance for using the IDO dashboard tools"),
		mcp.WithArgument("tool_category",
			mcp.ArgumentDescription("Category of tools to get instructions for (chain, sale, token, transaction, or all)"),
			mcp.RequiredArgument(),
		),
	), func(ctx context.Context, request mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
		category := request.Params.Arguments["tool_category"]
		if category == "" {
			return nil, fmt.Errorf("tool_category is required")
		}

		return mcp.NewGetPromptResult(
			fmt.Sprintf("IDO Dashboard Tools - %s", category),
			[]mcp.PromptMessage{
				mcp.NewPromptMessage(
					mcp.RoleUser,
					mcp.NewTextContent(getToolInstructions(category)),
				),
			},
		), nil
	})

	// Chain Management Tools
	listChainsTool, listChainsHandler := tools.NewListChainsTool(svc.Chains)
	srv.AddTool(listChainsTool, listChainsHandler)

	selectChainTool, selectChainHandler := tools.NewSelectChainTool(svc.Chains, svc.Sale)
	srv.AddTool(selectChainTool, selectChainHandler)

	// Sale Tools
	getSaleInfoTool, getSaleInfoHandler := tools.NewGetSaleInfoTool(svc.Sale)
	srv.AddTool(getSaleInfoTool, getSaleInfoHandler)

	getUserPositionTool, getUserPositionHandler := tools.NewGetUserPositionTool(svc.Sale, svc.Transactions)
	srv.AddTool(getUserPositionTool, getUserPositionHandler)

	// Token Tools
	getTokenInfoTool, getTokenInfoHandler := tools.NewGetTokenInfoTool(svc.Chains, svc.Tokens)
	srv.AddTool(getTokenInfoTool, getTokenInfoHandler)

	getTokenPriceTool, getTokenPriceHandler := tools.NewGetTokenPriceTool(svc.Chains, svc.Tokens, svc.Prices)
	srv.AddTool(getTokenPriceTool, getTokenPriceHandler)

	// Transaction Tools
	prepareDepositTool, prepareDepositHandler := tools.NewPrepareDepositTool(svc.Sale, svc.Transactions, svc.Config.BaseURL, serverPort)
	srv.AddTool(prepareDepositTool, prepareDepositHandler)

	prepareClaimTool, prepareClaimHandler := tools.NewPrepareClaimTool(svc.Transactions, svc.Config.BaseURL, serverPort)
	srv.AddTool(prepareClaimTool, prepareClaimHandler)

	getTransactionStatusTool, getTransactionStatusHandler := tools.NewGetTransactionStatusTool(svc.Transactions)
	srv.AddTool(getTransactionStatusTool, getTransactionStatusHandler)

	s.server = srv
}

func (s *MCPServer) GetServer() *server.MCPServer {
	return s.server
}

// StartStdioServer serves MCP over stdin/stdout until the input is closed.
func (s *MCPServer) StartStdioServer() error {
	return server.ServeStdio(s.server)
}

// StreamableHTTPHandler serves MCP over streamable HTTP at path.
func (s *MCPServer) StreamableHTTPHandler(path string) http.Handler {
	return server.NewStreamableHTTPServer(s.server,
		server.WithEndpointPath(path),
		server.WithStateLess(true),
	)
}

func getToolInstructions(category string) string {
	switch category {
	case "chain":
		return `Chain Management Tools:

1. list_chains - List the chains of the registry and the active one
   Usage: Find the chain the sale is read from

2. select_chain - Switch the active chain by chain id
   Usage: Sale and token data are re-read for the selected chain`

	case "sale":
		return `Sale Tools:

1. get_sale_info - Current sale snapshot (tokens, prices, timeline, pool totals, status)
   Usage: Check whether the sale is running and how oversubscribed it is

2. get_user_position - A wallet's deposit, claimable offering, refund, tax, balance and allowance
   Parameters:
   - address (required): wallet address
   - amount (optional): deposit amount to evaluate the deposit button for`

	case "token":
		return `Token Tools:

1. get_token_info - Decimals, name and symbol of a token on the active chain
   Usage: The zero address is the chain's native currency

2. get_token_price - USD price of a token on the active chain
   Usage: Returns null when the price is unknown`

	case "transaction":
		return `Transaction Tools:

1. prepare_deposit - Prepare the next deposit step (approve or deposit) for a wallet
   Usage: Returns a session URL with the transaction to sign

2. prepare_claim - Prepare the claim of the offering tokens after the sale ended
   Usage: Returns a session URL with the transaction to sign

3. get_transaction_status - Status of a prepared transaction session
   Usage: submitting, confirming, confirmed or failed`

	case "all":
		return `IDO Dashboard Tools Overview:

This MCP server provides 9 tools for following an IDO sale and preparing its transactions:

` + getToolInstructions("chain") + "\n\n" + getToolInstructions("sale") + "\n\n" +
			getToolInstructions("token") + "\n\n" + getToolInstructions("transaction")

	default:
		return `Unknown tool category. Available categories: chain, sale, token, transaction, all`
	}
}
