package tools

import (
	"encoding/json"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/rxtech-lab/ido-dashboard/internal/services"
)

func jsonResult(value interface{}) (*mcp.CallToolResult, error) {
	resultJSON, err := json.Marshal(value)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Error encoding result: %v", err)), nil
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(string(resultJSON)),
		},
	}, nil
}

func requireAddress(request mcp.CallToolRequest, name string) (common.Address, error) {
	value, err := request.RequireString(name)
	if err != nil {
		return common.Address{}, err
	}
	if !common.IsHexAddress(value) {
		return common.Address{}, fmt.Errorf("%s must be a valid Ethereum address: %s", name, value)
	}
	return common.HexToAddress(value), nil
}

func activeChainID(chainService services.ChainService) (uint64, error) {
	chain, err := chainService.GetActiveChain()
	if err != nil {
		return 0, fmt.Errorf("failed to get active chain: %w", err)
	}
	return chain.ChainIDUint64()
}
