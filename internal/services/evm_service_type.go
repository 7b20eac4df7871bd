package services

import (
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/rxtech-lab/ido-dashboard/internal/models"
)

type GetContractFunctionCallTransactionArgs struct {
	ContractAddress string  `validate:"required,eth_addr"`
	FunctionName    string  `validate:"required"`
	FunctionArgs    []any   // Function arguments can be empty
	Abi             abi.ABI `validate:"-"`
	Value           string  `validate:"omitempty,number"` // Optional value in wei, defaults to "0"
	Title           string  `validate:"required"`
	Description     string  `validate:"required"`
	TransactionType models.TransactionType
}

type ApproveTransactionArgs struct {
	TokenAddress string `validate:"required,eth_addr"`
	Spender      string `validate:"required,eth_addr"`
	Symbol       string `validate:"required"`
}

type DepositTransactionArgs struct {
	SaleAddress string `validate:"required,eth_addr"`
	PoolID      uint64
	// Amount in token units, truncated to the token's decimals
	Amount  string                 `validate:"required"`
	LPToken models.TokenDescriptor `validate:"-"`
}

type ClaimTransactionArgs struct {
	SaleAddress string `validate:"required,eth_addr"`
	PoolID      uint64
	Symbol      string
}
