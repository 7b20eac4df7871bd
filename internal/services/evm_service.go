package services

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/go-playground/validator/v10"
	"github.com/rxtech-lab/ido-dashboard/internal/constants"
	"github.com/rxtech-lab/ido-dashboard/internal/contracts"
	"github.com/rxtech-lab/ido-dashboard/internal/models"
	"github.com/rxtech-lab/ido-dashboard/internal/utils"
)

// EvmService builds the unsigned transactions the wallet signs.
type EvmService interface {
	GetContractFunctionCallTransaction(args GetContractFunctionCallTransactionArgs) (models.TransactionDeployment, error)
	// GetApproveTransaction grants the sale an unlimited allowance of the LP token.
	GetApproveTransaction(args ApproveTransactionArgs) (models.TransactionDeployment, error)
	GetDepositTransaction(args DepositTransactionArgs) (models.TransactionDeployment, error)
	GetClaimTransaction(args ClaimTransactionArgs) (models.TransactionDeployment, error)
}

type evmService struct {
	validator *validator.Validate
}

func NewEvmService() EvmService {
	validator := validator.New()
	return &evmService{validator: validator}
}

// GetContractFunctionCallTransaction returns a transaction deployment for a contract function call
func (s *evmService) GetContractFunctionCallTransaction(args GetContractFunctionCallTransactionArgs) (models.TransactionDeployment, error) {
	err := s.validator.Struct(args)
	if err != nil {
		return models.TransactionDeployment{}, err
	}

	encoded, err := args.Abi.Pack(args.FunctionName, args.FunctionArgs...)
	if err != nil {
		return models.TransactionDeployment{}, fmt.Errorf("failed to encode function call: %w", err)
	}

	value := args.Value
	if value == "" {
		value = "0"
	}

	return models.TransactionDeployment{
		Data:            hexutil.Encode(encoded),
		Title:           args.Title,
		Description:     args.Description,
		Value:           value,
		Receiver:        common.HexToAddress(args.ContractAddress).Hex(),
		TransactionType: args.TransactionType,
	}, nil
}

func (s *evmService) GetApproveTransaction(args ApproveTransactionArgs) (models.TransactionDeployment, error) {
	if err := s.validator.Struct(args); err != nil {
		return models.TransactionDeployment{}, err
	}

	return s.GetContractFunctionCallTransaction(GetContractFunctionCallTransactionArgs{
		ContractAddress: args.TokenAddress,
		FunctionName:    contracts.MethodApprove,
		FunctionArgs:    []any{common.HexToAddress(args.Spender), constants.MaxUint256},
		Abi:             contracts.MustERC20ABI(),
		Title:           fmt.Sprintf("Approve %s", args.Symbol),
		Description:     fmt.Sprintf("Allow the sale contract %s to spend your %s", args.Spender, args.Symbol),
		TransactionType: models.TransactionTypeApprove,
	})
}

// GetDepositTransaction deposits Amount into the pool. A native LP token is sent as the
// transaction value with a zero amount argument.
func (s *evmService) GetDepositTransaction(args DepositTransactionArgs) (models.TransactionDeployment, error) {
	if err := s.validator.Struct(args); err != nil {
		return models.TransactionDeployment{}, err
	}
	amount, err := utils.ParseAmount(args.Amount)
	if err != nil {
		return models.TransactionDeployment{}, err
	}
	raw := utils.ToBaseUnits(amount, args.LPToken.Decimals)
	if raw.Sign() <= 0 {
		return models.TransactionDeployment{}, fmt.Errorf("amount %s is below the smallest unit of %s", args.Amount, args.LPToken.Symbol)
	}

	amountArg := raw
	value := "0"
	if args.LPToken.IsNative() {
		amountArg = big.NewInt(0)
		value = raw.String()
	}

	return s.GetContractFunctionCallTransaction(GetContractFunctionCallTransactionArgs{
		ContractAddress: args.SaleAddress,
		FunctionName:    contracts.MethodDepositPool,
		FunctionArgs:    []any{amountArg, new(big.Int).SetUint64(args.PoolID), big.NewInt(0), []byte{}},
		Abi:             contracts.MustIDOABI(),
		Value:           value,
		Title:           fmt.Sprintf("Deposit %s %s", amount.String(), args.LPToken.Symbol),
		Description:     fmt.Sprintf("Deposit %s %s into pool %d", amount.String(), args.LPToken.Symbol, args.PoolID),
		TransactionType: models.TransactionTypeDeposit,
	})
}

func (s *evmService) GetClaimTransaction(args ClaimTransactionArgs) (models.TransactionDeployment, error) {
	if err := s.validator.Struct(args); err != nil {
		return models.TransactionDeployment{}, err
	}

	title := "Claim"
	if args.Symbol != "" {
		title = fmt.Sprintf("Claim %s", args.Symbol)
	}
	return s.GetContractFunctionCallTransaction(GetContractFunctionCallTransactionArgs{
		ContractAddress: args.SaleAddress,
		FunctionName:    contracts.MethodHarvestPool,
		FunctionArgs:    []any{new(big.Int).SetUint64(args.PoolID)},
		Abi:             contracts.MustIDOABI(),
		Title:           title,
		Description:     fmt.Sprintf("Claim your offering tokens and refund from pool %d", args.PoolID),
		TransactionType: models.TransactionTypeClaim,
	})
}
