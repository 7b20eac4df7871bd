package contracts

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

//go:embed abi/IDO.json
var idoABIJSON string

//go:embed abi/ERC20.json
var erc20ABIJSON string

// Method names on the IDO sale contract.
const (
	MethodAddresses          = "addresses"
	MethodStartTimestamp     = "startTimestamp"
	MethodEndTimestamp       = "endTimestamp"
	MethodMinDepositAmounts  = "MIN_DEPOSIT_AMOUNTS"
	MethodTotalTokensOffered = "totalTokensOffered"
	MethodPoolInformation    = "_poolInformation"
	MethodViewUserInfo       = "viewUserInfo"
	MethodViewUserAmounts    = "viewUserOfferingAndRefundingAmountsForPools"
	MethodDepositPool        = "depositPool"
	MethodHarvestPool        = "harvestPool"
)

// Method names on the ERC-20 interface.
const (
	MethodName      = "name"
	MethodSymbol    = "symbol"
	MethodDecimals  = "decimals"
	MethodBalanceOf = "balanceOf"
	MethodAllowance = "allowance"
	MethodApprove   = "approve"
)

var (
	idoOnce   sync.Once
	idoABI    abi.ABI
	idoErr    error
	erc20Once sync.Once
	erc20ABI  abi.ABI
	erc20Err  error
)

// GetIDOABI returns the parsed ABI of the IDO sale contract.
func GetIDOABI() (abi.ABI, error) {
	idoOnce.Do(func() {
		idoABI, idoErr = abi.JSON(strings.NewReader(idoABIJSON))
		if idoErr != nil {
			idoErr = fmt.Errorf("failed to parse IDO ABI: %w", idoErr)
		}
	})
	return idoABI, idoErr
}

// GetERC20ABI returns the parsed ERC-20 ABI.
func GetERC20ABI() (abi.ABI, error) {
	erc20Once.Do(func() {
		erc20ABI, erc20Err = abi.JSON(strings.NewReader(erc20ABIJSON))
		if erc20Err != nil {
			erc20Err = fmt.Errorf("failed to parse ERC20 ABI: %w", erc20Err)
		}
	})
	return erc20ABI, erc20Err
}

// MustIDOABI panics when the embedded IDO ABI cannot be parsed.
func MustIDOABI() abi.ABI {
	parsed, err := GetIDOABI()
	if err != nil {
		panic(err)
	}
	return parsed
}

// MustERC20ABI panics when the embedded ERC-20 ABI cannot be parsed.
func MustERC20ABI() abi.ABI {
	parsed, err := GetERC20ABI()
	if err != nil {
		panic(err)
	}
	return parsed
}
