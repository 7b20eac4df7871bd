package utils

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/rxtech-lab/ido-dashboard/internal/constants"
)

func IsValidEthereumAddress(address string) bool {
	return common.IsHexAddress(address)
}

// ParseAddress parses a hex address, rejecting malformed input.
func ParseAddress(address string) (common.Address, error) {
	if !common.IsHexAddress(address) {
		return common.Address{}, fmt.Errorf("invalid address: %s", address)
	}
	return common.HexToAddress(address), nil
}

// IsNativeAddress reports whether address is the zero address used for the native currency.
func IsNativeAddress(address common.Address) bool {
	return address == constants.NativeTokenAddress
}
