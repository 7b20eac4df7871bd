package constants

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// MaxUint256 is the allowance requested by an approve action. It exposes the full LP token
// balance to the sale contract.
var MaxUint256 = func() *big.Int {
	val := new(big.Int)
	val.SetString("115792089237316195423570985008687907853269984665640564039457584007913129639935", 10)
	return val
}()

// NativeTokenAddress marks the chain's native coin wherever a token address is expected.
var NativeTokenAddress = common.Address{}

const (
	// DefaultPoolID is the only pool the sale contract runs.
	DefaultPoolID = 0

	// ProvisionalDecimals is used for an ERC-20 token whose metadata has not been read yet.
	ProvisionalDecimals = 18
	// ProvisionalLabel is used as symbol and name for an ERC-20 token whose metadata has not been read yet.
	ProvisionalLabel = "-"

	// SepoliaChainID is the test network served by fixed prices instead of the price API.
	SepoliaChainID = 11155111
	// SepoliaNativePriceUSD and SepoliaTokenPriceUSD are test fixtures, not market prices.
	SepoliaNativePriceUSD = 2000
	SepoliaTokenPriceUSD  = 100
)

// LP token / offering token slots of the sale contract's addresses(uint256) getter.
const (
	AddressSlotLPToken0      = 0
	AddressSlotLPToken1      = 1
	AddressSlotOfferingToken = 2
	AddressSlotAdmin         = 3
)
