package models

import (
	"fmt"
	"strconv"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"gorm.io/gorm"
)

// Chain represents an EVM network the sale can be read from.
type Chain struct {
	ID        uint                 `gorm:"primaryKey" json:"id"`
	ChainType TransactionChainType `gorm:"not null" json:"chain_type"`
	RPC       string               `gorm:"not null" json:"rpc"`
	NetworkID string               `gorm:"column:chain_id;uniqueIndex" json:"chain_id"` // The blockchain's chain ID (e.g., "1" for Ethereum mainnet)
	Name      string               `gorm:"not null" json:"name"`
	IsActive  bool                 `gorm:"default:false" json:"is_active"`

	// Native currency of the chain, served without any contract read
	NativeName     string `gorm:"not null" json:"native_name"`
	NativeSymbol   string `gorm:"not null" json:"native_symbol"`
	NativeDecimals uint8  `gorm:"not null;default:18" json:"native_decimals"`

	// Price API identifiers (asset platform for ERC-20 lookups, coin id for the native currency)
	PricePlatformID string `json:"price_platform_id"`
	NativeCoinID    string `json:"native_coin_id"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// ChainIDUint64 parses the NetworkID of the chain.
func (c Chain) ChainIDUint64() (uint64, error) {
	id, err := strconv.ParseUint(c.NetworkID, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid chain id %q: %w", c.NetworkID, err)
	}
	return id, nil
}

// NativeToken returns the descriptor of the chain's native currency.
func (c Chain) NativeToken() TokenDescriptor {
	id, _ := c.ChainIDUint64()
	return TokenDescriptor{
		Kind:     TokenKindNative,
		ChainID:  id,
		Address:  common.Address{},
		Decimals: c.NativeDecimals,
		Name:     c.NativeName,
		Symbol:   c.NativeSymbol,
	}
}
