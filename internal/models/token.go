package models

import (
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

type TokenKind string

const (
	TokenKindNative TokenKind = "native"
	TokenKindERC20  TokenKind = "erc20"
)

// TokenDescriptor describes a token usable for amount scaling and display.
// Provisional descriptors are placeholders returned while on-chain metadata is unavailable.
type TokenDescriptor struct {
	Kind        TokenKind      `json:"kind"`
	ChainID     uint64         `json:"chain_id"`
	Address     common.Address `json:"address"`
	Decimals    uint8          `json:"decimals"`
	Name        string         `json:"name"`
	Symbol      string         `json:"symbol"`
	Provisional bool           `json:"provisional"`
}

func (t TokenDescriptor) IsNative() bool {
	return t.Kind == TokenKindNative
}

// TokenRecord is the persisted memo of a resolved ERC-20 descriptor.
type TokenRecord struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ChainID   uint64    `gorm:"not null;uniqueIndex:idx_token_chain_address" json:"chain_id"`
	Address   string    `gorm:"not null;uniqueIndex:idx_token_chain_address" json:"address"`
	Decimals  uint8     `gorm:"not null" json:"decimals"`
	Name      string    `gorm:"not null" json:"name"`
	Symbol    string    `gorm:"not null" json:"symbol"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewTokenRecord builds the record for a resolved descriptor. Addresses are stored lowercase.
func NewTokenRecord(token TokenDescriptor) TokenRecord {
	return TokenRecord{
		ChainID:  token.ChainID,
		Address:  strings.ToLower(token.Address.Hex()),
		Decimals: token.Decimals,
		Name:     token.Name,
		Symbol:   token.Symbol,
	}
}

func (r TokenRecord) Descriptor() TokenDescriptor {
	return TokenDescriptor{
		Kind:     TokenKindERC20,
		ChainID:  r.ChainID,
		Address:  common.HexToAddress(r.Address),
		Decimals: r.Decimals,
		Name:     r.Name,
		Symbol:   r.Symbol,
	}
}
