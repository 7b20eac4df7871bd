package models

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
)

type SaleStatus string

const (
	SaleStatusNotStarted SaleStatus = "not_started"
	SaleStatusInProgress SaleStatus = "in_progress"
	SaleStatusEnded      SaleStatus = "ended"
)

// PoolInfo is the raw _poolInformation tuple of one pool.
type PoolInfo struct {
	RaisingAmountPool  *big.Int
	OfferingAmountPool *big.Int
	CapPerUserInLP     *big.Int
	HasTax             bool
	FlatTaxRate        *big.Int
	TotalAmountPool    *big.Int
	SumTaxesOverflow   *big.Int
}

// PoolView is PoolInfo scaled by the LP and offering token decimals.
// FlatTaxRate and SumTaxesOverflow are kept unscaled.
type PoolView struct {
	RaisingAmount    *decimal.Decimal `json:"raising_amount"`
	OfferingAmount   *decimal.Decimal `json:"offering_amount"`
	CapPerUser       *decimal.Decimal `json:"cap_per_user"`
	HasTax           bool             `json:"has_tax"`
	FlatTaxRate      *big.Int         `json:"flat_tax_rate"`
	TotalAmount      *decimal.Decimal `json:"total_amount"`
	SumTaxesOverflow *big.Int         `json:"sum_taxes_overflow"`
}

// UserPosition is the connected account's position in the pool.
type UserPosition struct {
	AmountPool      *decimal.Decimal `json:"amount_pool"`
	Claimed         bool             `json:"claimed"`
	OfferingAmount  *decimal.Decimal `json:"offering_amount"`
	RefundingAmount *decimal.Decimal `json:"refunding_amount"`
	TaxAmount       *decimal.Decimal `json:"tax_amount"`
}

// Countdown is the time left until the sale ends.
type Countdown struct {
	Hours   int64 `json:"hours"`
	Minutes int64 `json:"minutes"`
}

// ContractInfo is one consistent snapshot of the sale and the connected account.
// Fields are nil when the underlying read failed or a token descriptor is missing.
type ContractInfo struct {
	ChainID     uint64          `json:"chain_id"`
	SaleAddress common.Address  `json:"sale_address"`
	PoolID      uint64          `json:"pool_id"`
	Account     *common.Address `json:"account,omitempty"`

	LPToken          *TokenDescriptor `json:"lp_token"`
	OfferingToken    *TokenDescriptor `json:"offering_token"`
	LPTokenUSD       *decimal.Decimal `json:"lp_token_usd"`
	OfferingTokenUSD *decimal.Decimal `json:"offering_token_usd"`

	StartTimestamp *uint64    `json:"start_timestamp"`
	EndTimestamp   *uint64    `json:"end_timestamp"`
	Status         SaleStatus `json:"status"`
	// StatusFromTimestamps is false when Status is the not_started fallback for missing timestamps.
	StatusFromTimestamps bool `json:"status_from_timestamps"`

	MinDepositAmount        *decimal.Decimal `json:"min_deposit_amount"`
	TotalTokensOffered      *decimal.Decimal `json:"total_tokens_offered"`
	Pool                    *PoolView        `json:"pool"`
	Oversubscribed          bool             `json:"oversubscribed"`
	OversubscriptionPercent *big.Int         `json:"oversubscription_percent"`
	SaleDurationHours       string           `json:"sale_duration"`
	TimeLeft                *Countdown       `json:"time_left"`

	UserInfo         *UserPosition    `json:"user_info"`
	LPTokenBalance   *decimal.Decimal `json:"lp_token_balance"`
	LPTokenAllowance *decimal.Decimal `json:"lp_token_allowance"`
}
