package models

import "time"

type TransactionStatus string

type TransactionChainType string

type TransactionType string

const (
	TransactionChainTypeEthereum TransactionChainType = "ethereum"
)

// Lifecycle of a signing session. idle is the absence of an in-flight session.
const (
	TransactionStatusSubmitting TransactionStatus = "submitting"
	TransactionStatusConfirming TransactionStatus = "confirming"
	TransactionStatusConfirmed  TransactionStatus = "confirmed"
	TransactionStatusFailed     TransactionStatus = "failed"
)

const (
	TransactionTypeApprove TransactionType = "approve"
	TransactionTypeDeposit TransactionType = "deposit"
	TransactionTypeClaim   TransactionType = "claim"
)

// Actions of one group exclude each other while in flight.
const (
	ActionGroupFunding = "funding"
	ActionGroupClaim   = "claim"
)

// ActionGroup returns the in-flight exclusion group of t: approve and deposit share one, claim has its own.
func (t TransactionType) ActionGroup() string {
	if t == TransactionTypeClaim {
		return ActionGroupClaim
	}
	return ActionGroupFunding
}

// IsInFlight reports whether the session still blocks a new submission of the same action.
func (s TransactionStatus) IsInFlight() bool {
	return s == TransactionStatusSubmitting || s == TransactionStatusConfirming
}

func (s TransactionStatus) IsFinal() bool {
	return s == TransactionStatusConfirmed || s == TransactionStatusFailed
}

type TransactionDeployment struct {
	// Title is the title of the transaction used to display in the UI
	Title string `json:"title"`
	// Description is the description of the transaction used to display in the UI
	Description string `json:"description"`
	// Data is the transaction data included in the transaction body for wallet to sign
	Data string `json:"data"`
	// Value is the value of the transaction for wallet to sign (e.g. 100 WEI)
	Value string `json:"value"`
	// Receiver is the receiver of the transaction for wallet to sign (e.g. 0x1234567890123456789012345678901234567890)
	Receiver        string          `json:"receiver"`
	TransactionType TransactionType `json:"transaction_type"`
}

// TransactionSession tracks one approve/deposit/claim action from preparation to its on-chain outcome.
type TransactionSession struct {
	ID      string            `gorm:"primaryKey" json:"id"`
	Account string            `gorm:"index;not null" json:"account"`
	Action  TransactionType   `gorm:"index;not null" json:"action"`
	Status  TransactionStatus `gorm:"index;default:submitting" json:"status"`
	// ActionGroup backs the unique index over in-flight sessions, see Action.ActionGroup
	ActionGroup string `gorm:"index" json:"-"`

	TransactionChainType TransactionChainType `gorm:"not null" json:"chain_type"`
	Metadata             JSON                 `gorm:"type:text" json:"metadata"`

	// TransactionDeployments are list of the transactions that needs to be signed
	TransactionDeployments []TransactionDeployment `gorm:"serializer:json" json:"transaction_deployments"`

	ChainID uint  `gorm:"not null" json:"chain_id"`
	Chain   Chain `gorm:"foreignKey:ChainID;references:ID" json:"chain,omitempty"`

	TxHash string `json:"tx_hash,omitempty"`
	// Error holds the wallet or chain failure message verbatim
	Error string `gorm:"type:text" json:"error,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	ExpiresAt time.Time `json:"expires_at"`
}
