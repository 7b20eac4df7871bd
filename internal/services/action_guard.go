package services

import (
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/rxtech-lab/ido-dashboard/internal/models"
	"github.com/rxtech-lab/ido-dashboard/internal/utils"
	"github.com/shopspring/decimal"
)

// ActionButton is the state of an action control. Action is empty when nothing can be submitted.
type ActionButton struct {
	Text     string                 `json:"text"`
	Disabled bool                   `json:"disabled"`
	Action   models.TransactionType `json:"action,omitempty"`
}

func disabled(text string) ActionButton {
	return ActionButton{Text: text, Disabled: true}
}

type DepositGuardInput struct {
	Account   *common.Address
	LPToken   *models.TokenDescriptor
	Amount    string
	Balance   *decimal.Decimal
	Allowance *decimal.Decimal
	// Statuses of the account's in-flight approve and deposit sessions, empty when idle
	ApproveStatus models.TransactionStatus
	DepositStatus models.TransactionStatus
}

// DepositAction decides the deposit control. Checks apply in order: wallet connected, LP token
// resolved, amount valid, amount within balance, no approve or deposit in flight, and for an
// ERC-20 LP token an allowance covering the amount.
func DepositAction(in DepositGuardInput) ActionButton {
	if in.Account == nil {
		return disabled("Connect Wallet")
	}
	if in.LPToken == nil || in.LPToken.Provisional {
		return disabled("Deposit")
	}
	amount, err := utils.ParseAmount(in.Amount)
	if err != nil {
		return disabled("Invalid amount")
	}
	if in.Balance == nil || amount.GreaterThan(*in.Balance) {
		return disabled("Insufficient balance")
	}

	switch in.ApproveStatus {
	case models.TransactionStatusSubmitting:
		return disabled("Approving...")
	case models.TransactionStatusConfirming:
		return disabled("Confirming...")
	}
	switch in.DepositStatus {
	case models.TransactionStatusSubmitting:
		return disabled("Depositing...")
	case models.TransactionStatusConfirming:
		return disabled("Confirming...")
	}

	if !in.LPToken.IsNative() && (in.Allowance == nil || in.Allowance.LessThan(amount)) {
		return ActionButton{Text: "Approve " + in.LPToken.Symbol, Action: models.TransactionTypeApprove}
	}
	return ActionButton{Text: "Deposit", Action: models.TransactionTypeDeposit}
}

type ClaimGuardInput struct {
	Status      models.SaleStatus
	UserInfo    *models.UserPosition
	ClaimStatus models.TransactionStatus
}

// ClaimAction decides the claim control. Claiming needs an ended sale and an unclaimed
// positive offering amount.
func ClaimAction(in ClaimGuardInput) ActionButton {
	if in.Status != models.SaleStatusEnded {
		return disabled("Claim")
	}
	if in.UserInfo == nil || in.UserInfo.OfferingAmount == nil || !in.UserInfo.OfferingAmount.IsPositive() {
		return disabled("Claim")
	}
	if in.UserInfo.Claimed {
		return disabled("Claimed")
	}
	switch in.ClaimStatus {
	case models.TransactionStatusSubmitting:
		return disabled("Claiming...")
	case models.TransactionStatusConfirming:
		return disabled("Confirming...")
	}
	return ActionButton{Text: "Claim", Action: models.TransactionTypeClaim}
}

// DepositEstimateUSD values amount at the LP token price. It is nil when either is unknown.
func DepositEstimateUSD(amount string, lpTokenUSD *decimal.Decimal) *decimal.Decimal {
	if lpTokenUSD == nil {
		return nil
	}
	value, err := utils.ParseAmount(amount)
	if err != nil {
		return nil
	}
	estimate := value.Mul(*lpTokenUSD)
	return &estimate
}

// WalletAdvisory returns a non-blocking notice when, in production, the client's wallet is not
// the preferred one. It is empty otherwise.
func WalletAdvisory(production bool, preferredWallet, clientWallet string) string {
	if !production || preferredWallet == "" {
		return ""
	}
	if strings.EqualFold(strings.TrimSpace(clientWallet), preferredWallet) {
		return ""
	}
	return "For the best experience, please use " + preferredWallet + " Wallet."
}
