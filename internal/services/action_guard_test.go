package services_test

import (
	"testing"

	"github.com/rxtech-lab/ido-dashboard/internal/models"
	"github.com/rxtech-lab/ido-dashboard/internal/services"
	"github.com/rxtech-lab/ido-dashboard/internal/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(value string) *decimal.Decimal {
	d := decimal.RequireFromString(value)
	return &d
}

func TestDepositAction(t *testing.T) {
	account := testutil.UserAddress
	native := &models.TokenDescriptor{Kind: models.TokenKindNative, ChainID: testChainID, Decimals: 18, Symbol: "ETH"}
	provisional := &models.TokenDescriptor{Kind: models.TokenKindERC20, Decimals: 18, Symbol: "-", Name: "-", Provisional: true}

	tests := []struct {
		name     string
		input    services.DepositGuardInput
		expected services.ActionButton
	}{
		{
			name:     "no wallet",
			input:    services.DepositGuardInput{LPToken: usdc, Amount: "1", Balance: dec("10")},
			expected: services.ActionButton{Text: "Connect Wallet", Disabled: true},
		},
		{
			name:     "lp token unknown",
			input:    services.DepositGuardInput{Account: &account, Amount: "1", Balance: dec("10")},
			expected: services.ActionButton{Text: "Deposit", Disabled: true},
		},
		{
			name:     "lp token provisional",
			input:    services.DepositGuardInput{Account: &account, LPToken: provisional, Amount: "1", Balance: dec("10")},
			expected: services.ActionButton{Text: "Deposit", Disabled: true},
		},
		{
			name:     "empty amount",
			input:    services.DepositGuardInput{Account: &account, LPToken: usdc, Amount: "", Balance: dec("10")},
			expected: services.ActionButton{Text: "Invalid amount", Disabled: true},
		},
		{
			name:     "zero amount",
			input:    services.DepositGuardInput{Account: &account, LPToken: usdc, Amount: "0", Balance: dec("10")},
			expected: services.ActionButton{Text: "Invalid amount", Disabled: true},
		},
		{
			name:     "not a number",
			input:    services.DepositGuardInput{Account: &account, LPToken: usdc, Amount: "abc", Balance: dec("10")},
			expected: services.ActionButton{Text: "Invalid amount", Disabled: true},
		},
		{
			name:     "above balance",
			input:    services.DepositGuardInput{Account: &account, LPToken: usdc, Amount: "10.01", Balance: dec("10"), Allowance: dec("100")},
			expected: services.ActionButton{Text: "Insufficient balance", Disabled: true},
		},
		{
			name:     "unknown balance",
			input:    services.DepositGuardInput{Account: &account, LPToken: usdc, Amount: "1"},
			expected: services.ActionButton{Text: "Insufficient balance", Disabled: true},
		},
		{
			name:     "approve submitting",
			input:    services.DepositGuardInput{Account: &account, LPToken: usdc, Amount: "1", Balance: dec("10"), ApproveStatus: models.TransactionStatusSubmitting},
			expected: services.ActionButton{Text: "Approving...", Disabled: true},
		},
		{
			name:     "approve confirming",
			input:    services.DepositGuardInput{Account: &account, LPToken: usdc, Amount: "1", Balance: dec("10"), ApproveStatus: models.TransactionStatusConfirming},
			expected: services.ActionButton{Text: "Confirming...", Disabled: true},
		},
		{
			name:     "deposit submitting",
			input:    services.DepositGuardInput{Account: &account, LPToken: usdc, Amount: "1", Balance: dec("10"), Allowance: dec("10"), DepositStatus: models.TransactionStatusSubmitting},
			expected: services.ActionButton{Text: "Depositing...", Disabled: true},
		},
		{
			name:     "deposit confirming",
			input:    services.DepositGuardInput{Account: &account, LPToken: usdc, Amount: "1", Balance: dec("10"), Allowance: dec("10"), DepositStatus: models.TransactionStatusConfirming},
			expected: services.ActionButton{Text: "Confirming...", Disabled: true},
		},
		{
			name:     "allowance too low",
			input:    services.DepositGuardInput{Account: &account, LPToken: usdc, Amount: "5", Balance: dec("10"), Allowance: dec("4.999999")},
			expected: services.ActionButton{Text: "Approve USDC", Action: models.TransactionTypeApprove},
		},
		{
			name:     "allowance unknown",
			input:    services.DepositGuardInput{Account: &account, LPToken: usdc, Amount: "5", Balance: dec("10")},
			expected: services.ActionButton{Text: "Approve USDC", Action: models.TransactionTypeApprove},
		},
		{
			name:     "finished sessions do not block",
			input:    services.DepositGuardInput{Account: &account, LPToken: usdc, Amount: "5", Balance: dec("10"), Allowance: dec("5"), ApproveStatus: models.TransactionStatusConfirmed, DepositStatus: models.TransactionStatusFailed},
			expected: services.ActionButton{Text: "Deposit", Action: models.TransactionTypeDeposit},
		},
		{
			name:     "whole balance",
			input:    services.DepositGuardInput{Account: &account, LPToken: usdc, Amount: "10", Balance: dec("10"), Allowance: dec("10")},
			expected: services.ActionButton{Text: "Deposit", Action: models.TransactionTypeDeposit},
		},
		{
			name:     "native needs no allowance",
			input:    services.DepositGuardInput{Account: &account, LPToken: native, Amount: "0.5", Balance: dec("1")},
			expected: services.ActionButton{Text: "Deposit", Action: models.TransactionTypeDeposit},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, services.DepositAction(tt.input))
		})
	}
}

func TestClaimAction(t *testing.T) {
	position := func(offering string, claimed bool) *models.UserPosition {
		return &models.UserPosition{OfferingAmount: dec(offering), Claimed: claimed}
	}

	tests := []struct {
		name     string
		input    services.ClaimGuardInput
		expected services.ActionButton
	}{
		{
			name:     "sale running",
			input:    services.ClaimGuardInput{Status: models.SaleStatusInProgress, UserInfo: position("10", false)},
			expected: services.ActionButton{Text: "Claim", Disabled: true},
		},
		{
			name:     "no position",
			input:    services.ClaimGuardInput{Status: models.SaleStatusEnded},
			expected: services.ActionButton{Text: "Claim", Disabled: true},
		},
		{
			name:     "nothing to claim",
			input:    services.ClaimGuardInput{Status: models.SaleStatusEnded, UserInfo: position("0", false)},
			expected: services.ActionButton{Text: "Claim", Disabled: true},
		},
		{
			name:     "already claimed",
			input:    services.ClaimGuardInput{Status: models.SaleStatusEnded, UserInfo: position("10", true)},
			expected: services.ActionButton{Text: "Claimed", Disabled: true},
		},
		{
			name:     "submitting",
			input:    services.ClaimGuardInput{Status: models.SaleStatusEnded, UserInfo: position("10", false), ClaimStatus: models.TransactionStatusSubmitting},
			expected: services.ActionButton{Text: "Claiming...", Disabled: true},
		},
		{
			name:     "confirming",
			input:    services.ClaimGuardInput{Status: models.SaleStatusEnded, UserInfo: position("10", false), ClaimStatus: models.TransactionStatusConfirming},
			expected: services.ActionButton{Text: "Confirming...", Disabled: true},
		},
		{
			name:     "claimable",
			input:    services.ClaimGuardInput{Status: models.SaleStatusEnded, UserInfo: position("10", false)},
			expected: services.ActionButton{Text: "Claim", Action: models.TransactionTypeClaim},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, services.ClaimAction(tt.input))
		})
	}
}

func TestDepositEstimateUSD(t *testing.T) {
	estimate := services.DepositEstimateUSD("2.5", dec("3000"))
	require.NotNil(t, estimate)
	assert.Equal(t, "7500", estimate.String())

	assert.Nil(t, services.DepositEstimateUSD("2.5", nil))
	assert.Nil(t, services.DepositEstimateUSD("abc", dec("3000")))
}

func TestWalletAdvisory(t *testing.T) {
	assert.Empty(t, services.WalletAdvisory(false, "OKX", "MetaMask"))
	assert.Empty(t, services.WalletAdvisory(true, "", "MetaMask"))
	assert.Empty(t, services.WalletAdvisory(true, "OKX", "okx"))
	assert.Equal(t, "For the best experience, please use OKX Wallet.", services.WalletAdvisory(true, "OKX", "MetaMask"))
	assert.Equal(t, "For the best experience, please use OKX Wallet.", services.WalletAdvisory(true, "OKX", ""))
}
