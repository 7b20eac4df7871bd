package services

import (
	"github.com/rxtech-lab/ido-dashboard/internal/models"
	"github.com/rxtech-lab/ido-dashboard/internal/utils"
	"github.com/shopspring/decimal"
)

const unavailable = "-"

// SaleDisplay holds the rendered strings of a snapshot's sale-wide fields.
type SaleDisplay struct {
	LPTokenSymbol       string `json:"lp_token_symbol"`
	OfferingTokenSymbol string `json:"offering_token_symbol"`
	LPTokenUSD          string `json:"lp_token_usd"`
	OfferingTokenUSD    string `json:"offering_token_usd"`
	RaisingAmount       string `json:"raising_amount"`
	OfferingAmount      string `json:"offering_amount"`
	TotalAmount         string `json:"total_amount"`
	CapPerUser          string `json:"cap_per_user"`
	MinDepositAmount    string `json:"min_deposit_amount"`
	TotalTokensOffered  string `json:"total_tokens_offered"`
	Oversubscription    string `json:"oversubscription,omitempty"`
	SaleDuration        string `json:"sale_duration"`
	// TimeLeft is "Finishing in HH:MM" while the sale is in progress
	TimeLeft string `json:"time_left,omitempty"`
}

// UserDisplay holds the rendered strings of the account's position.
type UserDisplay struct {
	AmountPool       string `json:"amount_pool"`
	OfferingAmount   string `json:"offering_amount"`
	RefundingAmount  string `json:"refunding_amount"`
	TaxAmount        string `json:"tax_amount"`
	LPTokenBalance   string `json:"lp_token_balance"`
	LPTokenAllowance string `json:"lp_token_allowance"`
}

func formatAmount(amount *decimal.Decimal, token *models.TokenDescriptor, shorter bool) string {
	if amount == nil || token == nil {
		return unavailable
	}
	return utils.FormatTokenAmount(amount, token.Decimals, shorter)
}

func formatPrice(price *decimal.Decimal) string {
	if price == nil {
		return unavailable
	}
	return utils.FormatUSD(*price)
}

func symbol(token *models.TokenDescriptor) string {
	if token == nil {
		return unavailable
	}
	return token.Symbol
}

func DisplaySale(info models.ContractInfo) SaleDisplay {
	display := SaleDisplay{
		LPTokenSymbol:       symbol(info.LPToken),
		OfferingTokenSymbol: symbol(info.OfferingToken),
		LPTokenUSD:          formatPrice(info.LPTokenUSD),
		OfferingTokenUSD:    formatPrice(info.OfferingTokenUSD),
		RaisingAmount:       unavailable,
		OfferingAmount:      unavailable,
		TotalAmount:         unavailable,
		CapPerUser:          unavailable,
		MinDepositAmount:    formatAmount(info.MinDepositAmount, info.LPToken, false),
		TotalTokensOffered:  formatAmount(info.TotalTokensOffered, info.OfferingToken, true),
		SaleDuration:        info.SaleDurationHours,
	}
	if info.Pool != nil {
		display.RaisingAmount = formatAmount(info.Pool.RaisingAmount, info.LPToken, true)
		display.OfferingAmount = formatAmount(info.Pool.OfferingAmount, info.OfferingToken, true)
		display.TotalAmount = formatAmount(info.Pool.TotalAmount, info.LPToken, true)
		display.CapPerUser = formatAmount(info.Pool.CapPerUser, info.LPToken, false)
	}
	if info.OversubscriptionPercent != nil {
		display.Oversubscription = info.OversubscriptionPercent.String() + "%"
	}
	if info.TimeLeft != nil {
		display.TimeLeft = "Finishing in " + utils.FormatCountdown(info.TimeLeft.Hours, info.TimeLeft.Minutes)
	}
	return display
}

// DisplayUser renders the account's position. It is nil when no position was read.
func DisplayUser(info models.ContractInfo) *UserDisplay {
	if info.UserInfo == nil {
		return nil
	}
	return &UserDisplay{
		AmountPool:       formatAmount(info.UserInfo.AmountPool, info.LPToken, false),
		OfferingAmount:   formatAmount(info.UserInfo.OfferingAmount, info.OfferingToken, false),
		RefundingAmount:  formatAmount(info.UserInfo.RefundingAmount, info.LPToken, false),
		TaxAmount:        formatAmount(info.UserInfo.TaxAmount, info.LPToken, false),
		LPTokenBalance:   formatAmount(info.LPTokenBalance, info.LPToken, false),
		LPTokenAllowance: formatAmount(info.LPTokenAllowance, info.LPToken, true),
	}
}
