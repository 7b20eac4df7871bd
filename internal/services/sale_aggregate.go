package services

import (
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/rxtech-lab/ido-dashboard/internal/constants"
	"github.com/rxtech-lab/ido-dashboard/internal/contracts"
	"github.com/rxtech-lab/ido-dashboard/internal/models"
	"github.com/rxtech-lab/ido-dashboard/internal/utils"
	"github.com/shopspring/decimal"
)

// Positions of the pool read group.
const (
	poolCallLPToken = iota
	poolCallOfferingToken
	poolCallStart
	poolCallEnd
	poolCallMinDeposit
	poolCallTotalOffered
	poolCallPoolInformation
)

// Positions of the user read group.
const (
	userCallInfo = iota
	userCallAmounts
	userCallCount
)

// PoolCalls is the pool read group of a sale.
func PoolCalls(sale common.Address, poolID uint64) []ContractCall {
	ido := contracts.MustIDOABI()
	pool := new(big.Int).SetUint64(poolID)
	return []ContractCall{
		poolCallLPToken:         {Contract: sale, ABI: ido, Method: contracts.MethodAddresses, Args: []interface{}{big.NewInt(constants.AddressSlotLPToken0)}},
		poolCallOfferingToken:   {Contract: sale, ABI: ido, Method: contracts.MethodAddresses, Args: []interface{}{big.NewInt(constants.AddressSlotOfferingToken)}},
		poolCallStart:           {Contract: sale, ABI: ido, Method: contracts.MethodStartTimestamp},
		poolCallEnd:             {Contract: sale, ABI: ido, Method: contracts.MethodEndTimestamp},
		poolCallMinDeposit:      {Contract: sale, ABI: ido, Method: contracts.MethodMinDepositAmounts, Args: []interface{}{pool}},
		poolCallTotalOffered:    {Contract: sale, ABI: ido, Method: contracts.MethodTotalTokensOffered},
		poolCallPoolInformation: {Contract: sale, ABI: ido, Method: contracts.MethodPoolInformation, Args: []interface{}{pool}},
	}
}

// UserCalls is the user read group of account in a sale.
func UserCalls(sale common.Address, account common.Address, poolID uint64) []ContractCall {
	ido := contracts.MustIDOABI()
	pools := []*big.Int{new(big.Int).SetUint64(poolID)}
	return []ContractCall{
		userCallInfo:    {Contract: sale, ABI: ido, Method: contracts.MethodViewUserInfo, Args: []interface{}{account, pools}},
		userCallAmounts: {Contract: sale, ABI: ido, Method: contracts.MethodViewUserAmounts, Args: []interface{}{account, pools}},
	}
}

// BalanceCalls reads the ERC-20 balance of account and its allowance to the sale.
func BalanceCalls(token common.Address, sale common.Address, account common.Address) []ContractCall {
	erc20 := contracts.MustERC20ABI()
	return []ContractCall{
		{Contract: token, ABI: erc20, Method: contracts.MethodBalanceOf, Args: []interface{}{account}},
		{Contract: token, ABI: erc20, Method: contracts.MethodAllowance, Args: []interface{}{account, sale}},
	}
}

// BalanceGroup is the raw LP token balance and allowance of an account.
// For the native currency Allowance is always nil.
type BalanceGroup struct {
	Balance   *big.Int
	Allowance *big.Int
}

// AggregateInput carries the raw read groups and resolved tokens of one snapshot.
type AggregateInput struct {
	ChainID     uint64
	SaleAddress common.Address
	PoolID      uint64
	Account     *common.Address
	Now         time.Time

	Pool    []CallResult
	User    []CallResult
	Balance *BalanceGroup

	LPToken          *models.TokenDescriptor
	OfferingToken    *models.TokenDescriptor
	LPTokenUSD       *decimal.Decimal
	OfferingTokenUSD *decimal.Decimal
}

// PoolTokenAddresses returns the LP and offering token addresses of a pool read group.
func PoolTokenAddresses(pool []CallResult) (lpToken, offeringToken *common.Address) {
	return resultAddress(pool, poolCallLPToken), resultAddress(pool, poolCallOfferingToken)
}

// AggregateContractInfo derives the sale snapshot from raw reads. It never fails: any value
// whose read failed, or whose token is unknown, is left nil.
func AggregateContractInfo(in AggregateInput) models.ContractInfo {
	info := models.ContractInfo{
		ChainID:          in.ChainID,
		SaleAddress:      in.SaleAddress,
		PoolID:           in.PoolID,
		Account:          in.Account,
		LPToken:          in.LPToken,
		OfferingToken:    in.OfferingToken,
		LPTokenUSD:       in.LPTokenUSD,
		OfferingTokenUSD: in.OfferingTokenUSD,
	}

	info.StartTimestamp = resultUint64(in.Pool, poolCallStart)
	info.EndTimestamp = resultUint64(in.Pool, poolCallEnd)
	info.Status, info.StatusFromTimestamps = SaleStatusAt(in.Now, info.StartTimestamp, info.EndTimestamp)
	info.SaleDurationHours = utils.FormatSaleDuration(info.StartTimestamp, info.EndTimestamp)
	if info.Status == models.SaleStatusInProgress {
		hours, minutes := utils.TimeLeft(in.Now, time.Unix(int64(*info.EndTimestamp), 0))
		info.TimeLeft = &models.Countdown{Hours: hours, Minutes: minutes}
	}

	info.MinDepositAmount = scaleWith(resultBig(in.Pool, poolCallMinDeposit), in.LPToken)
	info.TotalTokensOffered = scaleWith(resultBig(in.Pool, poolCallTotalOffered), in.OfferingToken)

	if pool := resultPoolInfo(in.Pool); pool != nil {
		info.Pool = &models.PoolView{
			RaisingAmount:    scaleWith(pool.RaisingAmountPool, in.LPToken),
			OfferingAmount:   scaleWith(pool.OfferingAmountPool, in.OfferingToken),
			CapPerUser:       scaleWith(pool.CapPerUserInLP, in.LPToken),
			HasTax:           pool.HasTax,
			FlatTaxRate:      pool.FlatTaxRate,
			TotalAmount:      scaleWith(pool.TotalAmountPool, in.LPToken),
			SumTaxesOverflow: pool.SumTaxesOverflow,
		}
		info.OversubscriptionPercent = OversubscriptionPercent(pool.TotalAmountPool, pool.RaisingAmountPool)
		info.Oversubscribed = info.OversubscriptionPercent != nil
	}

	if in.Account != nil {
		info.UserInfo = userPosition(in.User, in.LPToken, in.OfferingToken)
		if in.Balance != nil {
			info.LPTokenBalance = scaleWith(in.Balance.Balance, in.LPToken)
			info.LPTokenAllowance = scaleWith(in.Balance.Allowance, in.LPToken)
		}
	}

	return info
}

// SaleStatusAt derives the sale status at now. Missing or zero timestamps fall back to
// not_started and report false.
func SaleStatusAt(now time.Time, start, end *uint64) (models.SaleStatus, bool) {
	if start == nil || end == nil || *start == 0 || *end == 0 {
		return models.SaleStatusNotStarted, false
	}
	current := uint64(0)
	if now.Unix() > 0 {
		current = uint64(now.Unix())
	}
	switch {
	case current < *start:
		return models.SaleStatusNotStarted, true
	case current > *end:
		return models.SaleStatusEnded, true
	default:
		return models.SaleStatusInProgress, true
	}
}

// OversubscriptionPercent returns floor(deposited * 100 / raising) when deposited exceeds a
// positive raising amount, nil otherwise.
func OversubscriptionPercent(deposited, raising *big.Int) *big.Int {
	if deposited == nil || raising == nil || raising.Sign() <= 0 || deposited.Cmp(raising) <= 0 {
		return nil
	}
	percent := new(big.Int).Mul(deposited, big.NewInt(100))
	return percent.Quo(percent, raising)
}

func userPosition(results []CallResult, lpToken, offeringToken *models.TokenDescriptor) *models.UserPosition {
	if len(results) != userCallCount || !results[userCallInfo].OK() || !results[userCallAmounts].OK() {
		return nil
	}

	info := results[userCallInfo].Values
	if len(info) < 2 {
		return nil
	}
	amounts, ok := info[0].([]*big.Int)
	if !ok || len(amounts) == 0 {
		return nil
	}
	claimed, ok := info[1].([]bool)
	if !ok || len(claimed) == 0 {
		return nil
	}
	offering, ok := results[userCallAmounts].Values[0].([][3]*big.Int)
	if !ok || len(offering) == 0 {
		return nil
	}

	return &models.UserPosition{
		AmountPool:      scaleWith(amounts[0], lpToken),
		Claimed:         claimed[0],
		OfferingAmount:  scaleWith(offering[0][0], offeringToken),
		RefundingAmount: scaleWith(offering[0][1], lpToken),
		TaxAmount:       scaleWith(offering[0][2], lpToken),
	}
}

func scaleWith(raw *big.Int, token *models.TokenDescriptor) *decimal.Decimal {
	if token == nil {
		return nil
	}
	return utils.ScaleAmount(raw, token.Decimals)
}

func resultValue(results []CallResult, index int) interface{} {
	if index >= len(results) || !results[index].OK() {
		return nil
	}
	return results[index].Values[0]
}

func resultBig(results []CallResult, index int) *big.Int {
	value, _ := resultValue(results, index).(*big.Int)
	return value
}

func resultUint64(results []CallResult, index int) *uint64 {
	value := resultBig(results, index)
	if value == nil || !value.IsUint64() {
		return nil
	}
	v := value.Uint64()
	return &v
}

func resultAddress(results []CallResult, index int) *common.Address {
	value, ok := resultValue(results, index).(common.Address)
	if !ok {
		return nil
	}
	return &value
}

func resultPoolInfo(results []CallResult) *models.PoolInfo {
	if poolCallPoolInformation >= len(results) || !results[poolCallPoolInformation].OK() {
		return nil
	}
	values := results[poolCallPoolInformation].Values
	if len(values) != 7 {
		return nil
	}
	pool := &models.PoolInfo{}
	var ok bool
	if pool.RaisingAmountPool, ok = values[0].(*big.Int); !ok {
		return nil
	}
	if pool.OfferingAmountPool, ok = values[1].(*big.Int); !ok {
		return nil
	}
	if pool.CapPerUserInLP, ok = values[2].(*big.Int); !ok {
		return nil
	}
	if pool.HasTax, ok = values[3].(bool); !ok {
		return nil
	}
	if pool.FlatTaxRate, ok = values[4].(*big.Int); !ok {
		return nil
	}
	if pool.TotalAmountPool, ok = values[5].(*big.Int); !ok {
		return nil
	}
	if pool.SumTaxesOverflow, ok = values[6].(*big.Int); !ok {
		return nil
	}
	return pool
}
