package hooks

import (
	"context"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/rxtech-lab/ido-dashboard/internal/models"
	"github.com/rxtech-lab/ido-dashboard/internal/services"
	"github.com/sirupsen/logrus"
)

// Refetcher is the part of the sale store refreshed after a confirmed transaction.
type Refetcher interface {
	RefetchPoolInfo(ctx context.Context) error
	RefetchUserInfo(ctx context.Context, account common.Address) error
	RefetchUserBalance(ctx context.Context, account common.Address) error
}

type RefetchHook struct {
	sale Refetcher
	log  *logrus.Entry
}

// CanHandle implements Hook.
func (r *RefetchHook) CanHandle(txType models.TransactionType) bool {
	switch txType {
	case models.TransactionTypeApprove, models.TransactionTypeDeposit, models.TransactionTypeClaim:
		return true
	}
	return false
}

// OnTransactionConfirmed implements Hook.
// Approvals only change the allowance; deposits and claims refresh balance, user info and pool
// info in that order. Every refresh runs even when an earlier one fails.
func (r *RefetchHook) OnTransactionConfirmed(ctx context.Context, txType models.TransactionType, txHash string, session models.TransactionSession) error {
	if !common.IsHexAddress(session.Account) {
		return fmt.Errorf("invalid session account: %s", session.Account)
	}
	account := common.HexToAddress(session.Account)

	r.log.WithFields(logrus.Fields{
		"action":  txType,
		"tx_hash": txHash,
		"account": account.Hex(),
	}).Debug("refetching sale state")

	var errs []error
	if err := r.sale.RefetchUserBalance(ctx, account); err != nil {
		errs = append(errs, fmt.Errorf("failed to refetch user balance: %w", err))
	}
	if txType == models.TransactionTypeApprove {
		return errors.Join(errs...)
	}

	if err := r.sale.RefetchUserInfo(ctx, account); err != nil {
		errs = append(errs, fmt.Errorf("failed to refetch user info: %w", err))
	}
	if err := r.sale.RefetchPoolInfo(ctx); err != nil {
		errs = append(errs, fmt.Errorf("failed to refetch pool info: %w", err))
	}
	return errors.Join(errs...)
}

func NewRefetchHook(sale Refetcher) services.Hook {
	return &RefetchHook{
		sale: sale,
		log:  logrus.WithField("component", "refetch_hook"),
	}
}
