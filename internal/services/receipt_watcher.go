package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/rxtech-lab/ido-dashboard/internal/models"
	"github.com/sirupsen/logrus"
)

const (
	DefaultReceiptPollInterval = 2 * time.Second
	// RevertedMessage is the session error of a mined transaction with a failed status.
	RevertedMessage = "transaction reverted"
)

// ReceiptWatcher follows confirming sessions until their transaction is mined.
type ReceiptWatcher struct {
	transactions TransactionService
	hooks        HookService
	backends     BackendProvider
	interval     time.Duration
	log          *logrus.Entry

	mu       sync.Mutex
	watching map[string]struct{}

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewReceiptWatcher(transactions TransactionService, hooks HookService, backends BackendProvider, interval time.Duration) *ReceiptWatcher {
	if interval <= 0 {
		interval = DefaultReceiptPollInterval
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &ReceiptWatcher{
		transactions: transactions,
		hooks:        hooks,
		backends:     backends,
		interval:     interval,
		log:          logrus.WithField("component", "receipt_watcher"),
		watching:     make(map[string]struct{}),
		ctx:          ctx,
		cancel:       cancel,
	}
}

// Watch polls the receipt of the session's transaction until it is mined or ctx is done.
// A successful transaction confirms the session and runs the confirmation hooks; a reverted
// one fails the session.
func (w *ReceiptWatcher) Watch(ctx context.Context, session models.TransactionSession) error {
	if session.TxHash == "" {
		return fmt.Errorf("session %s has no transaction hash", session.ID)
	}
	backend, err := w.backends(session.Chain)
	if err != nil {
		return err
	}
	hash := common.HexToHash(session.TxHash)
	log := w.log.WithFields(logrus.Fields{
		"session_id": session.ID,
		"action":     session.Action,
		"tx_hash":    session.TxHash,
	})

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		receipt, err := backend.TransactionReceipt(ctx, hash)
		switch {
		case err == nil:
			return w.settle(ctx, session, receipt, log)
		case errors.Is(err, ethereum.NotFound):
		default:
			log.WithError(err).Warn("failed to get transaction receipt")
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (w *ReceiptWatcher) settle(ctx context.Context, session models.TransactionSession, receipt *types.Receipt, log *logrus.Entry) error {
	if receipt.Status != types.ReceiptStatusSuccessful {
		log.Warn("transaction reverted")
		_, err := w.transactions.MarkFailed(session.ID, RevertedMessage)
		return err
	}

	confirmed, err := w.transactions.MarkConfirmed(session.ID)
	if err != nil {
		return err
	}
	log.WithField("block", receipt.BlockNumber).Info("transaction confirmed")

	if err := w.hooks.OnTransactionConfirmed(ctx, confirmed.Action, session.TxHash, *confirmed); err != nil {
		log.WithError(err).Error("confirmation hook failed")
		return fmt.Errorf("failed to run confirmation hooks: %w", err)
	}
	return nil
}

// WatchAsync watches session in the background until Stop is called. A session already
// watched is skipped; it can be watched again once its watch returned.
func (w *ReceiptWatcher) WatchAsync(session models.TransactionSession) {
	w.mu.Lock()
	if _, ok := w.watching[session.ID]; ok {
		w.mu.Unlock()
		return
	}
	w.watching[session.ID] = struct{}{}
	w.mu.Unlock()

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		defer func() {
			w.mu.Lock()
			delete(w.watching, session.ID)
			w.mu.Unlock()
		}()
		if err := w.Watch(w.ctx, session); err != nil && !errors.Is(err, context.Canceled) {
			w.log.WithField("session_id", session.ID).WithError(err).Warn("stopped watching transaction")
		}
	}()
}

// ResumePending watches every confirming session that is not watched yet and returns how
// many were listed. Sessions left confirming by a restart or a failed watch are settled this way.
func (w *ReceiptWatcher) ResumePending() (int, error) {
	sessions, err := w.transactions.ListConfirming()
	if err != nil {
		return 0, fmt.Errorf("failed to list confirming sessions: %w", err)
	}
	for _, session := range sessions {
		w.WatchAsync(session)
	}
	return len(sessions), nil
}

// OnTick resumes pending sessions on every sale watcher tick.
func (w *ReceiptWatcher) OnTick(ctx context.Context) {
	if _, err := w.ResumePending(); err != nil {
		w.log.WithError(err).Warn("failed to resume confirming sessions")
	}
}

// Stop cancels every background watch and waits for them to return.
func (w *ReceiptWatcher) Stop() {
	w.cancel()
	w.wg.Wait()
}
