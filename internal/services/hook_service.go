package services

import (
	"context"
	"sync"

	"github.com/rxtech-lab/ido-dashboard/internal/models"
)

type HookService interface {
	AddHook(hook Hook) error
	OnTransactionConfirmed(ctx context.Context, txType models.TransactionType, txHash string, session models.TransactionSession) error
}

type hookService struct {
	mu    sync.RWMutex
	hooks []Hook
}

func NewHookService() HookService {
	return &hookService{
		hooks: []Hook{},
	}
}

func (h *hookService) AddHook(hook Hook) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.hooks = append(h.hooks, hook)
	return nil
}

// OnTransactionConfirmed runs the hooks handling txType in registration order and stops at the first error.
func (h *hookService) OnTransactionConfirmed(ctx context.Context, txType models.TransactionType, txHash string, session models.TransactionSession) error {
	h.mu.RLock()
	hooks := append([]Hook(nil), h.hooks...)
	h.mu.RUnlock()

	for _, hook := range hooks {
		if hook.CanHandle(txType) {
			if err := hook.OnTransactionConfirmed(ctx, txType, txHash, session); err != nil {
				return err
			}
		}
	}
	return nil
}
