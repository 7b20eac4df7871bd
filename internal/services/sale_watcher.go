package services

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

const DefaultPollInterval = 15 * time.Second

// TickListener runs after every sale refresh, whether or not the refresh succeeded.
type TickListener interface {
	OnTick(ctx context.Context)
}

// SaleWatcher periodically refreshes the shared pool info of the sale.
type SaleWatcher struct {
	sale     SaleService
	interval time.Duration
	log      *logrus.Entry

	mu        sync.Mutex
	listeners []TickListener
	cancel    context.CancelFunc
	done      chan struct{}
	isRunning bool
}

func NewSaleWatcher(sale SaleService, interval time.Duration) *SaleWatcher {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &SaleWatcher{
		sale:     sale,
		interval: interval,
		log:      logrus.WithField("component", "sale_watcher"),
	}
}

// Start refreshes immediately and then on every tick until Stop is called.
func (w *SaleWatcher) Start() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.isRunning {
		return
	}
	w.isRunning = true

	ctx, cancel := context.WithCancel(context.Background())
	w.cancel = cancel
	w.done = make(chan struct{})

	go func(done chan struct{}) {
		defer close(done)
		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()

		w.refresh(ctx)
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				w.refresh(ctx)
			}
		}
	}(w.done)

	w.log.WithField("interval", w.interval).Info("sale watcher started")
}

// RegisterListener adds a listener notified on every tick.
func (w *SaleWatcher) RegisterListener(listener TickListener) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.listeners = append(w.listeners, listener)
}

// Stop ends the loop and waits for an in-progress refresh to return.
func (w *SaleWatcher) Stop() {
	w.mu.Lock()
	if !w.isRunning {
		w.mu.Unlock()
		return
	}
	w.isRunning = false
	cancel, done := w.cancel, w.done
	w.mu.Unlock()

	cancel()
	<-done
	w.log.Info("sale watcher stopped")
}

func (w *SaleWatcher) refresh(ctx context.Context) {
	w.refreshSale(ctx)

	w.mu.Lock()
	listeners := append([]TickListener(nil), w.listeners...)
	w.mu.Unlock()
	for _, listener := range listeners {
		listener.OnTick(ctx)
	}
}

func (w *SaleWatcher) refreshSale(ctx context.Context) {
	if err := w.sale.RefetchPoolInfo(ctx); err != nil {
		w.log.WithError(err).Warn("failed to refresh pool info")
		return
	}
	// a snapshot without an account records status transitions
	if _, err := w.sale.Snapshot(ctx, nil); err != nil {
		w.log.WithError(err).Warn("failed to build sale snapshot")
	}
}
