package server

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/rxtech-lab/ido-dashboard/internal/config"
	"github.com/rxtech-lab/ido-dashboard/internal/events"
	"github.com/rxtech-lab/ido-dashboard/internal/hooks"
	"github.com/rxtech-lab/ido-dashboard/internal/services"
	"github.com/sirupsen/logrus"
)

// Options overrides the collaborators that touch the outside world.
type Options struct {
	Backends  services.BackendProvider
	Publisher events.Publisher
	Clock     services.Clock
	// ReceiptPollInterval defaults to services.DefaultReceiptPollInterval
	ReceiptPollInterval time.Duration
}

// Services is the container shared by the HTTP API and the MCP server.
type Services struct {
	Config *config.Config
	DB     services.DBService

	Chains       services.ChainService
	Tokens       services.TokenService
	Prices       services.PriceService
	Sale         services.SaleService
	Evm          services.EvmService
	Transactions services.TransactionService
	Hooks        services.HookService

	ReceiptWatcher *services.ReceiptWatcher
	SaleWatcher    *services.SaleWatcher
	Publisher      events.Publisher
}

const defaultSQLiteFile = "ido-dashboard.db"

// OpenDatabase connects to Postgres when DATABASE_URL is set and to SQLite otherwise.
func OpenDatabase(cfg *config.Config) (services.DBService, error) {
	if cfg.DatabaseURL != "" {
		return services.NewPostgresDBService(cfg.DatabaseURL)
	}

	path := cfg.SQLitePath
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(home, defaultSQLiteFile)
	}
	return services.NewSqliteDBService(path)
}

func InitializeServices(cfg *config.Config, dbService services.DBService, opts Options) (*Services, error) {
	if opts.Backends == nil {
		opts.Backends = services.NewEthClientProvider()
	}
	if opts.Publisher == nil {
		opts.Publisher = events.NewNoopPublisher()
	}
	if opts.Clock == nil {
		opts.Clock = services.SystemClock()
	}

	db := dbService.GetDB()
	chainService := services.NewChainService(db)
	if err := chainService.SyncChains(cfg.ChainModels()); err != nil {
		return nil, fmt.Errorf("failed to sync chain registry: %w", err)
	}

	tokenService := services.NewTokenService(db, chainService, opts.Backends)
	priceService := services.NewPriceService(chainService, services.PriceServiceConfig{
		BaseURL:  cfg.PriceAPIBaseURL,
		APIKey:   cfg.CoinGeckoAPIKey,
		CacheTTL: cfg.PriceCacheTTL,
		Clock:    opts.Clock,
	})
	saleService := services.NewSaleService(chainService, tokenService, priceService, opts.Backends, services.SaleServiceConfig{
		SaleAddress: common.HexToAddress(cfg.SaleAddress),
		PoolID:      cfg.PoolID,
		Clock:       opts.Clock,
		Publisher:   opts.Publisher,
	})
	evmService := services.NewEvmService()
	txService := services.NewTransactionService(db, chainService, saleService, evmService, services.TransactionServiceConfig{
		Clock:     opts.Clock,
		Publisher: opts.Publisher,
	})
	hookService := services.NewHookService()
	receiptWatcher := services.NewReceiptWatcher(txService, hookService, opts.Backends, opts.ReceiptPollInterval)
	saleWatcher := services.NewSaleWatcher(saleService, cfg.PollInterval)
	saleWatcher.RegisterListener(receiptWatcher)

	return &Services{
		Config:         cfg,
		DB:             dbService,
		Chains:         chainService,
		Tokens:         tokenService,
		Prices:         priceService,
		Sale:           saleService,
		Evm:            evmService,
		Transactions:   txService,
		Hooks:          hookService,
		ReceiptWatcher: receiptWatcher,
		SaleWatcher:    saleWatcher,
		Publisher:      opts.Publisher,
	}, nil
}

func InitializeHooks(s *Services) services.Hook {
	return hooks.NewRefetchHook(s.Sale)
}

func RegisterHooks(hookService services.HookService, refetchHook services.Hook) {
	if err := hookService.AddHook(refetchHook); err != nil {
		logrus.WithError(err).Fatal("Failed to register refetch hook")
	}
}

// StartWorkers resumes the sessions left confirming by a previous run and starts the sale
// watcher. Call it after the hooks are registered.
func (s *Services) StartWorkers() {
	resumed, err := s.ReceiptWatcher.ResumePending()
	if err != nil {
		logrus.WithError(err).Warn("Failed to resume confirming sessions")
	} else if resumed > 0 {
		logrus.WithField("sessions", resumed).Info("Resumed confirming sessions")
	}
	s.SaleWatcher.Start()
}

// Close stops the background workers and releases the database and the event connection.
func (s *Services) Close() {
	s.SaleWatcher.Stop()
	s.ReceiptWatcher.Stop()
	s.Publisher.Close()
	if err := s.DB.Close(); err != nil {
		logrus.WithError(err).Warn("failed to close database")
	}
}
