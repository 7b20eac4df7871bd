package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rxtech-lab/ido-dashboard/internal/constants"
	"github.com/rxtech-lab/ido-dashboard/internal/models"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

const (
	DefaultPollInterval    = 15 * time.Second
	DefaultPriceCacheTTL   = 60 * time.Second
	DefaultPriceAPIBaseURL = "https://api.coingecko.com/api/v3"
	DefaultPort            = 8080
	DefaultLogLevel        = "info"
)

// NativeCurrencyConfig describes the chain's native coin.
type NativeCurrencyConfig struct {
	Name     string `yaml:"name" validate:"required"`
	Symbol   string `yaml:"symbol" validate:"required"`
	Decimals uint8  `yaml:"decimals" validate:"required"`
}

// ChainConfig is one entry of the chain registry.
type ChainConfig struct {
	ChainID         uint64               `yaml:"chainId" validate:"required"`
	Name            string               `yaml:"name" validate:"required"`
	RPC             string               `yaml:"rpc" validate:"required,url"`
	NativeCurrency  NativeCurrencyConfig `yaml:"nativeCurrency"`
	PricePlatformID string               `yaml:"pricePlatformId"`
	NativeCoinID    string               `yaml:"nativeCoinId"`
}

// ChainsFile is the layout of the optional CHAINS_FILE registry.
type ChainsFile struct {
	Chains []ChainConfig `yaml:"chains" validate:"required,min=1,dive"`
}

// Config is the runtime configuration of the dashboard.
type Config struct {
	WalletConnectProjectID string
	CoinGeckoAPIKey        string

	SaleAddress string `validate:"required,eth_addr"`
	ChainID     uint64 `validate:"required"`
	RPCURL      string `validate:"omitempty,url"`
	PoolID      uint64

	PollInterval    time.Duration `validate:"required"`
	PriceCacheTTL   time.Duration `validate:"required"`
	PriceAPIBaseURL string        `validate:"required,url"`

	// Wallet-brand advisory, shown only in production
	PreferredWallet string
	Production      bool

	ChainsFile  string
	DatabaseURL string
	SQLitePath  string
	NATSURL     string
	Port        int    `validate:"min=0,max=65535"`
	LogLevel    string `validate:"oneof=trace debug info warn error"`
	BaseURL     string `validate:"omitempty,url"`

	Chains []ChainConfig `validate:"required,min=1,dive"`
}

// DefaultChains is the registry used when no CHAINS_FILE is configured.
func DefaultChains() []ChainConfig {
	return []ChainConfig{
		{
			ChainID:         1,
			Name:            "Ethereum",
			RPC:             "https://ethereum-rpc.publicnode.com",
			NativeCurrency:  NativeCurrencyConfig{Name: "Ether", Symbol: "ETH", Decimals: 18},
			PricePlatformID: "ethereum",
			NativeCoinID:    "ethereum",
		},
		{
			ChainID:         constants.SepoliaChainID,
			Name:            "Sepolia",
			RPC:             "https://ethereum-sepolia-rpc.publicnode.com",
			NativeCurrency:  NativeCurrencyConfig{Name: "Sepolia Ether", Symbol: "ETH", Decimals: 18},
			PricePlatformID: "ethereum",
			NativeCoinID:    "ethereum",
		},
		{
			ChainID:         56,
			Name:            "BNB Smart Chain",
			RPC:             "https://bsc-dataseed.binance.org",
			NativeCurrency:  NativeCurrencyConfig{Name: "BNB", Symbol: "BNB", Decimals: 18},
			PricePlatformID: "binance-smart-chain",
			NativeCoinID:    "binancecoin",
		},
	}
}

// Load reads the configuration from the environment. A .env file should already have been
// loaded by the caller.
func Load() (*Config, error) {
	cfg := &Config{
		WalletConnectProjectID: os.Getenv("WALLET_CONNECT_PROJECT_ID"),
		CoinGeckoAPIKey:        os.Getenv("COINGECKO_API_KEY"),
		SaleAddress:            os.Getenv("IDO_CONTRACT_ADDRESS"),
		RPCURL:                 os.Getenv("RPC_URL"),
		PriceAPIBaseURL:        envOrDefault("PRICE_API_BASE_URL", DefaultPriceAPIBaseURL),
		PreferredWallet:        os.Getenv("PREFERRED_WALLET"),
		ChainsFile:             os.Getenv("CHAINS_FILE"),
		DatabaseURL:            os.Getenv("DATABASE_URL"),
		SQLitePath:             os.Getenv("SQLITE_PATH"),
		NATSURL:                os.Getenv("NATS_URL"),
		LogLevel:               strings.ToLower(envOrDefault("LOG_LEVEL", DefaultLogLevel)),
		BaseURL:                os.Getenv("BASE_URL"),
	}

	var err error
	if cfg.ChainID, err = parseUint("CHAIN_ID", constants.SepoliaChainID); err != nil {
		return nil, err
	}
	if cfg.PoolID, err = parseUint("POOL_ID", constants.DefaultPoolID); err != nil {
		return nil, err
	}
	if cfg.PollInterval, err = parseDuration("POLL_INTERVAL", DefaultPollInterval); err != nil {
		return nil, err
	}
	if cfg.PriceCacheTTL, err = parseDuration("PRICE_CACHE_TTL", DefaultPriceCacheTTL); err != nil {
		return nil, err
	}
	if value := os.Getenv("PRODUCTION"); value != "" {
		if cfg.Production, err = strconv.ParseBool(value); err != nil {
			return nil, fmt.Errorf("invalid PRODUCTION: %w", err)
		}
	}
	port, err := parseUint("PORT", DefaultPort)
	if err != nil {
		return nil, err
	}
	cfg.Port = int(port)

	cfg.Chains = DefaultChains()
	if cfg.ChainsFile != "" {
		if cfg.Chains, err = LoadChainsFile(cfg.ChainsFile); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks field constraints and that the configured chain is in the registry.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if _, ok := c.ActiveChain(); !ok {
		return fmt.Errorf("invalid configuration: chain %d is not in the chain registry", c.ChainID)
	}
	return nil
}

// LoadChainsFile reads a YAML chain registry.
func LoadChainsFile(path string) ([]ChainConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read chains file: %w", err)
	}

	var file ChainsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse chains file: %w", err)
	}
	if err := validator.New().Struct(file); err != nil {
		return nil, fmt.Errorf("invalid chains file: %w", err)
	}
	return file.Chains, nil
}

// ActiveChain returns the registry entry of the configured chain.
func (c *Config) ActiveChain() (ChainConfig, bool) {
	for _, chain := range c.Chains {
		if chain.ChainID == c.ChainID {
			return chain, true
		}
	}
	return ChainConfig{}, false
}

// ChainModels converts the registry into chain rows, marking the configured chain active.
// RPC_URL overrides the RPC endpoint of the configured chain.
func (c *Config) ChainModels() []models.Chain {
	chains := make([]models.Chain, 0, len(c.Chains))
	for _, chain := range c.Chains {
		rpc := chain.RPC
		if chain.ChainID == c.ChainID && c.RPCURL != "" {
			rpc = c.RPCURL
		}
		chains = append(chains, models.Chain{
			ChainType:       models.TransactionChainTypeEthereum,
			RPC:             rpc,
			NetworkID:       strconv.FormatUint(chain.ChainID, 10),
			Name:            chain.Name,
			IsActive:        chain.ChainID == c.ChainID,
			NativeName:      chain.NativeCurrency.Name,
			NativeSymbol:    chain.NativeCurrency.Symbol,
			NativeDecimals:  chain.NativeCurrency.Decimals,
			PricePlatformID: chain.PricePlatformID,
			NativeCoinID:    chain.NativeCoinID,
		})
	}
	return chains
}

// ConfigureLogging applies the configured level to the standard logrus logger.
func (c *Config) ConfigureLogging() {
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)
	if c.Production {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
}

func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func parseUint(key string, fallback uint64) (uint64, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	parsed, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return parsed, nil
}

// parseDuration accepts Go durations ("15s") or a bare number of seconds.
func parseDuration(key string, fallback time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	if seconds, err := strconv.ParseUint(value, 10, 64); err == nil {
		return time.Duration(seconds) * time.Second, nil
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return parsed, nil
}
