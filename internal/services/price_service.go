package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/rxtech-lab/ido-dashboard/internal/constants"
	"github.com/rxtech-lab/ido-dashboard/internal/metrics"
	"github.com/rxtech-lab/ido-dashboard/internal/models"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// DefaultPriceNegativeTTL is how long a failed lookup is remembered.
const DefaultPriceNegativeTTL = 15 * time.Second

// PriceService resolves the USD price of a token.
type PriceService interface {
	// GetUSDPrice returns the USD price of token or nil when it is unavailable.
	// Lookup failures are never returned as errors.
	GetUSDPrice(ctx context.Context, token models.TokenDescriptor) *decimal.Decimal
}

type PriceServiceConfig struct {
	BaseURL  string
	APIKey   string
	CacheTTL time.Duration
	// NegativeTTL defaults to DefaultPriceNegativeTTL
	NegativeTTL time.Duration
	Client      *http.Client
	Clock       Clock
}

// priceEntry caches a price, or its absence when price is nil.
type priceEntry struct {
	price     *decimal.Decimal
	expiresAt time.Time
}

type priceService struct {
	chains ChainService
	config PriceServiceConfig
	log    *logrus.Entry

	mu    sync.Mutex
	cache map[string]priceEntry
}

func NewPriceService(chains ChainService, config PriceServiceConfig) PriceService {
	if config.Client == nil {
		config.Client = &http.Client{Timeout: 10 * time.Second}
	}
	if config.Clock == nil {
		config.Clock = SystemClock()
	}
	if config.NegativeTTL <= 0 {
		config.NegativeTTL = DefaultPriceNegativeTTL
	}
	config.BaseURL = strings.TrimRight(config.BaseURL, "/")
	return &priceService{
		chains: chains,
		config: config,
		log:    logrus.WithField("component", "price_service"),
		cache:  make(map[string]priceEntry),
	}
}

func (s *priceService) GetUSDPrice(ctx context.Context, token models.TokenDescriptor) *decimal.Decimal {
	if token.ChainID == constants.SepoliaChainID {
		metrics.PriceLookupsTotal.WithLabelValues("stub").Inc()
		price := decimal.NewFromInt(constants.SepoliaTokenPriceUSD)
		if token.IsNative() {
			price = decimal.NewFromInt(constants.SepoliaNativePriceUSD)
		}
		return &price
	}

	key := tokenKey(token.ChainID, token.Address)
	now := s.config.Clock.Now()
	s.mu.Lock()
	entry, ok := s.cache[key]
	s.mu.Unlock()
	if ok && now.Before(entry.expiresAt) {
		if entry.price == nil {
			metrics.PriceLookupsTotal.WithLabelValues("unavailable_cached").Inc()
			return nil
		}
		metrics.PriceLookupsTotal.WithLabelValues("cached").Inc()
		price := *entry.price
		return &price
	}

	price, err := s.fetch(ctx, token)
	if err != nil {
		metrics.PriceLookupsTotal.WithLabelValues("unavailable").Inc()
		s.log.WithFields(logrus.Fields{
			"chain_id": token.ChainID,
			"address":  token.Address.Hex(),
		}).WithError(err).Debug("price unavailable")
		// a cancelled caller says nothing about the price API
		if ctx.Err() == nil {
			s.store(key, priceEntry{expiresAt: now.Add(s.config.NegativeTTL)})
		}
		return nil
	}

	metrics.PriceLookupsTotal.WithLabelValues("fetched").Inc()
	cached := price
	s.store(key, priceEntry{price: &cached, expiresAt: now.Add(s.config.CacheTTL)})
	return &price
}

func (s *priceService) store(key string, entry priceEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache[key] = entry
}

func (s *priceService) fetch(ctx context.Context, token models.TokenDescriptor) (decimal.Decimal, error) {
	chain, err := s.chains.GetChainByNetworkID(fmt.Sprintf("%d", token.ChainID))
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to find chain %d: %w", token.ChainID, err)
	}

	var endpoint, id string
	if token.IsNative() {
		if chain.NativeCoinID == "" {
			return decimal.Zero, fmt.Errorf("no price id for the native currency of chain %d", token.ChainID)
		}
		id = chain.NativeCoinID
		endpoint = fmt.Sprintf("%s/simple/price?ids=%s&vs_currencies=usd", s.config.BaseURL, url.QueryEscape(id))
	} else {
		if chain.PricePlatformID == "" {
			return decimal.Zero, fmt.Errorf("no price platform for chain %d", token.ChainID)
		}
		id = strings.ToLower(token.Address.Hex())
		endpoint = fmt.Sprintf("%s/simple/token_price/%s?contract_addresses=%s&vs_currencies=usd",
			s.config.BaseURL, url.PathEscape(chain.PricePlatformID), id)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if s.config.APIKey != "" {
		req.Header.Set("x-cg-demo-api-key", s.config.APIKey)
	}

	resp, err := s.config.Client.Do(req)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to request price: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decimal.Zero, fmt.Errorf("price API returned status %d", resp.StatusCode)
	}

	var body map[string]map[string]decimal.Decimal
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return decimal.Zero, fmt.Errorf("failed to decode price response: %w", err)
	}

	for key, quote := range body {
		if !strings.EqualFold(key, id) {
			continue
		}
		usd, ok := quote["usd"]
		if !ok || usd.IsZero() {
			break
		}
		return usd, nil
	}
	return decimal.Zero, fmt.Errorf("no usd price for %s", id)
}
