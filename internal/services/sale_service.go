package services

import (
	"context"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/rxtech-lab/ido-dashboard/internal/events"
	"github.com/rxtech-lab/ido-dashboard/internal/metrics"
	"github.com/rxtech-lab/ido-dashboard/internal/models"
	"github.com/rxtech-lab/ido-dashboard/internal/utils"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// SaleService keeps the last raw reads of the sale and derives snapshots from them.
type SaleService interface {
	SaleAddress() common.Address
	PoolID() uint64
	// Snapshot returns the sale as seen by account (nil when no wallet is connected).
	// Read groups never fetched before are fetched first.
	Snapshot(ctx context.Context, account *common.Address) (models.ContractInfo, error)
	RefetchPoolInfo(ctx context.Context) error
	RefetchUserInfo(ctx context.Context, account common.Address) error
	RefetchUserBalance(ctx context.Context, account common.Address) error
	// Invalidate drops every stored read group.
	Invalidate()
}

type SaleServiceConfig struct {
	SaleAddress common.Address
	PoolID      uint64
	Clock       Clock
	Publisher   events.Publisher
}

type saleState struct {
	chainID  uint64
	pool     []CallResult
	users    map[common.Address][]CallResult
	balances map[common.Address]*BalanceGroup
	status   models.SaleStatus
}

func newSaleState(chainID uint64) *saleState {
	return &saleState{
		chainID:  chainID,
		users:    make(map[common.Address][]CallResult),
		balances: make(map[common.Address]*BalanceGroup),
	}
}

type saleService struct {
	chains   ChainService
	tokens   TokenService
	prices   PriceService
	backends BackendProvider
	config   SaleServiceConfig
	log      *logrus.Entry

	mu    sync.Mutex
	state *saleState
}

func NewSaleService(chains ChainService, tokens TokenService, prices PriceService, backends BackendProvider, config SaleServiceConfig) SaleService {
	if config.Clock == nil {
		config.Clock = SystemClock()
	}
	if config.Publisher == nil {
		config.Publisher = events.NewNoopPublisher()
	}
	return &saleService{
		chains:   chains,
		tokens:   tokens,
		prices:   prices,
		backends: backends,
		config:   config,
		log:      logrus.WithField("sale", config.SaleAddress.Hex()),
	}
}

func (s *saleService) SaleAddress() common.Address {
	return s.config.SaleAddress
}

func (s *saleService) PoolID() uint64 {
	return s.config.PoolID
}

// activeChain returns the active chain and resets the stored reads when it changed.
func (s *saleService) activeChain() (models.Chain, uint64, *ChainReader, error) {
	chain, err := s.chains.GetActiveChain()
	if err != nil {
		return models.Chain{}, 0, nil, fmt.Errorf("failed to get active chain: %w", err)
	}
	chainID, err := chain.ChainIDUint64()
	if err != nil {
		return models.Chain{}, 0, nil, err
	}
	backend, err := s.backends(*chain)
	if err != nil {
		return models.Chain{}, 0, nil, err
	}

	s.mu.Lock()
	if s.state == nil || s.state.chainID != chainID {
		s.state = newSaleState(chainID)
	}
	s.mu.Unlock()

	return *chain, chainID, NewChainReader(backend), nil
}

func (s *saleService) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = nil
}

func (s *saleService) RefetchPoolInfo(ctx context.Context) error {
	_, chainID, reader, err := s.activeChain()
	if err != nil {
		return err
	}
	s.fetchPool(ctx, chainID, reader)
	return nil
}

func (s *saleService) RefetchUserInfo(ctx context.Context, account common.Address) error {
	_, chainID, reader, err := s.activeChain()
	if err != nil {
		return err
	}
	s.fetchUser(ctx, chainID, reader, account)
	return nil
}

func (s *saleService) RefetchUserBalance(ctx context.Context, account common.Address) error {
	_, chainID, reader, err := s.activeChain()
	if err != nil {
		return err
	}
	pool := s.storedPool(chainID)
	if pool == nil {
		pool = s.fetchPool(ctx, chainID, reader)
	}
	s.fetchBalance(ctx, chainID, reader, pool, account)
	return nil
}

func (s *saleService) fetchPool(ctx context.Context, chainID uint64, reader *ChainReader) []CallResult {
	results := reader.ReadBatch(ctx, PoolCalls(s.config.SaleAddress, s.config.PoolID))
	s.mu.Lock()
	if s.state != nil && s.state.chainID == chainID {
		s.state.pool = results
	}
	s.mu.Unlock()
	return results
}

func (s *saleService) fetchUser(ctx context.Context, chainID uint64, reader *ChainReader, account common.Address) []CallResult {
	results := reader.ReadBatch(ctx, UserCalls(s.config.SaleAddress, account, s.config.PoolID))
	s.mu.Lock()
	if s.state != nil && s.state.chainID == chainID {
		s.state.users[account] = results
	}
	s.mu.Unlock()
	return results
}

// fetchBalance reads the LP token balance and allowance of account. For an ERC-20 LP token
// both values are dropped when either read fails.
func (s *saleService) fetchBalance(ctx context.Context, chainID uint64, reader *ChainReader, pool []CallResult, account common.Address) *BalanceGroup {
	lpToken, _ := PoolTokenAddresses(pool)
	if lpToken == nil {
		return nil
	}

	group := &BalanceGroup{}
	if utils.IsNativeAddress(*lpToken) {
		balance, err := reader.NativeBalance(ctx, account)
		if err == nil {
			group.Balance = balance
		}
	} else {
		results := reader.ReadBatch(ctx, BalanceCalls(*lpToken, s.config.SaleAddress, account))
		if results[0].OK() && results[1].OK() {
			group.Balance, _ = results[0].Values[0].(*big.Int)
			group.Allowance, _ = results[1].Values[0].(*big.Int)
		}
	}

	s.mu.Lock()
	if s.state != nil && s.state.chainID == chainID {
		s.state.balances[account] = group
	}
	s.mu.Unlock()
	return group
}

func (s *saleService) storedPool(chainID uint64) []CallResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == nil || s.state.chainID != chainID {
		return nil
	}
	return s.state.pool
}

func (s *saleService) storedUser(chainID uint64, account common.Address) ([]CallResult, *BalanceGroup, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == nil || s.state.chainID != chainID {
		return nil, nil, false
	}
	user := s.state.users[account]
	balance, fetched := s.state.balances[account]
	return user, balance, fetched
}

func (s *saleService) Snapshot(ctx context.Context, account *common.Address) (models.ContractInfo, error) {
	_, chainID, reader, err := s.activeChain()
	if err != nil {
		return models.ContractInfo{}, err
	}

	pool := s.storedPool(chainID)
	if pool == nil {
		pool = s.fetchPool(ctx, chainID, reader)
	}

	var user []CallResult
	var balance *BalanceGroup
	if account != nil {
		var fetched bool
		user, balance, fetched = s.storedUser(chainID, *account)
		if user == nil {
			user = s.fetchUser(ctx, chainID, reader, *account)
		}
		if !fetched {
			balance = s.fetchBalance(ctx, chainID, reader, pool, *account)
		}
	}

	lpToken, offeringToken := s.resolveTokens(ctx, chainID, pool)
	lpPrice, offeringPrice := s.resolvePrices(ctx, lpToken, offeringToken)

	info := AggregateContractInfo(AggregateInput{
		ChainID:          chainID,
		SaleAddress:      s.config.SaleAddress,
		PoolID:           s.config.PoolID,
		Account:          account,
		Now:              s.config.Clock.Now(),
		Pool:             pool,
		User:             user,
		Balance:          balance,
		LPToken:          lpToken,
		OfferingToken:    offeringToken,
		LPTokenUSD:       lpPrice,
		OfferingTokenUSD: offeringPrice,
	})
	s.recordStatus(chainID, info.Status)
	return info, nil
}

func (s *saleService) resolveTokens(ctx context.Context, chainID uint64, pool []CallResult) (lpToken, offeringToken *models.TokenDescriptor) {
	lpAddress, offeringAddress := PoolTokenAddresses(pool)

	var group errgroup.Group
	if lpAddress != nil {
		group.Go(func() error {
			lpToken = s.tokens.Resolve(ctx, chainID, *lpAddress)
			return nil
		})
	}
	if offeringAddress != nil {
		group.Go(func() error {
			offeringToken = s.tokens.Resolve(ctx, chainID, *offeringAddress)
			return nil
		})
	}
	_ = group.Wait()
	return lpToken, offeringToken
}

func (s *saleService) resolvePrices(ctx context.Context, lpToken, offeringToken *models.TokenDescriptor) (lpPrice, offeringPrice *decimal.Decimal) {
	var group errgroup.Group
	if lpToken != nil && !lpToken.Provisional {
		group.Go(func() error {
			lpPrice = s.prices.GetUSDPrice(ctx, *lpToken)
			return nil
		})
	}
	if offeringToken != nil && !offeringToken.Provisional {
		group.Go(func() error {
			offeringPrice = s.prices.GetUSDPrice(ctx, *offeringToken)
			return nil
		})
	}
	_ = group.Wait()
	return lpPrice, offeringPrice
}

func (s *saleService) recordStatus(chainID uint64, status models.SaleStatus) {
	s.mu.Lock()
	if s.state == nil || s.state.chainID != chainID || s.state.status == status {
		s.mu.Unlock()
		return
	}
	previous := s.state.status
	s.state.status = status
	s.mu.Unlock()

	metrics.SetSaleStatus(string(status))
	s.log.WithFields(logrus.Fields{
		"chain_id": chainID,
		"previous": previous,
		"status":   status,
	}).Info("sale status changed")

	event := events.SaleStatusEvent{
		ChainID:     chainID,
		SaleAddress: s.config.SaleAddress.Hex(),
		Previous:    previous,
		Status:      status,
		At:          s.config.Clock.Now(),
	}
	if err := s.config.Publisher.Publish(events.SubjectSaleStatus, event); err != nil {
		s.log.WithError(err).Warn("failed to publish sale status")
	}
}
