package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/rxtech-lab/ido-dashboard/internal/constants"
	"github.com/rxtech-lab/ido-dashboard/internal/contracts"
	"github.com/rxtech-lab/ido-dashboard/internal/metrics"
	"github.com/rxtech-lab/ido-dashboard/internal/models"
	"github.com/rxtech-lab/ido-dashboard/internal/utils"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TokenService resolves token addresses into descriptors.
type TokenService interface {
	// Resolve returns the descriptor of address on the chain with the given network id.
	// The zero address resolves to the chain's native currency without any read. ERC-20
	// metadata is read once per (chain, address); until all reads succeed a provisional
	// descriptor is returned. An unknown chain yields nil.
	Resolve(ctx context.Context, chainID uint64, address common.Address) *models.TokenDescriptor
}

type tokenService struct {
	db       *gorm.DB
	chains   ChainService
	backends BackendProvider
	log      *logrus.Entry

	mu   sync.RWMutex
	memo map[string]models.TokenDescriptor
}

func NewTokenService(db *gorm.DB, chains ChainService, backends BackendProvider) TokenService {
	return &tokenService{
		db:       db,
		chains:   chains,
		backends: backends,
		log:      logrus.WithField("component", "token_service"),
		memo:     make(map[string]models.TokenDescriptor),
	}
}

func tokenKey(chainID uint64, address common.Address) string {
	return fmt.Sprintf("%d:%s", chainID, strings.ToLower(address.Hex()))
}

func (s *tokenService) Resolve(ctx context.Context, chainID uint64, address common.Address) *models.TokenDescriptor {
	chain, err := s.chains.GetChainByNetworkID(fmt.Sprintf("%d", chainID))
	if err != nil {
		s.log.WithField("chain_id", chainID).WithError(err).Debug("unknown chain")
		return nil
	}

	if utils.IsNativeAddress(address) {
		metrics.TokenResolutionsTotal.WithLabelValues("native").Inc()
		native := chain.NativeToken()
		return &native
	}

	key := tokenKey(chainID, address)
	s.mu.RLock()
	cached, ok := s.memo[key]
	s.mu.RUnlock()
	if ok {
		metrics.TokenResolutionsTotal.WithLabelValues("memo").Inc()
		return &cached
	}

	if stored, ok := s.loadRecord(chainID, address); ok {
		s.remember(key, stored)
		metrics.TokenResolutionsTotal.WithLabelValues("store").Inc()
		return &stored
	}

	token, err := s.readMetadata(ctx, *chain, chainID, address)
	if err != nil {
		metrics.TokenResolutionsTotal.WithLabelValues("provisional").Inc()
		s.log.WithFields(logrus.Fields{
			"chain_id": chainID,
			"address":  address.Hex(),
		}).WithError(err).Warn("token metadata unavailable, using provisional descriptor")
		provisional := provisionalToken(chainID, address)
		return &provisional
	}

	s.remember(key, token)
	s.storeRecord(token)
	metrics.TokenResolutionsTotal.WithLabelValues("chain").Inc()
	return &token
}

func provisionalToken(chainID uint64, address common.Address) models.TokenDescriptor {
	return models.TokenDescriptor{
		Kind:        models.TokenKindERC20,
		ChainID:     chainID,
		Address:     address,
		Decimals:    constants.ProvisionalDecimals,
		Name:        constants.ProvisionalLabel,
		Symbol:      constants.ProvisionalLabel,
		Provisional: true,
	}
}

func (s *tokenService) remember(key string, token models.TokenDescriptor) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.memo[key] = token
}

func (s *tokenService) loadRecord(chainID uint64, address common.Address) (models.TokenDescriptor, bool) {
	if s.db == nil {
		return models.TokenDescriptor{}, false
	}
	var record models.TokenRecord
	err := s.db.Where("chain_id = ? AND address = ?", chainID, strings.ToLower(address.Hex())).First(&record).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.log.WithError(err).Warn("failed to load token record")
		}
		return models.TokenDescriptor{}, false
	}
	return record.Descriptor(), true
}

func (s *tokenService) storeRecord(token models.TokenDescriptor) {
	if s.db == nil {
		return
	}
	record := models.NewTokenRecord(token)
	err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "chain_id"}, {Name: "address"}},
		DoUpdates: clause.AssignmentColumns([]string{"decimals", "name", "symbol", "updated_at"}),
	}).Create(&record).Error
	if err != nil {
		s.log.WithError(err).Warn("failed to store token record")
	}
}

func (s *tokenService) readMetadata(ctx context.Context, chain models.Chain, chainID uint64, address common.Address) (models.TokenDescriptor, error) {
	backend, err := s.backends(chain)
	if err != nil {
		return models.TokenDescriptor{}, err
	}
	erc20 := contracts.MustERC20ABI()
	results := NewChainReader(backend).ReadBatch(ctx, []ContractCall{
		{Contract: address, ABI: erc20, Method: contracts.MethodDecimals},
		{Contract: address, ABI: erc20, Method: contracts.MethodSymbol},
		{Contract: address, ABI: erc20, Method: contracts.MethodName},
	})
	for _, result := range results {
		if !result.OK() {
			if result.Err != nil {
				return models.TokenDescriptor{}, result.Err
			}
			return models.TokenDescriptor{}, fmt.Errorf("empty token metadata result")
		}
	}

	decimals, ok := results[0].Values[0].(uint8)
	if !ok {
		return models.TokenDescriptor{}, fmt.Errorf("unexpected decimals type %T", results[0].Values[0])
	}
	symbol, ok := results[1].Values[0].(string)
	if !ok {
		return models.TokenDescriptor{}, fmt.Errorf("unexpected symbol type %T", results[1].Values[0])
	}
	name, ok := results[2].Values[0].(string)
	if !ok {
		return models.TokenDescriptor{}, fmt.Errorf("unexpected name type %T", results[2].Values[0])
	}

	return models.TokenDescriptor{
		Kind:     models.TokenKindERC20,
		ChainID:  chainID,
		Address:  address,
		Decimals: decimals,
		Name:     name,
		Symbol:   symbol,
	}, nil
}
