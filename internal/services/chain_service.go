package services

import (
	"errors"
	"fmt"

	"github.com/rxtech-lab/ido-dashboard/internal/models"
	"gorm.io/gorm"
)

// ChainService handles chain-related operations
type ChainService interface {
	CreateChain(chain *models.Chain) error
	GetActiveChain() (*models.Chain, error)
	GetChainByNetworkID(networkID string) (*models.Chain, error)
	SetActiveChainByID(chainID uint) error
	SetActiveChainByNetworkID(networkID string) (*models.Chain, error)
	ListChains() ([]models.Chain, error)
	// SyncChains upserts the chain registry by network id. The first active chain in chains
	// becomes the only active one.
	SyncChains(chains []models.Chain) error
}

type chainService struct {
	db *gorm.DB
}

// NewChainService creates a new ChainService
func NewChainService(db *gorm.DB) ChainService {
	return &chainService{db: db}
}

// CreateChain creates a new chain
func (s *chainService) CreateChain(chain *models.Chain) error {
	return s.db.Create(chain).Error
}

// GetActiveChain returns the currently active chain
func (s *chainService) GetActiveChain() (*models.Chain, error) {
	var chain models.Chain
	err := s.db.Where("is_active = ?", true).First(&chain).Error
	if err != nil {
		return nil, err
	}
	return &chain, nil
}

func (s *chainService) GetChainByNetworkID(networkID string) (*models.Chain, error) {
	var chain models.Chain
	err := s.db.Where("chain_id = ?", networkID).First(&chain).Error
	if err != nil {
		return nil, err
	}
	return &chain, nil
}

// SetActiveChainByID sets a chain as active by its primary key
func (s *chainService) SetActiveChainByID(chainID uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.Chain{}).Where("id = ?", chainID).Update("is_active", true)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return tx.Model(&models.Chain{}).Where("id <> ? AND is_active = ?", chainID, true).Update("is_active", false).Error
	})
}

// SetActiveChainByNetworkID activates the chain with the given network id and returns it
func (s *chainService) SetActiveChainByNetworkID(networkID string) (*models.Chain, error) {
	chain, err := s.GetChainByNetworkID(networkID)
	if err != nil {
		return nil, err
	}
	if err := s.SetActiveChainByID(chain.ID); err != nil {
		return nil, err
	}
	chain.IsActive = true
	return chain, nil
}

// ListChains returns all chains
func (s *chainService) ListChains() ([]models.Chain, error) {
	var chains []models.Chain
	err := s.db.Order("id").Find(&chains).Error
	return chains, err
}

func (s *chainService) SyncChains(chains []models.Chain) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		activeSet := false
		for _, chain := range chains {
			active := chain.IsActive && !activeSet
			activeSet = activeSet || active

			var existing models.Chain
			err := tx.Where("chain_id = ?", chain.NetworkID).First(&existing).Error
			switch {
			case errors.Is(err, gorm.ErrRecordNotFound):
				chain.ID = 0
				chain.IsActive = active
				if err := tx.Create(&chain).Error; err != nil {
					return fmt.Errorf("failed to create chain %s: %w", chain.NetworkID, err)
				}
			case err != nil:
				return fmt.Errorf("failed to load chain %s: %w", chain.NetworkID, err)
			default:
				err := tx.Model(&existing).Updates(map[string]interface{}{
					"chain_type":        chain.ChainType,
					"rpc":               chain.RPC,
					"name":              chain.Name,
					"is_active":         active,
					"native_name":       chain.NativeName,
					"native_symbol":     chain.NativeSymbol,
					"native_decimals":   chain.NativeDecimals,
					"price_platform_id": chain.PricePlatformID,
					"native_coin_id":    chain.NativeCoinID,
				}).Error
				if err != nil {
					return fmt.Errorf("failed to update chain %s: %w", chain.NetworkID, err)
				}
			}
		}
		return nil
	})
}
