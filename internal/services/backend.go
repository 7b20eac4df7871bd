package services

import (
	"context"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/rxtech-lab/ido-dashboard/internal/models"
)

// ChainBackend is the read side of an EVM node. *ethclient.Client satisfies it.
type ChainBackend interface {
	ethereum.ContractCaller
	BalanceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (*big.Int, error)
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
}

// BackendProvider returns the backend serving chain.
type BackendProvider func(chain models.Chain) (ChainBackend, error)

// NewEthClientProvider dials each RPC endpoint once and reuses the client.
func NewEthClientProvider() BackendProvider {
	var mu sync.Mutex
	clients := make(map[string]*ethclient.Client)

	return func(chain models.Chain) (ChainBackend, error) {
		mu.Lock()
		defer mu.Unlock()
		if client, ok := clients[chain.RPC]; ok {
			return client, nil
		}
		client, err := ethclient.Dial(chain.RPC)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to RPC %s: %w", chain.RPC, err)
		}
		clients[chain.RPC] = client
		return client, nil
	}
}

// StaticBackendProvider serves every chain from backend.
func StaticBackendProvider(backend ChainBackend) BackendProvider {
	return func(models.Chain) (ChainBackend, error) {
		return backend, nil
	}
}

// Clock supplies the current time.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock returns the wall clock.
func SystemClock() Clock {
	return systemClock{}
}
