package testutil

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// Handler answers one decoded contract call with output values matching the method's ABI.
type Handler func(args []interface{}) ([]interface{}, error)

type contract struct {
	abi      abi.ABI
	handlers map[string]Handler
	failures map[string]error
}

// Backend is an in-memory chain answering eth_call by decoding the selector against the
// registered contract ABI. It satisfies the contract caller, balance and receipt interfaces
// of *ethclient.Client.
type Backend struct {
	mu         sync.Mutex
	contracts  map[common.Address]*contract
	balances   map[common.Address]*big.Int
	receipts   map[common.Hash]*types.Receipt
	calls      map[string]int
	balanceErr error
	receiptErr error
}

func NewBackend() *Backend {
	return &Backend{
		contracts: make(map[common.Address]*contract),
		balances:  make(map[common.Address]*big.Int),
		receipts:  make(map[common.Hash]*types.Receipt),
		calls:     make(map[string]int),
	}
}

// AddContract registers a contract ABI at address.
func (b *Backend) AddContract(address common.Address, contractABI abi.ABI) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.contracts[address] = &contract{
		abi:      contractABI,
		handlers: make(map[string]Handler),
		failures: make(map[string]error),
	}
}

// Handle sets the handler of method on the contract at address.
func (b *Backend) Handle(address common.Address, method string, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	c, ok := b.contracts[address]
	if !ok {
		panic(fmt.Sprintf("no contract registered at %s", address.Hex()))
	}
	c.handlers[method] = handler
}

// Respond makes method always return outputs.
func (b *Backend) Respond(address common.Address, method string, outputs ...interface{}) {
	b.Handle(address, method, func([]interface{}) ([]interface{}, error) {
		return outputs, nil
	})
}

// Fail makes method revert with err until Recover is called.
func (b *Backend) Fail(address common.Address, method string, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.contracts[address].failures[method] = err
}

func (b *Backend) Recover(address common.Address, method string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.contracts[address].failures, method)
}

// CallCount returns how many times method was called on any contract.
func (b *Backend) CallCount(method string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls[method]
}

// TotalCalls returns the number of eth_call and balance requests served.
func (b *Backend) TotalCalls() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	total := 0
	for _, count := range b.calls {
		total += count
	}
	return total
}

func (b *Backend) ResetCalls() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls = make(map[string]int)
}

func (b *Backend) CallContract(ctx context.Context, call ethereum.CallMsg, blockNumber *big.Int) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if call.To == nil {
		return nil, errors.New("call without target")
	}
	if len(call.Data) < 4 {
		return nil, errors.New("call data too short")
	}

	b.mu.Lock()
	c, ok := b.contracts[*call.To]
	if !ok {
		b.mu.Unlock()
		return nil, fmt.Errorf("no contract at %s", call.To.Hex())
	}
	method, err := c.abi.MethodById(call.Data[:4])
	if err != nil {
		b.mu.Unlock()
		return nil, err
	}
	b.calls[method.Name]++
	failure := c.failures[method.Name]
	handler := c.handlers[method.Name]
	b.mu.Unlock()

	if failure != nil {
		return nil, failure
	}
	if handler == nil {
		return nil, fmt.Errorf("execution reverted: %s not handled", method.Name)
	}

	args, err := method.Inputs.Unpack(call.Data[4:])
	if err != nil {
		return nil, fmt.Errorf("failed to unpack %s arguments: %w", method.Name, err)
	}
	outputs, err := handler(args)
	if err != nil {
		return nil, err
	}
	return method.Outputs.Pack(outputs...)
}

// SetNativeBalance sets the native balance of account.
func (b *Backend) SetNativeBalance(account common.Address, balance *big.Int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.balances[account] = balance
}

// FailBalances makes BalanceAt return err; nil restores it.
func (b *Backend) FailBalances(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.balanceErr = err
}

func (b *Backend) BalanceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (*big.Int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls["eth_getBalance"]++
	if b.balanceErr != nil {
		return nil, b.balanceErr
	}
	if balance, ok := b.balances[account]; ok {
		return new(big.Int).Set(balance), nil
	}
	return big.NewInt(0), nil
}

// MineReceipt records a receipt for hash with the given status.
func (b *Backend) MineReceipt(hash common.Hash, status uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.receipts[hash] = &types.Receipt{
		TxHash:      hash,
		Status:      status,
		BlockNumber: big.NewInt(1),
	}
}

// FailReceipts makes TransactionReceipt return err; nil restores it.
func (b *Backend) FailReceipts(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.receiptErr = err
}

func (b *Backend) TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.receiptErr != nil {
		return nil, b.receiptErr
	}
	receipt, ok := b.receipts[txHash]
	if !ok {
		return nil, ethereum.NotFound
	}
	return receipt, nil
}
