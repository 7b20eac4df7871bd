package services

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/rxtech-lab/ido-dashboard/internal/metrics"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// DefaultReadConcurrency bounds the number of in-flight eth_call requests of one batch.
const DefaultReadConcurrency = 8

// ContractCall is one read-only contract method invocation.
type ContractCall struct {
	Contract common.Address
	ABI      abi.ABI
	Method   string
	Args     []interface{}
}

// CallResult is the outcome of one ContractCall. Values is nil when Err is set.
type CallResult struct {
	Values []interface{}
	Err    error
}

func (r CallResult) OK() bool {
	return r.Err == nil && len(r.Values) > 0
}

// ChainReader executes batches of contract reads against one backend.
type ChainReader struct {
	backend     ChainBackend
	concurrency int
	log         *logrus.Entry
}

func NewChainReader(backend ChainBackend) *ChainReader {
	return &ChainReader{
		backend:     backend,
		concurrency: DefaultReadConcurrency,
		log:         logrus.WithField("component", "chain_reader"),
	}
}

// ReadBatch runs calls concurrently and returns one result per call in input order.
// A failed call is reported in its own result and never fails the batch.
func (r *ChainReader) ReadBatch(ctx context.Context, calls []ContractCall) []CallResult {
	results := make([]CallResult, len(calls))

	var group errgroup.Group
	group.SetLimit(r.concurrency)
	for i, call := range calls {
		group.Go(func() error {
			results[i] = r.read(ctx, call)
			return nil
		})
	}
	_ = group.Wait()

	return results
}

// Read executes a single call.
func (r *ChainReader) Read(ctx context.Context, call ContractCall) CallResult {
	return r.read(ctx, call)
}

func (r *ChainReader) read(ctx context.Context, call ContractCall) CallResult {
	start := time.Now()
	values, err := r.call(ctx, call)
	metrics.ChainReadDuration.WithLabelValues(call.Method).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.ChainReadsTotal.WithLabelValues(call.Method, "error").Inc()
		r.log.WithFields(logrus.Fields{
			"contract": call.Contract.Hex(),
			"method":   call.Method,
		}).WithError(err).Debug("contract read failed")
		return CallResult{Err: err}
	}
	metrics.ChainReadsTotal.WithLabelValues(call.Method, "ok").Inc()
	return CallResult{Values: values}
}

func (r *ChainReader) call(ctx context.Context, call ContractCall) ([]interface{}, error) {
	data, err := call.ABI.Pack(call.Method, call.Args...)
	if err != nil {
		return nil, fmt.Errorf("failed to pack %s: %w", call.Method, err)
	}
	to := call.Contract
	output, err := r.backend.CallContract(ctx, ethereum.CallMsg{To: &to, Data: data}, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to call %s: %w", call.Method, err)
	}
	values, err := call.ABI.Unpack(call.Method, output)
	if err != nil {
		return nil, fmt.Errorf("failed to unpack %s: %w", call.Method, err)
	}
	return values, nil
}

// NativeBalance returns the native currency balance of account.
func (r *ChainReader) NativeBalance(ctx context.Context, account common.Address) (*big.Int, error) {
	start := time.Now()
	balance, err := r.backend.BalanceAt(ctx, account, nil)
	metrics.ChainReadDuration.WithLabelValues("eth_getBalance").Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.ChainReadsTotal.WithLabelValues("eth_getBalance", "error").Inc()
		return nil, fmt.Errorf("failed to get balance: %w", err)
	}
	metrics.ChainReadsTotal.WithLabelValues("eth_getBalance", "ok").Inc()
	return balance, nil
}
