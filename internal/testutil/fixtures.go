package testutil

import (
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/rxtech-lab/ido-dashboard/internal/contracts"
	"github.com/rxtech-lab/ido-dashboard/internal/models"
)

var (
	SaleAddress          = common.HexToAddress("0x5FbDB2315678afecb367f032d93F642f64180aa3")
	LPTokenAddress       = common.HexToAddress("0xe7f1725E7734CE288F8367e1Bb143E90bb3F0512")
	OfferingTokenAddress = common.HexToAddress("0x9fE46736679d2D9a65F0992F2272dE9f3c7fa6e0")
	AdminAddress         = common.HexToAddress("0xCf7Ed3AccA5a467e9e704C703E8D87F634fB0Fc9")
	UserAddress          = common.HexToAddress("0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266")
)

// E18 returns n * 10^18.
func E18(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil))
}

// Units returns n * 10^decimals.
func Units(n int64, decimals uint8) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil))
}

// SaleFixture describes the on-chain state of a sale contract.
type SaleFixture struct {
	Sale          common.Address
	LPToken       common.Address
	OfferingToken common.Address
	Start         uint64
	End           uint64
	MinDeposit    *big.Int
	TotalOffered  *big.Int
	Pool          models.PoolInfo
}

// UserFixture is a user's position in pool 0.
type UserFixture struct {
	Amount    *big.Int
	Claimed   bool
	Offering  *big.Int
	Refunding *big.Int
	Tax       *big.Int
}

// Sale is a running sale contract on the fake backend. Its state can be changed between reads.
type Sale struct {
	mu      sync.Mutex
	fixture SaleFixture
	users   map[common.Address]UserFixture
}

// DefaultSaleFixture is an ERC-20 funded sale running between start and end.
func DefaultSaleFixture(start, end uint64) SaleFixture {
	return SaleFixture{
		Sale:          SaleAddress,
		LPToken:       LPTokenAddress,
		OfferingToken: OfferingTokenAddress,
		Start:         start,
		End:           end,
		MinDeposit:    E18(1),
		TotalOffered:  E18(1_000_000),
		Pool: models.PoolInfo{
			RaisingAmountPool:  E18(100_000),
			OfferingAmountPool: E18(1_000_000),
			CapPerUserInLP:     E18(5_000),
			HasTax:             true,
			FlatTaxRate:        big.NewInt(100),
			TotalAmountPool:    E18(50_000),
			SumTaxesOverflow:   big.NewInt(0),
		},
	}
}

// DeploySale registers the IDO contract answering from fixture.
func (b *Backend) DeploySale(fixture SaleFixture) *Sale {
	sale := &Sale{fixture: fixture, users: make(map[common.Address]UserFixture)}
	b.AddContract(fixture.Sale, contracts.MustIDOABI())

	b.Handle(fixture.Sale, contracts.MethodAddresses, func(args []interface{}) ([]interface{}, error) {
		sale.mu.Lock()
		defer sale.mu.Unlock()
		switch args[0].(*big.Int).Int64() {
		case 0:
			return []interface{}{sale.fixture.LPToken}, nil
		case 2:
			return []interface{}{sale.fixture.OfferingToken}, nil
		case 3:
			return []interface{}{AdminAddress}, nil
		}
		return []interface{}{common.Address{}}, nil
	})
	b.Handle(fixture.Sale, contracts.MethodStartTimestamp, func([]interface{}) ([]interface{}, error) {
		sale.mu.Lock()
		defer sale.mu.Unlock()
		return []interface{}{new(big.Int).SetUint64(sale.fixture.Start)}, nil
	})
	b.Handle(fixture.Sale, contracts.MethodEndTimestamp, func([]interface{}) ([]interface{}, error) {
		sale.mu.Lock()
		defer sale.mu.Unlock()
		return []interface{}{new(big.Int).SetUint64(sale.fixture.End)}, nil
	})
	b.Handle(fixture.Sale, contracts.MethodMinDepositAmounts, func([]interface{}) ([]interface{}, error) {
		sale.mu.Lock()
		defer sale.mu.Unlock()
		return []interface{}{sale.fixture.MinDeposit}, nil
	})
	b.Handle(fixture.Sale, contracts.MethodTotalTokensOffered, func([]interface{}) ([]interface{}, error) {
		sale.mu.Lock()
		defer sale.mu.Unlock()
		return []interface{}{sale.fixture.TotalOffered}, nil
	})
	b.Handle(fixture.Sale, contracts.MethodPoolInformation, func([]interface{}) ([]interface{}, error) {
		sale.mu.Lock()
		defer sale.mu.Unlock()
		p := sale.fixture.Pool
		return []interface{}{
			p.RaisingAmountPool,
			p.OfferingAmountPool,
			p.CapPerUserInLP,
			p.HasTax,
			p.FlatTaxRate,
			p.TotalAmountPool,
			p.SumTaxesOverflow,
		}, nil
	})
	b.Handle(fixture.Sale, contracts.MethodViewUserInfo, func(args []interface{}) ([]interface{}, error) {
		user := sale.user(args[0].(common.Address))
		return []interface{}{[]*big.Int{user.Amount}, []bool{user.Claimed}}, nil
	})
	b.Handle(fixture.Sale, contracts.MethodViewUserAmounts, func(args []interface{}) ([]interface{}, error) {
		user := sale.user(args[0].(common.Address))
		return []interface{}{[][3]*big.Int{{user.Offering, user.Refunding, user.Tax}}}, nil
	})
	return sale
}

func (s *Sale) user(account common.Address) UserFixture {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[account]
	if !ok {
		return UserFixture{Amount: big.NewInt(0), Offering: big.NewInt(0), Refunding: big.NewInt(0), Tax: big.NewInt(0)}
	}
	return user
}

// SetUser sets the position of account.
func (s *Sale) SetUser(account common.Address, user UserFixture) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[account] = user
}

// Update mutates the sale fixture.
func (s *Sale) Update(update func(fixture *SaleFixture)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	update(&s.fixture)
}

// Token is an ERC-20 contract on the fake backend.
type Token struct {
	mu         sync.Mutex
	balances   map[common.Address]*big.Int
	allowances map[string]*big.Int
}

// DeployERC20 registers an ERC-20 contract with the given metadata.
func (b *Backend) DeployERC20(address common.Address, name, symbol string, decimals uint8) *Token {
	token := &Token{balances: make(map[common.Address]*big.Int), allowances: make(map[string]*big.Int)}
	b.AddContract(address, contracts.MustERC20ABI())
	b.Respond(address, contracts.MethodName, name)
	b.Respond(address, contracts.MethodSymbol, symbol)
	b.Respond(address, contracts.MethodDecimals, decimals)
	b.Handle(address, contracts.MethodBalanceOf, func(args []interface{}) ([]interface{}, error) {
		token.mu.Lock()
		defer token.mu.Unlock()
		if balance, ok := token.balances[args[0].(common.Address)]; ok {
			return []interface{}{balance}, nil
		}
		return []interface{}{big.NewInt(0)}, nil
	})
	b.Handle(address, contracts.MethodAllowance, func(args []interface{}) ([]interface{}, error) {
		token.mu.Lock()
		defer token.mu.Unlock()
		if allowance, ok := token.allowances[allowanceKey(args[0].(common.Address), args[1].(common.Address))]; ok {
			return []interface{}{allowance}, nil
		}
		return []interface{}{big.NewInt(0)}, nil
	})
	return token
}

func (t *Token) SetBalance(account common.Address, balance *big.Int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.balances[account] = balance
}

func (t *Token) SetAllowance(owner, spender common.Address, allowance *big.Int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.allowances[allowanceKey(owner, spender)] = allowance
}

func allowanceKey(owner, spender common.Address) string {
	return fmt.Sprintf("%s:%s", owner.Hex(), spender.Hex())
}
