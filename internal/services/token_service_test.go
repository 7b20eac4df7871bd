package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/rxtech-lab/ido-dashboard/internal/contracts"
	"github.com/rxtech-lab/ido-dashboard/internal/models"
	"github.com/rxtech-lab/ido-dashboard/internal/services"
	"github.com/rxtech-lab/ido-dashboard/internal/testutil"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"
)

type TokenServiceTestSuite struct {
	suite.Suite
	db      *gorm.DB
	backend *testutil.Backend
	service services.TokenService
}

func (suite *TokenServiceTestSuite) SetupTest() {
	var chains services.ChainService
	suite.db, chains = newTestDB(suite.T())
	suite.backend = testutil.NewBackend()
	suite.backend.DeployERC20(testutil.LPTokenAddress, "USD Coin", "USDC", 6)
	suite.service = services.NewTokenService(suite.db, chains, services.StaticBackendProvider(suite.backend))
}

func (suite *TokenServiceTestSuite) TestNativeTokenWithoutReads() {
	token := suite.service.Resolve(context.Background(), testChainID, common.Address{})
	suite.Require().NotNil(token)
	suite.Equal(models.TokenKindNative, token.Kind)
	suite.True(token.IsNative())
	suite.Equal("ETH", token.Symbol)
	suite.Equal("Ether", token.Name)
	suite.Equal(uint8(18), token.Decimals)
	suite.Equal(0, suite.backend.TotalCalls())
}

func (suite *TokenServiceTestSuite) TestERC20ReadsThreeTimesThenMemoizes() {
	token := suite.service.Resolve(context.Background(), testChainID, testutil.LPTokenAddress)
	suite.Require().NotNil(token)
	suite.Equal(models.TokenKindERC20, token.Kind)
	suite.Equal("USDC", token.Symbol)
	suite.Equal("USD Coin", token.Name)
	suite.Equal(uint8(6), token.Decimals)
	suite.False(token.Provisional)
	suite.Equal(3, suite.backend.TotalCalls())
	suite.Equal(1, suite.backend.CallCount(contracts.MethodDecimals))
	suite.Equal(1, suite.backend.CallCount(contracts.MethodSymbol))
	suite.Equal(1, suite.backend.CallCount(contracts.MethodName))

	again := suite.service.Resolve(context.Background(), testChainID, testutil.LPTokenAddress)
	suite.Equal(token, again)
	suite.Equal(3, suite.backend.TotalCalls())

	var record models.TokenRecord
	suite.Require().NoError(suite.db.First(&record).Error)
	suite.Equal("USDC", record.Symbol)
}

func (suite *TokenServiceTestSuite) TestERC20LoadedFromStore() {
	stored := models.NewTokenRecord(models.TokenDescriptor{
		ChainID:  testChainID,
		Address:  testutil.OfferingTokenAddress,
		Decimals: 18,
		Name:     "Launch Token",
		Symbol:   "LCH",
	})
	suite.Require().NoError(suite.db.Create(&stored).Error)

	token := suite.service.Resolve(context.Background(), testChainID, testutil.OfferingTokenAddress)
	suite.Require().NotNil(token)
	suite.Equal("LCH", token.Symbol)
	suite.Equal(0, suite.backend.TotalCalls())
}

func (suite *TokenServiceTestSuite) TestProvisionalUntilAllReadsSucceed() {
	suite.backend.Fail(testutil.LPTokenAddress, contracts.MethodSymbol, errors.New("execution reverted"))

	token := suite.service.Resolve(context.Background(), testChainID, testutil.LPTokenAddress)
	suite.Require().NotNil(token)
	suite.True(token.Provisional)
	suite.Equal(uint8(18), token.Decimals)
	suite.Equal("-", token.Symbol)
	suite.Equal("-", token.Name)

	// provisional descriptors are never memoized
	suite.backend.Recover(testutil.LPTokenAddress, contracts.MethodSymbol)
	token = suite.service.Resolve(context.Background(), testChainID, testutil.LPTokenAddress)
	suite.Require().NotNil(token)
	suite.False(token.Provisional)
	suite.Equal("USDC", token.Symbol)
	suite.Equal(6, suite.backend.TotalCalls())
}

func (suite *TokenServiceTestSuite) TestUnknownChain() {
	suite.Nil(suite.service.Resolve(context.Background(), 999, testutil.LPTokenAddress))
	suite.Nil(suite.service.Resolve(context.Background(), 999, common.Address{}))
}

func (suite *TokenServiceTestSuite) TestMemoIsKeyedByChain() {
	first := suite.service.Resolve(context.Background(), testChainID, testutil.LPTokenAddress)
	second := suite.service.Resolve(context.Background(), 11155111, testutil.LPTokenAddress)
	suite.Require().NotNil(first)
	suite.Require().NotNil(second)
	suite.Equal(uint64(testChainID), first.ChainID)
	suite.Equal(uint64(11155111), second.ChainID)
	suite.Equal(6, suite.backend.TotalCalls())
}

func TestTokenServiceTestSuite(t *testing.T) {
	suite.Run(t, new(TokenServiceTestSuite))
}
