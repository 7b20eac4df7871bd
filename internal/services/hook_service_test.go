package services_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/rxtech-lab/ido-dashboard/internal/models"
	"github.com/rxtech-lab/ido-dashboard/internal/services"
	"github.com/stretchr/testify/suite"
)

// mockHook implements the Hook interface for testing
type mockHook struct {
	name           string
	supportedTypes []models.TransactionType
	callCount      int
	lastTxType     models.TransactionType
	lastTxHash     string
	lastSession    *models.TransactionSession
	shouldError    bool
	errorMessage   string
	order          *[]string
}

func newMockHook(name string, supportedTypes ...models.TransactionType) *mockHook {
	return &mockHook{
		name:           name,
		supportedTypes: supportedTypes,
	}
}

func (m *mockHook) CanHandle(txType models.TransactionType) bool {
	for _, supportedType := range m.supportedTypes {
		if supportedType == txType {
			return true
		}
	}
	return false
}

func (m *mockHook) OnTransactionConfirmed(ctx context.Context, txType models.TransactionType, txHash string, session models.TransactionSession) error {
	m.callCount++
	m.lastTxType = txType
	m.lastTxHash = txHash
	m.lastSession = &session
	if m.order != nil {
		*m.order = append(*m.order, m.name)
	}

	if m.shouldError {
		return fmt.Errorf("%s", m.errorMessage)
	}
	return nil
}

func (m *mockHook) setError(shouldError bool, message string) {
	m.shouldError = shouldError
	m.errorMessage = message
}

type HookServiceTestSuite struct {
	suite.Suite
	hookService services.HookService
}

func (suite *HookServiceTestSuite) SetupTest() {
	// Create a fresh service for each test to avoid state leakage
	suite.hookService = services.NewHookService()
}

func confirmedSession(action models.TransactionType) models.TransactionSession {
	return models.TransactionSession{
		ID:                   "test-session-123",
		Account:              "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266",
		Action:               action,
		Status:               models.TransactionStatusConfirmed,
		TransactionChainType: models.TransactionChainTypeEthereum,
		ChainID:              1,
	}
}

func (suite *HookServiceTestSuite) TestDispatchByTransactionType() {
	depositHook := newMockHook("deposit", models.TransactionTypeDeposit)
	approveHook := newMockHook("approve", models.TransactionTypeApprove)
	allHook := newMockHook("all", models.TransactionTypeApprove, models.TransactionTypeDeposit, models.TransactionTypeClaim)

	suite.NoError(suite.hookService.AddHook(depositHook))
	suite.NoError(suite.hookService.AddHook(approveHook))
	suite.NoError(suite.hookService.AddHook(allHook))

	err := suite.hookService.OnTransactionConfirmed(context.Background(), models.TransactionTypeDeposit, "0xDepositTxHash", confirmedSession(models.TransactionTypeDeposit))
	suite.NoError(err)

	suite.Equal(1, depositHook.callCount)
	suite.Equal(0, approveHook.callCount)
	suite.Equal(1, allHook.callCount)
	suite.Equal(models.TransactionTypeDeposit, depositHook.lastTxType)
	suite.Equal("0xDepositTxHash", depositHook.lastTxHash)
	suite.Require().NotNil(depositHook.lastSession)
	suite.Equal("test-session-123", depositHook.lastSession.ID)

	err = suite.hookService.OnTransactionConfirmed(context.Background(), models.TransactionTypeClaim, "0xClaimTxHash", confirmedSession(models.TransactionTypeClaim))
	suite.NoError(err)
	suite.Equal(1, depositHook.callCount)
	suite.Equal(2, allHook.callCount)
	suite.Equal("0xClaimTxHash", allHook.lastTxHash)
}

func (suite *HookServiceTestSuite) TestNoHooks() {
	err := suite.hookService.OnTransactionConfirmed(context.Background(), models.TransactionTypeApprove, "0x1", confirmedSession(models.TransactionTypeApprove))
	suite.NoError(err)
}

func (suite *HookServiceTestSuite) TestRegistrationOrder() {
	var order []string
	first := newMockHook("first", models.TransactionTypeDeposit)
	second := newMockHook("second", models.TransactionTypeDeposit)
	first.order = &order
	second.order = &order

	suite.NoError(suite.hookService.AddHook(first))
	suite.NoError(suite.hookService.AddHook(second))

	suite.NoError(suite.hookService.OnTransactionConfirmed(context.Background(), models.TransactionTypeDeposit, "0x1", confirmedSession(models.TransactionTypeDeposit)))
	suite.Equal([]string{"first", "second"}, order)
}

func (suite *HookServiceTestSuite) TestErrorStopsDispatch() {
	failing := newMockHook("failing", models.TransactionTypeDeposit)
	failing.setError(true, "hook failed")
	after := newMockHook("after", models.TransactionTypeDeposit)

	suite.NoError(suite.hookService.AddHook(failing))
	suite.NoError(suite.hookService.AddHook(after))

	err := suite.hookService.OnTransactionConfirmed(context.Background(), models.TransactionTypeDeposit, "0x1", confirmedSession(models.TransactionTypeDeposit))
	suite.EqualError(err, "hook failed")
	suite.Equal(1, failing.callCount)
	suite.Equal(0, after.callCount)
}

func TestHookServiceTestSuite(t *testing.T) {
	suite.Run(t, new(HookServiceTestSuite))
}
