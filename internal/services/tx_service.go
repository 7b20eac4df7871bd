package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rxtech-lab/ido-dashboard/internal/events"
	"github.com/rxtech-lab/ido-dashboard/internal/metrics"
	"github.com/rxtech-lab/ido-dashboard/internal/models"
	"github.com/rxtech-lab/ido-dashboard/internal/utils"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// SessionTTL is how long a session may wait for the wallet to submit its transaction.
const SessionTTL = 30 * time.Minute

var (
	ErrActionInFlight    = errors.New("an action of the same kind is already in progress")
	ErrSessionNotFound   = errors.New("session not found")
	ErrSessionExpired    = errors.New("session expired")
	ErrInvalidTransition = errors.New("invalid session status transition")
	ErrActionNotAllowed  = errors.New("action not allowed")
	ErrInvalidSignature  = errors.New("signature does not match the session account")
)

type TransactionService interface {
	// CreateActionSession checks the action against the current sale state and prepares its
	// transaction for the wallet.
	CreateActionSession(ctx context.Context, req CreateActionSessionRequest) (*models.TransactionSession, error)
	GetSession(sessionID string) (*models.TransactionSession, error)
	// MarkConfirming records the submitted transaction hash. A hash arriving after the session
	// expired is still accepted.
	MarkConfirming(sessionID string, req SubmitTransactionRequest) (*models.TransactionSession, error)
	MarkConfirmed(sessionID string) (*models.TransactionSession, error)
	// MarkFailed records message verbatim as the session error.
	MarkFailed(sessionID string, message string) (*models.TransactionSession, error)
	// InFlight returns the submitting or confirming session of action for account, nil when idle.
	InFlight(account string, action models.TransactionType) (*models.TransactionSession, error)
	// ActionStates returns the status of every in-flight action of account.
	ActionStates(account string) (map[models.TransactionType]models.TransactionStatus, error)
	ListSessionsByAccount(account string) ([]models.TransactionSession, error)
	// ListConfirming returns every confirming session that carries a transaction hash.
	ListConfirming() ([]models.TransactionSession, error)
}

type CreateActionSessionRequest struct {
	Account string                 `json:"account" validate:"required,eth_addr"`
	Action  models.TransactionType `json:"action" validate:"required,oneof=approve deposit claim"`
	// Amount in LP token units, required for approve and deposit
	Amount string `json:"amount" validate:"required_unless=Action claim"`
}

type SubmitTransactionRequest struct {
	TxHash string `json:"tx_hash" validate:"required,len=66,hexadecimal"`
	// Signature is an optional personal_sign of utils.SessionMessage by the session account
	Signature string `json:"signature,omitempty" validate:"omitempty,len=132,hexadecimal"`
}

type TransactionServiceConfig struct {
	Clock     Clock
	Publisher events.Publisher
}

type transactionService struct {
	db        *gorm.DB
	chains    ChainService
	sale      SaleService
	evm       EvmService
	validator *validator.Validate
	clock     Clock
	publisher events.Publisher
	log       *logrus.Entry

	// accountLocks serializes session creation per account
	accountLocks keyedMutex
}

type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func (k *keyedMutex) lock(key string) func() {
	k.mu.Lock()
	if k.locks == nil {
		k.locks = make(map[string]*sync.Mutex)
	}
	lock, ok := k.locks[key]
	if !ok {
		lock = &sync.Mutex{}
		k.locks[key] = lock
	}
	k.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}

func NewTransactionService(db *gorm.DB, chains ChainService, sale SaleService, evm EvmService, config TransactionServiceConfig) TransactionService {
	if config.Clock == nil {
		config.Clock = SystemClock()
	}
	if config.Publisher == nil {
		config.Publisher = events.NewNoopPublisher()
	}
	return &transactionService{
		db:        db,
		chains:    chains,
		sale:      sale,
		evm:       evm,
		validator: validator.New(),
		clock:     config.Clock,
		publisher: config.Publisher,
		log:       logrus.WithField("component", "transaction_service"),
	}
}

// conflictingActions lists the actions that cannot run alongside action.
func conflictingActions(action models.TransactionType) []models.TransactionType {
	if action == models.TransactionTypeClaim {
		return []models.TransactionType{models.TransactionTypeClaim}
	}
	return []models.TransactionType{models.TransactionTypeApprove, models.TransactionTypeDeposit}
}

func normalizeAccount(account string) string {
	return common.HexToAddress(account).Hex()
}

func (s *transactionService) CreateActionSession(ctx context.Context, req CreateActionSessionRequest) (*models.TransactionSession, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, err
	}
	account := common.HexToAddress(req.Account)
	unlock := s.accountLocks.lock(account.Hex())
	defer unlock()

	states, err := s.ActionStates(account.Hex())
	if err != nil {
		return nil, err
	}
	for _, action := range conflictingActions(req.Action) {
		if _, ok := states[action]; ok {
			return nil, fmt.Errorf("%w: %s", ErrActionInFlight, action)
		}
	}

	chain, err := s.chains.GetActiveChain()
	if err != nil {
		return nil, fmt.Errorf("failed to get active chain: %w", err)
	}
	info, err := s.sale.Snapshot(ctx, &account)
	if err != nil {
		return nil, fmt.Errorf("failed to read sale: %w", err)
	}

	tx, err := s.buildTransaction(req, info, states)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	session := &models.TransactionSession{
		ID:                     uuid.New().String(),
		Account:                account.Hex(),
		Action:                 req.Action,
		Status:                 models.TransactionStatusSubmitting,
		ActionGroup:            req.Action.ActionGroup(),
		TransactionChainType:   chain.ChainType,
		Metadata:               models.JSON{"amount": req.Amount, "sale_address": info.SaleAddress.Hex(), "pool_id": info.PoolID},
		TransactionDeployments: []models.TransactionDeployment{tx},
		ChainID:                chain.ID,
		CreatedAt:              now,
		UpdatedAt:              now,
		ExpiresAt:              now.Add(SessionTTL),
	}
	if err := s.insertSession(session); err != nil {
		return nil, err
	}
	if err := s.db.Preload("Chain").First(session, "id = ?", session.ID).Error; err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	s.emit(*session)
	return session, nil
}

// insertSession re-checks the action group and inserts in one database transaction. The unique
// in-flight index rejects an insert racing another process.
func (s *transactionService) insertSession(session *models.TransactionSession) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var inFlight int64
		err := tx.Model(&models.TransactionSession{}).
			Where("account = ? AND action IN ? AND status IN ?", session.Account, conflictingActions(session.Action),
				[]models.TransactionStatus{models.TransactionStatusSubmitting, models.TransactionStatusConfirming}).
			Count(&inFlight).Error
		if err != nil {
			return fmt.Errorf("failed to check in-flight sessions: %w", err)
		}
		if inFlight > 0 {
			return fmt.Errorf("%w: %s", ErrActionInFlight, session.Action.ActionGroup())
		}

		if err := tx.Create(session).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return fmt.Errorf("%w: %s", ErrActionInFlight, session.Action.ActionGroup())
			}
			return fmt.Errorf("failed to create session: %w", err)
		}
		return nil
	})
}

func (s *transactionService) buildTransaction(req CreateActionSessionRequest, info models.ContractInfo, states map[models.TransactionType]models.TransactionStatus) (models.TransactionDeployment, error) {
	account := common.HexToAddress(req.Account)

	if req.Action == models.TransactionTypeClaim {
		button := ClaimAction(ClaimGuardInput{
			Status:      info.Status,
			UserInfo:    info.UserInfo,
			ClaimStatus: states[models.TransactionTypeClaim],
		})
		if button.Action != models.TransactionTypeClaim {
			return models.TransactionDeployment{}, fmt.Errorf("%w: %s", ErrActionNotAllowed, button.Text)
		}
		symbol := ""
		if info.OfferingToken != nil {
			symbol = info.OfferingToken.Symbol
		}
		return s.evm.GetClaimTransaction(ClaimTransactionArgs{
			SaleAddress: info.SaleAddress.Hex(),
			PoolID:      info.PoolID,
			Symbol:      symbol,
		})
	}

	button := DepositAction(DepositGuardInput{
		Account:       &account,
		LPToken:       info.LPToken,
		Amount:        req.Amount,
		Balance:       info.LPTokenBalance,
		Allowance:     info.LPTokenAllowance,
		ApproveStatus: states[models.TransactionTypeApprove],
		DepositStatus: states[models.TransactionTypeDeposit],
	})
	if button.Action != req.Action {
		return models.TransactionDeployment{}, fmt.Errorf("%w: %s", ErrActionNotAllowed, button.Text)
	}

	if req.Action == models.TransactionTypeApprove {
		return s.evm.GetApproveTransaction(ApproveTransactionArgs{
			TokenAddress: info.LPToken.Address.Hex(),
			Spender:      info.SaleAddress.Hex(),
			Symbol:       info.LPToken.Symbol,
		})
	}
	return s.evm.GetDepositTransaction(DepositTransactionArgs{
		SaleAddress: info.SaleAddress.Hex(),
		PoolID:      info.PoolID,
		Amount:      req.Amount,
		LPToken:     *info.LPToken,
	})
}

// GetSession returns the session by id. A session still waiting for the wallet past its
// expiry is reported as expired.
func (s *transactionService) GetSession(sessionID string) (*models.TransactionSession, error) {
	session, err := s.load(s.db, sessionID)
	if err != nil {
		return nil, err
	}
	if s.expired(*session) {
		return nil, ErrSessionExpired
	}
	return session, nil
}

func (s *transactionService) load(db *gorm.DB, sessionID string) (*models.TransactionSession, error) {
	var session models.TransactionSession
	err := db.Where("id = ?", sessionID).Preload("Chain").First(&session).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	return &session, nil
}

func (s *transactionService) expired(session models.TransactionSession) bool {
	return session.Status == models.TransactionStatusSubmitting && s.clock.Now().After(session.ExpiresAt)
}

func (s *transactionService) MarkConfirming(sessionID string, req SubmitTransactionRequest) (*models.TransactionSession, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, err
	}

	return s.transition(sessionID, models.TransactionStatusConfirming, func(session *models.TransactionSession) error {
		// a wallet may still broadcast after the session expired; its hash is watched like any other
		lateHash := session.Status == models.TransactionStatusFailed && session.Error == ErrSessionExpired.Error()
		if session.Status != models.TransactionStatusSubmitting && !lateHash {
			return fmt.Errorf("%w: %s to %s", ErrInvalidTransition, session.Status, models.TransactionStatusConfirming)
		}
		if req.Signature != "" {
			signer, err := utils.RecoverAddress(req.Signature, utils.SessionMessage(session.ID, string(session.Action)))
			if err != nil {
				return fmt.Errorf("%w: %v", ErrInvalidSignature, err)
			}
			if signer != common.HexToAddress(session.Account) {
				return ErrInvalidSignature
			}
		}
		session.TxHash = strings.ToLower(req.TxHash)
		session.Error = ""
		return nil
	})
}

func (s *transactionService) MarkConfirmed(sessionID string) (*models.TransactionSession, error) {
	return s.transition(sessionID, models.TransactionStatusConfirmed, func(session *models.TransactionSession) error {
		if session.Status != models.TransactionStatusConfirming {
			return fmt.Errorf("%w: %s to %s", ErrInvalidTransition, session.Status, models.TransactionStatusConfirmed)
		}
		return nil
	})
}

func (s *transactionService) MarkFailed(sessionID string, message string) (*models.TransactionSession, error) {
	return s.transition(sessionID, models.TransactionStatusFailed, func(session *models.TransactionSession) error {
		if !session.Status.IsInFlight() {
			return fmt.Errorf("%w: %s to %s", ErrInvalidTransition, session.Status, models.TransactionStatusFailed)
		}
		session.Error = message
		return nil
	})
}

// transition moves a session to status inside a database transaction after check accepted it.
func (s *transactionService) transition(sessionID string, status models.TransactionStatus, check func(session *models.TransactionSession) error) (*models.TransactionSession, error) {
	var updated *models.TransactionSession
	err := s.db.Transaction(func(tx *gorm.DB) error {
		session, err := s.load(tx, sessionID)
		if err != nil {
			return err
		}
		previous := session.Status
		if err := check(session); err != nil {
			return err
		}
		session.Status = status
		session.UpdatedAt = s.clock.Now()

		result := tx.Model(&models.TransactionSession{}).
			Where("id = ? AND status = ?", sessionID, previous).
			Updates(map[string]interface{}{
				"status":     session.Status,
				"tx_hash":    session.TxHash,
				"error":      session.Error,
				"updated_at": session.UpdatedAt,
			})
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("%w: %s", ErrActionInFlight, session.Action.ActionGroup())
		}
		if result.Error != nil {
			return fmt.Errorf("failed to update session: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("%w: session changed concurrently", ErrInvalidTransition)
		}
		updated = session
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.emit(*updated)
	return updated, nil
}

func (s *transactionService) emit(session models.TransactionSession) {
	metrics.TransactionsTotal.WithLabelValues(string(session.Action), string(session.Status)).Inc()
	s.log.WithFields(logrus.Fields{
		"session_id": session.ID,
		"account":    session.Account,
		"action":     session.Action,
		"status":     session.Status,
		"tx_hash":    session.TxHash,
	}).Info("transaction session updated")

	if err := s.publisher.Publish(events.SubjectTransactionStatus, events.NewTransactionEvent(session, s.clock.Now())); err != nil {
		s.log.WithError(err).Warn("failed to publish transaction event")
	}
}

// expireStale fails submitting sessions of account that outlived their expiry.
func (s *transactionService) expireStale(account string) error {
	var submitting []models.TransactionSession
	err := s.db.Where("account = ? AND status = ?", account, models.TransactionStatusSubmitting).Find(&submitting).Error
	if err != nil {
		return fmt.Errorf("failed to list sessions: %w", err)
	}
	for _, session := range submitting {
		if !s.expired(session) {
			continue
		}
		if _, err := s.MarkFailed(session.ID, ErrSessionExpired.Error()); err != nil && !errors.Is(err, ErrInvalidTransition) {
			return err
		}
	}
	return nil
}

func (s *transactionService) InFlight(account string, action models.TransactionType) (*models.TransactionSession, error) {
	account = normalizeAccount(account)
	if err := s.expireStale(account); err != nil {
		return nil, err
	}

	var session models.TransactionSession
	err := s.db.Preload("Chain").
		Where("account = ? AND action = ? AND status IN ?", account, action,
			[]models.TransactionStatus{models.TransactionStatusSubmitting, models.TransactionStatusConfirming}).
		Order("created_at desc").
		First(&session).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find in-flight session: %w", err)
	}
	return &session, nil
}

func (s *transactionService) ActionStates(account string) (map[models.TransactionType]models.TransactionStatus, error) {
	account = normalizeAccount(account)
	if err := s.expireStale(account); err != nil {
		return nil, err
	}

	var sessions []models.TransactionSession
	err := s.db.Where("account = ? AND status IN ?", account,
		[]models.TransactionStatus{models.TransactionStatusSubmitting, models.TransactionStatusConfirming}).
		Order("created_at asc").
		Find(&sessions).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}

	states := make(map[models.TransactionType]models.TransactionStatus)
	for _, session := range sessions {
		states[session.Action] = session.Status
	}
	return states, nil
}

// ListSessionsByAccount returns all sessions of account, newest first
func (s *transactionService) ListSessionsByAccount(account string) ([]models.TransactionSession, error) {
	var sessions []models.TransactionSession
	err := s.db.Preload("Chain").Where("account = ?", normalizeAccount(account)).Order("created_at desc").Find(&sessions).Error
	return sessions, err
}

func (s *transactionService) ListConfirming() ([]models.TransactionSession, error) {
	var sessions []models.TransactionSession
	err := s.db.Preload("Chain").
		Where("status = ? AND tx_hash <> ''", models.TransactionStatusConfirming).
		Order("created_at asc").
		Find(&sessions).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list confirming sessions: %w", err)
	}
	return sessions, nil
}
