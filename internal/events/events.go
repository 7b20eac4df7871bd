package events

import (
	"time"

	"github.com/rxtech-lab/ido-dashboard/internal/models"
)

const (
	SubjectSaleStatus        = "ido.sale.status"
	SubjectTransactionStatus = "ido.tx.status"
)

// Publisher delivers lifecycle events to subscribers. Publishing is best effort.
type Publisher interface {
	Publish(subject string, event interface{}) error
	Close()
}

// SaleStatusEvent is published when the derived sale status changes.
type SaleStatusEvent struct {
	ChainID     uint64            `json:"chain_id"`
	SaleAddress string            `json:"sale_address"`
	Previous    models.SaleStatus `json:"previous,omitempty"`
	Status      models.SaleStatus `json:"status"`
	At          time.Time         `json:"at"`
}

// TransactionEvent is published on every transaction session transition.
type TransactionEvent struct {
	SessionID string                   `json:"session_id"`
	Account   string                   `json:"account"`
	Action    models.TransactionType   `json:"action"`
	Status    models.TransactionStatus `json:"status"`
	TxHash    string                   `json:"tx_hash,omitempty"`
	Error     string                   `json:"error,omitempty"`
	At        time.Time                `json:"at"`
}

// NewTransactionEvent builds the event for the current state of session.
func NewTransactionEvent(session models.TransactionSession, at time.Time) TransactionEvent {
	return TransactionEvent{
		SessionID: session.ID,
		Account:   session.Account,
		Action:    session.Action,
		Status:    session.Status,
		TxHash:    session.TxHash,
		Error:     session.Error,
		At:        at,
	}
}

type noopPublisher struct{}

// NewNoopPublisher returns a publisher that drops every event.
func NewNoopPublisher() Publisher {
	return noopPublisher{}
}

func (noopPublisher) Publish(string, interface{}) error { return nil }

func (noopPublisher) Close() {}
