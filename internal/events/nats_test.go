package events

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/rxtech-lab/ido-dashboard/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type message struct {
	subject string
	data    []byte
}

type fakeConn struct {
	messages []message
	err      error
	drained  bool
}

func (f *fakeConn) Publish(subject string, data []byte) error {
	if f.err != nil {
		return f.err
	}
	f.messages = append(f.messages, message{subject: subject, data: data})
	return nil
}

func (f *fakeConn) Drain() error {
	f.drained = true
	return nil
}

func TestNATSPublisherPublishesJSON(t *testing.T) {
	conn := &fakeConn{}
	publisher := newNATSPublisher(conn)

	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	err := publisher.Publish(SubjectSaleStatus, SaleStatusEvent{
		ChainID:     11155111,
		SaleAddress: "0x5FbDB2315678afecb367f032d93F642f64180aa3",
		Previous:    models.SaleStatusNotStarted,
		Status:      models.SaleStatusInProgress,
		At:          at,
	})
	require.NoError(t, err)
	require.Len(t, conn.messages, 1)
	assert.Equal(t, SubjectSaleStatus, conn.messages[0].subject)

	var decoded SaleStatusEvent
	require.NoError(t, json.Unmarshal(conn.messages[0].data, &decoded))
	assert.Equal(t, models.SaleStatusInProgress, decoded.Status)
	assert.Equal(t, models.SaleStatusNotStarted, decoded.Previous)
	assert.True(t, at.Equal(decoded.At))

	publisher.Close()
	assert.True(t, conn.drained)
}

func TestNATSPublisherError(t *testing.T) {
	conn := &fakeConn{err: errors.New("nats: connection closed")}
	publisher := newNATSPublisher(conn)

	err := publisher.Publish(SubjectTransactionStatus, TransactionEvent{SessionID: "abc"})
	assert.ErrorContains(t, err, "connection closed")
}

func TestNATSPublisherMarshalError(t *testing.T) {
	publisher := newNATSPublisher(&fakeConn{})
	err := publisher.Publish(SubjectTransactionStatus, make(chan int))
	assert.ErrorContains(t, err, "failed to marshal event")
}

func TestNewPublisherWithoutURL(t *testing.T) {
	publisher, err := NewPublisher("")
	require.NoError(t, err)
	assert.NoError(t, publisher.Publish(SubjectSaleStatus, SaleStatusEvent{}))
	publisher.Close()
}

func TestNewTransactionEvent(t *testing.T) {
	session := models.TransactionSession{
		ID:      "session-1",
		Account: "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266",
		Action:  models.TransactionTypeDeposit,
		Status:  models.TransactionStatusFailed,
		Error:   "User rejected the request.",
	}
	event := NewTransactionEvent(session, time.Unix(0, 0))
	assert.Equal(t, "session-1", event.SessionID)
	assert.Equal(t, models.TransactionTypeDeposit, event.Action)
	assert.Equal(t, models.TransactionStatusFailed, event.Status)
	assert.Equal(t, "User rejected the request.", event.Error)
}
