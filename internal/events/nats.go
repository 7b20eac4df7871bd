package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rxtech-lab/ido-dashboard/internal/metrics"
	"github.com/sirupsen/logrus"
)

// conn is the subset of *nats.Conn used for publishing.
type conn interface {
	Publish(subject string, data []byte) error
	Drain() error
}

type natsPublisher struct {
	conn conn
	log  *logrus.Entry
}

// NewPublisher connects to NATS at url. An empty url yields a no-op publisher.
func NewPublisher(url string) (Publisher, error) {
	if url == "" {
		logrus.Info("NATS not configured, events are disabled")
		return NewNoopPublisher(), nil
	}

	nc, err := nats.Connect(url,
		nats.Name("ido-dashboard"),
		nats.Timeout(10*time.Second),
		nats.ReconnectWait(5*time.Second),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			logrus.WithError(err).Warn("NATS disconnected")
			metrics.NATSConnectionStatus.Set(0)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logrus.WithField("url", nc.ConnectedUrl()).Info("NATS reconnected")
			metrics.NATSConnectionStatus.Set(1)
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	metrics.NATSConnectionStatus.Set(1)

	return newNATSPublisher(nc), nil
}

func newNATSPublisher(c conn) *natsPublisher {
	return &natsPublisher{
		conn: c,
		log:  logrus.WithField("component", "events"),
	}
}

func (p *natsPublisher) Publish(subject string, event interface{}) error {
	data, err := json.Marshal(event)
	if err != nil {
		metrics.EventsPublishedTotal.WithLabelValues(subject, "error").Inc()
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	if err := p.conn.Publish(subject, data); err != nil {
		metrics.EventsPublishedTotal.WithLabelValues(subject, "error").Inc()
		p.log.WithError(err).WithField("subject", subject).Warn("failed to publish event")
		return fmt.Errorf("failed to publish event: %w", err)
	}
	metrics.EventsPublishedTotal.WithLabelValues(subject, "ok").Inc()
	return nil
}

func (p *natsPublisher) Close() {
	if err := p.conn.Drain(); err != nil {
		p.log.WithError(err).Warn("failed to drain NATS connection")
	}
	metrics.NATSConnectionStatus.Set(0)
}
