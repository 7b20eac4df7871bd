package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Chain reads
	ChainReadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ido_chain_reads_total",
			Help: "Total number of contract reads by method and result",
		},
		[]string{"method", "result"},
	)

	ChainReadDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ido_chain_read_duration_seconds",
			Help:    "Contract read duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method"},
	)

	// Token and price resolution
	TokenResolutionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ido_token_resolutions_total",
			Help: "Total number of token resolutions by source (native, memo, store, chain, provisional)",
		},
		[]string{"source"},
	)

	PriceLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ido_price_lookups_total",
			Help: "Total number of USD price lookups by result (stub, cached, unavailable_cached, fetched, unavailable)",
		},
		[]string{"result"},
	)

	// Sale
	SaleStatus = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "ido_sale_status",
			Help: "Current sale status (1 for the active status, 0 otherwise)",
		},
		[]string{"status"},
	)

	// Transactions
	TransactionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ido_transactions_total",
			Help: "Total number of transaction session transitions by action and status",
		},
		[]string{"action", "status"},
	)

	// HTTP API
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ido_http_requests_total",
			Help: "Total number of HTTP API requests by method, route and status code",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ido_http_request_duration_seconds",
			Help:    "HTTP API request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// NATS
	NATSConnectionStatus = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "ido_nats_connection_status",
		Help: "NATS connection status (1=connected, 0=disconnected)",
	})

	EventsPublishedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ido_events_published_total",
			Help: "Total number of events published by subject and result",
		},
		[]string{"subject", "result"},
	)
)

var saleStatuses = []string{"not_started", "in_progress", "ended"}

// SetSaleStatus marks status as the current sale status.
func SetSaleStatus(status string) {
	for _, s := range saleStatuses {
		if s == status {
			SaleStatus.WithLabelValues(s).Set(1)
		} else {
			SaleStatus.WithLabelValues(s).Set(0)
		}
	}
}
