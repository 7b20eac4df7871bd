package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestSetSaleStatus(t *testing.T) {
	SetSaleStatus("in_progress")
	assert.Equal(t, float64(1), testutil.ToFloat64(SaleStatus.WithLabelValues("in_progress")))
	assert.Equal(t, float64(0), testutil.ToFloat64(SaleStatus.WithLabelValues("not_started")))
	assert.Equal(t, float64(0), testutil.ToFloat64(SaleStatus.WithLabelValues("ended")))

	SetSaleStatus("ended")
	assert.Equal(t, float64(0), testutil.ToFloat64(SaleStatus.WithLabelValues("in_progress")))
	assert.Equal(t, float64(1), testutil.ToFloat64(SaleStatus.WithLabelValues("ended")))
}

func TestChainReadsCounter(t *testing.T) {
	before := testutil.ToFloat64(ChainReadsTotal.WithLabelValues("decimals", "error"))
	ChainReadsTotal.WithLabelValues("decimals", "error").Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(ChainReadsTotal.WithLabelValues("decimals", "error")))
}
