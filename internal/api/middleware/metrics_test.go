package middleware

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rxtech-lab/ido-dashboard/internal/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsMiddleware(t *testing.T) {
	app := fiber.New()
	app.Use(MetricsMiddleware(MetricsConfig{
		Skip: func(c *fiber.Ctx) bool { return c.Path() == "/metrics" },
	}))
	app.Get("/api/tx/:session_id", func(c *fiber.Ctx) error {
		if c.Params("session_id") == "missing" {
			return fiber.NewError(fiber.StatusNotFound, "not found")
		}
		return c.SendStatus(fiber.StatusOK)
	})
	app.Get("/metrics", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	ok := metrics.HTTPRequestsTotal.WithLabelValues("GET", "/api/tx/:session_id", "200")
	notFound := metrics.HTTPRequestsTotal.WithLabelValues("GET", "/api/tx/:session_id", "404")
	skipped := metrics.HTTPRequestsTotal.WithLabelValues("GET", "/metrics", "200")
	okBefore := testutil.ToFloat64(ok)
	notFoundBefore := testutil.ToFloat64(notFound)
	skippedBefore := testutil.ToFloat64(skipped)

	for _, path := range []string{"/api/tx/a", "/api/tx/b", "/api/tx/missing", "/metrics"} {
		resp, err := app.Test(httptest.NewRequest("GET", path, nil))
		require.NoError(t, err)
		resp.Body.Close()
	}

	assert.Equal(t, okBefore+2, testutil.ToFloat64(ok))
	assert.Equal(t, notFoundBefore+1, testutil.ToFloat64(notFound))
	assert.Equal(t, skippedBefore, testutil.ToFloat64(skipped))
}
