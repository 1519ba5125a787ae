package observability

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestMetricsHandlerExposesContactCounters(t *testing.T) {
	ContactSubmissions().WithLabelValues("accepted").Inc()
	require.GreaterOrEqual(t, testutil.ToFloat64(ContactSubmissions().WithLabelValues("accepted")), float64(1))

	app := fiber.New()
	app.Get("/metrics", MetricsHandler())

	resp, err := app.Test(httptest.NewRequest("GET", "/metrics", nil), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Contains(t, string(body), `contact_submissions_total{outcome="accepted"}`)
}
