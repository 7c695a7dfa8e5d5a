package telemetry

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
)

func TestNewMeterProvider_ExposesRecordedMetrics(t *testing.T) {
	// given
	metrics, err := NewMeterProvider("catalog-test")
	require.NoError(t, err)
	defer func() { _ = metrics.Provider.Shutdown(context.Background()) }()

	counter, err := otel.Meter("catalog-test").Int64Counter("test_products_created")
	require.NoError(t, err)

	// when
	counter.Add(context.Background(), 3)
	rr := httptest.NewRecorder()
	metrics.Handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	// then
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "test_products_created_total")
}
