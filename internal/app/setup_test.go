package app

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/abgdnv/gocatalog/internal/config"
	"github.com/abgdnv/gocatalog/internal/store"
	pkgconfig "github.com/abgdnv/gocatalog/pkg/config"
	"github.com/abgdnv/gocatalog/pkg/web"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func TestOpenStore_Memory(t *testing.T) {
	// given
	cfg := pkgconfig.DatabaseConfig{URL: "memory://"}

	// when
	productStore, closeFn, err := OpenStore(context.Background(), cfg, discardLogger())

	// then
	require.NoError(t, err)
	defer closeFn()
	assert.IsType(t, &store.InMemoryStore{}, productStore)
}

func TestOpenStore_UnsupportedScheme(t *testing.T) {
	_, _, err := OpenStore(context.Background(), pkgconfig.DatabaseConfig{URL: "mysql://user:pw@host/db"}, discardLogger())

	require.Error(t, err)
	assert.NotContains(t, err.Error(), "pw")
}

func TestNewAuthMiddleware_HeaderModeWithoutIdP(t *testing.T) {
	// given
	authMiddleware, err := NewAuthMiddleware(context.Background(), pkgconfig.IdP{}, discardLogger())
	require.NoError(t, err)
	var seen string
	handler := authMiddleware(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		seen, _ = web.UserID(r.Context())
	}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(web.XUserId, "seller-1")

	// when
	handler.ServeHTTP(httptest.NewRecorder(), req)

	// then
	assert.Equal(t, "seller-1", seen)
}

func TestSetupHttpHandler_WiresRoutes(t *testing.T) {
	// given
	logger := discardLogger()
	metrics := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, "# metrics")
	})
	cfg := &config.Config{}
	deps := SetupDependencies(store.NewInMemoryStore(), web.HeaderAuth(logger), metrics, cfg, logger)
	handler := SetupHttpHandler(deps)

	testCases := []struct {
		name         string
		method       string
		target       string
		body         string
		expectedCode int
	}{
		{name: "liveness", method: http.MethodGet, target: "/healthz", expectedCode: http.StatusOK},
		{name: "readiness", method: http.MethodGet, target: "/readyz", expectedCode: http.StatusOK},
		{name: "metrics", method: http.MethodGet, target: "/metrics", expectedCode: http.StatusOK},
		{name: "products need auth", method: http.MethodPost, target: "/api/v1/products/list", body: `{"page":1,"limit":1}`, expectedCode: http.StatusUnauthorized},
		{name: "unknown route", method: http.MethodGet, target: "/api/v2/products", expectedCode: http.StatusNotFound},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.target, strings.NewReader(tc.body))
			rr := httptest.NewRecorder()

			handler.ServeHTTP(rr, req)

			assert.Equal(t, tc.expectedCode, rr.Code)
			assert.NotEmpty(t, rr.Header().Get("X-Request-Id"))
		})
	}
}
