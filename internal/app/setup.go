// Package app contains the application setup for the catalog service.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/abgdnv/gocatalog/internal/config"
	"github.com/abgdnv/gocatalog/internal/service"
	"github.com/abgdnv/gocatalog/internal/store"
	grpcImpl "github.com/abgdnv/gocatalog/internal/transport/grpc"
	"github.com/abgdnv/gocatalog/internal/transport/rest"
	"github.com/abgdnv/gocatalog/internal/validation"
	"github.com/abgdnv/gocatalog/pkg/auth"
	"github.com/abgdnv/gocatalog/pkg/bootstrap"
	pkgconfig "github.com/abgdnv/gocatalog/pkg/config"
	"github.com/abgdnv/gocatalog/pkg/server"
	"github.com/abgdnv/gocatalog/pkg/web"
	"github.com/go-chi/chi/v5"
	"google.golang.org/grpc"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

const httpOperation = "catalog-http"

type Dependencies struct {
	Store          store.ProductStore
	ProductService service.ProductService
	Validator      *validation.Validator
	AuthMiddleware func(http.Handler) http.Handler
	MetricsHandler http.Handler
	MaxBodyBytes   int64
	Logger         *slog.Logger
}

func SetupDependencies(productStore store.ProductStore, authMiddleware func(http.Handler) http.Handler, metricsHandler http.Handler, cfg *config.Config, logger *slog.Logger) *Dependencies {
	return &Dependencies{
		Store:          productStore,
		ProductService: service.NewService(productStore),
		Validator:      validation.New(cfg.Pagination.MaxLimit),
		AuthMiddleware: authMiddleware,
		MetricsHandler: metricsHandler,
		MaxBodyBytes:   cfg.HTTPServer.MaxBodyBytes,
		Logger:         logger,
	}
}

// OpenStore connects the store selected by the database URL scheme.
// The returned close function releases the underlying connection.
func OpenStore(ctx context.Context, cfg pkgconfig.DatabaseConfig, logger *slog.Logger) (store.ProductStore, func(), error) {
	switch cfg.Driver() {
	case pkgconfig.DriverMongo:
		client, err := bootstrap.NewMongoClient(ctx, cfg.URL, cfg.Timeout)
		if err != nil {
			return nil, nil, err
		}
		mongoStore := store.NewMongoStore(client.Database(cfg.Name))
		indexCtx, cancel := context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
		if err := mongoStore.EnsureIndexes(indexCtx); err != nil {
			_ = client.Disconnect(context.Background())
			return nil, nil, err
		}
		logger.Info("Successfully connected to MongoDB", slog.String("database", cfg.Name))
		return mongoStore, func() { _ = client.Disconnect(context.Background()) }, nil

	case pkgconfig.DriverPostgres:
		if err := store.MigratePostgres(cfg.URL); err != nil {
			return nil, nil, err
		}
		dbPool, err := bootstrap.NewDbPool(ctx, cfg.URL, cfg.Timeout)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("Successfully connected to PostgreSQL")
		return store.NewPgStore(dbPool), dbPool.Close, nil

	case pkgconfig.DriverMemory:
		logger.Warn("Using in-memory store, data is lost on restart")
		return store.NewInMemoryStore(), func() {}, nil

	default:
		return nil, nil, fmt.Errorf("unsupported database URL: %s", pkgconfig.MaskURL(cfg.URL))
	}
}

// NewAuthMiddleware verifies bearer tokens when an IdP is configured and
// trusts the gateway's X-User-Id header otherwise.
func NewAuthMiddleware(ctx context.Context, cfg pkgconfig.IdP, logger *slog.Logger) (func(http.Handler) http.Handler, error) {
	if !cfg.Enabled() {
		return web.HeaderAuth(logger), nil
	}
	verifier, err := auth.NewJWTVerifier(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create JWT verifier: %w", err)
	}
	return web.BearerAuth(verifier, logger), nil
}

// SetupHttpHandler initializes the routes and middleware of the catalog API.
// Used by E2E tests to set up the HTTP server with the necessary routes and middleware.
func SetupHttpHandler(deps *Dependencies) http.Handler {
	mux := server.NewChiRouter(deps.Logger)
	wireRoutes(mux, deps)
	return mux
}

func wireRoutes(mux *chi.Mux, deps *Dependencies) {
	productHandler := rest.NewHandler(deps.ProductService, deps.Validator, deps.Store, deps.MaxBodyBytes, deps.Logger)
	productHandler.RegisterRoutes(mux, deps.AuthMiddleware)
	if deps.MetricsHandler != nil {
		mux.Method(http.MethodGet, "/metrics", deps.MetricsHandler)
	}
}

// SetupHttpServer creates and configures the HTTP server of the catalog API.
func SetupHttpServer(deps *Dependencies, cfg *config.Config) *http.Server {
	mux := SetupHttpHandler(deps)

	httpCfg := server.HTTPConfig{
		Port:           cfg.HTTPServer.Port,
		MaxHeaderBytes: cfg.HTTPServer.MaxHeaderBytes,
		ReadTimeout:    cfg.HTTPServer.Timeout.Read,
		WriteTimeout:   cfg.HTTPServer.Timeout.Write,
		IdleTimeout:    cfg.HTTPServer.Timeout.Idle,
		ReadHeader:     cfg.HTTPServer.Timeout.ReadHeader,
	}

	return server.NewHTTPServer(httpCfg, httpOperation, mux)
}

// SetupGrpcServer initializes the gRPC server exposing the health service.
func SetupGrpcServer(deps *Dependencies, reflectionEnabled bool) *grpc.Server {
	healthRegisterFunc := func(s *grpc.Server) {
		healthpb.RegisterHealthServer(s, grpcImpl.NewHealthServer(deps.Store, deps.Logger))
	}
	return server.NewGRPCServer(deps.Logger, reflectionEnabled, healthRegisterFunc)
}
