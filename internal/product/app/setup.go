// Package app contains the application setup for the product service.
package app

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/abgdnv/invdash/internal/config"
	"github.com/abgdnv/invdash/internal/platform/web"
	grpcImpl "github.com/abgdnv/invdash/internal/product/grpc"
	"github.com/abgdnv/invdash/internal/product/handler"
	"github.com/abgdnv/invdash/internal/product/service"
	"github.com/abgdnv/invdash/internal/product/store"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/logging"
	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/recovery"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
	"google.golang.org/grpc/status"
)

type Dependencies struct {
	ProductService service.ProductService
	Logger         *slog.Logger
}

// SetupDependencies wires the service onto a store: in-memory or PgStore.
func SetupDependencies(productStore store.ProductStore, logger *slog.Logger) *Dependencies {
	return &Dependencies{
		ProductService: service.NewService(productStore),
		Logger:         logger,
	}
}

// SetupHttpHandler initializes the routes and middleware of the product service.
// Used by E2E tests to run the service in-process.
func SetupHttpHandler(deps *Dependencies, auth config.AuthConfig) http.Handler {
	pApi := handler.NewAPI(deps.ProductService, deps.Logger)

	mux := chi.NewRouter()
	mux.Use(middleware.RequestID)
	mux.Use(web.RequestIDInjector)
	mux.Use(web.StructuredLogger(deps.Logger))
	mux.Use(web.Recoverer(deps.Logger))

	mux.Route("/api", func(r chi.Router) {
		r.Use(web.BasicAuth(auth.Realm, auth.Username, auth.Password, deps.Logger))

		r.Get("/health", pApi.HealthCheck)
		r.Route("/products", func(r chi.Router) {
			r.Get("/", pApi.FindAll)
			r.Post("/", pApi.Create)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", pApi.FindByID)
				r.Put("/", pApi.Update)
				r.Delete("/", pApi.DeleteByID)
			})
		})
	})

	return otelhttp.NewHandler(mux, "product-service")
}

// SetupHttpServer creates and configures an HTTP server for the product service.
func SetupHttpServer(deps *Dependencies, cfg *config.ProductServiceConfig) *http.Server {
	mux := SetupHttpHandler(deps, cfg.Auth)
	server := &http.Server{
		Addr:              cfg.HTTPServer.Addr(),
		Handler:           mux,
		ReadTimeout:       cfg.HTTPServer.Timeout.Read,
		WriteTimeout:      cfg.HTTPServer.Timeout.Write,
		IdleTimeout:       cfg.HTTPServer.Timeout.Idle,
		ReadHeaderTimeout: cfg.HTTPServer.Timeout.ReadHeader,
		MaxHeaderBytes:    cfg.HTTPServer.MaxHeaderBytes,
	}
	return server
}

// SetupGrpcServer initializes the gRPC server with the health service.
func SetupGrpcServer(reporter *grpcImpl.HealthReporter, reflectionEnabled bool, logger *slog.Logger) *grpc.Server {
	grpcServer := grpc.NewServer(
		grpc.StatsHandler(otelgrpc.NewServerHandler()),
		grpc.ChainUnaryInterceptor(
			logging.UnaryServerInterceptor(interceptorLogger(logger), logging.WithLogOnEvents(logging.FinishCall)),
			recovery.UnaryServerInterceptor(recovery.WithRecoveryHandler(func(p any) error {
				logger.Error("gRPC handler panicked", slog.Any("panic", p))
				return status.Error(codes.Internal, "internal error")
			})),
		),
	)
	if reflectionEnabled {
		reflection.Register(grpcServer)
	}
	healthpb.RegisterHealthServer(grpcServer, reporter.Server())
	return grpcServer
}

func interceptorLogger(l *slog.Logger) logging.Logger {
	return logging.LoggerFunc(func(ctx context.Context, lvl logging.Level, msg string, fields ...any) {
		l.Log(ctx, slog.Level(lvl), msg, fields...)
	})
}
