// Package grpc exposes the product service's readiness over the standard gRPC health protocol.
package grpc

import (
	"context"
	"log/slog"
	"time"

	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// ServiceName is the health service name reported alongside the overall ("") status.
const ServiceName = "invdash.product.v1.ProductService"

// HealthChecker is satisfied by service.ProductService.
type HealthChecker interface {
	Health(ctx context.Context) error
}

// HealthReporter mirrors the product store's reachability into a grpc health server.
type HealthReporter struct {
	checker  HealthChecker
	server   *health.Server
	interval time.Duration
	logger   *slog.Logger
}

func NewHealthReporter(checker HealthChecker, interval time.Duration, logger *slog.Logger) *HealthReporter {
	return &HealthReporter{
		checker:  checker,
		server:   health.NewServer(),
		interval: interval,
		logger:   logger.With("component", "grpc-health"),
	}
}

// Server returns the health server to register with grpc.Server.
func (h *HealthReporter) Server() *health.Server {
	return h.server
}

// Check probes the store once and publishes the result.
func (h *HealthReporter) Check(ctx context.Context) healthpb.HealthCheckResponse_ServingStatus {
	status := healthpb.HealthCheckResponse_SERVING
	if err := h.checker.Health(ctx); err != nil {
		h.logger.WarnContext(ctx, "Product store is not healthy", "error", err)
		status = healthpb.HealthCheckResponse_NOT_SERVING
	}
	h.server.SetServingStatus("", status)
	h.server.SetServingStatus(ServiceName, status)
	return status
}

// Run checks on every tick until ctx is done, then marks everything NOT_SERVING.
func (h *HealthReporter) Run(ctx context.Context) {
	h.Check(ctx)
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			h.server.Shutdown()
			return
		case <-ticker.C:
			h.Check(ctx)
		}
	}
}
