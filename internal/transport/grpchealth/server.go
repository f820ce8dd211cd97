// Package grpchealth serves the standard gRPC health service, reporting SERVING while
// the index follows the ledger node closely enough.
package grpchealth

import (
	"context"
	"errors"
	"time"

	"github.com/goodnatureofminers/ledgerindex-backend/internal/clock"
	grpcMiddleware "github.com/grpc-ecosystem/go-grpc-middleware"
	grpcZap "github.com/grpc-ecosystem/go-grpc-middleware/logging/zap"
	grpcRecovery "github.com/grpc-ecosystem/go-grpc-middleware/recovery"
	grpcCtxTags "github.com/grpc-ecosystem/go-grpc-middleware/tags"
	grpcPrometheus "github.com/grpc-ecosystem/go-grpc-prometheus"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// ServiceName is the health service name of the explorer API.
const ServiceName = "ledgerindex.Explorer"

const defaultInterval = 5 * time.Second

// NewServer builds a gRPC server with the recovery, tags, prometheus and zap
// interceptors, and registers hs as its health service.
func NewServer(hs *health.Server, logger *zap.Logger) *grpc.Server {
	chain := []grpc.UnaryServerInterceptor{
		grpcRecovery.UnaryServerInterceptor(),
		grpcCtxTags.UnaryServerInterceptor(),
		grpcPrometheus.UnaryServerInterceptor,
		grpcZap.UnaryServerInterceptor(logger),
	}
	srv := grpc.NewServer(
		grpc.UnaryInterceptor(grpcMiddleware.ChainUnaryServer(chain...)),
	)
	grpcPrometheus.EnableHandlingTimeHistogram()
	grpcPrometheus.Register(srv)
	healthpb.RegisterHealthServer(srv, hs)
	return srv
}

// Reporter keeps a health server in step with the index status.
type Reporter struct {
	logger   *zap.Logger
	source   StatusSource
	health   *health.Server
	interval time.Duration
	sleep    func(context.Context, time.Duration) error
}

// NewReporter returns a Reporter that refreshes hs every interval.
func NewReporter(source StatusSource, hs *health.Server, interval time.Duration, logger *zap.Logger) (*Reporter, error) {
	if source == nil {
		return nil, errors.New("status source is required")
	}
	if hs == nil {
		return nil, errors.New("health server is required")
	}
	if interval <= 0 {
		interval = defaultInterval
	}
	return &Reporter{
		logger:   logger,
		source:   source,
		health:   hs,
		interval: interval,
		sleep:    clock.SleepWithContext,
	}, nil
}

// Run refreshes the health status until ctx is canceled, then marks the server as
// shutting down.
func (r *Reporter) Run(ctx context.Context) error {
	defer r.health.Shutdown()
	for {
		r.Update(ctx)
		if err := r.sleep(ctx, r.interval); err != nil {
			return err
		}
	}
}

// Update sets the serving status once and returns it.
func (r *Reporter) Update(ctx context.Context) healthpb.HealthCheckResponse_ServingStatus {
	status := healthpb.HealthCheckResponse_NOT_SERVING
	st, err := r.source.Status(ctx)
	switch {
	case err != nil:
		r.logger.Warn("read index status", zap.Error(err))
	case st.Healthy(r.source.MaxLag()):
		status = healthpb.HealthCheckResponse_SERVING
	default:
		r.logger.Debug("index lagging", zap.Uint64("lag", st.Lag), zap.Uint64("max_lag", r.source.MaxLag()))
	}

	r.health.SetServingStatus("", status)
	r.health.SetServingStatus(ServiceName, status)
	return status
}
