// Package app wires the indexer components for the binaries under cmd/.
package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/goodnatureofminers/ledgerindex-backend/internal/chain"
	"github.com/goodnatureofminers/ledgerindex-backend/internal/chain/codechain"
	"github.com/goodnatureofminers/ledgerindex-backend/internal/metrics"
	"github.com/goodnatureofminers/ledgerindex-backend/internal/repository/sqldb"
	"github.com/jessevdk/go-flags"
	"go.uber.org/zap"
	"google.golang.org/grpc"
)

// ParseFlags fills cfg from the command line and environment. It returns false when
// only help was requested.
func ParseFlags(cfg any, args []string) (bool, error) {
	if _, err := flags.ParseArgs(cfg, args); err != nil {
		var ferr *flags.Error
		if errors.As(err, &ferr) && ferr.Type == flags.ErrHelp {
			return false, nil
		}
		return false, fmt.Errorf("parse flags: %w", err)
	}
	return true, nil
}

// OpenStore opens and migrates the index store.
func OpenStore(ctx context.Context, cfg sqldb.Config, logger *zap.Logger) (*sqldb.Repository, error) {
	repo, err := sqldb.Open(ctx, cfg, logger.Named("sqldb"), metrics.NewRepository(cfg.Dialect))
	if err != nil {
		return nil, fmt.Errorf("open index store: %w", err)
	}
	return repo, nil
}

// DialNode connects to the ledger node and instruments the connection.
func DialNode(ctx context.Context, cfg codechain.Config, network string) (*codechain.Client, *chain.ObservedSource, error) {
	client, err := codechain.Dial(ctx, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("dial ledger node: %w", err)
	}
	return client, chain.NewObservedSource(client, metrics.NewRPCClient(network)), nil
}

// ServeHTTP serves h on addr until ctx is canceled.
func ServeHTTP(ctx context.Context, addr string, h http.Handler, logger *zap.Logger) error {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	return serveHTTP(ctx, lis, h, logger)
}

func serveHTTP(ctx context.Context, lis net.Listener, h http.Handler, logger *zap.Logger) error {
	s := &http.Server{
		Handler:           h,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    http.DefaultMaxHeaderBytes,
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		<-ctx.Done()
		logger.Info("Shutting down the http server", zap.String("addr", lis.Addr().String()))
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.Shutdown(shutdownCtx); err != nil {
			logger.Error("Failed to shutdown http server", zap.Error(err))
		}
	}()

	logger.Info("Starting HTTP server", zap.String("addr", lis.Addr().String()))
	if err := s.Serve(lis); !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve http: %w", err)
	}
	<-done
	return nil
}

// ServeGRPC serves srv on addr until ctx is canceled.
func ServeGRPC(ctx context.Context, addr string, srv *grpc.Server, logger *zap.Logger) error {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	go func() {
		<-ctx.Done()
		logger.Info("Shutting down gRPC server")
		srv.GracefulStop()
	}()

	logger.Info("Starting gRPC server", zap.String("addr", lis.Addr().String()))
	if err := srv.Serve(lis); err != nil {
		return fmt.Errorf("serve grpc: %w", err)
	}
	return nil
}
