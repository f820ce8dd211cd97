// Command standalone runs the ingester and the API in one process over one store.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/goodnatureofminers/ledgerindex-backend/internal/app"
	"github.com/goodnatureofminers/ledgerindex-backend/internal/chain/codechain"
	"github.com/goodnatureofminers/ledgerindex-backend/internal/logging"
	"github.com/goodnatureofminers/ledgerindex-backend/internal/metrics"
	"github.com/goodnatureofminers/ledgerindex-backend/internal/repository/sqldb"
	"github.com/goodnatureofminers/ledgerindex-backend/internal/service/explorer"
	"github.com/goodnatureofminers/ledgerindex-backend/internal/service/ingester"
	"github.com/goodnatureofminers/ledgerindex-backend/internal/transport/grpchealth"
	"github.com/goodnatureofminers/ledgerindex-backend/internal/transport/httpapi"
	grpcZap "github.com/grpc-ecosystem/go-grpc-middleware/logging/zap"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc/health"
)

type config struct {
	Addr           string        `long:"addr" env:"LEDGERINDEX_ADDR" description:"gRPC health listen address" default:":8000"`
	RestAddr       string        `long:"rest-addr" env:"LEDGERINDEX_REST_ADDR" description:"HTTP API listen address" default:":8001"`
	Network        string        `long:"network" env:"LEDGERINDEX_NETWORK" description:"ledger network id used as metrics label" default:"tc"`
	HealthInterval time.Duration `long:"health-interval" env:"LEDGERINDEX_HEALTH_INTERVAL" description:"health status refresh interval" default:"5s"`

	Log      logging.Config   `group:"log"`
	DB       sqldb.Config     `group:"database" namespace:"db" env-namespace:"LEDGERINDEX_DB"`
	Node     codechain.Config `group:"node" namespace:"node" env-namespace:"LEDGERINDEX_NODE"`
	Engine   ingester.Config  `group:"engine" namespace:"engine" env-namespace:"LEDGERINDEX_ENGINE"`
	Explorer explorer.Config  `group:"explorer" namespace:"explorer" env-namespace:"LEDGERINDEX_EXPLORER"`
}

func main() {
	cfg := config{}
	ok, err := app.ParseFlags(&cfg, os.Args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if !ok {
		return
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		panic("can't initialize zap logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync()
	}()
	grpcZap.ReplaceGrpcLoggerV2(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal("standalone failed", zap.Error(err))
	}
}

func run(ctx context.Context, cfg config, logger *zap.Logger) error {
	store, err := app.OpenStore(ctx, cfg.DB, logger)
	if err != nil {
		return err
	}
	defer func() {
		_ = store.Close()
	}()

	client, source, err := app.DialNode(ctx, cfg.Node, cfg.Network)
	if err != nil {
		return err
	}
	defer client.Close()

	engine, err := ingester.NewEngine(store, source, metrics.NewIngester(cfg.Network), cfg.Engine, logger.Named("ingester"))
	if err != nil {
		return fmt.Errorf("init ingester: %w", err)
	}
	facade, err := explorer.NewFacade(store, source, cfg.Explorer, logger.Named("explorer"))
	if err != nil {
		return fmt.Errorf("init explorer: %w", err)
	}
	api, err := httpapi.NewServer(facade, metrics.NewAPI(), logger.Named("httpapi"))
	if err != nil {
		return fmt.Errorf("init http api: %w", err)
	}
	hs := health.NewServer()
	reporter, err := grpchealth.NewReporter(facade, hs, cfg.HealthInterval, logger.Named("health"))
	if err != nil {
		return fmt.Errorf("init health reporter: %w", err)
	}
	grpcServer := grpchealth.NewServer(hs, logger.Named("grpc"))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return engine.Run(gctx)
	})
	g.Go(func() error {
		return reporter.Run(gctx)
	})
	g.Go(func() error {
		return app.ServeGRPC(gctx, cfg.Addr, grpcServer, logger)
	})
	g.Go(func() error {
		return app.ServeHTTP(gctx, cfg.RestAddr, api.Handler(), logger)
	})
	if err := g.Wait(); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}
