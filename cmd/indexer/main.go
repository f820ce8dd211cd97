package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/goodnatureofminers/ledgerindex-backend/internal/app"
	"github.com/goodnatureofminers/ledgerindex-backend/internal/chain/codechain"
	"github.com/goodnatureofminers/ledgerindex-backend/internal/logging"
	"github.com/goodnatureofminers/ledgerindex-backend/internal/metrics"
	"github.com/goodnatureofminers/ledgerindex-backend/internal/repository/sqldb"
	"github.com/goodnatureofminers/ledgerindex-backend/internal/service/ingester"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type config struct {
	Network     string `long:"network" env:"INDEXER_NETWORK" description:"ledger network id used as metrics label" default:"tc"`
	MetricsAddr string `long:"metrics-addr" env:"INDEXER_METRICS_ADDR" description:"prometheus listen address, empty disables it" default:":9100"`
	RollbackTo  string `long:"rollback-to" env:"INDEXER_ROLLBACK_TO" description:"retract every block above this number and exit"`
	Once        bool   `long:"once" env:"INDEXER_ONCE" description:"run a single sync cycle and exit"`

	Log    logging.Config   `group:"log"`
	DB     sqldb.Config     `group:"database" namespace:"db" env-namespace:"INDEXER_DB"`
	Node   codechain.Config `group:"node" namespace:"node" env-namespace:"INDEXER_NODE"`
	Engine ingester.Config  `group:"engine" namespace:"engine" env-namespace:"INDEXER_ENGINE"`
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

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal("indexer failed", zap.Error(err))
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

	switch {
	case cfg.RollbackTo != "":
		number, err := strconv.ParseUint(cfg.RollbackTo, 10, 64)
		if err != nil {
			return fmt.Errorf("parse rollback target %q: %w", cfg.RollbackTo, err)
		}
		_, err = engine.Rollback(ctx, number)
		return err
	case cfg.Once:
		res, err := engine.Sync(ctx)
		if err != nil {
			return err
		}
		logger.Info("sync finished", zap.Uint64("index_head", res.IndexHead), zap.Int("committed", res.Committed))
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return engine.Run(gctx)
	})
	if cfg.MetricsAddr != "" {
		r := mux.NewRouter()
		r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
		g.Go(func() error {
			return app.ServeHTTP(gctx, cfg.MetricsAddr, r, logger.Named("metrics"))
		})
	}
	if err := g.Wait(); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}
