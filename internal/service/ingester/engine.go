// Package ingester keeps the index in step with the ledger node.
//
// The engine is the only writer of the index store. Each block is committed in one
// store transaction together with its transactions, the pending rows it confirms and
// its counter increments, so readers never observe half of a block.
package ingester

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/goodnatureofminers/ledgerindex-backend/internal/clock"
	"github.com/goodnatureofminers/ledgerindex-backend/internal/index"
	"github.com/goodnatureofminers/ledgerindex-backend/internal/model"
	"github.com/goodnatureofminers/ledgerindex-backend/internal/retry"
	"go.uber.org/zap"
)

// Config tunes the engine.
type Config struct {
	StartNumber     uint64        `long:"start-number" env:"START_NUMBER" description:"first block to index on an empty store" default:"0"`
	PrefetchWindow  int           `long:"prefetch-window" env:"PREFETCH_WINDOW" description:"blocks fetched ahead of the commit cursor" default:"16"`
	Workers         int           `long:"workers" env:"WORKERS" description:"parallel block fetches" default:"4"`
	MaxReorgDepth   uint64        `long:"max-reorg-depth" env:"MAX_REORG_DEPTH" description:"deepest reorganization followed automatically" default:"64"`
	PollInterval    time.Duration `long:"poll-interval" env:"POLL_INTERVAL" description:"pause between sync cycles when caught up" default:"2s"`
	BackoffInterval time.Duration `long:"backoff-interval" env:"BACKOFF_INTERVAL" description:"pause after a failed sync cycle" default:"5s"`
	SkipPending     bool          `long:"skip-pending" env:"SKIP_PENDING" description:"do not mirror the node mempool"`
	RetryAttempts   int           `long:"retry-attempts" env:"RETRY_ATTEMPTS" description:"node call attempts before a cycle fails" default:"5"`
}

// SyncResult summarizes one sync cycle.
type SyncResult struct {
	ChainHead      uint64
	IndexHead      uint64
	Committed      int
	Skipped        int
	Reorgs         int
	Retracted      int
	PendingSeen    int
	PendingExpired int64
}

// Engine pulls blocks from a Source and commits them to the index store.
type Engine struct {
	logger  *zap.Logger
	store   index.Store
	source  Source
	metrics Metrics
	cfg     Config
	retry   retry.Config
	sleep   func(context.Context, time.Duration) error
	now     func() time.Time

	// mu admits one Sync or Rollback at a time.
	mu sync.Mutex
}

// NewEngine builds an Engine, filling unset tuning values with defaults.
func NewEngine(store index.Store, source Source, metrics Metrics, cfg Config, logger *zap.Logger) (*Engine, error) {
	if store == nil {
		return nil, errors.New("index store is required")
	}
	if source == nil {
		return nil, errors.New("chain source is required")
	}
	if metrics == nil {
		return nil, errors.New("ingester metrics is required")
	}

	if cfg.PrefetchWindow <= 0 {
		cfg.PrefetchWindow = defaultPrefetchWindow
	}
	if cfg.Workers <= 0 {
		cfg.Workers = defaultWorkerCount
	}
	if cfg.MaxReorgDepth == 0 {
		cfg.MaxReorgDepth = defaultMaxReorgDepth
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = defaultPollInterval
	}
	if cfg.BackoffInterval <= 0 {
		cfg.BackoffInterval = defaultBackoffInterval
	}

	rc := retry.DefaultConfig()
	if cfg.RetryAttempts > 0 {
		rc.MaxAttempts = cfg.RetryAttempts
	}
	rc.Retryable = func(err error) bool {
		return errors.Is(err, model.ErrAdapterUnavailable)
	}

	return &Engine{
		logger:  logger,
		store:   store,
		source:  source,
		metrics: metrics,
		cfg:     cfg,
		retry:   rc,
		sleep:   clock.SleepWithContext,
		now:     func() time.Time { return time.Now().UTC() },
	}, nil
}

// Run syncs until ctx is canceled. Failed cycles are logged and retried after a back-off.
func (e *Engine) Run(ctx context.Context) error {
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		wait := e.cfg.PollInterval
		res, err := e.Sync(ctx)
		switch {
		case err == nil:
			if res.Committed > 0 || res.Retracted > 0 {
				e.logger.Info("sync cycle finished",
					zap.Uint64("chain_head", res.ChainHead),
					zap.Uint64("index_head", res.IndexHead),
					zap.Int("committed", res.Committed),
					zap.Int("retracted", res.Retracted))
			}
		case ctx.Err() != nil:
			return ctx.Err()
		case errors.Is(err, model.ErrSyncInProgress):
			e.logger.Debug("sync already running")
		case errors.Is(err, model.ErrConsistencyViolation):
			e.logger.Error("sync cycle aborted on consistency violation", zap.Error(err), zap.Duration("sleep", e.cfg.BackoffInterval))
			wait = e.cfg.BackoffInterval
		default:
			e.logger.Warn("sync cycle failed, backing off", zap.Error(err), zap.Duration("sleep", e.cfg.BackoffInterval))
			wait = e.cfg.BackoffInterval
		}

		if err := e.sleep(ctx, wait); err != nil {
			return err
		}
	}
}

// Sync commits every block up to the node's current head and mirrors the mempool.
// It returns model.ErrSyncInProgress while another Sync or Rollback runs.
func (e *Engine) Sync(ctx context.Context) (res SyncResult, err error) {
	if !e.mu.TryLock() {
		return res, model.ErrSyncInProgress
	}
	defer e.mu.Unlock()

	started := time.Now()
	defer func() {
		e.metrics.ObserveSync(err, res.Committed, started)
	}()

	if err = e.syncBlocks(ctx, &res); err != nil {
		return res, err
	}
	if !e.cfg.SkipPending {
		if err = e.syncPending(ctx, &res); err != nil {
			return res, err
		}
	}
	e.metrics.SetHeads(res.ChainHead, res.IndexHead)
	return res, nil
}

// Rollback retracts every canonical block above number, correcting the counters they
// contributed. It returns the number of retracted blocks.
func (e *Engine) Rollback(ctx context.Context, number uint64) (int, error) {
	if !e.mu.TryLock() {
		return 0, model.ErrSyncInProgress
	}
	defer e.mu.Unlock()

	retracted, err := e.retractAbove(ctx, number)
	if err != nil {
		return 0, err
	}
	e.logger.Info("rolled back index", zap.Uint64("to", number), zap.Int("retracted", retracted))
	return retracted, nil
}

func (e *Engine) call(ctx context.Context, operation string, fn func(context.Context) error) error {
	return retry.Do(ctx, e.retry, e.logger, operation, fn)
}
