// Package explorer serves read-only queries over the index store.
package explorer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goodnatureofminers/ledgerindex-backend/internal/clock"
	"github.com/goodnatureofminers/ledgerindex-backend/internal/index"
	lru "github.com/hashicorp/golang-lru"
	"go.uber.org/zap"
)

const (
	defaultCacheSize     = 1024
	defaultFinalityDepth = 64
	defaultWaitTimeout   = 10 * time.Second
	defaultWaitInterval  = 250 * time.Millisecond
)

// Config tunes the facade.
type Config struct {
	CacheSize     int           `long:"cache-size" env:"CACHE_SIZE" description:"finalized blocks kept in memory" default:"1024"`
	FinalityDepth uint64        `long:"finality-depth" env:"FINALITY_DEPTH" description:"depth below the head at which a block is cached" default:"64"`
	WaitTimeout   time.Duration `long:"wait-timeout" env:"WAIT_TIMEOUT" description:"longest wait for the index to reach a requested block" default:"10s"`
	WaitInterval  time.Duration `long:"wait-interval" env:"WAIT_INTERVAL" description:"index head poll interval while waiting" default:"250ms"`
	MaxLag        uint64        `long:"max-lag" env:"MAX_LAG" description:"largest index lag still reported as healthy" default:"10"`
}

// Confirmation restricts a query to transactions buried at least Threshold blocks
// below the canonical head.
type Confirmation struct {
	Only      bool
	Threshold uint64
}

// Facade answers API queries. It never writes to the store.
type Facade struct {
	logger *zap.Logger
	store  index.Reader
	heads  HeadSource
	blocks *lru.Cache
	cfg    Config
	sleep  func(context.Context, time.Duration) error
}

// NewFacade builds a Facade. heads may be nil when the node is not reachable from the
// API process; Status then reports the index head only.
func NewFacade(store index.Reader, heads HeadSource, cfg Config, logger *zap.Logger) (*Facade, error) {
	if store == nil {
		return nil, errors.New("index reader is required")
	}
	if cfg.CacheSize <= 0 {
		cfg.CacheSize = defaultCacheSize
	}
	if cfg.FinalityDepth == 0 {
		cfg.FinalityDepth = defaultFinalityDepth
	}
	if cfg.WaitTimeout <= 0 {
		cfg.WaitTimeout = defaultWaitTimeout
	}
	if cfg.WaitInterval <= 0 {
		cfg.WaitInterval = defaultWaitInterval
	}

	cache, err := lru.New(cfg.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("create block cache: %w", err)
	}
	return &Facade{
		logger: logger,
		store:  store,
		heads:  heads,
		blocks: cache,
		cfg:    cfg,
		sleep:  clock.SleepWithContext,
	}, nil
}
