// Package sqldb implements the index store on a relational database through gorm.
package sqldb

import (
	"context"
	"errors"
	"fmt"
	"time"

	gomysql "github.com/go-sql-driver/mysql"
	"github.com/goodnatureofminers/ledgerindex-backend/internal/index"
	"github.com/goodnatureofminers/ledgerindex-backend/internal/model"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const (
	DialectMySQL    = "mysql"
	DialectPostgres = "postgres"
	DialectSQLite   = "sqlite"
)

// Config selects and tunes the database.
type Config struct {
	Dialect       string        `long:"dialect" env:"DIALECT" description:"database dialect: mysql, postgres or sqlite" default:"sqlite"`
	DSN           string        `long:"dsn" env:"DSN" description:"database connection string" default:"file:ledgerindex.db?cache=shared"`
	MaxOpenConns  int           `long:"max-open-conns" env:"MAX_OPEN_CONNS" description:"max open connections" default:"16"`
	MaxIdleConns  int           `long:"max-idle-conns" env:"MAX_IDLE_CONNS" description:"max idle connections" default:"4"`
	SlowThreshold time.Duration `long:"slow-threshold" env:"SLOW_THRESHOLD" description:"log statements slower than this" default:"1s"`
}

// Repository is the gorm backed index store.
type Repository struct {
	db      *gorm.DB
	metrics Metrics
}

var _ index.Store = (*Repository)(nil)

// Open connects to the configured database and creates missing tables.
func Open(ctx context.Context, cfg Config, logger *zap.Logger, metrics Metrics) (*Repository, error) {
	if cfg.DSN == "" {
		return nil, errors.New("database dsn is required")
	}

	dialector, err := newDialector(cfg)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:                 newGormLogger(logger.Named("gorm"), cfg.SlowThreshold),
		SkipDefaultTransaction: true,
		NowFunc:                func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", cfg.Dialect, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql db: %w", err)
	}
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}

	repo := NewRepository(db, metrics)
	if err := repo.Migrate(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	return repo, nil
}

// NewRepository wraps an open gorm handle.
func NewRepository(db *gorm.DB, metrics Metrics) *Repository {
	return &Repository{db: db, metrics: metrics}
}

func newDialector(cfg Config) (gorm.Dialector, error) {
	switch cfg.Dialect {
	case DialectMySQL:
		dsn, err := gomysql.ParseDSN(cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("parse mysql dsn: %w", err)
		}
		dsn.ParseTime = true
		dsn.Loc = time.UTC
		return mysql.Open(dsn.FormatDSN()), nil
	case DialectPostgres:
		connCfg, err := pgx.ParseConfig(cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("parse postgres dsn: %w", err)
		}
		return postgres.New(postgres.Config{Conn: stdlib.OpenDB(*connCfg)}), nil
	case DialectSQLite:
		return sqlite.Open(cfg.DSN), nil
	default:
		return nil, fmt.Errorf("unsupported database dialect %q", cfg.Dialect)
	}
}

// Migrate creates or extends the index tables.
func (r *Repository) Migrate(ctx context.Context) (err error) {
	start := time.Now()
	defer func() {
		r.metrics.Observe("migrate", err, start)
	}()

	if err = r.db.WithContext(ctx).AutoMigrate(tables()...); err != nil {
		return storageErr("migrate tables", err)
	}
	return nil
}

// Atomic runs fn inside one database transaction.
func (r *Repository) Atomic(ctx context.Context, fn func(w index.Writer) error) (err error) {
	start := time.Now()
	defer func() {
		r.metrics.Observe("atomic", err, start)
	}()

	var fnErr error
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		fnErr = fn(&Repository{db: tx, metrics: r.metrics})
		return fnErr
	})
	if err != nil && fnErr == nil {
		return storageErr("commit transaction", err)
	}
	return err
}

// Close releases the connection pool.
func (r *Repository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return fmt.Errorf("get sql db: %w", err)
	}
	return sqlDB.Close()
}

// Ping checks the database connection.
func (r *Repository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return storageErr("get sql db", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return storageErr("ping database", err)
	}
	return nil
}

func storageErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", model.ErrStorageFailure, op, err)
}

func notFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
