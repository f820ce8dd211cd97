// Package logging builds the process logger.
package logging

import (
	"errors"
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Config selects the log level and an optional rotating log file.
type Config struct {
	Level       string `long:"log-level" env:"LOG_LEVEL" description:"minimum log level" default:"info"`
	Development bool   `long:"log-development" env:"LOG_DEVELOPMENT" description:"human readable console output"`
	File        string `long:"log-file" env:"LOG_FILE" description:"also write JSON logs to this file"`
	MaxSizeMB   int    `long:"log-max-size" env:"LOG_MAX_SIZE" description:"log file size in MB before rotation" default:"100"`
	MaxBackups  int    `long:"log-max-backups" env:"LOG_MAX_BACKUPS" description:"rotated log files to keep" default:"5"`
	MaxAgeDays  int    `long:"log-max-age" env:"LOG_MAX_AGE" description:"days to keep rotated log files" default:"14"`
	Compress    bool   `long:"log-compress" env:"LOG_COMPRESS" description:"gzip rotated log files"`
}

// New returns a console logger, teed into a lumberjack file sink when File is set.
func New(cfg Config) (*zap.Logger, error) {
	level := zapcore.InfoLevel
	if cfg.Level != "" {
		if err := level.Set(cfg.Level); err != nil {
			return nil, fmt.Errorf("parse log level %q: %w", cfg.Level, err)
		}
	}

	zc := zap.NewProductionConfig()
	if cfg.Development {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	logger, err := zc.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	if cfg.File == "" {
		return logger, nil
	}

	if cfg.MaxSizeMB < 0 || cfg.MaxBackups < 0 || cfg.MaxAgeDays < 0 {
		return nil, errors.New("log rotation limits must not be negative")
	}
	sink := zapcore.AddSync(&lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
		Compress:   cfg.Compress,
	})
	encoder := zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	fileCore := zapcore.NewCore(encoder, sink, level)

	return logger.WithOptions(zap.WrapCore(func(c zapcore.Core) zapcore.Core {
		return zapcore.NewTee(c, fileCore)
	})), nil
}
