package db

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmehdipour/wa-assistant/internal/config"
	"github.com/jmoiron/sqlx"
)

const (
	DriverClickHouse = "clickhouse"
	DriverMySQL      = "mysql"
)

// PoolOpts tunes the database/sql pool behind a sink connection.
type PoolOpts struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	PingTimeout     time.Duration
}

func poolOpts(cfg config.DatabaseConfig) PoolOpts {
	return PoolOpts{
		MaxOpenConns:    cfg.MaxOpenConns,
		MaxIdleConns:    cfg.MaxIdleConns,
		ConnMaxLifetime: cfg.ConnMaxLifetime,
		ConnMaxIdleTime: cfg.ConnMaxIdleTime,
		PingTimeout:     cfg.PingTimeout,
	}
}

// OpenSink connects to the send-log sink selected by cfg.Driver.
func OpenSink(cfg config.DatabaseConfig) (*sqlx.DB, error) {
	if strings.TrimSpace(cfg.DSN) == "" {
		return nil, fmt.Errorf("sink: empty DSN (set sink.dsn or WAA_SINK_DSN)")
	}
	switch strings.ToLower(strings.TrimSpace(cfg.Driver)) {
	case DriverClickHouse:
		return NewClickHouseConnection(cfg.DSN, poolOpts(cfg))
	case DriverMySQL:
		return NewMySQLConnection(cfg.DSN, poolOpts(cfg))
	default:
		return nil, fmt.Errorf("sink: unsupported driver %q", cfg.Driver)
	}
}

// open applies the pool settings and pings within opts.PingTimeout (default 3s).
func open(driver, dsn string, opts PoolOpts) (*sqlx.DB, error) {
	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, err
	}

	if opts.MaxOpenConns > 0 {
		db.SetMaxOpenConns(opts.MaxOpenConns)
	}
	if opts.MaxIdleConns > 0 {
		db.SetMaxIdleConns(opts.MaxIdleConns)
	}
	if opts.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(opts.ConnMaxLifetime)
	}
	if opts.ConnMaxIdleTime > 0 {
		db.SetConnMaxIdleTime(opts.ConnMaxIdleTime)
	}

	timeout := opts.PingTimeout
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s ping: %w", driver, err)
	}

	return db, nil
}
