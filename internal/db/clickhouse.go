package db

import (
	_ "github.com/ClickHouse/clickhouse-go/v2"
	"github.com/jmoiron/sqlx"
)

// NewClickHouseConnection opens the ClickHouse sink.
// dsn e.g. clickhouse://default:@localhost:9000/waa?dial_timeout=5s&compress=true
func NewClickHouseConnection(dsn string, opts PoolOpts) (*sqlx.DB, error) {
	return open(DriverClickHouse, dsn, opts)
}
