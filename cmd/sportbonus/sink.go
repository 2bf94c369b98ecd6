package main

import (
	"context"
	"fmt"

	"github.com/warp/sport-bonus/config"
	"github.com/warp/sport-bonus/pipeline"
	"github.com/warp/sport-bonus/store"
	"github.com/warp/sport-bonus/store/postgres"
	"github.com/warp/sport-bonus/store/sqlite"
)

// openSink opens the configured report store, bounded by the connect timeout.
func openSink(ctx context.Context, db config.DatabaseConfig) (store.ReadSink, error) {
	if db.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, db.ConnectTimeout)
		defer cancel()
	}

	switch db.Driver {
	case config.DriverPostgres:
		return postgres.Connect(ctx, db.Postgres.DSN(), db.Postgres.MaxConns)
	case config.DriverSQLite:
		return sqlite.New(db.SQLite.Path)
	case config.DriverMemory:
		return store.NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown database driver %q", db.Driver)
	}
}

func sinkTarget(db config.DatabaseConfig) string {
	switch db.Driver {
	case config.DriverPostgres:
		return db.Postgres.Target()
	case config.DriverSQLite:
		return db.SQLite.Path
	default:
		return db.Driver
	}
}

func connector(db config.DatabaseConfig) pipeline.Connector {
	return pipeline.Connector{
		Driver: db.Driver,
		Target: sinkTarget(db),
		Open: func(ctx context.Context) (store.Sink, error) {
			return openSink(ctx, db)
		},
	}
}
