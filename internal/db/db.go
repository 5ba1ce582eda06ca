package db

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"log/slog"
	"time"

	"securecheck/internal/config"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
)

func New(cfg config.DatabaseConfig) *bun.DB {
	db := NewWithDSN(cfg.DSN())
	configurePool(db, cfg)
	return db
}

// NewWithDSN creates a new database connection with a custom DSN (useful for testing)
func NewWithDSN(dsn string) *bun.DB {
	db := Open(dsn)

	if err := db.Ping(); err != nil {
		log.Fatal("Error pinging database:", err) // can't run without DB
	}

	slog.Info("database connected successfully")
	return db
}

// Open returns a bun.DB for dsn without checking connectivity.
func Open(dsn string) *bun.DB {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	return bun.NewDB(sqldb, pgdialect.New())
}

func configurePool(db *bun.DB, cfg config.DatabaseConfig) {
	sqlDB := db.DB

	maxOpen := cfg.MaxOpenConns
	if maxOpen == 0 {
		maxOpen = 25
	}
	sqlDB.SetMaxOpenConns(maxOpen)

	maxIdle := cfg.MaxIdleConns
	if maxIdle == 0 {
		maxIdle = 10
	}
	sqlDB.SetMaxIdleConns(maxIdle)

	connMaxLifetime := cfg.ConnMaxLifetime
	if connMaxLifetime == 0 {
		connMaxLifetime = 300
	}
	sqlDB.SetConnMaxLifetime(time.Duration(connMaxLifetime) * time.Second)

	connMaxIdleTime := cfg.ConnMaxIdleTime
	if connMaxIdleTime == 0 {
		connMaxIdleTime = 60
	}
	sqlDB.SetConnMaxIdleTime(time.Duration(connMaxIdleTime) * time.Second)

	slog.Info("database pool configured",
		"max_open_conns", maxOpen,
		"max_idle_conns", maxIdle,
		"conn_max_lifetime_seconds", connMaxLifetime,
		"conn_max_idle_time_seconds", connMaxIdleTime,
	)
}

func Close(db *bun.DB) {
	if db != nil {
		db.Close()
	}
}

// Table describes one table of the schema: its model, the foreign keys bun
// should emit and any CHECK constraints added after creation.
type Table struct {
	Name        string
	Model       interface{}
	ForeignKeys []string
	Checks      map[string]string
}

// CreateSchema creates the tables in order if they do not exist yet.
// Tables must be listed parents first so foreign keys resolve.
func CreateSchema(ctx context.Context, db bun.IDB, tables ...Table) error {
	for _, t := range tables {
		q := db.NewCreateTable().
			Model(t.Model).
			IfNotExists()
		for _, fk := range t.ForeignKeys {
			q = q.ForeignKey(fk)
		}
		if _, err := q.Exec(ctx); err != nil {
			return fmt.Errorf("failed to create table for model: %w", err)
		}

		for constraint, expr := range t.Checks {
			_, err := db.ExecContext(ctx, fmt.Sprintf(`
				ALTER TABLE %[1]s DROP CONSTRAINT IF EXISTS %[2]s;
				ALTER TABLE %[1]s ADD CONSTRAINT %[2]s CHECK (%[3]s);
			`, t.Name, constraint, expr))
			if err != nil {
				return fmt.Errorf("failed to add constraint %s on %s: %w", constraint, t.Name, err)
			}
		}
	}
	slog.Info("database schema ready", "tables", len(tables))
	return nil
}
