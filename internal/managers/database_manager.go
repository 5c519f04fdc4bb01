// Package managers wraps the external systems the microblog talks to: the database pool, token signing,
// mail delivery, server-side sessions and the translation service.
package managers

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pkg/errors"
	"github.com/pressly/goose/v3"
	log "github.com/sirupsen/logrus"
	"microblog/internal/interfaces"
	"microblog/internal/migrations"
)

// DatabaseMgr defines the interface for database management.
// It provides access to the connection pool and applies the schema migrations.
type DatabaseMgr interface {
	GetPool() interfaces.PgxPoolIface
	RunMigrations(ctx context.Context) error
	Close()
}

// DatabaseManager is responsible for managing the database connection pool.
type DatabaseManager struct {
	Pool *pgxpool.Pool
}

// GetPool returns the database connection pool managed by the DatabaseManager.
func (dbMgr *DatabaseManager) GetPool() interfaces.PgxPoolIface {
	return dbMgr.Pool
}

// RunMigrations brings the schema up to the newest embedded migration. Already applied migrations are skipped.
func (dbMgr *DatabaseManager) RunMigrations(ctx context.Context) error {
	db := stdlib.OpenDBFromPool(dbMgr.Pool)
	defer func() {
		if err := db.Close(); err != nil {
			log.Warn("Error closing migration connection: ", err)
		}
	}()

	goose.SetBaseFS(migrations.Migrations)
	goose.SetLogger(log.StandardLogger())
	if err := goose.SetDialect("pgx"); err != nil {
		return errors.Wrap(err, "set migration dialect")
	}

	log.Info("Running database migrations")
	if err := goose.UpContext(ctx, db, "."); err != nil {
		return errors.Wrap(err, "run migrations")
	}
	log.Info("Database migrations applied")
	return nil
}

func (dbMgr *DatabaseManager) Close() {
	dbMgr.Pool.Close()
}

// NewDatabaseManager creates and initializes a new instance of DatabaseManager with the provided database connection pool.
func NewDatabaseManager(pool *pgxpool.Pool) DatabaseMgr {
	log.Info("Initializing database manager")
	return &DatabaseManager{Pool: pool}
}
