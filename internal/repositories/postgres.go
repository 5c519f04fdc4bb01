package repositories

import (
	"context"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pkg/errors"
	"microblog/internal/interfaces"
)

const uniqueViolation = "23505"

// PostgresStore is the Store backed by a pgx pool.
type PostgresStore struct {
	pool interfaces.PgxPoolIface
	db   DBTX
	inTx bool
}

// NewPostgresStore creates a store on top of pool.
func NewPostgresStore(pool interfaces.PgxPoolIface) *PostgresStore {
	return &PostgresStore{pool: pool, db: pool}
}

func (s *PostgresStore) Users() UserRepository {
	return &postgresUsers{db: s.db}
}

func (s *PostgresStore) Posts() PostRepository {
	return &postgresPosts{db: s.db}
}

func (s *PostgresStore) Followers() FollowRepository {
	return &postgresFollowers{db: s.db}
}

// WithTx runs fn inside a transaction. Nested calls join the outer transaction.
func (s *PostgresStore) WithTx(ctx context.Context, fn func(tx Store) error) error {
	if s.inTx {
		return fn(s)
	}

	tx, err := beginTransaction(ctx, s.pool)
	if err != nil {
		return err
	}

	committed := false
	defer func() {
		if !committed {
			rollbackTransaction(ctx, tx)
		}
	}()

	if err := fn(&PostgresStore{pool: s.pool, db: tx, inTx: true}); err != nil {
		return err
	}

	// A failed commit closes the transaction, so there is nothing left to roll back.
	committed = true
	return commitTransaction(ctx, tx)
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// translateError maps driver errors onto the package sentinels and adds context.
func translateError(err error, action string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return errors.Wrap(ErrConflict, pgErr.ConstraintName)
	}
	return errors.Wrap(err, action)
}

func itoa(n int) string {
	return strconv.Itoa(n)
}
