package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"carshare-escrow/internal/logger"
	"carshare-escrow/internal/repository"

	_ "github.com/lib/pq"
)

// engineLockID serialises every unit of work across server instances.
const engineLockID int64 = 7_314_002_551

type txKey struct{}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type transactor struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *repository.Store {
	return &repository.Store{
		Transactor:   &transactor{db: db},
		Participants: NewParticipantRepository(db),
		Roles:        NewRoleRepository(db),
		Listings:     NewListingRepository(db),
		Bookings:     NewBookingRepository(db),
		Ledger:       NewLedgerRepository(db),
		Ratings:      NewRatingRepository(db),
		Custody:      NewCustodyRepository(db),
	}
}

func (t *transactor) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*sql.Tx); ok {
		return fn(ctx)
	}

	tx, err := t.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	logger.DatabaseCall("advisory_lock", "SELECT pg_advisory_xact_lock($1)", "lock_id", engineLockID)
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, engineLockID); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("acquire engine lock: %w", err)
	}

	if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func conn(ctx context.Context, db *sql.DB) querier {
	if tx, ok := ctx.Value(txKey{}).(*sql.Tx); ok {
		return tx
	}
	return db
}

func notFound(err error) error {
	if err == sql.ErrNoRows {
		return repository.ErrNotFound
	}
	return err
}
