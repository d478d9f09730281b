package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"carshare-escrow/internal/domain"
	"carshare-escrow/internal/logger"
	"carshare-escrow/internal/repository"

	"github.com/lib/pq"
)

type custodyRepository struct {
	db *sql.DB
}

func NewCustodyRepository(db *sql.DB) repository.CustodyRepository {
	return &custodyRepository{db: db}
}

func (r *custodyRepository) Holdings(ctx context.Context) (domain.Amount, error) {
	var amount domain.Amount
	err := conn(ctx, r.db).QueryRowContext(ctx, `SELECT amount FROM custody_holdings WHERE id = 1`).Scan(&amount)
	return amount, err
}

func (r *custodyRepository) AddHoldings(ctx context.Context, delta domain.Amount) (domain.Amount, error) {
	var amount domain.Amount
	query := `UPDATE custody_holdings SET amount = amount + $1 WHERE id = 1 RETURNING amount`
	logger.DatabaseCall("update", "custody_holdings", "delta", delta.String())
	if err := conn(ctx, r.db).QueryRowContext(ctx, query, delta).Scan(&amount); err != nil {
		return domain.Amount{}, fmt.Errorf("adjust holdings: %w", insufficient(err))
	}
	return amount, nil
}

func (r *custodyRepository) AccountBalance(ctx context.Context, principal domain.Principal) (domain.Amount, error) {
	var amount domain.Amount
	query := `SELECT COALESCE((SELECT amount FROM custody_accounts WHERE principal = $1), 0)`
	err := conn(ctx, r.db).QueryRowContext(ctx, query, principal).Scan(&amount)
	return amount, err
}

// AddAccount upserts the account row; the CHECK constraint on amount rejects
// an overdraft.
func (r *custodyRepository) AddAccount(ctx context.Context, principal domain.Principal, delta domain.Amount) (domain.Amount, error) {
	var amount domain.Amount
	query := `INSERT INTO custody_accounts (principal, amount) VALUES ($1, $2)
	          ON CONFLICT (principal) DO UPDATE SET amount = custody_accounts.amount + EXCLUDED.amount
	          RETURNING amount`
	logger.DatabaseCall("upsert", "custody_accounts", "principal", principal, "delta", delta.String())
	if err := conn(ctx, r.db).QueryRowContext(ctx, query, principal, delta).Scan(&amount); err != nil {
		return domain.Amount{}, fmt.Errorf("adjust account of %s: %w", principal, insufficient(err))
	}
	return amount, nil
}

func (r *custodyRepository) OpenAccount(ctx context.Context, principal domain.Principal, amount domain.Amount) (bool, error) {
	query := `INSERT INTO custody_accounts (principal, amount) VALUES ($1, $2) ON CONFLICT (principal) DO NOTHING`
	res, err := conn(ctx, r.db).ExecContext(ctx, query, principal, amount)
	if err != nil {
		return false, insufficient(err)
	}
	n, err := res.RowsAffected()
	logger.DatabaseResult("open account", n, err, "principal", principal)
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// insufficient maps a check_violation on a custody amount to
// ErrInsufficientFunds.
func insufficient(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23514" {
		return repository.ErrInsufficientFunds
	}
	return err
}
