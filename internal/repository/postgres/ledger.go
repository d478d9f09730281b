package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"carshare-escrow/internal/domain"
	"carshare-escrow/internal/repository"
)

type ledgerRepository struct {
	db *sql.DB
}

func NewLedgerRepository(db *sql.DB) repository.LedgerRepository {
	return &ledgerRepository{db: db}
}

func (r *ledgerRepository) GetBalance(ctx context.Context, principal domain.Principal) (domain.Amount, error) {
	var balance domain.Amount
	query := `SELECT COALESCE((SELECT amount FROM balances WHERE principal = $1), 0)`
	err := conn(ctx, r.db).QueryRowContext(ctx, query, principal).Scan(&balance)
	return balance, err
}

// AddBalance upserts the balance row; the CHECK constraint on amount rejects
// a negative result.
func (r *ledgerRepository) AddBalance(ctx context.Context, principal domain.Principal, delta domain.Amount) (domain.Amount, error) {
	var balance domain.Amount
	query := `INSERT INTO balances (principal, amount) VALUES ($1, $2)
	          ON CONFLICT (principal) DO UPDATE SET amount = balances.amount + EXCLUDED.amount
	          RETURNING amount`
	if err := conn(ctx, r.db).QueryRowContext(ctx, query, principal, delta).Scan(&balance); err != nil {
		return domain.Amount{}, fmt.Errorf("adjust balance of %s: %w", principal, err)
	}
	return balance, nil
}

func (r *ledgerRepository) TotalBalances(ctx context.Context) (domain.Amount, error) {
	var total domain.Amount
	err := conn(ctx, r.db).QueryRowContext(ctx, `SELECT COALESCE(SUM(amount), 0) FROM balances`).Scan(&total)
	return total, err
}

func (r *ledgerRepository) AppendEntry(ctx context.Context, e *domain.LedgerEntry) error {
	query := `INSERT INTO ledger_entries (id, principal, booking_id, kind, amount, created_on) VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := conn(ctx, r.db).ExecContext(ctx, query, e.ID, e.Principal, e.BookingID, e.Kind, e.Amount, e.CreatedOn)
	return err
}

func (r *ledgerRepository) ListEntries(ctx context.Context, principal domain.Principal) ([]domain.LedgerEntry, error) {
	query := `SELECT id, principal, booking_id, kind, amount, created_on FROM ledger_entries WHERE principal = $1 ORDER BY created_on, id`
	rows, err := conn(ctx, r.db).QueryContext(ctx, query, principal)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []domain.LedgerEntry
	for rows.Next() {
		var e domain.LedgerEntry
		var bookingID sql.NullInt64
		if err := rows.Scan(&e.ID, &e.Principal, &bookingID, &e.Kind, &e.Amount, &e.CreatedOn); err != nil {
			return nil, err
		}
		if bookingID.Valid {
			id := bookingID.Int64
			e.BookingID = &id
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
