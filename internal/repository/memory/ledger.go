package memory

import (
	"context"
	"fmt"

	"carshare-escrow/internal/domain"
)

type ledgerRepository struct {
	db *DB
}

func (r *ledgerRepository) GetBalance(ctx context.Context, principal domain.Principal) (domain.Amount, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	return r.db.balances[principal], nil
}

func (r *ledgerRepository) AddBalance(ctx context.Context, principal domain.Principal, delta domain.Amount) (domain.Amount, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	next, err := r.db.adjust(ctx, r.db.balances, principal, delta)
	if err != nil {
		return next, fmt.Errorf("balance of %s would go negative", principal)
	}
	return next, nil
}

func (r *ledgerRepository) TotalBalances(ctx context.Context) (domain.Amount, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	var total domain.Amount
	for _, b := range r.db.balances {
		total = total.Add(b)
	}
	return total, nil
}

func (r *ledgerRepository) AppendEntry(ctx context.Context, e *domain.LedgerEntry) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	r.db.entries = append(r.db.entries, *e)
	r.db.record(ctx, func() { r.db.entries = r.db.entries[:len(r.db.entries)-1] })
	return nil
}

func (r *ledgerRepository) ListEntries(ctx context.Context, principal domain.Principal) ([]domain.LedgerEntry, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	var out []domain.LedgerEntry
	for _, e := range r.db.entries {
		if e.Principal == principal {
			out = append(out, e)
		}
	}
	return out, nil
}
