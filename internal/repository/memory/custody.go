package memory

import (
	"context"

	"carshare-escrow/internal/domain"
	"carshare-escrow/internal/repository"
)

type custodyRepository struct {
	db *DB
}

func (r *custodyRepository) Holdings(ctx context.Context) (domain.Amount, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	return r.db.holdings, nil
}

func (r *custodyRepository) AddHoldings(ctx context.Context, delta domain.Amount) (domain.Amount, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	prev := r.db.holdings
	next := prev.Add(delta)
	if next.Sign() < 0 {
		return prev, repository.ErrInsufficientFunds
	}
	r.db.holdings = next
	r.db.record(ctx, func() { r.db.holdings = prev })
	return next, nil
}

func (r *custodyRepository) AccountBalance(ctx context.Context, principal domain.Principal) (domain.Amount, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	return r.db.accounts[principal], nil
}

func (r *custodyRepository) AddAccount(ctx context.Context, principal domain.Principal, delta domain.Amount) (domain.Amount, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	return r.db.adjust(ctx, r.db.accounts, principal, delta)
}

func (r *custodyRepository) OpenAccount(ctx context.Context, principal domain.Principal, amount domain.Amount) (bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if _, exists := r.db.accounts[principal]; exists {
		return false, nil
	}
	if _, err := r.db.adjust(ctx, r.db.accounts, principal, amount); err != nil {
		return false, err
	}
	return true, nil
}
