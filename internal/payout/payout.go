// Package payout moves currency across the engine's custody boundary.
package payout

import (
	"context"
	"errors"
	"fmt"

	"carshare-escrow/internal/domain"
	"carshare-escrow/internal/logger"
	"carshare-escrow/internal/repository"
)

var (
	ErrInsufficientFunds = repository.ErrInsufficientFunds
	ErrInvalidAmount     = errors.New("amount must be positive")
)

// Custody is the engine's account with the outside world. Receive pulls an
// attached value in from a caller; Send pays out of the engine's holdings.
type Custody interface {
	Receive(ctx context.Context, from domain.Principal, amount domain.Amount) error
	Send(ctx context.Context, to domain.Principal, amount domain.Amount) error
	Holdings(ctx context.Context) (domain.Amount, error)
}

// StoreBacked is implemented by custody whose books live in the engine's own
// store. Its transfers commit or roll back with the unit of work that made
// them and need no compensation.
type StoreBacked interface {
	Custody
	storeBacked()
}

// Vault simulates external accounts next to the engine's holdings in the
// repository store, so custody survives restarts together with the bookings
// and balances it backs. Principals without a funded account cannot attach
// value.
type Vault struct {
	tx   repository.Transactor
	repo repository.CustodyRepository
}

func NewVault(store *repository.Store) *Vault {
	return &Vault{tx: store.Transactor, repo: store.Custody}
}

func (v *Vault) storeBacked() {}

// Fund credits an external account, e.g. a faucet in development.
func (v *Vault) Fund(ctx context.Context, p domain.Principal, amount domain.Amount) error {
	if amount.Sign() <= 0 {
		return ErrInvalidAmount
	}
	_, err := v.repo.AddAccount(ctx, p, amount)
	return err
}

// Seed opens p's account with amount on first start. An existing account is
// left alone so that a restart does not mint the seed again.
func (v *Vault) Seed(ctx context.Context, p domain.Principal, amount domain.Amount) (bool, error) {
	if amount.Sign() <= 0 {
		return false, ErrInvalidAmount
	}
	return v.repo.OpenAccount(ctx, p, amount)
}

func (v *Vault) BalanceOf(ctx context.Context, p domain.Principal) (domain.Amount, error) {
	return v.repo.AccountBalance(ctx, p)
}

func (v *Vault) Receive(ctx context.Context, from domain.Principal, amount domain.Amount) error {
	if amount.Sign() <= 0 {
		return ErrInvalidAmount
	}
	err := v.tx.WithTx(ctx, func(ctx context.Context) error {
		if _, err := v.repo.AddAccount(ctx, from, amount.Neg()); err != nil {
			return fmt.Errorf("receive %s from %s: %w", amount, from, err)
		}
		_, err := v.repo.AddHoldings(ctx, amount)
		return err
	})
	logger.Transfer("in", from.String(), amount.String(), err)
	return err
}

func (v *Vault) Send(ctx context.Context, to domain.Principal, amount domain.Amount) error {
	if amount.Sign() <= 0 {
		return ErrInvalidAmount
	}
	err := v.tx.WithTx(ctx, func(ctx context.Context) error {
		if _, err := v.repo.AddHoldings(ctx, amount.Neg()); err != nil {
			return fmt.Errorf("send %s to %s: %w", amount, to, err)
		}
		_, err := v.repo.AddAccount(ctx, to, amount)
		return err
	})
	logger.Transfer("out", to.String(), amount.String(), err)
	return err
}

func (v *Vault) Holdings(ctx context.Context) (domain.Amount, error) {
	return v.repo.Holdings(ctx)
}
