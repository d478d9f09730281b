package service

import (
	"context"
	"fmt"

	"carshare-escrow/internal/domain"
)

type ledgerService struct {
	e *Engine
}

func NewLedgerService(e *Engine) LedgerService {
	return &ledgerService{e: e}
}

// Withdraw zeroes the balance before paying out.
func (s *ledgerService) Withdraw(ctx context.Context, caller domain.Principal) (domain.Amount, error) {
	var amount domain.Amount
	err := s.e.run(ctx, "ledgerService.Withdraw", func(ctx context.Context, u *unit) error {
		balance, err := s.e.store.Ledger.GetBalance(ctx, caller)
		if err != nil {
			return fmt.Errorf("load balance: %w", err)
		}
		if balance.IsZero() {
			return domain.ErrNothingToWithdraw
		}
		if _, err := s.e.store.Ledger.AddBalance(ctx, caller, balance.Neg()); err != nil {
			return fmt.Errorf("zero balance: %w", err)
		}
		if err := u.journal(ctx, caller, nil, domain.EntryKindWithdrawal, balance.Neg()); err != nil {
			return err
		}
		if err := u.send(ctx, caller, balance); err != nil {
			return err
		}
		amount = balance

		ev := domain.NewEvent(domain.EventWithdrawal, u.now)
		ev.Principal = caller
		ev.Amount = &balance
		u.emit(ev)
		return nil
	}, "caller", caller)
	return amount, err
}

func (s *ledgerService) GetBalance(ctx context.Context, p domain.Principal) (domain.Amount, error) {
	var balance domain.Amount
	err := s.e.read(ctx, func(ctx context.Context) error {
		var err error
		balance, err = s.e.store.Ledger.GetBalance(ctx, p)
		return err
	})
	return balance, err
}

func (s *ledgerService) ListEntries(ctx context.Context, p domain.Principal) ([]domain.LedgerEntry, error) {
	var entries []domain.LedgerEntry
	err := s.e.read(ctx, func(ctx context.Context) error {
		var err error
		entries, err = s.e.store.Ledger.ListEntries(ctx, p)
		return err
	})
	return entries, err
}

func (s *ledgerService) Summary(ctx context.Context) (*domain.LedgerSummary, error) {
	summary := &domain.LedgerSummary{}
	err := s.e.read(ctx, func(ctx context.Context) error {
		var err error
		if summary.TotalBalances, err = s.e.store.Ledger.TotalBalances(ctx); err != nil {
			return fmt.Errorf("total balances: %w", err)
		}
		if summary.HeldEscrow, summary.OpenBookings, err = s.e.store.Bookings.HeldEscrow(ctx); err != nil {
			return fmt.Errorf("held escrow: %w", err)
		}
		if summary.Holdings, err = s.e.custody.Holdings(ctx); err != nil {
			return fmt.Errorf("custody holdings: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return summary, nil
}
