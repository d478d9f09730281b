package jobs

import (
	"context"
	"fmt"

	"carshare-escrow/internal/domain"
	"carshare-escrow/internal/logger"
)

// ErrUnbalanced is returned when custody does not hold exactly what the
// engine owes.
var ErrUnbalanced = fmt.Errorf("escrow ledger is unbalanced")

// ReconcileEscrow checks that balances plus held escrow equal custody holdings.
func (jr *JobRunner) ReconcileEscrow() {
	jr.runWithRecovery("ReconcileEscrow", func() {
		if _, err := jr.Reconcile(context.Background()); err != nil {
			jr.log.Error("Escrow reconciliation failed", "error", err)
		}
	})
}

// Reconcile returns the summary it checked. The summary is returned with
// ErrUnbalanced when the books do not match.
func (jr *JobRunner) Reconcile(ctx context.Context) (*domain.LedgerSummary, error) {
	summary, err := jr.source.Summary(ctx)
	if err != nil {
		return nil, fmt.Errorf("ledger summary: %w", err)
	}
	if !summary.Balanced() {
		logger.ErrorContext(ctx, "Escrow ledger is unbalanced",
			"holdings", summary.Holdings.String(),
			"total_balances", summary.TotalBalances.String(),
			"held_escrow", summary.HeldEscrow.String(),
			"difference", summary.Holdings.Sub(summary.Liabilities()).String())
		return summary, ErrUnbalanced
	}
	logger.InfoContext(ctx, "Escrow ledger reconciled",
		"holdings", summary.Holdings.String(),
		"open_bookings", summary.OpenBookings)
	return summary, nil
}

// ReportOverdueBookings logs bookings still out after their end time. The
// engine never changes their state on its own; the parties confirm the
// return or open a dispute.
func (jr *JobRunner) ReportOverdueBookings() {
	jr.runWithRecovery("ReportOverdueBookings", func() {
		overdue, err := jr.OverdueBookings(context.Background())
		if err != nil {
			jr.log.Error("Failed to list overdue bookings", "error", err)
			return
		}
		for _, b := range overdue {
			jr.log.Warn("Booking is overdue",
				"booking_id", b.ID,
				"status", b.Status,
				"renter", b.Renter,
				"owner", b.Owner,
				"end_date", b.EndDate)
		}
		jr.log.Info("Overdue bookings reported", "count", len(overdue))
	})
}

func (jr *JobRunner) OverdueBookings(ctx context.Context) ([]domain.Booking, error) {
	bookings, err := jr.source.ListBookings(ctx)
	if err != nil {
		return nil, err
	}
	now := jr.clock.Now().Unix()
	var overdue []domain.Booking
	for _, b := range bookings {
		if (b.Status == domain.BookingStatusActive || b.Status == domain.BookingStatusReturnPending) && b.EndDate < now {
			overdue = append(overdue, b)
		}
	}
	return overdue, nil
}
