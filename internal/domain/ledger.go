package domain

import (
	"time"

	"github.com/google/uuid"
)

type EntryKind string

const (
	EntryKindOwnerEarning        EntryKind = "OWNER_EARNING"
	EntryKindPlatformFee         EntryKind = "PLATFORM_FEE"
	EntryKindDepositRefund       EntryKind = "DEPOSIT_REFUND"
	EntryKindDisputeOwnerPayout  EntryKind = "DISPUTE_OWNER_PAYOUT"
	EntryKindDisputeRenterPayout EntryKind = "DISPUTE_RENTER_PAYOUT"
	EntryKindRejectRefund        EntryKind = "REJECT_REFUND"
	EntryKindCancelRefund        EntryKind = "CANCEL_REFUND"
	EntryKindWithdrawal          EntryKind = "WITHDRAWAL"
)

// LedgerEntry is one line of the audit journal. Credits are positive,
// withdrawals negative; push refunds are recorded with their positive amount
// but never touch a balance.
type LedgerEntry struct {
	ID        uuid.UUID `json:"id"`
	Principal Principal `json:"principal"`
	BookingID *int64    `json:"booking_id,omitempty"`
	Kind      EntryKind `json:"kind"`
	Amount    Amount    `json:"amount"`
	CreatedOn time.Time `json:"created_on"`
}

// IsPush reports whether the entry is an external transfer that bypassed the
// pull-payment balances.
func (e LedgerEntry) IsPush() bool {
	return e.Kind == EntryKindRejectRefund || e.Kind == EntryKindCancelRefund
}

// LedgerSummary is the reconciliation view of the engine's funds.
type LedgerSummary struct {
	TotalBalances Amount `json:"total_balances"`
	HeldEscrow    Amount `json:"held_escrow"`
	OpenBookings  int64  `json:"open_bookings"`
	Holdings      Amount `json:"holdings"`
}

// Liabilities is everything the engine owes: withdrawable balances plus
// escrow not yet distributed.
func (s LedgerSummary) Liabilities() Amount {
	return s.TotalBalances.Add(s.HeldEscrow)
}

// Balanced reports whether custody holds exactly what the engine owes.
func (s LedgerSummary) Balanced() bool {
	return s.Liabilities().Equal(s.Holdings)
}
