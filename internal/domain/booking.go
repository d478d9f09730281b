package domain

import "time"

type BookingStatus string

const (
	BookingStatusNone          BookingStatus = "NONE"
	BookingStatusRequested     BookingStatus = "REQUESTED"
	BookingStatusApproved      BookingStatus = "APPROVED"
	BookingStatusActive        BookingStatus = "ACTIVE"
	BookingStatusReturnPending BookingStatus = "RETURN_PENDING"
	BookingStatusCompleted     BookingStatus = "COMPLETED"
	BookingStatusRejected      BookingStatus = "REJECTED"
	BookingStatusCancelled     BookingStatus = "CANCELLED"
	BookingStatusDisputed      BookingStatus = "DISPUTED"
)

var transitions = map[BookingStatus]map[BookingStatus]struct{}{
	BookingStatusNone:      {BookingStatusRequested: {}},
	BookingStatusRequested: {BookingStatusApproved: {}, BookingStatusRejected: {}, BookingStatusCancelled: {}},
	BookingStatusApproved:  {BookingStatusActive: {}, BookingStatusCancelled: {}, BookingStatusDisputed: {}},
	BookingStatusActive:    {BookingStatusReturnPending: {}, BookingStatusCompleted: {}, BookingStatusDisputed: {}},
	BookingStatusReturnPending: {
		BookingStatusCompleted: {},
		BookingStatusDisputed:  {},
	},
	BookingStatusDisputed:  {BookingStatusCompleted: {}},
	BookingStatusCompleted: {},
	BookingStatusRejected:  {},
	BookingStatusCancelled: {},
}

// CanTransition reports whether the lifecycle allows moving from one status
// to another.
func CanTransition(from, to BookingStatus) bool {
	allowed, ok := transitions[from]
	if !ok {
		return false
	}
	_, ok = allowed[to]
	return ok
}

// Terminal statuses never change again.
func (s BookingStatus) Terminal() bool {
	return s == BookingStatusCompleted || s == BookingStatusRejected || s == BookingStatusCancelled
}

// HoldsEscrow reports whether a booking in this status still has its escrow
// in custody, undistributed.
func (s BookingStatus) HoldsEscrow() bool {
	switch s {
	case BookingStatusRequested, BookingStatusApproved, BookingStatusActive,
		BookingStatusReturnPending, BookingStatusDisputed:
		return true
	}
	return false
}

// Confirmation is one side's pickup or return acknowledgement.
type Confirmation struct {
	Confirmed bool   `json:"confirmed"`
	ProofURI  string `json:"proof_uri,omitempty"`
}

type Booking struct {
	ID        int64     `json:"id"`
	ListingID int64     `json:"listing_id"`
	Owner     Principal `json:"owner"`
	Renter    Principal `json:"renter"`
	StartDate int64     `json:"start_date"`
	EndDate   int64     `json:"end_date"`
	// Price snapshot taken from the listing at request time. Later listing
	// edits never change these.
	Days         int64         `json:"days"`
	DailyPrice   Amount        `json:"daily_price"`
	RentalCost   Amount        `json:"rental_cost"`
	Deposit      Amount        `json:"deposit"`
	Escrow       Amount        `json:"escrow"`
	Status       BookingStatus `json:"status"`
	RenterPickup Confirmation  `json:"renter_pickup"`
	OwnerPickup  Confirmation  `json:"owner_pickup"`
	RenterReturn Confirmation  `json:"renter_return"`
	OwnerReturn  Confirmation  `json:"owner_return"`
	Disputed     bool          `json:"disputed"`
	CreatedOn    time.Time     `json:"created_on"`
	UpdatedOn    time.Time     `json:"updated_on"`
}

// RoleOf resolves p's role in this booking.
func (b *Booking) RoleOf(p Principal) (Role, bool) {
	switch {
	case p.IsZero():
		return "", false
	case p == b.Renter:
		return RoleRenter, true
	case p == b.Owner:
		return RoleOwner, true
	}
	return "", false
}

// ConfirmPickup records p's pickup confirmation and reports whether both
// sides have now confirmed.
func (b *Booking) ConfirmPickup(role Role, proofURI string) bool {
	c := Confirmation{Confirmed: true, ProofURI: proofURI}
	if role == RoleRenter {
		b.RenterPickup = c
	} else {
		b.OwnerPickup = c
	}
	return b.RenterPickup.Confirmed && b.OwnerPickup.Confirmed
}

// ConfirmReturn records p's return confirmation and reports whether both
// sides have now confirmed.
func (b *Booking) ConfirmReturn(role Role, proofURI string) bool {
	c := Confirmation{Confirmed: true, ProofURI: proofURI}
	if role == RoleRenter {
		b.RenterReturn = c
	} else {
		b.OwnerReturn = c
	}
	return b.RenterReturn.Confirmed && b.OwnerReturn.Confirmed
}
