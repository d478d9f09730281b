package domain

import (
	"time"

	"github.com/google/uuid"
)

type EventType string

const (
	EventListingCreated       EventType = "ListingCreated"
	EventBookingRequested     EventType = "BookingRequested"
	EventBookingStatusChanged EventType = "BookingStatusChanged"
	EventDisputeResolved      EventType = "DisputeResolved"
	EventWithdrawal           EventType = "Withdrawal"
)

// Event is published after an operation commits.
type Event struct {
	ID         uuid.UUID     `json:"id"`
	Type       EventType     `json:"type"`
	ListingID  *int64        `json:"listing_id,omitempty"`
	BookingID  *int64        `json:"booking_id,omitempty"`
	Status     BookingStatus `json:"status,omitempty"`
	Principal  Principal     `json:"principal,omitempty"`
	Amount     *Amount       `json:"amount,omitempty"`
	OccurredOn time.Time     `json:"occurred_on"`
}

func NewEvent(t EventType, at time.Time) Event {
	return Event{ID: uuid.New(), Type: t, OccurredOn: at}
}
