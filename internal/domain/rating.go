package domain

import "time"

// MinRating and MaxRating bound a reputation score.
const (
	MinRating = 1
	MaxRating = 5
)

type RatingSide string

const (
	// RatingSideOwner is the renter's rating of the car owner.
	RatingSideOwner RatingSide = "OWNER"
	// RatingSideRenter is the owner's rating of the renter.
	RatingSideRenter RatingSide = "RENTER"
)

type Rating struct {
	BookingID int64      `json:"booking_id"`
	Side      RatingSide `json:"side"`
	Score     int32      `json:"score"`
	Set       bool       `json:"set"`
	RatedBy   Principal  `json:"rated_by,omitempty"`
	Subject   Principal  `json:"subject,omitempty"`
	RatedOn   time.Time  `json:"rated_on,omitempty"`
}

func ValidScore(score int32) error {
	if score < MinRating || score > MaxRating {
		return ErrRatingOutOfRange
	}
	return nil
}

// Reputation aggregates the ratings a principal received.
type Reputation struct {
	Principal       Principal `json:"principal"`
	AsOwnerCount    int64     `json:"as_owner_count"`
	AsOwnerAverage  float64   `json:"as_owner_average"`
	AsRenterCount   int64     `json:"as_renter_count"`
	AsRenterAverage float64   `json:"as_renter_average"`
}
