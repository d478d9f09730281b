package grpc

import "carshare-escrow/internal/domain"

type Empty struct{}

type IDResponse struct {
	ID int64 `json:"id"`
}

type WhoAmIResponse struct {
	Principal  domain.Principal `json:"principal"`
	Registered bool             `json:"registered"`
	Roles      []domain.Role    `json:"roles"`
}

type SetRolesRequest struct {
	InsuranceVerifier string `json:"insurance_verifier"`
	Arbitrator        string `json:"arbitrator"`
}

type SetPlatformFeeRequest struct {
	Bps int64 `json:"bps"`
}

type CreateListingRequest struct {
	domain.ListingInput
}

type EditListingRequest struct {
	ListingID int64 `json:"listing_id"`
	domain.ListingInput
}

type SetListingActiveRequest struct {
	ListingID int64 `json:"listing_id"`
	Active    bool  `json:"active"`
}

type VerifyInsuranceRequest struct {
	ListingID int64 `json:"listing_id"`
	IsValid   bool  `json:"is_valid"`
}

type RequestBookingRequest struct {
	ListingID int64         `json:"listing_id"`
	Start     int64         `json:"start"`
	End       int64         `json:"end"`
	Value     domain.Amount `json:"value"`
}

type BookingRequest struct {
	BookingID int64 `json:"booking_id"`
}

type ConfirmRequest struct {
	BookingID int64  `json:"booking_id"`
	ProofURI  string `json:"proof_uri"`
}

type ResolveDisputeRequest struct {
	BookingID    int64         `json:"booking_id"`
	OwnerPayout  domain.Amount `json:"owner_payout"`
	RenterPayout domain.Amount `json:"renter_payout"`
}

type RateRequest struct {
	BookingID int64 `json:"booking_id"`
	Score     int32 `json:"score"`
}

type WithdrawResponse struct {
	Amount domain.Amount `json:"amount"`
}

type GetListingRequest struct {
	ListingID int64 `json:"listing_id"`
}

type ListListingsRequest struct {
	Owner string `json:"owner,omitempty"`
}

type ListListingsResponse struct {
	Listings []domain.Listing `json:"listings"`
}

type ListBookingsRequest struct {
	Renter string `json:"renter,omitempty"`
	Owner  string `json:"owner,omitempty"`
}

type ListBookingsResponse struct {
	Bookings []domain.Booking `json:"bookings"`
}

type PrincipalRequest struct {
	Principal string `json:"principal"`
}

type BalanceResponse struct {
	Principal domain.Principal `json:"principal"`
	Balance   domain.Amount    `json:"balance"`
}

type GetRatingRequest struct {
	BookingID int64             `json:"booking_id"`
	Side      domain.RatingSide `json:"side"`
}

type ListLedgerEntriesResponse struct {
	Entries []domain.LedgerEntry `json:"entries"`
}
