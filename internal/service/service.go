package service

import (
	"context"

	"carshare-escrow/internal/domain"
)

type RegistryService interface {
	Register(ctx context.Context, caller domain.Principal) error
	SetRoles(ctx context.Context, caller, verifier, arbitrator domain.Principal) error
	SetPlatformFee(ctx context.Context, caller domain.Principal, bps int64) error
	GetRoles(ctx context.Context) (*domain.RoleAssignment, error)
	GetParticipant(ctx context.Context, p domain.Principal) (*domain.Participant, error)
	IsRegistered(ctx context.Context, p domain.Principal) (bool, error)
	IsPlatformOwner(ctx context.Context, p domain.Principal) (bool, error)
	IsInsuranceVerifier(ctx context.Context, p domain.Principal) (bool, error)
	IsArbitrator(ctx context.Context, p domain.Principal) (bool, error)
	RolesOf(ctx context.Context, p domain.Principal) ([]domain.Role, error)
}

type ListingService interface {
	CreateListing(ctx context.Context, caller domain.Principal, in domain.ListingInput) (int64, error)
	EditListing(ctx context.Context, caller domain.Principal, id int64, in domain.ListingInput) error
	SetListingActive(ctx context.Context, caller domain.Principal, id int64, active bool) error
	VerifyInsurance(ctx context.Context, caller domain.Principal, id int64, isValid bool) error
	GetListing(ctx context.Context, id int64) (*domain.Listing, error)
	ListListings(ctx context.Context) ([]domain.Listing, error)
	ListListingsByOwner(ctx context.Context, owner domain.Principal) ([]domain.Listing, error)
}

type BookingService interface {
	// RequestBooking takes value into custody as the booking's escrow.
	RequestBooking(ctx context.Context, caller domain.Principal, listingID, start, end int64, value domain.Amount) (int64, error)
	ApproveBooking(ctx context.Context, caller domain.Principal, id int64) error
	RejectBooking(ctx context.Context, caller domain.Principal, id int64) error
	CancelBeforeActive(ctx context.Context, caller domain.Principal, id int64) error
	ConfirmPickup(ctx context.Context, caller domain.Principal, id int64, proofURI string) error
	ConfirmReturn(ctx context.Context, caller domain.Principal, id int64, proofURI string) error
	OpenDispute(ctx context.Context, caller domain.Principal, id int64) error
	GetBooking(ctx context.Context, id int64) (*domain.Booking, error)
	ListBookings(ctx context.Context) ([]domain.Booking, error)
	ListBookingsByRenter(ctx context.Context, renter domain.Principal) ([]domain.Booking, error)
	ListBookingsByOwner(ctx context.Context, owner domain.Principal) ([]domain.Booking, error)
}

type DisputeService interface {
	ResolveDispute(ctx context.Context, caller domain.Principal, id int64, ownerPayout, renterPayout domain.Amount) error
}

type RatingService interface {
	RateOwner(ctx context.Context, caller domain.Principal, id int64, score int32) error
	RateRenter(ctx context.Context, caller domain.Principal, id int64, score int32) error
	GetOwnerRating(ctx context.Context, id int64) (*domain.Rating, error)
	GetRenterRating(ctx context.Context, id int64) (*domain.Rating, error)
	Reputation(ctx context.Context, p domain.Principal) (*domain.Reputation, error)
}

type LedgerService interface {
	// Withdraw zeroes the caller's balance and pays it out. It returns the
	// amount sent.
	Withdraw(ctx context.Context, caller domain.Principal) (domain.Amount, error)
	GetBalance(ctx context.Context, p domain.Principal) (domain.Amount, error)
	ListEntries(ctx context.Context, p domain.Principal) ([]domain.LedgerEntry, error)
	Summary(ctx context.Context) (*domain.LedgerSummary, error)
}

// Services bundles every operation of one engine for the transport layer.
type Services struct {
	Registry RegistryService
	Listings ListingService
	Bookings BookingService
	Disputes DisputeService
	Ratings  RatingService
	Ledger   LedgerService
}

func NewServices(e *Engine) *Services {
	return &Services{
		Registry: NewRegistryService(e),
		Listings: NewListingService(e),
		Bookings: NewBookingService(e),
		Disputes: NewDisputeService(e),
		Ratings:  NewRatingService(e),
		Ledger:   NewLedgerService(e),
	}
}
