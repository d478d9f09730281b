package domain

import "errors"

var (
	ErrAlreadyRegistered    = errors.New("principal already registered")
	ErrNotRegistered        = errors.New("principal not registered")
	ErrNotContractOwner     = errors.New("caller is not the platform owner")
	ErrFeeTooHigh           = errors.New("platform fee exceeds 1000 bps")
	ErrBadPrice             = errors.New("daily price must be positive and deposit non-negative")
	ErrNotCarOwner          = errors.New("caller is not the car owner")
	ErrRoleConflict         = errors.New("verifier and arbitrator cannot list or book cars")
	ErrOwnCarBooking        = errors.New("owner cannot book own listing")
	ErrListingInactive      = errors.New("listing is inactive")
	ErrInsuranceNotValid    = errors.New("listing insurance is not approved")
	ErrInvalidRange         = errors.New("end must be at least one day after start")
	ErrIncorrectEscrow      = errors.New("attached value does not match rental cost plus deposit")
	ErrBadStatus            = errors.New("booking status does not allow this operation")
	ErrCannotCancel         = errors.New("booking can only be cancelled before it is active")
	ErrNotApproved          = errors.New("booking is not approved")
	ErrNotActive            = errors.New("booking is not active")
	ErrNotParty             = errors.New("caller is not a party to the booking")
	ErrNotArbitrator        = errors.New("caller is not the arbitrator")
	ErrNotDisputed          = errors.New("booking is not disputed")
	ErrSplitMismatch        = errors.New("payouts must sum to the booking escrow")
	ErrOnlyRenter           = errors.New("only the renter can do this")
	ErrOnlyCarOwner         = errors.New("only the car owner can do this")
	ErrRatingOutOfRange     = errors.New("rating must be between 1 and 5")
	ErrAlreadyRated         = errors.New("already rated")
	ErrNotInsuranceVerifier = errors.New("caller is not the insurance verifier")
	ErrNothingToWithdraw    = errors.New("nothing to withdraw")

	ErrListingNotFound  = errors.New("listing not found")
	ErrBookingNotFound  = errors.New("booking not found")
	ErrInvalidPrincipal = errors.New("invalid principal")
)

var kinds = []struct {
	err  error
	kind string
}{
	{ErrAlreadyRegistered, "AlreadyRegistered"},
	{ErrNotRegistered, "NotRegistered"},
	{ErrNotContractOwner, "NotContractOwner"},
	{ErrFeeTooHigh, "FeeTooHigh"},
	{ErrBadPrice, "BadPrice"},
	{ErrNotCarOwner, "NotCarOwner"},
	{ErrRoleConflict, "RoleConflict"},
	{ErrOwnCarBooking, "OwnCarBooking"},
	{ErrListingInactive, "ListingInactive"},
	{ErrInsuranceNotValid, "InsuranceNotValid"},
	{ErrInvalidRange, "InvalidRange"},
	{ErrIncorrectEscrow, "IncorrectEscrow"},
	{ErrBadStatus, "BadStatus"},
	{ErrCannotCancel, "CannotCancel"},
	{ErrNotApproved, "NotApproved"},
	{ErrNotActive, "NotActive"},
	{ErrNotParty, "NotParty"},
	{ErrNotArbitrator, "NotArbitrator"},
	{ErrNotDisputed, "NotDisputed"},
	{ErrSplitMismatch, "SplitMismatch"},
	{ErrOnlyRenter, "OnlyRenter"},
	{ErrOnlyCarOwner, "OnlyCarOwner"},
	{ErrRatingOutOfRange, "RatingOutOfRange"},
	{ErrAlreadyRated, "AlreadyRated"},
	{ErrNotInsuranceVerifier, "NotInsuranceVerifier"},
	{ErrNothingToWithdraw, "NothingToWithdraw"},
	{ErrListingNotFound, "ListingNotFound"},
	{ErrBookingNotFound, "BookingNotFound"},
	{ErrInvalidPrincipal, "InvalidPrincipal"},
}

// KindOf returns the short taxonomy name of a rejection, or "" when err is
// not one of the engine's precondition failures.
func KindOf(err error) string {
	if err == nil {
		return ""
	}
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.kind
		}
	}
	return ""
}

// IsRejection reports whether err is a caller-visible precondition failure
// rather than an infrastructure error.
func IsRejection(err error) bool {
	return KindOf(err) != ""
}
