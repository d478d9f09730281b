package grpc

import (
	"context"

	"carshare-escrow/internal/domain"
	"carshare-escrow/internal/service"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Handler serves CarShareService on top of the engine services.
type Handler struct {
	svc *service.Services
}

func NewHandler(svc *service.Services) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Services() *service.Services {
	return h.svc
}

func parsePrincipal(field, s string) (domain.Principal, error) {
	p, err := domain.ParsePrincipal(s)
	if err != nil {
		return "", status.Errorf(codes.InvalidArgument, "%s: %v", field, err)
	}
	return p, nil
}

// parseOptional treats an empty value as "no filter".
func parseOptional(field, s string) (domain.Principal, error) {
	if s == "" {
		return "", nil
	}
	return parsePrincipal(field, s)
}

func (h *Handler) WhoAmI(ctx context.Context, _ *Empty) (*WhoAmIResponse, error) {
	caller, err := GetPrincipalFromContext(ctx)
	if err != nil {
		return nil, err
	}
	registered, err := h.svc.Registry.IsRegistered(ctx, caller)
	if err != nil {
		return nil, toStatus(err)
	}
	roles, err := h.svc.Registry.RolesOf(ctx, caller)
	if err != nil {
		return nil, toStatus(err)
	}
	return &WhoAmIResponse{Principal: caller, Registered: registered, Roles: roles}, nil
}

func (h *Handler) Register(ctx context.Context, _ *Empty) (*Empty, error) {
	caller, err := GetPrincipalFromContext(ctx)
	if err != nil {
		return nil, err
	}
	return &Empty{}, toStatus(h.svc.Registry.Register(ctx, caller))
}

func (h *Handler) SetRoles(ctx context.Context, req *SetRolesRequest) (*Empty, error) {
	caller, err := GetPrincipalFromContext(ctx)
	if err != nil {
		return nil, err
	}
	verifier, err := parsePrincipal("insurance_verifier", req.InsuranceVerifier)
	if err != nil {
		return nil, err
	}
	arbitrator, err := parsePrincipal("arbitrator", req.Arbitrator)
	if err != nil {
		return nil, err
	}
	return &Empty{}, toStatus(h.svc.Registry.SetRoles(ctx, caller, verifier, arbitrator))
}

func (h *Handler) SetPlatformFee(ctx context.Context, req *SetPlatformFeeRequest) (*Empty, error) {
	caller, err := GetPrincipalFromContext(ctx)
	if err != nil {
		return nil, err
	}
	return &Empty{}, toStatus(h.svc.Registry.SetPlatformFee(ctx, caller, req.Bps))
}

func (h *Handler) GetRoles(ctx context.Context, _ *Empty) (*domain.RoleAssignment, error) {
	roles, err := h.svc.Registry.GetRoles(ctx)
	return roles, toStatus(err)
}

func (h *Handler) CreateListing(ctx context.Context, req *CreateListingRequest) (*IDResponse, error) {
	caller, err := GetPrincipalFromContext(ctx)
	if err != nil {
		return nil, err
	}
	id, err := h.svc.Listings.CreateListing(ctx, caller, req.ListingInput)
	if err != nil {
		return nil, toStatus(err)
	}
	return &IDResponse{ID: id}, nil
}

func (h *Handler) EditListing(ctx context.Context, req *EditListingRequest) (*Empty, error) {
	caller, err := GetPrincipalFromContext(ctx)
	if err != nil {
		return nil, err
	}
	return &Empty{}, toStatus(h.svc.Listings.EditListing(ctx, caller, req.ListingID, req.ListingInput))
}

func (h *Handler) SetListingActive(ctx context.Context, req *SetListingActiveRequest) (*Empty, error) {
	caller, err := GetPrincipalFromContext(ctx)
	if err != nil {
		return nil, err
	}
	return &Empty{}, toStatus(h.svc.Listings.SetListingActive(ctx, caller, req.ListingID, req.Active))
}

func (h *Handler) VerifyInsurance(ctx context.Context, req *VerifyInsuranceRequest) (*Empty, error) {
	caller, err := GetPrincipalFromContext(ctx)
	if err != nil {
		return nil, err
	}
	return &Empty{}, toStatus(h.svc.Listings.VerifyInsurance(ctx, caller, req.ListingID, req.IsValid))
}

func (h *Handler) GetListing(ctx context.Context, req *GetListingRequest) (*domain.Listing, error) {
	l, err := h.svc.Listings.GetListing(ctx, req.ListingID)
	return l, toStatus(err)
}

func (h *Handler) ListListings(ctx context.Context, req *ListListingsRequest) (*ListListingsResponse, error) {
	owner, err := parseOptional("owner", req.Owner)
	if err != nil {
		return nil, err
	}
	var listings []domain.Listing
	if owner.IsZero() {
		listings, err = h.svc.Listings.ListListings(ctx)
	} else {
		listings, err = h.svc.Listings.ListListingsByOwner(ctx, owner)
	}
	if err != nil {
		return nil, toStatus(err)
	}
	return &ListListingsResponse{Listings: listings}, nil
}

func (h *Handler) RequestBooking(ctx context.Context, req *RequestBookingRequest) (*IDResponse, error) {
	caller, err := GetPrincipalFromContext(ctx)
	if err != nil {
		return nil, err
	}
	id, err := h.svc.Bookings.RequestBooking(ctx, caller, req.ListingID, req.Start, req.End, req.Value)
	if err != nil {
		return nil, toStatus(err)
	}
	return &IDResponse{ID: id}, nil
}

// bookingCall adapts the single-id lifecycle operations.
func (h *Handler) bookingCall(ctx context.Context, req *BookingRequest, op func(context.Context, domain.Principal, int64) error) (*Empty, error) {
	caller, err := GetPrincipalFromContext(ctx)
	if err != nil {
		return nil, err
	}
	return &Empty{}, toStatus(op(ctx, caller, req.BookingID))
}

func (h *Handler) ApproveBooking(ctx context.Context, req *BookingRequest) (*Empty, error) {
	return h.bookingCall(ctx, req, h.svc.Bookings.ApproveBooking)
}

func (h *Handler) RejectBooking(ctx context.Context, req *BookingRequest) (*Empty, error) {
	return h.bookingCall(ctx, req, h.svc.Bookings.RejectBooking)
}

func (h *Handler) CancelBeforeActive(ctx context.Context, req *BookingRequest) (*Empty, error) {
	return h.bookingCall(ctx, req, h.svc.Bookings.CancelBeforeActive)
}

func (h *Handler) OpenDispute(ctx context.Context, req *BookingRequest) (*Empty, error) {
	return h.bookingCall(ctx, req, h.svc.Bookings.OpenDispute)
}

func (h *Handler) ConfirmPickup(ctx context.Context, req *ConfirmRequest) (*Empty, error) {
	caller, err := GetPrincipalFromContext(ctx)
	if err != nil {
		return nil, err
	}
	return &Empty{}, toStatus(h.svc.Bookings.ConfirmPickup(ctx, caller, req.BookingID, req.ProofURI))
}

func (h *Handler) ConfirmReturn(ctx context.Context, req *ConfirmRequest) (*Empty, error) {
	caller, err := GetPrincipalFromContext(ctx)
	if err != nil {
		return nil, err
	}
	return &Empty{}, toStatus(h.svc.Bookings.ConfirmReturn(ctx, caller, req.BookingID, req.ProofURI))
}

func (h *Handler) ResolveDispute(ctx context.Context, req *ResolveDisputeRequest) (*Empty, error) {
	caller, err := GetPrincipalFromContext(ctx)
	if err != nil {
		return nil, err
	}
	return &Empty{}, toStatus(h.svc.Disputes.ResolveDispute(ctx, caller, req.BookingID, req.OwnerPayout, req.RenterPayout))
}

func (h *Handler) GetBooking(ctx context.Context, req *BookingRequest) (*domain.Booking, error) {
	b, err := h.svc.Bookings.GetBooking(ctx, req.BookingID)
	return b, toStatus(err)
}

func (h *Handler) ListBookings(ctx context.Context, req *ListBookingsRequest) (*ListBookingsResponse, error) {
	renter, err := parseOptional("renter", req.Renter)
	if err != nil {
		return nil, err
	}
	owner, err := parseOptional("owner", req.Owner)
	if err != nil {
		return nil, err
	}
	var bookings []domain.Booking
	switch {
	case !renter.IsZero():
		bookings, err = h.svc.Bookings.ListBookingsByRenter(ctx, renter)
	case !owner.IsZero():
		bookings, err = h.svc.Bookings.ListBookingsByOwner(ctx, owner)
	default:
		bookings, err = h.svc.Bookings.ListBookings(ctx)
	}
	if err != nil {
		return nil, toStatus(err)
	}
	return &ListBookingsResponse{Bookings: bookings}, nil
}

func (h *Handler) RateOwner(ctx context.Context, req *RateRequest) (*Empty, error) {
	caller, err := GetPrincipalFromContext(ctx)
	if err != nil {
		return nil, err
	}
	return &Empty{}, toStatus(h.svc.Ratings.RateOwner(ctx, caller, req.BookingID, req.Score))
}

func (h *Handler) RateRenter(ctx context.Context, req *RateRequest) (*Empty, error) {
	caller, err := GetPrincipalFromContext(ctx)
	if err != nil {
		return nil, err
	}
	return &Empty{}, toStatus(h.svc.Ratings.RateRenter(ctx, caller, req.BookingID, req.Score))
}

func (h *Handler) GetRating(ctx context.Context, req *GetRatingRequest) (*domain.Rating, error) {
	var (
		r   *domain.Rating
		err error
	)
	switch req.Side {
	case domain.RatingSideOwner:
		r, err = h.svc.Ratings.GetOwnerRating(ctx, req.BookingID)
	case domain.RatingSideRenter:
		r, err = h.svc.Ratings.GetRenterRating(ctx, req.BookingID)
	default:
		return nil, status.Errorf(codes.InvalidArgument, "side must be %s or %s", domain.RatingSideOwner, domain.RatingSideRenter)
	}
	return r, toStatus(err)
}

func (h *Handler) GetReputation(ctx context.Context, req *PrincipalRequest) (*domain.Reputation, error) {
	p, err := parsePrincipal("principal", req.Principal)
	if err != nil {
		return nil, err
	}
	rep, err := h.svc.Ratings.Reputation(ctx, p)
	return rep, toStatus(err)
}

func (h *Handler) Withdraw(ctx context.Context, _ *Empty) (*WithdrawResponse, error) {
	caller, err := GetPrincipalFromContext(ctx)
	if err != nil {
		return nil, err
	}
	amount, err := h.svc.Ledger.Withdraw(ctx, caller)
	if err != nil {
		return nil, toStatus(err)
	}
	return &WithdrawResponse{Amount: amount}, nil
}

func (h *Handler) GetBalance(ctx context.Context, req *PrincipalRequest) (*BalanceResponse, error) {
	p, err := parsePrincipal("principal", req.Principal)
	if err != nil {
		return nil, err
	}
	balance, err := h.svc.Ledger.GetBalance(ctx, p)
	if err != nil {
		return nil, toStatus(err)
	}
	return &BalanceResponse{Principal: p, Balance: balance}, nil
}

func (h *Handler) GetLedgerSummary(ctx context.Context, _ *Empty) (*domain.LedgerSummary, error) {
	summary, err := h.svc.Ledger.Summary(ctx)
	return summary, toStatus(err)
}

func (h *Handler) ListLedgerEntries(ctx context.Context, req *PrincipalRequest) (*ListLedgerEntriesResponse, error) {
	p, err := parsePrincipal("principal", req.Principal)
	if err != nil {
		return nil, err
	}
	entries, err := h.svc.Ledger.ListEntries(ctx, p)
	if err != nil {
		return nil, toStatus(err)
	}
	return &ListLedgerEntriesResponse{Entries: entries}, nil
}
