package http

import (
	"net/http"
	"strconv"

	"carshare-escrow/internal/domain"
	"carshare-escrow/internal/service"

	"github.com/gorilla/mux"
)

// QueryHandler exposes the read-only operations for browser clients.
type QueryHandler struct {
	svc *service.Services
}

func NewQueryHandler(svc *service.Services) *QueryHandler {
	return &QueryHandler{svc: svc}
}

func pathID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)[name], 10, 64)
	return id, err == nil && id >= 0
}

func pathPrincipal(r *http.Request) (domain.Principal, error) {
	return domain.ParsePrincipal(mux.Vars(r)["principal"])
}

func optionalPrincipal(r *http.Request, key string) (domain.Principal, error) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return "", nil
	}
	return domain.ParsePrincipal(v)
}

func (h *QueryHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *QueryHandler) GetRoles(w http.ResponseWriter, r *http.Request) {
	roles, err := h.svc.Registry.GetRoles(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, roles)
}

func (h *QueryHandler) ListListings(w http.ResponseWriter, r *http.Request) {
	owner, err := optionalPrincipal(r, "owner")
	if err != nil {
		badRequest(w, "invalid owner")
		return
	}
	var listings []domain.Listing
	if owner.IsZero() {
		listings, err = h.svc.Listings.ListListings(r.Context())
	} else {
		listings, err = h.svc.Listings.ListListingsByOwner(r.Context(), owner)
	}
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, listings)
}

func (h *QueryHandler) GetListing(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		badRequest(w, "invalid listing id")
		return
	}
	l, err := h.svc.Listings.GetListing(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, l)
}

func (h *QueryHandler) ListBookings(w http.ResponseWriter, r *http.Request) {
	renter, err := optionalPrincipal(r, "renter")
	if err != nil {
		badRequest(w, "invalid renter")
		return
	}
	owner, err := optionalPrincipal(r, "owner")
	if err != nil {
		badRequest(w, "invalid owner")
		return
	}
	var bookings []domain.Booking
	switch {
	case !renter.IsZero():
		bookings, err = h.svc.Bookings.ListBookingsByRenter(r.Context(), renter)
	case !owner.IsZero():
		bookings, err = h.svc.Bookings.ListBookingsByOwner(r.Context(), owner)
	default:
		bookings, err = h.svc.Bookings.ListBookings(r.Context())
	}
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, bookings)
}

func (h *QueryHandler) GetBooking(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		badRequest(w, "invalid booking id")
		return
	}
	b, err := h.svc.Bookings.GetBooking(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (h *QueryHandler) GetRating(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		badRequest(w, "invalid booking id")
		return
	}
	var (
		rating *domain.Rating
		err    error
	)
	switch mux.Vars(r)["side"] {
	case "owner":
		rating, err = h.svc.Ratings.GetOwnerRating(r.Context(), id)
	case "renter":
		rating, err = h.svc.Ratings.GetRenterRating(r.Context(), id)
	default:
		badRequest(w, "side must be owner or renter")
		return
	}
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rating)
}

type balanceView struct {
	Principal domain.Principal `json:"principal"`
	Balance   domain.Amount    `json:"balance"`
}

func (h *QueryHandler) GetBalance(w http.ResponseWriter, r *http.Request) {
	p, err := pathPrincipal(r)
	if err != nil {
		badRequest(w, "invalid principal")
		return
	}
	balance, err := h.svc.Ledger.GetBalance(r.Context(), p)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, balanceView{Principal: p, Balance: balance})
}

func (h *QueryHandler) ListEntries(w http.ResponseWriter, r *http.Request) {
	p, err := pathPrincipal(r)
	if err != nil {
		badRequest(w, "invalid principal")
		return
	}
	entries, err := h.svc.Ledger.ListEntries(r.Context(), p)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (h *QueryHandler) GetReputation(w http.ResponseWriter, r *http.Request) {
	p, err := pathPrincipal(r)
	if err != nil {
		badRequest(w, "invalid principal")
		return
	}
	rep, err := h.svc.Ratings.Reputation(r.Context(), p)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

type summaryView struct {
	*domain.LedgerSummary
	Liabilities domain.Amount `json:"liabilities"`
	Balanced    bool          `json:"balanced"`
}

func (h *QueryHandler) GetLedgerSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.svc.Ledger.Summary(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summaryView{
		LedgerSummary: summary,
		Liabilities:   summary.Liabilities(),
		Balanced:      summary.Balanced(),
	})
}
