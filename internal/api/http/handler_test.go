package http_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	httpapi "carshare-escrow/internal/api/http"
	"carshare-escrow/internal/clock"
	"carshare-escrow/internal/domain"
	"carshare-escrow/internal/events"
	"carshare-escrow/internal/payout"
	"carshare-escrow/internal/repository/memory"
	"carshare-escrow/internal/service"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func milli(n int64) domain.Amount { return domain.NewAmount(n).MulInt64(1_000_000_000_000_000) }

const (
	platform = domain.Principal("platform")
	verifier = domain.Principal("verifier")
	owner    = domain.Principal("owner")
	renter   = domain.Principal("renter")
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

type fixture struct {
	ctx    context.Context
	svc    *service.Services
	hub    *events.Hub
	server *httptest.Server
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore(memory.NewDB())
	vault := payout.NewVault(store)
	hub := events.NewHub()
	engine := service.NewEngine(store, vault,
		clock.NewManual(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)), hub)
	require.NoError(t, engine.Bootstrap(ctx, domain.RoleAssignment{
		PlatformOwner:     platform,
		InsuranceVerifier: verifier,
		Arbitrator:        "arbitrator",
		PlatformFeeBps:    200,
	}))
	svc := service.NewServices(engine)
	for _, p := range []domain.Principal{owner, renter} {
		require.NoError(t, svc.Registry.Register(ctx, p))
	}
	require.NoError(t, vault.Fund(ctx, renter, milli(5_000)))

	router := httpapi.NewRouter(httpapi.NewQueryHandler(svc), httpapi.NewEventStream(hub, []string{"*"}), []string{"*"})
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return &fixture{ctx: ctx, svc: svc, hub: hub, server: server}
}

func (f *fixture) booking(t *testing.T) int64 {
	t.Helper()
	listingID, err := f.svc.Listings.CreateListing(f.ctx, owner, domain.ListingInput{
		DailyPrice:      milli(50),
		SecurityDeposit: milli(500),
		Make:            "Renault",
		Model:           "Zoe",
		Year:            2021,
	})
	require.NoError(t, err)
	require.NoError(t, f.svc.Listings.VerifyInsurance(f.ctx, verifier, listingID, true))
	start := int64(1_767_225_600)
	id, err := f.svc.Bookings.RequestBooking(f.ctx, renter, listingID, start, start+3*domain.SecondsPerDay, milli(650))
	require.NoError(t, err)
	return id
}

func (f *fixture) get(t *testing.T, path string) (int, envelope) {
	t.Helper()
	resp, err := http.Get(f.server.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()
	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return resp.StatusCode, env
}

func TestQueryHandler_Bookings(t *testing.T) {
	f := newFixture(t)
	id := f.booking(t)

	status, env := f.get(t, "/api/v1/bookings/0")
	require.Equal(t, http.StatusOK, status)
	assert.True(t, env.Success)
	var b domain.Booking
	require.NoError(t, json.Unmarshal(env.Data, &b))
	assert.Equal(t, id, b.ID)
	assert.Equal(t, domain.BookingStatusRequested, b.Status)
	assert.Equal(t, milli(650), b.Escrow)

	status, env = f.get(t, "/api/v1/bookings?renter=renter")
	require.Equal(t, http.StatusOK, status)
	var list []domain.Booking
	require.NoError(t, json.Unmarshal(env.Data, &list))
	assert.Len(t, list, 1)

	status, env = f.get(t, "/api/v1/bookings/7")
	assert.Equal(t, http.StatusNotFound, status)
	assert.False(t, env.Success)
	require.NotNil(t, env.Error)
	assert.Equal(t, "BookingNotFound", env.Error.Code)
}

func TestQueryHandler_LedgerSummary(t *testing.T) {
	f := newFixture(t)
	f.booking(t)

	status, env := f.get(t, "/api/v1/ledger/summary")
	require.Equal(t, http.StatusOK, status)
	var summary struct {
		HeldEscrow  domain.Amount `json:"held_escrow"`
		Holdings    domain.Amount `json:"holdings"`
		Liabilities domain.Amount `json:"liabilities"`
		Balanced    bool          `json:"balanced"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &summary))
	assert.Equal(t, milli(650), summary.HeldEscrow)
	assert.Equal(t, milli(650), summary.Holdings)
	assert.Equal(t, milli(650), summary.Liabilities)
	assert.True(t, summary.Balanced)
}

func TestQueryHandler_AmountsAreDecimalStrings(t *testing.T) {
	f := newFixture(t)
	f.booking(t)

	_, env := f.get(t, "/api/v1/ledger/summary")
	var summary map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(env.Data, &summary))
	for _, field := range []string{"total_balances", "held_escrow", "holdings", "liabilities"} {
		var s string
		assert.NoError(t, json.Unmarshal(summary[field], &s), field)
	}
	assert.Equal(t, `"650000000000000000000"`, string(summary["holdings"]))

	_, env = f.get(t, "/api/v1/bookings/0")
	var booking map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(env.Data, &booking))
	for _, field := range []string{"daily_price", "rental_cost", "deposit", "escrow"} {
		var s string
		assert.NoError(t, json.Unmarshal(booking[field], &s), field)
	}

	_, env = f.get(t, "/api/v1/principals/owner/balance")
	var balance map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(env.Data, &balance))
	assert.Equal(t, `"0"`, string(balance["balance"]))
}

func TestQueryHandler_Principals(t *testing.T) {
	f := newFixture(t)

	status, env := f.get(t, "/api/v1/principals/owner/balance")
	require.Equal(t, http.StatusOK, status)
	var balance struct {
		Principal string `json:"principal"`
		Balance   string `json:"balance"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &balance))
	assert.Equal(t, "owner", balance.Principal)
	assert.Equal(t, "0", balance.Balance)

	status, env = f.get(t, "/api/v1/principals/0x1234/balance")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "BAD_REQUEST", env.Error.Code)

	status, _ = f.get(t, "/api/v1/principals/owner/reputation")
	assert.Equal(t, http.StatusOK, status)
}

func TestQueryHandler_RatingSide(t *testing.T) {
	f := newFixture(t)
	id := f.booking(t)

	status, env := f.get(t, "/api/v1/bookings/0/ratings/owner")
	require.Equal(t, http.StatusOK, status)
	var r domain.Rating
	require.NoError(t, json.Unmarshal(env.Data, &r))
	assert.Equal(t, id, r.BookingID)
	assert.False(t, r.Set)

	status, _ = f.get(t, "/api/v1/bookings/0/ratings/both")
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestRouter_NotFoundAndHeaders(t *testing.T) {
	f := newFixture(t)

	resp, err := http.Get(f.server.URL + "/api/v1/roles")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"))

	status, env := f.get(t, "/api/v1/nothing")
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "NOT_FOUND", env.Error.Code)
}

func TestEventStream(t *testing.T) {
	f := newFixture(t)

	url := "ws" + strings.TrimPrefix(f.server.URL, "http") + "/api/v1/events?principal=renter"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return f.hub.Subscribers() == 1 }, time.Second, 10*time.Millisecond)

	id := f.booking(t)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var e domain.Event
	require.NoError(t, conn.ReadJSON(&e))
	assert.Equal(t, domain.EventBookingRequested, e.Type)
	require.NotNil(t, e.BookingID)
	assert.Equal(t, id, *e.BookingID)
	assert.Equal(t, renter, e.Principal)
}

func TestEventStream_BadFilter(t *testing.T) {
	f := newFixture(t)

	resp, err := http.Get(f.server.URL + "/api/v1/events?booking_id=abc")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
