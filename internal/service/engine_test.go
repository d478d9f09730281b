package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"carshare-escrow/internal/clock"
	"carshare-escrow/internal/domain"
	"carshare-escrow/internal/events"
	"carshare-escrow/internal/payout"
	"carshare-escrow/internal/repository"
	"carshare-escrow/internal/repository/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// milli returns n thousandths of the currency's major unit.
func milli(n int64) domain.Amount {
	return domain.NewAmount(n).MulInt64(1_000_000_000_000_000)
}

const (
	platform   = domain.Principal("platform")
	verifier   = domain.Principal("verifier")
	arbitrator = domain.Principal("arbitrator")
	owner      = domain.Principal("owner")
	renter     = domain.Principal("renter")
	stranger   = domain.Principal("stranger")
)

const (
	start     int64 = 1_767_225_600
	threeDays       = start + 3*domain.SecondsPerDay
)

var (
	escrowA    = milli(650)
	renterFund = milli(5_000)
)

var carA = domain.ListingInput{
	DailyPrice:      milli(50),
	SecurityDeposit: milli(500),
	InsuranceDocURI: "ipfs://insurance",
	Make:            "Toyota",
	Model:           "Corolla",
	Year:            2022,
	Location:        "Lyon",
}

type fixture struct {
	ctx    context.Context
	store  *repository.Store
	engine *Engine
	svc    *Services
	vault  *payout.Vault
	hub    *events.Hub
	clock  *clock.Manual
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore(memory.NewDB())
	return newFixtureWith(t, store, payout.NewVault(store))
}

func newFixtureWith(t *testing.T, store *repository.Store, custody payout.Custody) *fixture {
	t.Helper()
	ctx := context.Background()
	f := &fixture{
		ctx:   ctx,
		store: store,
		hub:   events.NewHub(),
		clock: clock.NewManual(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)),
	}
	f.vault, _ = custody.(*payout.Vault)
	f.engine = NewEngine(store, custody, f.clock, f.hub)
	f.svc = NewServices(f.engine)

	require.NoError(t, f.engine.Bootstrap(ctx, domain.RoleAssignment{PlatformOwner: platform, PlatformFeeBps: 200}))
	require.NoError(t, f.svc.Registry.SetRoles(ctx, platform, verifier, arbitrator))
	for _, p := range []domain.Principal{owner, renter, verifier, arbitrator} {
		require.NoError(t, f.svc.Registry.Register(ctx, p))
	}
	if f.vault != nil {
		require.NoError(t, f.vault.Fund(ctx, renter, renterFund))
	}
	return f
}

func (f *fixture) insuredListing(t *testing.T) int64 {
	t.Helper()
	id, err := f.svc.Listings.CreateListing(f.ctx, owner, carA)
	require.NoError(t, err)
	require.NoError(t, f.svc.Listings.VerifyInsurance(f.ctx, verifier, id, true))
	return id
}

func (f *fixture) requested(t *testing.T) int64 {
	t.Helper()
	id, err := f.svc.Bookings.RequestBooking(f.ctx, renter, f.insuredListing(t), start, threeDays, escrowA)
	require.NoError(t, err)
	return id
}

func (f *fixture) active(t *testing.T) int64 {
	t.Helper()
	id := f.requested(t)
	require.NoError(t, f.svc.Bookings.ApproveBooking(f.ctx, owner, id))
	require.NoError(t, f.svc.Bookings.ConfirmPickup(f.ctx, renter, id, "ipfs://pickup-renter"))
	require.NoError(t, f.svc.Bookings.ConfirmPickup(f.ctx, owner, id, "ipfs://pickup-owner"))
	return id
}

func (f *fixture) status(t *testing.T, id int64) domain.BookingStatus {
	t.Helper()
	b, err := f.svc.Bookings.GetBooking(f.ctx, id)
	require.NoError(t, err)
	return b.Status
}

func (f *fixture) balance(t *testing.T, p domain.Principal) domain.Amount {
	t.Helper()
	b, err := f.svc.Ledger.GetBalance(f.ctx, p)
	require.NoError(t, err)
	return b
}

func (f *fixture) assertConserved(t *testing.T) {
	t.Helper()
	summary, err := f.svc.Ledger.Summary(f.ctx)
	require.NoError(t, err)
	assert.True(t, summary.Balanced(), "liabilities %s != holdings %s", summary.Liabilities(), summary.Holdings)
}

// account is p's external balance outside the engine.
func (f *fixture) account(t *testing.T, p domain.Principal) domain.Amount {
	t.Helper()
	a, err := f.vault.BalanceOf(f.ctx, p)
	require.NoError(t, err)
	return a
}

func TestBootstrap_KeepsStoredRoles(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.svc.Registry.SetPlatformFee(f.ctx, platform, 350))

	require.NoError(t, f.engine.Bootstrap(f.ctx, domain.RoleAssignment{PlatformOwner: stranger, PlatformFeeBps: 0}))

	roles, err := f.svc.Registry.GetRoles(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, platform, roles.PlatformOwner)
	assert.Equal(t, int64(350), roles.PlatformFeeBps)
}

func TestBootstrap_Validates(t *testing.T) {
	store := memory.NewStore(memory.NewDB())
	e := NewEngine(store, payout.NewVault(store), clock.NewSystem(), nil)
	assert.Error(t, e.Bootstrap(context.Background(), domain.RoleAssignment{}))
	assert.ErrorIs(t, e.Bootstrap(context.Background(), domain.RoleAssignment{PlatformOwner: platform, PlatformFeeBps: 1001}), domain.ErrFeeTooHigh)
}

type mockCustody struct {
	mock.Mock
}

func (m *mockCustody) Receive(ctx context.Context, from domain.Principal, amount domain.Amount) error {
	return m.Called(ctx, from, amount).Error(0)
}

func (m *mockCustody) Send(ctx context.Context, to domain.Principal, amount domain.Amount) error {
	return m.Called(ctx, to, amount).Error(0)
}

func (m *mockCustody) Holdings(ctx context.Context) (domain.Amount, error) {
	args := m.Called(ctx)
	return args.Get(0).(domain.Amount), args.Error(1)
}

func TestRejectBooking_SendFailureRollsBack(t *testing.T) {
	custody := new(mockCustody)
	custody.On("Receive", mock.Anything, renter, escrowA).Return(nil)
	custody.On("Send", mock.Anything, renter, escrowA).Return(errors.New("payout rail unavailable"))

	f := newFixtureWith(t, memory.NewStore(memory.NewDB()), custody)
	id := f.requested(t)

	feed, cancel := f.hub.Subscribe()
	defer cancel()

	err := f.svc.Bookings.RejectBooking(f.ctx, owner, id)
	require.Error(t, err)
	assert.Empty(t, domain.KindOf(err))

	assert.Equal(t, domain.BookingStatusRequested, f.status(t, id))
	entries, err := f.svc.Ledger.ListEntries(f.ctx, renter)
	require.NoError(t, err)
	assert.Empty(t, entries)
	assert.Len(t, feed, 0)
	custody.AssertExpectations(t)
}

// failingCommit lets the unit of work run and then refuses to commit it.
type failingCommit struct {
	repository.Transactor
}

var errCommit = errors.New("commit failed")

func (f failingCommit) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return f.Transactor.WithTx(ctx, func(ctx context.Context) error {
		if err := fn(ctx); err != nil {
			return err
		}
		return errCommit
	})
}

func TestRequestBooking_CommitFailureReturnsEscrow(t *testing.T) {
	f := newFixture(t)
	listingID := f.insuredListing(t)

	f.store.Transactor = failingCommit{f.store.Transactor}
	_, err := f.svc.Bookings.RequestBooking(f.ctx, renter, listingID, start, threeDays, escrowA)
	require.ErrorIs(t, err, errCommit)

	assert.Equal(t, renterFund, f.account(t, renter))
	holdings, _ := f.vault.Holdings(f.ctx)
	assert.Zero(t, holdings)
	bookings, err := f.svc.Bookings.ListBookings(f.ctx)
	require.NoError(t, err)
	assert.Empty(t, bookings)
}

func TestRequestBooking_CommitFailureCompensatesExternalCustody(t *testing.T) {
	custody := new(mockCustody)
	custody.On("Receive", mock.Anything, renter, escrowA).Return(nil).Once()
	custody.On("Send", mock.Anything, renter, escrowA).Return(nil).Once()

	f := newFixtureWith(t, memory.NewStore(memory.NewDB()), custody)
	listingID := f.insuredListing(t)

	f.store.Transactor = failingCommit{f.store.Transactor}
	_, err := f.svc.Bookings.RequestBooking(f.ctx, renter, listingID, start, threeDays, escrowA)
	require.ErrorIs(t, err, errCommit)
	custody.AssertExpectations(t)
}

func TestCustody_SurvivesEngineRestart(t *testing.T) {
	f := newFixture(t)
	cancelled := f.requested(t)
	completed := f.active(t)
	require.NoError(t, f.svc.Bookings.ConfirmReturn(f.ctx, owner, completed, ""))
	require.NoError(t, f.svc.Bookings.ConfirmReturn(f.ctx, renter, completed, ""))

	restarted := NewServices(NewEngine(f.store, payout.NewVault(f.store), f.clock, nil))

	summary, err := restarted.Ledger.Summary(f.ctx)
	require.NoError(t, err)
	assert.True(t, summary.Balanced())
	assert.Equal(t, escrowA.Add(escrowA), summary.Holdings)

	require.NoError(t, restarted.Bookings.CancelBeforeActive(f.ctx, renter, cancelled))
	paid, err := restarted.Ledger.Withdraw(f.ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, milli(147), paid)

	assert.Equal(t, milli(147), f.account(t, owner))
	assert.Equal(t, renterFund.Sub(escrowA), f.account(t, renter))
	f.assertConserved(t)
}

// lockCheckingPublisher counts publishes made after the engine lock was
// already released.
type lockCheckingPublisher struct {
	engine   *Engine
	unlocked int
	events   []domain.Event
}

func (p *lockCheckingPublisher) Publish(events ...domain.Event) {
	if p.engine.mu.TryLock() {
		p.unlocked++
		p.engine.mu.Unlock()
	}
	p.events = append(p.events, events...)
}

func TestEvents_PublishedUnderEngineLock(t *testing.T) {
	store := memory.NewStore(memory.NewDB())
	vault := payout.NewVault(store)
	pub := &lockCheckingPublisher{}
	e := NewEngine(store, vault, clock.NewManual(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)), pub)
	pub.engine = e
	svc := NewServices(e)
	ctx := context.Background()

	require.NoError(t, e.Bootstrap(ctx, domain.RoleAssignment{PlatformOwner: platform, PlatformFeeBps: 200}))
	require.NoError(t, svc.Registry.SetRoles(ctx, platform, verifier, arbitrator))
	require.NoError(t, svc.Registry.Register(ctx, owner))
	require.NoError(t, svc.Registry.Register(ctx, renter))
	require.NoError(t, vault.Fund(ctx, renter, renterFund))
	listingID, err := svc.Listings.CreateListing(ctx, owner, carA)
	require.NoError(t, err)
	require.NoError(t, svc.Listings.VerifyInsurance(ctx, verifier, listingID, true))
	id, err := svc.Bookings.RequestBooking(ctx, renter, listingID, start, threeDays, escrowA)
	require.NoError(t, err)
	require.NoError(t, svc.Bookings.ApproveBooking(ctx, owner, id))

	assert.Zero(t, pub.unlocked)
	require.NotEmpty(t, pub.events)
	last := pub.events[len(pub.events)-1]
	assert.Equal(t, domain.BookingStatusApproved, last.Status)
}

func TestEvents_PublishedAfterCommit(t *testing.T) {
	f := newFixture(t)
	feed, cancel := f.hub.Subscribe()
	defer cancel()

	listingID := f.insuredListing(t)
	bookingID, err := f.svc.Bookings.RequestBooking(f.ctx, renter, listingID, start, threeDays, escrowA)
	require.NoError(t, err)

	created := <-feed
	assert.Equal(t, domain.EventListingCreated, created.Type)
	require.NotNil(t, created.ListingID)
	assert.Equal(t, listingID, *created.ListingID)

	requested := <-feed
	assert.Equal(t, domain.EventBookingRequested, requested.Type)
	require.NotNil(t, requested.BookingID)
	assert.Equal(t, bookingID, *requested.BookingID)
	require.NotNil(t, requested.Amount)
	assert.Equal(t, escrowA, *requested.Amount)

	_, err = f.svc.Bookings.RequestBooking(f.ctx, renter, listingID, start, start, escrowA)
	require.ErrorIs(t, err, domain.ErrInvalidRange)
	assert.Len(t, feed, 0)
}
