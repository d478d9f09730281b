package jobs

import (
	"context"
	"testing"
	"time"

	"carshare-escrow/internal/clock"
	"carshare-escrow/internal/config"
	"carshare-escrow/internal/domain"
	"carshare-escrow/internal/events"
	"carshare-escrow/internal/payout"
	"carshare-escrow/internal/repository/memory"
	"carshare-escrow/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func milli(n int64) domain.Amount { return domain.NewAmount(n).MulInt64(1_000_000_000_000_000) }

type fixture struct {
	ctx    context.Context
	svc    *service.Services
	vault  *payout.Vault
	clock  *clock.Manual
	runner *JobRunner
}

// newFixture runs the engine over custody, or over a vault in the same
// store when custody is nil.
func newFixture(t *testing.T, custody payout.Custody) *fixture {
	t.Helper()
	ctx := context.Background()
	f := &fixture{
		ctx:   ctx,
		clock: clock.NewManual(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)),
	}
	store := memory.NewStore(memory.NewDB())
	if custody == nil {
		f.vault = payout.NewVault(store)
		custody = f.vault
	}
	engine := service.NewEngine(store, custody, f.clock, events.NewHub())
	require.NoError(t, engine.Bootstrap(ctx, domain.RoleAssignment{
		PlatformOwner:     "platform",
		InsuranceVerifier: "verifier",
		Arbitrator:        "arbitrator",
		PlatformFeeBps:    200,
	}))
	f.svc = service.NewServices(engine)
	f.runner = NewJobRunner(FromServices(f.svc), f.clock, &config.Config{})
	return f
}

func (f *fixture) activeBooking(t *testing.T) int64 {
	t.Helper()
	for _, p := range []domain.Principal{"owner", "renter"} {
		require.NoError(t, f.svc.Registry.Register(f.ctx, p))
	}
	listingID, err := f.svc.Listings.CreateListing(f.ctx, "owner", domain.ListingInput{
		DailyPrice:      milli(50),
		SecurityDeposit: milli(500),
	})
	require.NoError(t, err)
	require.NoError(t, f.svc.Listings.VerifyInsurance(f.ctx, "verifier", listingID, true))

	start := f.clock.Now().Unix()
	id, err := f.svc.Bookings.RequestBooking(f.ctx, "renter", listingID, start, start+3*domain.SecondsPerDay, milli(650))
	require.NoError(t, err)
	require.NoError(t, f.svc.Bookings.ApproveBooking(f.ctx, "owner", id))
	require.NoError(t, f.svc.Bookings.ConfirmPickup(f.ctx, "renter", id, "ipfs://a"))
	require.NoError(t, f.svc.Bookings.ConfirmPickup(f.ctx, "owner", id, "ipfs://b"))
	return id
}

func TestReconcile_Balanced(t *testing.T) {
	f := newFixture(t, nil)
	require.NoError(t, f.vault.Fund(f.ctx, "renter", milli(5_000)))
	f.activeBooking(t)

	summary, err := f.runner.Reconcile(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, milli(650), summary.HeldEscrow)
	assert.Equal(t, int64(1), summary.OpenBookings)
	assert.True(t, summary.Balanced())
}

// driftingCustody reports more holdings than the engine ever received.
type driftingCustody struct {
	mock.Mock
}

func (c *driftingCustody) Receive(ctx context.Context, from domain.Principal, amount domain.Amount) error {
	return c.Called(from, amount).Error(0)
}

func (c *driftingCustody) Send(ctx context.Context, to domain.Principal, amount domain.Amount) error {
	return c.Called(to, amount).Error(0)
}

func (c *driftingCustody) Holdings(ctx context.Context) (domain.Amount, error) {
	args := c.Called()
	return args.Get(0).(domain.Amount), args.Error(1)
}

func TestReconcile_Unbalanced(t *testing.T) {
	custody := &driftingCustody{}
	custody.On("Holdings").Return(domain.NewAmount(1), nil)
	f := newFixture(t, custody)

	summary, err := f.runner.Reconcile(f.ctx)
	assert.ErrorIs(t, err, ErrUnbalanced)
	require.NotNil(t, summary)
	assert.Equal(t, domain.NewAmount(1), summary.Holdings)

	// The cron entry point logs and swallows the failure.
	assert.NotPanics(t, f.runner.ReconcileEscrow)
	custody.AssertExpectations(t)
}

func TestOverdueBookings(t *testing.T) {
	f := newFixture(t, nil)
	require.NoError(t, f.vault.Fund(f.ctx, "renter", milli(5_000)))
	id := f.activeBooking(t)

	overdue, err := f.runner.OverdueBookings(f.ctx)
	require.NoError(t, err)
	assert.Empty(t, overdue)

	f.clock.Advance(4 * 24 * time.Hour)
	overdue, err = f.runner.OverdueBookings(f.ctx)
	require.NoError(t, err)
	require.Len(t, overdue, 1)
	assert.Equal(t, id, overdue[0].ID)

	b, err := f.svc.Bookings.GetBooking(f.ctx, id)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingStatusActive, b.Status)
}

func TestRunWithRecovery(t *testing.T) {
	jr := NewJobRunner(nil, nil, &config.Config{})
	assert.NotPanics(t, func() {
		jr.runWithRecovery("Boom", func() { panic("boom") })
	})
}
