package service

import (
	"testing"

	"carshare-escrow/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScenarioC_DisputeResolution(t *testing.T) {
	f := newFixture(t)
	id := f.active(t)

	assert.ErrorIs(t, f.svc.Disputes.ResolveDispute(f.ctx, arbitrator, id, milli(250), milli(400)), domain.ErrNotDisputed)
	assert.ErrorIs(t, f.svc.Bookings.OpenDispute(f.ctx, stranger, id), domain.ErrNotParty)
	require.NoError(t, f.svc.Bookings.OpenDispute(f.ctx, renter, id))
	assert.ErrorIs(t, f.svc.Bookings.OpenDispute(f.ctx, owner, id), domain.ErrBadStatus)
	f.assertConserved(t)

	assert.ErrorIs(t, f.svc.Disputes.ResolveDispute(f.ctx, owner, id, milli(250), milli(400)), domain.ErrNotArbitrator)
	assert.ErrorIs(t, f.svc.Disputes.ResolveDispute(f.ctx, arbitrator, 77, milli(250), milli(400)), domain.ErrBookingNotFound)
	assert.ErrorIs(t, f.svc.Disputes.ResolveDispute(f.ctx, arbitrator, id, milli(250), milli(399)), domain.ErrSplitMismatch)
	assert.ErrorIs(t, f.svc.Disputes.ResolveDispute(f.ctx, arbitrator, id, milli(700), milli(-50)), domain.ErrSplitMismatch)

	require.NoError(t, f.svc.Disputes.ResolveDispute(f.ctx, arbitrator, id, milli(250), milli(400)))

	assert.Equal(t, domain.BookingStatusCompleted, f.status(t, id))
	assert.Equal(t, milli(245), f.balance(t, owner))
	assert.Equal(t, milli(400), f.balance(t, renter))
	assert.Equal(t, milli(5), f.balance(t, platform))
	f.assertConserved(t)

	b, err := f.svc.Bookings.GetBooking(f.ctx, id)
	require.NoError(t, err)
	assert.True(t, b.Disputed)

	assert.ErrorIs(t, f.svc.Disputes.ResolveDispute(f.ctx, arbitrator, id, milli(250), milli(400)), domain.ErrNotDisputed)
}

func TestOpenDispute_FromEachEligibleStatus(t *testing.T) {
	f := newFixture(t)

	approved := f.requested(t)
	require.NoError(t, f.svc.Bookings.ApproveBooking(f.ctx, owner, approved))

	returnPending := f.active(t)
	require.NoError(t, f.svc.Bookings.ConfirmReturn(f.ctx, renter, returnPending, ""))

	requested := f.requested(t)
	assert.ErrorIs(t, f.svc.Bookings.OpenDispute(f.ctx, renter, requested), domain.ErrBadStatus)

	for _, id := range []int64{approved, returnPending} {
		require.NoError(t, f.svc.Bookings.OpenDispute(f.ctx, owner, id))
		assert.Equal(t, domain.BookingStatusDisputed, f.status(t, id))
	}
	assert.ErrorIs(t, f.svc.Bookings.ConfirmReturn(f.ctx, owner, returnPending, ""), domain.ErrNotActive)
}

func TestResolveDispute_AllToOneSide(t *testing.T) {
	f := newFixture(t)
	id := f.active(t)
	require.NoError(t, f.svc.Bookings.OpenDispute(f.ctx, owner, id))

	require.NoError(t, f.svc.Disputes.ResolveDispute(f.ctx, arbitrator, id, domain.Amount{}, escrowA))
	assert.Zero(t, f.balance(t, owner))
	assert.Zero(t, f.balance(t, platform))
	assert.Equal(t, escrowA, f.balance(t, renter))
	f.assertConserved(t)
}
