package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func milliEther(n int64) Amount { return NewAmount(n).MulInt64(1_000_000_000_000_000) }

func ether(n int64) Amount { return milliEther(n).MulInt64(1000) }

func TestRentalDays(t *testing.T) {
	t.Run("Whole days", func(t *testing.T) {
		days, err := RentalDays(1_000, 1_000+3*SecondsPerDay)
		require.NoError(t, err)
		assert.Equal(t, int64(3), days)
	})

	t.Run("Partial day is floored", func(t *testing.T) {
		days, err := RentalDays(0, 2*SecondsPerDay+SecondsPerDay-1)
		require.NoError(t, err)
		assert.Equal(t, int64(2), days)
	})

	t.Run("Start equals end", func(t *testing.T) {
		_, err := RentalDays(500, 500)
		assert.ErrorIs(t, err, ErrInvalidRange)
	})

	t.Run("End before start", func(t *testing.T) {
		_, err := RentalDays(500, 100)
		assert.ErrorIs(t, err, ErrInvalidRange)
	})

	t.Run("Shorter than a day", func(t *testing.T) {
		_, err := RentalDays(0, SecondsPerDay-1)
		assert.ErrorIs(t, err, ErrInvalidRange)
	})
}

func TestQuoteBooking(t *testing.T) {
	l := &Listing{DailyPrice: milliEther(50), SecurityDeposit: milliEther(500)}

	q, err := QuoteBooking(l, 0, 3*SecondsPerDay)
	require.NoError(t, err)
	assert.Equal(t, int64(3), q.Days)
	assert.Equal(t, milliEther(150), q.RentalCost)
	assert.Equal(t, milliEther(500), q.Deposit)
	assert.Equal(t, milliEther(650), q.Escrow)

	t.Run("Escrow beyond 64 bits", func(t *testing.T) {
		tenDays := &Listing{DailyPrice: ether(1)}
		q, err := QuoteBooking(tenDays, 0, 10*SecondsPerDay)
		require.NoError(t, err)
		assert.Equal(t, "10000000000000000000", q.Escrow.String())
		assert.True(t, q.Deposit.IsZero())

		large := &Listing{DailyPrice: ether(1_000_000), SecurityDeposit: ether(50_000_000)}
		q, err = QuoteBooking(large, 0, 365*SecondsPerDay)
		require.NoError(t, err)
		assert.Equal(t, ether(415_000_000), q.Escrow)
	})
}

func TestPlatformFee(t *testing.T) {
	assert.Equal(t, milliEther(3), PlatformFee(milliEther(150), 200))
	assert.True(t, PlatformFee(milliEther(150), 0).IsZero())
	assert.True(t, PlatformFee(Amount{}, 200).IsZero())
	// floor(9999 * 200 / 10000) = 199
	assert.Equal(t, NewAmount(199), PlatformFee(NewAmount(9999), 200))
	// exact far above the int64 range
	assert.Equal(t, ether(100_000_000), PlatformFee(ether(1_000_000_000), 1000))
}

func TestCompletionSplit(t *testing.T) {
	b := &Booking{RentalCost: milliEther(150), Deposit: milliEther(500), Escrow: milliEther(650)}

	s := CompletionSplit(b, 200)
	assert.Equal(t, milliEther(147), s.Owner)
	assert.Equal(t, milliEther(500), s.Renter)
	assert.Equal(t, milliEther(3), s.Platform)
	assert.Equal(t, b.Escrow, s.Total())
}

func TestDisputeSplit(t *testing.T) {
	b := &Booking{RentalCost: milliEther(150), Deposit: milliEther(500), Escrow: milliEther(650)}

	t.Run("Fee on owner share only", func(t *testing.T) {
		s, err := DisputeSplit(b, milliEther(250), milliEther(400), 200)
		require.NoError(t, err)
		assert.Equal(t, milliEther(245), s.Owner)
		assert.Equal(t, milliEther(400), s.Renter)
		assert.Equal(t, milliEther(5), s.Platform)
		assert.Equal(t, b.Escrow, s.Total())
	})

	t.Run("Mismatch", func(t *testing.T) {
		_, err := DisputeSplit(b, milliEther(250), milliEther(399), 200)
		assert.ErrorIs(t, err, ErrSplitMismatch)
	})

	t.Run("Negative share", func(t *testing.T) {
		_, err := DisputeSplit(b, milliEther(700), milliEther(-50), 200)
		assert.ErrorIs(t, err, ErrSplitMismatch)
	})

	t.Run("Shares far above escrow", func(t *testing.T) {
		_, err := DisputeSplit(b, ether(1_000_000_000), ether(1_000_000_000), 200)
		assert.ErrorIs(t, err, ErrSplitMismatch)
	})
}
