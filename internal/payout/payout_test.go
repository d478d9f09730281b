package payout

import (
	"context"
	"errors"
	"testing"

	"carshare-escrow/internal/domain"
	"carshare-escrow/internal/repository/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const renter = domain.Principal("renter")

func amount(n int64) domain.Amount { return domain.NewAmount(n) }

func newVault() *Vault {
	return NewVault(memory.NewStore(memory.NewDB()))
}

func balance(t *testing.T, v *Vault, p domain.Principal) domain.Amount {
	t.Helper()
	b, err := v.BalanceOf(context.Background(), p)
	require.NoError(t, err)
	return b
}

func TestVault_RoundTrip(t *testing.T) {
	ctx := context.Background()
	v := newVault()
	require.NoError(t, v.Fund(ctx, renter, amount(1000)))

	require.NoError(t, v.Receive(ctx, renter, amount(650)))
	assert.Equal(t, amount(350), balance(t, v, renter))
	h, _ := v.Holdings(ctx)
	assert.Equal(t, amount(650), h)

	require.NoError(t, v.Send(ctx, renter, amount(650)))
	assert.Equal(t, amount(1000), balance(t, v, renter))
	h, _ = v.Holdings(ctx)
	assert.Zero(t, h)
}

func TestVault_InsufficientFunds(t *testing.T) {
	ctx := context.Background()
	v := newVault()
	require.NoError(t, v.Fund(ctx, renter, amount(10)))

	assert.ErrorIs(t, v.Receive(ctx, renter, amount(11)), ErrInsufficientFunds)
	assert.ErrorIs(t, v.Send(ctx, renter, amount(1)), ErrInsufficientFunds)
	assert.Equal(t, amount(10), balance(t, v, renter))
	h, _ := v.Holdings(ctx)
	assert.Zero(t, h)
}

func TestVault_RejectsNonPositive(t *testing.T) {
	ctx := context.Background()
	v := newVault()
	assert.ErrorIs(t, v.Fund(ctx, renter, amount(0)), ErrInvalidAmount)
	assert.ErrorIs(t, v.Receive(ctx, renter, amount(-5)), ErrInvalidAmount)
	assert.ErrorIs(t, v.Send(ctx, renter, domain.Amount{}), ErrInvalidAmount)
	_, err := v.Seed(ctx, renter, amount(-1))
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestVault_SeedOpensOnce(t *testing.T) {
	ctx := context.Background()
	v := newVault()

	opened, err := v.Seed(ctx, renter, amount(500))
	require.NoError(t, err)
	assert.True(t, opened)
	require.NoError(t, v.Receive(ctx, renter, amount(200)))

	opened, err = v.Seed(ctx, renter, amount(500))
	require.NoError(t, err)
	assert.False(t, opened)
	assert.Equal(t, amount(300), balance(t, v, renter))
}

func TestVault_TransfersJoinCallerTx(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore(memory.NewDB())
	v := NewVault(store)
	require.NoError(t, v.Fund(ctx, renter, amount(1000)))

	var sb StoreBacked = v
	require.NotNil(t, sb)

	errAbort := errors.New("abort")
	err := store.WithTx(ctx, func(ctx context.Context) error {
		require.NoError(t, v.Receive(ctx, renter, amount(650)))
		return errAbort
	})
	require.ErrorIs(t, err, errAbort)

	assert.Equal(t, amount(1000), balance(t, v, renter))
	h, _ := v.Holdings(ctx)
	assert.Zero(t, h)
}

func TestVault_LargeAmounts(t *testing.T) {
	ctx := context.Background()
	v := newVault()
	large, err := domain.ParseAmount("100000000000000000000000")
	require.NoError(t, err)

	require.NoError(t, v.Fund(ctx, renter, large))
	require.NoError(t, v.Receive(ctx, renter, large))
	h, _ := v.Holdings(ctx)
	assert.Equal(t, large, h)
	assert.True(t, balance(t, v, renter).IsZero())
}
