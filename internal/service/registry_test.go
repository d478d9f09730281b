package service

import (
	"testing"

	"carshare-escrow/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister(t *testing.T) {
	f := newFixture(t)

	assert.ErrorIs(t, f.svc.Registry.Register(f.ctx, owner), domain.ErrAlreadyRegistered)

	ok, err := f.svc.Registry.IsRegistered(f.ctx, stranger)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, f.svc.Registry.Register(f.ctx, stranger))
	p, err := f.svc.Registry.GetParticipant(f.ctx, stranger)
	require.NoError(t, err)
	assert.True(t, p.Registered)
	assert.Equal(t, f.clock.Now(), p.RegisteredOn)
}

func TestSetRoles(t *testing.T) {
	f := newFixture(t)

	assert.ErrorIs(t, f.svc.Registry.SetRoles(f.ctx, owner, owner, owner), domain.ErrNotContractOwner)

	require.NoError(t, f.svc.Registry.SetRoles(f.ctx, platform, stranger, arbitrator))
	isVerifier, err := f.svc.Registry.IsInsuranceVerifier(f.ctx, stranger)
	require.NoError(t, err)
	assert.True(t, isVerifier)
	isVerifier, err = f.svc.Registry.IsInsuranceVerifier(f.ctx, verifier)
	require.NoError(t, err)
	assert.False(t, isVerifier)

	isArbitrator, err := f.svc.Registry.IsArbitrator(f.ctx, arbitrator)
	require.NoError(t, err)
	assert.True(t, isArbitrator)
}

func TestSetPlatformFee(t *testing.T) {
	f := newFixture(t)

	assert.ErrorIs(t, f.svc.Registry.SetPlatformFee(f.ctx, renter, 100), domain.ErrNotContractOwner)
	assert.ErrorIs(t, f.svc.Registry.SetPlatformFee(f.ctx, platform, 1001), domain.ErrFeeTooHigh)
	assert.ErrorIs(t, f.svc.Registry.SetPlatformFee(f.ctx, platform, -1), domain.ErrFeeTooHigh)
	require.NoError(t, f.svc.Registry.SetPlatformFee(f.ctx, platform, 1000))

	roles, err := f.svc.Registry.GetRoles(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), roles.PlatformFeeBps)
}

func TestRolesOf(t *testing.T) {
	f := newFixture(t)

	roles, err := f.svc.Registry.RolesOf(f.ctx, platform)
	require.NoError(t, err)
	assert.Equal(t, []domain.Role{domain.RolePlatformOwner}, roles)

	roles, err = f.svc.Registry.RolesOf(f.ctx, renter)
	require.NoError(t, err)
	assert.Empty(t, roles)

	isOwner, err := f.svc.Registry.IsPlatformOwner(f.ctx, platform)
	require.NoError(t, err)
	assert.True(t, isOwner)
}
