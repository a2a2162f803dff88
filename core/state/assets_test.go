package state

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRegisterAsset(t *testing.T) {
	manager := newTestManager(t)
	owner := stateAddr(1)

	require.NoError(t, manager.RegisterAsset(owner, "punk", 7))
	require.ErrorIs(t, manager.RegisterAsset(owner, "punk", 7), ErrAssetExists)

	// Same id under a different class is a different asset.
	require.NoError(t, manager.RegisterAsset(owner, "ape", 7))

	got, found := manager.OwnerOf("punk", 7)
	require.True(t, found)
	require.True(t, got.Equal(owner))
	require.EqualValues(t, 1, manager.Holdings(owner, "punk"))
	require.EqualValues(t, 1, manager.Holdings(owner, "ape"))
}

func TestLockAndRelease(t *testing.T) {
	manager := newTestManager(t)
	owner := stateAddr(1)

	require.NoError(t, manager.RegisterAsset(owner, "punk", 7))
	require.NoError(t, manager.Lock(owner, "punk", 7))

	// While escrowed the owner of record is the escrow account and the
	// pledger's holdings are debited.
	got, found := manager.OwnerOf("punk", 7)
	require.True(t, found)
	require.False(t, got.Equal(owner))
	require.Zero(t, manager.Holdings(owner, "punk"))

	beneficiary, held := manager.Custodian("punk", 7)
	require.True(t, held)
	require.True(t, beneficiary.Equal(owner))

	require.NoError(t, manager.Release(owner, "punk", 7))
	got, found = manager.OwnerOf("punk", 7)
	require.True(t, found)
	require.True(t, got.Equal(owner))
	require.EqualValues(t, 1, manager.Holdings(owner, "punk"))
	_, held = manager.Custodian("punk", 7)
	require.False(t, held)
}

func TestLockGuards(t *testing.T) {
	manager := newTestManager(t)
	owner := stateAddr(1)
	stranger := stateAddr(2)

	require.ErrorIs(t, manager.Lock(owner, "punk", 7), ErrAssetUnknown)

	require.NoError(t, manager.RegisterAsset(owner, "punk", 7))
	require.ErrorIs(t, manager.Lock(stranger, "punk", 7), ErrNotAssetOwner)

	// Once escrowed the owner of record is the escrow account, so a second
	// lock fails the ownership check before the custody one.
	require.NoError(t, manager.Lock(owner, "punk", 7))
	require.ErrorIs(t, manager.Lock(owner, "punk", 7), ErrNotAssetOwner)
}

func TestReleaseNotInCustody(t *testing.T) {
	manager := newTestManager(t)
	owner := stateAddr(1)

	require.NoError(t, manager.RegisterAsset(owner, "punk", 7))
	require.ErrorIs(t, manager.Release(owner, "punk", 7), ErrAssetNotInCustody)
}

func TestReleaseToThirdParty(t *testing.T) {
	manager := newTestManager(t)
	owner := stateAddr(1)
	liquidator := stateAddr(3)

	require.NoError(t, manager.RegisterAsset(owner, "punk", 7))
	require.NoError(t, manager.Lock(owner, "punk", 7))
	require.NoError(t, manager.Release(liquidator, "punk", 7))

	got, found := manager.OwnerOf("punk", 7)
	require.True(t, found)
	require.True(t, got.Equal(liquidator))
	require.EqualValues(t, 1, manager.Holdings(liquidator, "punk"))
	require.Zero(t, manager.Holdings(owner, "punk"))
}
