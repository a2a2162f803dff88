package state

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAccountDefaults(t *testing.T) {
	manager := newTestManager(t)

	account, err := manager.GetAccount(stateAddr(1))
	require.NoError(t, err)
	require.NotNil(t, account.Balance)
	require.Zero(t, account.Balance.Sign())
	require.Zero(t, account.Nonce)
}

func TestMintAndTransfer(t *testing.T) {
	manager := newTestManager(t)
	alice := stateAddr(1)
	bob := stateAddr(2)

	require.NoError(t, manager.Mint(alice, big.NewInt(1000)))
	require.NoError(t, manager.Transfer(alice, bob, big.NewInt(400)))

	aliceAcct, err := manager.GetAccount(alice)
	require.NoError(t, err)
	require.Equal(t, 0, aliceAcct.Balance.Cmp(big.NewInt(600)))

	bobAcct, err := manager.GetAccount(bob)
	require.NoError(t, err)
	require.Equal(t, 0, bobAcct.Balance.Cmp(big.NewInt(400)))
}

func TestTransferInsufficientFunds(t *testing.T) {
	manager := newTestManager(t)
	alice := stateAddr(1)
	bob := stateAddr(2)

	require.NoError(t, manager.Mint(alice, big.NewInt(100)))
	err := manager.Transfer(alice, bob, big.NewInt(101))
	require.ErrorIs(t, err, ErrInsufficientFunds)

	// Neither balance moved.
	aliceAcct, err := manager.GetAccount(alice)
	require.NoError(t, err)
	require.Equal(t, 0, aliceAcct.Balance.Cmp(big.NewInt(100)))
	bobAcct, err := manager.GetAccount(bob)
	require.NoError(t, err)
	require.Zero(t, bobAcct.Balance.Sign())
}

func TestTransferValidation(t *testing.T) {
	manager := newTestManager(t)
	alice := stateAddr(1)
	bob := stateAddr(2)

	require.Error(t, manager.Transfer(alice, bob, nil))
	require.Error(t, manager.Transfer(alice, bob, big.NewInt(-1)))
	require.NoError(t, manager.Transfer(alice, bob, big.NewInt(0)))
}

func TestSelfTransferIsNoop(t *testing.T) {
	manager := newTestManager(t)
	alice := stateAddr(1)

	require.NoError(t, manager.Mint(alice, big.NewInt(100)))
	require.NoError(t, manager.Transfer(alice, alice, big.NewInt(50)))

	account, err := manager.GetAccount(alice)
	require.NoError(t, err)
	require.Equal(t, 0, account.Balance.Cmp(big.NewInt(100)))
}

func TestBalanceOverflowRejected(t *testing.T) {
	manager := newTestManager(t)
	alice := stateAddr(1)

	max := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))
	require.NoError(t, manager.Mint(alice, max))
	require.ErrorIs(t, manager.Mint(alice, big.NewInt(1)), ErrBalanceOverflow)
}
