package state

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/holiman/uint256"

	"pawnpool/core/types"
	"pawnpool/crypto"
)

var (
	// ErrInsufficientFunds aborts a transfer whose source cannot cover it.
	ErrInsufficientFunds = errors.New("state: insufficient funds")
	// ErrBalanceOverflow rejects balances that leave the 256-bit range.
	ErrBalanceOverflow = errors.New("state: balance overflow")
)

type storedAccount struct {
	Balance *big.Int
	Nonce   uint64
}

// GetAccount loads the account stored under the address, defaulting to an
// empty account when none exists.
func (m *Manager) GetAccount(addr crypto.Address) (*types.Account, error) {
	stored := new(storedAccount)
	found, err := m.getRLP(fmt.Sprintf(accountKeyFormat, addr.Bytes()), stored)
	if err != nil {
		return nil, err
	}
	account := &types.Account{}
	if found {
		account.Balance = stored.Balance
		account.Nonce = stored.Nonce
	}
	account.EnsureDefaults()
	return account, nil
}

// PutAccount persists the account, rejecting balances outside the 256-bit
// range so downstream encodings stay fixed-width safe.
func (m *Manager) PutAccount(addr crypto.Address, account *types.Account) error {
	if account == nil {
		return fmt.Errorf("state: nil account")
	}
	account.EnsureDefaults()
	if _, overflow := uint256.FromBig(account.Balance); overflow {
		return ErrBalanceOverflow
	}
	if account.Balance.Sign() < 0 {
		return ErrInsufficientFunds
	}
	return m.putRLP(fmt.Sprintf(accountKeyFormat, addr.Bytes()), &storedAccount{
		Balance: account.Balance,
		Nonce:   account.Nonce,
	})
}

// Transfer moves value between two accounts. Either both balances change or
// neither does; an uncovered source or an overflowing destination aborts with
// no mutation.
func (m *Manager) Transfer(from, to crypto.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return fmt.Errorf("state: invalid transfer amount")
	}
	if amount.Sign() == 0 {
		return nil
	}
	source, err := m.GetAccount(from)
	if err != nil {
		return err
	}
	if source.Balance.Cmp(amount) < 0 {
		return ErrInsufficientFunds
	}
	if from.Equal(to) {
		return nil
	}
	dest, err := m.GetAccount(to)
	if err != nil {
		return err
	}
	source.Balance = new(big.Int).Sub(source.Balance, amount)
	dest.Balance = new(big.Int).Add(dest.Balance, amount)
	if _, overflow := uint256.FromBig(dest.Balance); overflow {
		return ErrBalanceOverflow
	}
	if err := m.PutAccount(from, source); err != nil {
		return err
	}
	return m.PutAccount(to, dest)
}

// Mint credits freshly issued value to an account. Used at genesis and by
// tests to seed balances.
func (m *Manager) Mint(addr crypto.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() <= 0 {
		return fmt.Errorf("state: invalid mint amount")
	}
	account, err := m.GetAccount(addr)
	if err != nil {
		return err
	}
	account.Balance = new(big.Int).Add(account.Balance, amount)
	return m.PutAccount(addr, account)
}
