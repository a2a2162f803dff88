package types

import "math/big"

// Account is the balance-bearing record stored per address. Balances are
// denominated in wei-scale units and never negative.
type Account struct {
	Balance *big.Int
	Nonce   uint64
}

// EnsureDefaults populates nil fields so callers can mutate freely.
func (a *Account) EnsureDefaults() {
	if a.Balance == nil {
		a.Balance = big.NewInt(0)
	}
}

// Clone returns a deep copy of the account.
func (a *Account) Clone() *Account {
	if a == nil {
		return nil
	}
	clone := &Account{Nonce: a.Nonce, Balance: big.NewInt(0)}
	if a.Balance != nil {
		clone.Balance = new(big.Int).Set(a.Balance)
	}
	return clone
}
