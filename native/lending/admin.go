package lending

import (
	"math/big"

	"pawnpool/crypto"
)

// RiskAdmin owns the mutable rate and ratio parameters. Setters are gated on
// the configured owner; reads are open. Parameter changes only touch the pool
// record, never loan or deposit state.
type RiskAdmin struct {
	state engineState
	owner crypto.Address
}

func NewRiskAdmin(owner crypto.Address) *RiskAdmin {
	return &RiskAdmin{owner: owner}
}

// SetState wires the admin surface to the external persistence layer.
func (a *RiskAdmin) SetState(state engineState) { a.state = state }

// Owner returns the address allowed to mutate risk parameters.
func (a *RiskAdmin) Owner() crypto.Address { return a.owner }

// TransferOwnership hands the admin gate to a new owner.
func (a *RiskAdmin) TransferOwnership(caller, newOwner crypto.Address) error {
	if !caller.Equal(a.owner) {
		return ErrNotAuthorized
	}
	a.owner = newOwner
	return nil
}

func (a *RiskAdmin) ensurePool() (*Pool, error) {
	if a == nil || a.state == nil {
		return nil, errNilState
	}
	pool, err := a.state.GetPool()
	if err != nil {
		return nil, err
	}
	if pool == nil {
		pool = &Pool{}
	}
	pool.EnsureDefaults()
	return pool, nil
}

// SetBorrowRate updates the per-annum borrow rate and rederives the lend rate
// as borrowRate * totalBorrowed / totalSupplied. An empty pool cannot carry a
// lend rate, so the setter fails with ErrDivisionByZero instead of silently
// writing zero.
func (a *RiskAdmin) SetBorrowRate(caller crypto.Address, rateBps uint64) error {
	if !caller.Equal(a.owner) {
		return ErrNotAuthorized
	}
	pool, err := a.ensurePool()
	if err != nil {
		return err
	}
	if pool.TotalSupplied.Sign() == 0 {
		return ErrDivisionByZero
	}
	lend := new(big.Int).SetUint64(rateBps)
	lend.Mul(lend, pool.TotalBorrowed)
	lend.Quo(lend, pool.TotalSupplied)
	pool.BorrowRateBps = rateBps
	pool.LendRateBps = lend.Uint64()
	return a.state.PutPool(pool)
}

// SetMaxLTV updates the maximum loan-to-value ratio in basis points.
func (a *RiskAdmin) SetMaxLTV(caller crypto.Address, ratioBps uint64) error {
	if !caller.Equal(a.owner) {
		return ErrNotAuthorized
	}
	pool, err := a.ensurePool()
	if err != nil {
		return err
	}
	pool.MaxLTVBps = ratioBps
	return a.state.PutPool(pool)
}

// Utilization reports the borrowed fraction of the pool in basis points. An
// empty, unused pool reads as zero; borrowed value against zero supply is a
// state that correct operation never reaches, but it is surfaced as an
// explicit arithmetic failure rather than assumed away.
func (a *RiskAdmin) Utilization() (uint64, error) {
	pool, err := a.ensurePool()
	if err != nil {
		return 0, err
	}
	if pool.TotalSupplied.Sign() == 0 {
		if pool.TotalBorrowed.Sign() == 0 {
			return 0, nil
		}
		return 0, ErrDivisionByZero
	}
	util := new(big.Int).Set(pool.TotalBorrowed)
	util.Mul(util, basisPoints)
	util.Quo(util, pool.TotalSupplied)
	return util.Uint64(), nil
}
