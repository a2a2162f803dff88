package lending

import (
	"math/big"

	"pawnpool/crypto"
)

// Deposit is the pool's promise to return Amount plus any future interest to
// the lender. Records live in an append-only per-lender sequence; the index
// within that sequence is the deposit id and stays stable for the lender's
// lifetime. A withdrawn deposit is tombstoned in place (Amount set to zero),
// never compacted, so later ids keep their meaning.
type Deposit struct {
	Lender crypto.Address
	Amount *big.Int
	// UpdatedAt is the unix timestamp of the last accrual touch point. The
	// current design does not refresh it on withdraw; the slot is read and
	// tombstoned directly.
	UpdatedAt int64
}

// Tombstoned reports whether the deposit slot has been withdrawn.
func (d *Deposit) Tombstoned() bool {
	return d == nil || d.Amount == nil || d.Amount.Sign() == 0
}

// Clone returns a deep copy so callers cannot alias ledger-owned state.
func (d *Deposit) Clone() *Deposit {
	if d == nil {
		return nil
	}
	clone := &Deposit{Lender: d.Lender, UpdatedAt: d.UpdatedAt, Amount: big.NewInt(0)}
	if d.Amount != nil {
		clone.Amount = new(big.Int).Set(d.Amount)
	}
	return clone
}

// Loan records a draw against pledged collateral. The collateral valuation is
// snapshotted at origination and never refreshed; repayment and liquidation
// both settle against that snapshot so outcomes stay deterministic and
// auditable regardless of later price drift.
type Loan struct {
	Borrower   crypto.Address
	AssetClass string
	AssetID    uint64
	Principal  *big.Int
	// CollateralValue is the oracle valuation captured when the loan was
	// originated.
	CollateralValue *big.Int
	// OriginatedAt anchors the maturity deadline at OriginatedAt + Duration.
	OriginatedAt int64
	// UpdatedAt is the last interest accrual point.
	UpdatedAt int64
	// Duration is the loan term in seconds from origination.
	Duration int64
	// Active is cleared on repayment and liquidation. Repaid loans are also
	// tombstoned (Principal zeroed); liquidated loans keep their full record
	// for audit.
	Active bool
}

// Deadline returns the unix timestamp after which the loan can no longer be
// repaid and becomes eligible for liquidation.
func (l *Loan) Deadline() int64 {
	if l == nil {
		return 0
	}
	return l.OriginatedAt + l.Duration
}

// Tombstoned reports whether the loan slot was zeroed after repayment.
func (l *Loan) Tombstoned() bool {
	return l == nil || l.Principal == nil || l.Principal.Sign() == 0
}

// Clone returns a deep copy of the loan record.
func (l *Loan) Clone() *Loan {
	if l == nil {
		return nil
	}
	clone := &Loan{
		Borrower:        l.Borrower,
		AssetClass:      l.AssetClass,
		AssetID:         l.AssetID,
		OriginatedAt:    l.OriginatedAt,
		UpdatedAt:       l.UpdatedAt,
		Duration:        l.Duration,
		Active:          l.Active,
		Principal:       big.NewInt(0),
		CollateralValue: big.NewInt(0),
	}
	if l.Principal != nil {
		clone.Principal = new(big.Int).Set(l.Principal)
	}
	if l.CollateralValue != nil {
		clone.CollateralValue = new(big.Int).Set(l.CollateralValue)
	}
	return clone
}

// Pool carries the process-wide aggregates and the governed risk parameters.
// Aggregates are mutated only by the engine operations; parameters only by
// the RiskAdmin setters.
type Pool struct {
	// TotalSupplied is the aggregate value deposited by lenders.
	TotalSupplied *big.Int
	// TotalBorrowed tracks outstanding principal across all loans.
	TotalBorrowed *big.Int
	// CollateralUnits counts the collateral assets currently pledged across
	// all borrowers.
	CollateralUnits uint64
	// BorrowRateBps is the per-annum borrow rate in basis points.
	BorrowRateBps uint64
	// LendRateBps is derived from the borrow rate and pool utilization
	// whenever the borrow rate is set.
	LendRateBps uint64
	// MaxLTVBps caps the borrowable fraction of collateral value in basis
	// points.
	MaxLTVBps uint64
}

// EnsureDefaults populates nil aggregates so encoding and math stay safe.
func (p *Pool) EnsureDefaults() {
	if p.TotalSupplied == nil {
		p.TotalSupplied = big.NewInt(0)
	}
	if p.TotalBorrowed == nil {
		p.TotalBorrowed = big.NewInt(0)
	}
}

// Clone returns a deep copy of the pool state.
func (p *Pool) Clone() *Pool {
	if p == nil {
		return nil
	}
	clone := &Pool{
		CollateralUnits: p.CollateralUnits,
		BorrowRateBps:   p.BorrowRateBps,
		LendRateBps:     p.LendRateBps,
		MaxLTVBps:       p.MaxLTVBps,
		TotalSupplied:   big.NewInt(0),
		TotalBorrowed:   big.NewInt(0),
	}
	if p.TotalSupplied != nil {
		clone.TotalSupplied = new(big.Int).Set(p.TotalSupplied)
	}
	if p.TotalBorrowed != nil {
		clone.TotalBorrowed = new(big.Int).Set(p.TotalBorrowed)
	}
	return clone
}
