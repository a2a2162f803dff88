package state

import (
	"fmt"
	"math/big"

	"pawnpool/crypto"
	"pawnpool/native/lending"
)

type storedPool struct {
	TotalSupplied   *big.Int
	TotalBorrowed   *big.Int
	CollateralUnits uint64
	BorrowRateBps   uint64
	LendRateBps     uint64
	MaxLTVBps       uint64
}

type storedDeposit struct {
	Lender    []byte
	Amount    *big.Int
	UpdatedAt uint64
}

type storedLoan struct {
	Borrower        []byte
	AssetClass      string
	AssetID         uint64
	Principal       *big.Int
	CollateralValue *big.Int
	OriginatedAt    uint64
	UpdatedAt       uint64
	Duration        uint64
	Active          bool
}

// GetPool loads the aggregate pool record, or nil when none was written yet.
func (m *Manager) GetPool() (*lending.Pool, error) {
	stored := new(storedPool)
	found, err := m.getRLP(poolKey, stored)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	pool := &lending.Pool{
		TotalSupplied:   stored.TotalSupplied,
		TotalBorrowed:   stored.TotalBorrowed,
		CollateralUnits: stored.CollateralUnits,
		BorrowRateBps:   stored.BorrowRateBps,
		LendRateBps:     stored.LendRateBps,
		MaxLTVBps:       stored.MaxLTVBps,
	}
	pool.EnsureDefaults()
	return pool, nil
}

// PutPool persists the aggregate pool record.
func (m *Manager) PutPool(pool *lending.Pool) error {
	if pool == nil {
		return fmt.Errorf("state: nil pool")
	}
	pool.EnsureDefaults()
	return m.putRLP(poolKey, &storedPool{
		TotalSupplied:   pool.TotalSupplied,
		TotalBorrowed:   pool.TotalBorrowed,
		CollateralUnits: pool.CollateralUnits,
		BorrowRateBps:   pool.BorrowRateBps,
		LendRateBps:     pool.LendRateBps,
		MaxLTVBps:       pool.MaxLTVBps,
	})
}

// DepositCount returns how many deposit slots the lender's sequence holds,
// tombstones included.
func (m *Manager) DepositCount(lender crypto.Address) (uint64, error) {
	return m.getCounter(fmt.Sprintf(depositCountKeyFormat, lender.Bytes()))
}

// GetDeposit loads a deposit slot, or nil when the id was never assigned.
func (m *Manager) GetDeposit(lender crypto.Address, id uint64) (*lending.Deposit, error) {
	stored := new(storedDeposit)
	found, err := m.getRLP(fmt.Sprintf(depositEntryKeyFormat, lender.Bytes(), id), stored)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	return &lending.Deposit{
		Lender:    decodeAddress(stored.Lender),
		Amount:    stored.Amount,
		UpdatedAt: int64(stored.UpdatedAt),
	}, nil
}

// PutDeposit overwrites a deposit slot in place.
func (m *Manager) PutDeposit(lender crypto.Address, id uint64, dep *lending.Deposit) error {
	if dep == nil {
		return fmt.Errorf("state: nil deposit")
	}
	return m.putRLP(fmt.Sprintf(depositEntryKeyFormat, lender.Bytes(), id), encodeDeposit(dep))
}

// AppendDeposit writes the deposit into the next free slot of the lender's
// sequence and returns the assigned id. Slots are never reused.
func (m *Manager) AppendDeposit(lender crypto.Address, dep *lending.Deposit) (uint64, error) {
	if dep == nil {
		return 0, fmt.Errorf("state: nil deposit")
	}
	countKey := fmt.Sprintf(depositCountKeyFormat, lender.Bytes())
	count, err := m.getCounter(countKey)
	if err != nil {
		return 0, err
	}
	if err := m.putRLP(fmt.Sprintf(depositEntryKeyFormat, lender.Bytes(), count), encodeDeposit(dep)); err != nil {
		return 0, err
	}
	if err := m.putRLP(countKey, count+1); err != nil {
		return 0, err
	}
	return count, nil
}

// LoanCount returns how many loan slots the borrower's sequence holds.
func (m *Manager) LoanCount(borrower crypto.Address) (uint64, error) {
	return m.getCounter(fmt.Sprintf(loanCountKeyFormat, borrower.Bytes()))
}

// GetLoan loads a loan slot, or nil when the id was never assigned.
func (m *Manager) GetLoan(borrower crypto.Address, id uint64) (*lending.Loan, error) {
	stored := new(storedLoan)
	found, err := m.getRLP(fmt.Sprintf(loanEntryKeyFormat, borrower.Bytes(), id), stored)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	return &lending.Loan{
		Borrower:        decodeAddress(stored.Borrower),
		AssetClass:      stored.AssetClass,
		AssetID:         stored.AssetID,
		Principal:       stored.Principal,
		CollateralValue: stored.CollateralValue,
		OriginatedAt:    int64(stored.OriginatedAt),
		UpdatedAt:       int64(stored.UpdatedAt),
		Duration:        int64(stored.Duration),
		Active:          stored.Active,
	}, nil
}

// PutLoan overwrites a loan slot in place.
func (m *Manager) PutLoan(borrower crypto.Address, id uint64, loan *lending.Loan) error {
	if loan == nil {
		return fmt.Errorf("state: nil loan")
	}
	return m.putRLP(fmt.Sprintf(loanEntryKeyFormat, borrower.Bytes(), id), encodeLoan(loan))
}

// AppendLoan writes the loan into the next free slot of the borrower's
// sequence and returns the assigned id.
func (m *Manager) AppendLoan(borrower crypto.Address, loan *lending.Loan) (uint64, error) {
	if loan == nil {
		return 0, fmt.Errorf("state: nil loan")
	}
	countKey := fmt.Sprintf(loanCountKeyFormat, borrower.Bytes())
	count, err := m.getCounter(countKey)
	if err != nil {
		return 0, err
	}
	if err := m.putRLP(fmt.Sprintf(loanEntryKeyFormat, borrower.Bytes(), count), encodeLoan(loan)); err != nil {
		return 0, err
	}
	if err := m.putRLP(countKey, count+1); err != nil {
		return 0, err
	}
	return count, nil
}

// CollateralCount returns how many units of the class the owner has pledged.
func (m *Manager) CollateralCount(owner crypto.Address, assetClass string) (uint64, error) {
	return m.getCounter(fmt.Sprintf(collateralKeyFormat, owner.Bytes(), assetClass))
}

// PutCollateralCount records the pledged unit count for (owner, class).
func (m *Manager) PutCollateralCount(owner crypto.Address, assetClass string, count uint64) error {
	return m.putRLP(fmt.Sprintf(collateralKeyFormat, owner.Bytes(), assetClass), count)
}

func encodeDeposit(dep *lending.Deposit) *storedDeposit {
	amount := dep.Amount
	if amount == nil {
		amount = big.NewInt(0)
	}
	return &storedDeposit{
		Lender:    dep.Lender.Bytes(),
		Amount:    amount,
		UpdatedAt: uint64(dep.UpdatedAt),
	}
}

func encodeLoan(loan *lending.Loan) *storedLoan {
	principal := loan.Principal
	if principal == nil {
		principal = big.NewInt(0)
	}
	value := loan.CollateralValue
	if value == nil {
		value = big.NewInt(0)
	}
	return &storedLoan{
		Borrower:        loan.Borrower.Bytes(),
		AssetClass:      loan.AssetClass,
		AssetID:         loan.AssetID,
		Principal:       principal,
		CollateralValue: value,
		OriginatedAt:    uint64(loan.OriginatedAt),
		UpdatedAt:       uint64(loan.UpdatedAt),
		Duration:        uint64(loan.Duration),
		Active:          loan.Active,
	}
}
