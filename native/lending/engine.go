package lending

import (
	"fmt"
	"math/big"
	"time"

	"pawnpool/core/events"
	"pawnpool/core/types"
	"pawnpool/crypto"
)

// Oracle is the external valuation collaborator. Implementations may serve
// stale cached prices; the engine only queries it at loan origination and
// snapshots the result.
type Oracle interface {
	PriceOf(assetClass string, assetID uint64) (*big.Int, error)
}

// Bank moves fungible value between accounts. A failed transfer must leave
// both balances untouched; the engine aborts the enclosing operation and
// never retries.
type Bank interface {
	Transfer(from, to crypto.Address, amount *big.Int) error
}

type engineState interface {
	GetPool() (*Pool, error)
	PutPool(*Pool) error
	DepositCount(lender crypto.Address) (uint64, error)
	GetDeposit(lender crypto.Address, id uint64) (*Deposit, error)
	PutDeposit(lender crypto.Address, id uint64, dep *Deposit) error
	AppendDeposit(lender crypto.Address, dep *Deposit) (uint64, error)
	LoanCount(borrower crypto.Address) (uint64, error)
	GetLoan(borrower crypto.Address, id uint64) (*Loan, error)
	PutLoan(borrower crypto.Address, id uint64, loan *Loan) error
	AppendLoan(borrower crypto.Address, loan *Loan) (uint64, error)
}

type lendingEvent struct {
	evt *types.Event
}

func (e lendingEvent) EventType() string {
	if e.evt == nil {
		return ""
	}
	return e.evt.Type
}

func (e lendingEvent) Event() *types.Event { return e.evt }

// Engine orchestrates the pool ledger and the loan book. Each public
// operation runs as one serialized transaction: validation and external
// collaborator calls happen before records and aggregates are persisted, so
// a collaborator failure aborts with no partial state.
type Engine struct {
	state      engineState
	vault      *CollateralVault
	oracle     Oracle
	bank       Bank
	emitter    events.Emitter
	moduleAddr crypto.Address
	nowFn      func() int64
}

// NewEngine constructs an engine settling value against the given pool
// treasury address.
func NewEngine(moduleAddr crypto.Address) *Engine {
	return &Engine{
		moduleAddr: moduleAddr,
		emitter:    events.NoopEmitter{},
		nowFn:      func() int64 { return time.Now().Unix() },
	}
}

// SetState wires the engine to the external persistence layer.
func (e *Engine) SetState(state engineState) { e.state = state }

// SetVault wires the collateral vault used for pledge and release.
func (e *Engine) SetVault(vault *CollateralVault) { e.vault = vault }

// SetOracle wires the price collaborator consulted at origination.
func (e *Engine) SetOracle(oracle Oracle) { e.oracle = oracle }

// SetBank wires the value-transfer collaborator.
func (e *Engine) SetBank(bank Bank) { e.bank = bank }

// SetNowFunc overrides the time source, primarily so tests can drive
// deterministic accrual intervals.
func (e *Engine) SetNowFunc(now func() int64) {
	if now == nil {
		e.nowFn = func() int64 { return time.Now().Unix() }
		return
	}
	e.nowFn = now
}

// SetEmitter configures the event emitter. Passing nil resets it to no-op.
func (e *Engine) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		e.emitter = events.NoopEmitter{}
		return
	}
	e.emitter = emitter
}

// ModuleAddress returns the pool treasury address the engine settles against.
func (e *Engine) ModuleAddress() crypto.Address { return e.moduleAddr }

func (e *Engine) emit(evt *types.Event) {
	if e == nil || e.emitter == nil || evt == nil {
		return
	}
	e.emitter.Emit(lendingEvent{evt: evt})
}

func (e *Engine) now() int64 {
	if e == nil || e.nowFn == nil {
		return time.Now().Unix()
	}
	return e.nowFn()
}

func (e *Engine) ensurePool() (*Pool, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	pool, err := e.state.GetPool()
	if err != nil {
		return nil, err
	}
	if pool == nil {
		pool = &Pool{}
	}
	pool.EnsureDefaults()
	return pool, nil
}

// Deposit supplies value to the pool and appends a deposit record for the
// lender. The returned id indexes the lender's record sequence and stays
// stable for their lifetime.
func (e *Engine) Deposit(lender crypto.Address, amount *big.Int) (uint64, error) {
	if e == nil || e.state == nil {
		return 0, errNilState
	}
	if e.bank == nil {
		return 0, errNilBank
	}
	if amount == nil || amount.Sign() <= 0 {
		return 0, ErrZeroAmount
	}
	pool, err := e.ensurePool()
	if err != nil {
		return 0, err
	}
	if err := e.bank.Transfer(lender, e.moduleAddr, amount); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrTransferFailed, err)
	}
	dep := &Deposit{
		Lender:    lender,
		Amount:    new(big.Int).Set(amount),
		UpdatedAt: e.now(),
	}
	id, err := e.state.AppendDeposit(lender, dep)
	if err != nil {
		return 0, err
	}
	pool.TotalSupplied = new(big.Int).Add(pool.TotalSupplied, amount)
	if err := e.state.PutPool(pool); err != nil {
		return 0, err
	}
	e.emit(NewDepositedEvent(id, lender, amount))
	return id, nil
}

// Withdraw pays a deposit back to its lender and tombstones the record in
// place so surviving ids keep their meaning. The redeemed amount is returned.
func (e *Engine) Withdraw(lender crypto.Address, depositID uint64) (*big.Int, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	if e.bank == nil {
		return nil, errNilBank
	}
	dep, err := e.state.GetDeposit(lender, depositID)
	if err != nil {
		return nil, err
	}
	if dep == nil {
		return nil, ErrUnknownDeposit
	}
	if dep.Tombstoned() {
		return nil, ErrAlreadyWithdrawn
	}
	pool, err := e.ensurePool()
	if err != nil {
		return nil, err
	}
	// Interest on deposits is a placeholder: the lend rate exists and the
	// accrual model could serve here, but the current design pays out the
	// principal only.
	interest := big.NewInt(0)
	withdrawAmount := new(big.Int).Add(dep.Amount, interest)
	if err := e.bank.Transfer(e.moduleAddr, lender, withdrawAmount); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransferFailed, err)
	}
	pool.TotalSupplied = new(big.Int).Sub(pool.TotalSupplied, withdrawAmount)
	dep.Amount = big.NewInt(0)
	if err := e.state.PutDeposit(lender, depositID, dep); err != nil {
		return nil, err
	}
	if err := e.state.PutPool(pool); err != nil {
		return nil, err
	}
	e.emit(NewWithdrawnEvent(depositID, lender, withdrawAmount))
	return withdrawAmount, nil
}

// Borrow pledges the collateral asset and draws a loan against its oracle
// valuation. The valuation is snapshotted at this instant and never
// refreshed; liquidation settles against the same figure. A failed payout
// unwinds the pledge so the whole operation is all-or-nothing.
func (e *Engine) Borrow(borrower crypto.Address, amount *big.Int, assetClass string, assetID uint64, duration int64) (uint64, error) {
	if e == nil || e.state == nil {
		return 0, errNilState
	}
	if e.vault == nil {
		return 0, errNilVault
	}
	if e.oracle == nil {
		return 0, errNilOracle
	}
	if e.bank == nil {
		return 0, errNilBank
	}
	if amount == nil || amount.Sign() <= 0 {
		return 0, ErrZeroAmount
	}
	value, err := e.oracle.PriceOf(assetClass, assetID)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrUnsupportedAsset, err)
	}
	pool, err := e.ensurePool()
	if err != nil {
		return 0, err
	}
	power := new(big.Int).Mul(value, new(big.Int).SetUint64(pool.MaxLTVBps))
	power.Quo(power, basisPoints)
	if amount.Cmp(power) > 0 {
		return 0, ErrExceedsBorrowingPower
	}
	if err := e.vault.Pledge(borrower, assetClass, assetID); err != nil {
		return 0, err
	}
	if err := e.bank.Transfer(e.moduleAddr, borrower, amount); err != nil {
		// Unwind the pledge; the borrower is both caller and owner here so
		// the release gate passes.
		if relErr := e.vault.Release(borrower, borrower, assetClass, assetID); relErr != nil {
			return 0, fmt.Errorf("%w: payout failed and pledge unwind failed: %v", ErrTransferFailed, relErr)
		}
		return 0, fmt.Errorf("%w: %v", ErrTransferFailed, err)
	}
	now := e.now()
	loan := &Loan{
		Borrower:        borrower,
		AssetClass:      assetClass,
		AssetID:         assetID,
		Principal:       new(big.Int).Set(amount),
		CollateralValue: new(big.Int).Set(value),
		OriginatedAt:    now,
		UpdatedAt:       now,
		Duration:        duration,
		Active:          true,
	}
	loanID, err := e.state.AppendLoan(borrower, loan)
	if err != nil {
		return 0, err
	}
	pool.TotalBorrowed = new(big.Int).Add(pool.TotalBorrowed, amount)
	pool.CollateralUnits++
	if err := e.state.PutPool(pool); err != nil {
		return 0, err
	}
	e.emit(NewBorrowedEvent(borrower, loanID, amount, duration))
	return loanID, nil
}

// Repay settles principal plus accrued interest before the maturity deadline
// and returns the collateral to the borrower. Past the deadline repayment is
// refused; the loan can only leave the book through liquidation. The total
// amount settled is returned.
func (e *Engine) Repay(caller, borrower crypto.Address, loanID uint64) (*big.Int, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	if e.vault == nil {
		return nil, errNilVault
	}
	if e.bank == nil {
		return nil, errNilBank
	}
	loan, err := e.state.GetLoan(borrower, loanID)
	if err != nil {
		return nil, err
	}
	if loan == nil {
		return nil, ErrUnknownLoan
	}
	now := e.now()
	if now > loan.Deadline() {
		return nil, ErrLoanExpired
	}
	if !caller.Equal(loan.Borrower) {
		return nil, ErrNotBorrower
	}
	if !loan.Active {
		return nil, ErrAlreadyRepaid
	}
	pool, err := e.ensurePool()
	if err != nil {
		return nil, err
	}
	interest, err := Accrue(pool.BorrowRateBps, loan.UpdatedAt, now, loan.Principal)
	if err != nil {
		return nil, err
	}
	due := new(big.Int).Add(loan.Principal, interest)
	if err := e.bank.Transfer(caller, e.moduleAddr, due); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransferFailed, err)
	}
	if err := e.vault.Release(caller, borrower, loan.AssetClass, loan.AssetID); err != nil {
		// Compensate the settlement so a custody failure leaves no net
		// mutation.
		_ = e.bank.Transfer(e.moduleAddr, caller, due)
		return nil, err
	}
	principal := new(big.Int).Set(loan.Principal)
	loan.UpdatedAt = now
	loan.Active = false
	loan.Principal = big.NewInt(0)
	if err := e.state.PutLoan(borrower, loanID, loan); err != nil {
		return nil, err
	}
	pool.TotalBorrowed = new(big.Int).Sub(pool.TotalBorrowed, principal)
	if pool.CollateralUnits > 0 {
		pool.CollateralUnits--
	}
	if err := e.state.PutPool(pool); err != nil {
		return nil, err
	}
	e.emit(NewRepaidEvent(borrower, loanID, due, interest))
	return due, nil
}

// Liquidate lets any caller buy the collateral of a matured, unpaid loan at
// its origination-time valuation. The fixed price makes settlement
// deterministic: no auction, no partial fills, and no mid-transaction oracle
// query. The loan record is retained (active flag cleared) for audit.
func (e *Engine) Liquidate(caller, borrower crypto.Address, loanID uint64, payment *big.Int) error {
	if e == nil || e.state == nil {
		return errNilState
	}
	if e.vault == nil {
		return errNilVault
	}
	if e.bank == nil {
		return errNilBank
	}
	loan, err := e.state.GetLoan(borrower, loanID)
	if err != nil {
		return err
	}
	if loan == nil {
		return ErrUnknownLoan
	}
	now := e.now()
	if now <= loan.Deadline() {
		return ErrNotYetLiquidatable
	}
	if !loan.Active {
		return ErrAlreadyClosed
	}
	if payment == nil || payment.Cmp(loan.CollateralValue) != 0 {
		return ErrIncorrectPayment
	}
	pool, err := e.ensurePool()
	if err != nil {
		return err
	}
	if err := e.bank.Transfer(caller, e.moduleAddr, payment); err != nil {
		return fmt.Errorf("%w: %v", ErrTransferFailed, err)
	}
	if err := e.vault.Seize(caller, borrower, loan.AssetClass, loan.AssetID); err != nil {
		_ = e.bank.Transfer(e.moduleAddr, caller, payment)
		return err
	}
	loan.Active = false
	if err := e.state.PutLoan(borrower, loanID, loan); err != nil {
		return err
	}
	if pool.CollateralUnits > 0 {
		pool.CollateralUnits--
	}
	if err := e.state.PutPool(pool); err != nil {
		return err
	}
	e.emit(NewLiquidatedEvent(borrower, loanID, caller))
	return nil
}

// Pool returns a copy of the aggregate pool state.
func (e *Engine) Pool() (*Pool, error) {
	pool, err := e.ensurePool()
	if err != nil {
		return nil, err
	}
	return pool.Clone(), nil
}

// DepositAt returns a copy of the lender's deposit record at the given id.
func (e *Engine) DepositAt(lender crypto.Address, depositID uint64) (*Deposit, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	dep, err := e.state.GetDeposit(lender, depositID)
	if err != nil {
		return nil, err
	}
	if dep == nil {
		return nil, ErrUnknownDeposit
	}
	return dep.Clone(), nil
}

// LoanAt returns a copy of the borrower's loan record at the given id.
func (e *Engine) LoanAt(borrower crypto.Address, loanID uint64) (*Loan, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	loan, err := e.state.GetLoan(borrower, loanID)
	if err != nil {
		return nil, err
	}
	if loan == nil {
		return nil, ErrUnknownLoan
	}
	return loan.Clone(), nil
}
