package lending

import "errors"

// Engine and vault failures are sentinel values so the RPC layer can map them
// with errors.Is. Every failure is raised before, or instead of, any state
// mutation; no operation leaves partial state behind.
var (
	errNilState   = errors.New("lending engine: state not configured")
	errNilVault   = errors.New("lending engine: collateral vault not configured")
	errNilOracle  = errors.New("lending engine: price oracle not configured")
	errNilBank    = errors.New("lending engine: value transfer backend not configured")
	errNilCustody = errors.New("collateral vault: custody backend not configured")

	// Validation.
	ErrZeroAmount       = errors.New("lending engine: amount must be positive")
	ErrUnsupportedAsset = errors.New("lending engine: asset class not supported by the oracle")
	ErrInvalidTimeRange = errors.New("lending engine: accrual interval end precedes start")

	// Authorization.
	ErrNotAuthorized = errors.New("lending: caller not authorized")
	ErrNotBorrower   = errors.New("lending engine: caller is not the recorded borrower")
	ErrNotOwner      = errors.New("collateral vault: caller is not the asset owner of record")

	// State conflicts.
	ErrUnknownDeposit        = errors.New("lending engine: deposit not found")
	ErrUnknownLoan           = errors.New("lending engine: loan not found")
	ErrAlreadyWithdrawn      = errors.New("lending engine: deposit already withdrawn")
	ErrAlreadyRepaid         = errors.New("lending engine: loan already repaid")
	ErrAlreadyClosed         = errors.New("lending engine: loan already closed")
	ErrLoanExpired           = errors.New("lending engine: loan past maturity, must be liquidated")
	ErrNotYetLiquidatable    = errors.New("lending engine: loan has not reached maturity")
	ErrIncorrectPayment      = errors.New("lending engine: payment must equal the collateral valuation")
	ErrExceedsBorrowingPower = errors.New("lending engine: amount exceeds borrowing power")

	// Collateral custody.
	ErrNoHoldings            = errors.New("collateral vault: owner holds no assets of this class")
	ErrCapacityExceeded      = errors.New("collateral vault: pledged count exceeds external holdings")
	ErrNotInCustody          = errors.New("collateral vault: asset not held in escrow for the vault")
	ErrNothingPledged        = errors.New("collateral vault: no pledged balance to release")
	ErrCustodyTransferFailed = errors.New("collateral vault: custody transfer failed")

	// External value movement.
	ErrTransferFailed = errors.New("lending engine: value transfer failed")

	// Arithmetic hazards.
	ErrDivisionByZero = errors.New("lending: division by zero while deriving rate")
)
