package lending

import (
	"math/big"
	"strconv"

	"pawnpool/core/types"
	"pawnpool/crypto"
)

const (
	EventTypeDeposited  = "lending.deposited"
	EventTypeWithdrawn  = "lending.withdrawn"
	EventTypeBorrowed   = "lending.borrowed"
	EventTypeRepaid     = "lending.repaid"
	EventTypeLiquidated = "lending.liquidated"
)

// NewDepositedEvent returns the canonical payload emitted when a lender
// supplies value to the pool.
func NewDepositedEvent(depositID uint64, lender crypto.Address, amount *big.Int) *types.Event {
	return &types.Event{
		Type: EventTypeDeposited,
		Attributes: map[string]string{
			"depositId": formatID(depositID),
			"lender":    lender.String(),
			"amount":    formatAmount(amount),
		},
	}
}

// NewWithdrawnEvent returns the canonical payload emitted when a deposit is
// paid back out.
func NewWithdrawnEvent(depositID uint64, lender crypto.Address, amount *big.Int) *types.Event {
	return &types.Event{
		Type: EventTypeWithdrawn,
		Attributes: map[string]string{
			"depositId": formatID(depositID),
			"lender":    lender.String(),
			"amount":    formatAmount(amount),
		},
	}
}

// NewBorrowedEvent returns the canonical payload emitted at loan origination.
func NewBorrowedEvent(borrower crypto.Address, loanID uint64, amount *big.Int, duration int64) *types.Event {
	return &types.Event{
		Type: EventTypeBorrowed,
		Attributes: map[string]string{
			"borrower": borrower.String(),
			"loanId":   formatID(loanID),
			"amount":   formatAmount(amount),
			"duration": strconv.FormatInt(duration, 10),
		},
	}
}

// NewRepaidEvent returns the canonical payload emitted when a loan is repaid
// in full, including the interest portion of the settlement.
func NewRepaidEvent(borrower crypto.Address, loanID uint64, amount, interest *big.Int) *types.Event {
	return &types.Event{
		Type: EventTypeRepaid,
		Attributes: map[string]string{
			"borrower": borrower.String(),
			"loanId":   formatID(loanID),
			"amount":   formatAmount(amount),
			"interest": formatAmount(interest),
		},
	}
}

// NewLiquidatedEvent returns the canonical payload emitted when collateral is
// seized by a liquidator.
func NewLiquidatedEvent(borrower crypto.Address, loanID uint64, liquidator crypto.Address) *types.Event {
	return &types.Event{
		Type: EventTypeLiquidated,
		Attributes: map[string]string{
			"borrower":   borrower.String(),
			"loanId":     formatID(loanID),
			"liquidator": liquidator.String(),
		},
	}
}

func formatID(id uint64) string {
	return strconv.FormatUint(id, 10)
}

func formatAmount(amount *big.Int) string {
	if amount == nil {
		return "0"
	}
	return amount.String()
}
