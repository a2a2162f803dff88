package lending

import (
	"errors"
	"math/big"
	"testing"
)

func newTestAdmin() (*RiskAdmin, *mockLedger) {
	ledger := newMockLedger()
	admin := NewRiskAdmin(testAddr(9))
	admin.SetState(ledger)
	return admin, ledger
}

func TestAdminAuthGate(t *testing.T) {
	admin, _ := newTestAdmin()
	stranger := testAddr(1)

	if err := admin.SetBorrowRate(stranger, 900); !errors.Is(err, ErrNotAuthorized) {
		t.Fatalf("expected ErrNotAuthorized, got %v", err)
	}
	if err := admin.SetMaxLTV(stranger, 4000); !errors.Is(err, ErrNotAuthorized) {
		t.Fatalf("expected ErrNotAuthorized, got %v", err)
	}
	if err := admin.TransferOwnership(stranger, stranger); !errors.Is(err, ErrNotAuthorized) {
		t.Fatalf("expected ErrNotAuthorized, got %v", err)
	}
}

func TestAdminTransferOwnership(t *testing.T) {
	admin, ledger := newTestAdmin()
	ledger.pool = &Pool{TotalSupplied: big.NewInt(1000), TotalBorrowed: big.NewInt(250)}
	oldOwner := admin.Owner()
	newOwner := testAddr(5)

	if err := admin.TransferOwnership(oldOwner, newOwner); err != nil {
		t.Fatalf("transfer ownership: %v", err)
	}
	if err := admin.SetMaxLTV(oldOwner, 4000); !errors.Is(err, ErrNotAuthorized) {
		t.Fatalf("old owner still authorized: %v", err)
	}
	if err := admin.SetMaxLTV(newOwner, 4000); err != nil {
		t.Fatalf("new owner rejected: %v", err)
	}
	if ledger.pool.MaxLTVBps != 4000 {
		t.Fatalf("max ltv %d, want 4000", ledger.pool.MaxLTVBps)
	}
}

func TestAdminSetBorrowRate(t *testing.T) {
	admin, ledger := newTestAdmin()
	ledger.pool = &Pool{TotalSupplied: big.NewInt(1000), TotalBorrowed: big.NewInt(250)}

	if err := admin.SetBorrowRate(admin.Owner(), 800); err != nil {
		t.Fatalf("set borrow rate: %v", err)
	}
	if ledger.pool.BorrowRateBps != 800 {
		t.Fatalf("borrow rate %d, want 800", ledger.pool.BorrowRateBps)
	}
	// 25% utilization derives a quarter of the borrow rate.
	if ledger.pool.LendRateBps != 200 {
		t.Fatalf("lend rate %d, want 200", ledger.pool.LendRateBps)
	}
}

func TestAdminSetBorrowRateEmptyPool(t *testing.T) {
	admin, ledger := newTestAdmin()

	if err := admin.SetBorrowRate(admin.Owner(), 800); !errors.Is(err, ErrDivisionByZero) {
		t.Fatalf("expected ErrDivisionByZero, got %v", err)
	}
	if ledger.pool != nil && ledger.pool.BorrowRateBps != 0 {
		t.Fatalf("rate written despite failure: %d", ledger.pool.BorrowRateBps)
	}
}

func TestAdminUtilization(t *testing.T) {
	admin, ledger := newTestAdmin()

	util, err := admin.Utilization()
	if err != nil {
		t.Fatalf("utilization on empty pool: %v", err)
	}
	if util != 0 {
		t.Fatalf("empty pool utilization %d, want 0", util)
	}

	ledger.pool = &Pool{TotalSupplied: big.NewInt(0), TotalBorrowed: big.NewInt(10)}
	ledger.pool.EnsureDefaults()
	if _, err := admin.Utilization(); !errors.Is(err, ErrDivisionByZero) {
		t.Fatalf("expected ErrDivisionByZero, got %v", err)
	}

	ledger.pool = &Pool{TotalSupplied: big.NewInt(400), TotalBorrowed: big.NewInt(100)}
	util, err = admin.Utilization()
	if err != nil {
		t.Fatalf("utilization: %v", err)
	}
	if util != 2500 {
		t.Fatalf("utilization %d bps, want 2500", util)
	}
}
