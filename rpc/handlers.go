package rpc

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

type depositRequest struct {
	Lender string `json:"lender"`
	Amount string `json:"amount"`
}

type depositResponse struct {
	DepositID uint64 `json:"depositId"`
}

func (s *Server) handleDeposit(w http.ResponseWriter, r *http.Request) {
	var req depositRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	lender, err := parseAddress(req.Lender)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	amount, err := parseAmount(req.Amount)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	id, err := s.engine.Deposit(lender, amount)
	s.metrics.observe("deposit", err)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, depositResponse{DepositID: id})
}

type withdrawRequest struct {
	Lender    string `json:"lender"`
	DepositID uint64 `json:"depositId"`
}

type withdrawResponse struct {
	Amount string `json:"amount"`
}

func (s *Server) handleWithdraw(w http.ResponseWriter, r *http.Request) {
	var req withdrawRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	lender, err := parseAddress(req.Lender)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	amount, err := s.engine.Withdraw(lender, req.DepositID)
	s.metrics.observe("withdraw", err)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, withdrawResponse{Amount: amount.String()})
}

type borrowRequest struct {
	Borrower   string `json:"borrower"`
	Amount     string `json:"amount"`
	AssetClass string `json:"assetClass"`
	AssetID    uint64 `json:"assetId"`
	Duration   int64  `json:"durationSeconds"`
}

type borrowResponse struct {
	LoanID uint64 `json:"loanId"`
}

func (s *Server) handleBorrow(w http.ResponseWriter, r *http.Request) {
	var req borrowRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	borrower, err := parseAddress(req.Borrower)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	amount, err := parseAmount(req.Amount)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	if req.Duration <= 0 {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "durationSeconds must be positive"})
		return
	}
	id, err := s.engine.Borrow(borrower, amount, req.AssetClass, req.AssetID, req.Duration)
	s.metrics.observe("borrow", err)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, borrowResponse{LoanID: id})
}

type repayRequest struct {
	Caller   string `json:"caller"`
	Borrower string `json:"borrower"`
	LoanID   uint64 `json:"loanId"`
}

type repayResponse struct {
	Amount string `json:"amount"`
}

func (s *Server) handleRepay(w http.ResponseWriter, r *http.Request) {
	var req repayRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	caller, err := parseAddress(req.Caller)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	borrower, err := parseAddress(req.Borrower)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	amount, err := s.engine.Repay(caller, borrower, req.LoanID)
	s.metrics.observe("repay", err)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, repayResponse{Amount: amount.String()})
}

type liquidateRequest struct {
	Caller   string `json:"caller"`
	Borrower string `json:"borrower"`
	LoanID   uint64 `json:"loanId"`
	Payment  string `json:"payment"`
}

func (s *Server) handleLiquidate(w http.ResponseWriter, r *http.Request) {
	var req liquidateRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	caller, err := parseAddress(req.Caller)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	borrower, err := parseAddress(req.Borrower)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	payment, err := parseAmount(req.Payment)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	err = s.engine.Liquidate(caller, borrower, req.LoanID, payment)
	s.metrics.observe("liquidate", err)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "liquidated"})
}

type depositRecordResponse struct {
	Lender    string `json:"lender"`
	Amount    string `json:"amount"`
	UpdatedAt int64  `json:"updatedAt"`
	Withdrawn bool   `json:"withdrawn"`
}

func (s *Server) handleGetDeposit(w http.ResponseWriter, r *http.Request) {
	lender, err := parseAddress(chi.URLParam(r, "lender"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "id must be an unsigned integer"})
		return
	}
	dep, err := s.engine.DepositAt(lender, id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, depositRecordResponse{
		Lender:    dep.Lender.String(),
		Amount:    dep.Amount.String(),
		UpdatedAt: dep.UpdatedAt,
		Withdrawn: dep.Tombstoned(),
	})
}

type loanRecordResponse struct {
	Borrower        string `json:"borrower"`
	AssetClass      string `json:"assetClass"`
	AssetID         uint64 `json:"assetId"`
	Principal       string `json:"principal"`
	CollateralValue string `json:"collateralValue"`
	OriginatedAt    int64  `json:"originatedAt"`
	Deadline        int64  `json:"deadline"`
	Active          bool   `json:"active"`
}

func (s *Server) handleGetLoan(w http.ResponseWriter, r *http.Request) {
	borrower, err := parseAddress(chi.URLParam(r, "borrower"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "id must be an unsigned integer"})
		return
	}
	loan, err := s.engine.LoanAt(borrower, id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, loanRecordResponse{
		Borrower:        loan.Borrower.String(),
		AssetClass:      loan.AssetClass,
		AssetID:         loan.AssetID,
		Principal:       loan.Principal.String(),
		CollateralValue: loan.CollateralValue.String(),
		OriginatedAt:    loan.OriginatedAt,
		Deadline:        loan.Deadline(),
		Active:          loan.Active,
	})
}

type poolResponse struct {
	TotalSupplied   string `json:"totalSupplied"`
	TotalBorrowed   string `json:"totalBorrowed"`
	CollateralUnits uint64 `json:"collateralUnits"`
	BorrowRateBps   uint64 `json:"borrowRateBps"`
	LendRateBps     uint64 `json:"lendRateBps"`
	MaxLTVBps       uint64 `json:"maxLtvBps"`
}

func (s *Server) handlePool(w http.ResponseWriter, _ *http.Request) {
	pool, err := s.engine.Pool()
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, poolResponse{
		TotalSupplied:   pool.TotalSupplied.String(),
		TotalBorrowed:   pool.TotalBorrowed.String(),
		CollateralUnits: pool.CollateralUnits,
		BorrowRateBps:   pool.BorrowRateBps,
		LendRateBps:     pool.LendRateBps,
		MaxLTVBps:       pool.MaxLTVBps,
	})
}

type setRateRequest struct {
	Caller  string `json:"caller"`
	RateBps uint64 `json:"rateBps"`
}

func (s *Server) handleSetBorrowRate(w http.ResponseWriter, r *http.Request) {
	var req setRateRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	caller, err := parseAddress(req.Caller)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	err = s.admin.SetBorrowRate(caller, req.RateBps)
	s.metrics.observe("set_borrow_rate", err)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type setRatioRequest struct {
	Caller   string `json:"caller"`
	RatioBps uint64 `json:"ratioBps"`
}

func (s *Server) handleSetMaxLTV(w http.ResponseWriter, r *http.Request) {
	var req setRatioRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	caller, err := parseAddress(req.Caller)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	err = s.admin.SetMaxLTV(caller, req.RatioBps)
	s.metrics.observe("set_max_ltv", err)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleUtilization(w http.ResponseWriter, _ *http.Request) {
	util, err := s.admin.Utilization()
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"utilizationBps": fmt.Sprintf("%d", util)})
}
