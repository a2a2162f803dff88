package rpc

import (
	"encoding/json"
	"errors"
	"log/slog"
	"math/big"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"pawnpool/crypto"
	"pawnpool/native/lending"
)

const requestBodyLimit = 1 << 20 // 1 MiB

// Server exposes the ledger operations over HTTP with JSON bodies. It is a
// thin translation layer: all invariants live in the engine, the server only
// parses, dispatches and maps errors to statuses.
type Server struct {
	engine  *lending.Engine
	admin   *lending.RiskAdmin
	log     *slog.Logger
	metrics *Metrics
	// promHandler serves the server-local registry so tests never collide on
	// the global one.
	promHandler http.Handler
}

func NewServer(engine *lending.Engine, admin *lending.RiskAdmin, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	registry := prometheus.NewRegistry()
	srv := &Server{
		engine:  engine,
		admin:   admin,
		log:     logger,
		metrics: NewMetrics(registry),
	}
	srv.promHandler = promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
	return srv
}

// Router assembles the HTTP surface.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(s.requestContext)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", s.promHandler)

	r.Route("/v1/lending", func(r chi.Router) {
		r.Get("/pool", s.handlePool)
		r.Get("/deposits/{lender}/{id}", s.handleGetDeposit)
		r.Get("/loans/{borrower}/{id}", s.handleGetLoan)
		r.Post("/deposit", s.handleDeposit)
		r.Post("/withdraw", s.handleWithdraw)
		r.Post("/borrow", s.handleBorrow)
		r.Post("/repay", s.handleRepay)
		r.Post("/liquidate", s.handleLiquidate)
	})
	r.Route("/v1/admin", func(r chi.Router) {
		r.Post("/borrow-rate", s.handleSetBorrowRate)
		r.Post("/max-ltv", s.handleSetMaxLTV)
		r.Get("/utilization", s.handleUtilization)
	})
	return r
}

// requestContext tags every request with a correlation id and logs the
// outcome.
func (s *Server) requestContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := uuid.NewString()
		w.Header().Set("X-Request-Id", requestID)
		start := time.Now()
		next.ServeHTTP(w, r)
		s.log.Info("request",
			slog.String("requestId", requestID),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Duration("elapsed", time.Since(start)),
		)
	})
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	writeJSON(w, statusFor(err), errorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// statusFor maps the engine's typed failures onto HTTP statuses following the
// ledger's error taxonomy: validation and bad input 400, authorization 403,
// missing records 404, state conflicts 409, failed external collaborators
// 502, arithmetic hazards 500.
func statusFor(err error) int {
	switch {
	case errors.Is(err, lending.ErrZeroAmount),
		errors.Is(err, lending.ErrUnsupportedAsset),
		errors.Is(err, lending.ErrInvalidTimeRange):
		return http.StatusBadRequest
	case errors.Is(err, lending.ErrNotAuthorized),
		errors.Is(err, lending.ErrNotBorrower),
		errors.Is(err, lending.ErrNotOwner):
		return http.StatusForbidden
	case errors.Is(err, lending.ErrUnknownDeposit),
		errors.Is(err, lending.ErrUnknownLoan):
		return http.StatusNotFound
	case errors.Is(err, lending.ErrAlreadyWithdrawn),
		errors.Is(err, lending.ErrAlreadyRepaid),
		errors.Is(err, lending.ErrAlreadyClosed),
		errors.Is(err, lending.ErrLoanExpired),
		errors.Is(err, lending.ErrNotYetLiquidatable),
		errors.Is(err, lending.ErrIncorrectPayment),
		errors.Is(err, lending.ErrExceedsBorrowingPower),
		errors.Is(err, lending.ErrNoHoldings),
		errors.Is(err, lending.ErrCapacityExceeded),
		errors.Is(err, lending.ErrNothingPledged),
		errors.Is(err, lending.ErrNotInCustody):
		return http.StatusConflict
	case errors.Is(err, lending.ErrTransferFailed),
		errors.Is(err, lending.ErrCustodyTransferFailed):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, out interface{}) error {
	defer func() { _ = r.Body.Close() }()
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, requestBodyLimit))
	decoder.DisallowUnknownFields()
	return decoder.Decode(out)
}

func parseAddress(raw string) (crypto.Address, error) {
	return crypto.DecodeAddress(strings.TrimSpace(raw))
}

func parseAmount(raw string) (*big.Int, error) {
	value, ok := new(big.Int).SetString(strings.TrimSpace(raw), 10)
	if !ok {
		return nil, errors.New("rpc: amount must be a decimal integer")
	}
	return value, nil
}
