package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pawnpool/config"
	"pawnpool/core/pricing"
	"pawnpool/core/state"
	"pawnpool/crypto"
	"pawnpool/native/lending"
	"pawnpool/observability/logging"
	"pawnpool/rpc"
	"pawnpool/storage"
)

func main() {
	configPath := flag.String("config", "", "path to the TOML configuration file")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			slog.Error("failed to load configuration", slog.Any("error", err))
			os.Exit(1)
		}
		cfg = loaded
	}

	logger := logging.Setup("pawnpoold", cfg.Environment)

	var db storage.Database
	if cfg.DataDir == "" {
		logger.Warn("no data directory configured, running with in-memory state")
		db = storage.NewMemDB()
	} else {
		leveldb, err := storage.NewLevelDB(cfg.DataDir)
		if err != nil {
			logger.Error("failed to open database", slog.Any("error", err))
			os.Exit(1)
		}
		db = leveldb
	}
	defer func() { _ = db.Close() }()

	manager := state.NewManager(db)
	if err := seedState(manager, cfg, logger); err != nil {
		logger.Error("failed to seed genesis state", slog.Any("error", err))
		os.Exit(1)
	}

	oracle := pricing.NewStaticOracle()
	quotes, err := cfg.ParsedQuotes()
	if err != nil {
		logger.Error("invalid oracle quotes", slog.Any("error", err))
		os.Exit(1)
	}
	for class, value := range quotes {
		if err := oracle.Quote(class, value); err != nil {
			logger.Error("failed to quote asset class", slog.String("class", class), slog.Any("error", err))
			os.Exit(1)
		}
	}

	vault := lending.NewCollateralVault(manager)
	vault.SetState(manager)

	engine := lending.NewEngine(crypto.ModuleAddress("pool"))
	engine.SetState(manager)
	engine.SetVault(vault)
	engine.SetOracle(oracle)
	engine.SetBank(manager)

	owner := crypto.ModuleAddress("governance")
	if cfg.Lending.Owner != "" {
		decoded, err := crypto.DecodeAddress(cfg.Lending.Owner)
		if err != nil {
			logger.Error("invalid risk admin owner", slog.Any("error", err))
			os.Exit(1)
		}
		owner = decoded
	}
	admin := lending.NewRiskAdmin(owner)
	admin.SetState(manager)

	server := rpc.NewServer(engine, admin, logger)
	httpServer := &http.Server{
		Addr:              cfg.ListenAddress,
		Handler:           server.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("ledger API listening", slog.String("address", cfg.ListenAddress))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server failed", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", slog.Any("error", err))
	}
}

// seedState installs the configured pool parameters, balances and assets the
// first time the node starts. Reruns are no-ops: existing records win.
func seedState(manager *state.Manager, cfg *config.Config, logger *slog.Logger) error {
	pool, err := manager.GetPool()
	if err != nil {
		return err
	}
	if pool == nil {
		pool = &lending.Pool{
			MaxLTVBps:     cfg.Lending.MaxLTVBps,
			BorrowRateBps: cfg.Lending.BorrowRateBps,
		}
		pool.EnsureDefaults()
		if err := manager.PutPool(pool); err != nil {
			return err
		}
		logger.Info("initialised pool parameters",
			slog.Uint64("maxLtvBps", cfg.Lending.MaxLTVBps),
			slog.Uint64("borrowRateBps", cfg.Lending.BorrowRateBps),
		)
	}
	for _, account := range cfg.Genesis.Accounts {
		addr, err := crypto.DecodeAddress(account.Address)
		if err != nil {
			return err
		}
		existing, err := manager.GetAccount(addr)
		if err != nil {
			return err
		}
		if existing.Balance.Sign() > 0 {
			continue
		}
		balance, err := config.ParseAmount(account.Balance)
		if err != nil {
			return err
		}
		if balance.Sign() == 0 {
			continue
		}
		if err := manager.Mint(addr, balance); err != nil {
			return err
		}
	}
	for _, asset := range cfg.Genesis.Assets {
		owner, err := crypto.DecodeAddress(asset.Owner)
		if err != nil {
			return err
		}
		err = manager.RegisterAsset(owner, asset.Class, asset.ID)
		if err != nil && !errors.Is(err, state.ErrAssetExists) {
			return err
		}
	}
	return nil
}
