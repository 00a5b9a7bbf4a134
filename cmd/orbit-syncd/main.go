// Command orbit-syncd starts the device-pairing sync server for the orbit
// ledger and keeps it up until it is stopped, interrupted, or the watchdog
// closes it.
package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/orbitapp/orbit/internal/config"
	"github.com/orbitapp/orbit/internal/errs"
	"github.com/orbitapp/orbit/internal/ledger"
	"github.com/orbitapp/orbit/internal/server/httpsync"
	"github.com/orbitapp/orbit/internal/store"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

// main parses configuration, opens the document store, and runs one pairing
// server lifetime.
func main() {
	port := flag.Int("port", 0, "listen port (0 = configured default)")
	dataDir := flag.String("data", "", "data directory (overrides config)")
	flag.Parse()

	logger, _ := zap.NewProduction()
	defer func() { _ = logger.Sync() }()
	logger.Info("starting",
		zap.String("version", version),
		zap.String("buildDate", buildDate),
	)

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}
	if *dataDir != "" {
		cfg.Data.Dir = *dataDir
	}

	st, err := store.Open(cfg.Data.Dir)
	if err != nil {
		logger.Fatal("open store", zap.Error(err))
	}

	pipeline := ledger.NewService(st, logger)
	srv := httpsync.New(st, pipeline, cfg.Sync, logger)

	// Context with OS signals
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	info, err := srv.Start(*port)
	if err != nil {
		logger.Fatal("start sync server", zap.Error(err))
	}
	logger.Info("pairing ready",
		zap.String("pin", info.Pin),
		zap.String("url", info.URL),
		zap.Int("expiresIn", info.ExpiresIn),
		zap.Int("autoCloseIn", info.AutoCloseIn),
	)

	select {
	case <-ctx.Done():
		// a watchdog firing between the signal and this call is fine
		if err := srv.Stop(); err != nil && !errors.Is(err, errs.ErrServerNotRunning) {
			logger.Error("stop sync server", zap.Error(err))
			os.Exit(1)
		}
	case <-srv.Done():
		// watchdog or serve failure already shut the server down
	}

	logger.Info("shutdown complete")
}
