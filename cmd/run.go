package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"wagerledger/cmd/debug"
	"wagerledger/infrastructure"
	"wagerledger/infrastructure/observability"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Run starts the ledger service and blocks until ctx is cancelled
func Run(ctx context.Context) error {
	log.Info("Starting wager ledger...")

	app, err := NewApp(ctx)
	if err != nil {
		return err
	}
	defer app.Close()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	if err := infrastructure.RegisterPoolMetrics(registry, app.DB.Pool); err != nil {
		return err
	}

	healthServer := infrastructure.NewHealthServer(app.Config.HealthPort, registry, app.HealthChecks())

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return healthServer.Run(gctx)
	})

	g.Go(func() error {
		stop := app.StartBackground(gctx)
		<-gctx.Done()
		stop()
		return nil
	})

	log.WithField("environment", app.Config.Environment).Info("Wager ledger is running")

	err = g.Wait()

	log.Info("Shutting down wager ledger...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if shutdownErr := observability.ShutdownGlobalMetrics(shutdownCtx); shutdownErr != nil {
		log.WithError(shutdownErr).Error("Error shutting down metrics")
	}

	if err != nil {
		return fmt.Errorf("service stopped: %w", err)
	}
	log.Info("Shutdown complete")
	return nil
}

// RunDebug opens the operator shell against the configured backends
func RunDebug(ctx context.Context) error {
	app, err := NewApp(ctx)
	if err != nil {
		return err
	}
	defer app.Close()

	stop := app.StartBackground(ctx)
	defer stop()

	var operatorID int64
	if len(app.Config.AdminIDs) > 0 {
		operatorID = app.Config.AdminIDs[0]
	} else {
		log.Warn("ADMIN_IDS not set, adjust-balance will be rejected")
	}

	return debug.NewShell(app.Coordinator, operatorID, os.Stdin, os.Stdout).Run(ctx)
}
