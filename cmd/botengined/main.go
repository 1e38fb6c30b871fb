// Command botengined is the control-plane daemon: it owns the store, the
// Supervisor, the Event Bus, and the HTTP surface that exposes them.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/shardhost/botengine/internal/config"
	"github.com/shardhost/botengine/internal/eventbus"
	"github.com/shardhost/botengine/internal/facade"
	"github.com/shardhost/botengine/internal/health"
	"github.com/shardhost/botengine/internal/logger"
	"github.com/shardhost/botengine/internal/metrics"
	"github.com/shardhost/botengine/internal/store"
	"github.com/shardhost/botengine/internal/store/memstore"
	"github.com/shardhost/botengine/internal/store/sqlstore"
	"github.com/shardhost/botengine/internal/supervisor"
	"github.com/shardhost/botengine/internal/transport"
	"github.com/shardhost/botengine/internal/workspace"
)

func main() {
	app := &cli.App{
		Name:  "botengined",
		Usage: "runs the bot-hosting control plane",
		Flags: config.Flags(),
		Action: func(c *cli.Context) error {
			return run(c.Context, config.Load(c))
		},
	}
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func openStore(cfg config.Config) (store.Store, func() error, error) {
	if cfg.StoreDriver == "memory" {
		return memstore.New(), func() error { return nil }, nil
	}
	st, err := sqlstore.Open(cfg.StoreDSN)
	if err != nil {
		return nil, nil, fmt.Errorf("open sqlite store: %w", err)
	}
	return st, st.Close, nil
}

func run(ctx context.Context, cfg config.Config) error {
	log := logger.NewConsoleLogger(logger.NewConsolePrinter(os.Stdout), os.Exit)

	st, closeStore, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	ws := workspace.New(cfg.WorkspaceRoot)
	bus := eventbus.New(log)
	mcol := metrics.NewCollector()
	sup := supervisor.New(cfg.ToSupervisorConfig(), st, ws, bus, log).WithMetrics(mcol)
	fc := facade.New(st, sup, ws, bus, mcol, log) // Facade is the only caller of sup from here on
	hcheck := health.NewChecker()

	srv := transport.New(bus, hcheck, mcol, fc, log)
	httpServer := &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      srv.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 0, // long-lived websocket connections
		IdleTimeout:  60 * time.Second,
	}

	runCtx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	go func() {
		log.Info("[botengined] listening on %s", cfg.ListenAddr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("[botengined] http server error: %v", err)
		}
	}()

	<-runCtx.Done()
	log.Info("[botengined] shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	return httpServer.Shutdown(shutdownCtx)
}
