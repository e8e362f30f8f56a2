package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"quran-irc-bot/internal/bootstrap"
	"quran-irc-bot/internal/config"
	"quran-irc-bot/internal/pkg/logger"
	"quran-irc-bot/internal/server"
	"quran-irc-bot/internal/tracer"
	"quran-irc-bot/pkg/database"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Connect to IRC and serve queries",
	RunE:  runBot,
}

func runBot(cmd *cobra.Command, args []string) error {
	// 1. Load Configuration
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return err
	}

	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.IsProduction())
	defer sysLogger.Sync()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Tracing
	shutdownTracer := tracer.InitTracer(ctx, cfg.Otel, sysLogger)
	defer shutdownTracer(context.Background())

	// 3. Initialize Database
	gormDB, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		return fmt.Errorf("unable to open database: %w", err)
	}

	// 4. Bootstrap Dependencies (Container); !quit cancels ctx.
	container, err := bootstrap.NewContainer(ctx, gormDB, cfg, sysLogger, stop)
	if err != nil {
		return err
	}
	defer container.Close()

	// 5. Start Background Services
	if err := container.ActivityConsumer.Consume(ctx); err != nil {
		return fmt.Errorf("failed to start activity consumer: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		err := container.IRC.Run(gctx)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		// Run returns nil after a quit; end the other services too.
		stop()
		return err
	})

	if cfg.App.StatusAddr != "" {
		srv := server.New(cfg, container)
		g.Go(srv.Run)
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
	}

	sysLogger.Info(logger.ModuleBootstrap, "Bot started", map[string]interface{}{
		"server": cfg.IRC.Server,
		"nick":   cfg.IRC.Nick,
	})

	err = g.Wait()

	container.Orchestrator.CancelAll()
	container.Orchestrator.Wait()

	select {
	case <-container.ActivityConsumer.Done():
	case <-time.After(shutdownTimeout):
		sysLogger.Warn(logger.ModuleBootstrap, "Activity consumer did not stop in time", nil)
	}

	sysLogger.Info(logger.ModuleBootstrap, "Bot stopped", nil)
	return err
}
