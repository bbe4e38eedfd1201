package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"note-sync/internal/config"
	"note-sync/internal/logger"

	"github.com/grafana/pyroscope-go"
	_ "go.uber.org/automaxprocs"
	"golang.org/x/sync/errgroup"
)

const registrySweepInterval = time.Minute

func main() {
	ctx, stop := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	bootstrapLog := log.New(os.Stderr, "bootstrap: ", log.LstdFlags)

	cfg, err := config.Load()
	if err != nil {
		bootstrapLog.Printf("config load failed: %v", err)
		os.Exit(1)
	}

	logg, err := logger.Init(cfg)
	if err != nil {
		bootstrapLog.Printf("logger init failed: %v", err)
		os.Exit(1)
	}

	if cfg.PyroscopeServerAddress != "" {
		profiler, err := pyroscope.Start(pyroscope.Config{
			ApplicationName: "note-sync",
			ServerAddress:   cfg.PyroscopeServerAddress,
			ProfileTypes: []pyroscope.ProfileType{
				pyroscope.ProfileCPU,
				pyroscope.ProfileAllocObjects,
				pyroscope.ProfileInuseSpace,
				pyroscope.ProfileGoroutines,
			},
		})
		if err != nil {
			logg.Warn("pyroscope disabled", "err", err)
		} else {
			defer func() { _ = profiler.Stop() }()
		}
	}

	st, err := openStores(ctx, cfg, logg)
	if err != nil {
		logg.Error("store init", "err", err)
		os.Exit(1)
	}

	logg.Info("starting NoteSync", "port", cfg.AppPort, "store", cfg.StoreDriver)

	srv := setupRouter(cfg, st)
	portStr := fmt.Sprintf(":%d", cfg.AppPort)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		err := srv.app.Listen(portStr)
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	})

	g.Go(func() error {
		srv.registry.Run(ctx, registrySweepInterval)
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 25*time.Second)
		defer cancel()

		if err := srv.app.ShutdownWithContext(shutdownCtx); err != nil {
			return err
		}
		return st.close(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error("fatal", "err", err)
		os.Exit(1)
	}
	logg.Info("graceful shutdown complete")
}
