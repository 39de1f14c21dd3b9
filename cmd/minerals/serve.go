package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"github.com/stwalsh4118/minerals/internal/access"
	"github.com/stwalsh4118/minerals/internal/config"
	"github.com/stwalsh4118/minerals/internal/database"
	"github.com/stwalsh4118/minerals/internal/handlers"
	"github.com/stwalsh4118/minerals/internal/loader"
	"github.com/stwalsh4118/minerals/internal/logger"
	"github.com/stwalsh4118/minerals/internal/metrics"
)

const (
	shutdownTimeout = 30 * time.Second
	sweepInterval   = time.Minute
)

func serveCmd(logLevel *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*logLevel)
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			return serve(cfg)
		},
	}
}

func serve(cfg *config.Config) error {
	log := newLogger(cfg, os.Stdout)
	log.Info("Starting minerals API", logger.Fields{
		"version":      Version,
		"environment":  cfg.Server.Env,
		"port":         cfg.Server.Port,
		"party_source": cfg.Data.PartySource,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	a, err := newApp(ctx, cfg, log, reg)
	if err != nil {
		return err
	}
	defer a.Close()

	if cfg.Data.WatchFiles {
		if err := a.watch(ctx); err != nil {
			return err
		}
	}
	go a.sweep(ctx)

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// A nil *database.Database must not reach the handler as a non-nil Pinger.
	var pinger database.Pinger
	if cfg.UsesDatabase() {
		pinger = a.db
		metrics.RegisterPool(reg, a.db.Stats)
	}

	secure := cfg.Server.Env == "production"
	checker := access.NewChecker(cfg.Access.Tokens, log, a.metrics)

	router := handlers.NewRouter(handlers.RouterConfig{
		Logger:       log,
		CORSOrigins:  cfg.CORS.Origins,
		SessionTTL:   cfg.Session.TTL,
		SecureCookie: secure,
		Health:       handlers.NewHealthHandler(pinger, a.loader.Path(), cfg.Server.Env),
		Docket:       handlers.NewDocketHandler(a.docket),
		TitleChain:   handlers.NewTitleChainHandler(a.titleChain),
		Access:       handlers.NewAccessHandler(checker, a.docket, secure),
		Checker:      checker,
		Metrics:      a.metrics,
		Gatherer:     reg,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info("Server listening", logger.Fields{
			"port": cfg.Server.Port,
			"addr": srv.Addr,
		})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server failed to start: %w", err)
		}
	case <-ctx.Done():
	}

	log.Info("Shutting down server...", nil)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", err, logger.Fields{
			"timeout": shutdownTimeout.String(),
		})
	}

	log.Info("Server exited", nil)
	return nil
}

// watch invalidates every session's cache when a data file changes.
func (a *app) watch(ctx context.Context) error {
	w, err := loader.NewWatcher(a.log)
	if err != nil {
		return fmt.Errorf("starting file watcher: %w", err)
	}

	if err := w.AddFile(a.loader.Path()); err != nil {
		_ = w.Close()
		return err
	}
	switch a.cfg.Data.PartySource {
	case config.PartySourceManifest:
		err = w.AddFile(a.cfg.Data.PartyManifest)
	case config.PartySourceDirectory:
		err = w.AddDir(a.cfg.Data.PartyDir)
	}
	if err != nil {
		_ = w.Close()
		return err
	}

	go func() {
		defer w.Close()
		_ = w.Run(ctx, func(path string) {
			if err := a.docket.InvalidateAll(); err != nil {
				a.log.Warn("Reload after file change failed", logger.Fields{
					"path":  path,
					"error": err.Error(),
				})
			}
		})
	}()

	a.log.Info("Watching data files", logger.Fields{"dir": a.cfg.Data.Dir})
	return nil
}

// sweep periodically evicts idle sessions from the caches.
func (a *app) sweep(ctx context.Context) {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := a.docket.Sweep(); n > 0 {
				a.log.Debug("Evicted idle sessions", logger.Fields{"entries": n})
			}
		}
	}
}
