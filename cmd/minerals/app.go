package main

import (
	"context"
	"fmt"
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stwalsh4118/minerals/internal/config"
	"github.com/stwalsh4118/minerals/internal/database"
	"github.com/stwalsh4118/minerals/internal/loader"
	"github.com/stwalsh4118/minerals/internal/logger"
	"github.com/stwalsh4118/minerals/internal/metrics"
	"github.com/stwalsh4118/minerals/internal/repository"
	"github.com/stwalsh4118/minerals/internal/resolver"
	"github.com/stwalsh4118/minerals/internal/services"
)

// app holds the components shared by every command.
type app struct {
	cfg     *config.Config
	log     *logger.Logger
	metrics *metrics.Metrics

	// db is nil unless parties are read from Postgres.
	db     *database.Database
	source resolver.PartySource
	loader *loader.Loader

	docket     services.DocketService
	titleChain services.TitleChainService
}

// loadConfig reads the environment and applies the --log-level flag.
func loadConfig(logLevel string) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if logLevel != "" {
		cfg.Server.LogLevel = logLevel
	}
	return cfg, nil
}

func newLogger(cfg *config.Config, out io.Writer) *logger.Logger {
	return logger.NewWithOptions(logger.Options{
		Env:    cfg.Server.Env,
		Level:  cfg.Server.LogLevel,
		Output: out,
	})
}

// newApp wires loader, party source, resolver and services. reg may be
// nil, in which case nothing is measured.
func newApp(ctx context.Context, cfg *config.Config, log *logger.Logger, reg prometheus.Registerer) (*app, error) {
	a := &app{cfg: cfg, log: log}
	if reg != nil {
		a.metrics = metrics.New(reg)
	}

	source, refresh, err := a.openPartySource(ctx)
	if err != nil {
		return nil, err
	}
	a.source = source

	a.loader = loader.New(cfg.Data.ApplicationFile, cfg.Session.TTL, log, a.metrics)

	res := resolver.New(source, resolver.Options{
		PlaceholderOnMalformed: cfg.Data.ParseFailure == config.ParseFailurePlaceholder,
		Logger:                 log,
		Metrics:                a.metrics,
	})

	a.docket = services.NewDocketService(a.loader, res, services.DocketOptions{
		SessionTTL: cfg.Session.TTL,
		Refresh:    refresh,
		Logger:     log,
		Metrics:    a.metrics,
	})
	a.titleChain = services.NewTitleChainService(cfg.Server.MaxUploadBytes, log, a.metrics)

	return a, nil
}

// openPartySource builds the configured party source and the function
// that re-indexes it, if it has one.
func (a *app) openPartySource(ctx context.Context) (resolver.PartySource, func() error, error) {
	if a.cfg.UsesDatabase() {
		db, err := database.NewPostgresPool(ctx, a.cfg.Database)
		if err != nil {
			return nil, nil, fmt.Errorf("connecting to database: %w", err)
		}
		a.db = db
		a.log.Info("Database connection established", logger.Fields{
			"host":     a.cfg.Database.Host,
			"port":     a.cfg.Database.Port,
			"database": a.cfg.Database.Name,
			"pool_min": a.cfg.Database.PoolMin,
			"pool_max": a.cfg.Database.PoolMax,
		})
		return resolver.NewRepositorySource(repository.NewPartyRepository(db)), nil, nil
	}

	if a.cfg.Data.PartySource == config.PartySourceDirectory {
		source, err := resolver.NewDirectorySource(a.cfg.Data.PartyDir, a.log)
		if err != nil {
			return nil, nil, fmt.Errorf("opening party directory: %w", err)
		}
		return source, source.Refresh, nil
	}

	source, err := resolver.OpenManifestSource(a.cfg.Data.PartyManifest)
	if err != nil {
		return nil, nil, fmt.Errorf("opening party manifest: %w", err)
	}
	return source, source.Refresh, nil
}

// Close releases the database pool, if any.
func (a *app) Close() {
	a.db.Close()
}
