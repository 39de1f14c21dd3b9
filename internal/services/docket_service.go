package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/stwalsh4118/minerals/internal/logger"
	"github.com/stwalsh4118/minerals/internal/metrics"
	"github.com/stwalsh4118/minerals/internal/models"
	"github.com/stwalsh4118/minerals/internal/session"
	"github.com/stwalsh4118/minerals/internal/viewmodel"
)

const partiesCacheName = "parties"

// ErrPartyNotInDocket is returned when a party name is not listed in the
// application.
var ErrPartyNotInDocket = errors.New("party not in docket")

// ApplicationLoader loads the application metadata for a session.
type ApplicationLoader interface {
	Load(ctx context.Context, sessionID string) (*models.ApplicationMetadata, error)
	Invalidate(sessionID string)
	InvalidateAll()
	Sweep() int
}

// PartyResolver resolves party names to records.
type PartyResolver interface {
	Resolve(ctx context.Context, names []string) (*models.ResolvedParties, error)
}

// DocketService defines the docket dashboard operations.
type DocketService interface {
	// GetDocket returns the full docket view for a session.
	GetDocket(ctx context.Context, sessionID string) (*viewmodel.DocketView, error)

	// ListParties returns party summaries in application order.
	ListParties(ctx context.Context, sessionID string) ([]viewmodel.PartySummary, error)

	// GetParty returns one party's detail.
	// Returns ErrPartyNotInDocket if the application does not list name.
	GetParty(ctx context.Context, sessionID, name string) (*viewmodel.PartyDetail, error)

	// Reload drops everything cached for a session so the next request
	// reads the source files again.
	Reload(ctx context.Context, sessionID string) error

	// Forget drops a finished session's cached data.
	Forget(sessionID string)

	// InvalidateAll drops every session's cached data.
	InvalidateAll() error

	// Sweep evicts expired session entries and returns how many went.
	Sweep() int
}

// DocketOptions configures a DocketService.
type DocketOptions struct {
	// SessionTTL bounds how long an idle session keeps its resolved
	// parties. Zero keeps them until invalidated.
	SessionTTL time.Duration

	// Refresh re-indexes the party source before caches are dropped.
	// It may be nil.
	Refresh func() error

	Logger  *logger.Logger
	Metrics *metrics.Metrics
}

// resolvedEntry pins resolved parties to the application value they were
// resolved for, so a reloaded application never reuses stale parties.
type resolvedEntry struct {
	app     *models.ApplicationMetadata
	parties *models.ResolvedParties
}

type docketService struct {
	loader   ApplicationLoader
	resolver PartyResolver
	parties  *session.Cache[*resolvedEntry]
	refresh  func() error
	log      *logger.Logger
	metrics  *metrics.Metrics
}

// NewDocketService creates a new instance of DocketService.
func NewDocketService(loader ApplicationLoader, resolver PartyResolver, opts DocketOptions) DocketService {
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}
	return &docketService{
		loader:   loader,
		resolver: resolver,
		parties:  session.NewCache[*resolvedEntry](opts.SessionTTL),
		refresh:  opts.Refresh,
		log:      log.Component("docket"),
		metrics:  opts.Metrics,
	}
}

// load returns the application and its resolved parties for a session.
func (s *docketService) load(ctx context.Context, sessionID string) (*models.ApplicationMetadata, *models.ResolvedParties, error) {
	app, err := s.loader.Load(ctx, sessionID)
	if err != nil {
		return nil, nil, fmt.Errorf("loading application: %w", err)
	}

	if entry, ok := s.parties.Get(sessionID); ok && entry.app == app {
		s.metrics.CacheLookup(partiesCacheName, true)
		return app, entry.parties, nil
	}
	s.metrics.CacheLookup(partiesCacheName, false)

	parties, err := s.resolver.Resolve(ctx, app.Parties)
	if err != nil {
		s.log.Error("Failed to resolve parties", err, logger.Fields{
			"session_id": sessionID,
			"docket":     app.Docket,
		})
		return nil, nil, err
	}

	s.parties.Put(sessionID, &resolvedEntry{app: app, parties: parties})
	s.log.Debug("Resolved parties", logger.Fields{
		"session_id": sessionID,
		"docket":     app.Docket,
		"count":      parties.Len(),
	})

	return app, parties, nil
}

// GetDocket builds the docket view for a session.
func (s *docketService) GetDocket(ctx context.Context, sessionID string) (*viewmodel.DocketView, error) {
	app, parties, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	view := viewmodel.BuildDocket(app, parties)
	return &view, nil
}

// ListParties returns the party summaries for a session.
func (s *docketService) ListParties(ctx context.Context, sessionID string) ([]viewmodel.PartySummary, error) {
	_, parties, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	summaries := make([]viewmodel.PartySummary, 0, parties.Len())
	parties.Each(func(name string, record *models.PartyRecord) {
		summaries = append(summaries, viewmodel.Summarize(name, record))
	})
	return summaries, nil
}

// GetParty returns the detail view of one party.
func (s *docketService) GetParty(ctx context.Context, sessionID, name string) (*viewmodel.PartyDetail, error) {
	_, parties, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	record, ok := parties.Get(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrPartyNotInDocket, name)
	}

	detail := viewmodel.Detail(name, record)
	return &detail, nil
}

// Reload drops the session's cached application and parties.
func (s *docketService) Reload(ctx context.Context, sessionID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.runRefresh(); err != nil {
		return err
	}

	s.loader.Invalidate(sessionID)
	s.parties.Delete(sessionID)
	s.log.Info("Session data reloaded", logger.Fields{"session_id": sessionID})
	return nil
}

// Forget drops a session's cache entries without touching the source.
func (s *docketService) Forget(sessionID string) {
	s.loader.Invalidate(sessionID)
	s.parties.Delete(sessionID)
}

// InvalidateAll drops cached data for every session.
func (s *docketService) InvalidateAll() error {
	refreshErr := s.runRefresh()

	s.loader.InvalidateAll()
	s.parties.Clear()
	s.log.Info("All session data invalidated", nil)
	return refreshErr
}

// Sweep evicts expired entries from both caches.
func (s *docketService) Sweep() int {
	return s.loader.Sweep() + s.parties.Sweep()
}

func (s *docketService) runRefresh() error {
	if s.refresh == nil {
		return nil
	}
	if err := s.refresh(); err != nil {
		return fmt.Errorf("refreshing party source: %w", err)
	}
	return nil
}
