package resolver

import (
	"context"
	"errors"
	"fmt"

	"github.com/stwalsh4118/minerals/internal/logger"
	"github.com/stwalsh4118/minerals/internal/metrics"
	"github.com/stwalsh4118/minerals/internal/models"
)

// Lookup outcomes reported to metrics.
const (
	OutcomeFound       = "found"
	OutcomePlaceholder = "placeholder"
	OutcomeMalformed   = "malformed"
)

// Options configures a Resolver.
type Options struct {
	// PlaceholderOnMalformed substitutes the placeholder record when a
	// party file exists but cannot be decoded. When false the decode
	// error fails the whole resolution.
	PlaceholderOnMalformed bool

	Logger  *logger.Logger
	Metrics *metrics.Metrics
}

// Resolver turns the party names of an application into party records.
type Resolver struct {
	source                 PartySource
	placeholderOnMalformed bool
	log                    *logger.Logger
	metrics                *metrics.Metrics
}

// New creates a Resolver over source.
func New(source PartySource, opts Options) *Resolver {
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}
	return &Resolver{
		source:                 source,
		placeholderOnMalformed: opts.PlaceholderOnMalformed,
		log:                    log.Component("resolver"),
		metrics:                opts.Metrics,
	}
}

// Resolve returns one record per distinct name, in the order the names
// first appear. Names without a record get a placeholder. Any source
// failure other than a missing record, and a malformed record unless the
// resolver was configured to tolerate it, aborts the resolution.
func (r *Resolver) Resolve(ctx context.Context, names []string) (*models.ResolvedParties, error) {
	resolved := models.NewResolvedParties(len(names))

	for _, name := range names {
		if _, done := resolved.Get(name); done {
			continue
		}

		record, err := r.source.Lookup(ctx, name)
		switch {
		case err == nil:
			r.metrics.PartyLookup(OutcomeFound)
			resolved.Set(name, record)

		case errors.Is(err, models.ErrPartyFileMissing):
			r.metrics.PartyLookup(OutcomePlaceholder)
			r.log.Debug("No party file, using placeholder", logger.Fields{
				"party":  name,
				"reason": err.Error(),
			})
			resolved.Set(name, models.NewPlaceholderParty(name))

		case errors.Is(err, models.ErrMalformedInput) && r.placeholderOnMalformed:
			r.metrics.PartyLookup(OutcomeMalformed)
			r.log.Warn("Malformed party file, using placeholder", logger.Fields{
				"party": name,
				"error": err.Error(),
			})
			resolved.Set(name, models.NewPlaceholderParty(name))

		default:
			if errors.Is(err, models.ErrMalformedInput) {
				r.metrics.PartyLookup(OutcomeMalformed)
			}
			r.log.Error("Failed to resolve party", err, logger.Fields{"party": name})
			return nil, fmt.Errorf("resolving party %q: %w", name, err)
		}
	}

	return resolved, nil
}
