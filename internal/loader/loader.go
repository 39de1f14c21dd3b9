package loader

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/stwalsh4118/minerals/internal/logger"
	"github.com/stwalsh4118/minerals/internal/metrics"
	"github.com/stwalsh4118/minerals/internal/models"
	"github.com/stwalsh4118/minerals/internal/session"
)

const cacheName = "application"

// Loader reads the docket's application metadata file and caches the
// decoded value per session.
//
// A cached value is reused until the session's entry is invalidated, the
// entry expires, or the file's modification time or size no longer match
// what was recorded when it was read.
type Loader struct {
	path    string
	cache   *session.Cache[*loaded]
	log     *logger.Logger
	metrics *metrics.Metrics
}

type loaded struct {
	app     *models.ApplicationMetadata
	modTime time.Time
	size    int64
}

// New creates a Loader for the file at path. Session entries expire
// after ttl of inactivity.
func New(path string, ttl time.Duration, log *logger.Logger, m *metrics.Metrics) *Loader {
	if log == nil {
		log = logger.Nop()
	}
	return &Loader{
		path:    path,
		cache:   session.NewCache[*loaded](ttl),
		log:     log.Component("loader"),
		metrics: m,
	}
}

// Path returns the application file path.
func (l *Loader) Path() string {
	return l.path
}

// Load returns the application metadata for sessionID, reading the file
// on first use. It returns an error wrapping models.ErrConfigMissing
// when the file is absent and models.ErrMalformedInput when it is not a
// JSON object.
func (l *Loader) Load(ctx context.Context, sessionID string) (*models.ApplicationMetadata, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	info, statErr := os.Stat(l.path)

	if cached, ok := l.cache.Get(sessionID); ok {
		if statErr == nil && info.ModTime().Equal(cached.modTime) && info.Size() == cached.size {
			l.metrics.CacheLookup(cacheName, true)
			return cached.app, nil
		}
		l.log.Info("Application file changed, reloading", logger.Fields{
			"path":       l.path,
			"session_id": sessionID,
		})
		l.cache.Delete(sessionID)
	}
	l.metrics.CacheLookup(cacheName, false)

	if statErr != nil {
		return nil, l.fail(fileError(l.path, statErr))
	}

	app, err := ReadApplication(l.path)
	if err != nil {
		return nil, l.fail(err)
	}

	l.cache.Put(sessionID, &loaded{app: app, modTime: info.ModTime(), size: info.Size()})
	l.log.Debug("Application loaded", logger.Fields{
		"path":       l.path,
		"session_id": sessionID,
		"docket":     app.Docket,
		"parties":    len(app.Parties),
	})

	return app, nil
}

// Invalidate drops the cached value for one session.
func (l *Loader) Invalidate(sessionID string) {
	l.cache.Delete(sessionID)
}

// InvalidateAll drops every session's cached value.
func (l *Loader) InvalidateAll() {
	l.cache.Clear()
}

// Sweep removes expired session entries.
func (l *Loader) Sweep() int {
	return l.cache.Sweep()
}

func (l *Loader) fail(err error) error {
	l.log.Error("Failed to load application", err, logger.Fields{"path": l.path})
	return err
}

// ReadApplication reads and decodes an application metadata file without
// any caching.
func ReadApplication(path string) (*models.ApplicationMetadata, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fileError(path, err)
	}
	return DecodeApplication(data)
}

// DecodeApplication decodes application metadata from JSON. The document
// must be a JSON object.
func DecodeApplication(data []byte) (*models.ApplicationMetadata, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, fmt.Errorf("%w: application metadata must be a JSON object", models.ErrMalformedInput)
	}

	var app models.ApplicationMetadata
	if err := json.Unmarshal(trimmed, &app); err != nil {
		return nil, fmt.Errorf("%w: application metadata: %v", models.ErrMalformedInput, err)
	}

	if app.Formations == nil {
		app.Formations = []string{}
	}
	if app.Sections == nil {
		app.Sections = []string{}
	}
	if app.Parties == nil {
		app.Parties = []string{}
	}

	return &app, nil
}

func fileError(path string, err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %s", models.ErrConfigMissing, path)
	}
	return fmt.Errorf("failed to read %s: %w", path, err)
}
