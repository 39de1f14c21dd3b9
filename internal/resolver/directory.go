package resolver

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/stwalsh4118/minerals/internal/logger"
	"github.com/stwalsh4118/minerals/internal/models"
)

// DirectorySource resolves parties by scanning a directory of party
// files. Each *.json file is indexed under its search_name, or under its
// file name without extension when search_name is empty or the file does
// not decode.
type DirectorySource struct {
	dir string
	log *logger.Logger

	mu    sync.RWMutex
	index map[string]string
}

// NewDirectorySource scans dir and returns a source over its files.
// A missing directory is a configuration error.
func NewDirectorySource(dir string, log *logger.Logger) (*DirectorySource, error) {
	if log == nil {
		log = logger.Nop()
	}
	s := &DirectorySource{
		dir: dir,
		log: log.Component("directory_source"),
	}
	if err := s.Refresh(); err != nil {
		return nil, err
	}
	return s, nil
}

// Refresh rescans the directory. A file that cannot be decoded is indexed
// under its file name without extension; when two files claim the same
// name the first in lexical order wins.
func (s *DirectorySource) Refresh() error {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: party directory %s", models.ErrConfigMissing, s.dir)
		}
		return fmt.Errorf("failed to scan party directory %s: %w", s.dir, err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".json") {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	index := make(map[string]string, len(names))
	for _, fileName := range names {
		path := filepath.Join(s.dir, fileName)
		key := strings.TrimSuffix(fileName, filepath.Ext(fileName))
		record, err := readPartyFile(path)
		switch {
		case err == nil:
			if record.SearchName != "" {
				key = record.SearchName
			}
		case errors.Is(err, models.ErrMalformedInput):
			// Indexed under the file name so Lookup reports the decode
			// failure and the resolver's parse policy applies.
			s.log.Warn("Malformed party file", logger.Fields{
				"path":  path,
				"error": err.Error(),
			})
		default:
			s.log.Warn("Skipping unreadable party file", logger.Fields{
				"path":  path,
				"error": err.Error(),
			})
			continue
		}
		if existing, dup := index[key]; dup {
			s.log.Warn("Duplicate party name in directory", logger.Fields{
				"name":    key,
				"kept":    existing,
				"ignored": path,
			})
			continue
		}
		index[key] = path
	}

	s.mu.Lock()
	s.index = index
	s.mu.Unlock()

	s.log.Debug("Party directory indexed", logger.Fields{
		"dir":     s.dir,
		"parties": len(index),
	})
	return nil
}

// Names implements NameLister over the last scan.
func (s *DirectorySource) Names(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedKeys(s.index), nil
}

// Lookup implements PartySource. The file is re-read on every lookup so
// edits made after the last scan are seen.
func (s *DirectorySource) Lookup(ctx context.Context, name string) (*models.PartyRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	path, ok := s.index[name]
	s.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: no file in %s for %q", models.ErrPartyFileMissing, s.dir, name)
	}
	return readPartyFile(path)
}
