package resolver

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/stwalsh4118/minerals/internal/models"
)

// ManifestEntry maps one party display name to its holdings file.
type ManifestEntry struct {
	Name string `yaml:"name" json:"name" validate:"required"`
	Path string `yaml:"path" json:"path" validate:"required"`
}

// Manifest is the configured list of party files.
type Manifest struct {
	Parties []ManifestEntry `yaml:"parties" json:"parties" validate:"unique=Name,dive"`
}

var manifestValidator = validator.New()

// LoadManifest reads a manifest from a YAML or JSON file. The file holds
// either a list of entries or an object with a "parties" list. Relative
// entry paths are resolved against the manifest's directory.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: party manifest %s", models.ErrConfigMissing, path)
		}
		return nil, fmt.Errorf("failed to read party manifest %s: %w", path, err)
	}

	manifest, err := ParseManifest(data)
	if err != nil {
		return nil, fmt.Errorf("party manifest %s: %w", path, err)
	}

	base := filepath.Dir(path)
	for i := range manifest.Parties {
		if !filepath.IsAbs(manifest.Parties[i].Path) {
			manifest.Parties[i].Path = filepath.Join(base, manifest.Parties[i].Path)
		}
	}

	return manifest, nil
}

// ParseManifest decodes and validates manifest content. JSON is accepted
// because it is valid YAML.
func ParseManifest(data []byte) (*Manifest, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrMalformedInput, err)
	}

	manifest := &Manifest{}
	if len(node.Content) > 0 {
		root := node.Content[0]
		var err error
		switch root.Kind {
		case yaml.SequenceNode:
			err = root.Decode(&manifest.Parties)
		case yaml.MappingNode:
			err = root.Decode(manifest)
		default:
			err = fmt.Errorf("expected a list of parties or a mapping with a parties key")
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", models.ErrMalformedInput, err)
		}
	}

	if err := manifestValidator.Struct(manifest); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrMalformedInput, err)
	}

	return manifest, nil
}

// ManifestSource resolves parties through a manifest table.
type ManifestSource struct {
	path string

	mu    sync.RWMutex
	paths map[string]string
}

// NewManifestSource indexes a manifest by party name.
func NewManifestSource(m *Manifest) *ManifestSource {
	s := &ManifestSource{}
	s.index(m)
	return s
}

// OpenManifestSource loads the manifest at path. Refresh re-reads it.
func OpenManifestSource(path string) (*ManifestSource, error) {
	m, err := LoadManifest(path)
	if err != nil {
		return nil, err
	}
	s := NewManifestSource(m)
	s.path = path
	return s, nil
}

// Refresh re-reads the manifest file. On error the previous table is
// kept. Sources built from an in-memory manifest have nothing to refresh.
func (s *ManifestSource) Refresh() error {
	if s.path == "" {
		return nil
	}
	m, err := LoadManifest(s.path)
	if err != nil {
		return err
	}
	s.index(m)
	return nil
}

func (s *ManifestSource) index(m *Manifest) {
	paths := make(map[string]string, len(m.Parties))
	for _, entry := range m.Parties {
		paths[entry.Name] = entry.Path
	}
	s.mu.Lock()
	s.paths = paths
	s.mu.Unlock()
}

// Names implements NameLister.
func (s *ManifestSource) Names(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedKeys(s.paths), nil
}

// Lookup implements PartySource. Names are matched exactly.
func (s *ManifestSource) Lookup(ctx context.Context, name string) (*models.PartyRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	path, ok := s.paths[name]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: no manifest entry for %q", models.ErrPartyFileMissing, name)
	}
	return readPartyFile(path)
}
