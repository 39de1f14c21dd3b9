package resolver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"

	"github.com/stwalsh4118/minerals/internal/models"
)

// PartySource finds the holdings record for a party display name.
//
// Lookup returns an error wrapping models.ErrPartyFileMissing when the
// source has no record for name, and one wrapping models.ErrMalformedInput
// when a record exists but cannot be decoded. Any other error is a
// failure of the source itself.
type PartySource interface {
	Lookup(ctx context.Context, name string) (*models.PartyRecord, error)
}

// NameLister is implemented by sources that can enumerate the parties
// they hold. Names are returned sorted.
type NameLister interface {
	Names(ctx context.Context) ([]string, error)
}

// DecodeParty decodes a party record from JSON. The document must be a
// JSON object.
func DecodeParty(data []byte) (*models.PartyRecord, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, fmt.Errorf("%w: party record must be a JSON object", models.ErrMalformedInput)
	}

	var record models.PartyRecord
	if err := json.Unmarshal(trimmed, &record); err != nil {
		return nil, fmt.Errorf("%w: party record: %v", models.ErrMalformedInput, err)
	}
	record.Normalize()

	return &record, nil
}

// readPartyFile reads and decodes one party file, mapping a missing file
// to models.ErrPartyFileMissing.
func readPartyFile(path string) (*models.PartyRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", models.ErrPartyFileMissing, path)
		}
		return nil, fmt.Errorf("failed to read party file %s: %w", path, err)
	}

	record, err := DecodeParty(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return record, nil
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
