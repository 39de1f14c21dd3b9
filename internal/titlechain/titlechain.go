// Package titlechain decodes uploaded parcel summary data.
package titlechain

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/stwalsh4118/minerals/internal/models"
)

// DefaultMaxUploadBytes caps an upload when no limit is configured.
const DefaultMaxUploadBytes int64 = 10 << 20

// ErrUploadTooLarge is returned when an upload exceeds the size limit.
var ErrUploadTooLarge = errors.New("upload exceeds size limit")

type wrapped struct {
	Parcels *json.RawMessage `json:"parcels"`
}

// DecodeRows parses an upload that is either a JSON array of row objects
// or an object holding that array under "parcels".
func DecodeRows(data []byte) ([]models.ParcelSummaryRow, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("%w: upload is empty", models.ErrMalformedInput)
	}

	switch trimmed[0] {
	case '[':
		return decodeArray(trimmed)
	case '{':
		var w wrapped
		if err := json.Unmarshal(trimmed, &w); err != nil {
			return nil, fmt.Errorf("%w: %v", models.ErrMalformedInput, err)
		}
		if w.Parcels == nil {
			return nil, fmt.Errorf("%w: object has no \"parcels\" key", models.ErrMalformedInput)
		}
		parcels := bytes.TrimSpace(*w.Parcels)
		if len(parcels) == 0 || parcels[0] != '[' {
			return nil, fmt.Errorf("%w: \"parcels\" must be an array", models.ErrMalformedInput)
		}
		return decodeArray(parcels)
	default:
		return nil, fmt.Errorf("%w: expected a JSON array or an object with \"parcels\"", models.ErrMalformedInput)
	}
}

func decodeArray(data []byte) ([]models.ParcelSummaryRow, error) {
	var rows []models.ParcelSummaryRow
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrMalformedInput, err)
	}
	if rows == nil {
		rows = []models.ParcelSummaryRow{}
	}
	return rows, nil
}

// ReadRows reads at most limit bytes from r and decodes them.
// A non-positive limit uses DefaultMaxUploadBytes.
func ReadRows(r io.Reader, limit int64) ([]models.ParcelSummaryRow, error) {
	if limit <= 0 {
		limit = DefaultMaxUploadBytes
	}

	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, fmt.Errorf("reading upload: %w", err)
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("%w: limit is %d bytes", ErrUploadTooLarge, limit)
	}

	return DecodeRows(data)
}

// ExampleRows returns the built-in demonstration dataset shown when no
// file has been uploaded.
func ExampleRows() []models.ParcelSummaryRow {
	return []models.ParcelSummaryRow{
		{
			Parcel: "Example-Sec25",
			Desc:   "S/2 NE/4",
			Type:   "ROYALTY (ORRI)",
			NRA:    models.NewNRA(16.0),
			Status: "Active",
		},
		{
			Parcel: "Example-Sec25",
			Desc:   "Deep Rights",
			Type:   "WORKING INT",
			NRA:    models.NewNRA(0.0),
			Status: "Excluded",
		},
	}
}
