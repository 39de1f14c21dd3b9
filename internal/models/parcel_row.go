package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

// Known keys of a parcel summary row. Anything else is kept in Extra.
const (
	rowKeyParcel = "parcel"
	rowKeyDesc   = "desc"
	rowKeyType   = "type"
	rowKeyNRA    = "nra"
	rowKeyStatus = "status"
)

// KnownColumns returns the known row keys in display order.
func KnownColumns() []string {
	return []string{rowKeyParcel, rowKeyDesc, rowKeyType, rowKeyNRA, rowKeyStatus}
}

// NRA is a net-royalty-acres value as found in uploaded data.
// Only JSON numbers are valid; anything else decodes as an invalid zero
// value so a single bad cell never rejects an upload.
type NRA struct {
	Value float64
	Valid bool
	// Present records that the column existed, even if its value did not
	// parse.
	Present bool
}

// NewNRA returns a valid NRA value.
func NewNRA(v float64) NRA {
	return NRA{Value: v, Valid: true, Present: true}
}

// Float returns the value, or 0 when it is not a number.
func (n NRA) Float() float64 {
	if !n.Valid {
		return 0
	}
	return n.Value
}

// UnmarshalJSON implements json.Unmarshaler.
func (n *NRA) UnmarshalJSON(data []byte) error {
	*n = NRA{Present: true}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}

	// Strings, booleans, arrays and objects are not numbers.
	switch trimmed[0] {
	case '"', 't', 'f', '[', '{':
		return nil
	}

	var f float64
	if err := json.Unmarshal(trimmed, &f); err != nil {
		return nil
	}
	n.Value = f
	n.Valid = true
	return nil
}

// MarshalJSON implements json.Marshaler. Invalid values render as null.
func (n NRA) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(n.Value)
}

// ParcelSummaryRow is one row of the title-chain view.
type ParcelSummaryRow struct {
	Parcel string
	Desc   string
	Type   string
	Status string
	NRA    NRA

	// Extra holds columns other than the five known ones, keyed by name.
	Extra map[string]json.RawMessage
}

// UnmarshalJSON implements json.Unmarshaler. Non-string values of the
// text columns are kept in their JSON text form.
func (r *ParcelSummaryRow) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("parcel row must be a JSON object: %w", err)
	}
	if raw == nil {
		return fmt.Errorf("parcel row must be a JSON object, got null")
	}

	row := ParcelSummaryRow{}
	for key, value := range raw {
		switch key {
		case rowKeyParcel:
			row.Parcel = textValue(value)
		case rowKeyDesc:
			row.Desc = textValue(value)
		case rowKeyType:
			row.Type = textValue(value)
		case rowKeyStatus:
			row.Status = textValue(value)
		case rowKeyNRA:
			if err := row.NRA.UnmarshalJSON(value); err != nil {
				return err
			}
		default:
			if row.Extra == nil {
				row.Extra = make(map[string]json.RawMessage)
			}
			row.Extra[key] = value
		}
	}

	*r = row
	return nil
}

// MarshalJSON implements json.Marshaler. The nra column is written only
// when the row had one.
func (r ParcelSummaryRow) MarshalJSON() ([]byte, error) {
	out := make(map[string]interface{}, 5+len(r.Extra))
	for key, value := range r.Extra {
		out[key] = value
	}
	out[rowKeyParcel] = r.Parcel
	out[rowKeyDesc] = r.Desc
	out[rowKeyType] = r.Type
	out[rowKeyStatus] = r.Status
	if r.NRA.Present {
		out[rowKeyNRA] = r.NRA
	}
	return json.Marshal(out)
}

// ExtraKeys returns the names of the extra columns, sorted.
func (r ParcelSummaryRow) ExtraKeys() []string {
	keys := make([]string, 0, len(r.Extra))
	for key := range r.Extra {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// textValue returns a JSON string's contents, "" for null, and the raw
// JSON text for any other value.
func textValue(raw json.RawMessage) string {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return ""
	}
	var s string
	if err := json.Unmarshal(trimmed, &s); err == nil {
		return s
	}
	return string(trimmed)
}
