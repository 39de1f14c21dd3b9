package models

import (
	"encoding/json"
	"fmt"
)

// Placeholder values used when a party has no backing record.
const (
	PlaceholderStatus    = "Pending"
	PlaceholderNarrative = "File not found."
)

// Parcel is a single tract a party holds an interest in.
// Values are display data and are not validated against unit totals.
type Parcel struct {
	ParcelID         string  `json:"parcel_id"`
	LegalDescription string  `json:"legal_description"`
	Grantor          *string `json:"grantor,omitempty"`
	NetMineralAcres  float64 `json:"net_mineral_acres"`
}

// PartyRecord is the holdings summary for one party in a docket.
type PartyRecord struct {
	SearchName                    string   `json:"search_name"`
	StatusInUnit                  string   `json:"status_in_unit"`
	Narrative                     string   `json:"narrative"`
	Addresses                     []string `json:"addresses"`
	ConsolidatedParcels           []Parcel `json:"consolidated_parcels"`
	ConsolidatedParcelsOutside    []Parcel `json:"consolidated_parcels_outside_area"`
	TotalConfirmedNetMineralAcres float64  `json:"total_confirmed_net_mineral_acres"`

	// Placeholder is set when the record was synthesized because no
	// party file could be found. It is never read from source files.
	Placeholder bool `json:"-"`
}

// NewPlaceholderParty returns the record substituted for a party whose
// file is absent. Sequences are empty rather than nil so every consumer
// sees the same shape as a fully populated record.
func NewPlaceholderParty(name string) *PartyRecord {
	return &PartyRecord{
		SearchName:                    name,
		StatusInUnit:                  PlaceholderStatus,
		Narrative:                     PlaceholderNarrative,
		Addresses:                     []string{},
		ConsolidatedParcels:           []Parcel{},
		ConsolidatedParcelsOutside:    []Parcel{},
		TotalConfirmedNetMineralAcres: 0,
		Placeholder:                   true,
	}
}

// Normalize replaces nil sequences with empty ones.
func (p *PartyRecord) Normalize() {
	if p.Addresses == nil {
		p.Addresses = []string{}
	}
	if p.ConsolidatedParcels == nil {
		p.ConsolidatedParcels = []Parcel{}
	}
	if p.ConsolidatedParcelsOutside == nil {
		p.ConsolidatedParcelsOutside = []Parcel{}
	}
}

// Scan implements sql.Scanner so a record can be read straight out of a
// jsonb column.
func (p *PartyRecord) Scan(value interface{}) error {
	if value == nil {
		return fmt.Errorf("%w: party record is null", ErrMalformedInput)
	}

	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("failed to scan PartyRecord: expected []byte, got %T", value)
	}

	var record PartyRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedInput, err)
	}
	record.Normalize()
	*p = record

	return nil
}

// ResolvedParties maps party display names to their records while
// remembering the order in which the names were first resolved.
type ResolvedParties struct {
	order   []string
	records map[string]*PartyRecord
}

// NewResolvedParties creates an empty mapping sized for n names.
func NewResolvedParties(n int) *ResolvedParties {
	return &ResolvedParties{
		order:   make([]string, 0, n),
		records: make(map[string]*PartyRecord, n),
	}
}

// Set stores a record. Re-setting an existing name replaces the record
// but keeps its original position.
func (r *ResolvedParties) Set(name string, record *PartyRecord) {
	if _, exists := r.records[name]; !exists {
		r.order = append(r.order, name)
	}
	r.records[name] = record
}

// Get returns the record for name.
func (r *ResolvedParties) Get(name string) (*PartyRecord, bool) {
	record, ok := r.records[name]
	return record, ok
}

// Names returns the resolved names in insertion order.
func (r *ResolvedParties) Names() []string {
	names := make([]string, len(r.order))
	copy(names, r.order)
	return names
}

// Len returns the number of distinct names.
func (r *ResolvedParties) Len() int {
	return len(r.order)
}

// Each calls fn for every record in insertion order.
func (r *ResolvedParties) Each(fn func(name string, record *PartyRecord)) {
	for _, name := range r.order {
		fn(name, r.records[name])
	}
}
