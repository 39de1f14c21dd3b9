package models

// ApplicationMetadata describes a single regulatory docket: who applied,
// which formations and sections the spacing unit covers, and the display
// names of every party with an interest in the unit.
// It is immutable once loaded.
type ApplicationMetadata struct {
	Docket       string   `json:"docket"`
	Applicant    string   `json:"applicant"`
	LocationDesc string   `json:"location_desc"`
	TotalAcres   *float64 `json:"total_acres,omitempty"`
	Formations   []string `json:"formations"`
	Sections     []string `json:"sections"`
	Parties      []string `json:"parties"`
}

// UnitAcres returns the unit's total acreage, or 0 when the application
// does not state one.
func (a *ApplicationMetadata) UnitAcres() float64 {
	if a == nil || a.TotalAcres == nil {
		return 0
	}
	return *a.TotalAcres
}
