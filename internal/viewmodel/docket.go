package viewmodel

import (
	"github.com/stwalsh4118/minerals/internal/models"
)

// DocketHeader is the application summary shown above the party list.
type DocketHeader struct {
	Docket       string   `json:"docket"`
	Applicant    string   `json:"applicant"`
	LocationDesc string   `json:"location_desc"`
	TotalAcres   float64  `json:"total_acres"`
	UnitAcres    string   `json:"unit_acres"`
	Formations   []string `json:"formations"`
	Sections     []string `json:"sections"`
}

// PartySummary is one line of the docket's party list.
type PartySummary struct {
	Name               string  `json:"name"`
	Status             string  `json:"status"`
	NetMineralAcres    float64 `json:"net_mineral_acres"`
	ParcelsInUnit      int     `json:"parcels_in_unit"`
	ParcelsOutsideUnit int     `json:"parcels_outside_unit"`
	Placeholder        bool    `json:"placeholder"`
}

// PartyDetail is the full view of one party.
type PartyDetail struct {
	PartySummary
	Narrative       string          `json:"narrative"`
	Addresses       []string        `json:"addresses"`
	Parcels         []models.Parcel `json:"parcels"`
	ParcelsOutside  []models.Parcel `json:"parcels_outside"`
	NetAcresDisplay string          `json:"net_acres_display"`
}

// DocketView is the display model of the docket dashboard.
type DocketView struct {
	Header     DocketHeader `json:"header"`
	PartyCount int          `json:"party_count"`

	// TotalConfirmedNMA is a display sum only. It is not reconciled
	// against the unit's acreage.
	TotalConfirmedNMA float64        `json:"total_confirmed_nma"`
	Parties           []PartySummary `json:"parties"`
	Details           []PartyDetail  `json:"details"`
}

// PartyNetAcres returns the party's confirmed net mineral acres, or 0.
func PartyNetAcres(record *models.PartyRecord) float64 {
	if record == nil {
		return 0
	}
	return record.TotalConfirmedNetMineralAcres
}

// Summarize builds the list entry for a party.
func Summarize(name string, record *models.PartyRecord) PartySummary {
	summary := PartySummary{Name: name, NetMineralAcres: PartyNetAcres(record)}
	if record == nil {
		return summary
	}
	summary.Status = record.StatusInUnit
	summary.ParcelsInUnit = len(record.ConsolidatedParcels)
	summary.ParcelsOutsideUnit = len(record.ConsolidatedParcelsOutside)
	summary.Placeholder = record.Placeholder
	return summary
}

// Detail builds the detail view for a party.
func Detail(name string, record *models.PartyRecord) PartyDetail {
	detail := PartyDetail{
		PartySummary:    Summarize(name, record),
		Addresses:       []string{},
		Parcels:         []models.Parcel{},
		ParcelsOutside:  []models.Parcel{},
		NetAcresDisplay: FormatAcres(PartyNetAcres(record)),
	}
	if record == nil {
		return detail
	}
	detail.Narrative = record.Narrative
	if record.Addresses != nil {
		detail.Addresses = record.Addresses
	}
	if record.ConsolidatedParcels != nil {
		detail.Parcels = record.ConsolidatedParcels
	}
	if record.ConsolidatedParcelsOutside != nil {
		detail.ParcelsOutside = record.ConsolidatedParcelsOutside
	}
	return detail
}

// BuildDocket derives the docket view from an application and its
// resolved parties. Parties are listed in resolution order.
func BuildDocket(app *models.ApplicationMetadata, parties *models.ResolvedParties) DocketView {
	view := DocketView{
		Parties: []PartySummary{},
		Details: []PartyDetail{},
	}

	if app != nil {
		view.Header = DocketHeader{
			Docket:       app.Docket,
			Applicant:    app.Applicant,
			LocationDesc: app.LocationDesc,
			TotalAcres:   app.UnitAcres(),
			UnitAcres:    FormatAcres(app.UnitAcres()),
			Formations:   nonNil(app.Formations),
			Sections:     nonNil(app.Sections),
		}
	} else {
		view.Header.Formations = []string{}
		view.Header.Sections = []string{}
	}

	if parties == nil {
		return view
	}

	parties.Each(func(name string, record *models.PartyRecord) {
		detail := Detail(name, record)
		view.Parties = append(view.Parties, detail.PartySummary)
		view.Details = append(view.Details, detail)
		view.TotalConfirmedNMA += detail.NetMineralAcres
	})
	view.PartyCount = len(view.Parties)

	return view
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
