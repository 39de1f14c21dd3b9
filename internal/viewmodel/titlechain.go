package viewmodel

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/stwalsh4118/minerals/internal/models"
)

// Classification is the binary interest type of a parcel summary row.
// It only drives presentation.
type Classification string

const (
	ClassRoyalty Classification = "royalty"
	ClassOther   Classification = "other"
)

// Row highlight colours.
const (
	HighlightRoyalty = "#d4edda"
	HighlightOther   = "#f8d7da"
)

// DataSource is the provenance label shown with the title-chain metrics.
const DataSource = "AI Analysis"

// EmptyRowsWarning is shown when an upload decodes to zero rows.
const EmptyRowsWarning = "JSON loaded but contained no parcel data rows."

var royaltyKey = cases.Fold().String("ROYALTY")

// IsRoyalty reports whether the interest type names a royalty interest,
// ignoring case.
func IsRoyalty(interestType string) bool {
	return strings.Contains(cases.Fold().String(interestType), royaltyKey)
}

// Classify returns the row's classification.
func Classify(row models.ParcelSummaryRow) Classification {
	if IsRoyalty(row.Type) {
		return ClassRoyalty
	}
	return ClassOther
}

// Highlight returns the background colour for a classification.
func Highlight(c Classification) string {
	if c == ClassRoyalty {
		return HighlightRoyalty
	}
	return HighlightOther
}

// TotalNetRoyaltyAcres sums nra over royalty rows. Rows whose nra is
// missing or not a number count as zero.
func TotalNetRoyaltyAcres(rows []models.ParcelSummaryRow) float64 {
	total := 0.0
	for _, row := range rows {
		if IsRoyalty(row.Type) {
			total += row.NRA.Float()
		}
	}
	return total
}

// ParcelCount counts all rows regardless of type.
func ParcelCount(rows []models.ParcelSummaryRow) int {
	return len(rows)
}

// FormatAcres renders a docket acreage for display with digit grouping,
// e.g. "1,024.50 ac". Title-chain metrics use MetricAcres instead.
func FormatAcres(acres float64) string {
	return message.NewPrinter(language.AmericanEnglish).Sprintf("%.2f ac", acres)
}

// MetricAcres renders the NRA summary metric without digit grouping,
// e.g. "1024.50 ac".
func MetricAcres(acres float64) string {
	return fmt.Sprintf("%.2f ac", acres)
}

// Metric is one labelled summary figure.
type Metric struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// TitleChainRow is a parcel summary row with its presentation class.
type TitleChainRow struct {
	Row            models.ParcelSummaryRow `json:"row"`
	Classification Classification          `json:"classification"`
	Highlight      string                  `json:"highlight"`
}

// TitleChainView is the display model of the title-chain dashboard.
type TitleChainView struct {
	User                 string          `json:"user,omitempty"`
	Example              bool            `json:"example"`
	Empty                bool            `json:"empty"`
	Warning              string          `json:"warning,omitempty"`
	TotalNetRoyaltyAcres float64         `json:"total_net_royalty_acres"`
	ParcelCount          int             `json:"parcel_count"`
	Metrics              []Metric        `json:"metrics"`
	Columns              []string        `json:"columns"`
	Rows                 []TitleChainRow `json:"rows"`
}

// Columns lists the table columns for rows: the known columns in display
// order, then every extra column any row carries, sorted.
func Columns(rows []models.ParcelSummaryRow) []string {
	columns := models.KnownColumns()
	seen := make(map[string]bool)
	var extra []string
	for _, row := range rows {
		for _, key := range row.ExtraKeys() {
			if !seen[key] {
				seen[key] = true
				extra = append(extra, key)
			}
		}
	}
	sort.Strings(extra)
	return append(columns, extra...)
}

// BuildTitleChain derives the title-chain view from decoded rows.
// Summary metrics are listed only when there are rows and at least one
// of them carries an nra column.
func BuildTitleChain(rows []models.ParcelSummaryRow) TitleChainView {
	view := TitleChainView{
		TotalNetRoyaltyAcres: TotalNetRoyaltyAcres(rows),
		ParcelCount:          ParcelCount(rows),
		Metrics:              []Metric{},
		Columns:              Columns(rows),
		Rows:                 make([]TitleChainRow, 0, len(rows)),
	}

	if len(rows) == 0 {
		view.Empty = true
		view.Warning = EmptyRowsWarning
		return view
	}

	hasNRA := false
	for _, row := range rows {
		class := Classify(row)
		view.Rows = append(view.Rows, TitleChainRow{
			Row:            row,
			Classification: class,
			Highlight:      Highlight(class),
		})
		hasNRA = hasNRA || row.NRA.Present
	}

	if hasNRA {
		view.Metrics = []Metric{
			{Label: "Net Royalty Acres (NRA)", Value: MetricAcres(view.TotalNetRoyaltyAcres)},
			{Label: "Parcels Tracked", Value: strconv.Itoa(view.ParcelCount)},
			{Label: "Data Source", Value: DataSource},
		}
	}

	return view
}
