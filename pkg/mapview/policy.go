// Package mapview decides which map layers are visible, interactive and
// labeled, and applies those decisions to a rendering Surface.
//
// The decision is a pure function of the zoom level and whether an election
// year is active (Decide). Controller is the separate application step: it
// pushes styles to the surface and enforces that at most one constituency
// carries the selected emphasis.
package mapview

import "fmt"

// Thresholds are the zoom levels at which the layers switch.
type Thresholds struct {
	// ConstituencyMinZoom is the zoom at which constituencies replace
	// districts when no year is active.
	ConstituencyMinZoom float64
	// LabelMinZoom is the zoom at which constituency labels appear.
	LabelMinZoom float64
}

// DefaultThresholds returns the stock 9/9 thresholds.
func DefaultThresholds() Thresholds {
	return Thresholds{ConstituencyMinZoom: 9, LabelMinZoom: 9}
}

// Phase names the derived layer state.
type Phase int

const (
	// PhaseOverview: no year, zoomed out. Districts are the interactive layer.
	PhaseOverview Phase = iota
	// PhaseYearOverview: a year is active. Constituencies colored by winner.
	PhaseYearOverview
	// PhaseDetail: no year, zoomed in. Constituencies with the default fill.
	PhaseDetail
)

func (p Phase) String() string {
	switch p {
	case PhaseOverview:
		return "overview"
	case PhaseYearOverview:
		return "year-overview"
	case PhaseDetail:
		return "detail"
	}
	return fmt.Sprintf("Phase(%d)", int(p))
}

// DistrictMode is how strongly the district layer is drawn.
type DistrictMode int

const (
	DistrictOpaque DistrictMode = iota
	DistrictDimmed
	DistrictHidden
)

// Decision is the full layer configuration for one (zoom, year) state.
type Decision struct {
	Phase Phase

	District            DistrictMode
	DistrictInteractive bool
	DistrictLabels      bool

	// ConstituencyAttached false means the layer is removed from the
	// surface and receives no pointer events at all.
	ConstituencyAttached bool
	ConstituencyLabels   bool
	// ColorByResult fills constituencies by the winning party.
	ColorByResult bool

	Legend bool
}

// Decide returns the layer configuration for zoom, given whether a year is
// active. A year overrides the zoom rule: constituencies stay attached at
// every zoom and districts are hidden.
func Decide(zoom float64, yearActive bool, th Thresholds) Decision {
	labels := zoom >= th.LabelMinZoom
	switch {
	case yearActive:
		return Decision{
			Phase:                PhaseYearOverview,
			District:             DistrictHidden,
			ConstituencyAttached: true,
			ConstituencyLabels:   labels,
			ColorByResult:        true,
			Legend:               true,
		}
	case zoom < th.ConstituencyMinZoom:
		return Decision{
			Phase:               PhaseOverview,
			District:            DistrictOpaque,
			DistrictInteractive: true,
			DistrictLabels:      true,
		}
	default:
		return Decision{
			Phase:                PhaseDetail,
			District:             DistrictDimmed,
			ConstituencyAttached: true,
			ConstituencyLabels:   labels,
		}
	}
}
