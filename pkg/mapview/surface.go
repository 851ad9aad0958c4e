package mapview

import (
	"github.com/vanderheijden86/votemap/pkg/geo"
	"github.com/vanderheijden86/votemap/pkg/results"
)

// Legend is the content of the results legend.
type Legend struct {
	Visible   bool
	Year      int
	Parties   []results.LegendEntry
	Alliances []results.AllianceSeats
}

// Surface is the rendering side of the map. Implementations draw; they do
// not decide.
type Surface interface {
	SetDistrictStyle(s Style)
	SetDistrictInteractive(on bool)
	SetDistrictLabels(on bool)
	// SetDistrictHighlight emphasizes one district; "" clears it.
	SetDistrictHighlight(name string)

	// AttachConstituencies adds or removes the constituency layer.
	AttachConstituencies(on bool)
	SetConstituencyStyle(id string, s Style)
	SetConstituencyLabels(on bool)

	SetLegend(l Legend)

	FitBounds(b geo.Bounds, padding int, maxZoom float64)
	SetView(center geo.Point, zoom float64)
	Zoom() float64
}
