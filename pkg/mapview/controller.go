package mapview

import (
	"github.com/vanderheijden86/votemap/pkg/debug"
	"github.com/vanderheijden86/votemap/pkg/geo"
	"github.com/vanderheijden86/votemap/pkg/model"
	"github.com/vanderheijden86/votemap/pkg/results"
)

// Fit parameters for zooming to a feature.
const (
	DistrictPadding     = 50
	DistrictMaxZoom     = 10.0
	ConstituencyPadding = 100
	ConstituencyMaxZoom = 12.0
)

// Controller applies layer decisions to a Surface and tracks the selected
// and hovered constituency. It is not safe for concurrent use; the UI event
// loop owns it.
type Controller struct {
	surface Surface
	th      Thresholds

	districts      *geo.DistrictLayer
	constituencies *geo.ConstituencyLayer

	dataset  *model.ElectionDataset
	zoom     float64
	decision Decision
	applied  bool

	selected string
	hovered  string

	home     geo.Point
	homeZoom float64
}

// NewController creates a controller for the given layers. Call ZoomChanged
// or Apply once the surface has its initial view.
func NewController(s Surface, th Thresholds, districts *geo.DistrictLayer, constituencies *geo.ConstituencyLayer) *Controller {
	return &Controller{
		surface:        s,
		th:             th,
		districts:      districts,
		constituencies: constituencies,
		zoom:           s.Zoom(),
	}
}

// SetLayers swaps the geometry after a reload and reapplies.
func (c *Controller) SetLayers(districts *geo.DistrictLayer, constituencies *geo.ConstituencyLayer) {
	c.districts = districts
	c.constituencies = constituencies
	if _, ok := c.constituencies.Lookup(c.selected); !ok {
		c.selected = ""
	}
	c.hovered = ""
	c.Apply()
}

// SetHome records the overview center and zoom used by ResetView.
func (c *Controller) SetHome(center geo.Point, zoom float64) {
	c.home, c.homeZoom = center, zoom
}

// Decision returns the decision last applied.
func (c *Controller) Decision() Decision { return c.decision }

// Thresholds returns the configured thresholds.
func (c *Controller) Thresholds() Thresholds { return c.th }

// Zoom returns the zoom the controller last saw.
func (c *Controller) Zoom() float64 { return c.zoom }

// YearActive reports whether a dataset colors the map.
func (c *Controller) YearActive() bool { return c.dataset != nil }

// Dataset returns the active year's dataset, or nil.
func (c *Controller) Dataset() *model.ElectionDataset { return c.dataset }

// Selected returns the emphasized constituency id, or "".
func (c *Controller) Selected() string { return c.selected }

// ZoomChanged records a new zoom level and reapplies the layer decision.
func (c *Controller) ZoomChanged(zoom float64) {
	c.zoom = zoom
	c.Apply()
}

// SetDataset activates ds as the year coloring the map; nil clears the year.
func (c *Controller) SetDataset(ds *model.ElectionDataset) {
	c.dataset = ds
	c.Apply()
}

// Apply pushes the decision for the current state to the surface.
func (c *Controller) Apply() {
	d := Decide(c.zoom, c.dataset != nil, c.th)
	debug.LogIf(!c.applied || d.Phase != c.decision.Phase, "mapview: zoom %.1f -> %s", c.zoom, d.Phase)
	c.decision = d
	c.applied = true

	c.surface.SetDistrictStyle(DistrictStyle(d.District))
	c.surface.SetDistrictInteractive(d.DistrictInteractive)
	c.surface.SetDistrictLabels(d.DistrictLabels)
	if !d.DistrictInteractive {
		c.surface.SetDistrictHighlight("")
	}

	c.surface.AttachConstituencies(d.ConstituencyAttached)
	if !d.ConstituencyAttached {
		c.hovered = ""
	}
	c.restyleConstituencies()
	c.surface.SetConstituencyLabels(d.ConstituencyLabels)

	legend := Legend{Visible: d.Legend}
	if d.Legend {
		legend.Year = c.dataset.Year
		legend.Parties = results.LegendParties()
		legend.Alliances = results.AllianceTally(c.dataset)
	}
	c.surface.SetLegend(legend)
}

func (c *Controller) restyleConstituencies() {
	if c.constituencies == nil {
		return
	}
	for _, f := range c.constituencies.Features {
		c.surface.SetConstituencyStyle(f.ID, c.styleFor(f.ID))
	}
}

// BaseStyle computes id's un-emphasized style against the current year.
func (c *Controller) BaseStyle(id string) Style {
	return ConstituencyBase(c.dataset.Result(id), c.decision.ColorByResult)
}

func (c *Controller) styleFor(id string) Style {
	base := c.BaseStyle(id)
	switch id {
	case c.selected:
		return Selected(base)
	case c.hovered:
		return Hovered(base)
	}
	return base
}

// Select moves the selected emphasis to id. The previous selection is
// restored to a freshly computed base style first.
func (c *Controller) Select(id string) bool {
	if _, ok := c.constituencies.Lookup(id); !ok {
		return false
	}
	if prev := c.selected; prev != "" && prev != id {
		c.selected = ""
		c.surface.SetConstituencyStyle(prev, c.styleFor(prev))
	}
	c.selected = id
	c.surface.SetConstituencyStyle(id, c.styleFor(id))
	return true
}

// ClearSelection removes the selected emphasis.
func (c *Controller) ClearSelection() {
	if prev := c.selected; prev != "" {
		c.selected = ""
		c.surface.SetConstituencyStyle(prev, c.styleFor(prev))
	}
}

// CanInteractDistricts reports whether district hover/click is live.
func (c *Controller) CanInteractDistricts() bool {
	return c.decision.DistrictInteractive
}

// CanInteractConstituencies reports whether the constituency layer is live.
func (c *Controller) CanInteractConstituencies() bool {
	return c.decision.ConstituencyAttached
}

// HoverDistrict highlights name while districts are interactive; "" clears.
func (c *Controller) HoverDistrict(name string) {
	if name != "" && !c.CanInteractDistricts() {
		return
	}
	c.surface.SetDistrictHighlight(name)
}

// HoverConstituency applies hover emphasis to id; "" clears. The selected
// constituency keeps its selected emphasis.
func (c *Controller) HoverConstituency(id string) {
	if id != "" && !c.CanInteractConstituencies() {
		return
	}
	if id == c.hovered {
		return
	}
	prev := c.hovered
	c.hovered = id
	if prev != "" {
		c.surface.SetConstituencyStyle(prev, c.styleFor(prev))
	}
	if id != "" {
		c.surface.SetConstituencyStyle(id, c.styleFor(id))
	}
}

// ZoomToDistrict fits the view to the named district, matched
// case-insensitively.
func (c *Controller) ZoomToDistrict(name string) bool {
	d, ok := c.districts.Find(name)
	if !ok {
		debug.Log("mapview: no district geometry for %q", name)
		return false
	}
	c.surface.FitBounds(d.Shape.Bounds, DistrictPadding, DistrictMaxZoom)
	c.ZoomChanged(c.surface.Zoom())
	return true
}

// ZoomToConstituency fits the view to id and selects it.
func (c *Controller) ZoomToConstituency(id string) bool {
	f, ok := c.constituencies.Lookup(id)
	if !ok {
		debug.Log("mapview: no constituency geometry for %q", id)
		return false
	}
	c.surface.FitBounds(f.Shape.Bounds, ConstituencyPadding, ConstituencyMaxZoom)
	c.ZoomChanged(c.surface.Zoom())
	return c.Select(id)
}

// ResetView clears the selection and returns to the home view.
func (c *Controller) ResetView() {
	c.ClearSelection()
	c.HoverConstituency("")
	c.surface.SetView(c.home, c.homeZoom)
	c.ZoomChanged(c.surface.Zoom())
}
