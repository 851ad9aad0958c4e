package ui

import (
	"math"
	"strings"
	"testing"

	"github.com/vanderheijden86/votemap/pkg/config"
	"github.com/vanderheijden86/votemap/pkg/geo"
	"github.com/vanderheijden86/votemap/pkg/mapview"
)

const (
	surfaceDistricts = `{"type":"FeatureCollection","features":[
 {"type":"Feature","properties":{"district":"North"},"geometry":{"type":"Polygon","coordinates":[[[79,12],[80,12],[80,13],[79,13],[79,12]]]}},
 {"type":"Feature","properties":{"district":"South"},"geometry":{"type":"Polygon","coordinates":[[[79,11],[80,11],[80,12],[79,12],[79,11]]]}}]}`
	surfaceConstituencies = `{"type":"FeatureCollection","features":[
 {"type":"Feature","properties":{"id":"1","name":"One"},"geometry":{"type":"Polygon","coordinates":[[[79,12],[79.5,12],[79.5,13],[79,13],[79,12]]]}},
 {"type":"Feature","properties":{"id":"2","name":"Two"},"geometry":{"type":"Polygon","coordinates":[[[79.5,12],[80,12],[80,13],[79.5,13],[79.5,12]]]}},
 {"type":"Feature","properties":{"id":"3","name":"Three"},"geometry":{"type":"Polygon","coordinates":[[[79,11],[80,11],[80,12],[79,12],[79,11]]]}}]}`
)

func testLayers(t *testing.T) (*geo.DistrictLayer, *geo.ConstituencyLayer) {
	t.Helper()
	d, err := geo.ParseDistricts([]byte(surfaceDistricts))
	if err != nil {
		t.Fatal(err)
	}
	c, err := geo.ParseConstituencies([]byte(surfaceConstituencies))
	if err != nil {
		t.Fatal(err)
	}
	return d, c
}

func newTestSurface(t *testing.T) *MapSurface {
	t.Helper()
	cfg := config.DefaultConfig().Map
	s := NewMapSurface(TestTheme(), cfg)
	d, c := testLayers(t)
	s.SetLayers(d, c)
	s.SetSize(80, 40)
	s.SetView(geo.Point{Lat: 12, Lon: 79.5}, 8)
	return s
}

func TestMapSurfaceFitBounds(t *testing.T) {
	s := newTestSurface(t)
	d, _ := testLayers(t)
	north, ok := d.Find("north")
	if !ok {
		t.Fatal("north district missing")
	}

	s.FitBounds(north.Shape.Bounds, mapview.DistrictPadding, mapview.DistrictMaxZoom)
	if s.Zoom() != 8 {
		t.Errorf("Zoom() = %v, want 8", s.Zoom())
	}
	c := s.Center()
	if math.Abs(c.Lat-12.5) > 1e-9 || math.Abs(c.Lon-79.5) > 1e-9 {
		t.Errorf("Center() = %+v, want 12.5,79.5", c)
	}
}

func TestMapSurfaceFitBoundsRespectsMaxZoom(t *testing.T) {
	s := newTestSurface(t)
	tiny := geo.NewBounds(geo.Point{Lat: 12, Lon: 79}, geo.Point{Lat: 12.0001, Lon: 79.0001})
	s.FitBounds(tiny, 0, 12)
	if s.Zoom() != 12 {
		t.Errorf("Zoom() = %v, want 12", s.Zoom())
	}
}

func TestMapSurfaceHitAt(t *testing.T) {
	s := newTestSurface(t)
	tests := []struct {
		name     string
		col, row int
		want     Hit
	}{
		{"south", 40, 20, Hit{District: "South", Constituency: "3"}},
		{"north east", 40, 10, Hit{District: "North", Constituency: "2"}},
		{"outside", 0, 0, Hit{}},
		{"off grid", 100, 100, Hit{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := s.HitAt(tt.col, tt.row); got != tt.want {
				t.Errorf("HitAt(%d,%d) = %+v, want %+v", tt.col, tt.row, got, tt.want)
			}
		})
	}
}

func TestMapSurfacePaintFollowsController(t *testing.T) {
	s := newTestSurface(t)
	d, c := testLayers(t)
	ctl := mapview.NewController(s, mapview.DefaultThresholds(), d, c)
	ctl.Apply()

	// Overview: districts drawn, constituencies detached.
	if s.Attached() {
		t.Fatal("constituencies attached in overview")
	}
	if got := s.paint(Hit{District: "North", Constituency: "2"}).glyph; got != '░' {
		t.Errorf("overview glyph = %q, want ░", got)
	}
	ctl.HoverDistrict("North")
	if got := s.paint(Hit{District: "North"}).glyph; got != '▓' {
		t.Errorf("highlighted district glyph = %q, want ▓", got)
	}

	// Detail: constituencies on top with the default fill.
	s.SetView(s.Center(), 10)
	ctl.ZoomChanged(s.Zoom())
	if !s.Attached() {
		t.Fatal("constituencies not attached in detail")
	}
	if got := s.paint(Hit{District: "North", Constituency: "2"}).glyph; got != '░' {
		t.Errorf("detail glyph = %q, want ░", got)
	}
	ctl.Select("2")
	p := s.paint(Hit{District: "North", Constituency: "2"})
	if p.glyph != '█' || !p.bold {
		t.Errorf("selected paint = %+v, want bold █", p)
	}
	if got := s.paint(Hit{District: "North", Constituency: "1"}).glyph; got != '░' {
		t.Errorf("unselected glyph = %q, want ░", got)
	}
}

func TestMapSurfaceMoveCursorPans(t *testing.T) {
	s := newTestSurface(t)
	s.SetSize(10, 10)
	before := s.Center()

	s.MoveCursor(-6, 0)
	col, row := s.Cursor()
	if col != 0 || row != 5 {
		t.Errorf("Cursor() = %d,%d, want 0,5", col, row)
	}
	want := before.Lon - degreesPerColumn(s.Zoom())
	if math.Abs(s.Center().Lon-want) > 1e-9 {
		t.Errorf("center lon = %v, want %v", s.Center().Lon, want)
	}

	s.MoveCursor(0, 2)
	if _, row := s.Cursor(); row != 7 {
		t.Errorf("row = %d, want 7", row)
	}
}

func TestMapSurfaceZoomClamped(t *testing.T) {
	s := newTestSurface(t)
	s.SetView(s.Center(), 100)
	if s.Zoom() != config.DefaultConfig().Map.MaxZoom {
		t.Errorf("Zoom() = %v, want max zoom", s.Zoom())
	}
	s.ZoomBy(-100)
	if s.Zoom() != config.DefaultConfig().Map.MinZoom {
		t.Errorf("Zoom() = %v, want min zoom", s.Zoom())
	}
}

func TestMapSurfaceViewDrawsCursorAndLabels(t *testing.T) {
	s := newTestSurface(t)
	s.SetDistrictStyle(mapview.DistrictStyle(mapview.DistrictOpaque))
	s.SetDistrictLabels(true)

	view := s.View()
	lines := strings.Split(view, "\n")
	if len(lines) != 40 {
		t.Fatalf("View() has %d lines, want 40", len(lines))
	}
	for _, want := range []string{"+", "North", "South", "░"} {
		if !strings.Contains(view, want) {
			t.Errorf("View() missing %q", want)
		}
	}
}

func TestShade(t *testing.T) {
	tests := []struct {
		opacity float64
		want    rune
	}{
		{0, ' '},
		{0.1, '·'},
		{0.3, '░'},
		{0.6, '▒'},
		{0.7, '▓'},
		{0.8, '█'},
	}
	for _, tt := range tests {
		if got := shade(tt.opacity); got != tt.want {
			t.Errorf("shade(%v) = %q, want %q", tt.opacity, got, tt.want)
		}
	}
}
