package ui

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/vanderheijden86/votemap/pkg/config"
	"github.com/vanderheijden86/votemap/pkg/geo"
	"github.com/vanderheijden86/votemap/pkg/mapview"
)

// degreesPerColumnAtZoom0 sets the scale: one cell column spans
// degreesPerColumnAtZoom0 / 2^zoom degrees of longitude. A row spans twice
// that in latitude since terminal cells are about twice as tall as wide.
const degreesPerColumnAtZoom0 = 7.0

// Hit is what lies under one map cell.
type Hit struct {
	District     string
	Constituency string
}

// MapSurface draws the district and constituency layers as a grid of
// terminal cells. It implements mapview.Surface; all layer decisions come
// from the controller.
type MapSurface struct {
	theme          Theme
	districts      *geo.DistrictLayer
	constituencies *geo.ConstituencyLayer

	width   int
	height  int
	center  geo.Point
	zoom    float64
	minZoom float64
	maxZoom float64

	districtStyle       mapview.Style
	districtInteractive bool
	districtLabels      bool
	highlight           string

	attached           bool
	styles             map[string]mapview.Style
	constituencyLabels bool

	legend mapview.Legend

	cursorCol int
	cursorRow int

	grid      []Hit
	gridValid bool
}

var _ mapview.Surface = (*MapSurface)(nil)

// NewMapSurface creates a surface positioned at the configured home view.
func NewMapSurface(theme Theme, cfg config.MapConfig) *MapSurface {
	return &MapSurface{
		theme:   theme,
		center:  geo.Point{Lat: cfg.Center[0], Lon: cfg.Center[1]},
		zoom:    cfg.InitialZoom,
		minZoom: cfg.MinZoom,
		maxZoom: cfg.MaxZoom,
		styles:  make(map[string]mapview.Style),
	}
}

// SetLayers installs the geometry.
func (s *MapSurface) SetLayers(districts *geo.DistrictLayer, constituencies *geo.ConstituencyLayer) {
	s.districts = districts
	s.constituencies = constituencies
	s.styles = make(map[string]mapview.Style)
	s.invalidate()
}

// SetSize sets the grid dimensions in cells and recenters the cursor.
func (s *MapSurface) SetSize(width, height int) {
	if width == s.width && height == s.height {
		return
	}
	s.width, s.height = max(0, width), max(0, height)
	s.cursorCol, s.cursorRow = s.width/2, s.height/2
	s.invalidate()
}

// Size returns the grid dimensions.
func (s *MapSurface) Size() (int, int) { return s.width, s.height }

func (s *MapSurface) invalidate() { s.gridValid = false }

func (s *MapSurface) SetDistrictStyle(st mapview.Style) { s.districtStyle = st }

func (s *MapSurface) SetDistrictInteractive(on bool) { s.districtInteractive = on }

func (s *MapSurface) SetDistrictLabels(on bool) { s.districtLabels = on }

func (s *MapSurface) SetDistrictHighlight(name string) { s.highlight = name }

func (s *MapSurface) AttachConstituencies(on bool) { s.attached = on }

func (s *MapSurface) SetConstituencyStyle(id string, st mapview.Style) { s.styles[id] = st }

func (s *MapSurface) SetConstituencyLabels(on bool) { s.constituencyLabels = on }

func (s *MapSurface) SetLegend(l mapview.Legend) { s.legend = l }

// Legend returns the legend last pushed by the controller.
func (s *MapSurface) Legend() mapview.Legend { return s.legend }

// Attached reports whether the constituency layer is on the map.
func (s *MapSurface) Attached() bool { return s.attached }

// Highlight returns the highlighted district.
func (s *MapSurface) Highlight() string { return s.highlight }

// ConstituencyStyle returns the paint last set for id.
func (s *MapSurface) ConstituencyStyle(id string) (mapview.Style, bool) {
	st, ok := s.styles[id]
	return st, ok
}

// FitBounds centers b and picks the largest whole zoom, capped at maxZoom,
// at which b plus the padding fits the grid. Padding is in screen pixels;
// a cell is taken as 8x16 pixels.
func (s *MapSurface) FitBounds(b geo.Bounds, padding int, maxZoom float64) {
	if b.Empty() {
		return
	}
	padCols := float64(2 * (padding / 8))
	padRows := float64(2 * (padding / 16))
	dLat, dLon := b.Span()

	z := math.Floor(math.Min(maxZoom, s.maxZoom))
	for ; z > s.minZoom; z-- {
		dpc := degreesPerColumn(z)
		if dLon/dpc+padCols <= float64(s.width) && dLat/(2*dpc)+padRows <= float64(s.height) {
			break
		}
	}
	s.SetView(b.Center(), z)
}

// SetView moves the map to center at zoom, clamped to the configured range.
func (s *MapSurface) SetView(center geo.Point, zoom float64) {
	s.center = center
	s.zoom = math.Max(s.minZoom, math.Min(s.maxZoom, zoom))
	s.invalidate()
}

func (s *MapSurface) Zoom() float64 { return s.zoom }

// Center returns the geographic center of the view.
func (s *MapSurface) Center() geo.Point { return s.center }

// ZoomBy changes the zoom by delta around the current center.
func (s *MapSurface) ZoomBy(delta float64) {
	s.SetView(s.center, s.zoom+delta)
}

// Pan shifts the view by whole cells.
func (s *MapSurface) Pan(dCols, dRows int) {
	dpc := degreesPerColumn(s.zoom)
	s.center.Lon += float64(dCols) * dpc
	s.center.Lat -= float64(dRows) * 2 * dpc
	s.invalidate()
}

// MoveCursor moves the crosshair, panning when it would leave the grid.
func (s *MapSurface) MoveCursor(dCols, dRows int) {
	col, row := s.cursorCol+dCols, s.cursorRow+dRows
	panCols, panRows := 0, 0
	if col < 0 {
		panCols, col = col, 0
	} else if col >= s.width {
		panCols, col = col-s.width+1, max(0, s.width-1)
	}
	if row < 0 {
		panRows, row = row, 0
	} else if row >= s.height {
		panRows, row = row-s.height+1, max(0, s.height-1)
	}
	if panCols != 0 || panRows != 0 {
		s.Pan(panCols, panRows)
	}
	s.cursorCol, s.cursorRow = col, row
}

// SetCursor places the crosshair at a grid cell.
func (s *MapSurface) SetCursor(col, row int) bool {
	if col < 0 || row < 0 || col >= s.width || row >= s.height {
		return false
	}
	s.cursorCol, s.cursorRow = col, row
	return true
}

// Cursor returns the crosshair cell.
func (s *MapSurface) Cursor() (int, int) { return s.cursorCol, s.cursorRow }

// CursorPoint returns the coordinate under the crosshair.
func (s *MapSurface) CursorPoint() geo.Point { return s.cellPoint(s.cursorCol, s.cursorRow) }

// HitAtCursor returns the features under the crosshair.
func (s *MapSurface) HitAtCursor() Hit { return s.HitAt(s.cursorCol, s.cursorRow) }

// HitAt returns the features under a grid cell regardless of layer
// visibility; callers check interactivity with the controller.
func (s *MapSurface) HitAt(col, row int) Hit {
	if col < 0 || row < 0 || col >= s.width || row >= s.height {
		return Hit{}
	}
	s.ensureGrid()
	return s.grid[row*s.width+col]
}

func degreesPerColumn(zoom float64) float64 {
	return degreesPerColumnAtZoom0 / math.Pow(2, zoom)
}

func (s *MapSurface) cellPoint(col, row int) geo.Point {
	dpc := degreesPerColumn(s.zoom)
	return geo.Point{
		Lat: s.center.Lat - (float64(row)-float64(s.height)/2+0.5)*2*dpc,
		Lon: s.center.Lon + (float64(col)-float64(s.width)/2+0.5)*dpc,
	}
}

func (s *MapSurface) pointCell(p geo.Point) (int, int, bool) {
	dpc := degreesPerColumn(s.zoom)
	col := int(math.Floor((p.Lon-s.center.Lon)/dpc + float64(s.width)/2))
	row := int(math.Floor((s.center.Lat-p.Lat)/(2*dpc) + float64(s.height)/2))
	if col < 0 || row < 0 || col >= s.width || row >= s.height {
		return 0, 0, false
	}
	return col, row, true
}

func (s *MapSurface) ensureGrid() {
	if s.gridValid && len(s.grid) == s.width*s.height {
		return
	}
	s.grid = make([]Hit, s.width*s.height)
	for row := 0; row < s.height; row++ {
		for col := 0; col < s.width; col++ {
			p := s.cellPoint(col, row)
			var h Hit
			if s.districts != nil && s.districts.Bounds.Contains(p) {
				if d, ok := s.districts.At(p); ok {
					h.District = d.Name
				}
			}
			if s.constituencies != nil && s.constituencies.Bounds.Contains(p) {
				if c, ok := s.constituencies.At(p); ok {
					h.Constituency = c.ID
				}
			}
			s.grid[row*s.width+col] = h
		}
	}
	s.gridValid = true
}

// shade maps fill opacity to a block glyph.
func shade(opacity float64) rune {
	switch {
	case opacity <= 0:
		return ' '
	case opacity < 0.2:
		return '·'
	case opacity < 0.5:
		return '░'
	case opacity < 0.65:
		return '▒'
	case opacity < 0.75:
		return '▓'
	}
	return '█'
}

type cellPaint struct {
	glyph  rune
	color  string
	bold   bool
	label  bool
	cursor bool
}

func (s *MapSurface) paint(h Hit) cellPaint {
	if s.attached && h.Constituency != "" {
		st, ok := s.styles[h.Constituency]
		if !ok {
			st = mapview.ConstituencyBase(nil, false)
		}
		return cellPaint{glyph: shade(st.FillOpacity), color: st.FillColor, bold: st.Weight >= 3}
	}
	if h.District != "" && s.districtStyle.FillOpacity > 0 {
		op := s.districtStyle.FillOpacity
		if s.highlight != "" && strings.EqualFold(h.District, s.highlight) {
			op += 0.4
		}
		return cellPaint{glyph: shade(op), color: s.districtStyle.FillColor}
	}
	return cellPaint{glyph: ' '}
}

// labels places feature names at their label points, skipping names that
// would overlap one already placed or run off the grid.
func (s *MapSurface) labels() map[int]rune {
	out := make(map[int]rune)
	place := func(text string, p geo.Point) {
		col, row, ok := s.pointCell(p)
		if !ok || text == "" {
			return
		}
		runes := []rune(text)
		if runewidth.StringWidth(text) != len(runes) {
			return
		}
		start := col - len(runes)/2
		if start < 0 || start+len(runes) > s.width {
			return
		}
		for i := range runes {
			if _, taken := out[row*s.width+start+i]; taken {
				return
			}
		}
		for i, r := range runes {
			out[row*s.width+start+i] = r
		}
	}

	if s.attached && s.constituencyLabels && s.constituencies != nil {
		for _, f := range s.constituencies.Features {
			place(f.Name, f.Label)
		}
	}
	if s.districtLabels && s.districts != nil {
		for _, f := range s.districts.Features {
			place(f.Name, f.Label)
		}
	}
	return out
}

// View renders the grid. Adjacent cells with the same paint are rendered as
// one run.
func (s *MapSurface) View() string {
	if s.width == 0 || s.height == 0 {
		return ""
	}
	s.ensureGrid()
	labels := s.labels()
	styles := make(map[cellPaint]lipgloss.Style)

	styleFor := func(p cellPaint) lipgloss.Style {
		key := p
		key.glyph = 0
		if st, ok := styles[key]; ok {
			return st
		}
		st := s.theme.Renderer.NewStyle()
		switch {
		case p.cursor:
			st = st.Reverse(true).Bold(true)
		case p.label:
			st = s.theme.Base.Bold(true)
		case p.color != "":
			st = st.Foreground(ThemeFg(p.color)).Bold(p.bold)
		}
		styles[key] = st
		return st
	}

	var b strings.Builder
	var run []rune
	for row := 0; row < s.height; row++ {
		if row > 0 {
			b.WriteByte('\n')
		}
		var cur cellPaint
		run = run[:0]
		for col := 0; col < s.width; col++ {
			idx := row*s.width + col
			p := s.paint(s.grid[idx])
			if r, ok := labels[idx]; ok {
				p = cellPaint{glyph: r, label: true}
			}
			if col == s.cursorCol && row == s.cursorRow {
				p = cellPaint{glyph: '+', cursor: true}
			}
			if len(run) > 0 && !samePaint(p, cur) {
				b.WriteString(styleFor(cur).Render(string(run)))
				run = run[:0]
			}
			cur = p
			run = append(run, p.glyph)
		}
		if len(run) > 0 {
			b.WriteString(styleFor(cur).Render(string(run)))
		}
	}
	return b.String()
}

func samePaint(a, b cellPaint) bool {
	a.glyph, b.glyph = 0, 0
	return a == b
}
