package export

import (
	"bytes"
	"errors"
	"fmt"
	"image/color"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"git.sr.ht/~sbinet/gg"
	"github.com/ajstarks/svgo"
	"golang.org/x/image/font/basicfont"

	"github.com/vanderheijden86/votemap/pkg/geo"
	"github.com/vanderheijden86/votemap/pkg/mapview"
	"github.com/vanderheijden86/votemap/pkg/metrics"
	"github.com/vanderheijden86/votemap/pkg/model"
	"github.com/vanderheijden86/votemap/pkg/results"
)

// MapSnapshotOptions controls map snapshot export.
type MapSnapshotOptions struct {
	Path           string // Output path; format inferred from extension when Format is empty
	Format         string // "svg" or "png"
	Title          string
	Width, Height  int
	Districts      *geo.DistrictLayer
	Constituencies *geo.ConstituencyLayer
	// Dataset colors constituencies by winning party. Nil renders the
	// uncolored base map.
	Dataset *model.ElectionDataset
}

const (
	snapshotHeader = 96.0
	snapshotMargin = 24.0
	legendW        = 190.0
	legendRowH     = 18.0
)

var (
	colorBackdrop = color.RGBA{0x0f, 0x17, 0x2a, 0xff}
	colorHeaderBG = color.RGBA{0x1e, 0x29, 0x3b, 0xff}
	colorLegendBG = color.RGBA{0x1e, 0x29, 0x3b, 0xf0}
	colorStroke   = color.RGBA{0x33, 0x41, 0x55, 0xff}
	colorText     = color.RGBA{0xf8, 0xfa, 0xfc, 0xff}
	colorSubtle   = color.RGBA{0x94, 0xa3, 0xb8, 0xff}
)

// ErrNoGeometry is returned when there is nothing to draw.
var ErrNoGeometry = errors.New("no constituency geometry to render")

type projection struct {
	bounds     geo.Bounds
	scale      float64
	lonFactor  float64
	offX, offY float64
}

func newProjection(b geo.Bounds, x, y, w, h float64) projection {
	mid := (b.MinLat + b.MaxLat) / 2
	p := projection{bounds: b, lonFactor: math.Cos(mid * math.Pi / 180)}
	dLat, dLon := b.Span()
	dLon *= p.lonFactor
	if dLat <= 0 || dLon <= 0 {
		p.scale = 1
	} else {
		p.scale = math.Min(w/dLon, h/dLat)
	}
	p.offX = x + (w-dLon*p.scale)/2
	p.offY = y + (h-dLat*p.scale)/2
	return p
}

func (p projection) point(pt geo.Point) (float64, float64) {
	x := p.offX + (pt.Lon-p.bounds.MinLon)*p.lonFactor*p.scale
	y := p.offY + (p.bounds.MaxLat-pt.Lat)*p.scale
	return x, y
}

type snapshotFeature struct {
	ID    string
	Name  string
	Shape geo.Shape
	Style mapview.Style
}

type snapshotLayout struct {
	Width, Height int
	Title         string
	Subtitle      string
	Proj          projection
	Districts     []geo.Shape
	Features      []snapshotFeature
	Legend        []results.LegendEntry
	Tally         []results.AllianceSeats
}

func buildSnapshotLayout(opts MapSnapshotOptions) snapshotLayout {
	w, h := opts.Width, opts.Height
	if w <= 0 {
		w = 1200
	}
	if h <= 0 {
		h = 1400
	}
	l := snapshotLayout{Width: w, Height: h, Title: opts.Title}
	if l.Title == "" {
		l.Title = "Tamil Nadu assembly constituencies"
		if opts.Dataset != nil {
			l.Title = fmt.Sprintf("Tamil Nadu assembly election %d", opts.Dataset.Year)
		}
	}

	colored := opts.Dataset != nil
	bounds := opts.Constituencies.Bounds
	if opts.Districts != nil {
		bounds = bounds.Union(opts.Districts.Bounds)
		for _, d := range opts.Districts.Features {
			l.Districts = append(l.Districts, d.Shape)
		}
	}
	l.Proj = newProjection(bounds,
		snapshotMargin, snapshotHeader+snapshotMargin,
		float64(w)-2*snapshotMargin, float64(h)-snapshotHeader-2*snapshotMargin)

	withResult := 0
	for _, c := range opts.Constituencies.Features {
		r := opts.Dataset.Result(c.ID)
		if r != nil {
			withResult++
		}
		l.Features = append(l.Features, snapshotFeature{
			ID:    c.ID,
			Name:  c.Name,
			Shape: c.Shape,
			Style: mapview.ConstituencyBase(r, colored),
		})
	}
	l.Subtitle = fmt.Sprintf("constituencies: %d", len(l.Features))
	if colored {
		l.Subtitle += fmt.Sprintf("  with results: %d", withResult)
		l.Legend = results.LegendParties()
		l.Tally = results.AllianceTally(opts.Dataset)
	}
	return l
}

// SaveMapSnapshot renders the constituency map to an SVG or PNG file.
func SaveMapSnapshot(opts MapSnapshotOptions) error {
	format, path, err := snapshotFormat(opts.Format, opts.Path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create parent dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteMapSnapshot(f, format, opts); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// WriteMapSnapshot renders the map in format ("svg" or "png") to w.
func WriteMapSnapshot(w io.Writer, format string, opts MapSnapshotOptions) error {
	defer metrics.Timer(metrics.Render)()
	if opts.Constituencies == nil || len(opts.Constituencies.Features) == 0 {
		return ErrNoGeometry
	}
	layout := buildSnapshotLayout(opts)
	switch strings.ToLower(format) {
	case "svg":
		return renderMapSVG(w, layout)
	case "png":
		return renderMapPNG(w, layout)
	}
	return fmt.Errorf("unsupported format %q (want svg or png)", format)
}

func snapshotFormat(format, path string) (string, string, error) {
	if path == "" {
		return "", "", fmt.Errorf("output path is required")
	}
	format = strings.ToLower(strings.TrimPrefix(format, "."))
	if format == "" {
		switch strings.ToLower(filepath.Ext(path)) {
		case ".svg":
			format = "svg"
		case ".png":
			format = "png"
		case "":
			format = "svg"
			path += ".svg"
		default:
			format = "svg"
		}
	}
	if format != "svg" && format != "png" {
		return "", "", fmt.Errorf("unsupported format %q (want svg or png)", format)
	}
	return format, path, nil
}

func renderMapPNG(w io.Writer, l snapshotLayout) error {
	dc := gg.NewContext(l.Width, l.Height)
	dc.SetColor(colorBackdrop)
	dc.Clear()
	dc.SetFontFace(basicfont.Face7x13)

	dc.SetColor(colorHeaderBG)
	dc.DrawRoundedRectangle(16, 16, float64(l.Width)-32, snapshotHeader-24, 10)
	dc.Fill()
	dc.SetColor(colorText)
	dc.DrawStringAnchored(l.Title, 32, 44, 0, 0.5)
	dc.SetColor(colorSubtle)
	dc.DrawStringAnchored(l.Subtitle, 32, 64, 0, 0.5)

	dc.SetFillRuleEvenOdd()
	ds := mapview.DistrictStyle(mapview.DistrictDimmed)
	for _, s := range l.Districts {
		tracePNG(dc, l.Proj, s)
		dc.SetColor(hexColor(ds.FillColor, ds.FillOpacity))
		dc.FillPreserve()
		dc.SetColor(hexColor(ds.Color, ds.Opacity))
		dc.SetLineWidth(ds.Weight)
		dc.Stroke()
	}
	for _, f := range l.Features {
		tracePNG(dc, l.Proj, f.Shape)
		dc.SetColor(hexColor(f.Style.FillColor, f.Style.FillOpacity))
		dc.FillPreserve()
		dc.SetColor(hexColor(f.Style.Color, f.Style.Opacity))
		dc.SetLineWidth(f.Style.Weight)
		dc.Stroke()
	}

	if len(l.Legend) > 0 {
		x, y := float64(l.Width)-legendW-20, 24.0
		h := legendHeight(l)
		dc.SetColor(colorLegendBG)
		dc.DrawRoundedRectangle(x, y, legendW, h, 10)
		dc.Fill()
		dc.SetColor(colorStroke)
		dc.DrawRoundedRectangle(x, y, legendW, h, 10)
		dc.Stroke()
		for i, row := range legendRows(l) {
			ry := y + 18 + float64(i)*legendRowH
			if row.swatch != "" {
				dc.SetColor(hexColor(row.swatch, 1))
				dc.DrawRoundedRectangle(x+12, ry-7, 12, 12, 3)
				dc.Fill()
			}
			dc.SetColor(colorSubtle)
			dc.DrawStringAnchored(row.label, x+32, ry, 0, 0.5)
		}
	}

	return dc.EncodePNG(w)
}

func tracePNG(dc *gg.Context, p projection, s geo.Shape) {
	dc.ClearPath()
	for _, poly := range s.Polygons {
		for _, ring := range poly {
			if len(ring) < 3 {
				continue
			}
			dc.NewSubPath()
			for i, pt := range ring {
				x, y := p.point(pt)
				if i == 0 {
					dc.MoveTo(x, y)
				} else {
					dc.LineTo(x, y)
				}
			}
			dc.ClosePath()
		}
	}
}

func renderMapSVG(w io.Writer, l snapshotLayout) error {
	canvas := svg.New(w)
	canvas.Start(l.Width, l.Height)
	canvas.Title(l.Title)
	canvas.Rect(0, 0, l.Width, l.Height, "fill:"+css(colorBackdrop))
	canvas.Roundrect(16, 16, l.Width-32, int(snapshotHeader-24), 10, 10, "fill:"+css(colorHeaderBG))
	canvas.Text(32, 48, l.Title, fmt.Sprintf("fill:%s;font-size:16px;font-family:monospace;font-weight:bold", css(colorText)))
	canvas.Text(32, 68, l.Subtitle, fmt.Sprintf("fill:%s;font-size:13px;font-family:monospace", css(colorSubtle)))

	ds := mapview.DistrictStyle(mapview.DistrictDimmed)
	canvas.Group(`id="districts"`)
	for _, s := range l.Districts {
		canvas.Path(svgPath(l.Proj, s), svgStyle(ds))
	}
	canvas.Gend()

	canvas.Group(`id="constituencies"`)
	for _, f := range l.Features {
		canvas.Path(svgPath(l.Proj, f.Shape), svgStyle(f.Style), fmt.Sprintf(`data-id="%s"`, f.ID))
	}
	canvas.Gend()

	if len(l.Legend) > 0 {
		x, y := l.Width-int(legendW)-20, 24
		canvas.Roundrect(x, y, int(legendW), int(legendHeight(l)), 10, 10,
			fmt.Sprintf("fill:%s;stroke:%s;stroke-width:1", css(colorLegendBG), css(colorStroke)))
		for i, row := range legendRows(l) {
			ry := y + 18 + i*int(legendRowH)
			if row.swatch != "" {
				canvas.Roundrect(x+12, ry-8, 12, 12, 3, 3, "fill:"+row.swatch)
			}
			canvas.Text(x+32, ry+3, row.label, fmt.Sprintf("fill:%s;font-size:12px;font-family:monospace", css(colorSubtle)))
		}
	}

	canvas.End()
	return nil
}

func svgPath(p projection, s geo.Shape) string {
	var b bytes.Buffer
	for _, poly := range s.Polygons {
		for _, ring := range poly {
			if len(ring) < 3 {
				continue
			}
			for i, pt := range ring {
				x, y := p.point(pt)
				if i == 0 {
					b.WriteByte('M')
				} else {
					b.WriteByte('L')
				}
				b.WriteString(strconv.FormatFloat(x, 'f', 1, 64))
				b.WriteByte(' ')
				b.WriteString(strconv.FormatFloat(y, 'f', 1, 64))
			}
			b.WriteByte('Z')
		}
	}
	return b.String()
}

func svgStyle(s mapview.Style) string {
	return fmt.Sprintf("fill:%s;fill-opacity:%.2f;fill-rule:evenodd;stroke:%s;stroke-opacity:%.2f;stroke-width:%.1f",
		s.FillColor, s.FillOpacity, s.Color, s.Opacity, s.Weight)
}

type legendRow struct {
	swatch string
	label  string
}

func legendRows(l snapshotLayout) []legendRow {
	rows := make([]legendRow, 0, len(l.Legend)+len(l.Tally)+1)
	for _, e := range l.Legend {
		rows = append(rows, legendRow{swatch: e.Color, label: e.Label})
	}
	if len(l.Tally) > 0 {
		rows = append(rows, legendRow{label: "Seats"})
		for _, a := range l.Tally {
			rows = append(rows, legendRow{label: fmt.Sprintf("%-10s %3d", a.Name, a.Seats)})
		}
	}
	return rows
}

func legendHeight(l snapshotLayout) float64 {
	return 12 + float64(len(legendRows(l)))*legendRowH
}

// hexColor parses "#rrggbb" and applies opacity. Malformed input yields
// the neutral party color.
func hexColor(hex string, opacity float64) color.NRGBA {
	hex = strings.TrimPrefix(hex, "#")
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil || len(hex) != 6 {
		v, _ = strconv.ParseUint(strings.TrimPrefix(results.OthersColor, "#"), 16, 32)
	}
	a := math.Max(0, math.Min(1, opacity))
	return color.NRGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: uint8(math.Round(a * 255))}
}

func css(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}
