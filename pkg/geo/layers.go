package geo

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	geojson "github.com/paulmach/go.geojson"

	"github.com/vanderheijden86/votemap/pkg/model"
)

// Property names tried, in order, when reading feature attributes.
var (
	DistrictNameKeys     = []string{"district", "name", "DISTRICT"}
	ConstituencyIDKeys   = []string{"id", "AC_NO"}
	ConstituencyNameKeys = []string{"name", "AC_NAME"}
)

// District is one feature of the district layer.
type District struct {
	Name  string
	Shape Shape
	Label Point
}

// Constituency is one feature of the constituency layer.
type Constituency struct {
	ID    string
	Name  string
	Shape Shape
	Label Point
}

// DistrictLayer holds every district feature.
type DistrictLayer struct {
	Features []District
	Bounds   Bounds
	byName   map[string]int
}

// ConstituencyLayer holds every constituency feature, ordered by id.
type ConstituencyLayer struct {
	Features []Constituency
	Bounds   Bounds
	byID     map[string]int
}

// ParseDistricts decodes a district FeatureCollection.
func ParseDistricts(data []byte) (*DistrictLayer, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("district geometry: %w", err)
	}
	layer := &DistrictLayer{byName: make(map[string]int)}
	for i, f := range fc.Features {
		name := propString(f, DistrictNameKeys)
		if name == "" {
			return nil, fmt.Errorf("district feature %d has no name property", i)
		}
		shape, err := shapeOf(f.Geometry)
		if err != nil {
			return nil, fmt.Errorf("district %q: %w", name, err)
		}
		key := strings.ToLower(name)
		if idx, dup := layer.byName[key]; dup {
			// Some boundary files split a district into several features.
			d := &layer.Features[idx]
			d.Shape.Polygons = append(d.Shape.Polygons, shape.Polygons...)
			d.Shape.Bounds = d.Shape.Bounds.Union(shape.Bounds)
			d.Label = d.Shape.LabelPoint()
		} else {
			layer.byName[key] = len(layer.Features)
			layer.Features = append(layer.Features, District{Name: name, Shape: shape, Label: shape.LabelPoint()})
		}
		layer.Bounds = layer.Bounds.Union(shape.Bounds)
	}
	return layer, nil
}

// ParseConstituencies decodes a constituency FeatureCollection.
func ParseConstituencies(data []byte) (*ConstituencyLayer, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("constituency geometry: %w", err)
	}
	layer := &ConstituencyLayer{byID: make(map[string]int)}
	for i, f := range fc.Features {
		id := propString(f, ConstituencyIDKeys)
		if id == "" && f.ID != nil {
			id = scalarString(f.ID)
		}
		if id == "" {
			return nil, fmt.Errorf("constituency feature %d has no id property", i)
		}
		if _, dup := layer.byID[id]; dup {
			return nil, fmt.Errorf("constituency id %s appears twice", id)
		}
		shape, err := shapeOf(f.Geometry)
		if err != nil {
			return nil, fmt.Errorf("constituency %s: %w", id, err)
		}
		layer.byID[id] = len(layer.Features)
		layer.Features = append(layer.Features, Constituency{
			ID:    id,
			Name:  propString(f, ConstituencyNameKeys),
			Shape: shape,
			Label: shape.LabelPoint(),
		})
		layer.Bounds = layer.Bounds.Union(shape.Bounds)
	}
	layer.sortByID()
	return layer, nil
}

func (l *ConstituencyLayer) sortByID() {
	ids := make([]string, len(l.Features))
	byID := make(map[string]Constituency, len(l.Features))
	for i, f := range l.Features {
		ids[i] = f.ID
		byID[f.ID] = f
	}
	model.SortIDs(ids)
	for i, id := range ids {
		l.Features[i] = byID[id]
		l.byID[id] = i
	}
}

// Find returns the district whose name matches case-insensitively.
func (l *DistrictLayer) Find(name string) (*District, bool) {
	if l == nil {
		return nil, false
	}
	idx, ok := l.byName[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, false
	}
	return &l.Features[idx], true
}

// At returns the district containing p.
func (l *DistrictLayer) At(p Point) (*District, bool) {
	if l == nil {
		return nil, false
	}
	for i := range l.Features {
		if l.Features[i].Shape.Contains(p) {
			return &l.Features[i], true
		}
	}
	return nil, false
}

// Lookup returns the constituency with the given id.
func (l *ConstituencyLayer) Lookup(id string) (*Constituency, bool) {
	if l == nil {
		return nil, false
	}
	idx, ok := l.byID[id]
	if !ok {
		return nil, false
	}
	return &l.Features[idx], true
}

// At returns the constituency containing p.
func (l *ConstituencyLayer) At(p Point) (*Constituency, bool) {
	if l == nil {
		return nil, false
	}
	for i := range l.Features {
		if l.Features[i].Shape.Contains(p) {
			return &l.Features[i], true
		}
	}
	return nil, false
}

func propString(f *geojson.Feature, keys []string) string {
	for _, k := range keys {
		v, ok := f.Properties[k]
		if !ok || v == nil {
			continue
		}
		if s := scalarString(v); s != "" {
			return s
		}
	}
	return ""
}

// scalarString renders a property value; numeric ids become plain decimal
// strings so 5 and "5" address the same constituency.
func scalarString(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		if t == math.Trunc(t) {
			return strconv.FormatInt(int64(t), 10)
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case fmt.Stringer:
		return t.String()
	}
	return ""
}

var errNoGeometry = errors.New("feature has no polygon geometry")

func shapeOf(g *geojson.Geometry) (Shape, error) {
	if g == nil {
		return Shape{}, errNoGeometry
	}
	var s Shape
	switch {
	case g.IsPolygon():
		s.Polygons = append(s.Polygons, polygonOf(g.Polygon))
	case g.IsMultiPolygon():
		for _, p := range g.MultiPolygon {
			s.Polygons = append(s.Polygons, polygonOf(p))
		}
	default:
		return Shape{}, fmt.Errorf("%w (got %s)", errNoGeometry, g.Type)
	}
	for _, poly := range s.Polygons {
		if len(poly) == 0 {
			continue
		}
		for _, p := range poly[0] {
			s.Bounds.Extend(p)
		}
	}
	if s.Bounds.Empty() {
		return Shape{}, errNoGeometry
	}
	return s, nil
}

func polygonOf(rings [][][]float64) Polygon {
	poly := make(Polygon, 0, len(rings))
	for _, r := range rings {
		ring := make(Ring, 0, len(r))
		for _, c := range r {
			if len(c) < 2 {
				continue
			}
			ring = append(ring, Point{Lon: c[0], Lat: c[1]})
		}
		poly = append(poly, ring)
	}
	return poly
}
