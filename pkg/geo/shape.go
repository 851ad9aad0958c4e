// Package geo decodes the district and constituency boundary layers and
// answers the few geometric questions the map needs: bounds for fitting the
// viewport and point-in-polygon hit testing for picking a feature.
package geo

import "math"

// Point is a WGS84 coordinate.
type Point struct {
	Lat float64
	Lon float64
}

// Bounds is an axis-aligned lat/lon box. The zero value is empty.
type Bounds struct {
	MinLat, MinLon float64
	MaxLat, MaxLon float64
	set            bool
}

// NewBounds returns the box spanning the two corners.
func NewBounds(a, b Point) Bounds {
	var bb Bounds
	bb.Extend(a)
	bb.Extend(b)
	return bb
}

// Empty reports whether no point has been added.
func (b Bounds) Empty() bool { return !b.set }

// Extend grows b to include p.
func (b *Bounds) Extend(p Point) {
	if !b.set {
		b.MinLat, b.MaxLat = p.Lat, p.Lat
		b.MinLon, b.MaxLon = p.Lon, p.Lon
		b.set = true
		return
	}
	b.MinLat = math.Min(b.MinLat, p.Lat)
	b.MaxLat = math.Max(b.MaxLat, p.Lat)
	b.MinLon = math.Min(b.MinLon, p.Lon)
	b.MaxLon = math.Max(b.MaxLon, p.Lon)
}

// Union returns the smallest box containing b and o.
func (b Bounds) Union(o Bounds) Bounds {
	if o.Empty() {
		return b
	}
	if b.Empty() {
		return o
	}
	b.Extend(Point{o.MinLat, o.MinLon})
	b.Extend(Point{o.MaxLat, o.MaxLon})
	return b
}

// Center returns the midpoint of b.
func (b Bounds) Center() Point {
	return Point{Lat: (b.MinLat + b.MaxLat) / 2, Lon: (b.MinLon + b.MaxLon) / 2}
}

// Contains reports whether p lies inside b, edges included.
func (b Bounds) Contains(p Point) bool {
	return b.set && p.Lat >= b.MinLat && p.Lat <= b.MaxLat && p.Lon >= b.MinLon && p.Lon <= b.MaxLon
}

// Span returns the latitude and longitude extent of b.
func (b Bounds) Span() (dLat, dLon float64) {
	return b.MaxLat - b.MinLat, b.MaxLon - b.MinLon
}

// Ring is a closed sequence of points.
type Ring []Point

// Polygon is an outer ring followed by zero or more holes.
type Polygon []Ring

// Shape is the geometry of one feature, possibly several polygons.
type Shape struct {
	Polygons []Polygon
	Bounds   Bounds
}

// Contains reports whether p falls inside any polygon of s, outside holes.
func (s Shape) Contains(p Point) bool {
	if !s.Bounds.Contains(p) {
		return false
	}
	for _, poly := range s.Polygons {
		if polygonContains(poly, p) {
			return true
		}
	}
	return false
}

func polygonContains(poly Polygon, p Point) bool {
	if len(poly) == 0 || !ringContains(poly[0], p) {
		return false
	}
	for _, hole := range poly[1:] {
		if ringContains(hole, p) {
			return false
		}
	}
	return true
}

// ringContains is the even-odd ray casting test.
func ringContains(ring Ring, p Point) bool {
	n := len(ring)
	if n < 3 {
		return false
	}
	inside := false
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		a, b := ring[i], ring[j]
		if (a.Lat > p.Lat) != (b.Lat > p.Lat) &&
			p.Lon < (b.Lon-a.Lon)*(p.Lat-a.Lat)/(b.Lat-a.Lat)+a.Lon {
			inside = !inside
		}
	}
	return inside
}

// LabelPoint returns a point suitable for anchoring a label: the centroid
// of the largest polygon's outer ring, or the bounds center if that point
// falls outside the shape.
func (s Shape) LabelPoint() Point {
	var best Ring
	bestArea := 0.0
	for _, poly := range s.Polygons {
		if len(poly) == 0 {
			continue
		}
		if a := math.Abs(ringArea(poly[0])); a > bestArea {
			best, bestArea = poly[0], a
		}
	}
	if bestArea > 0 {
		if c := ringCentroid(best); s.Contains(c) {
			return c
		}
	}
	return s.Bounds.Center()
}

func ringArea(r Ring) float64 {
	var sum float64
	for i, j := 0, len(r)-1; i < len(r); j, i = i, i+1 {
		sum += r[j].Lon*r[i].Lat - r[i].Lon*r[j].Lat
	}
	return sum / 2
}

func ringCentroid(r Ring) Point {
	a := ringArea(r)
	if a == 0 {
		var b Bounds
		for _, p := range r {
			b.Extend(p)
		}
		return b.Center()
	}
	var cx, cy float64
	for i, j := 0, len(r)-1; i < len(r); j, i = i, i+1 {
		f := r[j].Lon*r[i].Lat - r[i].Lon*r[j].Lat
		cx += (r[j].Lon + r[i].Lon) * f
		cy += (r[j].Lat + r[i].Lat) * f
	}
	return Point{Lat: cy / (6 * a), Lon: cx / (6 * a)}
}
