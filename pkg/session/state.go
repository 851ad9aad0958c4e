// Package session holds the state of one viewing session and keeps the map,
// the district and constituency pickers, and the detail overlay consistent
// with each other.
//
// All methods run on the UI event loop. Asynchronous loads are issued
// elsewhere and come back through ApplyYear or a Token check, so late
// results never overwrite a newer request.
package session

import "fmt"

// Surface identifies where a selection came from.
type Surface int

const (
	SurfaceMap Surface = iota
	SurfaceDistrictPicker
	SurfaceConstituencyPicker
	SurfaceSearch
	SurfaceNavigation
)

func (s Surface) String() string {
	switch s {
	case SurfaceMap:
		return "map"
	case SurfaceDistrictPicker:
		return "district-picker"
	case SurfaceConstituencyPicker:
		return "constituency-picker"
	case SurfaceSearch:
		return "search"
	case SurfaceNavigation:
		return "navigation"
	}
	return fmt.Sprintf("Surface(%d)", int(s))
}

// ViewState is the session's current selection. Zero values mean "none".
type ViewState struct {
	Year           int
	District       string
	ConstituencyID string
	// OverlayYear is set only while the detail overlay is open.
	OverlayYear int
}

// HasYear reports whether a global year filter is active.
func (v ViewState) HasYear() bool { return v.Year != 0 }
