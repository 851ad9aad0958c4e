package mapview

import (
	"github.com/vanderheijden86/votemap/pkg/model"
	"github.com/vanderheijden86/votemap/pkg/results"
)

// Style is the paint applied to one feature.
type Style struct {
	Color       string // stroke
	Weight      float64
	Opacity     float64
	FillColor   string
	FillOpacity float64
}

const (
	DistrictColor            = "#6366f1"
	ConstituencyDefaultColor = "#8b5cf6"
	BorderColor              = "#ffffff"
)

// DistrictStyle returns the district paint for mode.
func DistrictStyle(mode DistrictMode) Style {
	s := Style{Color: DistrictColor, Weight: 2, FillColor: DistrictColor}
	switch mode {
	case DistrictOpaque:
		s.Opacity, s.FillOpacity = 1, 0.3
	case DistrictDimmed:
		s.Opacity, s.FillOpacity = 0.3, 0.1
	case DistrictHidden:
		s.Opacity, s.FillOpacity = 0, 0
	}
	return s
}

// ConstituencyBase is the un-emphasized constituency paint. When colored is
// set and r has a winner, the fill is the winner's party color.
func ConstituencyBase(r *model.ConstituencyResult, colored bool) Style {
	s := Style{
		Color:       BorderColor,
		Weight:      1,
		Opacity:     0.6,
		FillColor:   ConstituencyDefaultColor,
		FillOpacity: 0.3,
	}
	if colored && r != nil && r.Winner != nil {
		s.FillColor = results.PartyColor(r.Winner.Party)
		s.FillOpacity = 0.6
	}
	return s
}

// Selected is the emphasis for the selected constituency.
func Selected(base Style) Style {
	base.Weight = 4
	base.Color = BorderColor
	base.Opacity = 1
	base.FillOpacity = 0.8
	return base
}

// Hovered is the transient emphasis under the pointer.
func Hovered(base Style) Style {
	base.Weight = 3
	base.Opacity = 1
	base.FillOpacity = 0.7
	return base
}
