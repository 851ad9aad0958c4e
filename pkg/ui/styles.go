package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Spacing constants for consistent layout (in characters)
const (
	SpaceXS = 1
	SpaceSM = 2
	SpaceMD = 3
)

var (
	ColorMuted       = lipgloss.AdaptiveColor{Light: "#666666", Dark: "#6272A4"}
	ColorBgHighlight = lipgloss.AdaptiveColor{Light: "#D0D0D0", Dark: "#44475A"}

	// Reservation badges
	ColorTypeGEN = lipgloss.AdaptiveColor{Light: "#555555", Dark: "#6272A4"}
	ColorTypeSC  = lipgloss.AdaptiveColor{Light: "#B06800", Dark: "#FFB86C"}
	ColorTypeST  = lipgloss.AdaptiveColor{Light: "#007700", Dark: "#50FA7B"}
)

// RenderTypeBadge renders the reservation category of a constituency.
func RenderTypeBadge(typ string) string {
	bg := ColorTypeGEN
	switch strings.ToUpper(typ) {
	case "SC":
		bg = ColorTypeSC
	case "ST":
		bg = ColorTypeST
	case "":
		typ = "GEN"
	}
	return lipgloss.NewStyle().
		Background(bg).
		Foreground(lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: "#282A36"}).
		Bold(true).
		Padding(0, 1).
		Render(strings.ToUpper(typ))
}

// RenderVoteBar renders a horizontal bar for a value between 0 and 1 in
// the given hex color.
func RenderVoteBar(value float64, width int, hex string, t Theme) string {
	if width <= 0 {
		return ""
	}
	value = max(0, min(1, value))
	filled := min(width, int(value*float64(width)+0.5))
	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	return t.Renderer.NewStyle().Foreground(ThemeFg(hex)).Render(bar)
}

// RenderDivider renders a horizontal divider line
func RenderDivider(width int) string {
	if width <= 0 {
		return ""
	}
	return lipgloss.NewStyle().
		Foreground(ColorBgHighlight).
		Render(strings.Repeat("─", width))
}

// RenderSubtleDivider renders a more subtle divider using dots
func RenderSubtleDivider(width int) string {
	if width <= 0 {
		return ""
	}
	return lipgloss.NewStyle().
		Foreground(ColorMuted).
		Render(strings.Repeat("·", width))
}
