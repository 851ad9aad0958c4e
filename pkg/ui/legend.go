package ui

import (
	"fmt"
	"strings"

	"github.com/vanderheijden86/votemap/pkg/mapview"
)

// renderLegend draws the results legend. It returns "" when the legend is
// hidden.
func renderLegend(l mapview.Legend, width int, t Theme) string {
	if !l.Visible {
		return ""
	}
	inner := max(12, width-4)

	lines := []string{t.Title.Render(fmt.Sprintf("Results %d", l.Year))}
	for _, e := range l.Parties {
		swatch := t.Renderer.NewStyle().Foreground(ThemeFg(e.Color)).Render("██")
		lines = append(lines, swatch+" "+e.Label)
	}

	if len(l.Alliances) > 0 {
		lines = append(lines, "", t.Title.Render("Seats"))
		for _, a := range l.Alliances {
			name := padRight(truncate(a.Name, inner-5), inner-5)
			lines = append(lines, fmt.Sprintf("%s %4d", name, a.Seats))
		}
	}
	return t.Panel.Width(max(10, width-2)).Render(strings.Join(lines, "\n"))
}
