package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/vanderheijden86/votemap/pkg/debug"
	"github.com/vanderheijden86/votemap/pkg/results"
	"github.com/vanderheijden86/votemap/pkg/session"
)

// DetailRequest asks the program to load overlay content. Full requests
// load the whole detail; otherwise only the year section is reloaded.
type DetailRequest struct {
	ID   string
	Year int
	Full bool
}

// OverlayPanel is the constituency detail panel. It implements
// session.OverlayPresenter: showing records a load request that the
// program turns into a command, since the presenter itself cannot block.
type OverlayPanel struct {
	theme    Theme
	viewport viewport.Model
	md       *glamour.TermRenderer

	visible bool
	id      string
	year    int
	years   []int

	loading bool
	pending *DetailRequest
	// fullInFlight is set while a full detail load is outstanding. Until it
	// lands, follow-up requests must stay full.
	fullInFlight bool

	detail session.Detail
	err    error

	width  int
	height int
}

var _ session.OverlayPresenter = (*OverlayPanel)(nil)

// NewOverlayPanel creates a hidden overlay.
func NewOverlayPanel(theme Theme, years []int) *OverlayPanel {
	md, _ := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(50),
	)
	return &OverlayPanel{
		theme:    theme,
		viewport: viewport.New(50, 20),
		md:       md,
		years:    years,
	}
}

// ShowOverlay opens the panel on id at year. A year change only needs the
// section when the loaded detail already belongs to id; anything else
// needs the full detail.
func (o *OverlayPanel) ShowOverlay(id string, year int) {
	full := !o.visible || id != o.id || o.err != nil ||
		o.detail.Meta.ID != id || o.fullInFlight
	o.visible = true
	o.id, o.year = id, year
	o.loading = true
	if o.pending != nil && o.pending.Full {
		full = true
	}
	o.pending = &DetailRequest{ID: id, Year: year, Full: full}
	o.refresh()
}

// HideOverlay closes the panel and drops any pending request.
func (o *OverlayPanel) HideOverlay() {
	o.visible = false
	o.pending = nil
	o.fullInFlight = false
	o.loading = false
	o.id = ""
	o.detail = session.Detail{}
	o.err = nil
}

// Reload requests the full detail again, e.g. after the data changed.
func (o *OverlayPanel) Reload() {
	if !o.visible {
		return
	}
	o.loading = true
	o.pending = &DetailRequest{ID: o.id, Year: o.year, Full: true}
}

// TakeRequest returns and clears the pending load request.
func (o *OverlayPanel) TakeRequest() (DetailRequest, bool) {
	if o.pending == nil {
		return DetailRequest{}, false
	}
	req := *o.pending
	o.pending = nil
	if req.Full {
		o.fullInFlight = true
	}
	return req, true
}

// SetDetail installs a loaded detail. A detail for a constituency other
// than the one shown is ignored.
func (o *OverlayPanel) SetDetail(d session.Detail, err error) {
	if err == nil && d.Meta.ID != o.id {
		debug.Log("ui: dropped detail for %s, showing %s", d.Meta.ID, o.id)
		return
	}
	o.loading = false
	o.fullInFlight = false
	o.err = err
	if err == nil {
		o.detail = d
	}
	o.refresh()
}

// SetSection installs a reloaded year section. Sections for another
// constituency, or arriving before the detail they belong to, are ignored.
func (o *OverlayPanel) SetSection(sec session.YearSection) {
	if sec.ID != o.id || o.detail.Meta.ID != o.id {
		debug.Log("ui: dropped %d section for %s, showing %s", sec.Year, sec.ID, o.id)
		return
	}
	o.loading = false
	o.detail.Year = sec
	o.refresh()
}

// Visible reports whether the panel is shown.
func (o *OverlayPanel) Visible() bool { return o.visible }

// ID returns the constituency shown.
func (o *OverlayPanel) ID() string { return o.id }

// Year returns the overlay year shown.
func (o *OverlayPanel) Year() int { return o.year }

// Loading reports whether a load is outstanding.
func (o *OverlayPanel) Loading() bool { return o.loading }

// Detail returns the loaded detail.
func (o *OverlayPanel) Detail() session.Detail { return o.detail }

// SetSize sets the outer panel size.
func (o *OverlayPanel) SetSize(width, height int) {
	o.width, o.height = width, height
	o.viewport.Width = max(10, width-4)
	o.viewport.Height = max(3, height-4)
	o.refresh()
}

// ScrollUp scrolls the panel content.
func (o *OverlayPanel) ScrollUp() { o.viewport.ScrollUp(1) }

// ScrollDown scrolls the panel content.
func (o *OverlayPanel) ScrollDown() { o.viewport.ScrollDown(1) }

func (o *OverlayPanel) refresh() {
	o.viewport.SetContent(o.content())
}

func (o *OverlayPanel) content() string {
	t := o.theme
	if o.err != nil {
		return t.ErrorText.Render("Could not load constituency "+o.id) + "\n" +
			t.MutedText.Render(o.err.Error())
	}
	if o.detail.Meta.ID == "" {
		return t.MutedText.Render("Loading constituency " + o.id + "...")
	}

	m := o.detail.Meta
	w := max(20, o.viewport.Width)
	var lines []string

	lines = append(lines, RenderTypeBadge(m.TypeOrDefault())+" "+t.Title.Render(m.ID+". "+m.Name))
	if m.NameLocal != "" {
		lines = append(lines, t.Base.Render(m.NameLocal))
	}
	lines = append(lines, t.MutedText.Render(m.District+" district"))
	if m.SubRegion != "" {
		lines = append(lines, t.MutedText.Render(m.SubRegion))
	}
	if m.RegisteredVoters > 0 {
		lines = append(lines, t.MutedText.Render("Registered voters: "+formatIndian(m.RegisteredVoters)))
	}

	lines = append(lines, "", o.yearNav())
	lines = append(lines, o.sectionLines(w)...)

	if len(o.detail.History) > 0 {
		lines = append(lines, "", RenderSubtleDivider(w), t.Title.Render("Winner history"))
		for _, h := range o.detail.History {
			margin := "margin N/A"
			if h.Margin != nil {
				margin = "margin " + formatIndian(*h.Margin)
			}
			lines = append(lines, fmt.Sprintf("%d  %s %s  %s",
				h.Year,
				t.PartyBadge(h.Winner.Party),
				truncate(h.Winner.Name, max(8, w-30)),
				t.MutedText.Render(margin)))
		}
	}

	if m.Description != "" {
		desc := m.Description
		if o.md != nil {
			if md, err := o.md.Render(desc); err == nil {
				desc = strings.TrimSpace(md)
			}
		}
		lines = append(lines, "", RenderSubtleDivider(w), t.Title.Render("About"), desc)
	}
	return strings.Join(lines, "\n")
}

func (o *OverlayPanel) yearNav() string {
	t := o.theme
	prev, next := "◀", "▶"
	if len(o.years) == 0 || o.year <= o.years[0] {
		prev = t.MutedText.Render(prev)
	}
	if len(o.years) == 0 || o.year >= o.years[len(o.years)-1] {
		next = t.MutedText.Render(next)
	}
	label := t.Title.Render(fmt.Sprintf("%d", o.year))
	if o.loading {
		label += t.MutedText.Render(" loading...")
	}
	return prev + " " + label + " " + next
}

func (o *OverlayPanel) sectionLines(w int) []string {
	t := o.theme
	sec := o.detail.Year
	if sec.Year != o.year {
		return nil
	}
	if sec.Err != nil {
		return []string{t.ErrorText.Render(fmt.Sprintf("Results for %d unavailable", sec.Year))}
	}
	if !sec.HasResult() {
		lines := []string{t.MutedText.Render(fmt.Sprintf("No results for %d", sec.Year))}
		if sec.Electors > 0 {
			lines = append(lines, "Electors: "+formatIndian(sec.Electors))
		}
		return lines
	}

	margin := "N/A"
	if sec.HasMargin {
		margin = formatIndian(sec.Margin)
		if sec.HasMarginP {
			margin += " (" + formatPercent(sec.MarginPct) + ")"
		}
	}
	electors := "N/A"
	if sec.Electors > 0 {
		electors = formatIndian(sec.Electors)
	}
	lines := []string{
		"Margin:   " + margin,
		"Turnout:  " + formatPercent(sec.Turnout),
		"Electors: " + electors,
		"",
	}

	nameW := max(8, w-36)
	for _, c := range sec.Candidates {
		name := padRight(truncate(c.Name, nameW), nameW)
		if c.Winner {
			name = t.Renderer.NewStyle().Bold(true).Render(name)
		}
		flags := ""
		if c.Incumbent {
			flags += "*"
		}
		if c.DepositLost {
			flags += "†"
		}
		lines = append(lines, fmt.Sprintf("%2d %s %s %9s %6s %s%s",
			c.Rank,
			name,
			t.PartyText(c.Party, padRight(truncate(c.Party, 7), 7)),
			formatIndian(c.Votes),
			formatPercent(c.VoteShare),
			RenderVoteBar(c.Bar, 8, results.PartyColor(c.Party), t),
			flags))
	}
	return lines
}

// View renders the panel.
func (o *OverlayPanel) View() string {
	if !o.visible {
		return ""
	}
	hint := o.theme.KeyHint.Render("n/p: constituency  ←/→: year  y: copy  esc: close")
	body := lipgloss.JoinVertical(lipgloss.Left, o.viewport.View(), hint)
	return o.theme.Focused.Width(max(10, o.width-2)).Render(body)
}

// Summary is the plain-text overlay content placed on the clipboard.
func (o *OverlayPanel) Summary() string {
	m := o.detail.Meta
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s. %s (%s), %s district\n", m.ID, m.Name, m.TypeOrDefault(), m.District)
	sec := o.detail.Year
	if r := sec.Result; r != nil && r.Winner != nil {
		fmt.Fprintf(&sb, "%d winner: %s (%s), %s votes\n", sec.Year, r.Winner.Name, r.Winner.Party, formatIndian(r.Winner.Votes))
		if sec.HasMargin {
			fmt.Fprintf(&sb, "Margin: %s\n", formatIndian(sec.Margin))
		}
		fmt.Fprintf(&sb, "Turnout: %s\n", formatPercent(sec.Turnout))
	}
	for _, h := range o.detail.History {
		fmt.Fprintf(&sb, "%d: %s (%s)\n", h.Year, h.Winner.Name, h.Winner.Party)
	}
	return sb.String()
}
