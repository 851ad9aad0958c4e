package ui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vanderheijden86/votemap/pkg/config"
	"github.com/vanderheijden86/votemap/pkg/debug"
	"github.com/vanderheijden86/votemap/pkg/mapview"
	"github.com/vanderheijden86/votemap/pkg/results"
	"github.com/vanderheijden86/votemap/pkg/session"
)

// Layout thresholds
const (
	SidebarThreshold = 100 // below this width the detail replaces the map
	SidebarWidth     = 50
)

// focus represents which UI element has keyboard focus
type focus int

const (
	focusMap focus = iota
	focusOverlay
	focusDistrictPicker
	focusConstituencyPicker
	focusYearPicker
	focusSearch
	focusHelp
)

// Model is the votemap terminal program.
type Model struct {
	cfg   config.Config
	store *results.Store
	theme Theme

	ready bool
	fatal error

	width  int
	height int

	session        *session.Session
	mapCtl         *mapview.Controller
	surface        *MapSurface
	districts      *PickerModel
	constituencies *PickerModel
	years          *PickerModel
	overlay        *OverlayPanel
	search         *SearchPanel
	spinner        spinner.Model

	focus       focus
	initialYear int
	watchCh     <-chan string

	statusMsg     string
	statusIsError bool
}

// NewModel creates the program over store. Nothing is loaded until Init.
func NewModel(store *results.Store, cfg config.Config) Model {
	theme := DefaultTheme(lipgloss.DefaultRenderer())

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = theme.Title

	years := NewPickerModel("Election year", "All years (no results)", theme)
	opts := make([]PickerOption, len(cfg.Years))
	for i, y := range cfg.Years {
		opts[i] = PickerOption{Value: strconv.Itoa(y), Label: strconv.Itoa(y)}
	}
	years.SetOptions(opts)

	return Model{
		cfg:            cfg,
		store:          store,
		theme:          theme,
		width:          120,
		height:         40,
		surface:        NewMapSurface(theme, cfg.Map),
		districts:      NewPickerModel("District", "All Districts", theme),
		constituencies: NewPickerModel("Constituency", "All Constituencies", theme),
		years:          years,
		overlay:        NewOverlayPanel(theme, store.SortedYears()),
		search:         NewSearchPanel(theme, cfg.Search.Debounce, cfg.Search.MinQuery),
		spinner:        sp,
	}
}

// WithYear activates year once the data is loaded.
func (m Model) WithYear(year int) Model {
	m.initialYear = year
	return m
}

// WithWatcher reloads the data whenever a path arrives on changes.
func (m Model) WithWatcher(changes <-chan string) Model {
	m.watchCh = changes
	return m
}

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{bootstrapCmd(m.store), m.spinner.Tick}
	if m.watchCh != nil {
		cmds = append(cmds, WatchFilesCmd(m.watchCh))
	}
	return tea.Batch(cmds...)
}

// Ready reports whether the bootstrap completed.
func (m Model) Ready() bool { return m.ready }

// Fatal returns the bootstrap failure, if any.
func (m Model) Fatal() error { return m.fatal }

// Session returns the viewing session, nil before bootstrap.
func (m Model) Session() *session.Session { return m.session }

// Surface returns the map surface.
func (m Model) Surface() *MapSurface { return m.surface }

// Controller returns the map controller, nil before bootstrap.
func (m Model) Controller() *mapview.Controller { return m.mapCtl }

// Overlay returns the detail panel.
func (m Model) Overlay() *OverlayPanel { return m.overlay }

// Status returns the footer message.
func (m Model) Status() (string, bool) { return m.statusMsg, m.statusIsError }

func (m *Model) setStatus(msg string, isErr bool) {
	m.statusMsg = msg
	m.statusIsError = isErr
}

func (m *Model) reportErr(err error) {
	if err != nil {
		debug.Log("ui: %v", err)
		m.setStatus(err.Error(), true)
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.layout()

	case spinner.TickMsg:
		if !m.ready && m.fatal == nil {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}

	case BootstrapMsg:
		cmds = append(cmds, m.handleBootstrap(msg))

	case YearLoadedMsg:
		if m.session == nil {
			break
		}
		applied, err := m.session.ApplyYear(msg.Token, msg.Year, msg.Dataset, msg.Err)
		switch {
		case err != nil:
			m.reportErr(err)
			m.syncYearPicker()
		case applied:
			m.setStatus(fmt.Sprintf("Showing %d results", msg.Year), false)
			m.syncYearPicker()
		}

	case DetailLoadedMsg:
		if m.session != nil && m.session.Tokens().Current(msg.Token) {
			m.overlay.SetDetail(msg.Detail, msg.Err)
		}

	case SectionLoadedMsg:
		if m.session != nil && m.session.Tokens().Current(msg.Token) {
			m.overlay.SetSection(msg.Section)
		}

	case SearchDebounceMsg:
		if m.session == nil {
			break
		}
		if q, ok := m.search.Due(msg); ok {
			year := m.searchYear()
			tok := m.session.Tokens().Next(session.ChannelSearch)
			cmds = append(cmds, searchCmd(m.store, tok, year, q))
		}

	case SearchResultsMsg:
		if m.session != nil && m.session.Tokens().Current(msg.Token) {
			m.search.SetResults(msg.Query, msg.Year, msg.Matches, msg.Err)
		}

	case DataChangedMsg:
		debug.Log("ui: data changed: %s", msg.Path)
		m.store.Reset()
		m.setStatus("Data changed, reloading...", false)
		cmds = append(cmds, bootstrapCmd(m.store), WatchFilesCmd(m.watchCh))

	case tea.MouseMsg:
		cmds = append(cmds, m.handleMouse(msg))

	case tea.KeyMsg:
		var cmd tea.Cmd
		m, cmd = m.handleKey(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m *Model) handleBootstrap(msg BootstrapMsg) tea.Cmd {
	if msg.Err != nil {
		if m.session == nil {
			m.fatal = msg.Err
			return nil
		}
		m.setStatus("Reload failed: "+msg.Err.Error(), true)
		return nil
	}
	b := msg.Data

	m.surface.SetLayers(b.Districts, b.Constituencies)
	m.districts.SetOptions(districtOptions(results.DistrictList(b.Meta)))

	if m.session != nil {
		m.mapCtl.SetLayers(b.Districts, b.Constituencies)
		m.reportErr(m.session.SetMeta(b.Meta))
		m.overlay.Reload()
		var cmds []tea.Cmd
		if year := m.session.State().Year; year != 0 {
			cmds = append(cmds, m.requestYear(year))
		}
		cmds = append(cmds, m.overlayCmd())
		if !m.statusIsError {
			m.setStatus("Data reloaded", false)
		}
		return tea.Batch(cmds...)
	}

	th := mapview.Thresholds{
		ConstituencyMinZoom: m.cfg.Map.ConstituencyMinZoom,
		LabelMinZoom:        m.cfg.Map.LabelMinZoom,
	}
	m.mapCtl = mapview.NewController(m.surface, th, b.Districts, b.Constituencies)
	m.mapCtl.SetHome(m.surface.Center(), m.surface.Zoom())
	m.mapCtl.Apply()

	m.constituencies.SetOptions(constituencyOptions(results.ConstituencyList(b.Meta, "")))
	m.session = session.New(b.Meta, m.cfg.Years, m.cfg.DefaultYear, session.Surfaces{
		Districts:      districtPicker{m.districts},
		Constituencies: constituencyPicker{m.constituencies},
		Map:            m.mapCtl,
		Overlay:        m.overlay,
	})
	m.districts.OnChange(m.session.DistrictPickerChanged)
	m.constituencies.OnChange(m.session.ConstituencyPickerChanged)

	m.ready = true
	m.layout()
	debug.Log("ui: bootstrap done: %d districts, %d constituencies", len(b.Districts.Features), len(b.Constituencies.Features))

	if m.initialYear != 0 {
		m.years.SetValue(strconv.Itoa(m.initialYear))
		return m.requestYear(m.initialYear)
	}
	return nil
}

func (m *Model) requestYear(year int) tea.Cmd {
	tok := m.session.RequestYear(year)
	m.setStatus(fmt.Sprintf("Loading %d results...", year), false)
	return loadYearCmd(m.store, tok, year)
}

// syncYearPicker shows the applied year in the year picker.
func (m *Model) syncYearPicker() {
	v := ""
	if y := m.session.State().Year; y != 0 {
		v = strconv.Itoa(y)
	}
	m.years.SetValue(v)
}

// searchYear is the year searched: the global year, else the default.
func (m *Model) searchYear() int {
	if y := m.session.State().Year; y != 0 {
		return y
	}
	return m.cfg.DefaultYear
}

// overlayCmd turns a pending overlay request into a load command.
func (m *Model) overlayCmd() tea.Cmd {
	req, ok := m.overlay.TakeRequest()
	if !ok {
		return nil
	}
	tok := m.session.Tokens().Next(session.ChannelOverlay)
	if req.Full {
		return loadDetailCmd(m.store, m.session.Meta(), req.ID, req.Year, tok)
	}
	meta := m.session.Meta()[req.ID]
	meta.ID = req.ID
	return loadSectionCmd(m.store, meta, req.Year, tok)
}

// afterSelection moves focus to the overlay when a selection opened it.
func (m *Model) afterSelection() tea.Cmd {
	if m.overlay.Visible() {
		m.focus = focusOverlay
	} else {
		m.focus = focusMap
	}
	return m.overlayCmd()
}

func (m *Model) sidebarWidth() int {
	if m.width < SidebarThreshold {
		return 0
	}
	return SidebarWidth
}

func (m *Model) bodyHeight() int {
	return max(1, m.height-2)
}

func (m *Model) layout() {
	side := m.sidebarWidth()
	h := m.bodyHeight()
	m.surface.SetSize(m.width-side, h)
	panelW := side
	if side == 0 {
		panelW = m.width
	}
	m.overlay.SetSize(panelW, h)
	m.search.SetSize(panelW, h)
	for _, p := range []*PickerModel{m.districts, m.constituencies, m.years} {
		p.SetSize(m.width, h)
	}
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}
	if m.fatal != nil || !m.ready {
		if key.Matches(msg, keys.Quit) {
			return m, tea.Quit
		}
		return m, nil
	}

	switch m.focus {
	case focusDistrictPicker, focusConstituencyPicker, focusYearPicker:
		return m.handlePickerKeys(msg)
	case focusSearch:
		return m.handleSearchKeys(msg)
	case focusHelp:
		m.focus = m.restoreFocus()
		return m, nil
	case focusOverlay:
		if cmd, handled := m.handleOverlayKeys(msg); handled {
			return m, cmd
		}
	}
	return m.handleMapKeys(msg)
}

func (m *Model) restoreFocus() focus {
	if m.overlay.Visible() {
		return focusOverlay
	}
	return focusMap
}

func (m Model) handleMapKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	m.setStatus("", false)
	switch {
	case key.Matches(msg, keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, keys.Up):
		m.moveCursor(0, -1)
	case key.Matches(msg, keys.Down):
		m.moveCursor(0, 1)
	case key.Matches(msg, keys.Left):
		m.moveCursor(-1, 0)
	case key.Matches(msg, keys.Right):
		m.moveCursor(1, 0)
	case key.Matches(msg, keys.ZoomIn):
		m.zoom(1)
	case key.Matches(msg, keys.ZoomOut):
		m.zoom(-1)
	case key.Matches(msg, keys.Select):
		return m, m.clickAtCursor()
	case key.Matches(msg, keys.District):
		m.openPicker(focusDistrictPicker, m.districts)
	case key.Matches(msg, keys.Constituency):
		m.openPicker(focusConstituencyPicker, m.constituencies)
	case key.Matches(msg, keys.Year):
		m.openPicker(focusYearPicker, m.years)
	case key.Matches(msg, keys.Search):
		m.focus = focusSearch
		return m, m.search.Focus()
	case key.Matches(msg, keys.Reset):
		m.reportErr(m.session.Reset())
		m.focus = focusMap
	case key.Matches(msg, keys.Focus):
		if m.overlay.Visible() {
			m.focus = focusOverlay
		}
	case key.Matches(msg, keys.Close):
		if m.overlay.Visible() {
			m.session.CloseOverlay()
		}
	case key.Matches(msg, keys.Help):
		m.focus = focusHelp
	}
	return m, nil
}

// handleOverlayKeys handles keys specific to the detail panel. Keys it does
// not claim fall through to the map.
func (m *Model) handleOverlayKeys(msg tea.KeyMsg) (tea.Cmd, bool) {
	switch {
	case key.Matches(msg, keys.NextConstituency), key.Matches(msg, keys.PrevConstituency):
		step := m.session.Next
		if key.Matches(msg, keys.PrevConstituency) {
			step = m.session.Previous
		}
		_, err := step()
		m.reportErr(err)
		return m.overlayCmd(), true
	case key.Matches(msg, keys.PrevYear):
		m.session.OverlayPrevYear()
		return m.overlayCmd(), true
	case key.Matches(msg, keys.NextYear):
		m.session.OverlayNextYear()
		return m.overlayCmd(), true
	case key.Matches(msg, keys.ScrollUp):
		m.overlay.ScrollUp()
		return nil, true
	case key.Matches(msg, keys.ScrollDown):
		m.overlay.ScrollDown()
		return nil, true
	case key.Matches(msg, keys.Copy):
		if err := clipboard.WriteAll(m.overlay.Summary()); err != nil {
			m.setStatus(fmt.Sprintf("Clipboard error: %v", err), true)
		} else {
			m.setStatus(fmt.Sprintf("Copied %s to clipboard", m.overlay.ID()), false)
		}
		return nil, true
	case key.Matches(msg, keys.Close):
		m.session.CloseOverlay()
		m.focus = focusMap
		return nil, true
	case key.Matches(msg, keys.Focus):
		m.focus = focusMap
		return nil, true
	}
	return nil, false
}

func (m *Model) openPicker(f focus, p *PickerModel) {
	p.Open()
	m.focus = f
}

func (m *Model) activePicker() *PickerModel {
	switch m.focus {
	case focusDistrictPicker:
		return m.districts
	case focusConstituencyPicker:
		return m.constituencies
	case focusYearPicker:
		return m.years
	}
	return nil
}

func (m Model) handlePickerKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	p := m.activePicker()
	switch msg.String() {
	case "esc":
		m.focus = m.restoreFocus()
	case "up", "ctrl+p":
		p.MoveUp()
	case "down", "ctrl+n":
		p.MoveDown()
	case "enter":
		if m.focus == focusYearPicker {
			return m, m.confirmYear()
		}
		m.reportErr(p.Confirm())
		return m, m.afterSelection()
	default:
		p.UpdateInput(msg)
	}
	return m, nil
}

// confirmYear applies the highlighted year. The picker shows the choice
// at once; it reverts if the load fails.
func (m *Model) confirmYear() tea.Cmd {
	m.focus = m.restoreFocus()
	o, ok := m.years.Highlighted()
	if !ok {
		return nil
	}
	m.years.SetValue(o.Value)
	if o.Value == "" {
		m.session.ClearYear()
		m.setStatus("Year filter cleared", false)
		return nil
	}
	year, err := strconv.Atoi(o.Value)
	if err != nil {
		m.reportErr(err)
		return nil
	}
	return m.requestYear(year)
}

func (m Model) handleSearchKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.search.Blur()
		m.focus = m.restoreFocus()
	case "up", "ctrl+p":
		m.search.MoveUp()
	case "down", "ctrl+n":
		m.search.MoveDown()
	case "enter":
		match, ok := m.search.Selected()
		if !ok {
			return m, nil
		}
		m.search.Blur()
		m.reportErr(m.session.SearchResultChosen(match.ConstituencyID))
		return m, m.afterSelection()
	default:
		return m, m.search.Update(msg)
	}
	return m, nil
}

func (m *Model) handleMouse(msg tea.MouseMsg) tea.Cmd {
	if !m.ready || m.fatal != nil || (m.focus != focusMap && m.focus != focusOverlay) {
		return nil
	}
	col, row := msg.X, msg.Y-1
	switch {
	case msg.Button == tea.MouseButtonWheelUp:
		m.zoom(1)
	case msg.Button == tea.MouseButtonWheelDown:
		m.zoom(-1)
	case msg.Action == tea.MouseActionMotion:
		if m.surface.SetCursor(col, row) {
			m.hoverAtCursor()
		}
	case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft:
		if m.surface.SetCursor(col, row) {
			return m.clickAtCursor()
		}
	}
	return nil
}

func (m *Model) moveCursor(dCols, dRows int) {
	before := m.surface.Center()
	m.surface.MoveCursor(dCols, dRows)
	if m.surface.Center() != before {
		debug.Log("ui: panned to %.3f,%.3f", m.surface.Center().Lat, m.surface.Center().Lon)
	}
	m.hoverAtCursor()
}

func (m *Model) zoom(delta float64) {
	m.surface.ZoomBy(delta)
	m.mapCtl.ZoomChanged(m.surface.Zoom())
	m.hoverAtCursor()
}

// hoverAtCursor moves hover emphasis to whatever is under the crosshair on
// the layer currently accepting pointer events.
func (m *Model) hoverAtCursor() {
	hit := m.surface.HitAtCursor()
	if m.mapCtl.CanInteractConstituencies() {
		m.mapCtl.HoverConstituency(hit.Constituency)
	} else {
		m.mapCtl.HoverConstituency("")
	}
	if m.mapCtl.CanInteractDistricts() {
		m.mapCtl.HoverDistrict(hit.District)
	} else {
		m.mapCtl.HoverDistrict("")
	}
}

func (m *Model) clickAtCursor() tea.Cmd {
	hit := m.surface.HitAtCursor()
	switch {
	case m.mapCtl.CanInteractConstituencies() && hit.Constituency != "":
		m.reportErr(m.session.MapConstituencyClicked(hit.Constituency))
	case m.mapCtl.CanInteractDistricts() && hit.District != "":
		m.reportErr(m.session.MapDistrictClicked(hit.District))
	default:
		return nil
	}
	return m.afterSelection()
}

func (m Model) renderLoadingScreen() string {
	lines := []string{
		m.spinner.View() + " " + m.theme.Title.Render("Loading election map..."),
	}
	if m.cfg.Data.Source != "" {
		lines = append(lines, "", m.theme.MutedText.Render(m.cfg.Data.Source))
	}
	content := lipgloss.JoinVertical(lipgloss.Center, lines...)
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
}

func (m Model) renderFatal() string {
	t := m.theme
	body := strings.Join([]string{
		t.ErrorText.Render("Failed to load election data"),
		"",
		t.Base.Render(m.fatal.Error()),
		"",
		t.KeyHint.Render("q: quit"),
	}, "\n")
	box := t.Renderer.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.Danger).
		Padding(1, 2).
		Width(min(70, max(30, m.width-4))).
		Render(body)
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}

func (m Model) View() string {
	if m.fatal != nil {
		return m.renderFatal()
	}
	if !m.ready {
		return m.renderLoadingScreen()
	}

	var body string
	switch m.focus {
	case focusDistrictPicker, focusConstituencyPicker, focusYearPicker:
		body = m.activePicker().View()
	case focusHelp:
		body = m.renderHelp()
	default:
		body = m.renderMain()
	}
	return lipgloss.JoinVertical(lipgloss.Left, m.renderHeader(), body, m.renderFooter())
}

func (m Model) renderMain() string {
	var side string
	switch {
	case m.focus == focusSearch:
		side = m.search.View()
	case m.overlay.Visible():
		side = m.overlay.View()
	default:
		side = renderLegend(m.surface.Legend(), SidebarWidth, m.theme)
	}

	if m.sidebarWidth() == 0 {
		if m.focus == focusSearch || m.overlay.Visible() {
			return side
		}
		return m.surface.View()
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, m.surface.View(), side)
}

func (m Model) renderHeader() string {
	t := m.theme
	st := m.session.State()

	year := "no year"
	if st.Year != 0 {
		year = strconv.Itoa(st.Year)
	}
	if pending, ok := m.session.PendingYear(); ok {
		year = fmt.Sprintf("loading %d", pending)
	}
	district := "All Districts"
	if st.District != "" {
		district = st.District
	}

	parts := []string{
		t.Header.Render("votemap"),
		"Year: " + year,
		"District: " + district,
		fmt.Sprintf("zoom %.0f", m.surface.Zoom()),
		m.mapCtl.Decision().Phase.String(),
	}
	if hit := m.surface.HitAtCursor(); hit.Constituency != "" && m.mapCtl.CanInteractConstituencies() {
		name := m.session.Meta()[hit.Constituency].Name
		parts = append(parts, t.Title.Render(hit.Constituency+". "+name))
	} else if hit.District != "" && m.mapCtl.CanInteractDistricts() {
		parts = append(parts, t.Title.Render(hit.District))
	}
	return truncate(strings.Join(parts, "  "), m.width)
}

func (m Model) renderFooter() string {
	if m.statusMsg != "" {
		if m.statusIsError {
			return m.theme.ErrorText.Render(truncate(m.statusMsg, m.width))
		}
		return m.theme.MutedText.Render(truncate(m.statusMsg, m.width))
	}
	var hints []string
	for _, b := range keys.ShortHelp() {
		h := b.Help()
		hints = append(hints, h.Key+" "+h.Desc)
	}
	return m.theme.KeyHint.Render(truncate(strings.Join(hints, " • "), m.width))
}

func (m Model) renderHelp() string {
	t := m.theme
	var cols []string
	for _, group := range keys.FullHelp() {
		var lines []string
		for _, b := range group {
			h := b.Help()
			lines = append(lines, t.Title.Render(padRight(h.Key, 8))+" "+h.Desc)
		}
		cols = append(cols, t.Panel.Render(strings.Join(lines, "\n")))
	}
	content := lipgloss.JoinVertical(lipgloss.Left,
		t.Title.Render("Keys"),
		lipgloss.JoinHorizontal(lipgloss.Top, cols...),
		t.MutedText.Render("press any key to close"))
	return lipgloss.Place(m.width, m.bodyHeight(), lipgloss.Center, lipgloss.Center, content)
}
