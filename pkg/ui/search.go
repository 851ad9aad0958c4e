package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/vanderheijden86/votemap/pkg/results"
)

// SearchDebounceMsg fires when typing has paused. Seq identifies the
// keystroke that scheduled it; only the latest one runs a query.
type SearchDebounceMsg struct {
	Seq int
}

// SearchPanel is the candidate search box and its result list.
type SearchPanel struct {
	theme    Theme
	input    textinput.Model
	debounce time.Duration
	minQuery int

	seq      int
	query    string
	year     int
	loading  bool
	matches  []results.Match
	selected int
	err      error

	width  int
	height int
}

// NewSearchPanel creates a search panel.
func NewSearchPanel(theme Theme, debounce time.Duration, minQuery int) *SearchPanel {
	ti := textinput.New()
	ti.Placeholder = "candidate name..."
	ti.CharLimit = 60
	ti.Width = 30
	ti.Prompt = "/ "
	if minQuery <= 0 {
		minQuery = results.MinQueryLen
	}
	return &SearchPanel{theme: theme, input: ti, debounce: debounce, minQuery: minQuery}
}

// Focus activates the input.
func (s *SearchPanel) Focus() tea.Cmd { return s.input.Focus() }

// Blur deactivates the input.
func (s *SearchPanel) Blur() { s.input.Blur() }

// SetSize sets the panel size.
func (s *SearchPanel) SetSize(width, height int) {
	s.width, s.height = width, height
	s.input.Width = max(10, width-8)
}

// Update forwards a key to the input. When the text changed it schedules a
// debounce tick; earlier ticks become stale.
func (s *SearchPanel) Update(msg tea.Msg) tea.Cmd {
	before := s.input.Value()
	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	if s.input.Value() == before {
		return cmd
	}
	s.seq++
	seq := s.seq
	tick := tea.Tick(s.debounce, func(time.Time) tea.Msg { return SearchDebounceMsg{Seq: seq} })
	return tea.Batch(cmd, tick)
}

// Due reports whether msg is the latest debounce tick and returns the query
// to run. Queries below the minimum length clear the results instead.
func (s *SearchPanel) Due(msg SearchDebounceMsg) (string, bool) {
	if msg.Seq != s.seq {
		return "", false
	}
	q := strings.TrimSpace(s.input.Value())
	if len([]rune(q)) < s.minQuery {
		s.SetResults("", 0, nil, nil)
		return "", false
	}
	s.loading = true
	return q, true
}

// Value returns the current input text.
func (s *SearchPanel) Value() string { return s.input.Value() }

// SetValue replaces the input text without scheduling a query.
func (s *SearchPanel) SetValue(v string) { s.input.SetValue(v) }

// Seq returns the latest keystroke sequence number.
func (s *SearchPanel) Seq() int { return s.seq }

// SetResults installs the matches for query in year.
func (s *SearchPanel) SetResults(query string, year int, matches []results.Match, err error) {
	s.loading = false
	s.query = query
	s.year = year
	s.matches = matches
	s.err = err
	s.selected = 0
}

// Matches returns the results shown.
func (s *SearchPanel) Matches() []results.Match { return s.matches }

// MoveUp moves the result cursor up.
func (s *SearchPanel) MoveUp() {
	if s.selected > 0 {
		s.selected--
	}
}

// MoveDown moves the result cursor down.
func (s *SearchPanel) MoveDown() {
	if s.selected < len(s.matches)-1 {
		s.selected++
	}
}

// Selected returns the match under the cursor.
func (s *SearchPanel) Selected() (results.Match, bool) {
	if s.selected < 0 || s.selected >= len(s.matches) {
		return results.Match{}, false
	}
	return s.matches[s.selected], true
}

// View renders the search box and results.
func (s *SearchPanel) View() string {
	t := s.theme
	w := max(20, s.width-4)
	lines := []string{t.Title.Render("Search candidates"), s.input.View(), ""}

	switch {
	case s.err != nil:
		lines = append(lines, t.ErrorText.Render("Search failed: "+s.err.Error()))
	case s.loading:
		lines = append(lines, t.MutedText.Render("Searching..."))
	case s.query == "":
		lines = append(lines, t.MutedText.Render(fmt.Sprintf("Type at least %d characters", s.minQuery)))
	case len(s.matches) == 0:
		lines = append(lines, t.MutedText.Render(fmt.Sprintf("No candidates matching %q in %d", s.query, s.year)))
	default:
		lines = append(lines, t.MutedText.Render(fmt.Sprintf("%d matches in %d", len(s.matches), s.year)))
		visible := max(3, s.height-6)
		start := 0
		if s.selected >= visible {
			start = s.selected - visible + 1
		}
		end := min(len(s.matches), start+visible)
		nameW := max(8, w-34)
		for i := start; i < end; i++ {
			m := s.matches[i]
			prefix := "  "
			if i == s.selected {
				prefix = "> "
			}
			mark := " "
			if m.Winner {
				mark = "★"
			}
			line := fmt.Sprintf("%s%s %s %s %9s  %s",
				prefix, mark,
				padRight(truncate(m.Name, nameW), nameW),
				t.PartyText(m.Party, padRight(truncate(m.Party, 7), 7)),
				formatIndian(m.Votes),
				truncate(m.ConstituencyID+". "+m.ConstituencyName, 18))
			if i == s.selected {
				line = t.Selected.Render(line)
			}
			lines = append(lines, line)
		}
	}
	lines = append(lines, "", t.KeyHint.Render("↑/↓: select  enter: open  esc: close"))
	return t.Panel.Width(max(10, s.width-2)).Render(strings.Join(lines, "\n"))
}
