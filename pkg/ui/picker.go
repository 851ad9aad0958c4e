package ui

import (
	"sort"
	"strings"
	"unicode"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vanderheijden86/votemap/pkg/results"
)

// PickerOption is one entry of a picker. The empty Value is the "all"
// entry.
type PickerOption struct {
	Value string
	Label string
}

// PickerModel is a popup select with fuzzy filtering. Changing its value,
// whether by the user or by SetValue, fires the change handler
// synchronously, the way a form control does.
type PickerModel struct {
	title         string
	allLabel      string
	options       []PickerOption
	filtered      []PickerOption
	input         textinput.Model
	selectedIndex int
	value         string
	width         int
	height        int
	theme         Theme
	onChange      func(string) error
}

// NewPickerModel creates a picker. allLabel names the empty-value option;
// when it is empty the picker has no such option.
func NewPickerModel(title, allLabel string, theme Theme) *PickerModel {
	ti := textinput.New()
	ti.Placeholder = "type to filter..."
	ti.CharLimit = 50
	ti.Width = 30
	ti.Focus()

	p := &PickerModel{title: title, allLabel: allLabel, input: ti, theme: theme}
	p.SetOptions(nil)
	return p
}

// OnChange registers the change handler.
func (p *PickerModel) OnChange(fn func(string) error) {
	p.onChange = fn
}

// SetSize updates the popup dimensions.
func (p *PickerModel) SetSize(width, height int) {
	p.width = width
	p.height = height
}

// SetOptions replaces the options. A value no longer offered resets to the
// empty value without firing the change handler.
func (p *PickerModel) SetOptions(opts []PickerOption) {
	p.options = p.options[:0]
	if p.allLabel != "" {
		p.options = append(p.options, PickerOption{Value: "", Label: p.allLabel})
	}
	p.options = append(p.options, opts...)
	if !p.has(p.value) {
		p.value = ""
	}
	p.filter()
}

func (p *PickerModel) has(v string) bool {
	if v == "" {
		return true
	}
	for _, o := range p.options {
		if o.Value == v {
			return true
		}
	}
	return false
}

// Options returns the current options, including the "all" entry.
func (p *PickerModel) Options() []PickerOption {
	return append([]PickerOption(nil), p.options...)
}

// Value returns the selected value.
func (p *PickerModel) Value() string { return p.value }

// Label returns the label of the selected value.
func (p *PickerModel) Label() string {
	for _, o := range p.options {
		if o.Value == p.value {
			return o.Label
		}
	}
	return p.allLabel
}

// SetValue selects v and fires the change handler when the value changed.
// Values that are not offered are ignored.
func (p *PickerModel) SetValue(v string) error {
	if v == p.value || !p.has(v) {
		return nil
	}
	p.value = v
	if p.onChange != nil {
		return p.onChange(v)
	}
	return nil
}

// Open prepares the popup: clears the filter and moves the cursor to the
// current value.
func (p *PickerModel) Open() {
	p.input.SetValue("")
	p.filter()
	for i, o := range p.filtered {
		if o.Value == p.value {
			p.selectedIndex = i
			break
		}
	}
}

// MoveUp moves the cursor up.
func (p *PickerModel) MoveUp() {
	if p.selectedIndex > 0 {
		p.selectedIndex--
	}
}

// MoveDown moves the cursor down.
func (p *PickerModel) MoveDown() {
	if p.selectedIndex < len(p.filtered)-1 {
		p.selectedIndex++
	}
}

// Highlighted returns the option under the cursor.
func (p *PickerModel) Highlighted() (PickerOption, bool) {
	if len(p.filtered) == 0 || p.selectedIndex >= len(p.filtered) {
		return PickerOption{}, false
	}
	return p.filtered[p.selectedIndex], true
}

// Confirm selects the option under the cursor.
func (p *PickerModel) Confirm() error {
	o, ok := p.Highlighted()
	if !ok {
		return nil
	}
	return p.SetValue(o.Value)
}

// UpdateInput forwards a key to the filter input.
func (p *PickerModel) UpdateInput(msg tea.Msg) {
	p.input, _ = p.input.Update(msg)
	p.filter()
}

// FilteredCount returns the number of options matching the filter.
func (p *PickerModel) FilteredCount() int {
	return len(p.filtered)
}

// filter keeps declared order for an empty query and orders by score
// otherwise.
func (p *PickerModel) filter() {
	query := strings.ToLower(strings.TrimSpace(p.input.Value()))
	if query == "" {
		p.filtered = p.options
		p.selectedIndex = min(p.selectedIndex, max(0, len(p.filtered)-1))
		return
	}

	type scored struct {
		opt   PickerOption
		score int
	}
	var matches []scored
	for _, o := range p.options {
		if s := fuzzyScore(o.Label, query); s > 0 {
			matches = append(matches, scored{o, s})
		}
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].score > matches[j].score
	})

	p.filtered = make([]PickerOption, len(matches))
	for i, m := range matches {
		p.filtered[i] = m.opt
	}
	p.selectedIndex = min(p.selectedIndex, max(0, len(p.filtered)-1))
}

// fuzzyScore returns a score for how well query matches label (0 = no match)
// Uses fzf-style scoring: consecutive matches, word boundary bonuses
func fuzzyScore(label, query string) int {
	label = strings.ToLower(label)
	query = strings.ToLower(query)

	if label == query {
		return 1000
	}
	if strings.HasPrefix(label, query) {
		return 500 + len(query)
	}
	if strings.Contains(label, query) {
		return 200 + len(query)
	}

	li, qi := 0, 0
	score := 0
	consecutive := 0
	lastMatchIdx := -1

	for li < len(label) && qi < len(query) {
		if label[li] == query[qi] {
			qi++
			matchScore := 10

			if lastMatchIdx == li-1 {
				consecutive++
				matchScore += consecutive * 5
			} else {
				consecutive = 0
			}

			if li == 0 || !unicode.IsLetter(rune(label[li-1])) {
				matchScore += 15
			}

			score += matchScore
			lastMatchIdx = li
		}
		li++
	}

	if qi == len(query) {
		return score
	}
	return 0
}

// View renders the picker popup centered in its area.
func (p *PickerModel) View() string {
	width, height := p.width, p.height
	if width == 0 {
		width = 60
	}
	if height == 0 {
		height = 20
	}
	t := p.theme

	boxWidth := max(25, min(44, width-10))
	maxVisible := 10
	if height < 17 {
		maxVisible = max(3, height-7)
	}

	var lines []string
	lines = append(lines, t.Title.Render(p.title), "")

	inputStyle := t.Renderer.NewStyle().
		Border(lipgloss.NormalBorder()).
		BorderForeground(t.Secondary).
		Padding(0, 1).
		Width(boxWidth - 6)
	lines = append(lines, inputStyle.Render(p.input.View()), "")

	if len(p.filtered) == 0 {
		lines = append(lines, t.MutedText.Italic(true).Render("  No matches"))
	} else {
		start := 0
		if p.selectedIndex >= maxVisible {
			start = p.selectedIndex - maxVisible + 1
		}
		end := min(len(p.filtered), start+maxVisible)

		for i := start; i < end; i++ {
			o := p.filtered[i]
			prefix := "  "
			style := t.Base
			if i == p.selectedIndex {
				prefix = "> "
				style = t.Renderer.NewStyle().Foreground(t.Primary).Bold(true)
			}
			mark := "  "
			if o.Value == p.value {
				mark = "● "
			}
			lines = append(lines, style.Render(prefix+mark+truncateRunesHelper(o.Label, boxWidth-10, "...")))
		}
		if len(p.filtered) > maxVisible {
			lines = append(lines, "", t.MutedText.Italic(true).Render(
				"  ("+itoa(p.selectedIndex+1)+"/"+itoa(len(p.filtered))+")"))
		}
	}

	lines = append(lines, "", t.KeyHint.Italic(true).Render("↑/↓ move  enter select  esc cancel"))

	box := t.Renderer.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.Primary).
		Padding(1, 2).
		Width(boxWidth).
		Render(strings.Join(lines, "\n"))

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box)
}

// itoa is a simple int to string helper
func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	if n < 0 {
		return "-" + itoa(-n)
	}
	var digits []byte
	for n > 0 {
		digits = append([]byte{byte('0' + n%10)}, digits...)
		n /= 10
	}
	return string(digits)
}

// districtPicker adapts a PickerModel to session.DistrictPicker.
type districtPicker struct{ p *PickerModel }

func (d districtPicker) SetDistrict(name string) error { return d.p.SetValue(name) }

// constituencyPicker adapts a PickerModel to session.ConstituencyPicker.
type constituencyPicker struct{ p *PickerModel }

func (c constituencyPicker) SetOptions(items []results.ConstituencyItem) error {
	c.p.SetOptions(constituencyOptions(items))
	return nil
}

func (c constituencyPicker) SetConstituency(id string) error { return c.p.SetValue(id) }

func districtOptions(names []string) []PickerOption {
	opts := make([]PickerOption, len(names))
	for i, n := range names {
		opts[i] = PickerOption{Value: n, Label: n}
	}
	return opts
}

func constituencyOptions(items []results.ConstituencyItem) []PickerOption {
	opts := make([]PickerOption, len(items))
	for i, it := range items {
		opts[i] = PickerOption{Value: it.ID, Label: it.ID + ". " + it.Name}
	}
	return opts
}
