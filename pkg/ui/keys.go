package ui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Up      key.Binding
	Down    key.Binding
	Left    key.Binding
	Right   key.Binding
	ZoomIn  key.Binding
	ZoomOut key.Binding
	Select  key.Binding

	District     key.Binding
	Constituency key.Binding
	Year         key.Binding
	Search       key.Binding
	Reset        key.Binding
	Focus        key.Binding

	NextConstituency key.Binding
	PrevConstituency key.Binding
	NextYear         key.Binding
	PrevYear         key.Binding
	ScrollUp         key.Binding
	ScrollDown       key.Binding
	Copy             key.Binding
	Close            key.Binding

	Help key.Binding
	Quit key.Binding
}

// ShortHelp is shown in the footer.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Select, k.District, k.Constituency, k.Year, k.Search, k.Reset, k.Help, k.Quit}
}

// FullHelp is shown on the help screen, one column per group.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Left, k.Right, k.ZoomIn, k.ZoomOut, k.Select},
		{k.District, k.Constituency, k.Year, k.Search, k.Reset, k.Focus},
		{k.NextConstituency, k.PrevConstituency, k.PrevYear, k.NextYear, k.ScrollUp, k.ScrollDown, k.Copy, k.Close},
		{k.Help, k.Quit},
	}
}

var keys = keyMap{
	Up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "move up")),
	Down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "move down")),
	Left:    key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "move left")),
	Right:   key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "move right")),
	ZoomIn:  key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "zoom in")),
	ZoomOut: key.NewBinding(key.WithKeys("-", "_"), key.WithHelp("-", "zoom out")),
	Select:  key.NewBinding(key.WithKeys("enter", " "), key.WithHelp("enter", "select")),

	District:     key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "district")),
	Constituency: key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "constituency")),
	Year:         key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "election year")),
	Search:       key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
	Reset:        key.NewBinding(key.WithKeys("r", "b"), key.WithHelp("r", "back to overview")),
	Focus:        key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "map/detail focus")),

	NextConstituency: key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "next constituency")),
	PrevConstituency: key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "previous constituency")),
	NextYear:         key.NewBinding(key.WithKeys("right", "l", "]"), key.WithHelp("→", "next year")),
	PrevYear:         key.NewBinding(key.WithKeys("left", "h", "["), key.WithHelp("←", "previous year")),
	ScrollUp:         key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑", "scroll up")),
	ScrollDown:       key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓", "scroll down")),
	Copy:             key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy summary")),
	Close:            key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "close")),

	Help: key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
	Quit: key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}
