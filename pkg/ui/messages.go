package ui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vanderheijden86/votemap/pkg/debug"
	"github.com/vanderheijden86/votemap/pkg/model"
	"github.com/vanderheijden86/votemap/pkg/results"
	"github.com/vanderheijden86/votemap/pkg/session"
)

// loadTimeout bounds a single background load.
const loadTimeout = 30 * time.Second

// BootstrapMsg carries the startup load.
type BootstrapMsg struct {
	Data *results.Bootstrap
	Err  error
}

// YearLoadedMsg carries a global year load.
type YearLoadedMsg struct {
	Token   session.Token
	Year    int
	Dataset *model.ElectionDataset
	Err     error
}

// DetailLoadedMsg carries a full overlay load.
type DetailLoadedMsg struct {
	Token  session.Token
	Detail session.Detail
	Err    error
}

// SectionLoadedMsg carries an overlay year section reload.
type SectionLoadedMsg struct {
	Token   session.Token
	Section session.YearSection
}

// SearchResultsMsg carries search matches.
type SearchResultsMsg struct {
	Token   session.Token
	Query   string
	Year    int
	Matches []results.Match
	Err     error
}

// DataChangedMsg reports that a watched data file changed.
type DataChangedMsg struct {
	Path string
}

func bootstrapCmd(store *results.Store) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()
		b, err := store.Bootstrap(ctx)
		return BootstrapMsg{Data: b, Err: err}
	}
}

func loadYearCmd(store *results.Store, tok session.Token, year int) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()
		ds, err := store.Dataset(ctx, year)
		return YearLoadedMsg{Token: tok, Year: year, Dataset: ds, Err: err}
	}
}

func loadDetailCmd(src session.DataSource, meta model.MetaSet, id string, year int, tok session.Token) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()
		d, err := session.LoadDetail(ctx, src, meta, id, year)
		return DetailLoadedMsg{Token: tok, Detail: d, Err: err}
	}
}

func loadSectionCmd(src session.DataSource, m model.ConstituencyMeta, year int, tok session.Token) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()
		return SectionLoadedMsg{Token: tok, Section: session.LoadYearSection(ctx, src, m, year)}
	}
}

func searchCmd(store *results.Store, tok session.Token, year int, query string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()
		matches, err := store.Search(ctx, year, query)
		return SearchResultsMsg{Token: tok, Query: query, Year: year, Matches: matches, Err: err}
	}
}

// WatchFilesCmd waits for the next change reported on changes.
func WatchFilesCmd(changes <-chan string) tea.Cmd {
	if changes == nil {
		return nil
	}
	return func() tea.Msg {
		path, ok := <-changes
		if !ok {
			debug.Log("ui: watcher channel closed")
			return nil
		}
		return DataChangedMsg{Path: path}
	}
}
