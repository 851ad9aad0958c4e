package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/goccy/go-json"

	"github.com/vanderheijden86/votemap/pkg/results"
	"github.com/vanderheijden86/votemap/pkg/session"
)

type robotSearchOutput struct {
	GeneratedAt string          `json:"generated_at"`
	Query       string          `json:"query"`
	Year        int             `json:"year"`
	Count       int             `json:"count"`
	Results     []results.Match `json:"results"`
}

type robotHistoryOutput struct {
	GeneratedAt    string                 `json:"generated_at"`
	ConstituencyID string                 `json:"constituency_id"`
	Name           string                 `json:"name"`
	NameLocal      string                 `json:"name_ta,omitempty"`
	District       string                 `json:"district"`
	Type           string                 `json:"type"`
	History        []results.HistoryEntry `json:"history"`
}

type robotSummaryOutput struct {
	GeneratedAt string `json:"generated_at"`
	results.YearSummary
}

// robotNow is replaced in tests.
var robotNow = time.Now

func generatedAt() string {
	return robotNow().UTC().Format(time.RFC3339)
}

func writeRobotJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeRobotSearch(ctx context.Context, w io.Writer, store *results.Store, year int, query string) error {
	matches, err := store.Search(ctx, year, query)
	if err != nil {
		return fmt.Errorf("search %d: %w", year, err)
	}
	if matches == nil {
		matches = []results.Match{}
	}
	return writeRobotJSON(w, robotSearchOutput{
		GeneratedAt: generatedAt(),
		Query:       query,
		Year:        year,
		Count:       len(matches),
		Results:     matches,
	})
}

func writeRobotHistory(ctx context.Context, w io.Writer, store *results.Store, id string) error {
	meta, err := store.Meta(ctx)
	if err != nil {
		return err
	}
	m, ok := meta[id]
	if !ok {
		return fmt.Errorf("constituency %q: %w", id, session.ErrUnknownConstituency)
	}
	history := store.WinnerHistory(ctx, id)
	if history == nil {
		history = []results.HistoryEntry{}
	}
	return writeRobotJSON(w, robotHistoryOutput{
		GeneratedAt:    generatedAt(),
		ConstituencyID: id,
		Name:           m.Name,
		NameLocal:      m.NameLocal,
		District:       m.District,
		Type:           m.TypeOrDefault(),
		History:        history,
	})
}

func writeRobotSummary(ctx context.Context, w io.Writer, store *results.Store, year int) error {
	ds, err := store.Dataset(ctx, year)
	if err != nil {
		return err
	}
	return writeRobotJSON(w, robotSummaryOutput{
		GeneratedAt: generatedAt(),
		YearSummary: results.Summarize(ds),
	})
}
