package session

import (
	"context"
	"fmt"

	"github.com/vanderheijden86/votemap/pkg/model"
	"github.com/vanderheijden86/votemap/pkg/results"
)

// DataSource is what the overlay reads from. results.Store implements it.
type DataSource interface {
	Dataset(ctx context.Context, year int) (*model.ElectionDataset, error)
	WinnerHistory(ctx context.Context, id string) []results.HistoryEntry
}

// CandidateRow is one line of the overlay's candidate table.
type CandidateRow struct {
	Rank int
	model.Candidate
	// Bar is Votes relative to the top vote count, in [0,1].
	Bar float64
}

// YearSection is the part of the overlay that depends on the overlay year.
type YearSection struct {
	// ID is the constituency the section was built for.
	ID         string
	Year       int
	Result     *model.ConstituencyResult
	Candidates []CandidateRow
	Margin     int64
	HasMargin  bool
	MarginPct  float64
	HasMarginP bool
	Turnout    float64
	Electors   int64
	// Err is set when the year's data could not be loaded. The rest of the
	// overlay is still shown.
	Err error
}

// HasResult reports whether the constituency has a result for the year.
func (y YearSection) HasResult() bool { return y.Result != nil }

// Detail is the full content of the overlay for one constituency.
type Detail struct {
	Meta    model.ConstituencyMeta
	History []results.HistoryEntry
	Year    YearSection
}

// LoadDetail builds the overlay content for id at year.
func LoadDetail(ctx context.Context, src DataSource, meta model.MetaSet, id string, year int) (Detail, error) {
	m, ok := meta[id]
	if !ok {
		return Detail{}, fmt.Errorf("detail %q: %w", id, ErrUnknownConstituency)
	}
	if m.ID == "" {
		m.ID = id
	}
	return Detail{
		Meta:    m,
		History: src.WinnerHistory(ctx, id),
		Year:    LoadYearSection(ctx, src, m, year),
	}, nil
}

// LoadYearSection builds only the year-dependent part of the overlay. It
// is used when the overlay's year cursor moves.
func LoadYearSection(ctx context.Context, src DataSource, m model.ConstituencyMeta, year int) YearSection {
	sec := YearSection{ID: m.ID, Year: year}
	ds, err := src.Dataset(ctx, year)
	if err != nil {
		sec.Err = err
		sec.Electors, _ = m.Electors.ForYear(year)
		return sec
	}
	r := ds.Result(m.ID)
	if r == nil {
		sec.Electors, _ = m.Electors.ForYear(year)
		return sec
	}
	sec.Result = r
	sec.Turnout = r.TurnoutPercent
	sec.Electors = r.ElectorCount
	if sec.Electors == 0 {
		sec.Electors, _ = m.Electors.ForYear(year)
	}
	sec.Margin, sec.HasMargin = r.Margin()
	sec.MarginPct, sec.HasMarginP = r.MarginPercent()

	var top int64
	for _, c := range r.Candidates {
		top = max(top, c.Votes)
	}
	sec.Candidates = make([]CandidateRow, len(r.Candidates))
	for i, c := range r.Candidates {
		row := CandidateRow{Rank: i + 1, Candidate: c}
		if top > 0 {
			row.Bar = float64(c.Votes) / float64(top)
		}
		sec.Candidates[i] = row
	}
	return sec
}
