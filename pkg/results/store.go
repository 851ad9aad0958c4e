package results

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/vanderheijden86/votemap/pkg/debug"
	"github.com/vanderheijden86/votemap/pkg/geo"
	"github.com/vanderheijden86/votemap/pkg/metrics"
	"github.com/vanderheijden86/votemap/pkg/model"
	"github.com/vanderheijden86/votemap/pkg/resource"
)

// ErrNoYear is returned when a dataset is requested without a year.
var ErrNoYear = errors.New("no election year selected")

// Options configures a Store.
type Options struct {
	// Years lists the known election years in declared order.
	Years []int

	Districts       string
	Constituencies  string
	Metadata        string
	ElectionPattern string // fmt pattern with one %d for the year

	SearchLimit int
}

// Store is the session's data layer. It owns one resource cache per
// resource kind, so every file is fetched and transformed at most once
// until Reset.
type Store struct {
	opts Options

	districts      *resource.Cache[*geo.DistrictLayer]
	constituencies *resource.Cache[*geo.ConstituencyLayer]
	meta           *resource.Cache[model.MetaSet]
	elections      *resource.Cache[*model.ElectionDataset]
}

// NewStore wires caches that retrieve through f.
func NewStore(f resource.Fetcher, opts Options) *Store {
	s := &Store{opts: opts}
	s.districts = resource.NewCache("districts", resource.FetchDecode(f, geo.ParseDistricts))
	s.constituencies = resource.NewCache("constituencies", resource.FetchDecode(f, geo.ParseConstituencies))
	s.meta = resource.NewCache("metadata", resource.FetchDecode(f, decodeMeta))
	s.elections = resource.NewCache("elections", func(ctx context.Context, key string) (*model.ElectionDataset, error) {
		year, err := strconv.Atoi(key)
		if err != nil {
			return nil, fmt.Errorf("election cache key %q: %w", key, err)
		}
		load := resource.FetchDecode(f, resource.JSON[model.RawElection])
		raw, err := load(ctx, s.ElectionFile(year))
		if err != nil {
			return nil, err
		}
		if raw.Year == 0 {
			raw.Year = year
		}
		start := time.Now()
		ds := DeriveDataset(raw)
		debug.LogTiming(fmt.Sprintf("results: derive %d (%d constituencies)", year, len(ds.IDs)), time.Since(start))
		return ds, nil
	})
	return s
}

func decodeMeta(data []byte) (model.MetaSet, error) {
	set, err := resource.JSON[model.MetaSet](data)
	if err != nil {
		return nil, err
	}
	set.Normalize()
	return set, nil
}

// ElectionFile returns the resource name of year's dataset.
func (s *Store) ElectionFile(year int) string {
	return fmt.Sprintf(s.opts.ElectionPattern, year)
}

// Years returns the known years in declared order.
func (s *Store) Years() []int {
	return append([]int(nil), s.opts.Years...)
}

// SortedYears returns the known years ascending.
func (s *Store) SortedYears() []int {
	ys := s.Years()
	sort.Ints(ys)
	return ys
}

// DistrictLayer returns the district geometry.
func (s *Store) DistrictLayer(ctx context.Context) (*geo.DistrictLayer, error) {
	return s.districts.Get(ctx, s.opts.Districts)
}

// ConstituencyLayer returns the constituency geometry.
func (s *Store) ConstituencyLayer(ctx context.Context) (*geo.ConstituencyLayer, error) {
	return s.constituencies.Get(ctx, s.opts.Constituencies)
}

// Meta returns the constituency metadata.
func (s *Store) Meta(ctx context.Context) (model.MetaSet, error) {
	return s.meta.Get(ctx, s.opts.Metadata)
}

// Dataset returns the derived dataset for year, loading it on first use.
func (s *Store) Dataset(ctx context.Context, year int) (*model.ElectionDataset, error) {
	if year == 0 {
		return nil, ErrNoYear
	}
	return s.elections.Get(ctx, strconv.Itoa(year))
}

// CachedDataset returns year's dataset only if it is already loaded.
func (s *Store) CachedDataset(year int) (*model.ElectionDataset, bool) {
	return s.elections.Peek(strconv.Itoa(year))
}

// Bootstrap is everything the map needs before first render.
type Bootstrap struct {
	Districts      *geo.DistrictLayer
	Constituencies *geo.ConstituencyLayer
	Meta           model.MetaSet
}

// Bootstrap loads both geometry layers and the metadata in parallel. Any
// failure aborts the whole bootstrap.
func (s *Store) Bootstrap(ctx context.Context) (*Bootstrap, error) {
	defer debug.LogEnterExit("results.Bootstrap")()

	var b Bootstrap
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		b.Districts, err = s.DistrictLayer(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		b.Constituencies, err = s.ConstituencyLayer(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		b.Meta, err = s.Meta(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("bootstrap: %w", err)
	}
	return &b, nil
}

// HistoryEntry is one year of a constituency's winner history.
type HistoryEntry struct {
	Year    int             `json:"year"`
	Winner  model.Candidate `json:"winner"`
	Margin  *int64          `json:"margin,omitempty"`
	Turnout float64         `json:"turnout"`
}

// WinnerHistory collects id's winner for every known year, in declared
// year order. Years whose dataset fails to load, or that lack the
// constituency, are skipped. It never fails. Without a runner-up the
// margin is the winner's votes.
func (s *Store) WinnerHistory(ctx context.Context, id string) []HistoryEntry {
	defer metrics.Timer(metrics.History)()

	years := s.opts.Years
	slots := make([]*HistoryEntry, len(years))

	var g errgroup.Group
	g.SetLimit(4)
	for i, year := range years {
		g.Go(func() error {
			ds, err := s.Dataset(ctx, year)
			if err != nil {
				debug.Log("history: no data for %d: %v", year, err)
				return nil
			}
			r := ds.Result(id)
			if r == nil || r.Winner == nil {
				return nil
			}
			// An unopposed winner's margin is their whole vote.
			m, ok := r.Margin()
			if !ok {
				m = r.Winner.Votes
			}
			slots[i] = &HistoryEntry{Year: year, Winner: *r.Winner, Margin: &m, Turnout: r.TurnoutPercent}
			return nil
		})
	}
	_ = g.Wait()

	out := make([]HistoryEntry, 0, len(years))
	for _, e := range slots {
		if e != nil {
			out = append(out, *e)
		}
	}
	return out
}

// Search runs SearchCandidates against year's dataset. A zero year or a
// too-short query returns nil without loading anything.
func (s *Store) Search(ctx context.Context, year int, query string) ([]Match, error) {
	if year == 0 || len([]rune(query)) < MinQueryLen {
		return nil, nil
	}
	ds, err := s.Dataset(ctx, year)
	if err != nil {
		return nil, err
	}
	return SearchCandidates(ds, query, s.opts.SearchLimit), nil
}

// Reset drops every cached resource. Only a full data reload calls it.
func (s *Store) Reset() {
	s.districts.Clear()
	s.constituencies.Clear()
	s.meta.Clear()
	s.elections.Clear()
}
