package testutil

import (
	"context"
	"math"
	"reflect"
	"testing"
	"time"

	"github.com/vanderheijden86/votemap/pkg/geo"
	"github.com/vanderheijden86/votemap/pkg/resource"
	"github.com/vanderheijden86/votemap/pkg/results"
)

func TestGenerateDeterministic(t *testing.T) {
	a := NewDefault().Generate()
	b := NewDefault().Generate()

	if !reflect.DeepEqual(a.DistrictNames, b.DistrictNames) {
		t.Errorf("district names differ: %v vs %v", a.DistrictNames, b.DistrictNames)
	}
	if !reflect.DeepEqual(a.Meta, b.Meta) {
		t.Error("metadata differs between equal seeds")
	}
	if !reflect.DeepEqual(a.Elections, b.Elections) {
		t.Error("elections differ between equal seeds")
	}

	c := New(GeneratorConfig{Seed: 7}).Generate()
	if reflect.DeepEqual(a.Elections, c.Elections) {
		t.Error("different seeds produced identical elections")
	}
}

func TestGenerateSizes(t *testing.T) {
	tests := []struct {
		name                 string
		cfg                  GeneratorConfig
		districts, per, cand int
		years                int
	}{
		{"defaults", GeneratorConfig{}, 4, 3, 4, 2},
		{"single", GeneratorConfig{Districts: 1, PerDistrict: 1, Candidates: 2, Years: []int{2011}}, 1, 1, 2, 1},
		{"wide", GeneratorConfig{Districts: 12, PerDistrict: 5, Years: []int{2021, 2016, 2011}}, 12, 5, 4, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := New(tt.cfg).Generate()
			if len(f.DistrictNames) != tt.districts || len(f.Districts.Features) != tt.districts {
				t.Errorf("districts = %d names, %d features, want %d", len(f.DistrictNames), len(f.Districts.Features), tt.districts)
			}
			seen := make(map[string]bool)
			for _, n := range f.DistrictNames {
				if seen[n] {
					t.Errorf("duplicate district %q", n)
				}
				seen[n] = true
			}
			want := tt.districts * tt.per
			if len(f.Meta) != want || len(f.Constituencies.Features) != want {
				t.Errorf("constituencies = %d meta, %d features, want %d", len(f.Meta), len(f.Constituencies.Features), want)
			}
			if len(f.Elections) != tt.years {
				t.Fatalf("elections = %d, want %d", len(f.Elections), tt.years)
			}
			for year, raw := range f.Elections {
				if raw.Year != year || len(raw.Constituencies) != want {
					t.Errorf("election %d: year %d, %d constituencies", year, raw.Year, len(raw.Constituencies))
				}
				for id, rc := range raw.Constituencies {
					if len(rc.Candidates) != tt.cand {
						t.Errorf("%d/%s: %d candidates, want %d", year, id, len(rc.Candidates), tt.cand)
					}
				}
			}
		})
	}
}

func TestGeneratedGeometryNests(t *testing.T) {
	f := NewDefault().Generate()
	dBody, err := f.Districts.MarshalJSON()
	if err != nil {
		t.Fatal(err)
	}
	cBody, err := f.Constituencies.MarshalJSON()
	if err != nil {
		t.Fatal(err)
	}
	districts, err := geo.ParseDistricts(dBody)
	if err != nil {
		t.Fatal(err)
	}
	constituencies, err := geo.ParseConstituencies(cBody)
	if err != nil {
		t.Fatal(err)
	}

	for _, c := range constituencies.Features {
		d, ok := districts.At(c.Label)
		if !ok {
			t.Errorf("constituency %s label %+v outside every district", c.ID, c.Label)
			continue
		}
		if want := f.Meta[c.ID].District; d.Name != want {
			t.Errorf("constituency %s lies in %q, meta says %q", c.ID, d.Name, want)
		}
	}
}

func TestGeneratedDatasetsDerive(t *testing.T) {
	f := NewDefault().Generate()
	for year, raw := range f.Elections {
		ds := results.DeriveDataset(raw)
		AssertDatasetConsistent(t, ds)
		for _, id := range ds.IDs {
			r := ds.Result(id)
			if r.Winner != &r.Candidates[0] {
				t.Errorf("%d/%s: winner is not the first candidate", year, id)
			}
			var share float64
			for _, c := range r.Candidates {
				share += c.VoteShare
			}
			if math.Abs(share-100) > 0.05 {
				t.Errorf("%d/%s: vote shares sum to %v", year, id, share)
			}
			if r.ElectorCount == 0 || r.TurnoutPercent <= 0 || r.TurnoutPercent > 100 {
				t.Errorf("%d/%s: electors %d, turnout %v", year, id, r.ElectorCount, r.TurnoutPercent)
			}
		}
	}
}

func TestWriteDirLoadsThroughStore(t *testing.T) {
	gen := NewDefault()
	f := gen.Generate()
	dir := WriteDataDir(t, f)

	store := results.NewStore(resource.NewFetcher(dir, time.Second), results.Options{
		Years:           gen.Config().Years,
		Districts:       "tn-districts.geojson",
		Constituencies:  "tn-constituencies.geojson",
		Metadata:        "constituencies.json",
		ElectionPattern: "elections-%d.json",
		SearchLimit:     10,
	})
	ctx := context.Background()

	b, err := store.Bootstrap(ctx)
	if err != nil {
		t.Fatalf("Bootstrap: %v", err)
	}
	if len(b.Meta) != 12 || len(b.Districts.Features) != 4 || len(b.Constituencies.Features) != 12 {
		t.Errorf("bootstrap sizes: meta %d, districts %d, constituencies %d",
			len(b.Meta), len(b.Districts.Features), len(b.Constituencies.Features))
	}
	if got := b.Meta["1"].District; got != f.DistrictNames[0] {
		t.Errorf("meta 1 district = %q, want %q", got, f.DistrictNames[0])
	}

	ds, err := store.Dataset(ctx, 2021)
	if err != nil {
		t.Fatalf("Dataset: %v", err)
	}
	AssertDatasetConsistent(t, ds)

	hist := store.WinnerHistory(ctx, "5")
	if len(hist) != 2 || hist[0].Year != 2021 || hist[1].Year != 2016 {
		t.Fatalf("history = %+v, want 2021 then 2016", hist)
	}
	if hist[0].Winner.Name != f.Elections[2021].Constituencies["5"].Candidates[0].Name {
		t.Errorf("history winner = %q", hist[0].Winner.Name)
	}
}
