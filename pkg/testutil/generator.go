// Package testutil generates synthetic election data for tests and
// benchmarks. All generators produce deterministic output for a given seed.
package testutil

import (
	"fmt"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	json "github.com/goccy/go-json"
	geojson "github.com/paulmach/go.geojson"

	"github.com/vanderheijden86/votemap/pkg/config"
	"github.com/vanderheijden86/votemap/pkg/model"
)

// GeneratorConfig controls fixture generation.
type GeneratorConfig struct {
	Seed        int64 // Random seed for determinism (0 = use 42)
	Districts   int   // Number of districts (default: 4)
	PerDistrict int   // Constituencies per district (default: 3)
	Candidates  int   // Candidates per constituency (default: 4)
	Years       []int // Election years (default: 2021, 2016)
	Parties     []string

	// OriginLat/OriginLon is the south-west corner of the grid.
	OriginLat float64
	OriginLon float64
	// CellSize is the side of one constituency square, in degrees.
	CellSize float64
}

// DefaultConfig returns a config suitable for most tests.
func DefaultConfig() GeneratorConfig {
	return GeneratorConfig{
		Seed:        42,
		Districts:   4,
		PerDistrict: 3,
		Candidates:  4,
		Years:       []int{2021, 2016},
		Parties:     []string{"DMK", "AIADMK", "INC", "BJP", "PMK", "NTK"},
		OriginLat:   10,
		OriginLon:   77,
		CellSize:    0.25,
	}
}

// Fixture is a complete synthetic data directory held in memory.
//
// Districts form columns left to right; each column holds PerDistrict
// constituency squares stacked south to north. Constituency ids run
// from 1 in district-major order.
type Fixture struct {
	DistrictNames  []string
	Districts      *geojson.FeatureCollection
	Constituencies *geojson.FeatureCollection
	Meta           model.MetaSet
	Elections      map[int]model.RawElection
}

// Generator creates fixtures.
type Generator struct {
	cfg GeneratorConfig
	rng *rand.Rand
}

// New creates a Generator, filling unset config fields from DefaultConfig.
func New(cfg GeneratorConfig) *Generator {
	def := DefaultConfig()
	if cfg.Seed == 0 {
		cfg.Seed = def.Seed
	}
	if cfg.Districts <= 0 {
		cfg.Districts = def.Districts
	}
	if cfg.PerDistrict <= 0 {
		cfg.PerDistrict = def.PerDistrict
	}
	if cfg.Candidates <= 0 {
		cfg.Candidates = def.Candidates
	}
	if len(cfg.Years) == 0 {
		cfg.Years = def.Years
	}
	if len(cfg.Parties) == 0 {
		cfg.Parties = def.Parties
	}
	if cfg.CellSize <= 0 {
		cfg.CellSize = def.CellSize
	}
	if cfg.OriginLat == 0 && cfg.OriginLon == 0 {
		cfg.OriginLat, cfg.OriginLon = def.OriginLat, def.OriginLon
	}
	return &Generator{cfg: cfg, rng: rand.New(rand.NewSource(cfg.Seed))}
}

// NewDefault creates a Generator with default config.
func NewDefault() *Generator {
	return New(DefaultConfig())
}

// Config returns the effective configuration.
func (g *Generator) Config() GeneratorConfig {
	return g.cfg
}

var (
	placeHeads = []string{"Tiru", "Kanchi", "Vel", "Madu", "Sengal", "Kara", "Nila", "Ponn", "Arak", "Koda"}
	placeTails = []string{"patti", "puram", "nagar", "kottai", "palayam", "kudi", "malai", "ur"}
	givenNames = []string{"Anbu", "Bharathi", "Chezhiyan", "Devi", "Elango", "Kannan", "Lakshmi", "Murugan", "Nandini", "Selvam", "Tamilarasi", "Vetri"}
	initials   = "ACGKMPRSTV"
)

// Generate builds a new fixture. Calling it twice on the same Generator
// yields different data; two Generators with equal configs yield equal data.
func (g *Generator) Generate() *Fixture {
	cfg := g.cfg
	f := &Fixture{
		Districts:      geojson.NewFeatureCollection(),
		Constituencies: geojson.NewFeatureCollection(),
		Meta:           make(model.MetaSet),
		Elections:      make(map[int]model.RawElection, len(cfg.Years)),
	}
	for _, year := range cfg.Years {
		f.Elections[year] = model.RawElection{
			Year:           year,
			Constituencies: make(map[string]model.RawConstituency),
		}
	}

	id := 0
	seen := make(map[string]bool, cfg.Districts)
	for d := 0; d < cfg.Districts; d++ {
		district := g.placeName(d)
		for try := 0; seen[district]; try++ {
			if try == 20 {
				district = fmt.Sprintf("%s %d", district, d+1)
				break
			}
			district = g.placeName(d + try)
		}
		seen[district] = true
		f.DistrictNames = append(f.DistrictNames, district)

		west := cfg.OriginLon + float64(d)*cfg.CellSize
		dist := geojson.NewPolygonFeature(square(cfg.OriginLat, west, float64(cfg.PerDistrict)*cfg.CellSize, cfg.CellSize))
		dist.SetProperty("district", district)
		f.Districts.AddFeature(dist)

		for row := 0; row < cfg.PerDistrict; row++ {
			id++
			key := strconv.Itoa(id)
			name := g.placeName(id + cfg.Districts)
			south := cfg.OriginLat + float64(row)*cfg.CellSize

			c := geojson.NewPolygonFeature(square(south, west, cfg.CellSize, cfg.CellSize))
			c.SetProperty("id", key)
			c.SetProperty("name", name)
			f.Constituencies.AddFeature(c)

			electors := model.Electors{ByYear: make(map[int]int64, len(cfg.Years))}
			for _, year := range cfg.Years {
				electors.ByYear[year] = 150000 + g.rng.Int63n(150000)
			}
			f.Meta[key] = model.ConstituencyMeta{ID: key, Name: name, District: district, Electors: electors}

			for _, year := range cfg.Years {
				n, _ := electors.ForYear(year)
				f.Elections[year].Constituencies[key] = g.result(name, district, n)
			}
		}
	}
	return f
}

func (g *Generator) placeName(i int) string {
	head := placeHeads[(i+g.rng.Intn(len(placeHeads)))%len(placeHeads)]
	tail := placeTails[g.rng.Intn(len(placeTails))]
	return head + tail
}

func (g *Generator) result(name, district string, electors int64) model.RawConstituency {
	cfg := g.cfg
	votes := make([]int64, cfg.Candidates)
	var total int64
	for i := range votes {
		votes[i] = 1000 + g.rng.Int63n(electors/int64(cfg.Candidates+1))
		total += votes[i]
	}
	sort.Slice(votes, func(i, j int) bool { return votes[i] > votes[j] })

	parties := g.rng.Perm(len(cfg.Parties))
	cands := make([]model.Candidate, cfg.Candidates)
	for i := range cands {
		cands[i] = model.Candidate{
			Name:      fmt.Sprintf("%c. %s", initials[g.rng.Intn(len(initials))], givenNames[g.rng.Intn(len(givenNames))]),
			Party:     cfg.Parties[parties[i%len(parties)]],
			Votes:     votes[i],
			VoteShare: round2(float64(votes[i]) * 100 / float64(total)),
		}
	}
	cands[0].Winner = true
	if len(cands) > 1 {
		m := votes[0] - votes[1]
		mp := round2(float64(m) * 100 / float64(total))
		cands[0].Margin = &m
		cands[0].MarginPercent = &mp
	}

	return model.RawConstituency{
		Name:           name,
		District:       district,
		Type:           "GEN",
		TotalVotes:     total,
		Electors:       model.Electors{Total: electors},
		TurnoutPercent: round2(float64(total) * 100 / float64(electors)),
		NumCandidates:  len(cands),
		Candidates:     cands,
	}
}

// square returns a closed counter-clockwise ring in GeoJSON lon/lat order.
func square(south, west, height, width float64) [][][]float64 {
	north, east := south+height, west+width
	return [][][]float64{{
		{west, south}, {east, south}, {east, north}, {west, north}, {west, south},
	}}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// WriteDir writes the fixture under dir using the default data file names.
func (f *Fixture) WriteDir(dir string) error {
	data := config.DefaultConfig().Data
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	files := map[string]any{
		data.Metadata: f.Meta,
	}
	for year, raw := range f.Elections {
		files[fmt.Sprintf(data.ElectionPattern, year)] = raw
	}
	for name, v := range files {
		body, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return fmt.Errorf("encode %s: %w", name, err)
		}
		if err := os.WriteFile(filepath.Join(dir, name), body, 0o644); err != nil {
			return err
		}
	}

	for name, fc := range map[string]*geojson.FeatureCollection{
		data.Districts:      f.Districts,
		data.Constituencies: f.Constituencies,
	} {
		body, err := fc.MarshalJSON()
		if err != nil {
			return fmt.Errorf("encode %s: %w", name, err)
		}
		if err := os.WriteFile(filepath.Join(dir, name), body, 0o644); err != nil {
			return err
		}
	}
	return nil
}
