//go:build ignore
// +build ignore

// generate_testdata.go creates synthetic data directories for trying the
// map without the real boundary files, and for benchmarking.
// Usage: go run scripts/generate_testdata.go
//
// Creates:
//   testdata/synthetic/small/   (4 districts, 12 constituencies)
//   testdata/synthetic/medium/  (38 districts, 234 constituencies)
//   testdata/synthetic/large/   (100 districts, 1000 constituencies)
//
// Run votemap against one with: votemap --data testdata/synthetic/medium
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/vanderheijden86/votemap/pkg/testutil"
)

type datasetSpec struct {
	name        string
	districts   int
	perDistrict int
}

var datasets = []datasetSpec{
	{"small", 4, 3},
	{"medium", 38, 6},
	{"large", 100, 10},
}

func main() {
	outputDir := "testdata/synthetic"

	for i, ds := range datasets {
		fmt.Printf("Generating %s dataset (%d constituencies)...\n", ds.name, ds.districts*ds.perDistrict)

		cfg := testutil.DefaultConfig()
		cfg.Seed = int64(i + 1) // Reproducible per-size
		cfg.Districts = ds.districts
		cfg.PerDistrict = ds.perDistrict
		cfg.Years = []int{2021, 2016, 2011}
		if ds.districts > 20 {
			// Keep the grid roughly the size of the state.
			cfg.CellSize = 6.0 / float64(ds.districts)
		}

		f := testutil.New(cfg).Generate()
		dir := filepath.Join(outputDir, ds.name)
		if err := f.WriteDir(dir); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to write %s: %v\n", dir, err)
			os.Exit(1)
		}
		fmt.Printf("  Written %s (%d districts)\n", dir, len(f.DistrictNames))
	}

	fmt.Println("\nDone! Synthetic datasets created in", outputDir)
}
