package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/vanderheijden86/votemap/internal/etl"
	"github.com/vanderheijden86/votemap/pkg/config"
	"github.com/vanderheijden86/votemap/pkg/version"
)

func main() {
	in := flag.String("in", "", "Results CSV to convert (e.g. data/2021_results.csv)")
	outDir := flag.String("out", "data", "Directory to write the JSON files into")
	year := flag.Int("year", 0, "Election year (default: taken from the CSV file name)")
	noMeta := flag.Bool("no-meta", false, "Do not write the constituency metadata file")
	versionFlag := flag.Bool("version", false, "Show version")
	flag.Parse()

	if *versionFlag {
		fmt.Printf("votemap-etl %s\n", version.Version)
		os.Exit(0)
	}
	if *in == "" && flag.NArg() > 0 {
		*in = flag.Arg(0)
	}
	if *in == "" {
		fmt.Fprintln(os.Stderr, "Usage: votemap-etl -in RESULTS.csv [-out DIR] [-year YEAR]")
		flag.PrintDefaults()
		os.Exit(2)
	}
	if *year == 0 {
		y, ok := etl.YearFromPath(*in)
		if !ok {
			fmt.Fprintf(os.Stderr, "Error: cannot infer the year from %s; pass -year\n", filepath.Base(*in))
			os.Exit(2)
		}
		*year = y
	}

	if err := run(*in, *outDir, *year, !*noMeta); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(in, outDir string, year int, writeMeta bool) error {
	f, err := os.Open(in)
	if err != nil {
		return err
	}
	defer f.Close()

	rows, err := etl.ReadRows(f)
	if err != nil {
		return fmt.Errorf("%s: %w", in, err)
	}
	fmt.Printf("Parsed %d candidate rows\n", len(rows))

	out := etl.Convert(rows, year)
	fmt.Printf("Processed %d constituencies", len(out.Election.Constituencies))
	if out.Skipped > 0 {
		fmt.Printf(" (%d rows without a constituency number skipped)", out.Skipped)
	}
	fmt.Println()

	files := config.DefaultConfig().Data
	electionPath := filepath.Join(outDir, fmt.Sprintf(files.ElectionPattern, year))
	if err := etl.WriteJSON(electionPath, out.Election); err != nil {
		return err
	}
	fmt.Printf("Wrote %s\n", electionPath)

	if writeMeta {
		metaPath := filepath.Join(outDir, files.Metadata)
		if err := etl.WriteJSON(metaPath, out.Meta); err != nil {
			return err
		}
		fmt.Printf("Wrote %s\n", metaPath)
	}
	return nil
}
