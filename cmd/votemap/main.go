package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime/pprof"
	"strconv"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"golang.org/x/term"

	"github.com/vanderheijden86/votemap/pkg/config"
	"github.com/vanderheijden86/votemap/pkg/debug"
	"github.com/vanderheijden86/votemap/pkg/export"
	"github.com/vanderheijden86/votemap/pkg/metrics"
	"github.com/vanderheijden86/votemap/pkg/resource"
	"github.com/vanderheijden86/votemap/pkg/results"
	"github.com/vanderheijden86/votemap/pkg/ui"
	"github.com/vanderheijden86/votemap/pkg/version"
	"github.com/vanderheijden86/votemap/pkg/watcher"
)

// cliTimeout bounds the loads of a non-interactive run.
const cliTimeout = 2 * time.Minute

func main() {
	// .env values feed VOTEMAP_* lookups below; a missing file is fine.
	_ = godotenv.Load()

	cpuProfile := flag.String("cpu-profile", "", "Write CPU profile to file")
	help := flag.Bool("help", false, "Show help")
	versionFlag := flag.Bool("version", false, "Show version")
	dataFlag := flag.String("data", "", "Data directory or http(s) base URL (overrides config)")
	configFlag := flag.String("config", "", "Config file (default $XDG_CONFIG_HOME/votemap/config.yaml)")
	yearFlag := flag.Int("year", 0, "Election year to color the map by")
	noWatch := flag.Bool("no-watch", false, "Do not reload when local data files change")
	robotSearch := flag.String("robot-search", "", "Search candidates by name and print JSON (uses --year)")
	robotHistory := flag.String("robot-history", "", "Print the winner history of a constituency id as JSON")
	robotSummary := flag.Bool("robot-summary", false, "Print seat and margin statistics for --year as JSON")
	exportMap := flag.String("export-map", "", "Render the constituency map to an .svg or .png file (uses --year)")
	exportSQLite := flag.String("export-sqlite", "", "Write metadata and every available year to a SQLite database")
	flag.Parse()

	if *cpuProfile != "" {
		f, err := os.Create(*cpuProfile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Could not create CPU profile: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			fmt.Fprintf(os.Stderr, "Could not start CPU profile: %v\n", err)
			os.Exit(1)
		}
		defer pprof.StopCPUProfile()
	}

	if *help {
		fmt.Println("Usage: votemap [options]")
		fmt.Println("\nAn interactive map of Tamil Nadu assembly election results.")
		flag.PrintDefaults()
		os.Exit(0)
	}

	if *versionFlag {
		fmt.Printf("votemap %s\n", version.Version)
		os.Exit(0)
	}

	cfg, err := loadConfig(*configFlag, *dataFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}
	if *noWatch {
		cfg.Watch.Enabled = false
	}
	if *yearFlag != 0 && !knownYear(cfg.Years, *yearFlag) {
		fmt.Fprintf(os.Stderr, "Error: --year %d is not one of the configured years %v\n", *yearFlag, cfg.Years)
		os.Exit(2)
	}

	if metrics.ReportRequested() {
		defer metrics.WriteReport(os.Stderr)
	}

	store := newStore(cfg)
	ctx, cancel := context.WithTimeout(context.Background(), cliTimeout)
	defer cancel()

	var runErr error
	switch {
	case *robotSearch != "":
		runErr = writeRobotSearch(ctx, os.Stdout, store, yearOrDefault(*yearFlag, cfg), *robotSearch)
	case *robotHistory != "":
		runErr = writeRobotHistory(ctx, os.Stdout, store, *robotHistory)
	case *robotSummary:
		runErr = writeRobotSummary(ctx, os.Stdout, store, yearOrDefault(*yearFlag, cfg))
	case *exportMap != "":
		runErr = exportMapSnapshot(ctx, store, cfg, *exportMap, *yearFlag)
		if runErr == nil {
			fmt.Fprintf(os.Stderr, "Wrote %s\n", *exportMap)
		}
	case *exportSQLite != "":
		runErr = exportDatabase(ctx, store, cfg, *exportSQLite)
	default:
		cancel()
		runErr = runTUI(store, cfg, *yearFlag)
	}
	if runErr != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", runErr)
		if metrics.ReportRequested() {
			metrics.WriteReport(os.Stderr)
		}
		os.Exit(1)
	}
}

// loadConfig reads path, or the default location (VOTEMAP_CONFIG, then
// XDG) when path is empty, and applies environment overrides and --data.
func loadConfig(path, data string) (config.Config, error) {
	var (
		cfg config.Config
		err error
	)
	if path != "" {
		cfg, err = config.LoadFrom(path)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return cfg, err
	}
	cfg.ApplyEnv()
	if data != "" {
		cfg.Data.Source = data
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func newStore(cfg config.Config) *results.Store {
	return results.NewStore(resource.NewFetcher(cfg.Data.Source, cfg.Data.Timeout), results.Options{
		Years:           cfg.Years,
		Districts:       cfg.Data.Districts,
		Constituencies:  cfg.Data.Constituencies,
		Metadata:        cfg.Data.Metadata,
		ElectionPattern: cfg.Data.ElectionPattern,
		SearchLimit:     cfg.Search.Limit,
	})
}

func knownYear(years []int, year int) bool {
	for _, y := range years {
		if y == year {
			return true
		}
	}
	return false
}

func yearOrDefault(year int, cfg config.Config) int {
	if year != 0 {
		return year
	}
	return cfg.DefaultYear
}

func exportMapSnapshot(ctx context.Context, store *results.Store, cfg config.Config, path string, year int) error {
	b, err := store.Bootstrap(ctx)
	if err != nil {
		return err
	}
	opts := export.MapSnapshotOptions{
		Path:           path,
		Title:          "Tamil Nadu Assembly Constituencies",
		Width:          cfg.Export.Width,
		Height:         cfg.Export.Height,
		Districts:      b.Districts,
		Constituencies: b.Constituencies,
	}
	if year != 0 {
		ds, err := store.Dataset(ctx, year)
		if err != nil {
			return err
		}
		opts.Dataset = ds
		opts.Title = fmt.Sprintf("Tamil Nadu Assembly Election %d", year)
	}
	return export.SaveMapSnapshot(opts)
}

func exportDatabase(ctx context.Context, store *results.Store, cfg config.Config, path string) error {
	meta, err := store.Meta(ctx)
	if err != nil {
		return err
	}
	datasets, skipped := export.CollectDatasets(ctx, store, cfg.Years)
	for _, y := range skipped {
		fmt.Fprintf(os.Stderr, "Skipping %d: results unavailable\n", y)
	}
	if err := export.NewSQLiteExporter(meta, datasets).Export(path); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "Wrote %d constituencies and %d years to %s\n", len(meta), len(datasets), path)
	return nil
}

func runTUI(store *results.Store, cfg config.Config, year int) error {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return errors.New("votemap needs a terminal; use --robot-search, --robot-history or --robot-summary for scripted output")
	}

	// Keep debug output off the alt-screen.
	if debug.Enabled() {
		if f, err := openDebugLog(); err == nil {
			defer f.Close()
			debug.SetOutput(f)
		}
		debug.Section("votemap tui")
		debug.Dump("config", cfg)
	}

	m := ui.NewModel(store, cfg).WithYear(year)

	if cfg.Watch.Enabled && !cfg.IsRemote() {
		w, err := watcher.New(
			[]string{filepath.Join(cfg.Data.Source, cfg.Data.Metadata)},
			watcher.WithDebounceDuration(cfg.Watch.Debounce),
			watcher.WithForcePoll(cfg.Watch.ForcePoll),
			watcher.WithOnError(func(err error) { debug.Log("watcher: %v", err) }),
		)
		if err == nil {
			err = w.Start()
		}
		if err != nil {
			debug.Log("votemap: reload disabled: %v", err)
		} else {
			defer w.Stop()
			m = m.WithWatcher(w.Changed())
		}
	}

	return runTUIProgram(m)
}

func openDebugLog() (*os.File, error) {
	dir := config.StateDir()
	if dir == "" {
		return nil, errors.New("no state directory")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return os.OpenFile(filepath.Join(dir, "debug.log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
}

func runTUIProgram(m ui.Model) error {
	p := tea.NewProgram(
		m,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithoutSignalHandler(),
	)

	runDone := make(chan struct{})
	defer close(runDone)

	// Graceful shutdown on SIGINT/SIGTERM.
	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-runDone:
			return
		case <-sigCh:
		}

		p.Quit()

		select {
		case <-runDone:
			return
		case <-sigCh:
		case <-time.After(5 * time.Second):
		}

		p.Kill()
	}()

	// Optional auto-quit for automated tests: set VOTEMAP_TUI_AUTOCLOSE_MS.
	if v := os.Getenv("VOTEMAP_TUI_AUTOCLOSE_MS"); v != "" {
		if ms, err := strconv.Atoi(v); err == nil && ms > 0 {
			go func() {
				timer := time.NewTimer(time.Duration(ms) * time.Millisecond)
				defer timer.Stop()

				select {
				case <-runDone:
					return
				case <-timer.C:
				}

				p.Quit()

				select {
				case <-runDone:
					return
				case <-time.After(2 * time.Second):
				}

				p.Kill()
			}()
		}
	}

	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) || errors.Is(err, tea.ErrInterrupted) {
		return nil
	}
	return err
}
