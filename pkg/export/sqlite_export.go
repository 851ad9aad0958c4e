// Package export writes election data out of the interactive map: a static
// choropleth snapshot (SVG or PNG) and a SQLite database of every loaded
// year for ad-hoc querying.
package export

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/vanderheijden86/votemap/pkg/debug"
	"github.com/vanderheijden86/votemap/pkg/model"
	"github.com/vanderheijden86/votemap/pkg/version"
)

// DatasetLoader loads one year's dataset. results.Store implements it.
type DatasetLoader interface {
	Dataset(ctx context.Context, year int) (*model.ElectionDataset, error)
}

// CollectDatasets loads every year it can. Years that fail to load are
// reported in skipped rather than failing the export.
func CollectDatasets(ctx context.Context, l DatasetLoader, years []int) (datasets []*model.ElectionDataset, skipped []int) {
	for _, y := range years {
		ds, err := l.Dataset(ctx, y)
		if err != nil {
			debug.Log("export: skip %d: %v", y, err)
			skipped = append(skipped, y)
			continue
		}
		datasets = append(datasets, ds)
	}
	return datasets, skipped
}

// SQLiteExporter writes metadata and results to a SQLite file.
type SQLiteExporter struct {
	Meta     model.MetaSet
	Datasets []*model.ElectionDataset
	now      func() time.Time
}

// NewSQLiteExporter creates an exporter.
func NewSQLiteExporter(meta model.MetaSet, datasets []*model.ElectionDataset) *SQLiteExporter {
	return &SQLiteExporter{Meta: meta, Datasets: datasets, now: time.Now}
}

// Export writes the database to path, replacing any existing file.
func (e *SQLiteExporter) Export(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove existing database: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	if err := CreateSchema(db); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	if err := e.insertConstituencies(db); err != nil {
		return fmt.Errorf("insert constituencies: %w", err)
	}
	for _, ds := range e.Datasets {
		if err := e.insertYear(db, ds); err != nil {
			return fmt.Errorf("insert %d: %w", ds.Year, err)
		}
	}
	if err := e.insertMeta(db); err != nil {
		return fmt.Errorf("insert meta: %w", err)
	}
	if err := OptimizeDatabase(db); err != nil {
		return err
	}
	return db.Close()
}

func (e *SQLiteExporter) insertConstituencies(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO constituencies (id, number, name, name_local, district, type, sub_region, description)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, id := range e.Meta.SortedIDs() {
		m := e.Meta[id]
		var number *int
		if n, err := strconv.Atoi(id); err == nil {
			number = &n
		}
		if _, err := stmt.Exec(id, number, m.Name, nullString(m.NameLocal), nullString(m.District),
			m.TypeOrDefault(), nullString(m.SubRegion), nullString(m.Description)); err != nil {
			return fmt.Errorf("insert constituency %s: %w", id, err)
		}
	}
	return tx.Commit()
}

func (e *SQLiteExporter) insertYear(db *sql.DB, ds *model.ElectionDataset) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	resStmt, err := tx.Prepare(`
		INSERT INTO results (year, constituency_id, name, district, total_votes, electors, turnout, num_candidates,
			winner_name, winner_party, runner_up_name, runner_up_party, margin, margin_percent)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer resStmt.Close()

	candStmt, err := tx.Prepare(`
		INSERT INTO candidates (year, constituency_id, rank, name, party, votes, vote_share, winner, incumbent,
			deposit_lost, sex, age, education, profession)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer candStmt.Close()

	for _, id := range ds.IDs {
		r := ds.Constituencies[id]
		var winnerName, winnerParty, runnerName, runnerParty *string
		if r.Winner != nil {
			winnerName, winnerParty = &r.Winner.Name, &r.Winner.Party
		}
		if r.RunnerUp != nil {
			runnerName, runnerParty = &r.RunnerUp.Name, &r.RunnerUp.Party
		}
		var margin *int64
		if m, ok := r.Margin(); ok {
			margin = &m
		}
		var marginPct *float64
		if p, ok := r.MarginPercent(); ok {
			marginPct = &p
		}
		numCandidates := r.NumCandidates
		if numCandidates == 0 {
			numCandidates = len(r.Candidates)
		}
		if _, err := resStmt.Exec(ds.Year, id, r.Name, nullString(r.District), r.TotalVotes, r.ElectorCount,
			r.TurnoutPercent, numCandidates, winnerName, winnerParty, runnerName, runnerParty, margin, marginPct); err != nil {
			return fmt.Errorf("insert result %s: %w", id, err)
		}

		for i, c := range r.Candidates {
			if _, err := candStmt.Exec(ds.Year, id, i+1, c.Name, nullString(c.Party), c.Votes, c.VoteShare,
				c.Winner, c.Incumbent, c.DepositLost, nullString(c.Sex), c.Age,
				nullString(c.Education), nullString(c.Profession)); err != nil {
				return fmt.Errorf("insert candidate %s/%d: %w", id, i+1, err)
			}
		}
	}
	return tx.Commit()
}

func (e *SQLiteExporter) insertMeta(db *sql.DB) error {
	years := make([]string, len(e.Datasets))
	for i, ds := range e.Datasets {
		years[i] = strconv.Itoa(ds.Year)
	}
	values := map[string]string{
		"schema_version": strconv.Itoa(SchemaVersion),
		"exported_at":    e.now().UTC().Format(time.RFC3339),
		"years":          strings.Join(years, ","),
		"votemap":        version.Version,
	}
	for k, v := range values {
		if err := InsertMetaValue(db, k, v); err != nil {
			return err
		}
	}
	return nil
}

func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
