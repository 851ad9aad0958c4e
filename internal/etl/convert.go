// Package etl converts a TCPD-style candidate results CSV into the
// per-year election file and the constituency metadata file the map reads.
package etl

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/goccy/go-json"

	"github.com/vanderheijden86/votemap/pkg/debug"
	"github.com/vanderheijden86/votemap/pkg/model"
)

// CSV columns read by Convert.
const (
	ColConstituencyNo   = "Constituency_No"
	ColConstituencyName = "Constituency_Name"
	ColDistrict         = "District_Name"
	ColType             = "Constituency_Type"
	ColValidVotes       = "Valid_Votes"
	ColElectors         = "Electors"
	ColTurnout          = "Turnout_Percentage"
	ColNumCandidates    = "N_Cand"
	ColCandidate        = "Candidate"
	ColParty            = "Party"
	ColVotes            = "Votes"
	ColVoteShare        = "Vote_Share_Percentage"
	ColPosition         = "Position"
	ColIncumbent        = "Incumbent"
	ColDepositLost      = "Deposit_Lost"
	ColSex              = "Sex"
	ColAge              = "Age"
	ColEducation        = "MyNeta_education"
	ColProfession       = "TCPD_Prof_Main_Desc"
	ColProfession2      = "TCPD_Prof_Second_Desc"
	ColMargin           = "Margin"
	ColMarginPercent    = "Margin_Percentage"
	ColTerms            = "No_Terms"
	ColTurncoat         = "Turncoat"
	ColSubRegion        = "Sub_Region"
)

const notaName = "None Of The Above"

// ErrNoHeader is returned for an empty CSV.
var ErrNoHeader = errors.New("csv has no header row")

// Row is one CSV record keyed by trimmed header name.
type Row map[string]string

// ReadRows parses CSV content. Blank lines are skipped; missing trailing
// fields read as "".
func ReadRows(r io.Reader) ([]Row, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, ErrNoHeader
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	for i, h := range header {
		header[i] = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
	}

	var rows []Row
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", len(rows)+2, err)
		}
		if len(rec) == 1 && strings.TrimSpace(rec[0]) == "" {
			continue
		}
		row := make(Row, len(header))
		for i, h := range header {
			if i < len(rec) {
				row[h] = strings.TrimSpace(rec[i])
			} else {
				row[h] = ""
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// Output is the result of a conversion.
type Output struct {
	Election model.RawElection
	Meta     model.MetaSet
	// Rows counts candidate rows used; Skipped those without a constituency number.
	Rows    int
	Skipped int
}

// Convert groups rows by constituency number, orders each group by
// finishing position and builds the election and metadata files for year.
func Convert(rows []Row, year int) *Output {
	out := &Output{
		Election: model.RawElection{Year: year, Constituencies: make(map[string]model.RawConstituency)},
		Meta:     make(model.MetaSet),
	}

	groups := make(map[string][]Row)
	for _, row := range rows {
		no := row[ColConstituencyNo]
		if no == "" {
			out.Skipped++
			continue
		}
		groups[no] = append(groups[no], row)
		out.Rows++
	}

	for no, group := range groups {
		sort.SliceStable(group, func(i, j int) bool {
			return position(group[i]) < position(group[j])
		})
		first := group[0]

		typ := first[ColType]
		if typ == "" {
			typ = "GEN"
		}
		electors := model.Electors{Total: parseInt64(first[ColElectors])}

		rc := model.RawConstituency{
			Name:           first[ColConstituencyName],
			District:       first[ColDistrict],
			Type:           typ,
			TotalVotes:     parseInt64(first[ColValidVotes]),
			Electors:       electors,
			TurnoutPercent: parseFloat(first[ColTurnout]),
			NumCandidates:  int(parseInt64(first[ColNumCandidates])),
			Candidates:     make([]model.Candidate, 0, len(group)),
		}
		if rc.NumCandidates == 0 {
			rc.NumCandidates = len(group)
		}
		for _, row := range group {
			rc.Candidates = append(rc.Candidates, candidate(row))
		}
		out.Election.Constituencies[no] = rc

		out.Meta[no] = model.ConstituencyMeta{
			Name:      first[ColConstituencyName],
			District:  first[ColDistrict],
			Type:      typ,
			Electors:  electors,
			SubRegion: first[ColSubRegion],
		}
	}
	debug.Log("etl: %d rows, %d constituencies, %d skipped", out.Rows, len(groups), out.Skipped)
	return out
}

func candidate(row Row) model.Candidate {
	nota := row[ColCandidate] == notaName || row[ColParty] == "NOTA"
	c := model.Candidate{
		Name:                row[ColCandidate],
		Party:               row[ColParty],
		Votes:               parseInt64(row[ColVotes]),
		VoteShare:           parseFloat(row[ColVoteShare]),
		Winner:              position(row) == 1 && !nota,
		Incumbent:           row[ColIncumbent] == "TRUE",
		DepositLost:         row[ColDepositLost] == "yes",
		Sex:                 row[ColSex],
		Education:           row[ColEducation],
		Profession:          row[ColProfession],
		ProfessionSecondary: row[ColProfession2],
	}
	if age := int(parseInt64(row[ColAge])); age > 0 {
		c.Age = &age
	}
	if row[ColMargin] != "" && !nota {
		m := parseInt64(row[ColMargin])
		mp := parseFloat(row[ColMarginPercent])
		c.Margin, c.MarginPercent = &m, &mp
	}
	if t := row[ColTerms]; t != "" && t != "0" {
		terms := int(parseInt64(t))
		c.Terms = &terms
	}
	if row[ColTurncoat] == "TRUE" {
		c.Turncoat = true
	}
	return c
}

// position orders rows with an unparsable position last.
func position(row Row) int {
	p, err := strconv.Atoi(strings.TrimSpace(row[ColPosition]))
	if err != nil {
		return math.MaxInt
	}
	return p
}

var leadingInt = regexp.MustCompile(`^[+-]?\d+`)

// parseInt64 reads the leading integer of s, ignoring thousands
// separators. Anything unparsable is 0.
func parseInt64(s string) int64 {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	n, err := strconv.ParseInt(leadingInt.FindString(s), 10, 64)
	if err != nil {
		return 0
	}
	return n
}

func parseFloat(s string) float64 {
	f, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(s), ",", ""), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

var yearInName = regexp.MustCompile(`(?:^|\D)((?:19|20)\d\d)(?:\D|$)`)

// YearFromPath extracts a four-digit election year from a file name such
// as "2021_results.csv".
func YearFromPath(path string) (int, bool) {
	m := yearInName.FindStringSubmatch(filepath.Base(path))
	if m == nil {
		return 0, false
	}
	y, err := strconv.Atoi(m[1])
	return y, err == nil
}

// WriteJSON writes v as indented JSON to path, creating parent directories.
func WriteJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", filepath.Base(path), err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
