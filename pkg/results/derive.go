// Package results derives election facts from raw datasets: winners,
// runners-up and margins per constituency, district and constituency
// listings, winner history across years, candidate search, party colors,
// alliance seat tallies and per-year summaries.
//
// Everything except Store is a pure function of its arguments.
package results

import (
	"github.com/vanderheijden86/votemap/pkg/metrics"
	"github.com/vanderheijden86/votemap/pkg/model"
)

// DeriveDataset computes the derived fields for every constituency of raw.
//
// The winner is the first candidate carrying the winner flag, or the first
// candidate when none is flagged. The runner-up is always the second entry
// of the declared list, even when the flag points elsewhere; data producers
// are expected to list candidates by descending votes. The elector count is
// resolved for raw.Year.
//
// raw is not modified; each result owns a copy of its candidate list.
func DeriveDataset(raw model.RawElection) *model.ElectionDataset {
	defer metrics.Timer(metrics.Derive)()

	ds := &model.ElectionDataset{
		Year:           raw.Year,
		Alliances:      raw.Alliances,
		Constituencies: make(map[string]*model.ConstituencyResult, len(raw.Constituencies)),
		IDs:            make([]string, 0, len(raw.Constituencies)),
	}
	for id, rc := range raw.Constituencies {
		ds.Constituencies[id] = deriveConstituency(id, rc, raw.Year)
		ds.IDs = append(ds.IDs, id)
	}
	model.SortIDs(ds.IDs)
	return ds
}

func deriveConstituency(id string, rc model.RawConstituency, year int) *model.ConstituencyResult {
	r := &model.ConstituencyResult{ID: id, RawConstituency: rc}
	r.Candidates = append([]model.Candidate(nil), rc.Candidates...)

	if n, ok := rc.Electors.ForYear(year); ok {
		r.ElectorCount = n
	}
	if len(r.Candidates) == 0 {
		return r
	}

	winner := 0
	for i := range r.Candidates {
		if r.Candidates[i].Winner {
			winner = i
			break
		}
	}
	r.Winner = &r.Candidates[winner]
	if len(r.Candidates) > 1 {
		r.RunnerUp = &r.Candidates[1]
	}
	return r
}
