// Package model defines the election data model shared by every votemap
// package: constituency metadata, raw per-year election files and the
// derived datasets built from them.
package model

// Candidate is one row of a constituency's declared result.
type Candidate struct {
	Name                string   `json:"name"`
	Party               string   `json:"party"`
	Votes               int64    `json:"votes"`
	VoteShare           float64  `json:"vote_share"`
	Winner              bool     `json:"winner"`
	Incumbent           bool     `json:"incumbent"`
	DepositLost         bool     `json:"deposit_lost"`
	Sex                 string   `json:"sex,omitempty"`
	Age                 *int     `json:"age,omitempty"`
	Education           string   `json:"education,omitempty"`
	Profession          string   `json:"profession,omitempty"`
	ProfessionSecondary string   `json:"profession_secondary,omitempty"`
	Margin              *int64   `json:"margin,omitempty"`
	MarginPercent       *float64 `json:"margin_percent,omitempty"`
	Terms               *int     `json:"terms,omitempty"`
	Turncoat            bool     `json:"turncoat,omitempty"`
}

// Alliance is a named coalition; Parties keeps the declared member order.
type Alliance struct {
	Name    string   `json:"name"`
	Parties []string `json:"parties"`
}

// RawConstituency is a constituency entry exactly as it appears in a
// per-year election file.
type RawConstituency struct {
	Name           string      `json:"name"`
	District       string      `json:"district"`
	Type           string      `json:"type,omitempty"`
	TotalVotes     int64       `json:"total_votes"`
	Electors       Electors    `json:"electors"`
	TurnoutPercent float64     `json:"turnout_percent"`
	NumCandidates  int         `json:"num_candidates,omitempty"`
	Candidates     []Candidate `json:"candidates"`
}

// RawElection is the on-disk shape of elections-{year}.json.
type RawElection struct {
	Year           int                        `json:"year"`
	Alliances      map[string]Alliance        `json:"alliances,omitempty"`
	Constituencies map[string]RawConstituency `json:"constituencies"`
}

// ConstituencyResult is a RawConstituency plus the fields derived at load
// time. Winner and RunnerUp point into Candidates.
type ConstituencyResult struct {
	ID string `json:"id"`
	RawConstituency

	// ElectorCount is the elector total resolved for the dataset year.
	ElectorCount int64 `json:"elector_count,omitempty"`

	Winner   *Candidate `json:"winner,omitempty"`
	RunnerUp *Candidate `json:"runner_up,omitempty"`
}

// Margin returns winner.votes - runner_up.votes when both exist.
func (r *ConstituencyResult) Margin() (int64, bool) {
	if r == nil || r.Winner == nil || r.RunnerUp == nil {
		return 0, false
	}
	return r.Winner.Votes - r.RunnerUp.Votes, true
}

// MarginPercent returns the winner's published margin percent, if any.
func (r *ConstituencyResult) MarginPercent() (float64, bool) {
	if r == nil || r.Winner == nil || r.Winner.MarginPercent == nil {
		return 0, false
	}
	return *r.Winner.MarginPercent, true
}

// ElectionDataset is a derived per-year dataset.
type ElectionDataset struct {
	Year      int                 `json:"year"`
	Alliances map[string]Alliance `json:"alliances,omitempty"`
	// Constituencies is keyed by constituency id.
	Constituencies map[string]*ConstituencyResult `json:"constituencies"`
	// IDs holds every key of Constituencies in ascending numeric order and
	// fixes the iteration order for search and export.
	IDs []string `json:"-"`
}

// Result returns the constituency result for id, or nil.
func (d *ElectionDataset) Result(id string) *ConstituencyResult {
	if d == nil {
		return nil
	}
	return d.Constituencies[id]
}
