package results

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/vanderheijden86/votemap/pkg/metrics"
	"github.com/vanderheijden86/votemap/pkg/model"
)

const (
	// MinQueryLen is the shortest query that triggers a search.
	MinQueryLen = 2
	// MaxMatches caps the number of search results.
	MaxMatches = 50
)

// Match is a candidate that matched a search, annotated with where they stood.
type Match struct {
	model.Candidate
	Year             int    `json:"year"`
	ConstituencyID   string `json:"constituency_id"`
	ConstituencyName string `json:"constituency_name"`
	District         string `json:"district"`
}

// SearchCandidates matches query case-insensitively as a substring of every
// candidate name in ds. Matches are ordered by votes, highest first; ties
// keep dataset order (ascending constituency id, then list order). At most
// limit matches are returned; limit is clamped to MaxMatches and limit <= 0
// means MaxMatches.
//
// A nil dataset or a query shorter than MinQueryLen characters yields nil.
func SearchCandidates(ds *model.ElectionDataset, query string, limit int) []Match {
	if ds == nil || utf8.RuneCountInString(query) < MinQueryLen {
		return nil
	}
	defer metrics.Timer(metrics.Search)()

	if limit <= 0 || limit > MaxMatches {
		limit = MaxMatches
	}
	needle := strings.ToLower(query)

	var out []Match
	for _, id := range ds.IDs {
		r := ds.Constituencies[id]
		if r == nil {
			continue
		}
		for _, c := range r.Candidates {
			if c.Name == "" || !strings.Contains(strings.ToLower(c.Name), needle) {
				continue
			}
			out = append(out, Match{
				Candidate:        c,
				Year:             ds.Year,
				ConstituencyID:   id,
				ConstituencyName: r.Name,
				District:         r.District,
			})
		}
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Votes > out[j].Votes })
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}
