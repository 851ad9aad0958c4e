package results

import (
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/vanderheijden86/votemap/pkg/model"
)

// PartySeats is the number of seats one party won.
type PartySeats struct {
	Party string `json:"party"`
	Seats int    `json:"seats"`
	Color string `json:"color"`
}

// YearSummary aggregates one year's results.
type YearSummary struct {
	Year           int             `json:"year"`
	Constituencies int             `json:"constituencies"`
	Seats          []PartySeats    `json:"seats"`
	Alliances      []AllianceSeats `json:"alliances,omitempty"`
	MeanMargin     float64         `json:"mean_margin"`
	MedianMargin   float64         `json:"median_margin"`
	MeanTurnout    float64         `json:"mean_turnout"`
	// Closest is the id of the constituency with the smallest margin.
	Closest       string `json:"closest,omitempty"`
	ClosestMargin int64  `json:"closest_margin,omitempty"`
}

// Summarize computes seat counts and margin/turnout statistics for ds.
func Summarize(ds *model.ElectionDataset) YearSummary {
	if ds == nil {
		return YearSummary{}
	}
	sum := YearSummary{Year: ds.Year, Constituencies: len(ds.IDs), Alliances: AllianceTally(ds)}

	seats := make(map[string]int)
	var margins, turnouts []float64
	for _, id := range ds.IDs {
		r := ds.Constituencies[id]
		if r == nil {
			continue
		}
		if r.TurnoutPercent > 0 {
			turnouts = append(turnouts, r.TurnoutPercent)
		}
		if r.Winner == nil {
			continue
		}
		seats[NormalizeParty(r.Winner.Party)]++
		if m, ok := r.Margin(); ok {
			margins = append(margins, float64(m))
			if sum.Closest == "" || m < sum.ClosestMargin {
				sum.Closest, sum.ClosestMargin = id, m
			}
		}
	}

	for p, n := range seats {
		sum.Seats = append(sum.Seats, PartySeats{Party: p, Seats: n, Color: PartyColor(p)})
	}
	sort.Slice(sum.Seats, func(i, j int) bool {
		if sum.Seats[i].Seats != sum.Seats[j].Seats {
			return sum.Seats[i].Seats > sum.Seats[j].Seats
		}
		return sum.Seats[i].Party < sum.Seats[j].Party
	})

	if len(margins) > 0 {
		sum.MeanMargin = stat.Mean(margins, nil)
		sort.Float64s(margins)
		sum.MedianMargin = stat.Quantile(0.5, stat.Empirical, margins, nil)
	}
	if len(turnouts) > 0 {
		sum.MeanTurnout = stat.Mean(turnouts, nil)
	}
	return sum
}
