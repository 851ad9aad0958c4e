package results

import (
	"sort"
	"strings"

	"github.com/vanderheijden86/votemap/pkg/model"
)

// OthersColor is used for unknown or missing party codes.
const OthersColor = "#78909c"

var partyColors = map[string]string{
	"DMK":      "#e53935",
	"AIADMK":   "#4caf50",
	"ADMK":     "#4caf50",
	"BJP":      "#ff9800",
	"INC":      "#2196f3",
	"CONGRESS": "#2196f3",
	"PMK":      "#ffeb3b",
	"MDMK":     "#9c27b0",
	"VCK":      "#00bcd4",
	"CPI":      "#f44336",
	"CPI(M)":   "#b71c1c",
	"CPM":      "#b71c1c",
	"DMDK":     "#009688",
	"TMC":      "#795548",
	"AMMK":     "#8bc34a",
	"NTK":      "#ffc107",
	"MNM":      "#3f51b5",
	"IUML":     "#006400",
	"MMK":      "#00a65a",
	"IJK":      "#ff6600",
	"KMDK":     "#99cc33",
	"IND":      "#607d8b",
	"OTHERS":   OthersColor,
}

// aliases fold alternate spellings onto one party for seat counting.
var aliases = map[string]string{
	"ADMK":     "AIADMK",
	"CONGRESS": "INC",
	"CPI(M)":   "CPM",
}

// NormalizeParty upper-cases and trims a party code and folds aliases.
func NormalizeParty(code string) string {
	c := strings.ToUpper(strings.TrimSpace(code))
	if a, ok := aliases[c]; ok {
		return a
	}
	return c
}

// PartyColor returns the display color for a party code.
func PartyColor(code string) string {
	if c, ok := partyColors[strings.ToUpper(strings.TrimSpace(code))]; ok {
		return c
	}
	return OthersColor
}

// LegendEntry is one swatch of the results legend.
type LegendEntry struct {
	Label string
	Color string
}

// LegendParties returns the fixed party swatches shown with a year active.
func LegendParties() []LegendEntry {
	return []LegendEntry{
		{"DMK", PartyColor("DMK")},
		{"AIADMK", PartyColor("AIADMK")},
		{"BJP", PartyColor("BJP")},
		{"INC", PartyColor("INC")},
		{"Others", OthersColor},
	}
}

// defaultAlliances is used for years whose file declares no alliances.
var defaultAlliances = map[int]map[string]model.Alliance{
	2021: {
		"DMK+":    {Name: "DMK+", Parties: []string{"DMK", "INC", "VCK", "CPI", "CPM", "IUML", "MMK"}},
		"AIADMK+": {Name: "AIADMK+", Parties: []string{"AIADMK", "BJP", "PMK", "TMC"}},
	},
	2016: {
		"AIADMK+": {Name: "AIADMK+", Parties: []string{"AIADMK"}},
		"DMK+":    {Name: "DMK+", Parties: []string{"DMK", "INC"}},
	},
}

// Alliances returns the alliances in effect for ds.
func Alliances(ds *model.ElectionDataset) map[string]model.Alliance {
	if ds == nil {
		return nil
	}
	if len(ds.Alliances) > 0 {
		return ds.Alliances
	}
	return defaultAlliances[ds.Year]
}

// OthersAlliance collects winners from parties outside every alliance.
const OthersAlliance = "Others"

// AllianceSeats is the seat count of one alliance.
type AllianceSeats struct {
	Key     string   `json:"key"`
	Name    string   `json:"name"`
	Parties []string `json:"parties,omitempty"`
	Seats   int      `json:"seats"`
}

// AllianceTally counts seats won per alliance in ds. Winners whose party
// belongs to no alliance are counted under OthersAlliance, which is listed
// last when non-empty. Alliances are ordered by seats, then key.
func AllianceTally(ds *model.ElectionDataset) []AllianceSeats {
	alliances := Alliances(ds)
	if ds == nil {
		return nil
	}

	memberOf := make(map[string]string)
	tally := make(map[string]*AllianceSeats, len(alliances))
	for key, a := range alliances {
		name := a.Name
		if name == "" {
			name = key
		}
		tally[key] = &AllianceSeats{Key: key, Name: name, Parties: a.Parties}
		for _, p := range a.Parties {
			memberOf[NormalizeParty(p)] = key
		}
	}

	others := 0
	for _, id := range ds.IDs {
		r := ds.Constituencies[id]
		if r == nil || r.Winner == nil {
			continue
		}
		if key, ok := memberOf[NormalizeParty(r.Winner.Party)]; ok {
			tally[key].Seats++
		} else {
			others++
		}
	}

	out := make([]AllianceSeats, 0, len(tally)+1)
	for _, t := range tally {
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Seats != out[j].Seats {
			return out[i].Seats > out[j].Seats
		}
		return out[i].Key < out[j].Key
	})
	if others > 0 {
		out = append(out, AllianceSeats{Key: OthersAlliance, Name: OthersAlliance, Seats: others})
	}
	return out
}
