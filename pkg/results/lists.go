package results

import (
	"sort"

	"github.com/vanderheijden86/votemap/pkg/model"
)

// ConstituencyItem is the projection shown in pickers and navigation.
type ConstituencyItem struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	District string `json:"district"`
}

// DistrictList returns the distinct non-empty district names in meta,
// sorted ascending.
func DistrictList(meta model.MetaSet) []string {
	seen := make(map[string]struct{})
	for _, m := range meta {
		if m.District == "" {
			continue
		}
		seen[m.District] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for d := range seen {
		out = append(out, d)
	}
	sort.Strings(out)
	return out
}

// ConstituencyList projects every metadata entry, optionally restricted to
// one district, sorted by numeric id. An empty district means no filter.
func ConstituencyList(meta model.MetaSet, district string) []ConstituencyItem {
	out := make([]ConstituencyItem, 0, len(meta))
	for id, m := range meta {
		if district != "" && m.District != district {
			continue
		}
		out = append(out, ConstituencyItem{ID: id, Name: m.Name, District: m.District})
	}
	sort.Slice(out, func(i, j int) bool {
		return model.CompareIDs(out[i].ID, out[j].ID) < 0
	})
	return out
}
