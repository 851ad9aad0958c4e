package model

import (
	"sort"
	"strconv"
)

// ConstituencyMeta is the static, year-independent description of a
// constituency. It is immutable once loaded.
type ConstituencyMeta struct {
	ID               string   `json:"-"`
	Name             string   `json:"name"`
	NameLocal        string   `json:"name_ta,omitempty"`
	District         string   `json:"district"`
	Type             string   `json:"type,omitempty"`
	Electors         Electors `json:"electors"`
	RegisteredVoters int64    `json:"registered_voters,omitempty"`
	Description      string   `json:"description,omitempty"`
	SubRegion        string   `json:"sub_region,omitempty"`
}

// TypeOrDefault returns the reservation category, "GEN" when unset.
func (m ConstituencyMeta) TypeOrDefault() string {
	if m.Type == "" {
		return "GEN"
	}
	return m.Type
}

// MetaSet maps constituency id to its metadata.
type MetaSet map[string]ConstituencyMeta

// Normalize copies each map key into the entry's ID field.
func (s MetaSet) Normalize() {
	for id, m := range s {
		m.ID = id
		s[id] = m
	}
}

// SortedIDs returns the ids of s in ascending numeric order.
func (s MetaSet) SortedIDs() []string {
	ids := make([]string, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	SortIDs(ids)
	return ids
}

// CompareIDs orders constituency ids by numeric value, so "10" sorts after
// "9". Non-numeric ids sort after numeric ones, lexically among themselves.
func CompareIDs(a, b string) int {
	na, errA := strconv.Atoi(a)
	nb, errB := strconv.Atoi(b)
	switch {
	case errA == nil && errB == nil:
		if na != nb {
			if na < nb {
				return -1
			}
			return 1
		}
	case errA == nil:
		return -1
	case errB == nil:
		return 1
	}
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// SortIDs sorts ids in place by CompareIDs.
func SortIDs(ids []string) {
	sort.SliceStable(ids, func(i, j int) bool { return CompareIDs(ids[i], ids[j]) < 0 })
}
