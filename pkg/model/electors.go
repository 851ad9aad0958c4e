package model

import (
	"bytes"
	"fmt"
	"strconv"

	json "github.com/goccy/go-json"
)

// Electors is an elector count that the data files express either as a
// single number or as a mapping from election year to count.
type Electors struct {
	Total  int64
	ByYear map[int]int64
}

// IsZero reports whether no elector information is present.
func (e Electors) IsZero() bool {
	return e.Total == 0 && len(e.ByYear) == 0
}

// ForYear resolves the count for year. A scalar count applies to every year.
func (e Electors) ForYear(year int) (int64, bool) {
	if len(e.ByYear) > 0 {
		n, ok := e.ByYear[year]
		return n, ok
	}
	if e.Total > 0 {
		return e.Total, true
	}
	return 0, false
}

// UnmarshalJSON accepts a number, a numeric string, null, or an object of
// year to count.
func (e *Electors) UnmarshalJSON(data []byte) error {
	*e = Electors{}
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}

	switch data[0] {
	case '{':
		var raw map[string]json.Number
		if err := json.Unmarshal(data, &raw); err != nil {
			return fmt.Errorf("electors mapping: %w", err)
		}
		e.ByYear = make(map[int]int64, len(raw))
		for k, v := range raw {
			year, err := strconv.Atoi(k)
			if err != nil {
				return fmt.Errorf("electors year %q: %w", k, err)
			}
			n, err := parseCount(string(v))
			if err != nil {
				return fmt.Errorf("electors %d: %w", year, err)
			}
			e.ByYear[year] = n
		}
		return nil
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if s == "" {
			return nil
		}
		n, err := parseCount(s)
		if err != nil {
			return fmt.Errorf("electors: %w", err)
		}
		e.Total = n
		return nil
	default:
		n, err := parseCount(string(data))
		if err != nil {
			return fmt.Errorf("electors: %w", err)
		}
		e.Total = n
		return nil
	}
}

// MarshalJSON writes the mapping form when per-year counts exist.
func (e Electors) MarshalJSON() ([]byte, error) {
	if len(e.ByYear) == 0 {
		return []byte(strconv.FormatInt(e.Total, 10)), nil
	}
	m := make(map[string]int64, len(e.ByYear))
	for y, n := range e.ByYear {
		m[strconv.Itoa(y)] = n
	}
	return json.Marshal(m)
}

func parseCount(s string) (int64, error) {
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	return int64(f), nil
}
