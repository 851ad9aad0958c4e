package model

import (
	"testing"

	json "github.com/goccy/go-json"
)

func TestElectorsUnmarshal(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		year     int
		want     int64
		wantOK   bool
		wantZero bool
	}{
		{"scalar", `245000`, 2016, 245000, true, false},
		{"string scalar", `"245000"`, 2021, 245000, true, false},
		{"float scalar", `245000.0`, 2021, 245000, true, false},
		{"mapping hit", `{"2016": 230000, "2021": 245000}`, 2016, 230000, true, false},
		{"mapping miss", `{"2021": 245000}`, 2011, 0, false, false},
		{"null", `null`, 2021, 0, false, true},
		{"empty string", `""`, 2021, 0, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var e Electors
			if err := json.Unmarshal([]byte(tt.input), &e); err != nil {
				t.Fatalf("unmarshal %s: %v", tt.input, err)
			}
			got, ok := e.ForYear(tt.year)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("ForYear(%d) = %d,%v want %d,%v", tt.year, got, ok, tt.want, tt.wantOK)
			}
			if e.IsZero() != tt.wantZero {
				t.Errorf("IsZero() = %v, want %v", e.IsZero(), tt.wantZero)
			}
		})
	}
}

func TestElectorsUnmarshalRejectsBadYear(t *testing.T) {
	var e Electors
	if err := json.Unmarshal([]byte(`{"twenty": 5}`), &e); err == nil {
		t.Error("expected error for non-numeric year key")
	}
}

func TestElectorsMarshalKeepsShape(t *testing.T) {
	scalar, err := json.Marshal(Electors{Total: 10})
	if err != nil {
		t.Fatal(err)
	}
	if string(scalar) != "10" {
		t.Errorf("scalar marshal = %s", scalar)
	}

	mapped, err := json.Marshal(Electors{ByYear: map[int]int64{2021: 7}})
	if err != nil {
		t.Fatal(err)
	}
	if string(mapped) != `{"2021":7}` {
		t.Errorf("mapping marshal = %s", mapped)
	}
}

func TestMetaSetDecodeAndSort(t *testing.T) {
	raw := `{
		"10": {"name": "Tenth", "district": "Chennai", "electors": {"2021": 100}},
		"2":  {"name": "Second", "district": "Chennai", "electors": 50},
		"9":  {"name": "Ninth", "district": "Madurai", "type": "SC"}
	}`
	var set MetaSet
	if err := json.Unmarshal([]byte(raw), &set); err != nil {
		t.Fatal(err)
	}
	set.Normalize()

	ids := set.SortedIDs()
	want := []string{"2", "9", "10"}
	for i := range want {
		if ids[i] != want[i] {
			t.Fatalf("SortedIDs() = %v, want %v", ids, want)
		}
	}
	if set["9"].ID != "9" {
		t.Errorf("Normalize did not set ID: %+v", set["9"])
	}
	if set["2"].TypeOrDefault() != "GEN" || set["9"].TypeOrDefault() != "SC" {
		t.Errorf("unexpected types %q %q", set["2"].TypeOrDefault(), set["9"].TypeOrDefault())
	}
}

func TestCompareIDs(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"2", "10", -1},
		{"10", "9", 1},
		{"5", "5", 0},
		{"7", "x1", -1},
		{"b", "a", 1},
	}
	for _, tt := range tests {
		if got := CompareIDs(tt.a, tt.b); got != tt.want {
			t.Errorf("CompareIDs(%q,%q) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestConstituencyResultMargin(t *testing.T) {
	pct := 8.5
	r := &ConstituencyResult{
		RawConstituency: RawConstituency{Candidates: []Candidate{
			{Name: "A", Votes: 50000, MarginPercent: &pct},
			{Name: "B", Votes: 40000},
		}},
	}
	r.Winner = &r.Candidates[0]
	r.RunnerUp = &r.Candidates[1]

	if m, ok := r.Margin(); !ok || m != 10000 {
		t.Errorf("Margin() = %d,%v", m, ok)
	}
	if p, ok := r.MarginPercent(); !ok || p != 8.5 {
		t.Errorf("MarginPercent() = %v,%v", p, ok)
	}

	r.RunnerUp = nil
	if _, ok := r.Margin(); ok {
		t.Error("margin should be undefined without a runner-up")
	}
}
