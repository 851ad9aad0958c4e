package results

import (
	"sort"
	"strconv"
	"testing"

	"pgregory.net/rapid"

	"github.com/vanderheijden86/votemap/pkg/model"
)

func rawFixture() model.RawElection {
	return model.RawElection{
		Year: 2021,
		Constituencies: map[string]model.RawConstituency{
			"5": {
				Name:     "Five",
				District: "Chennai",
				Electors: model.Electors{ByYear: map[int]int64{2016: 200000, 2021: 210000}},
				Candidates: []model.Candidate{
					{Name: "A", Party: "X", Votes: 50000, Winner: true},
					{Name: "B", Party: "Y", Votes: 40000},
				},
			},
			"6": {
				Name:     "Six",
				District: "Madurai",
				Electors: model.Electors{Total: 180000},
				Candidates: []model.Candidate{
					{Name: "C", Party: "DMK", Votes: 30000},
					{Name: "D", Party: "AIADMK", Votes: 20000},
				},
			},
			"7": {Name: "Seven", District: "Madurai"},
			"8": {
				Name:       "Eight",
				District:   "Salem",
				Candidates: []model.Candidate{{Name: "Solo", Party: "IND", Votes: 100}},
			},
		},
	}
}

func TestDeriveDatasetEndToEnd(t *testing.T) {
	ds := DeriveDataset(rawFixture())

	r := ds.Result("5")
	if r == nil {
		t.Fatal("constituency 5 missing")
	}
	if r.Winner == nil || r.Winner.Name != "A" {
		t.Errorf("winner = %+v, want A", r.Winner)
	}
	if r.RunnerUp == nil || r.RunnerUp.Name != "B" {
		t.Errorf("runner_up = %+v, want B", r.RunnerUp)
	}
	if m, ok := r.Margin(); !ok || m != 10000 {
		t.Errorf("margin = %d,%v want 10000", m, ok)
	}
	if r.ElectorCount != 210000 {
		t.Errorf("electors = %d, want per-year 210000", r.ElectorCount)
	}
}

func TestDeriveDatasetWinnerRules(t *testing.T) {
	ds := DeriveDataset(rawFixture())

	t.Run("no flag falls back to first", func(t *testing.T) {
		r := ds.Result("6")
		if r.Winner.Name != "C" || r.RunnerUp.Name != "D" {
			t.Errorf("winner/runner-up = %s/%s", r.Winner.Name, r.RunnerUp.Name)
		}
		if r.ElectorCount != 180000 {
			t.Errorf("scalar electors = %d", r.ElectorCount)
		}
	})
	t.Run("no candidates", func(t *testing.T) {
		r := ds.Result("7")
		if r.Winner != nil || r.RunnerUp != nil {
			t.Error("expected no winner or runner-up")
		}
		if _, ok := r.Margin(); ok {
			t.Error("margin must be undefined")
		}
	})
	t.Run("single candidate", func(t *testing.T) {
		r := ds.Result("8")
		if r.Winner == nil || r.RunnerUp != nil {
			t.Errorf("winner=%v runner_up=%v", r.Winner, r.RunnerUp)
		}
	})
	t.Run("flag disagrees with order", func(t *testing.T) {
		raw := model.RawElection{Year: 2011, Constituencies: map[string]model.RawConstituency{
			"1": {Candidates: []model.Candidate{
				{Name: "First", Votes: 900},
				{Name: "Flagged", Votes: 800, Winner: true},
				{Name: "Third", Votes: 700},
			}},
		}}
		r := DeriveDataset(raw).Result("1")
		if r.Winner.Name != "Flagged" {
			t.Errorf("winner = %s, want Flagged", r.Winner.Name)
		}
		// Runner-up is the second list entry as declared.
		if r.RunnerUp.Name != "Flagged" {
			t.Errorf("runner_up = %s, want second entry", r.RunnerUp.Name)
		}
	})
}

func TestDeriveDatasetIsPure(t *testing.T) {
	raw := rawFixture()
	ds := DeriveDataset(raw)

	ds.Result("5").Candidates[0].Votes = 1
	if raw.Constituencies["5"].Candidates[0].Votes != 50000 {
		t.Error("derived dataset aliases the raw candidate list")
	}

	again := DeriveDataset(raw)
	if again.Result("5").Winner.Votes != 50000 {
		t.Error("second derivation observed earlier mutation")
	}
	want := []string{"5", "6", "7", "8"}
	for i, id := range again.IDs {
		if id != want[i] {
			t.Fatalf("IDs = %v, want %v", again.IDs, want)
		}
	}
}

func TestWinnerNotBelowRunnerUpProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(0, 12).Draw(t, "constituencies")
		raw := model.RawElection{Year: 2021, Constituencies: map[string]model.RawConstituency{}}
		for i := 0; i < n; i++ {
			votes := rapid.SliceOfN(rapid.Int64Range(0, 200000), 0, 8).Draw(t, "votes")
			sort.Slice(votes, func(a, b int) bool { return votes[a] > votes[b] })
			flagFirst := rapid.Bool().Draw(t, "flag")
			var cands []model.Candidate
			for j, v := range votes {
				cands = append(cands, model.Candidate{Name: "c", Votes: v, Winner: flagFirst && j == 0})
			}
			raw.Constituencies[strconv.Itoa(i+1)] = model.RawConstituency{Candidates: cands}
		}

		ds := DeriveDataset(raw)
		for id, r := range ds.Constituencies {
			if r.Winner != nil && r.RunnerUp != nil && r.Winner.Votes < r.RunnerUp.Votes {
				t.Fatalf("constituency %s: winner %d < runner-up %d", id, r.Winner.Votes, r.RunnerUp.Votes)
			}
		}
	})
}
