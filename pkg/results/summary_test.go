package results

import (
	"testing"

	"github.com/vanderheijden86/votemap/pkg/model"
)

func TestSummarize(t *testing.T) {
	ds := DeriveDataset(model.RawElection{
		Year: 2021,
		Constituencies: map[string]model.RawConstituency{
			"1": {TurnoutPercent: 70, Candidates: []model.Candidate{{Party: "DMK", Votes: 1000}, {Votes: 900}}},
			"2": {TurnoutPercent: 80, Candidates: []model.Candidate{{Party: "DMK", Votes: 1000}, {Votes: 500}}},
			"3": {TurnoutPercent: 75, Candidates: []model.Candidate{{Party: "ADMK", Votes: 1000}, {Votes: 700}}},
			"4": {},
		},
	})

	s := Summarize(ds)
	if s.Year != 2021 || s.Constituencies != 4 {
		t.Errorf("header = %d/%d", s.Year, s.Constituencies)
	}
	if len(s.Seats) != 2 || s.Seats[0].Party != "DMK" || s.Seats[0].Seats != 2 {
		t.Errorf("seats = %+v", s.Seats)
	}
	if s.Seats[1].Party != "AIADMK" || s.Seats[1].Color != "#4caf50" {
		t.Errorf("alias not folded: %+v", s.Seats[1])
	}
	if s.MeanMargin != 300 {
		t.Errorf("mean margin = %v, want 300", s.MeanMargin)
	}
	if s.MedianMargin != 300 {
		t.Errorf("median margin = %v, want 300", s.MedianMargin)
	}
	if s.MeanTurnout != 75 {
		t.Errorf("mean turnout = %v, want 75", s.MeanTurnout)
	}
	if s.Closest != "1" || s.ClosestMargin != 100 {
		t.Errorf("closest = %s/%d", s.Closest, s.ClosestMargin)
	}
}

func TestSummarizeNil(t *testing.T) {
	if s := Summarize(nil); s.Constituencies != 0 || s.Seats != nil {
		t.Errorf("unexpected summary %+v", s)
	}
}
