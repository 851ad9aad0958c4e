package ui

import (
	"errors"
	"strings"
	"testing"

	"github.com/vanderheijden86/votemap/pkg/mapview"
	"github.com/vanderheijden86/votemap/pkg/model"
	"github.com/vanderheijden86/votemap/pkg/results"
	"github.com/vanderheijden86/votemap/pkg/session"
)

func newTestOverlay() *OverlayPanel {
	o := NewOverlayPanel(TestTheme(), []int{2011, 2016, 2021})
	o.SetSize(60, 60)
	return o
}

func sampleDetail() session.Detail {
	winner := model.Candidate{Name: "Kannan", Party: "DMK", Votes: 500, VoteShare: 62.5, Winner: true}
	runner := model.Candidate{Name: "Bala", Party: "AIADMK", Votes: 300, VoteShare: 37.5}
	margin := int64(200)
	r := &model.ConstituencyResult{ID: "1", Winner: &winner, RunnerUp: &runner}
	return session.Detail{
		Meta: model.ConstituencyMeta{ID: "1", Name: "One", District: "North", Type: "SC"},
		History: []results.HistoryEntry{
			{Year: 2021, Winner: winner, Margin: &margin},
		},
		Year: session.YearSection{
			ID:     "1",
			Year:   2021,
			Result: r,
			Candidates: []session.CandidateRow{
				{Rank: 1, Candidate: winner, Bar: 1},
				{Rank: 2, Candidate: runner, Bar: 0.6},
			},
			Margin:    200,
			HasMargin: true,
			Turnout:   70,
			Electors:  1234567,
		},
	}
}

func TestOverlayRequests(t *testing.T) {
	o := newTestOverlay()
	o.ShowOverlay("1", 2021)
	req, ok := o.TakeRequest()
	if !ok || !req.Full || req.ID != "1" || req.Year != 2021 {
		t.Fatalf("first request = %+v, %v", req, ok)
	}
	if _, ok := o.TakeRequest(); ok {
		t.Error("request not cleared")
	}
	o.SetDetail(sampleDetail(), nil)

	o.ShowOverlay("1", 2016)
	if req, _ := o.TakeRequest(); req.Full {
		t.Error("year change on the same constituency should request only the section")
	}
	o.ShowOverlay("2", 2016)
	if req, _ := o.TakeRequest(); !req.Full {
		t.Error("new constituency should request the full detail")
	}

	o.HideOverlay()
	if o.Visible() || o.ID() != "" {
		t.Error("HideOverlay left the panel open")
	}
	o.Reload()
	if _, ok := o.TakeRequest(); ok {
		t.Error("Reload on a hidden panel queued a request")
	}
}

func TestOverlayRequestStaysFullUntilDetailLands(t *testing.T) {
	o := newTestOverlay()
	o.ShowOverlay("1", 2021)
	o.TakeRequest()

	// The year moves before the first detail arrives.
	o.ShowOverlay("1", 2016)
	req, _ := o.TakeRequest()
	if !req.Full || req.Year != 2016 {
		t.Fatalf("request while the detail is in flight = %+v, want full at 2016", req)
	}

	o.SetDetail(sampleDetail(), nil)
	o.ShowOverlay("1", 2021)
	if req, _ := o.TakeRequest(); req.Full {
		t.Error("section request expected once the detail landed")
	}

	o.SetDetail(sampleDetail(), nil)
	o.Reload()
	o.TakeRequest()
	o.ShowOverlay("1", 2016)
	if req, _ := o.TakeRequest(); !req.Full {
		t.Error("year change during a reload should keep the full request")
	}
}

func TestOverlayDropsContentForOtherConstituency(t *testing.T) {
	o := newTestOverlay()
	o.ShowOverlay("2", 2021)
	o.TakeRequest()

	o.SetDetail(sampleDetail(), nil)
	if o.Detail().Meta.ID != "" || !o.Loading() {
		t.Errorf("detail for 1 installed on the panel showing 2: %+v", o.Detail().Meta)
	}
	o.SetSection(session.YearSection{ID: "2", Year: 2021})
	if o.Detail().Year.ID != "" {
		t.Error("section installed before its detail")
	}

	d := sampleDetail()
	d.Meta.ID, d.Meta.Name = "2", "Two"
	d.Year.ID = "2"
	o.SetDetail(d, nil)
	o.SetSection(session.YearSection{ID: "1", Year: 2016})
	if got := o.Detail().Year; got.ID != "2" || got.Year != 2021 {
		t.Errorf("section for 1 replaced the section for 2: %+v", got)
	}
}

func TestOverlayFailedDetailForcesFullReload(t *testing.T) {
	o := newTestOverlay()
	o.ShowOverlay("1", 2021)
	o.TakeRequest()
	o.SetDetail(session.Detail{}, errors.New("boom"))
	if !strings.Contains(o.View(), "Could not load constituency 1") {
		t.Error("view missing load error")
	}
	o.ShowOverlay("1", 2016)
	if req, _ := o.TakeRequest(); !req.Full {
		t.Error("retry after a failure should load the full detail")
	}
}

func TestOverlayView(t *testing.T) {
	o := newTestOverlay()
	o.ShowOverlay("1", 2021)
	o.TakeRequest()
	o.SetDetail(sampleDetail(), nil)
	if o.Loading() {
		t.Error("still loading after SetDetail")
	}

	view := o.View()
	for _, want := range []string{
		"1. One", "SC", "North district", "2021",
		"Margin:   200", "Turnout:  70.00%", "Electors: 12,34,567",
		"Kannan", "Bala", "Winner history", "n/p: constituency",
	} {
		if !strings.Contains(view, want) {
			t.Errorf("View() missing %q", want)
		}
	}
}

func TestOverlaySectionWithoutResult(t *testing.T) {
	o := newTestOverlay()
	o.ShowOverlay("1", 2021)
	o.TakeRequest()
	o.SetDetail(sampleDetail(), nil)

	o.ShowOverlay("1", 2011)
	o.TakeRequest()
	o.SetSection(session.YearSection{ID: "1", Year: 2011, Electors: 900})
	view := o.View()
	if !strings.Contains(view, "No results for 2011") || !strings.Contains(view, "Electors: 900") {
		t.Errorf("view missing empty section:\n%s", view)
	}
	if !strings.Contains(view, "Winner history") {
		t.Error("history dropped by a section reload")
	}
}

func TestOverlaySummary(t *testing.T) {
	o := newTestOverlay()
	o.ShowOverlay("1", 2021)
	o.SetDetail(sampleDetail(), nil)
	got := o.Summary()
	for _, want := range []string{
		"1. One (SC), North district",
		"2021 winner: Kannan (DMK), 500 votes",
		"Margin: 200",
		"2021: Kannan (DMK)",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("Summary() missing %q:\n%s", want, got)
		}
	}
}

func TestRenderLegend(t *testing.T) {
	th := TestTheme()
	if got := renderLegend(mapview.Legend{}, 40, th); got != "" {
		t.Errorf("hidden legend rendered %q", got)
	}
	l := mapview.Legend{
		Visible:   true,
		Year:      2021,
		Parties:   results.LegendParties(),
		Alliances: []results.AllianceSeats{{Key: "DMK+", Name: "DMK+", Seats: 159}},
	}
	view := renderLegend(l, 40, th)
	for _, want := range []string{"Results 2021", "DMK", "Others", "Seats", "159"} {
		if !strings.Contains(view, want) {
			t.Errorf("legend missing %q", want)
		}
	}
}
