package session

import (
	"strconv"
	"testing"

	"pgregory.net/rapid"

	"github.com/vanderheijden86/votemap/pkg/model"
)

func metaWithIDs(ids ...string) model.MetaSet {
	meta := make(model.MetaSet, len(ids))
	for _, id := range ids {
		meta[id] = model.ConstituencyMeta{Name: "C" + id, District: "D"}
	}
	meta.Normalize()
	return meta
}

func TestSequencerWraps(t *testing.T) {
	q := NewSequencer(metaWithIDs("3", "1", "2"))
	tests := []struct {
		name   string
		step   func(string) (string, bool)
		from   string
		want   string
		wantOK bool
	}{
		{"next middle", q.Next, "1", "2", true},
		{"next wraps", q.Next, "3", "1", true},
		{"prev wraps", q.Previous, "1", "3", true},
		{"prev middle", q.Previous, "3", "2", true},
		{"unknown is a no-op", q.Next, "99", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.step(tt.from)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("got (%q, %v), want (%q, %v)", got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestSequencerNumericOrder(t *testing.T) {
	q := NewSequencer(metaWithIDs("10", "9", "100", "1"))
	want := []string{"1", "9", "10", "100"}
	if got := q.Order(); !equalStrings(got, want) {
		t.Errorf("order = %v, want %v", got, want)
	}
}

func TestSequencerCycleProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(1, 40).Draw(t, "n")
		ids := make([]string, n)
		for i := range ids {
			ids[i] = strconv.Itoa(i + 1)
		}
		q := NewSequencer(metaWithIDs(ids...))
		start := ids[rapid.IntRange(0, n-1).Draw(t, "start")]

		cur := start
		for range n {
			cur, _ = q.Next(cur)
		}
		if cur != start {
			t.Fatalf("%d nexts from %s ended at %s", n, start, cur)
		}
		next, _ := q.Next(start)
		back, _ := q.Previous(next)
		if back != start {
			t.Fatalf("prev(next(%s)) = %s", start, back)
		}
	})
}

func TestOverlayYearCursor(t *testing.T) {
	o := NewOverlay([]int{2021, 2016, 2011}, 2021)
	if o.NextYear() || o.PrevYear() {
		t.Fatal("closed overlay must not move")
	}
	o.Open("1", 0)
	if o.Year() != 2021 {
		t.Fatalf("default year = %d", o.Year())
	}
	if o.CanNextYear() || o.NextYear() {
		t.Error("next at the last year must be a no-op")
	}
	for _, want := range []int{2016, 2011} {
		if !o.PrevYear() || o.Year() != want {
			t.Fatalf("prev -> %d, want %d", o.Year(), want)
		}
	}
	if o.CanPrevYear() || o.PrevYear() || o.Year() != 2011 {
		t.Error("prev at the first year must be a no-op")
	}

	o.Show("2", 2021)
	if o.ID() != "2" || o.Year() != 2011 {
		t.Errorf("Show on an open overlay should keep the year, got %s@%d", o.ID(), o.Year())
	}
	o.Close()
	o.Show("3", 2016)
	if o.Year() != 2016 {
		t.Errorf("fresh open should use the global year, got %d", o.Year())
	}
}

func TestOverlayYearStaysInRangeProperty(t *testing.T) {
	years := []int{2011, 2016, 2021}
	rapid.Check(t, func(t *rapid.T) {
		o := NewOverlay(years, 2021)
		o.Open("1", rapid.SampledFrom(years).Draw(t, "start"))
		moves := rapid.SliceOf(rapid.Bool()).Draw(t, "moves")
		for _, forward := range moves {
			before := o.Year()
			var moved bool
			if forward {
				moved = o.NextYear()
			} else {
				moved = o.PrevYear()
			}
			if o.Year() < years[0] || o.Year() > years[len(years)-1] {
				t.Fatalf("year %d left the range", o.Year())
			}
			if !moved && o.Year() != before {
				t.Fatalf("no-op move changed the year")
			}
			if moved && forward && o.Year() <= before {
				t.Fatalf("next went from %d to %d", before, o.Year())
			}
		}
	})
}
