package testutil

import (
	"testing"

	"github.com/vanderheijden86/votemap/pkg/model"
)

// WriteDataDir writes f to a fresh temp directory and returns its path.
func WriteDataDir(t testing.TB, f *Fixture) string {
	t.Helper()
	dir := t.TempDir()
	if err := f.WriteDir(dir); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return dir
}

// AssertSortedIDs verifies ids are in ascending numeric order without duplicates.
func AssertSortedIDs(t *testing.T, ids []string) {
	t.Helper()
	for i := 1; i < len(ids); i++ {
		if model.CompareIDs(ids[i-1], ids[i]) >= 0 {
			t.Errorf("ids out of order at %d: %q then %q", i, ids[i-1], ids[i])
		}
	}
}

// AssertDatasetConsistent verifies the derived fields of every result in ds:
// ids are sorted and match the map, the winner and runner-up point into the
// candidate list and the margin is never negative for a sorted list.
func AssertDatasetConsistent(t *testing.T, ds *model.ElectionDataset) {
	t.Helper()
	if ds == nil {
		t.Fatal("nil dataset")
	}
	AssertSortedIDs(t, ds.IDs)
	if len(ds.IDs) != len(ds.Constituencies) {
		t.Errorf("IDs has %d entries, map has %d", len(ds.IDs), len(ds.Constituencies))
	}
	for _, id := range ds.IDs {
		r := ds.Result(id)
		if r == nil {
			t.Errorf("id %s listed but missing", id)
			continue
		}
		if r.ID != id {
			t.Errorf("result %s carries id %q", id, r.ID)
		}
		if len(r.Candidates) == 0 {
			if r.Winner != nil || r.RunnerUp != nil {
				t.Errorf("%s: winner or runner-up without candidates", id)
			}
			continue
		}
		if r.Winner == nil || !pointsInto(r.Winner, r.Candidates) {
			t.Errorf("%s: winner does not point into candidates", id)
		}
		if len(r.Candidates) > 1 {
			if r.RunnerUp != &r.Candidates[1] {
				t.Errorf("%s: runner-up is not the second candidate", id)
			}
			if m, ok := r.Margin(); !ok || m < 0 {
				t.Errorf("%s: margin = %d, %v", id, m, ok)
			}
		}
	}
}

func pointsInto(c *model.Candidate, list []model.Candidate) bool {
	for i := range list {
		if c == &list[i] {
			return true
		}
	}
	return false
}
