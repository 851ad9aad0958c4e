package session

import (
	"sync"

	"github.com/vanderheijden86/votemap/pkg/model"
	"github.com/vanderheijden86/votemap/pkg/results"
)

// Sequencer orders every constituency by numeric id and steps through them
// circularly. The order is computed once, on first use, and ignores any
// district filter.
type Sequencer struct {
	meta model.MetaSet
	once sync.Once
	ids  []string
	pos  map[string]int
}

// NewSequencer creates a sequencer over meta.
func NewSequencer(meta model.MetaSet) *Sequencer {
	return &Sequencer{meta: meta}
}

func (q *Sequencer) init() {
	q.once.Do(func() {
		items := results.ConstituencyList(q.meta, "")
		q.ids = make([]string, len(items))
		q.pos = make(map[string]int, len(items))
		for i, it := range items {
			q.ids[i] = it.ID
			q.pos[it.ID] = i
		}
	})
}

// Order returns the navigation order.
func (q *Sequencer) Order() []string {
	q.init()
	return append([]string(nil), q.ids...)
}

// Next returns the id after current, wrapping from last to first. ok is
// false when current is not in the order.
func (q *Sequencer) Next(current string) (id string, ok bool) {
	return q.step(current, 1)
}

// Previous returns the id before current, wrapping from first to last.
func (q *Sequencer) Previous(current string) (id string, ok bool) {
	return q.step(current, -1)
}

func (q *Sequencer) step(current string, delta int) (string, bool) {
	q.init()
	i, found := q.pos[current]
	if !found || len(q.ids) == 0 {
		return "", false
	}
	n := len(q.ids)
	return q.ids[((i+delta)%n+n)%n], true
}
