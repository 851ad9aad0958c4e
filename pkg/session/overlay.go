package session

import "sort"

// Overlay is the detail overlay's own state: which constituency it shows
// and its year cursor. The cursor moves independently of the global year
// filter and stops at the first and last year instead of wrapping.
type Overlay struct {
	years       []int
	defaultYear int

	open bool
	id   string
	year int
}

// NewOverlay creates a closed overlay over years. defaultYear seeds the
// cursor when no global year is active.
func NewOverlay(years []int, defaultYear int) *Overlay {
	ys := append([]int(nil), years...)
	sort.Ints(ys)
	return &Overlay{years: ys, defaultYear: defaultYear}
}

// Open shows id with the cursor at globalYear, or the default year when
// globalYear is zero.
func (o *Overlay) Open(id string, globalYear int) {
	o.open = true
	o.id = id
	o.year = globalYear
	if o.year == 0 {
		o.year = o.defaultYear
	}
}

// Show switches an open overlay to id keeping the cursor, or opens it.
func (o *Overlay) Show(id string, globalYear int) {
	if o.open {
		o.id = id
		return
	}
	o.Open(id, globalYear)
}

// Close hides the overlay.
func (o *Overlay) Close() {
	o.open = false
	o.id = ""
	o.year = 0
}

func (o *Overlay) IsOpen() bool { return o.open }
func (o *Overlay) ID() string { return o.id }
func (o *Overlay) Year() int { return o.year }

// Years returns the browsable years, ascending.
func (o *Overlay) Years() []int { return append([]int(nil), o.years...) }

func (o *Overlay) prevYear() (int, bool) {
	i := sort.SearchInts(o.years, o.year) // first index with years[i] >= year
	if i == 0 {
		return 0, false
	}
	return o.years[i-1], true
}

func (o *Overlay) nextYear() (int, bool) {
	i := sort.SearchInts(o.years, o.year+1) // first index with years[i] > year
	if i >= len(o.years) {
		return 0, false
	}
	return o.years[i], true
}

// CanPrevYear reports whether PrevYear would move.
func (o *Overlay) CanPrevYear() bool {
	_, ok := o.prevYear()
	return o.open && ok
}

// CanNextYear reports whether NextYear would move.
func (o *Overlay) CanNextYear() bool {
	_, ok := o.nextYear()
	return o.open && ok
}

// PrevYear moves the cursor one year back. It is a no-op at the first year
// or while closed.
func (o *Overlay) PrevYear() bool {
	y, ok := o.prevYear()
	if !o.open || !ok {
		return false
	}
	o.year = y
	return true
}

// NextYear moves the cursor one year forward. It is a no-op at the last
// year or while closed.
func (o *Overlay) NextYear() bool {
	y, ok := o.nextYear()
	if !o.open || !ok {
		return false
	}
	o.year = y
	return true
}
