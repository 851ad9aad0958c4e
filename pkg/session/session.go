package session

import (
	"errors"
	"fmt"
	"strings"

	"github.com/vanderheijden86/votemap/pkg/debug"
	"github.com/vanderheijden86/votemap/pkg/model"
	"github.com/vanderheijden86/votemap/pkg/results"
)

var (
	// ErrUnknownConstituency is returned when an id has no metadata entry.
	ErrUnknownConstituency = errors.New("unknown constituency")
	// ErrUnknownDistrict is returned when a district name matches no
	// metadata entry.
	ErrUnknownDistrict = errors.New("unknown district")
)

// DistrictPicker is the district selection widget. An empty name selects
// "all districts".
type DistrictPicker interface {
	SetDistrict(name string) error
}

// ConstituencyPicker is the constituency selection widget. An empty id
// clears its value.
type ConstituencyPicker interface {
	SetOptions(items []results.ConstituencyItem) error
	SetConstituency(id string) error
}

// Map is the part of the map the session drives. mapview.Controller
// implements it.
type Map interface {
	ZoomToDistrict(name string) bool
	ZoomToConstituency(id string) bool
	ClearSelection()
	ResetView()
	SetDataset(ds *model.ElectionDataset)
}

// OverlayPresenter renders the detail overlay. ShowOverlay is called
// whenever the overlay's constituency or year changes.
type OverlayPresenter interface {
	ShowOverlay(id string, year int)
	HideOverlay()
}

// Surfaces bundles the widgets a session keeps in sync.
type Surfaces struct {
	Districts      DistrictPicker
	Constituencies ConstituencyPicker
	Map            Map
	Overlay        OverlayPresenter
}

// Session is one viewing session.
type Session struct {
	meta      model.MetaSet
	districts []string
	surfaces  Surfaces

	state   ViewState
	guard   Guard
	tokens  Tokens
	seq     *Sequencer
	overlay *Overlay

	pendingYear int
}

// New creates a session over meta. years are the declared election years
// and defaultYear seeds the overlay when no global year is active.
func New(meta model.MetaSet, years []int, defaultYear int, s Surfaces) *Session {
	return &Session{
		meta:      meta,
		districts: results.DistrictList(meta),
		surfaces:  s,
		seq:       NewSequencer(meta),
		overlay:   NewOverlay(years, defaultYear),
	}
}

// State returns a copy of the current view state.
func (s *Session) State() ViewState {
	st := s.state
	if s.overlay.IsOpen() {
		st.OverlayYear = s.overlay.Year()
	}
	return st
}

func (s *Session) Meta() model.MetaSet { return s.meta }
func (s *Session) Districts() []string { return s.districts }
func (s *Session) Sequencer() *Sequencer { return s.seq }
func (s *Session) Overlay() *Overlay { return s.overlay }
func (s *Session) Tokens() *Tokens { return &s.tokens }
func (s *Session) Applying(t Surface) bool { return s.guard.Applying(t) }
func (s *Session) PendingYear() (int, bool) { return s.pendingYear, s.pendingYear != 0 }

// SetMeta replaces the metadata after a reload. The current selection is
// kept when it still exists and cleared otherwise.
func (s *Session) SetMeta(meta model.MetaSet) error {
	s.meta = meta
	s.districts = results.DistrictList(meta)
	s.seq = NewSequencer(meta)
	if s.state.District != "" {
		if _, ok := s.canonicalDistrict(s.state.District); !ok {
			s.state.District = ""
			if err := s.guard.Apply(SurfaceDistrictPicker, func() error {
				return s.surfaces.Districts.SetDistrict("")
			}); err != nil {
				return err
			}
		}
	}
	return s.guard.Apply(SurfaceConstituencyPicker, func() error {
		if err := s.surfaces.Constituencies.SetOptions(results.ConstituencyList(meta, s.state.District)); err != nil {
			return err
		}
		if _, ok := meta[s.state.ConstituencyID]; !ok && s.state.ConstituencyID != "" {
			s.state.ConstituencyID = ""
			s.surfaces.Map.ClearSelection()
			s.closeOverlay()
		}
		return s.surfaces.Constituencies.SetConstituency(s.state.ConstituencyID)
	})
}

func (s *Session) canonicalDistrict(name string) (string, bool) {
	for _, d := range s.districts {
		if strings.EqualFold(d, name) {
			return d, true
		}
	}
	return "", false
}

// DistrictPickerChanged handles a change event from the district picker.
// Changes made by the session itself are ignored.
func (s *Session) DistrictPickerChanged(name string) error {
	if s.guard.Applying(SurfaceDistrictPicker) {
		return nil
	}
	if name == "" {
		return s.ClearDistrict(SurfaceDistrictPicker)
	}
	return s.SelectDistrict(SurfaceDistrictPicker, name)
}

// ConstituencyPickerChanged handles a change event from the constituency
// picker. Changes made by the session itself are ignored.
func (s *Session) ConstituencyPickerChanged(id string) error {
	if s.guard.Applying(SurfaceConstituencyPicker) || id == "" {
		return nil
	}
	return s.SelectConstituency(SurfaceConstituencyPicker, id)
}

// MapDistrictClicked handles a click on a district shape.
func (s *Session) MapDistrictClicked(name string) error {
	return s.SelectDistrict(SurfaceMap, name)
}

// MapConstituencyClicked handles a click on a constituency shape.
func (s *Session) MapConstituencyClicked(id string) error {
	return s.SelectConstituency(SurfaceMap, id)
}

// SearchResultChosen handles a click on a search result.
func (s *Session) SearchResultChosen(id string) error {
	return s.SelectConstituency(SurfaceSearch, id)
}

// SelectConstituency makes id the selected constituency: the district
// picker shows its district, the constituency picker lists that district
// and shows id, the map zooms to it once, and the overlay opens on it.
func (s *Session) SelectConstituency(origin Surface, id string) error {
	m, ok := s.meta[id]
	if !ok {
		return fmt.Errorf("select %q from %s: %w", id, origin, ErrUnknownConstituency)
	}
	debug.Log("session: select constituency %s from %s", id, origin)
	district := m.District

	if err := s.guard.Apply(SurfaceDistrictPicker, func() error {
		if s.state.District == district {
			return nil
		}
		return s.surfaces.Districts.SetDistrict(district)
	}); err != nil {
		return fmt.Errorf("sync district picker: %w", err)
	}

	if err := s.guard.Apply(SurfaceConstituencyPicker, func() error {
		if s.state.District != district {
			if err := s.surfaces.Constituencies.SetOptions(results.ConstituencyList(s.meta, district)); err != nil {
				return err
			}
		}
		return s.surfaces.Constituencies.SetConstituency(id)
	}); err != nil {
		return fmt.Errorf("sync constituency picker: %w", err)
	}

	s.state.District = district
	s.state.ConstituencyID = id
	s.surfaces.Map.ZoomToConstituency(id)
	s.overlay.Show(id, s.state.Year)
	s.surfaces.Overlay.ShowOverlay(id, s.overlay.Year())
	return nil
}

// SelectDistrict filters the constituency picker to name and zooms the map
// to the district when the selection changed. A selected constituency
// outside the district is cleared.
func (s *Session) SelectDistrict(origin Surface, name string) error {
	district, ok := s.canonicalDistrict(name)
	if !ok {
		return fmt.Errorf("select %q from %s: %w", name, origin, ErrUnknownDistrict)
	}
	debug.Log("session: select district %s from %s", district, origin)
	changed := s.state.District != district

	keep := s.state.ConstituencyID != "" && s.meta[s.state.ConstituencyID].District == district

	if err := s.guard.Apply(SurfaceConstituencyPicker, func() error {
		if changed {
			if err := s.surfaces.Constituencies.SetOptions(results.ConstituencyList(s.meta, district)); err != nil {
				return err
			}
		}
		if keep {
			return s.surfaces.Constituencies.SetConstituency(s.state.ConstituencyID)
		}
		return s.surfaces.Constituencies.SetConstituency("")
	}); err != nil {
		return fmt.Errorf("sync constituency picker: %w", err)
	}

	if err := s.guard.Apply(SurfaceDistrictPicker, func() error {
		if origin == SurfaceDistrictPicker {
			return nil
		}
		return s.surfaces.Districts.SetDistrict(district)
	}); err != nil {
		return fmt.Errorf("sync district picker: %w", err)
	}

	if !keep && s.state.ConstituencyID != "" {
		s.state.ConstituencyID = ""
		s.surfaces.Map.ClearSelection()
		s.closeOverlay()
	}
	s.state.District = district
	if changed {
		s.surfaces.Map.ZoomToDistrict(district)
	}
	return nil
}

// ClearDistrict removes the district filter. The constituency picker lists
// every constituency again; the map does not move.
func (s *Session) ClearDistrict(origin Surface) error {
	if err := s.guard.Apply(SurfaceConstituencyPicker, func() error {
		if err := s.surfaces.Constituencies.SetOptions(results.ConstituencyList(s.meta, "")); err != nil {
			return err
		}
		return s.surfaces.Constituencies.SetConstituency(s.state.ConstituencyID)
	}); err != nil {
		return fmt.Errorf("sync constituency picker: %w", err)
	}
	if err := s.guard.Apply(SurfaceDistrictPicker, func() error {
		if origin == SurfaceDistrictPicker {
			return nil
		}
		return s.surfaces.Districts.SetDistrict("")
	}); err != nil {
		return fmt.Errorf("sync district picker: %w", err)
	}
	s.state.District = ""
	return nil
}

// Next opens the constituency after the overlay's one. It only acts while
// the overlay is open.
func (s *Session) Next() (bool, error) { return s.navigate(s.seq.Next) }

// Previous opens the constituency before the overlay's one.
func (s *Session) Previous() (bool, error) { return s.navigate(s.seq.Previous) }

func (s *Session) navigate(step func(string) (string, bool)) (bool, error) {
	if !s.overlay.IsOpen() {
		return false, nil
	}
	id, ok := step(s.overlay.ID())
	if !ok {
		return false, nil
	}
	return true, s.SelectConstituency(SurfaceNavigation, id)
}

// OverlayPrevYear moves the overlay one year back without touching the
// global year or the map.
func (s *Session) OverlayPrevYear() bool {
	if !s.overlay.PrevYear() {
		return false
	}
	s.surfaces.Overlay.ShowOverlay(s.overlay.ID(), s.overlay.Year())
	return true
}

// OverlayNextYear moves the overlay one year forward.
func (s *Session) OverlayNextYear() bool {
	if !s.overlay.NextYear() {
		return false
	}
	s.surfaces.Overlay.ShowOverlay(s.overlay.ID(), s.overlay.Year())
	return true
}

// CloseOverlay hides the overlay. The selection stays.
func (s *Session) CloseOverlay() {
	s.closeOverlay()
}

func (s *Session) closeOverlay() {
	if !s.overlay.IsOpen() {
		return
	}
	s.overlay.Close()
	s.tokens.Invalidate(ChannelOverlay)
	s.surfaces.Overlay.HideOverlay()
}

// RequestYear records year as the requested global year and returns the
// token its load must present to ApplyYear.
func (s *Session) RequestYear(year int) Token {
	s.pendingYear = year
	return s.tokens.Next(ChannelYear)
}

// ApplyYear applies a finished year load. Results for a superseded request
// are discarded and reported as not applied. A failed load leaves the
// previous year in place.
func (s *Session) ApplyYear(tok Token, year int, ds *model.ElectionDataset, loadErr error) (bool, error) {
	if !s.tokens.Current(tok) {
		debug.Log("session: discard stale year %d (gen %d)", year, tok.Gen)
		return false, nil
	}
	s.pendingYear = 0
	if loadErr != nil {
		return false, fmt.Errorf("load year %d: %w", year, loadErr)
	}
	s.state.Year = year
	s.surfaces.Map.SetDataset(ds)
	return true, nil
}

// ClearYear removes the global year filter and cancels any pending load.
func (s *Session) ClearYear() {
	s.tokens.Invalidate(ChannelYear)
	s.pendingYear = 0
	s.state.Year = 0
	s.surfaces.Map.SetDataset(nil)
}

// Reset clears the district and constituency selection, closes the
// overlay, and returns the map to its initial view. The year filter stays.
func (s *Session) Reset() error {
	if err := s.guard.Apply(SurfaceDistrictPicker, func() error {
		return s.surfaces.Districts.SetDistrict("")
	}); err != nil {
		return fmt.Errorf("sync district picker: %w", err)
	}
	if err := s.guard.Apply(SurfaceConstituencyPicker, func() error {
		if err := s.surfaces.Constituencies.SetOptions(results.ConstituencyList(s.meta, "")); err != nil {
			return err
		}
		return s.surfaces.Constituencies.SetConstituency("")
	}); err != nil {
		return fmt.Errorf("sync constituency picker: %w", err)
	}
	s.state.District = ""
	s.state.ConstituencyID = ""
	s.closeOverlay()
	s.surfaces.Map.ClearSelection()
	s.surfaces.Map.ResetView()
	return nil
}
