package session

import (
	"errors"
	"testing"
)

func TestGuardApply(t *testing.T) {
	var g Guard
	if g.Applying(SurfaceMap) {
		t.Fatal("zero guard should be idle")
	}
	err := g.Apply(SurfaceMap, func() error {
		if !g.Applying(SurfaceMap) {
			t.Error("not applying inside Apply")
		}
		if g.Applying(SurfaceDistrictPicker) {
			t.Error("other surfaces must stay idle")
		}
		return g.Apply(SurfaceMap, func() error {
			if !g.Applying(SurfaceMap) {
				t.Error("nested apply lost the mark")
			}
			return nil
		})
	})
	if err != nil {
		t.Fatal(err)
	}
	if g.Applying(SurfaceMap) {
		t.Error("guard still applying after Apply returned")
	}
}

func TestGuardReleasesOnError(t *testing.T) {
	var g Guard
	boom := errors.New("boom")
	if err := g.Apply(SurfaceSearch, func() error { return boom }); !errors.Is(err, boom) {
		t.Fatalf("err = %v", err)
	}
	if g.Applying(SurfaceSearch) {
		t.Error("guard not released after error")
	}
}

func TestGuardReleasesOnPanic(t *testing.T) {
	var g Guard
	func() {
		defer func() { _ = recover() }()
		_ = g.Apply(SurfaceConstituencyPicker, func() error { panic("widget exploded") })
	}()
	if g.Applying(SurfaceConstituencyPicker) {
		t.Error("guard not released after panic")
	}
}

func TestTokens(t *testing.T) {
	var tk Tokens
	if tk.Current(Token{}) {
		t.Error("zero token must never be current")
	}
	a := tk.Next(ChannelSearch)
	b := tk.Next(ChannelSearch)
	o := tk.Next(ChannelOverlay)
	if tk.Current(a) {
		t.Error("superseded token reported current")
	}
	if !tk.Current(b) || !tk.Current(o) {
		t.Error("latest tokens should be current on independent channels")
	}
	tk.Invalidate(ChannelOverlay)
	if tk.Current(o) {
		t.Error("invalidated token reported current")
	}
}

func TestSurfaceString(t *testing.T) {
	if SurfaceNavigation.String() != "navigation" {
		t.Errorf("got %q", SurfaceNavigation.String())
	}
	if Surface(42).String() != "Surface(42)" {
		t.Errorf("got %q", Surface(42).String())
	}
}
