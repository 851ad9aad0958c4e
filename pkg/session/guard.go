package session

import "github.com/vanderheijden86/votemap/pkg/debug"

type guardState int

const (
	guardIdle guardState = iota
	guardApplying
)

// Guard tracks, per surface, whether a programmatic update is being applied
// to it. A surface's change handler consults Applying and treats the change
// as already handled while an update is in progress.
type Guard struct {
	depth map[Surface]int
}

func (g *Guard) state(s Surface) guardState {
	if g.depth[s] > 0 {
		return guardApplying
	}
	return guardIdle
}

// Applying reports whether a programmatic update to s is in progress.
func (g *Guard) Applying(s Surface) bool {
	return g.state(s) == guardApplying
}

// Apply runs fn with target marked as applying. The mark is released when
// fn returns, whether it returns an error or panics. Nested applies on the
// same target are allowed.
func (g *Guard) Apply(target Surface, fn func() error) error {
	if g.depth == nil {
		g.depth = make(map[Surface]int)
	}
	g.depth[target]++
	debug.LogIf(g.depth[target] == 1, "guard: %s idle -> applying", target)
	defer func() {
		g.depth[target]--
		debug.LogIf(g.depth[target] == 0, "guard: %s applying -> idle", target)
	}()
	return fn()
}
