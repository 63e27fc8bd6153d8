package remote

import (
	"sync"

	"kaboo-server/game"
)

// stateCell holds the newest canonical state received. Older versions are
// discarded so replies and re-fetches may land in any order.
type stateCell struct {
	mu    sync.Mutex
	state game.GameState
	set   bool
}

// offer applies st unless a newer or equal version is already held.
func (c *stateCell) offer(st game.GameState) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.set && st.Version <= c.state.Version {
		return false
	}
	c.state = st
	c.set = true
	return true
}

func (c *stateCell) get() (game.GameState, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Clone(), c.set
}
