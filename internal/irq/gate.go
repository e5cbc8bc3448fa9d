// Package irq models the interrupt-enable flag of a single-core controller
// for code that runs a periodic handler on its own goroutine.
//
// The handler runs inside Serve. A reader that must not observe the handler
// half-way through an update disables the gate with Disable and puts back
// the previous state with Restore. While the gate is disabled the handler
// waits, the way a pending interrupt waits for interrupts to be re-enabled.
//
// Like the flag it models, the gate has one owner on the reading side: the
// main loop. Disable nests; it never waits for another Disable.
package irq

import "sync"

// State is the enable flag as it was before Disable.
type State struct {
	closed bool // this call disabled the gate
}

// Gate is the interrupt-enable flag. The zero value is enabled.
type Gate struct {
	mu       sync.Mutex
	cond     sync.Cond
	disabled bool
	serving  bool
	masked   bool
}

func (g *Gate) init() {
	if g.cond.L == nil {
		g.cond.L = &g.mu
	}
}

// Disable turns the gate off, waiting for a running handler to return, and
// reports the state to hand to Restore. Disabling an already disabled gate
// changes nothing and returns a State that Restore leaves alone.
func (g *Gate) Disable() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.init()
	for g.serving {
		g.cond.Wait()
	}
	if g.disabled {
		return State{}
	}
	g.disabled = true
	return State{closed: true}
}

// Restore puts back the state captured by Disable. A masked gate stays off.
func (g *Gate) Restore(s State) {
	if !s.closed {
		return
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.init()
	if !g.masked {
		g.disabled = false
		g.cond.Broadcast()
	}
}

// Serve runs handler once the gate is enabled, with further handlers and
// readers excluded until it returns.
func (g *Gate) Serve(handler func()) {
	g.mu.Lock()
	g.init()
	for g.disabled || g.serving {
		g.cond.Wait()
	}
	g.serving = true
	g.mu.Unlock()

	defer func() {
		g.mu.Lock()
		g.serving = false
		g.cond.Broadcast()
		g.mu.Unlock()
	}()
	handler()
}

// Mask disables the gate for good. Used on the fatal path.
func (g *Gate) Mask() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.init()
	for g.serving {
		g.cond.Wait()
	}
	g.disabled = true
	g.masked = true
}

// Disabled reports whether handlers are currently held off.
func (g *Gate) Disabled() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.disabled
}

// Masked reports whether Mask has been called.
func (g *Gate) Masked() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.masked
}
