// Package timebase keeps a free-running millisecond counter advanced by a
// periodic tick handler.
package timebase

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/coreman2200/dotchase/internal/irq"
)

// DefaultPeriod is the Timer0 overflow period of a 16 MHz AVR with a /64
// prescaler: 256 * 64 / 16 MHz.
const DefaultPeriod = 1024 * time.Microsecond

const fractMax = 1000 // microseconds per millisecond

// Timebase counts elapsed milliseconds. The counter wraps at 2^32.
type Timebase struct {
	gate  *irq.Gate
	clock clockwork.Clock

	period    time.Duration
	increment uint32 // whole ms per tick
	fractInc  uint32 // left-over µs per tick

	millis uint32
	fract  uint32

	start   time.Time
	applied uint64 // periods advanced since start
	onPanic func(recovered any)
}

// New returns a stopped Timebase at zero. Periods below one microsecond are
// raised to one.
func New(clock clockwork.Clock, gate *irq.Gate, period time.Duration) *Timebase {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if gate == nil {
		gate = &irq.Gate{}
	}
	us := period.Microseconds()
	if us < 1 {
		us = 1
		period = time.Microsecond
	}
	return &Timebase{
		gate:      gate,
		clock:     clock,
		period:    period,
		increment: uint32(us / fractMax),
		fractInc:  uint32(us % fractMax),
	}
}

func (t *Timebase) Period() time.Duration {
	return t.period
}

// OnPanic installs a hook run, still inside the panic, when the tick
// goroutine panics. Without one the panic crashes the process. Set it
// before Start.
func (t *Timebase) OnPanic(hook func(recovered any)) {
	t.onPanic = hook
}

// Start resets the counter and arms the periodic tick. Ticks stop when ctx
// is done. Call once, before the first Read.
func (t *Timebase) Start(ctx context.Context) {
	t.gate.Serve(func() {
		t.millis = 0
		t.fract = 0
		t.applied = 0
		t.start = t.clock.Now()
	})
	ticker := t.clock.NewTicker(t.period)
	go func() {
		defer ticker.Stop()
		if t.onPanic != nil {
			defer func() {
				if r := recover(); r != nil {
					t.onPanic(r)
				}
			}()
		}
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.Chan():
				t.catchUp()
			}
		}
	}()
}

// catchUp advances once for every period elapsed since Start. A ticker
// drops deliveries while its receiver is behind, so the count comes from
// the clock.
func (t *Timebase) catchUp() {
	due := uint64(t.clock.Since(t.start) / t.period)
	t.gate.Serve(func() {
		for ; t.applied < due; t.applied++ {
			t.advance()
		}
	})
}

// Tick runs the handler for exactly one period. It is for driving the
// counter by hand and must not be mixed with Start.
func (t *Timebase) Tick() {
	t.gate.Serve(t.advance)
}

func (t *Timebase) advance() {
	m := t.millis + t.increment
	f := t.fract + t.fractInc
	if f >= fractMax {
		f -= fractMax
		m++
	}
	t.fract = f
	t.millis = m
}

// Read returns the milliseconds elapsed since Start, modulo 2^32.
func (t *Timebase) Read() uint32 {
	state := t.gate.Disable()
	defer t.gate.Restore(state)
	return t.millis
}
