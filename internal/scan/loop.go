// Package scan drives the display from the timebase.
package scan

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/coreman2200/dotchase/internal/matrix"
	"github.com/coreman2200/dotchase/model"
)

const (
	DefaultRefresh = 5 * time.Millisecond
	DefaultFrame   = 200 * time.Millisecond
)

// Millis is the elapsed-time source frames are selected by.
type Millis interface {
	Read() uint32
}

// Table is the frame sequence being played.
type Table interface {
	Len() int
	At(i int) model.Frame
}

// Observer mirrors the selected frame somewhere else. It is told only when
// the frame changes.
type Observer interface {
	Show(f model.Frame) error
}

// Sequence yields a finite run of frames.
type Sequence interface {
	Next() (model.Frame, bool)
}

type Options struct {
	Clock   clockwork.Clock // real clock when nil
	Refresh time.Duration   // time between refresh steps
	Frame   time.Duration   // time each table entry is shown, whole ms
	Preview Observer
}

type Looper struct {
	display *matrix.Display
	millis  Millis
	table   Table
	clock   clockwork.Clock
	refresh time.Duration
	frameMs uint32
	preview Observer

	shown   model.Frame
	started bool
}

func New(d *matrix.Display, millis Millis, table Table, opts Options) *Looper {
	l := &Looper{
		display: d,
		millis:  millis,
		table:   table,
		clock:   opts.Clock,
		refresh: opts.Refresh,
		preview: opts.Preview,
	}
	if l.clock == nil {
		l.clock = clockwork.NewRealClock()
	}
	if l.refresh <= 0 {
		l.refresh = DefaultRefresh
	}
	frame := opts.Frame
	if frame < time.Millisecond {
		frame = DefaultFrame
	}
	l.frameMs = uint32(frame / time.Millisecond)
	return l
}

// Index is the table entry for the current time. The counter may have
// wrapped; the division keeps working on the wrapped value.
func (l *Looper) Index() int {
	return int(l.millis.Read() / l.frameMs % uint32(l.table.Len()))
}

// Step selects the frame for the current time and refreshes one row.
func (l *Looper) Step() error {
	l.show(l.table.At(l.Index()))
	return l.display.Refresh()
}

func (l *Looper) show(f model.Frame) {
	l.display.Set(f)
	if l.preview == nil || (l.started && f == l.shown) {
		return
	}
	l.shown, l.started = f, true
	if err := l.preview.Show(f); err != nil {
		log.Warn().Err(err).Uint16("frame", f.Bits()).Msg("preview failed")
	}
}

// Run steps once per refresh period until ctx is done or a step fails.
func (l *Looper) Run(ctx context.Context) error {
	ticker := l.clock.NewTicker(l.refresh)
	defer ticker.Stop()
	log.Info().
		Dur("refresh", l.refresh).
		Uint32("frame_ms", l.frameMs).
		Int("frames", l.table.Len()).
		Msg("scan started")

	for {
		if err := l.Step(); err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.Chan():
		}
	}
}

// Play scans each frame of seq for hold before Run takes over. It returns
// early, without error, when ctx is done.
func (l *Looper) Play(ctx context.Context, seq Sequence, hold time.Duration) error {
	ticker := l.clock.NewTicker(l.refresh)
	defer ticker.Stop()

	for n := 0; ; n++ {
		f, ok := seq.Next()
		if !ok {
			log.Debug().Int("frames", n).Msg("self-test done")
			return nil
		}
		l.show(f)
		deadline := l.clock.Now().Add(hold)
		// Every row is lit at least once, however short the hold.
		for step := 0; step < model.Height || l.clock.Now().Before(deadline); step++ {
			if err := l.display.Refresh(); err != nil {
				return err
			}
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.Chan():
			}
		}
	}
}
