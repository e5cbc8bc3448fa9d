// Package fault is the fail-stop path. Once something goes wrong that the
// firmware cannot recover from, interrupts are masked, the location is
// reported on the console and the indicator blinks until power-off.
package fault

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"periph.io/x/conn/v3/gpio"

	"github.com/coreman2200/dotchase/internal/irq"
)

// DefaultBlink is the indicator half-period.
const DefaultBlink = 100 * time.Millisecond

// Indicator is the output blinked while halted.
type Indicator interface {
	Out(l gpio.Level) error
}

// Sink collects what the fatal path needs. Every field is optional.
type Sink struct {
	Gate    *irq.Gate
	Acquire func() (Indicator, error)
	Console io.Writer // os.Stderr when nil
	Blink   time.Duration
	Clock   clockwork.Clock
}

// Halt reports err and blinks the indicator until ctx is done. Production
// callers pass a context that is never cancelled.
func (s *Sink) Halt(ctx context.Context, err error) {
	if s.Gate != nil {
		s.Gate.Mask()
	}

	var ind Indicator
	if s.Acquire != nil {
		var aerr error
		if ind, aerr = s.Acquire(); aerr != nil {
			log.Error().Err(aerr).Msg("indicator unavailable")
			ind = nil
		}
	}

	d := Diagnose(err)
	console := s.Console
	if console == nil {
		console = os.Stderr
	}
	fmt.Fprintf(console, "Firmware panic!\r\n  At %s\r\n", d.Location)
	log.Error().
		Err(err).
		Str("severity", string(d.Severity)).
		Str("code", d.Code).
		Str("at", d.Location).
		Strs("likely_causes", d.LikelyCauses).
		Msg(d.Summary)

	s.blink(ctx, ind)
}

func (s *Sink) blink(ctx context.Context, ind Indicator) {
	clock := s.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	period := s.Blink
	if period <= 0 {
		period = DefaultBlink
	}
	ticker := clock.NewTicker(period)
	defer ticker.Stop()

	level := gpio.High
	for {
		if ind != nil {
			// Nothing left to report a failure to.
			_ = ind.Out(level)
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			level = !level
		}
	}
}

// Guard turns a panic into Halt. Use it as `defer sink.Guard(ctx)`.
func (s *Sink) Guard(ctx context.Context) {
	r := recover()
	if r == nil {
		return
	}
	s.Halt(ctx, Recovered(r))
}

// Recovered wraps a value returned by recover. Call it from the deferred
// function that recovered, while the panicking frames are still on the
// stack, so the panic site can be found.
func Recovered(r any) *Panic {
	return &Panic{Value: r, At: panicSite()}
}

// Panic is a recovered panic value and where it was raised.
type Panic struct {
	Value any
	At    string
}

func (p *Panic) Error() string {
	return fmt.Sprintf("panic: %v", p.Value)
}

// Unwrap exposes a panicking error value.
func (p *Panic) Unwrap() error {
	err, _ := p.Value.(error)
	return err
}

// panicSite is the first frame below the runtime's panic machinery.
func panicSite() string {
	pcs := make([]uintptr, 32)
	n := runtime.Callers(3, pcs)
	frames := runtime.CallersFrames(pcs[:n])
	inRuntime := false
	for {
		f, more := frames.Next()
		if strings.HasPrefix(f.Function, "runtime.") {
			inRuntime = true
		} else if inRuntime {
			return fmt.Sprintf("%s:%d", filepath.Base(f.File), f.Line)
		}
		if !more {
			return unknown
		}
	}
}

const unknown = "unknown"

type stackTracer interface {
	StackTrace() errors.StackTrace
}

// Location is where err came from: the panic site of a recovered panic or
// the innermost frame recorded by github.com/pkg/errors.
func Location(err error) string {
	var p *Panic
	if errors.As(err, &p) {
		return p.At
	}
	var innermost stackTracer
	for e := err; e != nil; e = errors.Unwrap(e) {
		if st, ok := e.(stackTracer); ok {
			innermost = st
		}
	}
	if innermost == nil {
		return unknown
	}
	st := innermost.StackTrace()
	if len(st) == 0 {
		return unknown
	}
	return fmt.Sprintf("%s:%d", st[0], st[0])
}

// OpenConsole opens the serial device the panic banner goes to. An empty
// path means stderr.
func OpenConsole(path string) (io.WriteCloser, error) {
	if path == "" {
		return nopCloser{os.Stderr}, nil
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_APPEND, 0)
	if err != nil {
		return nil, errors.Wrapf(err, "open fault console %s", path)
	}
	return f, nil
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }
