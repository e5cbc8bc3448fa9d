package fault

import (
	"bytes"
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3/gpio"

	"github.com/coreman2200/dotchase/internal/irq"
)

// levels records every write to the indicator.
type levels struct {
	mu  sync.Mutex
	out []gpio.Level
}

func (l *levels) Out(v gpio.Level) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.out = append(l.out, v)
	return nil
}

func (l *levels) snapshot() []gpio.Level {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]gpio.Level(nil), l.out...)
}

func TestHaltReportsAndBlinks(t *testing.T) {
	clock := clockwork.NewFakeClock()
	gate := &irq.Gate{}
	ind := &levels{}
	var console bytes.Buffer
	s := &Sink{
		Gate:    gate,
		Acquire: func() (Indicator, error) { return ind, nil },
		Console: &console,
		Blink:   DefaultBlink,
		Clock:   clock,
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	err := errors.New("line busy")
	go func() {
		defer close(done)
		s.Halt(ctx, err)
	}()

	clock.BlockUntil(1)
	assert.True(t, gate.Masked())
	for i := 0; i < 3; i++ {
		clock.Advance(DefaultBlink)
		n := i + 2
		require.Eventually(t, func() bool { return len(ind.snapshot()) >= n }, time.Second, time.Millisecond)
	}
	cancel()
	<-done

	assert.Equal(t, []gpio.Level{gpio.High, gpio.Low, gpio.High, gpio.Low}, ind.snapshot()[:4])
	assert.Equal(t, fmt.Sprintf("Firmware panic!\r\n  At %s\r\n", Location(err)), console.String())
	assert.Regexp(t, `^fault_test\.go:\d+$`, Location(err))
}

func TestHaltWithoutIndicator(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var console bytes.Buffer
	s := &Sink{
		Acquire: func() (Indicator, error) { return nil, errors.New("gone") },
		Console: &console,
		Clock:   clockwork.NewFakeClock(),
	}
	s.Halt(ctx, nil)
	assert.Equal(t, "Firmware panic!\r\n  At unknown\r\n", console.String())
}

func explode() {
	var m map[string]int
	m["dot"] = 1
}

func TestGuardRecoversPanicSite(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var console bytes.Buffer
	s := &Sink{Console: &console, Clock: clockwork.NewFakeClock()}

	func() {
		defer s.Guard(ctx)
		explode()
	}()

	assert.Regexp(t, "Firmware panic!\r\n  At fault_test\\.go:\\d+\r\n", console.String())
}

func TestGuardIgnoresNormalReturn(t *testing.T) {
	var console bytes.Buffer
	s := &Sink{Console: &console}
	func() {
		defer s.Guard(context.Background())
	}()
	assert.Empty(t, console.String())
}

func TestLocationPrefersInnermostStack(t *testing.T) {
	inner := errors.New("inner")
	outer := errors.Wrap(inner, "outer")
	assert.Equal(t, Location(inner), Location(outer))
	assert.Equal(t, "unknown", Location(fmt.Errorf("plain")))
}

func TestDiagnose(t *testing.T) {
	assert.Equal(t, "startup", Diagnose(Startup(errors.New("no chip"))).Code)
	assert.Equal(t, "output", Diagnose(errors.Wrap(errors.New("busy"), "row 1")).Code)
	d := Diagnose(&Panic{Value: "boom", At: "scan.go:12"})
	assert.Equal(t, "panic", d.Code)
	assert.Equal(t, "scan.go:12", d.Location)
	assert.Equal(t, Warn, Diagnose(nil).Severity)
	assert.Nil(t, Startup(nil))

	wrapped := Startup(errors.New("no chip"))
	assert.True(t, errors.Is(wrapped, ErrStartup))
	assert.Regexp(t, `^fault_test\.go:\d+$`, Location(wrapped))
}

func TestHaltAcquiresIndicatorBeforeReporting(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	gate := &irq.Gate{}
	var console bytes.Buffer
	var order []string
	s := &Sink{
		Gate: gate,
		Acquire: func() (Indicator, error) {
			order = append(order, fmt.Sprintf("acquire masked=%t console=%q", gate.Masked(), console.String()))
			return &levels{}, nil
		},
		Console: &console,
		Clock:   clockwork.NewFakeClock(),
	}
	s.Halt(ctx, errors.New("line busy"))

	assert.Equal(t, []string{`acquire masked=true console=""`}, order)
	assert.Contains(t, console.String(), "Firmware panic!")
}

func TestRecoveredFindsPanicSite(t *testing.T) {
	var p *Panic
	func() {
		defer func() {
			if r := recover(); r != nil {
				p = Recovered(r)
			}
		}()
		explode()
	}()
	require.NotNil(t, p)
	assert.Regexp(t, `^fault_test\.go:\d+$`, p.At)
	assert.Contains(t, p.Error(), "assignment to entry in nil map")
	assert.Equal(t, p.At, Location(p))
}
