// Package led acquires the output lines wired to the dot matrix.
//
// Several GPIO stacks are supported; each one hands back lines that accept a
// periph.io gpio.Level, so the scanner never knows which one is in use.
package led

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"periph.io/x/conn/v3/gpio"

	"github.com/coreman2200/dotchase/internal/config"
	"github.com/coreman2200/dotchase/internal/matrix"
	"github.com/coreman2200/dotchase/model"
)

// Line is a single output line.
type Line interface {
	Out(l gpio.Level) error
	String() string
}

type lookupFunc func(name string) (Line, error)

// backend prepares a GPIO stack and returns how to find lines on it and how
// to release it.
type backend func(c *config.Config) (lookupFunc, func() error, error)

var backends = map[string]backend{
	config.BackendPeriph: openPeriph,
	config.BackendRPIO:   openRPIO,
	config.BackendCdev:   openCdev,
	config.BackendSim:    openSim,
}

// Bank is every line the firmware drives.
type Bank struct {
	Columns   [model.Width]Line
	Rows      [model.Height]Line
	Indicator Line

	release func() error
}

// Open acquires the configured lines and parks them inactive (High), so
// nothing lights before the first refresh.
func Open(c *config.Config) (*Bank, error) {
	open, ok := backends[c.Backend]
	if !ok {
		return nil, errors.Errorf("unknown backend %q", c.Backend)
	}
	if len(c.Pins.Columns) != model.Width || len(c.Pins.Rows) != model.Height {
		return nil, errors.Errorf("need %dx%d pins, got %dx%d",
			model.Width, model.Height, len(c.Pins.Columns), len(c.Pins.Rows))
	}
	lookup, release, err := open(c)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s backend", c.Backend)
	}
	b := &Bank{release: release}

	acquire := func(name string) (Line, error) {
		l, err := lookup(name)
		if err != nil {
			return nil, errors.Wrapf(err, "pin %s", name)
		}
		if err := l.Out(gpio.High); err != nil {
			return nil, errors.Wrapf(err, "park pin %s", name)
		}
		return l, nil
	}
	for i, name := range c.Pins.Columns {
		if b.Columns[i], err = acquire(name); err != nil {
			b.Close()
			return nil, err
		}
	}
	for i, name := range c.Pins.Rows {
		if b.Rows[i], err = acquire(name); err != nil {
			b.Close()
			return nil, err
		}
	}
	if b.Indicator, err = acquire(c.Pins.Indicator); err != nil {
		b.Close()
		return nil, err
	}
	return b, nil
}

// Outputs splits the bank into the column and row groups the scanner takes.
func (b *Bank) Outputs() (cols [model.Width]matrix.Output, rows [model.Height]matrix.Output) {
	for i, l := range b.Columns {
		cols[i] = l
	}
	for i, l := range b.Rows {
		rows[i] = l
	}
	return cols, rows
}

// Close releases the backend. Lines are left where they are.
func (b *Bank) Close() error {
	if b.release == nil {
		return nil
	}
	err := b.release()
	b.release = nil
	return err
}

// BCM extracts the Broadcom GPIO number from names like "GPIO17", "BCM17"
// or "17".
func BCM(name string) (int, error) {
	s := strings.ToUpper(strings.TrimSpace(name))
	for _, prefix := range []string{"GPIO", "BCM"} {
		s = strings.TrimPrefix(s, prefix)
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, errors.Errorf("%q is not a BCM pin name", name)
	}
	return n, nil
}

func noRelease() error { return nil }
