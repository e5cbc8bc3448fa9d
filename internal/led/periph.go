package led

import (
	"github.com/pkg/errors"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/gpio/gpiotest"
	"periph.io/x/host/v3"

	"github.com/coreman2200/dotchase/internal/config"
)

func openPeriph(c *config.Config) (lookupFunc, func() error, error) {
	if _, err := host.Init(); err != nil {
		return nil, nil, err
	}
	return lookupRegistry, noRelease, nil
}

// openSim registers an in-memory pin for every configured name that the
// registry does not already know, then resolves them like periph does.
func openSim(c *config.Config) (lookupFunc, func() error, error) {
	names := append(append([]string{}, c.Pins.Columns...), c.Pins.Rows...)
	names = append(names, c.Pins.Indicator)
	for _, name := range names {
		if gpioreg.ByName(name) != nil {
			continue
		}
		p := &gpiotest.Pin{N: name, Num: -1, Fn: "sim", L: gpio.High}
		if err := gpioreg.Register(p); err != nil {
			return nil, nil, err
		}
	}
	return lookupRegistry, noRelease, nil
}

func lookupRegistry(name string) (Line, error) {
	p := gpioreg.ByName(name)
	if p == nil {
		return nil, errors.New("not in the gpio registry")
	}
	return p, nil
}
