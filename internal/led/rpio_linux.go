//go:build linux

package led

import (
	"fmt"

	"github.com/stianeikeland/go-rpio"
	"periph.io/x/conn/v3/gpio"

	"github.com/coreman2200/dotchase/internal/config"
)

type rpioLine struct {
	pin rpio.Pin
}

func (l rpioLine) Out(v gpio.Level) error {
	if v == gpio.High {
		l.pin.High()
	} else {
		l.pin.Low()
	}
	return nil
}

func (l rpioLine) String() string {
	return fmt.Sprintf("rpio/GPIO%d", l.pin)
}

func openRPIO(c *config.Config) (lookupFunc, func() error, error) {
	if err := rpio.Open(); err != nil {
		return nil, nil, err
	}
	lookup := func(name string) (Line, error) {
		n, err := BCM(name)
		if err != nil {
			return nil, err
		}
		pin := rpio.Pin(n)
		pin.Output()
		return rpioLine{pin: pin}, nil
	}
	return lookup, rpio.Close, nil
}
