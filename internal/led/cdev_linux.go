//go:build linux

package led

import (
	"fmt"

	"github.com/warthog618/go-gpiocdev"
	"periph.io/x/conn/v3/gpio"

	"github.com/coreman2200/dotchase/internal/config"
)

const consumer = "dotchase"

type cdevLine struct {
	line   *gpiocdev.Line
	chip   string
	offset int
}

func (l *cdevLine) Out(v gpio.Level) error {
	value := 0
	if v == gpio.High {
		value = 1
	}
	return l.line.SetValue(value)
}

func (l *cdevLine) String() string {
	return fmt.Sprintf("%s/%d", l.chip, l.offset)
}

// openCdev requests each line from the character device as an output that
// starts High. Requested lines are held until release.
func openCdev(c *config.Config) (lookupFunc, func() error, error) {
	var held []*gpiocdev.Line
	lookup := func(name string) (Line, error) {
		n, err := BCM(name)
		if err != nil {
			return nil, err
		}
		l, err := gpiocdev.RequestLine(c.Chip, n,
			gpiocdev.AsOutput(1), gpiocdev.WithConsumer(consumer))
		if err != nil {
			return nil, err
		}
		held = append(held, l)
		return &cdevLine{line: l, chip: c.Chip, offset: n}, nil
	}
	release := func() error {
		var first error
		for _, l := range held {
			if err := l.Close(); err != nil && first == nil {
				first = err
			}
		}
		held = nil
		return first
	}
	return lookup, release, nil
}
