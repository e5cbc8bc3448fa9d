// Package preview mirrors the selected frame onto a periph.io display, either
// the terminal or a 15-pixel NRZ strip on SPI, for bench debugging.
package preview

import (
	"image"
	"io"

	"github.com/pkg/errors"
	"periph.io/x/conn/v3/display"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/devices/v3/nrzled"
	"periph.io/x/extra/devices/screen"
	"periph.io/x/host/v3"

	"github.com/coreman2200/dotchase/internal/config"
	"github.com/coreman2200/dotchase/model"
)

// Sink draws frames as a strip in reading order.
type Sink struct {
	drawer display.Drawer
	port   io.Closer
}

func New(d display.Drawer) *Sink {
	return &Sink{drawer: d}
}

// Open builds the sink configured in p. It returns nil for PreviewNone.
func Open(p config.Preview) (*Sink, error) {
	switch p.Kind {
	case "", config.PreviewNone:
		return nil, nil
	case config.PreviewConsole:
		return New(screen.New(model.Dots)), nil
	case config.PreviewNRZ:
		freq, err := p.Frequency()
		if err != nil {
			return nil, err
		}
		if _, err := host.Init(); err != nil {
			return nil, errors.Wrap(err, "periph host init")
		}
		port, err := spireg.Open(p.SPI)
		if err != nil {
			return nil, errors.Wrap(err, "open preview spi port")
		}
		s, err := NewStrip(port, freq)
		if err != nil {
			port.Close()
			return nil, err
		}
		s.port = port
		return s, nil
	}
	return nil, errors.Errorf("unknown preview %q", p.Kind)
}

// NewStrip drives a Dots-long NRZ strip on port.
func NewStrip(port spi.Port, freq physic.Frequency) (*Sink, error) {
	d, err := nrzled.NewSPI(port, &nrzled.Opts{
		NumPixels: model.Dots,
		Channels:  3,
		Freq:      freq,
	})
	if err != nil {
		return nil, errors.Wrap(err, "nrzled")
	}
	return New(d), nil
}

func (s *Sink) Show(f model.Frame) error {
	return s.drawer.Draw(s.drawer.Bounds(), f.Strip(), image.Point{})
}

// Close turns the strip off and releases the port.
func (s *Sink) Close() error {
	err := s.drawer.Halt()
	if s.port != nil {
		if cerr := s.port.Close(); err == nil {
			err = cerr
		}
	}
	return err
}
