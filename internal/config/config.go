package config

import (
	"os"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
	"periph.io/x/conn/v3/physic"

	"github.com/coreman2200/dotchase/model"
)

// GPIO backends.
const (
	BackendPeriph = "periph" // periph.io host drivers
	BackendRPIO   = "rpio"   // /dev/gpiomem via go-rpio
	BackendCdev   = "cdev"   // GPIO character device
	BackendSim    = "sim"    // in-memory pins, no hardware
)

// Preview sinks.
const (
	PreviewNone    = "none"
	PreviewConsole = "console"
	PreviewNRZ     = "nrzled"
)

type Pins struct {
	Columns   []string `yaml:"columns"`   // column 0 first, active-low
	Rows      []string `yaml:"rows"`      // row 0 first, active-low
	Indicator string   `yaml:"indicator"` // fault blink output
}

type Timing struct {
	Tick    time.Duration `yaml:"tick"`    // timebase interrupt period
	Refresh time.Duration `yaml:"refresh"` // one row per refresh
	Frame   time.Duration `yaml:"frame"`   // how long each chase frame shows
}

type SelfTest struct {
	Plan string        `yaml:"plan"` // "" | index_sweep | rows | columns | all
	Hold time.Duration `yaml:"hold"`
}

type Preview struct {
	Kind string `yaml:"kind"`
	SPI  string `yaml:"spi,omitempty"`  // spireg port name, "" for the first
	Freq string `yaml:"freq,omitempty"` // e.g. 2500kHz
}

type Log struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file,omitempty"`
	MaxSizeMB  int    `yaml:"max_size_mb,omitempty"`
	MaxBackups int    `yaml:"max_backups,omitempty"`
	MaxAgeDays int    `yaml:"max_age_days,omitempty"`
}

type Fault struct {
	Console string        `yaml:"console,omitempty"` // serial device; "" is stderr
	Blink   time.Duration `yaml:"blink"`
}

type Config struct {
	Backend  string   `yaml:"backend"`
	Chip     string   `yaml:"chip,omitempty"` // cdev only
	Pins     Pins     `yaml:"pins"`
	Timing   Timing   `yaml:"timing"`
	SelfTest SelfTest `yaml:"selftest"`
	Preview  Preview  `yaml:"preview"`
	Log      Log      `yaml:"log"`
	Fault    Fault    `yaml:"fault"`
}

// Default is the bench wiring on a Raspberry Pi header (BCM numbering).
func Default() *Config {
	return &Config{
		Backend: BackendPeriph,
		Chip:    "gpiochip0",
		Pins: Pins{
			Columns:   []string{"GPIO5", "GPIO6", "GPIO13", "GPIO19", "GPIO26"},
			Rows:      []string{"GPIO16", "GPIO20", "GPIO21"},
			Indicator: "GPIO12",
		},
		Timing: Timing{
			Tick:    1024 * time.Microsecond,
			Refresh: 5 * time.Millisecond,
			Frame:   200 * time.Millisecond,
		},
		SelfTest: SelfTest{Hold: 100 * time.Millisecond},
		Preview:  Preview{Kind: PreviewNone, Freq: "2500kHz"},
		Log: Log{
			Level:      "info",
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
		Fault: Fault{Blink: 100 * time.Millisecond},
	}
}

// Load reads path over the defaults. Keys missing from the file keep their
// default value.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	c := Default()
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, errors.Wrapf(err, "parse %s", path)
	}
	return c, nil
}

func Save(path string, c *Config) error {
	b, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0644)
}

// Validate checks the wiring matches the 5x3 matrix and the timings are
// usable.
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendPeriph, BackendRPIO, BackendCdev, BackendSim:
	default:
		return errors.Errorf("unknown backend %q", c.Backend)
	}
	if len(c.Pins.Columns) != model.Width {
		return errors.Errorf("need %d column pins, got %d", model.Width, len(c.Pins.Columns))
	}
	if len(c.Pins.Rows) != model.Height {
		return errors.Errorf("need %d row pins, got %d", model.Height, len(c.Pins.Rows))
	}
	seen := map[string]bool{}
	for _, p := range c.lines() {
		if p == "" {
			return errors.New("empty pin name")
		}
		if seen[p] {
			return errors.Errorf("pin %s assigned twice", p)
		}
		seen[p] = true
	}
	if c.Timing.Tick <= 0 || c.Timing.Refresh <= 0 {
		return errors.New("tick and refresh periods must be positive")
	}
	if c.Timing.Frame < time.Millisecond {
		return errors.Errorf("frame period %v is below 1ms", c.Timing.Frame)
	}
	if c.Fault.Blink <= 0 {
		return errors.New("fault blink period must be positive")
	}
	switch c.Preview.Kind {
	case "", PreviewNone, PreviewConsole:
	case PreviewNRZ:
		if _, err := c.Preview.Frequency(); err != nil {
			return err
		}
	default:
		return errors.Errorf("unknown preview %q", c.Preview.Kind)
	}
	return nil
}

// lines lists every configured output, indicator included.
func (c *Config) lines() []string {
	out := append([]string{}, c.Pins.Columns...)
	out = append(out, c.Pins.Rows...)
	return append(out, c.Pins.Indicator)
}

// Frequency parses the SPI clock of the strip preview.
func (p Preview) Frequency() (physic.Frequency, error) {
	var f physic.Frequency
	if err := f.Set(p.Freq); err != nil {
		return 0, errors.Wrapf(err, "preview freq %q", p.Freq)
	}
	if f <= 0 {
		return 0, errors.Errorf("preview freq %q must be positive", p.Freq)
	}
	return f, nil
}
