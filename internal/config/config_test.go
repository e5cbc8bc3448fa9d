package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gotest.tools/v3/fs"
	"periph.io/x/conn/v3/physic"
)

func TestDefaultIsValid(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestLoadOverlaysDefaults(t *testing.T) {
	f := fs.NewFile(t, "dotchase", fs.WithContent(`
backend: sim
pins:
  rows: [GPIO2, GPIO3, GPIO4]
timing:
  refresh: 2ms
  frame: 150ms
fault:
  console: /dev/ttyAMA0
`))
	defer f.Remove()

	c, err := Load(f.Path())
	require.NoError(t, err)
	require.NoError(t, c.Validate())

	assert.Equal(t, BackendSim, c.Backend)
	assert.Equal(t, []string{"GPIO2", "GPIO3", "GPIO4"}, c.Pins.Rows)
	assert.Equal(t, Default().Pins.Columns, c.Pins.Columns)
	assert.Equal(t, 2*time.Millisecond, c.Timing.Refresh)
	assert.Equal(t, 150*time.Millisecond, c.Timing.Frame)
	assert.Equal(t, 1024*time.Microsecond, c.Timing.Tick)
	assert.Equal(t, "/dev/ttyAMA0", c.Fault.Console)
	assert.Equal(t, 100*time.Millisecond, c.Fault.Blink)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	f := fs.NewFile(t, "dotchase", fs.WithContent("timing: [not, a, map]\n"))
	defer f.Remove()
	_, err = Load(f.Path())
	assert.Error(t, err)
}

func TestSaveRoundTrip(t *testing.T) {
	dir := fs.NewDir(t, "dotchase")
	defer dir.Remove()

	c := Default()
	c.Backend = BackendCdev
	c.Preview.Kind = PreviewNRZ
	c.Timing.Frame = 250 * time.Millisecond

	path := dir.Join("config.yaml")
	require.NoError(t, Save(path, c))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, c, got)
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"unknown backend", func(c *Config) { c.Backend = "spidev" }},
		{"four columns", func(c *Config) { c.Pins.Columns = c.Pins.Columns[:4] }},
		{"two rows", func(c *Config) { c.Pins.Rows = c.Pins.Rows[:2] }},
		{"duplicate pin", func(c *Config) { c.Pins.Indicator = c.Pins.Rows[0] }},
		{"empty pin", func(c *Config) { c.Pins.Columns[3] = "" }},
		{"zero refresh", func(c *Config) { c.Timing.Refresh = 0 }},
		{"negative tick", func(c *Config) { c.Timing.Tick = -time.Millisecond }},
		{"sub-ms frame", func(c *Config) { c.Timing.Frame = time.Microsecond }},
		{"zero blink", func(c *Config) { c.Fault.Blink = 0 }},
		{"unknown preview", func(c *Config) { c.Preview.Kind = "hdmi" }},
		{"bad freq", func(c *Config) { c.Preview.Kind = PreviewNRZ; c.Preview.Freq = "fast" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := Default()
			tc.mutate(c)
			assert.Error(t, c.Validate())
		})
	}
}

func TestPreviewFrequency(t *testing.T) {
	f, err := Preview{Freq: "2500kHz"}.Frequency()
	require.NoError(t, err)
	assert.Equal(t, 2500*physic.KiloHertz, f)
}
