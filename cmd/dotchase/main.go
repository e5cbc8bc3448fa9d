package main

import (
	"context"
	"flag"
	"io/fs"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/coreman2200/dotchase/internal/config"
	"github.com/coreman2200/dotchase/internal/fault"
	"github.com/coreman2200/dotchase/internal/irq"
	"github.com/coreman2200/dotchase/internal/led"
	"github.com/coreman2200/dotchase/internal/logging"
	"github.com/coreman2200/dotchase/internal/matrix"
	"github.com/coreman2200/dotchase/internal/preview"
	"github.com/coreman2200/dotchase/internal/scan"
	"github.com/coreman2200/dotchase/internal/selftest"
	"github.com/coreman2200/dotchase/internal/timebase"
	"github.com/coreman2200/dotchase/model"
)

func main() {
	var (
		configPath  = flag.String("config", "dotchase.yaml", "path to the config file")
		backend     = flag.String("backend", "", "gpio backend: periph | rpio | cdev | sim")
		simOnly     = flag.Bool("sim", false, "force the in-memory backend (no hardware output)")
		previewKind = flag.String("preview", "", "frame preview: none | console | nrzled")
		plan        = flag.String("selftest", "", "lamp test before the chase: index_sweep | rows | columns | all")
		logLevel    = flag.String("log-level", "", "trace | debug | info | warn | error")
	)
	flag.Parse()

	// Console logging until the config says otherwise.
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.Kitchen})

	cfg, err := config.Load(*configPath)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		log.Warn().Str("path", *configPath).Msg("no config file; using defaults")
		cfg = config.Default()
	case err != nil:
		log.Fatal().Err(err).Str("path", *configPath).Msg("config load failed")
	}

	if *backend != "" {
		cfg.Backend = *backend
	}
	if *simOnly {
		cfg.Backend = config.BackendSim
	}
	if *previewKind != "" {
		cfg.Preview.Kind = *previewKind
	}
	if *plan != "" {
		cfg.SelfTest.Plan = *plan
	}
	if *logLevel != "" {
		cfg.Log.Level = *logLevel
	}

	closer, err := logging.Setup(cfg.Log)
	if err != nil {
		log.Fatal().Err(err).Msg("logging setup failed")
	}
	defer closer.Close()

	console, err := fault.OpenConsole(cfg.Fault.Console)
	if err != nil {
		log.Warn().Err(err).Msg("fault console unavailable; using stderr")
		console, _ = fault.OpenConsole("")
	}
	defer console.Close()

	gate := &irq.Gate{}
	var bank *led.Bank
	sink := &fault.Sink{
		Gate:    gate,
		Console: console,
		Blink:   cfg.Fault.Blink,
		Acquire: func() (fault.Indicator, error) {
			if bank == nil {
				return nil, errors.New("no gpio backend open")
			}
			return bank.Indicator, nil
		},
	}
	// Halted firmware blinks until it is killed.
	halted := context.Background()
	defer sink.Guard(halted)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := cfg.Validate(); err != nil {
		stop()
		sink.Halt(halted, fault.Startup(err))
	}
	if bank, err = led.Open(cfg); err != nil {
		stop()
		sink.Halt(halted, fault.Startup(err))
	}

	log.Info().
		Str("backend", cfg.Backend).
		Strs("columns", cfg.Pins.Columns).
		Strs("rows", cfg.Pins.Rows).
		Msg("outputs ready")

	if err := run(ctx, cfg, bank, gate); err != nil {
		stop()
		sink.Halt(halted, err)
	}
	if err := bank.Close(); err != nil {
		log.Warn().Err(err).Msg("release outputs")
	}
	log.Info().Msg("stopped")
}

// run scans the chase until ctx is done. The display is blanked on the way
// out.
func run(ctx context.Context, cfg *config.Config, bank *led.Bank, gate *irq.Gate) error {
	cols, rows := bank.Outputs()
	d := matrix.New(cols, rows)
	defer func() {
		if err := d.Blank(); err != nil {
			log.Error().Err(err).Msg("blank on shutdown")
		}
	}()

	kind, err := selftest.Parse(cfg.SelfTest.Plan)
	if err != nil {
		return fault.Startup(err)
	}

	clock := clockwork.NewRealClock()
	opts := scan.Options{
		Clock:   clock,
		Refresh: cfg.Timing.Refresh,
		Frame:   cfg.Timing.Frame,
	}
	prev, err := preview.Open(cfg.Preview)
	if err != nil {
		return fault.Startup(err)
	}
	if prev != nil {
		defer prev.Close()
		opts.Preview = prev
	}

	tb := timebase.New(clock, gate, cfg.Timing.Tick)
	chase := model.Chase()
	l := scan.New(d, tb, &chase, opts)

	if kind != selftest.None {
		runner := selftest.NewRunner(kind)
		log.Info().Str("plan", string(runner.Kind())).Int("frames", runner.Len()).Msg("self-test")
		if err := l.Play(ctx, runner, cfg.SelfTest.Hold); err != nil {
			return err
		}
	}

	// A panic in the tick handler stops the scan and comes back as the
	// cause, so it takes the same fault path as the main loop.
	ctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)
	tb.OnPanic(func(r any) { cancel(fault.Recovered(r)) })

	// The chase starts at frame 0 once the lamp test is over.
	tb.Start(ctx)
	if err := l.Run(ctx); err != nil {
		return err
	}
	var p *fault.Panic
	if errors.As(context.Cause(ctx), &p) {
		return p
	}
	return nil
}
