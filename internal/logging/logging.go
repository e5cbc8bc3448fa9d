// Package logging configures the global zerolog logger.
package logging

import (
	"io"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/coreman2200/dotchase/internal/config"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Setup points log.Logger at a console writer on stdout and, when cfg.File
// is set, a rotating file as well. The returned Closer flushes the file.
func Setup(cfg config.Log) (io.Closer, error) {
	return setup(cfg, os.Stdout)
}

func setup(cfg config.Log, console io.Writer) (io.Closer, error) {
	level := zerolog.InfoLevel
	if cfg.Level != "" {
		l, err := zerolog.ParseLevel(cfg.Level)
		if err != nil {
			return nil, errors.Wrapf(err, "log level %q", cfg.Level)
		}
		level = l
	}

	zerolog.TimeFieldFormat = time.RFC3339
	var w io.Writer = zerolog.ConsoleWriter{Out: console, TimeFormat: time.Kitchen}
	var closer io.Closer = nopCloser{}
	if cfg.File != "" {
		f := &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
		}
		w = zerolog.MultiLevelWriter(w, f)
		closer = f
	}

	log.Logger = zerolog.New(w).Level(level).With().Timestamp().Logger()
	zerolog.SetGlobalLevel(level)
	return closer, nil
}
