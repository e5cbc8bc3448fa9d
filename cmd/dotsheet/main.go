package main

import (
	"flag"
	"image/png"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/coreman2200/dotchase/internal/sheet"
	"github.com/coreman2200/dotchase/model"
)

func main() {
	var (
		out     = flag.String("o", "chase.png", "output PNG")
		pitch   = flag.Int("pitch", 16, "pixels between dot centres")
		perLine = flag.Int("per-line", model.Width, "frames per line")
	)
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})

	chase := model.Chase()
	im := sheet.Render(&chase, sheet.Options{Pitch: *pitch, PerLine: *perLine})

	f, err := os.Create(*out)
	if err != nil {
		log.Fatal().Err(err).Msg("create output")
	}
	if err := png.Encode(f, im); err != nil {
		f.Close()
		log.Fatal().Err(err).Str("path", *out).Msg("encode")
	}
	if err := f.Close(); err != nil {
		log.Fatal().Err(err).Str("path", *out).Msg("close")
	}
	log.Info().Str("path", *out).Int("frames", chase.Len()).Msg("contact sheet written")
}
