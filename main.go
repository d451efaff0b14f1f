package main

import (
	"flag"
	"os"
	"time"

	"tabletop/experiments"
	"tabletop/meta"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	path := flag.String("config", "", "Path to a YAML experiment config")
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly})

	cfg, err := meta.Load(*path)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.Fatal().Err(err).Str("level", cfg.LogLevel).Msg("invalid log level")
	}
	zerolog.SetGlobalLevel(level)

	dir, err := experiments.Run(cfg)
	if err != nil {
		log.Fatal().Err(err).Str("experiment", cfg.Experiment).Msg("experiment failed")
	}
	log.Info().Str("dir", dir).Msg("done")
}
