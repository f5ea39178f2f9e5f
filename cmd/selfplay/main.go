// Command selfplay mines (move, position, evaluation) records from engine
// self-play games.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"negamax-chess/config"
	"negamax-chess/selfplay"
)

func main() {
	configPath := flag.String("config", "", "JSON config file")
	games := flag.Int("games", 20, "number of games to play")
	workers := flag.Int("workers", 1, "games played at once")
	depth := flag.Int("depth", 0, "search depth (overrides config)")
	maxMoves := flag.Int("max-moves", 500, "plies per game before it is abandoned")
	randomPlies := flag.Int("random-plies", 4, "uniformly random plies at the start of each game")
	out := flag.String("out", "", "append every record to this JSONL file instead of one JSON file per game")
	dir := flag.String("dir", "data", "directory for per-game MovesAndPositions<N>.json files")
	pgnPath := flag.String("pgn", "", "also write the games as PGN to this file")
	logLevel := flag.String("log-level", "", "log level (overrides config)")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}
	if *depth > 0 {
		cfg.Depth = *depth
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	logger := cfg.Logger()

	// Root moves are searched one at a time; parallelism comes from games.
	cfg.Workers = 1
	e, err := cfg.BuildEngine(logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("build engine")
	}
	m := selfplay.NewMiner(e, cfg.Depth)
	m.MaxMoves = *maxMoves
	m.RandomPlies = *randomPlies
	m.Logger = logger

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	played, err := m.Mine(ctx, *games, *workers)
	if err != nil {
		logger.Fatal().Err(err).Msg("mining failed")
	}

	records := 0
	if *out != "" {
		f, err := os.OpenFile(*out, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			logger.Fatal().Err(err).Msg("open output")
		}
		defer f.Close()
		for _, g := range played {
			if err := selfplay.WriteJSONL(f, g.Records); err != nil {
				logger.Fatal().Err(err).Msg("write records")
			}
			records += len(g.Records)
		}
	} else {
		for _, g := range played {
			path, err := selfplay.SaveGame(*dir, g)
			if err != nil {
				logger.Fatal().Err(err).Msg("save game")
			}
			records += len(g.Records)
			logger.Debug().Str("path", path).Int("records", len(g.Records)).Msg("saved game")
		}
	}

	if *pgnPath != "" {
		f, err := os.Create(*pgnPath)
		if err != nil {
			logger.Fatal().Err(err).Msg("create pgn")
		}
		defer f.Close()
		for i, g := range played {
			pgn, err := g.PGN()
			if err != nil {
				logger.Error().Err(err).Int("game", i).Msg("render pgn")
				continue
			}
			fmt.Fprintln(f, pgn)
			fmt.Fprintln(f)
		}
	}
	logger.Info().Int("games", len(played)).Int("records", records).Msg("done")
}
