package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"runtime"
	"runtime/pprof"
	"time"

	"negamax-chess/board"
	"negamax-chess/config"
	"negamax-chess/engine"
)

func main() {
	// --- Flags ---
	depthFlag := flag.Int("depth", 4, "search depth in plies")
	repeatFlag := flag.Int("repeat", 1, "number of searches to run")
	fenFlag := flag.String("fen", "", "FEN to search (empty = startpos)")
	evaluatorFlag := flag.String("evaluator", config.EvaluatorHeuristic, "heuristic, linear or serving")
	weightsFlag := flag.String("weights", "", "linear evaluator weights file")
	servingFlag := flag.String("serving-url", "", "model server base URL")
	workersFlag := flag.Int("workers", 1, "root moves searched at once")
	cpuProfile := flag.String("cpuprofile", "", "write CPU profile to file")
	memProfile := flag.String("memprofile", "", "write memory profile (heap) to file")
	logLevel := flag.String("log-level", "warn", "log level")
	flag.Parse()

	cfg := config.Default()
	cfg.Depth = *depthFlag
	cfg.Workers = *workersFlag
	cfg.UseBook = false
	cfg.Evaluator = *evaluatorFlag
	cfg.LinearWeights = *weightsFlag
	cfg.ServingURL = *servingFlag
	cfg.LogLevel = *logLevel
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	logger := cfg.Logger()

	e, err := cfg.BuildEngine(logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("build engine")
	}

	// FEN selection
	pos := board.StartPosition()
	if *fenFlag != "" {
		if pos, err = board.ParseFEN(*fenFlag); err != nil {
			logger.Fatal().Err(err).Msg("parse fen")
		}
	}

	// --- Optional CPU profiling setup ---
	if *cpuProfile != "" {
		cpuFile, err := os.Create(*cpuProfile)
		if err != nil {
			logger.Fatal().Err(err).Msg("could not create CPU profile")
		}
		if err := pprof.StartCPUProfile(cpuFile); err != nil {
			logger.Fatal().Err(err).Msg("could not start CPU profile")
		}
		defer func() {
			pprof.StopCPUProfile()
			cpuFile.Close()
		}()
	}

	fmt.Printf("searchbench: fen=%q depth=%d repeat=%d evaluator=%s\n", pos.FEN(), cfg.Depth, *repeatFlag, cfg.Evaluator)

	var total engine.Stats
	startAll := time.Now()
	for i := 0; i < *repeatFlag; i++ {
		res, err := e.SelectBestMove(context.Background(), pos, cfg.Depth)
		if err != nil {
			logger.Error().Err(err).Int("iteration", i+1).Msg("search failed")
			break
		}
		total.Nodes += res.Nodes
		total.Evaluations += res.Evaluations
		fmt.Printf("iteration %d: bestmove %s score=%.1f nodes=%d evals=%d time=%v\n",
			i+1, board.MoveString(res.Move), res.Score, res.Nodes, res.Evaluations, res.Elapsed)
	}
	totalElapsed := time.Since(startAll)
	nps := float64(total.Nodes) / totalElapsed.Seconds()
	fmt.Printf("total time: %v nodes=%d evals=%d nps=%.0f\n", totalElapsed, total.Nodes, total.Evaluations, nps)

	// --- Optional heap profile at the end ---
	if *memProfile != "" {
		f, err := os.Create(*memProfile)
		if err != nil {
			logger.Fatal().Err(err).Msg("could not create memory profile")
		}
		defer f.Close()

		runtime.GC() // get up-to-date heap info
		if err := pprof.WriteHeapProfile(f); err != nil {
			logger.Fatal().Err(err).Msg("could not write memory profile")
		}
	}
}
