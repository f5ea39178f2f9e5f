// Command analyzer serves move selection and evaluation over HTTP, with a
// websocket that streams root-move scores while a search runs.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"negamax-chess/config"
)

func main() {
	configPath := flag.String("config", "", "JSON config file")
	listen := flag.String("listen", "", "listen address (overrides config)")
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
	if *listen != "" {
		cfg.Listen = *listen
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if cfg.Depth > cfg.MaxDepth {
		fmt.Fprintf(os.Stderr, "depth %d exceeds max_depth %d\n", cfg.Depth, cfg.MaxDepth)
		os.Exit(1)
	}
	logger := cfg.Logger()

	// The budget is applied per request, not per engine call.
	budget := cfg.TimeBudget()
	cfg.TimeBudgetMs = 0
	e, err := cfg.BuildEngine(logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("build engine")
	}
	s := &server{engine: e, depth: cfg.Depth, maxDepth: cfg.MaxDepth, budget: budget, logger: logger}

	httpServer := &http.Server{
		Addr:    cfg.Listen,
		Handler: newRouter(s),
	}
	serverErrCh := make(chan error, 1)
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrCh <- err
		}
		close(serverErrCh)
	}()

	sigCtx, stopSignals := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stopSignals()

	logger.Info().Str("listen", cfg.Listen).Str("evaluator", cfg.Evaluator).Int("depth", cfg.Depth).Msg("analyzer listening")
	select {
	case <-sigCtx.Done():
		logger.Info().Msg("shutdown signal received")
	case err, ok := <-serverErrCh:
		if ok {
			logger.Error().Err(err).Msg("server error")
		}
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	if err := httpServer.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error().Err(err).Msg("graceful shutdown failed")
		_ = httpServer.Close()
	}
}
