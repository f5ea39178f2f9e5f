// Package config is the JSON settings document shared by the binaries.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"negamax-chess/board"
	"negamax-chess/book"
	"negamax-chess/engine"
	"negamax-chess/eval"
)

var ErrUnknownEvaluator = errors.New("config: unknown evaluator")

const (
	EvaluatorHeuristic = "heuristic"
	EvaluatorLinear    = "linear"
	EvaluatorServing   = "serving"
)

type Config struct {
	Depth            int    `json:"depth"`
	Workers          int    `json:"workers"`
	TimeBudgetMs     int    `json:"time_budget_ms"`
	UseBook          bool   `json:"use_book"`
	Evaluator        string `json:"evaluator"`
	Favoured         string `json:"favoured"`
	LinearWeights    string `json:"linear_weights"`
	ServingURL       string `json:"serving_url"`
	ServingModel     string `json:"serving_model"`
	ServingTimeoutMs int    `json:"serving_timeout_ms"`
	LogLevel         string `json:"log_level"`
	Listen           string `json:"listen"`
	// MaxDepth caps the depth an analyzer request may ask for.
	MaxDepth         int    `json:"max_depth"`
}

func Default() Config {
	return Config{
		Depth:            3,
		Workers:          1,
		TimeBudgetMs:     0,
		UseBook:          true,
		Evaluator:        EvaluatorHeuristic,
		Favoured:         "black",
		ServingModel:     "chess",
		ServingTimeoutMs: 2000,
		LogLevel:         "info",
		Listen:           ":8080",
		MaxDepth:         6,
	}
}

// Load reads path over the defaults. Fields missing from the file keep their
// default values.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("decode config %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	if c.Depth < 1 || c.Depth > engine.MaxDepth {
		return fmt.Errorf("config: depth %d: %w", c.Depth, engine.ErrDepthOutOfRange)
	}
	if c.MaxDepth < 1 || c.MaxDepth > engine.MaxDepth {
		return fmt.Errorf("config: max_depth %d: %w", c.MaxDepth, engine.ErrDepthOutOfRange)
	}
	if c.Workers < 1 {
		return fmt.Errorf("config: workers must be at least 1, got %d", c.Workers)
	}
	if c.TimeBudgetMs < 0 {
		return fmt.Errorf("config: negative time budget %d", c.TimeBudgetMs)
	}
	if _, err := c.FavouredColor(); err != nil {
		return err
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("config: log level %q: %w", c.LogLevel, err)
	}
	switch c.Evaluator {
	case EvaluatorHeuristic:
	case EvaluatorLinear:
		if c.LinearWeights == "" {
			return errors.New("config: linear evaluator needs linear_weights")
		}
	case EvaluatorServing:
		if c.ServingURL == "" || c.ServingModel == "" {
			return errors.New("config: serving evaluator needs serving_url and serving_model")
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownEvaluator, c.Evaluator)
	}
	return nil
}

func (c Config) FavouredColor() (board.Color, error) {
	switch strings.ToLower(c.Favoured) {
	case "white", "w":
		return board.White, nil
	case "black", "b", "":
		return board.Black, nil
	}
	return board.Black, fmt.Errorf("config: favoured colour %q is neither white nor black", c.Favoured)
}

func (c Config) TimeBudget() time.Duration {
	return time.Duration(c.TimeBudgetMs) * time.Millisecond
}

// BuildEvaluator constructs the evaluator the config names.
func (c Config) BuildEvaluator() (eval.Evaluator, error) {
	favoured, err := c.FavouredColor()
	if err != nil {
		return nil, err
	}
	switch c.Evaluator {
	case EvaluatorHeuristic, "":
		return eval.NewHeuristic(favoured), nil
	case EvaluatorLinear:
		scorer, err := eval.LoadLinearScorer(c.LinearWeights)
		if err != nil {
			return nil, err
		}
		return eval.NewLearned(scorer, favoured), nil
	case EvaluatorServing:
		timeout := time.Duration(c.ServingTimeoutMs) * time.Millisecond
		return eval.NewLearned(eval.NewServingScorer(c.ServingURL, c.ServingModel, timeout), favoured), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownEvaluator, c.Evaluator)
}

// BuildEngine wires the evaluator, book, workers and time budget into an
// engine.
func (c Config) BuildEngine(logger zerolog.Logger) (*engine.Engine, error) {
	ev, err := c.BuildEvaluator()
	if err != nil {
		return nil, err
	}
	opts := []engine.Option{
		engine.WithLogger(logger),
		engine.WithWorkers(c.Workers),
		engine.WithTimeBudget(c.TimeBudget()),
	}
	if c.UseBook {
		opts = append(opts, engine.WithBook(book.Default()))
	}
	return engine.New(ev, opts...), nil
}

// Logger builds a console logger on stderr at the configured level.
func (c Config) Logger() zerolog.Logger {
	level, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
		Level(level).
		With().Timestamp().Logger()
}
