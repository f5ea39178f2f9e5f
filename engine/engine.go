// Package engine picks moves with a fixed-depth negamax alpha-beta search
// over board positions scored by an injected eval.Evaluator.
package engine

import (
	"time"

	"github.com/rs/zerolog"

	"negamax-chess/board"
	"negamax-chess/book"
	"negamax-chess/eval"
)

type Engine struct {
	evaluator  eval.Evaluator
	logger     zerolog.Logger
	workers    int
	timeBudget time.Duration
	book       book.Book

	// trace, when set, sees the window of every search frame.
	trace func(depth int, alpha, beta eval.Score)
}

type Option func(*Engine)

// WithLogger routes search logs to l. The default discards them.
func WithLogger(l zerolog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithWorkers searches up to n root moves at once. n <= 1 searches them one
// after the other.
func WithWorkers(n int) Option {
	return func(e *Engine) { e.workers = n }
}

// WithTimeBudget bounds every move selection by d of wall-clock time. The
// budget is only checked between root moves.
func WithTimeBudget(d time.Duration) Option {
	return func(e *Engine) { e.timeBudget = d }
}

// WithBook lets Play answer from b before searching.
func WithBook(b book.Book) Option {
	return func(e *Engine) { e.book = b }
}

func New(evaluator eval.Evaluator, opts ...Option) *Engine {
	e := &Engine{
		evaluator: evaluator,
		logger:    zerolog.Nop(),
		workers:   1,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) Evaluator() eval.Evaluator {
	return e.evaluator
}

// Favoured converts a root score, relative to the side to move in p, into the
// evaluator's absolute convention.
func (e *Engine) Favoured(p *board.Position, s eval.Score) eval.Score {
	return eval.Relative(e.evaluator, p, s)
}
