package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"negamax-chess/board"
	"negamax-chess/eval"
)

// Result is the outcome of a move selection. Score is relative to the side
// to move at the root.
type Result struct {
	Move  board.Move
	Score eval.Score
	Stats
	// Partial is set when the time budget ran out before every root move
	// was searched.
	Partial bool
	// Book is set when the move came from the opening book.
	Book    bool
	Elapsed time.Duration
}

// RootScore is the searched value of one root move.
type RootScore struct {
	Index int
	Move  board.Move
	Score eval.Score
}

// SelectBestMove searches every root move of p to depth plies and returns
// the one with the greatest score. Ties go to the move generated first. p is
// never modified.
func (e *Engine) SelectBestMove(ctx context.Context, p *board.Position, depth int) (Result, error) {
	return e.Analyze(ctx, p, depth, nil)
}

// Analyze is SelectBestMove with a callback that sees each root move as it
// is scored. With several workers the callback runs on their goroutines.
func (e *Engine) Analyze(ctx context.Context, p *board.Position, depth int, report func(RootScore)) (Result, error) {
	if depth < 1 || depth > MaxDepth {
		return Result{}, fmt.Errorf("%w: %d", ErrDepthOutOfRange, depth)
	}
	moves := p.LegalMoves()
	if len(moves) == 0 {
		return Result{}, fmt.Errorf("%w: %s", ErrNoLegalMoves, p.FEN())
	}
	if e.timeBudget > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeBudget)
		defer cancel()
	}

	start := time.Now()
	var (
		roots []rootOutcome
		err   error
	)
	if e.workers > 1 && len(moves) > 1 {
		roots, err = e.searchRootsParallel(ctx, p, moves, depth, report)
	} else {
		roots, err = e.searchRoots(ctx, p, moves, depth, report)
	}
	if err != nil {
		return Result{}, err
	}

	res := reduce(moves, roots)
	res.Elapsed = time.Since(start)
	if !res.searched {
		return Result{}, ctx.Err()
	}
	e.logger.Info().
		Str("move", board.MoveString(res.Move)).
		Float64("score", res.Score).
		Int("depth", depth).
		Int("nodes", res.Nodes).
		Int("evals", res.Evaluations).
		Bool("partial", res.Partial).
		Dur("elapsed", res.Elapsed).
		Msg("selected move")
	return res.Result, nil
}

type rootOutcome struct {
	score eval.Score
	stats Stats
	done  bool
}

type reduced struct {
	Result
	searched bool
}

// reduce walks the root outcomes in generation order so the sequential and
// parallel searches agree on ties.
func reduce(moves []board.Move, roots []rootOutcome) reduced {
	var res reduced
	for i := range roots {
		r := &roots[i]
		res.Stats.add(r.stats)
		if !r.done {
			res.Partial = true
			continue
		}
		if !res.searched || r.score > res.Score {
			res.Score = r.score
			res.Move = moves[i]
		}
		res.searched = true
	}
	return res
}

func (e *Engine) searchRoots(ctx context.Context, p *board.Position, moves []board.Move, depth int, report func(RootScore)) ([]rootOutcome, error) {
	roots := make([]rootOutcome, len(moves))
	for i, m := range moves {
		if ctx.Err() != nil {
			break
		}
		score, stats, err := e.searchRoot(p, m, depth)
		roots[i] = rootOutcome{score: score, stats: stats, done: err == nil}
		if err != nil {
			return nil, fmt.Errorf("root move %s: %w", board.MoveString(m), err)
		}
		e.logRoot(i, m, score, report)
	}
	return roots, nil
}

func (e *Engine) searchRootsParallel(ctx context.Context, p *board.Position, moves []board.Move, depth int, report func(RootScore)) ([]rootOutcome, error) {
	roots := make([]rootOutcome, len(moves))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	for i, m := range moves {
		i, m := i, m
		g.Go(func() error {
			if gctx.Err() != nil {
				return nil
			}
			score, stats, err := e.searchRoot(p, m, depth)
			if err != nil {
				return fmt.Errorf("root move %s: %w", board.MoveString(m), err)
			}
			roots[i] = rootOutcome{score: score, stats: stats, done: true}
			e.logRoot(i, m, score, report)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return roots, nil
}

// searchRoot scores one root move on a private copy of p.
func (e *Engine) searchRoot(p *board.Position, m board.Move, depth int) (eval.Score, Stats, error) {
	child := p.Clone()
	child.Apply(m)
	s := e.newSearcher()
	value, err := s.negamax(child, depth-1, 1, negInfinity, infinity)
	return -value, s.stats, err
}

func (e *Engine) logRoot(i int, m board.Move, score eval.Score, report func(RootScore)) {
	e.logger.Debug().
		Int("index", i).
		Str("move", board.MoveString(m)).
		Float64("score", score).
		Msg("root move")
	if report != nil {
		report(RootScore{Index: i, Move: m, Score: score})
	}
}

// Play answers from the opening book when it knows p and searches otherwise.
func (e *Engine) Play(ctx context.Context, p *board.Position, depth int) (Result, error) {
	if e.book != nil {
		if m, ok := e.book.Lookup(p); ok {
			e.logger.Info().Str("move", board.MoveString(m)).Msg("book move")
			return Result{Move: m, Book: true}, nil
		}
	}
	res, err := e.SelectBestMove(ctx, p, depth)
	if errors.Is(err, context.DeadlineExceeded) {
		// Nothing finished in time; any legal move beats none.
		moves := p.LegalMoves()
		e.logger.Warn().Msg("time budget spent before the first root move finished")
		return Result{Move: moves[0], Partial: true}, nil
	}
	return res, err
}
