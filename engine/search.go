package engine

import (
	"errors"
	"fmt"
	"math"

	"negamax-chess/board"
	"negamax-chess/eval"
)

// =============================================================================
// SCORE CONSTANTS
// =============================================================================
const (
	// Mate is the magnitude of a checkmate score. A side mated at ply n scores
	// -(Mate - n), so shorter mates score further from zero.
	Mate      eval.Score = 1e6
	DrawScore eval.Score = 0

	MaxDepth = 64

	// MateThreshold is the least magnitude any mate score can have.
	MateThreshold = Mate - MaxDepth
)

var (
	ErrNoLegalMoves    = errors.New("engine: no legal moves")
	ErrInvalidWindow   = errors.New("engine: invalid search window")
	ErrDepthOutOfRange = errors.New("engine: depth out of range")
)

var (
	infinity    = math.Inf(1)
	negInfinity = math.Inf(-1)
)

// searcher carries the counters of one search call.
type searcher struct {
	evaluator eval.Evaluator
	stats     Stats
	trace     func(depth int, alpha, beta eval.Score)
}

func (e *Engine) newSearcher() *searcher {
	return &searcher{evaluator: e.evaluator, trace: e.trace}
}

// Search returns the negamax value of p to depth plies, relative to the side
// to move, within the window [alpha, beta]. A result at or below alpha, or
// at or above beta, is only a bound. p is restored before Search returns.
func (e *Engine) Search(p *board.Position, depth int, alpha, beta eval.Score) (eval.Score, error) {
	if depth < 0 || depth > MaxDepth {
		return 0, fmt.Errorf("%w: %d", ErrDepthOutOfRange, depth)
	}
	s := e.newSearcher()
	return s.negamax(p, depth, 0, alpha, beta)
}

func (s *searcher) negamax(p *board.Position, depth, ply int, alpha, beta eval.Score) (eval.Score, error) {
	if s.trace != nil {
		s.trace(depth, alpha, beta)
	}
	if alpha > beta || math.IsNaN(alpha) || math.IsNaN(beta) {
		return 0, fmt.Errorf("%w: [%v, %v]", ErrInvalidWindow, alpha, beta)
	}
	s.stats.Nodes++
	if alpha == beta {
		s.stats.EmptyWindowCutoffs++
		return alpha, nil
	}

	moves := p.LegalMoves()
	if len(moves) == 0 {
		s.stats.TerminalNodes++
		if p.InCheck() {
			return -(Mate - eval.Score(ply)), nil
		}
		return DrawScore, nil
	}
	if p.DrawRule() != board.None {
		s.stats.TerminalNodes++
		return DrawScore, nil
	}

	if depth == 0 {
		return s.evaluate(p)
	}

	for _, m := range moves {
		value, err := s.searchMove(p, m, depth, ply, alpha, beta)
		if err != nil {
			return 0, err
		}
		alpha = Max(alpha, value)
		if alpha >= beta {
			s.stats.BetaCutoffs++
			break
		}
	}
	return alpha, nil
}

// searchMove plays m, searches the reply with the negated window and takes m
// back on every path out.
func (s *searcher) searchMove(p *board.Position, m board.Move, depth, ply int, alpha, beta eval.Score) (eval.Score, error) {
	undo := p.Apply(m)
	defer undo()
	value, err := s.negamax(p, depth-1, ply+1, -beta, -alpha)
	return -value, err
}

func (s *searcher) evaluate(p *board.Position) (eval.Score, error) {
	s.stats.Evaluations++
	v, err := s.evaluator.Evaluate(p)
	if err != nil {
		return 0, err
	}
	return eval.Relative(s.evaluator, p, v), nil
}

// IsMateScore reports whether s encodes a forced mate for either side.
func IsMateScore(s eval.Score) bool {
	return Abs(s) >= MateThreshold
}

// MateDistance returns the number of plies to mate encoded in s, or 0.
func MateDistance(s eval.Score) int {
	if !IsMateScore(s) {
		return 0
	}
	return int(Mate - Abs(s))
}
