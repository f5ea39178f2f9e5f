// Package eval scores positions for the search. Evaluators report scores from
// a fixed colour's point of view; the search flips signs per node.
package eval

import (
	"errors"

	"negamax-chess/board"
)

// Score is positive when the position favours the evaluator's favoured colour.
type Score = float64

// ErrEvaluatorUnavailable wraps every scoring failure of a learned evaluator.
var ErrEvaluatorUnavailable = errors.New("eval: evaluator unavailable")

type Evaluator interface {
	Evaluate(p *board.Position) (Score, error)
	// Favoured is the colour positive scores are good for.
	Favoured() board.Color
}

// Relative converts an absolute score to the point of view of the side to
// move in p.
func Relative(e Evaluator, p *board.Position, s Score) Score {
	if p.SideToMove() == e.Favoured() {
		return s
	}
	return -s
}

// Counting wraps an Evaluator and counts Evaluate calls. It is not safe for
// concurrent use.
type Counting struct {
	Evaluator
	Calls int
}

func (c *Counting) Evaluate(p *board.Position) (Score, error) {
	c.Calls++
	return c.Evaluator.Evaluate(p)
}
