package eval

import (
	"fmt"

	"negamax-chess/board"
	"negamax-chess/encoder"
)

// Scorer is a trained model seen as a function of the encoded position.
type Scorer interface {
	Score(t *encoder.Tensor) (float64, error)
}

// ScorerFunc adapts a plain function to Scorer.
type ScorerFunc func(t *encoder.Tensor) (float64, error)

func (f ScorerFunc) Score(t *encoder.Tensor) (float64, error) {
	return f(t)
}

// Learned evaluates a position by encoding it and asking a Scorer. A scorer
// failure is a configuration fault; it is reported and never retried.
type Learned struct {
	scorer   Scorer
	favoured board.Color
}

var _ Evaluator = (*Learned)(nil)

func NewLearned(scorer Scorer, favoured board.Color) *Learned {
	return &Learned{scorer: scorer, favoured: favoured}
}

func (l *Learned) Favoured() board.Color {
	return l.favoured
}

func (l *Learned) Evaluate(p *board.Position) (Score, error) {
	v, err := l.scorer.Score(encoder.Encode(p))
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrEvaluatorUnavailable, err)
	}
	return v, nil
}
