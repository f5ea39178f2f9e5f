package engine

import (
	"math/bits"
	"time"

	"negamax-chess/board"
)

const (
	knightPhase = 1
	bishopPhase = 1
	rookPhase   = 2
	queenPhase  = 4
)

// PiecePhase is 24 with all minor and major pieces on the board and 0 with
// none.
func PiecePhase(p *board.Position) (phase int) {
	w, b := p.Bitboards(board.White), p.Bitboards(board.Black)
	phase += bits.OnesCount64(w.Knights|b.Knights) * knightPhase
	phase += bits.OnesCount64(w.Bishops|b.Bishops) * bishopPhase
	phase += bits.OnesCount64(w.Rooks|b.Rooks) * rookPhase
	phase += bits.OnesCount64(w.Queens|b.Queens) * queenPhase
	return Min(phase, 24)
}

// MoveBudget turns a UCI clock into the wall-clock time one move may use.
func MoveBudget(p *board.Position, remaining, increment time.Duration) time.Duration {
	const (
		overhead       = 30 * time.Millisecond // reserve for UCI/IO jitter
		minMove        = 5 * time.Millisecond
		maxFrac        = 0.7 // never spend more than 70% of what is left
		panicThreshold = time.Second
		panicFrac      = 0.9
	)
	if remaining <= 0 {
		return 0
	}

	var budget time.Duration
	if increment > 0 {
		if remaining < panicThreshold {
			budget = time.Duration(float64(increment) * panicFrac)
		} else {
			budget = remaining/time.Duration(estimateMovesRemaining(PiecePhase(p))) + increment
		}
	} else {
		budget = remaining / 40
	}

	budget = Min(budget, time.Duration(float64(remaining)*maxFrac))
	budget = Min(budget, remaining-overhead)
	return Max(budget, minMove)
}

func estimateMovesRemaining(phase int) int {
	// Linear between 20 (endgame) and 45 (opening).
	return (phase*25)/24 + 20
}
