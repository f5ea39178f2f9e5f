package eval

import "negamax-chess/board"

var pieceValue = [7]Score{
	board.Pawn:   1,
	board.Knight: 3,
	board.Bishop: 3,
	board.Rook:   5,
	board.Queen:  9,
	board.King:   100,
}

const (
	materialScale = 100
	centerBonus   = 50

	// The castling term only applies before this full move.
	castlingMoveLimit = 10
	castledBonus      = 100
	uncastledBonus    = 50

	defendedWeight    = 5
	underdefendWeight = -10
)

// d4, e4, d5, e5
var centerSquares = [4]board.Square{27, 28, 35, 36}

// castledSquare is where each king lands after castling short.
var castledSquare = [2]board.Square{board.White: 6, board.Black: 62}

// Heuristic is the handcrafted evaluator: material, center occupation, early
// castling posture and attack/defense balance summed over the board.
type Heuristic struct {
	favoured board.Color
}

var _ Evaluator = (*Heuristic)(nil)

func NewHeuristic(favoured board.Color) *Heuristic {
	return &Heuristic{favoured: favoured}
}

func (h *Heuristic) Favoured() board.Color {
	return h.favoured
}

// Evaluate never fails.
func (h *Heuristic) Evaluate(p *board.Position) (Score, error) {
	return h.Material(p) + h.Center(p) + h.Castling(p) + h.AttackDefense(p), nil
}

func (h *Heuristic) sign(c board.Color) Score {
	if c == h.favoured {
		return 1
	}
	return -1
}

func (h *Heuristic) Material(p *board.Position) Score {
	var score Score
	for sq := board.Square(0); sq < 64; sq++ {
		if piece, c, ok := p.PieceAt(sq); ok {
			score += h.sign(c) * pieceValue[piece] * materialScale
		}
	}
	return score
}

func (h *Heuristic) Center(p *board.Position) Score {
	var score Score
	for _, sq := range centerSquares {
		if _, c, ok := p.PieceAt(sq); ok {
			score += h.sign(c) * centerBonus
		}
	}
	return score
}

// Castling scores kingside castling rights against the king's square for
// both colours while the game is young.
func (h *Heuristic) Castling(p *board.Position) Score {
	if p.FullMoveNumber() >= castlingMoveLimit {
		return 0
	}
	var score Score
	other := h.favoured.Other()
	if p.KingsideCastlingRights(other) {
		if p.KingSquare(other) == castledSquare[other] {
			score -= castledBonus
		} else {
			score += uncastledBonus
		}
	}
	if p.KingsideCastlingRights(h.favoured) {
		if p.KingSquare(h.favoured) == castledSquare[h.favoured] {
			score += castledBonus
		} else {
			score -= uncastledBonus
		}
	}
	return score
}

// AttackDefense credits every piece by how its defenders compare with its
// attackers.
func (h *Heuristic) AttackDefense(p *board.Position) Score {
	var score Score
	for sq := board.Square(0); sq < 64; sq++ {
		_, c, ok := p.PieceAt(sq)
		if !ok {
			continue
		}
		attackers := p.CountAttackers(c.Other(), sq)
		defenders := p.CountAttackers(c, sq)
		balance := Score(defenders - attackers)
		if defenders >= attackers {
			score += h.sign(c) * balance * defendedWeight
		} else {
			score += h.sign(c) * balance * underdefendWeight
		}
	}
	return score
}
