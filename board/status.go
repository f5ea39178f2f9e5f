package board

import "math/bits"

// Status tells whether the game is over and why.
type Status uint8

const (
	None Status = iota
	Checkmate
	Stalemate
	InsufficientMaterial
	Repetition
	FiftyMove
)

var statusNames = [...]string{"none", "checkmate", "stalemate", "insufficient material", "repetition", "fifty-move rule"}

func (s Status) String() string {
	if int(s) < len(statusNames) {
		return statusNames[s]
	}
	return "unknown"
}

// IsDraw reports whether s ends the game without a winner.
func (s Status) IsDraw() bool {
	return s >= Stalemate
}

const (
	lightSquares uint64 = 0x55AA55AA55AA55AA
	darkSquares         = ^lightSquares
)

// Status reports the terminal state of the position. A side with no legal
// move is mated or stalemated before any draw rule is considered.
func (p *Position) Status() Status {
	if len(p.LegalMoves()) == 0 {
		if p.InCheck() {
			return Checkmate
		}
		return Stalemate
	}
	return p.DrawRule()
}

// DrawRule reports a draw by material, the fifty-move rule or repetition. It
// does not look at the legal moves, so mate and stalemate are not detected.
func (p *Position) DrawRule() Status {
	if p.insufficientMaterial() {
		return InsufficientMaterial
	}
	if p.HalfMoveClock() >= 100 {
		return FiftyMove
	}
	if p.repetitions() >= 3 {
		return Repetition
	}
	return None
}

// repetitions counts how often the current position occurred since the last
// irreversible move, the current occurrence included.
func (p *Position) repetitions() int {
	current := len(p.history) - 1
	oldest := current - p.HalfMoveClock()
	if oldest < 0 {
		oldest = 0
	}
	count := 1
	// Only positions with the same side to move can match.
	for i := current - 2; i >= oldest; i -= 2 {
		if p.history[i] == p.history[current] {
			count++
		}
	}
	return count
}

// insufficientMaterial holds when neither side can ever deliver mate.
func (p *Position) insufficientMaterial() bool {
	return p.cannotMate(White) && p.cannotMate(Black)
}

func (p *Position) cannotMate(c Color) bool {
	own, other := p.Bitboards(c), p.Bitboards(c.Other())
	if own.Pawns|own.Rooks|own.Queens != 0 {
		return false
	}
	if own.Knights != 0 {
		// A lone knight mates only with help from enemy pieces other than queens.
		return bits.OnesCount64(own.All) <= 2 && other.All&^(other.Kings|other.Queens) == 0
	}
	if own.Bishops != 0 {
		bishops := p.b.White.Bishops | p.b.Black.Bishops
		sameColour := bishops&darkSquares == 0 || bishops&lightSquares == 0
		pawnsOrKnights := p.b.White.Pawns | p.b.Black.Pawns | p.b.White.Knights | p.b.Black.Knights
		return sameColour && pawnsOrKnights == 0
	}
	return true
}
