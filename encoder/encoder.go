// Package encoder turns a position into the 14x8x8 indicator tensor a learned
// evaluator consumes.
//
// Planes 0-5 hold White pawns, knights, bishops, rooks, queens and king;
// planes 6-11 the same for Black. Plane 12 marks every destination of a legal
// move White would have if it were White's turn, plane 13 the same for Black.
// Rank 8 is row 0 and file a is column 0. Trained models depend on this layout.
package encoder

import (
	"negamax-chess/board"
)

const (
	Planes = 14
	Rows   = 8
	Cols   = 8

	// Size is the number of cells in a Tensor.
	Size = Planes * Rows * Cols

	WhiteAttackPlane = 12
	BlackAttackPlane = 13
)

type Tensor [Planes][Rows][Cols]float32

// Encode builds a fresh tensor for p. p is only read.
func Encode(p *board.Position) *Tensor {
	var t Tensor
	for sq := board.Square(0); sq < 64; sq++ {
		piece, colour, ok := p.PieceAt(sq)
		if !ok {
			continue
		}
		plane := int(piece) - 1
		if colour == board.Black {
			plane += 6
		}
		row, col := cell(sq)
		t[plane][row][col] = 1
	}
	markDestinations(&t, WhiteAttackPlane, p.WithSideToMove(board.White))
	markDestinations(&t, BlackAttackPlane, p.WithSideToMove(board.Black))
	return &t
}

func markDestinations(t *Tensor, plane int, p *board.Position) {
	for _, m := range p.LegalMoves() {
		row, col := cell(m.To())
		t[plane][row][col] = 1
	}
}

func cell(sq board.Square) (row, col int) {
	return 7 - int(sq/8), int(sq % 8)
}

// Flatten lays the tensor out plane-major, row-major.
func (t *Tensor) Flatten() []float32 {
	out := make([]float32, 0, Size)
	for p := range t {
		for r := range t[p] {
			out = append(out, t[p][r][:]...)
		}
	}
	return out
}

// Count returns the number of set cells in one plane.
func (t *Tensor) Count(plane int) int {
	n := 0
	for r := range t[plane] {
		for _, v := range t[plane][r] {
			if v != 0 {
				n++
			}
		}
	}
	return n
}
