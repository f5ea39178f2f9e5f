package board

import (
	"math/bits"

	"github.com/dylhunn/dragontoothmg"
)

var (
	kingMasks   [64]uint64
	knightMasks [64]uint64
	// pawnAttacks[c][sq] holds the squares a c pawn on sq attacks.
	pawnAttacks [2][64]uint64
)

func init() {
	kingSteps := [8][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}, {1, 1}, {1, -1}, {-1, 1}, {-1, -1}}
	knightSteps := [8][2]int{{1, 2}, {2, 1}, {2, -1}, {1, -2}, {-1, -2}, {-2, -1}, {-2, 1}, {-1, 2}}
	for sq := 0; sq < 64; sq++ {
		file, rank := sq%8, sq/8
		kingMasks[sq] = stepMask(file, rank, kingSteps[:])
		knightMasks[sq] = stepMask(file, rank, knightSteps[:])
		pawnAttacks[White][sq] = stepMask(file, rank, [][2]int{{-1, 1}, {1, 1}})
		pawnAttacks[Black][sq] = stepMask(file, rank, [][2]int{{-1, -1}, {1, -1}})
	}
}

func stepMask(file, rank int, steps [][2]int) uint64 {
	var mask uint64
	for _, s := range steps {
		f, r := file+s[0], rank+s[1]
		if f < 0 || f > 7 || r < 0 || r > 7 {
			continue
		}
		mask |= uint64(1) << (r*8 + f)
	}
	return mask
}

func lsb(bb uint64) int {
	return bits.TrailingZeros64(bb)
}

// AttackersOf returns the set of c's pieces attacking sq, whatever stands on
// sq and whoever is to move. Pins are ignored.
func (p *Position) AttackersOf(c Color, sq Square) uint64 {
	bb := p.Bitboards(c)
	occupied := p.b.White.All | p.b.Black.All

	// A c pawn attacks sq when it stands where an enemy pawn on sq would attack.
	attackers := pawnAttacks[c.Other()][sq] & bb.Pawns
	attackers |= knightMasks[sq] & bb.Knights
	attackers |= kingMasks[sq] & bb.Kings
	diagonal := dragontoothmg.CalculateBishopMoveBitboard(sq, occupied)
	attackers |= diagonal & (bb.Bishops | bb.Queens)
	straight := dragontoothmg.CalculateRookMoveBitboard(sq, occupied)
	attackers |= straight & (bb.Rooks | bb.Queens)
	return attackers
}

// CountAttackers is the population count of AttackersOf.
func (p *Position) CountAttackers(c Color, sq Square) int {
	return bits.OnesCount64(p.AttackersOf(c, sq))
}
