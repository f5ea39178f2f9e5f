package bench

import (
	"testing"

	"negamax-chess/board"
)

const (
	kiwipete = "r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1"
	pos6     = "r4rk1/1pp1qppp/p1np1n2/2b1p3/2B1P3/2NP1N2/PPP1QPPP/R4RK1 w - - 0 10"
)

func mustParse(b *testing.B, fen string) *board.Position {
	pos, err := board.ParseFEN(fen)
	if err != nil {
		b.Fatalf("ParseFEN: %v", err)
	}
	return pos
}

func benchLegalMoves(b *testing.B, fen string) {
	pos := mustParse(b, fen)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = pos.LegalMoves()
	}
}

func BenchmarkLegalMoves_Initial(b *testing.B) {
	benchLegalMoves(b, board.StartFEN)
}

func BenchmarkLegalMoves_Kiwipete(b *testing.B) {
	benchLegalMoves(b, kiwipete)
}

func BenchmarkLegalMoves_Pos6(b *testing.B) {
	benchLegalMoves(b, pos6)
}

func BenchmarkApplyUndo_AllMoves_Initial(b *testing.B) {
	pos := mustParse(b, board.StartFEN)
	moves := pos.LegalMoves()
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		for _, m := range moves {
			undo := pos.Apply(m)
			undo()
		}
	}
}

func BenchmarkAttackersOf_Kiwipete(b *testing.B) {
	pos := mustParse(b, kiwipete)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		for sq := board.Square(0); sq < 64; sq++ {
			_ = pos.CountAttackers(board.White, sq)
		}
	}
}

func BenchmarkStatus_Pos6(b *testing.B) {
	pos := mustParse(b, pos6)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = pos.Status()
	}
}
