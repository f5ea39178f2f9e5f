package board

import (
	"strings"
	"testing"
)

func TestStatus(t *testing.T) {
	cases := []struct {
		name string
		fen  string
		want Status
	}{
		{"start", StartFEN, None},
		{"fools mate", "rnb1kbnr/pppp1ppp/8/4p3/6Pq/5P2/PPPPP2P/RNBQKBNR w KQkq - 1 3", Checkmate},
		{"stalemate", "7k/5Q2/6K1/8/8/8/8/8 b - - 0 1", Stalemate},
		{"bare kings", "8/8/8/4k3/8/8/8/4K3 w - - 0 1", InsufficientMaterial},
		{"lone knight", "8/8/8/4k3/8/8/8/4KN2 w - - 0 1", InsufficientMaterial},
		{"same coloured bishops", "8/8/8/2b1k3/8/8/5B2/4K3 w - - 0 1", InsufficientMaterial},
		{"rook can mate", "8/8/8/4k3/8/8/8/R3K3 w - - 0 1", None},
		{"fifty moves", "8/8/8/4k3/8/8/8/R3K3 w - - 100 80", FiftyMove},
	}
	for _, tc := range cases {
		pos, err := ParseFEN(tc.fen)
		if err != nil {
			t.Fatalf("%s: ParseFEN: %v", tc.name, err)
		}
		if got := pos.Status(); got != tc.want {
			t.Fatalf("%s: got %v want %v", tc.name, got, tc.want)
		}
	}
}

func TestStatusThreefoldRepetition(t *testing.T) {
	pos := StartPosition()
	shuffle := []string{"g1f3", "g8f6", "f3g1", "f6g8"}

	play := func() {
		for _, uci := range shuffle {
			m, err := pos.ParseMove(uci)
			if err != nil {
				t.Fatalf("ParseMove(%s): %v", uci, err)
			}
			pos.Apply(m)
		}
	}

	play()
	if got := pos.Status(); got != None {
		t.Fatalf("after one cycle: got %v want none", got)
	}
	play()
	if got := pos.Status(); got != Repetition {
		t.Fatalf("after two cycles: got %v want repetition", got)
	}
	if !pos.Status().IsDraw() {
		t.Fatalf("repetition should count as a draw")
	}
}

func TestRepetitionResetsOnPawnMove(t *testing.T) {
	pos := StartPosition()
	for _, uci := range []string{"g1f3", "g8f6", "f3g1", "f6g8", "e2e4", "e7e5", "g1f3", "g8f6", "f3g1", "f6g8"} {
		m, err := pos.ParseMove(uci)
		if err != nil {
			t.Fatalf("ParseMove(%s): %v", uci, err)
		}
		pos.Apply(m)
	}
	if got := pos.Status(); got != None {
		t.Fatalf("got %v want none", got)
	}
}

// A long manoeuvring game with no capture or pawn move after the opening
// sixteen plies.
const quietSequence = "d2d4 d7d5 f2f4 f7f5 e2e3 e7e6 g2g3 g7g6 h2h4 h7h5 c2c3 c7c6 b2b4 b7b5 a2a3 a7a6 b1d2 g8e7 f1g2 c8b7 e1f2 e8f7 d1e2 f8g7 h1h3 a8a7 c1b2 b8d7 a1c1 b7c8 c1b1 d7f8 g1f3 f8h7 d2f1 e7g8 f1d2 g8e7 d2f1 e7g8 f1h2 g8h6 f3g5 f7f8 e2c2 f8e7 b1d1 c8b7 f2e2 g7f8 g2f3 h7f6 c2c1 d8c8 c1a1 c8a8 d1g1 b7c8 h2f1 h8h7 h3h2 h7h8 f1d2 f8g7 d2f1 c8d7 a1c1 a8b7 b2a1 a7a8 f1d2 h8c8 g1g2 c8f8 h2h1 f8g8 g2g1 g8h8 g5h3 h6g8 d2f1 g8h6 f1h2 f6g4 h2f1 g4f6 f1d2 g7f8 g1e1 b7c7 h1g1 f8g7 f3h1 h8b8 e1f1 d7e8 d2b3 e8d7 b3c5 f6e4 h3g5 h6g4 c5b3 e4f6 g5h3 g4h6 h1f3 f6g8 g1h1 g7f6 f1f2 e7d8 e2f1 d8c8 f1g2 c8b7"

func TestFiftyMoveRuleAfterSequence(t *testing.T) {
	pos := StartPosition()
	for i, uci := range strings.Fields(quietSequence) {
		m, err := pos.ParseMove(uci)
		if err != nil {
			t.Fatalf("ply %d: %v", i, err)
		}
		pos.Apply(m)
	}
	if pos.HalfMoveClock() != 100 {
		t.Fatalf("half-move clock %d want 100", pos.HalfMoveClock())
	}
	if got := pos.Status(); got != FiftyMove {
		t.Fatalf("got %v want fifty-move draw", got)
	}
}

func TestLargeHalfMoveClockIsFiftyMove(t *testing.T) {
	pos, err := ParseFEN("4k3/4p3/8/8/8/8/4P3/4K3 w - - 300 200")
	if err != nil {
		t.Fatalf("ParseFEN: %v", err)
	}
	if got := pos.HalfMoveClock(); got != 255 {
		t.Fatalf("got clock %d want 255", got)
	}
	if got := pos.Status(); got != FiftyMove {
		t.Fatalf("got %v want %v", got, FiftyMove)
	}
}
