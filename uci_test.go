package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"negamax-chess/board"
	"negamax-chess/book"
	"negamax-chess/engine"
	"negamax-chess/eval"
)

func runSession(t *testing.T, script string) []string {
	t.Helper()
	var out bytes.Buffer
	e := engine.New(eval.NewHeuristic(board.Black), engine.WithBook(book.Default()))
	newSession(e, 2, &out, zerolog.Nop()).loop(strings.NewReader(script))
	return strings.Split(strings.TrimSpace(out.String()), "\n")
}

func lastLine(lines []string) string {
	return lines[len(lines)-1]
}

func TestHandshake(t *testing.T) {
	lines := runSession(t, "uci\nisready\nquit\nisready\n")
	if lines[len(lines)-2] != "uciok" || lastLine(lines) != "readyok" {
		t.Fatalf("unexpected handshake: %q", lines)
	}
}

func TestGoFindsMate(t *testing.T) {
	lines := runSession(t, "position fen 6k1/5ppp/8/8/8/8/5PPP/R5K1 w - - 0 1\ngo depth 2\n")
	if got := lastLine(lines); got != "bestmove a1a8" {
		t.Fatalf("got %q want bestmove a1a8", got)
	}
	if !strings.Contains(lines[0], "score mate 1") {
		t.Fatalf("info line %q lacks the mate score", lines[0])
	}
}

func TestPositionMovesReachBook(t *testing.T) {
	lines := runSession(t, "position startpos moves e2e4\ngo wtime 60000 btime 60000\n")
	if got := lastLine(lines); got != "bestmove e7e5" {
		t.Fatalf("got %q want bestmove e7e5", got)
	}
}

func TestGoWithoutMoves(t *testing.T) {
	lines := runSession(t, "position fen 7k/5Q2/6K1/8/8/8/8/8 b - - 0 1\ngo depth 1\n")
	if got := lastLine(lines); got != "bestmove 0000" {
		t.Fatalf("got %q want bestmove 0000", got)
	}
}

func TestBadInputIsReported(t *testing.T) {
	cases := []struct{ script, want string }{
		{"position startpos moves e2e5\n", "info string Move e2e5 not found"},
		{"position fen nonsense\n", "info string Invalid fen position"},
		{"position sideways\n", "info string Invalid position subcommand"},
		{"go depth deep\nquit\n", "could not convert depth"},
		{"launch\n", "info string Unknown command: launch"},
		{"setoption name Depth value 0\n", "Malformed setoption value"},
	}
	for _, tc := range cases {
		lines := runSession(t, tc.script)
		if !strings.Contains(strings.Join(lines, "\n"), tc.want) {
			t.Fatalf("%q: output %q lacks %q", tc.script, lines, tc.want)
		}
	}
}

func TestCutStatsOption(t *testing.T) {
	lines := runSession(t, "setoption name CutStats value true\ngo depth 1\n")
	if !strings.Contains(strings.Join(lines, "\n"), "info string Cut statistics:") {
		t.Fatalf("no cut statistics in %q", lines)
	}
	if !strings.HasPrefix(lastLine(lines), "bestmove ") {
		t.Fatalf("last line %q is not a bestmove", lastLine(lines))
	}
}

func TestEvalCommand(t *testing.T) {
	lines := runSession(t, "eval\n")
	if lines[0] != "info string eval 0 favouring black" {
		t.Fatalf("got %q", lines[0])
	}
}

func TestScoreString(t *testing.T) {
	cases := []struct {
		score float64
		want  string
	}{
		{42.7, "cp 42"},
		{-150, "cp -150"},
		{engine.Mate - 1, "mate 1"},
		{engine.Mate - 3, "mate 2"},
		{-(engine.Mate - 2), "mate -1"},
	}
	for _, tc := range cases {
		if got := scoreString(tc.score); got != tc.want {
			t.Fatalf("scoreString(%v): got %q want %q", tc.score, got, tc.want)
		}
	}
}
