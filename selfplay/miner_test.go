package selfplay

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"negamax-chess/board"
	"negamax-chess/book"
	"negamax-chess/engine"
	"negamax-chess/eval"
)

func newMiner(depth, maxMoves int, opts ...engine.Option) *Miner {
	m := NewMiner(engine.New(eval.NewHeuristic(board.Black), opts...), depth)
	m.MaxMoves = maxMoves
	return m
}

// replay checks that every record's position is the one reached by the moves
// before it.
func replay(t *testing.T, g Game) {
	t.Helper()
	pos, err := board.ParseFEN(g.Start)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	for i, r := range g.Records {
		if r.Position != pos.FEN() {
			t.Fatalf("record %d: position %s want %s", i, r.Position, pos.FEN())
		}
		mv, err := pos.ParseMove(r.Move)
		if err != nil {
			t.Fatalf("record %d: %v", i, err)
		}
		pos.Apply(mv)
	}
	if pos.FEN() != g.Final {
		t.Fatalf("final %s want %s", g.Final, pos.FEN())
	}
}

func TestPlayStopsAtMoveLimit(t *testing.T) {
	m := newMiner(1, 6, engine.WithBook(book.Default()))
	g, err := m.Play(context.Background())
	if err != nil {
		t.Fatalf("Play: %v", err)
	}
	if len(g.Records) != 6 || len(g.Moves) != 6 {
		t.Fatalf("got %d records, %d moves want 6", len(g.Records), len(g.Moves))
	}
	if g.Status != board.None || g.Result() != "*" {
		t.Fatalf("unfinished game reported %v %s", g.Status, g.Result())
	}
	replay(t, g)
}

func TestPlayFromMateRecordsFavouredScore(t *testing.T) {
	start, err := board.ParseFEN("6k1/5ppp/8/8/8/8/5PPP/R5K1 w - - 0 1")
	if err != nil {
		t.Fatalf("ParseFEN: %v", err)
	}
	g, err := newMiner(1, 10).PlayFrom(context.Background(), start)
	if err != nil {
		t.Fatalf("PlayFrom: %v", err)
	}
	if len(g.Records) != 1 || g.Records[0].Move != "a1a8" {
		t.Fatalf("expected the single move a1a8, got %+v", g.Records)
	}
	if g.Status != board.Checkmate || g.Result() != "1-0" {
		t.Fatalf("got %v %s want checkmate 1-0", g.Status, g.Result())
	}
	// White mates, so a black-favouring evaluation is a lost mate score.
	if got := g.Records[0].Evaluation; got > -engine.MateThreshold {
		t.Fatalf("evaluation %v is not a lost mate for black", got)
	}
	if start.FEN() != g.Start {
		t.Fatalf("start position changed: %s", start.FEN())
	}
}

func TestRandomPliesCarryStaticEvaluation(t *testing.T) {
	m := newMiner(1, 4)
	m.RandomPlies = 4
	g, err := m.Play(context.Background())
	if err != nil {
		t.Fatalf("Play: %v", err)
	}
	replay(t, g)
	h := eval.NewHeuristic(board.Black)
	for i, r := range g.Records {
		pos, _ := board.ParseFEN(r.Position)
		mv, _ := pos.ParseMove(r.Move)
		pos.Apply(mv)
		want, _ := h.Evaluate(pos)
		if r.Evaluation != want {
			t.Fatalf("record %d: evaluation %v want %v", i, r.Evaluation, want)
		}
	}
}

func TestPlayHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := newMiner(1, 4).Play(ctx); err == nil {
		t.Fatalf("expected a context error")
	}
}

func TestMine(t *testing.T) {
	m := newMiner(1, 3)
	m.RandomPlies = 2
	games, err := m.Mine(context.Background(), 3, 2)
	if err != nil {
		t.Fatalf("Mine: %v", err)
	}
	if len(games) != 3 {
		t.Fatalf("got %d games want 3", len(games))
	}
	for _, g := range games {
		if len(g.Records) != 3 {
			t.Fatalf("got %d records want 3", len(g.Records))
		}
		replay(t, g)
	}
}

func TestWriteJSONL(t *testing.T) {
	records := []Record{
		{Move: "e2e4", Evaluation: 0, Position: board.StartFEN},
		{Move: "e7e5", Evaluation: -50, Position: "rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq - 0 1"},
	}
	var buf bytes.Buffer
	if err := WriteJSONL(&buf, records); err != nil {
		t.Fatalf("WriteJSONL: %v", err)
	}
	sc := bufio.NewScanner(&buf)
	n := 0
	for sc.Scan() {
		var got map[string]any
		if err := json.Unmarshal(sc.Bytes(), &got); err != nil {
			t.Fatalf("line %d: %v", n, err)
		}
		for _, key := range []string{"move", "evaluation", "position"} {
			if _, ok := got[key]; !ok {
				t.Fatalf("line %d: missing %q in %s", n, key, sc.Text())
			}
		}
		n++
	}
	if n != 2 {
		t.Fatalf("got %d lines want 2", n)
	}
}

func TestSaveGamePicksNextIndex(t *testing.T) {
	dir := t.TempDir()
	g := Game{Records: []Record{{Move: "e2e4", Position: board.StartFEN}}}
	for i, want := range []string{"MovesAndPositions0.json", "MovesAndPositions1.json"} {
		path, err := SaveGame(dir, g)
		if err != nil {
			t.Fatalf("save %d: %v", i, err)
		}
		if filepath.Base(path) != want {
			t.Fatalf("save %d: got %s want %s", i, filepath.Base(path), want)
		}
	}
	data, err := os.ReadFile(filepath.Join(dir, "MovesAndPositions0.json"))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var got []Record
	if err := json.Unmarshal(data, &got); err != nil || len(got) != 1 || got[0].Move != "e2e4" {
		t.Fatalf("saved records: %v %+v", err, got)
	}
}

func TestSaveGameReportsStatErrors(t *testing.T) {
	failure := errors.New("permission denied")
	stat = func(string) (os.FileInfo, error) { return nil, failure }
	defer func() { stat = os.Stat }()

	if _, err := SaveGame(t.TempDir(), Game{}); !errors.Is(err, failure) {
		t.Fatalf("got %v want %v", err, failure)
	}
}

func TestPGN(t *testing.T) {
	g := Game{
		Start:  board.StartFEN,
		Moves:  []string{"f2f3", "e7e5", "g2g4", "d8h4"},
		Status: board.Checkmate,
		Final:  "rnb1kbnr/pppp1ppp/8/4p3/6Pq/5P2/PPPPP2P/RNBQKBNR w KQkq - 1 3",
	}
	pgn, err := g.PGN()
	if err != nil {
		t.Fatalf("PGN: %v", err)
	}
	for _, want := range []string{`[Result "0-1"]`, "f3", "Qh4"} {
		if !strings.Contains(pgn, want) {
			t.Fatalf("PGN missing %q:\n%s", want, pgn)
		}
	}

	g = Game{Start: "6k1/5ppp/8/8/8/8/5PPP/R5K1 w - - 0 1", Moves: []string{"a1a8"}}
	if pgn, err = g.PGN(); err != nil {
		t.Fatalf("PGN from FEN: %v", err)
	}
	if !strings.Contains(pgn, `[FEN "6k1/5ppp/8/8/8/8/5PPP/R5K1 w - - 0 1"]`) || !strings.Contains(pgn, "Ra8") {
		t.Fatalf("PGN from FEN:\n%s", pgn)
	}

	g = Game{Start: board.StartFEN, Moves: []string{"e2e5"}}
	if _, err := g.PGN(); err == nil {
		t.Fatalf("expected an error for an illegal move")
	}
}
