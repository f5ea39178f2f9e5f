package selfplay

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/notnil/chess"

	"negamax-chess/board"
	"negamax-chess/book"
)

// WriteJSONL writes one record per line.
func WriteJSONL(w io.Writer, records []Record) error {
	enc := json.NewEncoder(w)
	for i := range records {
		if err := enc.Encode(&records[i]); err != nil {
			return fmt.Errorf("write record %d: %w", i, err)
		}
	}
	return nil
}

var stat = os.Stat

// SaveGame writes the game's records as a JSON array to the first unused
// MovesAndPositions<N>.json in dir and returns its path.
func SaveGame(dir string, g Game) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	var path string
	for n := 0; ; n++ {
		path = filepath.Join(dir, fmt.Sprintf("MovesAndPositions%d.json", n))
		_, err := stat(path)
		if os.IsNotExist(err) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("save game: %w", err)
		}
	}
	data, err := json.Marshal(g.Records)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("save game: %w", err)
	}
	return path, nil
}

// PGN renders the game in SAN with the seven-tag roster plus an Opening tag
// when the ECO catalogue names the line.
func (g Game) PGN() (string, error) {
	opts := []func(*chess.Game){chess.UseNotation(chess.UCINotation{})}
	fromStart := g.Start == "" || g.Start == board.StartFEN
	if !fromStart {
		fen, err := chess.FEN(g.Start)
		if err != nil {
			return "", fmt.Errorf("pgn start: %w", err)
		}
		opts = append(opts, fen)
	}
	cg := chess.NewGame(opts...)
	for i, mv := range g.Moves {
		if err := cg.MoveStr(mv); err != nil {
			return "", fmt.Errorf("pgn move %d %s: %w", i, mv, err)
		}
	}
	switch g.Status {
	case board.Repetition:
		_ = cg.Draw(chess.ThreefoldRepetition)
	case board.FiftyMove:
		_ = cg.Draw(chess.FiftyMoveRule)
	}
	chess.UseNotation(chess.AlgebraicNotation{})(cg)

	cg.AddTagPair("Event", "self-play")
	cg.AddTagPair("Site", "?")
	cg.AddTagPair("Date", "????.??.??")
	cg.AddTagPair("Round", "-")
	cg.AddTagPair("White", "negamax")
	cg.AddTagPair("Black", "negamax")
	cg.AddTagPair("Result", g.Result())
	if !fromStart {
		cg.AddTagPair("SetUp", "1")
		cg.AddTagPair("FEN", g.Start)
	} else if name := book.OpeningName(g.Moves); name != "" {
		cg.AddTagPair("Opening", name)
	}
	return cg.String(), nil
}
