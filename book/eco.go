package book

import (
	"sync"

	"github.com/notnil/chess"
	"github.com/notnil/opening"
)

var (
	ecoOnce sync.Once
	eco     *opening.BookECO
)

// ECO returns the shared ECO catalogue, loading it on first use.
func ECO() *opening.BookECO {
	ecoOnce.Do(func() {
		eco = opening.NewBookECO()
	})
	return eco
}

// OpeningName returns the title of the most specific ECO opening the game
// reached, or "" when the moves leave the catalogue immediately or a move
// does not parse.
func OpeningName(movesUCI []string) string {
	g := chess.NewGame(chess.UseNotation(chess.UCINotation{}))
	for _, mv := range movesUCI {
		if err := g.MoveStr(mv); err != nil {
			return ""
		}
	}
	// Walk back until some prefix is a named opening.
	moves := g.Moves()
	for n := len(moves); n > 0; n-- {
		if o := ECO().Find(moves[:n]); o != nil {
			return o.Title()
		}
	}
	return ""
}
