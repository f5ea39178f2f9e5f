// Package selfplay mines training positions by playing the engine against
// itself.
package selfplay

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"lukechampine.com/frand"

	"negamax-chess/board"
	"negamax-chess/engine"
)

// Record is one mined ply. Position is the FEN before Move was played and
// Evaluation is in the evaluator's favoured-colour convention.
type Record struct {
	Move       string  `json:"move"`
	Evaluation float64 `json:"evaluation"`
	Position   string  `json:"position"`
}

type Game struct {
	Start   string
	Moves   []string
	Records []Record
	// Status is board.None when the game stopped at the move limit.
	Status board.Status
	// Final is the FEN of the last position.
	Final string
}

type Miner struct {
	Engine      *engine.Engine
	Depth       int
	MaxMoves    int
	RandomPlies int
	Logger      zerolog.Logger
}

func NewMiner(e *engine.Engine, depth int) *Miner {
	return &Miner{
		Engine:   e,
		Depth:    depth,
		MaxMoves: 500,
		Logger:   zerolog.Nop(),
	}
}

// Play plays one game from the start position.
func (m *Miner) Play(ctx context.Context) (Game, error) {
	return m.PlayFrom(ctx, board.StartPosition())
}

// PlayFrom plays one game from a copy of start.
func (m *Miner) PlayFrom(ctx context.Context, start *board.Position) (Game, error) {
	pos := start.Clone()
	g := Game{Start: pos.FEN()}
	for ply := 0; m.MaxMoves <= 0 || ply < m.MaxMoves; ply++ {
		if g.Status = pos.Status(); g.Status != board.None {
			break
		}
		if err := ctx.Err(); err != nil {
			return g, err
		}
		mv, score, err := m.choose(ctx, pos, ply)
		if err != nil {
			return g, fmt.Errorf("ply %d: %w", ply, err)
		}
		uci := board.MoveString(mv)
		g.Records = append(g.Records, Record{Move: uci, Evaluation: score, Position: pos.FEN()})
		g.Moves = append(g.Moves, uci)
		pos.Apply(mv)
	}
	if g.Status == board.None {
		g.Status = pos.Status()
	}
	g.Final = pos.FEN()
	m.Logger.Info().
		Int("plies", len(g.Moves)).
		Stringer("status", g.Status).
		Str("result", g.Result()).
		Msg("game finished")
	return g, nil
}

// choose picks the move for ply and scores it. Random and book moves carry
// the static evaluation of the position they lead to.
func (m *Miner) choose(ctx context.Context, pos *board.Position, ply int) (board.Move, float64, error) {
	if ply < m.RandomPlies {
		moves := pos.LegalMoves()
		mv := moves[frand.Intn(len(moves))]
		score, err := m.staticAfter(pos, mv)
		return mv, score, err
	}
	res, err := m.Engine.Play(ctx, pos, m.Depth)
	if err != nil {
		return 0, 0, err
	}
	if res.Book || res.Partial && res.Nodes == 0 {
		score, err := m.staticAfter(pos, res.Move)
		return res.Move, score, err
	}
	return res.Move, m.Engine.Favoured(pos, res.Score), nil
}

func (m *Miner) staticAfter(pos *board.Position, mv board.Move) (float64, error) {
	child := pos.Clone()
	child.Apply(mv)
	return m.Engine.Evaluator().Evaluate(child)
}

// Mine plays n games with up to workers running at once. The games come back
// in the order they were started.
func (m *Miner) Mine(ctx context.Context, n, workers int) ([]Game, error) {
	games := make([]Game, n)
	g, gctx := errgroup.WithContext(ctx)
	if workers < 1 {
		workers = 1
	}
	g.SetLimit(workers)
	for i := 0; i < n; i++ {
		i := i
		g.Go(func() error {
			game, err := m.Play(gctx)
			if err != nil {
				return fmt.Errorf("game %d: %w", i, err)
			}
			games[i] = game
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return games, nil
}

// Result is the PGN result token.
func (g Game) Result() string {
	switch {
	case g.Status == board.Checkmate:
		// The side to move in the final position is the one mated.
		if whiteMoved(g) {
			return "1-0"
		}
		return "0-1"
	case g.Status.IsDraw():
		return "1/2-1/2"
	}
	return "*"
}

func whiteMoved(g Game) bool {
	final, err := board.ParseFEN(g.Final)
	if err != nil {
		return len(g.Moves)%2 == 1
	}
	return final.SideToMove() == board.Black
}
