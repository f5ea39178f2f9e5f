package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"negamax-chess/board"
	"negamax-chess/config"
	"negamax-chess/engine"
)

func main() {
	configPath := flag.String("config", "", "JSON config file")
	depth := flag.Int("depth", 0, "default search depth (overrides config)")
	logLevel := flag.String("log-level", "", "log level (overrides config)")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}
	if *depth > 0 {
		cfg.Depth = *depth
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	logger := cfg.Logger()
	e, err := cfg.BuildEngine(logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("build engine")
	}
	newSession(e, cfg.Depth, os.Stdout, logger).loop(os.Stdin)
}

// session is the state of one UCI conversation. Protocol output goes to out
// as plain text; diagnostics go to the logger.
type session struct {
	engine   *engine.Engine
	pos      *board.Position
	depth    int
	cutStats bool
	out      io.Writer
	logger   zerolog.Logger
}

func newSession(e *engine.Engine, depth int, out io.Writer, logger zerolog.Logger) *session {
	return &session{
		engine: e,
		pos:    board.StartPosition(),
		depth:  depth,
		out:    out,
		logger: logger,
	}
}

func (s *session) println(a ...any) {
	fmt.Fprintln(s.out, a...)
}

func (s *session) loop(in io.Reader) {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		line := scanner.Text()
		tokens := strings.Fields(line)
		if len(tokens) == 0 { // ignore blank lines
			continue
		}
		switch strings.ToLower(tokens[0]) {
		case "uci":
			s.println("id name negamax-chess")
			s.println("id author negamax-chess")
			s.println("option name Depth type spin default", s.depth, "min 1 max", engine.MaxDepth)
			s.println("option name CutStats type check default false")
			s.println("uciok")
		case "isready":
			s.println("readyok")
		case "ucinewgame":
			s.pos = board.StartPosition()
		case "quit":
			return
		case "stop":
			// Searches run to completion before the next command is read.
		case "eval":
			s.eval()
		case "go":
			s.goCommand(tokens[1:])
		case "position":
			s.position(tokens[1:])
		case "setoption":
			s.setOption(tokens[1:])
		default:
			s.println("info string Unknown command:", line)
		}
	}
}

func (s *session) position(tokens []string) {
	if len(tokens) == 0 {
		s.println("info string Malformed position command")
		return
	}
	var rest []string
	switch strings.ToLower(tokens[0]) {
	case "startpos":
		s.pos = board.StartPosition()
		rest = tokens[1:]
	case "fen":
		i := 1
		for i < len(tokens) && strings.ToLower(tokens[i]) != "moves" {
			i++
		}
		pos, err := board.ParseFEN(strings.Join(tokens[1:i], " "))
		if err != nil {
			s.println("info string Invalid fen position:", err)
			return
		}
		s.pos = pos
		rest = tokens[i:]
	default:
		s.println("info string Invalid position subcommand")
		return
	}
	if len(rest) == 0 || strings.ToLower(rest[0]) != "moves" {
		return
	}
	for _, moveStr := range rest[1:] {
		m, err := s.pos.ParseMove(moveStr)
		if err != nil {
			s.println("info string Move", moveStr, "not found for position", s.pos.FEN())
			return
		}
		s.pos.Apply(m)
	}
}

type goParams struct {
	depth      int
	moveTime   time.Duration
	wTime      time.Duration
	bTime      time.Duration
	wInc, bInc time.Duration
}

func (s *session) parseGo(tokens []string) goParams {
	var gp goParams
	for i := 0; i < len(tokens); i++ {
		name := strings.ToLower(tokens[i])
		switch name {
		case "infinite":
			continue
		case "depth", "movetime", "wtime", "btime", "winc", "binc":
		default:
			s.println("info string Unknown go subcommand", name)
			continue
		}
		if i+1 >= len(tokens) {
			s.println("info string Malformed go command option", name)
			break
		}
		i++
		n, err := strconv.Atoi(tokens[i])
		if err != nil {
			s.println("info string Malformed go command option; could not convert", name)
			continue
		}
		ms := time.Duration(n) * time.Millisecond
		switch name {
		case "depth":
			gp.depth = n
		case "movetime":
			gp.moveTime = ms
		case "wtime":
			gp.wTime = ms
		case "btime":
			gp.bTime = ms
		case "winc":
			gp.wInc = ms
		case "binc":
			gp.bInc = ms
		}
	}
	return gp
}

// budget is the wall-clock allowance for one go command, or 0 for none.
func (s *session) budget(gp goParams) time.Duration {
	if gp.moveTime > 0 {
		return gp.moveTime
	}
	remaining, inc := gp.wTime, gp.wInc
	if s.pos.SideToMove() == board.Black {
		remaining, inc = gp.bTime, gp.bInc
	}
	if remaining <= 0 {
		return 0
	}
	return engine.MoveBudget(s.pos, remaining, inc)
}

func (s *session) goCommand(tokens []string) {
	gp := s.parseGo(tokens)
	depth := s.depth
	if gp.depth > 0 {
		depth = engine.Clamp(gp.depth, 1, engine.MaxDepth)
	}
	ctx := context.Background()
	if d := s.budget(gp); d > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d)
		defer cancel()
	}

	res, err := s.engine.Play(ctx, s.pos, depth)
	if err != nil {
		s.logger.Warn().Err(err).Str("fen", s.pos.FEN()).Msg("no move")
		s.println("info string", err)
		s.println("bestmove 0000")
		return
	}
	if !res.Book {
		s.println("info depth", depth, "score", scoreString(res.Score),
			"nodes", res.Nodes, "time", res.Elapsed.Milliseconds())
	}
	if s.cutStats {
		res.Stats.Dump(s.out)
	}
	s.println("bestmove", board.MoveString(res.Move))
}

// scoreString renders a side-to-move score the way UCI GUIs expect.
func scoreString(score float64) string {
	if engine.IsMateScore(score) {
		moves := (engine.MateDistance(score) + 1) / 2
		if score < 0 {
			moves = -moves
		}
		return fmt.Sprintf("mate %d", moves)
	}
	return fmt.Sprintf("cp %d", int(score))
}

func (s *session) eval() {
	ev := s.engine.Evaluator()
	score, err := ev.Evaluate(s.pos)
	if err != nil {
		s.println("info string eval failed:", err)
		return
	}
	s.println("info string eval", score, "favouring", ev.Favoured())
}

// setOption handles "setoption name <id> [value <x>]".
func (s *session) setOption(tokens []string) {
	var name, value string
	for i := 0; i < len(tokens); i++ {
		switch strings.ToLower(tokens[i]) {
		case "name":
			if i+1 < len(tokens) {
				i++
				name = strings.ToLower(tokens[i])
			}
		case "value":
			if i+1 < len(tokens) {
				i++
				value = tokens[i]
			}
		}
	}
	switch name {
	case "cutstats":
		s.cutStats = value == "" || strings.EqualFold(value, "true")
	case "depth":
		n, err := strconv.Atoi(value)
		if err != nil || n < 1 || n > engine.MaxDepth {
			s.println("info string Malformed setoption value", value)
			return
		}
		s.depth = n
	default:
		s.println("info string Unknown option", name)
	}
}
