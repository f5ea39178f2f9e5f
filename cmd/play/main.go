// Command play is a human-versus-engine game in the terminal.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/notnil/chess"

	"negamax-chess/board"
	"negamax-chess/book"
	"negamax-chess/config"
)

func main() {
	configPath := flag.String("config", "", "JSON config file")
	depth := flag.Int("depth", 0, "engine search depth (overrides config)")
	side := flag.String("side", "white", "the colour you play")
	logLevel := flag.String("log-level", "warn", "log level")
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
	cfg.LogLevel = *logLevel
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	logger := cfg.Logger()
	e, err := cfg.BuildEngine(logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("build engine")
	}

	human := board.White
	if strings.HasPrefix(strings.ToLower(*side), "b") {
		human = board.Black
	}
	fmt.Printf("Starting game. You are %s. Engine depth: %d\n", human, cfg.Depth)

	reader := bufio.NewReader(os.Stdin)
	game := chess.NewGame()
	pos := board.StartPosition()
	var played []string

	for pos.Status() == board.None {
		fmt.Println("\n--------------------")
		fmt.Println(game.Position().Board().Draw())
		fmt.Printf("Turn: %s\n", pos.SideToMove())

		var uci string
		if pos.SideToMove() == human {
			fmt.Print("Enter your move (e.g. e2e4 or Nf3): ")
			input, err := reader.ReadString('\n')
			if err != nil {
				fmt.Println("\nbye")
				return
			}
			if uci, err = readMove(game, pos, strings.TrimSpace(input)); err != nil {
				fmt.Println(err)
				continue
			}
		} else {
			fmt.Println("Engine is thinking...")
			res, err := e.Play(context.Background(), pos, cfg.Depth)
			if err != nil {
				logger.Error().Err(err).Msg("engine failed")
				return
			}
			uci = board.MoveString(res.Move)
			if res.Book {
				fmt.Println("Engine plays from book.")
			} else {
				fmt.Printf("Engine score: %.1f (%d nodes)\n", res.Score, res.Nodes)
			}
		}

		cm, err := chess.UCINotation{}.Decode(game.Position(), uci)
		if err != nil {
			logger.Error().Err(err).Str("move", uci).Msg("move rejected by game record")
			return
		}
		fmt.Printf("%s plays %s\n", pos.SideToMove(), chess.AlgebraicNotation{}.Encode(game.Position(), cm))
		if err := game.Move(cm); err != nil {
			logger.Error().Err(err).Str("move", uci).Msg("apply move")
			return
		}
		m, _ := pos.ParseMove(uci)
		pos.Apply(m)
		played = append(played, uci)
	}

	fmt.Println("\n--------------------")
	fmt.Println("Game Over!")
	fmt.Println(game.Position().Board().Draw())
	fmt.Printf("Result: %s\n", pos.Status())
	if name := book.OpeningName(played); name != "" {
		fmt.Printf("Opening: %s\n", name)
	}
	fmt.Println(game.String())
}

// readMove accepts UCI or SAN and returns the move in UCI form.
func readMove(game *chess.Game, pos *board.Position, input string) (string, error) {
	if m, err := pos.ParseMove(input); err == nil {
		return board.MoveString(m), nil
	}
	cm, err := chess.AlgebraicNotation{}.Decode(game.Position(), input)
	if err != nil {
		return "", fmt.Errorf("invalid move %q", input)
	}
	uci := cm.String()
	if _, err := pos.ParseMove(uci); err != nil {
		return "", fmt.Errorf("illegal move %q", input)
	}
	return uci, nil
}
