// Command benchrun runs the bench/ benchmarks followed by perft and
// searchbench at a few depths, streaming each tool's output.
package main

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
)

const kiwipete = "r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1"

type step struct {
	title string
	// header is printed once before the step's commands.
	header string
	cmds   [][]string
	// required steps abort the run when a command fails.
	required bool
}

var steps = []step{
	{
		title:    "Benchmarks",
		header:   "BENCHMARK  N  ns/op  B/op  allocs/op",
		cmds:     [][]string{{"go", "test", "./bench", "-run", "^$", "-bench", ".", "-benchmem", "-benchtime=1s"}},
		required: true,
	},
	{
		title:  "Perft",
		header: "LABEL \tDepth \t\tNodes \t\tTime \tNPS",
		cmds: [][]string{
			{"go", "run", "./cmd/perft", "-depth", "3", "-label", "Initial"},
			{"go", "run", "./cmd/perft", "-depth", "4", "-label", "Initial"},
			{"go", "run", "./cmd/perft", "-depth", "5", "-label", "Initial"},
		},
	},
	{
		title: "Search",
		cmds: [][]string{
			{"go", "run", "./cmd/searchbench", "-depth", "2"},
			{"go", "run", "./cmd/searchbench", "-depth", "3"},
			{"go", "run", "./cmd/searchbench", "-depth", "4"},
			{"go", "run", "./cmd/searchbench", "-fen", kiwipete, "-depth", "3"},
		},
	},
}

func exitCode(err error) int {
	var ee *exec.ExitError
	if errors.As(err, &ee) {
		return ee.ExitCode()
	}
	return 1
}

func main() {
	for i, s := range steps {
		if i > 0 {
			fmt.Println()
		}
		fmt.Printf("%s:\n", s.title)
		if s.header != "" {
			fmt.Println(s.header)
		}
		for _, args := range s.cmds {
			cmd := exec.Command(args[0], args[1:]...)
			cmd.Stdout = os.Stdout
			cmd.Stderr = os.Stderr
			if err := cmd.Run(); err != nil {
				fmt.Fprintf(os.Stderr, "%v: %v\n", args, err)
				if s.required {
					os.Exit(exitCode(err))
				}
			}
		}
	}
}
