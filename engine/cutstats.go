package engine

import (
	"fmt"
	"io"

	"github.com/rs/zerolog"
)

// Stats counts what one search did.
type Stats struct {
	Nodes              int
	Evaluations        int
	BetaCutoffs        int
	EmptyWindowCutoffs int
	TerminalNodes      int
}

func (s *Stats) add(o Stats) {
	s.Nodes += o.Nodes
	s.Evaluations += o.Evaluations
	s.BetaCutoffs += o.BetaCutoffs
	s.EmptyWindowCutoffs += o.EmptyWindowCutoffs
	s.TerminalNodes += o.TerminalNodes
}

// MarshalZerologObject lets Stats be logged with Event.Object.
func (s Stats) MarshalZerologObject(e *zerolog.Event) {
	e.Int("nodes", s.Nodes).
		Int("evals", s.Evaluations).
		Int("beta_cutoffs", s.BetaCutoffs).
		Int("empty_window_cutoffs", s.EmptyWindowCutoffs).
		Int("terminal_nodes", s.TerminalNodes)
}

// Dump writes the counters as UCI info strings.
func (s Stats) Dump(w io.Writer) {
	fmt.Fprintln(w, "info string Cut statistics:")
	fmt.Fprintf(w, "info string   Nodes: %d\n", s.Nodes)
	fmt.Fprintf(w, "info string   Evaluations: %d\n", s.Evaluations)
	fmt.Fprintf(w, "info string   Beta cutoffs: %d\n", s.BetaCutoffs)
	fmt.Fprintf(w, "info string   Empty window cutoffs: %d\n", s.EmptyWindowCutoffs)
	fmt.Fprintf(w, "info string   Terminal nodes: %d\n", s.TerminalNodes)
}
