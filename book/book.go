// Package book holds the fixed opening replies the engine plays without
// searching, and names openings from the ECO catalogue.
package book

import (
	"fmt"

	"negamax-chess/board"
)

// Book answers a position it knows with a legal move.
type Book interface {
	Lookup(p *board.Position) (board.Move, bool)
}

// Static maps position fingerprints to UCI replies. It is never modified
// after construction.
type Static struct {
	replies map[string]string
}

var _ Book = (*Static)(nil)

// Entry is one book line: a position and the reply to play in it.
type Entry struct {
	FEN   string
	Reply string
}

// Black's replies to the common king's pawn starts.
var defaultEntries = []Entry{
	{"rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq - 0 1", "e7e5"},
	{"rnbqkbnr/pppp1ppp/8/4p3/4P3/5N2/PPPP1PPP/RNBQKB1R b KQkq - 1 2", "b8c6"},
	{"r1bqkbnr/pppp1ppp/2n5/4p3/2B1P3/5N2/PPPP1PPP/RNBQK2R b KQkq - 3 3", "f8c5"},
	{"rnbqkbnr/pppp1ppp/8/4p3/2B1P3/8/PPPP1PPP/RNBQK1NR b KQkq - 1 2", "g8f6"},
	{"rnbqkbnr/pppp1ppp/8/4p3/4P3/2N5/PPPP1PPP/R1BQKBNR b KQkq - 1 2", "g8f6"},
	{"rnbqkb1r/pppp1ppp/5n2/4p3/4P3/2N2N2/PPPP1PPP/R1BQKB1R b KQkq - 3 3", "b8c6"},
	{"r1bqkbnr/pppp1ppp/2n5/4p3/4P3/2N2N2/PPPP1PPP/R1BQKB1R b KQkq - 3 3", "g8f6"},
	{"r1bqkb1r/pppp1ppp/2n2n2/4p3/2B1P3/2N2N2/PPPP1PPP/R1BQK2R b KQkq - 5 4", "f8c5"},
}

var defaultBook = mustStatic(defaultEntries)

// Default returns the built-in book.
func Default() *Static {
	return defaultBook
}

// NewStatic validates every entry: the FEN must parse and the reply must be
// legal in it.
func NewStatic(entries []Entry) (*Static, error) {
	s := &Static{replies: make(map[string]string, len(entries))}
	for _, e := range entries {
		pos, err := board.ParseFEN(e.FEN)
		if err != nil {
			return nil, fmt.Errorf("book entry: %w", err)
		}
		if _, err := pos.ParseMove(e.Reply); err != nil {
			return nil, fmt.Errorf("book entry: %w", err)
		}
		s.replies[pos.Fingerprint()] = e.Reply
	}
	return s, nil
}

func mustStatic(entries []Entry) *Static {
	s, err := NewStatic(entries)
	if err != nil {
		panic(err)
	}
	return s
}

func (s *Static) Len() int {
	return len(s.replies)
}

// Lookup matches p by fingerprint, so move counters do not matter.
func (s *Static) Lookup(p *board.Position) (board.Move, bool) {
	reply, ok := s.replies[p.Fingerprint()]
	if !ok {
		return 0, false
	}
	m, err := p.ParseMove(reply)
	if err != nil {
		return 0, false
	}
	return m, true
}
