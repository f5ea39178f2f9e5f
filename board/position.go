// Package board adapts github.com/dylhunn/dragontoothmg to the small rules
// surface the search needs: legal moves in a stable order, apply/undo, game
// status, attacker counts and a side-to-move override.
package board

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/dylhunn/dragontoothmg"
)

// StartFEN is the standard initial position.
const StartFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

var (
	ErrInvalidFEN  = errors.New("board: invalid FEN")
	ErrIllegalMove = errors.New("board: illegal move")
)

// Move is the opaque move token produced by LegalMoves.
type Move = dragontoothmg.Move

// Square indexes the board little-endian rank-file: a1 = 0, h1 = 7, h8 = 63.
type Square = uint8

type Color uint8

const (
	White Color = iota
	Black
)

func (c Color) Other() Color {
	return c ^ 1
}

func (c Color) String() string {
	if c == White {
		return "white"
	}
	return "black"
}

// Piece is a colourless piece kind, numbered as dragontoothmg numbers them.
type Piece uint8

const (
	NoPiece Piece = iota
	Pawn
	Knight
	Bishop
	Rook
	Queen
	King
)

// Position is a game state plus the hash history needed for repetition
// detection. The zero value is not usable; build one with ParseFEN.
type Position struct {
	b       dragontoothmg.Board
	history []uint64
}

// ParseFEN builds a position from a FEN string. Positions in which the side
// to move could capture the enemy king are rejected.
func ParseFEN(fen string) (*Position, error) {
	pos, err := parseFEN(fen)
	if err != nil {
		return nil, err
	}
	if them := pos.SideToMove().Other(); pos.CountAttackers(pos.SideToMove(), pos.KingSquare(them)) > 0 {
		return nil, fmt.Errorf("%w: %v king can be captured", ErrInvalidFEN, them)
	}
	return pos, nil
}

func parseFEN(fen string) (pos *Position, err error) {
	fields := strings.Fields(fen)
	if len(fields) < 4 || len(fields) > 6 {
		return nil, fmt.Errorf("%w: want 4-6 fields, got %d", ErrInvalidFEN, len(fields))
	}
	if fields[1] != "w" && fields[1] != "b" {
		return nil, fmt.Errorf("%w: bad side to move %q", ErrInvalidFEN, fields[1])
	}
	if err := validatePlacement(fields[0]); err != nil {
		return nil, err
	}
	for len(fields) < 6 {
		if len(fields) == 4 {
			fields = append(fields, "0")
		} else {
			fields = append(fields, "1")
		}
	}
	clock, err := strconv.Atoi(fields[4])
	if err != nil || clock < 0 {
		return nil, fmt.Errorf("%w: bad halfmove clock %q", ErrInvalidFEN, fields[4])
	}
	// The board stores the clock in a byte; anything past 255 is already a
	// fifty-move draw.
	if clock > maxHalfMoveClock {
		fields[4] = strconv.Itoa(maxHalfMoveClock)
	}

	// dragontoothmg panics on input it cannot read.
	defer func() {
		if r := recover(); r != nil {
			pos, err = nil, fmt.Errorf("%w: %v", ErrInvalidFEN, r)
		}
	}()
	b := dragontoothmg.ParseFen(strings.Join(fields, " "))
	pos = &Position{b: b}
	pos.history = append(pos.history, b.Hash())
	return pos, nil
}

const maxHalfMoveClock = 255

func validatePlacement(placement string) error {
	ranks := strings.Split(placement, "/")
	if len(ranks) != 8 {
		return fmt.Errorf("%w: want 8 ranks, got %d", ErrInvalidFEN, len(ranks))
	}
	var whiteKings, blackKings int
	for _, rank := range ranks {
		width := 0
		for _, ch := range rank {
			switch {
			case ch >= '1' && ch <= '8':
				width += int(ch - '0')
			case strings.ContainsRune("pnbrqkPNBRQK", ch):
				width++
				if ch == 'K' {
					whiteKings++
				} else if ch == 'k' {
					blackKings++
				}
			default:
				return fmt.Errorf("%w: bad piece %q", ErrInvalidFEN, ch)
			}
		}
		if width != 8 {
			return fmt.Errorf("%w: rank %q is %d squares wide", ErrInvalidFEN, rank, width)
		}
	}
	if whiteKings != 1 || blackKings != 1 {
		return fmt.Errorf("%w: want one king per side", ErrInvalidFEN)
	}
	return nil
}

// StartPosition returns a fresh copy of the initial position.
func StartPosition() *Position {
	pos, err := ParseFEN(StartFEN)
	if err != nil {
		panic(err)
	}
	return pos
}

func (p *Position) FEN() string {
	return p.b.ToFen()
}

func (p *Position) Hash() uint64 {
	return p.b.Hash()
}

// HistoryLen reports how many positions the repetition history holds,
// including the current one.
func (p *Position) HistoryLen() int {
	return len(p.history)
}

func (p *Position) SideToMove() Color {
	if p.b.Wtomove {
		return White
	}
	return Black
}

func (p *Position) FullMoveNumber() int {
	return int(p.b.Fullmoveno)
}

func (p *Position) HalfMoveClock() int {
	return int(p.b.Halfmoveclock)
}

// Bitboards returns the piece sets of one colour.
func (p *Position) Bitboards(c Color) dragontoothmg.Bitboards {
	if c == White {
		return p.b.White
	}
	return p.b.Black
}

// LegalMoves returns the legal moves in the generator's order. That order is
// stable for a given position and decides ties in the selector.
func (p *Position) LegalMoves() []Move {
	return p.b.GenerateLegalMoves()
}

// Apply plays m in place and returns the closure that takes it back. Calls
// must nest: the most recent undo runs first.
func (p *Position) Apply(m Move) (undo func()) {
	unapply := p.b.Apply(m)
	p.history = append(p.history, p.b.Hash())
	return func() {
		unapply()
		p.history = p.history[:len(p.history)-1]
	}
}

// Clone returns an independent copy, history included.
func (p *Position) Clone() *Position {
	c := &Position{b: p.b}
	c.history = make([]uint64, len(p.history))
	copy(c.history, p.history)
	return c
}

// WithSideToMove returns a copy in which c is to move. Castling rights are
// kept; an en-passant target only belongs to the real side to move, so it is
// dropped when the side flips.
func (p *Position) WithSideToMove(c Color) *Position {
	if c == p.SideToMove() {
		return p.Clone()
	}
	fields := strings.Fields(p.FEN())
	fields[1] = "w"
	if c == Black {
		fields[1] = "b"
	}
	fields[3] = "-"
	// The side now to move may attack the other king, so skip that check.
	flipped, err := parseFEN(strings.Join(fields, " "))
	if err != nil {
		panic(err)
	}
	return flipped
}

// InCheck reports whether the side to move is in check.
func (p *Position) InCheck() bool {
	return p.b.OurKingInCheck()
}

// PieceAt reports the piece standing on sq.
func (p *Position) PieceAt(sq Square) (Piece, Color, bool) {
	if piece := pieceOn(sq, &p.b.White); piece != NoPiece {
		return piece, White, true
	}
	if piece := pieceOn(sq, &p.b.Black); piece != NoPiece {
		return piece, Black, true
	}
	return NoPiece, White, false
}

func pieceOn(sq Square, bb *dragontoothmg.Bitboards) Piece {
	mask := uint64(1) << sq
	switch {
	case bb.All&mask == 0:
		return NoPiece
	case bb.Pawns&mask != 0:
		return Pawn
	case bb.Knights&mask != 0:
		return Knight
	case bb.Bishops&mask != 0:
		return Bishop
	case bb.Rooks&mask != 0:
		return Rook
	case bb.Queens&mask != 0:
		return Queen
	case bb.Kings&mask != 0:
		return King
	}
	return NoPiece
}

// KingSquare returns the square of c's king.
func (p *Position) KingSquare(c Color) Square {
	return Square(lsb(p.Bitboards(c).Kings))
}

// KingsideCastlingRights reports whether c may still castle short.
func (p *Position) KingsideCastlingRights(c Color) bool {
	rights := strings.Fields(p.FEN())[2]
	if c == White {
		return strings.ContainsRune(rights, 'K')
	}
	return strings.ContainsRune(rights, 'k')
}

// ParseMove resolves a UCI string (e2e4, e7e8q) against the legal moves.
func (p *Position) ParseMove(uci string) (Move, error) {
	uci = strings.ToLower(strings.TrimSpace(uci))
	for _, m := range p.LegalMoves() {
		if MoveString(m) == uci {
			return m, nil
		}
	}
	return 0, fmt.Errorf("%w: %q in %s", ErrIllegalMove, uci, p.FEN())
}

// MoveString renders m in UCI notation.
func MoveString(m Move) string {
	return m.String()
}

// Fingerprint identifies a position independently of the move counters. The
// en-passant square only counts when a capture onto it is legal.
func (p *Position) Fingerprint() string {
	fields := strings.Fields(p.FEN())
	if fields[3] != "-" && !p.hasEnPassantCapture(fields[3]) {
		fields[3] = "-"
	}
	return strings.Join(fields[:4], " ")
}

func (p *Position) hasEnPassantCapture(target string) bool {
	own := p.Bitboards(p.SideToMove())
	for _, m := range p.LegalMoves() {
		if own.Pawns&(uint64(1)<<m.From()) == 0 {
			continue
		}
		if m.From()%8 != m.To()%8 && squareName(m.To()) == target {
			return true
		}
	}
	return false
}

func squareName(sq Square) string {
	return string([]byte{'a' + sq%8, '1' + sq/8})
}
