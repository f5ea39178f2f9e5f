package board

// Perft counts the leaf nodes of the legal move tree to depth plies. p is
// restored before it returns.
func Perft(p *Position, depth int) uint64 {
	if depth <= 0 {
		return 1
	}
	moves := p.LegalMoves()
	if depth == 1 {
		return uint64(len(moves))
	}
	var nodes uint64
	for _, m := range moves {
		undo := p.Apply(m)
		nodes += Perft(p, depth-1)
		undo()
	}
	return nodes
}

// PerftDivide splits Perft by root move, keyed by UCI string.
func PerftDivide(p *Position, depth int) map[string]uint64 {
	result := make(map[string]uint64)
	if depth <= 0 {
		return result
	}
	for _, m := range p.LegalMoves() {
		undo := p.Apply(m)
		result[MoveString(m)] = Perft(p, depth-1)
		undo()
	}
	return result
}
