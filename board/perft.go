package board

import "sort"

// Perft counts leaf nodes of the legal move tree to the given depth.
func (b *Board) Perft(depth int) uint64 {
	if depth <= 0 {
		return 1
	}
	var buf [256]Move
	moves := b.GenerateMoves(buf[:0])
	var nodes uint64
	for _, m := range moves {
		ok, st := b.MakeMove(m)
		if !ok {
			continue
		}
		if depth == 1 {
			nodes++
		} else {
			nodes += b.Perft(depth - 1)
		}
		b.UnmakeMove(m, st)
	}
	return nodes
}

// DivideEntry is the subtree count below one root move.
type DivideEntry struct {
	Move  string
	Nodes uint64
}

// PerftDivide returns per-move subtree counts sorted by move string.
func (b *Board) PerftDivide(depth int) []DivideEntry {
	var out []DivideEntry
	for _, m := range b.LegalMoves() {
		_, st := b.MakeMove(m)
		out = append(out, DivideEntry{Move: m.String(), Nodes: b.Perft(depth - 1)})
		b.UnmakeMove(m, st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Move < out[j].Move })
	return out
}
