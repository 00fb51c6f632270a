package engine

import "github.com/pssnyder/slowmate-chess-engine-sub001/board"

// pvTable is the triangular principal variation table. Row ply holds the
// best line found from that ply, starting at column ply.
type pvTable struct {
	length [MaxPly + 1]int
	moves  [MaxPly + 1][MaxPly + 1]board.Move
}

func (t *pvTable) clear(ply int) { t.length[ply] = ply }

// update makes m followed by the child's line the line at ply.
func (t *pvTable) update(ply int, m board.Move) {
	t.moves[ply][ply] = m
	n := Max(t.length[ply+1], ply+1)
	copy(t.moves[ply][ply+1:n], t.moves[ply+1][ply+1:n])
	t.length[ply] = n
}

// line returns a copy of the root line.
func (t *pvTable) line() []board.Move {
	return append([]board.Move(nil), t.moves[0][:t.length[0]]...)
}
