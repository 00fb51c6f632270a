package engine

import "github.com/pssnyder/slowmate-chess-engine-sub001/board"

// KillerTable keeps two quiet cutoff moves per ply. It is cleared for every
// search.
type KillerTable struct {
	moves [MaxPly + 1][2]board.Move
}

func (k *KillerTable) Insert(m board.Move, ply int) {
	if m != k.moves[ply][0] {
		k.moves[ply][1] = k.moves[ply][0]
		k.moves[ply][0] = m
	}
}

// Slot returns 1 or 2 when m is the first or second killer at ply, else 0.
func (k *KillerTable) Slot(m board.Move, ply int) int {
	switch m {
	case board.NoMove:
		return 0
	case k.moves[ply][0]:
		return 1
	case k.moves[ply][1]:
		return 2
	}
	return 0
}

func (k *KillerTable) Clear() {
	*k = KillerTable{}
}
