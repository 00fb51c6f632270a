package engine

import "github.com/pssnyder/slowmate-chess-engine-sub001/board"

// historyMax bounds history scores so they stay inside their ordering band.
const historyMax = 16000

/*
HISTORY/COUNTER MOVES
A quiet move that causes a beta cutoff gets a bonus, the quiet moves tried
before it a malus. The counter table remembers which reply refuted the
opponent's previous move. History survives between searches of a game and
is decayed when a new search starts.
*/
type HistoryTable struct {
	scores   [2][64][64]int32
	counters [2][64][64]board.Move
}

func (h *HistoryTable) Score(side board.Color, m board.Move) int32 {
	return h.scores[side][m.From()][m.To()]
}

// Update rewards the cutoff move and penalises the quiet moves that failed.
func (h *HistoryTable) Update(side board.Color, best board.Move, tried []board.Move, depth int) {
	bonus := int32(Min(depth*depth, 400))
	h.add(side, best, bonus)
	for _, m := range tried {
		if m != best {
			h.add(side, m, -bonus)
		}
	}
}

// add applies a gravity-style update that saturates at historyMax.
func (h *HistoryTable) add(side board.Color, m board.Move, delta int32) {
	v := &h.scores[side][m.From()][m.To()]
	*v += delta - *v*Abs(delta)/historyMax
	if Abs(*v) >= historyMax {
		h.age(side)
	}
}

// age halves every score of side.
func (h *HistoryTable) age(side board.Color) {
	for from := range h.scores[side] {
		for to := range h.scores[side][from] {
			h.scores[side][from][to] /= 2
		}
	}
}

// Decay shrinks all scores between searches so old games fade out.
func (h *HistoryTable) Decay() {
	h.age(board.White)
	h.age(board.Black)
}

// Counter returns the stored refutation of prev for side.
func (h *HistoryTable) Counter(side board.Color, prev board.Move) board.Move {
	if prev == board.NoMove {
		return board.NoMove
	}
	return h.counters[side][prev.From()][prev.To()]
}

// SetCounter records m as side's refutation of prev.
func (h *HistoryTable) SetCounter(side board.Color, prev, m board.Move) {
	if prev != board.NoMove {
		h.counters[side][prev.From()][prev.To()] = m
	}
}

// Clear resets history and counters, used on ucinewgame.
func (h *HistoryTable) Clear() {
	*h = HistoryTable{}
}
