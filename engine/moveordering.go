package engine

import "github.com/pssnyder/slowmate-chess-engine-sub001/board"

type scoredMove struct {
	move  board.Move
	score int32
}

/*
Move ordering bands, highest first. Each band sits far enough above the next
that no in-band bonus can cross over.
  - hash move
  - captures that do not lose material by SEE, MVV/LVA inside the band
  - quiet queen promotions
  - quiet moves giving check
  - killers, then the counter move to the opponent's last move
  - quiet moves with positive history, then the rest by history
  - losing captures, least bad first
  - under-promotions
*/
const (
	hashMoveScore    int32 = 4_000_000
	goodCaptureScore int32 = 3_000_000
	queenPromoScore  int32 = 2_500_000
	checkScore       int32 = 2_000_000
	killerScore      int32 = 1_500_000
	counterScore     int32 = 1_400_000
	goodQuietScore   int32 = 1_000_000
	quietScore       int32 = 500_000
	badCaptureScore  int32 = 100_000
	underPromoScore  int32 = 0
)

// Most Valuable Victim - Least Valuable Aggressor
func mvvLva(m board.Move) int32 {
	return int32(m.CapturedPiece().Type())*16 - int32(m.MovedPiece().Type())
}

// scoreMoves fills dst with the moves and their ordering scores.
func (e *Engine) scoreMoves(moves []board.Move, dst []scoredMove, ply int, hashMove, prevMove board.Move) []scoredMove {
	b := &e.pos.Board
	side := b.SideToMove()
	counter := e.history.Counter(side, prevMove)
	dst = dst[:0]
	for _, m := range moves {
		var s int32
		promo := m.PromotionPiece().Type()
		switch {
		case m == hashMove:
			s = hashMoveScore
		case promo != board.NoPieceType && promo != board.Queen:
			s = underPromoScore + int32(promo)
		case m.IsCapture():
			if see := SEE(b, m); see >= 0 {
				s = goodCaptureScore + mvvLva(m)
			} else {
				s = badCaptureScore + int32(see)
			}
		case promo == board.Queen:
			s = queenPromoScore
		case b.GivesCheck(m):
			s = checkScore + e.history.Score(side, m)/100
		case e.killers.Slot(m, ply) == 1:
			s = killerScore + 1
		case e.killers.Slot(m, ply) == 2:
			s = killerScore
		case m == counter:
			s = counterScore
		default:
			h := e.history.Score(side, m)
			if h > 0 {
				s = goodQuietScore + h
			} else {
				s = quietScore + h
			}
		}
		dst = append(dst, scoredMove{move: m, score: s})
	}
	return dst
}

// scoreNoisy orders quiescence moves: hash move, then MVV/LVA with queen
// promotions on top.
func scoreNoisy(moves []board.Move, dst []scoredMove, hashMove board.Move) []scoredMove {
	dst = dst[:0]
	for _, m := range moves {
		s := mvvLva(m)
		switch {
		case m == hashMove:
			s = hashMoveScore
		case m.PromotionPiece().Type() == board.Queen:
			s += 200
		}
		dst = append(dst, scoredMove{move: m, score: s})
	}
	return dst
}

// pickNext moves the best remaining entry to index i and returns its move.
func pickNext(list []scoredMove, i int) board.Move {
	best := i
	for j := i + 1; j < len(list); j++ {
		if list[j].score > list[best].score {
			best = j
		}
	}
	list[i], list[best] = list[best], list[i]
	return list[i].move
}
