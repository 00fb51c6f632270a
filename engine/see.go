package engine

import (
	"math/bits"

	"github.com/pssnyder/slowmate-chess-engine-sub001/board"
)

var SeePieceValue = [7]int{
	board.Pawn:   100,
	board.Knight: 320,
	board.Bishop: 330,
	board.Rook:   500,
	board.Queen:  950,
	board.King:   5000,
}

// SEE returns the static exchange value of move m: the material balance for
// the mover after the best sequence of recaptures on the target square, each
// side capturing with its least valuable attacker and free to stop.
func SEE(b *board.Board, m board.Move) int {
	from, to := m.From(), m.To()
	var gain [32]int

	occ := b.AllOccupancy() &^ from.Bit()
	captured := m.CapturedPiece().Type()
	if m.Flags() == board.FlagEnPassant {
		occ &^= epVictimSquare(to, b.SideToMove()).Bit()
	}
	gain[0] = SeePieceValue[captured]
	onSquare := m.MovedPiece().Type()
	if promo := m.PromotionPiece(); promo != board.NoPiece {
		gain[0] += SeePieceValue[promo.Type()] - SeePieceValue[board.Pawn]
		onSquare = promo.Type()
	}

	diag := b.Pieces(board.White, board.Bishop) | b.Pieces(board.Black, board.Bishop) |
		b.Pieces(board.White, board.Queen) | b.Pieces(board.Black, board.Queen)
	orth := b.Pieces(board.White, board.Rook) | b.Pieces(board.Black, board.Rook) |
		b.Pieces(board.White, board.Queen) | b.Pieces(board.Black, board.Queen)

	attackers := b.AttackersTo(to, occ) & occ
	side := b.SideToMove().Other()
	depth := 0
	for {
		mine := attackers & b.Occupancy(side)
		if mine == 0 {
			break
		}
		pt, sq := leastValuableAttacker(b, side, mine)
		depth++
		gain[depth] = SeePieceValue[onSquare] - gain[depth-1]
		if Max(-gain[depth-1], gain[depth]) < 0 {
			break
		}
		occ &^= sq.Bit()
		// Reveal x-ray attackers behind the piece that just moved.
		attackers |= (board.BishopAttacks(to, occ) & diag) | (board.RookAttacks(to, occ) & orth)
		attackers &= occ
		// A king may only recapture when nothing defends the square.
		if pt == board.King && attackers&b.Occupancy(side.Other()) != 0 {
			depth--
			break
		}
		onSquare = pt
		side = side.Other()
	}
	for depth > 0 {
		gain[depth-1] = -Max(-gain[depth-1], gain[depth])
		depth--
	}
	return gain[0]
}

// SeeGE reports whether the exchange on m nets at least threshold.
func SeeGE(b *board.Board, m board.Move, threshold int) bool {
	return SEE(b, m) >= threshold
}

func leastValuableAttacker(b *board.Board, side board.Color, set uint64) (board.PieceType, board.Square) {
	for pt := board.Pawn; pt <= board.King; pt++ {
		if bb := set & b.Pieces(side, pt); bb != 0 {
			return pt, board.Square(bits.TrailingZeros64(bb))
		}
	}
	return board.NoPieceType, board.NoSquare
}

func epVictimSquare(to board.Square, mover board.Color) board.Square {
	if mover == board.White {
		return to - 8
	}
	return to + 8
}
