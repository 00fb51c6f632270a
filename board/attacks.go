package board

import "math/bits"

var (
	knightAttacks [64]uint64
	kingAttacks   [64]uint64
	pawnAttacks   [2][64]uint64
	// rays[dir][sq] excludes sq itself. Directions 0-3 grow the square
	// index, 4-7 shrink it.
	rays [8][64]uint64
)

var rayDeltas = [8][2]int{
	{0, 1}, {1, 0}, {1, 1}, {-1, 1}, // N E NE NW
	{0, -1}, {-1, 0}, {-1, -1}, {1, -1}, // S W SW SE
}

const (
	dirNorth = iota
	dirEast
	dirNorthEast
	dirNorthWest
	dirSouth
	dirWest
	dirSouthWest
	dirSouthEast
)

func init() {
	for sq := 0; sq < 64; sq++ {
		f, r := sq&7, sq>>3
		for _, d := range [8][2]int{{1, 2}, {2, 1}, {2, -1}, {1, -2}, {-1, -2}, {-2, -1}, {-2, 1}, {-1, 2}} {
			knightAttacks[sq] |= offsetBit(f+d[0], r+d[1])
		}
		for df := -1; df <= 1; df++ {
			for dr := -1; dr <= 1; dr++ {
				if df != 0 || dr != 0 {
					kingAttacks[sq] |= offsetBit(f+df, r+dr)
				}
			}
		}
		pawnAttacks[White][sq] = offsetBit(f-1, r+1) | offsetBit(f+1, r+1)
		pawnAttacks[Black][sq] = offsetBit(f-1, r-1) | offsetBit(f+1, r-1)
		for dir, d := range rayDeltas {
			for nf, nr := f+d[0], r+d[1]; nf >= 0 && nf < 8 && nr >= 0 && nr < 8; nf, nr = nf+d[0], nr+d[1] {
				rays[dir][sq] |= offsetBit(nf, nr)
			}
		}
	}
}

func offsetBit(f, r int) uint64 {
	if f < 0 || f > 7 || r < 0 || r > 7 {
		return 0
	}
	return uint64(1) << uint(r*8+f)
}

func rayAttacks(dir int, sq Square, occ uint64) uint64 {
	attacks := rays[dir][sq]
	blockers := attacks & occ
	if blockers == 0 {
		return attacks
	}
	var first int
	if dir < 4 {
		first = bits.TrailingZeros64(blockers)
	} else {
		first = 63 - bits.LeadingZeros64(blockers)
	}
	return attacks &^ rays[dir][first]
}

// RookAttacks returns rook attacks from sq given the occupancy.
func RookAttacks(sq Square, occ uint64) uint64 {
	return rayAttacks(dirNorth, sq, occ) | rayAttacks(dirEast, sq, occ) |
		rayAttacks(dirSouth, sq, occ) | rayAttacks(dirWest, sq, occ)
}

// BishopAttacks returns bishop attacks from sq given the occupancy.
func BishopAttacks(sq Square, occ uint64) uint64 {
	return rayAttacks(dirNorthEast, sq, occ) | rayAttacks(dirNorthWest, sq, occ) |
		rayAttacks(dirSouthWest, sq, occ) | rayAttacks(dirSouthEast, sq, occ)
}

// KnightAttacks returns the knight attack set of sq.
func KnightAttacks(sq Square) uint64 { return knightAttacks[sq] }

// KingAttacks returns the king attack set of sq.
func KingAttacks(sq Square) uint64 { return kingAttacks[sq] }

// PawnAttacks returns the squares a pawn of side c on sq attacks.
func PawnAttacks(c Color, sq Square) uint64 { return pawnAttacks[c][sq] }

// AttackersTo returns the pieces of both sides attacking sq under occupancy occ.
func (b *Board) AttackersTo(sq Square, occ uint64) uint64 {
	w, k := &b.pieceBB[White], &b.pieceBB[Black]
	diag := (w[Bishop] | w[Queen] | k[Bishop] | k[Queen]) & BishopAttacks(sq, occ)
	orth := (w[Rook] | w[Queen] | k[Rook] | k[Queen]) & RookAttacks(sq, occ)
	return diag | orth |
		knightAttacks[sq]&(w[Knight]|k[Knight]) |
		kingAttacks[sq]&(w[King]|k[King]) |
		pawnAttacks[Black][sq]&w[Pawn] |
		pawnAttacks[White][sq]&k[Pawn]
}

// IsSquareAttacked reports whether side by attacks sq.
func (b *Board) IsSquareAttacked(sq Square, by Color) bool {
	return b.attackedWith(sq, by, &b.pieceBB[by], b.AllOccupancy())
}

func (b *Board) attackedWith(sq Square, by Color, p *[7]uint64, occ uint64) bool {
	if knightAttacks[sq]&p[Knight] != 0 ||
		kingAttacks[sq]&p[King] != 0 ||
		pawnAttacks[by.Other()][sq]&p[Pawn] != 0 {
		return true
	}
	if BishopAttacks(sq, occ)&(p[Bishop]|p[Queen]) != 0 {
		return true
	}
	return RookAttacks(sq, occ)&(p[Rook]|p[Queen]) != 0
}

// InCheck reports whether the side to move is in check.
func (b *Board) InCheck() bool {
	k := b.KingSquare(b.sideToMove)
	return k != NoSquare && b.IsSquareAttacked(k, b.sideToMove.Other())
}
