package board

import "math/bits"

const (
	rank1 uint64 = 0xFF
	rank2 uint64 = rank1 << 8
	rank7 uint64 = rank1 << 48
	rank8 uint64 = rank1 << 56
)

const (
	genAll = iota
	genNoisy
)

var promotionTypes = [4]PieceType{Queen, Rook, Bishop, Knight}

// GenerateMoves appends every pseudo-legal move to dst. Castling is only
// generated when the king does not pass through or start on an attacked square.
func (b *Board) GenerateMoves(dst []Move) []Move { return b.generate(dst, genAll) }

// GenerateNoisy appends pseudo-legal captures and promotions to dst.
func (b *Board) GenerateNoisy(dst []Move) []Move { return b.generate(dst, genNoisy) }

// LegalMoves returns the legal moves of the side to move.
func (b *Board) LegalMoves() []Move {
	pseudo := b.GenerateMoves(make([]Move, 0, 64))
	legal := pseudo[:0]
	for _, m := range pseudo {
		if ok, st := b.MakeMove(m); ok {
			b.UnmakeMove(m, st)
			legal = append(legal, m)
		}
	}
	return legal
}

// HasLegalMoves reports whether the side to move can move at all.
func (b *Board) HasLegalMoves() bool {
	var buf [256]Move
	for _, m := range b.GenerateMoves(buf[:0]) {
		if ok, st := b.MakeMove(m); ok {
			b.UnmakeMove(m, st)
			return true
		}
	}
	return false
}

// IsCheckmate reports whether the side to move is mated.
func (b *Board) IsCheckmate() bool { return b.InCheck() && !b.HasLegalMoves() }

// IsStalemate reports whether the side to move has no move and is not in check.
func (b *Board) IsStalemate() bool { return !b.InCheck() && !b.HasLegalMoves() }

func (b *Board) generate(dst []Move, kind int) []Move {
	us := b.sideToMove
	them := us.Other()
	own := b.occupancy[us]
	enemy := b.occupancy[them]
	occ := own | enemy

	targets := ^own
	if kind == genNoisy {
		targets = enemy
	}

	dst = b.generatePawnMoves(dst, kind)

	for pt := Knight; pt <= King; pt++ {
		piece := MakePiece(us, pt)
		for from := b.pieceBB[us][pt]; from != 0; from &= from - 1 {
			sq := Square(bits.TrailingZeros64(from))
			var att uint64
			switch pt {
			case Knight:
				att = knightAttacks[sq]
			case Bishop:
				att = BishopAttacks(sq, occ)
			case Rook:
				att = RookAttacks(sq, occ)
			case Queen:
				att = BishopAttacks(sq, occ) | RookAttacks(sq, occ)
			case King:
				att = kingAttacks[sq]
			}
			for to := att & targets; to != 0; to &= to - 1 {
				t := Square(bits.TrailingZeros64(to))
				dst = append(dst, NewMove(sq, t, piece, b.pieces[t], NoPiece, FlagNone))
			}
		}
	}

	if kind == genAll {
		dst = b.generateCastles(dst, occ)
	}
	return dst
}

func (b *Board) generatePawnMoves(dst []Move, kind int) []Move {
	us := b.sideToMove
	them := us.Other()
	pawn := MakePiece(us, Pawn)
	pawns := b.pieceBB[us][Pawn]
	empty := ^b.AllOccupancy()
	enemy := b.occupancy[them]

	push, promoRank, startRank := 8, rank8, rank2
	if us == Black {
		push, promoRank, startRank = -8, rank1, rank7
	}
	shift := func(bb uint64, n int) uint64 {
		if n > 0 {
			return bb << uint(n)
		}
		return bb >> uint(-n)
	}

	single := shift(pawns, push) & empty
	double := shift(shift(pawns&startRank, push)&empty, push) & empty

	addPromos := func(dst []Move, from, to Square, captured Piece, all bool) []Move {
		for _, pt := range promotionTypes {
			if !all && pt != Queen {
				break
			}
			dst = append(dst, NewMove(from, to, pawn, captured, MakePiece(us, pt), FlagNone))
		}
		return dst
	}

	for bb := single & promoRank; bb != 0; bb &= bb - 1 {
		to := Square(bits.TrailingZeros64(bb))
		dst = addPromos(dst, to-Square(push), to, NoPiece, kind == genAll)
	}
	if kind == genAll {
		for bb := single &^ promoRank; bb != 0; bb &= bb - 1 {
			to := Square(bits.TrailingZeros64(bb))
			dst = append(dst, NewMove(to-Square(push), to, pawn, NoPiece, NoPiece, FlagNone))
		}
		for bb := double; bb != 0; bb &= bb - 1 {
			to := Square(bits.TrailingZeros64(bb))
			dst = append(dst, NewMove(to-Square(2*push), to, pawn, NoPiece, NoPiece, FlagNone))
		}
	}

	for from := pawns; from != 0; from &= from - 1 {
		sq := Square(bits.TrailingZeros64(from))
		att := pawnAttacks[us][sq]
		for to := att & enemy; to != 0; to &= to - 1 {
			t := Square(bits.TrailingZeros64(to))
			if t.Bit()&promoRank != 0 {
				dst = addPromos(dst, sq, t, b.pieces[t], true)
			} else {
				dst = append(dst, NewMove(sq, t, pawn, b.pieces[t], NoPiece, FlagNone))
			}
		}
		if ep := b.enPassantSquare; ep != NoSquare && att&ep.Bit() != 0 {
			dst = append(dst, NewMove(sq, ep, pawn, MakePiece(them, Pawn), NoPiece, FlagEnPassant))
		}
	}
	return dst
}

func (b *Board) generateCastles(dst []Move, occ uint64) []Move {
	us := b.sideToMove
	them := us.Other()
	type castle struct {
		right          CastlingRights
		king, to, rook Square
		empty          uint64
		safe           [2]Square
	}
	var options [2]castle
	if us == White {
		options = [2]castle{
			{CastleWhiteKing, E1, G1, H1, F1.Bit() | G1.Bit(), [2]Square{F1, G1}},
			{CastleWhiteQueen, E1, C1, A1, D1.Bit() | C1.Bit() | (C1 - 1).Bit(), [2]Square{D1, C1}},
		}
	} else {
		options = [2]castle{
			{CastleBlackKing, E8, G8, H8, F8.Bit() | G8.Bit(), [2]Square{F8, G8}},
			{CastleBlackQueen, E8, C8, A8, D8.Bit() | C8.Bit() | (C8 - 1).Bit(), [2]Square{D8, C8}},
		}
	}
	king := MakePiece(us, King)
	checked := false
	for _, o := range options {
		if b.castlingRights&o.right == 0 || occ&o.empty != 0 {
			continue
		}
		if b.pieces[o.king] != king || b.pieces[o.rook] != MakePiece(us, Rook) {
			continue
		}
		if !checked {
			if b.IsSquareAttacked(o.king, them) {
				return dst
			}
			checked = true
		}
		if b.IsSquareAttacked(o.safe[0], them) || b.IsSquareAttacked(o.safe[1], them) {
			continue
		}
		dst = append(dst, NewMove(o.king, o.to, king, NoPiece, NoPiece, FlagCastle))
	}
	return dst
}

// GivesCheck reports whether the pseudo-legal move m checks the opponent king.
// The board is not modified.
func (b *Board) GivesCheck(m Move) bool {
	us := b.sideToMove
	them := us.Other()
	ksq := b.KingSquare(them)
	if ksq == NoSquare {
		return false
	}
	from, to := m.From(), m.To()
	mine := b.pieceBB[us]
	occ := b.AllOccupancy() &^ from.Bit()
	occ |= to.Bit()

	moved := m.MovedPiece().Type()
	mine[moved] &^= from.Bit()
	if promo := m.PromotionPiece(); promo != NoPiece {
		mine[promo.Type()] |= to.Bit()
	} else {
		mine[moved] |= to.Bit()
	}
	switch m.Flags() {
	case FlagEnPassant:
		occ &^= epVictim(to, us).Bit()
	case FlagCastle:
		rookFrom, rookTo := castleRookSquares(to)
		occ = occ&^rookFrom.Bit() | rookTo.Bit()
		mine[Rook] = mine[Rook]&^rookFrom.Bit() | rookTo.Bit()
	}
	return b.attackedWith(ksq, us, &mine, occ)
}
