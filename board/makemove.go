package board

// MoveState holds what UnmakeMove cannot derive from the move itself.
type MoveState struct {
	prevCastling  CastlingRights
	prevEnPassant Square
	prevHalfmove  int
	prevZobrist   uint64
}

// NullState undoes a null move.
type NullState struct {
	prevEnPassant Square
	prevHalfmove  int
	prevZobrist   uint64
}

// MakeMove plays a pseudo-legal move. When the move would leave the mover's
// king in check the board is restored and ok is false.
func (b *Board) MakeMove(m Move) (ok bool, st MoveState) {
	st = MoveState{
		prevCastling:  b.castlingRights,
		prevEnPassant: b.enPassantSquare,
		prevHalfmove:  b.halfmoveClock,
		prevZobrist:   b.zobristKey,
	}
	us := b.sideToMove
	from, to := m.From(), m.To()
	moved := m.MovedPiece()

	b.zobristKey ^= b.enPassantKey()
	b.enPassantSquare = NoSquare
	b.halfmoveClock++

	switch m.Flags() {
	case FlagEnPassant:
		b.removePiece(epVictim(to, us))
		b.movePiece(from, to)
	case FlagCastle:
		b.movePiece(from, to)
		rookFrom, rookTo := castleRookSquares(to)
		b.movePiece(rookFrom, rookTo)
	default:
		if m.IsCapture() {
			b.removePiece(to)
		}
		if promo := m.PromotionPiece(); promo != NoPiece {
			b.removePiece(from)
			b.addPiece(to, promo)
		} else {
			b.movePiece(from, to)
		}
	}

	if moved.Type() == Pawn || m.IsCapture() {
		b.halfmoveClock = 0
	}

	if cr := b.castlingRights & castleMask[from] & castleMask[to]; cr != b.castlingRights {
		b.zobristKey ^= castlingKey(b.castlingRights) ^ castlingKey(cr)
		b.castlingRights = cr
	}

	if us == Black {
		b.fullmoveNumber++
	}
	b.sideToMove = us.Other()
	b.zobristKey ^= sideKey

	if moved.Type() == Pawn && (to-from == 16 || from-to == 16) {
		b.enPassantSquare = (from + to) / 2
		b.zobristKey ^= b.enPassantKey()
	}

	if b.IsSquareAttacked(b.KingSquare(us), b.sideToMove) {
		b.UnmakeMove(m, st)
		return false, st
	}
	return true, st
}

// UnmakeMove reverts a move made by MakeMove.
func (b *Board) UnmakeMove(m Move, st MoveState) {
	b.sideToMove = b.sideToMove.Other()
	us := b.sideToMove
	if us == Black {
		b.fullmoveNumber--
	}
	from, to := m.From(), m.To()

	switch m.Flags() {
	case FlagEnPassant:
		b.movePiece(to, from)
		b.addPiece(epVictim(to, us), m.CapturedPiece())
	case FlagCastle:
		rookFrom, rookTo := castleRookSquares(to)
		b.movePiece(rookTo, rookFrom)
		b.movePiece(to, from)
	default:
		if m.IsPromotion() {
			b.removePiece(to)
			b.addPiece(from, m.MovedPiece())
		} else {
			b.movePiece(to, from)
		}
		if m.IsCapture() {
			b.addPiece(to, m.CapturedPiece())
		}
	}

	b.castlingRights = st.prevCastling
	b.enPassantSquare = st.prevEnPassant
	b.halfmoveClock = st.prevHalfmove
	b.zobristKey = st.prevZobrist
}

// MakeNullMove passes the turn without moving a piece.
func (b *Board) MakeNullMove() NullState {
	st := NullState{
		prevEnPassant: b.enPassantSquare,
		prevHalfmove:  b.halfmoveClock,
		prevZobrist:   b.zobristKey,
	}
	b.zobristKey ^= b.enPassantKey()
	b.enPassantSquare = NoSquare
	b.halfmoveClock++
	b.sideToMove = b.sideToMove.Other()
	b.zobristKey ^= sideKey
	return st
}

// UnmakeNullMove reverts MakeNullMove.
func (b *Board) UnmakeNullMove(st NullState) {
	b.sideToMove = b.sideToMove.Other()
	b.enPassantSquare = st.prevEnPassant
	b.halfmoveClock = st.prevHalfmove
	b.zobristKey = st.prevZobrist
}

func epVictim(to Square, us Color) Square {
	if us == White {
		return to - 8
	}
	return to + 8
}

func castleRookSquares(kingTo Square) (from, to Square) {
	switch kingTo {
	case G1:
		return H1, F1
	case C1:
		return A1, D1
	case G8:
		return H8, F8
	default:
		return A8, D8
	}
}
