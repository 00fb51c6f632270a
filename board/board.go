package board

import "math/bits"

// Board is the full game state of a chess position. It is a plain value:
// two boards compare equal with == exactly when every field matches, which
// the make/unmake tests rely on.
type Board struct {
	// pieceBB[color][type], index 0 of the type axis is unused.
	pieceBB   [2][7]uint64
	occupancy [2]uint64
	pieces    [64]Piece

	sideToMove     Color
	castlingRights CastlingRights
	// Target square behind a pawn that just advanced two squares, or NoSquare.
	enPassantSquare Square
	halfmoveClock   int
	fullmoveNumber  int

	zobristKey uint64
}

// SideToMove reports which side is to play.
func (b *Board) SideToMove() Color { return b.sideToMove }

// CastlingRights returns the rights still available.
func (b *Board) CastlingRights() CastlingRights { return b.castlingRights }

// EnPassantSquare returns the current en-passant target square or NoSquare.
func (b *Board) EnPassantSquare() Square { return b.enPassantSquare }

// HalfmoveClock counts half-moves since the last capture or pawn move.
func (b *Board) HalfmoveClock() int { return b.halfmoveClock }

// FullmoveNumber starts at 1 and increments after Black's move.
func (b *Board) FullmoveNumber() int { return b.fullmoveNumber }

// Hash returns the incrementally maintained Zobrist key.
func (b *Board) Hash() uint64 { return b.zobristKey }

// PieceAt returns the piece on sq or NoPiece.
func (b *Board) PieceAt(sq Square) Piece { return b.pieces[sq] }

// Pieces returns the bitboard of the given side's pieces of one type.
func (b *Board) Pieces(c Color, pt PieceType) uint64 { return b.pieceBB[c][pt] }

// Occupancy returns all squares held by side c.
func (b *Board) Occupancy(c Color) uint64 { return b.occupancy[c] }

// AllOccupancy returns every occupied square.
func (b *Board) AllOccupancy() uint64 { return b.occupancy[White] | b.occupancy[Black] }

// KingSquare returns the square of c's king, NoSquare when absent.
func (b *Board) KingSquare(c Color) Square {
	k := b.pieceBB[c][King]
	if k == 0 {
		return NoSquare
	}
	return Square(bits.TrailingZeros64(k))
}

// HasNonPawnMaterial reports whether side c owns a knight, bishop, rook or queen.
func (b *Board) HasNonPawnMaterial(c Color) bool {
	p := &b.pieceBB[c]
	return p[Knight]|p[Bishop]|p[Rook]|p[Queen] != 0
}

// Phase returns the game phase on a 0 (bare kings and pawns) to 24 (full
// opening material) scale.
func (b *Board) Phase() int {
	phase := 0
	for c := White; c <= Black; c++ {
		phase += bits.OnesCount64(b.pieceBB[c][Knight])
		phase += bits.OnesCount64(b.pieceBB[c][Bishop])
		phase += 2 * bits.OnesCount64(b.pieceBB[c][Rook])
		phase += 4 * bits.OnesCount64(b.pieceBB[c][Queen])
	}
	if phase > 24 {
		phase = 24
	}
	return phase
}

// InsufficientMaterial reports dead positions: bare kings or a single
// minor piece against a bare king.
func (b *Board) InsufficientMaterial() bool {
	for c := White; c <= Black; c++ {
		if b.pieceBB[c][Pawn]|b.pieceBB[c][Rook]|b.pieceBB[c][Queen] != 0 {
			return false
		}
	}
	minors := bits.OnesCount64(b.pieceBB[White][Knight] | b.pieceBB[White][Bishop] |
		b.pieceBB[Black][Knight] | b.pieceBB[Black][Bishop])
	return minors <= 1
}

// IsDrawBy50 reports a fifty-move rule draw.
func (b *Board) IsDrawBy50() bool { return b.halfmoveClock >= 100 }

func (b *Board) addPiece(sq Square, p Piece) {
	bit := sq.Bit()
	c := p.Color()
	b.pieces[sq] = p
	b.pieceBB[c][p.Type()] |= bit
	b.occupancy[c] |= bit
	b.zobristKey ^= pieceKeys[p][sq]
}

func (b *Board) removePiece(sq Square) Piece {
	p := b.pieces[sq]
	if p == NoPiece {
		return NoPiece
	}
	bit := sq.Bit()
	c := p.Color()
	b.pieces[sq] = NoPiece
	b.pieceBB[c][p.Type()] &^= bit
	b.occupancy[c] &^= bit
	b.zobristKey ^= pieceKeys[p][sq]
	return p
}

func (b *Board) movePiece(from, to Square) {
	p := b.pieces[from]
	c := p.Color()
	mask := from.Bit() | to.Bit()
	b.pieces[from] = NoPiece
	b.pieces[to] = p
	b.pieceBB[c][p.Type()] ^= mask
	b.occupancy[c] ^= mask
	b.zobristKey ^= pieceKeys[p][from] ^ pieceKeys[p][to]
}

// Validate cross-checks the mailbox, bitboards, king counts and the hash.
func (b *Board) Validate() bool {
	var occ [2]uint64
	for sq := Square(0); sq < 64; sq++ {
		p := b.pieces[sq]
		if p == NoPiece {
			continue
		}
		if p.Type() < Pawn || p.Type() > King {
			return false
		}
		if b.pieceBB[p.Color()][p.Type()]&sq.Bit() == 0 {
			return false
		}
		occ[p.Color()] |= sq.Bit()
	}
	for c := White; c <= Black; c++ {
		if occ[c] != b.occupancy[c] {
			return false
		}
		var sum uint64
		for pt := Pawn; pt <= King; pt++ {
			if sum&b.pieceBB[c][pt] != 0 {
				return false
			}
			sum |= b.pieceBB[c][pt]
		}
		if sum != b.occupancy[c] || bits.OnesCount64(b.pieceBB[c][King]) != 1 {
			return false
		}
	}
	if b.occupancy[White]&b.occupancy[Black] != 0 {
		return false
	}
	return b.zobristKey == b.ComputeZobrist()
}
