package board

import "math/rand"

var (
	pieceKeys  [16][64]uint64
	castleKeys [4]uint64
	epFileKeys [8]uint64
	sideKey    uint64
)

func init() {
	// Fixed seed so keys are stable across runs and test failures reproduce.
	rnd := rand.New(rand.NewSource(0xC0DE))
	for p := range pieceKeys {
		if Piece(p).Type() < Pawn || Piece(p).Type() > King {
			continue
		}
		for sq := range pieceKeys[p] {
			pieceKeys[p][sq] = rnd.Uint64()
		}
	}
	for i := range castleKeys {
		castleKeys[i] = rnd.Uint64()
	}
	for i := range epFileKeys {
		epFileKeys[i] = rnd.Uint64()
	}
	sideKey = rnd.Uint64()
}

// castlingKey XORs one key per right held, so losing a single right
// flips exactly that right's key.
func castlingKey(cr CastlingRights) uint64 {
	var key uint64
	for i := 0; i < 4; i++ {
		if cr&(1<<uint(i)) != 0 {
			key ^= castleKeys[i]
		}
	}
	return key
}

// enPassantKey returns the file key of the en-passant square when a pawn of
// the side to move can actually capture there, and 0 otherwise. Positions
// that differ only by an unusable ep square therefore share a key.
func (b *Board) enPassantKey() uint64 {
	ep := b.enPassantSquare
	if ep == NoSquare {
		return 0
	}
	us := b.sideToMove
	if pawnAttacks[us.Other()][ep]&b.pieceBB[us][Pawn] == 0 {
		return 0
	}
	return epFileKeys[ep.File()]
}

// ComputeZobrist recomputes the key from scratch.
func (b *Board) ComputeZobrist() uint64 {
	var key uint64
	for sq := Square(0); sq < 64; sq++ {
		if p := b.pieces[sq]; p != NoPiece {
			key ^= pieceKeys[p][sq]
		}
	}
	if b.sideToMove == Black {
		key ^= sideKey
	}
	key ^= castlingKey(b.castlingRights)
	key ^= b.enPassantKey()
	return key
}

// ResyncHash replaces the incremental key with a freshly computed one and
// reports whether they differed.
func (b *Board) ResyncHash() bool {
	k := b.ComputeZobrist()
	if k == b.zobristKey {
		return false
	}
	b.zobristKey = k
	return true
}
