package engine

import (
	"math/bits"

	"github.com/pssnyder/slowmate-chess-engine-sub001/board"
)

var pieceValueMG = [7]int32{0, 82, 337, 365, 477, 1025, 0}
var pieceValueEG = [7]int32{0, 94, 281, 297, 512, 936, 0}

// Piece-square tables are written from White's point of view with rank 8
// on the first row; a white piece on sq reads index sq^56.
var pstPawnMG = [64]int32{
	0, 0, 0, 0, 0, 0, 0, 0,
	50, 50, 50, 50, 50, 50, 50, 50,
	10, 10, 20, 30, 30, 20, 10, 10,
	5, 5, 10, 25, 25, 10, 5, 5,
	0, 0, 0, 20, 20, 0, 0, 0,
	5, -5, -10, 0, 0, -10, -5, 5,
	5, 10, 10, -20, -20, 10, 10, 5,
	0, 0, 0, 0, 0, 0, 0, 0,
}

var pstPawnEG = [64]int32{
	0, 0, 0, 0, 0, 0, 0, 0,
	80, 80, 80, 80, 80, 80, 80, 80,
	50, 50, 50, 50, 50, 50, 50, 50,
	30, 30, 30, 30, 30, 30, 30, 30,
	15, 15, 15, 15, 15, 15, 15, 15,
	5, 5, 5, 5, 5, 5, 5, 5,
	0, 0, 0, 0, 0, 0, 0, 0,
	0, 0, 0, 0, 0, 0, 0, 0,
}

var pstKnight = [64]int32{
	-50, -40, -30, -30, -30, -30, -40, -50,
	-40, -20, 0, 0, 0, 0, -20, -40,
	-30, 0, 10, 15, 15, 10, 0, -30,
	-30, 5, 15, 20, 20, 15, 5, -30,
	-30, 0, 15, 20, 20, 15, 0, -30,
	-30, 5, 10, 15, 15, 10, 5, -30,
	-40, -20, 0, 5, 5, 0, -20, -40,
	-50, -40, -30, -30, -30, -30, -40, -50,
}

var pstBishop = [64]int32{
	-20, -10, -10, -10, -10, -10, -10, -20,
	-10, 0, 0, 0, 0, 0, 0, -10,
	-10, 0, 5, 10, 10, 5, 0, -10,
	-10, 5, 5, 10, 10, 5, 5, -10,
	-10, 0, 10, 10, 10, 10, 0, -10,
	-10, 10, 10, 10, 10, 10, 10, -10,
	-10, 5, 0, 0, 0, 0, 5, -10,
	-20, -10, -10, -10, -10, -10, -10, -20,
}

var pstRook = [64]int32{
	0, 0, 0, 0, 0, 0, 0, 0,
	5, 10, 10, 10, 10, 10, 10, 5,
	-5, 0, 0, 0, 0, 0, 0, -5,
	-5, 0, 0, 0, 0, 0, 0, -5,
	-5, 0, 0, 0, 0, 0, 0, -5,
	-5, 0, 0, 0, 0, 0, 0, -5,
	-5, 0, 0, 0, 0, 0, 0, -5,
	0, 0, 0, 5, 5, 0, 0, 0,
}

var pstQueen = [64]int32{
	-20, -10, -10, -5, -5, -10, -10, -20,
	-10, 0, 0, 0, 0, 0, 0, -10,
	-10, 0, 5, 5, 5, 5, 0, -10,
	-5, 0, 5, 5, 5, 5, 0, -5,
	0, 0, 5, 5, 5, 5, 0, -5,
	-10, 5, 5, 5, 5, 5, 0, -10,
	-10, 0, 5, 0, 0, 0, 0, -10,
	-20, -10, -10, -5, -5, -10, -10, -20,
}

var pstKingMG = [64]int32{
	-30, -40, -40, -50, -50, -40, -40, -30,
	-30, -40, -40, -50, -50, -40, -40, -30,
	-30, -40, -40, -50, -50, -40, -40, -30,
	-30, -40, -40, -50, -50, -40, -40, -30,
	-20, -30, -30, -40, -40, -30, -30, -20,
	-10, -20, -20, -20, -20, -20, -20, -10,
	20, 20, 0, 0, 0, 0, 20, 20,
	20, 30, 10, 0, 0, 10, 30, 20,
}

var pstKingEG = [64]int32{
	-50, -40, -30, -20, -20, -30, -40, -50,
	-30, -20, -10, 0, 0, -10, -20, -30,
	-30, -10, 20, 30, 30, 20, -10, -30,
	-30, -10, 30, 40, 40, 30, -10, -30,
	-30, -10, 30, 40, 40, 30, -10, -30,
	-30, -10, 20, 30, 30, 20, -10, -30,
	-30, -30, 0, 0, 0, 0, -30, -30,
	-50, -30, -30, -30, -30, -30, -30, -50,
}

var pstMG = [7]*[64]int32{nil, &pstPawnMG, &pstKnight, &pstBishop, &pstRook, &pstQueen, &pstKingMG}
var pstEG = [7]*[64]int32{nil, &pstPawnEG, &pstKnight, &pstBishop, &pstRook, &pstQueen, &pstKingEG}

const (
	bishopPairMG   int32 = 30
	bishopPairEG   int32 = 50
	rookOpenFile   int32 = 20
	rookHalfOpen   int32 = 10
	doubledPawnMG  int32 = 10
	doubledPawnEG  int32 = 20
	isolatedPawnMG int32 = 10
	isolatedPawnEG int32 = 15
	tempoBonus     int32 = 10
)

var fileMasks [8]uint64

func init() {
	for f := 0; f < 8; f++ {
		fileMasks[f] = 0x0101010101010101 << uint(f)
	}
}

// Evaluate returns a static score in centipawns from the side to move's
// point of view, tapered between middlegame and endgame terms by phase.
func Evaluate(b *board.Board) int32 {
	var mg, eg [2]int32
	for c := board.White; c <= board.Black; c++ {
		flip := 56
		if c == board.Black {
			flip = 0
		}
		for pt := board.Pawn; pt <= board.King; pt++ {
			for bb := b.Pieces(c, pt); bb != 0; bb &= bb - 1 {
				sq := bits.TrailingZeros64(bb) ^ flip
				mg[c] += pieceValueMG[pt] + pstMG[pt][sq]
				eg[c] += pieceValueEG[pt] + pstEG[pt][sq]
			}
		}
		if bits.OnesCount64(b.Pieces(c, board.Bishop)) >= 2 {
			mg[c] += bishopPairMG
			eg[c] += bishopPairEG
		}
		pmg, peg := pawnStructure(b, c)
		mg[c] += pmg
		eg[c] += peg
		mg[c] += rookFiles(b, c)
	}

	phase := int32(b.Phase())
	us, them := b.SideToMove(), b.SideToMove().Other()
	mgScore := mg[us] - mg[them]
	egScore := eg[us] - eg[them]
	return (mgScore*phase+egScore*(24-phase))/24 + tempoBonus
}

func pawnStructure(b *board.Board, c board.Color) (mg, eg int32) {
	pawns := b.Pieces(c, board.Pawn)
	for f := 0; f < 8; f++ {
		n := int32(bits.OnesCount64(pawns & fileMasks[f]))
		if n == 0 {
			continue
		}
		if n > 1 {
			mg -= doubledPawnMG * (n - 1)
			eg -= doubledPawnEG * (n - 1)
		}
		var adjacent uint64
		if f > 0 {
			adjacent |= fileMasks[f-1]
		}
		if f < 7 {
			adjacent |= fileMasks[f+1]
		}
		if pawns&adjacent == 0 {
			mg -= isolatedPawnMG * n
			eg -= isolatedPawnEG * n
		}
	}
	return mg, eg
}

func rookFiles(b *board.Board, c board.Color) int32 {
	var score int32
	own := b.Pieces(c, board.Pawn)
	all := own | b.Pieces(c.Other(), board.Pawn)
	for bb := b.Pieces(c, board.Rook); bb != 0; bb &= bb - 1 {
		file := fileMasks[bits.TrailingZeros64(bb)&7]
		switch {
		case all&file == 0:
			score += rookOpenFile
		case own&file == 0:
			score += rookHalfOpen
		}
	}
	return score
}
