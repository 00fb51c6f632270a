package board

import (
	"fmt"
	"strings"
)

// Move packs a move into 32 bits:
//
//	bits  0-5  from square
//	bits  6-11 to square
//	bits 12-15 moved piece
//	bits 16-19 captured piece
//	bits 20-23 promotion piece
//	bits 24-25 flag
type Move uint32

const (
	moveToShift      = 6
	movePieceShift   = 12
	moveCaptureShift = 16
	movePromoteShift = 20
	moveFlagShift    = 24
)

// Move flags. Promotions are signalled by a non-empty promotion piece.
const (
	FlagNone      uint8 = 0
	FlagCastle    uint8 = 1
	FlagEnPassant uint8 = 2
)

// NoMove is the zero move, also printed as "0000".
const NoMove Move = 0

// NewMove builds a move from its parts.
func NewMove(from, to Square, piece, captured, promotion Piece, flag uint8) Move {
	return Move(uint32(from)&0x3F |
		(uint32(to)&0x3F)<<moveToShift |
		uint32(piece&0xF)<<movePieceShift |
		uint32(captured&0xF)<<moveCaptureShift |
		uint32(promotion&0xF)<<movePromoteShift |
		uint32(flag&0x3)<<moveFlagShift)
}

func (m Move) From() Square          { return Square(m & 0x3F) }
func (m Move) To() Square            { return Square((m >> moveToShift) & 0x3F) }
func (m Move) MovedPiece() Piece     { return Piece((m >> movePieceShift) & 0xF) }
func (m Move) CapturedPiece() Piece  { return Piece((m >> moveCaptureShift) & 0xF) }
func (m Move) PromotionPiece() Piece { return Piece((m >> movePromoteShift) & 0xF) }
func (m Move) Flags() uint8          { return uint8((m >> moveFlagShift) & 0x3) }

// IsCapture is true for captures including en passant.
func (m Move) IsCapture() bool { return m.CapturedPiece() != NoPiece }

// IsPromotion is true for any promotion.
func (m Move) IsPromotion() bool { return m.PromotionPiece() != NoPiece }

// IsQuiet is true for moves that neither capture nor promote.
func (m Move) IsQuiet() bool { return m&(0xFF<<moveCaptureShift) == 0 }

// String returns the move in UCI long algebraic form, e.g. "e7e8q".
func (m Move) String() string {
	if m == NoMove {
		return "0000"
	}
	s := m.From().String() + m.To().String()
	if p := m.PromotionPiece(); p != NoPiece {
		s += strings.ToLower(string(pieceChar(p)))
	}
	return s
}

// ParseMove resolves a UCI move string against the legal moves of b.
func (b *Board) ParseMove(s string) (Move, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if len(s) < 4 || len(s) > 5 {
		return NoMove, fmt.Errorf("%w: malformed move %q", ErrIllegalMove, s)
	}
	for _, m := range b.LegalMoves() {
		if m.String() == s {
			return m, nil
		}
	}
	return NoMove, fmt.Errorf("%w: %s in %s", ErrIllegalMove, s, b.FEN())
}
