package board

import (
	"errors"
	"fmt"
	"math/bits"
	"strconv"
	"strings"
)

// StartFEN is the standard initial position.
const StartFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

var (
	ErrInvalidFEN  = errors.New("invalid FEN")
	ErrIllegalMove = errors.New("illegal move")
)

const pieceChars = " PNBRQK  pnbrqk"

func pieceChar(p Piece) byte {
	if int(p) >= len(pieceChars) || pieceChars[p] == ' ' {
		return '?'
	}
	return pieceChars[p]
}

func pieceFromChar(ch byte) Piece {
	if i := strings.IndexByte(pieceChars, ch); i > 0 && ch != ' ' {
		return Piece(i)
	}
	return NoPiece
}

// ParseFEN builds a board from a FEN string. The half-move and full-move
// fields are optional. Positions without exactly one king per side, with
// pawns on the back ranks or with the side not to move in check are rejected.
func ParseFEN(fen string) (*Board, error) {
	fields := strings.Fields(fen)
	if len(fields) < 4 || len(fields) > 6 {
		return nil, fmt.Errorf("%w: want 4 to 6 fields, got %d", ErrInvalidFEN, len(fields))
	}
	b := &Board{enPassantSquare: NoSquare, fullmoveNumber: 1}

	ranks := strings.Split(fields[0], "/")
	if len(ranks) != 8 {
		return nil, fmt.Errorf("%w: want 8 ranks, got %d", ErrInvalidFEN, len(ranks))
	}
	for i, row := range ranks {
		rank, file := 7-i, 0
		for j := 0; j < len(row); j++ {
			ch := row[j]
			if ch >= '1' && ch <= '8' {
				file += int(ch - '0')
				continue
			}
			p := pieceFromChar(ch)
			if p == NoPiece {
				return nil, fmt.Errorf("%w: unknown piece %q", ErrInvalidFEN, ch)
			}
			if file > 7 {
				return nil, fmt.Errorf("%w: rank %d overflows", ErrInvalidFEN, rank+1)
			}
			b.addPiece(NewSquare(file, rank), p)
			file++
		}
		if file != 8 {
			return nil, fmt.Errorf("%w: rank %d has %d files", ErrInvalidFEN, rank+1, file)
		}
	}

	switch fields[1] {
	case "w":
		b.sideToMove = White
	case "b":
		b.sideToMove = Black
	default:
		return nil, fmt.Errorf("%w: bad side to move %q", ErrInvalidFEN, fields[1])
	}

	if fields[2] != "-" {
		for j := 0; j < len(fields[2]); j++ {
			switch fields[2][j] {
			case 'K':
				b.castlingRights |= CastleWhiteKing
			case 'Q':
				b.castlingRights |= CastleWhiteQueen
			case 'k':
				b.castlingRights |= CastleBlackKing
			case 'q':
				b.castlingRights |= CastleBlackQueen
			default:
				return nil, fmt.Errorf("%w: bad castling field %q", ErrInvalidFEN, fields[2])
			}
		}
	}
	// Drop rights whose king or rook is not at home so movegen and hashing
	// never see impossible rights.
	b.castlingRights &= b.plausibleCastling()

	if fields[3] != "-" {
		sq, ok := ParseSquare(fields[3])
		if !ok || !b.plausibleEnPassant(sq) {
			return nil, fmt.Errorf("%w: bad en-passant square %q", ErrInvalidFEN, fields[3])
		}
		b.enPassantSquare = sq
	}

	if len(fields) > 4 {
		n, err := strconv.Atoi(fields[4])
		if err != nil || n < 0 {
			return nil, fmt.Errorf("%w: bad half-move clock %q", ErrInvalidFEN, fields[4])
		}
		b.halfmoveClock = n
	}
	if len(fields) > 5 {
		n, err := strconv.Atoi(fields[5])
		if err != nil || n < 0 {
			return nil, fmt.Errorf("%w: bad full-move number %q", ErrInvalidFEN, fields[5])
		}
		if n == 0 {
			n = 1
		}
		b.fullmoveNumber = n
	}

	for c := White; c <= Black; c++ {
		if n := bits.OnesCount64(b.pieceBB[c][King]); n != 1 {
			return nil, fmt.Errorf("%w: %s has %d kings", ErrInvalidFEN, c, n)
		}
	}
	if (b.pieceBB[White][Pawn]|b.pieceBB[Black][Pawn])&(rank1|rank8) != 0 {
		return nil, fmt.Errorf("%w: pawn on back rank", ErrInvalidFEN)
	}
	them := b.sideToMove.Other()
	if b.IsSquareAttacked(b.KingSquare(them), b.sideToMove) {
		return nil, fmt.Errorf("%w: side not to move is in check", ErrInvalidFEN)
	}

	if b.sideToMove == Black {
		b.zobristKey ^= sideKey
	}
	b.zobristKey ^= castlingKey(b.castlingRights)
	b.zobristKey ^= b.enPassantKey()
	return b, nil
}

// MustParseFEN is ParseFEN for known-good constants. It panics on error.
func MustParseFEN(fen string) *Board {
	b, err := ParseFEN(fen)
	if err != nil {
		panic(err)
	}
	return b
}

func (b *Board) plausibleCastling() CastlingRights {
	var cr CastlingRights
	if b.pieces[E1] == WhiteKing {
		if b.pieces[H1] == WhiteRook {
			cr |= CastleWhiteKing
		}
		if b.pieces[A1] == WhiteRook {
			cr |= CastleWhiteQueen
		}
	}
	if b.pieces[E8] == BlackKing {
		if b.pieces[H8] == BlackRook {
			cr |= CastleBlackKing
		}
		if b.pieces[A8] == BlackRook {
			cr |= CastleBlackQueen
		}
	}
	return cr
}

// plausibleEnPassant reports whether sq can follow a double push by the side
// not to move: the square and the pawn's origin are empty and the pushed
// pawn stands in front of it.
func (b *Board) plausibleEnPassant(sq Square) bool {
	rank, push := 5, 8
	if b.sideToMove == Black {
		rank, push = 2, -8
	}
	if sq.Rank() != rank {
		return false
	}
	origin, pushed := Square(int(sq)+push), Square(int(sq)-push)
	pawn := MakePiece(b.sideToMove.Other(), Pawn)
	return b.pieces[sq] == NoPiece && b.pieces[origin] == NoPiece && b.pieces[pushed] == pawn
}

// FEN renders the board as a FEN string.
func (b *Board) FEN() string {
	var sb strings.Builder
	for rank := 7; rank >= 0; rank-- {
		empty := 0
		for file := 0; file < 8; file++ {
			p := b.pieces[NewSquare(file, rank)]
			if p == NoPiece {
				empty++
				continue
			}
			if empty > 0 {
				sb.WriteByte(byte('0' + empty))
				empty = 0
			}
			sb.WriteByte(pieceChar(p))
		}
		if empty > 0 {
			sb.WriteByte(byte('0' + empty))
		}
		if rank > 0 {
			sb.WriteByte('/')
		}
	}
	if b.sideToMove == White {
		sb.WriteString(" w ")
	} else {
		sb.WriteString(" b ")
	}
	if b.castlingRights == NoCastling {
		sb.WriteByte('-')
	} else {
		for i, ch := range "KQkq" {
			if b.castlingRights&(1<<uint(i)) != 0 {
				sb.WriteRune(ch)
			}
		}
	}
	sb.WriteByte(' ')
	sb.WriteString(b.enPassantSquare.String())
	fmt.Fprintf(&sb, " %d %d", b.halfmoveClock, b.fullmoveNumber)
	return sb.String()
}
