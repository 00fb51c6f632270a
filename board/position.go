package board

// Position is a Board plus the stack of undo records and the key history
// of the game so far. Push and Pop are strictly LIFO.
type Position struct {
	Board
	undo []undoRecord
	// keys[i] is the hash before the i-th pushed move, game moves included.
	keys []uint64
}

type undoRecord struct {
	move Move
	st   MoveState
	null NullState
}

// NewPosition starts a position from a board. The board is copied.
func NewPosition(b *Board) *Position {
	return &Position{
		Board: *b,
		undo:  make([]undoRecord, 0, 256),
		keys:  make([]uint64, 0, 512),
	}
}

// NewPositionFromFEN parses fen into a fresh Position.
func NewPositionFromFEN(fen string) (*Position, error) {
	b, err := ParseFEN(fen)
	if err != nil {
		return nil, err
	}
	return NewPosition(b), nil
}

// Push plays m if it is legal for the side to move and reports whether it did.
func (p *Position) Push(m Move) bool {
	key := p.zobristKey
	ok, st := p.MakeMove(m)
	if !ok {
		return false
	}
	p.undo = append(p.undo, undoRecord{move: m, st: st})
	p.keys = append(p.keys, key)
	return true
}

// Pop undoes the last Push or PushNull.
func (p *Position) Pop() {
	n := len(p.undo) - 1
	r := p.undo[n]
	p.undo = p.undo[:n]
	p.keys = p.keys[:len(p.keys)-1]
	if r.move == NoMove {
		p.UnmakeNullMove(r.null)
		return
	}
	p.UnmakeMove(r.move, r.st)
}

// PushNull passes the turn.
func (p *Position) PushNull() {
	key := p.zobristKey
	p.undo = append(p.undo, undoRecord{null: p.MakeNullMove()})
	p.keys = append(p.keys, key)
}

// Ply returns the number of moves on the stack.
func (p *Position) Ply() int { return len(p.undo) }

// LastMove returns the most recently pushed move, NoMove after a null move
// or on an empty stack.
func (p *Position) LastMove() Move {
	if len(p.undo) == 0 {
		return NoMove
	}
	return p.undo[len(p.undo)-1].move
}

// IsRepetition reports whether the current position already occurred since
// the last irreversible move. Null moves end the scan since positions on
// the other side of one were never really reached.
func (p *Position) IsRepetition() bool {
	n := len(p.keys)
	limit := p.halfmoveClock
	for i := 2; i <= limit && i <= n; i += 2 {
		if p.undo[n-i+1].move == NoMove || p.undo[n-i].move == NoMove {
			return false
		}
		if p.keys[n-i] == p.zobristKey {
			return true
		}
	}
	return false
}

// IsDraw reports fifty-move, repetition and dead-material draws. A position
// where the fifty-move count completes with a mate is still a draw here;
// callers that care check mate first.
func (p *Position) IsDraw() bool {
	return p.IsDrawBy50() || p.InsufficientMaterial() || p.IsRepetition()
}

// Clone returns an independent copy including history.
func (p *Position) Clone() *Position {
	c := &Position{Board: p.Board}
	c.undo = append(make([]undoRecord, 0, cap(p.undo)), p.undo...)
	c.keys = append(make([]uint64, 0, cap(p.keys)), p.keys...)
	return c
}
