package engine

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/pssnyder/slowmate-chess-engine-sub001/board"
)

// Options configure an Engine. Every pruning heuristic can be switched off,
// which the differential tests rely on.
type Options struct {
	HashMB               int
	UseTT                bool
	Aspiration           bool
	NullMove             bool
	NullMoveVerification bool
	LateMoveReductions   bool
	Futility             bool
	DeltaPruning         bool
	QuiescenceChecks     bool
	VerifyHash           bool
	CutStatistics        bool
	Time                 TimeOptions
}

func DefaultOptions() Options {
	return Options{
		HashMB:               64,
		UseTT:                true,
		Aspiration:           true,
		NullMove:             true,
		NullMoveVerification: true,
		LateMoveReductions:   true,
		Futility:             true,
		DeltaPruning:         true,
		QuiescenceChecks:     true,
		Time:                 DefaultTimeOptions(),
	}
}

// Limits are the stopping conditions of a "go" command.
type Limits struct {
	Depth          int
	Nodes          uint64
	MoveTime       time.Duration
	WhiteTime      time.Duration
	BlackTime      time.Duration
	WhiteIncrement time.Duration
	BlackIncrement time.Duration
	MovesToGo      int
	Infinite       bool
	// Set when the command carried a clock or movetime value, even a zero
	// or negative one.
	ClockGiven     bool
	MoveTimeGiven  bool
}

// SearchParams is the input of one search. Position carries the game
// history for repetition detection and is not modified.
type SearchParams struct {
	Position *board.Position
	Limits   Limits
	// Progress, when set, is called after every completed iteration.
	Progress func(SearchInfo)
}

// SearchInfo describes a completed iteration, or the final result.
type SearchInfo struct {
	Depth    int
	SelDepth int
	Score    UciScore
	RawScore int32
	Nodes    uint64
	Time     time.Duration
	Hashfull int
	MainLine []board.Move
}

// BestMove returns the first move of the main line or NoMove.
func (si SearchInfo) BestMove() board.Move {
	if len(si.MainLine) == 0 {
		return board.NoMove
	}
	return si.MainLine[0]
}

// PonderMove returns the expected reply or NoMove.
func (si SearchInfo) PonderMove() board.Move {
	if len(si.MainLine) < 2 {
		return board.NoMove
	}
	return si.MainLine[1]
}

// NPS returns nodes per second.
func (si SearchInfo) NPS() uint64 {
	ms := Max(si.Time.Milliseconds(), 1)
	return si.Nodes * 1000 / uint64(ms)
}

type stackEntry struct {
	staticEval int32
}

// Engine owns every table a search touches. It is not safe for concurrent
// use; run one Engine per goroutine.
type Engine struct {
	Options Options

	log     zerolog.Logger
	tt      *TransTable
	ttMB    int
	history HistoryTable
	killers KillerTable
	timer   *TimeManager
	stats   CutStatistics
	pv      pvTable

	pos       *board.Position
	ctx       context.Context
	nodes     uint64
	nodeLimit uint64
	selDepth  int
	rootDepth int
	stopped   bool
	// Set when a root move raised alpha inside the current window.
	rootImproved bool
	// Nodes between incremental hash checks, minus one.
	hashCheckMask uint64

	stack     [MaxPly + 2]stackEntry
	moveBuf   [MaxPly + 1][256]board.Move
	scoredBuf [MaxPly + 1][256]scoredMove
	quietBuf  [MaxPly + 1][64]board.Move
}

func NewEngine(opts Options, log zerolog.Logger) *Engine {
	return &Engine{
		Options:       opts,
		log:           log.With().Str("component", "engine").Logger(),
		hashCheckMask: hashCheckMask,
	}
}

// Prepare allocates or resizes tables to match the current options.
func (e *Engine) Prepare() {
	if e.tt == nil || e.ttMB != e.Options.HashMB {
		e.tt = NewTransTable(e.Options.HashMB)
		e.ttMB = e.Options.HashMB
		e.log.Debug().Int("hash_mb", e.ttMB).Int("clusters", e.tt.Clusters()).Msg("tt-allocated")
	}
	e.timer = NewTimeManager(e.Options.Time)
}

// Clear forgets everything learned in the current game.
func (e *Engine) Clear() {
	e.Prepare()
	e.tt.Clear()
	e.history.Clear()
	e.killers.Clear()
}

// Stats returns the cut statistics of the last search.
func (e *Engine) Stats() CutStatistics { return e.stats }

// Hashfull reports the transposition table fill in permille.
func (e *Engine) Hashfull() int {
	if e.tt == nil {
		return 0
	}
	return e.tt.Hashfull()
}
