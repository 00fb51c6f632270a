package engine

import (
	"time"

	"github.com/pssnyder/slowmate-chess-engine-sub001/board"
)

// TimeOptions are the clock handling knobs.
type TimeOptions struct {
	// Reserved per move for protocol and OS latency.
	MoveOverhead time.Duration
	// Floor for every allocation.
	Minimum time.Duration
	// Hard ceiling as a fraction of the remaining time.
	HardFraction float64
	// Below this much remaining time the emergency ceiling applies.
	EmergencyThreshold time.Duration
	EmergencyFraction  float64
}

func DefaultTimeOptions() TimeOptions {
	return TimeOptions{
		MoveOverhead:       30 * time.Millisecond,
		Minimum:            50 * time.Millisecond,
		HardFraction:       0.35,
		EmergencyThreshold: time.Second,
		EmergencyFraction:  0.10,
	}
}

// TimeAllocation is the budget of one move, Target <= Soft <= Hard.
// Target is the nominal spend, no iteration starts after Soft, and the
// search is aborted at Hard.
type TimeAllocation struct {
	Target  time.Duration
	Soft    time.Duration
	Hard    time.Duration
	Minimum time.Duration
}

// Allocate splits the remaining clock for one move. phase runs from 24
// (opening) down to 0 and sets the moves-to-go estimate when movesToGo is 0.
func (o TimeOptions) Allocate(timeLeft, inc time.Duration, movesToGo, phase int) TimeAllocation {
	if timeLeft <= 0 {
		return o.starved()
	}
	minimum := Min(o.Minimum, timeLeft)
	available := Max(timeLeft-o.MoveOverhead, 0)

	mtg := movesToGo
	if mtg <= 0 {
		mtg = estimateMovesRemaining(phase)
	}
	mtg = Clamp(mtg, 1, 60)

	target := available/time.Duration(mtg) + inc*3/4
	ceiling := time.Duration(float64(available) * o.HardFraction)
	if timeLeft < o.EmergencyThreshold {
		// Emergency: bank time and never spend more than a sliver.
		target /= 2
		ceiling = time.Duration(float64(available) * o.EmergencyFraction)
	}

	hard := Min(target*3, ceiling)
	soft := target * 3 / 2

	hard = Clamp(hard, minimum, timeLeft)
	soft = Clamp(soft, minimum, hard)
	target = Clamp(target, minimum, soft)
	return TimeAllocation{Target: target, Soft: soft, Hard: hard, Minimum: minimum}
}

// AllocateMoveTime handles "go movetime": the whole budget is the hard limit.
func (o TimeOptions) AllocateMoveTime(moveTime time.Duration) TimeAllocation {
	if moveTime <= 0 {
		return o.starved()
	}
	minimum := Min(o.Minimum, moveTime)
	t := Max(moveTime-o.MoveOverhead, minimum)
	return TimeAllocation{Target: t, Soft: t, Hard: t, Minimum: minimum}
}

// starved is the budget for an empty or overdrawn clock: the minimum floor.
func (o TimeOptions) starved() TimeAllocation {
	m := o.Minimum
	return TimeAllocation{Target: m, Soft: m, Hard: m, Minimum: m}
}

func estimateMovesRemaining(phase int) int {
	phase = Clamp(phase, 0, 24)
	return (phase*25)/24 + 20 // 20 in bare endgames up to 45 in the opening
}

// TimeManager tracks one search against its allocation.
type TimeManager struct {
	opts  TimeOptions
	now   func() time.Time
	start time.Time
	alloc TimeAllocation
	timed bool

	lastBest    board.Move
	stableCount int
}

func NewTimeManager(opts TimeOptions) *TimeManager {
	return &TimeManager{opts: opts, now: time.Now}
}

// Start begins timing a search. Without a clock or movetime the manager
// never asks the search to stop. A clock given only for the opponent, or
// one at zero or below, is starved and gets the minimum floor.
func (tm *TimeManager) Start(start time.Time, limits Limits, side board.Color, phase int) {
	tm.start = start
	tm.lastBest = board.NoMove
	tm.stableCount = 0
	tm.timed = false
	tm.alloc = TimeAllocation{}
	if limits.Infinite {
		return
	}
	if limits.MoveTimeGiven || limits.MoveTime > 0 {
		tm.timed = true
		tm.alloc = tm.opts.AllocateMoveTime(limits.MoveTime)
		return
	}
	timeLeft, inc := limits.WhiteTime, limits.WhiteIncrement
	if side == board.Black {
		timeLeft, inc = limits.BlackTime, limits.BlackIncrement
	}
	if limits.ClockGiven || limits.WhiteTime != 0 || limits.BlackTime != 0 {
		tm.timed = true
		tm.alloc = tm.opts.Allocate(timeLeft, inc, limits.MovesToGo, phase)
	}
}

// Timed reports whether a clock limit applies.
func (tm *TimeManager) Timed() bool { return tm.timed }

// Allocation returns the active budget.
func (tm *TimeManager) Allocation() TimeAllocation { return tm.alloc }

func (tm *TimeManager) Elapsed() time.Duration { return tm.now().Sub(tm.start) }

// HardExceeded is polled at node boundaries.
func (tm *TimeManager) HardExceeded() bool {
	return tm.timed && tm.Elapsed() >= tm.alloc.Hard
}

// ShouldStartIteration decides whether another depth fits: elapsed time
// must be under the soft limit, and the last iteration's time scaled by
// the observed branching factor must fit before the hard limit.
func (tm *TimeManager) ShouldStartIteration(last, previous time.Duration) bool {
	if !tm.timed {
		return true
	}
	elapsed := tm.Elapsed()
	if elapsed >= tm.alloc.Soft {
		return false
	}
	if tm.stableCount >= 4 && elapsed >= tm.alloc.Target {
		return false
	}
	ebf := 2.5
	if previous > 0 && last > 0 {
		ebf = Clamp(float64(last)/float64(previous), 1.5, 6)
	}
	predicted := time.Duration(float64(last) * ebf)
	return elapsed+predicted <= tm.alloc.Hard
}

// OnIteration records the best move of a completed depth for stability.
func (tm *TimeManager) OnIteration(best board.Move) {
	if best == tm.lastBest {
		tm.stableCount++
	} else {
		tm.stableCount = 0
		tm.lastBest = best
	}
}
