package engine

import (
	"math/rand"
	"testing"
	"time"

	"github.com/pssnyder/slowmate-chess-engine-sub001/board"
)

func TestAllocateInvariants(t *testing.T) {
	o := DefaultTimeOptions()
	lefts := []time.Duration{
		10 * time.Millisecond, 40 * time.Millisecond, 120 * time.Millisecond, 700 * time.Millisecond,
		2 * time.Second, 30 * time.Second, 5 * time.Minute, 90 * time.Minute,
	}
	incs := []time.Duration{0, 100 * time.Millisecond, 2 * time.Second}
	for _, left := range lefts {
		for _, inc := range incs {
			for _, mtg := range []int{0, 1, 5, 40} {
				for _, phase := range []int{0, 12, 24} {
					a := o.Allocate(left, inc, mtg, phase)
					if !(a.Target <= a.Soft && a.Soft <= a.Hard && a.Hard <= left) {
						t.Fatalf("left=%v inc=%v mtg=%d: ordering broken %+v", left, inc, mtg, a)
					}
					floor := Min(o.Minimum, left)
					if a.Target < floor {
						t.Fatalf("left=%v: target %v under floor %v", left, a.Target, floor)
					}
					ceiling := Max(time.Duration(float64(left)*0.40), floor)
					if a.Hard > ceiling {
						t.Fatalf("left=%v inc=%v mtg=%d: hard %v above %v", left, inc, mtg, a.Hard, ceiling)
					}
				}
			}
		}
	}
}

func TestAllocateEmergency(t *testing.T) {
	o := DefaultTimeOptions()
	a := o.Allocate(600*time.Millisecond, 0, 0, 10)
	if a.Hard > Max(60*time.Millisecond, o.Minimum) {
		t.Fatalf("emergency hard limit too large: %v", a.Hard)
	}
	normal := o.Allocate(3*time.Second, 0, 0, 10)
	if a.Target >= normal.Target {
		t.Fatalf("emergency target %v not below normal %v", a.Target, normal.Target)
	}
}

func TestAllocatePhaseAndIncrement(t *testing.T) {
	o := DefaultTimeOptions()
	opening := o.Allocate(time.Minute, 0, 0, 24)
	endgame := o.Allocate(time.Minute, 0, 0, 0)
	if opening.Target >= endgame.Target {
		t.Fatalf("opening target %v should be below endgame target %v", opening.Target, endgame.Target)
	}
	withInc := o.Allocate(time.Minute, time.Second, 0, 24)
	if withInc.Target <= opening.Target {
		t.Fatal("increment did not raise the target")
	}
	last := o.Allocate(10*time.Second, 0, 1, 12)
	if last.Hard > time.Duration(float64(10*time.Second)*o.HardFraction) {
		t.Fatalf("single remaining move spent %v, above the ceiling", last.Hard)
	}
}

func TestAllocateMoveTime(t *testing.T) {
	o := DefaultTimeOptions()
	a := o.AllocateMoveTime(time.Second)
	if a.Hard != time.Second-o.MoveOverhead || a.Target != a.Hard || a.Soft != a.Hard {
		t.Fatalf("movetime allocation %+v", a)
	}
	if a := o.AllocateMoveTime(10 * time.Millisecond); a.Hard != 10*time.Millisecond {
		t.Fatalf("tiny movetime should spend itself, got %v", a.Hard)
	}
}

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time         { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

// Simulated iterative deepening against a fake clock: iteration costs grow
// by a random branching factor and the hard limit is polled every
// millisecond of simulated work.
func TestTimeManagerSimulatedSearches(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 100; i++ {
		clock := &fakeClock{t: time.Unix(1_700_000_000, 0)}
		tm := NewTimeManager(DefaultTimeOptions())
		tm.now = clock.now

		left := time.Duration(100+rng.Intn(300_000)) * time.Millisecond
		inc := time.Duration(rng.Intn(3000)) * time.Millisecond
		limits := Limits{WhiteTime: left, WhiteIncrement: inc, MovesToGo: rng.Intn(30)}
		tm.Start(clock.now(), limits, board.White, rng.Intn(25))
		hard := tm.Allocation().Hard

		cost := time.Duration(1+rng.Intn(5)) * time.Millisecond
		var last, prev time.Duration
		for depth := 1; depth < MaxPly; depth++ {
			if depth > 1 && !tm.ShouldStartIteration(last, prev) {
				break
			}
			iterStart := tm.Elapsed()
			aborted := false
			for spent := time.Duration(0); spent < cost; spent += time.Millisecond {
				clock.advance(time.Millisecond)
				if depth > 1 && tm.HardExceeded() {
					aborted = true
					break
				}
			}
			if aborted {
				break
			}
			prev, last = last, tm.Elapsed()-iterStart
			tm.OnIteration(board.Move(depth % 3))
			cost = time.Duration(float64(cost) * (1.5 + 3*rng.Float64()))
		}

		if elapsed := tm.Elapsed(); float64(elapsed) > float64(hard)*1.1 {
			t.Fatalf("search %d used %v with hard limit %v (left %v)", i, elapsed, hard, left)
		}
		if tm.Allocation().Hard > left {
			t.Fatalf("search %d hard limit %v above remaining %v", i, hard, left)
		}
	}
}

func TestTimeManagerUntimed(t *testing.T) {
	tm := NewTimeManager(DefaultTimeOptions())
	tm.Start(time.Now(), Limits{Infinite: true, WhiteTime: time.Millisecond}, board.White, 24)
	if tm.Timed() || tm.HardExceeded() || !tm.ShouldStartIteration(time.Hour, time.Hour) {
		t.Fatal("infinite search must not be timed")
	}
	tm.Start(time.Now(), Limits{Depth: 5}, board.Black, 24)
	if tm.Timed() {
		t.Fatal("depth-only search must not be timed")
	}
}

func TestTimeManagerStarvedClock(t *testing.T) {
	o := DefaultTimeOptions()
	cases := []struct {
		name   string
		limits Limits
		side   board.Color
	}{
		{"zero clocks", Limits{ClockGiven: true}, board.White},
		{"negative clock", Limits{WhiteTime: -20 * time.Millisecond, BlackTime: time.Minute, ClockGiven: true}, board.White},
		{"only the opponent's clock", Limits{WhiteTime: time.Minute}, board.Black},
		{"zero movetime", Limits{MoveTimeGiven: true}, board.White},
		{"negative movetime", Limits{MoveTime: -time.Second, MoveTimeGiven: true}, board.Black},
	}
	for _, tc := range cases {
		tm := NewTimeManager(o)
		tm.Start(time.Now(), tc.limits, tc.side, 24)
		if !tm.Timed() {
			t.Errorf("%s: starved clock left the search untimed", tc.name)
			continue
		}
		a := tm.Allocation()
		if a.Hard != o.Minimum || a.Soft != o.Minimum || a.Target != o.Minimum {
			t.Errorf("%s: allocation %+v, want every limit at the %v floor", tc.name, a, o.Minimum)
		}
	}
}

func TestTimeManagerStableBestMoveStopsEarly(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	tm := NewTimeManager(DefaultTimeOptions())
	tm.now = clock.now
	tm.Start(clock.now(), Limits{WhiteTime: time.Minute}, board.White, 12)
	a := tm.Allocation()
	for i := 0; i < 6; i++ {
		tm.OnIteration(board.Move(7))
	}
	clock.advance(a.Target)
	if tm.ShouldStartIteration(time.Millisecond, time.Millisecond) {
		t.Fatal("stable best move past target should stop iterating")
	}
	tm.OnIteration(board.Move(9))
	if !tm.ShouldStartIteration(time.Millisecond, time.Millisecond) {
		t.Fatal("changed best move should keep iterating")
	}
}
