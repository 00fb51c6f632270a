package engine

import (
	"testing"

	"github.com/pssnyder/slowmate-chess-engine-sub001/board"
)

func TestTransTableSizeIsPowerOfTwo(t *testing.T) {
	for _, mb := range []int{0, 1, 3, 7, 16, 100} {
		tt := NewTransTable(mb)
		n := tt.Clusters()
		if n == 0 || n&(n-1) != 0 {
			t.Fatalf("%d MB gives %d clusters, not a power of two", mb, n)
		}
		if uint64(n-1) != tt.mask {
			t.Fatalf("mask %x does not match %d clusters", tt.mask, n)
		}
	}
}

func TestTransTableLookupRespectsBounds(t *testing.T) {
	tt := NewTransTable(1)
	m := board.NewMove(board.E1, board.F1, board.MakePiece(board.White, board.King), board.NoPiece, board.NoPiece, board.FlagNone)

	tt.Store(1, 5, 0, 40, BoundLower, m)
	if _, mv, usable, hit := tt.Lookup(1, 5, 0, 0, 30); !hit || !usable || mv != m {
		t.Fatalf("lower bound 40 should cut beta 30: usable=%v hit=%v move=%v", usable, hit, mv)
	}
	if _, _, usable, _ := tt.Lookup(1, 5, 0, 0, 50); usable {
		t.Fatal("lower bound 40 must not cut beta 50")
	}
	if _, _, usable, hit := tt.Lookup(1, 6, 0, 0, 30); usable || !hit {
		t.Fatal("shallower entry must only provide the move")
	}

	tt.Store(2, 3, 0, -20, BoundUpper, board.NoMove)
	if _, _, usable, _ := tt.Lookup(2, 3, 0, -10, 10); !usable {
		t.Fatal("upper bound -20 should cut alpha -10")
	}
	if _, _, usable, _ := tt.Lookup(2, 3, 0, -30, 10); usable {
		t.Fatal("upper bound -20 must not cut alpha -30")
	}

	if _, _, _, hit := tt.Lookup(3, 0, 0, -10, 10); hit {
		t.Fatal("lookup of a missing key hit")
	}
}

func TestTransTableMateScoresAreNodeRelative(t *testing.T) {
	tt := NewTransTable(1)
	// Mate found 5 plies from the root by a node at ply 3.
	tt.Store(7, 4, 3, MateIn(5), BoundExact, board.NoMove)
	score, _, usable, _ := tt.Lookup(7, 4, 1, -Infinity, Infinity)
	if !usable || score != MateIn(3) {
		t.Fatalf("mate score reached at ply 1 = %d, want %d", score, MateIn(3))
	}

	tt.Store(8, 4, 2, MatedIn(6), BoundExact, board.NoMove)
	score, _, _, _ = tt.Lookup(8, 4, 4, -Infinity, Infinity)
	if score != MatedIn(8) {
		t.Fatalf("mated score reached at ply 4 = %d, want %d", score, MatedIn(8))
	}

	tt.Store(9, 4, 6, 123, BoundExact, board.NoMove)
	if score, _, _, _ = tt.Lookup(9, 4, 0, -Infinity, Infinity); score != 123 {
		t.Fatalf("plain score changed through the table: %d", score)
	}
}

func TestTransTableSameKeyKeepsDeeperResult(t *testing.T) {
	tt := NewTransTable(1)
	tt.Store(11, 8, 0, 50, BoundLower, board.NoMove)
	tt.Store(11, 3, 0, -10, BoundUpper, board.NoMove)
	e, _ := tt.Probe(11)
	if e.Depth != 8 || e.Score != 50 {
		t.Fatalf("shallow bound replaced deeper entry: %+v", e)
	}
	tt.Store(11, 3, 0, 5, BoundExact, board.NoMove)
	if e, _ = tt.Probe(11); e.Depth != 3 || e.Bound != BoundExact {
		t.Fatalf("exact result did not replace entry: %+v", e)
	}
}

func TestTransTableReplacement(t *testing.T) {
	tt := NewTransTable(1)
	stride := tt.mask + 1
	keys := []uint64{5, 5 + stride, 5 + 2*stride, 5 + 3*stride}
	depths := []int{5, 2, 7, 3}
	for i, k := range keys {
		tt.Store(k, depths[i], 0, 0, BoundExact, board.NoMove)
	}

	// A full cluster of the current search loses its shallowest entry.
	newKey := 5 + 4*stride
	tt.Store(newKey, 4, 0, 0, BoundExact, board.NoMove)
	if _, ok := tt.Probe(newKey); !ok {
		t.Fatal("new entry was not stored")
	}
	if _, ok := tt.Probe(keys[1]); ok {
		t.Fatal("depth 2 entry should have been replaced")
	}
	for _, k := range []uint64{keys[0], keys[2], keys[3]} {
		if _, ok := tt.Probe(k); !ok {
			t.Fatalf("deeper entry %d was evicted", k)
		}
	}

	// Stale entries go before any current one, however deep.
	tt.NewSearch()
	tt.NewSearch()
	fresh := 5 + 5*stride
	tt.Store(fresh, 1, 0, 0, BoundExact, board.NoMove)
	other := 5 + 6*stride
	tt.Store(other, 1, 0, 0, BoundExact, board.NoMove)
	if _, ok := tt.Probe(fresh); !ok {
		t.Fatal("current shallow entry was evicted while stale entries remained")
	}
}

func TestTransTableHashfull(t *testing.T) {
	tt := NewTransTable(1)
	if tt.Hashfull() != 0 {
		t.Fatalf("empty table hashfull = %d", tt.Hashfull())
	}
	for i := uint64(0); i < 4000; i++ {
		tt.Store(i, 1, 0, 0, BoundExact, board.NoMove)
	}
	if tt.Hashfull() == 0 {
		t.Fatal("filled table reports zero hashfull")
	}
	tt.NewSearch()
	if tt.Hashfull() != 0 {
		t.Fatal("entries of a previous search counted in hashfull")
	}
	tt.Clear()
	if _, ok := tt.Probe(1); ok {
		t.Fatal("Clear left entries behind")
	}
}
