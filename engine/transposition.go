package engine

import (
	"unsafe"

	"github.com/pssnyder/slowmate-chess-engine-sub001/board"
)

// Bound flags. An entry with BoundLower failed high, BoundUpper failed low.
const (
	BoundNone uint8 = iota
	BoundUpper
	BoundLower
	BoundExact
)

const (
	clusterSize = 4
	// Entries this many searches old are replaced before anything else.
	maxAge = 2
)

// TTEntry is one slot of the transposition table. The full key is kept so a
// lookup never trusts an index collision.
type TTEntry struct {
	Key   uint64
	Move  board.Move
	Score int32
	Depth int8
	Bound uint8
	Age   uint8
}

// TransTable is a fixed size hash table of search results, grouped in clusters
// of four slots. The cluster count is a power of two so indexing is a mask.
type TransTable struct {
	entries []TTEntry
	mask    uint64
	age     uint8
}

// NewTransTable allocates a table of at most megabytes MiB.
func NewTransTable(megabytes int) *TransTable {
	tt := &TransTable{}
	tt.Resize(megabytes)
	return tt
}

// Resize reallocates the table, dropping all entries.
func (tt *TransTable) Resize(megabytes int) {
	megabytes = Max(megabytes, 1)
	clusterBytes := uint64(unsafe.Sizeof(TTEntry{})) * clusterSize
	clusters := uint64(megabytes) * 1024 * 1024 / clusterBytes
	size := uint64(1)
	for size*2 <= clusters {
		size *= 2
	}
	tt.entries = make([]TTEntry, size*clusterSize)
	tt.mask = size - 1
	tt.age = 0
}

// Clusters returns the number of clusters, always a power of two.
func (tt *TransTable) Clusters() int { return len(tt.entries) / clusterSize }

// Clear wipes all entries.
func (tt *TransTable) Clear() {
	for i := range tt.entries {
		tt.entries[i] = TTEntry{}
	}
	tt.age = 0
}

// NewSearch advances the generation counter used by replacement.
func (tt *TransTable) NewSearch() { tt.age++ }

func (tt *TransTable) cluster(key uint64) []TTEntry {
	i := (key & tt.mask) * clusterSize
	return tt.entries[i : i+clusterSize]
}

// Probe returns the entry stored for key, if any.
func (tt *TransTable) Probe(key uint64) (TTEntry, bool) {
	for _, e := range tt.cluster(key) {
		if e.Key == key && e.Bound != BoundNone {
			return e, true
		}
	}
	return TTEntry{}, false
}

// Lookup probes key for a node at ply searching depth with window
// (alpha, beta). usable is set when the stored score may be returned
// directly: the entry is at least as deep and its bound allows the cutoff.
// Otherwise only the move hint is meaningful.
func (tt *TransTable) Lookup(key uint64, depth, ply int, alpha, beta int32) (score int32, move board.Move, usable, hit bool) {
	e, ok := tt.Probe(key)
	if !ok {
		return 0, board.NoMove, false, false
	}
	score = scoreFromTT(e.Score, ply)
	if int(e.Depth) >= depth {
		switch e.Bound {
		case BoundExact:
			usable = true
		case BoundLower:
			usable = score >= beta
		case BoundUpper:
			usable = score <= alpha
		}
	}
	return score, e.Move, usable, true
}

// Store records a search result. Mate scores are converted to be relative to
// the stored node.
func (tt *TransTable) Store(key uint64, depth, ply int, score int32, bound uint8, move board.Move) {
	c := tt.cluster(key)
	victim := -1
	for i := range c {
		if c[i].Key == key {
			victim = i
			break
		}
	}
	if victim >= 0 {
		e := &c[victim]
		// Keep a deeper current result unless the new one is exact.
		if e.Age == tt.age && int(e.Depth) > depth && bound != BoundExact {
			if e.Move == board.NoMove {
				e.Move = move
			}
			return
		}
		if move == board.NoMove {
			move = e.Move
		}
	} else {
		victim = tt.replacementSlot(c)
	}
	c[victim] = TTEntry{
		Key:   key,
		Move:  move,
		Score: scoreToTT(score, ply),
		Depth: int8(Clamp(depth, -1, 127)),
		Bound: bound,
		Age:   tt.age,
	}
}

// replacementSlot picks an empty slot, then a stale one, then the shallowest,
// evicting the older of two equally deep entries.
func (tt *TransTable) replacementSlot(c []TTEntry) int {
	best := 0
	for i := range c {
		if c[i].Bound == BoundNone {
			return i
		}
		if tt.age-c[i].Age >= maxAge {
			return i
		}
		if c[i].Depth < c[best].Depth ||
			(c[i].Depth == c[best].Depth && tt.age-c[i].Age > tt.age-c[best].Age) {
			best = i
		}
	}
	return best
}

// Hashfull returns the permille of slots holding current generation entries,
// sampled over the first thousand slots.
func (tt *TransTable) Hashfull() int {
	n := Min(1000, len(tt.entries))
	used := 0
	for i := 0; i < n; i++ {
		if tt.entries[i].Bound != BoundNone && tt.entries[i].Age == tt.age {
			used++
		}
	}
	return used * 1000 / n
}
