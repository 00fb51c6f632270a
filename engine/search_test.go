package engine

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/pssnyder/slowmate-chess-engine-sub001/board"
)

const mateInTwoFEN = "r2qkb1r/pp2nppp/3p4/2pNN1B1/2BnP3/3P4/PPP2PPP/R2bK2R w KQkq - 1 1"

func mustPosition(t testing.TB, fen string) *board.Position {
	t.Helper()
	pos, err := board.NewPositionFromFEN(fen)
	if err != nil {
		t.Fatalf("NewPositionFromFEN(%q): %v", fen, err)
	}
	return pos
}

func isLegal(pos *board.Position, m board.Move) bool {
	for _, lm := range pos.LegalMoves() {
		if lm == m {
			return true
		}
	}
	return false
}

func TestSearchDepth4FromStart(t *testing.T) {
	pos := mustPosition(t, board.StartFEN)
	e := NewEngine(DefaultOptions(), zerolog.Nop())
	start := time.Now()
	info := e.Search(context.Background(), SearchParams{Position: pos, Limits: Limits{Depth: 4}})
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Fatalf("depth 4 took %v", elapsed)
	}
	if info.Depth != 4 {
		t.Fatalf("completed depth %d, want 4", info.Depth)
	}
	if !isLegal(pos, info.BestMove()) {
		t.Fatalf("best move %s is not legal", info.BestMove())
	}
	if info.Score.IsMate || Abs(info.Score.Centipawns) > 100 {
		t.Fatalf("unreasonable start position score %s", info.Score)
	}
}

func TestSearchFindsMateInTwo(t *testing.T) {
	pos := mustPosition(t, mateInTwoFEN)
	e := NewEngine(DefaultOptions(), zerolog.Nop())
	info := e.Search(context.Background(), SearchParams{Position: pos, Limits: Limits{Depth: 5}})
	if !info.Score.IsMate || info.Score.Mate != 2 {
		t.Fatalf("score %s, want mate 2", info.Score)
	}
	best := info.BestMove()
	if !pos.Push(best) {
		t.Fatalf("best move %s is illegal", best)
	}
	replies := pos.LegalMoves()
	if len(replies) == 0 {
		t.Fatalf("%s mates in one, the position has a faster mate", best)
	}
	for _, r := range replies {
		pos.Push(r)
		if !hasMateInOne(pos) {
			t.Fatalf("after %s %s there is no mate in one", best, r)
		}
		pos.Pop()
	}
}

func hasMateInOne(pos *board.Position) bool {
	for _, m := range pos.LegalMoves() {
		pos.Push(m)
		mate := pos.IsCheckmate()
		pos.Pop()
		if mate {
			return true
		}
	}
	return false
}

func TestSearchReportsBeingMated(t *testing.T) {
	// Either king move allows Rb1 mate.
	pos := mustPosition(t, "1r5k/8/8/8/8/8/r7/6K1 w - - 0 1")
	e := NewEngine(DefaultOptions(), zerolog.Nop())
	info := e.Search(context.Background(), SearchParams{Position: pos, Limits: Limits{Depth: 4}})
	if !info.Score.IsMate || info.Score.Mate != -1 {
		t.Fatalf("score %s, want mate -1", info.Score)
	}
	if !isLegal(pos, info.BestMove()) {
		t.Fatalf("no legal move returned while being mated: %s", info.BestMove())
	}
}

func TestSearchWithoutLegalMoves(t *testing.T) {
	e := NewEngine(DefaultOptions(), zerolog.Nop())

	mated := mustPosition(t, "rnb1kbnr/pppp1ppp/8/4p3/6Pq/5P2/PPPPP2P/RNBQKBNR w KQkq - 1 3")
	info := e.Search(context.Background(), SearchParams{Position: mated, Limits: Limits{Depth: 3}})
	if info.BestMove() != board.NoMove || !info.Score.IsMate || info.Score.Mate != 0 {
		t.Fatalf("checkmated root: move %s score %s", info.BestMove(), info.Score)
	}

	stalemate := mustPosition(t, "7k/5Q2/6K1/8/8/8/8/8 b - - 0 1")
	info = e.Search(context.Background(), SearchParams{Position: stalemate, Limits: Limits{Depth: 3}})
	if info.BestMove() != board.NoMove || info.Score.IsMate || info.Score.Centipawns != 0 {
		t.Fatalf("stalemated root: move %s score %s", info.BestMove(), info.Score)
	}
}

func TestSearchLeavesPositionUntouched(t *testing.T) {
	pos := mustPosition(t, "r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1")
	fen, hash, ply := pos.FEN(), pos.Hash(), pos.Ply()
	e := NewEngine(DefaultOptions(), zerolog.Nop())
	e.Search(context.Background(), SearchParams{Position: pos, Limits: Limits{Depth: 3}})
	if pos.FEN() != fen || pos.Hash() != hash || pos.Ply() != ply {
		t.Fatal("search modified the caller's position")
	}
}

func TestSearchProgressIsIncreasing(t *testing.T) {
	pos := mustPosition(t, board.StartFEN)
	e := NewEngine(DefaultOptions(), zerolog.Nop())
	var depths []int
	var nodes []uint64
	e.Search(context.Background(), SearchParams{
		Position: pos,
		Limits:   Limits{Depth: 5},
		Progress: func(si SearchInfo) {
			depths = append(depths, si.Depth)
			nodes = append(nodes, si.Nodes)
			if len(si.MainLine) == 0 {
				t.Errorf("depth %d reported without a main line", si.Depth)
			}
		},
	})
	if len(depths) != 5 {
		t.Fatalf("got %d progress reports, want 5", len(depths))
	}
	for i := range depths {
		if depths[i] != i+1 || (i > 0 && nodes[i] <= nodes[i-1]) {
			t.Fatalf("progress out of order: depths %v nodes %v", depths, nodes)
		}
	}
}

func TestSearchCancellation(t *testing.T) {
	pos := mustPosition(t, board.StartFEN)
	e := NewEngine(DefaultOptions(), zerolog.Nop())
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	start := time.Now()
	info := e.Search(ctx, SearchParams{Position: pos, Limits: Limits{Infinite: true}})
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Fatalf("cancelled search ran for %v", elapsed)
	}
	if !isLegal(pos, info.BestMove()) {
		t.Fatalf("cancelled search returned %s", info.BestMove())
	}
}

func TestSearchNodeLimit(t *testing.T) {
	pos := mustPosition(t, board.StartFEN)
	e := NewEngine(DefaultOptions(), zerolog.Nop())
	info := e.Search(context.Background(), SearchParams{Position: pos, Limits: Limits{Nodes: 20_000}})
	if info.Nodes > 20_000+2*(checkInterval+1) {
		t.Fatalf("searched %d nodes with a 20000 node limit", info.Nodes)
	}
	if !isLegal(pos, info.BestMove()) {
		t.Fatalf("node limited search returned %s", info.BestMove())
	}
}

// With every pruning heuristic off, the table may only change speed, never
// the root score.
func TestTranspositionTableDoesNotChangeScore(t *testing.T) {
	fens := []string{
		board.StartFEN,
		"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1",
		"8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1",
		"r4rk1/1pp1qppp/p1np1n2/2b1p1B1/2B1P1b1/P1NP1N2/1PP1QPPP/R4RK1 w - - 0 10",
		mateInTwoFEN,
	}
	plain := Options{HashMB: 4, Time: DefaultTimeOptions()}
	withTT := plain
	withTT.UseTT = true

	for _, fen := range fens {
		pos := mustPosition(t, fen)
		a := NewEngine(plain, zerolog.Nop()).Search(context.Background(), SearchParams{Position: pos, Limits: Limits{Depth: 3}})
		b := NewEngine(withTT, zerolog.Nop()).Search(context.Background(), SearchParams{Position: pos, Limits: Limits{Depth: 3}})
		if a.RawScore != b.RawScore {
			t.Errorf("%s: score %d without table, %d with table", fen, a.RawScore, b.RawScore)
		}
		if b.Nodes > a.Nodes {
			t.Logf("%s: table searched more nodes (%d > %d)", fen, b.Nodes, a.Nodes)
		}
	}
}

func TestTimedSearchRespectsHardLimit(t *testing.T) {
	if testing.Short() {
		t.Skip("real-clock searches")
	}
	fens := []string{
		board.StartFEN,
		"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1",
		"r4rk1/1pp1qppp/p1np1n2/2b1p1B1/2B1P1b1/P1NP1N2/1PP1QPPP/R4RK1 w - - 0 10",
	}
	opts := DefaultOptions()
	opts.HashMB = 16
	for i, fen := range fens {
		pos := mustPosition(t, fen)
		left := time.Duration(1500+750*i) * time.Millisecond
		limits := Limits{WhiteTime: left, MovesToGo: 5}
		hard := opts.Time.Allocate(left, 0, 5, pos.Phase()).Hard

		e := NewEngine(opts, zerolog.Nop())
		start := time.Now()
		info := e.Search(context.Background(), SearchParams{Position: pos, Limits: limits})
		elapsed := time.Since(start)
		if float64(elapsed) > float64(hard)*1.1 {
			t.Errorf("%s: took %v, hard limit %v", fen, elapsed, hard)
		}
		if !isLegal(pos, info.BestMove()) {
			t.Errorf("%s: illegal best move %s", fen, info.BestMove())
		}
	}
}

func TestSearchHashVerification(t *testing.T) {
	const kiwipete = "r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1"
	newVerifyingEngine := func(log zerolog.Logger) *Engine {
		opts := DefaultOptions()
		opts.VerifyHash = true
		opts.HashMB = 4
		e := NewEngine(opts, log)
		e.hashCheckMask = 0
		return e
	}

	e := newVerifyingEngine(zerolog.Nop())
	e.Search(context.Background(), SearchParams{Position: mustPosition(t, kiwipete), Limits: Limits{Depth: 3}})
	if n := e.Stats().HashResyncs; n != 0 {
		t.Fatalf("incremental hash drifted %d times", n)
	}

	// Unmaking with the state of another position leaves the pieces right
	// but the key stale.
	start := board.MustParseFEN(board.StartFEN)
	ok, stale := start.MakeMove(mustMove(t, start, "g1f3"))
	if !ok {
		t.Fatal("g1f3 rejected")
	}
	b := board.MustParseFEN(kiwipete)
	m := mustMove(t, b, "a2a3")
	if ok, _ := b.MakeMove(m); !ok {
		t.Fatal("a2a3 rejected")
	}
	b.UnmakeMove(m, stale)
	if b.Hash() == b.ComputeZobrist() {
		t.Fatal("key was not corrupted")
	}
	pos := board.NewPosition(b)

	var logs bytes.Buffer
	e = newVerifyingEngine(zerolog.New(&logs))
	info := e.Search(context.Background(), SearchParams{Position: pos, Limits: Limits{Depth: 3}})
	if n := e.Stats().HashResyncs; n != 1 {
		t.Fatalf("hash resyncs = %d, want 1", n)
	}
	if !strings.Contains(logs.String(), "hash-resync") {
		t.Fatalf("resync not logged:\n%s", logs.String())
	}
	if info.Depth != 3 || !isLegal(pos, info.BestMove()) {
		t.Fatalf("search after resync returned depth %d move %s", info.Depth, info.BestMove())
	}
}

func BenchmarkSearchDepth6(b *testing.B) {
	pos := mustPosition(b, "r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1")
	for i := 0; i < b.N; i++ {
		e := NewEngine(DefaultOptions(), zerolog.Nop())
		e.Search(context.Background(), SearchParams{Position: pos, Limits: Limits{Depth: 6}})
	}
}

func TestLateMoveReductionSkipsKillers(t *testing.T) {
	e := newTestEngine(t, board.StartFEN)
	m := mustMove(t, &e.pos.Board, "g1f3")
	const depth, legal, ply = 10, 20, 3

	plain := e.lateMoveReduction(m, depth, legal, ply, false, false, board.NoMove)
	if plain <= 0 {
		t.Fatalf("late quiet move not reduced: %d", plain)
	}
	if r := e.lateMoveReduction(m, depth, legal, ply, false, false, m); r >= plain {
		t.Fatalf("counter move reduced %d, not less than %d", r, plain)
	}

	e.killers.Insert(m, ply)
	if r := e.lateMoveReduction(m, depth, legal, ply, false, false, board.NoMove); r != 0 {
		t.Fatalf("killer reduced by %d", r)
	}
	if r := e.lateMoveReduction(m, depth, legal, ply+1, false, false, board.NoMove); r != plain {
		t.Fatalf("killer of another ply reduced %d, want %d", r, plain)
	}

	e.Options.LateMoveReductions = false
	if r := e.lateMoveReduction(m, depth, legal, ply+1, false, false, board.NoMove); r != 0 {
		t.Fatalf("reductions disabled but got %d", r)
	}
}
