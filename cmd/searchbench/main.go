package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/pkg/profile"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/pssnyder/slowmate-chess-engine-sub001/board"
	"github.com/pssnyder/slowmate-chess-engine-sub001/engine"
)

var benchFENs = []string{
	board.StartFEN,
	"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1",
	"8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1",
	"r3k2r/Pppp1ppp/1b3nbN/nP6/BBP1P3/q4N2/Pp1P2PP/R2Q1RK1 w kq - 0 1",
	"rnbq1k1r/pp1Pbppp/2p5/8/2B5/8/PPP1NnPP/RNBQK2R w KQ - 1 8",
	"r4rk1/1pp1qppp/p1np1n2/2b1p1B1/2B1P1b1/P1NP1N2/1PP1QPPP/R4RK1 w - - 0 10",
	"r2qkb1r/pp2nppp/3p4/2pNN1B1/2BnP3/3P4/PPP2PPP/R2bK2R w KQkq - 1 1",
	"8/8/4k3/8/2p5/8/B2P2K1/8 w - - 0 1",
}

type result struct {
	fen   string
	info  engine.SearchInfo
	stats engine.CutStatistics
}

func main() {
	depth := flag.Int("depth", 8, "search depth in plies")
	fen := flag.String("fen", "", "search only this FEN")
	epdPath := flag.String("epd", "", "EPD suite with bm/am opcodes")
	moveTime := flag.Duration("movetime", 0, "time per position instead of a fixed depth")
	jobs := flag.Int("jobs", runtime.NumCPU(), "positions searched in parallel")
	hash := flag.Int("hash", 16, "transposition table size per engine in MB")
	stats := flag.Bool("stats", false, "print cut statistics per position")
	prof := flag.String("profile", "", "Profile the run: cpu or mem")
	flag.Parse()

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}).
		With().Timestamp().Logger()

	if *depth <= 0 && *moveTime <= 0 {
		log.Fatal().Int("depth", *depth).Msg("depth or movetime must be positive")
	}
	switch *prof {
	case "":
	case "cpu":
		defer profile.Start(profile.CPUProfile, profile.Quiet).Stop()
	case "mem":
		defer profile.Start(profile.MemProfile, profile.Quiet).Stop()
	default:
		log.Fatal().Str("profile", *prof).Msg("unknown profile kind")
	}

	var items []epdItem
	switch {
	case *epdPath != "":
		f, err := os.Open(*epdPath)
		if err != nil {
			log.Fatal().Err(err).Msg("open-epd")
		}
		items, err = readEPD(f)
		f.Close()
		if err != nil {
			log.Fatal().Err(err).Str("file", *epdPath).Msg("read-epd")
		}
	case *fen != "":
		items = []epdItem{{FEN: *fen}}
	default:
		for _, f := range benchFENs {
			items = append(items, epdItem{FEN: f})
		}
	}

	limits := engine.Limits{Depth: *depth}
	if *moveTime > 0 {
		limits = engine.Limits{MoveTime: *moveTime}
	}
	opts := engine.DefaultOptions()
	opts.HashMB = *hash
	opts.CutStatistics = *stats

	start := time.Now()
	results, err := searchAll(context.Background(), items, opts, limits, *jobs, log)
	if err != nil {
		log.Fatal().Err(err).Msg("bench-failed")
	}
	elapsed := time.Since(start)

	var nodes uint64
	solved := 0
	for i, r := range results {
		nodes += r.info.Nodes
		best := r.info.BestMove().String()
		mark := ""
		if *epdPath != "" {
			mark = " fail"
			if items[i].solved(best) {
				solved++
				mark = " ok"
			}
		}
		fmt.Printf("%3d %-8s depth %2d score %-9s nodes %10d time %8s%s  %s\n",
			i+1, best, r.info.Depth, r.info.Score, r.info.Nodes, r.info.Time.Round(time.Millisecond), mark, r.fen)
		if *stats {
			for _, line := range r.stats.Lines() {
				fmt.Println("    " + line)
			}
		}
	}
	fmt.Printf("%d nodes %s %d nps\n", nodes, elapsed.Round(time.Millisecond),
		uint64(float64(nodes)/elapsed.Seconds()))
	if *epdPath != "" {
		fmt.Printf("solved %d/%d\n", solved, len(items))
	}
}

// searchAll runs one fresh Engine per position, at most jobs at a time.
func searchAll(ctx context.Context, items []epdItem, opts engine.Options, limits engine.Limits, jobs int, log zerolog.Logger) ([]result, error) {
	results := make([]result, len(items))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(jobs, 1))
	for i, item := range items {
		i, item := i, item
		g.Go(func() error {
			pos, err := board.NewPositionFromFEN(item.FEN)
			if err != nil {
				return fmt.Errorf("position %d: %w", i+1, err)
			}
			e := engine.NewEngine(opts, log.With().Int("position", i+1).Logger())
			info := e.Search(ctx, engine.SearchParams{Position: pos, Limits: limits})
			results[i] = result{fen: item.FEN, info: info, stats: e.Stats()}
			return nil
		})
	}
	return results, g.Wait()
}
