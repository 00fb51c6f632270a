package main

import (
	"flag"
	"fmt"
	"os"
	"sort"
	"time"

	dragon "github.com/dylhunn/dragontoothmg"
	"github.com/pkg/profile"

	"github.com/pssnyder/slowmate-chess-engine-sub001/board"
)

func main() {
	fen := flag.String("fen", board.StartFEN, "FEN string (defaults to initial position)")
	depth := flag.Int("depth", 0, "Perft depth (required)")
	divide := flag.Bool("divide", false, "Print per-move node counts at root")
	verify := flag.Bool("verify", false, "Compare per-move counts with dragontoothmg")
	repeat := flag.Int("repeat", 1, "Repeat perft N times and report aggregate (for steadier timings)")
	label := flag.String("label", "", "Optional label prefix for one-line output")
	prof := flag.String("profile", "", "Profile the run: cpu or mem")
	profDir := flag.String("profile-dir", ".", "Directory for profile output")
	flag.Parse()

	if *depth <= 0 {
		fmt.Fprintln(os.Stderr, "-depth must be > 0")
		os.Exit(2)
	}

	b, err := board.ParseFEN(*fen)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ParseFEN error: %v\n", err)
		os.Exit(2)
	}

	switch *prof {
	case "":
	case "cpu":
		defer profile.Start(profile.CPUProfile, profile.ProfilePath(*profDir), profile.Quiet).Stop()
	case "mem":
		defer profile.Start(profile.MemProfile, profile.ProfilePath(*profDir), profile.Quiet).Stop()
	default:
		fmt.Fprintf(os.Stderr, "unknown -profile %q\n", *prof)
		os.Exit(2)
	}

	if *verify {
		if !verifyDivide(b, *fen, *depth) {
			os.Exit(1)
		}
		return
	}

	if *divide {
		var sum uint64
		for _, e := range b.PerftDivide(*depth) {
			fmt.Printf("%s: %d\n", e.Move, e.Nodes)
			sum += e.Nodes
		}
		fmt.Printf("Total: %d\n", sum)
		return
	}

	var totalNodes uint64
	start := time.Now()
	for i := 0; i < *repeat; i++ {
		totalNodes += b.Perft(*depth)
	}
	elapsed := time.Since(start)
	nps := float64(totalNodes) / elapsed.Seconds()

	// Single line: Depth Nodes Time NPS
	fmt.Printf("%s \t%d \t\t%d \t\t%s \t%.0f\n", *label, *depth, totalNodes, elapsed, nps)
}

// verifyDivide prints every root move whose subtree count differs from
// dragontoothmg and reports whether all matched.
func verifyDivide(b *board.Board, fen string, depth int) bool {
	theirs := dragonDivide(fen, depth)
	ok := true
	seen := map[string]bool{}
	for _, e := range b.PerftDivide(depth) {
		seen[e.Move] = true
		if n, found := theirs[e.Move]; !found {
			fmt.Printf("%s: %d, not legal for dragontoothmg\n", e.Move, e.Nodes)
			ok = false
		} else if n != e.Nodes {
			fmt.Printf("%s: %d, dragontoothmg %d\n", e.Move, e.Nodes, n)
			ok = false
		}
	}
	missing := make([]string, 0)
	for m := range theirs {
		if !seen[m] {
			missing = append(missing, m)
		}
	}
	sort.Strings(missing)
	for _, m := range missing {
		fmt.Printf("%s: missing, dragontoothmg %d\n", m, theirs[m])
		ok = false
	}
	if ok {
		fmt.Printf("depth %d: all %d root moves match\n", depth, len(seen))
	}
	return ok
}

func dragonDivide(fen string, depth int) map[string]uint64 {
	db := dragon.ParseFen(fen)
	out := map[string]uint64{}
	for _, m := range db.GenerateLegalMoves() {
		unapply := db.Apply(m)
		out[m.String()] = dragonPerft(&db, depth-1)
		unapply()
	}
	return out
}

func dragonPerft(db *dragon.Board, depth int) uint64 {
	if depth == 0 {
		return 1
	}
	moves := db.GenerateLegalMoves()
	if depth == 1 {
		return uint64(len(moves))
	}
	var n uint64
	for _, m := range moves {
		unapply := db.Apply(m)
		n += dragonPerft(db, depth-1)
		unapply()
	}
	return n
}
