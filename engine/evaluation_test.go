package engine

import (
	"strings"
	"testing"

	"github.com/pssnyder/slowmate-chess-engine-sub001/board"
)

// mirrorFEN flips the board vertically and swaps the colours.
func mirrorFEN(fen string) string {
	f := strings.Fields(fen)
	ranks := strings.Split(f[0], "/")
	for i, j := 0, len(ranks)-1; i < j; i, j = i+1, j-1 {
		ranks[i], ranks[j] = ranks[j], ranks[i]
	}
	f[0] = swapCase(strings.Join(ranks, "/"))
	if f[1] == "w" {
		f[1] = "b"
	} else {
		f[1] = "w"
	}
	if f[2] != "-" {
		f[2] = swapCase(f[2])
		// Keep the conventional KQkq order.
		var upper, lower string
		for _, c := range f[2] {
			if c >= 'a' {
				lower += string(c)
			} else {
				upper += string(c)
			}
		}
		f[2] = upper + lower
	}
	if f[3] != "-" {
		rank := byte('1' + '8' - f[3][1])
		f[3] = string([]byte{f[3][0], rank})
	}
	return strings.Join(f, " ")
}

func swapCase(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z':
			return r - 'a' + 'A'
		case r >= 'A' && r <= 'Z':
			return r - 'A' + 'a'
		}
		return r
	}, s)
}

func TestEvaluateIsColourSymmetric(t *testing.T) {
	fens := []string{
		board.StartFEN,
		"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1",
		"8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1",
		"r4rk1/1pp1qppp/p1np1n2/2b1p1B1/2B1P1b1/P1NP1N2/1PP1QPPP/R4RK1 w - - 0 10",
		"k7/8/8/3pP3/8/8/8/7K w - d6 0 2",
	}
	for _, fen := range fens {
		b := board.MustParseFEN(fen)
		m := board.MustParseFEN(mirrorFEN(fen))
		if Evaluate(b) != Evaluate(m) {
			t.Errorf("%s evaluates %d, mirror %s evaluates %d", fen, Evaluate(b), mirrorFEN(fen), Evaluate(m))
		}
	}
}

func TestEvaluateMaterial(t *testing.T) {
	up := board.MustParseFEN("4k3/8/8/8/8/8/8/Q3K3 w - - 0 1")
	if Evaluate(up) < 500 {
		t.Fatalf("queen up evaluates %d", Evaluate(up))
	}
	down := board.MustParseFEN("4k3/8/8/8/8/8/8/Q3K3 b - - 0 1")
	if Evaluate(down) > -500 {
		t.Fatalf("queen down evaluates %d", Evaluate(down))
	}
}

func TestEvaluatePawnStructure(t *testing.T) {
	healthy := board.MustParseFEN("4k3/8/8/8/8/8/3PP3/4K3 w - - 0 1")
	doubled := board.MustParseFEN("4k3/8/8/8/8/4P3/4P3/4K3 w - - 0 1")
	if Evaluate(doubled) >= Evaluate(healthy) {
		t.Fatalf("doubled isolated pawns (%d) not worse than connected pawns (%d)",
			Evaluate(doubled), Evaluate(healthy))
	}
}
