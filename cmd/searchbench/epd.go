package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/notnil/chess"
)

// epdItem is one test position. Best and Avoid hold UCI moves decoded from
// the SAN of the bm and am opcodes.
type epdItem struct {
	ID    string
	FEN   string
	Best  []string
	Avoid []string
}

// readEPD parses one position per line; blank lines and lines starting
// with '#' are skipped.
func readEPD(r io.Reader) ([]epdItem, error) {
	var items []epdItem
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		item, err := parseEPDLine(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		items = append(items, item)
	}
	return items, scanner.Err()
}

func parseEPDLine(line string) (epdItem, error) {
	fields := strings.Fields(line)
	if len(fields) < 4 {
		return epdItem{}, fmt.Errorf("want 4 position fields, got %q", line)
	}
	item := epdItem{FEN: strings.Join(fields[:4], " ") + " 0 1"}
	fenOpt, err := chess.FEN(item.FEN)
	if err != nil {
		return epdItem{}, fmt.Errorf("position %q: %w", item.FEN, err)
	}
	pos := chess.NewGame(fenOpt).Position()

	rest := strings.Join(fields[4:], " ")
	for _, op := range strings.Split(rest, ";") {
		parts := strings.Fields(op)
		if len(parts) < 2 {
			continue
		}
		switch parts[0] {
		case "id":
			item.ID = strings.Trim(strings.Join(parts[1:], " "), `"`)
		case "bm", "am":
			moves := make([]string, 0, len(parts)-1)
			for _, san := range parts[1:] {
				m, err := chess.AlgebraicNotation{}.Decode(pos, san)
				if err != nil {
					return epdItem{}, fmt.Errorf("%s %s: %w", parts[0], san, err)
				}
				moves = append(moves, m.String())
			}
			if parts[0] == "bm" {
				item.Best = moves
			} else {
				item.Avoid = moves
			}
		}
	}
	if item.Best == nil && item.Avoid == nil {
		return epdItem{}, fmt.Errorf("no bm or am opcode in %q", line)
	}
	return item, nil
}

// solved reports whether move satisfies the item's bm/am constraints.
func (it epdItem) solved(move string) bool {
	for _, m := range it.Avoid {
		if m == move {
			return false
		}
	}
	if len(it.Best) == 0 {
		return true
	}
	for _, m := range it.Best {
		if m == move {
			return true
		}
	}
	return false
}
