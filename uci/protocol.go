// Package uci adapts an engine.Engine to the Universal Chess Interface.
package uci

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/samber/lo"

	"github.com/pssnyder/slowmate-chess-engine-sub001/board"
	"github.com/pssnyder/slowmate-chess-engine-sub001/engine"
)

var (
	errUnknownCommand = errors.New("unknown command")
	errMalformed      = errors.New("malformed command")
	errUnknownOption  = errors.New("unknown option")
)

// Protocol reads commands from an input stream and writes responses to out.
// Searches run in their own goroutine; every other command is handled on
// the reading goroutine.
type Protocol struct {
	name    string
	author  string
	log     zerolog.Logger
	engine  *engine.Engine
	options []Option

	outMu sync.Mutex
	out   io.Writer

	pos    *board.Position
	gameID uuid.UUID

	moveOverheadMs int

	cancel context.CancelFunc
	done   chan struct{}
}

// New builds a protocol around eng. Options registered here edit
// eng.Options directly and take effect on the next search.
func New(name, author string, eng *engine.Engine, out io.Writer, log zerolog.Logger) *Protocol {
	p := &Protocol{
		name:   name,
		author: author,
		log:    log.With().Str("component", "uci").Logger(),
		engine: eng,
		out:    out,
		pos:    startPosition(),
		gameID: uuid.New(),

		moveOverheadMs: int(eng.Options.Time.MoveOverhead.Milliseconds()),
	}
	o := &eng.Options
	p.options = []Option{
		&IntOption{Name: "Hash", Min: 1, Max: 4096, Value: &o.HashMB},
		&ButtonOption{Name: "Clear Hash", Action: eng.Clear},
		&IntOption{Name: "MoveOverhead", Min: 0, Max: 5000, Value: &p.moveOverheadMs},
		&BoolOption{Name: "NullMove", Value: &o.NullMove},
		&BoolOption{Name: "LateMoveReductions", Value: &o.LateMoveReductions},
		&BoolOption{Name: "Futility", Value: &o.Futility},
		&BoolOption{Name: "QuiescenceChecks", Value: &o.QuiescenceChecks},
		&BoolOption{Name: "CutStatistics", Value: &o.CutStatistics},
	}
	return p
}

func startPosition() *board.Position {
	pos, err := board.NewPositionFromFEN(board.StartFEN)
	if err != nil {
		panic(err)
	}
	return pos
}

// Run processes commands until "quit" or the end of input. At end of input
// a running search is allowed to finish and print its best move.
func (p *Protocol) Run(ctx context.Context, in io.Reader) error {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 64*1024), 1<<20)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "quit" {
			p.stopSearch()
			p.log.Debug().Msg("quit")
			return nil
		}
		if err := p.handle(ctx, line); err != nil {
			p.log.Warn().Err(err).Str("command", line).Msg("command-failed")
			p.send("info string %v", err)
		}
	}
	p.waitSearch()
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read commands: %w", err)
	}
	return nil
}

func (p *Protocol) handle(ctx context.Context, line string) error {
	fields := strings.Fields(line)
	name, args := fields[0], fields[1:]

	switch name {
	case "isready":
		if p.done == nil {
			p.engine.Prepare()
		}
		p.send("readyok")
		return nil
	case "stop":
		p.stopSearch()
		return nil
	}

	var h func(args []string) error
	switch name {
	case "uci":
		h = p.uciCommand
	case "ucinewgame":
		h = p.uciNewGameCommand
	case "setoption":
		h = p.setOptionCommand
	case "position":
		h = p.positionCommand
	case "go":
		h = func(args []string) error { return p.goCommand(ctx, args) }
	case "d":
		h = p.displayCommand
	case "eval":
		h = p.evalCommand
	case "ponderhit", "debug", "register":
		return nil
	}
	if h == nil {
		return fmt.Errorf("%w: %s", errUnknownCommand, name)
	}
	// Everything else touches engine state, so a running search ends first.
	p.stopSearch()
	return h(args)
}

func (p *Protocol) uciCommand([]string) error {
	p.send("id name %s", p.name)
	p.send("id author %s", p.author)
	for _, opt := range p.options {
		p.send("%s", opt.UciString())
	}
	p.send("uciok")
	return nil
}

func (p *Protocol) uciNewGameCommand([]string) error {
	p.engine.Clear()
	p.pos = startPosition()
	p.gameID = uuid.New()
	p.log.Info().Str("game", p.gameID.String()).Msg("new-game")
	return nil
}

// setoption name <name, may contain spaces> [value <value>]
func (p *Protocol) setOptionCommand(args []string) error {
	if len(args) < 2 || args[0] != "name" {
		return fmt.Errorf("%w: setoption %s", errMalformed, strings.Join(args, " "))
	}
	valueAt := lo.IndexOf(args, "value")
	var name, value string
	if valueAt < 0 {
		name = strings.Join(args[1:], " ")
	} else {
		name = strings.Join(args[1:valueAt], " ")
		value = strings.Join(args[valueAt+1:], " ")
	}
	opt, ok := lo.Find(p.options, func(o Option) bool { return strings.EqualFold(o.UciName(), name) })
	if !ok {
		return fmt.Errorf("%w: %s", errUnknownOption, name)
	}
	if err := opt.Set(value); err != nil {
		return fmt.Errorf("option %s: %w", opt.UciName(), err)
	}
	p.log.Debug().Str("name", opt.UciName()).Str("value", value).Msg("option-set")
	return nil
}

// position [startpos | fen <fen>] [moves <m1> ... <mn>]
func (p *Protocol) positionCommand(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: position needs startpos or fen", errMalformed)
	}
	movesAt := lo.IndexOf(args, "moves")
	var pos *board.Position
	switch args[0] {
	case "startpos":
		pos = startPosition()
	case "fen":
		end := len(args)
		if movesAt >= 0 {
			end = movesAt
		}
		var err error
		pos, err = board.NewPositionFromFEN(strings.Join(args[1:end], " "))
		if err != nil {
			return fmt.Errorf("position kept: %w", err)
		}
	default:
		return fmt.Errorf("%w: position %s", errMalformed, args[0])
	}

	p.pos = pos
	if movesAt < 0 {
		return nil
	}
	for _, s := range args[movesAt+1:] {
		m, err := pos.ParseMove(s)
		if err == nil && !pos.Push(m) {
			err = fmt.Errorf("%w: %s", board.ErrIllegalMove, s)
		}
		if err != nil {
			p.log.Warn().Str("move", s).Str("fen", pos.FEN()).Msg("illegal-move")
			return fmt.Errorf("stopped applying moves: %w", err)
		}
	}
	return nil
}

func (p *Protocol) goCommand(ctx context.Context, args []string) error {
	limits, err := parseLimits(args)
	if err != nil {
		// Bad tokens are reported but the search still runs on the rest.
		p.log.Warn().Err(err).Msg("go-arguments")
		p.send("info string %v", err)
	}
	p.engine.Options.Time.MoveOverhead = time.Duration(p.moveOverheadMs) * time.Millisecond

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	p.cancel, p.done = cancel, done
	pos := p.pos.Clone()
	p.log.Debug().Str("game", p.gameID.String()).Str("fen", pos.FEN()).Msg("search-started")

	go func() {
		defer close(done)
		defer cancel()
		info := p.engine.Search(ctx, engine.SearchParams{
			Position: pos,
			Limits:   limits,
			Progress: func(si engine.SearchInfo) { p.send("%s", searchInfoToUci(si)) },
		})
		if p.engine.Options.CutStatistics {
			for _, line := range p.engine.Stats().Lines() {
				p.send("info string %s", line)
			}
		}
		if ponder := info.PonderMove(); ponder != board.NoMove {
			p.send("bestmove %v ponder %v", info.BestMove(), ponder)
		} else {
			p.send("bestmove %v", info.BestMove())
		}
	}()
	return nil
}

func (p *Protocol) displayCommand([]string) error {
	var sb strings.Builder
	for rank := 7; rank >= 0; rank-- {
		sb.WriteString(" +---+---+---+---+---+---+---+---+\n |")
		for file := 0; file < 8; file++ {
			fmt.Fprintf(&sb, " %c |", pieceSymbol(p.pos.PieceAt(board.NewSquare(file, rank))))
		}
		fmt.Fprintf(&sb, " %d\n", rank+1)
	}
	sb.WriteString(" +---+---+---+---+---+---+---+---+\n   a   b   c   d   e   f   g   h")
	p.send("%s", sb.String())
	p.send("Fen: %s", p.pos.FEN())
	p.send("Key: %016X", p.pos.Hash())
	return nil
}

func pieceSymbol(pc board.Piece) rune {
	if pc == board.NoPiece {
		return ' '
	}
	r := rune(" pnbrqk"[pc.Type()])
	if pc.Color() == board.White {
		r -= 'a' - 'A'
	}
	return r
}

func (p *Protocol) evalCommand([]string) error {
	p.send("info string eval cp %d", engine.Evaluate(&p.pos.Board))
	return nil
}

// stopSearch cancels a running search and waits for its best move.
func (p *Protocol) stopSearch() {
	if p.cancel != nil {
		p.cancel()
	}
	p.waitSearch()
}

func (p *Protocol) waitSearch() {
	if p.done != nil {
		<-p.done
		p.done, p.cancel = nil, nil
	}
}

func (p *Protocol) send(format string, args ...any) {
	p.outMu.Lock()
	defer p.outMu.Unlock()
	fmt.Fprintf(p.out, format+"\n", args...)
}

func searchInfoToUci(si engine.SearchInfo) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "info depth %d seldepth %d score %s nodes %d nps %d hashfull %d time %d",
		si.Depth, si.SelDepth, si.Score, si.Nodes, si.NPS(), si.Hashfull, si.Time.Milliseconds())
	if len(si.MainLine) > 0 {
		sb.WriteString(" pv ")
		sb.WriteString(strings.Join(lo.Map(si.MainLine, func(m board.Move, _ int) string { return m.String() }), " "))
	}
	return sb.String()
}

func parseLimits(args []string) (engine.Limits, error) {
	var limits engine.Limits
	var errs []error
	value := func(i int) (int, bool) {
		if i+1 >= len(args) {
			errs = append(errs, fmt.Errorf("%w: go %s needs a value", errMalformed, args[i]))
			return 0, false
		}
		v, err := strconv.Atoi(args[i+1])
		if err != nil {
			errs = append(errs, fmt.Errorf("%w: go %s %s", errMalformed, args[i], args[i+1]))
			return 0, false
		}
		return v, true
	}
	ms := func(v int) time.Duration { return time.Duration(v) * time.Millisecond }

	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "infinite":
			limits.Infinite = true
		case "ponder":
		case "wtime", "btime", "winc", "binc", "movestogo", "depth", "nodes", "movetime":
			v, ok := value(i)
			i++
			if !ok {
				continue
			}
			switch args[i-1] {
			case "wtime":
				limits.WhiteTime = ms(v)
				limits.ClockGiven = true
			case "btime":
				limits.BlackTime = ms(v)
				limits.ClockGiven = true
			case "winc":
				limits.WhiteIncrement = ms(v)
			case "binc":
				limits.BlackIncrement = ms(v)
			case "movestogo":
				limits.MovesToGo = v
			case "depth":
				limits.Depth = v
			case "nodes":
				limits.Nodes = uint64(max(v, 0))
			case "movetime":
				limits.MoveTime = ms(v)
				limits.MoveTimeGiven = true
			}
		default:
			errs = append(errs, fmt.Errorf("%w: go %s", errMalformed, args[i]))
		}
	}
	return limits, errors.Join(errs...)
}
