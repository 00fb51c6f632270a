package engine

import (
	"context"
	"math"
	"time"

	"github.com/pssnyder/slowmate-chess-engine-sub001/board"
)

// =============================================================================
// MARGINS
// =============================================================================
var futilityMargins = [7]int32{0, 100, 180, 260, 340, 420, 500}
var rfpMargins = [7]int32{0, 90, 180, 270, 360, 450, 540}
var lateMovePruningLimits = [9]int{0, 4, 6, 9, 14, 20, 27, 35, 44}

const (
	aspirationWindow int32  = 35
	aspirationDepth         = 5
	nullMoveMinDepth        = 2
	nullVerifyDepth         = 8
	lmrMinDepth             = 3
	deltaMargin      int32  = 200
	checkInterval           = 1023
	hashCheckMask    uint64 = 4095
)

var lmrTable [64][64]int

func init() {
	for d := 1; d < 64; d++ {
		for m := 1; m < 64; m++ {
			lmrTable[d][m] = int(0.75 + math.Log(float64(d))*math.Log(float64(m))/2.25)
		}
	}
}

// Search runs iterative deepening on a copy of p.Position until a limit is
// hit or ctx is cancelled, and returns the deepest completed iteration.
func (e *Engine) Search(ctx context.Context, p SearchParams) SearchInfo {
	start := time.Now()
	e.Prepare()
	e.ctx = ctx
	e.pos = p.Position.Clone()
	e.nodes = 0
	e.selDepth = 0
	e.stopped = false
	e.stats = CutStatistics{}
	e.nodeLimit = p.Limits.Nodes
	e.killers.Clear()
	e.history.Decay()
	e.tt.NewSearch()
	e.timer.Start(start, p.Limits, e.pos.SideToMove(), e.pos.Phase())

	rootMoves := e.pos.LegalMoves()
	if len(rootMoves) == 0 {
		score := DrawScore
		if e.pos.InCheck() {
			score = MatedIn(0)
		}
		return SearchInfo{RawScore: score, Score: NewUciScore(score)}
	}

	result := SearchInfo{MainLine: []board.Move{e.fallbackMove(rootMoves)}}
	maxDepth := MaxPly - 1
	if p.Limits.Depth > 0 {
		maxDepth = Min(p.Limits.Depth, maxDepth)
	}

	var lastIter, prevIter time.Duration
	prevScore := int32(0)
	for depth := 1; depth <= maxDepth; depth++ {
		if depth > 1 && !e.timer.ShouldStartIteration(lastIter, prevIter) {
			break
		}
		e.rootDepth = depth
		iterStart := time.Now()
		score, completed := e.aspiration(depth, prevScore)
		if !completed {
			if line := e.pv.line(); len(line) > 0 && line[0] != result.BestMove() && e.rootImproved {
				e.log.Debug().Int("depth", depth).Str("move", line[0].String()).Msg("partial-iteration-move")
				result.MainLine = line
			}
			break
		}
		prevIter, lastIter = lastIter, time.Since(iterStart)
		prevScore = score

		result = SearchInfo{
			Depth:    depth,
			SelDepth: e.selDepth,
			Score:    NewUciScore(score),
			RawScore: score,
			Nodes:    e.nodes,
			Time:     time.Since(start),
			Hashfull: e.tt.Hashfull(),
			MainLine: e.pv.line(),
		}
		if len(result.MainLine) == 0 {
			result.MainLine = []board.Move{e.fallbackMove(rootMoves)}
		}
		e.timer.OnIteration(result.BestMove())
		if p.Progress != nil {
			p.Progress(result)
		}

		if e.timer.Timed() {
			if len(rootMoves) == 1 {
				break
			}
			if score >= MateThreshold && depth >= int(MateValue-score)+2 {
				break
			}
		}
	}

	result.Nodes = e.nodes
	result.Time = time.Since(start)
	e.log.Debug().
		Int("depth", result.Depth).
		Uint64("nodes", result.Nodes).
		Dur("elapsed", result.Time).
		Str("best", result.BestMove().String()).
		Str("score", result.Score.String()).
		Bool("stopped", e.stopped).
		Msg("search-finished")
	if e.Options.CutStatistics {
		e.log.Info().Object("cuts", e.stats).Msg("cut-statistics")
	}
	return result
}

// fallbackMove picks a move to play before any iteration completes.
func (e *Engine) fallbackMove(rootMoves []board.Move) board.Move {
	if e.Options.UseTT {
		if entry, ok := e.tt.Probe(e.pos.Hash()); ok {
			for _, m := range rootMoves {
				if m == entry.Move {
					return m
				}
			}
		}
	}
	return rootMoves[0]
}

// aspiration searches the root with a narrow window around the previous
// score, widening it on every failure.
func (e *Engine) aspiration(depth int, prev int32) (int32, bool) {
	alpha, beta := -Infinity, Infinity
	window := aspirationWindow
	if e.Options.Aspiration && depth >= aspirationDepth && !IsMateScore(prev) {
		alpha, beta = prev-window, prev+window
	}
	for {
		e.rootImproved = false
		score := e.alphaBeta(alpha, beta, depth, 0, false)
		if e.stopped {
			return score, false
		}
		switch {
		case score <= alpha && alpha > -Infinity:
			beta = (alpha + beta) / 2
			alpha = Max(score-window, -Infinity)
		case score >= beta && beta < Infinity:
			beta = Min(score+window, Infinity)
		default:
			return score, true
		}
		window *= 2
		if window > 1000 {
			alpha, beta = -Infinity, Infinity
		}
	}
}

// checkStop polls cancellation, the clock and the node limit every few
// nodes. The first iteration always runs to completion.
func (e *Engine) checkStop() bool {
	if e.stopped {
		return true
	}
	if e.nodes&checkInterval != 0 || e.rootDepth <= 1 {
		return false
	}
	select {
	case <-e.ctx.Done():
		e.stopped = true
	default:
	}
	if e.timer.HardExceeded() || (e.nodeLimit > 0 && e.nodes >= e.nodeLimit) {
		e.stopped = true
	}
	return e.stopped
}

// verifyHash compares the incremental key with a fresh computation and
// resynchronises on mismatch.
func (e *Engine) verifyHash() {
	if !e.Options.VerifyHash || e.nodes&e.hashCheckMask != 0 {
		return
	}
	if e.pos.ResyncHash() {
		e.stats.HashResyncs++
		e.log.Error().Str("fen", e.pos.FEN()).Msg("hash-resync")
	}
}

func (e *Engine) alphaBeta(alpha, beta int32, depth, ply int, didNull bool) int32 {
	e.pv.clear(ply)
	pos := e.pos
	rootNode := ply == 0
	pvNode := beta-alpha > 1

	inCheck := pos.InCheck()
	// Check extension
	if inCheck {
		depth++
	}
	if depth <= 0 {
		return e.quiescence(alpha, beta, ply, 0)
	}

	e.nodes++
	if e.checkStop() {
		return 0
	}
	e.verifyHash()
	e.selDepth = Max(e.selDepth, ply)

	if !rootNode {
		if pos.IsDraw() {
			return DrawScore
		}
		if ply >= MaxPly-1 {
			return Evaluate(&pos.Board)
		}
		// Mate distance pruning
		alpha = Max(alpha, MatedIn(ply))
		beta = Min(beta, MateIn(ply+1))
		if alpha >= beta {
			return alpha
		}
	}

	key := pos.Hash()
	var ttMove board.Move
	if e.Options.UseTT {
		ttScore, move, usable, hit := e.tt.Lookup(key, depth, ply, alpha, beta)
		if hit {
			ttMove = move
		}
		if usable && !pvNode && !rootNode {
			e.stats.TTCutoffs++
			return ttScore
		}
	}

	staticEval := -Infinity
	if !inCheck {
		staticEval = Evaluate(&pos.Board)
	}
	e.stack[ply].staticEval = staticEval
	improving := !inCheck && ply >= 2 && staticEval > e.stack[ply-2].staticEval
	side := pos.SideToMove()

	if !inCheck && !pvNode && !rootNode {
		/*
			REVERSE FUTILITY
			If the static eval beats beta even after giving the opponent a
			margin, assume the node fails high.
		*/
		if e.Options.Futility && depth < len(rfpMargins) && !IsMateScore(beta) {
			margin := rfpMargins[depth]
			if !improving {
				margin -= margin / 4
			}
			if staticEval-margin >= beta {
				e.stats.StaticNullCutoffs++
				return staticEval - margin
			}
		}

		/*
			NULL MOVE PRUNING
			Skipped when the side to move has only king and pawns, where
			zugzwang makes passing better than any real move.
		*/
		if e.Options.NullMove && !didNull && depth >= nullMoveMinDepth && staticEval >= beta &&
			!IsMateScore(beta) && pos.HasNonPawnMaterial(side) {
			R := 3 + depth/4
			pos.PushNull()
			score := -e.alphaBeta(-beta, -beta+1, depth-1-R, ply+1, true)
			pos.Pop()
			if e.stopped {
				return 0
			}
			if score >= beta {
				if IsMateScore(score) {
					score = beta
				}
				if !e.Options.NullMoveVerification || depth < nullVerifyDepth {
					e.stats.NullMoveCutoffs++
					return score
				}
				// Verification search without null moves at reduced depth.
				v := e.alphaBeta(beta-1, beta, depth-1-R, ply, true)
				if e.stopped {
					return 0
				}
				if v >= beta {
					e.stats.NullMoveCutoffs++
					return score
				}
			}
			e.stats.NullMoveFailed++
		}
	}

	moves := pos.GenerateMoves(e.moveBuf[ply][:0])
	list := e.scoreMoves(moves, e.scoredBuf[ply][:0], ply, ttMove, pos.LastMove())
	counter := e.history.Counter(side, pos.LastMove())
	quiets := e.quietBuf[ply][:0]

	canPrune := e.Options.Futility && !pvNode && !inCheck && !rootNode && !IsMateScore(alpha)
	futile := canPrune && depth < len(futilityMargins) && staticEval+futilityMargins[depth] <= alpha
	lmpLimit := math.MaxInt32
	if canPrune && depth < len(lateMovePruningLimits) {
		lmpLimit = lateMovePruningLimits[depth]
		if !improving {
			lmpLimit = lmpLimit * 2 / 3
		}
	}

	bestScore := -Infinity
	bestMove := board.NoMove
	legal := 0
	for i := range list {
		m := pickNext(list, i)
		quiet := m.IsQuiet()
		givesCheck := quiet && pos.GivesCheck(m)

		if legal > 0 && quiet && !givesCheck && bestScore > -MateThreshold {
			if legal >= lmpLimit {
				e.stats.LateMovePrunes++
				continue
			}
			if futile {
				e.stats.FutilityPrunes++
				continue
			}
		}

		if !pos.Push(m) {
			continue
		}
		legal++
		newDepth := depth - 1

		var score int32
		if legal == 1 {
			score = -e.alphaBeta(-beta, -alpha, newDepth, ply+1, false)
		} else {
			/*
				LATE MOVE REDUCTIONS
				Quiet moves late in the list are searched shallower with a
				null window and re-searched at full depth if they beat alpha.
			*/
			reduction := 0
			if quiet && !givesCheck && !inCheck {
				reduction = e.lateMoveReduction(m, depth, legal, ply, pvNode, improving, counter)
				if reduction > 0 {
					e.stats.Reductions++
				}
			}
			score = -e.alphaBeta(-alpha-1, -alpha, newDepth-reduction, ply+1, false)
			if score > alpha && reduction > 0 {
				e.stats.ReSearches++
				score = -e.alphaBeta(-alpha-1, -alpha, newDepth, ply+1, false)
			}
			if score > alpha && score < beta {
				score = -e.alphaBeta(-beta, -alpha, newDepth, ply+1, false)
			}
		}
		pos.Pop()
		if e.stopped {
			return 0
		}

		if score > bestScore {
			bestScore = score
			if score > alpha {
				bestMove = m
				e.pv.update(ply, m)
				if rootNode && score < beta {
					e.rootImproved = true
				}
				if score >= beta {
					e.stats.BetaCutoffs++
					if quiet {
						e.killers.Insert(m, ply)
						e.history.SetCounter(side, pos.LastMove(), m)
						e.history.Update(side, m, quiets, depth)
					}
					break
				}
				alpha = score
			}
		}
		if quiet && len(quiets) < cap(quiets) {
			quiets = append(quiets, m)
		}
	}

	if legal == 0 {
		if inCheck {
			return MatedIn(ply)
		}
		return DrawScore
	}

	if e.Options.UseTT {
		bound := BoundUpper
		switch {
		case bestScore >= beta:
			bound = BoundLower
		case bestMove != board.NoMove:
			bound = BoundExact
		}
		e.tt.Store(key, depth, ply, bestScore, bound, bestMove)
	}
	return bestScore
}

// lateMoveReduction returns how many plies to take off the legal-th quiet,
// non-checking move at a node. Killers are never reduced.
func (e *Engine) lateMoveReduction(m board.Move, depth, legal, ply int, pvNode, improving bool, counter board.Move) int {
	if !e.Options.LateMoveReductions || depth < lmrMinDepth || e.killers.Slot(m, ply) > 0 {
		return 0
	}
	r := lmrTable[Min(depth, 63)][Min(legal, 63)]
	if pvNode {
		r--
	}
	if !improving {
		r++
	}
	if m == counter {
		r--
	}
	r -= int(e.history.Score(e.pos.SideToMove(), m) / 5000)
	return Clamp(r, 0, Max(depth-2, 0))
}

func (e *Engine) quiescence(alpha, beta int32, ply, qply int) int32 {
	e.pv.clear(ply)
	e.nodes++
	if e.checkStop() {
		return 0
	}
	e.selDepth = Max(e.selDepth, ply)
	pos := e.pos
	if pos.InsufficientMaterial() {
		return DrawScore
	}
	if ply >= MaxPly-1 {
		return Evaluate(&pos.Board)
	}

	inCheck := pos.InCheck()
	var standPat int32
	bestScore := -Infinity
	var moves []board.Move
	if inCheck {
		moves = pos.GenerateMoves(e.moveBuf[ply][:0])
	} else {
		standPat = Evaluate(&pos.Board)
		if standPat >= beta {
			e.stats.QStandPatCutoffs++
			return standPat
		}
		if standPat > alpha {
			alpha = standPat
		}
		bestScore = standPat
		if e.Options.QuiescenceChecks && qply == 0 {
			moves = pos.GenerateMoves(e.moveBuf[ply][:0])
		} else {
			moves = pos.GenerateNoisy(e.moveBuf[ply][:0])
		}
	}

	var ttMove board.Move
	if e.Options.UseTT {
		if entry, ok := e.tt.Probe(pos.Hash()); ok {
			ttMove = entry.Move
		}
	}
	list := scoreNoisy(moves, e.scoredBuf[ply][:0], ttMove)

	legal := 0
	for i := range list {
		m := pickNext(list, i)
		if !inCheck {
			if m.IsQuiet() {
				// Only quiet checks are tried at the first quiescence ply.
				if !pos.GivesCheck(m) || !SeeGE(&pos.Board, m, 0) {
					continue
				}
			} else {
				if !SeeGE(&pos.Board, m, 0) {
					e.stats.QSeePrunes++
					continue
				}
				/*
					DELTA PRUNING
					Skip captures that cannot lift the score to alpha even
					with a safety margin.
				*/
				if e.Options.DeltaPruning && !m.IsPromotion() &&
					standPat+pieceValueEG[m.CapturedPiece().Type()]+deltaMargin <= alpha {
					e.stats.QDeltaPrunes++
					continue
				}
			}
		}

		if !pos.Push(m) {
			continue
		}
		legal++
		score := -e.quiescence(-beta, -alpha, ply+1, qply+1)
		pos.Pop()
		if e.stopped {
			return 0
		}

		if score > bestScore {
			bestScore = score
			if score > alpha {
				e.pv.update(ply, m)
				if score >= beta {
					e.stats.QBetaCutoffs++
					break
				}
				alpha = score
			}
		}
	}

	if inCheck && legal == 0 {
		return MatedIn(ply)
	}
	return bestScore
}
