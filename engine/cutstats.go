package engine

import (
	"fmt"

	"github.com/rs/zerolog"
)

// CutStatistics collects counts for each pruning/cutoff mechanism of one search.
type CutStatistics struct {
	TTCutoffs         uint64
	NullMoveCutoffs   uint64
	NullMoveFailed    uint64
	StaticNullCutoffs uint64
	FutilityPrunes    uint64
	LateMovePrunes    uint64
	Reductions        uint64
	ReSearches        uint64
	BetaCutoffs       uint64
	QStandPatCutoffs  uint64
	QBetaCutoffs      uint64
	QSeePrunes        uint64
	QDeltaPrunes      uint64
	HashResyncs       uint64
}

// Lines renders the statistics as human readable lines, one per counter.
func (s CutStatistics) Lines() []string {
	return []string{
		"Cut statistics:",
		fmt.Sprintf("  TT cutoffs: %d", s.TTCutoffs),
		fmt.Sprintf("  Null-move cutoffs: %d (failed %d)", s.NullMoveCutoffs, s.NullMoveFailed),
		fmt.Sprintf("  Static null cutoffs: %d", s.StaticNullCutoffs),
		fmt.Sprintf("  Futility prunes: %d", s.FutilityPrunes),
		fmt.Sprintf("  Late move prunes: %d", s.LateMovePrunes),
		fmt.Sprintf("  Reductions: %d (re-searched %d)", s.Reductions, s.ReSearches),
		fmt.Sprintf("  Beta cutoffs: %d", s.BetaCutoffs),
		fmt.Sprintf("  QStandPat cutoffs: %d", s.QStandPatCutoffs),
		fmt.Sprintf("  QBeta cutoffs: %d", s.QBetaCutoffs),
		fmt.Sprintf("  QSEE prunes: %d", s.QSeePrunes),
		fmt.Sprintf("  QDelta prunes: %d", s.QDeltaPrunes),
		fmt.Sprintf("  Hash resyncs: %d", s.HashResyncs),
	}
}

// MarshalZerologObject lets the statistics be attached to a log event. It
// logs the same counters Lines prints.
func (s CutStatistics) MarshalZerologObject(ev *zerolog.Event) {
	ev.Uint64("tt", s.TTCutoffs).
		Uint64("null", s.NullMoveCutoffs).
		Uint64("null_failed", s.NullMoveFailed).
		Uint64("rfp", s.StaticNullCutoffs).
		Uint64("futility", s.FutilityPrunes).
		Uint64("lmp", s.LateMovePrunes).
		Uint64("lmr", s.Reductions).
		Uint64("lmr_research", s.ReSearches).
		Uint64("beta", s.BetaCutoffs).
		Uint64("q_standpat", s.QStandPatCutoffs).
		Uint64("q_beta", s.QBetaCutoffs).
		Uint64("q_see", s.QSeePrunes).
		Uint64("q_delta", s.QDeltaPrunes).
		Uint64("hash_resync", s.HashResyncs)
}
