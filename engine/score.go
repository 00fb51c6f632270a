package engine

import "fmt"

// =============================================================================
// SCORE CONSTANTS
// =============================================================================
// One set of constants is shared by the search, the transposition table and
// the UCI score output.
const (
	MaxPly = 128

	Infinity      int32 = 32001
	MateValue     int32 = 32000
	MateThreshold int32 = MateValue - MaxPly
	DrawScore     int32 = 0
)

// MatedIn is the score of the side to move being mated at ply.
func MatedIn(ply int) int32 { return -MateValue + int32(ply) }

// MateIn is the score of delivering mate at ply.
func MateIn(ply int) int32 { return MateValue - int32(ply) }

// IsMateScore reports whether v encodes a forced mate for either side.
func IsMateScore(v int32) bool { return v >= MateThreshold || v <= -MateThreshold }

// scoreToTT converts a root-relative mate score into a node-relative one.
func scoreToTT(v int32, ply int) int32 {
	if v >= MateThreshold {
		return v + int32(ply)
	}
	if v <= -MateThreshold {
		return v - int32(ply)
	}
	return v
}

// scoreFromTT undoes scoreToTT for a node at ply.
func scoreFromTT(v int32, ply int) int32 {
	if v >= MateThreshold {
		return v - int32(ply)
	}
	if v <= -MateThreshold {
		return v + int32(ply)
	}
	return v
}

// UciScore is a score in the form the protocol reports it. Mate counts
// full moves: positive when the side to move mates, negative when it is mated.
type UciScore struct {
	Centipawns int
	Mate       int
	IsMate     bool
}

// NewUciScore converts an internal score.
func NewUciScore(v int32) UciScore {
	switch {
	case v >= MateThreshold:
		return UciScore{Mate: int(MateValue-v+1) / 2, IsMate: true}
	case v <= -MateThreshold:
		return UciScore{Mate: -int(MateValue+v) / 2, IsMate: true}
	default:
		return UciScore{Centipawns: int(v)}
	}
}

func (s UciScore) String() string {
	if s.IsMate {
		return fmt.Sprintf("mate %d", s.Mate)
	}
	return fmt.Sprintf("cp %d", s.Centipawns)
}
