// Package config loads the engine configuration file.
package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/pssnyder/slowmate-chess-engine-sub001/engine"
)

// ErrInvalid is wrapped by every load and validation failure.
var ErrInvalid = errors.New("invalid configuration")

type Config struct {
	Engine EngineConfig `json:"engine"`
	Search SearchConfig `json:"search"`
	Time   TimeConfig   `json:"time"`
	Log    LogConfig    `json:"log"`
}

type EngineConfig struct {
	HashMB int `json:"hash_mb"`
}

type SearchConfig struct {
	NullMove             bool `json:"null_move"`
	NullMoveVerification bool `json:"null_move_verification"`
	LateMoveReductions   bool `json:"lmr"`
	Futility             bool `json:"futility"`
	DeltaPruning         bool `json:"delta_pruning"`
	QuiescenceChecks     bool `json:"quiescence_checks"`
	Aspiration           bool `json:"aspiration"`
	VerifyHash           bool `json:"verify_hash"`
	CutStatistics        bool `json:"cut_statistics"`
}

type TimeConfig struct {
	MoveOverheadMs       int     `json:"move_overhead_ms"`
	MinimumMs            int     `json:"minimum_ms"`
	HardFraction         float64 `json:"hard_fraction"`
	EmergencyThresholdMs int     `json:"emergency_threshold_ms"`
	EmergencyFraction    float64 `json:"emergency_fraction"`
}

type LogConfig struct {
	Level  string `json:"level"`
	Pretty bool   `json:"pretty"`
}

// Default mirrors engine.DefaultOptions.
func Default() Config {
	opts := engine.DefaultOptions()
	return Config{
		Engine: EngineConfig{HashMB: opts.HashMB},
		Search: SearchConfig{
			NullMove:             opts.NullMove,
			NullMoveVerification: opts.NullMoveVerification,
			LateMoveReductions:   opts.LateMoveReductions,
			Futility:             opts.Futility,
			DeltaPruning:         opts.DeltaPruning,
			QuiescenceChecks:     opts.QuiescenceChecks,
			Aspiration:           opts.Aspiration,
			VerifyHash:           opts.VerifyHash,
			CutStatistics:        opts.CutStatistics,
		},
		Time: TimeConfig{
			MoveOverheadMs:       int(opts.Time.MoveOverhead.Milliseconds()),
			MinimumMs:            int(opts.Time.Minimum.Milliseconds()),
			HardFraction:         opts.Time.HardFraction,
			EmergencyThresholdMs: int(opts.Time.EmergencyThreshold.Milliseconds()),
			EmergencyFraction:    opts.Time.EmergencyFraction,
		},
		Log: LogConfig{Level: "info"},
	}
}

// Load reads a JSON document on top of Default. Unknown keys are rejected.
// An empty path returns the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return Parse(data)
}

// Parse decodes data on top of Default and validates the result.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks every value against its allowed range.
func (c Config) Validate() error {
	switch {
	case c.Engine.HashMB < 1 || c.Engine.HashMB > 4096:
		return fmt.Errorf("%w: engine.hash_mb %d out of range 1..4096", ErrInvalid, c.Engine.HashMB)
	case c.Time.MoveOverheadMs < 0 || c.Time.MoveOverheadMs > 5000:
		return fmt.Errorf("%w: time.move_overhead_ms %d out of range 0..5000", ErrInvalid, c.Time.MoveOverheadMs)
	case c.Time.MinimumMs < 1:
		return fmt.Errorf("%w: time.minimum_ms must be positive", ErrInvalid)
	case c.Time.HardFraction <= 0 || c.Time.HardFraction > 0.40:
		return fmt.Errorf("%w: time.hard_fraction %.2f out of range (0, 0.40]", ErrInvalid, c.Time.HardFraction)
	case c.Time.EmergencyThresholdMs < 0:
		return fmt.Errorf("%w: time.emergency_threshold_ms must not be negative", ErrInvalid)
	case c.Time.EmergencyFraction <= 0 || c.Time.EmergencyFraction > c.Time.HardFraction:
		return fmt.Errorf("%w: time.emergency_fraction must be in (0, hard_fraction]", ErrInvalid)
	}
	if _, err := zerolog.ParseLevel(c.Log.Level); err != nil || c.Log.Level == "" {
		return fmt.Errorf("%w: log.level %q", ErrInvalid, c.Log.Level)
	}
	return nil
}

// EngineOptions converts the configuration into search options.
func (c Config) EngineOptions() engine.Options {
	ms := func(v int) time.Duration { return time.Duration(v) * time.Millisecond }
	return engine.Options{
		HashMB:               c.Engine.HashMB,
		UseTT:                true,
		Aspiration:           c.Search.Aspiration,
		NullMove:             c.Search.NullMove,
		NullMoveVerification: c.Search.NullMoveVerification,
		LateMoveReductions:   c.Search.LateMoveReductions,
		Futility:             c.Search.Futility,
		DeltaPruning:         c.Search.DeltaPruning,
		QuiescenceChecks:     c.Search.QuiescenceChecks,
		VerifyHash:           c.Search.VerifyHash,
		CutStatistics:        c.Search.CutStatistics,
		Time: engine.TimeOptions{
			MoveOverhead:       ms(c.Time.MoveOverheadMs),
			Minimum:            ms(c.Time.MinimumMs),
			HardFraction:       c.Time.HardFraction,
			EmergencyThreshold: ms(c.Time.EmergencyThresholdMs),
			EmergencyFraction:  c.Time.EmergencyFraction,
		},
	}
}

// LogLevel returns the parsed level. Validate guarantees it parses.
func (c Config) LogLevel() zerolog.Level {
	lvl, err := zerolog.ParseLevel(c.Log.Level)
	if err != nil {
		return zerolog.InfoLevel
	}
	return lvl
}
