package core

import "time"

// Snapshot is a point-in-time copy of an automaton's counters.
type Snapshot struct {
	// Iterations counts completed generations since Prepare.
	Iterations uint64
	// Alive is the most recent live-cell count. It is only current when
	// AliveValid is set; otherwise it is left over from an earlier count.
	Alive      int64
	AliveValid bool
	// LastEvolve is the duration of the most recent generation and
	// TotalEvolve the sum over all of them.
	LastEvolve  time.Duration
	TotalEvolve time.Duration
	// BytesPerGen estimates the memory traffic of one generation: the
	// current buffer read once plus the next buffer written once.
	BytesPerGen uint64
}

// Stats owns the counters a backend instance maintains. Each automaton
// carries its own Stats; nothing here is shared between instances.
type Stats struct {
	iterations  uint64
	alive       int64
	aliveValid  bool
	lastEvolve  time.Duration
	totalEvolve time.Duration
	bytesPerGen uint64

	keepTimings bool
	timings     []float64
}

// NewStats returns counters for a backend whose buffers move bytesPerGen
// bytes per generation. When keepTimings is set every generation's duration
// is retained for reporting.
func NewStats(bytesPerGen uint64, keepTimings bool) *Stats {
	return &Stats{bytesPerGen: bytesPerGen, keepTimings: keepTimings}
}

// Iterations returns the number of completed generations.
func (s *Stats) Iterations() uint64 { return s.iterations }

// SetAlive primes the live-cell count outside Evolve, typically with the
// count produced by the initial fill.
func (s *Stats) SetAlive(n int64) {
	s.alive = n
	s.aliveValid = true
}

// RecordEvolve folds one completed generation into the counters. counted
// reports whether alive holds a fresh live-cell count.
func (s *Stats) RecordEvolve(d time.Duration, alive int64, counted bool) {
	s.iterations++
	s.lastEvolve = d
	s.totalEvolve += d
	s.aliveValid = counted
	if counted {
		s.alive = alive
	}
	if s.keepTimings {
		s.timings = append(s.timings, d.Seconds())
	}
}

// Snapshot returns a copy of the counters.
func (s *Stats) Snapshot() Snapshot {
	return Snapshot{
		Iterations:  s.iterations,
		Alive:       s.alive,
		AliveValid:  s.aliveValid,
		LastEvolve:  s.lastEvolve,
		TotalEvolve: s.totalEvolve,
		BytesPerGen: s.bytesPerGen,
	}
}

// Timings returns the retained per-generation durations in seconds. It is
// nil unless timing retention was enabled.
func (s *Stats) Timings() []float64 { return s.timings }
