// Package channels owns the 16-slot CRSF channel vector and the
// last-observed raw input cache used for change detection.
package channels

import (
	"math"

	"github.com/mkorolev/joy2crsf/internal/mapper"
)

// Count is the number of CRSF channels in a frame.
const Count = 16

// rawEpsilon is the change-detection threshold for analog axis values.
const rawEpsilon = 1e-4

// Vector is an immutable dispatch snapshot of all channel values.
// It is an array, so every handoff copies it by value.
type Vector [Count]int

// Neutral returns a vector with every channel centered.
func Neutral() Vector {
	var v Vector
	for i := range v {
		v[i] = mapper.ChannelNeutral
	}
	return v
}

// State holds the live channel vector. It is owned exclusively by the
// sampler goroutine; other goroutines only ever see Vector copies.
type State struct {
	values  Vector
	dirty   bool
	lastRaw map[string]float64
}

func NewState() *State {
	return &State{
		values:  Neutral(),
		lastRaw: make(map[string]float64),
	}
}

// Get returns the value of channel ch (1-based).
func (s *State) Get(ch int) int {
	return s.values[ch-1]
}

// Set updates channel ch (1-based), clamping the value and marking the
// state dirty only when the stored value actually changes.
func (s *State) Set(ch, value int) {
	value = mapper.Clamp(value)
	if s.values[ch-1] != value {
		s.values[ch-1] = value
		s.dirty = true
	}
}

// Snapshot returns an immutable copy of the current vector.
func (s *State) Snapshot() Vector {
	return s.values
}

// ConsumeDirty reports whether any channel changed since the last call
// and resets the flag.
func (s *State) ConsumeDirty() bool {
	d := s.dirty
	s.dirty = false
	return d
}

// RawChanged records a raw analog reading under key and reports whether
// it differs from the previous one by more than the epsilon threshold.
// The first observation of a key always counts as a change.
func (s *State) RawChanged(key string, value float64) bool {
	prev, seen := s.lastRaw[key]
	if seen && math.Abs(prev-value) <= rawEpsilon {
		return false
	}
	s.lastRaw[key] = value
	return true
}
