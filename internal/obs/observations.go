package obs

import (
	"errors"
	"fmt"

	"github.com/san-kum/odefit/internal/dynamo"
)

var (
	// ErrEmptyRestriction indicates a horizon that precedes the first
	// observation, leaving nothing to fit against.
	ErrEmptyRestriction = errors.New("obs: horizon precedes first observation")

	// ErrNotIncreasing indicates observation times out of order.
	ErrNotIncreasing = errors.New("obs: times must be strictly increasing")

	// ErrDimMismatch indicates observations of inconsistent state dimension.
	ErrDimMismatch = errors.New("obs: inconsistent state dimension")

	// ErrNoData indicates an empty observation set.
	ErrNoData = errors.New("obs: no observations")
)

// Set is an immutable sequence of (time, state) observations with strictly
// increasing times and a fixed state dimension. Restriction shares backing
// arrays with the parent set; neither is ever mutated after construction.
type Set struct {
	times  []float64
	states []dynamo.State
}

func New(times []float64, states []dynamo.State) (*Set, error) {
	if len(times) == 0 {
		return nil, ErrNoData
	}
	if len(times) != len(states) {
		return nil, fmt.Errorf("obs: %d times for %d states: %w", len(times), len(states), ErrDimMismatch)
	}

	dim := len(states[0])
	for i, s := range states {
		if len(s) != dim {
			return nil, fmt.Errorf("obs: state %d has dim %d, want %d: %w", i, len(s), dim, ErrDimMismatch)
		}
	}
	for i := 1; i < len(times); i++ {
		if times[i] <= times[i-1] {
			return nil, fmt.Errorf("obs: times[%d]=%.6f <= times[%d]=%.6f: %w", i, times[i], i-1, times[i-1], ErrNotIncreasing)
		}
	}

	return &Set{times: times, states: states}, nil
}

// Restrict returns the observations with time <= horizon, order preserved.
// Returns ErrEmptyRestriction when the horizon precedes the first time.
func (s *Set) Restrict(horizon float64) (*Set, error) {
	if horizon < s.times[0] {
		return nil, fmt.Errorf("obs: horizon %.6f before first observation at %.6f: %w", horizon, s.times[0], ErrEmptyRestriction)
	}

	n := len(s.times)
	for n > 0 && s.times[n-1] > horizon {
		n--
	}
	return &Set{times: s.times[:n], states: s.states[:n]}, nil
}

// Full returns the whole observation set.
func (s *Set) Full() *Set { return s }

func (s *Set) Len() int { return len(s.times) }

func (s *Set) Dim() int { return len(s.states[0]) }

func (s *Set) MaxTime() float64 { return s.times[len(s.times)-1] }

func (s *Set) MinTime() float64 { return s.times[0] }

// At returns the i-th observation. The returned state must not be modified.
func (s *Set) At(i int) (float64, dynamo.State) {
	return s.times[i], s.states[i]
}

// Times returns the sample times. The returned slice must not be modified.
func (s *Set) Times() []float64 { return s.times }

// Component extracts one state dimension across all observations.
func (s *Set) Component(dim int) []float64 {
	out := make([]float64, len(s.states))
	for i, st := range s.states {
		out[i] = st[dim]
	}
	return out
}
