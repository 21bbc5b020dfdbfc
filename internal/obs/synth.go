package obs

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/san-kum/odefit/internal/dynamo"
	"github.com/san-kum/odefit/internal/sim"
)

// SynthConfig describes a synthetic observation run: simulate a model at
// known true parameters and corrupt the samples with Gaussian noise.
type SynthConfig struct {
	Points int     // number of samples, >= 2
	Span   float64 // observation window [0, Span]
	Noise  float64 // noise standard deviation, 0 for clean data
	Seed   int64
}

// Synthesize generates a noisy observation set from a ground-truth
// simulation. The same seed always yields the same set.
func Synthesize(ctx context.Context, m dynamo.Model, truth dynamo.Params, x0 dynamo.State, cfg SynthConfig, opts sim.Options) (*Set, error) {
	if cfg.Points < 2 {
		return nil, fmt.Errorf("obs: need at least 2 points, got %d", cfg.Points)
	}
	if cfg.Span <= 0 {
		return nil, fmt.Errorf("obs: span must be positive, got %f", cfg.Span)
	}

	times := make([]float64, cfg.Points)
	for i := range times {
		times[i] = cfg.Span * float64(i) / float64(cfg.Points-1)
	}

	traj, err := sim.Simulate(ctx, m, truth, x0, times, opts)
	if err != nil {
		return nil, fmt.Errorf("obs: ground-truth simulation: %w", err)
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	states := make([]dynamo.State, traj.Len())
	for i, s := range traj.States {
		noisy := s.Clone()
		if cfg.Noise > 0 {
			for j := range noisy {
				noisy[j] += rng.NormFloat64() * cfg.Noise
			}
		}
		states[i] = noisy
	}

	return New(times, states)
}
