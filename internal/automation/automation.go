package automation

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/odefit/internal/config"
	"github.com/san-kum/odefit/internal/dynamo"
	"github.com/san-kum/odefit/internal/fit"
	"github.com/san-kum/odefit/internal/integrators"
	"github.com/san-kum/odefit/internal/models"
	"github.com/san-kum/odefit/internal/obs"
	"github.com/san-kum/odefit/internal/sim"
)

// Scenario defines a scripted batch of estimation runs.
type Scenario struct {
	Name        string          `yaml:"name"`
	Description string          `yaml:"description"`
	Steps       []config.Config `yaml:"steps"`
}

// StepResult pairs one scenario step with its estimation outcome.
type StepResult struct {
	Model  string
	Result fit.FitResult
}

// LoadScenario loads a scenario from a YAML file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, err
	}

	return &scenario, nil
}

// RunScenario executes all steps in order, synthesizing each step's
// observations from its configured ground truth. The first failing step
// aborts the batch, returning the results gathered so far.
func RunScenario(ctx context.Context, scenario *Scenario, log *zap.Logger) ([]StepResult, error) {
	results := make([]StepResult, 0, len(scenario.Steps))

	for i := range scenario.Steps {
		step := &scenario.Steps[i]
		if err := step.Validate(); err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}

		log.Info("scenario step starting",
			zap.String("scenario", scenario.Name),
			zap.Int("step", i+1),
			zap.String("model", step.Model))

		m, err := models.New(step.Model)
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}

		integ, err := integrators.New(step.Integrator)
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}
		opts := sim.DefaultOptions()
		opts.Integrator = integ
		opts.Dt = step.Dt

		data, err := obs.Synthesize(ctx, m, step.TrueParams, step.InitState,
			obs.SynthConfig{Points: step.Points, Span: step.Span, Noise: step.Noise, Seed: step.Seed}, opts)
		if err != nil {
			return results, fmt.Errorf("step %d synthesis: %w", i+1, err)
		}

		driver, err := fit.NewDriver(m, data, step.InitState, step.FitConfig(), opts)
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}
		driver.SetLogger(log)

		result, err := driver.Estimate(ctx, step.InitialGuess, step.Schedule)
		if err != nil {
			return results, fmt.Errorf("step %d estimation: %w", i+1, err)
		}

		results = append(results, StepResult{Model: step.Model, Result: result})
	}

	return results, nil
}

// GuessSweep probes the loss landscape: it repeats one estimation while
// sweeping a single component of the initial guess across a range,
// recording where each start converges.
type GuessSweep struct {
	Base       config.Config
	ParamIndex int
	Min, Max   float64
	NumSteps   int
}

// SweepResult holds the outcome of one swept start.
type SweepResult struct {
	GuessValue float64
	Params     dynamo.Params
	Loss       float64
}

// RunSweep executes the sweep sequentially. Failed starts are logged and
// skipped; the sweep itself only errors on configuration problems or
// cancellation.
func RunSweep(ctx context.Context, sweep *GuessSweep, log *zap.Logger) ([]SweepResult, error) {
	if sweep.NumSteps < 2 {
		return nil, fmt.Errorf("automation: sweep needs at least 2 steps, got %d", sweep.NumSteps)
	}
	if err := sweep.Base.Validate(); err != nil {
		return nil, err
	}
	if sweep.ParamIndex < 0 || sweep.ParamIndex >= len(sweep.Base.InitialGuess) {
		return nil, fmt.Errorf("automation: param index %d out of range", sweep.ParamIndex)
	}

	m, err := models.New(sweep.Base.Model)
	if err != nil {
		return nil, err
	}
	integ, err := integrators.New(sweep.Base.Integrator)
	if err != nil {
		return nil, err
	}
	opts := sim.DefaultOptions()
	opts.Integrator = integ
	opts.Dt = sweep.Base.Dt

	data, err := obs.Synthesize(ctx, m, sweep.Base.TrueParams, sweep.Base.InitState,
		obs.SynthConfig{Points: sweep.Base.Points, Span: sweep.Base.Span, Noise: sweep.Base.Noise, Seed: sweep.Base.Seed}, opts)
	if err != nil {
		return nil, err
	}

	results := make([]SweepResult, 0, sweep.NumSteps)
	stride := (sweep.Max - sweep.Min) / float64(sweep.NumSteps-1)

	for i := 0; i < sweep.NumSteps; i++ {
		value := sweep.Min + float64(i)*stride

		guess := make(dynamo.Params, len(sweep.Base.InitialGuess))
		copy(guess, sweep.Base.InitialGuess)
		guess[sweep.ParamIndex] = value

		result, err := fit.Estimate(ctx, m, data, sweep.Base.InitState, guess, sweep.Base.Schedule, sweep.Base.FitConfig(), opts)
		if err != nil {
			if ctx.Err() != nil {
				return results, ctx.Err()
			}
			log.Warn("sweep start failed",
				zap.Float64("guess", value),
				zap.Error(err))
			continue
		}

		results = append(results, SweepResult{
			GuessValue: value,
			Params:     result.Params,
			Loss:       result.Loss,
		})
	}

	return results, nil
}
