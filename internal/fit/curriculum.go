package fit

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/san-kum/odefit/internal/dynamo"
	"github.com/san-kum/odefit/internal/obs"
	"github.com/san-kum/odefit/internal/sim"
)

// Phase is the curriculum driver's lifecycle state.
type Phase int

const (
	PhasePending Phase = iota
	PhaseRunning
	PhaseConverged
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhasePending:
		return "pending"
	case PhaseRunning:
		return "running"
	case PhaseConverged:
		return "converged"
	case PhaseFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Driver runs progressive-horizon fitting: each horizon in the schedule is
// fitted in turn, and each stage's best parameters warm-start the next.
// Only the parameter vector crosses stage boundaries; no optimizer state
// survives a horizon change. Fitting a short window first and growing it
// steers the descent around the local minima that a direct full-horizon fit
// of an oscillatory signal falls into.
type Driver struct {
	ev  *LossEvaluator
	cfg Config
	log *zap.Logger

	phase Phase
	stage int

	// OnStage, when set, is called after each completed stage with its
	// result. Used by live views; must not retain the Params slice.
	OnStage func(FitResult)
}

func NewDriver(m dynamo.Model, data *obs.Set, x0 dynamo.State, cfg Config, opts sim.Options) (*Driver, error) {
	ev, err := NewLossEvaluator(m, data, x0, opts)
	if err != nil {
		return nil, err
	}
	return &Driver{
		ev:    ev,
		cfg:   cfg.withDefaults(),
		log:   zap.NewNop(),
		phase: PhasePending,
	}, nil
}

// SetLogger directs stage progress logging; the default is a no-op logger.
func (d *Driver) SetLogger(log *zap.Logger) {
	if log != nil {
		d.log = log
	}
}

func (d *Driver) Phase() Phase { return d.phase }

// Stage returns the index of the stage currently or last run.
func (d *Driver) Stage() int { return d.stage }

// Evaluator exposes the driver's loss evaluator for diagnostics.
func (d *Driver) Evaluator() *LossEvaluator { return d.ev }

// Estimate fits the model parameters by folding over the horizon schedule,
// feeding each stage's result forward as the next warm start. The schedule
// is validated before any stage runs. On a stage failure the driver moves
// to PhaseFailed and the returned *StageFitError names the stage; it never
// continues silently with stale parameters. On context cancellation the
// last completed stage's result is returned alongside the context error.
func (d *Driver) Estimate(ctx context.Context, initial dynamo.Params, schedule []float64) (FitResult, error) {
	if err := d.validateSchedule(schedule); err != nil {
		d.phase = PhaseFailed
		return FitResult{}, err
	}

	d.phase = PhaseRunning
	params := initial.Clone()
	var last FitResult
	completed := false

	for i, horizon := range schedule {
		d.stage = i

		if err := ctx.Err(); err != nil {
			return d.interrupted(last, completed, err)
		}

		start := time.Now()
		d.log.Info("stage starting",
			zap.Int("stage", i),
			zap.Float64("horizon", horizon),
			zap.Int("schedule_len", len(schedule)))

		result, err := fitStage(ctx, d.ev, params, horizon, i, d.cfg, d.log)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return d.interrupted(last, completed, err)
			}
			d.phase = PhaseFailed
			d.log.Error("stage failed",
				zap.Int("stage", i),
				zap.Float64("horizon", horizon),
				zap.Error(err))
			return last, err
		}

		d.log.Info("stage complete",
			zap.Int("stage", i),
			zap.Float64("horizon", horizon),
			zap.Float64("loss", result.Loss),
			zap.Int("iterations", result.Iterations),
			zap.Duration("elapsed", time.Since(start)))

		params = result.Params
		last = result
		completed = true

		if d.OnStage != nil {
			d.OnStage(result)
		}
	}

	d.phase = PhaseConverged
	return last, nil
}

// interrupted reports a cancellation, keeping the last completed stage's
// result as a best-effort partial estimate.
func (d *Driver) interrupted(last FitResult, completed bool, err error) (FitResult, error) {
	d.phase = PhaseFailed
	if completed {
		return last, err
	}
	return FitResult{}, err
}

func (d *Driver) validateSchedule(schedule []float64) error {
	if len(schedule) == 0 {
		return &InvalidScheduleError{Schedule: schedule, Reason: "empty"}
	}
	for i := 1; i < len(schedule); i++ {
		if schedule[i] <= schedule[i-1] {
			return &InvalidScheduleError{Schedule: schedule, Reason: "horizons must be strictly increasing"}
		}
	}

	data := d.ev.Observations()
	if max := schedule[len(schedule)-1]; max > data.MaxTime() {
		return &InvalidScheduleError{Schedule: schedule, Reason: "final horizon exceeds observation span"}
	}
	// A horizon before the first observation is a configuration error;
	// surface it now rather than from inside the first stage.
	if _, err := data.Restrict(schedule[0]); err != nil {
		return err
	}
	return nil
}

// Estimate is the package-level convenience wrapper: build a driver and run
// the whole curriculum.
func Estimate(ctx context.Context, m dynamo.Model, data *obs.Set, x0 dynamo.State, initial dynamo.Params, schedule []float64, cfg Config, opts sim.Options) (FitResult, error) {
	d, err := NewDriver(m, data, x0, cfg, opts)
	if err != nil {
		return FitResult{}, err
	}
	return d.Estimate(ctx, initial, schedule)
}
