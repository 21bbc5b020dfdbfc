package fit

import (
	"context"
	"errors"
	"math"

	"go.uber.org/zap"

	"github.com/san-kum/odefit/internal/dynamo"
)

// FitResult is the outcome of one fitting stage: the best parameter vector
// observed, its loss, and the horizon it was fitted on.
type FitResult struct {
	Params     dynamo.Params
	Loss       float64
	Horizon    float64
	Stage      int
	Iterations int
}

// fitStage runs bounded gradient descent against ev over one fixed horizon,
// starting from initial. It returns the lowest-loss iterate seen during the
// run, which is not necessarily the last one.
//
// A SimulationError on a single iteration is recoverable: the iterate
// reverts to the best finite point and the working step is halved before
// the next attempt. If no iteration ever yields a finite loss the stage
// fails with *StageFitError.
func fitStage(ctx context.Context, ev *LossEvaluator, initial dynamo.Params, horizon float64, stage int, cfg Config, log *zap.Logger) (FitResult, error) {
	cfg = cfg.withDefaults()

	best := FitResult{
		Params:  initial.Clone(),
		Loss:    math.Inf(1),
		Horizon: horizon,
		Stage:   stage,
	}

	cur := initial.Clone()
	step := cfg.StepSize
	var opt *adam
	if cfg.Optimizer == "adam" {
		opt = newAdam(cfg.StepSize, len(initial))
	}

	var lastSimErr error
	stall := 0

	// Score the warm start itself; it counts as an observed iterate.
	loss, _, err := ev.Evaluate(ctx, cur, horizon)
	switch {
	case err == nil:
		best.Loss = loss
		best.Params = cur.Clone()
	case isSimulationError(err):
		lastSimErr = err
	default:
		return best, err
	}

	for i := 0; i < cfg.MaxIterations; i++ {
		if err := ctx.Err(); err != nil {
			return best, err
		}

		prevBest := best.Loss

		grad, err := gradient(ctx, ev, cur, horizon, cfg.GradEps)
		if err != nil {
			if !isSimulationError(err) {
				return best, err
			}
			lastSimErr = err
			if !math.IsInf(best.Loss, 1) {
				cur = best.Params.Clone()
			}
			step *= 0.5
			log.Debug("gradient evaluation failed, halving step",
				zap.Int("stage", stage), zap.Int("iteration", i), zap.Float64("step", step))
			continue
		}

		var candidate dynamo.Params
		if opt != nil {
			candidate = opt.update(cur, grad)
		} else {
			candidate = cur.Clone()
			for j := range candidate {
				candidate[j] -= step * grad[j]
			}
		}

		loss, _, err := ev.Evaluate(ctx, candidate, horizon)
		if err != nil {
			if !isSimulationError(err) {
				return best, err
			}
			lastSimErr = err
			step *= 0.5
			log.Debug("candidate rejected by simulation failure, halving step",
				zap.Int("stage", stage), zap.Int("iteration", i), zap.Float64("step", step))
			continue
		}

		cur = candidate
		best.Iterations = i + 1

		if loss < best.Loss {
			best.Loss = loss
			best.Params = candidate.Clone()
		}

		if cfg.LossTolerance > 0 {
			if prevBest-best.Loss < cfg.LossTolerance {
				stall++
			} else {
				stall = 0
			}
			if stall >= cfg.Patience {
				log.Debug("early stop: loss improvement below tolerance",
					zap.Int("stage", stage), zap.Int("iteration", i), zap.Float64("loss", best.Loss))
				break
			}
		}
	}

	if math.IsInf(best.Loss, 1) {
		return FitResult{}, &StageFitError{
			Stage:   stage,
			Horizon: horizon,
			Initial: initial.Clone(),
			Cause:   lastSimErr,
		}
	}

	return best, nil
}

// gradient computes the central-difference gradient of the loss:
// dL/dp[i] ≈ (L(p[i]+ε) - L(p[i]-ε)) / (2ε).
func gradient(ctx context.Context, ev *LossEvaluator, p dynamo.Params, horizon, eps float64) ([]float64, error) {
	grad := make([]float64, len(p))
	for i := range p {
		pPlus := p.Clone()
		pPlus[i] += eps
		pMinus := p.Clone()
		pMinus[i] -= eps

		lPlus, _, err := ev.Evaluate(ctx, pPlus, horizon)
		if err != nil {
			return nil, err
		}
		lMinus, _, err := ev.Evaluate(ctx, pMinus, horizon)
		if err != nil {
			return nil, err
		}

		grad[i] = (lPlus - lMinus) / (2 * eps)
	}
	return grad, nil
}

func isSimulationError(err error) bool {
	var simErr *dynamo.SimulationError
	return errors.As(err, &simErr)
}
