// Package fit estimates unknown ODE model parameters from noisy sampled
// observations via progressive-horizon (curriculum) fitting.
//
// The pipeline has three layers:
//
//   - [LossEvaluator]: simulates the model up to a horizon cutoff and sums
//     squared differences against the matching observations
//   - fitStage: bounded gradient descent over one fixed horizon, keeping
//     the best iterate rather than the last
//   - [Driver]: folds over an increasing horizon schedule, warm-starting
//     each stage with the previous stage's best parameters
//
// Fitting a multi-cycle oscillatory signal over its full span from an
// arbitrary guess tends to land in poor local minima; solving a short
// window first and growing it is what makes the descent tractable. The
// driver therefore requires strictly increasing horizons and passes
// nothing between stages except the parameter vector.
//
// Integrator failures stay distinguishable from bad fits throughout:
// *dynamo.SimulationError is tolerated per-iteration inside a stage but
// becomes *StageFitError when a stage never sees a finite loss, at which
// point the driver halts and reports the failing stage.
package fit
