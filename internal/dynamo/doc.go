// Package dynamo provides core primitives for parametric dynamical systems.
//
// The package defines the fundamental types shared by simulation and
// parameter estimation:
//
//   - [State]: vector representing system state
//   - [Params]: vector of unknown model parameters
//   - [Model]: interface for parametric ODE systems (dx/dt = f(p, x, t))
//   - [Integrator]: numerical stepper interface
//   - [Trajectory]: state sequence sampled at explicit times
//
// Models are pure functions of (params, state, time); all parameter
// mutation during estimation happens by producing new [Params] vectors.
//
// [SimulationError] keeps integrator failures (NaN/Inf states, divergence)
// on a separate channel from ordinary high-loss evaluations.
package dynamo
