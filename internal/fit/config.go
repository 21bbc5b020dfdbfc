package fit

const (
	DefaultMaxIterations = 100
	DefaultStepSize      = 0.1
	DefaultGradEps       = 1e-6
	DefaultPatience      = 10
)

// Config tunes the per-stage optimization. The zero value yields the
// defaults: 100 iterations of plain gradient descent with step size 0.1.
type Config struct {
	// MaxIterations bounds each stage's gradient steps.
	MaxIterations int
	// StepSize is the fixed learning rate for gradient steps.
	StepSize float64
	// Optimizer selects the update rule: "sgd" (default) or "adam".
	Optimizer string
	// GradEps is the central-difference perturbation.
	GradEps float64
	// LossTolerance, when positive, stops a stage early once the best loss
	// improves by less than the tolerance over Patience consecutive
	// iterations. Off (0) by default; an extension beyond the fixed
	// iteration cap.
	LossTolerance float64
	// Patience is the early-stopping window, used only when LossTolerance
	// is set.
	Patience int
}

func (c Config) withDefaults() Config {
	if c.MaxIterations <= 0 {
		c.MaxIterations = DefaultMaxIterations
	}
	if c.StepSize <= 0 {
		c.StepSize = DefaultStepSize
	}
	if c.Optimizer == "" {
		c.Optimizer = "sgd"
	}
	if c.GradEps <= 0 {
		c.GradEps = DefaultGradEps
	}
	if c.Patience <= 0 {
		c.Patience = DefaultPatience
	}
	return c
}
