package config

// Presets are ready-made estimation scenarios per model.
var Presets = map[string]map[string]*Config{
	"oscillator": {
		"classic": {
			Model: "oscillator", Integrator: "rk4", Dt: 0.01,
			Span: 30, Points: 100, Noise: 0.01, Seed: 42,
			Schedule:     []float64{10, 20, 30},
			InitState:    []float64{1.0, 0.0},
			TrueParams:   []float64{1.0, 2.0},
			InitialGuess: []float64{5.0, 5.0},
			Optimizer:    "adam", StepSize: 0.05, MaxIterations: 500,
		},
		"stiff": {
			Model: "oscillator", Integrator: "rk45", Dt: 0.005,
			Span: 20, Points: 200, Noise: 0.005, Seed: 42,
			Schedule:     []float64{4, 8, 12, 20},
			InitState:    []float64{1.0, 0.0},
			TrueParams:   []float64{0.2, 25.0},
			InitialGuess: []float64{1.0, 10.0},
			Optimizer:    "adam", StepSize: 0.1, MaxIterations: 800,
		},
	},
	"lotka_volterra": {
		"cycles": {
			Model: "lotka_volterra", Integrator: "rk4", Dt: 0.01,
			Span: 40, Points: 160, Noise: 0.02, Seed: 7,
			Schedule:     []float64{10, 20, 40},
			InitState:    []float64{2.0, 1.0},
			TrueParams:   []float64{1.0, 0.5, 1.0, 0.5},
			InitialGuess: []float64{1.5, 1.0, 1.5, 1.0},
			Optimizer:    "adam", StepSize: 0.02, MaxIterations: 600,
		},
	},
	"vanderpol": {
		"limit_cycle": {
			Model: "vanderpol", Integrator: "rk4", Dt: 0.005,
			Span: 25, Points: 125, Noise: 0.01, Seed: 13,
			Schedule:     []float64{5, 12, 25},
			InitState:    []float64{2.0, 0.0},
			TrueParams:   []float64{1.5},
			InitialGuess: []float64{4.0},
			Optimizer:    "adam", StepSize: 0.05, MaxIterations: 500,
		},
	},
}

// GetPreset returns a named preset for a model, or nil if absent.
func GetPreset(model, name string) *Config {
	presets, ok := Presets[model]
	if !ok {
		return nil
	}
	return presets[name]
}

// ListPresets returns the preset names for a model, or nil if absent.
func ListPresets(model string) []string {
	presets, ok := Presets[model]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	return names
}
