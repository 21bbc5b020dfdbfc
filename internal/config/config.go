package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/odefit/internal/fit"
)

const (
	DefaultDt            = 0.01
	DefaultSpan          = 30.0
	DefaultPoints        = 100
	DefaultNoise         = 0.01
	DefaultMaxIterations = 100
	DefaultStepSize      = 0.1
)

type Config struct {
	Model         string    `yaml:"model"`
	Integrator    string    `yaml:"integrator"`
	Schedule      []float64 `yaml:"schedule"`
	MaxIterations int       `yaml:"max_iterations"`
	StepSize      float64   `yaml:"step_size"`
	Optimizer     string    `yaml:"optimizer"`
	LossTolerance float64   `yaml:"loss_tolerance"`
	Dt            float64   `yaml:"dt"`
	Span          float64   `yaml:"span"`
	Points        int       `yaml:"points"`
	Noise         float64   `yaml:"noise"`
	Seed          int64     `yaml:"seed"`
	InitState     []float64 `yaml:"init_state"`
	InitialGuess  []float64 `yaml:"initial_guess"`
	TrueParams    []float64 `yaml:"true_params"`
}

func DefaultConfig() *Config {
	return &Config{
		Model:         "oscillator",
		Integrator:    "rk4",
		Schedule:      []float64{10, 20, 30},
		MaxIterations: DefaultMaxIterations,
		StepSize:      DefaultStepSize,
		Optimizer:     "sgd",
		Dt:            DefaultDt,
		Span:          DefaultSpan,
		Points:        DefaultPoints,
		Noise:         DefaultNoise,
		InitState:     []float64{1.0, 0.0},
		InitialGuess:  []float64{5.0, 5.0},
		TrueParams:    []float64{1.0, 2.0},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// FitConfig maps the file-level settings onto the estimation config.
func (c *Config) FitConfig() fit.Config {
	return fit.Config{
		MaxIterations: c.MaxIterations,
		StepSize:      c.StepSize,
		Optimizer:     c.Optimizer,
		LossTolerance: c.LossTolerance,
	}
}

// Validate checks the settings that the estimation layer cannot default.
func (c *Config) Validate() error {
	if c.Model == "" {
		return fmt.Errorf("config: model is required")
	}
	if len(c.Schedule) == 0 {
		return fmt.Errorf("config: schedule is required")
	}
	if len(c.InitState) == 0 {
		return fmt.Errorf("config: init_state is required")
	}
	if len(c.InitialGuess) == 0 {
		return fmt.Errorf("config: initial_guess is required")
	}
	if c.Points < 2 {
		return fmt.Errorf("config: points must be at least 2, got %d", c.Points)
	}
	if c.Span <= 0 {
		return fmt.Errorf("config: span must be positive, got %f", c.Span)
	}
	return nil
}
