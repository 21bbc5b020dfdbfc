// Package logging builds the zap loggers used across the estimation CLI.
package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New returns a logger writing to stderr. Verbose enables development
// encoding with debug-level output; otherwise info and above in the
// production format.
func New(verbose bool) (*zap.Logger, error) {
	if verbose {
		cfg := zap.NewDevelopmentConfig()
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		return cfg.Build()
	}
	return zap.NewProduction()
}

// Nop returns a logger that discards everything. Library defaults and
// tests use it.
func Nop() *zap.Logger {
	return zap.NewNop()
}
