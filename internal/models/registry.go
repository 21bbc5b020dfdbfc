package models

import (
	"fmt"
	"sort"

	"github.com/san-kum/odefit/internal/dynamo"
)

var registry = map[string]func() dynamo.Model{
	"oscillator":     func() dynamo.Model { return NewDampedOscillator() },
	"lotka_volterra": func() dynamo.Model { return NewLotkaVolterra() },
	"vanderpol":      func() dynamo.Model { return NewVanDerPol() },
}

// New returns a model by registry name.
func New(name string) (dynamo.Model, error) {
	build, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown model %q (available: %v)", name, List())
	}
	return build(), nil
}

// List returns the registered model names, sorted.
func List() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
