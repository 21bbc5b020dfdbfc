package fit

import (
	"math"

	"github.com/san-kum/odefit/internal/dynamo"
)

// adam implements the Adam update rule with bias correction.
//
//	m[i] = β1·m[i] + (1-β1)·g[i]
//	v[i] = β2·v[i] + (1-β2)·g[i]²
//	w[i] = w[i] - lr · m̂[i] / (√v̂[i] + ε)
type adam struct {
	lr           float64
	beta1, beta2 float64
	eps          float64
	m, v         []float64
	step         int
}

func newAdam(lr float64, dim int) *adam {
	return &adam{
		lr:    lr,
		beta1: 0.9,
		beta2: 0.999,
		eps:   1e-8,
		m:     make([]float64, dim),
		v:     make([]float64, dim),
	}
}

func (a *adam) update(params dynamo.Params, grads []float64) dynamo.Params {
	a.step++

	next := params.Clone()
	for i := range next {
		g := grads[i]
		a.m[i] = a.beta1*a.m[i] + (1-a.beta1)*g
		a.v[i] = a.beta2*a.v[i] + (1-a.beta2)*g*g

		mHat := a.m[i] / (1 - math.Pow(a.beta1, float64(a.step)))
		vHat := a.v[i] / (1 - math.Pow(a.beta2, float64(a.step)))

		next[i] -= a.lr * mHat / (math.Sqrt(vHat) + a.eps)
	}
	return next
}
