package models

import "github.com/san-kum/odefit/internal/dynamo"

// LotkaVolterra is the predator-prey system
//
//	x' = alpha x - beta x y
//	y' = delta x y - gamma y
//
// with unknown parameters p = [alpha, beta, gamma, delta].
// State is [prey, predator].
type LotkaVolterra struct{}

func NewLotkaVolterra() *LotkaVolterra {
	return &LotkaVolterra{}
}

func (l *LotkaVolterra) StateDim() int  { return 2 }
func (l *LotkaVolterra) NumParams() int { return 4 }

func (l *LotkaVolterra) Derive(p dynamo.Params, x dynamo.State, t float64) dynamo.State {
	prey := x[0]
	pred := x[1]
	return dynamo.State{
		p[0]*prey - p[1]*prey*pred,
		p[3]*prey*pred - p[2]*pred,
	}
}
