package integrators

import "github.com/san-kum/simscat/internal/dynamo"

// RK4 is the classical fourth-order Runge-Kutta method. It costs four force
// evaluations per step and is not symplectic, so md energies drift slowly
// even when the local error is small.
type RK4 struct {
	k     [4]dynamo.State
	stage dynamo.State
}

func NewRK4() *RK4 {
	return &RK4{}
}

func (r *RK4) resize(n int) {
	if len(r.stage) == n {
		return
	}
	for i := range r.k {
		r.k[i] = make(dynamo.State, n)
	}
	r.stage = make(dynamo.State, n)
}

// advance writes x + h·k into the stage buffer.
func (r *RK4) advance(x, k dynamo.State, h float64) dynamo.State {
	for i := range x {
		r.stage[i] = x[i] + h*k[i]
	}
	return r.stage
}

func (r *RK4) Step(dyn dynamo.System, x dynamo.State, t, dt float64) dynamo.State {
	r.resize(len(x))
	half := 0.5 * dt

	copy(r.k[0], dyn.Derive(x, t))
	copy(r.k[1], dyn.Derive(r.advance(x, r.k[0], half), t+half))
	copy(r.k[2], dyn.Derive(r.advance(x, r.k[1], half), t+half))
	copy(r.k[3], dyn.Derive(r.advance(x, r.k[2], dt), t+dt))

	next := make(dynamo.State, len(x))
	w := dt / 6
	for i := range x {
		next[i] = x[i] + w*(r.k[0][i]+2*r.k[1][i]+2*r.k[2][i]+r.k[3][i])
	}
	return next
}
