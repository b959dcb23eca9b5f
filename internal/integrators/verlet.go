package integrators

import "github.com/san-kum/simscat/internal/dynamo"

// Verlet is the velocity Verlet scheme. States must be laid out as
// [positions..., velocities...] with the system returning [v, a] from Derive.
//
// The acceleration computed at the end of a step is cached and reused at the
// start of the next one when the caller passes the same positions back in,
// so a force evaluation costs one Derive call per step.
type Verlet struct {
	cachedPos []float64
	cachedAcc []float64
	scratch   dynamo.State
}

func NewVerlet() *Verlet {
	return &Verlet{}
}

func (v *Verlet) ensureScratch(n int) {
	if len(v.scratch) != n {
		v.scratch = make(dynamo.State, n)
		v.cachedPos = nil
		v.cachedAcc = nil
	}
}

func (v *Verlet) acceleration(dyn dynamo.System, x dynamo.State, t float64) []float64 {
	half := len(x) / 2
	if v.cachedAcc != nil && equalFloats(v.cachedPos, x[:half]) {
		return v.cachedAcc
	}
	return dyn.Derive(x, t)[half:]
}

func (v *Verlet) Step(dyn dynamo.System, x dynamo.State, t, dt float64) dynamo.State {
	n := len(x)
	half := n / 2
	v.ensureScratch(n)

	result := make(dynamo.State, n)
	acc := v.acceleration(dyn, x, t)
	dt2 := dt * dt

	for i := 0; i < half; i++ {
		result[i] = x[i] + x[half+i]*dt + 0.5*acc[i]*dt2
	}

	for i := 0; i < half; i++ {
		v.scratch[i] = result[i]
		v.scratch[half+i] = x[half+i]
	}

	accNew := dyn.Derive(v.scratch, t+dt)[half:]

	halfDt := 0.5 * dt
	for i := 0; i < half; i++ {
		result[half+i] = x[half+i] + (acc[i]+accNew[i])*halfDt
	}

	v.cachedPos = append(v.cachedPos[:0], result[:half]...)
	v.cachedAcc = append(v.cachedAcc[:0], accNew...)

	return result
}

// Leapfrog is the kick-drift-kick form of the leapfrog scheme with the same
// state layout as Verlet.
type Leapfrog struct {
	scratch dynamo.State
}

func NewLeapfrog() *Leapfrog {
	return &Leapfrog{}
}

func (l *Leapfrog) Step(dyn dynamo.System, x dynamo.State, t, dt float64) dynamo.State {
	n := len(x)
	half := n / 2

	if len(l.scratch) != n {
		l.scratch = make(dynamo.State, n)
	}

	result := make(dynamo.State, n)
	dx := dyn.Derive(x, t)
	halfDt := dt * 0.5

	for i := 0; i < half; i++ {
		l.scratch[half+i] = x[half+i] + dx[half+i]*halfDt
	}

	for i := 0; i < half; i++ {
		result[i] = x[i] + l.scratch[half+i]*dt
		l.scratch[i] = result[i]
	}

	dxNew := dyn.Derive(l.scratch, t+dt)

	for i := 0; i < half; i++ {
		result[half+i] = l.scratch[half+i] + dxNew[half+i]*halfDt
	}

	return result
}

func equalFloats(a, b []float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
