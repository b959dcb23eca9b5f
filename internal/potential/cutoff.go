package potential

// Cutoff truncates a pair potential at Rc. With Shift set the energy is
// offset so that it is continuous (zero) at the cutoff; forces are never
// shifted.
type Cutoff struct {
	Pair  Pair
	Rc    float64
	Shift bool
	shift float64
}

func NewCutoff(p Pair, rc float64, shift bool) *Cutoff {
	c := &Cutoff{Pair: p, Rc: rc, Shift: shift}
	if shift {
		c.shift = p.Energy(rc)
	}
	return c
}

func (c *Cutoff) Energy(r float64) float64 {
	if r >= c.Rc {
		return 0
	}
	return c.Pair.Energy(r) - c.shift
}

func (c *Cutoff) Force(r float64) float64 {
	if r >= c.Rc {
		return 0
	}
	return c.Pair.Force(r)
}
