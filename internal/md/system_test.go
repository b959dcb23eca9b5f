package md_test

import (
	"context"
	"math"
	"math/rand"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/simscat/internal/dynamo"
	"github.com/san-kum/simscat/internal/integrators"
	"github.com/san-kum/simscat/internal/md"
	"github.com/san-kum/simscat/internal/potential"
)

const (
	argonMass    = 39.948
	argonSigma   = 3.405
	argonEpsilon = 0.0103
)

var argon = potential.FromSigmaEpsilon(argonSigma, argonEpsilon)

var _ = Describe("Box", func() {
	box := md.Box{L: [3]float64{10, 20, 30}}

	It("reports its volume", func() {
		Expect(box.Volume()).To(Equal(6000.0))
		Expect(box.MinSide()).To(Equal(10.0))
	})

	It("maps separations to the nearest image", func() {
		d := box.MinimumImage([3]float64{9, -15, 14})
		Expect(d[0]).To(BeNumerically("~", -1, 1e-12))
		Expect(d[1]).To(BeNumerically("~", 5, 1e-12))
		Expect(d[2]).To(BeNumerically("~", 14, 1e-12))
	})

	It("wraps coordinates into [0, L)", func() {
		Expect(box.Wrap(-1, 0)).To(BeNumerically("~", 9, 1e-12))
		Expect(box.Wrap(10, 0)).To(BeNumerically("~", 0, 1e-12))
		Expect(box.Wrap(45, 1)).To(BeNumerically("~", 5, 1e-12))
		Expect(box.Wrap(-1e-18, 2)).To(BeNumerically("<", 30.0))
	})

	It("measures minimum-image distances", func() {
		Expect(md.Cubic(10).Distance([3]float64{0.5, 0, 0}, [3]float64{9.5, 0, 0})).To(BeNumerically("~", 1, 1e-12))
	})

	It("sizes a box for a number density", func() {
		b := md.BoxForDensity(64, 0.064)
		Expect(b.L[0]).To(BeNumerically("~", 10, 1e-9))
	})
})

var _ = Describe("NewSystem", func() {
	It("rejects bad inputs", func() {
		_, err := md.NewSystem(1, argonMass, argon, md.Cubic(20), 8, true)
		Expect(err).To(MatchError(md.ErrTooFewParticles))

		_, err = md.NewSystem(10, 0, argon, md.Cubic(20), 8, true)
		Expect(err).To(MatchError(md.ErrBadMass))

		_, err = md.NewSystem(10, argonMass, argon, md.Cubic(15), 8, true)
		Expect(err).To(MatchError(md.ErrBoxTooSmall))
	})
})

var _ = Describe("System", func() {
	var sys *md.System

	BeforeEach(func() {
		var err error
		sys, err = md.NewSystem(2, argonMass, argon, md.Cubic(30), 10, false)
		Expect(err).NotTo(HaveOccurred())
	})

	pair := func(r float64) dynamo.State {
		return md.NewState([]float64{10, 10, 10, 10 + r, 10, 10}, make([]float64, 6))
	}

	It("has no force at the potential minimum", func() {
		rmin, _ := argon.Minimum()
		dx := sys.Derive(pair(rmin), 0)
		for _, a := range dx[6:] {
			Expect(a).To(BeNumerically("~", 0, 1e-12))
		}
	})

	It("pushes close particles apart along the separation", func() {
		dx := sys.Derive(pair(3.0), 0)
		Expect(dx[6]).To(BeNumerically("<", 0.0))
		Expect(dx[9]).To(BeNumerically(">", 0.0))
		Expect(dx[6] + dx[9]).To(BeNumerically("~", 0, 1e-15))
		Expect(dx[7]).To(Equal(0.0))
	})

	It("interacts through the periodic boundary", func() {
		x := md.NewState([]float64{0.5, 10, 10, 27.5, 10, 10}, make([]float64, 6))
		dx := sys.Derive(x, 0)
		// 3 Å apart through the boundary: particle 0 is pushed to +x
		Expect(dx[6]).To(BeNumerically(">", 0.0))
	})

	It("reports the pair energy", func() {
		rmin, _ := argon.Minimum()
		Expect(sys.Potential(pair(rmin))).To(BeNumerically("~", -argonEpsilon, 1e-12))
		Expect(sys.Potential(pair(12))).To(Equal(0.0))
	})

	It("wraps particles that leave the box", func() {
		x := md.NewState([]float64{-1, 31, 10, 5, 5, 5}, make([]float64, 6))
		sys.AfterStep(x, 0)
		Expect(x[0]).To(BeNumerically("~", 29, 1e-12))
		Expect(x[1]).To(BeNumerically("~", 1, 1e-12))
	})

	It("copies positions and velocities out of a state", func() {
		x := md.NewState([]float64{1, 2, 3, 4, 5, 6}, []float64{7, 8, 9, 10, 11, 12})
		Expect(sys.Positions(x)).To(Equal([][3]float64{{1, 2, 3}, {4, 5, 6}}))
		Expect(sys.Velocities(x)[1]).To(Equal([3]float64{10, 11, 12}))
		Expect(md.Flatten(sys.Positions(x))).To(Equal([]float64{1, 2, 3, 4, 5, 6}))
	})
})

var _ = Describe("Initial configurations", func() {
	var rng *rand.Rand

	BeforeEach(func() {
		rng = rand.New(rand.NewSource(7))
	})

	It("fills a simple cubic lattice inside the box", func() {
		box := md.Cubic(12)
		pos := md.Lattice(30, box)
		Expect(pos).To(HaveLen(90))
		for _, v := range pos {
			Expect(v).To(BeNumerically(">", 0.0))
			Expect(v).To(BeNumerically("<", 12.0))
		}
		Expect(pos[:3]).To(Equal([]float64{1.5, 1.5, 1.5}))
	})

	It("builds an fcc lattice with twelve nearest neighbours", func() {
		box := md.Cubic(8)
		pts := md.Coordinates(md.FCC(32, box))
		Expect(pts).To(HaveLen(32))
		// cell edge 4, nearest-neighbour distance 4/√2
		nn := 4 / math.Sqrt2
		count := 0
		for j := 1; j < len(pts); j++ {
			if math.Abs(box.Distance(pts[0], pts[j])-nn) < 1e-9 {
				count++
			}
		}
		Expect(count).To(Equal(12))
	})

	It("keeps random particles apart", func() {
		box := md.Cubic(20)
		pos, err := md.RandomPositions(40, box, 3, rng)
		Expect(err).NotTo(HaveOccurred())
		pts := md.Coordinates(pos)
		for i := range pts {
			for j := i + 1; j < len(pts); j++ {
				Expect(box.Distance(pts[i], pts[j])).To(BeNumerically(">=", 3.0))
			}
		}
	})

	It("gives up on impossible packings", func() {
		_, err := md.RandomPositions(50, md.Cubic(5), 4, rng)
		Expect(err).To(MatchError(md.ErrPacking))
	})

	It("draws drift-free velocities at exactly the target temperature", func() {
		vel := md.MaxwellBoltzmann(100, argonMass, 120, rng)
		Expect(md.KineticTemperature(vel, argonMass)).To(BeNumerically("~", 120, 1e-9))
		var sum [3]float64
		for i := 0; i < 100; i++ {
			for k := 0; k < 3; k++ {
				sum[k] += vel[3*i+k]
			}
		}
		for _, s := range sum {
			Expect(s).To(BeNumerically("~", 0, 1e-12))
		}
	})

	It("returns zero velocities at zero temperature", func() {
		vel := md.MaxwellBoltzmann(10, argonMass, 0, rng)
		Expect(md.KineticTemperature(vel, argonMass)).To(Equal(0.0))
	})
})

var _ = Describe("Thermodynamics", func() {
	It("recovers the ideal gas law without interactions", func() {
		box := md.Cubic(200)
		rng := rand.New(rand.NewSource(1))
		pos, err := md.RandomPositions(20, box, 20, rng)
		Expect(err).NotTo(HaveOccurred())
		vel := md.MaxwellBoltzmann(20, argonMass, 300, rng)

		sys, err := md.NewSystem(20, argonMass, argon, box, 10, true)
		Expect(err).NotTo(HaveOccurred())
		th := sys.Thermo(md.NewState(pos, vel))

		Expect(th.Potential).To(Equal(0.0))
		Expect(th.Temperature).To(BeNumerically("~", 300, 1e-6))
		ideal := float64(sys.DegreesOfFreedom()) / 3 * potential.BoltzmannEV * 300 / box.Volume() * potential.PressureFactor
		Expect(th.Pressure).To(BeNumerically("~", ideal, ideal*1e-9))
		Expect(sys.Pressure(md.NewState(pos, vel))).To(BeNumerically("~", th.Pressure, 1e-12))
	})
})

var _ = Describe("Dynamics", func() {
	It("conserves energy and momentum with velocity Verlet", func() {
		n := 64
		box := md.BoxForDensity(n, 0.0213)
		rng := rand.New(rand.NewSource(42))
		sys, err := md.NewSystem(n, argonMass, argon, box, 6.5, true)
		Expect(err).NotTo(HaveOccurred())

		x0 := md.NewState(md.Lattice(n, box), md.MaxwellBoltzmann(n, argonMass, 90, rng))
		sim := dynamo.New(sys, integrators.NewVerlet())
		sim.AddHook(sys)

		res, err := sim.Run(context.Background(), x0, dynamo.Config{Dt: 2, Duration: 400, SampleEvery: 20, ValidateState: true})
		Expect(err).NotTo(HaveOccurred())
		Expect(res.StepsTaken).To(Equal(200))
		Expect(res.Frames).To(HaveLen(11))
		Expect(res.EnergyDrift).To(BeNumerically("<", 1e-2))

		final := res.Final()
		var p [3]float64
		for i := 0; i < n; i++ {
			for k := 0; k < 3; k++ {
				p[k] += final[3*n+3*i+k]
				Expect(final[3*i+k]).To(BeNumerically(">=", 0.0))
				Expect(final[3*i+k]).To(BeNumerically("<", box.L[k]))
			}
		}
		for _, pk := range p {
			Expect(math.Abs(pk)).To(BeNumerically("<", 1e-9))
		}
	})
})
