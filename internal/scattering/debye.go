package scattering

import (
	"context"
	"fmt"
	"math"

	"github.com/san-kum/simscat/internal/dynamo"
	"github.com/san-kum/simscat/internal/md"
	"golang.org/x/sync/errgroup"
)

// Profile is a scattering intensity sampled on a q grid.
type Profile struct {
	Q []float64 `json:"q"`
	I []float64 `json:"i"`
}

type Options struct {
	// Box enables minimum-image distances when non-nil.
	Box *md.Box
	// Workers bounds the number of q values evaluated concurrently. Zero
	// uses dynamo.Workers().
	Workers int
}

// sinc returns sin(x)/x with the x→0 limit of 1.
func sinc(x float64) float64 {
	if math.Abs(x) < 1e-8 {
		return 1
	}
	return math.Sin(x) / x
}

// Debye evaluates the Debye equation exactly. species[i] indexes ff for atom
// i; a nil species slice means every atom uses ff[0].
func Debye(ctx context.Context, positions [][3]float64, species []int, ff []FormFactor, qs []float64, opts Options) (Profile, error) {
	n := len(positions)
	if n == 0 {
		return Profile{}, ErrNoAtoms
	}
	if err := checkQ(qs); err != nil {
		return Profile{}, err
	}
	if err := checkPositions(positions); err != nil {
		return Profile{}, err
	}
	if len(ff) == 0 {
		return Profile{}, fmt.Errorf("scattering: no form factors")
	}
	if species != nil && len(species) != n {
		return Profile{}, fmt.Errorf("scattering: %d species for %d atoms", len(species), n)
	}
	for _, s := range species {
		if s < 0 || s >= len(ff) {
			return Profile{}, fmt.Errorf("scattering: species %d has no form factor", s)
		}
	}

	dist := pairDistances(positions, opts.Box)
	kind := func(i int) int {
		if species == nil {
			return 0
		}
		return species[i]
	}

	out := Profile{Q: append([]float64(nil), qs...), I: make([]float64, len(qs))}
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers(opts.Workers))
	for k, q := range qs {
		k, q := k, q
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			f := make([]float64, len(ff))
			for s := range ff {
				f[s] = ff[s].At(q)
			}
			sum := 0.0
			p := 0
			for i := 0; i < n; i++ {
				fi := f[kind(i)]
				sum += fi * fi
				for j := i + 1; j < n; j++ {
					sum += 2 * fi * f[kind(j)] * sinc(q*dist[p])
					p++
				}
			}
			out.I[k] = sum
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Profile{}, err
	}
	return out, nil
}

// maxBins caps the distance histogram at 32 MiB.
const maxBins = 1 << 22

// DebyeHistogram is the single-species approximation that bins the pair
// distances at binWidth (Å) before summing, so the cost per q is the number
// of bins rather than the number of pairs.
func DebyeHistogram(ctx context.Context, positions [][3]float64, ff FormFactor, binWidth float64, qs []float64, opts Options) (Profile, error) {
	n := len(positions)
	if n == 0 {
		return Profile{}, ErrNoAtoms
	}
	if err := checkQ(qs); err != nil {
		return Profile{}, err
	}
	if !(binWidth > 0) {
		return Profile{}, fmt.Errorf("scattering: bin width must be positive, got %g", binWidth)
	}
	if err := checkPositions(positions); err != nil {
		return Profile{}, err
	}

	dist := pairDistances(positions, opts.Box)
	rmax := 0.0
	for _, r := range dist {
		rmax = max(rmax, r)
	}
	nbins := rmax/binWidth + 1
	if nbins > maxBins {
		return Profile{}, fmt.Errorf("scattering: %.0f Å span needs %.3g bins of %g Å, limit is %d", rmax, nbins, binWidth, maxBins)
	}
	hist := make([]float64, int(nbins))
	for _, r := range dist {
		hist[int(r/binWidth)]++
	}
	centres := make([]float64, len(hist))
	for b := range centres {
		centres[b] = (float64(b) + 0.5) * binWidth
	}

	out := Profile{Q: append([]float64(nil), qs...), I: make([]float64, len(qs))}
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers(opts.Workers))
	for k, q := range qs {
		k, q := k, q
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			f := ff.At(q)
			sum := float64(n)
			for b, c := range hist {
				if c == 0 {
					continue
				}
				sum += 2 * c * sinc(q*centres[b])
			}
			out.I[k] = f * f * sum
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Profile{}, err
	}
	return out, nil
}

// pairDistances lists r_ij for i<j in row-major order.
func pairDistances(positions [][3]float64, box *md.Box) []float64 {
	n := len(positions)
	dist := make([]float64, 0, n*(n-1)/2)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if box != nil {
				dist = append(dist, box.Distance(positions[i], positions[j]))
				continue
			}
			dx := positions[j][0] - positions[i][0]
			dy := positions[j][1] - positions[i][1]
			dz := positions[j][2] - positions[i][2]
			dist = append(dist, math.Sqrt(dx*dx+dy*dy+dz*dz))
		}
	}
	return dist
}

func workers(n int) int {
	if n > 0 {
		return n
	}
	return dynamo.Workers()
}

// Average returns the point-wise mean of profiles that share a q grid.
func Average(profiles []Profile) (Profile, error) {
	if len(profiles) == 0 {
		return Profile{}, fmt.Errorf("scattering: nothing to average")
	}
	nq := len(profiles[0].Q)
	out := Profile{Q: append([]float64(nil), profiles[0].Q...), I: make([]float64, nq)}
	for i, p := range profiles {
		if len(p.I) != nq || len(p.Q) != nq {
			return Profile{}, fmt.Errorf("scattering: profile %d has %d points, want %d", i, len(p.I), nq)
		}
		for k, v := range p.I {
			out.I[k] += v
		}
	}
	for k := range out.I {
		out.I[k] /= float64(len(profiles))
	}
	return out, nil
}

// Normalise divides by N·f(q)² so that I(q) → 1 at large q.
func Normalise(p Profile, n int, ff FormFactor) Profile {
	out := Profile{Q: append([]float64(nil), p.Q...), I: make([]float64, len(p.I))}
	for k, q := range p.Q {
		f := ff.At(q)
		out.I[k] = p.I[k] / (float64(n) * f * f)
	}
	return out
}

// Frames evaluates the Debye equation for each frame in turn and averages
// the result. Frames are processed sequentially; each one is already
// parallel over q.
func Frames(ctx context.Context, frames [][][3]float64, ff FormFactor, qs []float64, opts Options) (Profile, error) {
	if len(frames) == 0 {
		return Profile{}, ErrNoAtoms
	}
	profiles := make([]Profile, 0, len(frames))
	for _, pts := range frames {
		p, err := Debye(ctx, pts, nil, []FormFactor{ff}, qs, opts)
		if err != nil {
			return Profile{}, err
		}
		profiles = append(profiles, p)
	}
	return Average(profiles)
}
