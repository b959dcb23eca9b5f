package scattering

import (
	"context"
	"math"
	"testing"

	"github.com/san-kum/simscat/internal/md"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQGrid(t *testing.T) {
	qs, err := QGrid{Min: 1, Max: 3, N: 5}.Values()
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{1, 1.5, 2, 2.5, 3}, qs, 1e-12)

	qs, err = QGrid{Min: 0.1, Max: 10, N: 3, Log: true}.Values()
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{0.1, 1, 10}, qs, 1e-12)

	_, err = QGrid{Min: 0, Max: 1, N: 5}.Values()
	assert.ErrorIs(t, err, ErrBadQ)
	_, err = QGrid{Min: 2, Max: 1, N: 5}.Values()
	assert.Error(t, err)
}

func TestFormFactors(t *testing.T) {
	assert.Equal(t, 2.0, Constant(2).At(5))
	g := Gaussian{A: 10, B: 4}
	assert.Equal(t, 10.0, g.At(0))
	q := 4 * math.Pi
	assert.InDelta(t, 10*math.Exp(-4), g.At(q), 1e-12)

	ff, err := ParseFormFactor("argon")
	require.NoError(t, err)
	assert.Equal(t, Argon, ff)
	_, err = ParseFormFactor("unobtainium")
	assert.Error(t, err)
}

func TestDebyeSingleAtom(t *testing.T) {
	qs := []float64{0.5, 1, 2}
	p, err := Debye(context.Background(), [][3]float64{{0, 0, 0}}, nil, []FormFactor{Constant(3)}, qs, Options{})
	require.NoError(t, err)
	for _, v := range p.I {
		assert.InDelta(t, 9.0, v, 1e-12)
	}
}

func TestDebyeDimer(t *testing.T) {
	const r = 2.5
	pos := [][3]float64{{0, 0, 0}, {r, 0, 0}}
	qs := []float64{0.3, 1.1, 4.2}
	p, err := Debye(context.Background(), pos, nil, []FormFactor{Constant(1)}, qs, Options{})
	require.NoError(t, err)
	for k, q := range qs {
		want := 2 + 2*math.Sin(q*r)/(q*r)
		assert.InDelta(t, want, p.I[k], 1e-12)
	}
}

func TestDebyeSmallQLimit(t *testing.T) {
	// as q→0 every pair contributes fully: I → (Σf)²
	pos := [][3]float64{{0, 0, 0}, {1, 0, 0}, {0, 2, 0}, {1, 1, 1}}
	p, err := Debye(context.Background(), pos, []int{0, 1, 0, 1}, []FormFactor{Constant(1), Constant(2)}, []float64{1e-6}, Options{})
	require.NoError(t, err)
	assert.InDelta(t, 36.0, p.I[0], 1e-6)
}

func TestDebyeMinimumImage(t *testing.T) {
	box := md.Cubic(10)
	pos := [][3]float64{{0.5, 5, 5}, {9.5, 5, 5}}
	qs := []float64{1}
	p, err := Debye(context.Background(), pos, nil, []FormFactor{Constant(1)}, qs, Options{Box: &box})
	require.NoError(t, err)
	assert.InDelta(t, 2+2*math.Sin(1)/1, p.I[0], 1e-12)
}

func TestDebyeErrors(t *testing.T) {
	ctx := context.Background()
	ff := []FormFactor{Constant(1)}
	_, err := Debye(ctx, nil, nil, ff, []float64{1}, Options{})
	assert.ErrorIs(t, err, ErrNoAtoms)

	_, err = Debye(ctx, [][3]float64{{0, 0, 0}}, nil, ff, []float64{1, -1}, Options{})
	assert.ErrorIs(t, err, ErrBadQ)

	_, err = Debye(ctx, [][3]float64{{0, 0, 0}}, []int{1}, ff, []float64{1}, Options{})
	assert.Error(t, err)

	_, err = Debye(ctx, [][3]float64{{0, 0, 0}, {math.Inf(1), 0, 0}}, nil, ff, []float64{1}, Options{})
	assert.ErrorIs(t, err, ErrBadAtom)
}

func TestDebyeHistogramErrors(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name      string
		positions [][3]float64
		binWidth  float64
		target    error
	}{
		{"no atoms", nil, 0.01, ErrNoAtoms},
		{"zero bin width", [][3]float64{{0, 0, 0}, {1, 0, 0}}, 0, nil},
		{"nan coordinate", [][3]float64{{0, 0, 0}, {math.NaN(), 0, 0}}, 0.01, ErrBadAtom},
		{"inf coordinate", [][3]float64{{0, 0, 0}, {0, math.Inf(-1), 0}}, 0.01, ErrBadAtom},
		{"span too wide", [][3]float64{{0, 0, 0}, {1e6, 0, 0}}, 0.01, nil},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			_, err := DebyeHistogram(ctx, tt.positions, Constant(1), tt.binWidth, []float64{1}, Options{})
			require.Error(t, err)
			if tt.target != nil {
				assert.ErrorIs(t, err, tt.target)
			}
		})
	}
}

func TestDebyeCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Debye(ctx, [][3]float64{{0, 0, 0}, {1, 1, 1}}, nil, []FormFactor{Constant(1)}, []float64{1, 2, 3}, Options{Workers: 1})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestHistogramMatchesExact(t *testing.T) {
	box := md.Cubic(12)
	pos := md.Coordinates(md.Lattice(64, box))
	qs, err := QGrid{Min: 0.5, Max: 5, N: 40}.Values()
	require.NoError(t, err)

	ctx := context.Background()
	exact, err := Debye(ctx, pos, nil, []FormFactor{Argon}, qs, Options{})
	require.NoError(t, err)
	fast, err := DebyeHistogram(ctx, pos, Argon, 1e-5, qs, Options{})
	require.NoError(t, err)

	for k, q := range qs {
		f := Argon.At(q)
		assert.InDelta(t, exact.I[k], fast.I[k], 0.01*64*f*f, "q=%.3f", q)
	}
}

func TestAverageAndNormalise(t *testing.T) {
	a := Profile{Q: []float64{1, 2}, I: []float64{2, 4}}
	b := Profile{Q: []float64{1, 2}, I: []float64{4, 8}}
	avg, err := Average([]Profile{a, b})
	require.NoError(t, err)
	assert.Equal(t, []float64{3, 6}, avg.I)

	_, err = Average([]Profile{a, {Q: []float64{1}, I: []float64{1}}})
	assert.Error(t, err)

	n := Normalise(avg, 3, Constant(1))
	assert.Equal(t, []float64{1, 2}, n.I)
}

func TestFramesAverages(t *testing.T) {
	f1 := [][3]float64{{0, 0, 0}, {2, 0, 0}}
	f2 := [][3]float64{{0, 0, 0}, {3, 0, 0}}
	q := []float64{1}
	p, err := Frames(context.Background(), [][][3]float64{f1, f2}, Constant(1), q, Options{})
	require.NoError(t, err)
	want := 2 + (math.Sin(2)/2 + math.Sin(3)/3)
	assert.InDelta(t, want, p.I[0], 1e-12)
}
