package export

import (
	"errors"
	"math"
)

var ErrEmptyPlot = errors.New("export: nothing to plot")

// Palette is cycled through for successive series.
var Palette = []string{"#00d7ff", "#ff5f87", "#afff5f", "#ffaf00", "#af87ff", "#5fffaf"}

type Series struct {
	Name string
	X    []float64
	Y    []float64
}

type Plot struct {
	Title  string
	XLabel string
	YLabel string
	Series []Series
}

type bounds struct {
	minX, maxX, minY, maxY float64
}

// limits returns padded data bounds over every finite point.
func (p Plot) limits() (bounds, error) {
	b := bounds{math.Inf(1), math.Inf(-1), math.Inf(1), math.Inf(-1)}
	n := 0
	for _, s := range p.Series {
		for i := range s.X {
			if i >= len(s.Y) || !finite(s.X[i]) || !finite(s.Y[i]) {
				continue
			}
			b.minX = math.Min(b.minX, s.X[i])
			b.maxX = math.Max(b.maxX, s.X[i])
			b.minY = math.Min(b.minY, s.Y[i])
			b.maxY = math.Max(b.maxY, s.Y[i])
			n++
		}
	}
	if n < 2 {
		return bounds{}, ErrEmptyPlot
	}
	if b.maxX == b.minX {
		b.maxX++
	}
	if b.maxY == b.minY {
		b.minY--
		b.maxY++
	}
	pad := 0.05 * (b.maxY - b.minY)
	b.minY -= pad
	b.maxY += pad
	return b, nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// frame maps data coordinates into a width×height pixel area with margins
// for axis labels.
type frame struct {
	b             bounds
	left, top     float64
	plotW, plotH  float64
	width, height float64
}

const (
	marginLeft   = 70.0
	marginRight  = 20.0
	marginTop    = 36.0
	marginBottom = 46.0
)

func newFrame(b bounds, width, height int) frame {
	return frame{
		b:      b,
		left:   marginLeft,
		top:    marginTop,
		plotW:  float64(width) - marginLeft - marginRight,
		plotH:  float64(height) - marginTop - marginBottom,
		width:  float64(width),
		height: float64(height),
	}
}

func (f frame) px(x, y float64) (float64, float64) {
	sx := f.left + (x-f.b.minX)/(f.b.maxX-f.b.minX)*f.plotW
	sy := f.top + f.plotH - (y-f.b.minY)/(f.b.maxY-f.b.minY)*f.plotH
	return sx, sy
}

// ticks returns n+1 evenly spaced values across [lo, hi].
func ticks(lo, hi float64, n int) []float64 {
	out := make([]float64, n+1)
	for i := range out {
		out[i] = lo + (hi-lo)*float64(i)/float64(n)
	}
	return out
}
