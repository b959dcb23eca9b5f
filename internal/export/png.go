package export

import (
	"image/color"
	"io"
	"math"
	"strconv"

	"github.com/fogleman/gg"
)

// PNG renders p the same way as SVG, rasterised with gg.
func PNG(w io.Writer, p Plot, width, height int) error {
	b, err := p.limits()
	if err != nil {
		return err
	}
	f := newFrame(b, width, height)

	dc := gg.NewContext(width, height)
	dc.SetColor(color.RGBA{0x0a, 0x0a, 0x0a, 0xff})
	dc.Clear()

	dc.SetHexColor("#585858")
	dc.SetLineWidth(1)
	dc.DrawRectangle(f.left, f.top, f.plotW, f.plotH)
	dc.Stroke()

	dc.SetHexColor("#a8a8a8")
	for _, x := range ticks(b.minX, b.maxX, 5) {
		sx, _ := f.px(x, b.minY)
		dc.DrawStringAnchored(tickLabel(x), sx, f.top+f.plotH+14, 0.5, 0.5)
	}
	for _, y := range ticks(b.minY, b.maxY, 5) {
		_, sy := f.px(b.minX, y)
		dc.DrawStringAnchored(tickLabel(y), f.left-6, sy, 1, 0.5)
	}

	dc.SetHexColor("#e4e4e4")
	if p.Title != "" {
		dc.DrawStringAnchored(p.Title, f.width/2, 16, 0.5, 0.5)
	}
	if p.XLabel != "" {
		dc.DrawStringAnchored(p.XLabel, f.left+f.plotW/2, f.height-10, 0.5, 0.5)
	}
	if p.YLabel != "" {
		dc.Push()
		dc.RotateAbout(-math.Pi/2, 14, f.top+f.plotH/2)
		dc.DrawStringAnchored(p.YLabel, 14, f.top+f.plotH/2, 0.5, 0.5)
		dc.Pop()
	}

	dc.SetLineWidth(1.5)
	for i, s := range p.Series {
		dc.SetHexColor(Palette[i%len(Palette)])
		drawing := false
		for k := range s.X {
			if k >= len(s.Y) || !finite(s.X[k]) || !finite(s.Y[k]) {
				drawing = false
				continue
			}
			x, y := f.px(s.X[k], s.Y[k])
			if !drawing {
				dc.MoveTo(x, y)
				drawing = true
				continue
			}
			dc.LineTo(x, y)
		}
		dc.Stroke()
		if s.Name != "" {
			dc.DrawStringAnchored(s.Name, f.left+f.plotW-8, f.top+12+float64(i)*14, 1, 0.5)
		}
	}

	return dc.EncodePNG(w)
}

// SnapshotPNG is the raster counterpart of SnapshotSVG.
func SnapshotPNG(w io.Writer, positions [][3]float64, box [3]float64, size int) error {
	if len(positions) == 0 {
		return ErrEmptyPlot
	}
	dc := gg.NewContext(size, size)
	dc.SetColor(color.Black)
	dc.Clear()

	scale := float64(size) / math.Max(box[0], box[1])
	r := math.Max(1.5, scale*1.2)
	for _, p := range positions {
		a := math.Min(1, math.Max(0.1, 0.35+0.65*p[2]/box[2]))
		dc.SetRGBA(0, 0xd7/255.0, 1, a)
		dc.DrawCircle(p[0]*scale, float64(size)-p[1]*scale, r)
		dc.Fill()
	}
	dc.SetHexColor("#a8a8a8")
	dc.DrawString(strconv.Itoa(len(positions))+" atoms", 6, 14)
	return dc.EncodePNG(w)
}
