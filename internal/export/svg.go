package export

import (
	"fmt"
	"io"
	"math"
	"strings"
)

// SVG renders p as a line plot with axes, tick labels and a legend.
func SVG(w io.Writer, p Plot, width, height int) error {
	b, err := p.limits()
	if err != nil {
		return err
	}
	f := newFrame(b, width, height)

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d" font-family="monospace" font-size="11">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, width, height, width, height)

	if p.Title != "" {
		fmt.Fprintf(&sb, `<text x="%.1f" y="22" fill="#e4e4e4" text-anchor="middle" font-size="14">%s</text>
`, f.width/2, escape(p.Title))
	}
	fmt.Fprintf(&sb, `<rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="none" stroke="#585858"/>
`, f.left, f.top, f.plotW, f.plotH)

	for _, x := range ticks(b.minX, b.maxX, 5) {
		sx, _ := f.px(x, b.minY)
		fmt.Fprintf(&sb, `<text x="%.1f" y="%.1f" fill="#a8a8a8" text-anchor="middle">%s</text>
`, sx, f.top+f.plotH+16, tickLabel(x))
	}
	for _, y := range ticks(b.minY, b.maxY, 5) {
		_, sy := f.px(b.minX, y)
		fmt.Fprintf(&sb, `<text x="%.1f" y="%.1f" fill="#a8a8a8" text-anchor="end">%s</text>
`, f.left-6, sy+4, tickLabel(y))
	}
	if p.XLabel != "" {
		fmt.Fprintf(&sb, `<text x="%.1f" y="%.1f" fill="#e4e4e4" text-anchor="middle">%s</text>
`, f.left+f.plotW/2, f.height-8, escape(p.XLabel))
	}
	if p.YLabel != "" {
		fmt.Fprintf(&sb, `<text x="14" y="%.1f" fill="#e4e4e4" text-anchor="middle" transform="rotate(-90 14 %.1f)">%s</text>
`, f.top+f.plotH/2, f.top+f.plotH/2, escape(p.YLabel))
	}

	for i, s := range p.Series {
		color := Palette[i%len(Palette)]
		sb.WriteString(`<path fill="none" stroke="` + color + `" stroke-width="1.5" d="`)
		pen := "M"
		for k := range s.X {
			if k >= len(s.Y) || !finite(s.X[k]) || !finite(s.Y[k]) {
				pen = "M"
				continue
			}
			x, y := f.px(s.X[k], s.Y[k])
			fmt.Fprintf(&sb, "%s%.1f,%.1f ", pen, x, y)
			pen = "L"
		}
		sb.WriteString("\"/>\n")
		if s.Name != "" {
			ly := f.top + 14 + float64(i)*14
			fmt.Fprintf(&sb, `<text x="%.1f" y="%.1f" fill="%s" text-anchor="end">%s</text>
`, f.left+f.plotW-8, ly, color, escape(s.Name))
		}
	}

	sb.WriteString("</svg>\n")
	_, err = io.WriteString(w, sb.String())
	return err
}

// SnapshotSVG draws particles projected onto the xy plane of a box of side
// lengths box, shading by z.
func SnapshotSVG(w io.Writer, positions [][3]float64, box [3]float64, size int) error {
	if len(positions) == 0 {
		return ErrEmptyPlot
	}
	scale := float64(size) / math.Max(box[0], box[1])
	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, size, size, size, size)
	r := math.Max(1.5, scale*1.2)
	for _, p := range positions {
		depth := 0.35 + 0.65*p[2]/box[2]
		fmt.Fprintf(&sb, `<circle cx="%.1f" cy="%.1f" r="%.1f" fill="#00d7ff" fill-opacity="%.2f"/>
`, p[0]*scale, float64(size)-p[1]*scale, r, math.Min(1, math.Max(0.1, depth)))
	}
	sb.WriteString("</svg>\n")
	_, err := io.WriteString(w, sb.String())
	return err
}

func tickLabel(v float64) string {
	a := math.Abs(v)
	if a != 0 && (a < 1e-2 || a >= 1e4) {
		return fmt.Sprintf("%.2e", v)
	}
	return fmt.Sprintf("%.3g", v)
}

var xmlEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;")

func escape(s string) string { return xmlEscaper.Replace(s) }
